// Package playback coordinates an active playback attempt: resolving a
// library item into a playable URL, owning the session lifecycle around the
// player backend, and mediating between backend position ticks and user
// scrubbing.
package playback

import (
	"net/url"

	"github.com/vidra-cli/vidra/jellyfin"
	"github.com/vidra-cli/vidra/player"
)

// StreamType reports how the server delivers the stream.
type StreamType string

const (
	// StreamDirect means the server sends the original file unmodified.
	StreamDirect StreamType = "direct"
	// StreamTranscode means the server re-encodes on the fly.
	StreamTranscode StreamType = "transcode"
)

// noStream marks an absent audio/subtitle selection.
const noStream = -1

// Session is one active playback attempt. It is created by Resolve, owned
// exclusively by a Manager, and replaced wholesale when the user stops,
// switches media source, or navigates away.
type Session struct {
	Item   jellyfin.Item
	Source jellyfin.MediaSource

	URL        *url.URL
	StreamType StreamType

	// PlaySessionID correlates this attempt with server-side transcode
	// bookkeeping and progress reports.
	PlaySessionID string

	VideoStreams    []jellyfin.MediaStream
	AudioStreams    []jellyfin.MediaStream
	SubtitleStreams []jellyfin.MediaStream

	// Selected stream indices, -1 when nothing is selected.
	AudioStreamIndex    int
	SubtitleStreamIndex int

	Chapters     []jellyfin.Chapter
	StartSeconds float64
}

// Title returns the session's display title for window titles and
// now-playing surfaces.
func (s *Session) Title() string {
	return s.Item.DisplayTitle()
}

// PlayerChapters converts the session's chapters into the player backend's
// marker format.
func (s *Session) PlayerChapters() []player.Chapter {
	chapters := make([]player.Chapter, 0, len(s.Chapters))
	for _, c := range s.Chapters {
		chapters = append(chapters, player.Chapter{
			Title:        c.Name,
			StartSeconds: c.StartSeconds(),
		})
	}
	return chapters
}
