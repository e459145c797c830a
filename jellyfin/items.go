// Package jellyfin implements a typed client for Jellyfin-compatible media server REST APIs.
package jellyfin

import "fmt"

// TicksPerSecond is the server's time unit: one tick is 100 nanoseconds.
const TicksPerSecond int64 = 10_000_000

// TicksToSeconds converts server position ticks into seconds.
func TicksToSeconds(ticks int64) float64 {
	return float64(ticks) / float64(TicksPerSecond)
}

// SecondsToTicks converts seconds into server position ticks.
func SecondsToTicks(seconds float64) int64 {
	return int64(seconds * float64(TicksPerSecond))
}

// ItemType enumerates the media item kinds this client understands.
type ItemType string

const (
	ItemMovie   ItemType = "Movie"
	ItemSeries  ItemType = "Series"
	ItemSeason  ItemType = "Season"
	ItemEpisode ItemType = "Episode"
	ItemVideo   ItemType = "Video"
)

// Item is a single library entry as reported by the server.
type Item struct {
	ID                string        `json:"Id"`
	Name              string        `json:"Name"`
	Etag              string        `json:"Etag"`
	Type              ItemType      `json:"Type"`
	Overview          string        `json:"Overview"`
	SeriesName        string        `json:"SeriesName"`
	SeriesID          string        `json:"SeriesId"`
	SeasonID          string        `json:"SeasonId"`
	SeasonName        string        `json:"SeasonName"`
	IndexNumber       int           `json:"IndexNumber"`
	ParentIndexNumber int           `json:"ParentIndexNumber"`
	ProductionYear    int           `json:"ProductionYear"`
	RunTimeTicks      int64         `json:"RunTimeTicks"`
	Chapters          []Chapter     `json:"Chapters"`
	MediaSources      []MediaSource `json:"MediaSources"`
	UserData          *UserData     `json:"UserData"`
}

// DisplayTitle returns a human-readable title, qualified with series and episode numbering when present.
func (i Item) DisplayTitle() string {
	if i.Type == ItemEpisode && i.SeriesName != "" {
		return i.SeriesName + " — " + i.episodeCode() + " — " + i.Name
	}
	return i.Name
}

// String implements fmt.Stringer for menu rendering.
func (i Item) String() string {
	return i.DisplayTitle()
}

func (i Item) episodeCode() string {
	return fmt.Sprintf("S%02dE%02d", i.ParentIndexNumber, i.IndexNumber)
}

// RuntimeSeconds returns the item's total runtime in seconds.
func (i Item) RuntimeSeconds() float64 {
	return TicksToSeconds(i.RunTimeTicks)
}

// ResumeSeconds returns the server-recorded resume position in seconds, or zero when absent.
func (i Item) ResumeSeconds() float64 {
	if i.UserData == nil {
		return 0
	}
	return TicksToSeconds(i.UserData.PlaybackPositionTicks)
}

// UserData carries per-user playback state attached to an item.
type UserData struct {
	PlaybackPositionTicks int64   `json:"PlaybackPositionTicks"`
	PlayedPercentage      float64 `json:"PlayedPercentage"`
	Played                bool    `json:"Played"`
}

// Chapter marks a named position inside an item's timeline.
type Chapter struct {
	Name               string `json:"Name"`
	StartPositionTicks int64  `json:"StartPositionTicks"`
}

// StartSeconds returns the chapter start position in seconds.
func (c Chapter) StartSeconds() float64 {
	return TicksToSeconds(c.StartPositionTicks)
}

// StreamKind enumerates the media stream types carried by a source.
type StreamKind string

const (
	StreamVideo    StreamKind = "Video"
	StreamAudio    StreamKind = "Audio"
	StreamSubtitle StreamKind = "Subtitle"
)

// MediaStream is a single elementary stream inside a media source.
type MediaStream struct {
	Index        int        `json:"Index"`
	Type         StreamKind `json:"Type"`
	Codec        string     `json:"Codec"`
	Language     string     `json:"Language"`
	DisplayTitle string     `json:"DisplayTitle"`
	IsDefault    bool       `json:"IsDefault"`
}

// MediaSource describes one playable rendition of an item.
type MediaSource struct {
	ID                         string        `json:"Id"`
	Name                       string        `json:"Name"`
	Path                       string        `json:"Path"`
	Container                  string        `json:"Container"`
	TranscodingURL             string        `json:"TranscodingUrl"`
	SupportsDirectPlay         bool          `json:"SupportsDirectPlay"`
	SupportsDirectStream       bool          `json:"SupportsDirectStream"`
	SupportsTranscoding        bool          `json:"SupportsTranscoding"`
	DefaultAudioStreamIndex    *int          `json:"DefaultAudioStreamIndex"`
	DefaultSubtitleStreamIndex *int          `json:"DefaultSubtitleStreamIndex"`
	MediaStreams               []MediaStream `json:"MediaStreams"`
}

// StreamsOfKind returns the source's media streams filtered by type.
func (m MediaSource) StreamsOfKind(kind StreamKind) []MediaStream {
	var streams []MediaStream
	for _, s := range m.MediaStreams {
		if s.Type == kind {
			streams = append(streams, s)
		}
	}
	return streams
}
