package playback

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/vidra-cli/vidra/jellyfin"
	"github.com/vidra-cli/vidra/log"
)

// ErrCannotConstructURL means no playable URL could be built for the chosen
// media source. This is fatal to the playback attempt: the cause (bad server
// data, missing identifiers) does not resolve on retry.
var ErrCannotConstructURL = errors.New("cannot construct playback URL")

// URLResolver is the slice of the server client that Resolve needs.
type URLResolver interface {
	FullURL(ref string) (*url.URL, error)
	VideoStreamURL(itemID, mediaSourceID, playSessionID, etag string) (*url.URL, error)
}

// Resolve turns an item plus a chosen media source into a playable Session.
//
// The URL branch is chosen by fixed priority, not data quality: a declared
// transcoding URL always wins, then a direct-play path, then a static video
// stream constructed from the server. The server decides whether transcoding
// is needed; the client only honors that decision.
func Resolve(server URLResolver, item jellyfin.Item, source jellyfin.MediaSource, playSessionID string) (*Session, error) {
	streamURL, streamType, err := resolveURL(server, item, source, playSessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCannotConstructURL, err)
	}

	log.Debugf("resolved %s as %s stream: %s", item.ID, streamType, streamURL.Redacted())

	session := &Session{
		Item:          item,
		Source:        source,
		URL:           streamURL,
		StreamType:    streamType,
		PlaySessionID: playSessionID,

		VideoStreams:    source.StreamsOfKind(jellyfin.StreamVideo),
		AudioStreams:    source.StreamsOfKind(jellyfin.StreamAudio),
		SubtitleStreams: source.StreamsOfKind(jellyfin.StreamSubtitle),

		AudioStreamIndex:    streamIndexOrNone(source.DefaultAudioStreamIndex),
		SubtitleStreamIndex: streamIndexOrNone(source.DefaultSubtitleStreamIndex),

		Chapters:     item.Chapters,
		StartSeconds: item.ResumeSeconds(),
	}

	return session, nil
}

func resolveURL(server URLResolver, item jellyfin.Item, source jellyfin.MediaSource, playSessionID string) (*url.URL, StreamType, error) {
	// 1. The server declared a transcoding URL for this source.
	if source.TranscodingURL != "" {
		u, err := server.FullURL(source.TranscodingURL)
		if err != nil {
			return nil, "", fmt.Errorf("transcoding url: %w", err)
		}
		return u, StreamTranscode, nil
	}

	// 2. Direct play with a path the client can open itself.
	if source.SupportsDirectPlay && source.Path != "" {
		u, err := parseDirectPath(source.Path)
		if err == nil {
			return u, StreamDirect, nil
		}
		// An unusable path falls through to a constructed stream URL;
		// the server file path of a direct-play source is often local
		// to the server machine.
		log.Debugf("direct path %q unusable, falling back to stream url: %v", source.Path, err)
	}

	// 3. Static video stream served by the server.
	if item.ID == "" {
		return nil, "", errors.New("item has no id")
	}

	u, err := server.VideoStreamURL(item.ID, source.ID, playSessionID, item.Etag)
	if err != nil {
		return nil, "", fmt.Errorf("video stream url: %w", err)
	}
	return u, StreamDirect, nil
}

// parseDirectPath accepts only absolute http(s) URLs as direct-play targets.
func parseDirectPath(path string) (*url.URL, error) {
	u, err := url.Parse(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u, nil
	default:
		return nil, fmt.Errorf("scheme %q is not streamable", u.Scheme)
	}
}

func streamIndexOrNone(index *int) int {
	if index == nil {
		return noStream
	}
	return *index
}
