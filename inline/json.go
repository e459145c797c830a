// Package inline provides the implementation for the application's non-interactive, programmable execution mode.
package inline

import (
	"encoding/json"

	"github.com/vidra-cli/vidra/jellyfin"
)

// Playable is one directly watchable item plus its resolved stream, when
// stream resolution was requested.
type Playable struct {
	Item jellyfin.Item `json:"item"`
	// StreamURL is the resolved playback URL; empty unless requested.
	StreamURL string `json:"streamUrl,omitempty"`
	// StreamType is "direct" or "transcode"; empty unless requested.
	StreamType string `json:"streamType,omitempty"`
}

// Entry is one search result. Series carry their (filtered) episode listing;
// movies and standalone episodes are playable directly.
type Entry struct {
	Playable
	Episodes []*Playable `json:"episodes,omitempty"`
}

// playables returns the watchable parts of the entry: the episodes of a
// series, or the entry itself for anything directly playable.
func (e *Entry) playables() []*Playable {
	if e.Item.Type == jellyfin.ItemSeries {
		return e.Episodes
	}
	return []*Playable{&e.Playable}
}

type Output struct {
	Query  string   `json:"query"`
	Result []*Entry `json:"result"`
}

func asJson(entries []*Entry, query string) ([]byte, error) {
	if entries == nil {
		entries = []*Entry{}
	}

	return json.Marshal(&Output{
		Query:  query,
		Result: entries,
	})
}
