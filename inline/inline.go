// Package inline provides the implementation for the application's non-interactive, programmable execution mode.
package inline

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/vidra-cli/vidra/jellyfin"
	"github.com/vidra-cli/vidra/log"
	"github.com/vidra-cli/vidra/playback"
)

func Run(options *Options) error {
	if options.Out == nil {
		options.Out = os.Stdout
	}

	ctx := context.Background()

	items, err := options.Client.Search(ctx, options.Query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	var selected []jellyfin.Item
	if options.ItemPicker.IsPresent() {
		picker := options.ItemPicker.MustGet()
		if choice := picker(items); choice != nil {
			selected = []jellyfin.Item{*choice}
		}
	} else {
		selected = items
	}

	if len(selected) == 0 {
		if options.Json {
			return writeJson(options.Out, nil, options)
		}
		return nil
	}

	entries := make([]*Entry, 0, len(selected))
	for _, item := range selected {
		entry, err := prepareEntry(ctx, item, options)
		if err != nil {
			return err
		}
		entries = append(entries, entry)
	}

	if options.Json {
		return writeJson(options.Out, entries, options)
	}

	for _, entry := range entries {
		for _, playable := range entry.playables() {
			log.Info("found " + playable.Item.DisplayTitle())
			if options.StreamURLs && playable.StreamURL != "" {
				fmt.Fprintln(options.Out, playable.StreamURL)
			} else {
				fmt.Fprintln(options.Out, playable.Item.DisplayTitle())
			}
		}
	}

	return nil
}

// prepareEntry expands a search result into its playable parts. Series are
// expanded into their full episode listing before the filter applies.
func prepareEntry(ctx context.Context, item jellyfin.Item, options *Options) (*Entry, error) {
	entry := &Entry{Playable: Playable{Item: item}}

	if item.Type == jellyfin.ItemSeries {
		episodes, err := options.Client.Episodes(ctx, item.ID, "")
		if err != nil {
			return nil, err
		}

		sort.Slice(episodes, func(i, j int) bool {
			if episodes[i].ParentIndexNumber != episodes[j].ParentIndexNumber {
				return episodes[i].ParentIndexNumber < episodes[j].ParentIndexNumber
			}
			return episodes[i].IndexNumber < episodes[j].IndexNumber
		})

		if options.EpisodesFilter.IsPresent() {
			filter := options.EpisodesFilter.MustGet()
			filtered, err := filter(episodes)
			if err != nil {
				return nil, err
			}
			episodes = filtered
		}

		entry.Episodes = make([]*Playable, len(episodes))
		for i, e := range episodes {
			entry.Episodes[i] = &Playable{Item: e}
		}
	}

	if options.StreamURLs {
		if err := resolveStreamURLs(ctx, entry, options); err != nil {
			return nil, err
		}
	}

	return entry, nil
}

// resolveStreamURLs attaches a playable stream URL to every playable part of
// the entry. Items the server refuses to stream are logged and skipped so one
// broken episode does not sink the whole listing.
func resolveStreamURLs(ctx context.Context, entry *Entry, options *Options) error {
	for _, playable := range entry.playables() {
		sources, playSessionID, err := options.Client.PlaybackInfo(ctx, playable.Item.ID)
		if err != nil {
			return err
		}

		if len(sources) == 0 {
			log.Warnf("no playable media sources for %s", playable.Item.DisplayTitle())
			continue
		}

		session, err := playback.Resolve(options.Client, playable.Item, sources[0], playSessionID)
		if err != nil {
			log.Warnf("failed to resolve %s: %v", playable.Item.DisplayTitle(), err)
			continue
		}

		playable.StreamURL = session.URL.String()
		playable.StreamType = string(session.StreamType)
	}

	return nil
}

func writeJson(out io.Writer, entries []*Entry, options *Options) error {
	data, err := asJson(entries, options.Query)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
