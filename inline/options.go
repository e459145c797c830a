// Package inline provides the implementation for the application's non-interactive, programmable execution mode.
package inline

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"

	"github.com/vidra-cli/vidra/jellyfin"
	"github.com/vidra-cli/vidra/util"
)

type (
	ItemPicker     func([]jellyfin.Item) *jellyfin.Item
	EpisodesFilter func([]jellyfin.Item) ([]jellyfin.Item, error)
)

type Options struct {
	Out            io.Writer
	Client         *jellyfin.Client
	Json           bool
	Query          string
	ItemPicker     mo.Option[ItemPicker]
	EpisodesFilter mo.Option[EpisodesFilter]

	// StreamURLs resolves each selected item into a playable stream URL,
	// which costs one playback info round trip per item.
	StreamURLs bool
}

func ParseItemPicker(kind, value string) (ItemPicker, error) {
	switch kind {
	case "first":
		return func(items []jellyfin.Item) *jellyfin.Item {
			if len(items) == 0 {
				return nil
			}
			return &items[0]
		}, nil
	case "last":
		return func(items []jellyfin.Item) *jellyfin.Item {
			if len(items) == 0 {
				return nil
			}
			return &items[len(items)-1]
		}, nil
	case "exact":
		return func(items []jellyfin.Item) *jellyfin.Item {
			for i, item := range items {
				if item.Name == value {
					return &items[i]
				}
			}
			return nil
		}, nil
	default:
		idx, err := strconv.ParseUint(kind, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("unknown picker type: %s", kind)
		}
		return func(items []jellyfin.Item) *jellyfin.Item {
			if len(items) == 0 {
				return nil
			}
			i := util.Min(idx, uint64(len(items)-1))
			return &items[i]
		}, nil
	}
}

// ParseEpisodesFilter parses a string description of an episode filter.
// Format: "first", "last", "all", "[from]-[to]", "@substring@", "[index]"
func ParseEpisodesFilter(description string) (EpisodesFilter, error) {
	if description == "first" {
		return func(episodes []jellyfin.Item) ([]jellyfin.Item, error) {
			if len(episodes) == 0 {
				return episodes, nil
			}
			return episodes[:1], nil
		}, nil
	}
	if description == "last" {
		return func(episodes []jellyfin.Item) ([]jellyfin.Item, error) {
			if len(episodes) == 0 {
				return episodes, nil
			}
			return episodes[len(episodes)-1:], nil
		}, nil
	}
	if description == "all" {
		return func(episodes []jellyfin.Item) ([]jellyfin.Item, error) {
			return episodes, nil
		}, nil
	}

	// Range: "1-5"
	if strings.Contains(description, "-") {
		parts := strings.Split(description, "-")
		if len(parts) == 2 {
			from, err1 := strconv.ParseUint(parts[0], 10, 16)
			to, err2 := strconv.ParseUint(parts[1], 10, 16)
			if err1 == nil && err2 == nil {
				return func(episodes []jellyfin.Item) ([]jellyfin.Item, error) {
					start := util.Min(from, uint64(len(episodes)))
					end := util.Min(to+1, uint64(len(episodes)))
					if start > end {
						return []jellyfin.Item{}, nil
					}
					return episodes[start:end], nil
				}, nil
			}
		}
	}

	// Substring: "@text@"
	if strings.HasPrefix(description, "@") && strings.HasSuffix(description, "@") {
		sub := description[1 : len(description)-1]
		return func(episodes []jellyfin.Item) ([]jellyfin.Item, error) {
			return lo.Filter(episodes, func(e jellyfin.Item, _ int) bool {
				return strings.Contains(strings.ToLower(e.Name), strings.ToLower(sub))
			}), nil
		}, nil
	}

	// Single index: "5"
	if idx, err := strconv.ParseUint(description, 10, 16); err == nil {
		return func(episodes []jellyfin.Item) ([]jellyfin.Item, error) {
			if uint64(len(episodes)) <= idx {
				return []jellyfin.Item{}, nil
			}
			return []jellyfin.Item{episodes[idx]}, nil
		}, nil
	}

	return nil, fmt.Errorf("invalid episode filter: %s", description)
}
