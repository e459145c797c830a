// Package history tracks and persists which items the user has watched and
// how far into them playback got.
package history

import (
	"github.com/metafates/gache"

	"github.com/vidra-cli/vidra/filesystem"
	"github.com/vidra-cli/vidra/jellyfin"
	"github.com/vidra-cli/vidra/where"
)

// cacher is the disk-backed registry of playback progress records.
var cacher = gache.New[map[string]*SavedItem](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns the complete collection of playback records.
func Get() (map[string]*SavedItem, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*SavedItem), nil
	}
	return cached, nil
}

// Save persists playback progress for an item. Progress only moves forward:
// re-watching the first minutes of a finished item never regresses its
// recorded percentage.
func Save(item jellyfin.Item, positionSeconds, percentage float64) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	record := newSavedItem(item)
	record.PositionSeconds = positionSeconds

	if existing, exists := saved[record.encode()]; exists {
		if percentage < existing.WatchedPercentage {
			percentage = existing.WatchedPercentage
		}
	}
	record.WatchedPercentage = percentage

	saved[record.encode()] = record

	return cacher.Set(saved)
}

// Remove permanently deletes an item's playback record.
func Remove(item *SavedItem) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, item.encode())
	return cacher.Set(saved)
}
