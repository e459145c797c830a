package history

import (
	"fmt"

	"github.com/vidra-cli/vidra/jellyfin"
)

// SavedItem is one playback record preserved in the user's history.
type SavedItem struct {
	ItemID            string  `json:"item_id"`
	Name              string  `json:"name"`
	Type              string  `json:"type"`
	SeriesName        string  `json:"series_name"`
	SeriesID          string  `json:"series_id"`
	SeasonNumber      int     `json:"season_number"`
	EpisodeNumber     int     `json:"episode_number"`
	RuntimeSeconds    float64 `json:"runtime_seconds"`
	PositionSeconds   float64 `json:"position_seconds"`
	WatchedPercentage float64 `json:"watched_percentage"`
}

func (s *SavedItem) encode() string {
	return s.ItemID
}

func (s *SavedItem) String() string {
	if s.SeriesName != "" {
		return fmt.Sprintf("%s S%02dE%02d : %.0f%%", s.SeriesName, s.SeasonNumber, s.EpisodeNumber, s.WatchedPercentage)
	}
	return fmt.Sprintf("%s : %.0f%%", s.Name, s.WatchedPercentage)
}

func newSavedItem(item jellyfin.Item) *SavedItem {
	return &SavedItem{
		ItemID:         item.ID,
		Name:           item.Name,
		Type:           string(item.Type),
		SeriesName:     item.SeriesName,
		SeriesID:       item.SeriesID,
		SeasonNumber:   item.ParentIndexNumber,
		EpisodeNumber:  item.IndexNumber,
		RuntimeSeconds: item.RuntimeSeconds(),
	}
}
