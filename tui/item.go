// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/viper"
	"github.com/vidra-cli/vidra/history"
	"github.com/vidra-cli/vidra/icon"
	"github.com/vidra-cli/vidra/jellyfin"
	"github.com/vidra-cli/vidra/key"
	"github.com/vidra-cli/vidra/style"
	"github.com/vidra-cli/vidra/util"
)

// listItem implements the list.Item interface, wrapping various domain models for terminal display.
type listItem struct {
	internal interface{}
	marked   bool
}

func (t *listItem) toggleMark() {
	t.marked = !t.marked
}

func (t *listItem) getMark() string {
	switch t.internal.(type) {
	case jellyfin.Item:
		return lipgloss.NewStyle().Bold(true).Foreground(style.AccentColor).Render(icon.Get(icon.Queue))
	case jellyfin.Chapter:
		return icon.Get(icon.Chapter)
	default:
		return ""
	}
}

// Title retrieves the primary display text for the list item.
func (t *listItem) Title() (title string) {
	switch e := t.internal.(type) {
	case jellyfin.Item:
		switch e.Type {
		case jellyfin.ItemEpisode:
			title = fmt.Sprintf("%d. %s", e.IndexNumber, e.Name)
		default:
			title = e.Name
		}
	case *history.SavedItem:
		if e.SeriesName != "" {
			title = e.SeriesName
		} else {
			title = e.Name
		}
	case jellyfin.Chapter:
		title = e.Name
	case string:
		title = e
	default:
		title = t.FilterValue()
	}

	if title != "" && t.marked {
		title = fmt.Sprintf("%s %s", title, t.getMark())
	}

	return
}

// Description retrieves the multi-line secondary metadata for the list item.
func (t *listItem) Description() (description string) {
	switch e := t.internal.(type) {
	case jellyfin.Item:
		var parts []string

		if e.Type != "" {
			parts = append(parts, lipgloss.NewStyle().Foreground(style.Subtext).Render(string(e.Type)))
		}

		if e.ProductionYear > 0 {
			parts = append(parts, lipgloss.NewStyle().Foreground(style.Overlay).Render(fmt.Sprintf("%d", e.ProductionYear)))
		}

		if e.RunTimeTicks > 0 {
			parts = append(parts, lipgloss.NewStyle().Foreground(style.Overlay).Render(util.FormatSeconds(int(e.RuntimeSeconds()))))
		}

		if e.UserData != nil && e.UserData.Played {
			parts = append(parts, lipgloss.NewStyle().Foreground(style.Green).Render("Watched"))
		} else if resume := e.ResumeSeconds(); resume > 0 {
			parts = append(parts, lipgloss.NewStyle().Foreground(style.Yellow).Render(
				fmt.Sprintf("Resume at %s", util.FormatSeconds(int(resume)))))
		}

		description = strings.Join(parts, " • ")
	case *history.SavedItem:
		completionThreshold := viper.GetFloat64(key.PlayerCompletionPercentage)
		if completionThreshold <= 0 {
			completionThreshold = 90.0
		}

		progressStr := ""
		if e.WatchedPercentage > 0 && e.WatchedPercentage < completionThreshold {
			progressStr = lipgloss.NewStyle().Foreground(style.Yellow).Render(fmt.Sprintf(" (%.0f%%)", e.WatchedPercentage))
		} else if e.WatchedPercentage >= completionThreshold {
			progressStr = lipgloss.NewStyle().Foreground(style.Green).Render(" (Watched)")
		}

		if e.SeriesName != "" {
			description = fmt.Sprintf("S%02dE%02d %s%s", e.SeasonNumber, e.EpisodeNumber, e.Name, progressStr)
		} else {
			description = fmt.Sprintf("%s%s", e.Type, progressStr)
		}
	case jellyfin.Chapter:
		description = util.FormatSeconds(int(e.StartSeconds()))
	case string:
		description = ""
	}

	return
}

// FilterValue returns the string used for real-time list filtering and searching.
func (t *listItem) FilterValue() string {
	switch e := t.internal.(type) {
	case jellyfin.Item:
		if e.SeriesName != "" && e.SeriesName != e.Name {
			return e.SeriesName + " " + e.Name
		}
		return e.Name
	case *history.SavedItem:
		if e.SeriesName != "" {
			return e.SeriesName
		}
		return e.Name
	case jellyfin.Chapter:
		return e.Name
	case string:
		return e
	default:
		return ""
	}
}
