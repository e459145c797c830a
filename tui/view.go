// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"

	"github.com/vidra-cli/vidra/color"
	"github.com/vidra-cli/vidra/icon"
	"github.com/vidra-cli/vidra/overlay"
	"github.com/vidra-cli/vidra/playback"
	"github.com/vidra-cli/vidra/style"
	"github.com/vidra-cli/vidra/util"
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case loadingState:
		output = b.viewLoading()
	case historyState:
		output = b.viewHistory()
	case searchState:
		output = b.viewSearch()
	case itemsState:
		output = b.viewItems()
	case seasonsState:
		output = b.viewSeasons()
	case episodesState:
		output = b.viewEpisodes()
	case playingState:
		output = b.viewPlaying()
	case postWatchState:
		output = b.viewPostWatch()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Loading"),
			"",
			b.spinnerC.View() + " " + b.progressStatus,
		},
	)
}

func (b *statefulBubble) viewHistory() string {
	return listExtraPaddingStyle.Render(b.historyC.View())
}

func (b *statefulBubble) viewSearch() string {
	lines := []string{
		style.Title("Search"),
		"",
		b.inputC.View(),
	}

	if suggestion, ok := b.searchSuggestion.Get(); ok {
		lines = append(lines, "", style.Faint(fmt.Sprintf("Did you mean %s? (tab to accept)", suggestion)))
	}

	return b.renderLines(true, lines)
}

func (b *statefulBubble) viewItems() string {
	return listExtraPaddingStyle.Render(b.itemsC.View())
}

func (b *statefulBubble) viewSeasons() string {
	return listExtraPaddingStyle.Render(b.seasonsC.View())
}

func (b *statefulBubble) viewEpisodes() string {
	return listExtraPaddingStyle.Render(b.episodesC.View())
}

func (b *statefulBubble) viewPostWatch() string {
	return listExtraPaddingStyle.Render(b.postWatchC.View())
}

func (b *statefulBubble) viewPlaying() string {
	switch b.overlayState.Kind {
	case overlay.SmallMenu:
		return listExtraPaddingStyle.Render(b.menuC.View())
	case overlay.Chapters, overlay.Supplement:
		return b.viewChapters()
	case overlay.Hidden:
		// A bare line keeps the screen quiet while the overlay is hidden.
		return paddingStyle.Render(style.Faint(b.playingTitle()))
	}

	lines := []string{
		style.Title("Now Playing"),
		"",
		style.Truncate(b.width)(b.stateIcon() + " " + style.Fg(color.Purple)(b.playingTitle())),
		"",
		b.viewTimeline(),
	}

	if badges := b.playingBadges(); badges != "" {
		lines = append(lines, "", badges)
	}

	if b.overlayState.Kind == overlay.ConfirmClose {
		lines = append(lines, "", style.Fg(style.WarningColor)("Press back again to stop playback"))
	}

	return b.renderLines(true, lines)
}

func (b *statefulBubble) viewChapters() string {
	if b.overlayState.Kind == overlay.Supplement && b.supplementCompact {
		return listExtraPaddingStyle.Render(b.chaptersC.View() + "\n" + style.Faint(b.viewTimeline()))
	}

	return listExtraPaddingStyle.Render(b.chaptersC.View())
}

func (b *statefulBubble) playingTitle() string {
	if b.session == nil {
		return ""
	}

	return b.session.Title()
}

func (b *statefulBubble) stateIcon() string {
	if b.manager.State() == playback.StatePaused {
		return icon.Get(icon.Pause)
	}

	return icon.Get(icon.Play)
}

// viewTimeline renders the progress bar with the position readout. While a
// scrub is pending the displayed position tracks the scrub target, not the
// player.
func (b *statefulBubble) viewTimeline() string {
	progress := b.manager.Progress()

	position := progress.Displayed()
	duration := progress.Duration()
	if duration <= 0 {
		duration = b.lastDuration
	}

	var fraction float64
	if duration > 0 {
		fraction = position / duration
	}

	readout := fmt.Sprintf("%s / %s", util.FormatSeconds(int(position)), util.FormatSeconds(int(duration)))
	if progress.IsScrubbing() {
		readout = style.Fg(style.WarningColor)(readout + " " + icon.Get(icon.Progress))
	}

	return b.progressC.ViewAs(fraction) + "  " + readout
}

func (b *statefulBubble) playingBadges() string {
	var badges []string

	if b.rate != 1.0 && b.rate != 0 {
		badges = append(badges, style.Tag(style.Base, style.Sky)(fmt.Sprintf(" %.2f× ", b.rate)))
	}
	if b.aspectFill {
		badges = append(badges, style.Tag(style.Base, style.Teal)(" fill "))
	}
	if t := b.transcoding; t != nil {
		label := " transcode "
		if t.VideoCodec != "" {
			label = fmt.Sprintf(" transcode %s ", t.VideoCodec)
		}
		badges = append(badges, style.Tag(style.Base, style.Peach)(label))
	}
	if b.gestures.Locked() {
		badges = append(badges, icon.Get(icon.Lock)+" "+style.Faint("locked"))
	}

	return strings.Join(badges, "  ")
}

func (b *statefulBubble) viewError() string {
	message := "unknown failure"
	if b.lastError != nil {
		message = b.lastError.Error()
	}

	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	errorBody := errorStyle.Render(fmt.Sprintf("Critical Failure: %s", message))
	errorMsg := wrap.String(errorBody, b.width)
	return b.renderLines(
		true,
		append([]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " An error occurred:",
			"",
		},
			errorMsg,
		),
	)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
