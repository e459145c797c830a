// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	"github.com/spf13/viper"

	"github.com/vidra-cli/vidra/color"
	"github.com/vidra-cli/vidra/gesture"
	"github.com/vidra-cli/vidra/history"
	"github.com/vidra-cli/vidra/jellyfin"
	"github.com/vidra-cli/vidra/key"
	"github.com/vidra-cli/vidra/log"
	"github.com/vidra-cli/vidra/nowplaying"
	"github.com/vidra-cli/vidra/overlay"
	"github.com/vidra-cli/vidra/playback"
	"github.com/vidra-cli/vidra/style"
	"github.com/vidra-cli/vidra/util"
)

// Message types carried between asynchronous handlers and Update.
type (
	foundItemsMsg       []jellyfin.Item
	foundSeasonsMsg     []jellyfin.Item
	foundEpisodesMsg    []jellyfin.Item
	sessionReadyMsg     *playback.Session
	playbackStartedMsg  *playback.Session
	playbackEventMsg    playback.Event
	overlayChangedMsg   overlay.State
	overlayDismissedMsg struct{}
	playerExitMsg       struct{}
	playRequestMsg      jellyfin.Item
	transcodeInfoMsg    *jellyfin.TranscodingInfo
)

func (b *statefulBubble) loadHistory() (tea.Cmd, error) {
	saved, err := history.Get()
	if err != nil {
		return nil, err
	}

	entries := lo.Values(saved)
	sort.Slice(entries, func(i, j int) bool {
		return strings.Compare(entries[i].String(), entries[j].String()) < 0
	})

	var items []list.Item
	for _, e := range entries {
		items = append(items, &listItem{
			internal: e,
		})
	}

	return b.historyC.SetItems(items), nil
}

func (b *statefulBubble) searchItems(term string) tea.Cmd {
	return func() tea.Msg {
		log.Info("searching for " + term)
		b.progressStatus = fmt.Sprintf("Searching for %s", style.Fg(color.Purple)(term))

		b.searcher.Search(context.Background(), term, func(items []jellyfin.Item, err error) {
			if err != nil {
				b.errorChannel <- err
				return
			}

			log.Infof("found %s", util.Quantify(len(items), "item", "items"))
			b.foundItemsChannel <- items
		})

		return nil
	}
}

func (b *statefulBubble) waitForItems() tea.Cmd {
	return func() tea.Msg {
		select {
		case found := <-b.foundItemsChannel:
			return foundItemsMsg(found)
		case err := <-b.errorChannel:
			b.lastError = err
			return err
		}
	}
}

func (b *statefulBubble) loadSeasons(series jellyfin.Item) tea.Cmd {
	return func() tea.Msg {
		log.Info("getting seasons of " + series.Name)
		seasons, err := b.client.Seasons(context.Background(), series.ID)
		if err != nil {
			log.Error(err)
			b.errorChannel <- err
		} else {
			log.Infof("found %s", util.Quantify(len(seasons), "season", "seasons"))
			b.foundSeasonsChannel <- seasons
		}

		return nil
	}
}

func (b *statefulBubble) waitForSeasons() tea.Cmd {
	return func() tea.Msg {
		select {
		case found := <-b.foundSeasonsChannel:
			return foundSeasonsMsg(found)
		case err := <-b.errorChannel:
			b.lastError = err
			return err
		}
	}
}

func (b *statefulBubble) loadEpisodes(series, season jellyfin.Item) tea.Cmd {
	return func() tea.Msg {
		log.Info("getting episodes of " + series.Name + " " + season.Name)
		episodes, err := b.client.Episodes(context.Background(), series.ID, season.ID)
		if err != nil {
			log.Error(err)
			b.errorChannel <- err
		} else {
			log.Infof("found %s", util.Quantify(len(episodes), "episode", "episodes"))
			b.foundEpisodesChannel <- episodes
		}

		return nil
	}
}

func (b *statefulBubble) waitForEpisodes() tea.Cmd {
	return func() tea.Msg {
		select {
		case found := <-b.foundEpisodesChannel:
			return foundEpisodesMsg(found)
		case err := <-b.errorChannel:
			b.lastError = err
			return err
		}
	}
}

// prepareSession asks the server for playable sources and resolves one into a
// ready playback session.
func (b *statefulBubble) prepareSession(item jellyfin.Item) tea.Cmd {
	return func() tea.Msg {
		b.progressStatus = fmt.Sprintf("Preparing %s", style.Fg(color.Purple)(item.DisplayTitle()))

		ctx := context.Background()
		sources, playSessionID, err := b.client.PlaybackInfo(ctx, item.ID)
		if err != nil {
			b.errorChannel <- err
			return nil
		}

		if len(sources) == 0 {
			b.errorChannel <- fmt.Errorf("no playable media sources for %s", item.DisplayTitle())
			return nil
		}

		session, err := playback.Resolve(b.client, item, sources[0], playSessionID)
		if err != nil {
			b.errorChannel <- err
			return nil
		}

		b.sessionChannel <- session
		return nil
	}
}

func (b *statefulBubble) waitForSession() tea.Cmd {
	return func() tea.Msg {
		select {
		case session := <-b.sessionChannel:
			return sessionReadyMsg(session)
		case err := <-b.errorChannel:
			b.lastError = err
			return err
		}
	}
}

// playFromHistory refetches a history record's item so the session resolves
// against fresh server state, including the server-side resume position.
func (b *statefulBubble) playFromHistory(record *history.SavedItem) tea.Cmd {
	return func() tea.Msg {
		item, err := b.client.Item(context.Background(), record.ItemID)
		if err != nil {
			b.errorChannel <- err
			return nil
		}

		return b.prepareSession(item)()
	}
}

// startPlayback hands a resolved session to the playback manager and wires the
// OS now playing surface.
func (b *statefulBubble) startPlayback(session *playback.Session) tea.Cmd {
	return func() tea.Msg {
		log.Infof("playing %s (%s)", session.Title(), session.StreamType)
		b.progressStatus = fmt.Sprintf("Launching %s", style.Fg(color.Purple)(session.Title()))

		// Returned directly as the command's message: by the time this
		// command runs, waitForSession has already been consumed, so nothing
		// is reading the error channel.
		if err := b.manager.Start(session, nil); err != nil {
			return err
		}

		b.configureNowPlaying(session)

		if viper.GetBool(key.HistorySaveOnWatch) {
			if err := history.Save(session.Item, session.StartSeconds, 0); err != nil {
				log.Warnf("failed to save history: %v", err)
			}
		}

		if viper.GetBool(key.PlayerReportProgress) {
			util.Ignore(func() error {
				return b.client.ReportStart(context.Background(), jellyfin.PlaystateReport{
					ItemID:        session.Item.ID,
					MediaSourceID: session.Source.ID,
					PlaySessionID: session.PlaySessionID,
					PositionTicks: jellyfin.SecondsToTicks(session.StartSeconds),
				})
			})
		}

		return playbackStartedMsg(session)
	}
}

func (b *statefulBubble) waitForPlaybackEvent() tea.Cmd {
	return func() tea.Msg {
		return playbackEventMsg(<-b.manager.Events())
	}
}

func (b *statefulBubble) waitForOverlayChange() tea.Cmd {
	return func() tea.Msg {
		return overlayChangedMsg(<-b.overlayChannel)
	}
}

func (b *statefulBubble) waitForOverlayDismiss() tea.Cmd {
	return func() tea.Msg {
		<-b.dismissChannel
		return overlayDismissedMsg{}
	}
}

func (b *statefulBubble) waitForPlayerExit() tea.Cmd {
	return func() tea.Msg {
		<-b.manager.Wait()
		return playerExitMsg{}
	}
}

func (b *statefulBubble) waitForPlayRequest() tea.Cmd {
	return func() tea.Msg {
		return playRequestMsg(<-b.playRequestChannel)
	}
}

const transcodePollInterval = 10 * time.Second

// pollTranscoding fetches the server-side transcode state attached to the
// active play session. A failed poll resolves to nil; the next tick retries.
func (b *statefulBubble) pollTranscoding() tea.Cmd {
	playSessionID := b.session.PlaySessionID

	return tea.Tick(transcodePollInterval, func(time.Time) tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		sessions, err := b.client.Sessions(ctx)
		if err != nil {
			log.Warnf("poll sessions: %v", err)
			return transcodeInfoMsg(nil)
		}

		for _, s := range sessions {
			if s.PlaySessionID == playSessionID {
				return transcodeInfoMsg(s.TranscodingInfo)
			}
		}

		return transcodeInfoMsg(nil)
	})
}

// configureNowPlaying installs remote commands and publishes the session
// metadata on the OS surface. Activation failures are logged, not fatal.
func (b *statefulBubble) configureNowPlaying(session *playback.Session) {
	commands := []nowplaying.Command{
		nowplaying.CommandPlay,
		nowplaying.CommandPause,
		nowplaying.CommandTogglePause,
		nowplaying.CommandSkipForward,
		nowplaying.CommandSkipBackward,
		nowplaying.CommandChangePosition,
	}
	if b.manager.Queue() != nil {
		commands = append(commands, nowplaying.CommandNextTrack, nowplaying.CommandPreviousTrack)
	}

	if err := b.bridge.ConfigureCommands(commands, b.handleRemoteCommand, b.handleInterruption); err != nil {
		log.Warnf("configure remote commands: %v", err)
	}

	b.bridge.StartSession()

	var artwork string
	if u, err := b.client.FullURL("/Items/" + session.Item.ID + "/Images/Primary"); err == nil {
		artwork = u.String()
	}

	b.bridge.SetMetadata(nowplaying.Metadata{
		Title:      session.Item.Name,
		Artist:     session.Item.SeriesName,
		Album:      session.Item.SeasonName,
		ArtworkURL: artwork,
	})
}

// handleInterruption pauses playback when another media player takes over
// the OS surface. Runs on the D-Bus dispatch goroutine.
func (b *statefulBubble) handleInterruption(begun bool) {
	if begun {
		b.manager.Pause()
	}
}

// handleRemoteCommand runs on the D-Bus dispatch goroutine; it only touches
// the thread-safe playback manager and the play request channel.
func (b *statefulBubble) handleRemoteCommand(cmd nowplaying.Command, value float64) {
	step := seekStep()

	switch cmd {
	case nowplaying.CommandPlay:
		b.manager.Play()
	case nowplaying.CommandPause:
		b.manager.Pause()
	case nowplaying.CommandTogglePause:
		b.manager.TogglePause()
	case nowplaying.CommandSkipForward:
		if value > 0 {
			step = value
		}
		b.manager.SeekBy(step)
	case nowplaying.CommandSkipBackward:
		if value > 0 {
			step = value
		}
		b.manager.SeekBy(-step)
	case nowplaying.CommandChangePosition:
		b.manager.Seek(value)
	case nowplaying.CommandNextTrack:
		if item, ok := b.manager.Next(); ok {
			select {
			case b.playRequestChannel <- item:
			default:
			}
		}
	case nowplaying.CommandPreviousTrack:
		if item, ok := b.manager.Previous(); ok {
			select {
			case b.playRequestChannel <- item:
			default:
			}
		}
	}
}

// registerGestures wires the gesture router into the overlay machine and the
// playback manager. Pan handlers run on the Update goroutine via mouse events.
func (b *statefulBubble) registerGestures() {
	r := b.gestures

	r.OnToggleOverlay(b.overlayM.ToggleVisibility)
	r.OnToggleCompact(func() {
		b.supplementCompact = !b.supplementCompact
	})
	r.OnAspectFill(func(fill bool) {
		b.aspectFill = fill
	})

	r.RegisterPan(gesture.DirectionHorizontal, b.scrubPan, func() float64 {
		return b.manager.Progress().Displayed()
	})
	r.RegisterPan(gesture.DirectionVertical, b.ratePan, func() float64 {
		return b.rate
	})
	r.RegisterSupplementPan(b.supplementPan, func() float64 {
		return float64(b.chaptersC.Index())
	})
}

// scrubPan maps a horizontal drag across the terminal onto the timeline.
func (b *statefulBubble) scrubPan(s gesture.PanState) {
	progress := b.manager.Progress()

	switch s.Phase {
	case gesture.Began:
		progress.BeginScrub()
		b.overlayM.BeginScrub()
	case gesture.Changed:
		width := float64(b.width)
		if width <= 0 {
			width = 80
		}
		duration := progress.Duration()
		progress.ScrubTo(s.StartValue + (s.X-s.StartX)/width*duration)
	case gesture.Ended:
		progress.EndScrub()
		b.overlayM.EndScrub()
	case gesture.Cancelled:
		progress.CancelScrub()
		b.overlayM.EndScrub()
	}
}

// ratePan maps a vertical drag onto playback speed.
func (b *statefulBubble) ratePan(s gesture.PanState) {
	if s.Phase != gesture.Changed {
		return
	}

	rate := s.StartValue - (s.Y-s.StartY)*0.05
	rate = util.Max(0.25, util.Min(4.0, rate))
	b.rate = rate
	b.manager.SetRate(rate)
}

// supplementPan scrolls the chapters panel while it is presented.
func (b *statefulBubble) supplementPan(s gesture.PanState) {
	if s.Phase != gesture.Changed {
		return
	}

	n := len(b.chaptersC.Items())
	if n == 0 {
		return
	}

	row := int(s.StartValue + (s.Y-s.StartY)/2)
	b.chaptersC.Select(util.Max(0, util.Min(n-1, row)))
}

func seekStep() float64 {
	if step := viper.GetFloat64(key.PlayerSeekStep); step > 0 {
		return step
	}
	return 10
}
