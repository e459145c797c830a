// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"context"
	"fmt"
	"sort"

	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"

	"github.com/vidra-cli/vidra/gesture"
	"github.com/vidra-cli/vidra/history"
	"github.com/vidra-cli/vidra/internal/sync"
	"github.com/vidra-cli/vidra/internal/ui"
	"github.com/vidra-cli/vidra/jellyfin"
	"github.com/vidra-cli/vidra/key"
	"github.com/vidra-cli/vidra/nowplaying"
	"github.com/vidra-cli/vidra/overlay"
	"github.com/vidra-cli/vidra/playback"
	"github.com/vidra-cli/vidra/query"
	"github.com/vidra-cli/vidra/util"
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	// Process Ephemeral UI Notifications (captures `string` and `ui.ClearNotificationMsg`)
	if uiCmd := b.notifier.Update(msg); uiCmd != nil {
		cmd = tea.Batch(cmd, uiCmd)
	}

	switch msg := msg.(type) {
	case error:
		b.raiseError(msg)
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.forceQuit):
			b.shutdown()
			return b, tea.Quit
		}

		// Input Guard: Ignore non-priority keys during asynchronous operations.
		if b.busy && b.state != playingState && b.state != errorState {
			return b, nil
		}

		// The playing state routes back presses through the overlay machine
		// instead of the navigation stack.
		if b.state != playingState {
			switch {
			case bubblesKey.Matches(msg, b.keymap.back):
				onListBack := func(l *list.Model) tea.Cmd {
					l.ResetSelected()
					l.ResetFilter()
					return tea.Batch(cmd, l.NewStatusMessage(""))
				}

				switch b.state {
				case searchState:
					b.inputC.SetValue("")
				case itemsState:
					if b.itemsC.FilterState() != list.Unfiltered {
						b.itemsC, cmd = b.itemsC.Update(msg)
						return b, cmd
					}
					cmd = onListBack(&b.itemsC)
				case seasonsState:
					if b.seasonsC.FilterState() != list.Unfiltered {
						b.seasonsC, cmd = b.seasonsC.Update(msg)
						return b, cmd
					}
					cmd = onListBack(&b.seasonsC)
				case episodesState:
					if b.episodesC.FilterState() != list.Unfiltered {
						b.episodesC, cmd = b.episodesC.Update(msg)
						return b, cmd
					}
					b.selectedEpisodes = make(map[string]jellyfin.Item)
					cmd = onListBack(&b.episodesC)
				case historyState:
					if b.historyC.FilterState() != list.Unfiltered {
						b.historyC, cmd = b.historyC.Update(msg)
						return b, cmd
					}
					cmd = onListBack(&b.historyC)
				}

				b.previousState()
				b.stopLoading()
				return b, cmd
			}
		}
	}

	switch b.state {
	case loadingState:
		return b.updateLoading(msg)
	case historyState:
		return b.updateHistory(msg)
	case searchState:
		return b.updateSearch(msg)
	case itemsState:
		return b.updateItems(msg)
	case seasonsState:
		return b.updateSeasons(msg)
	case episodesState:
		return b.updateEpisodes(msg)
	case playingState:
		return b.updatePlaying(msg)
	case postWatchState:
		return b.updatePostWatch(msg)
	case errorState:
		return b.updateError(msg)
	}

	return b, nil
}

func (b *statefulBubble) updateLoading(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds = make([]tea.Cmd, 0)
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.back):
			if b.statesHistory.Len() > 0 {
				b.previousState()
			} else {
				return b, tea.Quit
			}
		}
	case foundItemsMsg:
		items := make([]list.Item, len(msg))
		for i, item := range msg {
			items[i] = &listItem{internal: item}
		}

		cmds = append(cmds, b.itemsC.SetItems(items))
		b.newState(itemsState)
		b.stopLoading()
	case foundSeasonsMsg:
		items := make([]list.Item, len(msg))
		for i, season := range msg {
			items[i] = &listItem{internal: season}
		}

		cmds = append(cmds, b.seasonsC.SetItems(items))
		b.newState(seasonsState)
		b.stopLoading()
	case foundEpisodesMsg:
		episodes := []jellyfin.Item(msg)
		sort.Slice(episodes, func(i, j int) bool {
			return episodes[i].IndexNumber < episodes[j].IndexNumber
		})

		if viper.GetBool(key.TUIReverseEpisodes) {
			episodes = lo.Reverse(episodes)
		}

		items := make([]list.Item, len(episodes))
		for i, e := range episodes {
			items[i] = &listItem{internal: e}
		}

		cmds = append(cmds, b.episodesC.SetItems(items))
		b.newState(episodesState)
		b.stopLoading()
	case sessionReadyMsg:
		return b, b.startPlayback((*playback.Session)(msg))
	case playbackStartedMsg:
		session := (*playback.Session)(msg)
		b.session = session
		b.lastPosition = session.StartSeconds
		b.lastDuration = session.Item.RuntimeSeconds()
		b.maxPercentage = 0
		b.ticksSinceReport = 0
		b.rate = 1.0
		b.overlayState = overlay.State{}
		b.transcoding = nil

		chapterItems := make([]list.Item, len(session.Chapters))
		for i, c := range session.Chapters {
			chapterItems[i] = &listItem{internal: c}
		}

		cmds = append(cmds,
			b.chaptersC.SetItems(chapterItems),
			b.waitForPlaybackEvent(),
			b.waitForOverlayChange(),
			b.waitForOverlayDismiss(),
			b.waitForPlayerExit(),
			b.waitForPlayRequest(),
		)

		if session.StreamType == playback.StreamTranscode {
			cmds = append(cmds, b.pollTranscoding())
		}

		b.newState(playingState)
		b.stopLoading()
	}

	b.spinnerC, cmd = b.spinnerC.Update(msg)
	return b, tea.Batch(append(cmds, cmd)...)
}

func (b *statefulBubble) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.up):
			if n := len(b.historyC.Items()); n > 0 && b.historyC.Index() == 0 {
				b.historyC.Select(n - 1)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.down):
			p := b.historyC.Items()
			if len(p) > 0 && b.historyC.Index() == len(p)-1 {
				b.historyC.Select(0)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.remove):
			if b.historyC.SelectedItem() != nil {
				entry := b.historyC.SelectedItem().(*listItem).internal.(*history.SavedItem)
				_ = history.Remove(entry)
				cmd, err := b.loadHistory()
				if err != nil {
					b.raiseError(err)
					return b, nil
				}
				return b, cmd
			}
		case bubblesKey.Matches(msg, b.keymap.selectOne, b.keymap.confirm):
			if b.historyC.SelectedItem() != nil {
				record := b.historyC.SelectedItem().(*listItem).internal.(*history.SavedItem)
				b.progressStatus = fmt.Sprintf("Resuming %s...", record.String())
				b.newState(loadingState)
				return b, tea.Batch(b.startLoading(), b.playFromHistory(record), b.waitForSession())
			}
		}
	}

	b.historyC, cmd = b.historyC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.confirm) && b.inputC.Value() != "":
			b.progressStatus = fmt.Sprintf("Searching for %s...", b.inputC.Value())
			b.newState(loadingState)
			term := b.inputC.Value()
			go func() {
				util.Ignore(func() error { return query.Remember(term, 1) })
			}()
			return b, tea.Batch(b.searchItems(term), b.waitForItems(), b.startLoading())
		case bubblesKey.Matches(msg, b.keymap.acceptSearchSuggestion) && b.searchSuggestion.IsPresent():
			b.inputC.SetValue(b.searchSuggestion.MustGet())
			b.searchSuggestion = mo.None[string]()
			b.inputC.SetCursor(len(b.inputC.Value()))
			return b, nil
		}
	}

	b.inputC, cmd = b.inputC.Update(msg)

	if b.inputC.Value() != "" && viper.GetBool(key.SearchShowQuerySuggestions) {
		if suggestion, ok := query.Suggest(b.inputC.Value()).Get(); ok && suggestion != b.inputC.Value() {
			b.searchSuggestion = mo.Some(suggestion)
		} else {
			b.searchSuggestion = mo.None[string]()
		}
	} else if b.searchSuggestion.IsPresent() {
		b.searchSuggestion = mo.None[string]()
	}

	return b, cmd
}

func (b *statefulBubble) updateItems(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.up):
			if n := len(b.itemsC.Items()); n > 0 && b.itemsC.Index() == 0 {
				b.itemsC.Select(n - 1)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.down):
			if n := len(b.itemsC.Items()); n > 0 && b.itemsC.Index() == n-1 {
				b.itemsC.Select(0)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.confirm, b.keymap.selectOne):
			if b.itemsC.SelectedItem() == nil {
				break
			}
			item := b.itemsC.SelectedItem().(*listItem).internal.(jellyfin.Item)
			b.selectedItem = item
			go func() {
				util.Ignore(func() error { return query.Remember(item.Name, 2) })
			}()

			if item.Type == jellyfin.ItemSeries {
				b.progressStatus = fmt.Sprintf("Loading seasons for %s...", item.Name)
				b.newState(loadingState)
				return b, tea.Batch(b.loadSeasons(item), b.waitForSeasons(), b.startLoading())
			}

			b.manager.AttachQueue(nil)
			b.progressStatus = fmt.Sprintf("Preparing %s...", item.Name)
			b.newState(loadingState)
			return b, tea.Batch(b.prepareSession(item), b.waitForSession(), b.startLoading())
		}
	}

	b.itemsC, cmd = b.itemsC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateSeasons(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.up):
			if n := len(b.seasonsC.Items()); n > 0 && b.seasonsC.Index() == 0 {
				b.seasonsC.Select(n - 1)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.down):
			if n := len(b.seasonsC.Items()); n > 0 && b.seasonsC.Index() == n-1 {
				b.seasonsC.Select(0)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.confirm, b.keymap.selectOne):
			if b.seasonsC.SelectedItem() == nil {
				break
			}
			season := b.seasonsC.SelectedItem().(*listItem).internal.(jellyfin.Item)
			b.selectedSeason = season
			b.progressStatus = fmt.Sprintf("Loading episodes for %s...", season.Name)
			b.newState(loadingState)
			return b, tea.Batch(b.loadEpisodes(b.selectedItem, season), b.waitForEpisodes(), b.startLoading())
		}
	}

	b.seasonsC, cmd = b.seasonsC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateEpisodes(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.up):
			if n := len(b.episodesC.Items()); n > 0 && b.episodesC.Index() == 0 {
				b.episodesC.Select(n - 1)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.down):
			if n := len(b.episodesC.Items()); n > 0 && b.episodesC.Index() == n-1 {
				b.episodesC.Select(0)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.selectOne):
			if b.episodesC.SelectedItem() == nil {
				break
			}
			item := b.episodesC.SelectedItem().(*listItem)
			episode := item.internal.(jellyfin.Item)

			item.toggleMark()
			if item.marked {
				b.selectedEpisodes[episode.ID] = episode
			} else {
				delete(b.selectedEpisodes, episode.ID)
			}
		case bubblesKey.Matches(msg, b.keymap.selectAll):
			for _, item := range b.episodesC.Items() {
				item := item.(*listItem)
				item.marked = true
				episode := item.internal.(jellyfin.Item)
				b.selectedEpisodes[episode.ID] = episode
			}
		case bubblesKey.Matches(msg, b.keymap.clearSelection):
			for _, item := range b.episodesC.Items() {
				item := item.(*listItem)
				item.marked = false
				episode := item.internal.(jellyfin.Item)
				delete(b.selectedEpisodes, episode.ID)
			}
		case bubblesKey.Matches(msg, b.keymap.play):
			if b.episodesC.SelectedItem() == nil {
				break
			}

			if !viper.GetBool(key.TUIPlayOnEnter) && len(b.selectedEpisodes) == 0 {
				break
			}

			first, queue := b.buildQueue()
			b.manager.AttachQueue(queue)

			b.progressStatus = fmt.Sprintf("Preparing %s...", first.DisplayTitle())
			b.newState(loadingState)
			return b, tea.Batch(b.prepareSession(first), b.waitForSession(), b.startLoading())
		}
	}

	b.episodesC, cmd = b.episodesC.Update(msg)
	return b, cmd
}

// buildQueue derives the playback queue from the episode list. A marked
// selection plays in episode order; otherwise the queue runs from the
// highlighted episode to the end of the season.
func (b *statefulBubble) buildQueue() (jellyfin.Item, *playback.Queue) {
	episodes := lo.Map(b.episodesC.Items(), func(i list.Item, _ int) jellyfin.Item {
		return i.(*listItem).internal.(jellyfin.Item)
	})

	if len(b.selectedEpisodes) > 0 {
		selected := lo.Filter(episodes, func(e jellyfin.Item, _ int) bool {
			_, ok := b.selectedEpisodes[e.ID]
			return ok
		})
		sort.Slice(selected, func(i, j int) bool {
			return selected[i].IndexNumber < selected[j].IndexNumber
		})
		return selected[0], playback.NewQueue(selected, 0)
	}

	idx := b.episodesC.Index()
	sort.Slice(episodes, func(i, j int) bool {
		return episodes[i].IndexNumber < episodes[j].IndexNumber
	})

	current := b.episodesC.SelectedItem().(*listItem).internal.(jellyfin.Item)
	for i, e := range episodes {
		if e.ID == current.ID {
			idx = i
			break
		}
	}

	return episodes[idx], playback.NewQueue(episodes, idx)
}

func (b *statefulBubble) updatePlaying(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case playbackEventMsg:
		return b.handlePlaybackEvent(playback.Event(msg))
	case overlayChangedMsg:
		b.overlayState = overlay.State(msg)
		return b, b.waitForOverlayChange()
	case overlayDismissedMsg:
		return b.finishPlayback()
	case playerExitMsg:
		return b.finishPlayback()
	case playRequestMsg:
		return b.playNext(jellyfin.Item(msg))
	case transcodeInfoMsg:
		b.transcoding = (*jellyfin.TranscodingInfo)(msg)
		return b, b.pollTranscoding()
	case tea.MouseMsg:
		return b.handleMouse(msg)
	case tea.KeyMsg:
		return b.handlePlayingKey(msg)
	}

	b.spinnerC, cmd = b.spinnerC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) handlePlaybackEvent(event playback.Event) (tea.Model, tea.Cmd) {
	switch event.Kind {
	case playback.EventProgressTick:
		b.lastPosition = event.Position
		b.lastDuration = event.Duration

		if event.Duration > 0 {
			if pct := event.Position / event.Duration * 100; pct > b.maxPercentage {
				b.maxPercentage = pct
			}
		}

		b.bridge.SetPlaybackInfo(nowplaying.PlaybackInfo{
			Position: event.Position,
			Duration: event.Duration,
			Rate:     b.rate,
			Paused:   b.manager.State() == playback.StatePaused,
		})

		b.ticksSinceReport++
		if viper.GetBool(key.PlayerReportProgress) && b.ticksSinceReport >= 15 {
			b.ticksSinceReport = 0
			report := jellyfin.PlaystateReport{
				ItemID:        b.session.Item.ID,
				MediaSourceID: b.session.Source.ID,
				PlaySessionID: b.session.PlaySessionID,
				PositionTicks: jellyfin.SecondsToTicks(event.Position),
				IsPaused:      b.manager.State() == playback.StatePaused,
			}
			go func() {
				util.Ignore(func() error {
					return b.client.ReportProgress(context.Background(), report)
				})
			}()
		}
	case playback.EventStateChanged:
		if event.State == playback.StateFailed {
			b.raiseError(event.Err)
			return b, nil
		}

		b.bridge.SetPlaybackInfo(nowplaying.PlaybackInfo{
			Position: b.lastPosition,
			Duration: b.lastDuration,
			Rate:     b.rate,
			Paused:   event.State == playback.StatePaused,
		})
	case playback.EventError:
		if event.Err != nil {
			return b, tea.Batch(b.waitForPlaybackEvent(), ui.Notify(event.Err.Error()))
		}
	}

	return b, b.waitForPlaybackEvent()
}

// handleMouse translates terminal mouse input into gesture router calls.
func (b *statefulBubble) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		b.gestures.Pinch(gesture.Changed, 1.1)
		return b, nil
	case tea.MouseButtonWheelDown:
		b.gestures.Pinch(gesture.Changed, 0.9)
		return b, nil
	}

	x, y := float64(msg.X), float64(msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft && !b.dragging {
			b.dragging = true
			b.panStarted = false
			b.dragStartX, b.dragStartY = msg.X, msg.Y
		}
	case tea.MouseActionMotion:
		if !b.dragging {
			break
		}

		tx, ty := x-float64(b.dragStartX), y-float64(b.dragStartY)

		// The pan begins on the first motion event so the axis can be
		// classified from the accumulated translation.
		if !b.panStarted {
			b.panStarted = true
			b.gestures.Pan(gesture.Began, float64(b.dragStartX), float64(b.dragStartY), tx, ty)
		}
		b.gestures.Pan(gesture.Changed, x, y, tx, ty)
	case tea.MouseActionRelease:
		if !b.dragging {
			break
		}
		b.dragging = false

		if !b.panStarted {
			b.gestures.Tap()
			break
		}

		b.panStarted = false
		b.gestures.Pan(gesture.Ended, x, y, x-float64(b.dragStartX), y-float64(b.dragStartY))
	}

	return b, nil
}

func (b *statefulBubble) handlePlayingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	progress := b.manager.Progress()
	step := seekStep()

	// Panel states route navigation keys into their list models.
	switch b.overlayState.Kind {
	case overlay.SmallMenu:
		switch {
		case bubblesKey.Matches(msg, b.keymap.confirm):
			return b.runMenuOption()
		case bubblesKey.Matches(msg, b.keymap.back):
			b.overlayM.Back()
			return b, nil
		}
		b.menuC, cmd = b.menuC.Update(msg)
		return b, cmd
	case overlay.Chapters, overlay.Supplement:
		switch {
		case bubblesKey.Matches(msg, b.keymap.confirm):
			if selected := b.chaptersC.SelectedItem(); selected != nil {
				chapter := selected.(*listItem).internal.(jellyfin.Chapter)
				b.manager.Seek(chapter.StartSeconds())
			}
			b.overlayM.CloseChapters()
			return b, nil
		case bubblesKey.Matches(msg, b.keymap.back):
			b.overlayM.Back()
			return b, nil
		}
		b.chaptersC, cmd = b.chaptersC.Update(msg)
		return b, cmd
	}

	switch {
	case bubblesKey.Matches(msg, b.keymap.back), bubblesKey.Matches(msg, b.keymap.quit):
		b.overlayM.Back()
	case bubblesKey.Matches(msg, b.keymap.togglePause):
		b.manager.TogglePause()
		b.overlayM.Interact()
	case bubblesKey.Matches(msg, b.keymap.toggleOverlay):
		b.overlayM.ToggleVisibility()
	case bubblesKey.Matches(msg, b.keymap.seekForward):
		if progress.IsScrubbing() {
			progress.ScrubBy(step)
		} else {
			b.manager.SeekBy(step)
		}
		b.overlayM.Interact()
	case bubblesKey.Matches(msg, b.keymap.seekBackward):
		if progress.IsScrubbing() {
			progress.ScrubBy(-step)
		} else {
			b.manager.SeekBy(-step)
		}
		b.overlayM.Interact()
	case bubblesKey.Matches(msg, b.keymap.scrub):
		if progress.IsScrubbing() {
			progress.EndScrub()
			b.overlayM.EndScrub()
		} else {
			progress.BeginScrub()
			b.overlayM.BeginScrub()
		}
	case bubblesKey.Matches(msg, b.keymap.confirm):
		if progress.IsScrubbing() {
			progress.EndScrub()
			b.overlayM.EndScrub()
		} else {
			b.overlayM.Interact()
		}
	case bubblesKey.Matches(msg, b.keymap.openMenu):
		b.overlayM.OpenMenu()
	case bubblesKey.Matches(msg, b.keymap.openChapters):
		b.overlayM.OpenChapters()
	case bubblesKey.Matches(msg, b.keymap.nextEp):
		if item, ok := b.manager.Next(); ok {
			return b.playNext(item)
		}
	case bubblesKey.Matches(msg, b.keymap.prevEp):
		if item, ok := b.manager.Previous(); ok {
			return b.playNext(item)
		}
	case bubblesKey.Matches(msg, b.keymap.replay):
		if b.session != nil {
			return b.playNext(b.session.Item)
		}
	case bubblesKey.Matches(msg, b.keymap.speedUp):
		b.rate = util.Min(4.0, b.rate+0.25)
		b.manager.SetRate(b.rate)
		b.overlayM.Interact()
		return b, ui.Notify(fmt.Sprintf("Speed %.2f×", b.rate))
	case bubblesKey.Matches(msg, b.keymap.speedDown):
		b.rate = util.Max(0.25, b.rate-0.25)
		b.manager.SetRate(b.rate)
		b.overlayM.Interact()
		return b, ui.Notify(fmt.Sprintf("Speed %.2f×", b.rate))
	case bubblesKey.Matches(msg, b.keymap.lock):
		locked := !b.gestures.Locked()
		b.gestures.SetLocked(locked)
		if locked {
			return b, ui.Notify("Gestures locked")
		}
		return b, ui.Notify("Gestures unlocked")
	}

	return b, nil
}

// runMenuOption executes the highlighted small-menu entry.
func (b *statefulBubble) runMenuOption() (tea.Model, tea.Cmd) {
	selected := b.menuC.SelectedItem()
	if selected == nil {
		return b, nil
	}

	switch selected.(*listItem).internal.(string) {
	case menuResume:
		b.overlayM.CloseMenu()
	case menuChapters:
		b.overlayM.CloseMenu()
		b.overlayM.OpenChapters()
	case menuToggleAspect:
		b.aspectFill = !b.aspectFill
		b.overlayM.CloseMenu()
	case menuToggleLock:
		b.gestures.SetLocked(!b.gestures.Locked())
		b.overlayM.CloseMenu()
	case menuStop:
		b.overlayM.CloseMenu()
		return b.finishPlayback()
	}

	return b, nil
}

// playNext tears down the current session and starts the given item.
func (b *statefulBubble) playNext(item jellyfin.Item) (tea.Model, tea.Cmd) {
	b.recordProgress()
	b.progressStatus = fmt.Sprintf("Preparing %s...", item.DisplayTitle())
	b.setState(loadingState)
	return b, tea.Batch(b.prepareSession(item), b.waitForSession(), b.startLoading())
}

// finishPlayback stops the manager (which always releases the now playing
// session) and lands on the post-watch menu.
func (b *statefulBubble) finishPlayback() (tea.Model, tea.Cmd) {
	b.recordProgress()
	b.manager.Stop()

	b.newState(postWatchState)
	b.postWatchC.Select(0)
	b.stopLoading()
	return b, nil
}

// recordProgress persists the final position locally and to the server.
func (b *statefulBubble) recordProgress() {
	session := b.session
	if session == nil {
		return
	}

	if viper.GetBool(key.HistorySaveOnWatch) {
		_ = history.Save(session.Item, b.lastPosition, b.maxPercentage)
	}

	if viper.GetBool(key.PlayerReportProgress) {
		report := jellyfin.PlaystateReport{
			ItemID:        session.Item.ID,
			MediaSourceID: session.Source.ID,
			PlaySessionID: session.PlaySessionID,
			PositionTicks: jellyfin.SecondsToTicks(b.lastPosition),
		}
		go func() {
			if err := b.client.ReportStopped(context.Background(), report); err != nil {
				// Queued reports are replayed on the next startup.
				util.Ignore(func() error {
					return sync.QueueFailure(sync.KindStopped, report)
				})
			}
		}()
	}
}

func (b *statefulBubble) updatePostWatch(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.up):
			if n := len(b.postWatchC.Items()); n > 0 && b.postWatchC.Index() == 0 {
				b.postWatchC.Select(n - 1)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.down):
			if n := len(b.postWatchC.Items()); n > 0 && b.postWatchC.Index() == n-1 {
				b.postWatchC.Select(0)
				return b, nil
			}
		case bubblesKey.Matches(msg, b.keymap.confirm, b.keymap.selectOne):
			if b.postWatchC.SelectedItem() == nil {
				break
			}

			switch b.postWatchC.SelectedItem().(*listItem).internal.(string) {
			case postWatchNext:
				if item, ok := b.manager.Next(); ok {
					return b.playNext(item)
				}
				b.previousState()
			case postWatchReplay:
				if b.session != nil {
					return b.playNext(b.session.Item)
				}
			case postWatchPrevious:
				if item, ok := b.manager.Previous(); ok {
					return b.playNext(item)
				}
				b.previousState()
			case postWatchBack:
				b.previousState()
				return b, nil
			}
		}
	}

	b.postWatchC, cmd = b.postWatchC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateError(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case bubblesKey.Matches(msg, b.keymap.quit):
			return b, tea.Quit
		case bubblesKey.Matches(msg, b.keymap.back):
			b.previousState()
			return b, nil
		}
	}
	return b, nil
}
