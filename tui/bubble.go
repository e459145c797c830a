// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/viper"

	"github.com/vidra-cli/vidra/constant"
	"github.com/vidra-cli/vidra/gesture"
	"github.com/vidra-cli/vidra/internal/ui"
	"github.com/vidra-cli/vidra/jellyfin"
	"github.com/vidra-cli/vidra/key"
	"github.com/vidra-cli/vidra/nowplaying"
	"github.com/vidra-cli/vidra/overlay"
	"github.com/vidra-cli/vidra/playback"
	"github.com/vidra-cli/vidra/player"
	"github.com/vidra-cli/vidra/style"
	"github.com/vidra-cli/vidra/util"
)

// statefulBubble encapsulates the comprehensive application state, including component models and workflow tracking.
type statefulBubble struct {
	state         state
	statesHistory util.Stack[state]
	loading       bool
	busy          bool // Protects against rapid input during async ops

	keymap *statefulKeymap

	client   *jellyfin.Client
	searcher *jellyfin.Searcher

	// components
	spinnerC   spinner.Model
	inputC     textinput.Model
	historyC   list.Model
	itemsC     list.Model
	seasonsC   list.Model
	episodesC  list.Model
	chaptersC  list.Model
	menuC      list.Model
	postWatchC list.Model
	progressC  progress.Model
	helpC      help.Model

	selectedItem     jellyfin.Item
	selectedSeason   jellyfin.Item
	selectedEpisodes map[string]jellyfin.Item // keyed by item ID

	foundItemsChannel    chan []jellyfin.Item
	foundSeasonsChannel  chan []jellyfin.Item
	foundEpisodesChannel chan []jellyfin.Item
	sessionChannel       chan *playback.Session
	overlayChannel       chan overlay.State
	dismissChannel       chan struct{}
	playRequestChannel   chan jellyfin.Item
	errorChannel         chan error

	progressStatus string

	// playback wiring
	manager      *playback.Manager
	overlayM     *overlay.Machine
	gestures     *gesture.Router
	bridge       *nowplaying.Bridge
	overlayState overlay.State

	session           *playback.Session
	transcoding       *jellyfin.TranscodingInfo
	lastPosition      float64
	lastDuration      float64
	maxPercentage     float64
	rate              float64
	ticksSinceReport  int
	supplementCompact bool
	aspectFill        bool

	dragging               bool
	panStarted             bool
	dragStartX, dragStartY int

	lastError error

	width, height    int
	searchSuggestion mo.Option[string]
	notifier         *ui.Model

	options *Options
}

// raiseError dispatches a terminal error and transitions the application to the failure view.
func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.newState(errorState)
}

// setState performs a synchronous transition of both the application workflow and its associated keymap.
func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

// newState facilitates an idempotent transition to a target state, recording the previous state in the navigation history when appropriate.
func (b *statefulBubble) newState(s state) {
	if b.state == s {
		return
	}

	// Do not push these states to history
	if !lo.Contains([]state{
		loadingState,
		playingState,
	}, b.state) {
		b.statesHistory.Push(b.state)
	}

	b.setState(s)
}

// previousState restores the application to its immediate predecessor in the navigation stack.
func (b *statefulBubble) previousState() {
	if b.statesHistory.Len() > 0 {
		b.setState(b.statesHistory.Pop())
	}
}

// resize propagates terminal dimension changes to all child component models.
func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	xx, yy := listExtraPaddingStyle.GetFrameSize()

	styledWidth := width - x
	styledHeight := height - y

	listWidth := width - xx
	listHeight := height - yy

	for _, l := range []*list.Model{&b.historyC, &b.itemsC, &b.seasonsC, &b.episodesC, &b.chaptersC, &b.menuC, &b.postWatchC} {
		l.SetSize(listWidth, listHeight)
		l.Help.Width = listWidth
	}

	b.progressC.Width = listWidth

	b.width = styledWidth
	b.height = styledHeight
	b.helpC.Width = listWidth
}

// startLoading enters a concurrent loading state, initializing visual indicators across child components.
func (b *statefulBubble) startLoading() tea.Cmd {
	b.loading = true
	b.busy = true
	return tea.Batch(b.itemsC.StartSpinner(), b.episodesC.StartSpinner(), b.spinnerC.Tick)
}

// stopLoading exits the loading state and synchronizes child component visual indicators.
func (b *statefulBubble) stopLoading() tea.Cmd {
	b.loading = false
	b.busy = false
	b.itemsC.StopSpinner()
	b.episodesC.StopSpinner()
	return nil
}

// shutdown tears down playback and the now playing surface on program exit.
func (b *statefulBubble) shutdown() {
	if b.overlayM != nil {
		b.overlayM.Close()
	}
	if b.manager != nil {
		b.manager.Stop()
	}
}

// newBubble performs a complete initialization of the application's primary UI model.
func newBubble(options *Options) (*statefulBubble, error) {
	client, err := jellyfin.FromConfig()
	if err != nil {
		return nil, err
	}

	backend, err := player.ForName(viper.GetString(key.Player))
	if err != nil {
		return nil, err
	}

	keymap := newStatefulKeymap()
	bubble := statefulBubble{
		statesHistory: util.Stack[state]{},
		keymap:        keymap,

		client:   client,
		searcher: jellyfin.NewSearcher(client),
		manager:  playback.NewManager(backend),

		foundItemsChannel:    make(chan []jellyfin.Item),
		foundSeasonsChannel:  make(chan []jellyfin.Item),
		foundEpisodesChannel: make(chan []jellyfin.Item),
		sessionChannel:       make(chan *playback.Session),
		overlayChannel:       make(chan overlay.State, 8),
		dismissChannel:       make(chan struct{}, 1),
		playRequestChannel:   make(chan jellyfin.Item, 1),
		errorChannel:         make(chan error),

		selectedEpisodes: make(map[string]jellyfin.Item),

		rate: 1.0,

		notifier: &ui.Model{},
	}

	bubble.overlayM = overlay.NewMachine(overlay.Options{
		IdleTimeout:         overlayTimeout(key.PlayerOverlayTimeout, overlay.DefaultIdleTimeout),
		ConfirmCloseTimeout: overlayTimeout(key.PlayerConfirmCloseTimeout, overlay.DefaultConfirmCloseTimeout),
		OnChange: func(s overlay.State) {
			select {
			case bubble.overlayChannel <- s:
			default:
			}
		},
		OnDismiss: func() {
			select {
			case bubble.dismissChannel <- struct{}{}:
			default:
			}
		},
	})

	bubble.gestures = gesture.NewRouter(bubble.overlayM.IsPresentingSupplement)
	bubble.bridge = nowplaying.NewBridge(newSurface())
	bubble.manager.AttachReleaser(bubble.bridge)

	type listOptions struct {
		TitleStyle mo.Option[lipgloss.Style]
	}

	makeList := func(title string, description bool, options *listOptions) list.Model {
		delegate := list.NewDefaultDelegate()
		delegate.SetSpacing(viper.GetInt(key.TUIItemSpacing))
		delegate.ShowDescription = description
		delegate.Styles.SelectedTitle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(style.AccentColor).
			Foreground(style.AccentColor).
			Padding(0, 0, 0, 1)
		delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.Foreground(lipgloss.Color("7"))
		delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle

		listC := list.New([]list.Item{}, delegate, 0, 0)
		listC.KeyMap = bubble.keymap.forList()
		listC.AdditionalShortHelpKeys = bubble.keymap.ShortHelp
		listC.AdditionalFullHelpKeys = func() []bubblesKey.Binding {
			return bubble.keymap.FullHelp()[0]
		}
		listC.Title = title
		listC.Styles.NoItems = paddingStyle
		if titleStyle, ok := options.TitleStyle.Get(); ok {
			listC.Styles.Title = titleStyle
		}
		listC.StatusMessageLifetime = time.Hour * 999
		listC.SetShowPagination(false)
		listC.SetShowStatusBar(false)

		return listC
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	bubble.inputC = textinput.New()
	bubble.inputC.Placeholder = fmt.Sprintf("Search Library (v%s)", constant.Version)
	bubble.inputC.CharLimit = 60
	bubble.inputC.Prompt = viper.GetString(key.TUISearchPromptString)

	bubble.progressC = progress.New(progress.WithDefaultGradient())

	bubble.historyC = makeList("History", true, &listOptions{
		TitleStyle: mo.Some(
			lipgloss.NewStyle().Foreground(style.Base).Background(style.Yellow).Padding(0, 1),
		),
	})
	bubble.historyC.SetStatusBarItemName("entry", "entries")

	bubble.itemsC = makeList("Library Results", true, &listOptions{
		TitleStyle: mo.Some(
			lipgloss.NewStyle().Foreground(style.Base).Background(style.Lavender).Padding(0, 1),
		),
	})
	bubble.itemsC.SetStatusBarItemName("item", "items")

	bubble.seasonsC = makeList("Seasons", false, &listOptions{
		TitleStyle: mo.Some(
			lipgloss.NewStyle().Foreground(style.Base).Background(style.Teal).Padding(0, 1),
		),
	})
	bubble.seasonsC.SetStatusBarItemName("season", "seasons")

	bubble.episodesC = makeList("Episodes", true, &listOptions{
		TitleStyle: mo.Some(
			lipgloss.NewStyle().Foreground(style.Base).Background(style.Peach).Padding(0, 1),
		),
	})
	bubble.episodesC.SetStatusBarItemName("episode", "episodes")

	bubble.chaptersC = makeList("Chapters", true, &listOptions{
		TitleStyle: mo.Some(
			lipgloss.NewStyle().Foreground(style.Base).Background(style.Blue).Padding(0, 1),
		),
	})
	bubble.chaptersC.SetStatusBarItemName("chapter", "chapters")

	bubble.menuC = makeList("Menu", false, &listOptions{
		TitleStyle: mo.Some(
			lipgloss.NewStyle().Foreground(style.Base).Background(style.Sapphire).Padding(0, 1),
		),
	})
	bubble.menuC.SetItems([]list.Item{
		&listItem{internal: menuResume},
		&listItem{internal: menuChapters},
		&listItem{internal: menuToggleAspect},
		&listItem{internal: menuToggleLock},
		&listItem{internal: menuStop},
	})
	bubble.menuC.SetStatusBarItemName("option", "options")

	bubble.postWatchC = makeList("Post-Watch Menu", false, &listOptions{
		TitleStyle: mo.Some(
			lipgloss.NewStyle().Foreground(style.Base).Background(style.Mauve).Padding(0, 1),
		),
	})
	bubble.postWatchC.SetItems([]list.Item{
		&listItem{internal: postWatchNext},
		&listItem{internal: postWatchReplay},
		&listItem{internal: postWatchPrevious},
		&listItem{internal: postWatchBack},
	})
	bubble.postWatchC.SetStatusBarItemName("option", "options")

	bubble.options = options

	bubble.registerGestures()

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	bubble.inputC.Focus()

	return &bubble, nil
}

// Menu entries rendered in the small overlay menu and the post-watch list.
const (
	menuResume       = "Resume"
	menuChapters     = "Chapters"
	menuToggleAspect = "Toggle Aspect Fill"
	menuToggleLock   = "Toggle Gesture Lock"
	menuStop         = "Stop Playback"

	postWatchNext     = "Next"
	postWatchReplay   = "Replay"
	postWatchPrevious = "Previous"
	postWatchBack     = "Back to Episodes"
)

func overlayTimeout(configKey string, fallback time.Duration) time.Duration {
	if seconds := viper.GetFloat64(configKey); seconds > 0 {
		return time.Duration(seconds * float64(time.Second))
	}
	return fallback
}
