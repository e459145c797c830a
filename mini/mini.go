// Package mini implements a lightweight, minimalist interface for library search and playback.
package mini

import (
	"os"

	"github.com/samber/lo"
	"github.com/vidra-cli/vidra/jellyfin"
	"github.com/vidra-cli/vidra/playback"
	"github.com/vidra-cli/vidra/util"
)

var truncateAt = 100

type Options struct {
	Continue bool
}

type mini struct {
	width, height int

	state         state
	statesHistory util.Stack[state]

	client  *jellyfin.Client
	manager *playback.Manager

	cachedItems    map[string][]jellyfin.Item
	cachedEpisodes map[string][]jellyfin.Item

	query            string
	selectedItem     jellyfin.Item
	selectedSeason   jellyfin.Item
	selectedEpisodes []jellyfin.Item
}

func newMini() *mini {
	return &mini{
		statesHistory:  util.Stack[state]{},
		cachedItems:    make(map[string][]jellyfin.Item),
		cachedEpisodes: make(map[string][]jellyfin.Item),
	}
}

func (m *mini) previousState() {
	if m.statesHistory.Len() > 0 {
		m.setState(m.statesHistory.Pop())
	}
}

func (m *mini) setState(s state) {
	m.state = s
}

func (m *mini) newState(s state) {
	if m.state == s {
		return
	}

	if !lo.Contains([]state{}, m.state) {
		m.statesHistory.Push(m.state)
	}

	m.setState(s)
}

func Run(options *Options) error {
	m := newMini()
	m.state = searchState
	if options.Continue {
		m.state = historySelectState
	}

	client, err := jellyfin.FromConfig()
	if err != nil {
		return err
	}
	m.client = client

	if w, h, err := util.TerminalSize(); err == nil {
		m.width, m.height = w, h
		truncateAt = w
	}

	for {
		if err := m.handleState(); err != nil {
			return err
		}
	}
}

func (m *mini) handleState() error {
	switch m.state {
	case historySelectState:
		return m.handleHistorySelectState()
	case searchState:
		return m.handleSearchState()
	case itemSelectState:
		return m.handleItemSelectState()
	case seasonSelectState:
		return m.handleSeasonSelectState()
	case episodeSelectState:
		return m.handleEpisodeSelectState()
	case watchState:
		return m.handleWatchState()
	case quitState:
		if m.manager != nil {
			m.manager.Stop()
		}
		os.Exit(0)
	}

	return nil
}
