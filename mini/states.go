// Package mini implements a lightweight, minimalist interface for library search and playback.
package mini

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/vidra-cli/vidra/history"
	"github.com/vidra-cli/vidra/internal/cache"
	"github.com/vidra-cli/vidra/jellyfin"
	"github.com/vidra-cli/vidra/key"
	"github.com/vidra-cli/vidra/log"
	"github.com/vidra-cli/vidra/playback"
	"github.com/vidra-cli/vidra/player"
	"github.com/vidra-cli/vidra/query"
	"github.com/vidra-cli/vidra/util"
)

type state int

const (
	searchState state = iota + 1
	itemSelectState
	seasonSelectState
	episodeSelectState
	watchState
	historySelectState
	quitState
)

func (m *mini) handleSearchState() error {
	var searchLoop func() error
	title("Search Library")

	searchLoop = func() error {
		in, err := getInput(func(s string) bool {
			return s != ""
		})

		if err != nil {
			return err
		}

		q := in.value

		cacheKey := cache.GenerateKey(q, viper.GetString(key.ServerURL))

		var items []jellyfin.Item
		if !cache.Read(cacheKey, &items) {
			erase := progress("Searching Query..")
			items, err = m.client.Search(context.Background(), q)
			erase()
			if err != nil {
				return err
			}

			util.Ignore(func() error {
				return cache.Write(cacheKey, items)
			})
		}

		max := lo.Min([]int{len(items), viper.GetInt(key.MiniSearchLimit)})
		m.cachedItems[q] = items[:max]

		if len(m.cachedItems[q]) == 0 {
			fail("No search results found")
			return searchLoop()
		}

		util.Ignore(func() error {
			return query.Remember(q, 1)
		})

		m.query = q
		m.newState(itemSelectState)
		return nil
	}

	return searchLoop()
}

func (m *mini) handleItemSelectState() error {
	title("Query Results >>")
	b, item, err := menu(m.cachedItems[m.query])
	if err != nil {
		return err
	}

	if quit.eq(b) {
		m.newState(quitState)
		return nil
	}

	m.selectedItem = item

	if item.Type == jellyfin.ItemSeries {
		m.newState(seasonSelectState)
		return nil
	}

	m.selectedEpisodes = []jellyfin.Item{item}
	m.newState(watchState)
	return nil
}

func (m *mini) handleSeasonSelectState() error {
	erase := progress("Fetching Seasons..")
	seasons, err := m.client.Seasons(context.Background(), m.selectedItem.ID)
	erase()
	if err != nil {
		return err
	}

	if len(seasons) == 0 {
		fail("No seasons found")
		m.newState(itemSelectState)
		return nil
	}

	title(fmt.Sprintf("%s >> Seasons", m.selectedItem.Name))
	b, season, err := menu(seasons, back)
	if err != nil {
		return err
	}

	switch {
	case quit.eq(b):
		m.newState(quitState)
		return nil
	case back.eq(b):
		m.previousState()
		return nil
	}

	m.selectedSeason = season
	m.newState(episodeSelectState)
	return nil
}

func (m *mini) handleEpisodeSelectState() error {
	erase := progress("Fetching Episodes..")
	episodes, err := m.client.Episodes(context.Background(), m.selectedItem.ID, m.selectedSeason.ID)
	erase()
	if err != nil {
		return err
	}

	m.cachedEpisodes[m.selectedSeason.ID] = episodes

	if len(episodes) == 0 {
		fail("No episodes found")
		m.newState(seasonSelectState)
		return nil
	}

	title(fmt.Sprintf("To specify a range, use: start_number end_number (Episodes: 1-%d)", len(episodes)))
	oneEpisodeInput := regexp.MustCompile(`^\d+$`)
	rangeInput := regexp.MustCompile(`^\d+ \d+$`)
	in, err := getInput(func(s string) bool {
		switch {
		case rangeInput.MatchString(s):
			l := strings.Split(s, " ")
			a, err := strconv.ParseInt(l[0], 10, 16)
			if err != nil {
				return false
			}

			b, err := strconv.ParseInt(l[1], 10, 16)
			if err != nil {
				return false
			}

			return a < b && 0 < a && int(a) < len(episodes) && int(b) <= len(episodes)
		case oneEpisodeInput.MatchString(s):
			a, err := strconv.ParseInt(s, 10, 16)
			if err != nil {
				return false
			}

			return 0 < a && int(a) <= len(episodes)
		default:
			return s == "q"
		}
	})

	if err != nil {
		return err
	}

	m.selectedEpisodes = nil

	switch {
	case rangeInput.MatchString(in.value):
		nums := strings.Split(in.value, " ")
		from := lo.Must(strconv.ParseInt(nums[0], 10, 16))
		to := lo.Must(strconv.ParseInt(nums[1], 10, 16))

		for i := from - 1; i < to; i++ {
			m.selectedEpisodes = append(m.selectedEpisodes, episodes[i])
		}
	case oneEpisodeInput.MatchString(in.value):
		num := lo.Must(strconv.ParseInt(in.value, 10, 16))
		m.selectedEpisodes = append(m.selectedEpisodes, episodes[num-1])
	case in.value == "q":
		m.newState(quitState)
		return nil
	}

	m.newState(watchState)
	return nil
}

func (m *mini) handleWatchState() error {
	type controls struct {
		next chan struct{}
		prev chan struct{}
		stop chan struct{}
		err  chan error
	}

	var watchLoop func(jellyfin.Item, *controls, bool, bool)

	watchLoop = func(item jellyfin.Item, c *controls, hasPrev, hasNext bool) {
		util.ClearScreen()
		title(fmt.Sprintf("Currently watching %s", item.DisplayTitle()))

		if err := m.play(item); err != nil {
			c.err <- err
			return
		}

		var options []*bind
		if hasPrev {
			options = append(options, prev)
		}
		if hasNext {
			options = append(options, next)
		}

		options = append(options, replay, back, search)

		b, _, err := menu([]fmt.Stringer{}, options...)
		if err != nil {
			c.err <- err
			return
		}

		switch b {
		case next:
			c.next <- struct{}{}
		case prev:
			c.prev <- struct{}{}
		case replay:
			watchLoop(item, c, hasPrev, hasNext)
		case back:
			m.previousState()
			c.stop <- struct{}{}
		case search:
			m.newState(searchState)
			c.stop <- struct{}{}
		case quit:
			m.newState(quitState)
			c.stop <- struct{}{}
		}
	}

	c := &controls{
		next: make(chan struct{}),
		prev: make(chan struct{}),
		stop: make(chan struct{}),
		err:  make(chan error),
	}

	var i int

	for {
		var (
			hasPrev = i > 0
			hasNext = i+1 < len(m.selectedEpisodes)
		)

		go watchLoop(m.selectedEpisodes[i], c, hasPrev, hasNext)

		select {
		case <-c.next:
			i++
		case <-c.prev:
			i--
		case <-c.stop:
			if m.manager != nil {
				m.manager.Stop()
			}
			return nil
		case err := <-c.err:
			return err
		}
	}
}

// play resolves a stream for the item and hands it to the playback manager,
// replacing whatever was playing before.
func (m *mini) play(item jellyfin.Item) error {
	ctx := context.Background()

	erase := progress("Preparing Stream..")
	sources, playSessionID, err := m.client.PlaybackInfo(ctx, item.ID)
	if err != nil {
		erase()
		return err
	}

	if len(sources) == 0 {
		erase()
		return fmt.Errorf("no playable media sources for %s", item.DisplayTitle())
	}

	session, err := playback.Resolve(m.client, item, sources[0], playSessionID)
	if err != nil {
		erase()
		return err
	}

	if m.manager == nil {
		backend, err := player.ForName(viper.GetString(key.Player))
		if err != nil {
			erase()
			return err
		}
		m.manager = playback.NewManager(backend)
	}

	erase()

	if err := m.manager.Start(session, nil); err != nil {
		return err
	}

	if viper.GetBool(key.HistorySaveOnWatch) {
		if err := history.Save(item, session.StartSeconds, 0); err != nil {
			log.Warnf("failed to save history: %v", err)
		}
	}

	if viper.GetBool(key.PlayerReportProgress) {
		util.Ignore(func() error {
			return m.client.ReportStart(ctx, jellyfin.PlaystateReport{
				ItemID:        item.ID,
				MediaSourceID: session.Source.ID,
				PlaySessionID: session.PlaySessionID,
				PositionTicks: jellyfin.SecondsToTicks(session.StartSeconds),
			})
		})
	}

	return nil
}

func (m *mini) handleHistorySelectState() error {
	h, err := history.Get()
	if err != nil {
		return err
	}

	saved := lo.Values(h)

	if len(saved) == 0 {
		fail("History is empty")
		m.newState(searchState)
		return nil
	}

	title("History Results >>")
	b, record, err := menu(saved)
	if err != nil {
		return err
	}

	if quit.eq(b) {
		m.newState(quitState)
		return nil
	}

	erase := progress("Fetching Item..")
	item, err := m.client.Item(context.Background(), record.ItemID)
	erase()
	if err != nil {
		return err
	}

	m.selectedItem = item
	m.selectedEpisodes = []jellyfin.Item{item}
	m.newState(watchState)
	return nil
}
