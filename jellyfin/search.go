// Package jellyfin implements a typed client for Jellyfin-compatible media server REST APIs.
package jellyfin

import (
	"context"
	"errors"
	"sync"

	"github.com/vidra-cli/vidra/log"
)

// SearchFunc executes one library search.
type SearchFunc func(ctx context.Context, term string) ([]Item, error)

// Searcher serializes library searches so that UI state always reflects the
// most recent request. Starting a new search cancels the in-flight one; a
// superseded search never delivers results, even if its response arrives
// after the newer search completes.
type Searcher struct {
	run SearchFunc

	mu     sync.Mutex
	cancel context.CancelFunc
	seq    uint64
}

// NewSearcher creates a Searcher backed by the client's library search.
func NewSearcher(client *Client) *Searcher {
	return &Searcher{run: client.Search}
}

// NewSearcherFunc creates a Searcher backed by an arbitrary search function.
func NewSearcherFunc(run SearchFunc) *Searcher {
	return &Searcher{run: run}
}

// Search starts a search for term, superseding any in-flight search.
// deliver is invoked at most once, from a background goroutine, and only when
// this search is still the most recent one. Cancellation of a superseded
// search is filtered out and never delivered as an error.
func (s *Searcher) Search(ctx context.Context, term string, deliver func(items []Item, err error)) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	searchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	go func() {
		defer cancel()

		items, err := s.run(searchCtx, term)

		s.mu.Lock()
		latest := seq == s.seq
		s.mu.Unlock()

		if !latest {
			// A newer search owns the UI state now; drop this result unconditionally.
			return
		}

		if errors.Is(err, context.Canceled) {
			log.Debugf("search %q superseded", term)
			return
		}

		deliver(items, err)
	}()
}

// Cancel aborts the in-flight search, if any, without starting a new one.
func (s *Searcher) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.seq++
}
