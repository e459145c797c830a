package jellyfin

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// collector records every delivery a Searcher makes.
type collector struct {
	mu        sync.Mutex
	delivered []string
	errs      []error
}

func (c *collector) deliver(items []Item, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.errs = append(c.errs, err)
		return
	}

	for _, item := range items {
		c.delivered = append(c.delivered, item.Name)
	}
}

func (c *collector) names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]string(nil), c.delivered...)
}

func TestSearcherSupersede(t *testing.T) {
	Convey("Searcher", t, func() {
		Convey("A superseded search never delivers, even when it finishes last", func() {
			releaseA := make(chan struct{})
			bDone := make(chan struct{})
			aDone := make(chan struct{})

			searcher := NewSearcherFunc(func(ctx context.Context, term string) ([]Item, error) {
				if term == "a" {
					// Simulate a slow response that lands after the
					// newer search has already completed.
					<-releaseA
					return []Item{{Name: "result-a"}}, nil
				}
				return []Item{{Name: "result-b"}}, nil
			})

			var results collector

			searcher.Search(context.Background(), "a", func(items []Item, err error) {
				results.deliver(items, err)
				close(aDone)
			})
			searcher.Search(context.Background(), "b", func(items []Item, err error) {
				results.deliver(items, err)
				close(bDone)
			})

			<-bDone
			close(releaseA)

			aDelivered := false
			select {
			case <-aDone:
				aDelivered = true
			case <-time.After(100 * time.Millisecond):
			}

			So(aDelivered, ShouldBeFalse)

			So(results.names(), ShouldResemble, []string{"result-b"})
			So(results.errs, ShouldBeEmpty)
		})

		Convey("Cancellation of a superseded search is not surfaced as an error", func() {
			started := make(chan struct{}, 2)

			searcher := NewSearcherFunc(func(ctx context.Context, term string) ([]Item, error) {
				started <- struct{}{}
				if term == "a" {
					<-ctx.Done()
					return nil, ctx.Err()
				}
				return []Item{{Name: "result-b"}}, nil
			})

			var results collector
			done := make(chan struct{})

			searcher.Search(context.Background(), "a", results.deliver)
			<-started
			searcher.Search(context.Background(), "b", func(items []Item, err error) {
				results.deliver(items, err)
				close(done)
			})

			<-done
			So(results.names(), ShouldResemble, []string{"result-b"})
			So(results.errs, ShouldBeEmpty)
		})

		Convey("The latest search still reports genuine failures", func() {
			searcher := NewSearcherFunc(func(ctx context.Context, term string) ([]Item, error) {
				return nil, errors.New("server unreachable")
			})

			var results collector
			done := make(chan struct{})

			searcher.Search(context.Background(), "a", func(items []Item, err error) {
				results.deliver(items, err)
				close(done)
			})

			<-done
			So(results.errs, ShouldHaveLength, 1)
			So(results.errs[0].Error(), ShouldContainSubstring, "server unreachable")
		})

		Convey("Cancel aborts without delivering", func() {
			started := make(chan struct{})
			finished := make(chan struct{})

			searcher := NewSearcherFunc(func(ctx context.Context, term string) ([]Item, error) {
				close(started)
				<-ctx.Done()
				close(finished)
				return nil, ctx.Err()
			})

			var results collector

			searcher.Search(context.Background(), "a", results.deliver)
			<-started
			searcher.Cancel()
			<-finished

			time.Sleep(50 * time.Millisecond)
			So(results.names(), ShouldBeEmpty)
			So(results.errs, ShouldBeEmpty)
		})
	})
}
