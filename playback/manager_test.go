package playback

import (
	"errors"
	"net/url"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/vidra-cli/vidra/jellyfin"
	"github.com/vidra-cli/vidra/player"
)

// fakeBackend records calls instead of driving a real player process.
type fakeBackend struct {
	mu sync.Mutex

	playedURL   string
	playedTitle string
	playErr     error
	closeErr    error

	paused   bool
	position float64
	seeks    []float64
	rate     float64
	chapters []player.Chapter
	closed   bool

	tick   func(timePos, duration float64)
	exited chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{exited: make(chan struct{})}
}

func (f *fakeBackend) Play(url, title string, headers map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.playErr != nil {
		return f.playErr
	}
	f.playedURL = url
	f.playedTitle = title
	return nil
}

func (f *fakeBackend) SetPaused(paused bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = paused
	return nil
}

func (f *fakeBackend) TogglePause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = !f.paused
	return nil
}

func (f *fakeBackend) GetTimePos() (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position, nil
}

func (f *fakeBackend) GetDuration() (float64, error)      { return 3600, nil }
func (f *fakeBackend) GetPercentWatched() (float64, error) { return 0, nil }

func (f *fakeBackend) GetPausedStatus() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paused, nil
}

func (f *fakeBackend) HasActivePlayback() (bool, error) { return true, nil }

func (f *fakeBackend) Seek(seconds float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeks = append(f.seeks, seconds)
	f.position = seconds
	return nil
}

func (f *fakeBackend) SetRate(rate float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rate = rate
	return nil
}

func (f *fakeBackend) SetChapters(chapters []player.Chapter) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chapters = chapters
	return nil
}

func (f *fakeBackend) IsRunning() bool { return !f.closed }

func (f *fakeBackend) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return f.closeErr
}

func (f *fakeBackend) Socket() string { return "fake" }

func (f *fakeBackend) StartIPCTicker(callback func(timePos, duration float64)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tick = callback
}

func (f *fakeBackend) StopIPCTicker()        {}
func (f *fakeBackend) Wait() <-chan struct{} { return f.exited }

// fakeReleaser counts EndSession calls.
type fakeReleaser struct {
	ended int
}

func (f *fakeReleaser) EndSession() { f.ended++ }

func testSession() *Session {
	u, _ := url.Parse("https://server:8096/Videos/abc/stream?static=true")
	return &Session{
		Item:          jellyfin.Item{ID: "abc", Name: "Dune", Type: jellyfin.ItemMovie},
		URL:           u,
		StreamType:    StreamDirect,
		PlaySessionID: "ps1",
	}
}

func TestManagerLifecycle(t *testing.T) {
	Convey("Manager lifecycle", t, func() {
		backend := newFakeBackend()
		manager := NewManager(backend)

		So(manager.State(), ShouldEqual, StateIdle)

		Convey("Start moves through loading into playing", func() {
			err := manager.Start(testSession(), nil)
			So(err, ShouldBeNil)
			So(manager.State(), ShouldEqual, StatePlaying)
			So(backend.playedURL, ShouldEqual, "https://server:8096/Videos/abc/stream?static=true")
			So(backend.playedTitle, ShouldEqual, "Dune")
		})

		Convey("A backend start failure is terminal for the attempt", func() {
			backend.playErr = errors.New("no such codec")

			err := manager.Start(testSession(), nil)
			So(err, ShouldNotBeNil)
			So(manager.State(), ShouldEqual, StateFailed)

			Convey("And the failure event carries the cause", func() {
				loading := <-manager.Events()
				So(loading.Kind, ShouldEqual, EventStateChanged)
				So(loading.State, ShouldEqual, StateLoading)

				failure := <-manager.Events()
				So(failure.Kind, ShouldEqual, EventStateChanged)
				So(failure.State, ShouldEqual, StateFailed)
				So(failure.Err, ShouldNotBeNil)
				So(failure.Err.Error(), ShouldContainSubstring, "no such codec")
			})
		})

		Convey("A resume position is seeked once on start", func() {
			session := testSession()
			session.StartSeconds = 120

			So(manager.Start(session, nil), ShouldBeNil)
			So(backend.seeks, ShouldResemble, []float64{120})
		})

		Convey("Chapters are pushed into the backend", func() {
			session := testSession()
			session.Chapters = []jellyfin.Chapter{
				{Name: "Opening", StartPositionTicks: 0},
				{Name: "Part Two", StartPositionTicks: 600 * jellyfin.TicksPerSecond},
			}

			So(manager.Start(session, nil), ShouldBeNil)
			So(backend.chapters, ShouldHaveLength, 2)
			So(backend.chapters[1].StartSeconds, ShouldEqual, 600)
		})

		Convey("Pause and Play toggle between playing and paused only", func() {
			manager.Pause()
			So(manager.State(), ShouldEqual, StateIdle)

			So(manager.Start(testSession(), nil), ShouldBeNil)

			manager.Pause()
			So(manager.State(), ShouldEqual, StatePaused)
			So(backend.paused, ShouldBeTrue)

			manager.Play()
			So(manager.State(), ShouldEqual, StatePlaying)
			So(backend.paused, ShouldBeFalse)

			manager.TogglePause()
			So(manager.State(), ShouldEqual, StatePaused)
		})

		Convey("A new session never inherits the previous one's scrub state", func() {
			So(manager.Start(testSession(), nil), ShouldBeNil)

			progress := manager.Progress()
			progress.Update(100, 3600)
			progress.BeginScrub()
			progress.ScrubTo(500)

			// Session dies mid-scrub; nothing ever commits or cancels it.
			manager.Stop()
			So(progress.IsScrubbing(), ShouldBeFalse)

			So(manager.Start(testSession(), nil), ShouldBeNil)
			So(progress.Displayed(), ShouldEqual, 0)

			progress.Update(5, 3600)
			So(progress.IsScrubbing(), ShouldBeFalse)
			So(progress.Displayed(), ShouldEqual, 5)
		})

		Convey("Stop tears down and lands in stopped", func() {
			So(manager.Start(testSession(), nil), ShouldBeNil)

			manager.Stop()
			So(manager.State(), ShouldEqual, StateStopped)
			So(backend.closed, ShouldBeTrue)
		})
	})
}

func TestManagerSeek(t *testing.T) {
	Convey("Manager seek", t, func() {
		backend := newFakeBackend()
		manager := NewManager(backend)
		So(manager.Start(testSession(), nil), ShouldBeNil)

		Convey("Repeating an absolute seek lands on the same position", func() {
			manager.Seek(300)
			first := backend.position

			manager.Seek(300)
			So(backend.position, ShouldEqual, first)
			So(backend.position, ShouldEqual, 300)

			// Both calls are still forwarded to the backend.
			So(backend.seeks, ShouldResemble, []float64{300, 300})
		})

		Convey("Negative targets clamp to the start", func() {
			manager.Seek(-10)
			So(backend.position, ShouldEqual, 0)
		})

		Convey("Ending a scrub seeks through the manager", func() {
			progress := manager.Progress()
			progress.Update(100, 3600)
			progress.BeginScrub()
			progress.ScrubTo(500)
			progress.EndScrub()

			So(backend.seeks, ShouldResemble, []float64{500})
		})
	})
}

func TestManagerQueue(t *testing.T) {
	Convey("Manager queue advance", t, func() {
		backend := newFakeBackend()
		manager := NewManager(backend)

		Convey("Without a queue, next and previous are quiet no-ops", func() {
			_, ok := manager.Next()
			So(ok, ShouldBeFalse)

			_, ok = manager.Previous()
			So(ok, ShouldBeFalse)
		})

		Convey("With a queue, advance walks the episode list", func() {
			episodes := []jellyfin.Item{
				{ID: "e1", IndexNumber: 1},
				{ID: "e2", IndexNumber: 2},
				{ID: "e3", IndexNumber: 3},
			}
			manager.AttachQueue(NewQueue(episodes, 0))

			next, ok := manager.Next()
			So(ok, ShouldBeTrue)
			So(next.ID, ShouldEqual, "e2")

			next, ok = manager.Next()
			So(ok, ShouldBeTrue)
			So(next.ID, ShouldEqual, "e3")

			_, ok = manager.Next()
			So(ok, ShouldBeFalse)

			prev, ok := manager.Previous()
			So(ok, ShouldBeTrue)
			So(prev.ID, ShouldEqual, "e2")
		})
	})
}

func TestManagerTeardown(t *testing.T) {
	Convey("Manager teardown", t, func() {
		backend := newFakeBackend()
		manager := NewManager(backend)
		releaser := &fakeReleaser{}
		manager.AttachReleaser(releaser)

		Convey("Stop releases now-playing resources", func() {
			So(manager.Start(testSession(), nil), ShouldBeNil)
			manager.Stop()
			So(releaser.ended, ShouldEqual, 1)
		})

		Convey("Release happens even when closing the backend fails", func() {
			So(manager.Start(testSession(), nil), ShouldBeNil)
			backend.closeErr = errors.New("socket gone")

			manager.Stop()
			So(releaser.ended, ShouldEqual, 1)
			So(manager.State(), ShouldEqual, StateStopped)
		})

		Convey("Stopping an idle manager still releases", func() {
			manager.Stop()
			So(releaser.ended, ShouldEqual, 1)
		})
	})
}

func TestManagerSupplements(t *testing.T) {
	Convey("Manager supplements", t, func() {
		backend := newFakeBackend()
		manager := NewManager(backend)
		So(manager.Start(testSession(), nil), ShouldBeNil)

		drain(manager.Events())

		Convey("Replacing the supplement list notifies without touching state", func() {
			before := manager.State()

			manager.SetSupplements([]Supplement{
				{ID: "abc", Kind: SupplementChapters, Title: "Chapters"},
				{ID: "rel", Kind: SupplementRelated, Title: "More Like This"},
			})

			So(manager.State(), ShouldEqual, before)
			So(manager.Supplements(), ShouldHaveLength, 2)

			event := <-manager.Events()
			So(event.Kind, ShouldEqual, EventSupplementsChanged)
			So(event.Supplements, ShouldHaveLength, 2)
		})
	})
}

func drain(events <-chan Event) {
	for {
		select {
		case <-events:
		default:
			return
		}
	}
}
