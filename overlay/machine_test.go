package overlay

import (
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

const (
	testIdle    = 80 * time.Millisecond
	testConfirm = 50 * time.Millisecond

	// Long enough for any armed timer to fire, short enough to keep the
	// suite fast.
	settle = 150 * time.Millisecond
)

type recorder struct {
	mu        sync.Mutex
	states    []State
	dismissed int
}

func (r *recorder) change(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) dismiss() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dismissed++
}

func (r *recorder) dismissals() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dismissed
}

func newTestMachine() (*Machine, *recorder) {
	rec := &recorder{}
	m := NewMachine(Options{
		IdleTimeout:         testIdle,
		ConfirmCloseTimeout: testConfirm,
		OnChange:            rec.change,
		OnDismiss:           rec.dismiss,
	})
	return m, rec
}

func TestOverlayVisibility(t *testing.T) {
	Convey("Overlay visibility", t, func() {
		m, _ := newTestMachine()
		defer m.Close()

		So(m.State().Kind, ShouldEqual, Hidden)

		Convey("A tap shows the main overlay", func() {
			m.ToggleVisibility()
			So(m.State().Kind, ShouldEqual, Main)

			Convey("And a second tap hides it again", func() {
				m.ToggleVisibility()
				So(m.State().Kind, ShouldEqual, Hidden)
			})

			Convey("And the idle timer hides it on expiry", func() {
				time.Sleep(settle)
				So(m.State().Kind, ShouldEqual, Hidden)
			})
		})
	})
}

func TestOverlayIdleTimerRestart(t *testing.T) {
	Convey("Idle timer restart", t, func() {
		m, _ := newTestMachine()
		defer m.Close()

		m.ToggleVisibility()
		So(m.State().Kind, ShouldEqual, Main)

		Convey("Interactions faster than the timeout never let it dismiss", func() {
			deadline := time.Now().Add(3 * testIdle)
			for time.Now().Before(deadline) {
				m.Interact()
				time.Sleep(testIdle / 4)
				So(m.State().Kind, ShouldEqual, Main)
			}

			Convey("Once interactions stop, it hides after one full timeout", func() {
				time.Sleep(settle)
				So(m.State().Kind, ShouldEqual, Hidden)
			})
		})

		Convey("An interaction while hidden shows the overlay", func() {
			m.ToggleVisibility()
			So(m.State().Kind, ShouldEqual, Hidden)

			m.Interact()
			So(m.State().Kind, ShouldEqual, Main)
		})
	})
}

func TestOverlayConfirmClose(t *testing.T) {
	Convey("Confirm close", t, func() {
		m, rec := newTestMachine()
		defer m.Close()

		m.ToggleVisibility()

		Convey("A single back press opens the prompt without dismissing", func() {
			m.Back()
			So(m.State().Kind, ShouldEqual, ConfirmClose)
			So(rec.dismissals(), ShouldEqual, 0)

			Convey("A second press inside the window dismisses the player", func() {
				m.Back()
				So(rec.dismissals(), ShouldEqual, 1)
				So(m.State().Kind, ShouldEqual, Hidden)
			})

			Convey("Letting the window lapse reverts to hidden without dismissing", func() {
				time.Sleep(settle)
				So(m.State().Kind, ShouldEqual, Hidden)
				So(rec.dismissals(), ShouldEqual, 0)
			})
		})

		Convey("The prompt's own window is shorter than the idle timeout", func() {
			m.Back()
			time.Sleep(testConfirm + 20*time.Millisecond)
			So(m.State().Kind, ShouldEqual, Hidden)
		})

		Convey("Back from a panel returns to main instead of prompting", func() {
			m.OpenMenu()
			m.Back()
			So(m.State().Kind, ShouldEqual, Main)
			So(rec.dismissals(), ShouldEqual, 0)
		})
	})
}

func TestOverlayModalStates(t *testing.T) {
	Convey("Modal states pause the idle timer", t, func() {
		m, _ := newTestMachine()
		defer m.Close()

		m.ToggleVisibility()

		Convey("The options menu stays up past the idle timeout", func() {
			m.OpenMenu()
			time.Sleep(settle)
			So(m.State().Kind, ShouldEqual, SmallMenu)

			Convey("Closing it returns to main and rearms the timer", func() {
				m.CloseMenu()
				So(m.State().Kind, ShouldEqual, Main)

				time.Sleep(settle)
				So(m.State().Kind, ShouldEqual, Hidden)
			})
		})

		Convey("The chapter list behaves the same way", func() {
			m.OpenChapters()
			time.Sleep(settle)
			So(m.State().Kind, ShouldEqual, Chapters)

			m.CloseChapters()
			So(m.State().Kind, ShouldEqual, Main)
		})
	})
}

func TestOverlayScrubbing(t *testing.T) {
	Convey("Scrubbing holds the overlay open", t, func() {
		m, _ := newTestMachine()
		defer m.Close()

		Convey("Beginning a scrub forces the overlay visible", func() {
			So(m.State().Kind, ShouldEqual, Hidden)

			m.BeginScrub()
			So(m.State().Kind, ShouldEqual, Main)
			So(m.IsScrubbing(), ShouldBeTrue)

			Convey("And it never idles out mid-scrub", func() {
				time.Sleep(settle)
				So(m.State().Kind, ShouldEqual, Main)
			})

			Convey("Ending the scrub rearms the idle timer", func() {
				m.EndScrub()
				So(m.IsScrubbing(), ShouldBeFalse)
				So(m.State().Kind, ShouldEqual, Main)

				time.Sleep(settle)
				So(m.State().Kind, ShouldEqual, Hidden)
			})
		})
	})
}

func TestOverlaySupplement(t *testing.T) {
	Convey("Supplement panels", t, func() {
		m, _ := newTestMachine()
		defer m.Close()

		m.ToggleVisibility()

		Convey("Presenting a panel sets the supplement flag", func() {
			m.PresentSupplement("chapters-abc")

			state := m.State()
			So(state.Kind, ShouldEqual, Supplement)
			So(state.SupplementID, ShouldEqual, "chapters-abc")
			So(m.IsPresentingSupplement(), ShouldBeTrue)

			Convey("The idle timer is paused while presented", func() {
				time.Sleep(settle)
				So(m.State().Kind, ShouldEqual, Supplement)
			})

			Convey("Dismissing returns to main", func() {
				m.DismissSupplement()
				So(m.State().Kind, ShouldEqual, Main)
				So(m.IsPresentingSupplement(), ShouldBeFalse)
			})
		})
	})
}
