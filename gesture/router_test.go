package gesture

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPanClassification(t *testing.T) {
	Convey("Pan classification", t, func() {
		router := NewRouter(nil)

		var horizontal, vertical []PanState
		router.RegisterPan(DirectionHorizontal, func(s PanState) {
			horizontal = append(horizontal, s)
		}, func() float64 { return 0.25 })
		router.RegisterPan(DirectionVertical, func(s PanState) {
			vertical = append(vertical, s)
		}, func() float64 { return 0.8 })

		Convey("A mostly-horizontal start picks the horizontal handler", func() {
			router.Pan(Began, 100, 50, 10, 2)
			So(horizontal, ShouldHaveLength, 1)
			So(vertical, ShouldBeEmpty)
			So(horizontal[0].Direction, ShouldEqual, DirectionHorizontal)
			So(horizontal[0].StartValue, ShouldEqual, 0.25)
		})

		Convey("A mostly-vertical start picks the vertical handler", func() {
			router.Pan(Began, 100, 50, 2, 10)
			So(vertical, ShouldHaveLength, 1)
			So(horizontal, ShouldBeEmpty)
			So(vertical[0].StartValue, ShouldEqual, 0.8)
		})

		Convey("The handler is fixed for the gesture's duration", func() {
			router.Pan(Began, 100, 50, 10, 2)

			// Drifts vertical mid-gesture; the horizontal handler keeps it.
			router.Pan(Changed, 102, 90, 12, 40)
			router.Pan(Ended, 102, 120, 12, 70)

			So(horizontal, ShouldHaveLength, 3)
			So(vertical, ShouldBeEmpty)
			So(horizontal[2].Phase, ShouldEqual, Ended)
		})

		Convey("Start location and value never change after Began", func() {
			router.Pan(Began, 100, 50, 10, 2)
			router.Pan(Changed, 180, 55, 90, 7)

			So(horizontal[1].StartX, ShouldEqual, 100)
			So(horizontal[1].StartY, ShouldEqual, 50)
			So(horizontal[1].StartValue, ShouldEqual, 0.25)
			So(horizontal[1].X, ShouldEqual, 180)
		})

		Convey("Phases after an end are dropped", func() {
			router.Pan(Began, 100, 50, 10, 2)
			router.Pan(Ended, 110, 50, 20, 2)
			router.Pan(Changed, 120, 50, 30, 2)

			So(horizontal, ShouldHaveLength, 2)
		})

		Convey("A fallback handler catches unmatched directions", func() {
			fallback := NewRouter(nil)
			var any []PanState
			fallback.RegisterPan(DirectionAny, func(s PanState) {
				any = append(any, s)
			}, nil)

			fallback.Pan(Began, 0, 0, 2, 10)
			So(any, ShouldHaveLength, 1)
			So(any[0].Direction, ShouldEqual, DirectionVertical)
		})
	})
}

func TestPanWithSupplement(t *testing.T) {
	Convey("Pans starting over a supplement panel", t, func() {
		supplementOpen := false
		router := NewRouter(func() bool { return supplementOpen })

		var scrubs, panel []PanState
		router.RegisterPan(DirectionHorizontal, func(s PanState) {
			scrubs = append(scrubs, s)
		}, nil)
		router.RegisterSupplementPan(func(s PanState) {
			panel = append(panel, s)
		}, nil)

		Convey("Route to the supplement handler, flagged as such", func() {
			supplementOpen = true
			router.Pan(Began, 10, 10, 8, 1)

			So(panel, ShouldHaveLength, 1)
			So(scrubs, ShouldBeEmpty)
			So(panel[0].StartedWithSupplement, ShouldBeTrue)
		})

		Convey("The routing sticks even if the panel closes mid-gesture", func() {
			supplementOpen = true
			router.Pan(Began, 10, 10, 8, 1)

			supplementOpen = false
			router.Pan(Changed, 30, 10, 28, 1)
			router.Pan(Ended, 40, 10, 38, 1)

			So(panel, ShouldHaveLength, 3)
			So(scrubs, ShouldBeEmpty)
		})
	})
}

func TestPinch(t *testing.T) {
	Convey("Pinch", t, func() {
		supplementOpen := false
		router := NewRouter(func() bool { return supplementOpen })

		var fills []bool
		router.OnAspectFill(func(fill bool) {
			fills = append(fills, fill)
		})

		Convey("Scale above one fills, below one unfills", func() {
			router.Pinch(Changed, 1.4)
			router.Pinch(Changed, 0.6)
			So(fills, ShouldResemble, []bool{true, false})
		})

		Convey("A scale of exactly one does nothing", func() {
			router.Pinch(Changed, 1.0)
			So(fills, ShouldBeEmpty)
		})

		Convey("Ended pinches are ignored", func() {
			router.Pinch(Ended, 1.4)
			So(fills, ShouldBeEmpty)
		})

		Convey("Pinches over a supplement panel are ignored", func() {
			supplementOpen = true
			router.Pinch(Changed, 1.4)
			So(fills, ShouldBeEmpty)
		})

		Convey("The gesture lock suppresses pinches", func() {
			router.SetLocked(true)
			router.Pinch(Changed, 1.4)
			So(fills, ShouldBeEmpty)
		})
	})
}

func TestTap(t *testing.T) {
	Convey("Tap", t, func() {
		supplementOpen := false
		router := NewRouter(func() bool { return supplementOpen })

		overlayToggles, compactToggles := 0, 0
		router.OnToggleOverlay(func() { overlayToggles++ })
		router.OnToggleCompact(func() { compactToggles++ })

		Convey("Over bare video, taps toggle the overlay", func() {
			router.Tap()
			So(overlayToggles, ShouldEqual, 1)
			So(compactToggles, ShouldEqual, 0)
		})

		Convey("Over a supplement panel, taps toggle compact controls", func() {
			supplementOpen = true
			router.Tap()
			So(overlayToggles, ShouldEqual, 0)
			So(compactToggles, ShouldEqual, 1)
		})

		Convey("The gesture lock suppresses taps", func() {
			router.SetLocked(true)
			router.Tap()
			So(overlayToggles, ShouldEqual, 0)
			So(compactToggles, ShouldEqual, 0)
		})
	})
}

func TestGestureLockOnPan(t *testing.T) {
	Convey("Gesture lock on pans", t, func() {
		router := NewRouter(nil)

		var states []PanState
		router.RegisterPan(DirectionHorizontal, func(s PanState) {
			states = append(states, s)
		}, nil)

		Convey("A locked router drops the whole gesture", func() {
			router.SetLocked(true)
			router.Pan(Began, 0, 0, 10, 0)
			router.Pan(Changed, 10, 0, 20, 0)

			router.SetLocked(false)
			// The gesture began while locked; unlocking mid-gesture does
			// not resurrect it.
			router.Pan(Ended, 20, 0, 30, 0)

			So(states, ShouldBeEmpty)
		})
	})
}
