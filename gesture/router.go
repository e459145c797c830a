// Package gesture classifies raw pointer input and re-dispatches it to
// playback actions. One pan recognizer serves several purposes (scrubbing,
// volume, panel reveal), so the handler is resolved once at gesture start
// from the pan's initial direction and stays fixed until the gesture ends; a
// diagonal drag crossing a direction threshold mid-gesture never switches
// handlers.
package gesture

import (
	"math"
	"sync"
)

// Phase is the lifecycle stage of a continuous gesture.
type Phase int

const (
	Began Phase = iota
	Changed
	Ended
	Cancelled
)

// Direction classifies a pan by its dominant axis at gesture start.
type Direction int

const (
	// DirectionAny matches a pan regardless of axis; used as a fallback
	// registration.
	DirectionAny Direction = iota
	DirectionHorizontal
	DirectionVertical
)

// PanState is the snapshot handed to a pan handler on every phase. Start
// fields are captured when the gesture begins and never change afterwards.
type PanState struct {
	Phase     Phase
	Direction Direction

	StartX, StartY float64
	X, Y           float64

	// StartValue is the handler-domain value at gesture start, e.g. the
	// progress fraction for a scrub pan or the volume for a vertical pan.
	StartValue float64

	// StartedWithSupplement records whether a supplement panel was open
	// when the gesture began.
	StartedWithSupplement bool
}

// PanHandler receives all phases of one pan gesture.
type PanHandler func(state PanState)

// panRegistration pairs a handler with a provider for its start value.
type panRegistration struct {
	handler    PanHandler
	startValue func() float64
}

// activePan is the handler resolution captured at gesture start.
type activePan struct {
	registration panRegistration
	state        PanState
}

// Router owns gesture classification and dispatch for the playback screen.
type Router struct {
	mu sync.Mutex

	locked bool

	pans          map[Direction]panRegistration
	supplementPan *panRegistration
	active        *activePan

	supplementOpen func() bool

	onToggleOverlay  func()
	onToggleCompact  func()
	onAspectFill     func(fill bool)
}

// NewRouter creates a router. supplementOpen reports whether a supplement
// panel is currently presented; it is consulted at gesture start and for tap
// routing.
func NewRouter(supplementOpen func() bool) *Router {
	if supplementOpen == nil {
		supplementOpen = func() bool { return false }
	}
	return &Router{
		pans:           make(map[Direction]panRegistration),
		supplementOpen: supplementOpen,
	}
}

// RegisterPan installs the handler for pans starting along the given axis.
// startValue is sampled once when a matching gesture begins.
func (r *Router) RegisterPan(direction Direction, handler PanHandler, startValue func() float64) {
	if startValue == nil {
		startValue = func() float64 { return 0 }
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pans[direction] = panRegistration{handler: handler, startValue: startValue}
}

// RegisterSupplementPan installs the handler used when a pan begins while a
// supplement panel is open. Without one, such pans are ignored entirely.
func (r *Router) RegisterSupplementPan(handler PanHandler, startValue func() float64) {
	if startValue == nil {
		startValue = func() float64 { return 0 }
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.supplementPan = &panRegistration{handler: handler, startValue: startValue}
}

// OnToggleOverlay installs the handler for taps over the bare video area.
func (r *Router) OnToggleOverlay(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onToggleOverlay = fn
}

// OnToggleCompact installs the handler for taps while a supplement is open.
func (r *Router) OnToggleCompact(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onToggleCompact = fn
}

// OnAspectFill installs the pinch target.
func (r *Router) OnAspectFill(fn func(fill bool)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onAspectFill = fn
}

// SetLocked suppresses all player gestures, e.g. while a text field owns
// input.
func (r *Router) SetLocked(locked bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locked = locked
}

// Locked reports the gesture lock.
func (r *Router) Locked() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.locked
}

// Pan feeds one phase of a pan gesture. x/y are the pointer location;
// translationX/Y are the cumulative offsets since gesture start and are only
// consulted at Began to classify the axis.
func (r *Router) Pan(phase Phase, x, y, translationX, translationY float64) {
	r.mu.Lock()

	if r.locked {
		r.active = nil
		r.mu.Unlock()
		return
	}

	switch phase {
	case Began:
		r.beginPanLocked(x, y, translationX, translationY)
	case Changed, Ended, Cancelled:
		// The handler chosen at Began stays in charge; a gesture that
		// began while locked or unmatched has no active record and is
		// dropped.
	}

	active := r.active
	if active == nil {
		r.mu.Unlock()
		return
	}

	active.state.Phase = phase
	active.state.X = x
	active.state.Y = y
	state := active.state
	handler := active.registration.handler

	if phase == Ended || phase == Cancelled {
		r.active = nil
	}
	r.mu.Unlock()

	if handler != nil {
		handler(state)
	}
}

func (r *Router) beginPanLocked(x, y, translationX, translationY float64) {
	r.active = nil

	withSupplement := r.supplementOpen()
	if withSupplement {
		if r.supplementPan == nil {
			return
		}
		r.active = &activePan{
			registration: *r.supplementPan,
			state: PanState{
				Direction:             DirectionAny,
				StartX:                x,
				StartY:                y,
				StartValue:            r.supplementPan.startValue(),
				StartedWithSupplement: true,
			},
		}
		return
	}

	direction := classify(translationX, translationY)
	registration, ok := r.pans[direction]
	if !ok {
		registration, ok = r.pans[DirectionAny]
		if !ok {
			return
		}
	}

	r.active = &activePan{
		registration: registration,
		state: PanState{
			Direction:  direction,
			StartX:     x,
			StartY:     y,
			StartValue: registration.startValue(),
		},
	}
}

// classify picks the dominant axis of the initial translation. A dead-even
// diagonal counts as horizontal; scrubbing is the more common intent.
func classify(translationX, translationY float64) Direction {
	if math.Abs(translationY) > math.Abs(translationX) {
		return DirectionVertical
	}
	return DirectionHorizontal
}

// Pinch feeds one phase of a pinch gesture. Scale above 1 turns aspect fill
// on, below 1 turns it off. Pinches are ignored while a supplement panel is
// open, once the gesture has ended, and while the gesture lock is set.
func (r *Router) Pinch(phase Phase, scale float64) {
	r.mu.Lock()
	locked := r.locked
	onAspectFill := r.onAspectFill
	r.mu.Unlock()

	if locked || onAspectFill == nil {
		return
	}
	if phase == Ended || phase == Cancelled {
		return
	}
	if r.supplementOpen() {
		return
	}

	switch {
	case scale > 1:
		onAspectFill(true)
	case scale < 1:
		onAspectFill(false)
	}
}

// Tap feeds a single tap. Over the bare video it toggles overlay
// visibility; while a supplement panel is open it toggles the compact
// controls instead, so taps inside the panel do not blindly dismiss it.
func (r *Router) Tap() {
	r.mu.Lock()
	locked := r.locked
	onToggleOverlay := r.onToggleOverlay
	onToggleCompact := r.onToggleCompact
	r.mu.Unlock()

	if locked {
		return
	}

	if r.supplementOpen() {
		if onToggleCompact != nil {
			onToggleCompact()
		}
		return
	}

	if onToggleOverlay != nil {
		onToggleOverlay()
	}
}
