// Package overlay is the single source of truth for which playback overlay is
// visible. Gesture and command events feed into a small state machine that
// owns two timers: the idle timer that hides the main controls, and the
// short confirm-close window that guards against accidental exits.
package overlay

import (
	"sync"
	"time"

	"github.com/vidra-cli/vidra/log"
)

// Kind enumerates the overlay surfaces. Exactly one is active at a time.
type Kind int

const (
	Hidden Kind = iota
	Main
	ConfirmClose
	SmallMenu
	Chapters
	Supplement
)

func (k Kind) String() string {
	switch k {
	case Hidden:
		return "hidden"
	case Main:
		return "main"
	case ConfirmClose:
		return "confirmClose"
	case SmallMenu:
		return "smallMenu"
	case Chapters:
		return "chapters"
	case Supplement:
		return "supplement"
	default:
		return "unknown"
	}
}

// State is the active overlay plus its payload.
type State struct {
	Kind Kind

	// SupplementID identifies which supplement panel is open; only
	// meaningful while Kind == Supplement.
	SupplementID string
}

const (
	// DefaultIdleTimeout hides the main overlay after this much inactivity.
	DefaultIdleTimeout = 5 * time.Second
	// DefaultConfirmCloseTimeout is the window in which a second back press
	// confirms the exit.
	DefaultConfirmCloseTimeout = 2 * time.Second
)

// Options configures a Machine. Zero timeouts fall back to the defaults.
type Options struct {
	IdleTimeout         time.Duration
	ConfirmCloseTimeout time.Duration

	// OnChange is invoked after every state transition, including
	// timer-driven ones. Called without internal locks held.
	OnChange func(State)

	// OnDismiss is invoked when the user confirms closing the player.
	OnDismiss func()
}

// Machine drives overlay visibility. All transitions are serialized; timer
// callbacks take the same lock as event methods, so a replaced timer can
// never apply a stale transition.
type Machine struct {
	mu sync.Mutex

	state     State
	scrubbing bool

	idleTimeout    time.Duration
	confirmTimeout time.Duration

	idleTimer  *time.Timer
	idleGen    uint64
	confirm    *time.Timer
	confirmGen uint64

	onChange  func(State)
	onDismiss func()
}

// NewMachine creates a machine in the hidden state.
func NewMachine(opts Options) *Machine {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	if opts.ConfirmCloseTimeout <= 0 {
		opts.ConfirmCloseTimeout = DefaultConfirmCloseTimeout
	}

	return &Machine{
		state:          State{Kind: Hidden},
		idleTimeout:    opts.IdleTimeout,
		confirmTimeout: opts.ConfirmCloseTimeout,
		onChange:       opts.OnChange,
		onDismiss:      opts.OnDismiss,
	}
}

// State returns the active overlay state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsPresentingSupplement reports whether a supplement panel is open. Tap
// handling differs while one is presented, so this is exposed separately
// from State.
func (m *Machine) IsPresentingSupplement() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Kind == Supplement
}

// ToggleVisibility handles a single tap on the video area: hidden shows the
// main controls and arms the idle timer, anything visible hides.
func (m *Machine) ToggleVisibility() {
	m.mu.Lock()
	var next State
	if m.state.Kind == Hidden {
		next = State{Kind: Main}
		m.transitionLocked(next)
		m.restartIdleLocked()
	} else {
		next = State{Kind: Hidden}
		m.transitionLocked(next)
		m.stopTimersLocked()
	}
	notify := m.onChange
	m.mu.Unlock()

	if notify != nil {
		notify(next)
	}
}

// Interact marks a qualifying user interaction: the overlay is shown if
// hidden and the idle timer is rearmed to its full duration. Modal states
// are untouched — their timers are paused by design.
func (m *Machine) Interact() {
	m.mu.Lock()
	switch m.state.Kind {
	case Hidden:
		m.transitionLocked(State{Kind: Main})
		m.restartIdleLocked()
	case Main:
		m.restartIdleLocked()
	}
	next := m.state
	notify := m.onChange
	m.mu.Unlock()

	if notify != nil {
		notify(next)
	}
}

// Back handles the menu/back command. From the main (or hidden) overlay it
// opens the confirm-close prompt; a second press inside the window dismisses
// the player. From any other panel it returns to the main overlay.
func (m *Machine) Back() {
	m.mu.Lock()
	var dismiss bool
	switch m.state.Kind {
	case ConfirmClose:
		dismiss = true
		m.transitionLocked(State{Kind: Hidden})
		m.stopTimersLocked()
	case Hidden, Main:
		m.transitionLocked(State{Kind: ConfirmClose})
		m.stopIdleLocked()
		m.restartConfirmLocked()
	default:
		m.transitionLocked(State{Kind: Main})
		m.restartIdleLocked()
	}
	next := m.state
	notify := m.onChange
	onDismiss := m.onDismiss
	m.mu.Unlock()

	if notify != nil {
		notify(next)
	}
	if dismiss && onDismiss != nil {
		onDismiss()
	}
}

// OpenMenu presents the options menu. The idle timer pauses while it is up.
func (m *Machine) OpenMenu() {
	m.modal(State{Kind: SmallMenu})
}

// CloseMenu returns from the options menu to the main overlay.
func (m *Machine) CloseMenu() {
	m.returnToMain()
}

// OpenChapters presents the chapter list. The idle timer pauses while it is up.
func (m *Machine) OpenChapters() {
	m.modal(State{Kind: Chapters})
}

// CloseChapters returns from the chapter list to the main overlay.
func (m *Machine) CloseChapters() {
	m.returnToMain()
}

// PresentSupplement opens the identified supplement panel.
func (m *Machine) PresentSupplement(id string) {
	m.modal(State{Kind: Supplement, SupplementID: id})
}

// DismissSupplement returns from a supplement panel to the main overlay.
func (m *Machine) DismissSupplement() {
	m.returnToMain()
}

// BeginScrub forces the overlay visible and pauses the idle timer for the
// duration of the scrub.
func (m *Machine) BeginScrub() {
	m.mu.Lock()
	m.scrubbing = true
	if m.state.Kind == Hidden {
		m.transitionLocked(State{Kind: Main})
	}
	m.stopIdleLocked()
	next := m.state
	notify := m.onChange
	m.mu.Unlock()

	if notify != nil {
		notify(next)
	}
}

// EndScrub returns to the main overlay and rearms the idle timer.
func (m *Machine) EndScrub() {
	m.mu.Lock()
	m.scrubbing = false
	m.transitionLocked(State{Kind: Main})
	m.restartIdleLocked()
	next := m.state
	notify := m.onChange
	m.mu.Unlock()

	if notify != nil {
		notify(next)
	}
}

// IsScrubbing reports whether a scrub is holding the overlay open.
func (m *Machine) IsScrubbing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scrubbing
}

// Close stops all timers. Call when the playback screen goes away.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopTimersLocked()
}

// modal enters a state whose presence pauses the idle timer.
func (m *Machine) modal(next State) {
	m.mu.Lock()
	m.transitionLocked(next)
	m.stopIdleLocked()
	notify := m.onChange
	m.mu.Unlock()

	if notify != nil {
		notify(next)
	}
}

func (m *Machine) returnToMain() {
	m.mu.Lock()
	next := State{Kind: Main}
	m.transitionLocked(next)
	m.restartIdleLocked()
	notify := m.onChange
	m.mu.Unlock()

	if notify != nil {
		notify(next)
	}
}

func (m *Machine) transitionLocked(next State) {
	if m.state == next {
		return
	}
	log.Debugf("overlay %s -> %s", m.state.Kind, next.Kind)
	m.state = next
}

// restartIdleLocked arms the idle timer, replacing any running instance.
// The generation counter makes an already-fired stale timer a no-op.
func (m *Machine) restartIdleLocked() {
	m.idleGen++
	gen := m.idleGen

	if m.idleTimer != nil {
		m.idleTimer.Stop()
	}
	m.idleTimer = time.AfterFunc(m.idleTimeout, func() {
		m.idleExpired(gen)
	})
}

func (m *Machine) stopIdleLocked() {
	m.idleGen++
	if m.idleTimer != nil {
		m.idleTimer.Stop()
		m.idleTimer = nil
	}
}

func (m *Machine) restartConfirmLocked() {
	m.confirmGen++
	gen := m.confirmGen

	if m.confirm != nil {
		m.confirm.Stop()
	}
	m.confirm = time.AfterFunc(m.confirmTimeout, func() {
		m.confirmExpired(gen)
	})
}

func (m *Machine) stopConfirmLocked() {
	m.confirmGen++
	if m.confirm != nil {
		m.confirm.Stop()
		m.confirm = nil
	}
}

func (m *Machine) stopTimersLocked() {
	m.stopIdleLocked()
	m.stopConfirmLocked()
}

func (m *Machine) idleExpired(gen uint64) {
	m.mu.Lock()
	if gen != m.idleGen || m.state.Kind != Main || m.scrubbing {
		m.mu.Unlock()
		return
	}
	m.transitionLocked(State{Kind: Hidden})
	next := m.state
	notify := m.onChange
	m.mu.Unlock()

	if notify != nil {
		notify(next)
	}
}

func (m *Machine) confirmExpired(gen uint64) {
	m.mu.Lock()
	if gen != m.confirmGen || m.state.Kind != ConfirmClose {
		m.mu.Unlock()
		return
	}
	m.transitionLocked(State{Kind: Hidden})
	next := m.state
	notify := m.onChange
	m.mu.Unlock()

	if notify != nil {
		notify(next)
	}
}
