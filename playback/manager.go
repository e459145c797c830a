package playback

import (
	"fmt"
	"sync"

	"github.com/vidra-cli/vidra/jellyfin"
	"github.com/vidra-cli/vidra/log"
	"github.com/vidra-cli/vidra/player"
)

// State is the session lifecycle phase of a Manager.
type State int

const (
	StateIdle State = iota
	StateLoading
	StatePlaying
	StatePaused
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// EventKind discriminates manager events.
type EventKind int

const (
	EventStateChanged EventKind = iota
	EventProgressTick
	EventSupplementsChanged
	EventError
)

// Event is one entry of the manager's event stream. The manager never
// presents UI itself; consumers decide what each event means on screen.
type Event struct {
	Kind        EventKind
	State       State
	Position    float64
	Duration    float64
	Supplements []Supplement
	Err         error
}

// Releaser frees process-wide playback resources (remote-command
// registrations, the OS now-playing surface) at session end.
type Releaser interface {
	EndSession()
}

// Manager owns zero or one active Session and the backend playing it.
// Lifecycle: idle -> loading -> playing <-> paused -> stopped, with failed as
// the terminal state of an attempt that never became playable. A failure is
// surfaced, never silently retried: the usual remedy (switch media source)
// needs the user.
type Manager struct {
	mu sync.Mutex

	backend  player.Player
	session  *Session
	state    State
	progress *Progress

	queue       *Queue
	supplements []Supplement
	releaser    Releaser

	events chan Event
}

// NewManager creates an idle manager around the given backend.
func NewManager(backend player.Player) *Manager {
	m := &Manager{
		backend: backend,
		state:   StateIdle,
		events:  make(chan Event, 32),
	}
	m.progress = NewProgress(func(seconds float64) {
		m.Seek(seconds)
	})
	return m
}

// Events returns the manager's event stream. Events are dropped, not
// blocked on, when the consumer falls behind.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Session returns the active session, nil when idle.
func (m *Manager) Session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Progress returns the session's progress mediator.
func (m *Manager) Progress() *Progress {
	return m.progress
}

// AttachReleaser registers the resource holder torn down on Stop.
func (m *Manager) AttachReleaser(r Releaser) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaser = r
}

// Start begins playback of a resolved session, replacing any active one.
func (m *Manager) Start(session *Session, headers map[string]string) error {
	m.mu.Lock()
	if m.session != nil && m.state != StateStopped && m.state != StateFailed {
		m.mu.Unlock()
		m.Stop()
		m.mu.Lock()
	}

	m.session = session
	// Position and scrub state belong to the session being replaced.
	m.progress.Reset()
	m.setStateLocked(StateLoading)
	m.mu.Unlock()

	if err := m.backend.Play(session.URL.String(), session.Title(), headers); err != nil {
		m.fail(fmt.Errorf("start playback: %w", err))
		return err
	}

	if len(session.Chapters) > 0 {
		if err := m.backend.SetChapters(session.PlayerChapters()); err != nil {
			log.Warnf("set chapters: %v", err)
		}
	}

	if session.StartSeconds > 0 {
		if err := m.backend.Seek(session.StartSeconds); err != nil {
			log.Warnf("resume seek to %.0fs: %v", session.StartSeconds, err)
		}
	}

	m.backend.StartIPCTicker(m.handleTick)

	m.mu.Lock()
	m.setStateLocked(StatePlaying)
	m.mu.Unlock()

	if len(session.Chapters) > 0 {
		m.SetSupplements([]Supplement{{
			ID:    session.Item.ID,
			Kind:  SupplementChapters,
			Title: "Chapters",
		}})
	}

	return nil
}

// Play resumes a paused session. A no-op in any other state.
func (m *Manager) Play() {
	m.mu.Lock()
	if m.state != StatePaused {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	if err := m.backend.SetPaused(false); err != nil {
		m.emitError(err)
		return
	}

	m.mu.Lock()
	m.setStateLocked(StatePlaying)
	m.mu.Unlock()
}

// Pause suspends a playing session. A no-op in any other state.
func (m *Manager) Pause() {
	m.mu.Lock()
	if m.state != StatePlaying {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	if err := m.backend.SetPaused(true); err != nil {
		m.emitError(err)
		return
	}

	m.mu.Lock()
	m.setStateLocked(StatePaused)
	m.mu.Unlock()
}

// TogglePause flips between playing and paused.
func (m *Manager) TogglePause() {
	switch m.State() {
	case StatePlaying:
		m.Pause()
	case StatePaused:
		m.Play()
	}
}

// Seek moves playback to an absolute position. Always forwarded to the
// backend, even when the target equals the current position; the backend
// treats absolute seeks as idempotent.
func (m *Manager) Seek(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	if err := m.backend.Seek(seconds); err != nil {
		m.emitError(fmt.Errorf("seek: %w", err))
	}
}

// SeekBy shifts playback relative to the displayed position.
func (m *Manager) SeekBy(deltaSeconds float64) {
	m.Seek(m.progress.Displayed() + deltaSeconds)
}

// SetRate changes playback speed.
func (m *Manager) SetRate(rate float64) {
	if err := m.backend.SetRate(rate); err != nil {
		m.emitError(fmt.Errorf("set rate: %w", err))
	}
}

// Stop ends the session. Resource teardown is unconditional: the releaser
// runs even when closing the backend fails or the session already died.
func (m *Manager) Stop() {
	m.mu.Lock()
	if m.state == StateIdle || m.state == StateStopped {
		releaser := m.releaser
		m.mu.Unlock()
		if releaser != nil {
			releaser.EndSession()
		}
		return
	}
	releaser := m.releaser
	m.mu.Unlock()

	m.backend.StopIPCTicker()
	m.progress.CancelScrub()
	if err := m.backend.Close(); err != nil {
		log.Warnf("close player: %v", err)
	}

	if releaser != nil {
		releaser.EndSession()
	}

	m.mu.Lock()
	m.setStateLocked(StateStopped)
	m.mu.Unlock()
}

// AttachQueue attaches an advance queue to the session.
func (m *Manager) AttachQueue(q *Queue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = q
}

// Queue returns the attached queue, nil when none.
func (m *Manager) Queue() *Queue {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue
}

// Next advances the queue and returns the item to play. Without a queue, or
// at the end of one, it reports false and changes nothing; not every
// playback context is queueable and callers treat this as a quiet no-op.
func (m *Manager) Next() (jellyfin.Item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.queue == nil {
		return jellyfin.Item{}, false
	}
	return m.queue.Advance()
}

// Previous retreats the queue and returns the item to play.
func (m *Manager) Previous() (jellyfin.Item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.queue == nil {
		return jellyfin.Item{}, false
	}
	return m.queue.Retreat()
}

// SetSupplements replaces the supplement list and notifies observers. Only
// the supplement set changes; no other session or overlay state is touched.
func (m *Manager) SetSupplements(supplements []Supplement) {
	m.mu.Lock()
	m.supplements = supplements
	m.mu.Unlock()

	m.emit(Event{Kind: EventSupplementsChanged, Supplements: supplements})
}

// Supplements returns the current supplement list.
func (m *Manager) Supplements() []Supplement {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.supplements
}

// Wait returns a channel closed when the backend process exits.
func (m *Manager) Wait() <-chan struct{} {
	return m.backend.Wait()
}

func (m *Manager) handleTick(position, duration float64) {
	m.progress.Update(position, duration)
	m.emit(Event{
		Kind:     EventProgressTick,
		Position: m.progress.Displayed(),
		Duration: m.progress.Duration(),
	})
}

// fail marks the attempt terminal. The state-change event carries the error
// so that a consumer acting on StateFailed alone still has the cause.
func (m *Manager) fail(err error) {
	m.mu.Lock()
	log.Debugf("playback state %s -> %s", m.state, StateFailed)
	m.state = StateFailed
	m.mu.Unlock()

	m.emit(Event{Kind: EventStateChanged, State: StateFailed, Err: err})
	log.Errorf("playback failed: %v", err)
}

func (m *Manager) emitError(err error) {
	m.emit(Event{Kind: EventError, Err: err})
	log.Warnf("playback: %v", err)
}

// setStateLocked transitions state and queues the notification. Callers hold m.mu.
func (m *Manager) setStateLocked(next State) {
	if m.state == next {
		return
	}
	log.Debugf("playback state %s -> %s", m.state, next)
	m.state = next
	m.emit(Event{Kind: EventStateChanged, State: next})
}

func (m *Manager) emit(event Event) {
	select {
	case m.events <- event:
	default:
		// Slow consumer; drop rather than stall the tick path.
	}
}
