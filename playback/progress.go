package playback

import (
	"math"
	"sync"
)

// SeekFunc issues one absolute seek to the player backend.
type SeekFunc func(seconds float64)

// Progress mediates between backend-reported playback position and user
// scrubbing. While a scrub is active, backend ticks keep updating the raw
// position but never the displayed one, so the scrub handle does not fight
// live playback. Ending the scrub issues exactly one seek and resyncs.
type Progress struct {
	mu sync.Mutex

	seek SeekFunc

	raw       float64
	displayed float64
	duration  float64

	scrubbing bool
	scrub     float64
}

// NewProgress creates a progress mediator that issues seeks through seek.
func NewProgress(seek SeekFunc) *Progress {
	return &Progress{seek: seek}
}

// Update ingests one backend position tick. Non-finite values are discarded
// outright: mpv reports NaN time-pos transiently while switching sources, and
// forwarding it would corrupt the displayed position.
func (p *Progress) Update(position, duration float64) {
	if !isFinite(position) || !isFinite(duration) {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.raw = position
	if duration > 0 {
		p.duration = duration
	}

	if !p.scrubbing {
		p.displayed = position
	}
}

// Reset returns the mediator to its initial state for a new session. An
// active scrub is abandoned without seeking.
func (p *Progress) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.raw = 0
	p.displayed = 0
	p.duration = 0
	p.scrubbing = false
	p.scrub = 0
}

// BeginScrub freezes the displayed position at its current value. Backend
// ticks continue updating the raw position in the background.
func (p *Progress) BeginScrub() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.scrubbing {
		return
	}
	p.scrubbing = true
	p.scrub = p.displayed
}

// ScrubTo moves the displayed position to an absolute time while scrubbing.
// A no-op unless a scrub is active.
func (p *Progress) ScrubTo(seconds float64) {
	if !isFinite(seconds) {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.scrubbing {
		return
	}
	p.scrub = clamp(seconds, 0, p.duration)
	p.displayed = p.scrub
}

// ScrubToFraction moves the displayed position to a normalized 0-1 fraction
// of the duration.
func (p *Progress) ScrubToFraction(fraction float64) {
	p.mu.Lock()
	duration := p.duration
	p.mu.Unlock()

	p.ScrubTo(fraction * duration)
}

// ScrubBy shifts the scrub position relative to its current value.
func (p *Progress) ScrubBy(deltaSeconds float64) {
	p.mu.Lock()
	target := p.scrub + deltaSeconds
	p.mu.Unlock()

	p.ScrubTo(target)
}

// EndScrub commits the scrub: exactly one seek is issued with the final
// scrub value, and live backend updates resume flowing to the displayed
// position. The seek happens before the scrubbing flag is released so no
// stale tick can land between commit and seek.
func (p *Progress) EndScrub() {
	p.mu.Lock()
	if !p.scrubbing {
		p.mu.Unlock()
		return
	}

	target := p.scrub
	p.displayed = target
	p.raw = target
	seek := p.seek
	p.scrubbing = false
	p.mu.Unlock()

	if seek != nil {
		seek(target)
	}
}

// CancelScrub abandons the scrub without seeking; the displayed position
// snaps back to the live backend position.
func (p *Progress) CancelScrub() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.scrubbing {
		return
	}
	p.scrubbing = false
	p.displayed = p.raw
}

// IsScrubbing reports whether a scrub gesture is active.
func (p *Progress) IsScrubbing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scrubbing
}

// Displayed returns the position the UI should render, in seconds.
func (p *Progress) Displayed() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.displayed
}

// Raw returns the last backend-reported position, in seconds.
func (p *Progress) Raw() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.raw
}

// Duration returns the media duration, in seconds. Zero when unknown.
func (p *Progress) Duration() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

// Fraction returns the displayed position as a normalized 0-1 fraction.
func (p *Progress) Fraction() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.duration <= 0 {
		return 0
	}
	return clamp(p.displayed/p.duration, 0, 1)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clamp(f, lo, hi float64) float64 {
	if hi > lo {
		if f < lo {
			return lo
		}
		if f > hi {
			return hi
		}
		return f
	}
	// Unknown duration: only guard the lower bound.
	if f < lo {
		return lo
	}
	return f
}
