// Package player abstracts external media playback engines behind a uniform
// control surface. The primary backend drives mpv through its JSON-IPC socket;
// an IINA backend covers macOS users who prefer the native wrapper.
package player

import "fmt"

// Chapter is a named timeline marker pushed into the playback engine so its
// own UI (progress bar markers, chapter keys) reflects server-side chapters.
type Chapter struct {
	Title        string
	StartSeconds float64
}

// Player is the capability surface every playback backend must expose.
type Player interface {
	// Play starts playback of the given URL with the specified window title.
	// If an engine instance is already running, the new file is loaded into it.
	Play(url string, title string, headers map[string]string) error

	// SetPaused forces the suspension state to a known value.
	SetPaused(paused bool) error

	// TogglePause inverts the current suspension state.
	TogglePause() error

	// GetTimePos retrieves the current absolute playback position in seconds.
	GetTimePos() (float64, error)

	// GetDuration retrieves the total length of the active media in seconds.
	GetDuration() (float64, error)

	// GetPercentWatched reports relative playback completion (0-100).
	GetPercentWatched() (float64, error)

	// GetPausedStatus retrieves the current suspension state.
	GetPausedStatus() (bool, error)

	// HasActivePlayback reports whether a media file is loaded and active.
	HasActivePlayback() (bool, error)

	// Seek moves playback to an absolute timestamp in seconds.
	Seek(seconds float64) error

	// SetRate changes the playback speed multiplier.
	SetRate(rate float64) error

	// SetChapters pushes timeline markers into the engine.
	SetChapters(chapters []Chapter) error

	// IsRunning reports liveness of the underlying playback process.
	IsRunning() bool

	// Close terminates the engine and releases its resources.
	Close() error

	// Socket retrieves the identifier of the IPC channel.
	Socket() string

	// StartIPCTicker begins a background poll of playback position, invoking
	// the callback at roughly 1Hz with the current position and duration.
	StartIPCTicker(callback func(timePos, duration float64))

	// StopIPCTicker terminates the background poll.
	StopIPCTicker()

	// Wait returns a channel closed when the playback process terminates.
	Wait() <-chan struct{}
}

// ForName returns the backend registered under the given configuration name.
func ForName(name string) (Player, error) {
	switch name {
	case "mpv", "":
		return NewMPV(), nil
	case "iina":
		return NewIINA(), nil
	default:
		return nil, fmt.Errorf("unknown player backend %q", name)
	}
}
