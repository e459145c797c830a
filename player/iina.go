package player

import (
	"fmt"
	"os/exec"
	"runtime"
)

// IINA launches playback through macOS's IINA wrapper. IINA does not expose
// mpv's IPC socket, so everything beyond launch-and-wait is a stub; sessions
// started this way run without progress reporting or overlay control.
type IINA struct {
	cmd    *exec.Cmd
	exited chan struct{}
}

func NewIINA() *IINA {
	return &IINA{
		exited: make(chan struct{}),
	}
}

func (m *IINA) Play(rawURL string, title string, headers map[string]string) error {
	if runtime.GOOS != "darwin" {
		return fmt.Errorf("IINA is only supported on macOS")
	}

	args := []string{"-a", "IINA"}

	// IINA forwards mpv-specific arguments after the '--args' separator.
	args = append(args, "--args", fmt.Sprintf("--force-media-title=%s", title))

	if len(headers) > 0 {
		var hBuilder string
		for k, v := range headers {
			if len(hBuilder) > 0 {
				hBuilder += ","
			}
			hBuilder += fmt.Sprintf("%s: %s", k, v)
		}
		args = append(args, fmt.Sprintf("--http-header-fields=%s", hBuilder))
	}

	args = append(args, rawURL)

	m.cmd = exec.Command("open", args...)

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("LaunchServices failed to invoke IINA: %w", err)
	}

	go func() {
		_ = m.cmd.Wait()
		close(m.exited)
	}()

	return nil
}

func (m *IINA) Wait() <-chan struct{} {
	return m.exited
}

func (m *IINA) SetPaused(paused bool) error          { return nil }
func (m *IINA) TogglePause() error                   { return nil }
func (m *IINA) GetTimePos() (float64, error)         { return 0, fmt.Errorf("not supported on IINA") }
func (m *IINA) GetDuration() (float64, error)        { return 0, fmt.Errorf("not supported on IINA") }
func (m *IINA) GetPercentWatched() (float64, error)  { return 0, fmt.Errorf("not supported on IINA") }
func (m *IINA) GetPausedStatus() (bool, error)       { return false, fmt.Errorf("not supported on IINA") }
func (m *IINA) HasActivePlayback() (bool, error)     { return false, nil }
func (m *IINA) Seek(seconds float64) error           { return nil }
func (m *IINA) SetRate(rate float64) error           { return nil }
func (m *IINA) SetChapters(chapters []Chapter) error { return nil }
func (m *IINA) IsRunning() bool {
	select {
	case <-m.exited:
		return false
	default:
		return true
	}
}
func (m *IINA) Close() error {
	if m.cmd != nil && m.cmd.Process != nil {
		_ = m.cmd.Process.Kill()
	}
	return nil
}
func (m *IINA) Socket() string                                       { return "iina-native" }
func (m *IINA) StartIPCTicker(callback func(timePos, duration float64)) {}
func (m *IINA) StopIPCTicker()                                       {}
