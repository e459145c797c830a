package tui

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/vidra-cli/vidra/jellyfin"
	"github.com/vidra-cli/vidra/playback"
	"github.com/vidra-cli/vidra/player"
)

// stubBackend satisfies player.Player without a real player process.
type stubBackend struct {
	playErr error
	exited  chan struct{}
}

func newStubBackend() *stubBackend {
	return &stubBackend{exited: make(chan struct{})}
}

func (s *stubBackend) Play(string, string, map[string]string) error { return s.playErr }
func (s *stubBackend) SetPaused(bool) error                         { return nil }
func (s *stubBackend) TogglePause() error                           { return nil }
func (s *stubBackend) GetTimePos() (float64, error)                 { return 0, nil }
func (s *stubBackend) GetDuration() (float64, error)                { return 0, nil }
func (s *stubBackend) GetPercentWatched() (float64, error)          { return 0, nil }
func (s *stubBackend) GetPausedStatus() (bool, error)               { return false, nil }
func (s *stubBackend) HasActivePlayback() (bool, error)             { return false, nil }
func (s *stubBackend) Seek(float64) error                           { return nil }
func (s *stubBackend) SetRate(float64) error                        { return nil }
func (s *stubBackend) SetChapters([]player.Chapter) error           { return nil }
func (s *stubBackend) IsRunning() bool                              { return false }
func (s *stubBackend) Close() error                                 { return nil }
func (s *stubBackend) Socket() string                               { return "stub" }
func (s *stubBackend) StartIPCTicker(func(float64, float64))        {}
func (s *stubBackend) StopIPCTicker()                               {}
func (s *stubBackend) Wait() <-chan struct{}                        { return s.exited }

func stubSession() *playback.Session {
	u, _ := url.Parse("https://server:8096/Videos/abc/stream?static=true")
	return &playback.Session{
		Item:       jellyfin.Item{ID: "abc", Name: "Dune", Type: jellyfin.ItemMovie},
		URL:        u,
		StreamType: playback.StreamDirect,
	}
}

func TestStartPlaybackFailure(t *testing.T) {
	Convey("Start playback failure", t, func() {
		backend := newStubBackend()
		backend.playErr = errors.New("no such codec")

		b := &statefulBubble{
			manager:      playback.NewManager(backend),
			errorChannel: make(chan error),
		}

		Convey("The command resolves to the error instead of blocking", func() {
			// Nothing is armed on the error channel by the time this command
			// runs, so it must return the failure as its own message.
			done := make(chan tea.Msg, 1)
			go func() { done <- b.startPlayback(stubSession())() }()

			select {
			case msg := <-done:
				err, ok := msg.(error)
				So(ok, ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "no such codec")
			case <-time.After(2 * time.Second):
				t.Fatal("startPlayback command never returned")
			}
		})
	})
}

func TestViewError(t *testing.T) {
	Convey("Error view", t, func() {
		b := &statefulBubble{
			keymap: newStatefulKeymap(),
			helpC:  help.New(),
			width:  80,
			height: 24,
		}

		Convey("Renders the recorded error", func() {
			b.raiseError(errors.New("no such codec"))
			So(b.viewError(), ShouldContainSubstring, "no such codec")
		})

		Convey("Renders without panicking when no error was recorded", func() {
			So(func() { _ = b.viewError() }, ShouldNotPanic)
			So(b.viewError(), ShouldContainSubstring, "unknown failure")
		})
	})
}
