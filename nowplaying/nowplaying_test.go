package nowplaying

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// fakeSurface records bridge calls.
type fakeSurface struct {
	activateErr error

	active      bool
	activations int
	commands     []Command
	handler      Handler
	interruption InterruptionHandler
	cleared      int
	pushes       []map[string]interface{}
}

func (f *fakeSurface) Activate() error {
	if f.activateErr != nil {
		return f.activateErr
	}
	f.active = true
	f.activations++
	return nil
}

func (f *fakeSurface) Deactivate() error {
	f.active = false
	return nil
}

func (f *fakeSurface) SetCommands(commands []Command, handler Handler) error {
	f.commands = commands
	f.handler = handler
	return nil
}

func (f *fakeSurface) ClearCommands() {
	f.commands = nil
	f.handler = nil
	f.cleared++
}

func (f *fakeSurface) SetInterruptionHandler(handler InterruptionHandler) {
	f.interruption = handler
}

func (f *fakeSurface) SetInfo(info map[string]interface{}) error {
	copied := make(map[string]interface{}, len(info))
	for k, v := range info {
		copied[k] = v
	}
	f.pushes = append(f.pushes, copied)
	return nil
}

func TestCommandRegistration(t *testing.T) {
	Convey("Command registration", t, func() {
		surface := &fakeSurface{}
		bridge := NewBridge(surface)
		handler := func(Command, float64) {}

		Convey("A single command is rejected as a caller bug", func() {
			err := bridge.ConfigureCommands([]Command{CommandPlay}, handler, nil)
			So(errors.Is(err, ErrNoRegisteredCommands), ShouldBeTrue)
			So(surface.commands, ShouldBeEmpty)
		})

		Convey("An empty set is rejected the same way", func() {
			err := bridge.ConfigureCommands(nil, handler, nil)
			So(errors.Is(err, ErrNoRegisteredCommands), ShouldBeTrue)
		})

		Convey("Two or more commands all attach", func() {
			commands := []Command{
				CommandPlay, CommandPause, CommandTogglePause,
				CommandSkipForward, CommandSkipBackward, CommandChangePosition,
			}

			err := bridge.ConfigureCommands(commands, handler, nil)
			So(err, ShouldBeNil)
			So(surface.commands, ShouldResemble, commands)
			So(bridge.Commands(), ShouldResemble, commands)
		})

		Convey("The interruption handler attaches alongside the commands", func() {
			interrupted := false
			err := bridge.ConfigureCommands(
				[]Command{CommandPlay, CommandPause},
				handler,
				func(begun bool) { interrupted = begun },
			)
			So(err, ShouldBeNil)
			So(surface.interruption, ShouldNotBeNil)

			surface.interruption(true)
			So(interrupted, ShouldBeTrue)
		})
	})
}

func TestSessionLifecycle(t *testing.T) {
	Convey("Session lifecycle", t, func() {
		surface := &fakeSurface{}
		bridge := NewBridge(surface)

		Convey("StartSession acquires the surface once", func() {
			bridge.StartSession()
			bridge.StartSession()
			So(surface.activations, ShouldEqual, 1)
			So(surface.active, ShouldBeTrue)
		})

		Convey("Activation failure is swallowed, playback is unaffected", func() {
			surface.activateErr = errors.New("bus unavailable")

			So(func() { bridge.StartSession() }, ShouldNotPanic)
			So(surface.active, ShouldBeFalse)
		})

		Convey("EndSession clears commands and releases the surface", func() {
			So(bridge.ConfigureCommands([]Command{CommandPlay, CommandPause}, func(Command, float64) {}, func(bool) {}), ShouldBeNil)
			bridge.StartSession()

			bridge.EndSession()
			So(surface.cleared, ShouldEqual, 1)
			So(surface.active, ShouldBeFalse)
			So(surface.interruption, ShouldBeNil)
			So(bridge.Commands(), ShouldBeEmpty)
		})

		Convey("EndSession runs even when the session never activated", func() {
			surface.activateErr = errors.New("bus unavailable")
			bridge.StartSession()

			So(func() { bridge.EndSession() }, ShouldNotPanic)
			So(surface.cleared, ShouldEqual, 1)
		})
	})
}

func TestMetadataMerge(t *testing.T) {
	Convey("Metadata publication", t, func() {
		surface := &fakeSurface{}
		bridge := NewBridge(surface)
		bridge.StartSession()

		bridge.SetMetadata(Metadata{
			Title:  "Dulcinea",
			Artist: "The Expanse",
			Album:  "Season 1",
		})

		Convey("Dynamic ticks merge into the published dictionary", func() {
			bridge.SetPlaybackInfo(PlaybackInfo{Position: 30, Duration: 2700, Rate: 1})
			bridge.SetPlaybackInfo(PlaybackInfo{Position: 31, Duration: 2700, Rate: 1})

			published := bridge.Published()
			So(published[InfoTitle], ShouldEqual, "Dulcinea")
			So(published[InfoArtist], ShouldEqual, "The Expanse")
			So(published[InfoPosition], ShouldEqual, 31.0)
			So(published[InfoDuration], ShouldEqual, 2700.0)

			Convey("And every surface push carried the static fields", func() {
				last := surface.pushes[len(surface.pushes)-1]
				So(last[InfoTitle], ShouldEqual, "Dulcinea")
				So(last[InfoPosition], ShouldEqual, 31.0)
			})
		})

		Convey("A new item's metadata replaces the static fields", func() {
			bridge.SetPlaybackInfo(PlaybackInfo{Position: 30, Duration: 2700, Rate: 1})
			bridge.SetMetadata(Metadata{Title: "The Big Empty", Artist: "The Expanse", Album: "Season 1"})

			published := bridge.Published()
			So(published[InfoTitle], ShouldEqual, "The Big Empty")
			// Dynamic fields survive the item change until the next tick.
			So(published[InfoPosition], ShouldEqual, 30.0)
		})

		Convey("EndSession drops the published dictionary", func() {
			bridge.EndSession()
			So(bridge.Published(), ShouldBeEmpty)
		})
	})
}
