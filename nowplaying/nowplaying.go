// Package nowplaying bridges an active playback session to the operating
// system's media surface: it registers remote commands (media keys, desktop
// media controls) whose invocations feed back into playback, and publishes
// the current item's metadata and live position outward.
package nowplaying

import (
	"errors"
	"sync"

	"github.com/vidra-cli/vidra/log"
)

// Command is an OS-originated remote command kind.
type Command string

const (
	CommandPlay           Command = "play"
	CommandPause          Command = "pause"
	CommandTogglePause    Command = "togglePause"
	CommandSkipForward    Command = "skipForward"
	CommandSkipBackward   Command = "skipBackward"
	CommandChangePosition Command = "changePosition"
	CommandNextTrack      Command = "nextTrack"
	CommandPreviousTrack  Command = "previousTrack"
)

// Handler receives remote commands. Value carries the seek target in seconds
// for CommandChangePosition and the skip interval for the skip commands;
// zero otherwise.
type Handler func(cmd Command, value float64)

// InterruptionHandler is notified when the OS surface takes playback focus
// away (begun true) or hands it back (begun false). May be nil.
type InterruptionHandler func(begun bool)

// ErrNoRegisteredCommands rejects a registration of fewer than two commands.
// A single command is almost always a caller bug: play and pause travel as a
// pair, so the floor catches the mistake at configuration time.
var ErrNoRegisteredCommands = errors.New("no registered commands")

// Metadata is the static per-item information published to the OS surface.
// It changes on item change, not on progress ticks.
type Metadata struct {
	Title      string
	Artist     string
	Album      string
	ArtworkURL string
	IsLive     bool
}

// PlaybackInfo is the dynamic per-tick information.
type PlaybackInfo struct {
	Position float64
	Duration float64
	Rate     float64
	Paused   bool
}

// Info keys pushed to the surface. The surface translates them into its
// platform encoding.
const (
	InfoTitle    = "title"
	InfoArtist   = "artist"
	InfoAlbum    = "album"
	InfoArtwork  = "artworkUrl"
	InfoLive     = "live"
	InfoPosition = "position"
	InfoDuration = "duration"
	InfoRate     = "rate"
	InfoPaused   = "paused"
)

// Bridge owns the process-wide now-playing resources for one session at a
// time. Command registration happens up front; the session is then started,
// fed metadata and ticks, and ended. EndSession is safe to call in any state
// and always runs the full teardown.
type Bridge struct {
	mu sync.Mutex

	surface Surface
	info    map[string]interface{}

	commands []Command
	handler  Handler
	active   bool
}

// NewBridge creates a bridge over the given OS surface.
func NewBridge(surface Surface) *Bridge {
	if surface == nil {
		surface = Noop{}
	}
	return &Bridge{
		surface: surface,
		info:    make(map[string]interface{}),
	}
}

// ConfigureCommands registers the remote commands routed to handler, plus an
// optional interruption handler. At least two commands are required.
func (b *Bridge) ConfigureCommands(commands []Command, handler Handler, interruption InterruptionHandler) error {
	if len(commands) < 2 {
		return ErrNoRegisteredCommands
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.surface.SetCommands(commands, handler); err != nil {
		return err
	}
	b.surface.SetInterruptionHandler(interruption)

	b.commands = commands
	b.handler = handler
	return nil
}

// Commands returns the currently registered commands.
func (b *Bridge) Commands() []Command {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.commands
}

// StartSession acquires the OS surface. Activation failures are logged and
// swallowed: playback proceeds without media-key integration rather than
// failing the session.
func (b *Bridge) StartSession() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active {
		return
	}

	if err := b.surface.Activate(); err != nil {
		log.Warnf("now-playing surface activation failed: %v", err)
		return
	}
	b.active = true
}

// EndSession removes all command handlers and releases the surface. It runs
// unconditionally, including after upstream errors and when the session
// never activated, so surface state cannot leak across screens.
func (b *Bridge) EndSession() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.surface.ClearCommands()
	b.surface.SetInterruptionHandler(nil)
	b.commands = nil
	b.handler = nil

	if err := b.surface.Deactivate(); err != nil {
		log.Warnf("now-playing surface deactivation failed: %v", err)
	}
	b.active = false
	b.info = make(map[string]interface{})
}

// SetMetadata publishes the static per-item fields, replacing any previous
// item's values. Dynamic fields already present are preserved.
func (b *Bridge) SetMetadata(meta Metadata) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.info[InfoTitle] = meta.Title
	b.info[InfoArtist] = meta.Artist
	b.info[InfoAlbum] = meta.Album
	b.info[InfoArtwork] = meta.ArtworkURL
	b.info[InfoLive] = meta.IsLive

	b.pushLocked()
}

// SetPlaybackInfo merges the dynamic fields into the published dictionary.
// Ticks arrive every second; merging rather than replacing keeps the static
// fields from being clobbered between item changes.
func (b *Bridge) SetPlaybackInfo(info PlaybackInfo) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.info[InfoPosition] = info.Position
	b.info[InfoDuration] = info.Duration
	b.info[InfoRate] = info.Rate
	b.info[InfoPaused] = info.Paused

	b.pushLocked()
}

// Published returns a copy of the currently published dictionary.
func (b *Bridge) Published() map[string]interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[string]interface{}, len(b.info))
	for k, v := range b.info {
		out[k] = v
	}
	return out
}

func (b *Bridge) pushLocked() {
	if !b.active {
		return
	}
	if err := b.surface.SetInfo(b.info); err != nil {
		log.Debugf("now-playing info push failed: %v", err)
	}
}
