package nowplaying

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/prop"

	"github.com/vidra-cli/vidra/constant"
)

const (
	mprisBusName     = "org.mpris.MediaPlayer2.vidra"
	mprisPath        = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	mprisRootIface   = "org.mpris.MediaPlayer2"
	mprisPlayerIface = "org.mpris.MediaPlayer2.Player"

	microsPerSecond = 1_000_000
)

// MPRIS publishes now-playing state over the session bus using the MPRIS
// D-Bus specification, which desktop environments render as media controls
// and whose Player interface calls arrive as remote commands.
type MPRIS struct {
	mu sync.Mutex

	conn  *dbus.Conn
	props *prop.Properties

	handler      Handler
	commands     map[Command]bool
	interruption InterruptionHandler
}

// NewMPRIS creates an unactivated MPRIS surface.
func NewMPRIS() *MPRIS {
	return &MPRIS{commands: make(map[Command]bool)}
}

// Activate connects to the session bus, claims the well-known name and
// exports the MPRIS object.
func (m *MPRIS) Activate() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn != nil {
		return nil
	}

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("session bus: %w", err)
	}

	reply, err := conn.RequestName(mprisBusName, dbus.NameFlagAllowReplacement|dbus.NameFlagReplaceExisting)
	if err != nil {
		return fmt.Errorf("request name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s not acquired", mprisBusName)
	}

	if err := conn.Export(&mprisPlayer{surface: m}, mprisPath, mprisPlayerIface); err != nil {
		return fmt.Errorf("export player: %w", err)
	}
	if err := conn.Export(&mprisRoot{}, mprisPath, mprisRootIface); err != nil {
		return fmt.Errorf("export root: %w", err)
	}

	props, err := prop.Export(conn, mprisPath, m.propSpec())
	if err != nil {
		return fmt.Errorf("export properties: %w", err)
	}

	signals := make(chan *dbus.Signal, 8)
	conn.Signal(signals)
	go m.watchOwnership(signals)

	m.conn = conn
	m.props = props
	return nil
}

// watchOwnership fires the interruption handler when another connection
// takes over the MPRIS bus name. NameLost is delivered unicast to the
// losing connection; the channel closes with the connection in Deactivate.
func (m *MPRIS) watchOwnership(signals <-chan *dbus.Signal) {
	for sig := range signals {
		if sig.Name != "org.freedesktop.DBus.NameLost" || len(sig.Body) == 0 {
			continue
		}
		if name, ok := sig.Body[0].(string); !ok || name != mprisBusName {
			continue
		}

		m.mu.Lock()
		interruption := m.interruption
		m.mu.Unlock()

		if interruption != nil {
			interruption(true)
		}
	}
}

// Deactivate releases the bus name and connection. Safe without a prior
// Activate.
func (m *MPRIS) Deactivate() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn == nil {
		return nil
	}

	_, _ = m.conn.ReleaseName(mprisBusName)
	err := m.conn.Close()
	m.conn = nil
	m.props = nil
	return err
}

// SetCommands installs the command set routed to handler. MPRIS method
// calls for commands outside the set are ignored.
func (m *MPRIS) SetCommands(commands []Command, handler Handler) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.commands = make(map[Command]bool, len(commands))
	for _, c := range commands {
		m.commands[c] = true
	}
	m.handler = handler
	return nil
}

// ClearCommands removes all installed commands.
func (m *MPRIS) ClearCommands() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.commands = make(map[Command]bool)
	m.handler = nil
}

// SetInterruptionHandler installs the focus-loss callback; nil removes it.
func (m *MPRIS) SetInterruptionHandler(handler InterruptionHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.interruption = handler
}

// SetInfo translates the bridge dictionary into MPRIS properties.
func (m *MPRIS) SetInfo(info map[string]interface{}) error {
	m.mu.Lock()
	props := m.props
	m.mu.Unlock()

	if props == nil {
		return nil
	}

	metadata := map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(dbus.ObjectPath("/org/vidra/track/current")),
	}
	if title, ok := info[InfoTitle].(string); ok {
		metadata["xesam:title"] = dbus.MakeVariant(title)
	}
	if artist, ok := info[InfoArtist].(string); ok && artist != "" {
		metadata["xesam:artist"] = dbus.MakeVariant([]string{artist})
	}
	if album, ok := info[InfoAlbum].(string); ok && album != "" {
		metadata["xesam:album"] = dbus.MakeVariant(album)
	}
	if art, ok := info[InfoArtwork].(string); ok && art != "" {
		metadata["mpris:artUrl"] = dbus.MakeVariant(art)
	}
	if duration, ok := info[InfoDuration].(float64); ok && duration > 0 {
		metadata["mpris:length"] = dbus.MakeVariant(int64(duration * microsPerSecond))
	}

	if err := props.Set(mprisPlayerIface, "Metadata", dbus.MakeVariant(metadata)); err != nil {
		return err
	}

	status := "Playing"
	if paused, ok := info[InfoPaused].(bool); ok && paused {
		status = "Paused"
	}
	if err := props.Set(mprisPlayerIface, "PlaybackStatus", dbus.MakeVariant(status)); err != nil {
		return err
	}

	if rate, ok := info[InfoRate].(float64); ok && rate > 0 {
		if err := props.Set(mprisPlayerIface, "Rate", dbus.MakeVariant(rate)); err != nil {
			return err
		}
	}

	if position, ok := info[InfoPosition].(float64); ok {
		if err := props.Set(mprisPlayerIface, "Position", dbus.MakeVariant(int64(position*microsPerSecond))); err != nil {
			return err
		}
	}

	return nil
}

// dispatch routes one MPRIS method call into the bridge handler, honoring
// the registered command set.
func (m *MPRIS) dispatch(cmd Command, value float64) {
	m.mu.Lock()
	handler := m.handler
	allowed := m.commands[cmd]
	m.mu.Unlock()

	if handler != nil && allowed {
		handler(cmd, value)
	}
}

func (m *MPRIS) propSpec() map[string]map[string]*prop.Prop {
	return map[string]map[string]*prop.Prop{
		mprisRootIface: {
			"Identity":            {Value: constant.ClientName, Emit: prop.EmitTrue},
			"CanQuit":             {Value: false, Emit: prop.EmitTrue},
			"CanRaise":            {Value: false, Emit: prop.EmitTrue},
			"HasTrackList":        {Value: false, Emit: prop.EmitTrue},
			"SupportedUriSchemes": {Value: []string{}, Emit: prop.EmitTrue},
			"SupportedMimeTypes":  {Value: []string{}, Emit: prop.EmitTrue},
		},
		mprisPlayerIface: {
			"PlaybackStatus": {Value: "Stopped", Emit: prop.EmitTrue},
			"Rate":           {Value: 1.0, Emit: prop.EmitTrue},
			"MinimumRate":    {Value: 0.25, Emit: prop.EmitTrue},
			"MaximumRate":    {Value: 4.0, Emit: prop.EmitTrue},
			"Metadata":       {Value: map[string]dbus.Variant{}, Emit: prop.EmitTrue},
			"Volume":         {Value: 1.0, Emit: prop.EmitTrue},
			"Position":       {Value: int64(0), Emit: prop.EmitFalse},
			"CanGoNext":      {Value: true, Emit: prop.EmitTrue},
			"CanGoPrevious":  {Value: true, Emit: prop.EmitTrue},
			"CanPlay":        {Value: true, Emit: prop.EmitTrue},
			"CanPause":       {Value: true, Emit: prop.EmitTrue},
			"CanSeek":        {Value: true, Emit: prop.EmitTrue},
			"CanControl":     {Value: true, Emit: prop.EmitTrue},
		},
	}
}

// mprisPlayer exposes the org.mpris.MediaPlayer2.Player methods.
type mprisPlayer struct {
	surface *MPRIS
}

func (p *mprisPlayer) Play() *dbus.Error {
	p.surface.dispatch(CommandPlay, 0)
	return nil
}

func (p *mprisPlayer) Pause() *dbus.Error {
	p.surface.dispatch(CommandPause, 0)
	return nil
}

func (p *mprisPlayer) PlayPause() *dbus.Error {
	p.surface.dispatch(CommandTogglePause, 0)
	return nil
}

func (p *mprisPlayer) Stop() *dbus.Error {
	p.surface.dispatch(CommandPause, 0)
	return nil
}

func (p *mprisPlayer) Next() *dbus.Error {
	p.surface.dispatch(CommandNextTrack, 0)
	return nil
}

func (p *mprisPlayer) Previous() *dbus.Error {
	p.surface.dispatch(CommandPreviousTrack, 0)
	return nil
}

// Seek receives a relative offset in microseconds.
func (p *mprisPlayer) Seek(offset int64) *dbus.Error {
	seconds := float64(offset) / microsPerSecond
	if seconds >= 0 {
		p.surface.dispatch(CommandSkipForward, seconds)
	} else {
		p.surface.dispatch(CommandSkipBackward, -seconds)
	}
	return nil
}

// SetPosition receives an absolute position in microseconds.
func (p *mprisPlayer) SetPosition(trackID dbus.ObjectPath, position int64) *dbus.Error {
	p.surface.dispatch(CommandChangePosition, float64(position)/microsPerSecond)
	return nil
}

func (p *mprisPlayer) OpenUri(uri string) *dbus.Error {
	return nil
}

// mprisRoot exposes the org.mpris.MediaPlayer2 methods. Quit and Raise are
// declared unsupported via properties, so both are no-ops.
type mprisRoot struct{}

func (r *mprisRoot) Raise() *dbus.Error { return nil }
func (r *mprisRoot) Quit() *dbus.Error  { return nil }
