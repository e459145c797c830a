package nowplaying

// Surface is one OS integration for now-playing state. The bridge drives it;
// implementations translate the generic info dictionary and command set into
// their platform's encoding.
type Surface interface {
	// Activate acquires the surface for a new session.
	Activate() error

	// Deactivate releases the surface. Must tolerate being called without
	// a prior successful Activate.
	Deactivate() error

	// SetCommands installs the remote-command set and their handler.
	SetCommands(commands []Command, handler Handler) error

	// ClearCommands removes all installed commands.
	ClearCommands()

	// SetInterruptionHandler installs the focus-loss callback; nil removes it.
	SetInterruptionHandler(handler InterruptionHandler)

	// SetInfo publishes the merged metadata/playback dictionary.
	SetInfo(info map[string]interface{}) error
}

// Noop is the surface used when no OS integration is available (or wanted).
type Noop struct{}

func (Noop) Activate() error                                { return nil }
func (Noop) Deactivate() error                              { return nil }
func (Noop) SetCommands([]Command, Handler) error           { return nil }
func (Noop) ClearCommands()                                 {}
func (Noop) SetInterruptionHandler(InterruptionHandler)     {}
func (Noop) SetInfo(map[string]interface{}) error           { return nil }
