// Package tui provides the primary terminal user interface implementation.
package tui

import (
	"runtime"

	"github.com/vidra-cli/vidra/nowplaying"
)

// newSurface picks the OS now playing integration. Only the MPRIS D-Bus
// surface is implemented; other platforms get a no-op.
func newSurface() nowplaying.Surface {
	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd", "netbsd":
		return nowplaying.NewMPRIS()
	default:
		return nowplaying.Noop{}
	}
}
