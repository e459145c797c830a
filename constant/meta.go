// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Vidra is the canonical application identifier used for filesystem paths and CLI branding.
	Vidra = "vidra"

	// Version is the current application semantic version string.
	Version = "0.1.0"

	// UserAgent is the HTTP User-Agent string sent with every media server request.
	UserAgent = "Vidra/" + Version

	// ClientName is the client identifier reported in the media server authorization header.
	ClientName = "Vidra"
)

// Build metadata, overridden at link time via -ldflags.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)
