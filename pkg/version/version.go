// Package version carries build-time identity shown in the relay
// information document and startup log line.
package version

// V and Description are overridden at build time via -ldflags; the
// defaults below are a reasonable fallback for local builds.
var (
	V           = "v0.1.0"
	Description = "a nostr relay"
	URL         = "https://github.com/relaymere/relaymere"
)
