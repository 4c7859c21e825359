// Package player defines a unified abstraction layer for media playback engines.
// The architecture supports multiple backends, with the primary implementation targeting 'mpv' via its JSON-IPC interface.
package player

import "strings"

// Player encapsulates the required capabilities for a media playback backend.
type Player interface {
	// Start launches the playback engine in idle mode without media, ready
	// to accept LoadFile calls over IPC.
	Start(title string) error

	// LoadFile replaces the currently loaded media with the given URL.
	// Requires a running engine (see Start).
	LoadFile(url string) error

	// Play starts playback of the given URL with the specified title.
	// It is the one-shot form: start the engine and load in a single call.
	Play(url string, title string, headers map[string]string) error

	// SetHeaders configures the HTTP headers attached to subsequent loads.
	SetHeaders(headers map[string]string) error

	// TogglePause inverts the current playback suspension state.
	TogglePause() error

	// GetTimePos retrieves the current absolute playback position in seconds.
	GetTimePos() (float64, error)

	// GetDuration retrieves the total temporal length of the active media file in seconds.
	GetDuration() (float64, error)

	// GetPausedStatus retrieves the current suspension state of the playback engine.
	GetPausedStatus() (bool, error)

	// HasActivePlayback verifies if the player has a media file currently initialized and active.
	HasActivePlayback() (bool, error)

	// Seek transitions the playback position to a specific absolute timestamp in seconds.
	Seek(seconds float64) error

	// IsRunning validates the liveness of the underlying playback process or handler.
	IsRunning() bool

	// Close terminates the playback engine and releases all associated system resources.
	Close() error

	// Socket retrieves the identifier for the Inter-Process Communication (IPC) channel.
	Socket() string

	// Wait returns a channel that is closed when the playback session terminates.
	Wait() <-chan struct{}
}

// New constructs the playback backend selected by name. Unknown names fall
// back to mpv.
func New(name string) Player {
	switch strings.ToLower(name) {
	case "iina":
		return NewIINA()
	default:
		return NewMPV()
	}
}
