// Package media owns the playable resource handles the engine commands.
// A handle stands in for one decodable media resource supplied by an
// external upload/selection component; the sync controller is its only
// commander.
package media

import (
	"errors"
	"image"
	"time"
)

// ErrNotReady means a handle was commanded before its decode metadata
// became available. Callers skip the tick and retry; this never surfaces.
var ErrNotReady = errors.New("media resource not ready")

// ErrFailed means the underlying resource failed to load. Commands against
// a failed handle are dropped and logged, never surfaced.
var ErrFailed = errors.New("media resource failed to load")

// Handle is one playable media resource with its own local transport.
type Handle interface {
	Source() string

	// Ready reports whether decode metadata is available. A handle that
	// is not ready is treated as inactive this tick and retried later.
	Ready() bool
	Failed() bool

	Play() error
	Pause() error
	Playing() bool

	// Seek moves the local position. Position is clamped to [0, Duration].
	Seek(pos time.Duration) error
	Position() time.Duration

	// SetRate adjusts the local playback rate (per-clip speed multiplier).
	SetRate(rate float64) error

	Duration() time.Duration

	// Resolution returns the native frame size, or zeros for audio-only
	// resources.
	Resolution() (w, h int)
}

// FrameSource is implemented by handles that can yield a decoded frame at
// the current position. The compositor falls back to a black fill when
// the active handle has no frame to give.
type FrameSource interface {
	Frame() image.Image
}
