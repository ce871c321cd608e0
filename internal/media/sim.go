package media

import (
	"sync"
	"time"
)

// SimHandle simulates a decodable media resource's transport: it tracks
// play/pause state and advances its local position against an injected
// clock. It backs preview and export runs where frame decoding is done
// elsewhere, and gives tests a handle with controllable readiness.
type SimHandle struct {
	mu sync.Mutex

	source string
	dur    time.Duration
	width  int
	height int

	ready  bool
	failed bool

	playing bool
	rate    float64
	pos     time.Duration // position at the last transport change
	since   time.Time     // wall instant of the last transport change

	now func() time.Time

	seeks int
}

// NewSimHandle creates a not-yet-ready handle for a source. The clock
// func defaults to time.Now; tests inject a stepped clock.
func NewSimHandle(source string, now func() time.Time) *SimHandle {
	if now == nil {
		now = time.Now
	}
	return &SimHandle{source: source, rate: 1.0, now: now}
}

// SetMeta records decode metadata and marks the handle ready
func (h *SimHandle) SetMeta(dur time.Duration, width, height int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dur = dur
	h.width = width
	h.height = height
	h.ready = true
}

// SetFailed marks the resource as failed to load
func (h *SimHandle) SetFailed() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failed = true
}

func (h *SimHandle) Source() string { return h.source }

func (h *SimHandle) Ready() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ready && !h.failed
}

func (h *SimHandle) Failed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.failed
}

func (h *SimHandle) Play() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.usable(); err != nil {
		return err
	}
	if h.playing {
		return nil
	}
	h.pos = h.positionLocked()
	h.since = h.now()
	h.playing = true
	return nil
}

func (h *SimHandle) Pause() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.usable(); err != nil {
		return err
	}
	if !h.playing {
		return nil
	}
	h.pos = h.positionLocked()
	h.playing = false
	return nil
}

func (h *SimHandle) Playing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playing
}

func (h *SimHandle) Seek(pos time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.usable(); err != nil {
		return err
	}
	if pos < 0 {
		pos = 0
	}
	if pos > h.dur {
		pos = h.dur
	}
	h.pos = pos
	h.since = h.now()
	h.seeks++
	return nil
}

func (h *SimHandle) Position() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.positionLocked()
}

func (h *SimHandle) SetRate(rate float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.usable(); err != nil {
		return err
	}
	if rate <= 0 {
		rate = 1.0
	}
	if rate == h.rate {
		return nil
	}
	h.pos = h.positionLocked()
	h.since = h.now()
	h.rate = rate
	return nil
}

func (h *SimHandle) Duration() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dur
}

func (h *SimHandle) Resolution() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width, h.height
}

// SeekCount returns how many seeks were issued, for drift-correction tests
func (h *SimHandle) SeekCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.seeks
}

func (h *SimHandle) usable() error {
	if h.failed {
		return ErrFailed
	}
	if !h.ready {
		return ErrNotReady
	}
	return nil
}

func (h *SimHandle) positionLocked() time.Duration {
	if !h.playing {
		return h.pos
	}
	elapsed := h.now().Sub(h.since)
	pos := h.pos + time.Duration(float64(elapsed)*h.rate)
	if pos > h.dur {
		pos = h.dur
	}
	return pos
}
