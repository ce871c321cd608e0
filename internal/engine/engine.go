// Package engine owns the project clock and runs the per-tick pipeline:
// resolve the active clips, synchronize media handles, compose a frame.
// All mutable engine state lives inside one Engine instance; there are
// no ambient globals.
package engine

import (
	"image"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/keagan/reelcore/internal/compositor"
	"github.com/keagan/reelcore/internal/config"
	"github.com/keagan/reelcore/internal/media"
	"github.com/keagan/reelcore/internal/resolve"
	"github.com/keagan/reelcore/internal/timeline"
)

// Engine is the synchronized timeline and compositing core. Ticks never
// run concurrently with each other; the mutex serializes transport
// commands against the tick path.
type Engine struct {
	mu sync.Mutex

	log     zerolog.Logger
	cfg     *config.Config
	project *timeline.Project
	handles *media.Registry
	comp    *compositor.Compositor
	sync    *syncController
	clock   Clock

	playing  bool
	playhead time.Duration
	lastTick time.Time
	anchored bool

	snap  resolve.Snapshot
	frame image.Image
}

// New assembles an engine around a project and its media handles
func New(logger zerolog.Logger, cfg *config.Config, project *timeline.Project, handles *media.Registry, clock Clock) *Engine {
	if clock == nil {
		clock = WallClock{}
	}
	log := logger.With().Str("component", "engine").Logger()
	return &Engine{
		log:     log,
		cfg:     cfg,
		project: project,
		handles: handles,
		comp:    compositor.New(logger, cfg),
		sync:    newSyncController(logger, handles, cfg.DriftTolerance()),
		clock:   clock,
	}
}

// Project exposes the timeline for the interaction controller
func (e *Engine) Project() *timeline.Project { return e.project }

// Handles exposes the media registry
func (e *Engine) Handles() *media.Registry { return e.handles }

// Clock returns the engine's tick clock
func (e *Engine) Clock() Clock { return e.clock }

// Play starts the transport from the current playhead
func (e *Engine) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.playing {
		return
	}
	e.playing = true
	// Re-anchor so paused time never counts as elapsed playback.
	e.anchored = false
	e.log.Info().Dur("playhead", e.playhead).Msg("play")
}

// Pause stops the transport, keeping the playhead
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.playing {
		return
	}
	e.playing = false
	e.log.Info().Dur("playhead", e.playhead).Msg("pause")
}

// Seek jumps the playhead. Seeks and drags are the only discontinuous
// time jumps; handle positions catch up on the next tick.
func (e *Engine) Seek(t time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t < 0 {
		t = 0
	}
	if dur := e.project.Duration(); t > dur {
		t = dur
	}
	e.playhead = t
	e.log.Debug().Dur("playhead", t).Msg("seek")
}

// Playing reports the transport state
func (e *Engine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

// Playhead returns the current global time
func (e *Engine) Playhead() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playhead
}

// Frame returns the last composed frame
func (e *Engine) Frame() image.Image {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frame
}

// VisibleText returns the text clips active at the last tick, for the
// timing-editing panel.
func (e *Engine) VisibleText() []*timeline.Clip {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*timeline.Clip, len(e.snap.Text))
	copy(out, e.snap.Text)
	return out
}

// Tick runs one resolver → sync → composite pass at the given instant
// and returns the composed frame. It is the only place global time
// advances, and it advances monotonically while playing.
func (e *Engine) Tick(now time.Time) image.Image {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.anchored && e.playing {
		if dt := now.Sub(e.lastTick); dt > 0 {
			e.playhead += dt
		}
	}
	e.lastTick = now
	e.anchored = true

	// Reaching the end is a terminal-then-initial transition: stop and
	// rewind to zero, not a plain pause.
	if dur := e.project.Duration(); e.playing && dur > 0 && e.playhead >= dur {
		e.playing = false
		e.playhead = 0
		e.sync.stopAll()
		e.log.Info().Msg("playback reached end, rewound to start")
	}

	e.snap = resolve.Active(e.project, e.playhead)
	e.sync.apply(e.snap, e.playing, e.playhead)

	frame, w, h := e.activeFrame()
	e.frame = e.comp.Compose(frame, w, h, e.snap.Text)
	return e.frame
}

// activeFrame fetches the decoded frame and native resolution of the
// active video handle. A missing or not-ready handle yields a blank
// frame this tick; composition proceeds regardless.
func (e *Engine) activeFrame() (image.Image, int, int) {
	if e.snap.Video == nil {
		return nil, 0, 0
	}
	h, ok := e.handles.Lookup(e.snap.Video.Video.Source)
	if !ok || !h.Ready() {
		return nil, 0, 0
	}
	w, hh := h.Resolution()
	if fs, ok := h.(media.FrameSource); ok {
		return fs.Frame(), w, hh
	}
	return nil, w, hh
}
