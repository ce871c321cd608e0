package engine

import (
	"context"
	"image"
	"time"

	"github.com/rs/zerolog"
)

// Scheduler is the tick source. It has a single Tick entry point,
// callable from the free-running preview loop, the export loop, or a
// deterministic test harness.
type Scheduler struct {
	log      zerolog.Logger
	eng      *Engine
	interval time.Duration
}

// NewScheduler creates a scheduler ticking at the engine's frame rate
func NewScheduler(logger zerolog.Logger, eng *Engine, interval time.Duration) *Scheduler {
	return &Scheduler{
		log:      logger.With().Str("component", "scheduler").Logger(),
		eng:      eng,
		interval: interval,
	}
}

// Interval returns the tick interval
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Tick runs one engine pass at the clock's current instant
func (s *Scheduler) Tick() image.Image {
	return s.eng.Tick(s.eng.Clock().Now())
}

// Run drives the free-running preview loop until the context ends. Every
// composed frame is handed to onFrame, whether or not the transport is
// playing, so scrubbing repaints immediately.
func (s *Scheduler) Run(ctx context.Context, onFrame func(image.Image)) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Debug().Dur("interval", s.interval).Msg("preview loop started")
	for {
		select {
		case <-ctx.Done():
			s.log.Debug().Msg("preview loop stopped")
			return ctx.Err()
		case <-ticker.C:
			frame := s.Tick()
			if onFrame != nil {
				onFrame(frame)
			}
		}
	}
}
