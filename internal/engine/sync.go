package engine

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/keagan/reelcore/internal/media"
	"github.com/keagan/reelcore/internal/resolve"
	"github.com/keagan/reelcore/internal/timeline"
)

// syncController keeps every relevant media handle's local position
// consistent with the project clock. It is the exclusive commander of
// handles; nothing else touches them.
type syncController struct {
	log zerolog.Logger
	reg *media.Registry
	tol time.Duration

	prevVideoID     string
	prevVideoSource string
	prevAudio       map[string]*timeline.Clip
}

func newSyncController(logger zerolog.Logger, reg *media.Registry, tolerance time.Duration) *syncController {
	return &syncController{
		log:       logger.With().Str("component", "sync").Logger(),
		reg:       reg,
		tol:       tolerance,
		prevAudio: make(map[string]*timeline.Clip),
	}
}

// apply reconciles handle state against the tick's snapshot. Handles that
// are not yet decode-ready are skipped this tick and retried next tick;
// commands to failed handles are dropped and logged.
func (s *syncController) apply(snap resolve.Snapshot, playing bool, playhead time.Duration) {
	s.applyVideo(snap, playing, playhead)
	s.applyAudio(snap, playing, playhead)
}

func (s *syncController) applyVideo(snap resolve.Snapshot, playing bool, playhead time.Duration) {
	cur := snap.Video
	curID := snap.VideoID()

	if curID != s.prevVideoID {
		// Clip switch is instantaneous: the old handle is cut, the new
		// one starts at its local offset, no cross-fade.
		if s.prevVideoSource != "" {
			s.pause(s.prevVideoSource)
		}
		if cur != nil {
			if h, ok := s.usable(cur.Video.Source); ok {
				s.command(cur.Video.Source, h.SetRate(cur.Video.Speed))
				s.command(cur.Video.Source, h.Seek(videoLocal(cur, playhead)))
				s.log.Debug().Str("clip", curID).Msg("video clip switched")
			}
		}
		s.prevVideoID = curID
		if cur != nil {
			s.prevVideoSource = cur.Video.Source
		} else {
			s.prevVideoSource = ""
		}
	}

	if cur != nil {
		s.reconcile(cur.Video.Source, videoLocal(cur, playhead), playing)
	}
}

func (s *syncController) applyAudio(snap resolve.Snapshot, playing bool, playhead time.Duration) {
	active := make(map[string]*timeline.Clip, len(snap.Audio))
	for _, c := range snap.Audio {
		if c.Linked() {
			// The parent video's handle carries this audio.
			continue
		}
		active[c.ID] = c
	}

	// Clips leaving the active set are paused.
	for id, c := range s.prevAudio {
		if _, still := active[id]; !still {
			s.pause(c.Audio.Source)
			s.log.Debug().Str("clip", id).Msg("audio clip left active set")
		}
	}

	// Entering clips are started at their local offset; remaining clips
	// are drift-corrected exactly like video.
	for id, c := range active {
		local := playhead - c.Start
		if _, was := s.prevAudio[id]; !was {
			if h, ok := s.usable(c.Audio.Source); ok {
				s.command(c.Audio.Source, h.Seek(local))
				s.log.Debug().Str("clip", id).Msg("audio clip entered active set")
			}
		}
		s.reconcile(c.Audio.Source, local, playing)
	}

	s.prevAudio = active
}

// reconcile reseeks a handle only when drift exceeds tolerance, to avoid
// visible stutter from needless seeking, and keeps its play/pause state
// aligned with the transport.
func (s *syncController) reconcile(source string, local time.Duration, playing bool) {
	h, ok := s.usable(source)
	if !ok {
		return
	}

	drift := h.Position() - local
	if drift < 0 {
		drift = -drift
	}
	if drift > s.tol {
		s.command(source, h.Seek(local))
		s.log.Debug().Str("source", source).Dur("drift", drift).Msg("drift corrected")
	}

	if playing && !h.Playing() {
		s.command(source, h.Play())
	} else if !playing && h.Playing() {
		s.command(source, h.Pause())
	}
}

// stopAll pauses everything the controller has started
func (s *syncController) stopAll() {
	if s.prevVideoSource != "" {
		s.pause(s.prevVideoSource)
	}
	for _, c := range s.prevAudio {
		s.pause(c.Audio.Source)
	}
}

// usable looks a handle up and filters the recoverable failure modes: a
// missing or not-ready handle means skip this tick, a failed handle means
// drop and log.
func (s *syncController) usable(source string) (media.Handle, bool) {
	h, ok := s.reg.Lookup(source)
	if !ok {
		s.log.Debug().Str("source", source).Msg("no handle registered, skipping tick")
		return nil, false
	}
	if h.Failed() {
		s.log.Warn().Str("source", source).Msg("command dropped: resource failed to load")
		return nil, false
	}
	if !h.Ready() {
		s.log.Debug().Str("source", source).Msg("resource not ready, retrying next tick")
		return nil, false
	}
	return h, true
}

func (s *syncController) pause(source string) {
	if h, ok := s.usable(source); ok {
		s.command(source, h.Pause())
	}
}

func (s *syncController) command(source string, err error) {
	if err != nil {
		s.log.Warn().Err(err).Str("source", source).Msg("handle command dropped")
	}
}

// videoLocal maps global time into a video clip's media position,
// applying the per-clip speed multiplier.
func videoLocal(c *timeline.Clip, playhead time.Duration) time.Duration {
	local := playhead - c.Start
	if c.Video.Speed > 0 && c.Video.Speed != 1.0 {
		local = time.Duration(float64(local) * c.Video.Speed)
	}
	return local
}
