// Package export captures a project into a single artifact by replaying
// it through the engine at the configured frame rate and streaming every
// composed frame into a sink. The capture is bound to real time: it runs
// the same tick pipeline the preview runs, once per frame interval.
package export

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/keagan/reelcore/internal/config"
	"github.com/keagan/reelcore/internal/engine"
	"github.com/keagan/reelcore/internal/ffmpeg"
	"github.com/keagan/reelcore/internal/timeline"
)

var (
	// ErrExport wraps every sink failure. It is the only error class a
	// caller sees from a running capture.
	ErrExport = errors.New("export failed")

	// ErrAborted reports a cancelled or paused capture whose partial
	// output was discarded.
	ErrAborted = errors.New("export aborted")
)

// Summary counts what went into the artifact
type Summary struct {
	VideoClips   int
	AudioTracks  int
	TextOverlays int
	Frames       int
}

// Result describes a finished export
type Result struct {
	Output     string
	Summary    Summary
	RenderTime time.Duration
}

// Exporter replays a project through its engine into a frame sink
type Exporter struct {
	log zerolog.Logger
	cfg *config.Config
	eng *engine.Engine

	// pace waits out one frame interval between ticks. Tests swap it
	// for a stepped-clock advance.
	pace func(time.Duration)
}

// New creates an exporter over an assembled engine
func New(logger zerolog.Logger, cfg *config.Config, eng *engine.Engine) *Exporter {
	return &Exporter{
		log:  logger.With().Str("component", "export").Logger(),
		cfg:  cfg,
		eng:  eng,
		pace: time.Sleep,
	}
}

// Export drives the engine from zero through the full project duration,
// writing one frame per interval. Cancelling the context or pausing the
// engine mid-capture aborts the sink and discards partial output.
func (x *Exporter) Export(ctx context.Context, sink FrameSink, output string) (*Result, error) {
	project := x.eng.Project()
	dur := project.Duration()
	if dur <= 0 {
		return nil, fmt.Errorf("%w: project has no clips", ErrExport)
	}

	interval := x.cfg.FrameInterval()
	total := int(math.Round(dur.Seconds() * x.cfg.Playback.FPS))
	if total < 1 {
		total = 1
	}

	w, h := x.outputSize(project)
	audio := x.audioInputs(project)

	if err := sink.Start(w, h, x.cfg.Playback.FPS, audio, dur); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExport, err)
	}

	x.log.Info().
		Str("output", output).
		Dur("duration", dur).
		Int("frames", total).
		Int("audio_inputs", len(audio)).
		Msg("export started")

	began := x.eng.Clock().Now()
	x.eng.Seek(0)
	x.eng.Play()

	written := 0
	for written < total {
		select {
		case <-ctx.Done():
			sink.Abort()
			x.eng.Pause()
			x.eng.Handles().PauseAll()
			x.log.Warn().Int("frames_written", written).Msg("export cancelled")
			return nil, ErrAborted
		default:
		}

		// Frame instants are synthesized from the frame index, not read
		// off the clock, so tick processing overhead never bleeds into
		// the playhead. The last instant stays below the project
		// duration, so the engine cannot hit its end-of-project rewind
		// mid-capture.
		at := began.Add(time.Duration(written) * interval)
		frame := x.eng.Tick(at)
		if err := sink.WriteFrame(frame); err != nil {
			sink.Abort()
			x.eng.Pause()
			return nil, fmt.Errorf("%w: %v", ErrExport, err)
		}
		written++

		// Only a user pause can stop the transport mid-capture. A pause
		// landing after the final frame lets the artifact finish.
		if written < total && !x.eng.Playing() {
			sink.Abort()
			x.eng.Handles().PauseAll()
			x.log.Warn().Int("frames_written", written).Msg("export aborted by pause")
			return nil, ErrAborted
		}

		if written < total {
			x.pace(interval)
		}
	}

	x.eng.Pause()
	if err := sink.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExport, err)
	}

	res := &Result{
		Output: output,
		Summary: Summary{
			VideoClips:   len(project.VideoTrack.Clips),
			AudioTracks:  len(project.AudioTrack.Clips),
			TextOverlays: len(project.TextTrack.Clips),
			Frames:       written,
		},
		RenderTime: x.eng.Clock().Now().Sub(began),
	}
	x.log.Info().
		Int("video_clips", res.Summary.VideoClips).
		Int("audio_tracks", res.Summary.AudioTracks).
		Int("text_overlays", res.Summary.TextOverlays).
		Dur("render_time", res.RenderTime).
		Msg("export finished")
	return res, nil
}

// outputSize picks the artifact resolution: the primary video's native
// resolution when its handle is ready, else the design dimensions.
func (x *Exporter) outputSize(p *timeline.Project) (int, int) {
	for _, c := range p.VideoTrack.Clips {
		h, ok := x.eng.Handles().Lookup(c.Video.Source)
		if ok && h.Ready() {
			return h.Resolution()
		}
	}
	return x.cfg.Design.Width, x.cfg.Design.Height
}

// audioInputs maps every audio clip, linked or standalone, to a mixer
// input at its timeline offset, trimmed to the clip's length.
func (x *Exporter) audioInputs(p *timeline.Project) []ffmpeg.AudioInput {
	inputs := make([]ffmpeg.AudioInput, 0, len(p.AudioTrack.Clips))
	for _, c := range p.AudioTrack.Clips {
		inputs = append(inputs, ffmpeg.AudioInput{
			Path:     c.Audio.Source,
			Offset:   c.Start,
			Duration: c.End - c.Start,
			Volume:   c.Audio.Volume,
		})
	}
	return inputs
}
