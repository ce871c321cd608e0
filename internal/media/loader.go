package media

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/keagan/reelcore/internal/ffmpeg"
)

// Loader opens local media files as handles, probing decode metadata in
// the background. A handle is usable as soon as Open returns; it reports
// not-ready until the probe lands, and the engine simply skips it per
// tick until then.
type Loader struct {
	log  zerolog.Logger
	exec *ffmpeg.Executor
	reg  *Registry
}

// NewLoader creates a loader that registers opened handles
func NewLoader(logger zerolog.Logger, exec *ffmpeg.Executor, reg *Registry) *Loader {
	return &Loader{
		log:  logger.With().Str("component", "loader").Logger(),
		exec: exec,
		reg:  reg,
	}
}

// Open creates a handle for a local media file and starts probing it.
// Probe failure marks the handle failed; it never surfaces as an error.
func (l *Loader) Open(ctx context.Context, path string) *SimHandle {
	h := NewSimHandle(path, nil)
	l.reg.Register(path, h)

	go func() {
		info, err := l.exec.Probe(ctx, path)
		if err != nil {
			l.log.Warn().Err(err).Str("source", path).Msg("probe failed, handle marked failed")
			h.SetFailed()
			return
		}
		h.SetMeta(info.Duration, info.Width, info.Height)
		l.log.Info().
			Str("source", path).
			Dur("duration", info.Duration).
			Int("width", info.Width).
			Int("height", info.Height).
			Msg("media ready")
	}()

	return h
}
