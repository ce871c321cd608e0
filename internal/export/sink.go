package export

import (
	"fmt"
	"image"
	"image/draw"
	"os"
	"time"

	"github.com/nfnt/resize"
	"github.com/rs/zerolog"

	"github.com/keagan/reelcore/internal/config"
	"github.com/keagan/reelcore/internal/ffmpeg"
)

// FrameSink consumes the composed frames of an export run together with
// the audio mix description. Sink failure is the one error class that
// surfaces to the caller, since it cannot be resolved by continuing to
// edit.
type FrameSink interface {
	Start(w, h int, fps float64, audio []ffmpeg.AudioInput, duration time.Duration) error
	WriteFrame(img image.Image) error
	Close() error

	// Abort tears the sink down and discards partial output.
	Abort()
}

// FFmpegSink encodes frames through a rawvideo ffmpeg session, muxing
// the audio mix into one artifact.
type FFmpegSink struct {
	log    zerolog.Logger
	exec   *ffmpeg.Executor
	cfg    *config.Config
	output string

	sess *ffmpeg.EncodeSession
	w, h int
	buf  *image.RGBA
}

// NewFFmpegSink creates a sink writing to the output path
func NewFFmpegSink(logger zerolog.Logger, exec *ffmpeg.Executor, cfg *config.Config, output string) *FFmpegSink {
	return &FFmpegSink{
		log:    logger.With().Str("component", "export-sink").Logger(),
		exec:   exec,
		cfg:    cfg,
		output: output,
	}
}

func (s *FFmpegSink) Start(w, h int, fps float64, audio []ffmpeg.AudioInput, duration time.Duration) error {
	sess, err := s.exec.StartEncode(ffmpeg.EncodeOptions{
		Output:       s.output,
		Width:        w,
		Height:       h,
		FPS:          fps,
		Duration:     duration,
		VideoCodec:   s.cfg.Export.VideoCodec,
		AudioCodec:   s.cfg.Export.AudioCodec,
		CRF:          s.cfg.Export.CRF,
		Preset:       s.cfg.Export.Preset,
		AudioBitrate: s.cfg.Export.AudioBitrate,
		AudioInputs:  audio,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize capture sink: %w", err)
	}
	s.sess = sess
	s.w, s.h = w, h
	s.buf = image.NewRGBA(image.Rect(0, 0, w, h))
	s.log.Info().Str("output", s.output).Int("width", w).Int("height", h).Msg("capture sink started")
	return nil
}

// WriteFrame pushes one frame, rescaling when the compositor surface
// does not match the fixed output resolution.
func (s *FFmpegSink) WriteFrame(img image.Image) error {
	b := img.Bounds()
	if b.Dx() != s.w || b.Dy() != s.h {
		img = resize.Resize(uint(s.w), uint(s.h), img, resize.Bilinear)
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return s.sess.WriteFrame(rgba)
	}
	draw.Draw(s.buf, s.buf.Bounds(), img, img.Bounds().Min, draw.Src)
	return s.sess.WriteFrame(s.buf)
}

func (s *FFmpegSink) Close() error {
	if s.sess == nil {
		return nil
	}
	if err := s.sess.Close(); err != nil {
		return fmt.Errorf("capture sink aborted mid-stream: %w", err)
	}
	s.log.Info().Str("output", s.output).Msg("capture sink finished")
	return nil
}

// Abort kills the encoder and removes the partial artifact
func (s *FFmpegSink) Abort() {
	if s.sess != nil {
		s.sess.Abort()
	}
	_ = os.Remove(s.output)
	s.log.Warn().Str("output", s.output).Msg("partial export discarded")
}

// BufferSink collects frames in memory, for tests and previews
type BufferSink struct {
	W, H     int
	FPS      float64
	Audio    []ffmpeg.AudioInput
	Frames   int
	Closed   bool
	Aborted  bool
	StartErr error
	WriteErr error
}

func (s *BufferSink) Start(w, h int, fps float64, audio []ffmpeg.AudioInput, duration time.Duration) error {
	if s.StartErr != nil {
		return s.StartErr
	}
	s.W, s.H, s.FPS, s.Audio = w, h, fps, audio
	return nil
}

func (s *BufferSink) WriteFrame(img image.Image) error {
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.Frames++
	return nil
}

func (s *BufferSink) Close() error {
	s.Closed = true
	return nil
}

func (s *BufferSink) Abort() {
	s.Aborted = true
}
