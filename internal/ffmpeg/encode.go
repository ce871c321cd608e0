package ffmpeg

import (
	"fmt"
	"image"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// AudioInput is one audio resource routed into the export mix. Offset
// delays the input so it lands at its clip's position on the timeline;
// Duration trims the source to the clip's length before delaying; Volume
// applies the per-clip gain before mixing. A zero Duration leaves the
// source untrimmed.
type AudioInput struct {
	Path     string
	Offset   time.Duration
	Duration time.Duration
	Volume   float64
}

// EncodeOptions configures a rawvideo encode session
type EncodeOptions struct {
	Output       string
	Width        int
	Height       int
	FPS          float64
	Duration     time.Duration
	VideoCodec   string
	AudioCodec   string
	CRF          int
	Preset       string
	AudioBitrate string
	AudioInputs  []AudioInput
}

// EncodeSession is a running ffmpeg process consuming raw RGBA frames on
// stdin and muxing the audio mix into one artifact.
type EncodeSession struct {
	logger zerolog.Logger
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr strings.Builder
	done   chan error
}

// StartEncode spawns ffmpeg for a frame-by-frame encode. The caller must
// call WriteFrame for every frame and then Close (or Abort).
func (e *Executor) StartEncode(opts EncodeOptions) (*EncodeSession, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", opts.Width, opts.Height)
	}
	if opts.VideoCodec == "" {
		opts.VideoCodec = DefaultVideoCodec
	}
	if opts.AudioCodec == "" {
		opts.AudioCodec = DefaultAudioCodec
	}
	if opts.CRF == 0 {
		opts.CRF = DefaultCRF
	}
	if opts.Preset == "" {
		opts.Preset = DefaultPreset
	}

	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-framerate", fmt.Sprintf("%g", opts.FPS),
		"-i", "-",
	}

	for _, in := range opts.AudioInputs {
		args = append(args, "-i", in.Path)
	}

	if filter := buildAudioMix(opts.AudioInputs); filter != "" {
		args = append(args,
			"-filter_complex", filter,
			"-map", "0:v",
			"-map", "[aout]",
			"-c:a", opts.AudioCodec,
		)
		if opts.AudioBitrate != "" {
			args = append(args, "-b:a", opts.AudioBitrate)
		}
	} else {
		args = append(args, "-map", "0:v", "-an")
	}

	args = append(args,
		"-c:v", opts.VideoCodec,
		"-preset", opts.Preset,
		"-crf", fmt.Sprintf("%d", opts.CRF),
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
	)
	if opts.Duration > 0 {
		args = append(args, "-t", fmt.Sprintf("%.3f", opts.Duration.Seconds()))
	}
	args = append(args, opts.Output)

	e.logger.Debug().Strs("args", args).Msg("starting encode session")

	s := &EncodeSession{
		logger: e.logger,
		cmd:    exec.Command(e.ffmpegPath, args...),
		done:   make(chan error, 1),
	}
	s.cmd.Stderr = &s.stderr

	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	s.stdin = stdin

	if err := s.cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	go func() {
		s.done <- s.cmd.Wait()
	}()

	return s, nil
}

// buildAudioMix produces the volume/adelay/amix filter graph for the
// audio inputs. Input index 0 is the rawvideo stream, so audio streams
// start at 1.
func buildAudioMix(inputs []AudioInput) string {
	if len(inputs) == 0 {
		return ""
	}

	var parts []string
	var labels []string
	for i, in := range inputs {
		label := fmt.Sprintf("[a%d]", i)
		delay := in.Offset.Milliseconds()
		chain := fmt.Sprintf("volume=%.3f,adelay=%d|%d", in.Volume, delay, delay)
		if in.Duration > 0 {
			chain = fmt.Sprintf("atrim=0:%.3f,%s", in.Duration.Seconds(), chain)
		}
		parts = append(parts, fmt.Sprintf("[%d:a]%s%s", i+1, chain, label))
		labels = append(labels, label)
	}

	parts = append(parts, fmt.Sprintf(
		"%samix=inputs=%d:normalize=0[aout]", strings.Join(labels, ""), len(inputs)))
	return strings.Join(parts, ";")
}

// WriteFrame pushes one composed RGBA frame into the encoder
func (s *EncodeSession) WriteFrame(img *image.RGBA) error {
	if _, err := s.stdin.Write(img.Pix); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

// Close finishes the stream and waits for ffmpeg to flush the artifact
func (s *EncodeSession) Close() error {
	if err := s.stdin.Close(); err != nil {
		return fmt.Errorf("failed to close stdin: %w", err)
	}
	if err := <-s.done; err != nil {
		return fmt.Errorf("ffmpeg encode failed: %w (%s)", err, strings.TrimSpace(s.stderr.String()))
	}
	return nil
}

// Abort kills the encoder without flushing; the partial output is the
// caller's to discard
func (s *EncodeSession) Abort() {
	s.stdin.Close()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	<-s.done
}
