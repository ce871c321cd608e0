package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keagan/reelcore/internal/config"
	"github.com/keagan/reelcore/internal/logging"
	"github.com/keagan/reelcore/internal/media"
	"github.com/keagan/reelcore/internal/timeline"
)

func TestVideoClipSwitchIsInstantaneous(t *testing.T) {
	r := newRig(t)
	r.eng.Seek(4900 * time.Millisecond)
	r.eng.Play()
	r.eng.Tick(r.clk.Now())

	a, b := r.handle("a.mp4"), r.handle("b.mp4")
	require.True(t, a.Playing())
	assert.False(t, b.Playing())

	r.step(200 * time.Millisecond) // playhead crosses into B at 5.1s

	assert.False(t, a.Playing(), "old handle paused immediately, no fade-out")
	assert.True(t, b.Playing())
	assert.InDelta(t, float64(100*time.Millisecond), float64(b.Position()), float64(20*time.Millisecond),
		"new handle seeked to its local offset")
}

func TestDriftCorrectionOnlyBeyondTolerance(t *testing.T) {
	r := newRig(t)
	r.eng.Play()
	r.eng.Tick(r.clk.Now())

	a := r.handle("a.mp4")
	r.step(100 * time.Millisecond)
	base := a.SeekCount()

	// Handle and engine share the clock, so drift stays zero and
	// further ticks must not reseek.
	for i := 0; i < 10; i++ {
		r.step(100 * time.Millisecond)
	}
	assert.Equal(t, base, a.SeekCount(), "no needless seeking within tolerance")

	// Force divergence beyond tolerance; the next tick corrects it.
	require.NoError(t, a.Seek(3*time.Second))
	forced := a.SeekCount()
	r.step(100 * time.Millisecond)
	assert.Equal(t, forced+1, a.SeekCount())
	assert.InDelta(t, float64(r.eng.Playhead()), float64(a.Position()), float64(50*time.Millisecond))
}

func TestNotReadyHandleSkippedThenPickedUp(t *testing.T) {
	r := newRig(t)
	late := media.NewSimHandle("late.mp3", r.clk.Now)
	r.reg.Register("late.mp3", late)
	r.p.AddAudio("late.mp3", 0, 10*time.Second, 1.0)

	r.eng.Play()
	r.eng.Tick(r.clk.Now())
	r.step(100 * time.Millisecond)
	assert.False(t, late.Playing(), "not-ready handle skipped, never an error")

	late.SetMeta(30*time.Second, 0, 0)
	r.step(100 * time.Millisecond)
	assert.True(t, late.Playing(), "retried once decode metadata lands")
}

func TestFailedHandleCommandsDropped(t *testing.T) {
	r := newRig(t)
	broken := media.NewSimHandle("broken.mp3", r.clk.Now)
	broken.SetFailed()
	r.reg.Register("broken.mp3", broken)
	r.p.AddAudio("broken.mp3", 0, 10*time.Second, 1.0)

	r.eng.Play()
	r.eng.Tick(r.clk.Now())
	r.step(100 * time.Millisecond)

	assert.False(t, broken.Playing())
	assert.True(t, r.handle("music.mp3").Playing(), "other handles unaffected")
}

func TestAudioSetEnterAndLeave(t *testing.T) {
	r := newRig(t)
	voice := media.NewSimHandle("voice.mp3", r.clk.Now)
	voice.SetMeta(30*time.Second, 0, 0)
	r.reg.Register("voice.mp3", voice)
	r.p.AddAudio("voice.mp3", 2*time.Second, 4*time.Second, 1.0)

	r.eng.Play()
	r.eng.Tick(r.clk.Now())
	r.step(100 * time.Millisecond)
	assert.False(t, voice.Playing(), "not yet in the active set")
	assert.True(t, r.handle("music.mp3").Playing())

	r.eng.Seek(2500 * time.Millisecond)
	r.step(100 * time.Millisecond)
	assert.True(t, voice.Playing(), "entered: started at local offset")
	assert.InDelta(t, float64(600*time.Millisecond), float64(voice.Position()), float64(150*time.Millisecond))

	r.eng.Seek(5 * time.Second)
	r.step(100 * time.Millisecond)
	assert.False(t, voice.Playing(), "left: paused")
	assert.True(t, r.handle("music.mp3").Playing(), "music spans the whole timeline")
}

func TestSpeedMultiplierMapsLocalTime(t *testing.T) {
	clk := NewSteppedClock(time.Unix(1000, 0))
	log := logging.Discard()

	p := timeline.NewProject(log)
	v := p.AttachPrimaryVideo("fast.mp4", 10*time.Second)
	v.Video.Speed = 2.0

	reg := media.NewRegistry(log)
	h := media.NewSimHandle("fast.mp4", clk.Now)
	h.SetMeta(30*time.Second, 640, 480)
	reg.Register("fast.mp4", h)

	eng := New(log, config.Default(), p, reg, clk)
	eng.Seek(3 * time.Second)
	eng.Tick(clk.Now())

	// local = (playhead - start) * speed
	assert.InDelta(t, float64(6*time.Second), float64(h.Position()), float64(50*time.Millisecond))
}

func TestScrubBeforeLoadNeverErrors(t *testing.T) {
	clk := NewSteppedClock(time.Unix(1000, 0))
	log := logging.Discard()

	p := timeline.NewProject(log)
	p.AttachPrimaryVideo("slow-load.mp4", 10*time.Second)

	reg := media.NewRegistry(log)
	reg.Register("slow-load.mp4", media.NewSimHandle("slow-load.mp4", clk.Now))

	eng := New(log, config.Default(), p, reg, clk)
	for _, at := range []time.Duration{0, 3 * time.Second, 9 * time.Second} {
		eng.Seek(at)
		frame := eng.Tick(clk.Now())
		assert.NotNil(t, frame, "blank frame composed while resource loads")
	}
}
