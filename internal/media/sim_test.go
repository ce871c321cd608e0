package media

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keagan/reelcore/internal/logging"
)

// fakeClock is a manually stepped time source
type fakeClock struct {
	at time.Time
}

func (c *fakeClock) Now() time.Time          { return c.at }
func (c *fakeClock) advance(d time.Duration) { c.at = c.at.Add(d) }

func readyHandle(clk *fakeClock, source string) *SimHandle {
	h := NewSimHandle(source, clk.Now)
	h.SetMeta(30*time.Second, 640, 480)
	return h
}

func TestSimHandleNotReadyUntilMeta(t *testing.T) {
	clk := &fakeClock{at: time.Unix(1000, 0)}
	h := NewSimHandle("a.mp4", clk.Now)

	assert.False(t, h.Ready())
	assert.ErrorIs(t, h.Play(), ErrNotReady)
	assert.ErrorIs(t, h.Seek(time.Second), ErrNotReady)

	h.SetMeta(30*time.Second, 640, 480)
	assert.True(t, h.Ready())
	assert.Equal(t, 30*time.Second, h.Duration())
	w, hh := h.Resolution()
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, hh)
}

func TestSimHandleFailedDropsCommands(t *testing.T) {
	clk := &fakeClock{at: time.Unix(1000, 0)}
	h := readyHandle(clk, "a.mp4")
	h.SetFailed()

	assert.False(t, h.Ready())
	assert.True(t, h.Failed())
	assert.ErrorIs(t, h.Play(), ErrFailed)
}

func TestSimHandlePositionAdvancesOnlyWhilePlaying(t *testing.T) {
	clk := &fakeClock{at: time.Unix(1000, 0)}
	h := readyHandle(clk, "a.mp4")

	clk.advance(time.Second)
	assert.Equal(t, time.Duration(0), h.Position(), "paused handle holds position")

	require.NoError(t, h.Play())
	clk.advance(2 * time.Second)
	assert.Equal(t, 2*time.Second, h.Position())

	require.NoError(t, h.Pause())
	clk.advance(time.Minute)
	assert.Equal(t, 2*time.Second, h.Position())
}

func TestSimHandleRateScalesElapsedTime(t *testing.T) {
	clk := &fakeClock{at: time.Unix(1000, 0)}
	h := readyHandle(clk, "a.mp4")

	require.NoError(t, h.SetRate(2.0))
	require.NoError(t, h.Play())
	clk.advance(3 * time.Second)
	assert.Equal(t, 6*time.Second, h.Position())
}

func TestSimHandleSeekClampsAndCounts(t *testing.T) {
	clk := &fakeClock{at: time.Unix(1000, 0)}
	h := readyHandle(clk, "a.mp4")

	require.NoError(t, h.Seek(-time.Second))
	assert.Equal(t, time.Duration(0), h.Position())

	require.NoError(t, h.Seek(time.Hour))
	assert.Equal(t, 30*time.Second, h.Position(), "clamped to resource duration")

	assert.Equal(t, 2, h.SeekCount())
}

func TestSimHandlePositionCapsAtDuration(t *testing.T) {
	clk := &fakeClock{at: time.Unix(1000, 0)}
	h := readyHandle(clk, "a.mp4")

	require.NoError(t, h.Play())
	clk.advance(time.Hour)
	assert.Equal(t, 30*time.Second, h.Position())
}

func TestRegistryLookupAndPauseAll(t *testing.T) {
	clk := &fakeClock{at: time.Unix(1000, 0)}
	reg := NewRegistry(logging.Discard())

	a, b := readyHandle(clk, "a.mp4"), readyHandle(clk, "b.mp4")
	reg.Register("a.mp4", a)
	reg.Register("b.mp4", b)

	got, ok := reg.Lookup("a.mp4")
	require.True(t, ok)
	assert.Same(t, a, got.(*SimHandle))

	_, ok = reg.Lookup("missing.mp4")
	assert.False(t, ok)

	assert.ElementsMatch(t, []string{"a.mp4", "b.mp4"}, reg.Sources())

	require.NoError(t, a.Play())
	require.NoError(t, b.Play())
	reg.PauseAll()
	assert.False(t, a.Playing())
	assert.False(t, b.Playing())
}
