package interaction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keagan/reelcore/internal/logging"
	"github.com/keagan/reelcore/internal/timeline"
)

func newFixture(t *testing.T) (*Controller, *timeline.Project) {
	t.Helper()
	p := timeline.NewProject(logging.Discard())
	p.AttachPrimaryVideo("a.mp4", 10*time.Second)
	return New(logging.Discard(), p), p
}

func TestBodyDragCentersOnPointer(t *testing.T) {
	c, p := newFixture(t)
	txt := p.AddText(timeline.TextAttrs{Content: "Hi"}, 0, 2*time.Second)

	require.NoError(t, c.BeginDrag(txt.ID, ZoneBody))
	require.NoError(t, c.DragTo(6*time.Second))
	c.EndDrag()

	assert.Equal(t, 5*time.Second, txt.Start, "drop time 6 with duration 2 gives [5,7]")
	assert.Equal(t, 7*time.Second, txt.End)
}

func TestBodyDragClampsWithoutDistortion(t *testing.T) {
	c, p := newFixture(t)
	txt := p.AddText(timeline.TextAttrs{Content: "Hi"}, 4*time.Second, 6*time.Second)

	require.NoError(t, c.BeginDrag(txt.ID, ZoneBody))

	require.NoError(t, c.DragTo(-30*time.Second))
	assert.Equal(t, time.Duration(0), txt.Start)
	assert.Equal(t, 2*time.Second, txt.Duration())

	require.NoError(t, c.DragTo(30*time.Second))
	assert.Equal(t, 8*time.Second, txt.Start)
	assert.Equal(t, 2*time.Second, txt.Duration(), "duration preserved through every update")
	c.EndDrag()
}

func TestDragVideoMovesLinkedAudio(t *testing.T) {
	c, p := newFixture(t)
	b := p.AppendVideo("b.mp4", 4*time.Second)

	require.NoError(t, c.BeginDrag(b.ID, ZoneBody))
	require.NoError(t, c.DragTo(5*time.Second))
	c.EndDrag()

	la := p.AudioTrack.Find(b.ID)
	require.NotNil(t, la)
	assert.Equal(t, b.Start, la.Start, "linked audio got identical bounds in the same step")
	assert.Equal(t, b.End, la.End)
	assert.Equal(t, 3*time.Second, b.Start)
}

func TestHandleDragKeepsOppositeBound(t *testing.T) {
	c, p := newFixture(t)
	txt := p.AddText(timeline.TextAttrs{Content: "Hi"}, 2*time.Second, 6*time.Second)

	require.NoError(t, c.BeginDrag(txt.ID, ZoneLeftHandle))
	require.NoError(t, c.DragTo(3*time.Second))
	c.EndDrag()
	assert.Equal(t, 3*time.Second, txt.Start)
	assert.Equal(t, 6*time.Second, txt.End, "right bound untouched")

	require.NoError(t, c.BeginDrag(txt.ID, ZoneRightHandle))
	require.NoError(t, c.DragTo(3100*time.Millisecond))
	c.EndDrag()
	assert.Equal(t, 3*time.Second, txt.Start)
	assert.Equal(t, 3100*time.Millisecond, txt.End)

	// Shrinking past the quantum clamps.
	require.NoError(t, c.BeginDrag(txt.ID, ZoneRightHandle))
	require.NoError(t, c.DragTo(0))
	c.EndDrag()
	assert.Equal(t, timeline.MinClipLength, txt.Duration())
}

func TestDragLinkedAudioRejected(t *testing.T) {
	c, p := newFixture(t)
	b := p.AppendVideo("b.mp4", 4*time.Second)
	la := p.AudioTrack.Find(b.ID)
	require.NotNil(t, la)

	assert.ErrorIs(t, c.BeginDrag(la.ID, ZoneBody), timeline.ErrLinkedAudio)
}

func TestSelectionStaysSynchronizedAfterDrag(t *testing.T) {
	c, p := newFixture(t)
	txt := p.AddText(timeline.TextAttrs{Content: "Hi"}, 0, 2*time.Second)

	require.NoError(t, c.Select(txt.ID))
	sel, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, time.Duration(0), sel.Start)

	require.NoError(t, c.BeginDrag(txt.ID, ZoneBody))
	require.NoError(t, c.DragTo(6*time.Second))
	c.EndDrag()

	sel, ok = c.Selected()
	require.True(t, ok)
	assert.Equal(t, 5*time.Second, sel.Start, "panel sees post-drag bounds")
	assert.Equal(t, 7*time.Second, sel.End)
}

func TestDeleteClearsSelection(t *testing.T) {
	c, p := newFixture(t)
	txt := p.AddText(timeline.TextAttrs{Content: "Hi"}, 0, 2*time.Second)

	require.NoError(t, c.Select(txt.ID))
	require.NoError(t, c.Delete(txt.ID))

	_, ok := c.Selected()
	assert.False(t, ok)
	assert.Nil(t, p.Find(txt.ID))
}

func TestUndoRestoresGesture(t *testing.T) {
	c, p := newFixture(t)
	txt := p.AddText(timeline.TextAttrs{Content: "Hi"}, 0, 2*time.Second)

	require.NoError(t, c.BeginDrag(txt.ID, ZoneBody))
	require.NoError(t, c.DragTo(6*time.Second))
	c.EndDrag()
	require.Equal(t, 5*time.Second, txt.Start)

	require.NoError(t, c.Undo())
	assert.Equal(t, time.Duration(0), txt.Start)
}
