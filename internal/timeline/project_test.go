package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keagan/reelcore/internal/logging"
)

func newTestProject(t *testing.T) *Project {
	t.Helper()
	return NewProject(logging.Discard())
}

func TestAttachPrimaryVideoCreatesLinkedAudio(t *testing.T) {
	p := newTestProject(t)
	v := p.AttachPrimaryVideo("intro.mp4", 5*time.Second)

	require.NotNil(t, v)
	assert.Equal(t, time.Duration(0), v.Start)
	assert.Equal(t, 5*time.Second, v.End)
	assert.True(t, v.Video.Primary)

	la := p.AudioTrack.Find(v.ID)
	require.NotNil(t, la, "linked audio shares the parent ID")
	assert.True(t, la.Linked())
	assert.Equal(t, v.Start, la.Start)
	assert.Equal(t, v.End, la.End)
}

func TestAppendVideoStartsAfterDuration(t *testing.T) {
	p := newTestProject(t)
	p.AttachPrimaryVideo("a.mp4", 5*time.Second)
	b := p.AppendVideo("b.mp4", 5*time.Second)

	assert.Equal(t, 5*time.Second, b.Start)
	assert.Equal(t, 10*time.Second, b.End)
	assert.Equal(t, 10*time.Second, p.Duration())
}

func TestDurationIsDerived(t *testing.T) {
	p := newTestProject(t)
	assert.Equal(t, time.Duration(0), p.Duration())

	p.AttachPrimaryVideo("a.mp4", 5*time.Second)
	p.AddAudio("music.mp3", 0, 12*time.Second, 0.5)
	assert.Equal(t, 12*time.Second, p.Duration())

	p.AddText(TextAttrs{Content: "Hi"}, 0, 2*time.Second)
	assert.Equal(t, 12*time.Second, p.Duration())
}

func TestDeleteVideoCascadesToLinkedAudio(t *testing.T) {
	p := newTestProject(t)
	p.AttachPrimaryVideo("a.mp4", 5*time.Second)
	b := p.AppendVideo("b.mp4", 5*time.Second)
	music := p.AddAudio("music.mp3", 0, 10*time.Second, 0.5)

	require.NoError(t, p.Delete(b.ID))

	assert.Nil(t, p.VideoTrack.Find(b.ID))
	assert.Nil(t, p.AudioTrack.Find(b.ID))
	assert.NotNil(t, p.AudioTrack.Find(music.ID), "unrelated audio survives")
}

func TestDeleteLinkedAudioRejected(t *testing.T) {
	p := newTestProject(t)
	v := p.AttachPrimaryVideo("a.mp4", 5*time.Second)

	err := p.Delete(v.ID)
	assert.ErrorIs(t, err, ErrPrimaryClip)

	b := p.AppendVideo("b.mp4", 5*time.Second)
	la := p.AudioTrack.Find(b.ID)
	require.NotNil(t, la)

	// Direct deletion of the counterpart is a no-op with a diagnostic.
	err = p.Delete(la.ID)
	assert.ErrorIs(t, err, ErrLinkedAudio)
	assert.NotNil(t, p.AudioTrack.Find(b.ID))

	// Deleting the parent removes both atomically.
	require.NoError(t, p.Delete(b.ID))
	assert.Nil(t, p.VideoTrack.Find(b.ID))
	assert.Nil(t, p.AudioTrack.Find(b.ID))
}

func TestActiveAtIsHalfOpen(t *testing.T) {
	c := &Clip{Start: 5 * time.Second, End: 10 * time.Second}

	assert.False(t, c.ActiveAt(4999*time.Millisecond))
	assert.True(t, c.ActiveAt(5*time.Second))
	assert.True(t, c.ActiveAt(9999*time.Millisecond))
	assert.False(t, c.ActiveAt(10*time.Second))
}

func TestMinimumClipLengthEnforced(t *testing.T) {
	p := newTestProject(t)
	c := p.AddAudio("blip.mp3", time.Second, time.Second, 1.0)
	assert.Equal(t, MinClipLength, c.Duration())
}

func TestConfiguredMinClipLength(t *testing.T) {
	p := newTestProject(t)
	p.SetMinClipLength(200 * time.Millisecond)
	p.AttachPrimaryVideo("a.mp4", 5*time.Second)

	txt := p.AddText(TextAttrs{Content: "Hi"}, 0, 50*time.Millisecond)
	assert.Equal(t, 200*time.Millisecond, txt.Duration(), "sanitize uses the configured quantum")

	require.NoError(t, p.Apply(ResizeClip{ID: txt.ID, Edge: EdgeRight, To: 0}))
	assert.Equal(t, 200*time.Millisecond, txt.Duration(), "resize clamps at the configured quantum")

	p.SetMinClipLength(0)
	short := p.AddText(TextAttrs{Content: "Hi"}, 0, 10*time.Millisecond)
	assert.Equal(t, MinClipLength, short.Duration(), "zero restores the default")
}
