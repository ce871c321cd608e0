// Package resolve computes, for a given instant on the project clock,
// which clips are active on each track. Video resolves to at most one
// clip; audio and text resolve to the complete matching set, since
// concurrent music/narration and concurrent captions are intentional
// features rather than edge cases.
package resolve

import (
	"time"

	"github.com/keagan/reelcore/internal/timeline"
)

// Snapshot is a complete, consistent view of the active clips at one
// instant. Sync and compositing read the snapshot, never the project,
// during the rest of the tick.
type Snapshot struct {
	At    time.Duration
	Video *timeline.Clip
	Audio []*timeline.Clip
	Text  []*timeline.Clip
}

// VideoID returns the active video clip's ID, or "" when none is active
func (s Snapshot) VideoID() string {
	if s.Video == nil {
		return ""
	}
	return s.Video.ID
}

// Active resolves the project at time t. When video clips overlap, the
// first in document order wins. When no video clip is active, downstream
// compositing proceeds with a blank frame plus any active text.
//
// Each text clip's derived Visible flag is recomputed here, every tick.
func Active(p *timeline.Project, t time.Duration) Snapshot {
	snap := Snapshot{At: t}

	for _, c := range p.VideoTrack.Clips {
		if c.ActiveAt(t) {
			snap.Video = c
			break
		}
	}

	for _, c := range p.AudioTrack.Clips {
		if c.ActiveAt(t) {
			snap.Audio = append(snap.Audio, c)
		}
	}

	for _, c := range p.TextTrack.Clips {
		active := c.ActiveAt(t)
		c.Text.Visible = active
		if active {
			snap.Text = append(snap.Text, c)
		}
	}

	return snap
}
