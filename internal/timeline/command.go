package timeline

import (
	"time"
)

// Command is a typed timeline mutation. All gesture and programmatic
// timing edits pass through Apply so invariants hold no matter where a
// mutation came from, and every applied command yields its inverse for
// the undo journal.
type Command interface {
	apply(p *Project) (inverse Command, err error)
}

// Edge identifies which bound a resize targets
type Edge int

const (
	EdgeLeft Edge = iota
	EdgeRight
)

// MoveClip shifts a clip to a new start, preserving its duration exactly.
// The start is clamped to [0, projectDuration - clipDuration]; an offset
// that would push the clip out of range is clamped, never distorted.
type MoveClip struct {
	ID    string
	Start time.Duration
}

func (m MoveClip) apply(p *Project) (Command, error) {
	c := p.Find(m.ID)
	if c == nil {
		return nil, ErrNotFound
	}
	if c.Linked() {
		p.log.Warn().Str("clip", m.ID).Msg("move rejected: clip-linked audio follows its parent")
		return nil, ErrLinkedAudio
	}

	length := c.Duration()
	limit := p.Duration() - length

	start := m.Start
	if start < 0 {
		start = 0
	}
	if start > limit {
		start = limit
	}

	inverse := MoveClip{ID: m.ID, Start: c.Start}
	setBounds(p, c, start, start+length)
	return inverse, nil
}

// ResizeClip moves one bound of a clip, keeping the opposite bound fixed
// and the minimum duration quantum intact.
type ResizeClip struct {
	ID   string
	Edge Edge
	To   time.Duration
}

func (r ResizeClip) apply(p *Project) (Command, error) {
	c := p.Find(r.ID)
	if c == nil {
		return nil, ErrNotFound
	}
	if c.Linked() {
		p.log.Warn().Str("clip", r.ID).Msg("resize rejected: clip-linked audio follows its parent")
		return nil, ErrLinkedAudio
	}

	start, end := c.Start, c.End
	var inverse Command

	switch r.Edge {
	case EdgeLeft:
		inverse = ResizeClip{ID: r.ID, Edge: EdgeLeft, To: start}
		start = r.To
		if start < 0 {
			start = 0
		}
		if start > end-p.minLen {
			start = end - p.minLen
		}
	case EdgeRight:
		inverse = ResizeClip{ID: r.ID, Edge: EdgeRight, To: end}
		end = r.To
		if end < start+p.minLen {
			end = start + p.minLen
		}
	}

	setBounds(p, c, start, end)
	return inverse, nil
}

// DeleteClip removes a clip. Video deletion cascades to the linked audio
// clip in the same step.
type DeleteClip struct {
	ID string
}

func (d DeleteClip) apply(p *Project) (Command, error) {
	c := p.Find(d.ID)
	if c == nil {
		return nil, ErrNotFound
	}

	restore := restoreClips{}
	if c.Kind == KindVideo {
		if la := p.linkedAudio(c.ID); la != nil {
			restore.clips = append(restore.clips, la)
		}
	}
	restore.clips = append(restore.clips, c)

	if err := p.Delete(d.ID); err != nil {
		return nil, err
	}
	return restore, nil
}

// restoreClips is the inverse of DeleteClip
type restoreClips struct {
	clips []*Clip
}

func (r restoreClips) apply(p *Project) (Command, error) {
	for _, c := range r.clips {
		switch c.Kind {
		case KindVideo:
			p.VideoTrack.Add(c)
		case KindAudio:
			p.AudioTrack.Add(c)
		case KindText:
			p.TextTrack.Add(c)
		}
	}
	var ids []string
	for _, c := range r.clips {
		ids = append(ids, c.ID)
	}
	if len(ids) > 0 {
		return DeleteClip{ID: ids[len(ids)-1]}, nil
	}
	return nil, nil
}

// setBounds writes new bounds to a clip and, for video, to its linked
// audio clip in the same atomic step.
func setBounds(p *Project, c *Clip, start, end time.Duration) {
	c.Start, c.End = start, end
	if c.Kind == KindVideo {
		if la := p.linkedAudio(c.ID); la != nil {
			la.Start, la.End = start, end
		}
	}
	p.log.Debug().Str("clip", c.ID).Dur("start", start).Dur("end", end).Msg("bounds updated")
}

// Apply runs a command through the clamped-write path and records its
// inverse in the undo journal. ErrLinkedAudio and ErrNotFound leave the
// project untouched.
func (p *Project) Apply(cmd Command) error {
	inverse, err := cmd.apply(p)
	if err != nil {
		return err
	}
	if inverse != nil {
		p.undo = append(p.undo, inverse)
	}
	return nil
}

// Undo reverts the most recent applied command
func (p *Project) Undo() error {
	if len(p.undo) == 0 {
		return ErrNothingToUndo
	}
	cmd := p.undo[len(p.undo)-1]
	p.undo = p.undo[:len(p.undo)-1]
	_, err := cmd.apply(p)
	return err
}
