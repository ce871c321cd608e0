// Package interaction translates drag, resize and selection gestures on
// clip blocks into typed timeline commands. It never mutates clips
// directly: everything funnels through the timeline's clamped-write
// path, so no gesture can violate an invariant.
package interaction

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/keagan/reelcore/internal/timeline"
)

// Zone identifies where on a clip block a gesture began
type Zone int

const (
	ZoneBody Zone = iota
	ZoneLeftHandle
	ZoneRightHandle
)

// Controller is the single writer of the project's clip collections
type Controller struct {
	log     zerolog.Logger
	project *timeline.Project

	drag     *dragState
	selected string
}

type dragState struct {
	clipID string
	zone   Zone
	length time.Duration
}

// New creates a controller over a project
func New(logger zerolog.Logger, project *timeline.Project) *Controller {
	return &Controller{
		log:     logger.With().Str("component", "interaction").Logger(),
		project: project,
	}
}

// BeginDrag starts a gesture on a clip block. The clip's duration is
// captured up front: a body drag must preserve it exactly no matter how
// far the pointer travels.
func (c *Controller) BeginDrag(clipID string, zone Zone) error {
	clip := c.project.Find(clipID)
	if clip == nil {
		return timeline.ErrNotFound
	}
	if clip.Linked() {
		c.log.Warn().Str("clip", clipID).Msg("drag rejected: clip-linked audio follows its parent")
		return timeline.ErrLinkedAudio
	}

	c.drag = &dragState{
		clipID: clipID,
		zone:   zone,
		length: clip.Duration(),
	}
	c.log.Debug().Str("clip", clipID).Int("zone", int(zone)).Msg("drag started")
	return nil
}

// DragTo applies the gesture at the pointer's current timeline position.
// A body drag centers the clip on the pointer; a handle drag moves only
// the grabbed bound. Out-of-range positions clamp, never distort.
func (c *Controller) DragTo(pointer time.Duration) error {
	if c.drag == nil {
		return nil
	}

	var cmd timeline.Command
	switch c.drag.zone {
	case ZoneBody:
		cmd = timeline.MoveClip{
			ID:    c.drag.clipID,
			Start: pointer - c.drag.length/2,
		}
	case ZoneLeftHandle:
		cmd = timeline.ResizeClip{ID: c.drag.clipID, Edge: timeline.EdgeLeft, To: pointer}
	case ZoneRightHandle:
		cmd = timeline.ResizeClip{ID: c.drag.clipID, Edge: timeline.EdgeRight, To: pointer}
	}

	return c.project.Apply(cmd)
}

// EndDrag finishes the gesture
func (c *Controller) EndDrag() {
	if c.drag != nil {
		c.log.Debug().Str("clip", c.drag.clipID).Msg("drag finished")
	}
	c.drag = nil
}

// Delete removes a clip through the command path
func (c *Controller) Delete(clipID string) error {
	err := c.project.Apply(timeline.DeleteClip{ID: clipID})
	if err == nil && c.selected == clipID {
		c.selected = ""
	}
	return err
}

// Undo reverts the last applied mutation
func (c *Controller) Undo() error {
	return c.project.Undo()
}

// Select marks a clip for the external timing-detail panel. A non-handle
// click on a text block lands here.
func (c *Controller) Select(clipID string) error {
	if c.project.Find(clipID) == nil {
		return timeline.ErrNotFound
	}
	c.selected = clipID
	c.log.Debug().Str("clip", clipID).Msg("clip selected")
	return nil
}

// Selected returns the live selected clip, so the timing panel always
// sees post-drag bounds.
func (c *Controller) Selected() (*timeline.Clip, bool) {
	if c.selected == "" {
		return nil, false
	}
	clip := c.project.Find(c.selected)
	if clip == nil {
		c.selected = ""
		return nil, false
	}
	return clip, true
}
