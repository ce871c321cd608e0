package timeline

import (
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the clip variants. Every operation that cares about
// the variant dispatches on Kind in exactly one place.
type Kind string

const (
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
	KindText  Kind = "text"
)

// TextStyle selects how a text overlay is rendered
type TextStyle string

const (
	StyleOutline        TextStyle = "outline"
	StyleSolidBox       TextStyle = "solid_box"
	StyleRoundedBox     TextStyle = "rounded_box"
	StyleTranslucentBox TextStyle = "translucent_box"
)

// MinClipLength is the default minimum duration quantum for any clip.
// Mutations that would shrink a clip below the quantum are clamped,
// never rejected. Projects can override it via SetMinClipLength.
const MinClipLength = 100 * time.Millisecond

// Clip is a single timed unit on a track. Exactly one of Video, Audio or
// Text is non-nil, matching Kind.
type Clip struct {
	ID    string
	Kind  Kind
	Start time.Duration
	End   time.Duration

	Video *VideoAttrs
	Audio *AudioAttrs
	Text  *TextAttrs
}

// VideoAttrs is the payload of a video clip
type VideoAttrs struct {
	Source string
	Speed  float64
	Volume float64

	// Primary marks the clip the project was created around. It cannot
	// be deleted, only replaced.
	Primary bool
}

// AudioAttrs is the payload of an audio clip
type AudioAttrs struct {
	Source string
	Volume float64

	// LinkedTo holds the parent video clip ID when this clip is the
	// auto-created audio counterpart of a video clip. Linked clips share
	// the parent's ID and bounds and only mutate through the parent.
	LinkedTo string
}

// TextAttrs is the payload of a text overlay clip. X and Y are authored in
// design space, not surface pixels.
type TextAttrs struct {
	Content string
	X       float64
	Y       float64
	Size    float64
	Color   string
	Font    string
	Style   TextStyle

	// Visible is derived from the playhead each tick.
	Visible bool
}

// Duration returns the clip length
func (c *Clip) Duration() time.Duration {
	return c.End - c.Start
}

// ActiveAt reports whether t falls inside the clip's half-open interval
// [Start, End), so boundary instants trigger exactly once.
func (c *Clip) ActiveAt(t time.Duration) bool {
	return t >= c.Start && t < c.End
}

// Linked reports whether this is a clip-linked audio clip
func (c *Clip) Linked() bool {
	return c.Kind == KindAudio && c.Audio != nil && c.Audio.LinkedTo != ""
}

func newID() string {
	return uuid.NewString()
}
