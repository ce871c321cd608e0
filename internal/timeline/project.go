package timeline

import (
	"time"

	"github.com/rs/zerolog"
)

// Project owns the three track lanes and the undo journal. Duration is
// always derived from clip bounds, never stored.
//
// The project has a single writer (the interaction controller's command
// path) and a single reader per tick (the resolver); the scheduler
// serializes the two.
type Project struct {
	VideoTrack Track
	AudioTrack Track
	TextTrack  Track

	log    zerolog.Logger
	undo   []Command
	minLen time.Duration
}

// NewProject creates an empty project
func NewProject(logger zerolog.Logger) *Project {
	return &Project{
		VideoTrack: Track{Kind: KindVideo},
		AudioTrack: Track{Kind: KindAudio},
		TextTrack:  Track{Kind: KindText},
		log:        logger.With().Str("component", "timeline").Logger(),
		minLen:     MinClipLength,
	}
}

// SetMinClipLength overrides the minimum clip duration quantum. Zero or
// negative restores the default.
func (p *Project) SetMinClipLength(d time.Duration) {
	if d <= 0 {
		d = MinClipLength
	}
	p.minLen = d
}

// Duration returns max(End) over all clips, or zero for an empty project
func (p *Project) Duration() time.Duration {
	var d time.Duration
	for _, tr := range p.tracks() {
		for _, c := range tr.Clips {
			if c.End > d {
				d = c.End
			}
		}
	}
	return d
}

func (p *Project) tracks() []*Track {
	return []*Track{&p.VideoTrack, &p.AudioTrack, &p.TextTrack}
}

// Find locates a clip by ID on any track
func (p *Project) Find(id string) *Clip {
	for _, tr := range p.tracks() {
		if c := tr.Find(id); c != nil {
			return c
		}
	}
	return nil
}

// FindVideo locates a video clip by ID
func (p *Project) FindVideo(id string) *Clip {
	return p.VideoTrack.Find(id)
}

// AttachPrimaryVideo places the primary video clip at t=0 and creates its
// linked audio counterpart. The pair shares one ID.
func (p *Project) AttachPrimaryVideo(source string, length time.Duration) *Clip {
	c := &Clip{
		ID:    newID(),
		Kind:  KindVideo,
		Start: 0,
		End:   p.clampMin(length),
		Video: &VideoAttrs{Source: source, Speed: 1.0, Volume: 1.0, Primary: true},
	}
	p.VideoTrack.Add(c)
	p.AudioTrack.Add(linkedAudioFor(c))
	p.log.Info().Str("clip", c.ID).Dur("length", length).Msg("primary video attached")
	return c
}

// AppendVideo adds a video clip after the current project duration, with
// its linked audio counterpart.
func (p *Project) AppendVideo(source string, length time.Duration) *Clip {
	start := p.Duration()
	c := &Clip{
		ID:    newID(),
		Kind:  KindVideo,
		Start: start,
		End:   start + p.clampMin(length),
		Video: &VideoAttrs{Source: source, Speed: 1.0, Volume: 1.0},
	}
	p.VideoTrack.Add(c)
	p.AudioTrack.Add(linkedAudioFor(c))
	p.log.Info().Str("clip", c.ID).Dur("start", start).Msg("video appended")
	return c
}

// ReplacePrimary swaps the primary clip's source, keeping its bounds.
// This is the only sanctioned mutation of the primary besides timing edits.
func (p *Project) ReplacePrimary(source string) *Clip {
	for _, c := range p.VideoTrack.Clips {
		if c.Video != nil && c.Video.Primary {
			c.Video.Source = source
			if la := p.linkedAudio(c.ID); la != nil {
				la.Audio.Source = source
			}
			p.log.Info().Str("clip", c.ID).Str("source", source).Msg("primary video replaced")
			return c
		}
	}
	return nil
}

// AddAudio places a free-standing audio clip (music, narration) at an
// explicit position. Concurrent audio clips are a first-class feature.
func (p *Project) AddAudio(source string, start, end time.Duration, volume float64) *Clip {
	start, end = p.sanitize(start, end)
	c := &Clip{
		ID:    newID(),
		Kind:  KindAudio,
		Start: start,
		End:   end,
		Audio: &AudioAttrs{Source: source, Volume: volume},
	}
	p.AudioTrack.Add(c)
	p.log.Info().Str("clip", c.ID).Dur("start", start).Dur("end", end).Msg("audio added")
	return c
}

// AddText places a text overlay clip at an explicit position
func (p *Project) AddText(attrs TextAttrs, start, end time.Duration) *Clip {
	start, end = p.sanitize(start, end)
	if attrs.Style == "" {
		attrs.Style = StyleOutline
	}
	c := &Clip{
		ID:    newID(),
		Kind:  KindText,
		Start: start,
		End:   end,
		Text:  &attrs,
	}
	p.TextTrack.Add(c)
	p.log.Info().Str("clip", c.ID).Str("content", attrs.Content).Msg("text added")
	return c
}

// Delete removes a clip by ID. Deleting a video clip cascades to its
// linked audio; deleting a linked audio clip directly is rejected as a
// no-op with a diagnostic; the primary video clip cannot be deleted.
func (p *Project) Delete(id string) error {
	c := p.Find(id)
	if c == nil {
		return ErrNotFound
	}

	switch c.Kind {
	case KindVideo:
		if c.Video.Primary {
			return ErrPrimaryClip
		}
		p.VideoTrack.Remove(id)
		p.AudioTrack.Remove(id)
		p.log.Info().Str("clip", id).Msg("video clip deleted with linked audio")
	case KindAudio:
		if c.Linked() {
			p.log.Warn().Str("clip", id).Str("parent", c.Audio.LinkedTo).
				Msg("refusing to delete clip-linked audio; delete the parent video clip")
			return ErrLinkedAudio
		}
		p.AudioTrack.Remove(id)
		p.log.Info().Str("clip", id).Msg("audio clip deleted")
	case KindText:
		p.TextTrack.Remove(id)
		p.log.Info().Str("clip", id).Msg("text clip deleted")
	}
	return nil
}

// linkedAudio returns the audio counterpart of a video clip, or nil
func (p *Project) linkedAudio(videoID string) *Clip {
	c := p.AudioTrack.Find(videoID)
	if c != nil && c.Linked() {
		return c
	}
	return nil
}

// linkedAudioFor builds the audio counterpart sharing the parent's ID and
// bounds.
func linkedAudioFor(parent *Clip) *Clip {
	return &Clip{
		ID:    parent.ID,
		Kind:  KindAudio,
		Start: parent.Start,
		End:   parent.End,
		Audio: &AudioAttrs{
			Source:   parent.Video.Source,
			Volume:   parent.Video.Volume,
			LinkedTo: parent.ID,
		},
	}
}

func (p *Project) clampMin(d time.Duration) time.Duration {
	if d < p.minLen {
		return p.minLen
	}
	return d
}

// sanitize clamps raw bounds into a valid interval without rejecting them
func (p *Project) sanitize(start, end time.Duration) (time.Duration, time.Duration) {
	if start < 0 {
		start = 0
	}
	if end < start+p.minLen {
		end = start + p.minLen
	}
	return start, end
}
