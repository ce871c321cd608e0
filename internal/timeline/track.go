package timeline

// Track is a same-kind lane holding zero or more clips in document order.
// It carries no timing of its own.
type Track struct {
	Kind  Kind
	Clips []*Clip
}

// Add appends a clip to the track
func (t *Track) Add(c *Clip) {
	t.Clips = append(t.Clips, c)
}

// Find returns the clip with the given ID, or nil
func (t *Track) Find(id string) *Clip {
	for _, c := range t.Clips {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Remove deletes the clip with the given ID, reporting whether it existed
func (t *Track) Remove(id string) bool {
	for i, c := range t.Clips {
		if c.ID == id {
			t.Clips = append(t.Clips[:i], t.Clips[i+1:]...)
			return true
		}
	}
	return false
}
