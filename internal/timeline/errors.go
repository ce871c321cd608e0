package timeline

import "errors"

var (
	// ErrNotFound means no clip with the given ID exists on any track.
	ErrNotFound = errors.New("clip not found")

	// ErrLinkedAudio means a mutation directly targeted a clip-linked
	// audio clip. Linked audio only moves, resizes and dies with its
	// parent video clip; the caller should target the parent instead.
	ErrLinkedAudio = errors.New("audio clip is linked to a video clip; mutate the parent instead")

	// ErrPrimaryClip means an attempt to delete the primary video clip,
	// which can only be replaced.
	ErrPrimaryClip = errors.New("primary video clip cannot be deleted")

	// ErrNothingToUndo is returned by Undo on an empty journal.
	ErrNothingToUndo = errors.New("nothing to undo")
)
