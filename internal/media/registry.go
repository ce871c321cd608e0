package media

import (
	"sync"

	"github.com/rs/zerolog"
)

// Registry maps media sources to their handles. Each handle is created
// once per resource; a video clip and its linked audio clip share one
// handle since the resource carries both streams.
type Registry struct {
	mu      sync.Mutex
	log     zerolog.Logger
	handles map[string]Handle
}

// NewRegistry creates an empty handle registry
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		log:     logger.With().Str("component", "media").Logger(),
		handles: make(map[string]Handle),
	}
}

// Register binds a handle to a source, replacing any previous binding
func (r *Registry) Register(source string, h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[source] = h
	r.log.Debug().Str("source", source).Msg("handle registered")
}

// Lookup returns the handle for a source
func (r *Registry) Lookup(source string) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[source]
	return h, ok
}

// Sources returns all registered sources
func (r *Registry) Sources() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.handles))
	for s := range r.handles {
		out = append(out, s)
	}
	return out
}

// PauseAll pauses every usable handle, for teardown and export aborts
func (r *Registry) PauseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for source, h := range r.handles {
		if !h.Ready() {
			continue
		}
		if err := h.Pause(); err != nil {
			r.log.Debug().Err(err).Str("source", source).Msg("pause dropped")
		}
	}
}
