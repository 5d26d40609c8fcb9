package providers

import (
	"sort"
	"sync"
)

// Registry holds every source known to the process. Sources are
// replaced wholesale on edit, never mutated in place.
type Registry struct {
	mu      sync.RWMutex
	sources map[int64]Source
}

func NewRegistry(sources ...Source) *Registry {
	r := &Registry{sources: make(map[int64]Source, len(sources))}
	for _, s := range sources {
		r.sources[s.ID()] = s
	}

	return r
}

func (r *Registry) Register(s Source) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sources[s.ID()] = s
}

func (r *Registry) Remove(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sources, id)
}

func (r *Registry) Get(id int64) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sources[id]
	return s, ok
}

// List returns all sources ordered by name, then id.
func (r *Registry) List() []Source {
	r.mu.RLock()
	out := make([]Source, 0, len(r.sources))
	for _, s := range r.sources {
		out = append(out, s)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name() != out[j].Name() {
			return out[i].Name() < out[j].Name()
		}
		return out[i].ID() < out[j].ID()
	})

	return out
}
