package resource

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds every registered descriptor, keyed by canonical type name
// and by its accepted aliases. It is populated by the application at startup
// before any request is served.
type Registry struct {
	byType map[string]*Descriptor
	mu     sync.RWMutex
}

// NewRegistry creates an empty descriptor registry.
func NewRegistry() *Registry {
	return &Registry{byType: make(map[string]*Descriptor)}
}

// Register adds a descriptor under its canonical type name and all aliases.
func (r *Registry) Register(d *Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byType[d.TypeName]; ok && existing != d {
		return fmt.Errorf("resource type %s is already registered", d.TypeName)
	}
	r.byType[d.TypeName] = d
	for _, alias := range d.TypeAliases {
		r.byType[alias] = d
	}
	return nil
}

// Get retrieves a descriptor by type name or alias.
func (r *Registry) Get(typeName string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byType[typeName]
	return d, ok
}

// Types returns the sorted canonical type names.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.byType))
	for name, d := range r.byType {
		if name == d.TypeName {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// All returns the descriptors for every canonical type, sorted by type name.
func (r *Registry) All() []*Descriptor {
	names := r.Types()

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Descriptor, 0, len(names))
	for _, name := range names {
		out = append(out, r.byType[name])
	}
	return out
}
