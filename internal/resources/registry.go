package resources

import (
	"fmt"
	"sort"
)

// Registry holds the mounted resources in registration order.
type Registry struct {
	order  []Binding
	byName map[string]Binding
}

// NewRegistry indexes bindings by name. Names must be unique.
func NewRegistry(bindings ...Binding) (*Registry, error) {
	r := &Registry{byName: make(map[string]Binding, len(bindings))}
	for _, b := range bindings {
		if err := r.Register(b); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds b.
func (r *Registry) Register(b Binding) error {
	if b.Name() == "" {
		return fmt.Errorf("resources: binding without name")
	}
	if _, dup := r.byName[b.Name()]; dup {
		return fmt.Errorf("resources: duplicate resource %q", b.Name())
	}
	r.byName[b.Name()] = b
	r.order = append(r.order, b)
	return nil
}

// Lookup finds a binding by name.
func (r *Registry) Lookup(name string) (Binding, bool) {
	b, ok := r.byName[name]
	return b, ok
}

// All returns bindings in registration order.
func (r *Registry) All() []Binding {
	return append([]Binding(nil), r.order...)
}

// Names returns the sorted resource names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.order))
	for _, b := range r.order {
		names = append(names, b.Name())
	}
	sort.Strings(names)
	return names
}
