package listctl

import (
	"fmt"
	"maps"
	"strings"
)

// FieldKind enumerates filter input types.
type FieldKind string

const (
	// FieldText is a free-text search input.
	FieldText FieldKind = "text"
	// FieldEnum is a select restricted to Options.
	FieldEnum FieldKind = "enum"
)

// Option is one selectable enum value.
type Option struct {
	Value string
	Label string
}

// FilterField describes one filter input.
type FilterField struct {
	Name    string
	Label   string
	Kind    FieldKind
	Options []Option
}

func (f FilterField) allows(value string) bool {
	if f.Kind != FieldEnum || value == "" {
		return true
	}
	for _, opt := range f.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// FilterState keeps draft input values apart from the applied filters.
// Typing only touches the draft; Commit is the single place the applied
// filters change.
type FilterState struct {
	schema   []FilterField
	defaults map[string]string
	draft    map[string]string
	applied  map[string]string
}

// NewFilterState builds state whose draft and applied values start at defaults.
func NewFilterState(schema []FilterField, defaults map[string]string) *FilterState {
	d := compact(defaults)
	return &FilterState{
		schema:   schema,
		defaults: d,
		draft:    maps.Clone(d),
		applied:  maps.Clone(d),
	}
}

// Schema returns the filter fields.
func (s *FilterState) Schema() []FilterField {
	return s.schema
}

// SetDraft records an input edit without affecting the applied filters.
func (s *FilterState) SetDraft(name, value string) error {
	field, ok := s.field(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFilter, name)
	}
	value = strings.TrimSpace(value)
	if !field.allows(value) {
		return fmt.Errorf("%w: %s=%q", ErrInvalidFilterValue, name, value)
	}
	if value == "" {
		delete(s.draft, name)
		return nil
	}
	s.draft[name] = value
	return nil
}

// Draft returns a copy of the in-progress values.
func (s *FilterState) Draft() map[string]string {
	return maps.Clone(s.draft)
}

// Applied returns a copy of the filters in effect.
func (s *FilterState) Applied() map[string]string {
	return maps.Clone(s.applied)
}

// Dirty reports whether the draft differs from the applied filters.
func (s *FilterState) Dirty() bool {
	return !maps.Equal(s.draft, s.applied)
}

// Commit promotes the draft to the applied filters.
func (s *FilterState) Commit() map[string]string {
	s.applied = maps.Clone(s.draft)
	return s.Applied()
}

// Apply replaces both draft and applied values, e.g. when restoring a query
// from a URL. Unknown names and invalid enum values are rejected.
func (s *FilterState) Apply(filters map[string]string) error {
	next := make(map[string]string, len(filters))
	for name, value := range filters {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		field, ok := s.field(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownFilter, name)
		}
		if !field.allows(value) {
			return fmt.Errorf("%w: %s=%q", ErrInvalidFilterValue, name, value)
		}
		next[name] = value
	}
	s.draft = next
	s.applied = maps.Clone(next)
	return nil
}

// Reset restores the defaults for both draft and applied values.
func (s *FilterState) Reset() {
	s.draft = maps.Clone(s.defaults)
	s.applied = maps.Clone(s.defaults)
}

func (s *FilterState) field(name string) (FilterField, bool) {
	for _, f := range s.schema {
		if f.Name == name {
			return f, true
		}
	}
	return FilterField{}, false
}

// PaginationState holds the zero-based page index and page size.
type PaginationState struct {
	page int
	size int
}

// NewPaginationState starts at page 0.
func NewPaginationState(size int) *PaginationState {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &PaginationState{size: size}
}

// Page returns the current page index.
func (p *PaginationState) Page() int { return p.page }

// Size returns the page size.
func (p *PaginationState) Size() int { return p.size }

// SetPage moves to page n, keeping the page size.
func (p *PaginationState) SetPage(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: page %d", ErrInvalidQuery, n)
	}
	p.page = n
	return nil
}

// SetPageSize changes the size and returns to page 0 so the index cannot
// point past the end of the new page count.
func (p *PaginationState) SetPageSize(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: page size %d", ErrInvalidQuery, n)
	}
	p.size = n
	p.page = 0
	return nil
}

// Reset returns to page 0.
func (p *PaginationState) Reset() {
	p.page = 0
}
