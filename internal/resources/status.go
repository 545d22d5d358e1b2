package resources

import "github.com/arguide/backoffice/internal/listctl"

// UnknownLabel is shown for statuses the table does not declare.
const UnknownLabel = "Unknown"

// StatusOption is one declared status with its display label and tone.
type StatusOption[S ~string] struct {
	Value S
	Label string
	Tone  listctl.Tone
}

// StatusTable is the closed, ordered enumeration of a resource's statuses.
type StatusTable[S ~string] []StatusOption[S]

// Lookup returns the declared option for s. Undeclared values surface as
// Unknown with a neutral tone; they match no catalog action.
func (t StatusTable[S]) Lookup(s S) StatusOption[S] {
	for _, opt := range t {
		if opt.Value == s {
			return opt
		}
	}
	return StatusOption[S]{Value: s, Label: UnknownLabel, Tone: listctl.ToneNeutral}
}

// Known reports whether s is declared.
func (t StatusTable[S]) Known(s S) bool {
	for _, opt := range t {
		if opt.Value == s {
			return true
		}
	}
	return false
}

// Options renders the table as enum filter options.
func (t StatusTable[S]) Options() []listctl.Option {
	out := make([]listctl.Option, 0, len(t))
	for _, opt := range t {
		out = append(out, listctl.Option{Value: string(opt.Value), Label: opt.Label})
	}
	return out
}

// Filter returns the standard "status" enum filter.
func (t StatusTable[S]) Filter() listctl.FilterField {
	return listctl.FilterField{Name: "status", Label: "Status", Kind: listctl.FieldEnum, Options: t.Options()}
}

// View renders s for display.
func (t StatusTable[S]) View(s S) StatusView {
	opt := t.Lookup(s)
	return StatusView{Value: string(s), Label: opt.Label, Tone: opt.Tone}
}

// SearchFilter is the free-text filter most resources expose.
func SearchFilter(label string) listctl.FilterField {
	return listctl.FilterField{Name: "search", Label: label, Kind: listctl.FieldText}
}
