// Package filter narrows in-memory collections with named text and equality
// filters and describes the active ones as removable chips.
package filter

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// All is the value that turns a filter off, like an empty value.
const All = "all"

// Kind is the matching strategy of a filter.
type Kind int

const (
	// KindText matches a case-folded substring in any of the fields.
	KindText Kind = iota
	// KindEquals matches a discrete field exactly, ignoring case.
	KindEquals
)

// Definition declares one named filter over T.
type Definition[T any] struct {
	Name   string
	Label  string
	Kind   Kind
	Fields []func(T) string
	// Display renders a value for its chip. Defaults to the raw value.
	Display func(value string) string
}

// Text declares a free-text filter over one or more fields.
func Text[T any](name, label string, fields ...func(T) string) Definition[T] {
	return Definition[T]{Name: name, Label: label, Kind: KindText, Fields: fields}
}

// Equals declares an equality filter over a discrete field.
func Equals[T any](name, label string, field func(T) string) Definition[T] {
	return Definition[T]{Name: name, Label: label, Kind: KindEquals, Fields: []func(T) string{field}}
}

// WithDisplay returns d with a chip renderer.
func (d Definition[T]) WithDisplay(display func(string) string) Definition[T] {
	d.Display = display
	return d
}

// Chip describes one active filter.
type Chip struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Value string `json:"value"`
	// Remove resets the filter to its default.
	Remove func() `json:"-"`
}

// Engine applies the active filters of a fixed set of definitions. Active
// filters combine with AND. An Engine is not safe for concurrent use.
type Engine[T any] struct {
	defs   []Definition[T]
	values map[string]string
}

// New creates an engine with every filter at its default.
func New[T any](defs ...Definition[T]) *Engine[T] {
	return &Engine[T]{defs: defs, values: make(map[string]string, len(defs))}
}

// Set sets a filter's value. Empty or "all" resets it.
func (e *Engine[T]) Set(name, value string) error {
	if e.def(name) == nil {
		return fmt.Errorf("unknown filter %q", name)
	}
	value = strings.TrimSpace(value)
	if isDefault(value) {
		delete(e.values, name)
		return nil
	}
	e.values[name] = value
	return nil
}

// Names returns the filter names in declaration order.
func (e *Engine[T]) Names() []string {
	names := make([]string, len(e.defs))
	for i, d := range e.defs {
		names[i] = d.Name
	}
	return names
}

// Value returns a filter's current value, "" when at its default.
func (e *Engine[T]) Value(name string) string {
	return e.values[name]
}

// Reset returns one filter to its default.
func (e *Engine[T]) Reset(name string) {
	delete(e.values, name)
}

// ResetAll returns every filter to its default.
func (e *Engine[T]) ResetAll() {
	clear(e.values)
}

// Apply returns the items matching every active filter, in input order.
// With no active filter it returns a copy of items.
func (e *Engine[T]) Apply(items []T) []T {
	if len(e.values) == 0 {
		return slices.Clone(items)
	}

	fold := cases.Fold()
	type active struct {
		def    *Definition[T]
		folded string
	}
	var filters []active
	for i := range e.defs {
		if v, ok := e.values[e.defs[i].Name]; ok {
			filters = append(filters, active{def: &e.defs[i], folded: fold.String(v)})
		}
	}

	out := make([]T, 0, len(items))
	for _, it := range items {
		keep := true
		for _, f := range filters {
			if !match(fold, f.def, f.folded, it) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, it)
		}
	}
	return out
}

// Chips returns one chip per active filter in definition order.
func (e *Engine[T]) Chips() []Chip {
	chips := []Chip{}
	for _, d := range e.defs {
		v, ok := e.values[d.Name]
		if !ok {
			continue
		}
		shown := v
		if d.Display != nil {
			shown = d.Display(v)
		}
		name := d.Name
		chips = append(chips, Chip{
			Name:   name,
			Label:  fmt.Sprintf("%s: %s", d.Label, shown),
			Value:  v,
			Remove: func() { e.Reset(name) },
		})
	}
	return chips
}

func (e *Engine[T]) def(name string) *Definition[T] {
	for i := range e.defs {
		if e.defs[i].Name == name {
			return &e.defs[i]
		}
	}
	return nil
}

func match[T any](fold cases.Caser, d *Definition[T], want string, it T) bool {
	switch d.Kind {
	case KindEquals:
		return fold.String(d.Fields[0](it)) == want
	default:
		for _, field := range d.Fields {
			if strings.Contains(fold.String(field(it)), want) {
				return true
			}
		}
		return false
	}
}

func isDefault(v string) bool {
	return v == "" || strings.EqualFold(v, All)
}
