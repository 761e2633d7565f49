// Package store holds the ordered variable store shared by every stage of a
// modelling session: loading, model binding, scripting and reporting.
package store

import "slices"

// LengthKey is the reserved name holding the shared series length.
const LengthKey = "LL"

// Store is an ordered mapping from variable name to Value.
// Insertion order is preserved; re-setting a name keeps its position.
// A Store is not safe for concurrent use.
type Store struct {
	names  []string
	values map[string]Value
}

// New creates an empty store.
func New() *Store {
	return &Store{values: make(map[string]Value)}
}

// Set stores v under name, appending name if it is new.
func (s *Store) Set(name string, v Value) {
	if _, ok := s.values[name]; !ok {
		s.names = append(s.names, name)
	}
	s.values[name] = v
}

// Get returns the value stored under name.
func (s *Store) Get(name string) (Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Has reports whether name is present.
func (s *Store) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Names returns the variable names in insertion order.
func (s *Store) Names() []string {
	return slices.Clone(s.names)
}

// Len returns the number of variables.
func (s *Store) Len() int {
	return len(s.names)
}

// Length returns the shared series length stored under LL.
func (s *Store) Length() (int, bool) {
	v, ok := s.values[LengthKey]
	if !ok {
		return 0, false
	}
	return v.Int()
}

// Each calls fn for every variable in insertion order until fn returns false.
func (s *Store) Each(fn func(name string, v Value) bool) {
	for _, name := range s.names {
		if !fn(name, s.values[name]) {
			return
		}
	}
}

// Clone returns an independent copy of the store.
func (s *Store) Clone() *Store {
	c := &Store{
		names:  slices.Clone(s.names),
		values: make(map[string]Value, len(s.values)),
	}
	for name, v := range s.values {
		switch v.kind {
		case KindIntegerSeries:
			c.values[name] = IntegerSeries(v.ints)
		case KindNumericSeries:
			c.values[name] = NumericSeries(v.floats)
		default:
			c.values[name] = v
		}
	}
	return c
}

// Entry is a single name/value pair, used to stage writes.
type Entry struct {
	Name  string
	Value Value
}

// Merge applies entries in order with Set semantics.
func (s *Store) Merge(entries []Entry) {
	for _, e := range entries {
		s.Set(e.Name, e.Value)
	}
}
