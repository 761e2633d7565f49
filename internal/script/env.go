package script

import (
	"slices"

	"github.com/itsmostafa/modelrun/internal/store"
)

// Environment is the name→value mapping a script runs against.
// Engines read every name before execution and write every global back
// after it; names a script removed are deleted.
type Environment interface {
	Get(name string) (any, bool)
	Set(name string, value any)
	Contains(name string) bool
	Delete(name string)
	// Names returns the names in insertion order.
	Names() []string
}

// MapEnv is an ordered in-memory Environment.
type MapEnv struct {
	names  []string
	values map[string]any
}

// NewMapEnv creates an empty environment.
func NewMapEnv() *MapEnv {
	return &MapEnv{values: make(map[string]any)}
}

// EnvFromStore copies every store variable into a new environment as plain Go
// values ([]int, []float64 or the scalar).
func EnvFromStore(s *store.Store) *MapEnv {
	env := NewMapEnv()
	s.Each(func(name string, v store.Value) bool {
		env.Set(name, v.Any())
		return true
	})
	return env
}

func (e *MapEnv) Get(name string) (any, bool) {
	v, ok := e.values[name]
	return v, ok
}

func (e *MapEnv) Set(name string, value any) {
	if _, ok := e.values[name]; !ok {
		e.names = append(e.names, name)
	}
	e.values[name] = value
}

func (e *MapEnv) Contains(name string) bool {
	_, ok := e.values[name]
	return ok
}

func (e *MapEnv) Delete(name string) {
	if _, ok := e.values[name]; !ok {
		return
	}
	delete(e.values, name)
	e.names = slices.DeleteFunc(e.names, func(n string) bool { return n == name })
}

func (e *MapEnv) Names() []string {
	return slices.Clone(e.names)
}
