package model

import (
	"fmt"
	"slices"

	"github.com/itsmostafa/modelrun/internal/store"
)

// Param is a named slot on a model unit. Bindable params are filled from the
// store before Run and copied back after it; the LL param is always filled.
type Param struct {
	Name     string
	Bindable bool

	kind store.Kind
	get  func() store.Value
	set  func(store.Value) error
}

// Kind returns the shape the param accepts.
func (p Param) Kind() store.Kind { return p.kind }

// Internal returns a copy of p that is not bound from or harvested to the store.
func (p Param) Internal() Param {
	p.Bindable = false
	return p
}

// Value reads the param's current value.
func (p Param) Value() store.Value { return p.get() }

// Assign writes v into the param, checking that its shape fits.
func (p Param) Assign(v store.Value) error { return p.set(v) }

// Series binds a float64 series field. Integer series are widened on bind;
// a null scalar resets the field to nil.
func Series(name string, dst *[]float64) Param {
	return Param{
		Name:     name,
		Bindable: true,
		kind:     store.KindNumericSeries,
		get:      func() store.Value { return store.NumericSeries(*dst) },
		set: func(v store.Value) error {
			if isNull(v) {
				*dst = nil
				return nil
			}
			if !v.Kind().IsSeries() {
				return mismatch(name, store.KindNumericSeries, v)
			}
			*dst = v.Floats()
			return nil
		},
	}
}

// IntSeries binds an integer series field such as the period axis.
func IntSeries(name string, dst *[]int) Param {
	return Param{
		Name:     name,
		Bindable: true,
		kind:     store.KindIntegerSeries,
		get:      func() store.Value { return store.IntegerSeries(*dst) },
		set: func(v store.Value) error {
			if isNull(v) {
				*dst = nil
				return nil
			}
			if v.Kind() != store.KindIntegerSeries {
				return mismatch(name, store.KindIntegerSeries, v)
			}
			*dst = v.Ints()
			return nil
		},
	}
}

// Int binds an integer scalar field.
func Int(name string, dst *int) Param {
	return Param{
		Name:     name,
		Bindable: true,
		kind:     store.KindScalar,
		get:      func() store.Value { return store.Scalar(*dst) },
		set: func(v store.Value) error {
			n, ok := v.Int()
			if !ok {
				return mismatch(name, store.KindScalar, v)
			}
			*dst = n
			return nil
		},
	}
}

// Float binds a float64 scalar field.
func Float(name string, dst *float64) Param {
	return Param{
		Name:     name,
		Bindable: true,
		kind:     store.KindScalar,
		get:      func() store.Value { return store.Scalar(*dst) },
		set: func(v store.Value) error {
			if v.Kind() != store.KindScalar {
				return mismatch(name, store.KindScalar, v)
			}
			f, ok := store.AsFloat(v.Any())
			if !ok {
				return mismatch(name, store.KindScalar, v)
			}
			*dst = f
			return nil
		},
	}
}

// Length declares the unit's LL field. It is bound on every run but not
// harvested; use Int(store.LengthKey, dst) to also harvest it.
func Length(dst *int) Param {
	return Int(store.LengthKey, dst).Internal()
}

// isNull reports whether v is the null scalar an unset series is harvested as.
func isNull(v store.Value) bool {
	return v.Kind() == store.KindScalar && v.Any() == nil
}

func mismatch(name string, want store.Kind, got store.Value) error {
	return fmt.Errorf("param %s takes %s, got %s", name, want, got.Kind())
}

// Find returns the param named name.
func Find(params []Param, name string) (Param, bool) {
	i := slices.IndexFunc(params, func(p Param) bool { return p.Name == name })
	if i < 0 {
		return Param{}, false
	}
	return params[i], true
}
