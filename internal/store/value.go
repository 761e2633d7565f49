package store

import (
	"fmt"
	"slices"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	// KindScalar is an opaque value that is not a fixed-length series
	KindScalar Kind = iota
	// KindIntegerSeries is the integer year/period axis
	KindIntegerSeries
	// KindNumericSeries is a floating point series of length LL
	KindNumericSeries
)

// String returns the kind name used in error messages
func (k Kind) String() string {
	switch k {
	case KindIntegerSeries:
		return "integer series"
	case KindNumericSeries:
		return "numeric series"
	default:
		return "scalar"
	}
}

// IsSeries reports whether the kind is one of the fixed-length series.
func (k Kind) IsSeries() bool {
	return k == KindIntegerSeries || k == KindNumericSeries
}

// Value is a tagged variant stored under a variable name.
// The zero Value is a nil scalar.
type Value struct {
	kind   Kind
	ints   []int
	floats []float64
	scalar any
}

// IntegerSeries wraps an integer series. The slice is copied.
func IntegerSeries(v []int) Value {
	return Value{kind: KindIntegerSeries, ints: slices.Clone(v)}
}

// NumericSeries wraps a numeric series. The slice is copied.
func NumericSeries(v []float64) Value {
	return Value{kind: KindNumericSeries, floats: slices.Clone(v)}
}

// Scalar wraps an opaque value.
func Scalar(v any) Value {
	return Value{kind: KindScalar, scalar: v}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// Len returns the series length, or 0 for scalars.
func (v Value) Len() int {
	switch v.kind {
	case KindIntegerSeries:
		return len(v.ints)
	case KindNumericSeries:
		return len(v.floats)
	default:
		return 0
	}
}

// Ints returns a copy of the integer series, or nil if v is not one.
func (v Value) Ints() []int {
	if v.kind != KindIntegerSeries {
		return nil
	}
	return slices.Clone(v.ints)
}

// Floats returns a copy of the series as float64. Integer series are widened.
// Scalars return nil.
func (v Value) Floats() []float64 {
	switch v.kind {
	case KindNumericSeries:
		return slices.Clone(v.floats)
	case KindIntegerSeries:
		out := make([]float64, len(v.ints))
		for i, n := range v.ints {
			out[i] = float64(n)
		}
		return out
	default:
		return nil
	}
}

// Any returns the value as a plain Go value: []int, []float64 or the scalar.
// Series are copied.
func (v Value) Any() any {
	switch v.kind {
	case KindIntegerSeries:
		return slices.Clone(v.ints)
	case KindNumericSeries:
		return slices.Clone(v.floats)
	default:
		return v.scalar
	}
}

// Int returns the scalar as an int when it holds an integral number.
func (v Value) Int() (int, bool) {
	if v.kind != KindScalar {
		return 0, false
	}
	return AsInt(v.scalar)
}

// Cells returns the textual form of every element, one per report column.
// A scalar yields a single cell.
func (v Value) Cells() []string {
	switch v.kind {
	case KindIntegerSeries:
		out := make([]string, len(v.ints))
		for i, n := range v.ints {
			out[i] = strconv.Itoa(n)
		}
		return out
	case KindNumericSeries:
		out := make([]string, len(v.floats))
		for i, f := range v.floats {
			out[i] = FormatFloat(f)
		}
		return out
	default:
		return []string{formatScalar(v.scalar)}
	}
}

// Equal reports whether two values hold the same variant and contents.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindIntegerSeries:
		return slices.Equal(v.ints, o.ints)
	case KindNumericSeries:
		return slices.Equal(v.floats, o.floats)
	default:
		return fmt.Sprint(v.scalar) == fmt.Sprint(o.scalar)
	}
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if v.kind == KindScalar {
		return formatScalar(v.scalar)
	}
	return fmt.Sprint(v.Any())
}

// FormatFloat renders f in the shortest form that parses back to the same value.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatScalar(s any) string {
	switch x := s.(type) {
	case nil:
		return "null"
	case float64:
		return FormatFloat(x)
	case float32:
		return FormatFloat(float64(x))
	default:
		return fmt.Sprint(x)
	}
}

// AsInt converts integral numbers of any Go numeric type to int.
func AsInt(x any) (int, bool) {
	switch n := x.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

// AsFloat converts any Go numeric type to float64.
func AsFloat(x any) (float64, bool) {
	switch n := x.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}
