// Package record defines the flat per-event records exchanged with the
// record store: a read-only input view and an ordered output record.
package record

import "math"

// Record is a read-only flat input record with named scalar and sequence
// fields. Lookups report ok=false when the field is absent or has a type
// that cannot be converted.
type Record interface {
	Has(name string) bool
	Float(name string) (float64, bool)
	Int(name string) (int64, bool)
	Bool(name string) (bool, bool)
	Floats(name string) ([]float64, bool)
	Ints(name string) ([]int64, bool)
	Bools(name string) ([]bool, bool)
}

// Map is a Record backed by a map of decoded values. It accepts the value
// types produced by common decoders (JSON numbers as float64, CBOR integers
// as int64/uint64, slices as []any).
type Map map[string]any

var _ Record = Map(nil)

// Has reports whether the field is present.
func (m Map) Has(name string) bool {
	_, ok := m[name]
	return ok
}

// Float returns a numeric field as float64.
func (m Map) Float(name string) (float64, bool) {
	v, ok := m[name]
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// Int returns a numeric field as int64.
func (m Map) Int(name string) (int64, bool) {
	v, ok := m[name]
	if !ok {
		return 0, false
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, false
	}
	if i, isInt := v.(int64); isInt {
		return i, true
	}
	if u, isUint := v.(uint64); isUint && u <= math.MaxInt64 {
		return int64(u), true
	}
	return int64(f), true
}

// Bool returns a boolean or numeric flag field.
func (m Map) Bool(name string) (bool, bool) {
	v, ok := m[name]
	if !ok {
		return false, false
	}
	return toBool(v)
}

// Floats returns a sequence field as []float64.
func (m Map) Floats(name string) ([]float64, bool) {
	items, ok := m.slice(name)
	if !ok {
		return nil, false
	}
	out := make([]float64, len(items))
	for i, it := range items {
		f, ok := toFloat(it)
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}

// Ints returns a sequence field as []int64.
func (m Map) Ints(name string) ([]int64, bool) {
	items, ok := m.slice(name)
	if !ok {
		return nil, false
	}
	out := make([]int64, len(items))
	for i, it := range items {
		f, ok := toFloat(it)
		if !ok {
			return nil, false
		}
		out[i] = int64(f)
	}
	return out, true
}

// Bools returns a sequence field as []bool.
func (m Map) Bools(name string) ([]bool, bool) {
	items, ok := m.slice(name)
	if !ok {
		return nil, false
	}
	out := make([]bool, len(items))
	for i, it := range items {
		b, ok := toBool(it)
		if !ok {
			return nil, false
		}
		out[i] = b
	}
	return out, true
}

func (m Map) slice(name string) ([]any, bool) {
	v, ok := m[name]
	if !ok {
		return nil, false
	}
	switch s := v.(type) {
	case []any:
		return s, true
	case []float64:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	case []int:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	case []bool:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	default:
		return nil, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func toBool(v any) (bool, bool) {
	if b, ok := v.(bool); ok {
		return b, true
	}
	f, ok := toFloat(v)
	if !ok {
		return false, false
	}
	return f != 0, true
}
