package models

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"

	"github.com/mcncl/ctyper/internal/errors"
)

// Value is an initializer datum: a scalar (Int, Uint, Float, String) or a
// List of further values. Nesting depth is unbounded and sibling lists may
// have different lengths.
type Value interface {
	isValue()
}

// Int is a signed integer scalar.
type Int int64

// Uint is an unsigned integer scalar that does not fit in an Int.
type Uint uint64

// Float is a floating-point scalar.
type Float float64

// String is a textual scalar. It is emitted verbatim between double quotes,
// so any C escaping must already be applied.
type String string

// List is an ordered sequence of values.
type List []Value

func (Int) isValue()    {}
func (Uint) isValue()   {}
func (Float) isValue()  {}
func (String) isValue() {}
func (List) isValue()   {}

// IsList reports whether v is a sequence rather than a scalar.
func IsList(v Value) bool {
	_, ok := v.(List)
	return ok
}

// IsText reports whether v is a textual scalar.
func IsText(v Value) bool {
	_, ok := v.(String)
	return ok
}

// Ints builds a List from integers.
func Ints[T ~int | ~int8 | ~int16 | ~int32 | ~int64](xs ...T) List {
	out := make(List, len(xs))
	for i, x := range xs {
		out[i] = Int(x)
	}
	return out
}

// Floats builds a List from floating-point numbers.
func Floats[T ~float32 | ~float64](xs ...T) List {
	out := make(List, len(xs))
	for i, x := range xs {
		out[i] = Float(x)
	}
	return out
}

// Strings builds a List of textual scalars.
func Strings(xs ...string) List {
	out := make(List, len(xs))
	for i, x := range xs {
		out[i] = String(x)
	}
	return out
}

// FromAny converts a native Go value, or one produced by a YAML or JSON
// decoder, into a Value. Slices and arrays of any element type become
// Lists. Values without a C literal form (bool, nil, maps, structs) are
// rejected with a configuration error.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case Value:
		return x, nil
	case string:
		return String(x), nil
	case int:
		return Int(x), nil
	case int8:
		return Int(x), nil
	case int16:
		return Int(x), nil
	case int32:
		return Int(x), nil
	case int64:
		return Int(x), nil
	case uint:
		return fromUnsigned(uint64(x)), nil
	case uint8:
		return Int(x), nil
	case uint16:
		return Int(x), nil
	case uint32:
		return Int(x), nil
	case uint64:
		return fromUnsigned(x), nil
	case float32:
		return Float(x), nil
	case float64:
		return Float(x), nil
	case json.Number:
		return fromNumber(x)
	case []any:
		out := make(List, len(x))
		for i, elem := range x {
			conv, err := FromAny(elem)
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	case nil:
		return nil, errors.NewConfigError("null has no C literal form", errors.ErrUnrenderable)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make(List, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			conv, err := FromAny(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = conv
		}
		return out, nil
	}

	return nil, errors.NewConfigError(fmt.Sprintf("%T has no C literal form", v), errors.ErrUnrenderable)
}

func fromUnsigned(u uint64) Value {
	if u <= math.MaxInt64 {
		return Int(int64(u))
	}
	return Uint(u)
}

func fromNumber(num json.Number) (Value, error) {
	if i, err := num.Int64(); err == nil {
		return Int(i), nil
	}
	if u, err := strconv.ParseUint(string(num), 10, 64); err == nil {
		return Uint(u), nil
	}
	f, err := num.Float64()
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("invalid number %q", string(num)), errors.ErrUnrenderable)
	}
	return Float(f), nil
}
