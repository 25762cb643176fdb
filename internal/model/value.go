package model

import "time"

// Value is a sealed interface representing the constrained field value types.
// Only Null, String, Number, Bool, Time, and Array implement it.
//
// Condition values and open item fields are restricted to this union so the
// matcher can type-switch exhaustively. Nested objects are intentionally
// excluded: structured data on an item belongs in refs or aggs.
type Value interface {
	value() // Sealed - only these types implement it
}

// Null represents an explicit null field value.
// Distinct from an absent field: a present null matches "== null",
// an absent field matches nothing.
type Null struct{}

func (Null) value() {}

// String represents a string value.
type String string

func (String) value() {}

// Number represents a numeric value. Always float64, matching the
// transport representation (JSON numbers).
type Number float64

func (Number) value() {}

// Bool represents a boolean value.
type Bool bool

func (Bool) value() {}

// Time represents a point-in-time value. Wall clock only; canonical
// encoding normalizes to UTC at nanosecond precision.
type Time time.Time

func (Time) value() {}

// Array represents an ordered sequence of values.
type Array []Value

func (Array) value() {}

// Equal reports deep equality of two values.
//
// Times compare by instant (time.Time.Equal), so equal instants in
// different zones are equal. Arrays compare element-wise in order.
// Values of different dynamic types are never equal.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case Null:
		_, ok := b.(Null)
		return ok
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Time:
		bv, ok := b.(Time)
		return ok && time.Time(av).Equal(time.Time(bv))
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Compare orders two values of the same kind. Returns the usual
// -1/0/+1 and ok=true for comparable pairs (number/number,
// string/string, time/time). Mixed kinds, nulls, bools, and arrays
// are not ordered: ok=false.
func Compare(a, b Value) (int, bool) {
	switch av := a.(type) {
	case Number:
		bv, ok := b.(Number)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		default:
			return 0, true
		}
	case String:
		bv, ok := b.(String)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		default:
			return 0, true
		}
	case Time:
		bv, ok := b.(Time)
		if !ok {
			return 0, false
		}
		at, bt := time.Time(av), time.Time(bv)
		switch {
		case at.Before(bt):
			return -1, true
		case at.After(bt):
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}
