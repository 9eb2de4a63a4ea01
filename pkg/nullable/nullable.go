// Package nullable provides a tri-state optional value for partial updates.
//
// A Value distinguishes a field that was left out of a request (Unset) from a
// field that was explicitly cleared with JSON null (Null) and from a field that
// carries a value (Set). A plain pointer cannot tell the first two apart.
package nullable

import (
	"bytes"
	"encoding/json"
)

type state uint8

const (
	unset state = iota
	null
	set
)

// Value is the zero-value-is-Unset tri-state wrapper.
type Value[T any] struct {
	state state
	value T
}

// Of returns a Value holding v.
func Of[T any](v T) Value[T] {
	return Value[T]{state: set, value: v}
}

// Null returns a Value that clears the field.
func Null[T any]() Value[T] {
	return Value[T]{state: null}
}

// IsSet reports whether the field was present in the request, null or not.
func (v Value[T]) IsSet() bool { return v.state != unset }

// IsNull reports whether the field was explicitly cleared.
func (v Value[T]) IsNull() bool { return v.state == null }

// Get returns the held value and true when the field carries a value.
func (v Value[T]) Get() (T, bool) {
	return v.value, v.state == set
}

// Column returns the value suitable for a column assignment: nil when Null.
// Callers must check IsSet first.
func (v Value[T]) Column() any {
	if v.state != set {
		return nil
	}
	return v.value
}

func (v *Value[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		v.state, v.value = null, zero
		return nil
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	v.state, v.value = set, out
	return nil
}
