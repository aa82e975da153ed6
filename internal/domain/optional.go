package domain

import "encoding/json"

type optState uint8

const (
	stateUnset optState = iota
	stateEmpty
	stateValue
)

// Opt is a column value that distinguishes "not fetched yet" (unset) from
// "fetched, nothing there" (empty) and an actual value.
type Opt[T any] struct {
	value T
	state optState
}

// Set wraps a fetched value.
func Set[T any](v T) Opt[T] {
	return Opt[T]{value: v, state: stateValue}
}

// Unset returns the "not yet fetched" marker.
func Unset[T any]() Opt[T] {
	return Opt[T]{}
}

// Empty returns the "fetched but absent" marker.
func Empty[T any]() Opt[T] {
	return Opt[T]{state: stateEmpty}
}

// Text maps "" to Empty and anything else to Set.
func Text(s string) Opt[string] {
	if s == "" {
		return Empty[string]()
	}
	return Set(s)
}

func (o Opt[T]) IsUnset() bool { return o.state == stateUnset }
func (o Opt[T]) IsEmpty() bool { return o.state == stateEmpty }
func (o Opt[T]) IsSet() bool   { return o.state == stateValue }

// Get returns the value and whether one is present.
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.state == stateValue
}

// Or returns the value or fallback when no value is present.
func (o Opt[T]) Or(fallback T) T {
	if o.state == stateValue {
		return o.value
	}
	return fallback
}

// Fill keeps o when it already holds a value; otherwise it takes fetched,
// unless fetched carries nothing at all.
func (o Opt[T]) Fill(fetched Opt[T]) Opt[T] {
	if o.state == stateValue || fetched.state == stateUnset {
		return o
	}
	return fetched
}

// MarshalJSON renders unset and empty values as null.
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if o.state != stateValue {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
