// pkg/core/optional.go
package core

import "encoding/json"

// Opt is a record field that is either present with a value or absent.
// Absent means "do not change"; a present zero value is a real value.
type Opt[T comparable] struct {
	v  T
	ok bool
}

// Some returns a present field holding v.
func Some[T comparable](v T) Opt[T] {
	return Opt[T]{v: v, ok: true}
}

// None returns an absent field.
func None[T comparable]() Opt[T] {
	return Opt[T]{}
}

// Get returns the value and whether it is present.
func (o Opt[T]) Get() (T, bool) {
	return o.v, o.ok
}

// Has reports whether the field is present.
func (o Opt[T]) Has() bool {
	return o.ok
}

// Value returns the value, or the zero value of T when absent.
func (o Opt[T]) Value() T {
	return o.v
}

// Or returns the value when present and def otherwise.
func (o Opt[T]) Or(def T) T {
	if o.ok {
		return o.v
	}
	return def
}

// MarshalJSON encodes an absent field as null.
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.v)
}

// UnmarshalJSON decodes null as absent.
func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = Opt[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Opt[T]{v: v, ok: true}
	return nil
}
