// Package diff decides, field by field, whether an incoming record changes
// the last-applied one.
package diff

import (
	"math"

	"github.com/OCAP2/simvis/pkg/core"
)

// Changed reports whether next carries a value that prev does not already
// hold: next must be present, and prev must be absent or different.
//
// Floating-point values are compared by bit pattern, so -0 differs from +0
// and a NaN equals an identically encoded NaN.
func Changed[T comparable](next, prev core.Opt[T]) bool {
	v, ok := next.Get()
	if !ok {
		return false
	}
	p, had := prev.Get()
	if !had {
		return true
	}
	return !equal(v, p)
}

func equal[T comparable](a, b T) bool {
	switch x := any(a).(type) {
	case float64:
		return math.Float64bits(x) == math.Float64bits(any(b).(float64))
	case float32:
		return math.Float32bits(x) == math.Float32bits(any(b).(float32))
	case core.Vec3:
		y := any(b).(core.Vec3)
		return equal(x.X, y.X) && equal(x.Y, y.Y) && equal(x.Z, y.Z)
	}
	return a == b
}

// Merge returns next when present, otherwise prev. Used to accumulate
// sparse samples into a baseline where absence means "unchanged".
func Merge[T comparable](next, prev core.Opt[T]) core.Opt[T] {
	if next.Has() {
		return next
	}
	return prev
}

// Presence is implemented by core.Opt.
type Presence interface {
	Has() bool
}

// AnyPresent reports whether at least one of fields is present.
func AnyPresent(fields ...Presence) bool {
	for _, f := range fields {
		if f.Has() {
			return true
		}
	}
	return false
}

// AllPresent reports whether every one of fields is present.
func AllPresent(fields ...Presence) bool {
	for _, f := range fields {
		if !f.Has() {
			return false
		}
	}
	return true
}

// Any reports whether any of the field comparisons changed.
func Any(changes ...bool) bool {
	for _, c := range changes {
		if c {
			return true
		}
	}
	return false
}
