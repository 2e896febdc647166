// pkg/core/types.go
package core

import "fmt"

// ObjectID identifies a simulated object for the lifetime of a session.
// IDs are unique across all kinds.
type ObjectID uint64

// Kind is the closed set of entity kinds the sync layer understands.
type Kind uint8

const (
	KindNone Kind = iota
	KindPlatform
	KindBeam
	KindGate
)

func (k Kind) String() string {
	switch k {
	case KindPlatform:
		return "platform"
	case KindBeam:
		return "beam"
	case KindGate:
		return "gate"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Hosted reports whether entities of this kind attach to a host entity.
func (k Kind) Hosted() bool {
	return k == KindBeam || k == KindGate
}

// Vec3 is a 3D vector in meters unless stated otherwise.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// TextAlignment positions a label relative to its anchor.
type TextAlignment uint8

const (
	AlignLeftTop TextAlignment = iota
	AlignLeftCenter
	AlignLeftBottom
	AlignCenterTop
	AlignCenterCenter
	AlignCenterBottom
	AlignRightTop
	AlignRightCenter
	AlignRightBottom
)

func (a TextAlignment) String() string {
	names := [...]string{
		"left_top", "left_center", "left_bottom",
		"center_top", "center_center", "center_bottom",
		"right_top", "right_center", "right_bottom",
	}
	if int(a) < len(names) {
		return names[a]
	}
	return fmt.Sprintf("alignment(%d)", uint8(a))
}
