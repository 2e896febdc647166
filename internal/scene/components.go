package scene

import (
	"github.com/OCAP2/simvis/internal/geo"
	"github.com/OCAP2/simvis/internal/resource"
	"github.com/OCAP2/simvis/pkg/core"
)

// Transform places an entity in the world. Hosted entities record their
// host in Parent as a non-owning reference and take their base position
// and rotation from it when their own orientation is derived.
type Transform struct {
	Position    geo.Position
	HasPosition bool
	Rotation    geo.Quat // world rotation of this frame
	Local       geo.Quat // rotation relative to the parent frame
	Parent      Handle

	revision uint64
}

// SetPosition moves the transform and marks it dirty.
func (t *Transform) SetPosition(p geo.Position) {
	t.Position = p
	t.HasPosition = true
	t.Dirty()
}

// Dirty requests re-derivation before the next draw.
func (t *Transform) Dirty() { t.revision++ }

// Revision counts dirty marks.
func (t *Transform) Revision() uint64 { return t.revision }

// Icon is a screen-space image drawn at the entity position.
type Icon struct {
	Image      *resource.Image
	SizePixels float64

	imageRevision uint64
	styleRevision uint64
}

// DirtyImage requests a texture upload.
func (i *Icon) DirtyImage() { i.imageRevision++ }

// DirtyStyle requests a layout refresh.
func (i *Icon) DirtyStyle() { i.styleRevision++ }

// Revision counts dirty marks of either kind.
func (i *Icon) Revision() uint64 { return i.imageRevision + i.styleRevision }

// ImageRevision counts image dirty marks.
func (i *Icon) ImageRevision() uint64 { return i.imageRevision }

// HAlign is horizontal text alignment.
type HAlign uint8

const (
	HAlignLeft HAlign = iota
	HAlignCenter
	HAlignRight
)

// VAlign is vertical text alignment.
type VAlign uint8

const (
	VAlignBottom VAlign = iota
	VAlignCenter
	VAlignTop
)

// LabelStyle controls label rendering.
type LabelStyle struct {
	Font                *resource.Font
	PointSize           float64
	HorizontalAlignment HAlign
	VerticalAlignment   VAlign
}

// Label is a text label drawn next to the entity.
type Label struct {
	Text    string
	Style   LabelStyle
	Visible bool

	revision uint64
}

// Dirty requests re-layout of the text.
func (l *Label) Dirty() { l.revision++ }

// Revision counts dirty marks.
func (l *Label) Revision() uint64 { return l.revision }

// LineStyle controls line rendering.
type LineStyle struct {
	Color [4]float32 // RGBA
	Width float32
}

// Line is a discrete segment list in the entity's local frame: vertices
// 2i and 2i+1 form segment i.
type Line struct {
	Vertices []core.Vec3
	Style    LineStyle

	revision uint64
}

// Reset removes all segments.
func (l *Line) Reset() {
	l.Vertices = l.Vertices[:0]
}

// PushStrip appends the segments joining consecutive points.
func (l *Line) PushStrip(points ...core.Vec3) {
	for i := 1; i < len(points); i++ {
		l.Vertices = append(l.Vertices, points[i-1], points[i])
	}
}

// Segments returns the number of segments.
func (l *Line) Segments() int {
	return len(l.Vertices) / 2
}

// Dirty requests a vertex buffer rebuild.
func (l *Line) Dirty() { l.revision++ }

// Revision counts dirty marks.
func (l *Line) Revision() uint64 { return l.revision }
