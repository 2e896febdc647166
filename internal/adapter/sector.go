package adapter

import (
	"math"

	"github.com/OCAP2/simvis/internal/scene"
	"github.com/OCAP2/simvis/pkg/core"
)

// gateArcSteps is the number of segments sampled along each cap edge.
const gateArcSteps = 4

// GateVertices is the number of vertices GateSector writes: two cap
// outlines of four sampled arcs each, plus four radial edges.
const GateVertices = 2*(2*4*gateArcSteps) + 2*4

// SectorPoint is the point at range r along azimuth az and elevation el,
// in the local frame. Every point of a sector cap lies on the sphere of
// radius r.
func SectorPoint(r, az, el float64) core.Vec3 {
	sa, ca := math.Sincos(az)
	se, ce := math.Sincos(el)
	return core.Vec3{X: r * ce * ca, Y: r * ce * sa, Z: r * se}
}

// sectorCap returns the closed outline of the cap at range r spanning
// ±halfW in azimuth and ±halfH in elevation, starting at the upper left
// corner.
func sectorCap(r, halfW, halfH float64) []core.Vec3 {
	pts := make([]core.Vec3, 0, 4*gateArcSteps+1)
	arc := func(az0, el0, az1, el1 float64) {
		for i := 0; i < gateArcSteps; i++ {
			f := float64(i) / gateArcSteps
			pts = append(pts, SectorPoint(r, az0+(az1-az0)*f, el0+(el1-el0)*f))
		}
	}
	arc(halfW, halfH, -halfW, halfH)
	arc(-halfW, halfH, -halfW, -halfH)
	arc(-halfW, -halfH, halfW, -halfH)
	arc(halfW, -halfH, halfW, halfH)
	return append(pts, pts[0])
}

// GateSector writes a range-gated angular sector into line: curved caps
// at minRange and maxRange, spanning the gate's width in azimuth and its
// height in elevation, joined by radial edges at the four corners.
// Always GateVertices vertices.
//
// Gate geometry has no reference definition yet; this shape is the
// conventional range-gate volume and may change once one exists.
func GateSector(line *scene.Line, minRange, maxRange, width, height float64) {
	halfW, halfH := width*0.5, height*0.5

	line.Reset()
	line.PushStrip(sectorCap(minRange, halfW, halfH)...)
	line.PushStrip(sectorCap(maxRange, halfW, halfH)...)
	for _, c := range [4][2]float64{{halfW, halfH}, {-halfW, halfH}, {-halfW, -halfH}, {halfW, -halfH}} {
		line.PushStrip(SectorPoint(minRange, c[0], c[1]), SectorPoint(maxRange, c[0], c[1]))
	}
	line.Style = gateStyle
	line.Dirty()
}
