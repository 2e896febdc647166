package adapter

import (
	"math"

	"github.com/OCAP2/simvis/internal/scene"
	"github.com/OCAP2/simvis/pkg/core"
)

// Beam and gate geometry is built in the entity's local frame: x forward,
// y left, z up.

var (
	beamStyle = scene.LineStyle{Color: [4]float32{1, 1, 0, 0.55}, Width: 2}
	gateStyle = scene.LineStyle{Color: [4]float32{0, 1, 1, 0.55}, Width: 1.5}
)

// FrustumCorners returns the far-cap corners of a beam of the given range
// and full angular widths, translated by offset.
func FrustumCorners(rangeM, hWidth, vWidth float64, offset core.Vec3) (ul, ur, ll, lr core.Vec3) {
	x := rangeM * math.Cos(hWidth*0.5)
	y := rangeM * math.Sin(hWidth*0.5)
	z := rangeM * math.Sin(vWidth*0.5)

	ul = core.Vec3{X: x, Y: y, Z: z}.Add(offset)
	ur = core.Vec3{X: x, Y: -y, Z: z}.Add(offset)
	ll = core.Vec3{X: x, Y: y, Z: -z}.Add(offset)
	lr = core.Vec3{X: x, Y: -y, Z: -z}.Add(offset)
	return
}

// BeamFrustum writes the beam wireframe into line: the far-cap outline
// plus two spokes from the offset origin to the upper and lower corner
// pairs. Always 16 vertices.
func BeamFrustum(line *scene.Line, rangeM, hWidth, vWidth float64, offset core.Vec3) {
	ul, ur, ll, lr := FrustumCorners(rangeM, hWidth, vWidth, offset)

	line.Reset()
	line.PushStrip(ur, ul, ll, lr, ur)
	line.PushStrip(ur, offset, ul)
	line.PushStrip(lr, offset, ll)
	line.Style = beamStyle
	line.Dirty()
}
