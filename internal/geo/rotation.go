package geo

import (
	"math"

	"gonum.org/v1/gonum/num/quat"

	"github.com/OCAP2/simvis/pkg/core"
)

// Quat is a unit rotation quaternion. Arithmetic runs on gonum's
// quaternion numbers; the struct keeps the x, y, z, w layout the scene
// stores.
type Quat struct {
	X, Y, Z, W float64
}

// Identity is the rotation that leaves vectors unchanged.
var Identity = Quat{W: 1}

// EulerToQuat returns the rotation that turns x radians about the X axis,
// then y about Y, then z about Z.
func EulerToQuat(x, y, z float64) Quat {
	qx := axisAngle(core.Vec3{X: 1}, x)
	qy := axisAngle(core.Vec3{Y: 1}, y)
	qz := axisAngle(core.Vec3{Z: 1}, z)
	return fromNumber(quat.Mul(quat.Mul(qz, qy), qx))
}

func axisAngle(axis core.Vec3, angle float64) quat.Number {
	s, c := math.Sincos(angle / 2)
	return quat.Number{Real: c, Imag: axis.X * s, Jmag: axis.Y * s, Kmag: axis.Z * s}
}

func (q Quat) number() quat.Number {
	return quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z}
}

func fromNumber(n quat.Number) Quat {
	return Quat{X: n.Imag, Y: n.Jmag, Z: n.Kmag, W: n.Real}
}

// Mul returns the rotation q applied after o.
func (q Quat) Mul(o Quat) Quat {
	return fromNumber(quat.Mul(q.number(), o.number()))
}

// Rotate applies q to v.
func (q Quat) Rotate(v core.Vec3) core.Vec3 {
	n := q.number()
	r := quat.Mul(quat.Mul(n, quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}), quat.Conj(n))
	return core.Vec3{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// Array returns the components in x, y, z, w order.
func (q Quat) Array() [4]float64 {
	return [4]float64{q.X, q.Y, q.Z, q.W}
}
