package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/OCAP2/simvis/pkg/core"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestFromGeodetic_EquatorPrimeMeridian(t *testing.T) {
	p := FromGeodetic(0, 0, 0)

	if !almostEqual(p.ECEF.X, 6378137.0, 1e-3) {
		t.Errorf("expected X=6378137, got %f", p.ECEF.X)
	}
	if !almostEqual(p.ECEF.Y, 0, 1e-3) {
		t.Errorf("expected Y=0, got %f", p.ECEF.Y)
	}
	if !almostEqual(p.ECEF.Z, 0, 1e-3) {
		t.Errorf("expected Z=0, got %f", p.ECEF.Z)
	}
}

func TestFromECEF_RoundTrip(t *testing.T) {
	start := FromGeodetic(2.0, 35.0, 10000.0)
	p := FromECEF(start.ECEF.X, start.ECEF.Y, start.ECEF.Z)

	if !almostEqual(p.Geo.Longitude, 2.0, 1e-7) {
		t.Errorf("expected lon=2.0, got %f", p.Geo.Longitude)
	}
	if !almostEqual(p.Geo.Latitude, 35.0, 1e-7) {
		t.Errorf("expected lat=35.0, got %f", p.Geo.Latitude)
	}
	if !almostEqual(p.Geo.Altitude, 10000.0, 1e-2) {
		t.Errorf("expected alt=10000, got %f", p.Geo.Altitude)
	}
	if p.ECEF != start.ECEF {
		t.Errorf("expected ECEF to be kept verbatim, got %+v", p.ECEF)
	}
}

func TestParseLLA_Valid(t *testing.T) {
	p, err := ParseLLA("2.0, 35.0, 10000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Longitude != 2.0 || p.Latitude != 35.0 || p.Altitude != 10000 {
		t.Errorf("unexpected position %+v", p)
	}
}

func TestParseLLA_WithoutAltitude(t *testing.T) {
	p, err := ParseLLA("-71.5,42.25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Altitude != 0 {
		t.Errorf("expected altitude=0, got %f", p.Altitude)
	}
}

func TestParseLLA_Invalid(t *testing.T) {
	for _, in := range []string{"", "1", "abc,2", "1,xyz", "1,2,bad", "1,95"} {
		_, err := ParseLLA(in)
		if !errors.Is(err, ErrInvalidCoordinates) {
			t.Errorf("%q: expected ErrInvalidCoordinates, got %v", in, err)
		}
	}
}

func TestEulerToQuat_Identity(t *testing.T) {
	q := EulerToQuat(0, 0, 0)
	if q != Identity {
		t.Errorf("expected identity, got %+v", q)
	}
}

func TestEulerToQuat_YawTurnsForwardToLeft(t *testing.T) {
	v := EulerToQuat(0, 0, math.Pi/2).Rotate(core.Vec3{X: 1})

	if !almostEqual(v.X, 0, 1e-12) || !almostEqual(v.Y, 1, 1e-12) || !almostEqual(v.Z, 0, 1e-12) {
		t.Errorf("expected (0,1,0), got %+v", v)
	}
}

func TestEulerToQuat_XRotationAppliedBeforeZ(t *testing.T) {
	// +Y turned 90° about X lands on +Z; the later Z turn leaves it there.
	v := EulerToQuat(math.Pi/2, 0, math.Pi/2).Rotate(core.Vec3{Y: 1})

	if !almostEqual(v.X, 0, 1e-12) || !almostEqual(v.Y, 0, 1e-12) || !almostEqual(v.Z, 1, 1e-12) {
		t.Errorf("expected (0,0,1), got %+v", v)
	}
}

func TestQuat_MulIdentity(t *testing.T) {
	q := EulerToQuat(0.3, 0.2, 0.1)
	if q.Mul(Identity) != q {
		t.Errorf("expected q*I == q")
	}
}
