package adapter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/simvis/internal/geo"
	"github.com/OCAP2/simvis/internal/scene"
	"github.com/OCAP2/simvis/pkg/core"
)

func deg(d float64) float64 { return d * math.Pi / 180 }

func demoBeamPrefs() core.BeamPrefs {
	return core.BeamPrefs{
		HorizontalWidth: core.Some(deg(30)),
		VerticalWidth:   core.Some(deg(25)),
	}
}

func newBeamFixture(t *testing.T) (*Context, *Platform, *Beam) {
	t.Helper()
	ctx, _ := newTestContext(t)
	p := NewPlatform(ctx)
	b := NewBeam(ctx)
	createPlatform(t, p, 1)
	_, ok := b.Create(core.BeamProperties{ID: id(2), HostID: id(1)})
	require.True(t, ok)
	return ctx, p, b
}

func beamHandle(t *testing.T, ctx *Context, oid core.ObjectID) scene.Handle {
	t.Helper()
	h, ok := ctx.Entities.Lookup(oid)
	require.True(t, ok)
	return h
}

func TestFrustumCorners_ClosedForm(t *testing.T) {
	r, hw, vw := 35000.0, deg(30), deg(25)
	x := r * math.Cos(hw/2)
	y := r * math.Sin(hw/2)
	z := r * math.Sin(vw/2)

	ul, ur, ll, lr := FrustumCorners(r, hw, vw, core.Vec3{})

	assert.Equal(t, core.Vec3{X: x, Y: y, Z: z}, ul)
	assert.Equal(t, core.Vec3{X: x, Y: -y, Z: z}, ur)
	assert.Equal(t, core.Vec3{X: x, Y: y, Z: -z}, ll)
	assert.Equal(t, core.Vec3{X: x, Y: -y, Z: -z}, lr)
	assert.InDelta(t, 33807.4, x, 0.1)
	assert.InDelta(t, 9058.6, y, 0.1)
	assert.InDelta(t, 7575.4, z, 0.1)
}

func TestBeamFrustum_SegmentPattern(t *testing.T) {
	offset := core.Vec3{X: 1, Y: 2, Z: 3}
	ul, ur, ll, lr := FrustumCorners(1000, deg(10), deg(20), offset)
	var line scene.Line

	BeamFrustum(&line, 1000, deg(10), deg(20), offset)

	require.Len(t, line.Vertices, 16)
	assert.Equal(t, []core.Vec3{
		ur, ul, ul, ll, ll, lr, lr, ur,
		ur, offset, offset, ul,
		lr, offset, offset, ll,
	}, line.Vertices)
	assert.Equal(t, beamStyle, line.Style)
	assert.Equal(t, uint64(1), line.Revision())
}

func TestBeamFrustum_Deterministic(t *testing.T) {
	var a, b scene.Line
	BeamFrustum(&a, 35000, deg(30), deg(25), core.Vec3{})
	for i := 0; i < 5; i++ {
		BeamFrustum(&b, 35000, deg(30), deg(25), core.Vec3{})
	}

	assert.Equal(t, a.Vertices, b.Vertices)
}

func TestBeam_CreateAttachesTransformAndLine(t *testing.T) {
	ctx, _, _ := newBeamFixture(t)
	h := beamHandle(t, ctx, 2)
	host := beamHandle(t, ctx, 1)

	tr, ok := ctx.Scene.Transforms.Get(h)
	require.True(t, ok)
	assert.Equal(t, host, tr.Parent)
	assert.True(t, ctx.Scene.Lines.Has(h))
	assert.True(t, ctx.Hosts.Linked(2))
}

func TestBeam_ForwardReferenceResolvesOnHostCreate(t *testing.T) {
	ctx, _ := newTestContext(t)
	p := NewPlatform(ctx)
	b := NewBeam(ctx)

	bh, ok := b.Create(core.BeamProperties{ID: id(2), HostID: id(1)})
	require.True(t, ok)
	assert.False(t, ctx.Hosts.Linked(2))
	assert.Equal(t, 1, ctx.Hosts.Pending(1))
	tr, _ := ctx.Scene.Transforms.Get(bh)
	assert.Equal(t, scene.Null, tr.Parent)

	ph := createPlatform(t, p, 1)

	assert.True(t, ctx.Hosts.Linked(2))
	assert.Equal(t, 0, ctx.Hosts.Pending(1))
	assert.Equal(t, ph, tr.Parent)
}

func TestBeam_ForwardReferenceResolvesOnPropertiesReapply(t *testing.T) {
	ctx, _ := newTestContext(t)
	b := NewBeam(ctx)

	b.Create(core.BeamProperties{ID: id(2), HostID: id(1)})
	// Host registered without going through an adapter.
	ph, _ := ctx.Entities.Resolve(1, core.KindPlatform, ctx.Scene.Create)
	ctx.Scene.Transforms.Emplace(ph)

	require.True(t, b.ApplyProperties(core.BeamProperties{ID: id(2), HostID: id(1)}))

	bh := beamHandle(t, ctx, 2)
	tr, _ := ctx.Scene.Transforms.Get(bh)
	assert.Equal(t, ph, tr.Parent)
}

func TestBeam_AzimuthChangeRotatesWithoutRebuildingGeometry(t *testing.T) {
	ctx, _, b := newBeamFixture(t)
	h := beamHandle(t, ctx, 2)
	b.ApplyPreferences(2, demoBeamPrefs())
	b.ApplyUpdate(2, core.BeamUpdate{Azimuth: core.Some(0.0), Elevation: core.Some(0.0), Range: core.Some(35000.0)})

	line, _ := ctx.Scene.Lines.Get(h)
	tr, _ := ctx.Scene.Transforms.Get(h)
	lineRev, trRev := line.Revision(), tr.Revision()
	vertices := append([]core.Vec3(nil), line.Vertices...)

	require.True(t, b.ApplyUpdate(2, core.BeamUpdate{Azimuth: core.Some(0.5), Elevation: core.Some(0.0), Range: core.Some(35000.0)}))

	assert.Equal(t, lineRev, line.Revision(), "geometry must not rebuild on azimuth change")
	assert.Equal(t, vertices, line.Vertices)
	assert.Greater(t, tr.Revision(), trRev)
	assert.Equal(t, geo.EulerToQuat(0, 0, 0.5), tr.Local)
}

func TestBeam_RangeChangeRebuildsGeometry(t *testing.T) {
	ctx, _, b := newBeamFixture(t)
	h := beamHandle(t, ctx, 2)
	b.ApplyPreferences(2, demoBeamPrefs())

	line, _ := ctx.Scene.Lines.Get(h)
	assert.Empty(t, line.Vertices, "no range known yet")

	require.True(t, b.ApplyUpdate(2, core.BeamUpdate{Range: core.Some(35000.0)}))
	require.Len(t, line.Vertices, 16)
	_, ur, _, _ := FrustumCorners(35000, deg(30), deg(25), core.Vec3{})
	assert.Equal(t, ur, line.Vertices[0])

	rev := line.Revision()
	require.True(t, b.ApplyUpdate(2, core.BeamUpdate{Range: core.Some(1000.0)}))
	assert.Equal(t, rev+1, line.Revision())
	_, ur, _, _ = FrustumCorners(1000, deg(30), deg(25), core.Vec3{})
	assert.Equal(t, ur, line.Vertices[0])
}

func TestBeam_PreferenceChangeUsesCachedRange(t *testing.T) {
	ctx, _, b := newBeamFixture(t)
	h := beamHandle(t, ctx, 2)
	b.ApplyUpdate(2, core.BeamUpdate{Range: core.Some(35000.0)})
	b.ApplyPreferences(2, demoBeamPrefs())

	wider := demoBeamPrefs()
	wider.HorizontalWidth = core.Some(deg(60))
	require.True(t, b.ApplyPreferences(2, wider))

	line, _ := ctx.Scene.Lines.Get(h)
	_, ur, _, _ := FrustumCorners(35000, deg(60), deg(25), core.Vec3{})
	assert.Equal(t, ur, line.Vertices[0])
}

func TestBeam_IdenticalPreferencesDoNothing(t *testing.T) {
	ctx, _, b := newBeamFixture(t)
	h := beamHandle(t, ctx, 2)
	b.ApplyUpdate(2, core.BeamUpdate{Range: core.Some(35000.0)})
	require.True(t, b.ApplyPreferences(2, demoBeamPrefs()))

	line, _ := ctx.Scene.Lines.Get(h)
	rev := line.Revision()

	assert.False(t, b.ApplyPreferences(2, demoBeamPrefs()))
	assert.Equal(t, rev, line.Revision())
}

func TestBeam_UnrelatedPreferenceDoesNotRebuild(t *testing.T) {
	ctx, _, b := newBeamFixture(t)
	h := beamHandle(t, ctx, 2)
	b.ApplyUpdate(2, core.BeamUpdate{Range: core.Some(35000.0)})
	b.ApplyPreferences(2, demoBeamPrefs())
	line, _ := ctx.Scene.Lines.Get(h)
	rev := line.Revision()

	renamed := demoBeamPrefs()
	renamed.Common = named("beam", nil)
	require.True(t, b.ApplyPreferences(2, renamed))

	assert.Equal(t, rev, line.Revision())
}

func TestBeam_OrientationFollowsHost(t *testing.T) {
	ctx, p, b := newBeamFixture(t)
	h := beamHandle(t, ctx, 2)
	pos := geo.FromGeodetic(2, 35, 10000)
	p.ApplyUpdate(1, core.PlatformUpdate{X: core.Some(pos.ECEF.X), Y: core.Some(pos.ECEF.Y), Z: core.Some(pos.ECEF.Z)})

	prefs := demoBeamPrefs()
	prefs.AzimuthOffset = core.Some(0.25)
	b.ApplyPreferences(2, prefs)
	require.True(t, b.ApplyUpdate(2, core.BeamUpdate{Azimuth: core.Some(0.5), Elevation: core.Some(0.1)}))

	tr, _ := ctx.Scene.Transforms.Get(h)
	assert.Equal(t, pos.ECEF, tr.Position.ECEF)
	assert.True(t, tr.HasPosition)
	assert.Equal(t, geo.EulerToQuat(0.1, 0, 0.75), tr.Local)
}

func TestBeam_AzimuthOffsetChangeReorients(t *testing.T) {
	ctx, _, b := newBeamFixture(t)
	h := beamHandle(t, ctx, 2)
	b.ApplyPreferences(2, demoBeamPrefs())
	b.ApplyUpdate(2, core.BeamUpdate{Azimuth: core.Some(0.5), Elevation: core.Some(0.0)})

	prefs := demoBeamPrefs()
	prefs.AzimuthOffset = core.Some(0.5)
	require.True(t, b.ApplyPreferences(2, prefs))

	tr, _ := ctx.Scene.Transforms.Get(h)
	assert.Equal(t, geo.EulerToQuat(0, 0, 1.0), tr.Local)
}

func TestBeam_HostChangeRelinks(t *testing.T) {
	ctx, p, b := newBeamFixture(t)
	other := createPlatform(t, p, 3)

	require.True(t, b.ApplyProperties(core.BeamProperties{ID: id(2), HostID: id(3)}))

	host, ok := ctx.Hosts.Host(2)
	require.True(t, ok)
	assert.Equal(t, core.ObjectID(3), host)
	tr, _ := ctx.Scene.Transforms.Get(beamHandle(t, ctx, 2))
	assert.Equal(t, other, tr.Parent)
}

func TestBeam_MissingIDIsAbandoned(t *testing.T) {
	ctx, _ := newTestContext(t)
	b := NewBeam(ctx)

	_, ok := b.Create(core.BeamProperties{HostID: id(1)})
	assert.False(t, ok)
	assert.False(t, b.ApplyProperties(core.BeamProperties{HostID: id(1)}))
	assert.Equal(t, 0, ctx.Scene.Len())
}
