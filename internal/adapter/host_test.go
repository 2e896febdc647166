package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/simvis/pkg/core"
)

func TestHostResolver_PendingDependentsLinkInIDOrder(t *testing.T) {
	ctx, _ := newTestContext(t)
	b := NewBeam(ctx)
	g := NewGate(ctx)

	b.Create(core.BeamProperties{ID: id(20), HostID: id(1)})
	g.Create(core.GateProperties{ID: id(10), HostID: id(1)})
	require.Equal(t, 2, ctx.Hosts.Pending(1))

	createPlatform(t, NewPlatform(ctx), 1)

	assert.Equal(t, 0, ctx.Hosts.Pending(1))
	assert.True(t, ctx.Hosts.Linked(10))
	assert.True(t, ctx.Hosts.Linked(20))
}

func TestHostResolver_HostCreatedWithoutPending(t *testing.T) {
	ctx, _ := newTestContext(t)

	assert.Nil(t, ctx.Hosts.HostCreated(5))
}

func TestHostResolver_RelinkClearsPending(t *testing.T) {
	ctx, _ := newTestContext(t)
	p := NewPlatform(ctx)
	b := NewBeam(ctx)
	createPlatform(t, p, 1)

	b.Create(core.BeamProperties{ID: id(2), HostID: id(9)})
	require.Equal(t, 1, ctx.Hosts.Pending(9))

	b.ApplyProperties(core.BeamProperties{ID: id(2), HostID: id(1)})

	assert.Equal(t, 0, ctx.Hosts.Pending(9))
	host, ok := ctx.Hosts.Host(2)
	require.True(t, ok)
	assert.Equal(t, core.ObjectID(1), host)
}

func TestHostResolver_TransformLooksUpHost(t *testing.T) {
	ctx, _, _ := newBeamFixture(t)
	ph := beamHandle(t, ctx, 1)
	want, _ := ctx.Scene.Transforms.Get(ph)

	got, ok := ctx.Hosts.Transform(2)
	require.True(t, ok)
	assert.Same(t, want, got)

	_, ok = ctx.Hosts.Transform(1)
	assert.False(t, ok, "platforms have no host")
}

func TestHostResolver_UnregisteredDependent(t *testing.T) {
	ctx, _ := newTestContext(t)

	assert.False(t, ctx.Hosts.Link(7, 1))
	assert.Equal(t, 0, ctx.Hosts.Pending(1))
}
