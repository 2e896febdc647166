package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/simvis/internal/scene"
	"github.com/OCAP2/simvis/pkg/core"
)

type platformCache = RecordCache[core.PlatformProperties, core.PlatformPrefs, core.PlatformUpdate]

func newPlatformCache() *platformCache {
	return NewRecordCache[core.PlatformProperties, core.PlatformPrefs, core.PlatformUpdate]()
}

func TestRecordCache_EmptyReadsAbsent(t *testing.T) {
	c := newPlatformCache()

	prefs, ok := c.Preferences(1)
	assert.False(t, ok)
	assert.False(t, prefs.Scale.Has(), "zero record must have every field absent")
	assert.False(t, c.Has(1, RecordPreferences))
	assert.Equal(t, 0, c.Len())
}

func TestRecordCache_SetAndGetSlotsIndependently(t *testing.T) {
	c := newPlatformCache()

	c.SetProperties(7, core.PlatformProperties{ID: core.Some[core.ObjectID](7)})
	c.SetUpdate(7, core.PlatformUpdate{Time: 1.5, X: core.Some(1.0)})

	props, ok := c.Properties(7)
	require.True(t, ok)
	assert.Equal(t, core.ObjectID(7), props.ID.Value())

	upd, ok := c.Update(7)
	require.True(t, ok)
	assert.Equal(t, 1.5, upd.Time)

	assert.True(t, c.Has(7, RecordProperties))
	assert.True(t, c.Has(7, RecordUpdate))
	assert.False(t, c.Has(7, RecordPreferences))
	assert.Equal(t, 1, c.Len())
}

func TestRecordCache_SetPreferencesReplacesInFull(t *testing.T) {
	c := newPlatformCache()

	c.SetPreferences(1, core.PlatformPrefs{Scale: core.Some(2.0), Icon: core.Some("a.png")})
	c.SetPreferences(1, core.PlatformPrefs{Icon: core.Some("b.png")})

	got, ok := c.Preferences(1)
	require.True(t, ok)
	assert.Equal(t, "b.png", got.Icon.Value())
	assert.False(t, got.Scale.Has(), "preferences are replaced, not merged")
}

func TestRecordCache_Reset(t *testing.T) {
	c := newPlatformCache()
	c.SetPreferences(1, core.PlatformPrefs{})
	c.SetPreferences(2, core.PlatformPrefs{})

	c.Reset()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Preferences(1)
	assert.False(t, ok)
}

func TestRecordCache_Concurrent(t *testing.T) {
	c := newPlatformCache()
	var wg sync.WaitGroup

	for i := core.ObjectID(0); i < 100; i++ {
		wg.Add(2)
		go func(id core.ObjectID) {
			defer wg.Done()
			c.SetUpdate(id, core.PlatformUpdate{Time: float64(id)})
		}(i)
		go func(id core.ObjectID) {
			defer wg.Done()
			c.Update(id)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 100, c.Len())
}

func TestRecordKind_String(t *testing.T) {
	assert.Equal(t, "properties", RecordProperties.String())
	assert.Equal(t, "preferences", RecordPreferences.String())
	assert.Equal(t, "update", RecordUpdate.String())
	assert.Equal(t, "unknown", RecordKind(9).String())
}

func TestEntityTable_ResolveIsIdempotent(t *testing.T) {
	table := NewEntityTable()
	reg := scene.NewRegistry()
	calls := 0
	create := func() scene.Handle {
		calls++
		return reg.Create()
	}

	h1, created := table.Resolve(42, core.KindPlatform, create)
	require.True(t, created)
	h2, created := table.Resolve(42, core.KindPlatform, create)
	assert.False(t, created)

	assert.Equal(t, h1, h2)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, reg.Len())
	assert.Equal(t, 1, table.Len())
}

func TestEntityTable_LookupBothWays(t *testing.T) {
	table := NewEntityTable()
	reg := scene.NewRegistry()

	h, _ := table.Resolve(5, core.KindBeam, reg.Create)

	got, ok := table.Lookup(5)
	require.True(t, ok)
	assert.Equal(t, h, got)

	id, ok := table.ObjectID(h)
	require.True(t, ok)
	assert.Equal(t, core.ObjectID(5), id)

	kind, ok := table.Kind(5)
	require.True(t, ok)
	assert.Equal(t, core.KindBeam, kind)

	_, ok = table.Lookup(6)
	assert.False(t, ok)
	_, ok = table.ObjectID(scene.Null)
	assert.False(t, ok)
}

func TestEntityTable_Reset(t *testing.T) {
	table := NewEntityTable()
	reg := scene.NewRegistry()
	table.Resolve(1, core.KindPlatform, reg.Create)

	table.Reset()

	assert.Equal(t, 0, table.Len())
	_, ok := table.Lookup(1)
	assert.False(t, ok)
}
