package adapter

import (
	"log/slog"

	"github.com/OCAP2/simvis/internal/cache"
	"github.com/OCAP2/simvis/internal/diff"
	"github.com/OCAP2/simvis/internal/geo"
	"github.com/OCAP2/simvis/internal/scene"
	"github.com/OCAP2/simvis/pkg/core"
)

// GateRecords caches the last-applied gate records.
type GateRecords = cache.RecordCache[core.GateProperties, core.GatePrefs, core.GateUpdate]

// Gate applies gate records. Creation and host linkage follow Beam; the
// geometry is a range-gated sector, see GateSector.
type Gate struct {
	ctx     *Context
	records *GateRecords
	log     *slog.Logger
}

func NewGate(ctx *Context) *Gate {
	return &Gate{
		ctx:     ctx,
		records: cache.NewRecordCache[core.GateProperties, core.GatePrefs, core.GateUpdate](),
		log:     ctx.Logger.With("component", "gate"),
	}
}

// Records exposes the cached records.
func (a *Gate) Records() *GateRecords { return a.records }

func (a *Gate) Create(props core.GateProperties) (scene.Handle, bool) {
	id, ok := props.ID.Get()
	if !ok {
		a.log.Warn("Gate properties missing id, abandoning create")
		return scene.Null, false
	}
	h := a.ctx.register(id, core.KindGate, a.log)
	if !a.ctx.Scene.Lines.Has(h) {
		a.ctx.Scene.Lines.Emplace(h).Style = gateStyle
	}
	a.ApplyProperties(props)
	return h, true
}

func (a *Gate) ApplyProperties(props core.GateProperties) bool {
	id, ok := props.ID.Get()
	if !ok {
		a.log.Warn("Gate properties missing id")
		return false
	}
	if _, ok := a.ctx.lookup(id, a.log, "properties"); !ok {
		return false
	}
	prev, _ := a.records.Properties(id)
	if props.HostID.Has() && (diff.Changed(props.HostID, prev.HostID) || !a.ctx.Hosts.Linked(id)) {
		a.ctx.Hosts.Link(id, props.HostID.Value())
	}
	a.records.SetProperties(id, props)
	return true
}

func (a *Gate) ApplyPreferences(id core.ObjectID, prefs core.GatePrefs) bool {
	h, ok := a.ctx.lookup(id, a.log, "preferences")
	if !ok {
		return false
	}
	prev, _ := a.records.Preferences(id)
	upd, _ := a.records.Update(id)
	changed := false

	if diff.Any(
		diff.Changed(prefs.GateAzimuthOffset, prev.GateAzimuthOffset),
		diff.Changed(prefs.GateElevationOffset, prev.GateElevationOffset),
	) && diff.AnyPresent(upd.Azimuth, upd.Elevation) {
		changed = a.orient(id, h, prefs, upd) || changed
	}

	if a.ctx.applyCommon(h, prefs.Common, prev.Common, a.log) {
		changed = true
	}

	a.records.SetPreferences(id, prefs)
	return changed
}

func (a *Gate) ApplyUpdate(id core.ObjectID, update core.GateUpdate) bool {
	h, ok := a.ctx.lookup(id, a.log, "update")
	if !ok {
		return false
	}
	prev, _ := a.records.Update(id)
	prefs, _ := a.records.Preferences(id)
	merged := core.GateUpdate{
		Time:      update.Time,
		Azimuth:   diff.Merge(update.Azimuth, prev.Azimuth),
		Elevation: diff.Merge(update.Elevation, prev.Elevation),
		Width:     diff.Merge(update.Width, prev.Width),
		Height:    diff.Merge(update.Height, prev.Height),
		MinRange:  diff.Merge(update.MinRange, prev.MinRange),
		MaxRange:  diff.Merge(update.MaxRange, prev.MaxRange),
	}
	changed := false

	if diff.Any(
		diff.Changed(update.Azimuth, prev.Azimuth),
		diff.Changed(update.Elevation, prev.Elevation),
	) {
		changed = a.orient(id, h, prefs, merged) || changed
	}

	if diff.Any(
		diff.Changed(update.Width, prev.Width),
		diff.Changed(update.Height, prev.Height),
		diff.Changed(update.MinRange, prev.MinRange),
		diff.Changed(update.MaxRange, prev.MaxRange),
	) {
		changed = a.rebuild(h, merged) || changed
	}

	a.records.SetUpdate(id, merged)
	return changed
}

func (a *Gate) orient(id core.ObjectID, h scene.Handle, prefs core.GatePrefs, upd core.GateUpdate) bool {
	tr, ok := a.ctx.Scene.Transforms.Get(h)
	if !ok {
		return false
	}
	pitch := upd.Elevation.Value() + prefs.GateElevationOffset.Value()
	yaw := upd.Azimuth.Value() + prefs.GateAzimuthOffset.Value()
	attach(tr, a.ctx.Hosts, id, geo.EulerToQuat(pitch, 0, yaw))
	return true
}

// rebuild needs the full extent; partial extents wait for the rest.
func (a *Gate) rebuild(h scene.Handle, upd core.GateUpdate) bool {
	if !upd.Width.Has() || !upd.Height.Has() || !upd.MinRange.Has() || !upd.MaxRange.Has() {
		a.log.Debug("Gate extent incomplete, geometry deferred", "handle", h)
		return false
	}
	line, ok := a.ctx.Scene.Lines.Get(h)
	if !ok {
		return false
	}
	GateSector(line, upd.MinRange.Value(), upd.MaxRange.Value(), upd.Width.Value(), upd.Height.Value())
	return true
}
