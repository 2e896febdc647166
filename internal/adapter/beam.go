package adapter

import (
	"log/slog"

	"github.com/OCAP2/simvis/internal/cache"
	"github.com/OCAP2/simvis/internal/diff"
	"github.com/OCAP2/simvis/internal/geo"
	"github.com/OCAP2/simvis/internal/scene"
	"github.com/OCAP2/simvis/pkg/core"
)

// BeamRecords caches the last-applied beam records.
type BeamRecords = cache.RecordCache[core.BeamProperties, core.BeamPrefs, core.BeamUpdate]

// Beam applies beam records. A beam is always hosted: its frame is its
// host's frame rotated by azimuth and elevation, and its wireframe comes
// from the width preferences plus the range of the latest update.
type Beam struct {
	ctx     *Context
	records *BeamRecords
	log     *slog.Logger
}

func NewBeam(ctx *Context) *Beam {
	return &Beam{
		ctx:     ctx,
		records: cache.NewRecordCache[core.BeamProperties, core.BeamPrefs, core.BeamUpdate](),
		log:     ctx.Logger.With("component", "beam"),
	}
}

// Records exposes the cached records.
func (a *Beam) Records() *BeamRecords { return a.records }

// Create registers the beam with an empty transform, so entities hosted on
// it can link before it has geometry, and an empty line.
func (a *Beam) Create(props core.BeamProperties) (scene.Handle, bool) {
	id, ok := props.ID.Get()
	if !ok {
		a.log.Warn("Beam properties missing id, abandoning create")
		return scene.Null, false
	}
	h := a.ctx.register(id, core.KindBeam, a.log)
	if !a.ctx.Scene.Lines.Has(h) {
		a.ctx.Scene.Lines.Emplace(h).Style = beamStyle
	}
	a.ApplyProperties(props)
	return h, true
}

// ApplyProperties links the beam to its host when the host id changed or
// is still unresolved.
func (a *Beam) ApplyProperties(props core.BeamProperties) bool {
	id, ok := props.ID.Get()
	if !ok {
		a.log.Warn("Beam properties missing id")
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

func (a *Beam) ApplyPreferences(id core.ObjectID, prefs core.BeamPrefs) bool {
	h, ok := a.ctx.lookup(id, a.log, "preferences")
	if !ok {
		return false
	}
	prev, _ := a.records.Preferences(id)
	upd, _ := a.records.Update(id)
	changed := false

	if diff.Any(
		diff.Changed(prefs.HorizontalWidth, prev.HorizontalWidth),
		diff.Changed(prefs.VerticalWidth, prev.VerticalWidth),
		diff.Changed(prefs.BeamPositionOffset, prev.BeamPositionOffset),
	) {
		changed = a.rebuild(h, prefs, upd) || changed
	}

	if diff.Changed(prefs.AzimuthOffset, prev.AzimuthOffset) && diff.AnyPresent(upd.Azimuth, upd.Elevation) {
		changed = a.orient(id, h, prefs, upd) || changed
	}

	if a.ctx.applyCommon(h, prefs.Common, prev.Common, a.log) {
		changed = true
	}

	a.records.SetPreferences(id, prefs)
	return changed
}

// ApplyUpdate re-derives orientation when azimuth or elevation changed and
// geometry when range changed. Fields missing from the sample keep their
// previous value.
func (a *Beam) ApplyUpdate(id core.ObjectID, update core.BeamUpdate) bool {
	h, ok := a.ctx.lookup(id, a.log, "update")
	if !ok {
		return false
	}
	prev, _ := a.records.Update(id)
	prefs, _ := a.records.Preferences(id)
	merged := core.BeamUpdate{
		Time:      update.Time,
		Azimuth:   diff.Merge(update.Azimuth, prev.Azimuth),
		Elevation: diff.Merge(update.Elevation, prev.Elevation),
		Range:     diff.Merge(update.Range, prev.Range),
	}
	changed := false

	if diff.Any(
		diff.Changed(update.Azimuth, prev.Azimuth),
		diff.Changed(update.Elevation, prev.Elevation),
	) {
		changed = a.orient(id, h, prefs, merged) || changed
	}

	if diff.Changed(update.Range, prev.Range) {
		changed = a.rebuild(h, prefs, merged) || changed
	}

	a.records.SetUpdate(id, merged)
	return changed
}

// orient sets the beam frame to its host frame rotated by elevation about
// x and azimuth plus the azimuth offset about z.
func (a *Beam) orient(id core.ObjectID, h scene.Handle, prefs core.BeamPrefs, upd core.BeamUpdate) bool {
	tr, ok := a.ctx.Scene.Transforms.Get(h)
	if !ok {
		return false
	}
	yaw := upd.Azimuth.Value() + prefs.AzimuthOffset.Value()
	r := geo.EulerToQuat(upd.Elevation.Value(), 0, yaw)
	attach(tr, a.ctx.Hosts, id, r)
	return true
}

func (a *Beam) rebuild(h scene.Handle, prefs core.BeamPrefs, upd core.BeamUpdate) bool {
	rng, ok := upd.Range.Get()
	if !ok {
		a.log.Debug("Beam range unknown, geometry deferred", "handle", h)
		return false
	}
	line, ok := a.ctx.Scene.Lines.Get(h)
	if !ok {
		return false
	}
	BeamFrustum(line, rng, prefs.HorizontalWidth.Value(), prefs.VerticalWidth.Value(), prefs.BeamPositionOffset.Value())
	return true
}

// attach rigidly attaches tr to the current frame of id's host, then
// rotates it locally by r. Without a host the rotation is absolute.
func attach(tr *scene.Transform, hosts *HostResolver, id core.ObjectID, r geo.Quat) {
	tr.Local = r
	if host, ok := hosts.Transform(id); ok {
		tr.Position = host.Position
		tr.HasPosition = host.HasPosition
		tr.Rotation = host.Rotation.Mul(r)
	} else {
		tr.Rotation = r
	}
	tr.Dirty()
}
