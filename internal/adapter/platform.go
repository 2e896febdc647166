package adapter

import (
	"log/slog"

	"github.com/OCAP2/simvis/internal/cache"
	"github.com/OCAP2/simvis/internal/diff"
	"github.com/OCAP2/simvis/internal/geo"
	"github.com/OCAP2/simvis/internal/scene"
	"github.com/OCAP2/simvis/pkg/core"
)

// PlatformRecords caches the last-applied platform records.
type PlatformRecords = cache.RecordCache[core.PlatformProperties, core.PlatformPrefs, core.PlatformUpdate]

// Platform applies platform records: a geocentric position, an icon and a
// label.
type Platform struct {
	ctx     *Context
	records *PlatformRecords
	log     *slog.Logger
}

func NewPlatform(ctx *Context) *Platform {
	return &Platform{
		ctx:     ctx,
		records: cache.NewRecordCache[core.PlatformProperties, core.PlatformPrefs, core.PlatformUpdate](),
		log:     ctx.Logger.With("component", "platform"),
	}
}

// Records exposes the cached records.
func (a *Platform) Records() *PlatformRecords { return a.records }

func (a *Platform) Create(props core.PlatformProperties) (scene.Handle, bool) {
	id, ok := props.ID.Get()
	if !ok {
		a.log.Warn("Platform properties missing id, abandoning create")
		return scene.Null, false
	}
	h := a.ctx.register(id, core.KindPlatform, a.log)
	a.ApplyProperties(props)
	return h, true
}

// ApplyProperties stores the identity record. Platforms have no host.
func (a *Platform) ApplyProperties(props core.PlatformProperties) bool {
	id, ok := props.ID.Get()
	if !ok {
		a.log.Warn("Platform properties missing id")
		return false
	}
	if _, ok := a.ctx.lookup(id, a.log, "properties"); !ok {
		return false
	}
	a.records.SetProperties(id, props)
	return true
}

func (a *Platform) ApplyPreferences(id core.ObjectID, prefs core.PlatformPrefs) bool {
	h, ok := a.ctx.lookup(id, a.log, "preferences")
	if !ok {
		return false
	}
	prev, _ := a.records.Preferences(id)
	changed := false

	if diff.Changed(prefs.Icon, prev.Icon) {
		a.loadIcon(h, prefs.Icon.Value(), diff.Merge(prefs.Scale, prev.Scale).Or(1))
		changed = true
	}

	if diff.Changed(prefs.Scale, prev.Scale) {
		if icon, ok := a.ctx.Scene.Icons.Get(h); ok && icon.Image.Valid() {
			icon.SizePixels = float64(icon.Image.Width) * prefs.Scale.Value()
			icon.DirtyStyle()
			changed = true
		}
	}

	if a.ctx.applyCommon(h, prefs.Common, prev.Common, a.log) {
		changed = true
	}

	a.records.SetPreferences(id, prefs)
	return changed
}

// loadIcon assigns the image at uri, or the placeholder when it cannot be
// loaded, and sizes it by scale.
func (a *Platform) loadIcon(h scene.Handle, uri string, scale float64) {
	img, err := a.ctx.Resources.Image(uri)
	if err != nil || !img.Valid() {
		a.log.Warn("Icon failed to load, using placeholder", "uri", uri, "error", err)
		img = a.ctx.Resources.Placeholder()
	}
	icon := a.ctx.Scene.Icons.GetOrEmplace(h)
	icon.Image = img
	icon.SizePixels = float64(img.Width) * scale
	icon.DirtyImage()
	icon.DirtyStyle()
}

// ApplyUpdate moves the platform when a coordinate changed. Coordinates
// missing from the sample keep their previous value; nothing moves until
// all three have been seen.
func (a *Platform) ApplyUpdate(id core.ObjectID, update core.PlatformUpdate) bool {
	h, ok := a.ctx.lookup(id, a.log, "update")
	if !ok {
		return false
	}
	prev, _ := a.records.Update(id)
	merged := core.PlatformUpdate{
		Time: update.Time,
		X:    diff.Merge(update.X, prev.X),
		Y:    diff.Merge(update.Y, prev.Y),
		Z:    diff.Merge(update.Z, prev.Z),
	}

	moved := false
	if diff.AllPresent(merged.X, merged.Y, merged.Z) && diff.Any(
		diff.Changed(update.X, prev.X),
		diff.Changed(update.Y, prev.Y),
		diff.Changed(update.Z, prev.Z),
	) {
		if tr, ok := a.ctx.Scene.Transforms.Get(h); ok {
			tr.SetPosition(geo.FromECEF(merged.X.Value(), merged.Y.Value(), merged.Z.Value()))
			moved = true
		}
	}

	a.records.SetUpdate(id, merged)
	return moved
}
