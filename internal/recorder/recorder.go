// Package recorder samples the render scene after each tick and hands the
// materialized state of every entity to a storage backend.
package recorder

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	geom "github.com/peterstace/simplefeatures/geom"

	"github.com/OCAP2/simvis/internal/adapter"
	"github.com/OCAP2/simvis/internal/geo"
	"github.com/OCAP2/simvis/internal/scene"
	"github.com/OCAP2/simvis/internal/storage"
	"github.com/OCAP2/simvis/pkg/core"
)

// maxDepth bounds host chains when composing world transforms.
const maxDepth = 8

// Recorder writes one frame per entity whose components changed since
// the previous capture.
type Recorder struct {
	ctx     *adapter.Context
	backend storage.Backend
	log     *slog.Logger

	mu    sync.Mutex
	last  map[core.ObjectID]uint64
	known map[core.ObjectID]bool
}

// New creates a recorder reading the scene behind ctx.
func New(ctx *adapter.Context, backend storage.Backend, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		ctx:     ctx,
		backend: backend,
		log:     logger.With("component", "recorder"),
		last:    make(map[core.ObjectID]uint64),
		known:   make(map[core.ObjectID]bool),
	}
}

// Capture reads the scene under its read lock. It returns descriptors for
// entities not seen before and frames for entities that changed.
func (r *Recorder) Capture(t float64) ([]core.EntityInfo, []core.EntityFrame) {
	reg, release := r.ctx.Scene.Read()
	defer release()

	r.mu.Lock()
	defer r.mu.Unlock()

	var infos []core.EntityInfo
	var frames []core.EntityFrame
	for _, h := range reg.Handles() {
		id, ok := r.ctx.Entities.ObjectID(h)
		if !ok {
			continue
		}
		if !r.known[id] {
			r.known[id] = true
			infos = append(infos, r.describe(reg, h, id))
		}

		rev := revision(reg, h, 0)
		if prev, seen := r.last[id]; seen && prev == rev {
			continue
		}
		r.last[id] = rev
		frames = append(frames, frame(reg, h, id, t))
	}
	return infos, frames
}

// Record captures the scene at t and writes the result to the backend
// outside the scene lock. It returns the number of frames written.
func (r *Recorder) Record(t float64) (int, error) {
	infos, frames := r.Capture(t)

	var errs []error
	for i := range infos {
		if err := r.backend.RecordEntity(&infos[i]); err != nil {
			errs = append(errs, fmt.Errorf("entity %d: %w", infos[i].ID, err))
		}
	}
	written := 0
	for i := range frames {
		if err := r.backend.RecordFrame(&frames[i]); err != nil {
			errs = append(errs, fmt.Errorf("frame %d: %w", frames[i].EntityID, err))
			continue
		}
		written++
	}
	if len(errs) > 0 {
		r.log.Warn("Frames not recorded", "time", t, "errors", len(errs))
	}
	return written, errors.Join(errs...)
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = make(map[core.ObjectID]uint64)
	r.known = make(map[core.ObjectID]bool)
}

func (r *Recorder) describe(reg *scene.Registry, h scene.Handle, id core.ObjectID) core.EntityInfo {
	info := core.EntityInfo{ID: id, Handle: uint32(h)}
	info.Kind, _ = r.ctx.Entities.Kind(id)
	info.HostID, _ = r.ctx.Hosts.Host(id)
	if l, ok := reg.Labels.Get(h); ok {
		info.Name = l.Text
	}
	return info
}

// revision sums the dirty counters of h and its host chain.
func revision(reg *scene.Registry, h scene.Handle, depth int) uint64 {
	var rev uint64
	tr, ok := reg.Transforms.Get(h)
	if ok {
		rev += tr.Revision()
	}
	if i, ok := reg.Icons.Get(h); ok {
		rev += i.Revision()
	}
	if l, ok := reg.Labels.Get(h); ok {
		rev += l.Revision()
	}
	if l, ok := reg.Lines.Get(h); ok {
		rev += l.Revision()
	}
	if ok && tr.Parent != scene.Null && depth < maxDepth {
		rev += revision(reg, tr.Parent, depth+1)
	}
	return rev
}

// world composes the transform of h with its host chain. Hosted entities
// sit at their host's position, rotated locally from the host's frame.
func world(reg *scene.Registry, h scene.Handle, depth int) (geo.Position, bool, geo.Quat) {
	tr, ok := reg.Transforms.Get(h)
	if !ok {
		return geo.Position{}, false, geo.Identity
	}
	if tr.Parent == scene.Null || depth >= maxDepth || !reg.Transforms.Has(tr.Parent) {
		return tr.Position, tr.HasPosition, tr.Rotation
	}
	pos, has, rot := world(reg, tr.Parent, depth+1)
	return pos, has, rot.Mul(tr.Local)
}

func frame(reg *scene.Registry, h scene.Handle, id core.ObjectID, t float64) core.EntityFrame {
	pos, has, rot := world(reg, h, 0)
	f := core.EntityFrame{
		EntityID:    id,
		Time:        t,
		HasPosition: has,
		Rotation:    rot.Array(),
	}
	if has {
		f.Position = pos.Geo
	}
	if l, ok := reg.Labels.Get(h); ok && l.Visible {
		f.Label = l.Text
	}
	if i, ok := reg.Icons.Get(h); ok {
		f.IconSize = i.SizePixels
	}
	if l, ok := reg.Lines.Get(h); ok && len(l.Vertices) > 0 {
		f.LineVertices = len(l.Vertices)
		f.LineWKT = LineGeometry(l.Vertices, pos.ECEF, rot).AsText()
	}
	return f
}

// LineGeometry places segment list vertices in geocentric space and returns
// them as an XYZ multi line string, one line string per segment.
func LineGeometry(vertices []core.Vec3, origin core.Vec3, rot geo.Quat) geom.MultiLineString {
	lines := make([]geom.LineString, 0, len(vertices)/2)
	for i := 0; i+1 < len(vertices); i += 2 {
		a := origin.Add(rot.Rotate(vertices[i]))
		b := origin.Add(rot.Rotate(vertices[i+1]))
		seq := geom.NewSequence([]float64{a.X, a.Y, a.Z, b.X, b.Y, b.Z}, geom.DimXYZ)
		lines = append(lines, geom.NewLineString(seq))
	}
	return geom.NewMultiLineString(lines)
}
