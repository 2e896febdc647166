package main

import (
	"math"

	"github.com/OCAP2/simvis/internal/config"
	"github.com/OCAP2/simvis/internal/datastore"
	"github.com/OCAP2/simvis/internal/geo"
	"github.com/OCAP2/simvis/pkg/core"
)

func deg2rad(d float64) float64 { return d * math.Pi / 180 }

// scenario is a single aircraft flying east with a sweeping beam and a
// range gate on that beam.
type scenario struct {
	cfg   config.ScenarioConfig
	start core.GeoPosition

	platform core.ObjectID
	beam     core.ObjectID
	gate     core.ObjectID
}

func newScenario(ds *datastore.Memory, cfg config.ScenarioConfig) (*scenario, error) {
	start, err := geo.ParseLLA(cfg.Start)
	if err != nil {
		return nil, err
	}
	s := &scenario{cfg: cfg, start: start}

	props, txn := ds.AddPlatform()
	txn.Complete()
	s.platform = props.ID.Value()

	prefs, txn := ds.MutablePlatformPrefs(s.platform)
	prefs.Icon = core.Some(cfg.Icon)
	prefs.Scale = core.Some(cfg.Scale)
	prefs.Common = core.Some(core.CommonPrefs{
		Name: core.Some(cfg.Name),
		Labels: core.Some(core.LabelPrefs{
			Draw:                 core.Some(true),
			OverlayFontPointSize: core.Some(cfg.PointSize),
			Alignment:            core.Some(core.AlignRightCenter),
		}),
	})
	txn.Complete()

	beam, txn := ds.AddBeam()
	beam.HostID = core.Some(s.platform)
	txn.Complete()
	s.beam = beam.ID.Value()

	bp, txn := ds.MutableBeamPrefs(s.beam)
	bp.HorizontalWidth = core.Some(deg2rad(cfg.BeamHWidth))
	bp.VerticalWidth = core.Some(deg2rad(cfg.BeamVWidth))
	txn.Complete()

	gate, txn := ds.AddGate()
	gate.HostID = core.Some(s.beam)
	txn.Complete()
	s.gate = gate.ID.Value()

	return s, nil
}

// steps is the number of ticks after the initial one.
func (s *scenario) steps() int {
	if s.cfg.Step <= 0 {
		return 0
	}
	return int(s.cfg.Duration / s.cfg.Step)
}

// timeAt is the simulation time of tick n in seconds.
func (s *scenario) timeAt(n int) float64 {
	return float64(n) * s.cfg.Step.Seconds()
}

// position is the platform position at tick n.
func (s *scenario) position(n int) geo.Position {
	return geo.FromGeodetic(s.start.Longitude+float64(n)*s.cfg.LonStep, s.start.Latitude, s.start.Altitude)
}

// advance appends the samples of tick n to ds. It does not move the
// store's current time.
func (s *scenario) advance(ds *datastore.Memory, n int) {
	t := s.timeAt(n)
	pos := s.position(n).ECEF
	ds.AddPlatformUpdate(s.platform, core.PlatformUpdate{
		Time: t,
		X:    core.Some(pos.X),
		Y:    core.Some(pos.Y),
		Z:    core.Some(pos.Z),
	})

	az := 0.5 * math.Sin(t)
	ds.AddBeamUpdate(s.beam, core.BeamUpdate{
		Time:      t,
		Azimuth:   core.Some(az),
		Elevation: core.Some(0.0),
		Range:     core.Some(s.cfg.BeamRange),
	})
	ds.AddGateUpdate(s.gate, core.GateUpdate{
		Time:      t,
		Azimuth:   core.Some(az),
		Elevation: core.Some(0.0),
		Width:     core.Some(deg2rad(s.cfg.GateWidth)),
		Height:    core.Some(deg2rad(s.cfg.GateWidth)),
		MinRange:  core.Some(s.cfg.GateMinRange),
		MaxRange:  core.Some(s.cfg.GateMaxRange),
	})
}
