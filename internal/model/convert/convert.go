package convert

import (
	"encoding/json"

	"github.com/OCAP2/simvis/internal/model"
	"github.com/OCAP2/simvis/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// pointToGeo converts an XYZ geom.Point back to a core.GeoPosition
func pointToGeo(p geom.Point) core.GeoPosition {
	coord, ok := p.Coordinates()
	if !ok {
		return core.GeoPosition{}
	}
	return core.GeoPosition{Longitude: coord.XY.X, Latitude: coord.XY.Y, Altitude: coord.Z}
}

// SessionToCore converts a GORM Session to a core.Session.
func SessionToCore(s model.Session) core.Session {
	return core.Session{
		ID:               s.ID,
		Name:             s.Name,
		StartTime:        s.StartTime,
		ExtensionVersion: s.ExtensionVersion,
	}
}

// FrameToCore converts a GORM Frame to a core.EntityFrame.
func FrameToCore(f model.Frame) core.EntityFrame {
	out := core.EntityFrame{
		EntityID:     core.ObjectID(f.ObjectID),
		Time:         f.Time,
		HasPosition:  f.HasPosition,
		Label:        f.Label,
		IconSize:     f.IconSize,
		LineVertices: f.LineVertices,
		LineWKT:      f.LineWKT,
		Rotation:     [4]float64{0, 0, 0, 1},
	}
	if f.HasPosition {
		out.Position = pointToGeo(f.Position)
	}
	if len(f.Rotation) > 0 {
		_ = json.Unmarshal(f.Rotation, &out.Rotation)
	}
	return out
}
