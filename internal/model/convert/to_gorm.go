// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"

	"github.com/OCAP2/simvis/internal/model"
	"github.com/OCAP2/simvis/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

// geoToPoint converts a core.GeoPosition to an XYZ geom.Point (lon, lat, alt)
func geoToPoint(p core.GeoPosition) geom.Point {
	coords := geom.Coordinates{
		XY:   geom.XY{X: p.Longitude, Y: p.Latitude},
		Z:    p.Altitude,
		Type: geom.DimXYZ,
	}
	return geom.NewPoint(coords)
}

// rotationToJSON converts a quaternion array to datatypes.JSON for DB storage.
func rotationToJSON(r [4]float64) datatypes.JSON {
	data, err := json.Marshal(r)
	if err != nil {
		return datatypes.JSON("[0,0,0,1]")
	}
	return datatypes.JSON(data)
}

// CoreToSession converts a core.Session to a GORM model.Session.
func CoreToSession(s core.Session) model.Session {
	out := model.Session{
		Name:             s.Name,
		StartTime:        s.StartTime,
		ExtensionVersion: s.ExtensionVersion,
	}
	out.ID = s.ID
	return out
}

// CoreToEntity converts a core.EntityInfo to a GORM model.Entity.
func CoreToEntity(sessionID uint, e core.EntityInfo) model.Entity {
	return model.Entity{
		SessionID: sessionID,
		ObjectID:  uint64(e.ID),
		Kind:      e.Kind.String(),
		HostID:    uint64(e.HostID),
		Name:      e.Name,
		Handle:    e.Handle,
	}
}

// CoreToFrame converts a core.EntityFrame to a GORM model.Frame.
// Frames without a position store an empty point.
func CoreToFrame(sessionID uint, f core.EntityFrame) model.Frame {
	out := model.Frame{
		SessionID:    sessionID,
		ObjectID:     uint64(f.EntityID),
		Time:         f.Time,
		HasPosition:  f.HasPosition,
		Position:     geom.NewEmptyPoint(geom.DimXYZ),
		Rotation:     rotationToJSON(f.Rotation),
		Label:        f.Label,
		IconSize:     f.IconSize,
		LineVertices: f.LineVertices,
		LineWKT:      f.LineWKT,
	}
	if f.HasPosition {
		out.Position = geoToPoint(f.Position)
	}
	return out
}
