// pkg/core/session.go
package core

import "time"

// Session is one recorded synchronization run.
type Session struct {
	ID               uint
	Name             string
	StartTime        time.Time
	ExtensionVersion string
}

// GeoPosition is a WGS84 geographic position. Longitude and latitude are
// in degrees, altitude in meters above the ellipsoid.
type GeoPosition struct {
	Longitude float64 `json:"lon"`
	Latitude  float64 `json:"lat"`
	Altitude  float64 `json:"alt"`
}

// EntityInfo describes a materialized render entity.
// HostID is zero for entities without a host.
type EntityInfo struct {
	ID     ObjectID `json:"id"`
	Kind   Kind     `json:"kind"`
	HostID ObjectID `json:"hostId,omitempty"`
	Name   string   `json:"name,omitempty"`
	Handle uint32   `json:"handle"`
}

// EntityFrame is the render-side state of one entity at one simulation time.
type EntityFrame struct {
	EntityID     ObjectID    `json:"entityId"`
	Time         float64     `json:"time"`
	HasPosition  bool        `json:"hasPosition"`
	Position     GeoPosition `json:"position"`
	Rotation     [4]float64  `json:"rotation"` // x, y, z, w
	Label        string      `json:"label,omitempty"`
	IconSize     float64     `json:"iconSize,omitempty"`
	LineVertices int         `json:"lineVertices,omitempty"`
	LineWKT      string      `json:"lineWkt,omitempty"`
}
