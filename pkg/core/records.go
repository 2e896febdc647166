// pkg/core/records.go
package core

// LabelPrefs configures the text label drawn next to an entity.
type LabelPrefs struct {
	Draw                 Opt[bool]          `json:"draw"`
	OverlayFontName      Opt[string]        `json:"overlayFontName"`
	OverlayFontPointSize Opt[float64]       `json:"overlayFontPointSize"`
	Alignment            Opt[TextAlignment] `json:"alignment"`
}

// CommonPrefs holds preferences shared by every entity kind.
type CommonPrefs struct {
	Name   Opt[string]     `json:"name"`
	Labels Opt[LabelPrefs] `json:"labelPrefs"`
}

// PlatformProperties is the identity record of a platform.
type PlatformProperties struct {
	ID Opt[ObjectID] `json:"id"`
}

// PlatformPrefs configures the icon and label of a platform.
type PlatformPrefs struct {
	Common Opt[CommonPrefs] `json:"commonPrefs"`
	Icon   Opt[string]      `json:"icon"` // URI
	Scale  Opt[float64]     `json:"scale"`
}

// PlatformUpdate is a geocentric (ECEF) position sample.
type PlatformUpdate struct {
	Time float64      `json:"time"`
	X    Opt[float64] `json:"x"`
	Y    Opt[float64] `json:"y"`
	Z    Opt[float64] `json:"z"`
}

// BeamProperties is the identity record of a beam.
type BeamProperties struct {
	ID     Opt[ObjectID] `json:"id"`
	HostID Opt[ObjectID] `json:"hostId"`
}

// BeamPrefs configures beam shape. Angles are in radians.
type BeamPrefs struct {
	Common             Opt[CommonPrefs] `json:"commonPrefs"`
	HorizontalWidth    Opt[float64]     `json:"horizontalWidth"`
	VerticalWidth      Opt[float64]     `json:"verticalWidth"`
	AzimuthOffset      Opt[float64]     `json:"azimuthOffset"`
	BeamPositionOffset Opt[Vec3]        `json:"beamPositionOffset"`
}

// BeamUpdate is a pointing sample. Angles in radians, range in meters.
type BeamUpdate struct {
	Time      float64      `json:"time"`
	Azimuth   Opt[float64] `json:"azimuth"`
	Elevation Opt[float64] `json:"elevation"`
	Range     Opt[float64] `json:"range"`
}

// GateProperties is the identity record of a gate.
type GateProperties struct {
	ID     Opt[ObjectID] `json:"id"`
	HostID Opt[ObjectID] `json:"hostId"`
}

// GatePrefs configures gate presentation. Angles are in radians.
type GatePrefs struct {
	Common              Opt[CommonPrefs] `json:"commonPrefs"`
	GateAzimuthOffset   Opt[float64]     `json:"gateAzimuthOffset"`
	GateElevationOffset Opt[float64]     `json:"gateElevationOffset"`
}

// GateUpdate is a gate sample: pointing plus the angular and range extent
// of the gated sector.
type GateUpdate struct {
	Time      float64      `json:"time"`
	Azimuth   Opt[float64] `json:"azimuth"`
	Elevation Opt[float64] `json:"elevation"`
	Width     Opt[float64] `json:"width"`
	Height    Opt[float64] `json:"height"`
	MinRange  Opt[float64] `json:"minRange"`
	MaxRange  Opt[float64] `json:"maxRange"`
}
