package geo

import (
	"errors"
	"strconv"
	"strings"

	"github.com/OCAP2/simvis/pkg/core"
	"github.com/wroge/wgs84"
)

// Positions arrive from the record store as geocentric (EPSG:4978) XYZ.
// Transforms keep both forms so that renderers and recorders can use
// whichever they need without converting again.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

const (
	epsgGeographic = 4326
	epsgGeocentric = 4978
)

var (
	toGeographic = wgs84.EPSG().Transform(epsgGeocentric, epsgGeographic)
	toGeocentric = wgs84.EPSG().Transform(epsgGeographic, epsgGeocentric)
)

// Position is a point on or above the WGS84 ellipsoid.
type Position struct {
	ECEF core.Vec3
	Geo  core.GeoPosition
}

// FromECEF builds a Position from geocentric coordinates in meters.
func FromECEF(x, y, z float64) Position {
	lon, lat, alt := toGeographic(x, y, z)
	return Position{
		ECEF: core.Vec3{X: x, Y: y, Z: z},
		Geo:  core.GeoPosition{Longitude: lon, Latitude: lat, Altitude: alt},
	}
}

// FromGeodetic builds a Position from longitude/latitude in degrees and
// altitude in meters.
func FromGeodetic(lon, lat, alt float64) Position {
	x, y, z := toGeocentric(lon, lat, alt)
	return Position{
		ECEF: core.Vec3{X: x, Y: y, Z: z},
		Geo:  core.GeoPosition{Longitude: lon, Latitude: lat, Altitude: alt},
	}
}

// ParseLLA parses a "long,lat" or "long,lat,elev" string into a core.GeoPosition.
func ParseLLA(coords string) (core.GeoPosition, error) {
	coordsSplit := strings.Split(coords, ",")
	if len(coordsSplit) < 2 {
		return core.GeoPosition{}, ErrInvalidCoordinates
	}
	long, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[0]), 64)
	if err != nil {
		return core.GeoPosition{}, ErrInvalidCoordinates
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[1]), 64)
	if err != nil {
		return core.GeoPosition{}, ErrInvalidCoordinates
	}
	var elev float64
	if len(coordsSplit) > 2 {
		elev, err = strconv.ParseFloat(strings.TrimSpace(coordsSplit[2]), 64)
		if err != nil {
			return core.GeoPosition{}, ErrInvalidCoordinates
		}
	}
	if lat < -90 || lat > 90 {
		return core.GeoPosition{}, ErrInvalidCoordinates
	}
	return core.GeoPosition{Longitude: long, Latitude: lat, Altitude: elev}, nil
}
