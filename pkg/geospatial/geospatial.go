package geospatial

import (
	"encoding/json"
	"errors"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"ground-truth/land-portal/land-portal-backend/pkg/geo"
)

// ValidateGeoJSON validates a GeoJSON feature string and returns its geometry.
func ValidateGeoJSON(geojsonStr string) (orb.Geometry, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(geojsonStr), &raw); err != nil {
		return nil, err
	}

	feature, err := geojson.UnmarshalFeature([]byte(geojsonStr))
	if err != nil {
		return nil, err
	}

	if feature.Geometry == nil {
		return nil, errors.New("invalid GeoJSON: no geometry")
	}

	return feature.Geometry, nil
}

// BoundaryToGeoJSON converts a simplified parcel boundary into a GeoJSON
// Polygon feature. The ring is closed by repeating the first point if the
// capture did not end exactly where it started. Boundaries with fewer than
// three points cannot form a ring.
func BoundaryToGeoJSON(boundary []geo.GeoPoint) ([]byte, error) {
	if len(boundary) < 3 {
		return nil, errors.New("boundary needs at least 3 points to form a ring")
	}

	ring := make(orb.Ring, 0, len(boundary)+1)
	for _, p := range boundary {
		ring = append(ring, orb.Point{p.Lng, p.Lat})
	}
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}

	feature := geojson.NewFeature(orb.Polygon{ring})
	return feature.MarshalJSON()
}

// BoundaryFromGeoJSON extracts the outer ring of a GeoJSON Polygon feature
// as a boundary point sequence, dropping the closing duplicate.
func BoundaryFromGeoJSON(data []byte) ([]geo.GeoPoint, error) {
	feature, err := geojson.UnmarshalFeature(data)
	if err != nil {
		return nil, err
	}
	poly, ok := feature.Geometry.(orb.Polygon)
	if !ok || len(poly) == 0 {
		return nil, errors.New("feature geometry is not a polygon")
	}

	ring := poly[0]
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	boundary := make([]geo.GeoPoint, len(ring))
	for i, p := range ring {
		boundary[i] = geo.GeoPoint{Lat: p.Lat(), Lng: p.Lon()}
	}
	return boundary, nil
}

// CalculateArea calculates the planar area in the geometry's own units.
func CalculateArea(geometry orb.Geometry) float64 {
	return planar.Area(geometry)
}

// CalculateCentroid calculates the centroid of a geometry.
func CalculateCentroid(geometry orb.Geometry) orb.Point {
	centroid, _ := planar.CentroidArea(geometry)
	return centroid
}

// ConvertToHectares converts square meters to hectares.
func ConvertToHectares(sqMeters float64) float64 {
	return sqMeters / 10000
}
