package geospatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ground-truth/land-portal/land-portal-backend/pkg/geo"
)

func TestBoundaryGeoJSONRoundTrip(t *testing.T) {
	boundary := []geo.GeoPoint{
		{Lat: 6.5244, Lng: 3.3792},
		{Lat: 6.5253, Lng: 3.3792},
		{Lat: 6.5253, Lng: 3.3801},
		{Lat: 6.5244, Lng: 3.3801},
	}

	data, err := BoundaryToGeoJSON(boundary)
	require.NoError(t, err)

	back, err := BoundaryFromGeoJSON(data)
	require.NoError(t, err)
	assert.Equal(t, boundary, back)
}

func TestBoundaryToGeoJSONRejectsDegenerate(t *testing.T) {
	_, err := BoundaryToGeoJSON([]geo.GeoPoint{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}})
	assert.Error(t, err)
}

func TestValidateGeoJSON(t *testing.T) {
	valid := `{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[3.3792,6.5244]}}`
	geom, err := ValidateGeoJSON(valid)
	require.NoError(t, err)
	assert.NotNil(t, geom)

	_, err = ValidateGeoJSON(`{"type":"Feature","properties":{}}`)
	assert.Error(t, err)

	_, err = ValidateGeoJSON(`not json`)
	assert.Error(t, err)
}

func TestConvertToHectares(t *testing.T) {
	assert.Equal(t, 1.0, ConvertToHectares(10000))
}
