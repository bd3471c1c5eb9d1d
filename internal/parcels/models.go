package parcels

import (
	"time"

	"github.com/google/uuid"

	"ground-truth/land-portal/land-portal-backend/pkg/geo"
)

// Parcel is one piece of land being listed, possibly a sub-parcel of a
// larger subdivided plot. The boundary fields are written once, when a
// capture session finalizes; the raw path is kept alongside the clean one
// so a boundary can be re-simplified later without re-walking.
type Parcel struct {
	ID        uuid.UUID `bson:"_id" json:"id"`
	ListingID uuid.UUID `bson:"listing_id,omitempty" json:"listing_id,omitempty"`
	Name      string    `bson:"name" json:"name"`

	RawPath   []geo.GeoPoint `bson:"raw_path,omitempty" json:"raw_path,omitempty"`
	CleanPath []geo.GeoPoint `bson:"clean_path,omitempty" json:"clean_path,omitempty"`

	BoundaryGeoJSON string  `bson:"boundary_geojson,omitempty" json:"boundary_geojson,omitempty"`
	PerimeterMeters float64 `bson:"perimeter_m" json:"perimeter_m"`
	AreaHectares    float64 `bson:"area_ha" json:"area_ha"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasBoundary reports whether the parcel has a usable polygon boundary.
// Degenerate captures (fewer than 3 corners) are stored but not usable.
func (p *Parcel) HasBoundary() bool {
	return len(p.CleanPath) >= 3
}
