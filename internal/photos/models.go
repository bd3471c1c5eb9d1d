package photos

import (
	"time"

	"github.com/google/uuid"

	"ground-truth/land-portal/land-portal-backend/pkg/geo"
)

// Photo is a panoramic photo node captured at a point along a parcel
// walk. The binary payload lives in S3; this is the metadata record.
type Photo struct {
	ID          uuid.UUID    `bson:"_id" json:"id"`
	ParcelID    uuid.UUID    `bson:"parcel_id" json:"parcel_id"`
	Location    geo.GeoPoint `bson:"location" json:"location"`
	Caption     string       `bson:"caption" json:"caption"`
	ContentType string       `bson:"content_type" json:"content_type"`
	SizeBytes   int64        `bson:"size_bytes" json:"size_bytes"`
	StorageKey  string       `bson:"storage_key" json:"-"`
	CapturedAt  time.Time    `bson:"captured_at" json:"captured_at"`
	CreatedAt   time.Time    `bson:"created_at" json:"created_at"`
}
