package listings

import (
	"time"

	"github.com/google/uuid"
)

// Listing statuses, enforced by the listing state machine.
const (
	StatusDraft      = "DRAFT"
	StatusPublished  = "PUBLISHED"
	StatusUnderOffer = "UNDER_OFFER"
	StatusSold       = "SOLD"
	StatusArchived   = "ARCHIVED"
)

// Listing is a land listing as shown on the map: one map pin, one or more
// captured parcels hanging off it.
type Listing struct {
	ID          uuid.UUID `db:"id" json:"id"`
	VendorID    uuid.UUID `db:"vendor_id" json:"vendor_id"`
	VendorEmail string    `db:"vendor_email" json:"vendor_email"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Price       float64   `db:"price" json:"price"`
	Currency    string    `db:"currency" json:"currency"`
	Lat         float64   `db:"lat" json:"lat"`
	Lng         float64   `db:"lng" json:"lng"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ListingFilter narrows List queries.
type ListingFilter struct {
	VendorID *uuid.UUID
	Status   *string
	MinPrice *float64
	MaxPrice *float64
	Limit    int
	Offset   int
}
