package inquiries

import (
	"time"

	"github.com/google/uuid"
)

// Inquiry statuses, enforced by the inquiry state machine.
const (
	StatusNew            = "NEW"
	StatusContacted      = "CONTACTED"
	StatusVisitScheduled = "VISIT_SCHEDULED"
	StatusNegotiating    = "NEGOTIATING"
	StatusClosedWon      = "CLOSED_WON"
	StatusClosedLost     = "CLOSED_LOST"
)

// Inquiry is a buyer lead against a listing.
type Inquiry struct {
	ID         uuid.UUID `db:"id" json:"id"`
	ListingID  uuid.UUID `db:"listing_id" json:"listing_id"`
	BuyerName  string    `db:"buyer_name" json:"buyer_name"`
	BuyerEmail string    `db:"buyer_email" json:"buyer_email"`
	BuyerPhone string    `db:"buyer_phone" json:"buyer_phone"`
	Message    string    `db:"message" json:"message"`
	Status     string    `db:"status" json:"status"`
	Note       string    `db:"note" json:"note"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
