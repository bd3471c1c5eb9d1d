package sales

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SaleStatus represents the lifecycle status of an installment sale.
type SaleStatus string

const (
	SaleStatusActive    SaleStatus = "ACTIVE"
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusDefaulted SaleStatus = "DEFAULTED"
	SaleStatusCancelled SaleStatus = "CANCELLED"
)

// Sale represents an installment-based purchase of a listed parcel.
type Sale struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ListingID uuid.UUID `json:"listing_id" gorm:"type:uuid;not null;index"`
	ParcelID  uuid.UUID `json:"parcel_id" gorm:"type:uuid;not null;index"`

	// Buyer details
	BuyerName  string `json:"buyer_name" gorm:"not null"`
	BuyerEmail string `json:"buyer_email"`
	BuyerPhone string `json:"buyer_phone"`

	// Terms
	TotalPrice  float64 `json:"total_price" gorm:"type:decimal(14,2);not null"`
	DownPayment float64 `json:"down_payment" gorm:"type:decimal(14,2);not null"`
	Currency    string  `json:"currency" gorm:"default:'KES'"`
	TermMonths  int     `json:"term_months" gorm:"not null"`

	// Schedule snapshot as generated at signing. Installment rows carry
	// the live payment state; the snapshot stays untouched for audit.
	ScheduleSnapshot datatypes.JSON `json:"schedule_snapshot" gorm:"default:'[]'"`

	Status        SaleStatus `json:"status" gorm:"default:'ACTIVE';index"`
	DefaultedNote string     `json:"defaulted_note"`

	SignedAt  time.Time `json:"signed_at" gorm:"type:date;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Installments []Installment `json:"installments" gorm:"foreignKey:SaleID"`
}

// Installment represents one scheduled payment within a sale.
type Installment struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SaleID uuid.UUID `json:"sale_id" gorm:"type:uuid;not null;index"`

	Sequence   int       `json:"sequence" gorm:"not null"`
	DueDate    time.Time `json:"due_date" gorm:"type:date;not null;index"`
	Amount     float64   `json:"amount" gorm:"type:decimal(14,2);not null"`
	PaidAmount float64   `json:"paid_amount" gorm:"type:decimal(14,2);default:0"`
	PaidAt     *time.Time `json:"paid_at"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Paid reports whether the installment has been fully settled.
func (i *Installment) Paid() bool {
	return i.PaidAt != nil
}

// Overdue reports whether the installment is unpaid past its due date.
func (i *Installment) Overdue(asOf time.Time) bool {
	return !i.Paid() && i.DueDate.Before(asOf)
}

// Payment represents money received against a sale.
type Payment struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SaleID uuid.UUID `json:"sale_id" gorm:"type:uuid;not null;index"`

	Amount     float64   `json:"amount" gorm:"type:decimal(14,2);not null"`
	Reference  string    `json:"reference"`
	ReceivedAt time.Time `json:"received_at" gorm:"not null"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (i *Installment) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
