package sales

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("sale not found")

// Repository persists sales, installments and payments.
type Repository interface {
	Create(ctx context.Context, sale *Sale, installments []Installment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]Sale, error)
	Update(ctx context.Context, sale *Sale) error
	UpdateInstallment(ctx context.Context, installment *Installment) error
	RecordPayment(ctx context.Context, payment *Payment) error
	GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]Sale, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// Migrate creates the sales tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Sale{}, &Installment{}, &Payment{})
}

func (r *gormRepository) Create(ctx context.Context, sale *Sale, installments []Installment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sale).Error; err != nil {
			return err
		}
		for i := range installments {
			installments[i].SaleID = sale.ID
		}
		return tx.Create(&installments).Error
	})
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Sale, error) {
	var sale Sale
	err := r.db.WithContext(ctx).
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		First(&sale, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *gormRepository) ListByListing(ctx context.Context, listingID uuid.UUID) ([]Sale, error) {
	var sales []Sale
	err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("created_at DESC").
		Find(&sales).Error
	return sales, err
}

func (r *gormRepository) Update(ctx context.Context, sale *Sale) error {
	return r.db.WithContext(ctx).Save(sale).Error
}

func (r *gormRepository) UpdateInstallment(ctx context.Context, installment *Installment) error {
	return r.db.WithContext(ctx).Save(installment).Error
}

func (r *gormRepository) RecordPayment(ctx context.Context, payment *Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *gormRepository) GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var payment Payment
	err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListOverdue returns active sales that have at least one unpaid
// installment due before asOf, installments preloaded.
func (r *gormRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]Sale, error) {
	var sales []Sale
	err := r.db.WithContext(ctx).
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Where("status = ?", SaleStatusActive).
		Where("id IN (?)", r.db.Model(&Installment{}).
			Select("sale_id").
			Where("paid_at IS NULL AND due_date < ?", asOf)).
		Find(&sales).Error
	return sales, err
}
