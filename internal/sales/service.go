package sales

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"ground-truth/land-portal/land-portal-backend/pkg/workflows"
)

// CreateSaleRequest carries the terms of a new installment sale.
type CreateSaleRequest struct {
	ListingID   uuid.UUID `json:"listing_id" binding:"required"`
	ParcelID    uuid.UUID `json:"parcel_id" binding:"required"`
	BuyerName   string    `json:"buyer_name" binding:"required"`
	BuyerEmail  string    `json:"buyer_email"`
	BuyerPhone  string    `json:"buyer_phone"`
	TotalPrice  float64   `json:"total_price" binding:"required"`
	DownPayment float64   `json:"down_payment"`
	Currency    string    `json:"currency"`
	TermMonths  int       `json:"term_months" binding:"required"`
	SignedAt    time.Time `json:"signed_at"`
}

// RecordPaymentRequest carries a payment received against a sale.
type RecordPaymentRequest struct {
	Amount     float64   `json:"amount" binding:"required"`
	Reference  string    `json:"reference"`
	ReceivedAt time.Time `json:"received_at"`
}

// Service manages installment sales.
type Service interface {
	CreateSale(ctx context.Context, req CreateSaleRequest) (*Sale, error)
	GetSale(ctx context.Context, id uuid.UUID) (*Sale, error)
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]Sale, error)
	RecordPayment(ctx context.Context, saleID uuid.UUID, req RecordPaymentRequest) (*Sale, *Payment, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, status SaleStatus, note string) (*Sale, error)
	OverdueSales(ctx context.Context, asOf time.Time) ([]Sale, error)
	ScheduleExport(ctx context.Context, id uuid.UUID) ([]byte, error)
	Receipt(ctx context.Context, saleID, paymentID uuid.UUID) ([]byte, error)
}

type saleService struct {
	repo         Repository
	notifier     PaymentNotifier
	stateMachine *workflows.StateMachine
	logger       *zap.Logger
}

func NewService(repo Repository, notifier PaymentNotifier, logger *zap.Logger) Service {
	if notifier == nil {
		notifier = NewNopNotifier()
	}
	return &saleService{
		repo:         repo,
		notifier:     notifier,
		stateMachine: workflows.NewSaleStateMachine(),
		logger:       logger,
	}
}

func (s *saleService) CreateSale(ctx context.Context, req CreateSaleRequest) (*Sale, error) {
	signedAt := req.SignedAt
	if signedAt.IsZero() {
		signedAt = time.Now()
	}

	schedule, err := BuildSchedule(req.TotalPrice, req.DownPayment, req.TermMonths, signedAt)
	if err != nil {
		return nil, err
	}
	snapshot, err := json.Marshal(schedule)
	if err != nil {
		return nil, fmt.Errorf("snapshot schedule: %w", err)
	}

	currency := req.Currency
	if currency == "" {
		currency = "KES"
	}

	sale := &Sale{
		ListingID:        req.ListingID,
		ParcelID:         req.ParcelID,
		BuyerName:        req.BuyerName,
		BuyerEmail:       req.BuyerEmail,
		BuyerPhone:       req.BuyerPhone,
		TotalPrice:       req.TotalPrice,
		DownPayment:      req.DownPayment,
		Currency:         currency,
		TermMonths:       req.TermMonths,
		ScheduleSnapshot: datatypes.JSON(snapshot),
		Status:           SaleStatusActive,
		SignedAt:         signedAt,
	}

	installments := make([]Installment, len(schedule))
	for i, entry := range schedule {
		installments[i] = Installment{
			Sequence: entry.Sequence,
			DueDate:  entry.DueDate,
			Amount:   entry.Amount,
		}
	}

	if err := s.repo.Create(ctx, sale, installments); err != nil {
		return nil, fmt.Errorf("create sale: %w", err)
	}
	sale.Installments = installments

	s.logger.Info("sale created",
		zap.String("sale_id", sale.ID.String()),
		zap.String("listing_id", sale.ListingID.String()),
		zap.Float64("total_price", sale.TotalPrice),
		zap.Int("term_months", sale.TermMonths))

	return sale, nil
}

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*Sale, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *saleService) ListByListing(ctx context.Context, listingID uuid.UUID) ([]Sale, error) {
	return s.repo.ListByListing(ctx, listingID)
}

// RecordPayment applies a payment to the earliest unpaid installments,
// oldest first. Partial amounts stay on the installment they reached.
// The sale flips to COMPLETED once every installment is settled.
func (s *saleService) RecordPayment(ctx context.Context, saleID uuid.UUID, req RecordPaymentRequest) (*Sale, *Payment, error) {
	if req.Amount <= 0 {
		return nil, nil, fmt.Errorf("payment amount must be positive")
	}

	sale, err := s.repo.GetByID(ctx, saleID)
	if err != nil {
		return nil, nil, err
	}
	if sale.Status != SaleStatusActive && sale.Status != SaleStatusDefaulted {
		return nil, nil, fmt.Errorf("cannot record payment on %s sale", sale.Status)
	}

	receivedAt := req.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}
	payment := &Payment{
		SaleID:     saleID,
		Amount:     req.Amount,
		Reference:  req.Reference,
		ReceivedAt: receivedAt,
	}
	if err := s.repo.RecordPayment(ctx, payment); err != nil {
		return nil, nil, fmt.Errorf("record payment: %w", err)
	}

	remaining := req.Amount
	allPaid := true
	for i := range sale.Installments {
		inst := &sale.Installments[i]
		if inst.Paid() {
			continue
		}
		if remaining > 0 {
			due := inst.Amount - inst.PaidAmount
			applied := remaining
			if applied > due {
				applied = due
			}
			inst.PaidAmount = roundCents(inst.PaidAmount + applied)
			remaining = roundCents(remaining - applied)
			if inst.PaidAmount >= inst.Amount {
				now := receivedAt
				inst.PaidAt = &now
			}
			if err := s.repo.UpdateInstallment(ctx, inst); err != nil {
				return nil, nil, fmt.Errorf("update installment %d: %w", inst.Sequence, err)
			}
		}
		if !inst.Paid() {
			allPaid = false
		}
	}

	// A payment on a defaulted sale brings it back into good standing.
	if sale.Status == SaleStatusDefaulted {
		sale.Status = SaleStatusActive
	}
	if allPaid {
		sale.Status = SaleStatusCompleted
	}
	if err := s.repo.Update(ctx, sale); err != nil {
		return nil, nil, fmt.Errorf("update sale: %w", err)
	}

	if err := s.notifier.PaymentRecorded(ctx, sale, payment); err != nil {
		s.logger.Warn("payment notification failed",
			zap.String("sale_id", saleID.String()),
			zap.Error(err))
	}

	s.logger.Info("payment recorded",
		zap.String("sale_id", saleID.String()),
		zap.Float64("amount", payment.Amount),
		zap.String("status", string(sale.Status)))

	return sale, payment, nil
}

func (s *saleService) ChangeStatus(ctx context.Context, id uuid.UUID, status SaleStatus, note string) (*Sale, error) {
	sale, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.stateMachine.CanTransition(string(sale.Status), string(status)) {
		return nil, fmt.Errorf("cannot transition sale from %s to %s", sale.Status, status)
	}
	sale.Status = status
	if status == SaleStatusDefaulted {
		sale.DefaultedNote = note
	}
	if err := s.repo.Update(ctx, sale); err != nil {
		return nil, fmt.Errorf("update sale: %w", err)
	}
	return sale, nil
}

// OverdueSales returns active sales with unpaid installments past due,
// notifying the payment topic for each.
func (s *saleService) OverdueSales(ctx context.Context, asOf time.Time) ([]Sale, error) {
	sales, err := s.repo.ListOverdue(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("list overdue sales: %w", err)
	}
	for i := range sales {
		overdue := 0
		for _, inst := range sales[i].Installments {
			if inst.Overdue(asOf) {
				overdue++
			}
		}
		if overdue == 0 {
			continue
		}
		if err := s.notifier.SaleOverdue(ctx, &sales[i], overdue); err != nil {
			s.logger.Warn("overdue notification failed",
				zap.String("sale_id", sales[i].ID.String()),
				zap.Error(err))
		}
	}
	return sales, nil
}

func (s *saleService) ScheduleExport(ctx context.Context, id uuid.UUID) ([]byte, error) {
	sale, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ScheduleWorkbook(sale)
}

func (s *saleService) Receipt(ctx context.Context, saleID, paymentID uuid.UUID) ([]byte, error) {
	sale, err := s.repo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	payment, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.SaleID != sale.ID {
		return nil, ErrNotFound
	}
	return ReceiptPDF(sale, payment)
}
