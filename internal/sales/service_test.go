package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, sale *Sale, installments []Installment) error {
	args := m.Called(ctx, sale, installments)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Sale), args.Error(1)
}

func (m *MockRepository) ListByListing(ctx context.Context, listingID uuid.UUID) ([]Sale, error) {
	args := m.Called(ctx, listingID)
	return args.Get(0).([]Sale), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, sale *Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockRepository) UpdateInstallment(ctx context.Context, installment *Installment) error {
	args := m.Called(ctx, installment)
	return args.Error(0)
}

func (m *MockRepository) RecordPayment(ctx context.Context, payment *Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockRepository) GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]Sale, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]Sale), args.Error(1)
}

// MockNotifier is a mock implementation of the PaymentNotifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) PaymentRecorded(ctx context.Context, sale *Sale, payment *Payment) error {
	args := m.Called(ctx, sale, payment)
	return args.Error(0)
}

func (m *MockNotifier) SaleOverdue(ctx context.Context, sale *Sale, overdueCount int) error {
	args := m.Called(ctx, sale, overdueCount)
	return args.Error(0)
}

func activeSale(termMonths int, monthlyAmount float64) *Sale {
	sale := &Sale{
		ID:        uuid.New(),
		ListingID: uuid.New(),
		BuyerName: "Otieno",
		Currency:  "KES",
		Status:    SaleStatusActive,
	}
	signed := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < termMonths; i++ {
		sale.Installments = append(sale.Installments, Installment{
			ID:       uuid.New(),
			SaleID:   sale.ID,
			Sequence: i + 1,
			DueDate:  signed.AddDate(0, i+1, 0),
			Amount:   monthlyAmount,
		})
	}
	return sale
}

func TestCreateSaleGeneratesSchedule(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(installments []Installment) bool {
		return len(installments) == 12 && installments[0].Amount == 75_000
	})).Return(nil)

	svc := NewService(repo, nil, zap.NewNop())

	sale, err := svc.CreateSale(context.Background(), CreateSaleRequest{
		ListingID:   uuid.New(),
		ParcelID:    uuid.New(),
		BuyerName:   "Otieno",
		TotalPrice:  1_000_000,
		DownPayment: 100_000,
		TermMonths:  12,
	})
	require.NoError(t, err)
	assert.Equal(t, SaleStatusActive, sale.Status)
	assert.Equal(t, "KES", sale.Currency)
	assert.NotEmpty(t, sale.ScheduleSnapshot)
	repo.AssertExpectations(t)
}

func TestRecordPaymentSettlesEarliestInstallment(t *testing.T) {
	sale := activeSale(3, 50_000)
	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, sale.ID).Return(sale, nil)
	repo.On("RecordPayment", mock.Anything, mock.Anything).Return(nil)
	repo.On("UpdateInstallment", mock.Anything, mock.Anything).Return(nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	notifier := new(MockNotifier)
	notifier.On("PaymentRecorded", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := NewService(repo, notifier, zap.NewNop())

	updated, payment, err := svc.RecordPayment(context.Background(), sale.ID, RecordPaymentRequest{
		Amount:    75_000,
		Reference: "MPESA-XK12",
	})
	require.NoError(t, err)
	assert.Equal(t, 75_000.0, payment.Amount)

	assert.True(t, updated.Installments[0].Paid())
	assert.Equal(t, 25_000.0, updated.Installments[1].PaidAmount)
	assert.False(t, updated.Installments[1].Paid())
	assert.Equal(t, SaleStatusActive, updated.Status)
	notifier.AssertExpectations(t)
}

func TestRecordPaymentCompletesSale(t *testing.T) {
	sale := activeSale(2, 50_000)
	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, sale.ID).Return(sale, nil)
	repo.On("RecordPayment", mock.Anything, mock.Anything).Return(nil)
	repo.On("UpdateInstallment", mock.Anything, mock.Anything).Return(nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(s *Sale) bool {
		return s.Status == SaleStatusCompleted
	})).Return(nil)

	svc := NewService(repo, nil, zap.NewNop())

	updated, _, err := svc.RecordPayment(context.Background(), sale.ID, RecordPaymentRequest{Amount: 100_000})
	require.NoError(t, err)
	assert.Equal(t, SaleStatusCompleted, updated.Status)
}

func TestRecordPaymentRevivesDefaultedSale(t *testing.T) {
	sale := activeSale(3, 50_000)
	sale.Status = SaleStatusDefaulted
	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, sale.ID).Return(sale, nil)
	repo.On("RecordPayment", mock.Anything, mock.Anything).Return(nil)
	repo.On("UpdateInstallment", mock.Anything, mock.Anything).Return(nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(repo, nil, zap.NewNop())

	updated, _, err := svc.RecordPayment(context.Background(), sale.ID, RecordPaymentRequest{Amount: 50_000})
	require.NoError(t, err)
	assert.Equal(t, SaleStatusActive, updated.Status)
}

func TestRecordPaymentRejectedOnClosedSale(t *testing.T) {
	sale := activeSale(1, 50_000)
	sale.Status = SaleStatusCancelled
	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, sale.ID).Return(sale, nil)

	svc := NewService(repo, nil, zap.NewNop())

	_, _, err := svc.RecordPayment(context.Background(), sale.ID, RecordPaymentRequest{Amount: 50_000})
	assert.Error(t, err)
	repo.AssertNotCalled(t, "RecordPayment")
}

func TestChangeStatusEnforcesTransitions(t *testing.T) {
	sale := activeSale(1, 50_000)
	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, sale.ID).Return(sale, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(repo, nil, zap.NewNop())

	updated, err := svc.ChangeStatus(context.Background(), sale.ID, SaleStatusDefaulted, "three months behind")
	require.NoError(t, err)
	assert.Equal(t, SaleStatusDefaulted, updated.Status)
	assert.Equal(t, "three months behind", updated.DefaultedNote)

	_, err = svc.ChangeStatus(context.Background(), sale.ID, SaleStatusActive, "")
	assert.NoError(t, err, "defaulted sale can be reinstated")

	sale.Status = SaleStatusCompleted
	_, err = svc.ChangeStatus(context.Background(), sale.ID, SaleStatusCancelled, "")
	assert.Error(t, err, "completed sale is terminal")
}

func TestOverdueSalesNotifies(t *testing.T) {
	asOf := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	sale := activeSale(3, 50_000)

	repo := new(MockRepository)
	repo.On("ListOverdue", mock.Anything, asOf).Return([]Sale{*sale}, nil)
	notifier := new(MockNotifier)
	notifier.On("SaleOverdue", mock.Anything, mock.Anything, 3).Return(nil)

	svc := NewService(repo, notifier, zap.NewNop())

	sales, err := svc.OverdueSales(context.Background(), asOf)
	require.NoError(t, err)
	assert.Len(t, sales, 1)
	notifier.AssertExpectations(t)
}

func TestScheduleWorkbookAndReceipt(t *testing.T) {
	sale := activeSale(3, 50_000)
	paidAt := time.Now()
	sale.Installments[0].PaidAmount = 50_000
	sale.Installments[0].PaidAt = &paidAt

	xlsx, err := ScheduleWorkbook(sale)
	require.NoError(t, err)
	assert.NotEmpty(t, xlsx)

	payment := &Payment{ID: uuid.New(), SaleID: sale.ID, Amount: 50_000, Reference: "MPESA-XK12", ReceivedAt: paidAt}
	pdf, err := ReceiptPDF(sale, payment)
	require.NoError(t, err)
	assert.True(t, len(pdf) > 500, "receipt should be a non-trivial PDF")
}
