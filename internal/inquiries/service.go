package inquiries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ground-truth/land-portal/land-portal-backend/pkg/workflows"
)

// ListingDirectory resolves the listing title and the vendor contact
// address for notification purposes. Vendor identity proper lives in the
// external account service.
type ListingDirectory interface {
	ListingContact(ctx context.Context, listingID uuid.UUID) (title, vendorEmail string, err error)
}

// Broadcaster pushes new-inquiry events to live vendor dashboards.
type Broadcaster interface {
	NotifyInquiry(listingID, inquiryID uuid.UUID, buyerName string)
}

type CreateInquiryRequest struct {
	ListingID  uuid.UUID `json:"listing_id"`
	BuyerName  string    `json:"buyer_name"`
	BuyerEmail string    `json:"buyer_email"`
	BuyerPhone string    `json:"buyer_phone"`
	Message    string    `json:"message"`
}

type Service interface {
	CreateInquiry(ctx context.Context, req CreateInquiryRequest) (*Inquiry, error)
	GetInquiry(ctx context.Context, id uuid.UUID) (*Inquiry, error)
	ListByListing(ctx context.Context, listingID uuid.UUID, status *string) ([]Inquiry, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, status, note string) (*Inquiry, error)
}

type inquiryService struct {
	repo         Repository
	directory    ListingDirectory
	mailer       Mailer
	broadcaster  Broadcaster
	stateMachine *workflows.StateMachine
	logger       *zap.Logger
}

func NewService(repo Repository, directory ListingDirectory, mailer Mailer, broadcaster Broadcaster, logger *zap.Logger) Service {
	if mailer == nil {
		mailer = NewNopMailer()
	}
	return &inquiryService{
		repo:         repo,
		directory:    directory,
		mailer:       mailer,
		broadcaster:  broadcaster,
		stateMachine: workflows.NewInquiryStateMachine(),
		logger:       logger,
	}
}

func (s *inquiryService) CreateInquiry(ctx context.Context, req CreateInquiryRequest) (*Inquiry, error) {
	if req.ListingID == uuid.Nil {
		return nil, errors.New("listing_id is required")
	}
	if req.BuyerName == "" {
		return nil, errors.New("buyer_name is required")
	}
	if req.BuyerEmail == "" && req.BuyerPhone == "" {
		return nil, errors.New("a buyer contact (email or phone) is required")
	}

	now := time.Now().UTC()
	inquiry := &Inquiry{
		ID:         uuid.New(),
		ListingID:  req.ListingID,
		BuyerName:  req.BuyerName,
		BuyerEmail: req.BuyerEmail,
		BuyerPhone: req.BuyerPhone,
		Message:    req.Message,
		Status:     StatusNew,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, inquiry); err != nil {
		return nil, fmt.Errorf("creating inquiry: %w", err)
	}

	s.notifyVendor(ctx, inquiry)
	if s.broadcaster != nil {
		s.broadcaster.NotifyInquiry(inquiry.ListingID, inquiry.ID, inquiry.BuyerName)
	}
	return inquiry, nil
}

// notifyVendor is best-effort: a missing contact or mail failure never
// fails the inquiry itself.
func (s *inquiryService) notifyVendor(ctx context.Context, inquiry *Inquiry) {
	if s.directory == nil {
		return
	}
	title, vendorEmail, err := s.directory.ListingContact(ctx, inquiry.ListingID)
	if err != nil {
		s.logger.Warn("could not resolve listing contact",
			zap.String("listing_id", inquiry.ListingID.String()), zap.Error(err))
		return
	}
	if vendorEmail == "" {
		return
	}
	if err := s.mailer.SendNewInquiry(ctx, vendorEmail, title, inquiry); err != nil {
		s.logger.Warn("inquiry mail failed",
			zap.String("inquiry_id", inquiry.ID.String()), zap.Error(err))
	}
}

func (s *inquiryService) GetInquiry(ctx context.Context, id uuid.UUID) (*Inquiry, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *inquiryService) ListByListing(ctx context.Context, listingID uuid.UUID, status *string) ([]Inquiry, error) {
	return s.repo.ListByListing(ctx, listingID, status)
}

func (s *inquiryService) ChangeStatus(ctx context.Context, id uuid.UUID, status, note string) (*Inquiry, error) {
	inquiry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.stateMachine.CanTransition(inquiry.Status, status) {
		return nil, fmt.Errorf("cannot move inquiry from %s to %s", inquiry.Status, status)
	}
	inquiry.Status = status
	if note != "" {
		inquiry.Note = note
	}
	inquiry.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, inquiry); err != nil {
		return nil, err
	}
	return inquiry, nil
}
