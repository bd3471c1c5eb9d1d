package listings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ground-truth/land-portal/land-portal-backend/pkg/workflows"
)

type CreateListingRequest struct {
	VendorID    uuid.UUID `json:"vendor_id"`
	VendorEmail string    `json:"vendor_email"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
}

type UpdateListingRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
}

type Service interface {
	CreateListing(ctx context.Context, req CreateListingRequest) (*Listing, error)
	GetListing(ctx context.Context, id uuid.UUID) (*Listing, error)
	ListListings(ctx context.Context, filter ListingFilter) ([]Listing, error)
	UpdateListing(ctx context.Context, id uuid.UUID, req UpdateListingRequest) (*Listing, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*Listing, error)
	DeleteListing(ctx context.Context, id uuid.UUID) error
	SearchListings(ctx context.Context, query string, limit int) ([]Listing, error)
	ReindexAll(ctx context.Context) (int, error)
}

type listingService struct {
	repo         Repository
	search       SearchIndex
	stateMachine *workflows.StateMachine
	logger       *zap.Logger
}

func NewService(repo Repository, search SearchIndex, logger *zap.Logger) Service {
	return &listingService{
		repo:         repo,
		search:       search,
		stateMachine: workflows.NewListingStateMachine(),
		logger:       logger,
	}
}

func (s *listingService) CreateListing(ctx context.Context, req CreateListingRequest) (*Listing, error) {
	if req.Title == "" {
		return nil, errors.New("title is required")
	}
	if req.VendorID == uuid.Nil {
		return nil, errors.New("vendor_id is required")
	}
	if req.Price < 0 {
		return nil, errors.New("price cannot be negative")
	}
	currency := req.Currency
	if currency == "" {
		currency = "KES"
	}

	now := time.Now().UTC()
	listing := &Listing{
		ID:          uuid.New(),
		VendorID:    req.VendorID,
		VendorEmail: req.VendorEmail,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Currency:    currency,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("creating listing: %w", err)
	}
	return listing, nil
}

func (s *listingService) GetListing(ctx context.Context, id uuid.UUID) (*Listing, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *listingService) ListListings(ctx context.Context, filter ListingFilter) ([]Listing, error) {
	return s.repo.List(ctx, filter)
}

func (s *listingService) UpdateListing(ctx context.Context, id uuid.UUID, req UpdateListingRequest) (*Listing, error) {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		listing.Title = *req.Title
	}
	if req.Description != nil {
		listing.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, errors.New("price cannot be negative")
		}
		listing.Price = *req.Price
	}
	if req.Lat != nil {
		listing.Lat = *req.Lat
	}
	if req.Lng != nil {
		listing.Lng = *req.Lng
	}
	listing.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, listing); err != nil {
		return nil, err
	}
	s.syncIndex(ctx, listing)
	return listing, nil
}

func (s *listingService) ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*Listing, error) {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.stateMachine.CanTransition(listing.Status, status) {
		return nil, fmt.Errorf("cannot move listing from %s to %s", listing.Status, status)
	}
	listing.Status = status
	listing.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, listing); err != nil {
		return nil, err
	}
	s.syncIndex(ctx, listing)
	return listing, nil
}

func (s *listingService) DeleteListing(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.search != nil {
		if err := s.search.Remove(ctx, id); err != nil {
			s.logger.Warn("failed to remove listing from index", zap.String("listing_id", id.String()), zap.Error(err))
		}
	}
	return nil
}

func (s *listingService) SearchListings(ctx context.Context, query string, limit int) ([]Listing, error) {
	if s.search == nil {
		return nil, errors.New("search is not configured")
	}
	ids, err := s.search.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Listing, 0, len(ids))
	for _, id := range ids {
		listing, err := s.repo.GetByID(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue // Index lagging behind a delete
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *listing)
	}
	return out, nil
}

func (s *listingService) ReindexAll(ctx context.Context) (int, error) {
	if s.search == nil {
		return 0, errors.New("search is not configured")
	}
	published := StatusPublished
	all, err := s.repo.List(ctx, ListingFilter{Status: &published})
	if err != nil {
		return 0, err
	}
	indexed := 0
	for i := range all {
		if err := s.search.Index(ctx, &all[i]); err != nil {
			s.logger.Warn("reindex failed for listing", zap.String("listing_id", all[i].ID.String()), zap.Error(err))
			continue
		}
		indexed++
	}
	return indexed, nil
}

// syncIndex keeps the search index loosely consistent: published listings
// are indexed, everything else is evicted. Index failures are logged, not
// surfaced; the nightly reindex repairs drift.
func (s *listingService) syncIndex(ctx context.Context, listing *Listing) {
	if s.search == nil {
		return
	}
	var err error
	if listing.Status == StatusPublished {
		err = s.search.Index(ctx, listing)
	} else {
		err = s.search.Remove(ctx, listing.ID)
	}
	if err != nil {
		s.logger.Warn("search index sync failed",
			zap.String("listing_id", listing.ID.String()),
			zap.String("status", listing.Status),
			zap.Error(err))
	}
}
