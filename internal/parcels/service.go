package parcels

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ground-truth/land-portal/land-portal-backend/pkg/geo"
	"ground-truth/land-portal/land-portal-backend/pkg/geospatial"
)

type CreateParcelRequest struct {
	Name      string    `json:"name"`
	ListingID uuid.UUID `json:"listing_id"`
}

type Service interface {
	CreateParcel(ctx context.Context, req CreateParcelRequest) (*Parcel, error)
	GetParcel(ctx context.Context, id uuid.UUID) (*Parcel, error)
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]Parcel, error)
	DeleteParcel(ctx context.Context, id uuid.UUID) error

	// SaveBoundary is the persistence half of the capture pipeline: it
	// receives the finalized raw/clean pair from a stopped session.
	SaveBoundary(ctx context.Context, parcelID uuid.UUID, raw, clean []geo.GeoPoint, perimeter float64) error

	// RenderBoundary fits a stored clean path into a viewport as drawing
	// commands for the map overlay.
	RenderBoundary(ctx context.Context, parcelID uuid.UUID, viewWidth, viewHeight float64) ([]geo.PathCommand, error)
}

type parcelService struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &parcelService{repo: repo, logger: logger}
}

func (s *parcelService) CreateParcel(ctx context.Context, req CreateParcelRequest) (*Parcel, error) {
	if req.Name == "" {
		return nil, errors.New("name is required")
	}
	parcel := &Parcel{
		ID:        uuid.New(),
		Name:      req.Name,
		ListingID: req.ListingID,
	}
	if err := s.repo.Create(ctx, parcel); err != nil {
		return nil, fmt.Errorf("creating parcel: %w", err)
	}
	return parcel, nil
}

func (s *parcelService) GetParcel(ctx context.Context, id uuid.UUID) (*Parcel, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *parcelService) ListByListing(ctx context.Context, listingID uuid.UUID) ([]Parcel, error) {
	return s.repo.ListByListing(ctx, listingID)
}

func (s *parcelService) DeleteParcel(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *parcelService) SaveBoundary(ctx context.Context, parcelID uuid.UUID, raw, clean []geo.GeoPoint, perimeter float64) error {
	var geojson string
	var areaHa float64
	if len(clean) >= 3 {
		data, err := geospatial.BoundaryToGeoJSON(clean)
		if err != nil {
			return fmt.Errorf("encoding boundary: %w", err)
		}
		geojson = string(data)
		areaHa = geospatial.ConvertToHectares(geo.PolygonArea(clean))
	} else {
		s.logger.Warn("degenerate boundary stored without polygon",
			zap.String("parcel_id", parcelID.String()),
			zap.Int("clean_points", len(clean)))
	}

	if err := s.repo.UpdateBoundary(ctx, parcelID, raw, clean, geojson, perimeter, areaHa); err != nil {
		return fmt.Errorf("saving boundary for parcel %s: %w", parcelID, err)
	}
	return nil
}

func (s *parcelService) RenderBoundary(ctx context.Context, parcelID uuid.UUID, viewWidth, viewHeight float64) ([]geo.PathCommand, error) {
	parcel, err := s.repo.GetByID(ctx, parcelID)
	if err != nil {
		return nil, err
	}
	return geo.ToDrawingPath(parcel.CleanPath, viewWidth, viewHeight), nil
}
