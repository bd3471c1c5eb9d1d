package photos

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ground-truth/land-portal/land-portal-backend/pkg/geo"
	"ground-truth/land-portal/land-portal-backend/pkg/storage"
)

const presignTTL = 15 * time.Minute

// UploadRequest carries a photo payload and its capture metadata.
type UploadRequest struct {
	ParcelID    uuid.UUID
	Location    geo.GeoPoint
	Caption     string
	ContentType string
	SizeBytes   int64
	Body        io.Reader
	CapturedAt  time.Time
}

// PhotoView is a photo with a time-limited download URL.
type PhotoView struct {
	Photo
	URL string `json:"url"`
}

// Service manages panoramic photo nodes.
type Service interface {
	Upload(ctx context.Context, req UploadRequest) (*Photo, error)
	GetPhoto(ctx context.Context, id uuid.UUID) (*PhotoView, error)
	ListByParcel(ctx context.Context, parcelID uuid.UUID) ([]PhotoView, error)
	DeletePhoto(ctx context.Context, id uuid.UUID) error
}

type photoService struct {
	repo    Repository
	storage storage.S3Client
	bucket  string
	logger  *zap.Logger
}

func NewService(repo Repository, store storage.S3Client, bucket string, logger *zap.Logger) Service {
	return &photoService{repo: repo, storage: store, bucket: bucket, logger: logger}
}

func (s *photoService) Upload(ctx context.Context, req UploadRequest) (*Photo, error) {
	if req.ParcelID == uuid.Nil {
		return nil, fmt.Errorf("parcel id is required")
	}
	if req.Body == nil {
		return nil, fmt.Errorf("photo payload is required")
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	capturedAt := req.CapturedAt
	if capturedAt.IsZero() {
		capturedAt = time.Now().UTC()
	}

	photo := &Photo{
		ID:          uuid.New(),
		ParcelID:    req.ParcelID,
		Location:    req.Location,
		Caption:     req.Caption,
		ContentType: contentType,
		SizeBytes:   req.SizeBytes,
		CapturedAt:  capturedAt,
	}
	photo.StorageKey = fmt.Sprintf("parcels/%s/photos/%s", req.ParcelID, photo.ID)

	if err := s.storage.Upload(ctx, s.bucket, photo.StorageKey, req.Body); err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}

	if err := s.repo.Create(ctx, photo); err != nil {
		// Orphaned object cleanup is best-effort.
		if delErr := s.storage.Delete(ctx, s.bucket, photo.StorageKey); delErr != nil {
			s.logger.Warn("orphaned photo object left in bucket",
				zap.String("key", photo.StorageKey),
				zap.Error(delErr))
		}
		return nil, fmt.Errorf("save photo metadata: %w", err)
	}

	s.logger.Info("photo uploaded",
		zap.String("photo_id", photo.ID.String()),
		zap.String("parcel_id", photo.ParcelID.String()),
		zap.Int64("size_bytes", photo.SizeBytes))

	return photo, nil
}

func (s *photoService) GetPhoto(ctx context.Context, id uuid.UUID) (*PhotoView, error) {
	photo, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	url, err := s.storage.GetPresignedURL(ctx, s.bucket, photo.StorageKey, presignTTL)
	if err != nil {
		return nil, fmt.Errorf("presign photo url: %w", err)
	}
	return &PhotoView{Photo: *photo, URL: url}, nil
}

func (s *photoService) ListByParcel(ctx context.Context, parcelID uuid.UUID) ([]PhotoView, error) {
	photos, err := s.repo.ListByParcel(ctx, parcelID)
	if err != nil {
		return nil, err
	}
	views := make([]PhotoView, 0, len(photos))
	for _, photo := range photos {
		url, err := s.storage.GetPresignedURL(ctx, s.bucket, photo.StorageKey, presignTTL)
		if err != nil {
			s.logger.Warn("presign failed, skipping photo",
				zap.String("photo_id", photo.ID.String()),
				zap.Error(err))
			continue
		}
		views = append(views, PhotoView{Photo: photo, URL: url})
	}
	return views, nil
}

func (s *photoService) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	photo, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, s.bucket, photo.StorageKey); err != nil {
		return fmt.Errorf("delete photo object: %w", err)
	}
	return s.repo.Delete(ctx, id)
}
