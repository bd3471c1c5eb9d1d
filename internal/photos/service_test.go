package photos

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ground-truth/land-portal/land-portal-backend/pkg/geo"
	"ground-truth/land-portal/land-portal-backend/pkg/storage"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, photo *Photo) error {
	args := m.Called(ctx, photo)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Photo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Photo), args.Error(1)
}

func (m *MockRepository) ListByParcel(ctx context.Context, parcelID uuid.UUID) ([]Photo, error) {
	args := m.Called(ctx, parcelID)
	return args.Get(0).([]Photo), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestUploadStoresObjectAndMetadata(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p *Photo) bool {
		return strings.HasPrefix(p.StorageKey, "parcels/") && p.ContentType == "image/jpeg"
	})).Return(nil)

	store := storage.NewMemoryClient()
	svc := NewService(repo, store, "landportal-photos", zap.NewNop())

	parcelID := uuid.New()
	photo, err := svc.Upload(context.Background(), UploadRequest{
		ParcelID:  parcelID,
		Location:  geo.GeoPoint{Lat: -1.2921, Lng: 36.8219},
		Caption:   "north-east beacon",
		SizeBytes: 11,
		Body:      strings.NewReader("jpeg-bytes!"),
	})
	require.NoError(t, err)
	assert.Equal(t, parcelID, photo.ParcelID)

	obj, err := store.Download(context.Background(), "landportal-photos", photo.StorageKey)
	require.NoError(t, err)
	obj.Close()
	repo.AssertExpectations(t)
}

func TestUploadValidation(t *testing.T) {
	svc := NewService(new(MockRepository), storage.NewMemoryClient(), "b", zap.NewNop())

	_, err := svc.Upload(context.Background(), UploadRequest{Body: strings.NewReader("x")})
	assert.Error(t, err, "parcel id required")

	_, err = svc.Upload(context.Background(), UploadRequest{ParcelID: uuid.New()})
	assert.Error(t, err, "payload required")
}

func TestGetPhotoReturnsPresignedURL(t *testing.T) {
	store := storage.NewMemoryClient()
	photo := &Photo{ID: uuid.New(), ParcelID: uuid.New(), StorageKey: "parcels/x/photos/y"}
	require.NoError(t, store.Upload(context.Background(), "b", photo.StorageKey, strings.NewReader("data")))

	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, photo.ID).Return(photo, nil)

	svc := NewService(repo, store, "b", zap.NewNop())

	view, err := svc.GetPhoto(context.Background(), photo.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, view.URL)
}

func TestDeleteRemovesObjectFirst(t *testing.T) {
	store := storage.NewMemoryClient()
	photo := &Photo{ID: uuid.New(), StorageKey: "parcels/x/photos/z"}
	require.NoError(t, store.Upload(context.Background(), "b", photo.StorageKey, strings.NewReader("data")))

	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, photo.ID).Return(photo, nil)
	repo.On("Delete", mock.Anything, photo.ID).Return(nil)

	svc := NewService(repo, store, "b", zap.NewNop())
	require.NoError(t, svc.DeletePhoto(context.Background(), photo.ID))

	_, err := store.Download(context.Background(), "b", photo.StorageKey)
	assert.Error(t, err)
}
