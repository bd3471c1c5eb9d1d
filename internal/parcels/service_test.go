package parcels

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ground-truth/land-portal/land-portal-backend/pkg/geo"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, parcel *Parcel) error {
	args := m.Called(ctx, parcel)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Parcel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Parcel), args.Error(1)
}

func (m *MockRepository) ListByListing(ctx context.Context, listingID uuid.UUID) ([]Parcel, error) {
	args := m.Called(ctx, listingID)
	return args.Get(0).([]Parcel), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, parcel *Parcel) error {
	args := m.Called(ctx, parcel)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) UpdateBoundary(ctx context.Context, id uuid.UUID, raw, clean []geo.GeoPoint, geojson string, perimeter, areaHa float64) error {
	args := m.Called(ctx, id, raw, clean, geojson, perimeter, areaHa)
	return args.Error(0)
}

func pointAt(base geo.GeoPoint, east, north float64) geo.GeoPoint {
	dLat := north / geo.EarthRadiusMeters * 180 / math.Pi
	dLng := east / (geo.EarthRadiusMeters * math.Cos(base.Lat*math.Pi/180)) * 180 / math.Pi
	return geo.GeoPoint{Lat: base.Lat + dLat, Lng: base.Lng + dLng}
}

func TestCreateParcelValidation(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, zap.NewNop())

	_, err := svc.CreateParcel(context.Background(), CreateParcelRequest{})
	assert.Error(t, err)
	repo.AssertNotCalled(t, "Create")
}

func TestCreateParcel(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	svc := NewService(repo, zap.NewNop())

	parcel, err := svc.CreateParcel(context.Background(), CreateParcelRequest{Name: "Plot 7A"})
	require.NoError(t, err)
	assert.Equal(t, "Plot 7A", parcel.Name)
	assert.NotEqual(t, uuid.Nil, parcel.ID)
}

func TestSaveBoundaryComputesAreaAndGeoJSON(t *testing.T) {
	origin := geo.GeoPoint{Lat: -1.2921, Lng: 36.8219}
	clean := []geo.GeoPoint{
		origin,
		pointAt(origin, 100, 0),
		pointAt(origin, 100, 100),
		pointAt(origin, 0, 100),
	}

	repo := new(MockRepository)
	parcelID := uuid.New()
	repo.On("UpdateBoundary", mock.Anything, parcelID, mock.Anything, clean,
		mock.MatchedBy(func(gj string) bool { return gj != "" }),
		mock.Anything,
		mock.MatchedBy(func(ha float64) bool { return ha > 0.95 && ha < 1.05 }),
	).Return(nil)

	svc := NewService(repo, zap.NewNop())
	err := svc.SaveBoundary(context.Background(), parcelID, clean, clean, geo.PathLength(clean))
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSaveBoundaryDegeneratePathStoredWithoutPolygon(t *testing.T) {
	origin := geo.GeoPoint{Lat: -1.2921, Lng: 36.8219}
	clean := []geo.GeoPoint{origin, pointAt(origin, 10, 0)}

	repo := new(MockRepository)
	parcelID := uuid.New()
	repo.On("UpdateBoundary", mock.Anything, parcelID, mock.Anything, clean, "", mock.Anything, 0.0).Return(nil)

	svc := NewService(repo, zap.NewNop())
	err := svc.SaveBoundary(context.Background(), parcelID, clean, clean, geo.PathLength(clean))
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestRenderBoundary(t *testing.T) {
	origin := geo.GeoPoint{Lat: -1.2921, Lng: 36.8219}
	parcel := &Parcel{
		ID: uuid.New(),
		CleanPath: []geo.GeoPoint{
			origin,
			pointAt(origin, 80, 0),
			pointAt(origin, 80, 60),
		},
	}
	repo := new(MockRepository)
	repo.On("GetByID", mock.Anything, parcel.ID).Return(parcel, nil)

	svc := NewService(repo, zap.NewNop())
	commands, err := svc.RenderBoundary(context.Background(), parcel.ID, 320, 240)
	require.NoError(t, err)
	require.Len(t, commands, 3)
	for _, cmd := range commands {
		assert.GreaterOrEqual(t, cmd.X, 0.0)
		assert.LessOrEqual(t, cmd.X, 320.0)
		assert.GreaterOrEqual(t, cmd.Y, 0.0)
		assert.LessOrEqual(t, cmd.Y, 240.0)
	}
}
