package capture

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ground-truth/land-portal/land-portal-backend/pkg/geo"
)

// MockParcelStore is a mock implementation of the ParcelStore interface
type MockParcelStore struct {
	mock.Mock
}

func (m *MockParcelStore) SaveBoundary(ctx context.Context, parcelID uuid.UUID, raw, clean []geo.GeoPoint, perimeter float64) error {
	args := m.Called(ctx, parcelID, raw, clean, perimeter)
	return args.Error(0)
}

type recordingSink struct {
	mu     sync.Mutex
	events []StatusEvent
}

func (s *recordingSink) Publish(event StatusEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) kinds() []StatusKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StatusKind, len(s.events))
	for i, e := range s.events {
		out[i] = e.Kind
	}
	return out
}

// failingWatcher models a device with no location capability.
type failingWatcher struct{}

func (failingWatcher) Watch(ctx context.Context, onFix func(Fix), onError func(error)) (CancelFunc, error) {
	return nil, ErrLocationUnavailable
}

func newTestService(store ParcelStore, sink StatusSink) (*Service, *DeviceGateway) {
	gateway := NewDeviceGateway()
	svc := NewService(gateway, store, NewNopTelemetry(), sink, zap.NewNop())
	return svc, gateway
}

func TestCaptureEndToEnd(t *testing.T) {
	store := new(MockParcelStore)
	store.On("SaveBoundary", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	sink := &recordingSink{}
	svc, gateway := newTestService(store, sink)

	parcelID := uuid.New()
	require.NoError(t, svc.Start(context.Background(), parcelID))

	// Walk east 100 m then north 100 m in 5 m steps.
	for m := 0.0; m <= 100; m += 5 {
		gateway.PushFix(fixAt(testOrigin, m, 0))
	}
	for m := 5.0; m <= 100; m += 5 {
		gateway.PushFix(fixAt(testOrigin, 100, m))
	}

	result, err := svc.Stop(context.Background(), parcelID)
	require.NoError(t, err)
	assert.Len(t, result.RawPath, 41)
	assert.Len(t, result.CleanPath, 3)
	assert.InDelta(t, 200, result.Perimeter, 2)

	store.AssertCalled(t, "SaveBoundary", mock.Anything, parcelID, result.RawPath, result.CleanPath, result.Perimeter)

	kinds := sink.kinds()
	assert.Equal(t, StatusCaptureComplete, kinds[len(kinds)-1])
}

func TestCaptureRejectsJitterAndSignalsStatus(t *testing.T) {
	store := new(MockParcelStore)
	store.On("SaveBoundary", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	sink := &recordingSink{}
	svc, gateway := newTestService(store, sink)

	parcelID := uuid.New()
	require.NoError(t, svc.Start(context.Background(), parcelID))

	gateway.PushFix(fixAt(testOrigin, 0, 0))
	gateway.PushFix(fixAt(testOrigin, 1, 0)) // jitter, rejected
	gateway.PushError(errors.New("gps timeout"))
	gateway.PushFix(fixAt(testOrigin, 10, 0))

	result, err := svc.Stop(context.Background(), parcelID)
	require.NoError(t, err)
	assert.Len(t, result.RawPath, 2)

	assert.Equal(t, []StatusKind{
		StatusFixAccepted,
		StatusFixRejected,
		StatusSignalLost,
		StatusFixAccepted,
		StatusCaptureComplete,
	}, sink.kinds())
}

func TestStartCancelsPriorSession(t *testing.T) {
	store := new(MockParcelStore)
	store.On("SaveBoundary", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc, gateway := newTestService(store, nil)

	first := uuid.New()
	second := uuid.New()
	require.NoError(t, svc.Start(context.Background(), first))
	gateway.PushFix(fixAt(testOrigin, 0, 0))
	gateway.PushFix(fixAt(testOrigin, 20, 0))

	// Starting a second parcel discards the first session entirely.
	require.NoError(t, svc.Start(context.Background(), second))

	_, err := svc.Stop(context.Background(), first)
	assert.ErrorIs(t, err, ErrNotCapturing)

	gateway.PushFix(fixAt(testOrigin, 0, 0))
	result, err := svc.Stop(context.Background(), second)
	require.NoError(t, err)
	assert.Len(t, result.RawPath, 1)
}

func TestStopWithoutStart(t *testing.T) {
	store := new(MockParcelStore)
	svc, _ := newTestService(store, nil)

	_, err := svc.Stop(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotCapturing)
}

func TestNoFixesAcceptedAfterStop(t *testing.T) {
	store := new(MockParcelStore)
	store.On("SaveBoundary", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc, gateway := newTestService(store, nil)

	parcelID := uuid.New()
	require.NoError(t, svc.Start(context.Background(), parcelID))
	gateway.PushFix(fixAt(testOrigin, 0, 0))

	_, err := svc.Stop(context.Background(), parcelID)
	require.NoError(t, err)

	// The subscription was torn down synchronously.
	assert.False(t, gateway.PushFix(fixAt(testOrigin, 50, 0)))
}

func TestUnsupportedEnvironment(t *testing.T) {
	store := new(MockParcelStore)
	svc := NewService(failingWatcher{}, store, nil, nil, zap.NewNop())

	err := svc.Start(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrLocationUnavailable)

	_, active := svc.Active()
	assert.False(t, active)
}

func TestPreviewAfterStop(t *testing.T) {
	store := new(MockParcelStore)
	store.On("SaveBoundary", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc, gateway := newTestService(store, nil)

	parcelID := uuid.New()
	require.NoError(t, svc.Start(context.Background(), parcelID))
	gateway.PushFix(fixAt(testOrigin, 0, 0))
	gateway.PushFix(fixAt(testOrigin, 100, 0))
	gateway.PushFix(fixAt(testOrigin, 100, 100))
	_, err := svc.Stop(context.Background(), parcelID)
	require.NoError(t, err)

	commands, err := svc.Preview(parcelID, 400, 400)
	require.NoError(t, err)
	require.Len(t, commands, 3)
	assert.Equal(t, geo.MoveTo, commands[0].Op)
	for _, cmd := range commands {
		assert.GreaterOrEqual(t, cmd.X, 0.0)
		assert.LessOrEqual(t, cmd.X, 400.0)
		assert.GreaterOrEqual(t, cmd.Y, 0.0)
		assert.LessOrEqual(t, cmd.Y, 400.0)
	}

	_, err = svc.Preview(uuid.New(), 400, 400)
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestStoreFailureSurfaces(t *testing.T) {
	store := new(MockParcelStore)
	store.On("SaveBoundary", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("mongo down"))
	svc, gateway := newTestService(store, nil)

	parcelID := uuid.New()
	require.NoError(t, svc.Start(context.Background(), parcelID))
	gateway.PushFix(fixAt(testOrigin, 0, 0))

	_, err := svc.Stop(context.Background(), parcelID)
	assert.ErrorContains(t, err, "mongo down")
}
