package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ground-truth/land-portal/land-portal-backend/pkg/geo"
)

// ParcelStore is the persistence collaborator that receives a finalized
// {rawPath, cleanPath} pair keyed by parcel id.
type ParcelStore interface {
	SaveBoundary(ctx context.Context, parcelID uuid.UUID, raw, clean []geo.GeoPoint, perimeter float64) error
}

// StatusSink receives live capture status events, typically for broadcast
// to the vendor dashboard.
type StatusSink interface {
	Publish(event StatusEvent)
}

var (
	// ErrNotCapturing is returned by Stop when no session is active for
	// the parcel.
	ErrNotCapturing = errors.New("no active capture session for parcel")
	// ErrNoResult is returned by Preview before any capture has finished.
	ErrNoResult = errors.New("no finalized capture for parcel")
)

// Service orchestrates capture sessions: at most one live session per
// device. The session handle lives here, not in any package-level
// variable, so tearing down is explicit and testable.
type Service struct {
	watcher   LocationWatcher
	store     ParcelStore
	telemetry TelemetryRecorder
	sink      StatusSink
	logger    *zap.Logger

	mu      sync.Mutex
	active  *Session
	results map[uuid.UUID]Result
}

func NewService(watcher LocationWatcher, store ParcelStore, telemetry TelemetryRecorder, sink StatusSink, logger *zap.Logger) *Service {
	if telemetry == nil {
		telemetry = NewNopTelemetry()
	}
	return &Service{
		watcher:   watcher,
		store:     store,
		telemetry: telemetry,
		sink:      sink,
		logger:    logger,
		results:   make(map[uuid.UUID]Result),
	}
}

// Start begins capturing for a parcel. Any session already running, for
// this parcel or another, is cancelled first and its partial path
// discarded: one watch per device, always.
func (s *Service) Start(ctx context.Context, parcelID uuid.UUID) error {
	s.mu.Lock()
	if prev := s.active; prev != nil {
		if prev.cancel != nil {
			prev.cancel()
		}
		prev.mu.Lock()
		prev.state = StateIdle
		dropped := len(prev.raw)
		prev.mu.Unlock()
		s.logger.Info("discarding active capture session",
			zap.String("parcel_id", prev.parcelID.String()),
			zap.Int("raw_points", dropped))
		s.active = nil
	}

	session := newSession(parcelID)
	s.active = session
	s.mu.Unlock()

	cancel, err := s.watcher.Watch(ctx,
		func(fix Fix) { s.onFix(session, fix) },
		func(err error) { s.onFixError(session, err) },
	)
	if err != nil {
		s.mu.Lock()
		s.active = nil
		s.mu.Unlock()
		return fmt.Errorf("starting location watch: %w", err)
	}

	s.mu.Lock()
	session.mu.Lock()
	session.cancel = cancel
	stale := session.state != StateCapturing || s.active != session
	session.mu.Unlock()
	s.mu.Unlock()
	if stale {
		// A competing Start or Stop won the race; release the watch.
		cancel()
	}

	s.logger.Info("capture started", zap.String("parcel_id", parcelID.String()))
	return nil
}

func (s *Service) onFix(session *Session, fix Fix) {
	accepted, count := session.Offer(fix)

	// Telemetry must never slow the fix path.
	go func() {
		if err := s.telemetry.Record(context.Background(), telemetryFor(session.parcelID, fix, accepted)); err != nil {
			s.logger.Debug("telemetry write failed", zap.Error(err))
		}
	}()

	kind := StatusFixAccepted
	msg := "fix recorded"
	if !accepted {
		kind = StatusFixRejected
		msg = "fix ignored: below minimum movement"
	}
	s.publish(StatusEvent{
		ParcelID:   session.parcelID,
		Kind:       kind,
		Message:    msg,
		Accuracy:   fix.Accuracy,
		PointCount: count,
	})
}

func (s *Service) onFixError(session *Session, err error) {
	// Transient: the session stays capturing, fixes may resume.
	s.logger.Warn("location fix failed",
		zap.String("parcel_id", session.parcelID.String()), zap.Error(err))
	s.publish(StatusEvent{
		ParcelID:   session.parcelID,
		Kind:       StatusSignalLost,
		Message:    "GPS signal lost, keep walking and it will recover",
		PointCount: session.RawCount(),
	})
}

// Stop finalizes the active session for the parcel: cancels the watch
// synchronously so no further fixes land, simplifies the raw path at the
// default tolerance, persists both paths and reports completion.
func (s *Service) Stop(ctx context.Context, parcelID uuid.UUID) (Result, error) {
	s.mu.Lock()
	session := s.active
	if session == nil || session.parcelID != parcelID {
		s.mu.Unlock()
		return Result{}, ErrNotCapturing
	}
	s.active = nil
	s.mu.Unlock()

	if session.cancel != nil {
		session.cancel()
	}

	result := session.Finalize(geo.DefaultEpsilon)

	if err := s.store.SaveBoundary(ctx, parcelID, result.RawPath, result.CleanPath, result.Perimeter); err != nil {
		return Result{}, fmt.Errorf("persisting boundary for parcel %s: %w", parcelID, err)
	}

	s.mu.Lock()
	s.results[parcelID] = result
	s.mu.Unlock()

	s.publish(StatusEvent{
		ParcelID:   parcelID,
		Kind:       StatusCaptureComplete,
		Message:    fmt.Sprintf("boundary captured: %d corners, %.0f m perimeter", len(result.CleanPath), result.Perimeter),
		PointCount: len(result.RawPath),
	})
	s.logger.Info("capture stopped",
		zap.String("parcel_id", parcelID.String()),
		zap.Int("raw_points", len(result.RawPath)),
		zap.Int("clean_points", len(result.CleanPath)),
		zap.Float64("perimeter_m", result.Perimeter))
	return result, nil
}

// Active reports the currently capturing parcel, if any.
func (s *Service) Active() (uuid.UUID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return uuid.Nil, false
	}
	return s.active.parcelID, true
}

// Preview renders the finalized clean path of a parcel into viewport
// drawing commands for the boundary overlay.
func (s *Service) Preview(parcelID uuid.UUID, viewWidth, viewHeight float64) ([]geo.PathCommand, error) {
	s.mu.Lock()
	result, ok := s.results[parcelID]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNoResult
	}
	return geo.ToDrawingPath(result.CleanPath, viewWidth, viewHeight), nil
}

func (s *Service) publish(event StatusEvent) {
	if s.sink != nil {
		s.sink.Publish(event)
	}
}
