package capture

import (
	"sync"

	"github.com/google/uuid"

	"ground-truth/land-portal/land-portal-backend/pkg/geo"
)

// Session accumulates the raw path for a single parcel walk. It owns its
// subscription handle so stopping one session can never leak callbacks
// into the next.
type Session struct {
	mu       sync.Mutex
	parcelID uuid.UUID
	state    State
	raw      []geo.GeoPoint
	clean    []geo.GeoPoint
	cancel   CancelFunc
}

func newSession(parcelID uuid.UUID) *Session {
	return &Session{
		parcelID: parcelID,
		state:    StateCapturing,
	}
}

// Offer applies the minimum-movement gate: a fix is appended only if it is
// more than geo.MinMovementMeters past the last accepted point. The first
// fix is always accepted. Returns whether the fix was kept and the raw
// point count afterwards.
func (s *Session) Offer(fix Fix) (accepted bool, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCapturing {
		return false, len(s.raw)
	}
	if len(s.raw) > 0 {
		last := s.raw[len(s.raw)-1]
		if geo.Haversine(last, fix.Point) <= geo.MinMovementMeters {
			return false, len(s.raw)
		}
	}
	s.raw = append(s.raw, fix.Point)
	return true, len(s.raw)
}

// Finalize freezes the session: simplifies the accumulated raw path and
// transitions to Idle. Fewer than three raw points is not an error; the
// clean path simply comes back unchanged and the caller decides whether
// that is a usable boundary.
func (s *Session) Finalize(epsilon float64) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle
	s.clean = geo.Simplify(s.raw, epsilon)
	return Result{
		ParcelID:  s.parcelID,
		RawPath:   s.raw,
		CleanPath: s.clean,
		Perimeter: geo.PathLength(s.clean),
	}
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// RawCount reports how many fixes have been accepted so far.
func (s *Session) RawCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.raw)
}
