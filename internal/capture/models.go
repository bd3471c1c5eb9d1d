package capture

import (
	"time"

	"github.com/google/uuid"

	"ground-truth/land-portal/land-portal-backend/pkg/geo"
)

// Fix is a single location reading delivered by a device's location watch.
type Fix struct {
	Point    geo.GeoPoint `json:"point"`
	Accuracy float64      `json:"accuracy"` // meters, reported by the receiver
	Time     time.Time    `json:"time"`
}

// State is the capture session lifecycle state. There is no paused state:
// a session is either recording fixes or it is done.
type State int

const (
	StateIdle State = iota
	StateCapturing
)

func (s State) String() string {
	switch s {
	case StateCapturing:
		return "CAPTURING"
	default:
		return "IDLE"
	}
}

// StatusKind classifies the live status signals surfaced to the vendor UI
// while walking a perimeter.
type StatusKind string

const (
	StatusFixAccepted     StatusKind = "fix_accepted"
	StatusFixRejected     StatusKind = "fix_rejected"
	StatusSignalLost      StatusKind = "signal_lost"
	StatusCaptureComplete StatusKind = "capture_complete"
)

// StatusEvent is a user-visible capture status update. Errors at the
// location boundary surface here as status text, never as panics out of
// the geometry code.
type StatusEvent struct {
	ParcelID   uuid.UUID  `json:"parcel_id"`
	Kind       StatusKind `json:"kind"`
	Message    string     `json:"message"`
	Accuracy   float64    `json:"accuracy,omitempty"`
	PointCount int        `json:"point_count"`
}

// Result is the outcome of a finalized capture session.
type Result struct {
	ParcelID  uuid.UUID      `json:"parcel_id"`
	RawPath   []geo.GeoPoint `json:"raw_path"`
	CleanPath []geo.GeoPoint `json:"clean_path"`
	Perimeter float64        `json:"perimeter_m"`
}
