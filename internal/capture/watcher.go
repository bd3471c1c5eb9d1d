package capture

import (
	"context"
	"errors"
	"sync"
)

// ErrLocationUnavailable means the device offers no location capability.
// Non-retryable: capture never starts.
var ErrLocationUnavailable = errors.New("location services unavailable on this device")

// CancelFunc tears down a location subscription. Safe to call more than
// once; after it returns no further callbacks fire.
type CancelFunc func()

// LocationWatcher is the platform location-watch collaborator: a push-based
// subscription that invokes onFix at the receiver's own cadence and onError
// for transient failures (signal loss, permission hiccups).
type LocationWatcher interface {
	Watch(ctx context.Context, onFix func(Fix), onError func(error)) (CancelFunc, error)
}

// DeviceGateway adapts HTTP-delivered fixes from a field device into the
// LocationWatcher contract. At most one subscription is live at a time;
// opening a new one replaces the old, matching the one-watch-per-device
// rule.
type DeviceGateway struct {
	mu      sync.Mutex
	gen     int
	onFix   func(Fix)
	onError func(error)
}

func NewDeviceGateway() *DeviceGateway {
	return &DeviceGateway{}
}

func (g *DeviceGateway) Watch(ctx context.Context, onFix func(Fix), onError func(error)) (CancelFunc, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen++
	myGen := g.gen
	g.onFix = onFix
	g.onError = onError

	// Cancelling a superseded subscription must not clear its successor.
	cancel := func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.gen != myGen {
			return
		}
		g.onFix = nil
		g.onError = nil
	}
	return cancel, nil
}

// PushFix delivers a fix from the device. Dropped silently when no
// subscription is open, so a stale device cannot mutate a finished session.
func (g *DeviceGateway) PushFix(fix Fix) bool {
	g.mu.Lock()
	fn := g.onFix
	g.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(fix)
	return true
}

// PushError reports a transient location failure from the device.
func (g *DeviceGateway) PushError(err error) bool {
	g.mu.Lock()
	fn := g.onError
	g.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(err)
	return true
}
