// Package telemetry records what a run did: step transitions and
// temperature samples. The poller writes, the REPL's log command reads.
package telemetry

import (
	"context"
	"time"
)

// Event is one run transition: the run entered the given step/state.
type Event struct {
	At      time.Time
	Plan    string
	Step    int
	State   string
	Message string
}

// Sample is one temperature reading, stamped with both wall-clock time
// and the controller's elapsed clock.
type Sample struct {
	At          time.Time
	Seconds     float64
	Temperature float64
}

// Store persists events and samples. Implementations must be safe for
// concurrent use; the poller records from its own goroutine.
type Store interface {
	RecordEvent(ctx context.Context, e Event) error
	RecordSample(ctx context.Context, s Sample) error
	// RecentEvents returns up to limit events, newest first.
	RecentEvents(ctx context.Context, limit int) ([]Event, error)
	// RecentSamples returns up to limit samples, newest first.
	RecentSamples(ctx context.Context, limit int) ([]Sample, error)
	Close() error
}
