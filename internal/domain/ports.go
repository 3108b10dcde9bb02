package domain

import (
	"context"
	"time"
)

// Controller is the actuator/sensor surface of the vessel. Commands are
// idempotent and safe to issue redundantly; only one control routine is
// ever active at a time, so implementations need no per-command locking
// beyond their own internal consistency. Hardware faults are the
// implementation's concern and must not panic into the core.
type Controller interface {
	HeaterOn()
	HeaterOff()
	CoolerOn()
	CoolerOff()
	StirrerOn()
	StirrerOff()
	// Dispense fires a single pump dispense. Fire-and-forget; delivered
	// volume is not verified.
	Dispense(pump string, volumeML float64)
	// Temperature reads the vessel temperature in °C.
	Temperature() float64
	// Elapsed returns monotonic seconds since the controller started.
	Elapsed() float64
	// Sleep blocks for d or until ctx is cancelled. Control routines
	// tick through this, which is also their cancellation point.
	Sleep(ctx context.Context, d time.Duration)
}

// TaskRunner executes control routines asynchronously, at most one
// outstanding per recipe instance.
type TaskRunner interface {
	// Dispatch starts the named routine with the given parameters.
	// Returns false iff a routine is already outstanding.
	Dispatch(name string, params Params) bool
	// Done reports whether the last dispatched routine has finished.
	// True when nothing was ever dispatched.
	Done() bool
	// Cancel signals the outstanding routine, if any, to stop at its
	// next tick. It does not wait for the routine to exit.
	Cancel()
}

// PlanSource provides recipe plans. Implementations can be seeded
// in-memory libraries or file-backed loaders.
type PlanSource interface {
	List(ctx context.Context) ([]string, error)
	Get(ctx context.Context, title string) (*Plan, error)
}

// Notifier delivers attention-worthy messages to the user. Implementations
// can write to the terminal, chime, or both.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}
