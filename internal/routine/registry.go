// Package routine implements the control routines that drive the vessel
// toward a target condition: heat, cool, maintain (hysteresis), stir,
// and pump. Routines know nothing about the step graph; they receive a
// parameter map and run to completion, blocking only on the
// controller's sleep primitive.
package routine

import (
	"context"
	"fmt"
	"time"

	"github.com/hammamikhairi/brewctl/internal/domain"
	"github.com/hammamikhairi/brewctl/internal/logger"
)

// tickInterval is the fixed polling cadence of every routine loop.
const tickInterval = 500 * time.Millisecond

// Func is a control routine. It must return promptly once ctx is
// cancelled, leaving its actuator in a safe state.
type Func func(ctx context.Context, hw domain.Controller, log *logger.Logger, p domain.Params) error

// Registry maps routine names to implementations and binds them to a
// controller and logger.
type Registry struct {
	hw       domain.Controller
	log      *logger.Logger
	routines map[string]Func
}

// NewRegistry creates a registry with the built-in routines registered.
func NewRegistry(hw domain.Controller, log *logger.Logger) *Registry {
	r := &Registry{
		hw:  hw,
		log: log,
		routines: map[string]Func{
			"heat":         heat,
			"cool":         cool,
			"maintain":     maintain,
			"maintainHeat": maintainHeat,
			"maintainCool": maintainCool,
			"pump":         pump,
			"stir":         stir,
		},
	}
	return r
}

// Register adds a custom routine under the given name. Plans reference
// custom routines through their step's task field.
func (r *Registry) Register(name string, fn Func) {
	r.routines[name] = fn
	r.log.Debug("registered routine %q", name)
}

// Has reports whether a routine name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.routines[name]
	return ok
}

// Run executes the named routine synchronously. The caller decides the
// execution context; the task runner calls this from its own goroutine.
func (r *Registry) Run(ctx context.Context, name string, p domain.Params) error {
	fn, ok := r.routines[name]
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownTask, name)
	}
	return fn(ctx, r.hw, r.log, p)
}
