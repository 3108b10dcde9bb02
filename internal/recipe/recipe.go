// Package recipe implements the step-advancement state machine that
// walks a plan graph, dispatching control routines and collecting user
// choices along the way.
package recipe

import (
	"fmt"
	"sync"

	"github.com/hammamikhairi/brewctl/internal/domain"
	"github.com/hammamikhairi/brewctl/internal/logger"
)

// Recipe owns the mutable state of one plan traversal. It never blocks:
// routines run through the task runner, and an external driver calls
// Poll repeatedly to observe their completion and advance the run.
// Safe for concurrent use; one instance must own the controller.
type Recipe struct {
	plan   *domain.Plan
	hw     domain.Controller
	runner domain.TaskRunner
	log    *logger.Logger

	mu      sync.Mutex
	step    int
	state   domain.RunState
	message string
	options []string
	// icon carries forward across steps that don't set one.
	icon string
	// stepTime is the current step's parameters.time, for display.
	stepTime float64
}

// New creates an idle run over a validated plan. The plan must have
// passed plan.Validate; the state machine trusts its references.
func New(p *domain.Plan, hw domain.Controller, runner domain.TaskRunner, log *logger.Logger) *Recipe {
	return &Recipe{
		plan:   p,
		hw:     hw,
		runner: runner,
		log:    log,
		step:   -1,
		state:  domain.RunIdle,
	}
}

// Title returns the plan's display name.
func (r *Recipe) Title() string { return r.plan.Title }

// Start resets the run to the entry step and executes it. It may be
// called from any state; a routine left outstanding by a previous run
// will make the first dispatch fail with an error status.
func (r *Recipe) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.Info("starting plan %q", r.plan.Title)
	r.step = 0
	return r.runStep()
}

// Stop unconditionally cancels progress: the run returns to idle,
// message/options/time clear, and heater and cooler are commanded off
// as a fail-safe. The outstanding routine, if any, is signalled to
// cancel; it may still take one tick to observe that, which is why the
// hardware is converged to off here rather than left to the routine.
func (r *Recipe) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log.Info("stopping plan %q", r.plan.Title)
	r.step = -1
	r.state = domain.RunIdle
	r.message = ""
	r.options = nil
	r.stepTime = 0

	r.runner.Cancel()
	r.hw.HeaterOff()
	r.hw.CoolerOff()
}

// Status returns a snapshot of the run. No side effects.
func (r *Recipe) Status() domain.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

// Poll drives the run forward. While a routine is outstanding it does
// nothing; once the routine completes, a done-flagged step finishes the
// run (with the same safety shutdown as Stop, but keeping the final
// message visible) and any other step advances to its successor.
// Calling Poll in any state other than running is a pure no-op that
// returns the current status.
func (r *Recipe) Poll() domain.Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != domain.RunRunning {
		return r.snapshot()
	}
	if !r.runner.Done() {
		return r.snapshot()
	}

	current := r.plan.Steps[r.step]
	if current.Done {
		r.log.Info("plan %q complete at step %d", r.plan.Title, r.step)
		r.state = domain.RunComplete
		r.hw.HeaterOff()
		r.hw.CoolerOff()
		return r.snapshot()
	}

	if current.Next != nil {
		r.step = *current.Next
		r.runStep()
	}
	return r.snapshot()
}

// SelectOption resolves the user's choice on a user_input step. The
// text must match one of the offered options exactly; on a match the
// run moves to that option's step and executes it, returning the
// updated message. Invalid input changes nothing and is safe to retry.
func (r *Recipe) SelectOption(choice string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != domain.RunUserInput {
		return "", domain.ErrNoUserInput
	}

	current := r.plan.Steps[r.step]
	found := false
	for _, opt := range current.Options {
		if opt.Text == choice {
			r.step = opt.Next
			found = true
			break
		}
	}
	if !found {
		r.log.Debug("invalid option %q on step %d", choice, r.step)
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidOption, choice)
	}

	if err := r.runStep(); err != nil {
		return r.message, err
	}
	return r.message, nil
}

// runStep executes the step the run currently points at. Calling it
// twice for the same step executes that step twice; advancement is the
// caller's responsibility. r.mu must be held.
func (r *Recipe) runStep() error {
	step, ok := r.plan.Steps[r.step]
	if !ok {
		// Unreachable after plan.Validate; fail loudly, not silently.
		r.state = domain.RunError
		r.message = fmt.Sprintf("Internal error. Step %d is not in the plan.", r.step)
		r.log.Error("step %d missing from plan %q", r.step, r.plan.Title)
		return fmt.Errorf("%w: step %d", domain.ErrNotFound, r.step)
	}

	r.log.Info("running step %d: %s", r.step, step.Message)
	r.message = step.Message

	options := make([]string, 0, len(step.Options))
	for _, opt := range step.Options {
		options = append(options, opt.Text)
	}
	r.options = options

	// Sticky default: keep showing the previous icon when the step has
	// none of its own.
	if step.Icon != "" {
		r.icon = step.Icon
	}

	switch {
	case len(options) > 0:
		// Options take priority over dispatch. A step carrying both is
		// a configuration smell; it parks for input and the routine
		// never starts.
		r.state = domain.RunUserInput
	default:
		if name := step.Routine(); name != "" && name != domain.TaskHuman {
			if r.runner.Dispatch(name, step.Parameters) {
				r.state = domain.RunRunning
			} else {
				r.state = domain.RunError
				r.message = "Internal error. Task already running."
				return domain.ErrTaskBusy
			}
		} else {
			// Pure pass-through message step: nothing to wait for, so
			// the next Poll advances straight through it.
			r.state = domain.RunRunning
		}
	}

	// Surface parameters.time for progress display; not sticky, unlike
	// the icon.
	r.stepTime = 0
	switch t := step.Parameters["time"].(type) {
	case float64:
		r.stepTime = t
	case int:
		r.stepTime = float64(t)
	}

	// Done is declared on visiting the step, even when a routine was
	// just dispatched and has not finished. Downstream consumers rely
	// on that; see the package tests. Completion converges the
	// hardware to off like Stop does, but keeps the final message and
	// options visible.
	if step.Done {
		r.state = domain.RunComplete
		r.hw.HeaterOff()
		r.hw.CoolerOff()
		r.log.Info("plan %q complete at step %d", r.plan.Title, r.step)
	}

	return nil
}

// snapshot builds a Status copy. r.mu must be held.
func (r *Recipe) snapshot() domain.Status {
	options := make([]string, len(r.options))
	copy(options, r.options)
	return domain.Status{
		State:   r.state,
		Step:    r.step,
		Message: r.message,
		Options: options,
		Icon:    r.icon,
		Time:    r.stepTime,
	}
}
