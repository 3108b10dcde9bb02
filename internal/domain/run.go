package domain

// RunState tracks the lifecycle of a recipe run.
type RunState int

const (
	// RunIdle means no recipe is in progress.
	RunIdle RunState = iota
	// RunRunning means a step is executing and needs no user input.
	RunRunning
	// RunUserInput means the run is parked on a step waiting for the
	// user to pick one of the offered options.
	RunUserInput
	// RunComplete means the recipe finished successfully.
	RunComplete
	// RunError means an internal invariant was violated, e.g. a
	// routine was dispatched while one was still outstanding.
	RunError
)

// String returns the wire-level status name.
func (s RunState) String() string {
	switch s {
	case RunIdle:
		return "idle"
	case RunRunning:
		return "running"
	case RunUserInput:
		return "user_input"
	case RunComplete:
		return "complete"
	case RunError:
		return "error"
	default:
		return "unknown"
	}
}

// Status is the UI-facing snapshot of a run. It is a value copy; the
// caller may hold it without racing the state machine.
type Status struct {
	State RunState `json:"status"`
	// Step is the id of the step whose execution completed or is in
	// progress. -1 while idle.
	Step    int      `json:"step"`
	Message string   `json:"message"`
	Options []string `json:"options"`
	// Icon carries forward from earlier steps when the current step
	// does not set one.
	Icon string `json:"icon"`
	// Time is the current step's parameters.time in seconds, surfaced
	// for progress display. Zero when the step has none.
	Time float64 `json:"time"`
}
