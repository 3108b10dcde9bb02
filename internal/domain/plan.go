// Package domain defines the core types and interfaces for the vessel
// controller. All other packages depend on domain; domain depends on nothing.
package domain

// Plan is a static, externally authored step graph describing a recipe.
// Plans are immutable once loaded; a run never mutates its plan.
type Plan struct {
	// Title is the unique display name of the recipe.
	Title string `json:"title"`
	// Steps maps step id to step. Ids are unique but need not be
	// contiguous; steps reference each other through Next and Options.
	Steps map[int]Step `json:"steps"`
}

// Step is one node of the plan graph.
type Step struct {
	// Message is shown to the user while this step is active. Even a
	// fully automatic step should say what the rig is doing.
	Message string `json:"message"`
	// Icon is an optional display hint. When empty the previously
	// displayed icon persists.
	Icon string `json:"icon,omitempty"`
	// Next is the id of the successor step. Ignored when Options is
	// non-empty. Nil means the step has no automatic successor.
	Next *int `json:"next,omitempty"`
	// Options, when non-empty, make the step wait for a user choice
	// instead of advancing automatically.
	Options []Option `json:"options,omitempty"`
	// Task, when set, overrides BaseTask as the routine name.
	Task string `json:"task,omitempty"`
	// BaseTask names the control routine to invoke. The sentinel
	// TaskHuman means no routine runs (pure message/options step).
	BaseTask string `json:"baseTask,omitempty"`
	// Parameters are passed verbatim to the invoked routine.
	Parameters Params `json:"parameters,omitempty"`
	// Done marks the recipe complete when this step executes.
	Done bool `json:"done,omitempty"`
}

// Option is one user-selectable choice on a step.
type Option struct {
	// Text is displayed to the user and must be echoed back exactly
	// to select this option.
	Text string `json:"text"`
	// Next is the id of the step executed when this option is picked.
	Next int `json:"next"`
}

// Params is the free-form parameter mapping passed to a control routine.
type Params map[string]any

// TaskHuman is the sentinel routine name for steps that only display a
// message or collect a choice. No routine is dispatched for it.
const TaskHuman = "humanTask"

// Routine selects the routine name for a step: Task wins over BaseTask.
func (s Step) Routine() string {
	if s.Task != "" {
		return s.Task
	}
	return s.BaseTask
}

// Icon names understood by the display layer. A plan may use others;
// unknown icons render as plain text.
const (
	IconReactionChamber  = "reaction_chamber"
	IconLoadSyringe      = "load_syringe"
	IconInspect          = "inspect"
	IconDispensing       = "dispensing"
	IconTemperature      = "temperature"
	IconReactionComplete = "reaction_complete"
)
