package recipe

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/hammamikhairi/brewctl/internal/domain"
	"github.com/hammamikhairi/brewctl/internal/logger"
)

// fakeVessel records the safety-relevant commands the state machine
// issues. Routine-level behavior is covered in the routine package;
// here the controller only has to witness forced shutdowns.
type fakeVessel struct {
	heaterOffs int
	coolerOffs int
}

func (f *fakeVessel) HeaterOn()                                  {}
func (f *fakeVessel) HeaterOff()                                 { f.heaterOffs++ }
func (f *fakeVessel) CoolerOn()                                  {}
func (f *fakeVessel) CoolerOff()                                 { f.coolerOffs++ }
func (f *fakeVessel) StirrerOn()                                 {}
func (f *fakeVessel) StirrerOff()                                {}
func (f *fakeVessel) Dispense(pump string, volumeML float64)     {}
func (f *fakeVessel) Temperature() float64                       { return 20 }
func (f *fakeVessel) Elapsed() float64                           { return 0 }
func (f *fakeVessel) Sleep(ctx context.Context, d time.Duration) {}

// fakeRunner stands in for the task runner so tests control exactly
// when a routine "finishes".
type fakeRunner struct {
	busy       bool // refuse dispatches while set
	done       bool
	dispatched []string
	cancels    int
}

func (f *fakeRunner) Dispatch(name string, p domain.Params) bool {
	if f.busy {
		return false
	}
	f.dispatched = append(f.dispatched, name)
	f.done = false
	return true
}

func (f *fakeRunner) Done() bool { return f.done }
func (f *fakeRunner) Cancel()    { f.cancels++ }

func nextStep(id int) *int { return &id }

// optionsPlan parks on a choice at the entry step.
func optionsPlan() *domain.Plan {
	return &domain.Plan{
		Title: "choice",
		Steps: map[int]domain.Step{
			0: {
				Message:  "Add the hops?",
				BaseTask: domain.TaskHuman,
				Options: []domain.Option{
					{Text: "Yes", Next: 1},
					{Text: "No", Next: 2},
				},
			},
			1: {Message: "Done", Done: true},
			2: {Message: "Skipped", Done: true},
		},
	}
}

// heatPlan dispatches a routine, passes through a message step, and
// finishes.
func heatPlan() *domain.Plan {
	return &domain.Plan{
		Title: "warmup",
		Steps: map[int]domain.Step{
			0: {
				Message:    "Heating to strike temperature.",
				Icon:       domain.IconTemperature,
				Task:       "heat",
				Parameters: domain.Params{"temp": 65.0},
				Next:       nextStep(1),
			},
			1: {Message: "Mash is underway.", BaseTask: domain.TaskHuman, Next: nextStep(2)},
			2: {Message: "All done.", Done: true},
		},
	}
}

func setupRun(t *testing.T, p *domain.Plan) (*Recipe, *fakeVessel, *fakeRunner) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	hw := &fakeVessel{}
	runner := &fakeRunner{done: true}
	return New(p, hw, runner, log), hw, runner
}

func TestStartDispatchesFirstRoutine(t *testing.T) {
	rec, _, runner := setupRun(t, heatPlan())

	if err := rec.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	st := rec.Status()
	if st.State != domain.RunRunning {
		t.Fatalf("expected running, got %s", st.State)
	}
	if st.Step != 0 {
		t.Fatalf("expected step 0, got %d", st.Step)
	}
	if st.Message != "Heating to strike temperature." {
		t.Fatalf("unexpected message %q", st.Message)
	}
	if st.Icon != domain.IconTemperature {
		t.Fatalf("unexpected icon %q", st.Icon)
	}
	if len(runner.dispatched) != 1 || runner.dispatched[0] != "heat" {
		t.Fatalf("expected heat dispatched, got %v", runner.dispatched)
	}
}

func TestStartWithOptions(t *testing.T) {
	rec, _, runner := setupRun(t, optionsPlan())

	if err := rec.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	st := rec.Status()
	if st.State != domain.RunUserInput {
		t.Fatalf("expected user_input, got %s", st.State)
	}
	if len(st.Options) != 2 || st.Options[0] != "Yes" || st.Options[1] != "No" {
		t.Fatalf("unexpected options %v", st.Options)
	}
	if len(runner.dispatched) != 0 {
		t.Fatalf("no routine should be dispatched for a choice step, got %v", runner.dispatched)
	}
}

func TestSelectOption(t *testing.T) {
	rec, hw, _ := setupRun(t, optionsPlan())
	rec.Start()

	msg, err := rec.SelectOption("Yes")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if msg != "Done" {
		t.Fatalf("expected message %q, got %q", "Done", msg)
	}

	st := rec.Status()
	if st.State != domain.RunComplete {
		t.Fatalf("expected complete, got %s", st.State)
	}
	if st.Step != 1 {
		t.Fatalf("expected step 1, got %d", st.Step)
	}
	// Completion converges the hardware to off.
	if hw.heaterOffs == 0 || hw.coolerOffs == 0 {
		t.Fatal("expected heater and cooler commanded off on completion")
	}
}

func TestSelectOptionInvalid(t *testing.T) {
	rec, _, _ := setupRun(t, optionsPlan())
	rec.Start()

	before := rec.Status()

	// Invalid input changes nothing, however often it is retried.
	for i := 0; i < 3; i++ {
		_, err := rec.SelectOption("Maybe")
		if !errors.Is(err, domain.ErrInvalidOption) {
			t.Fatalf("expected ErrInvalidOption, got %v", err)
		}
		if got := rec.Status(); !reflect.DeepEqual(got, before) {
			t.Fatalf("status changed on invalid option: %+v != %+v", got, before)
		}
	}

	// A valid choice still works afterwards.
	if _, err := rec.SelectOption("No"); err != nil {
		t.Fatalf("select after retries: %v", err)
	}
	if st := rec.Status(); st.Step != 2 {
		t.Fatalf("expected step 2, got %d", st.Step)
	}
}

func TestSelectOptionWhenNotWaiting(t *testing.T) {
	rec, _, _ := setupRun(t, heatPlan())
	rec.Start()

	if _, err := rec.SelectOption("Yes"); !errors.Is(err, domain.ErrNoUserInput) {
		t.Fatalf("expected ErrNoUserInput, got %v", err)
	}
}

func TestPollNoopUnlessRunning(t *testing.T) {
	rec, _, _ := setupRun(t, optionsPlan())

	// Idle.
	before := rec.Status()
	if got := rec.Poll(); !reflect.DeepEqual(got, before) {
		t.Fatalf("poll changed an idle run: %+v != %+v", got, before)
	}

	// Waiting for input.
	rec.Start()
	before = rec.Status()
	if got := rec.Poll(); !reflect.DeepEqual(got, before) {
		t.Fatalf("poll changed a waiting run: %+v != %+v", got, before)
	}
}

func TestPollAdvancesWhenRoutineFinishes(t *testing.T) {
	rec, _, runner := setupRun(t, heatPlan())
	rec.Start()

	// The heat routine is still running: poll holds position.
	st := rec.Poll()
	if st.Step != 0 || st.State != domain.RunRunning {
		t.Fatalf("expected to hold step 0 running, got step %d %s", st.Step, st.State)
	}

	// Routine finishes: poll advances to the pass-through step.
	runner.done = true
	st = rec.Poll()
	if st.Step != 1 || st.State != domain.RunRunning {
		t.Fatalf("expected step 1 running, got step %d %s", st.Step, st.State)
	}
	if st.Message != "Mash is underway." {
		t.Fatalf("unexpected message %q", st.Message)
	}

	// Nothing to wait for on a pass-through step: the next poll
	// finishes the run.
	st = rec.Poll()
	if st.Step != 2 || st.State != domain.RunComplete {
		t.Fatalf("expected step 2 complete, got step %d %s", st.Step, st.State)
	}
	if st.Message != "All done." {
		t.Fatalf("unexpected message %q", st.Message)
	}
}

func TestDispatchConflict(t *testing.T) {
	rec, _, runner := setupRun(t, heatPlan())
	runner.busy = true

	err := rec.Start()
	if !errors.Is(err, domain.ErrTaskBusy) {
		t.Fatalf("expected ErrTaskBusy, got %v", err)
	}

	st := rec.Status()
	if st.State != domain.RunError {
		t.Fatalf("expected error state, got %s", st.State)
	}
	if st.Message != "Internal error. Task already running." {
		t.Fatalf("unexpected message %q", st.Message)
	}
}

func TestDoneStepWithRoutineCompletesImmediately(t *testing.T) {
	p := &domain.Plan{
		Title: "dose",
		Steps: map[int]domain.Step{
			0: {
				Message:    "Dosing and finishing.",
				Task:       "pump",
				Parameters: domain.Params{"pump": "b", "volume": 30.0},
				Done:       true,
			},
		},
	}
	rec, _, runner := setupRun(t, p)

	if err := rec.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Done is declared on visiting the step even though the routine was
	// only just dispatched.
	st := rec.Status()
	if st.State != domain.RunComplete {
		t.Fatalf("expected complete, got %s", st.State)
	}
	if len(runner.dispatched) != 1 || runner.dispatched[0] != "pump" {
		t.Fatalf("expected pump dispatched, got %v", runner.dispatched)
	}
}

func TestStopClearsRun(t *testing.T) {
	rec, hw, runner := setupRun(t, heatPlan())
	rec.Start()

	rec.Stop()

	st := rec.Status()
	if st.State != domain.RunIdle {
		t.Fatalf("expected idle, got %s", st.State)
	}
	if st.Step != -1 {
		t.Fatalf("expected step -1, got %d", st.Step)
	}
	if st.Message != "" || len(st.Options) != 0 || st.Time != 0 {
		t.Fatalf("expected cleared message/options/time, got %+v", st)
	}
	// The icon deliberately survives a stop.
	if st.Icon != domain.IconTemperature {
		t.Fatalf("expected icon to persist, got %q", st.Icon)
	}
	if runner.cancels != 1 {
		t.Fatalf("expected 1 cancel, got %d", runner.cancels)
	}
	if hw.heaterOffs == 0 || hw.coolerOffs == 0 {
		t.Fatal("expected heater and cooler commanded off on stop")
	}
}

func TestIconCarriesForward(t *testing.T) {
	rec, _, runner := setupRun(t, heatPlan())
	rec.Start()

	runner.done = true
	st := rec.Poll() // step 1 sets no icon
	if st.Icon != domain.IconTemperature {
		t.Fatalf("expected icon to carry forward, got %q", st.Icon)
	}
}

func TestStepTimeSurfaced(t *testing.T) {
	p := &domain.Plan{
		Title: "rest",
		Steps: map[int]domain.Step{
			0: {
				Message:    "Holding.",
				Task:       "maintainHeat",
				Parameters: domain.Params{"time": 120.0, "temp": 65.0, "tolerance": 1.0},
				Next:       nextStep(1),
			},
			1: {Message: "Rest over.", BaseTask: domain.TaskHuman, Next: nextStep(2)},
			2: {Message: "Done.", Done: true},
		},
	}
	rec, _, runner := setupRun(t, p)
	rec.Start()

	if st := rec.Status(); st.Time != 120 {
		t.Fatalf("expected step time 120, got %g", st.Time)
	}

	// Time is not sticky: the next step has none.
	runner.done = true
	if st := rec.Poll(); st.Time != 0 {
		t.Fatalf("expected step time 0, got %g", st.Time)
	}
}
