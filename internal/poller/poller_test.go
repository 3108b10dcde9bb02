package poller

import (
	"context"
	"testing"

	"github.com/hammamikhairi/brewctl/internal/domain"
	"github.com/hammamikhairi/brewctl/internal/hardware"
	"github.com/hammamikhairi/brewctl/internal/logger"
	"github.com/hammamikhairi/brewctl/internal/recipe"
	"github.com/hammamikhairi/brewctl/internal/routine"
	"github.com/hammamikhairi/brewctl/internal/taskrunner"
	"github.com/hammamikhairi/brewctl/internal/telemetry"
)

type transition struct {
	prev, cur domain.Status
}

func next(id int) *int { return &id }

// passThroughPlan completes in one poll without dispatching a routine.
func passThroughPlan() *domain.Plan {
	return &domain.Plan{
		Title: "walkthrough",
		Steps: map[int]domain.Step{
			0: {Message: "Getting ready.", BaseTask: domain.TaskHuman, Next: next(1)},
			1: {Message: "All done.", Done: true},
		},
	}
}

func setupPoller(t *testing.T, opts ...Option) (*Poller, *recipe.Recipe, *telemetry.MemoryStore, *[]transition) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)

	sim := hardware.NewSim(log, hardware.WithTimeScale(0))
	reg := routine.NewRegistry(sim, log)
	runner := taskrunner.New(context.Background(), reg, log)
	rec := recipe.New(passThroughPlan(), sim, runner, log)
	store := telemetry.NewMemoryStore(log)

	var transitions []transition
	opts = append([]Option{
		WithSampleEvery(1),
		WithTransitionFunc(func(prev, cur domain.Status) {
			transitions = append(transitions, transition{prev, cur})
		}),
	}, opts...)

	return New(rec, sim, store, log, opts...), rec, store, &transitions
}

func TestTickRecordsTransition(t *testing.T) {
	p, rec, store, transitions := setupPoller(t)
	ctx := context.Background()

	if err := rec.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	// The entry step is pure pass-through, so one tick walks the run
	// through to completion.
	p.Tick(ctx)

	if st := rec.Status(); st.State != domain.RunComplete {
		t.Fatalf("expected complete, got %s", st.State)
	}

	events, err := store.RecentEvents(ctx, 10)
	if err != nil {
		t.Fatalf("recent events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].State != "complete" || events[0].Step != 1 {
		t.Fatalf("unexpected event %+v", events[0])
	}
	if events[0].Plan != "walkthrough" {
		t.Fatalf("unexpected plan %q", events[0].Plan)
	}

	if len(*transitions) != 1 {
		t.Fatalf("expected 1 transition callback, got %d", len(*transitions))
	}
	if (*transitions)[0].cur.State != domain.RunComplete {
		t.Fatalf("unexpected transition %+v", (*transitions)[0])
	}
}

func TestTickIsQuietWithoutChange(t *testing.T) {
	p, rec, store, transitions := setupPoller(t)
	ctx := context.Background()

	rec.Start()
	p.Tick(ctx)
	before := len(*transitions)

	// Completed run: further ticks observe no change.
	p.Tick(ctx)
	p.Tick(ctx)

	events, _ := store.RecentEvents(ctx, 10)
	if len(events) != 1 {
		t.Fatalf("expected 1 event after repeated ticks, got %d", len(events))
	}
	if len(*transitions) != before {
		t.Fatalf("expected no further callbacks, got %d", len(*transitions)-before)
	}
}

func TestTickSamplesTemperature(t *testing.T) {
	p, rec, store, _ := setupPoller(t)
	ctx := context.Background()

	rec.Start()
	p.Tick(ctx)
	p.Tick(ctx)
	p.Tick(ctx)

	samples, err := store.RecentSamples(ctx, 10)
	if err != nil {
		t.Fatalf("recent samples: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("expected a sample per tick, got %d", len(samples))
	}
	if samples[0].Temperature != 20 {
		t.Fatalf("expected ambient reading, got %g", samples[0].Temperature)
	}
}

func TestSamplingDisabled(t *testing.T) {
	p, rec, store, _ := setupPoller(t, WithSampleEvery(0))
	ctx := context.Background()

	rec.Start()
	p.Tick(ctx)
	p.Tick(ctx)

	samples, _ := store.RecentSamples(ctx, 10)
	if len(samples) != 0 {
		t.Fatalf("expected no samples, got %d", len(samples))
	}
}

func TestStartStop(t *testing.T) {
	p, _, _, _ := setupPoller(t)
	ctx := context.Background()

	p.Start(ctx)
	p.Start(ctx) // second start is a no-op
	p.Stop()
	p.Stop() // second stop is a no-op
}
