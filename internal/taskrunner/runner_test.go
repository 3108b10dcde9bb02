package taskrunner

import (
	"context"
	"errors"
	"testing"

	"github.com/hammamikhairi/brewctl/internal/domain"
	"github.com/hammamikhairi/brewctl/internal/logger"
	"github.com/hammamikhairi/brewctl/internal/routine"
)

func setupRunner(t *testing.T) *Runner {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	reg := routine.NewRegistry(nil, log)

	// quick finishes immediately; block parks until cancelled.
	reg.Register("quick", func(ctx context.Context, hw domain.Controller, log *logger.Logger, p domain.Params) error {
		return nil
	})
	reg.Register("block", func(ctx context.Context, hw domain.Controller, log *logger.Logger, p domain.Params) error {
		<-ctx.Done()
		return ctx.Err()
	})

	return New(context.Background(), reg, log)
}

func TestDispatchAndDone(t *testing.T) {
	r := setupRunner(t)

	if !r.Done() {
		t.Fatal("fresh runner should report done")
	}
	if !r.Dispatch("quick", nil) {
		t.Fatal("dispatch refused on idle runner")
	}
	r.Wait()

	if !r.Done() {
		t.Fatal("runner should be done after the routine returned")
	}
	if err := r.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAtMostOneOutstanding(t *testing.T) {
	r := setupRunner(t)

	if !r.Dispatch("block", nil) {
		t.Fatal("first dispatch refused")
	}
	if r.Done() {
		t.Fatal("runner should not be done while a routine is outstanding")
	}
	if r.Dispatch("quick", nil) {
		t.Fatal("second dispatch accepted while a routine is outstanding")
	}

	r.Cancel()
	r.Wait()

	if !r.Done() {
		t.Fatal("runner should be done after cancel")
	}
	if err := r.Err(); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDispatchAfterCompletion(t *testing.T) {
	r := setupRunner(t)

	r.Dispatch("quick", nil)
	r.Wait()

	if !r.Dispatch("quick", nil) {
		t.Fatal("dispatch refused after previous routine completed")
	}
	r.Wait()
}

func TestUnknownRoutineSurfacesError(t *testing.T) {
	r := setupRunner(t)

	// Dispatch accepts the name; the failure shows up via Err once the
	// goroutine has run.
	if !r.Dispatch("ferment", nil) {
		t.Fatal("dispatch refused")
	}
	r.Wait()

	if !r.Done() {
		t.Fatal("runner should be done after the failed routine")
	}
	if err := r.Err(); !errors.Is(err, domain.ErrUnknownTask) {
		t.Fatalf("expected ErrUnknownTask, got %v", err)
	}
}

func TestParentContextCancelsRoutine(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	reg := routine.NewRegistry(nil, log)
	reg.Register("block", func(ctx context.Context, hw domain.Controller, log *logger.Logger, p domain.Params) error {
		<-ctx.Done()
		return ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	r := New(ctx, reg, log)

	r.Dispatch("block", nil)
	cancel()
	r.Wait()

	if !r.Done() {
		t.Fatal("runner should be done after parent cancel")
	}
}
