package hardware

import (
	"context"
	"testing"
	"time"

	"github.com/hammamikhairi/brewctl/internal/logger"
)

func setupSim(t *testing.T, opts ...Option) *Sim {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	opts = append([]Option{WithTimeScale(0)}, opts...)
	return NewSim(log, opts...)
}

func TestSleepAdvancesClock(t *testing.T) {
	s := setupSim(t)
	ctx := context.Background()

	if s.Elapsed() != 0 {
		t.Fatalf("expected elapsed 0, got %g", s.Elapsed())
	}
	s.Sleep(ctx, 500*time.Millisecond)
	s.Sleep(ctx, 500*time.Millisecond)
	if got := s.Elapsed(); got != 1 {
		t.Fatalf("expected elapsed 1s, got %g", got)
	}
}

func TestSleepAdvancesClockWhenCancelled(t *testing.T) {
	s := setupSim(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Elapsed-time loops must still terminate after cancellation.
	s.Sleep(ctx, 2*time.Second)
	if got := s.Elapsed(); got != 2 {
		t.Fatalf("expected elapsed 2s, got %g", got)
	}
}

func TestHeaterRaisesTemperature(t *testing.T) {
	s := setupSim(t, WithStartTemperature(20), WithAmbient(20), WithRates(1, 1))
	ctx := context.Background()

	s.HeaterOn()
	s.Sleep(ctx, 10*time.Second)
	s.HeaterOff()

	got := s.Temperature()
	// 1°C/s for 10s, minus a little ambient leakage.
	if got <= 28 || got >= 30 {
		t.Fatalf("expected temperature near 29.5°C, got %g", got)
	}
}

func TestCoolerLowersTemperature(t *testing.T) {
	s := setupSim(t, WithStartTemperature(20), WithAmbient(20), WithRates(1, 1))
	ctx := context.Background()

	s.CoolerOn()
	s.Sleep(ctx, 10*time.Second)
	s.CoolerOff()

	if got := s.Temperature(); got >= 12 {
		t.Fatalf("expected temperature well below start, got %g", got)
	}
}

func TestLeakTowardAmbient(t *testing.T) {
	s := setupSim(t, WithStartTemperature(60), WithAmbient(20))
	ctx := context.Background()

	s.Sleep(ctx, 10*time.Second)

	got := s.Temperature()
	if got >= 60 {
		t.Fatalf("expected passive cooling below 60°C, got %g", got)
	}
	if got <= 20 {
		t.Fatalf("leakage overshot ambient: %g", got)
	}
}

func TestActuatorFlags(t *testing.T) {
	s := setupSim(t)

	if s.Heater() || s.Cooler() || s.Stirrer() {
		t.Fatal("actuators should start off")
	}

	s.HeaterOn()
	s.HeaterOn() // idempotent
	s.CoolerOn()
	s.StirrerOn()
	if !s.Heater() || !s.Cooler() || !s.Stirrer() {
		t.Fatal("actuators should be on")
	}

	s.HeaterOff()
	s.CoolerOff()
	s.StirrerOff()
	if s.Heater() || s.Cooler() || s.Stirrer() {
		t.Fatal("actuators should be off")
	}
}

func TestDispenseAccumulates(t *testing.T) {
	s := setupSim(t)

	s.Dispense("a", 500)
	s.Dispense("a", 250)
	s.Dispense("b", 30)

	if got := s.Dispensed("a"); got != 750 {
		t.Fatalf("expected pump a total 750, got %g", got)
	}
	if got := s.Dispensed("b"); got != 30 {
		t.Fatalf("expected pump b total 30, got %g", got)
	}
	if got := s.Dispensed("c"); got != 0 {
		t.Fatalf("expected pump c total 0, got %g", got)
	}
}
