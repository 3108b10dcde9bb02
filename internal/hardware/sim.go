// Package hardware provides vessel controller implementations. The only
// implementation in-tree is a simulated vessel; physical drivers live
// behind the same domain.Controller port.
package hardware

import (
	"context"
	"sync"
	"time"

	"github.com/hammamikhairi/brewctl/internal/domain"
	"github.com/hammamikhairi/brewctl/internal/logger"
)

// Compile-time interface check.
var _ domain.Controller = (*Sim)(nil)

// Option configures the simulator.
type Option func(*Sim)

// WithStartTemperature sets the initial vessel temperature in °C.
func WithStartTemperature(t float64) Option {
	return func(s *Sim) {
		s.temp = t
	}
}

// WithAmbient sets the ambient temperature the vessel leaks toward.
func WithAmbient(t float64) Option {
	return func(s *Sim) {
		s.ambient = t
	}
}

// WithRates sets heater and cooler power in °C per simulated second.
func WithRates(heat, cool float64) Option {
	return func(s *Sim) {
		s.heaterRate = heat
		s.coolerRate = cool
	}
}

// WithTimeScale makes Sleep pass n simulated seconds per real second.
// n <= 0 disables real sleeping entirely: Sleep returns immediately and
// only the simulated clock advances. That mode is what tests and
// dry runs use.
func WithTimeScale(n float64) Option {
	return func(s *Sim) {
		s.timeScale = n
	}
}

// Sim is a deterministic first-order thermal model of the vessel. The
// simulated clock advances only inside Sleep, so a routine's ticks are
// the sole driver of time; runs are reproducible regardless of host
// scheduling. Safe for concurrent use.
type Sim struct {
	mu  sync.Mutex
	log *logger.Logger

	timeScale  float64 // simulated seconds per real second; <=0: no real sleep
	now        float64 // simulated seconds since start
	temp       float64
	ambient    float64
	heaterRate float64 // °C/s while the heater is on
	coolerRate float64 // °C/s while the cooler is on
	leakRate   float64 // fraction/s of the gap to ambient closed by leakage

	heater  bool
	cooler  bool
	stirrer bool

	dispensed map[string]float64
}

// NewSim creates a simulated vessel at ambient temperature.
func NewSim(log *logger.Logger, opts ...Option) *Sim {
	s := &Sim{
		log:        log,
		timeScale:  1,
		temp:       20,
		ambient:    20,
		heaterRate: 0.5,
		coolerRate: 0.3,
		leakRate:   0.005,
		dispensed:  make(map[string]float64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HeaterOn switches the heater on. Idempotent.
func (s *Sim) HeaterOn() { s.setActuator(&s.heater, true, "heater") }

// HeaterOff switches the heater off. Idempotent.
func (s *Sim) HeaterOff() { s.setActuator(&s.heater, false, "heater") }

// CoolerOn switches the cooler on. Idempotent.
func (s *Sim) CoolerOn() { s.setActuator(&s.cooler, true, "cooler") }

// CoolerOff switches the cooler off. Idempotent.
func (s *Sim) CoolerOff() { s.setActuator(&s.cooler, false, "cooler") }

// StirrerOn switches the stirrer on. Idempotent.
func (s *Sim) StirrerOn() { s.setActuator(&s.stirrer, true, "stirrer") }

// StirrerOff switches the stirrer off. Idempotent.
func (s *Sim) StirrerOff() { s.setActuator(&s.stirrer, false, "stirrer") }

func (s *Sim) setActuator(field *bool, on bool, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if *field == on {
		return
	}
	*field = on
	state := "off"
	if on {
		state = "on"
	}
	s.log.Debug("sim: %s %s at t=%.1fs (%.2f°C)", name, state, s.now, s.temp)
}

// Dispense records a pump dispense. The simulator tracks cumulative
// volume per pump so tests and the run log can inspect it.
func (s *Sim) Dispense(pump string, volumeML float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dispensed[pump] += volumeML
	s.log.Debug("sim: pump %s dispensed %.1f ml (total %.1f ml)", pump, volumeML, s.dispensed[pump])
}

// Temperature returns the current vessel temperature.
func (s *Sim) Temperature() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.temp
}

// Elapsed returns simulated seconds since start.
func (s *Sim) Elapsed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Sleep advances the simulated clock by d and, when a time scale is
// set, paces it against real time. Returns early if ctx is cancelled;
// the simulated clock still advances so elapsed-time loops terminate.
func (s *Sim) Sleep(ctx context.Context, d time.Duration) {
	if s.timeScale > 0 && ctx.Err() == nil {
		real := time.Duration(float64(d) / s.timeScale)
		select {
		case <-ctx.Done():
		case <-time.After(real):
		}
	}
	s.advance(d.Seconds())
}

// advance applies the thermal model over dt simulated seconds.
func (s *Sim) advance(dt float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.now += dt
	if s.heater {
		s.temp += s.heaterRate * dt
	}
	if s.cooler {
		s.temp -= s.coolerRate * dt
	}
	// Passive leakage toward ambient.
	s.temp += (s.ambient - s.temp) * s.leakRate * dt
}

// Heater reports whether the heater is commanded on.
func (s *Sim) Heater() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.heater
}

// Cooler reports whether the cooler is commanded on.
func (s *Sim) Cooler() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cooler
}

// Stirrer reports whether the stirrer is commanded on.
func (s *Sim) Stirrer() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stirrer
}

// Dispensed returns the cumulative volume dispensed by a pump.
func (s *Sim) Dispensed(pump string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispensed[pump]
}
