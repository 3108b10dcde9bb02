// Package poller implements the background driver that keeps a run
// moving: it ticks the state machine's Poll, records telemetry, and
// reports transitions to the app layer.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/hammamikhairi/brewctl/internal/domain"
	"github.com/hammamikhairi/brewctl/internal/logger"
	"github.com/hammamikhairi/brewctl/internal/recipe"
	"github.com/hammamikhairi/brewctl/internal/telemetry"
)

// TransitionFunc is called after every observed state or step change.
type TransitionFunc func(prev, cur domain.Status)

// Option configures the poller.
type Option func(*Poller)

// WithTickInterval sets how often the poller invokes Poll.
func WithTickInterval(d time.Duration) Option {
	return func(p *Poller) {
		p.tickInterval = d
	}
}

// WithSampleEvery records a temperature sample every n ticks. n <= 0
// disables sampling.
func WithSampleEvery(n int) Option {
	return func(p *Poller) {
		p.sampleEvery = n
	}
}

// WithTransitionFunc sets the transition callback. Called from the
// poller goroutine; keep it quick.
func WithTransitionFunc(fn TransitionFunc) Option {
	return func(p *Poller) {
		p.onTransition = fn
	}
}

// Poller runs in the background and drives one recipe run. The state
// machine itself never blocks; this is the external driver the poll
// model expects.
type Poller struct {
	rec          *recipe.Recipe
	hw           domain.Controller
	store        telemetry.Store
	log          *logger.Logger
	tickInterval time.Duration
	sampleEvery  int
	onTransition TransitionFunc

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	prev    domain.Status
	ticks   int
}

// New creates a poller for the given run.
func New(rec *recipe.Recipe, hw domain.Controller, store telemetry.Store, log *logger.Logger, opts ...Option) *Poller {
	p := &Poller{
		rec:          rec,
		hw:           hw,
		store:        store,
		log:          log,
		tickInterval: 500 * time.Millisecond,
		sampleEvery:  10,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start begins the background poll loop. Non-blocking.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		p.log.Warn("poller already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true
	p.prev = p.rec.Status()

	go p.loop(childCtx)

	p.log.Info("poller started (tick=%s)", p.tickInterval)
}

// Stop shuts down the poll loop.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	p.cancel()
	p.running = false
	p.log.Info("poller stopped")
}

// loop is the main tick loop.
func (p *Poller) loop(ctx context.Context) {
	ticker := time.NewTicker(p.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// Tick runs one poll cycle by hand. Exposed so tests and headless mode
// can drive the run without real time passing.
func (p *Poller) Tick(ctx context.Context) {
	p.tick(ctx)
}

// tick polls the run, records transitions and samples, and fires the
// callback on change.
func (p *Poller) tick(ctx context.Context) {
	cur := p.rec.Poll()

	p.mu.Lock()
	prev := p.prev
	p.prev = cur
	p.ticks++
	sample := p.sampleEvery > 0 && p.ticks%p.sampleEvery == 0
	p.mu.Unlock()

	if cur.State != prev.State || cur.Step != prev.Step {
		p.log.Debug("run transition: %s/%d -> %s/%d", prev.State, prev.Step, cur.State, cur.Step)
		if err := p.store.RecordEvent(ctx, telemetry.Event{
			At:      time.Now(),
			Plan:    p.rec.Title(),
			Step:    cur.Step,
			State:   cur.State.String(),
			Message: cur.Message,
		}); err != nil {
			p.log.Error("poller: recording event: %v", err)
		}
		if p.onTransition != nil {
			p.onTransition(prev, cur)
		}
	}

	if sample {
		if err := p.store.RecordSample(ctx, telemetry.Sample{
			At:          time.Now(),
			Seconds:     p.hw.Elapsed(),
			Temperature: p.hw.Temperature(),
		}); err != nil {
			p.log.Error("poller: recording sample: %v", err)
		}
	}
}
