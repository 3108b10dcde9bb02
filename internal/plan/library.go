package plan

import (
	"context"
	"sort"
	"sync"

	"github.com/hammamikhairi/brewctl/internal/domain"
	"github.com/hammamikhairi/brewctl/internal/logger"
)

// Compile-time interface check.
var _ domain.PlanSource = (*MemoryLibrary)(nil)

// MemoryLibrary holds plans in memory, keyed by title. Safe for
// concurrent reads.
type MemoryLibrary struct {
	mu    sync.RWMutex
	plans map[string]*domain.Plan
	log   *logger.Logger
}

// NewMemoryLibrary creates a plan library preloaded with built-in plans.
func NewMemoryLibrary(log *logger.Logger) *MemoryLibrary {
	lib := &MemoryLibrary{
		plans: make(map[string]*domain.Plan),
		log:   log,
	}
	lib.seed()
	return lib
}

// List returns the titles of all available plans, sorted.
func (l *MemoryLibrary) List(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	l.log.Debug("listing plans, count=%d", len(l.plans))

	out := make([]string, 0, len(l.plans))
	for title := range l.plans {
		out = append(out, title)
	}
	sort.Strings(out)
	return out, nil
}

// Get returns a plan by title.
func (l *MemoryLibrary) Get(ctx context.Context, title string) (*domain.Plan, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.plans[title]
	if !ok {
		l.log.Debug("plan not found: %s", title)
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// Add registers an externally loaded plan. Titles must be unique; a
// plan with a known title replaces the previous one.
func (l *MemoryLibrary) Add(p *domain.Plan) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.plans[p.Title] = p
	l.log.Info("plan registered: %s (%d steps)", p.Title, len(p.Steps))
}
