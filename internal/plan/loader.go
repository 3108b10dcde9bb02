// Package plan provides plan loading, validation, and plan sources.
package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/hammamikhairi/brewctl/internal/domain"
)

// planDoc is the on-disk shape of a plan. JSON object keys are strings,
// so step ids arrive as strings and are converted to ints on load.
type planDoc struct {
	Title string                 `json:"title"`
	Steps map[string]domain.Step `json:"steps"`
}

// LoadFile reads, parses, and validates a plan JSON file. known reports
// whether a routine name is registered; see Validate.
func LoadFile(path string, known func(string) bool) (*domain.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}
	return Load(data, known)
}

// Load parses plan JSON bytes and validates the result.
func Load(data []byte, known func(string) bool) (*domain.Plan, error) {
	var doc planDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing plan JSON: %w", err)
	}

	p := &domain.Plan{
		Title: doc.Title,
		Steps: make(map[int]domain.Step, len(doc.Steps)),
	}
	for key, step := range doc.Steps {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("step id %q is not an integer", key)
		}
		if _, dup := p.Steps[id]; dup {
			return nil, fmt.Errorf("duplicate step id %d", id)
		}
		p.Steps[id] = step
	}

	if err := Validate(p, known); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks a plan for structural correctness so that reference
// errors surface at load time instead of mid-run:
//
//   - the plan has a title and at least one step, including entry step 0
//   - every next and option target resolves to an existing step
//   - every named routine is known (the humanTask sentinel always is)
//   - every step has at least one way out: options, a next target, or
//     the done flag
//
// known may be nil to skip the routine-name check (plan tooling that has
// no registry at hand).
func Validate(p *domain.Plan, known func(string) bool) error {
	if p.Title == "" {
		return fmt.Errorf("plan has no title")
	}
	if len(p.Steps) == 0 {
		return fmt.Errorf("plan %q has no steps", p.Title)
	}
	if _, ok := p.Steps[0]; !ok {
		return fmt.Errorf("plan %q has no entry step 0", p.Title)
	}

	for id, step := range p.Steps {
		if step.Message == "" {
			return fmt.Errorf("step %d has no message", id)
		}

		if step.Next != nil {
			if _, ok := p.Steps[*step.Next]; !ok {
				return fmt.Errorf("step %d: next references unknown step %d", id, *step.Next)
			}
		}
		for _, opt := range step.Options {
			if opt.Text == "" {
				return fmt.Errorf("step %d has an option with no text", id)
			}
			if _, ok := p.Steps[opt.Next]; !ok {
				return fmt.Errorf("step %d: option %q references unknown step %d", id, opt.Text, opt.Next)
			}
		}

		if name := step.Routine(); name != "" && name != domain.TaskHuman {
			if known != nil && !known(name) {
				return fmt.Errorf("step %d: unknown routine %q", id, name)
			}
		}

		if len(step.Options) == 0 && step.Next == nil && !step.Done {
			return fmt.Errorf("step %d has no options, no next, and no done flag", id)
		}
	}
	return nil
}
