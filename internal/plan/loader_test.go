package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hammamikhairi/brewctl/internal/domain"
)

// knownRoutines mirrors the built-in routine names without dragging the
// registry into this package's tests.
func knownRoutines(name string) bool {
	switch name {
	case "heat", "cool", "maintain", "maintainHeat", "maintainCool", "pump", "stir":
		return true
	}
	return false
}

const validPlanJSON = `{
	"title": "Test Brew",
	"steps": {
		"0": {
			"message": "Heating.",
			"icon": "temperature",
			"task": "heat",
			"parameters": {"temp": 66},
			"next": 1
		},
		"1": {
			"message": "Grain in?",
			"baseTask": "humanTask",
			"options": [
				{"text": "Yes", "next": 2},
				{"text": "Not yet", "next": 1}
			]
		},
		"2": {"message": "Done.", "done": true}
	}
}`

func TestLoadValidPlan(t *testing.T) {
	p, err := Load([]byte(validPlanJSON), knownRoutines)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if p.Title != "Test Brew" {
		t.Fatalf("unexpected title %q", p.Title)
	}
	if len(p.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(p.Steps))
	}

	entry := p.Steps[0]
	if entry.Routine() != "heat" {
		t.Fatalf("expected heat routine, got %q", entry.Routine())
	}
	if entry.Next == nil || *entry.Next != 1 {
		t.Fatalf("expected next 1, got %v", entry.Next)
	}
	// JSON numbers arrive as float64.
	if temp, ok := entry.Parameters["temp"].(float64); !ok || temp != 66 {
		t.Fatalf("expected temp 66, got %v", entry.Parameters["temp"])
	}

	choice := p.Steps[1]
	if len(choice.Options) != 2 || choice.Options[0].Text != "Yes" {
		t.Fatalf("unexpected options %v", choice.Options)
	}
	if !p.Steps[2].Done {
		t.Fatal("expected final step done")
	}
}

func TestLoadRejectsBrokenPlans(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"invalid json", `{"title": "x", "steps": `},
		{"non-integer step id", `{"title": "x", "steps": {"zero": {"message": "m", "done": true}}}`},
		{"no title", `{"steps": {"0": {"message": "m", "done": true}}}`},
		{"no steps", `{"title": "x", "steps": {}}`},
		{"no entry step", `{"title": "x", "steps": {"1": {"message": "m", "done": true}}}`},
		{"step without message", `{"title": "x", "steps": {"0": {"done": true}}}`},
		{"dangling next", `{"title": "x", "steps": {"0": {"message": "m", "next": 9}}}`},
		{"dangling option", `{"title": "x", "steps": {"0": {"message": "m", "options": [{"text": "Go", "next": 9}]}}}`},
		{"option without text", `{"title": "x", "steps": {"0": {"message": "m", "options": [{"next": 0}]}}}`},
		{"unknown routine", `{"title": "x", "steps": {"0": {"message": "m", "task": "levitate", "done": true}}}`},
		{"dead-end step", `{"title": "x", "steps": {"0": {"message": "m"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load([]byte(tt.json), knownRoutines); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestValidateSkipsRoutineCheckWithoutRegistry(t *testing.T) {
	p := &domain.Plan{
		Title: "x",
		Steps: map[int]domain.Step{
			0: {Message: "m", Task: "levitate", Done: true},
		},
	}
	if err := Validate(p, nil); err != nil {
		t.Fatalf("expected nil known func to skip routine check, got %v", err)
	}
}

func TestHumanTaskNeedsNoRoutine(t *testing.T) {
	p := &domain.Plan{
		Title: "x",
		Steps: map[int]domain.Step{
			0: {Message: "m", BaseTask: domain.TaskHuman, Done: true},
		},
	}
	if err := Validate(p, knownRoutines); err != nil {
		t.Fatalf("humanTask should validate without a routine: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	if err := os.WriteFile(path, []byte(validPlanJSON), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	p, err := LoadFile(path, knownRoutines)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if p.Title != "Test Brew" {
		t.Fatalf("unexpected title %q", p.Title)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"), knownRoutines); err == nil {
		t.Fatal("expected error for missing file")
	}
}
