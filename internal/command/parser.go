// Package command parses REPL input into controller commands.
package command

import (
	"regexp"
	"strings"

	"github.com/hammamikhairi/brewctl/internal/domain"
	"github.com/hammamikhairi/brewctl/internal/logger"
)

// Type classifies what the user wants to do.
type Type int

const (
	Unknown Type = iota
	Help
	Plans
	SelectPlan
	Start
	Stop
	Status
	Log
	Quit
	// PickOption carries the text of an option to select on the
	// current user_input step.
	PickOption
)

// String returns a human-readable command type.
func (t Type) String() string {
	switch t {
	case Help:
		return "help"
	case Plans:
		return "plans"
	case SelectPlan:
		return "select_plan"
	case Start:
		return "start"
	case Stop:
		return "stop"
	case Status:
		return "status"
	case Log:
		return "log"
	case Quit:
		return "quit"
	case PickOption:
		return "pick_option"
	default:
		return "unknown"
	}
}

// Command is a parsed user action.
type Command struct {
	Type    Type
	Payload string // optional context, e.g. plan title or option text
}

// Parser matches user input to commands using keywords and simple
// patterns. It is status-aware: while the run waits for input, anything
// that is not a keyword is treated as an option choice.
type Parser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex *regexp.Regexp
	typ   Type
}

// NewParser creates a keyword-based command parser.
func NewParser(log *logger.Logger) *Parser {
	p := &Parser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(help|h|\?)$`), Help},
		{regexp.MustCompile(`(?i)^(plans|list|recipes|browse)$`), Plans},
		{regexp.MustCompile(`(?i)^(start|go|begin|run)$`), Start},
		{regexp.MustCompile(`(?i)^(stop|abort|reset)$`), Stop},
		{regexp.MustCompile(`(?i)^(status|where|progress|info)$`), Status},
		{regexp.MustCompile(`(?i)^(log|history|events)$`), Log},
		{regexp.MustCompile(`(?i)^(quit|exit|q)$`), Quit},
	}
	return p
}

// Parse converts user input into a command, using the run status to
// decide whether free-form input means an option choice.
func (p *Parser) Parse(input string, st domain.Status) Command {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Command{Type: Unknown}
	}

	p.log.Debug("parsing input: %q", trimmed)

	for _, rule := range p.patterns {
		if rule.regex.MatchString(trimmed) {
			p.log.Debug("matched command: %s", rule.typ)
			return Command{Type: rule.typ}
		}
	}

	// "select <plan>" or "plan <plan>".
	lower := strings.ToLower(trimmed)
	if strings.HasPrefix(lower, "select ") || strings.HasPrefix(lower, "plan ") {
		parts := strings.SplitN(trimmed, " ", 2)
		if len(parts) == 2 {
			return Command{Type: SelectPlan, Payload: strings.TrimSpace(parts[1])}
		}
	}

	// While the run waits for a choice, bare input is the choice. The
	// app layer resolves numeric shorthand against the option list.
	if st.State == domain.RunUserInput {
		return Command{Type: PickOption, Payload: trimmed}
	}

	p.log.Debug("no match, returning unknown command")
	return Command{Type: Unknown, Payload: trimmed}
}
