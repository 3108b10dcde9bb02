// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type manages a persistent vessel status bar and an input
// prompt at the bottom of the terminal. All application output is
// printed above the rendered area via Program.Println / Printf,
// ensuring concurrent writes never garble the display.
package display

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/brewctl/internal/domain"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	stateRunStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	stateWaitStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	stateErrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	stateIdleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a")).
			Italic(true)

	tempStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	sepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// ── Output styles (soft palette) ──

	// BannerStyle — muted slate for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// Step message — soft mint.
	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	// Option lines — soft sky blue.
	optionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	// Primary text — light zinc.
	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	// Secondary text — dimmed zinc for hints, metadata.
	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	// Urgent — soft coral for errors/alerts.
	urgentOutputStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#fca5a5"))

	userInputEchoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a1a1aa"))
)

// iconLabels maps plan icon names to short bar labels. Unknown icons
// render as-is.
var iconLabels = map[string]string{
	domain.IconReactionChamber:  "chamber",
	domain.IconLoadSyringe:      "load",
	domain.IconInspect:          "inspect",
	domain.IconDispensing:       "dispense",
	domain.IconTemperature:      "temp",
	domain.IconReactionComplete: "done",
}

// StatusFunc supplies the run snapshot for the status bar. ok is false
// while no plan is selected.
type StatusFunc func() (st domain.Status, ok bool)

// TempFunc supplies the current vessel temperature for the status bar.
type TempFunc func() float64

// ── UI ───────────────────────────────────────────────────────────

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking). Other goroutines may safely
// call [UI.Println], [UI.Printf], and read from [UI.InputChan] at any
// time after [UI.WaitReady] returns.
type UI struct {
	program  *tea.Program
	inputCh  chan string
	readyCh  chan struct{}
	quitCh   chan struct{}
	statusFn StatusFunc
	tempFn   TempFunc
	done     atomic.Bool
}

// NewUI creates the display. Call Run() to start.
func NewUI(statusFn StatusFunc, tempFn TempFunc) *UI {
	return &UI{
		statusFn: statusFn,
		tempFn:   tempFn,
		inputCh:  make(chan string, 16),
		readyCh:  make(chan struct{}),
		quitCh:   make(chan struct{}),
	}
}

// Println prints a line above the prompt. Thread-safe. If the program
// hasn't started yet, falls back to fmt.Println.
func (u *UI) Println(a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// Printf prints formatted text above the prompt. Thread-safe. The
// output is printed on its own line.
func (u *UI) Printf(format string, a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Printf(format, a...)
	} else {
		fmt.Printf(format, a...)
	}
}

// InputChan returns completed user-input lines.
func (u *UI) InputChan() <-chan string { return u.inputCh }

// ── Styled print helpers ─────────────────────────────────────────

// PrintMessage prints the active step's message.
func (u *UI) PrintMessage(text string) {
	u.Println(messageStyle.Render("  " + text))
}

// PrintOption prints one selectable option line like "  [1] Grain is in".
func (u *UI) PrintOption(n int, text string) {
	u.Println(optionStyle.Render(fmt.Sprintf("  [%d] %s", n, text)))
}

// PrintInfo prints a plain informational line.
func (u *UI) PrintInfo(text string) {
	u.Println(primaryStyle.Render("  " + text))
}

// PrintHint prints a secondary/dimmed line.
func (u *UI) PrintHint(text string) {
	u.Println(secondaryStyle.Render("  " + text))
}

// PrintUrgent prints an urgent/error line.
func (u *UI) PrintUrgent(text string) {
	u.Println(urgentOutputStyle.Render("  " + text))
}

// PrintUserInput echoes the user's typed command into the scrollback.
func (u *UI) PrintUserInput(text string) {
	u.Println(promptStyle.Render("brew") + secondaryStyle.Render("> ") + userInputEchoStyle.Render(text))
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// Run starts the Bubble Tea event loop. Blocks until quit.
func (u *UI) Run() error {
	ti := textinput.New()
	// Plain-text prompt so the textinput width math stays correct;
	// styled prompts add invisible ANSI bytes that break the internal
	// offset calculations for long input.
	ti.Prompt = "brew> "
	ti.PromptStyle = promptStyle
	ti.TextStyle = userInputEchoStyle
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 60 // updated on first WindowSizeMsg

	m := model{
		statusFn: u.statusFn,
		tempFn:   u.tempFn,
		input:    ti,
		inputCh:  u.inputCh,
		readyCh:  u.readyCh,
		echoFn: func(v string) {
			u.PrintUserInput(v)
		},
	}

	u.program = tea.NewProgram(m)
	_, err := u.program.Run()
	u.done.Store(true)
	close(u.quitCh)
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

type model struct {
	statusFn StatusFunc
	tempFn   TempFunc
	input    textinput.Model
	inputCh  chan<- string
	readyCh  chan struct{}
	echoFn   func(string) // prints user input into scrollback

	status  domain.Status
	haveRun bool
	temp    float64
	width   int
}

// Messages.
type tickMsg time.Time

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tickCmd(),
		signalReady(m.readyCh),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			v := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(v) != "" {
				m.inputCh <- v
				// Echo via a Cmd — runs outside Update so it won't
				// deadlock on msgs.
				echoFn := m.echoFn
				return m, func() tea.Msg {
					echoFn(v)
					return nil
				}
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		// Full width minus the prompt ("brew> " = 6 chars).
		const promptLen = 6
		if msg.Width > promptLen {
			m.input.Width = msg.Width - promptLen
		}
		return m, nil

	case tickMsg:
		if m.statusFn != nil {
			m.status, m.haveRun = m.statusFn()
		}
		if m.tempFn != nil {
			m.temp = m.tempFn()
		}
		cmds := []tea.Cmd{tickCmd(), tea.SetWindowTitle(m.titleStr())}
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) titleStr() string {
	if !m.haveRun {
		return "brewctl"
	}
	return fmt.Sprintf("brewctl — %s, %.1f°C", m.status.State, m.temp)
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(m.renderBar())
	b.WriteByte('\n')

	// Blank line before prompt for visual separation.
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	return b.String()
}

func (m model) renderBar() string {
	var parts []string

	if !m.haveRun {
		parts = append(parts, stateIdleStyle.Render("no plan selected"))
	} else {
		st := m.status
		parts = append(parts, stateStyle(st.State).Render(st.State.String()))
		if st.Step >= 0 {
			parts = append(parts, labelStyle.Render(fmt.Sprintf("step %d", st.Step)))
		}
		if st.Icon != "" {
			label := st.Icon
			if friendly, ok := iconLabels[st.Icon]; ok {
				label = friendly
			}
			parts = append(parts, labelStyle.Render(label))
		}
		if st.Time > 0 {
			parts = append(parts, labelStyle.Render("t=")+stateWaitStyle.Render(fmtSeconds(st.Time)))
		}
	}

	parts = append(parts, tempStyle.Render(fmt.Sprintf("%.1f°C", m.temp)))

	content := " " + strings.Join(parts, sepStyle.Render("  │  ")) + " "

	w := m.width
	if w <= 0 {
		w = 80
	}
	return barBg.Width(w).Render(content)
}

// stateStyle picks the bar style for a run state.
func stateStyle(s domain.RunState) lipgloss.Style {
	switch s {
	case domain.RunRunning:
		return stateRunStyle
	case domain.RunUserInput:
		return stateWaitStyle
	case domain.RunError:
		return stateErrStyle
	case domain.RunComplete:
		return stateRunStyle
	default:
		return stateIdleStyle
	}
}

// ── Helpers ──────────────────────────────────────────────────────

func fmtSeconds(s float64) string {
	d := time.Duration(s * float64(time.Second)).Round(time.Second)
	m := int(d.Minutes())
	sec := int(d.Seconds()) % 60
	if m == 0 {
		return fmt.Sprintf("%ds", sec)
	}
	return fmt.Sprintf("%dm%02ds", m, sec)
}
