package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/hammamikhairi/brewctl/internal/command"
	"github.com/hammamikhairi/brewctl/internal/display"
	"github.com/hammamikhairi/brewctl/internal/domain"
	"github.com/hammamikhairi/brewctl/internal/hardware"
	"github.com/hammamikhairi/brewctl/internal/logger"
	"github.com/hammamikhairi/brewctl/internal/plan"
	"github.com/hammamikhairi/brewctl/internal/poller"
	"github.com/hammamikhairi/brewctl/internal/recipe"
	"github.com/hammamikhairi/brewctl/internal/routine"
	"github.com/hammamikhairi/brewctl/internal/taskrunner"
	"github.com/hammamikhairi/brewctl/internal/telemetry"
)

// cliApp owns the REPL: it parses commands, manages the selected plan's
// run (recipe + task runner + poller), and prints run output.
type cliApp struct {
	ctx      context.Context
	lib      *plan.MemoryLibrary
	reg      *routine.Registry
	hw       *hardware.Sim
	store    telemetry.Store
	parser   *command.Parser
	notifier domain.Notifier
	log      *logger.Logger
	ui       *display.UI

	mu     sync.Mutex
	rec    *recipe.Recipe
	runner *taskrunner.Runner
	pol    *poller.Poller
}

// currentStatus supplies the UI status bar. ok is false while no plan
// is selected.
func (a *cliApp) currentStatus() (domain.Status, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.rec == nil {
		return domain.Status{}, false
	}
	return a.rec.Status(), true
}

func (a *cliApp) run(ctx context.Context) {
	a.showPlans(ctx)

	uiCh := a.ui.InputChan()

	for {
		var input string
		var ok bool

		select {
		case <-ctx.Done():
			return
		case input, ok = <-uiCh:
			if !ok {
				return
			}
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		st, _ := a.currentStatus()
		cmd := a.parser.Parse(input, st)
		a.log.Debug("command: %s (payload=%q)", cmd.Type, cmd.Payload)

		switch cmd.Type {
		case command.Help:
			a.showHelp()
		case command.Plans:
			a.showPlans(ctx)
		case command.SelectPlan:
			a.selectPlan(ctx, cmd.Payload)
		case command.Start:
			a.start()
		case command.Stop:
			a.stop()
		case command.Status:
			a.status()
		case command.Log:
			a.showLog(ctx)
		case command.PickOption:
			a.pickOption(cmd.Payload)
		case command.Quit:
			return
		case command.Unknown:
			a.ui.PrintHint(fmt.Sprintf("Didn't catch that (%q). Type 'help' for commands.", cmd.Payload))
		}
	}
}

func (a *cliApp) showHelp() {
	a.ui.PrintInfo("Commands:")
	a.ui.PrintInfo("  plans              list available plans")
	a.ui.PrintInfo("  select <plan>      pick a plan by title or number")
	a.ui.PrintInfo("  start              run the selected plan from the top")
	a.ui.PrintInfo("  stop               abort the run and force heater/cooler off")
	a.ui.PrintInfo("  status             show the current run state")
	a.ui.PrintInfo("  log                show recent run events")
	a.ui.PrintInfo("  quit               exit")
	a.ui.PrintHint("While a step offers options, type the option text or its number.")
}

func (a *cliApp) showPlans(ctx context.Context) {
	titles, err := a.lib.List(ctx)
	if err != nil {
		a.ui.PrintUrgent("Could not list plans: " + err.Error())
		return
	}
	a.ui.PrintInfo("Available plans:")
	for i, title := range titles {
		a.ui.PrintOption(i+1, title)
	}
	a.ui.PrintHint("Pick one with 'select <title or number>'.")
}

// selectPlan resolves a title or 1-based list index, tears down any
// previous run, and builds a fresh recipe + runner + poller for it.
func (a *cliApp) selectPlan(ctx context.Context, arg string) {
	titles, err := a.lib.List(ctx)
	if err != nil {
		a.ui.PrintUrgent("Could not list plans: " + err.Error())
		return
	}

	title := arg
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(titles) {
		title = titles[n-1]
	}

	p, err := a.lib.Get(ctx, title)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("No plan named %q.", title))
		return
	}

	a.mu.Lock()
	if a.pol != nil {
		a.pol.Stop()
	}
	if a.rec != nil {
		a.rec.Stop()
		a.runner.Wait()
	}
	runner := taskrunner.New(a.ctx, a.reg, a.log)
	rec := recipe.New(p, a.hw, runner, a.log)
	pol := poller.New(rec, a.hw, a.store, a.log,
		poller.WithTransitionFunc(a.onTransition),
	)
	a.rec = rec
	a.runner = runner
	a.pol = pol
	a.mu.Unlock()

	pol.Start(a.ctx)
	a.ui.PrintInfo(fmt.Sprintf("Selected %q (%d steps). Type 'start' when ready.", p.Title, len(p.Steps)))
}

func (a *cliApp) start() {
	a.mu.Lock()
	rec := a.rec
	a.mu.Unlock()

	if rec == nil {
		a.ui.PrintHint("Select a plan first ('plans', then 'select <plan>').")
		return
	}

	if err := rec.Start(); err != nil {
		a.ui.PrintUrgent("Start failed: " + err.Error())
		return
	}
	a.printStep(rec.Status())
}

func (a *cliApp) stop() {
	a.mu.Lock()
	rec := a.rec
	a.mu.Unlock()

	if rec == nil {
		a.ui.PrintHint("Nothing to stop.")
		return
	}
	rec.Stop()
	a.ui.PrintInfo("Run stopped. Heater and cooler commanded off.")
}

func (a *cliApp) status() {
	a.mu.Lock()
	rec := a.rec
	a.mu.Unlock()

	if rec == nil {
		a.ui.PrintHint("No plan selected.")
		return
	}

	st := rec.Status()
	a.ui.PrintInfo(fmt.Sprintf("%s: %s, step %d, %.1f°C", rec.Title(), st.State, st.Step, a.hw.Temperature()))
	if st.Message != "" {
		a.ui.PrintMessage(st.Message)
	}
	for i, opt := range st.Options {
		a.ui.PrintOption(i+1, opt)
	}
	if st.Time > 0 {
		a.ui.PrintHint(fmt.Sprintf("step time: %.0fs", st.Time))
	}
}

func (a *cliApp) showLog(ctx context.Context) {
	events, err := a.store.RecentEvents(ctx, 10)
	if err != nil {
		a.ui.PrintUrgent("Could not read run log: " + err.Error())
		return
	}
	if len(events) == 0 {
		a.ui.PrintHint("Run log is empty.")
		return
	}
	for _, e := range events {
		a.ui.PrintInfo(fmt.Sprintf("%s  %-10s step %-3d %s",
			e.At.Format("15:04:05"), e.State, e.Step, e.Message))
	}
}

// pickOption resolves numeric shorthand against the offered options and
// forwards the choice to the run.
func (a *cliApp) pickOption(choice string) {
	a.mu.Lock()
	rec := a.rec
	a.mu.Unlock()

	if rec == nil {
		return
	}

	st := rec.Status()
	if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(st.Options) {
		choice = st.Options[n-1]
	}

	_, err := rec.SelectOption(choice)
	switch {
	case errors.Is(err, domain.ErrInvalidOption):
		a.ui.PrintUrgent(fmt.Sprintf("Invalid option %q. Offered:", choice))
		for i, opt := range st.Options {
			a.ui.PrintOption(i+1, opt)
		}
	case err != nil:
		a.ui.PrintUrgent("Option failed: " + err.Error())
	default:
		a.printStep(rec.Status())
	}
}

// printStep prints the active step's message and any options.
func (a *cliApp) printStep(st domain.Status) {
	if st.Message != "" {
		a.ui.PrintMessage(st.Message)
	}
	for i, opt := range st.Options {
		a.ui.PrintOption(i+1, opt)
	}
}

// onTransition is called from the poller goroutine whenever the run
// changes state or step. It narrates progress and calls the user back
// to the terminal when a decision is needed.
func (a *cliApp) onTransition(prev, cur domain.Status) {
	switch cur.State {
	case domain.RunUserInput:
		if err := a.notifier.Notify(a.ctx, cur.Message); err != nil {
			a.log.Error("notify: %v", err)
		}
		for i, opt := range cur.Options {
			a.ui.PrintOption(i+1, opt)
		}
	case domain.RunComplete:
		if err := a.notifier.NotifyUrgent(a.ctx, cur.Message); err != nil {
			a.log.Error("notify: %v", err)
		}
	case domain.RunError:
		a.ui.PrintUrgent(cur.Message)
	case domain.RunRunning:
		if cur.Step != prev.Step {
			a.printStep(cur)
		}
	}
}

// shutdown tears down the background pieces after the UI has exited.
func (a *cliApp) shutdown() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pol != nil {
		a.pol.Stop()
	}
	if a.rec != nil {
		a.rec.Stop()
	}
	if a.runner != nil {
		a.runner.Wait()
	}
}
