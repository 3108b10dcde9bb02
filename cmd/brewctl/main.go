// brewctl — step-graph recipe controller for a brewing vessel.
//
// Usage:
//
//	brewctl [-verbose] [-quiet] [-plan file.json] [-db brewctl.db]
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"github.com/hammamikhairi/brewctl/internal/beeper"
	"github.com/hammamikhairi/brewctl/internal/command"
	"github.com/hammamikhairi/brewctl/internal/display"
	"github.com/hammamikhairi/brewctl/internal/domain"
	"github.com/hammamikhairi/brewctl/internal/hardware"
	"github.com/hammamikhairi/brewctl/internal/logger"
	"github.com/hammamikhairi/brewctl/internal/notify"
	"github.com/hammamikhairi/brewctl/internal/plan"
	"github.com/hammamikhairi/brewctl/internal/routine"
	"github.com/hammamikhairi/brewctl/internal/telemetry"
)

func main() {
	_ = godotenv.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", ".brewctl-logs/brewctl.log", "file to write logs to (use \"stderr\" to log to console)")
	planFile := flag.String("plan", "", "JSON plan file to load alongside the built-in plans")
	dbPath := flag.String("db", os.Getenv("BREWCTL_DB"), "SQLite file for the run log (empty: in-memory only)")
	noChime := flag.Bool("no-chime", false, "disable audio chimes even if an audio device is present")
	startTemp := flag.Float64("sim-start", 20, "initial vessel temperature in °C")
	ambient := flag.Float64("sim-ambient", 20, "ambient temperature in °C")
	timeScale := flag.Float64("time-scale", 1, "simulated seconds per real second (0: run ticks as fast as possible)")
	flag.Parse()

	// Configure logger.
	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Direct logs to a file by default so the REPL stays clean.
	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		dir := filepath.Dir(*logFile)
		if dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Redirect Go's default log package (used by third-party libs) to
	// the same output so it doesn't spam the terminal.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	// Set up context — cancelled when the UI quits.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wire dependencies.
	sim := hardware.NewSim(log,
		hardware.WithStartTemperature(*startTemp),
		hardware.WithAmbient(*ambient),
		hardware.WithTimeScale(*timeScale),
	)
	reg := routine.NewRegistry(sim, log)

	lib := plan.NewMemoryLibrary(log)
	if *planFile != "" {
		p, err := plan.LoadFile(*planFile, reg.Has)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		lib.Add(p)
	}

	// Run log: SQLite when a path is given, in-memory otherwise.
	var store telemetry.Store
	if *dbPath != "" {
		db, err := sql.Open("sqlite", "file:"+*dbPath+"?_journal=WAL")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: opening run log db: %v\n", err)
			os.Exit(1)
		}
		s, err := telemetry.NewSQLiteStore(db, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		store = s
		log.Info("run log: %s", *dbPath)
	} else {
		store = telemetry.NewMemoryStore(log)
	}
	defer store.Close()

	app := &cliApp{
		ctx:    ctx,
		lib:    lib,
		reg:    reg,
		hw:     sim,
		store:  store,
		parser: command.NewParser(log),
		log:    log,
	}

	ui := display.NewUI(app.currentStatus, sim.Temperature)
	app.ui = ui

	textNotifier := notify.NewCLINotifier(log, ui.Printf)

	// Chimes if an audio device is available.
	var activeNotifier domain.Notifier = textNotifier
	if !*noChime {
		bp, err := beeper.New(log)
		if err != nil {
			log.Warn("audio init failed, chimes disabled: %v", err)
		} else {
			activeNotifier = notify.NewChimeNotifier(textNotifier, bp, log)
			log.Info("chimes enabled")
		}
	}
	app.notifier = activeNotifier

	fmt.Println(display.RenderBanner())
	fmt.Println(display.BannerStyle.Render("  Type 'help' for commands, 'quit' to exit."))
	fmt.Println()

	// Run app logic in a background goroutine.
	go func() {
		ui.WaitReady()
		app.run(ctx)
		ui.Quit()
	}()

	// Bubble Tea owns the terminal — blocks until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
	app.shutdown()
}
