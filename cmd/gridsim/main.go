package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/profile"

	"github.com/lixenwraith/gridsim/config"
	"github.com/lixenwraith/gridsim/core"
	"github.com/lixenwraith/gridsim/engine"
)

const (
	logDir      = "logs"
	logFileName = "gridsim.log"
)

var (
	scenarioFlag  = flag.String("scenario", "", "Path to a YAML scenario (default: built-in 10x10 demo)")
	ticksFlag     = flag.Int("ticks", 600, "Ticks to run in headless mode")
	headlessFlag  = flag.Bool("headless", false, "Run without a terminal UI and print final positions")
	indexModeFlag = flag.String("index-mode", "", "Override index mode: rebuild, incremental")
	debugFlag     = flag.Bool("debug", false, "Write logs to "+filepath.Join(logDir, logFileName))
	muteFlag      = flag.Bool("mute", false, "Disable audio cues")
	profileFlag   = flag.String("profile", "", "Profile mode: cpu, mem")
	dumpFlag      = flag.Bool("dump", false, "Print the resolved scenario as YAML and exit")
)

func main() {
	// Panic Recovery: Ensure terminal is reset even if the simulator crashes
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	flag.Parse()

	logFile := setupLogging(*debugFlag)
	if logFile != nil {
		defer logFile.Close()
	}

	if stop := startProfile(*profileFlag); stop != nil {
		defer stop()
	}

	scenario, err := loadScenario(*scenarioFlag, *indexModeFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "gridsim: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *dumpFlag:
		err = dumpScenario(scenario, os.Stdout)
	case *headlessFlag:
		err = runHeadless(scenario, *ticksFlag, os.Stdout)
	default:
		err = runTerminal(scenario, !*muteFlag)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "gridsim: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging routes the standard logger to a file when debug is set, otherwise discards it
func setupLogging(debug bool) *os.File {
	if !debug {
		log.SetOutput(io.Discard)
		return nil
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create log directory: %v\n", err)
		log.SetOutput(io.Discard)
		return nil
	}

	f, err := os.OpenFile(filepath.Join(logDir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		log.SetOutput(io.Discard)
		return nil
	}

	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	return f
}

// startProfile returns the stop func for the requested profile, nil when disabled
func startProfile(mode string) func() {
	var p interface{ Stop() }
	switch mode {
	case "":
		return nil
	case "cpu":
		p = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	case "mem":
		p = profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	default:
		fmt.Fprintf(os.Stderr, "Unknown profile mode %q, profiling disabled\n", mode)
		return nil
	}
	return p.Stop
}

// loadScenario reads path, or the built-in demo when empty, and applies flag overrides
func loadScenario(path, indexMode string) (*config.Scenario, error) {
	var (
		s   *config.Scenario
		err error
	)
	if path == "" {
		s = config.Default()
	} else if s, err = config.Load(path); err != nil {
		return nil, err
	}

	if indexMode != "" {
		s.IndexMode = indexMode
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	log.Printf("scenario: grid=%dx%d entities=%d tick_rate=%d index=%q",
		s.Grid.Width, s.Grid.Height, len(s.Entities), s.TickRate, s.IndexMode)
	return s, nil
}

// dumpScenario writes the resolved scenario as YAML
func dumpScenario(s *config.Scenario, out io.Writer) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write scenario: %w", err)
	}
	return nil
}

// simulate builds the scenario world and steps it a fixed number of ticks
func simulate(s *config.Scenario, ticks int) (*engine.World, error) {
	if ticks < 0 {
		return nil, fmt.Errorf("ticks must not be negative, got %d", ticks)
	}

	world, err := s.Build()
	if err != nil {
		return nil, err
	}
	cs, err := engine.NewClockScheduler(world, s.TickInterval(), s.TickDelta())
	if err != nil {
		return nil, err
	}
	if err := cs.Step(ticks); err != nil {
		return nil, err
	}
	return world, nil
}

// runHeadless steps the scenario a fixed number of ticks and prints the final state
func runHeadless(s *config.Scenario, ticks int, out io.Writer) error {
	w, err := simulate(s, ticks)
	if err != nil {
		return err
	}

	stats := w.Stats()
	if _, err := fmt.Fprintf(out, "grid %dx%d, %d ticks, %d wraps\n", w.Width(), w.Height(), stats.Ticks, stats.Wraps); err != nil {
		return err
	}
	for _, e := range w.Entities() {
		if _, err := fmt.Fprintln(out, e); err != nil {
			return err
		}
	}
	log.Printf("headless run complete: %d ticks", ticks)
	return nil
}
