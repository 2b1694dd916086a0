package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/tomz197/collide/internal/config"
	"github.com/tomz197/collide/internal/draw"
	"github.com/tomz197/collide/internal/logging"
	"github.com/tomz197/collide/internal/session"
	"golang.org/x/term"
)

func main() {
	os.Exit(realMain(os.Args[1:]))
}

// realMain returns the exit code so deferred cleanup runs before exiting.
func realMain(args []string) int {
	fs := flag.NewFlagSet("sim", flag.ContinueOnError)
	scenarioPath := fs.String("scenario", config.GetEnv("COLLIDE_SCENARIO", ""), "YAML scenario file")
	watch := fs.Bool("watch", false, "reload the scenario file when it changes")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger, closer, err := logging.NewFile(config.GetEnv("COLLIDE_LOG_FILE", ""), config.GetEnv("COLLIDE_LOG_LEVEL", "info"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		return 1
	}
	defer closer.Close()

	scenario := config.DefaultScenario()
	if *scenarioPath != "" {
		scenario, err = config.LoadScenario(*scenarioPath)
		if err != nil {
			logger.Error("scenario rejected", "path", *scenarioPath, "err", err)
			fmt.Fprintf(os.Stderr, "scenario error: %v\n", err)
			return 1
		}
	}

	var watcher *config.Watcher
	if *watch && *scenarioPath != "" {
		watcher, err = config.Watch(*scenarioPath)
		if err != nil {
			logger.Error("watch failed", "path", *scenarioPath, "err", err)
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
			return 1
		}
		defer watcher.Close()
		go logWatchErrors(logger, watcher)
	}

	if err := run(logger, scenario, watcher); err != nil {
		logger.Error("simulation failed", "err", err)
		fmt.Fprintf(os.Stderr, "simulation error: %v\n", err)
		return 1
	}
	return 0
}

func run(logger *log.Logger, scenario config.Scenario, watcher *config.Watcher) error {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	opts := session.Options{
		TermSizeFunc: draw.DefaultTermSizeFunc,
		Renderer:     draw.NewRenderer(os.Stdout, draw.ProfileForTerm(os.Getenv("TERM"))),
		Logger:       logger,
		User:         config.GetEnv("USER", "local"),
		Scenario:     scenario,
		FrameTime:    config.FrameTimeFromEnv(),
	}
	if watcher != nil {
		opts.Scenarios = watcher.Scenarios
	}

	s, err := session.New(bufio.NewReader(os.Stdin), os.Stdout, opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

func logWatchErrors(logger *log.Logger, w *config.Watcher) {
	for err := range w.Errors {
		logger.Warn("scenario reload failed", "err", err)
	}
}
