package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/jnesss/hunt-recorder/config"
	"github.com/jnesss/hunt-recorder/database"
	"github.com/jnesss/hunt-recorder/hunt"
	"github.com/jnesss/hunt-recorder/memory"
	"github.com/jnesss/hunt-recorder/process"
	"github.com/jnesss/hunt-recorder/types"
	"github.com/jnesss/hunt-recorder/ui"
)

const (
	statsInterval = 2 * time.Second
	historyQueue  = 64
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load(args)
	if errors.Is(err, pflag.ErrHelp) {
		fmt.Printf("Usage of hunt-recorder:\n%s", config.Usage())
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "hunt-recorder: %v\n", err)
		return 1
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hunt-recorder: failed to open log file: %v\n", err)
		return 1
	}
	defer logFile.Close()
	if err := chownToInvoker(cfg.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	// stderr gets a copy until the UI owns the terminal
	out := &logOutput{w: io.MultiWriter(logFile, os.Stderr)}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var watcher *config.Watcher
	var updates <-chan config.Live
	if cfg.ConfigFile != "" {
		watcher, err = config.NewWatcher(cfg, func() (*config.Config, error) { return config.Load(args) }, logger)
		if err != nil {
			logger.Warn("config reload disabled", "error", err)
		} else {
			updates = watcher.Updates()
		}
	}

	var db *database.DB
	var queue database.Queue
	if cfg.HistoryDir != "" && !cfg.DebugAll {
		db, err = database.NewDB(cfg.HistoryDir)
		if err != nil {
			logger.Warn("hunt history disabled", "error", err)
		} else {
			queue = make(database.Queue, historyQueue)
			defer func() {
				db.Close()
				if err := chownToInvoker(cfg.HistoryDir); err != nil {
					logger.Warn("failed to hand history files back", "error", err)
				}
			}()
		}
	}

	hcfg := hunt.Config{
		PID:          cfg.PID,
		ShowMonsters: cfg.ShowMonsters,
		Live:         cfg.Live(),
		DumpDir:      cfg.DumpMem,
		LoadDir:      cfg.LoadDump,
		Maps:         memory.MapsOptions{IncludeAnonymous: cfg.IncludeAnonymous},
		NoDirectMem:  cfg.NoDirectMem,
		Updates:      updates,
		Logger:       logger,
	}
	if queue != nil {
		hcfg.Sink = queue
	}
	orch := hunt.New(hcfg)

	logger.Info("starting hunt-recorder", "show_monsters", cfg.ShowMonsters, "load_dump", cfg.LoadDump, "dump_mem", cfg.DumpMem)
	if err := orch.Start(ctx); err != nil {
		logger.Error("startup failed", "error", err)
		return types.ExitCode(err)
	}
	if cfg.DumpMem != "" {
		if err := chownToInvoker(cfg.DumpMem); err != nil {
			logger.Warn("failed to hand dump directory back", "error", err)
		}
	}

	if cfg.DebugAll {
		fmt.Print(orch.Anchors().String())
		return 0
	}

	var stats *process.StatsCollector
	var target ui.TargetSource
	if orch.PID() != 0 {
		stats = process.NewStatsCollector(orch.PID(), statsInterval, logger)
		target = stats
	}

	term, err := ui.Open(target)
	if err != nil {
		logger.Error("failed to open terminal", "error", err)
		return 1
	}
	defer term.Close()
	out.Set(logFile)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		defer cancel()
		return orch.Run(gctx, term, term)
	})
	if stats != nil {
		g.Go(func() error { return stats.Start(gctx) })
	}
	if watcher != nil {
		g.Go(func() error { return watcher.Run(gctx) })
	}
	if queue != nil {
		rec := database.NewRecorder(db, orch.PID(), logger)
		g.Go(func() error { return rec.Run(gctx, queue) })
	}

	err = g.Wait()
	term.Close()
	if err != nil {
		logger.Error("stopped", "error", err)
		fmt.Fprintf(os.Stderr, "hunt-recorder: %v\n", err)
		return types.ExitCode(err)
	}
	logger.Info("stopped")
	return 0
}

// logOutput lets the log destination change once the UI starts
type logOutput struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *logOutput) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func (l *logOutput) Set(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w = w
}
