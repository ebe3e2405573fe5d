// Package hunt drives the recorder: startup scan, anchor table and the refresh loop.
package hunt

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/jnesss/hunt-recorder/config"
	"github.com/jnesss/hunt-recorder/dump"
	"github.com/jnesss/hunt-recorder/memory"
	"github.com/jnesss/hunt-recorder/mhw"
	"github.com/jnesss/hunt-recorder/process"
	"github.com/jnesss/hunt-recorder/types"
)

const (
	defaultDiscoveryRetries = 50
	defaultDiscoveryInterval = 200 * time.Millisecond
	defaultLivenessInterval  = time.Second

	// maxPoll bounds a single input poll
	maxPoll = 100 * time.Millisecond

	// cachePages is the page budget of the no-direct-mem cache
	cachePages = 1024
)

// Display receives every snapshot
type Display interface {
	Draw(snap mhw.Snapshot)
	Configure(live config.Live)
}

// Input reports quit requests. PollQuit waits at most timeout for an event.
type Input interface {
	PollQuit(timeout time.Duration) bool
}

// Sink gets a copy of each snapshot after it is drawn. Publish must not block.
type Sink interface {
	Publish(snap mhw.Snapshot)
}

// Config holds configuration for creating an Orchestrator
type Config struct {
	PID          int // skip discovery when set
	ShowMonsters bool
	Live         config.Live

	DumpDir string // write regions here during startup
	LoadDir string // read regions from here instead of a live process

	Maps        memory.MapsOptions
	NoDirectMem bool

	Locator           process.Locator
	DiscoveryRetries  int
	DiscoveryInterval time.Duration

	// Alive reports whether the target still exists; checked every LivenessInterval
	Alive            func(pid int) bool
	LivenessInterval time.Duration

	Updates <-chan config.Live
	Sink    Sink
	Logger  *slog.Logger
}

// Orchestrator owns the anchor table and produces one snapshot per tick
type Orchestrator struct {
	cfg Config
	log *slog.Logger

	// replaced in tests
	readMaps  func(pid int, opts memory.MapsOptions) ([]*memory.Region, error)
	newReader func(pid int) memory.Reader

	pid       int
	anchors   *Anchors
	cache     *memory.CachedReader
	extractor *mhw.Extractor
	monitor   *Monitor
}

// New creates an orchestrator; call Start before Run
func New(cfg Config) *Orchestrator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Locator == nil {
		if cfg.PID != 0 {
			cfg.Locator = process.StaticPID(cfg.PID)
		} else {
			cfg.Locator = process.NewFinder()
		}
	}
	if cfg.DiscoveryRetries == 0 {
		cfg.DiscoveryRetries = defaultDiscoveryRetries
	}
	if cfg.DiscoveryInterval == 0 {
		cfg.DiscoveryInterval = defaultDiscoveryInterval
	}
	if cfg.Alive == nil {
		cfg.Alive = process.Alive
	}
	if cfg.LivenessInterval == 0 {
		cfg.LivenessInterval = defaultLivenessInterval
	}
	if cfg.Live.Refresh <= 0 {
		cfg.Live.Refresh = time.Duration(config.DefaultRefreshMs * float64(time.Millisecond))
	}

	return &Orchestrator{
		cfg:       cfg,
		log:       cfg.Logger,
		readMaps:  memory.ReadMaps,
		newReader: func(pid int) memory.Reader { return memory.NewProcessReader(pid) },
		monitor:   NewMonitor(cfg.Logger),
	}
}

// Anchors returns the table built by Start
func (o *Orchestrator) Anchors() *Anchors {
	return o.anchors
}

// PID returns the attached process, 0 when running from a dump
func (o *Orchestrator) PID() int {
	return o.pid
}

// Start attaches to the target (or loads a dump), scans every region for the
// signatures and prepares the extractor. Region bytes are dropped before it
// returns unless they are needed to serve reads from a dump.
func (o *Orchestrator) Start(ctx context.Context) error {
	var (
		regions []*memory.Region
		reader  memory.Reader
		err     error
	)

	if o.cfg.LoadDir != "" {
		regions, reader, err = o.loadDump()
	} else {
		regions, reader, err = o.attach(ctx)
		defer memory.ReleaseAll(regions)
	}
	if err != nil {
		return err
	}

	o.log.Info("scanning regions", "count", len(regions))
	o.anchors = NewScanner(reader, o.log).Scan(regions)
	if err := o.anchors.Require(o.cfg.ShowMonsters); err != nil {
		return err
	}

	if o.cfg.NoDirectMem {
		cache, err := memory.NewCachedReader(reader, cachePages)
		if err != nil {
			return errors.Wrap(err, "failed to create page cache")
		}
		o.cache = cache
		reader = cache
	}

	o.extractor = mhw.NewExtractor(reader, o.anchors, mhw.ExtractorConfig{
		ShowMonsters: o.cfg.ShowMonsters,
		Logger:       o.log,
	})
	return nil
}

func (o *Orchestrator) loadDump() ([]*memory.Region, memory.Reader, error) {
	regions, err := dump.Load(o.cfg.LoadDir)
	if err != nil {
		return nil, nil, types.NewFatal(types.KindDumpIoFailure, o.cfg.LoadDir, err)
	}
	if err := memory.Verify(regions); err != nil {
		return nil, nil, err
	}
	o.log.Info("loaded dump", "dir", o.cfg.LoadDir, "regions", len(regions))
	return regions, memory.NewRegionReader(regions), nil
}

func (o *Orchestrator) attach(ctx context.Context) ([]*memory.Region, memory.Reader, error) {
	pid, err := process.WaitFor(ctx, o.cfg.Locator, o.cfg.DiscoveryRetries, o.cfg.DiscoveryInterval, o.log)
	if err != nil {
		return nil, nil, err
	}
	o.pid = pid

	regions, err := o.readMaps(pid, o.cfg.Maps)
	if err != nil {
		return nil, nil, err
	}
	if err := memory.Verify(regions); err != nil {
		return nil, nil, err
	}

	var store *dump.Store
	if o.cfg.DumpDir != "" {
		store, err = dump.NewStore(o.cfg.DumpDir)
		if err != nil {
			o.log.Warn("memory dump disabled", "dir", o.cfg.DumpDir, "error", err)
			store = nil
		}
	}

	reader := o.newReader(pid)
	var filled int
	var total uint64
	for _, r := range regions {
		if err := r.Fill(reader); err != nil {
			o.log.Warn("failed to read region", "region", r.String(), "error", err)
			continue
		}
		filled++
		total += r.Size()

		if store != nil {
			if err := store.Write(r); err != nil {
				o.log.Warn("failed to dump region", "region", r.String(), "error", err)
			}
		}
	}
	o.log.Info("read target memory", "pid", pid, "regions", len(regions), "filled", filled, "bytes", total)

	return regions, reader, nil
}

// Run refreshes until the user quits, ctx is done or the target exits.
// A quit or cancellation returns nil.
func (o *Orchestrator) Run(ctx context.Context, display Display, input Input) error {
	if o.extractor == nil {
		return errors.New("orchestrator not started")
	}

	live := o.cfg.Live
	display.Configure(live)
	lastLiveness := time.Now()

	for {
		if ctx.Err() != nil {
			return nil
		}

		select {
		case update := <-o.cfg.Updates:
			if update.Refresh <= 0 {
				update.Refresh = live.Refresh
			}
			live = update
			display.Configure(live)
			o.log.Debug("applied live config", "refresh", live.Refresh)
		default:
		}

		start := time.Now()
		if o.cache != nil {
			o.cache.Reset()
		}

		snap := o.extractor.Extract()
		snap.Frametime = time.Since(start)
		o.monitor.Check(snap)
		display.Draw(snap)
		if o.cfg.Sink != nil {
			o.cfg.Sink.Publish(snap)
		}

		if o.pid != 0 && time.Since(lastLiveness) >= o.cfg.LivenessInterval {
			lastLiveness = time.Now()
			if !o.cfg.Alive(o.pid) {
				return types.NewFatal(types.KindNotAttached, fmt.Sprintf("pid %d", o.pid),
					errors.New("target process exited"))
			}
		}

		wait := live.Refresh - time.Since(start)
		if o.wait(ctx, input, wait) {
			return nil
		}
	}
}

// wait polls input until the tick boundary and reports whether to stop.
// Input is polled at least once per tick.
func (o *Orchestrator) wait(ctx context.Context, input Input, d time.Duration) bool {
	deadline := time.Now().Add(max(d, 0))
	for {
		if ctx.Err() != nil {
			return true
		}
		remaining := max(time.Until(deadline), 0)
		if input.PollQuit(min(remaining, maxPoll)) {
			o.log.Info("quit requested")
			return true
		}
		if time.Until(deadline) <= 0 {
			return false
		}
	}
}
