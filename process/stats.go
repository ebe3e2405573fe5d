package process

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// StatsCollector periodically refreshes the target's info for display
type StatsCollector struct {
	pid                int
	collectionInterval time.Duration
	collect            func(pid int) (*TargetInfo, bool)
	log                *slog.Logger

	latest atomic.Pointer[TargetInfo]
}

// NewStatsCollector creates a collector for pid
func NewStatsCollector(pid int, interval time.Duration, logger *slog.Logger) *StatsCollector {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsCollector{
		pid:                pid,
		collectionInterval: interval,
		collect:            CollectTargetInfo,
		log:                logger,
	}
}

// Latest returns the most recent info, or nil before the first collection
func (sc *StatsCollector) Latest() *TargetInfo {
	return sc.latest.Load()
}

// Start collects immediately and then on every interval until ctx is done or the target exits
func (sc *StatsCollector) Start(ctx context.Context) error {
	ticker := time.NewTicker(sc.collectionInterval)
	defer ticker.Stop()

	sc.log.Debug("starting target stats collection", "pid", sc.pid, "interval", sc.collectionInterval)

	for {
		if !sc.collectStats() {
			sc.log.Info("target process gone, stopping stats collection", "pid", sc.pid)
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (sc *StatsCollector) collectStats() bool {
	info, ok := sc.collect(sc.pid)
	if !ok {
		return false
	}
	sc.latest.Store(info)
	return true
}
