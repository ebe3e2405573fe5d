package process

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	gops "github.com/shirou/gopsutil/v3/process"

	"github.com/jnesss/hunt-recorder/types"
)

// ErrNotFound is returned when no process matches
var ErrNotFound = errors.New("can't find the game process")

// Finder locates a process whose command line contains Marker
type Finder struct {
	Marker string

	// ProcRoot is the procfs mount used when the process table can't be
	// listed through gopsutil
	ProcRoot string
}

// NewFinder creates a finder for the game executable
func NewFinder() *Finder {
	return &Finder{Marker: GameExecutable, ProcRoot: "/proc"}
}

// Find returns the pid of the first matching process
func (f *Finder) Find() (int, error) {
	procs, err := gops.Processes()
	if err != nil {
		return f.findInProc()
	}

	for _, p := range procs {
		cmdline, err := p.Cmdline()
		if err != nil {
			continue
		}
		if strings.Contains(cmdline, f.Marker) {
			return int(p.Pid), nil
		}
	}
	return 0, ErrNotFound
}

// findInProc walks <ProcRoot>/<pid>/cmdline directly
func (f *Finder) findInProc() (int, error) {
	entries, err := os.ReadDir(f.ProcRoot)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to list %s", f.ProcRoot)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}

		data, err := os.ReadFile(filepath.Join(f.ProcRoot, entry.Name(), "cmdline"))
		if err != nil {
			continue
		}
		// arguments are NUL separated
		if bytes.Contains(data, []byte(f.Marker)) {
			return pid, nil
		}
	}
	return 0, ErrNotFound
}

// StaticPID is a Locator for a pid given by the operator
type StaticPID int

// Find checks that the pid exists
func (s StaticPID) Find() (int, error) {
	if !Alive(int(s)) {
		return 0, fmt.Errorf("process %d does not exist", int(s))
	}
	return int(s), nil
}

// WaitFor calls loc once and then retries it up to retries more times,
// sleeping interval between calls.
func WaitFor(ctx context.Context, loc Locator, retries int, interval time.Duration, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if retries < 0 {
		retries = 0
	}

	var lastErr error
	for i := 0; i <= retries; i++ {
		pid, err := loc.Find()
		if err == nil {
			logger.Info("found target process", "pid", pid, "attempt", i+1)
			return pid, nil
		}
		lastErr = err

		if i == retries {
			break
		}
		logger.Debug("target process not found, retrying", "attempt", i+1, "error", err)
		select {
		case <-ctx.Done():
			return 0, types.NewFatal(types.KindNotAttached, "discovery cancelled", ctx.Err())
		case <-time.After(interval):
		}
	}
	return 0, types.NewFatal(types.KindNotAttached, fmt.Sprintf("%d retries", retries), lastErr)
}
