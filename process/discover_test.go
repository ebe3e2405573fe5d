package process

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jnesss/hunt-recorder/types"
)

func writeCmdline(t *testing.T, root, pid string, args ...string) {
	t.Helper()
	dir := filepath.Join(root, pid)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	var data []byte
	for _, a := range args {
		data = append(data, a...)
		data = append(data, 0)
	}
	if err := os.WriteFile(filepath.Join(dir, "cmdline"), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindInProc(t *testing.T) {
	root := t.TempDir()
	writeCmdline(t, root, "12", "/usr/bin/bash")
	writeCmdline(t, root, "4242", "wine64", `Z:\games\MonsterHunterWorld.exe`, "-nofriendsui")
	writeCmdline(t, root, "self", "ignored")
	if err := os.WriteFile(filepath.Join(root, "uptime"), []byte("1 1"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := &Finder{Marker: GameExecutable, ProcRoot: root}
	pid, err := f.findInProc()
	if err != nil {
		t.Fatalf("findInProc: %v", err)
	}
	if pid != 4242 {
		t.Errorf("pid = %d, want 4242", pid)
	}
}

func TestFindInProcNoMatch(t *testing.T) {
	root := t.TempDir()
	writeCmdline(t, root, "12", "/usr/bin/bash")

	f := &Finder{Marker: GameExecutable, ProcRoot: root}
	if _, err := f.findInProc(); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFindInProcMissingRoot(t *testing.T) {
	f := &Finder{Marker: GameExecutable, ProcRoot: filepath.Join(t.TempDir(), "absent")}
	_, err := f.findInProc()
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want listing failure", err)
	}
}

func TestFindUnknownMarker(t *testing.T) {
	f := NewFinder()
	f.Marker = `\` + uuid.NewString() + ".exe"
	if _, err := f.Find(); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStaticPID(t *testing.T) {
	self := os.Getpid()
	pid, err := StaticPID(self).Find()
	if err != nil || pid != self {
		t.Errorf("Find() = %d, %v; want %d", pid, err, self)
	}
}

type flakyLocator struct {
	failures int
	calls    int
	pid      int
}

func (l *flakyLocator) Find() (int, error) {
	l.calls++
	if l.calls <= l.failures {
		return 0, ErrNotFound
	}
	return l.pid, nil
}

func TestWaitForRetries(t *testing.T) {
	loc := &flakyLocator{failures: 2, pid: 99}
	pid, err := WaitFor(context.Background(), loc, 5, time.Millisecond, nil)
	if err != nil {
		t.Fatalf("WaitFor: %v", err)
	}
	if pid != 99 || loc.calls != 3 {
		t.Errorf("pid = %d after %d calls, want 99 after 3", pid, loc.calls)
	}
}

func TestWaitForGivesUp(t *testing.T) {
	loc := &flakyLocator{failures: 100}
	_, err := WaitFor(context.Background(), loc, 3, time.Millisecond, nil)
	if !types.IsKind(err, types.KindNotAttached) || !types.IsFatal(err) {
		t.Fatalf("err = %v, want fatal NotAttached", err)
	}
	// one initial call plus three retries
	if loc.calls != 4 {
		t.Errorf("calls = %d, want 4", loc.calls)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("last locator error not kept: %v", err)
	}
}

func TestWaitForLastRetrySucceeds(t *testing.T) {
	loc := &flakyLocator{failures: 50, pid: 7}
	pid, err := WaitFor(context.Background(), loc, 50, time.Microsecond, nil)
	if err != nil {
		t.Fatalf("WaitFor: %v", err)
	}
	if pid != 7 || loc.calls != 51 {
		t.Errorf("pid = %d after %d calls, want 7 after 51", pid, loc.calls)
	}
}

func TestWaitForNoRetries(t *testing.T) {
	loc := &flakyLocator{failures: 100}
	if _, err := WaitFor(context.Background(), loc, 0, time.Hour, nil); err == nil {
		t.Fatal("WaitFor succeeded")
	}
	if loc.calls != 1 {
		t.Errorf("calls = %d, want 1", loc.calls)
	}
}

func TestWaitForCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := WaitFor(ctx, &flakyLocator{failures: 100}, 10, time.Hour, nil)
	if !types.IsKind(err, types.KindNotAttached) {
		t.Errorf("err = %v, want NotAttached", err)
	}
}
