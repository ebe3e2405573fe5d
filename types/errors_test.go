package types

import (
	"testing"

	"github.com/pkg/errors"
)

func TestFatalClassification(t *testing.T) {
	tests := []struct {
		err   error
		fatal bool
	}{
		{NewError(KindNotAttached, "", nil), true},
		{NewError(KindMapReadFailure, "/proc/1/maps", nil), true},
		{NewError(KindRegionOrderingInvariant, "", nil), true},
		{NewError(KindRegionReadFailure, "", nil), false},
		{NewError(KindTickReadFailure, "", nil), false},
		{NewError(KindDumpIoFailure, "", nil), false},
		{NewError(KindPatternMissing, "Monsters", nil), false},
		{NewFatal(KindPatternMissing, "Monsters", nil), true},
		{errors.New("plain"), true},
	}

	for _, tt := range tests {
		if got := IsFatal(tt.err); got != tt.fatal {
			t.Errorf("IsFatal(%v) = %v, want %v", tt.err, got, tt.fatal)
		}
	}
	if IsFatal(nil) {
		t.Error("nil error is fatal")
	}
}

func TestKindThroughWrapping(t *testing.T) {
	base := NewFatal(KindPatternMissing, "Monsters", errors.New("can't find AoB"))
	wrapped := errors.Wrap(base, "startup")

	if KindOf(wrapped) != KindPatternMissing {
		t.Errorf("KindOf = %v", KindOf(wrapped))
	}
	if !IsKind(wrapped, KindPatternMissing) || IsKind(wrapped, KindNotAttached) {
		t.Error("IsKind does not see through the wrap")
	}
	if ExitCode(wrapped) != 1 || ExitCode(nil) != 0 {
		t.Error("unexpected exit codes")
	}
	if got := base.Error(); got != "PatternMissing(Monsters): can't find AoB" {
		t.Errorf("Error() = %q", got)
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("plain error has a kind")
	}
}
