package types

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure so callers can decide whether to abort or degrade
type Kind int

// Error kinds
const (
	KindUnknown                 Kind = iota
	KindNotAttached                  // Target process absent after the retry budget
	KindMapReadFailure               // Cannot read /proc/<pid>/maps
	KindRegionOrderingInvariant      // Overlapping or unordered regions
	KindRegionReadFailure            // Short or failed read of a region
	KindPatternMissing               // Required anchor not found
	KindTickReadFailure              // Steady-state read failed
	KindDumpIoFailure                // Dump directory write/read error
)

var kindNames = map[Kind]string{
	KindUnknown:                 "Unknown",
	KindNotAttached:             "NotAttached",
	KindMapReadFailure:          "MapReadFailure",
	KindRegionOrderingInvariant: "RegionOrderingInvariant",
	KindRegionReadFailure:       "RegionReadFailure",
	KindPatternMissing:          "PatternMissing",
	KindTickReadFailure:         "TickReadFailure",
	KindDumpIoFailure:           "DumpIoFailure",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is a classified failure. Detail names the subject (a signature, a path, an address).
type Error struct {
	Kind   Kind
	Detail string
	Err    error

	// fatal is only set by constructors that know the failure ends the run
	fatal bool
}

// NewError creates a recoverable error of the given kind
func NewError(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

// NewFatal creates an error that must unwind to the top and end the run
func NewFatal(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err, fatal: true}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg += "(" + e.Detail + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Cause lets github.com/pkg/errors walk through the classification
func (e *Error) Cause() error { return e.Err }

// Fatal reports whether the failure ends the run.
// NotAttached, MapReadFailure and RegionOrderingInvariant are always fatal.
func (e *Error) Fatal() bool {
	switch e.Kind {
	case KindNotAttached, KindMapReadFailure, KindRegionOrderingInvariant:
		return true
	}
	return e.fatal
}

// KindOf returns the kind of the first classified error in err's chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind anywhere in its chain
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// IsFatal reports whether err must end the run
func IsFatal(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Fatal()
	}
	return err != nil
}

// ExitCode maps a run result to the process exit status
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
