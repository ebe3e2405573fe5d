//go:build !linux

package memory

import (
	"github.com/pkg/errors"

	"github.com/jnesss/hunt-recorder/types"
)

// ProcessReader is unavailable on this platform; every read fails.
// Dumps can still be loaded and scanned through RegionReader.
type ProcessReader struct {
	PID int
}

// NewProcessReader creates a reader bound to pid
func NewProcessReader(pid int) *ProcessReader {
	return &ProcessReader{PID: pid}
}

func (p *ProcessReader) Read(addr uint64, length int) ([]byte, error) {
	return nil, types.NewError(types.KindRegionReadFailure, "",
		errors.New("cross-process reads require linux"))
}
