//go:build linux

package memory

import (
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/jnesss/hunt-recorder/types"
)

// ProcessReader reads from a live process with one process_vm_readv call per read
type ProcessReader struct {
	PID int
}

// NewProcessReader creates a reader bound to pid
func NewProcessReader(pid int) *ProcessReader {
	return &ProcessReader{PID: pid}
}

// Read copies length bytes at addr out of the target process.
// No caching and no retries happen here.
func (p *ProcessReader) Read(addr uint64, length int) ([]byte, error) {
	if length <= 0 {
		return nil, errors.Errorf("invalid read length %d", length)
	}

	buf := make([]byte, length)
	local := []unix.Iovec{{Base: &buf[0]}}
	local[0].SetLen(length)
	remote := []unix.RemoteIovec{{Base: uintptr(addr), Len: length}}

	n, err := unix.ProcessVMReadv(p.PID, local, remote, 0)
	if err != nil {
		return nil, types.NewError(types.KindRegionReadFailure,
			fmt.Sprintf("0x%x+%d", addr, length),
			errors.Wrapf(err, "process_vm_readv pid %d", p.PID))
	}
	if n != length {
		return nil, &ShortReadError{Addr: addr, Want: length, Got: n}
	}
	return buf, nil
}
