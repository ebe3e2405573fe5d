package memory

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/jnesss/hunt-recorder/types"
)

// Region is one contiguous readable address range [Begin, End) of the target
type Region struct {
	Begin uint64
	End   uint64

	// Origin is the live start address a dumped region was taken from.
	// Dumped regions are rebased to Begin=0, so Origin keeps their place
	// in the target address space.
	Origin uint64

	Info     string // raw maps line or dump file path
	Data     []byte // nil until filled
	FromDump bool
}

// Size returns the region length in bytes
func (r *Region) Size() uint64 {
	return r.End - r.Begin
}

// Base returns the target address of the region's first byte
func (r *Region) Base() uint64 {
	if r.FromDump {
		return r.Origin
	}
	return r.Begin
}

// Contains reports whether addr falls inside the region's target range
func (r *Region) Contains(addr uint64) bool {
	base := r.Base()
	return addr >= base && addr-base < r.Size()
}

// Filled reports whether the region holds its bytes
func (r *Region) Filled() bool {
	return r.Data != nil && uint64(len(r.Data)) == r.Size()
}

// Fill reads the region's bytes once. Dumped regions already carry their bytes.
// A failed or short read leaves Data empty.
func (r *Region) Fill(reader Reader) error {
	if r.FromDump || r.Filled() {
		return nil
	}
	if r.Size() == 0 {
		return types.NewError(types.KindRegionReadFailure, r.Info, errors.New("empty region"))
	}

	data, err := reader.Read(r.Begin, int(r.Size()))
	if err != nil {
		r.Data = nil
		return types.NewError(types.KindRegionReadFailure,
			fmt.Sprintf("0x%x-0x%x", r.Begin, r.End), err)
	}
	r.Data = data
	return nil
}

// Release drops the region's bytes
func (r *Region) Release() {
	r.Data = nil
}

// String formats the region for logs
func (r *Region) String() string {
	if r.FromDump {
		return fmt.Sprintf("dump 0x%x (%d bytes) %s", r.Origin, r.Size(), r.Info)
	}
	return fmt.Sprintf("0x%x-0x%x %s", r.Begin, r.End, r.Info)
}

// Verify checks that regions are well formed, sorted by start address and disjoint.
// Dumped regions are checked by their origin addresses.
func Verify(regions []*Region) error {
	for i, r := range regions {
		if r.End <= r.Begin {
			return types.NewError(types.KindRegionOrderingInvariant, r.Info,
				errors.Errorf("region %d has begin 0x%x >= end 0x%x", i, r.Begin, r.End))
		}
		if i == 0 {
			continue
		}
		prev := regions[i-1]
		if r.Base() < prev.Base() {
			return types.NewError(types.KindRegionOrderingInvariant, r.Info,
				errors.Errorf("region %d at 0x%x starts before region %d at 0x%x", i, r.Base(), i-1, prev.Base()))
		}
		if r.Base() < prev.Base()+prev.Size() {
			return types.NewError(types.KindRegionOrderingInvariant, r.Info,
				errors.Errorf("region %d at 0x%x overlaps region %d ending at 0x%x", i, r.Base(), i-1, prev.Base()+prev.Size()))
		}
	}
	return nil
}

// ReleaseAll drops the bytes of every region
func ReleaseAll(regions []*Region) {
	for _, r := range regions {
		r.Release()
	}
}
