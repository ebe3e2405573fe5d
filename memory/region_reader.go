package memory

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/jnesss/hunt-recorder/types"
)

// RegionReader serves reads from filled regions instead of a live process.
// It backs offline runs over a loaded dump.
type RegionReader struct {
	regions []*Region
}

// NewRegionReader indexes the filled regions by target address
func NewRegionReader(regions []*Region) *RegionReader {
	filled := make([]*Region, 0, len(regions))
	for _, r := range regions {
		if r.Filled() {
			filled = append(filled, r)
		}
	}
	sort.Slice(filled, func(i, j int) bool { return filled[i].Base() < filled[j].Base() })
	return &RegionReader{regions: filled}
}

// Read returns a copy of length bytes at addr. The range must lie inside one region.
func (rr *RegionReader) Read(addr uint64, length int) ([]byte, error) {
	if length <= 0 {
		return nil, errors.Errorf("invalid read length %d", length)
	}

	i := sort.Search(len(rr.regions), func(i int) bool {
		return rr.regions[i].Base() > addr
	}) - 1
	if i < 0 || !rr.regions[i].Contains(addr) {
		return nil, types.NewError(types.KindRegionReadFailure, "",
			errors.Errorf("address 0x%x is not mapped", addr))
	}

	r := rr.regions[i]
	start := addr - r.Base()
	avail := r.Size() - start
	if uint64(length) > avail {
		return nil, &ShortReadError{Addr: addr, Want: length, Got: int(avail)}
	}

	out := make([]byte, length)
	copy(out, r.Data[start:start+uint64(length)])
	return out, nil
}
