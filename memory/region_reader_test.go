package memory

import (
	"bytes"
	"testing"
)

func TestRegionReaderServesByOrigin(t *testing.T) {
	regions := []*Region{
		{Begin: 0, End: 4, Origin: 0x2000, Data: []byte{5, 6, 7, 8}, FromDump: true},
		{Begin: 0, End: 4, Origin: 0x1000, Data: []byte{1, 2, 3, 4}, FromDump: true},
		{Begin: 0x3000, End: 0x3004}, // unfilled, ignored
	}
	rr := NewRegionReader(regions)

	got, err := rr.Read(0x1001, 2)
	if err != nil || !bytes.Equal(got, []byte{2, 3}) {
		t.Errorf("Read(0x1001) = %v, %v", got, err)
	}
	got, err = rr.Read(0x2000, 4)
	if err != nil || !bytes.Equal(got, []byte{5, 6, 7, 8}) {
		t.Errorf("Read(0x2000) = %v, %v", got, err)
	}

	got[0] = 99
	if regions[0].Data[0] != 5 {
		t.Error("Read returned an alias of the region buffer")
	}

	for _, addr := range []uint64{0x0fff, 0x1004, 0x3000} {
		if _, err := rr.Read(addr, 1); err == nil {
			t.Errorf("Read(0x%x) succeeded, want error", addr)
		}
	}
	if _, err := rr.Read(0x1002, 4); err == nil {
		t.Error("read crossing the region end succeeded")
	}
}
