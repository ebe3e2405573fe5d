package memory

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestTypedReads(t *testing.T) {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[0:], 0xFFFFFFFE)
	binary.LittleEndian.PutUint64(buf[8:], 0x1122334455667788)
	binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(1.5))
	copy(buf[20:], "alice\x00zz")
	space := fakeSpace{0x100: buf}

	if v, err := ReadI32(space, 0x100); err != nil || v != -2 {
		t.Errorf("ReadI32 = %d, %v; want -2", v, err)
	}
	if v, err := ReadU64(space, 0x108); err != nil || v != 0x1122334455667788 {
		t.Errorf("ReadU64 = 0x%x, %v", v, err)
	}
	if v, err := ReadF32(space, 0x110); err != nil || v != 1.5 {
		t.Errorf("ReadF32 = %v, %v; want 1.5", v, err)
	}
	if v, err := ReadString(space, 0x114, 8); err != nil || v != "alice" {
		t.Errorf("ReadString = %q, %v; want alice", v, err)
	}
	if _, err := ReadU64(space, 0x11c); err == nil {
		t.Error("read past the end succeeded")
	}
}

func TestDecodeStringDropsInvalidUTF8(t *testing.T) {
	got := DecodeString([]byte{'a', 0xff, 'b', 0, 'c'})
	if got != "ab" {
		t.Errorf("DecodeString = %q, want %q", got, "ab")
	}
}

func TestReadPointerChain(t *testing.T) {
	buf := make([]byte, 0x100)
	binary.LittleEndian.PutUint64(buf[0x10:], 0x1080) // [0x1010] -> 0x1080
	binary.LittleEndian.PutUint64(buf[0x88:], 0x10C0) // [0x1088] -> 0x10C0
	space := fakeSpace{0x1000: buf}

	tests := []struct {
		offsets []int64
		want    uint64
	}{
		{nil, 0x1000},
		{[]int64{0x10}, 0x1010},
		{[]int64{0x10, 0x8}, 0x1088},
		{[]int64{0x10, 0x8, -0x40}, 0x1080},
	}
	for _, tt := range tests {
		got, err := ReadPointerChain(space, 0x1000, tt.offsets...)
		if err != nil {
			t.Errorf("ReadPointerChain(%v): %v", tt.offsets, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ReadPointerChain(%v) = 0x%x, want 0x%x", tt.offsets, got, tt.want)
		}
	}

	if _, err := ReadPointerChain(space, 0x1000, 0x20, 0x0); err == nil {
		t.Error("null pointer in chain was followed")
	}
}
