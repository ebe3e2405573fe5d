package mhw

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/jnesss/hunt-recorder/pattern"
)

// space is a sparse byte-addressed target for walking tests
type space map[uint64]byte

func (s space) Read(addr uint64, length int) ([]byte, error) {
	out := make([]byte, length)
	for i := range out {
		b, ok := s[addr+uint64(i)]
		if !ok {
			return nil, errors.Errorf("unmapped 0x%x", addr+uint64(i))
		}
		out[i] = b
	}
	return out, nil
}

func (s space) put(addr uint64, b []byte) {
	for i, v := range b {
		s[addr+uint64(i)] = v
	}
}

func (s space) putU64(addr, v uint64) {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	s.put(addr, b)
}

func (s space) putU32(addr uint64, v uint32) {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	s.put(addr, b)
}

func (s space) putF32(addr uint64, v float32) {
	s.putU32(addr, math.Float32bits(v))
}

func (s space) putString(addr uint64, v string, size int) {
	b := make([]byte, size)
	copy(b, v)
	s.put(addr, b)
}

type anchorMap map[pattern.Kind]uint64

func (a anchorMap) Address(kind pattern.Kind) (uint64, bool) {
	addr, ok := a[kind]
	return addr, ok
}
