// Package memory reads another process's address space.
//
// Every consumer goes through the Reader interface so the same scan and
// extraction code runs against a live process, a loaded dump, or a test buffer.
package memory

import (
	"encoding/binary"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

//go:generate go run go.uber.org/mock/mockgen -destination=mocks/reader.go -package=mocks . Reader

// Reader defines how bytes are fetched from a target address space.
// A successful Read returns exactly length bytes; anything less is an error.
type Reader interface {
	Read(addr uint64, length int) ([]byte, error)
}

// ReaderFunc adapts a function to the Reader interface
type ReaderFunc func(addr uint64, length int) ([]byte, error)

func (f ReaderFunc) Read(addr uint64, length int) ([]byte, error) {
	return f(addr, length)
}

// ReadU32 reads a little-endian uint32 at addr
func ReadU32(r Reader, addr uint64) (uint32, error) {
	b, err := r.Read(addr, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadI32 reads a little-endian int32 at addr
func ReadI32(r Reader, addr uint64) (int32, error) {
	v, err := ReadU32(r, addr)
	return int32(v), err
}

// ReadU64 reads a little-endian uint64 at addr
func ReadU64(r Reader, addr uint64) (uint64, error) {
	b, err := r.Read(addr, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadF32 reads a little-endian IEEE-754 float at addr
func ReadF32(r Reader, addr uint64) (float32, error) {
	v, err := ReadU32(r, addr)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadByte reads a single byte at addr
func ReadByte(r Reader, addr uint64) (byte, error) {
	b, err := r.Read(addr, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadString reads a fixed-size, NUL-padded string field.
// Bytes after the first NUL are ignored and invalid UTF-8 is dropped.
func ReadString(r Reader, addr uint64, length int) (string, error) {
	b, err := r.Read(addr, length)
	if err != nil {
		return "", err
	}
	return DecodeString(b), nil
}

// DecodeString converts a NUL-padded buffer into a valid UTF-8 string
func DecodeString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			b = b[:i]
			break
		}
	}
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), "")
}

// ReadPointerChain follows base through offsets: every offset but the last is
// added and then dereferenced, the last one is only added.
//
//	ReadPointerChain(r, base)          == base
//	ReadPointerChain(r, base, a)       == base + a
//	ReadPointerChain(r, base, a, b)    == [base + a] + b
func ReadPointerChain(r Reader, base uint64, offsets ...int64) (uint64, error) {
	addr := base
	for i, off := range offsets {
		addr = uint64(int64(addr) + off)
		if i == len(offsets)-1 {
			break
		}
		next, err := ReadU64(r, addr)
		if err != nil {
			return 0, errors.Wrapf(err, "failed to follow pointer chain at step %d (0x%x)", i, addr)
		}
		if next == 0 {
			return 0, errors.Errorf("null pointer at chain step %d (0x%x)", i, addr)
		}
		addr = next
	}
	return addr, nil
}
