package pattern

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/jnesss/hunt-recorder/memory"
)

// Layout of the "REX.W opcode ModRM disp32" instructions the signatures start with
const (
	OperandOffset   = 3
	InstructionSize = 7
)

// Target computes the absolute address referenced by a RIP-relative instruction
// at site with the given displacement. The displacement is signed.
func Target(site uint64, disp int32) uint64 {
	return uint64(int64(site) + InstructionSize + int64(disp))
}

// Resolve reads the displacement of the instruction at site and returns its target
func Resolve(r memory.Reader, site uint64) (uint64, error) {
	disp, err := memory.ReadI32(r, site+OperandOffset)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read displacement at 0x%x", site+OperandOffset)
	}
	return Target(site, disp), nil
}

// ResolveBytes resolves from the instruction bytes when they are at hand
func ResolveBytes(code []byte, site uint64) (uint64, error) {
	if len(code) < InstructionSize {
		return 0, errors.Errorf("need %d instruction bytes, have %d", InstructionSize, len(code))
	}
	disp := int32(binary.LittleEndian.Uint32(code[OperandOffset:InstructionSize]))
	return Target(site, disp), nil
}
