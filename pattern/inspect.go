package pattern

import (
	"github.com/pkg/errors"
	"golang.org/x/arch/x86/x86asm"
)

// Site describes the decoded instruction at a match
type Site struct {
	Text        string // Intel syntax
	Len         int
	RIPRelative bool
	Target      uint64 // only set when RIPRelative
}

// Inspect decodes the x86-64 instruction at the start of code, located at site
func Inspect(code []byte, site uint64) (Site, error) {
	inst, err := x86asm.Decode(code, 64)
	if err != nil {
		return Site{}, errors.Wrapf(err, "failed to decode instruction at 0x%x", site)
	}

	info := Site{
		Text: x86asm.IntelSyntax(inst, site, nil),
		Len:  inst.Len,
	}
	for _, arg := range inst.Args {
		mem, ok := arg.(x86asm.Mem)
		if !ok || mem.Base != x86asm.RIP {
			continue
		}
		info.RIPRelative = true
		info.Target = uint64(int64(site) + int64(inst.Len) + int64(int32(mem.Disp)))
		break
	}
	return info, nil
}

// Consistent reports whether the decoded site agrees with the fixed
// 7-byte layout Resolve assumes
func (s Site) Consistent(resolved uint64) bool {
	return s.RIPRelative && s.Len == InstructionSize && s.Target == resolved
}
