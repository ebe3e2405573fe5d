package hunt

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/jnesss/hunt-recorder/memory"
	"github.com/jnesss/hunt-recorder/pattern"
	"github.com/jnesss/hunt-recorder/types"
)

// maxInstructionLen is the longest x86-64 instruction
const maxInstructionLen = 15

// Anchor is the resolved address of one signature
type Anchor struct {
	Kind        pattern.Kind
	Found       bool
	RegionBegin uint64 // target address of the matching region
	RegionInfo  string
	Offset      int    // match offset within the region
	Site        uint64 // target address of the match
	Address     uint64 // operand target for RIP-relative signatures, the site otherwise
	Instruction string // decoded instruction at the site
}

// Anchors is the table built once at startup and only read afterwards
type Anchors struct {
	byKind map[pattern.Kind]Anchor
	order  []pattern.Kind
}

// NewAnchors creates a table from already resolved anchors
func NewAnchors(list ...Anchor) *Anchors {
	a := &Anchors{byKind: make(map[pattern.Kind]Anchor)}
	for _, anchor := range list {
		if _, dup := a.byKind[anchor.Kind]; !dup {
			a.order = append(a.order, anchor.Kind)
		}
		a.byKind[anchor.Kind] = anchor
	}
	return a
}

// Address returns the resolved address of a found anchor
func (a *Anchors) Address(kind pattern.Kind) (uint64, bool) {
	anchor, ok := a.byKind[kind]
	if !ok || !anchor.Found {
		return 0, false
	}
	return anchor.Address, true
}

// Get returns the anchor of the given kind
func (a *Anchors) Get(kind pattern.Kind) (Anchor, bool) {
	anchor, ok := a.byKind[kind]
	return anchor, ok
}

// List returns all anchors in scan order
func (a *Anchors) List() []Anchor {
	return lo.Map(a.order, func(k pattern.Kind, _ int) Anchor { return a.byKind[k] })
}

// Missing returns the kinds that were not found
func (a *Anchors) Missing() []pattern.Kind {
	return lo.Filter(a.order, func(k pattern.Kind, _ int) bool { return !a.byKind[k].Found })
}

// Require fails when an anchor the run depends on is missing.
// Monsters is only required when monsters are shown.
func (a *Anchors) Require(showMonsters bool) error {
	required := []pattern.Kind{pattern.PlayerNameLinux, pattern.PlayerDamage}
	if showMonsters {
		required = append(required, pattern.Monsters)
	}

	for _, kind := range required {
		if _, ok := a.Address(kind); !ok {
			return types.NewFatal(types.KindPatternMissing, kind.String(),
				errors.Errorf("can't find AoB for %s, try running with sudo and/or specify a pid", kind))
		}
	}
	return nil
}

// String renders the table for the debug listing
func (a *Anchors) String() string {
	var b strings.Builder
	for _, anchor := range a.List() {
		if !anchor.Found {
			fmt.Fprintf(&b, "%-18s not found\n", anchor.Kind)
			continue
		}
		fmt.Fprintf(&b, "%-18s region 0x%x +0x%x site 0x%x -> 0x%x  %s\n",
			anchor.Kind, anchor.RegionBegin, anchor.Offset, anchor.Site, anchor.Address, anchor.Instruction)
	}
	return b.String()
}

// Scanner finds every signature across a region set and resolves the matches
type Scanner struct {
	reader     memory.Reader
	signatures []pattern.Signature
	log        *slog.Logger
}

// NewScanner creates a scanner for the fixed signature set
func NewScanner(reader memory.Reader, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		reader:     reader,
		signatures: pattern.All(),
		log:        logger,
	}
}

// Scan runs the matcher for every signature in order and resolves each first hit.
// Regions must still hold their bytes.
func (s *Scanner) Scan(regions []*memory.Region) *Anchors {
	list := make([]Anchor, 0, len(s.signatures))
	for _, sig := range s.signatures {
		list = append(list, s.scanOne(sig, regions))
	}
	return NewAnchors(list...)
}

func (s *Scanner) scanOne(sig pattern.Signature, regions []*memory.Region) Anchor {
	anchor := Anchor{Kind: sig.Kind}

	m, ok := pattern.FindFirst(sig, regions)
	if !ok {
		s.log.Info("signature not found", "kind", sig.Kind)
		return anchor
	}

	anchor.RegionBegin = m.Region.Base()
	anchor.RegionInfo = m.Region.Info
	anchor.Offset = m.Offset
	anchor.Site = m.Address

	if !sig.Relative {
		anchor.Address = m.Address
		anchor.Found = true
		s.log.Info("signature found", "kind", sig.Kind, "site", fmt.Sprintf("0x%x", m.Address))
		return anchor
	}

	target, err := pattern.Resolve(s.reader, m.Address)
	if err != nil {
		s.log.Warn("failed to resolve signature", "kind", sig.Kind, "site", fmt.Sprintf("0x%x", m.Address), "error", err)
		return anchor
	}
	anchor.Address = target
	anchor.Found = true

	code := m.Region.Data[m.Offset:min(m.Offset+maxInstructionLen, len(m.Region.Data))]
	if site, err := pattern.Inspect(code, m.Address); err != nil {
		s.log.Warn("failed to decode anchor site", "kind", sig.Kind, "error", err)
	} else {
		anchor.Instruction = site.Text
		if !site.Consistent(target) {
			s.log.Warn("anchor site does not decode as a 7-byte RIP-relative load",
				"kind", sig.Kind, "instruction", site.Text, "resolved", fmt.Sprintf("0x%x", target))
		}
	}

	s.log.Info("signature found", "kind", sig.Kind,
		"site", fmt.Sprintf("0x%x", m.Address), "address", fmt.Sprintf("0x%x", target))
	return anchor
}
