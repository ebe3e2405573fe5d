// Package pattern locates instruction sites in target memory by byte signature
// and resolves the RIP-relative operands found there.
package pattern

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Kind identifies one of the fixed signatures
type Kind int

// Signature kinds, in scan order
const (
	PlayerName Kind = iota
	CurrentPlayerName
	PlayerDamage
	Monsters
	PlayerBuff
	LobbyStatus
	Emetta
	PlayerNameLinux
)

var kindNames = [...]string{
	PlayerName:        "PlayerName",
	CurrentPlayerName: "CurrentPlayerName",
	PlayerDamage:      "PlayerDamage",
	Monsters:          "Monsters",
	PlayerBuff:        "PlayerBuff",
	LobbyStatus:       "LobbyStatus",
	Emetta:            "Emetta",
	PlayerNameLinux:   "PlayerNameLinux",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// MinSeedLen is the number of leading concrete bytes every signature must have
const MinSeedLen = 3

// Slot is one signature position: a concrete byte or a wildcard
type Slot struct {
	Value    byte
	Wildcard bool
}

// Signature is a byte pattern with per-position wildcards
type Signature struct {
	Kind  Kind
	Slots []Slot

	// Relative marks signatures whose match site is a RIP-relative
	// instruction; the anchor is the operand's target, not the site.
	Relative bool
}

// Len returns the total number of slots, wildcards included
func (s Signature) Len() int {
	return len(s.Slots)
}

// String renders the signature in "48 8B ?? .." form
func (s Signature) String() string {
	parts := make([]string, len(s.Slots))
	for i, slot := range s.Slots {
		if slot.Wildcard {
			parts[i] = "??"
		} else {
			parts[i] = fmt.Sprintf("%02X", slot.Value)
		}
	}
	return strings.Join(parts, " ")
}

// Validate checks the minimum length and the concrete seed prefix
func (s Signature) Validate() error {
	if len(s.Slots) < MinSeedLen {
		return errors.Errorf("%s: signature shorter than %d slots", s.Kind, MinSeedLen)
	}
	for i := 0; i < MinSeedLen; i++ {
		if s.Slots[i].Wildcard {
			return errors.Errorf("%s: slot %d of the seed is a wildcard", s.Kind, i)
		}
	}
	return nil
}

// Parse reads a signature from space separated hex bytes; "?" or "??" is a wildcard
func Parse(kind Kind, text string, relative bool) (Signature, error) {
	sig := Signature{Kind: kind, Relative: relative}
	for _, tok := range strings.Fields(text) {
		if tok == "?" || tok == "??" {
			sig.Slots = append(sig.Slots, Slot{Wildcard: true})
			continue
		}
		v, err := strconv.ParseUint(tok, 16, 8)
		if err != nil {
			return Signature{}, errors.Wrapf(err, "%s: invalid byte %q", kind, tok)
		}
		sig.Slots = append(sig.Slots, Slot{Value: byte(v)})
	}
	if err := sig.Validate(); err != nil {
		return Signature{}, err
	}
	return sig, nil
}

// MustParse is Parse for the static signature table
func MustParse(kind Kind, text string, relative bool) Signature {
	sig, err := Parse(kind, text, relative)
	if err != nil {
		panic(err)
	}
	return sig
}

var signatures = []Signature{
	MustParse(PlayerName, "48 8B 0D ?? ?? ?? ?? 48 8D 54 24 38 C6 44 24 20 00 E8 ?? ?? ?? ?? 48 8B 5C 24 70 48 8B 7C 24 60 48 83 C4 68 C3", true),
	MustParse(CurrentPlayerName, "48 8B 0D ?? ?? ?? ?? 48 8D 55 ?? 45 31 C9 41 89 C0 E8", true),
	MustParse(PlayerDamage, "48 8B 0D ?? ?? ?? ?? E8 ?? ?? ?? ?? 48 8B D8 48 85 C0 75 04 33 C9", true),
	MustParse(Monsters, "48 8B 0D ?? ?? ?? ?? B2 01 E8 ?? ?? ?? ?? C6 83 ?? ?? ?? ?? ?? 48 8B 0D", true),
	MustParse(PlayerBuff, "48 8B 05 ?? ?? ?? ?? 41 8B 94 00 ?? ?? ?? ?? 89 57", true),
	MustParse(LobbyStatus, "48 8B 0D ?? ?? ?? ?? E8 ?? ?? ?? ?? 48 8B 4E ?? F3 0F 10 86 ?? ?? ?? ?? F3 0F 58 86 ?? ?? ?? ?? F3 0F 11 86 ?? ?? ?? ?? E8 ?? ?? ?? ?? 48 8B 4E", true),
	// literal "Emetta"
	MustParse(Emetta, "45 6D 65 74 74 61", false),
	MustParse(PlayerNameLinux, "48 8B 0D ?? ?? ?? ?? 48 8D 54 24 ?? ?? ?? ?? ?? ?? ?? ?? ?? ?? ?? ?? ?? ?? 48 8B 5C 24 60 48 83 C4 50 5F C3", true),
}

// All returns the fixed signature set in scan order
func All() []Signature {
	out := make([]Signature, len(signatures))
	copy(out, signatures)
	return out
}

// Lookup returns the signature of the given kind
func Lookup(kind Kind) (Signature, bool) {
	for _, s := range signatures {
		if s.Kind == kind {
			return s, true
		}
	}
	return Signature{}, false
}
