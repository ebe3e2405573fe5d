package pattern

import (
	"bytes"

	"github.com/jnesss/hunt-recorder/memory"
)

// Seed returns the first k leading concrete bytes of the signature.
// It stops early at the first wildcard.
func (s Signature) Seed(k int) []byte {
	seed := make([]byte, 0, k)
	for _, slot := range s.Slots {
		if slot.Wildcard || len(seed) == k {
			break
		}
		seed = append(seed, slot.Value)
	}
	return seed
}

// MatchAt reports whether the signature matches buf starting at p
func (s Signature) MatchAt(buf []byte, p int) bool {
	if p < 0 || p+len(s.Slots) > len(buf) {
		return false
	}
	for i, slot := range s.Slots {
		if !slot.Wildcard && buf[p+i] != slot.Value {
			return false
		}
	}
	return true
}

// Find returns the offset of the first match of the signature in buf.
// Candidates come from a byte scan for the seed's first byte; on a failed
// verify the scan resumes one byte later so overlapping matches are kept.
func (s Signature) Find(buf []byte) (int, bool) {
	n := len(s.Slots)
	seed := s.Seed(MinSeedLen)
	if len(seed) == 0 || n > len(buf) {
		return -1, false
	}

	last := len(buf) - n // last offset where a full match fits
	for p := 0; p <= last; p++ {
		i := bytes.IndexByte(buf[p:last+1], seed[0])
		if i < 0 {
			return -1, false
		}
		p += i
		if !bytes.Equal(buf[p:p+len(seed)], seed) {
			continue
		}
		if s.matchTail(buf, p, len(seed)) {
			return p, true
		}
	}
	return -1, false
}

func (s Signature) matchTail(buf []byte, p, from int) bool {
	for i := from; i < len(s.Slots); i++ {
		slot := s.Slots[i]
		if !slot.Wildcard && buf[p+i] != slot.Value {
			return false
		}
	}
	return true
}

// Match is where a signature was first found
type Match struct {
	Kind        Kind
	RegionIndex int
	Region      *memory.Region
	Offset      int    // offset of the first matched byte within the region
	Address     uint64 // target address of the first matched byte
}

// FindFirst searches the filled regions in order and returns the first match.
// Unfilled regions are skipped.
func FindFirst(sig Signature, regions []*memory.Region) (Match, bool) {
	for i, r := range regions {
		if len(r.Data) == 0 {
			continue
		}
		off, ok := sig.Find(r.Data)
		if !ok {
			continue
		}
		return Match{
			Kind:        sig.Kind,
			RegionIndex: i,
			Region:      r,
			Offset:      off,
			Address:     r.Base() + uint64(off),
		}, true
	}
	return Match{}, false
}
