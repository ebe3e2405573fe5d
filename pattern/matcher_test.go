package pattern

import (
	"bytes"
	"testing"

	"pgregory.net/rapid"

	"github.com/jnesss/hunt-recorder/memory"
)

// instantiate fills the signature's wildcards from fill
func instantiate(sig Signature, fill []byte) []byte {
	out := make([]byte, sig.Len())
	for i, slot := range sig.Slots {
		if slot.Wildcard {
			out[i] = fill[i%len(fill)]
		} else {
			out[i] = slot.Value
		}
	}
	return out
}

func TestSeedIsLeadingConcreteBytes(t *testing.T) {
	for _, sig := range All() {
		seed := sig.Seed(MinSeedLen)
		if len(seed) != MinSeedLen {
			t.Fatalf("%v seed length = %d", sig.Kind, len(seed))
		}
		for i, b := range seed {
			if sig.Slots[i].Wildcard || sig.Slots[i].Value != b {
				t.Errorf("%v seed[%d] = %02X does not equal slot %d", sig.Kind, i, b, i)
			}
		}
	}

	// the seed stops at the first wildcard
	sig := MustParse(PlayerName, "48 8B 0D ?? 11", true)
	if got := sig.Seed(5); !bytes.Equal(got, []byte{0x48, 0x8B, 0x0D}) {
		t.Errorf("Seed(5) = %X", got)
	}
}

func TestSeedPrefixOfEveryMatch(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sig := rapid.SampledFrom(All()).Draw(t, "sig")
		fill := rapid.SliceOfN(rapid.Byte(), 1, 64).Draw(t, "fill")
		buf := instantiate(sig, fill)

		off, ok := sig.Find(buf)
		if !ok || off != 0 {
			t.Fatalf("Find = %d, %v; want 0, true", off, ok)
		}
		seed := sig.Seed(MinSeedLen)
		if !bytes.HasPrefix(buf[off:], seed) {
			t.Fatalf("seed %X is not a prefix of the match", seed)
		}
	})
}

func TestWildcardSemantics(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sig := rapid.SampledFrom(All()).Draw(t, "sig")
		a := instantiate(sig, rapid.SliceOfN(rapid.Byte(), 1, 64).Draw(t, "a"))
		b := instantiate(sig, rapid.SliceOfN(rapid.Byte(), 1, 64).Draw(t, "b"))

		if !sig.MatchAt(a, 0) || !sig.MatchAt(b, 0) {
			t.Fatal("sequences differing only at wildcards must both match")
		}

		// flipping any concrete byte breaks the match
		concrete := make([]int, 0, sig.Len())
		for i, slot := range sig.Slots {
			if !slot.Wildcard {
				concrete = append(concrete, i)
			}
		}
		i := rapid.SampledFrom(concrete).Draw(t, "concrete")
		a[i] ^= 0xFF
		if sig.MatchAt(a, 0) {
			t.Fatalf("match survived a change at concrete slot %d", i)
		}
	})
}

func TestFindAdvancesOneByteOnMismatch(t *testing.T) {
	sig, _ := Lookup(PlayerName)
	match := instantiate(sig, []byte{0x11})

	// 00 | 48 8B 0D AA BB CC | 48 8B 0D ... full PlayerName
	region := append([]byte{0x00, 0x48, 0x8B, 0x0D, 0xAA, 0xBB, 0xCC}, match...)
	off, ok := sig.Find(region)
	if !ok {
		t.Fatal("PlayerName not found")
	}
	if off != 7 {
		t.Errorf("offset = %d, want 7", off)
	}
}

func TestFindOverlappingSeed(t *testing.T) {
	sig := MustParse(PlayerName, "AA BB CC ?? 48 8B 0D", true)
	buf := []byte{0xAA, 0xBB, 0xCC, 0xAA, 0xBB, 0xCC, 0x00, 0x48, 0x8B, 0x0D}
	off, ok := sig.Find(buf)
	if !ok || off != 3 {
		t.Errorf("Find = %d, %v; want 3, true", off, ok)
	}
}

func TestFindEdges(t *testing.T) {
	sig := MustParse(Emetta, "45 6D 65 74 74 61", false)
	tests := []struct {
		name string
		buf  []byte
		want int
		ok   bool
	}{
		{"empty", nil, -1, false},
		{"shorter than signature", []byte("Emett"), -1, false},
		{"exact", []byte("Emetta"), 0, true},
		{"at end", []byte("xxEmetta"), 2, true},
		{"truncated at end", []byte("xxxEmett"), -1, false},
		{"first of two", []byte("EmettaEmetta"), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			off, ok := sig.Find(tt.buf)
			if off != tt.want || ok != tt.ok {
				t.Errorf("Find = %d, %v; want %d, %v", off, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestFindFirstAcrossRegions(t *testing.T) {
	sig := MustParse(Emetta, "45 6D 65 74 74 61", false)
	regions := []*memory.Region{
		{Begin: 0x1000, End: 0x1008, Data: []byte("nothing.")},
		{Begin: 0x2000, End: 0x2010}, // unfilled
		{Begin: 0x3000, End: 0x3008, Data: []byte("xEmettax")},
		{Begin: 0x4000, End: 0x4006, Data: []byte("Emetta")},
	}

	m, ok := FindFirst(sig, regions)
	if !ok {
		t.Fatal("not found")
	}
	if m.RegionIndex != 2 || m.Offset != 1 || m.Address != 0x3001 {
		t.Errorf("match = region %d offset %d address 0x%x", m.RegionIndex, m.Offset, m.Address)
	}

	if _, ok := FindFirst(sig, regions[:2]); ok {
		t.Error("found in regions that do not contain it")
	}
}
