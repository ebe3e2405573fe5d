package hunt

import (
	"bytes"
	"encoding/binary"
	"log/slog"
	"testing"

	"github.com/jnesss/hunt-recorder/dump"
	"github.com/jnesss/hunt-recorder/memory"
	"github.com/jnesss/hunt-recorder/mhw"
	"github.com/jnesss/hunt-recorder/pattern"
)

// fixture is a two-region image of the game: code holding the signature
// sites and data holding the structures they point at
const (
	codeOrigin = 0x140000000
	dataOrigin = 0x150000000
	codeSize   = 0x1000
	dataSize   = 0x56000

	lobbyBase     = dataOrigin
	namesBase     = dataOrigin
	damageSlot    = dataOrigin + 0x100
	nameSlot      = dataOrigin + 0x108
	damageRoot    = dataOrigin + 0x1000
	playerRecords = dataOrigin + 0x2000
)

type fixture struct {
	code []byte
	data []byte
}

func newFixture() *fixture {
	return &fixture{
		code: make([]byte, codeSize),
		data: make([]byte, dataSize),
	}
}

// standardFixture places every signature except the omitted ones and fills
// the session and two players
func standardFixture(t *testing.T, omit ...pattern.Kind) *fixture {
	t.Helper()
	f := newFixture()

	targets := map[pattern.Kind]uint64{
		pattern.PlayerName:        dataOrigin + 0x200,
		pattern.CurrentPlayerName: dataOrigin + 0x208,
		pattern.PlayerDamage:      damageSlot,
		pattern.Monsters:          dataOrigin + 0x300,
		pattern.PlayerBuff:        dataOrigin + 0x308,
		pattern.LobbyStatus:       lobbyBase,
		pattern.PlayerNameLinux:   nameSlot,
	}

	skip := make(map[pattern.Kind]bool)
	for _, k := range omit {
		skip[k] = true
	}

	offset := 0x10
	for _, sig := range pattern.All() {
		if !skip[sig.Kind] {
			f.place(t, sig, offset, targets[sig.Kind])
		}
		offset += 0x80
	}

	f.putString(lobbyBase+mhw.SessionID, "ABCDEFGH0123", mhw.IDLength)
	f.putString(lobbyBase+mhw.SessionHostName, "alice", mhw.PlayerNameLength)
	f.data[mhw.MissionStatusOffset] = 1

	f.putU64(damageSlot, damageRoot)
	f.putU64(nameSlot, namesBase)
	f.player(0, "alice", 1200)
	f.player(1, "bob", 300)
	return f
}

// place writes an instance of sig at offset, pointing its operand at target
func (f *fixture) place(t *testing.T, sig pattern.Signature, offset int, target uint64) {
	t.Helper()
	b := make([]byte, sig.Len())
	for i, slot := range sig.Slots {
		b[i] = slot.Value
	}
	if sig.Relative {
		site := int64(codeOrigin + offset)
		disp := int64(target) - site - pattern.InstructionSize
		binary.LittleEndian.PutUint32(b[pattern.OperandOffset:], uint32(int32(disp)))
	}
	copy(f.code[offset:], b)
}

func (f *fixture) player(slot int, name string, damage uint32) {
	record := uint64(playerRecords + slot*0x100)
	f.putU64(damageRoot+mhw.FirstPlayerPtr+uint64(slot)*mhw.NextPlayerPtr, record)
	binary.LittleEndian.PutUint32(f.at(record+mhw.PlayerDamage, 4), damage)
	f.putString(namesBase+mhw.FirstPlayerName+uint64(slot)*mhw.NextPlayerName, name, mhw.PlayerNameLength)
}

func (f *fixture) at(addr uint64, n int) []byte {
	off := addr - dataOrigin
	return f.data[off : off+uint64(n)]
}

func (f *fixture) putU64(addr, v uint64) {
	binary.LittleEndian.PutUint64(f.at(addr, 8), v)
}

func (f *fixture) putString(addr uint64, s string, n int) {
	buf := f.at(addr, n)
	clear(buf)
	copy(buf, s)
}

// liveRegions returns unfilled regions as the maps file would list them
func (f *fixture) liveRegions() []*memory.Region {
	return []*memory.Region{
		{Begin: codeOrigin, End: codeOrigin + codeSize, Info: "r-xp game.exe"},
		{Begin: dataOrigin, End: dataOrigin + dataSize, Info: "rw-p game.exe"},
	}
}

// reader serves the fixture as a live process would
func (f *fixture) reader() memory.Reader {
	regions := f.liveRegions()
	regions[0].Data = bytes.Clone(f.code)
	regions[1].Data = bytes.Clone(f.data)
	return memory.NewRegionReader(regions)
}

// writeDump stores the fixture in dump format under a new temp dir
func (f *fixture) writeDump(t *testing.T) string {
	t.Helper()
	store, err := dump.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range f.liveRegions() {
		if err := r.Fill(f.reader()); err != nil {
			t.Fatal(err)
		}
		if err := store.Write(r); err != nil {
			t.Fatal(err)
		}
	}
	return store.Dir()
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(new(bytes.Buffer), nil))
}
