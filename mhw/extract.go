package mhw

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/jnesss/hunt-recorder/memory"
	"github.com/jnesss/hunt-recorder/pattern"
	"github.com/jnesss/hunt-recorder/types"
)

// Anchors gives the resolved address of each found signature
type Anchors interface {
	Address(kind pattern.Kind) (uint64, bool)
}

// ExtractorConfig holds configuration for creating an Extractor
type ExtractorConfig struct {
	ShowMonsters bool
	Logger       *slog.Logger

	// WarnInterval limits repeated warnings for the same walk step
	WarnInterval time.Duration
}

// Extractor walks from the anchors to the session, player and monster structures
type Extractor struct {
	reader       memory.Reader
	anchors      Anchors
	showMonsters bool
	log          *slog.Logger

	warnInterval time.Duration
	lastWarn     map[string]time.Time
	now          func() time.Time
}

// NewExtractor creates an extractor reading through r
func NewExtractor(r memory.Reader, anchors Anchors, cfg ExtractorConfig) *Extractor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := cfg.WarnInterval
	if interval == 0 {
		interval = 5 * time.Second
	}

	return &Extractor{
		reader:       r,
		anchors:      anchors,
		showMonsters: cfg.ShowMonsters,
		log:          logger,
		warnInterval: interval,
		lastWarn:     make(map[string]time.Time),
		now:          time.Now,
	}
}

// Extract builds one snapshot. Failed reads leave their fields at the default.
func (e *Extractor) Extract() Snapshot {
	snap := Snapshot{Taken: e.now()}

	snap.Session = e.session()
	if snap.Session.Hunting() {
		snap.Players = e.players()
	}
	if e.showMonsters {
		snap.Monsters = e.monsters()
	}
	return snap
}

func (e *Extractor) warn(step string, err error) {
	now := e.now()
	if last, ok := e.lastWarn[step]; ok && now.Sub(last) < e.warnInterval {
		return
	}
	e.lastWarn[step] = now
	e.log.Warn("read failed", "step", step,
		"error", types.NewError(types.KindTickReadFailure, step, err))
}

// session reads lobby fields directly at the LobbyStatus anchor.
// Without the anchor the damage walk is still attempted.
func (e *Extractor) session() Session {
	s := Session{InMission: true}

	base, ok := e.anchors.Address(pattern.LobbyStatus)
	if !ok {
		return s
	}

	if id, err := memory.ReadString(e.reader, base+SessionID, IDLength); err != nil {
		e.warn("session.id", err)
	} else {
		s.ID = id
	}

	if host, err := memory.ReadString(e.reader, base+SessionHostName, PlayerNameLength); err != nil {
		e.warn("session.hostname", err)
	} else {
		s.Hostname = host
	}

	s.InMission = false
	if b, err := memory.ReadByte(e.reader, base+MissionStatusOffset); err != nil {
		e.warn("session.mission", err)
	} else {
		s.InMission = b != 0
	}

	if b, err := memory.ReadByte(e.reader, base+ExpeditionStatusOffset); err != nil {
		e.warn("session.expedition", err)
	} else {
		s.InExpedition = b != 0
	}

	return s
}

func (e *Extractor) players() []Player {
	damageAnchor, ok := e.anchors.Address(pattern.PlayerDamage)
	if !ok {
		return nil
	}
	root, err := memory.ReadU64(e.reader, damageAnchor)
	if err != nil {
		e.warn("damage.root", err)
		return nil
	}

	var names uint64
	if nameAnchor, ok := e.anchors.Address(pattern.PlayerNameLinux); ok {
		if names, err = memory.ReadU64(e.reader, nameAnchor); err != nil {
			e.warn("names.root", err)
		}
	}

	var players []Player
	for i := 0; i < MaxPlayers; i++ {
		damage := 0
		if root != 0 {
			damage = e.playerDamage(root, i)
		}

		name := ""
		if names != 0 {
			addr := names + FirstPlayerName + uint64(i)*NextPlayerName
			if name, err = memory.ReadString(e.reader, addr, PlayerNameLength); err != nil {
				e.warn(fmt.Sprintf("names[%d]", i), err)
			}
		}

		if name == "" && damage == 0 {
			continue
		}
		players = append(players, Player{
			Name:        name,
			Damage:      damage,
			LeftSession: name == "",
		})
	}
	return players
}

func (e *Extractor) playerDamage(root uint64, slot int) int {
	ptr, err := memory.ReadU64(e.reader, root+FirstPlayerPtr+uint64(slot)*NextPlayerPtr)
	if err != nil {
		e.warn(fmt.Sprintf("damage[%d].ptr", slot), err)
		return 0
	}
	if ptr == 0 {
		return 0
	}

	d, err := memory.ReadI32(e.reader, ptr+PlayerDamage)
	if err != nil {
		e.warn(fmt.Sprintf("damage[%d]", slot), err)
		return 0
	}
	if d < 0 {
		return 0
	}
	return int(d)
}

func (e *Extractor) monsters() []Monster {
	anchor, ok := e.anchors.Address(pattern.Monsters)
	if !ok {
		return nil
	}

	node, err := memory.ReadPointerChain(e.reader, anchor, MonsterListChain...)
	if err != nil {
		e.warn("monsters.list", err)
		return nil
	}

	// rewind to the head of the list
	for i := 0; i < maxMonsterLinks; i++ {
		prev, err := memory.ReadU64(e.reader, node+PreviousMonster)
		if err != nil || prev == 0 || prev == node {
			break
		}
		node = prev
	}

	var out []Monster
	seen := make(map[uint64]bool)
	for i := 0; node != 0 && !seen[node] && i < maxMonsterLinks && len(out) < MaxMonsters; i++ {
		seen[node] = true
		if m, ok := e.monster(node + MonsterStartOfStruct); ok {
			out = append(out, m)
		}

		next, err := memory.ReadU64(e.reader, node+NextMonster)
		if err != nil {
			e.warn("monsters.next", err)
			break
		}
		node = next
	}
	return out
}

// monster decodes one record. Records of untracked monsters are skipped.
func (e *Extractor) monster(addr uint64) (Monster, bool) {
	id, err := memory.ReadU32(e.reader, addr+MonsterID)
	if err != nil {
		e.warn("monster.id", err)
		return Monster{}, false
	}

	info, ok := LookupMonster(id)
	if !ok {
		model, err := memory.ReadString(e.reader, addr+MonsterID+MonsterModelIDOffset, MonsterModelIDLength)
		if err != nil {
			return Monster{}, false
		}
		if info, ok = LookupMonsterModel(model); !ok {
			return Monster{}, false
		}
	}

	m := Monster{ID: info.ID, StrID: info.StrID, Name: info.Name}
	m.HP, m.MaxHP, m.Degraded = e.health(addr, info)
	m.Size = e.size(addr, info)
	m.Crown = Classify(m.Size, info.BaseSize, info.Crowns)
	return m, true
}

func (e *Extractor) health(addr uint64, info MonsterInfo) (hp, maxHP uint32, degraded bool) {
	component, err := memory.ReadU64(e.reader, addr+MonsterHealthComponent)
	if err != nil {
		e.warn("monster.health", err)
		return 0, 0, true
	}
	maxF, err := memory.ReadF32(e.reader, component+MonsterHealthMax)
	if err != nil {
		e.warn("monster.max_hp", err)
		return 0, 0, true
	}
	curF, err := memory.ReadF32(e.reader, component+MonsterHealthCurrent)
	if err != nil {
		e.warn("monster.hp", err)
		return 0, 0, true
	}

	if !plausibleHealth(curF, maxF) {
		e.warn("monster.implausible."+info.StrID,
			errors.Errorf("%s hp %v / %v out of range", info.Name, curF, maxF))
		return 0, 0, true
	}
	return uint32(math.Round(float64(curF))), uint32(math.Round(float64(maxF))), false
}

func plausibleHealth(cur, full float32) bool {
	for _, v := range []float32{cur, full} {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return false
		}
	}
	return full > 0 && full <= maxPlausibleHP && cur >= 0 && cur <= full
}

// size scales the base size by the record's scale and modifier.
// Unreadable or implausible scales give 0, which never earns a crown.
func (e *Extractor) size(addr uint64, info MonsterInfo) float64 {
	scale, err := memory.ReadF32(e.reader, addr+MonsterSizeScale)
	if err != nil {
		e.warn("monster.size", err)
		return 0
	}
	s := float64(scale)
	if math.IsNaN(s) || s <= 0 || s >= maxPlausibleSize {
		return 0
	}

	modifier := 1.0
	if mod, err := memory.ReadF32(e.reader, addr+MonsterScaleModifier); err == nil {
		if m := float64(mod); !math.IsNaN(m) && m > 0 && m < 2 {
			modifier = m
		}
	}
	return info.BaseSize * s / modifier
}
