package mhw

import (
	"time"

	"github.com/samber/lo"
)

// Session identifies the lobby the local player is in
type Session struct {
	ID           string
	Hostname     string
	InMission    bool
	InExpedition bool
}

// Hunting reports whether damage is being tracked
func (s Session) Hunting() bool {
	return s.InMission || s.InExpedition
}

// Player is one slot of the damage table
type Player struct {
	Name        string
	Damage      int
	LeftSession bool
}

// Monster is one tracked large monster
type Monster struct {
	ID       uint32
	StrID    string
	Name     string
	HP       uint32
	MaxHP    uint32
	Size     float64
	Crown    Crown
	Degraded bool // values failed plausibility checks
}

// HPFraction returns hp/max_hp, or 0 when max_hp is unknown
func (m Monster) HPFraction() float64 {
	if m.MaxHP == 0 {
		return 0
	}
	return float64(m.HP) / float64(m.MaxHP)
}

// Snapshot is the hunt state of one tick. It is not modified after it is published.
type Snapshot struct {
	Taken     time.Time
	Session   Session
	Players   []Player
	Monsters  []Monster
	Frametime time.Duration
}

// TotalDamage sums the damage of every player slot
func (s Snapshot) TotalDamage() int {
	return lo.SumBy(s.Players, func(p Player) int { return p.Damage })
}

// DamageShare returns the player's fraction of the total damage
func (s Snapshot) DamageShare(p Player) float64 {
	total := s.TotalDamage()
	if total == 0 {
		return 0
	}
	return float64(p.Damage) / float64(total)
}
