package hunt

import (
	"fmt"
	"log/slog"

	"github.com/jnesss/hunt-recorder/mhw"
)

// Monitor compares consecutive snapshots and warns when values move the wrong
// way, which usually means a walk has drifted off its structure.
type Monitor struct {
	prev *mhw.Snapshot
	log  *slog.Logger
}

// NewMonitor creates a monitor
func NewMonitor(logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{log: logger}
}

// Check records snap and returns the violations against the previous snapshot
func (m *Monitor) Check(snap mhw.Snapshot) []string {
	prev := m.prev
	m.prev = &snap
	if prev == nil {
		return nil
	}

	var violations []string

	sameHunt := prev.Session.ID == snap.Session.ID && prev.Session.Hunting() && snap.Session.Hunting()
	if sameHunt && snap.TotalDamage() < prev.TotalDamage() {
		violations = append(violations, fmt.Sprintf("total damage dropped from %d to %d", prev.TotalDamage(), snap.TotalDamage()))
	}

	for i, cur := range snap.Monsters {
		if i >= len(prev.Monsters) {
			break
		}
		before := prev.Monsters[i]
		if cur.ID != before.ID || cur.MaxHP != before.MaxHP || cur.Degraded || before.Degraded {
			continue
		}
		// returning to full health counts as a reset
		if cur.HP > before.HP && cur.HP != cur.MaxHP {
			violations = append(violations, fmt.Sprintf("%s hp rose from %d to %d", cur.Name, before.HP, cur.HP))
		}
	}

	for _, v := range violations {
		m.log.Warn("snapshot sanity check failed", "problem", v)
	}
	return violations
}
