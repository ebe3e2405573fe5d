package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jnesss/hunt-recorder/mhw"
)

// Queue hands snapshots to a Recorder without blocking the refresh loop
type Queue chan mhw.Snapshot

// Publish enqueues snap, dropping it when the recorder is behind
func (q Queue) Publish(snap mhw.Snapshot) {
	select {
	case q <- snap:
	default:
	}
}

// Recorder turns the snapshot stream into hunts and change-only samples
type Recorder struct {
	db        *DB
	targetPID int
	log       *slog.Logger

	huntID      string
	huntSession string
	damage      map[int]mhw.Player
	monsters    map[int]mhw.Monster
}

// NewRecorder creates a recorder writing to db
func NewRecorder(db *DB, targetPID int, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		db:        db,
		targetPID: targetPID,
		log:       logger,
	}
}

// Run records snapshots until ctx is done or in is closed
func (r *Recorder) Run(ctx context.Context, in <-chan mhw.Snapshot) error {
	defer r.endHunt(time.Now())

	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-in:
			if !ok {
				return nil
			}
			r.record(snap)
		}
	}
}

// HuntID returns the hunt being recorded, empty between hunts
func (r *Recorder) HuntID() string {
	return r.huntID
}

func (r *Recorder) record(snap mhw.Snapshot) {
	if !snap.Session.Hunting() {
		r.endHunt(snap.Taken)
		return
	}
	if r.huntID == "" || snap.Session.ID != r.huntSession {
		r.endHunt(snap.Taken)
		r.startHunt(snap)
	}
	if r.huntID == "" {
		return
	}

	for slot, p := range snap.Players {
		if prev, ok := r.damage[slot]; ok && prev == p {
			continue
		}
		r.damage[slot] = p
		err := r.db.InsertDamage(&DamageRecord{
			HuntID:      r.huntID,
			Timestamp:   snap.Taken,
			Slot:        slot,
			Name:        p.Name,
			Damage:      p.Damage,
			LeftSession: p.LeftSession,
		})
		if err != nil {
			r.log.Warn("failed to record damage", "hunt", r.huntID, "error", err)
		}
	}

	for slot, m := range snap.Monsters {
		if prev, ok := r.monsters[slot]; ok && prev.ID == m.ID && prev.HP == m.HP && prev.MaxHP == m.MaxHP {
			continue
		}
		r.monsters[slot] = m
		err := r.db.InsertMonster(&MonsterRecord{
			HuntID:    r.huntID,
			Timestamp: snap.Taken,
			Slot:      slot,
			MonsterID: m.ID,
			Name:      m.Name,
			HP:        m.HP,
			MaxHP:     m.MaxHP,
			Size:      m.Size,
			Crown:     m.Crown.String(),
		})
		if err != nil {
			r.log.Warn("failed to record monster", "hunt", r.huntID, "error", err)
		}
	}
}

func (r *Recorder) startHunt(snap mhw.Snapshot) {
	hunt := &HuntRecord{
		ID:        uuid.NewString(),
		StartedAt: snap.Taken,
		SessionID: snap.Session.ID,
		Host:      snap.Session.Hostname,
		TargetPID: r.targetPID,
	}
	if err := r.db.InsertHunt(hunt); err != nil {
		r.log.Warn("failed to record hunt", "error", err)
		return
	}

	r.huntID = hunt.ID
	r.huntSession = hunt.SessionID
	r.damage = make(map[int]mhw.Player)
	r.monsters = make(map[int]mhw.Monster)
	r.log.Info("hunt started", "hunt", hunt.ID, "session", hunt.SessionID, "host", hunt.Host)
}

func (r *Recorder) endHunt(at time.Time) {
	if r.huntID == "" {
		return
	}
	if err := r.db.EndHunt(r.huntID, at); err != nil {
		r.log.Warn("failed to close hunt", "hunt", r.huntID, "error", err)
	}
	r.log.Info("hunt ended", "hunt", r.huntID)
	r.huntID = ""
	r.huntSession = ""
}
