// Package database keeps a history of hunts in a local sqlite file.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// FileName is the database file created in the history directory
const FileName = "hunt_history.db"

// DB handles database operations
type DB struct {
	Db   *sql.DB
	Path string
}

// HuntRecord is one mission or expedition
type HuntRecord struct {
	ID        string
	StartedAt time.Time
	EndedAt   sql.NullTime
	SessionID string
	Host      string
	TargetPID int
}

// DamageRecord is a change in one player's damage
type DamageRecord struct {
	HuntID      string
	Timestamp   time.Time
	Slot        int
	Name        string
	Damage      int
	LeftSession bool
}

// MonsterRecord is a change in one monster's health
type MonsterRecord struct {
	HuntID    string
	Timestamp time.Time
	Slot      int
	MonsterID uint32
	Name      string
	HP        uint32
	MaxHP     uint32
	Size      float64
	Crown     string
}

// NewDB opens (creating if needed) the history database in dataDir
func NewDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create data directory")
	}

	dbPath := filepath.Join(dataDir, FileName)
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to enable WAL mode")
	}

	if err := initHuntSchema(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to initialize hunt schema")
	}

	if err := initSampleSchema(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to initialize sample schema")
	}

	return &DB{Db: db, Path: dbPath}, nil
}

// Close closes the database
func (db *DB) Close() error {
	return db.Db.Close()
}

func initHuntSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS hunts (
		id         TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		ended_at   DATETIME,
		session_id TEXT,
		host       TEXT,
		target_pid INTEGER
	);`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create hunts table: %v", err)
	}

	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS idx_hunts_started ON hunts(started_at);"); err != nil {
		return fmt.Errorf("failed to create index: %v", err)
	}
	return nil
}

func initSampleSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS damage_samples (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		hunt_id      TEXT NOT NULL REFERENCES hunts(id),
		timestamp    DATETIME NOT NULL,
		slot         INTEGER NOT NULL,
		name         TEXT,
		damage       INTEGER NOT NULL,
		left_session BOOLEAN NOT NULL
	);

	CREATE TABLE IF NOT EXISTS monster_samples (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		hunt_id    TEXT NOT NULL REFERENCES hunts(id),
		timestamp  DATETIME NOT NULL,
		slot       INTEGER NOT NULL,
		monster_id INTEGER NOT NULL,
		name       TEXT,
		hp         INTEGER NOT NULL,
		max_hp     INTEGER NOT NULL,
		size       REAL,
		crown      TEXT
	);`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create sample tables: %v", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_damage_hunt ON damage_samples(hunt_id, timestamp);",
		"CREATE INDEX IF NOT EXISTS idx_monster_hunt ON monster_samples(hunt_id, timestamp);",
	}

	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %v", err)
		}
	}

	return nil
}

// InsertHunt adds a hunt row
func (db *DB) InsertHunt(h *HuntRecord) error {
	query := `
        INSERT INTO hunts (id, started_at, session_id, host, target_pid)
        VALUES (?, ?, ?, ?, ?)`

	_, err := db.Db.Exec(query, h.ID, h.StartedAt, h.SessionID, h.Host, h.TargetPID)
	return err
}

// EndHunt records when a hunt finished
func (db *DB) EndHunt(id string, endedAt time.Time) error {
	_, err := db.Db.Exec("UPDATE hunts SET ended_at = ? WHERE id = ? AND ended_at IS NULL", endedAt, id)
	return err
}

// InsertDamage adds a damage sample
func (db *DB) InsertDamage(r *DamageRecord) error {
	query := `
        INSERT INTO damage_samples (hunt_id, timestamp, slot, name, damage, left_session)
        VALUES (?, ?, ?, ?, ?, ?)`

	_, err := db.Db.Exec(query, r.HuntID, r.Timestamp, r.Slot, r.Name, r.Damage, r.LeftSession)
	return err
}

// InsertMonster adds a monster health sample
func (db *DB) InsertMonster(r *MonsterRecord) error {
	query := `
        INSERT INTO monster_samples (hunt_id, timestamp, slot, monster_id, name, hp, max_hp, size, crown)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.Db.Exec(query, r.HuntID, r.Timestamp, r.Slot, r.MonsterID, r.Name, r.HP, r.MaxHP, r.Size, r.Crown)
	return err
}

// Hunts returns the most recent hunts, newest first
func (db *DB) Hunts(limit int) ([]HuntRecord, error) {
	rows, err := db.Db.Query(`
        SELECT id, started_at, ended_at, session_id, host, target_pid
        FROM hunts
        ORDER BY started_at DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hunts []HuntRecord
	for rows.Next() {
		var h HuntRecord
		if err := rows.Scan(&h.ID, &h.StartedAt, &h.EndedAt, &h.SessionID, &h.Host, &h.TargetPID); err != nil {
			return nil, err
		}
		hunts = append(hunts, h)
	}
	return hunts, rows.Err()
}

// DamageSamples returns a hunt's damage samples in time order
func (db *DB) DamageSamples(huntID string) ([]DamageRecord, error) {
	rows, err := db.Db.Query(`
        SELECT hunt_id, timestamp, slot, name, damage, left_session
        FROM damage_samples
        WHERE hunt_id = ?
        ORDER BY timestamp, id`, huntID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []DamageRecord
	for rows.Next() {
		var r DamageRecord
		if err := rows.Scan(&r.HuntID, &r.Timestamp, &r.Slot, &r.Name, &r.Damage, &r.LeftSession); err != nil {
			return nil, err
		}
		samples = append(samples, r)
	}
	return samples, rows.Err()
}

// MonsterSamples returns a hunt's monster samples in time order
func (db *DB) MonsterSamples(huntID string) ([]MonsterRecord, error) {
	rows, err := db.Db.Query(`
        SELECT hunt_id, timestamp, slot, monster_id, name, hp, max_hp, size, crown
        FROM monster_samples
        WHERE hunt_id = ?
        ORDER BY timestamp, id`, huntID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []MonsterRecord
	for rows.Next() {
		var r MonsterRecord
		if err := rows.Scan(&r.HuntID, &r.Timestamp, &r.Slot, &r.MonsterID, &r.Name, &r.HP, &r.MaxHP, &r.Size, &r.Crown); err != nil {
			return nil, err
		}
		samples = append(samples, r)
	}
	return samples, rows.Err()
}
