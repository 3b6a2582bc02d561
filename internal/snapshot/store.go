// Package snapshot maintains the widget snapshot: a single-row SQLite
// record holding today's headline numbers, refreshed on a timer.
package snapshot

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Snapshot is the read-only view served to widgets and complications.
type Snapshot struct {
	WaterOunces     float64   `json:"water_ounces"`
	WaterGoalOunces float64   `json:"water_goal_ounces"`
	LastWorkoutName string    `json:"last_workout_name,omitempty"`
	LastWorkoutSec  float64   `json:"last_workout_duration_sec,omitempty"`
	LastWorkoutExs  int       `json:"last_workout_exercises,omitempty"`
	Steps           float64   `json:"steps"`
	ActiveCalories  float64   `json:"active_calories"`
	SleepHours      float64   `json:"sleep_hours"`
	RecoveryScore   int       `json:"recovery_score"`
	RecoveryLabel   string    `json:"recovery_label,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Store persists the snapshot at dir/snapshot.db.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the snapshot database.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "snapshot.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS snapshot (
		id                 INTEGER PRIMARY KEY CHECK (id = 1),
		water_ounces       REAL NOT NULL DEFAULT 0,
		water_goal_ounces  REAL NOT NULL DEFAULT 0,
		last_workout_name  TEXT NOT NULL DEFAULT '',
		last_workout_sec   REAL NOT NULL DEFAULT 0,
		last_workout_exs   INTEGER NOT NULL DEFAULT 0,
		steps              REAL NOT NULL DEFAULT 0,
		active_calories    REAL NOT NULL DEFAULT 0,
		sleep_hours        REAL NOT NULL DEFAULT 0,
		recovery_score     INTEGER NOT NULL DEFAULT 50,
		recovery_label     TEXT NOT NULL DEFAULT '',
		updated_at         TIMESTAMP NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating snapshot table: %w", err)
	}

	return &Store{db: db}, nil
}

// Get returns the current snapshot. A store that has never been written
// returns a zero snapshot rather than an error.
func (s *Store) Get() (*Snapshot, error) {
	var (
		snap      Snapshot
		updatedAt string
	)
	err := s.db.QueryRow(`SELECT water_ounces, water_goal_ounces, last_workout_name,
		last_workout_sec, last_workout_exs, steps, active_calories, sleep_hours,
		recovery_score, recovery_label, updated_at
		FROM snapshot WHERE id = 1`).Scan(
		&snap.WaterOunces, &snap.WaterGoalOunces, &snap.LastWorkoutName,
		&snap.LastWorkoutSec, &snap.LastWorkoutExs, &snap.Steps,
		&snap.ActiveCalories, &snap.SleepHours, &snap.RecoveryScore,
		&snap.RecoveryLabel, &updatedAt)
	if err == sql.ErrNoRows {
		return &Snapshot{RecoveryScore: 50}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	snap.UpdatedAt, err = parseSQLiteTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing snapshot timestamp: %w", err)
	}
	return &snap, nil
}

// Put replaces the snapshot, stamping UpdatedAt.
func (s *Store) Put(snap *Snapshot) error {
	snap.UpdatedAt = time.Now().UTC()
	_, err := s.db.Exec(`INSERT OR REPLACE INTO snapshot
		(id, water_ounces, water_goal_ounces, last_workout_name, last_workout_sec,
		 last_workout_exs, steps, active_calories, sleep_hours, recovery_score,
		 recovery_label, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.WaterOunces, snap.WaterGoalOunces, snap.LastWorkoutName,
		snap.LastWorkoutSec, snap.LastWorkoutExs, snap.Steps,
		snap.ActiveCalories, snap.SleepHours, snap.RecoveryScore,
		snap.RecoveryLabel, snap.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// AddWater bumps today's water total in place, for the widget intent.
// The next full refresh reconciles against the database of record.
func (s *Store) AddWater(ounces float64) (*Snapshot, error) {
	snap, err := s.Get()
	if err != nil {
		return nil, err
	}
	snap.WaterOunces += ounces
	if err := s.Put(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Close closes the snapshot database.
func (s *Store) Close() error {
	return s.db.Close()
}

func parseSQLiteTime(v string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", v)
}
