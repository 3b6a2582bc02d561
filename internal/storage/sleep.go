package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/fitlink/internal/models"
)

// InsertSleepSession inserts a nightly sleep summary. Returns true if
// inserted, false if that night already exists.
func (db *DB) InsertSleepSession(ctx context.Context, row models.SleepSessionRow) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO sleep_sessions (user_id, date, total_sleep_hr, core_hr, deep_hr, rem_hr, in_bed_hr, sleep_start, sleep_end)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 ON CONFLICT DO NOTHING`,
		row.UserID, row.Date, row.TotalSleep, row.Core, row.Deep, row.REM, row.InBed,
		row.SleepStart, row.SleepEnd)
	if err != nil {
		return false, fmt.Errorf("inserting sleep session: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// InsertSleepStages batch-inserts sleep stage segments. Returns count inserted.
func (db *DB) InsertSleepStages(ctx context.Context, rows []models.SleepStageRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO sleep_stages (start_time, end_time, user_id, stage, duration_hr, source) VALUES `
	args := make([]any, 0, len(rows)*6)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 6
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6,
		))
		args = append(args, r.StartTime, r.EndTime, r.UserID, r.Stage, r.DurationHr, r.Source)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting sleep stages: %w", err)
	}
	return tag.RowsAffected(), nil
}

// QuerySleepSessions retrieves nightly summaries in a date range.
func (db *DB) QuerySleepSessions(ctx context.Context, start, end time.Time, userID int) ([]models.SleepSessionRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT user_id, date, total_sleep_hr, core_hr, deep_hr, rem_hr, in_bed_hr, sleep_start, sleep_end
		 FROM sleep_sessions
		 WHERE date >= $1 AND date < $2 AND user_id = $3
		 ORDER BY date ASC`,
		start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying sleep sessions: %w", err)
	}
	defer rows.Close()

	var result []models.SleepSessionRow
	for rows.Next() {
		var s models.SleepSessionRow
		if err := rows.Scan(&s.UserID, &s.Date, &s.TotalSleep, &s.Core, &s.Deep, &s.REM,
			&s.InBed, &s.SleepStart, &s.SleepEnd); err != nil {
			return nil, fmt.Errorf("scanning sleep session: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// QuerySleepStages retrieves stage segments in a time range.
func (db *DB) QuerySleepStages(ctx context.Context, start, end time.Time, userID int) ([]models.SleepStageRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT start_time, end_time, user_id, stage, duration_hr, source
		 FROM sleep_stages
		 WHERE start_time >= $1 AND start_time < $2 AND user_id = $3
		 ORDER BY start_time ASC`,
		start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying sleep stages: %w", err)
	}
	defer rows.Close()

	var result []models.SleepStageRow
	for rows.Next() {
		var s models.SleepStageRow
		if err := rows.Scan(&s.StartTime, &s.EndTime, &s.UserID, &s.Stage, &s.DurationHr, &s.Source); err != nil {
			return nil, fmt.Errorf("scanning sleep stage: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// LastNightSleepHours returns the most recent night's total sleep, or nil
// when no sleep data exists.
func (db *DB) LastNightSleepHours(ctx context.Context, userID int) (*float64, error) {
	var hours *float64
	err := db.Pool.QueryRow(ctx,
		`SELECT total_sleep_hr
		 FROM sleep_sessions
		 WHERE user_id = $1
		 ORDER BY date DESC
		 LIMIT 1`,
		userID).Scan(&hours)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying last night sleep: %w", err)
	}
	return hours, nil
}
