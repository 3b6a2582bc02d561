package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/fitlink/internal/models"
)

// AddWater records a water intake entry (the widget intent).
func (db *DB) AddWater(ctx context.Context, row models.WaterIntakeRow) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO water_intake (time, user_id, ounces, source) VALUES ($1,$2,$3,$4)`,
		row.Time, row.UserID, row.Ounces, row.Source)
	if err != nil {
		return fmt.Errorf("inserting water intake: %w", err)
	}
	return nil
}

// TodayWaterOunces returns the total ounces logged today.
func (db *DB) TodayWaterOunces(ctx context.Context, userID int) (float64, error) {
	var total float64
	err := db.Pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(ounces), 0)
		 FROM water_intake
		 WHERE user_id = $1 AND time >= date_trunc('day', NOW())`,
		userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("querying today water: %w", err)
	}
	return total, nil
}

// QueryWater retrieves water entries in a time range.
func (db *DB) QueryWater(ctx context.Context, start, end time.Time, userID int) ([]models.WaterIntakeRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT time, user_id, ounces, source
		 FROM water_intake
		 WHERE time >= $1 AND time < $2 AND user_id = $3
		 ORDER BY time ASC`,
		start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying water intake: %w", err)
	}
	defer rows.Close()

	var result []models.WaterIntakeRow
	for rows.Next() {
		var w models.WaterIntakeRow
		if err := rows.Scan(&w.Time, &w.UserID, &w.Ounces, &w.Source); err != nil {
			return nil, fmt.Errorf("scanning water intake: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}
