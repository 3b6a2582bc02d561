package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/fitlink/internal/models"
	"github.com/jackc/pgx/v5"
)

// InsertHealthSamples batch-inserts health sample rows. Returns the number
// actually inserted (duplicates skipped via ON CONFLICT DO NOTHING).
func (db *DB) InsertHealthSamples(ctx context.Context, rows []models.HealthSampleRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO health_samples (time, user_id, metric_name, source, units, qty, min_val, avg_val, max_val)
VALUES `
	args := make([]any, 0, len(rows)*9)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 9
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9,
		))
		args = append(args, r.Time, r.UserID, r.MetricName, r.Source, r.Units,
			r.Qty, r.MinVal, r.AvgVal, r.MaxVal)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting health samples: %w", err)
	}
	return tag.RowsAffected(), nil
}

// QueryHealthSamples retrieves samples by metric name and time range.
func (db *DB) QueryHealthSamples(ctx context.Context, metricName string, start, end time.Time, userID int) ([]models.HealthSampleRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT time, user_id, metric_name, source, units, qty, min_val, avg_val, max_val
		 FROM health_samples
		 WHERE metric_name = $1 AND time >= $2 AND time < $3 AND user_id = $4
		 ORDER BY time ASC`,
		metricName, start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying health samples: %w", err)
	}
	defer rows.Close()

	return scanHealthSampleRows(rows)
}

// GetLatestSamples returns the most recent data point for each metric.
func (db *DB) GetLatestSamples(ctx context.Context, userID int) ([]models.HealthSampleRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT ON (metric_name) time, user_id, metric_name, source, units, qty, min_val, avg_val, max_val
		 FROM health_samples
		 WHERE user_id = $1
		 ORDER BY metric_name, time DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying latest samples: %w", err)
	}
	defer rows.Close()

	return scanHealthSampleRows(rows)
}

// TimeSeriesPoint is an aggregated data point.
type TimeSeriesPoint struct {
	Time  time.Time `json:"time"`
	Avg   *float64  `json:"avg"`
	Min   *float64  `json:"min"`
	Max   *float64  `json:"max"`
	Count int64     `json:"count"`
}

// bucketTrunc maps a bucket size onto a date_trunc field.
func bucketTrunc(bucketSize string) string {
	switch bucketSize {
	case "1 hour":
		return "hour"
	case "1 week":
		return "week"
	case "1 month":
		return "month"
	default:
		return "day"
	}
}

// GetTimeSeries returns aggregated time-series data bucketed with date_trunc.
// bucketSize is one of '1 hour', '1 day', '1 week', '1 month'.
func (db *DB) GetTimeSeries(ctx context.Context, metricName string, start, end time.Time, bucketSize string, userID int) ([]TimeSeriesPoint, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT date_trunc($1, time) AS bucket,
		        AVG(COALESCE(qty, avg_val)) AS avg_val,
		        MIN(COALESCE(qty, min_val)) AS min_val,
		        MAX(COALESCE(qty, max_val)) AS max_val,
		        COUNT(*) AS count
		 FROM health_samples
		 WHERE metric_name = $2 AND time >= $3 AND time < $4 AND user_id = $5
		 GROUP BY bucket
		 ORDER BY bucket ASC`,
		bucketTrunc(bucketSize), metricName, start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying time series: %w", err)
	}
	defer rows.Close()

	var result []TimeSeriesPoint
	for rows.Next() {
		var p TimeSeriesPoint
		if err := rows.Scan(&p.Time, &p.Avg, &p.Min, &p.Max, &p.Count); err != nil {
			return nil, fmt.Errorf("scanning time series: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// DailySum is one day's total for a summed metric (steps, water, calories).
type DailySum struct {
	Date       time.Time `json:"date"`
	MetricName string    `json:"metric_name"`
	Total      float64   `json:"total"`
}

// GetDailySums returns per-day totals for the named metrics over a rolling
// window of days ending now.
func (db *DB) GetDailySums(ctx context.Context, userID int, metricNames []string, days int) ([]DailySum, error) {
	start := time.Now().AddDate(0, 0, -days)
	rows, err := db.Pool.Query(ctx,
		`SELECT date_trunc('day', time) AS day, metric_name, COALESCE(SUM(qty), 0)
		 FROM health_samples
		 WHERE user_id = $1 AND metric_name = ANY($2) AND time >= $3
		 GROUP BY day, metric_name
		 ORDER BY day ASC`,
		userID, metricNames, start)
	if err != nil {
		return nil, fmt.Errorf("querying daily sums: %w", err)
	}
	defer rows.Close()

	var result []DailySum
	for rows.Next() {
		var s DailySum
		if err := rows.Scan(&s.Date, &s.MetricName, &s.Total); err != nil {
			return nil, fmt.Errorf("scanning daily sum: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// TodayTotal returns today's summed quantity for a metric (local day
// boundary per the database timezone).
func (db *DB) TodayTotal(ctx context.Context, userID int, metricName string) (float64, error) {
	var total float64
	err := db.Pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(qty), 0)
		 FROM health_samples
		 WHERE user_id = $1 AND metric_name = $2 AND time >= date_trunc('day', NOW())`,
		userID, metricName).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("querying today total for %s: %w", metricName, err)
	}
	return total, nil
}

func scanHealthSampleRows(rows pgx.Rows) ([]models.HealthSampleRow, error) {
	var result []models.HealthSampleRow
	for rows.Next() {
		var r models.HealthSampleRow
		if err := rows.Scan(&r.Time, &r.UserID, &r.MetricName, &r.Source, &r.Units,
			&r.Qty, &r.MinVal, &r.AvgVal, &r.MaxVal); err != nil {
			return nil, fmt.Errorf("scanning health sample row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
