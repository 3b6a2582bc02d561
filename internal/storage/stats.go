package storage

import (
	"context"
	"fmt"
	"time"
)

// MetricStats holds aggregate statistics for one metric over a range.
type MetricStats struct {
	MetricName string   `json:"metric_name"`
	Avg        *float64 `json:"avg"`
	Min        *float64 `json:"min"`
	Max        *float64 `json:"max"`
	StdDev     *float64 `json:"stddev"`
	Count      int64    `json:"count"`
}

// GetMetricStats computes avg/min/max/stddev/count for a metric.
func (db *DB) GetMetricStats(ctx context.Context, metricName string, start, end time.Time, userID int) (*MetricStats, error) {
	stats := &MetricStats{MetricName: metricName}
	err := db.Pool.QueryRow(ctx,
		`SELECT AVG(COALESCE(qty, avg_val)),
		        MIN(COALESCE(qty, min_val)),
		        MAX(COALESCE(qty, max_val)),
		        STDDEV(COALESCE(qty, avg_val)),
		        COUNT(*)
		 FROM health_samples
		 WHERE metric_name = $1 AND time >= $2 AND time < $3 AND user_id = $4`,
		metricName, start, end, userID,
	).Scan(&stats.Avg, &stats.Min, &stats.Max, &stats.StdDev, &stats.Count)
	if err != nil {
		return nil, fmt.Errorf("querying metric stats: %w", err)
	}
	return stats, nil
}

// MetricBaseline returns the average of a metric over the trailing window,
// used as the personal baseline for the recovery score. Returns nil when
// no data exists.
func (db *DB) MetricBaseline(ctx context.Context, userID int, metricName string, days int) (*float64, error) {
	var avg *float64
	err := db.Pool.QueryRow(ctx,
		`SELECT AVG(COALESCE(qty, avg_val))
		 FROM health_samples
		 WHERE user_id = $1 AND metric_name = $2 AND time >= NOW() - make_interval(days => $3)`,
		userID, metricName, days,
	).Scan(&avg)
	if err != nil {
		return nil, fmt.Errorf("querying %s baseline: %w", metricName, err)
	}
	return avg, nil
}

// LatestValue returns the most recent quantity for a metric, or nil.
func (db *DB) LatestValue(ctx context.Context, userID int, metricName string) (*float64, error) {
	var qty *float64
	err := db.Pool.QueryRow(ctx,
		`SELECT COALESCE(qty, avg_val)
		 FROM health_samples
		 WHERE user_id = $1 AND metric_name = $2
		 ORDER BY time DESC
		 LIMIT 1`,
		userID, metricName).Scan(&qty)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying latest %s: %w", metricName, err)
	}
	return qty, nil
}

func isNoRows(err error) bool {
	return err != nil && err.Error() == "no rows in result set"
}
