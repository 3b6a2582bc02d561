package mcp

import (
	"context"
	"time"

	"github.com/claude/fitlink/internal/models"
	"github.com/claude/fitlink/internal/recovery"
	"github.com/claude/fitlink/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	GetTimeSeries(ctx context.Context, metricName string, start, end time.Time, bucketSize string, userID int) ([]storage.TimeSeriesPoint, error)
	GetMetricStats(ctx context.Context, metricName string, start, end time.Time, userID int) (*storage.MetricStats, error)
	QuerySleepSessions(ctx context.Context, start, end time.Time, userID int) ([]models.SleepSessionRow, error)
	QuerySleepStages(ctx context.Context, start, end time.Time, userID int) ([]models.SleepStageRow, error)
	QueryWorkouts(ctx context.Context, start, end time.Time, userID int, nameFilter string) ([]models.WorkoutRow, error)
	QueryWorkoutSets(ctx context.Context, start, end time.Time, userID int, exerciseFilter string) ([]models.WorkoutSetRow, error)
	GetRecoveryScore(ctx context.Context, userID int) (*recovery.Score, error)
	GetLatestSamples(ctx context.Context, userID int) ([]models.HealthSampleRow, error)
	GetDailySums(ctx context.Context, userID int, metricNames []string, days int) ([]storage.DailySum, error)
	GetAllowedMetrics(ctx context.Context) ([]storage.AllowedMetric, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
