// Package mcp exposes FitLink health data to AI assistants over the
// Model Context Protocol.
package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("FitLink", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("FitLink fitness data server. Query health metrics, workouts, sleep, and recovery readiness. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetHealthMetrics, Handler: h.getHealthMetrics},
		server.ServerTool{Tool: toolGetMetricStats, Handler: h.getMetricStats},
		server.ServerTool{Tool: toolGetSleepData, Handler: h.getSleepData},
		server.ServerTool{Tool: toolGetWorkouts, Handler: h.getWorkouts},
		server.ServerTool{Tool: toolGetWorkoutSets, Handler: h.getWorkoutSets},
		server.ServerTool{Tool: toolGetRecoveryScore, Handler: h.getRecoveryScore},
		server.ServerTool{Tool: toolListAvailableMetrics, Handler: h.listAvailableMetrics},
		server.ServerTool{Tool: toolComparePeriods, Handler: h.comparePeriods},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resDailySummary, Handler: h.dailySummary},
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
		server.ServerResource{Resource: resMetricCatalog, Handler: h.metricCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resDailySummary = mcp.NewResource(
	"fitlink://daily_summary",
	"Daily Summary",
	mcp.WithResourceDescription("Today's key health metrics, activity totals, recent sleep, and recovery readiness"),
	mcp.WithMIMEType("application/json"),
)

var resRecentWorkouts = mcp.NewResource(
	"fitlink://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Workouts from the last 14 days"),
	mcp.WithMIMEType("application/json"),
)

var resMetricCatalog = mcp.NewResource(
	"fitlink://metric_catalog",
	"Metric Catalog",
	mcp.WithResourceDescription("All available health metrics with categories and enabled status"),
	mcp.WithMIMEType("application/json"),
)
