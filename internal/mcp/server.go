package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("SetsReps", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("SetsReps strength training log. Query completed workouts, personal records, streaks, and weekly or monthly training volume."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetWorkoutHistory, Handler: h.getWorkoutHistory},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
		server.ServerTool{Tool: toolGetPersonalRecords, Handler: h.getPersonalRecords},
		server.ServerTool{Tool: toolCheckPersonalRecord, Handler: h.checkPersonalRecord},
		server.ServerTool{Tool: toolGetTrainingSummary, Handler: h.getTrainingSummary},
		server.ServerTool{Tool: toolGetStreaks, Handler: h.getStreaks},
		server.ServerTool{Tool: toolGetPeriodicAggregates, Handler: h.getPeriodicAggregates},
		server.ServerTool{Tool: toolGetRecentActivity, Handler: h.getRecentActivity},
		server.ServerTool{Tool: toolListPrograms, Handler: h.listPrograms},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
		server.ServerResource{Resource: resPersonalRecords, Handler: h.personalRecords},
		server.ServerResource{Resource: resSummary, Handler: h.summary},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resRecentWorkouts = mcp.NewResource(
	"setsreps://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("The 10 most recent completed workouts"),
	mcp.WithMIMEType("application/json"),
)

var resPersonalRecords = mcp.NewResource(
	"setsreps://personal_records",
	"Personal Records",
	mcp.WithResourceDescription("Best set per exercise by volume, heaviest first"),
	mcp.WithMIMEType("application/json"),
)

var resSummary = mcp.NewResource(
	"setsreps://summary",
	"Training Summary",
	mcp.WithResourceDescription("Lifetime totals, averages, exercise frequency and muscle group distribution"),
	mcp.WithMIMEType("application/json"),
)
