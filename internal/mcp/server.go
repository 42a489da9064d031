package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext returns the user ID injected by the transport layer, or
// 0 when none was set.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 0
}

// WithUserID returns a context with the given user ID. Tools use it when the
// caller omits the user_id argument.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("FitLife", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("FitLife fitness server. Query workout leaderboards, a user's ranking position, habit streaks and nutrition summaries. Calories are estimated from duration, intensity and workout type."),
	)

	h := &handlers{ds: ds, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetWorkouts, Handler: h.getWorkouts},
		server.ServerTool{Tool: toolGetLeaderboard, Handler: h.getLeaderboard},
		server.ServerTool{Tool: toolGetCalorieLeaderboard, Handler: h.getCalorieLeaderboard},
		server.ServerTool{Tool: toolGetUserPosition, Handler: h.getUserPosition},
		server.ServerTool{Tool: toolGetHabitLeaderboard, Handler: h.getHabitLeaderboard},
		server.ServerTool{Tool: toolGetHabitStats, Handler: h.getHabitStats},
		server.ServerTool{Tool: toolGetNutritionStats, Handler: h.getNutritionStats},
	)

	s.AddResources(
		server.ServerResource{Resource: resLeaderboard, Handler: h.leaderboard},
		server.ServerResource{Resource: resWorkoutTypes, Handler: h.workoutTypes},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resLeaderboard = mcp.NewResource(
	"fitlife://leaderboard",
	"Leaderboard",
	mcp.WithResourceDescription("Top 10 users by score (calories plus 100 points per completed workout)"),
	mcp.WithMIMEType("application/json"),
)

var resWorkoutTypes = mcp.NewResource(
	"fitlife://workout_types",
	"Workout Types",
	mcp.WithResourceDescription("Workout types with their intensity factors and calorie formulas"),
	mcp.WithMIMEType("application/json"),
)
