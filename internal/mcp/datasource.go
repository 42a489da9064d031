package mcp

import (
	"context"

	"github.com/claude/fitlife/internal/habits"
	"github.com/claude/fitlife/internal/models"
	"github.com/claude/fitlife/internal/nutrition"
	"github.com/claude/fitlife/internal/ranking"
	"github.com/claude/fitlife/internal/service"
)

// DataSource abstracts the data layer for MCP tools. Both *service.Service
// (local) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListWorkouts(ctx context.Context, userID int) ([]models.Workout, error)
	Leaderboard(ctx context.Context, filter ranking.Filter, limit int) ([]ranking.Entry, error)
	CalorieLeaderboard(ctx context.Context, limit int) ([]ranking.CalorieEntry, error)
	UserPosition(ctx context.Context, userID int) (*ranking.Standing, error)
	HabitLeaderboard(ctx context.Context, limit int) ([]ranking.HabitEntry, error)
	HabitStats(ctx context.Context, userID int) (habits.Summary, error)
	MealStats(ctx context.Context, userID int) (nutrition.Summary, error)
}

// Compile-time check: *service.Service satisfies DataSource.
var _ DataSource = (*service.Service)(nil)
