package mcp

import (
	"context"
	"errors"

	"github.com/claude/fitlife/internal/codec"
	"github.com/claude/fitlife/internal/ranking"
	"github.com/mark3labs/mcp-go/mcp"
)

// userID resolves the user_id argument, falling back to the transport's user.
func userID(ctx context.Context, req mcp.CallToolRequest) (int, bool) {
	id := req.GetInt("user_id", UserIDFromContext(ctx))
	return id, id > 0
}

func limit(req mcp.CallToolRequest) int {
	return req.GetInt("limit", ranking.DefaultLimit)
}

// --- Tool definitions ---

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("List a user's workouts with their type, status and estimated calories."),
	mcp.WithNumber("user_id", mcp.Description("User ID. Defaults to the connected user.")),
	mcp.WithString("type", mcp.Description("Only return workouts of this type."), mcp.Enum("cardio", "strength", "functional")),
)

var toolGetLeaderboard = mcp.NewTool("get_leaderboard",
	mcp.WithDescription("Rank users by score: calories of completed workouts plus 100 points per completed workout. Ties go to the lower user ID."),
	mcp.WithString("type", mcp.Description("Restrict to one workout type. Defaults to all."), mcp.Enum("all", "cardio", "strength", "functional")),
	mcp.WithNumber("limit", mcp.Description("Maximum number of rows. Defaults to 10.")),
)

var toolGetCalorieLeaderboard = mcp.NewTool("get_calorie_leaderboard",
	mcp.WithDescription("Rank users by total calories burned in completed workouts, with their average per workout."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of rows. Defaults to 10.")),
)

var toolGetUserPosition = mcp.NewTool("get_user_position",
	mcp.WithDescription("Find a user's position in the full score leaderboard and the number of ranked users."),
	mcp.WithNumber("user_id", mcp.Description("User ID. Defaults to the connected user.")),
)

var toolGetHabitLeaderboard = mcp.NewTool("get_habit_leaderboard",
	mcp.WithDescription("Rank active habits by current streak, then completion rate."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of rows. Defaults to 10.")),
)

var toolGetHabitStats = mcp.NewTool("get_habit_stats",
	mcp.WithDescription("Summarize a user's habits: active/inactive counts, categories, best current streak and average completion rate."),
	mcp.WithNumber("user_id", mcp.Description("User ID. Defaults to the connected user.")),
)

var toolGetNutritionStats = mcp.NewTool("get_nutrition_stats",
	mcp.WithDescription("Summarize a user's meal log: meal count, total and average calories, macro totals and meals per slot."),
	mcp.WithNumber("user_id", mcp.Description("User ID. Defaults to the connected user.")),
)

// --- Tool handlers ---

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, ok := userID(ctx, req)
	if !ok {
		return mcp.NewToolResultError("user_id parameter is required"), nil
	}
	filter, err := ranking.ParseFilter(req.GetString("type", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	workouts, err := h.ds.ListWorkouts(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	out := make([]codec.Record, 0, len(workouts))
	for _, w := range workouts {
		if filter != ranking.FilterAll && string(w.Type()) != string(filter) {
			continue
		}
		out = append(out, codec.View(w))
	}
	return jsonResult(out)
}

func (h *handlers) getLeaderboard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter, err := ranking.ParseFilter(req.GetString("type", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	entries, err := h.ds.Leaderboard(ctx, filter, limit(req))
	if errors.Is(err, ranking.ErrInvalidLimit) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		h.log.Error("mcp get_leaderboard", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(entries)
}

func (h *handlers) getCalorieLeaderboard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := h.ds.CalorieLeaderboard(ctx, limit(req))
	if errors.Is(err, ranking.ErrInvalidLimit) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		h.log.Error("mcp get_calorie_leaderboard", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(entries)
}

func (h *handlers) getUserPosition(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, ok := userID(ctx, req)
	if !ok {
		return mcp.NewToolResultError("user_id parameter is required"), nil
	}

	standing, err := h.ds.UserPosition(ctx, uid)
	if errors.Is(err, ranking.ErrNotRanked) {
		return mcp.NewToolResultText("user has no completed workouts and is not ranked"), nil
	}
	if err != nil {
		h.log.Error("mcp get_user_position", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(standing)
}

func (h *handlers) getHabitLeaderboard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := h.ds.HabitLeaderboard(ctx, limit(req))
	if errors.Is(err, ranking.ErrInvalidLimit) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		h.log.Error("mcp get_habit_leaderboard", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(entries)
}

func (h *handlers) getHabitStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, ok := userID(ctx, req)
	if !ok {
		return mcp.NewToolResultError("user_id parameter is required"), nil
	}

	stats, err := h.ds.HabitStats(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_habit_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(stats)
}

func (h *handlers) getNutritionStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, ok := userID(ctx, req)
	if !ok {
		return mcp.NewToolResultError("user_id parameter is required"), nil
	}

	stats, err := h.ds.MealStats(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_nutrition_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(stats)
}
