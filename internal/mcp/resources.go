package mcp

import (
	"context"
	"encoding/json"

	"github.com/claude/fitlife/internal/ranking"
	"github.com/mark3labs/mcp-go/mcp"
)

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) leaderboard(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	entries, err := h.ds.Leaderboard(ctx, ranking.FilterAll, ranking.DefaultLimit)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, entries)
}

type workoutTypeInfo struct {
	Type             string         `json:"type"`
	IntensityFactors map[string]int `json:"intensityFactors"`
	VariantFactor    string         `json:"variantFactor"`
}

// workoutTypeCatalog mirrors the calorie formulas in the models package.
var workoutTypeCatalog = []workoutTypeInfo{
	{"cardio", map[string]int{"low": 5, "moderate": 8, "high": 12}, "1 + distanceKm / 10"},
	{"strength", map[string]int{"low": 4, "moderate": 6, "high": 9}, "1 + loadKg / 100"},
	{"functional", map[string]int{"low": 6, "moderate": 10, "high": 15}, "1 + 0.1 * exerciseCount"},
}

func (h *handlers) workoutTypes(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(req.Params.URI, map[string]any{
		"formula": "calories = trunc(durationMinutes * intensityFactor * variantFactor)",
		"types":   workoutTypeCatalog,
	})
}
