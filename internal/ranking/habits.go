package ranking

import (
	"cmp"
	"slices"

	"github.com/claude/fitlife/internal/habits"
	"github.com/claude/fitlife/internal/models"
)

// HabitEntry is one row of the habit leaderboard.
type HabitEntry struct {
	Position       int     `json:"position"`
	UserID         int     `json:"userId"`
	UserName       string  `json:"userName"`
	HabitID        int     `json:"habitId"`
	Title          string  `json:"title"`
	Streak         int     `json:"streak"`
	CompletionRate float64 `json:"completionRate"`
}

// RankHabits orders active habits by current streak, then completion rate,
// then habit ID.
func RankHabits(hs []models.Habit, users UserLookup, limit int) ([]HabitEntry, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}

	rows := []HabitEntry{}
	for _, h := range hs {
		if !h.Active {
			continue
		}
		rows = append(rows, HabitEntry{
			UserID:         h.UserID,
			HabitID:        h.ID,
			Title:          h.Title,
			Streak:         habits.Streak(h.Records),
			CompletionRate: habits.CompletionRate(h.Records),
		})
	}

	slices.SortStableFunc(rows, func(a, b HabitEntry) int {
		if c := cmp.Compare(b.Streak, a.Streak); c != 0 {
			return c
		}
		if c := cmp.Compare(b.CompletionRate, a.CompletionRate); c != 0 {
			return c
		}
		return cmp.Compare(a.HabitID, b.HabitID)
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	for i := range rows {
		rows[i].Position = i + 1
		rows[i].UserName = displayName(users, rows[i].UserID)
	}
	return rows, nil
}
