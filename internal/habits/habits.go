// Package habits computes streaks and completion rates from habit logs.
package habits

import (
	"math"
	"slices"
	"time"

	"github.com/claude/fitlife/internal/models"
)

// Streak counts consecutive calendar days of completions, ending at the most
// recent completed record. Time of day is ignored. The walk stops at the first
// entry that is not exactly one day before the previous one, so a second
// completion on the same day also ends the streak.
func Streak(records []models.HabitRecord) int {
	var days []time.Time
	for _, r := range records {
		if r.Completed {
			days = append(days, calendarDay(r.Date))
		}
	}
	if len(days) == 0 {
		return 0
	}
	slices.SortStableFunc(days, func(a, b time.Time) int { return b.Compare(a) })

	streak := 1
	prev := days[0]
	for _, d := range days[1:] {
		if !prev.AddDate(0, 0, -1).Equal(d) {
			break
		}
		streak++
		prev = d
	}
	return streak
}

// CompletionRate is the percentage of records marked completed, rounded to
// two decimals. An empty log has a rate of 0.
func CompletionRate(records []models.HabitRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	completed := 0
	for _, r := range records {
		if r.Completed {
			completed++
		}
	}
	return round2(float64(completed) / float64(len(records)) * 100)
}

// RegisterCompletion appends a record to the habit's log. Dates are not
// deduplicated.
func RegisterCompletion(h *models.Habit, date time.Time, completed bool) models.HabitRecord {
	rec := models.HabitRecord{Date: date, Completed: completed}
	h.Records = append(h.Records, rec)
	return rec
}

// calendarDay maps t to midnight UTC of its own calendar date, so day
// arithmetic is not affected by DST transitions.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// round2 rounds half to even at two decimals.
func round2(x float64) float64 {
	return math.RoundToEven(x*100) / 100
}

// CategoryCount is the number of habits in one category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Summary aggregates a user's habits.
type Summary struct {
	Total                 int             `json:"totalHabits"`
	Active                int             `json:"activeHabits"`
	Inactive              int             `json:"inactiveHabits"`
	ByCategory            []CategoryCount `json:"byCategory"`
	BestStreak            int             `json:"bestStreak"`
	AverageCompletionRate float64         `json:"averageCompletionRate"`
}

// Summarize computes counts, the best current streak and the mean completion
// rate. Categories are listed in first-seen order.
func Summarize(hs []models.Habit) Summary {
	s := Summary{Total: len(hs), ByCategory: []CategoryCount{}}
	if len(hs) == 0 {
		return s
	}

	pos := make(map[string]int)
	var rateSum float64
	for _, h := range hs {
		if h.Active {
			s.Active++
		} else {
			s.Inactive++
		}
		i, ok := pos[h.Category]
		if !ok {
			i = len(s.ByCategory)
			pos[h.Category] = i
			s.ByCategory = append(s.ByCategory, CategoryCount{Category: h.Category})
		}
		s.ByCategory[i].Count++
		s.BestStreak = max(s.BestStreak, Streak(h.Records))
		rateSum += CompletionRate(h.Records)
	}
	s.AverageCompletionRate = round2(rateSum / float64(len(hs)))
	return s
}
