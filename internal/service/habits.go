package service

import (
	"context"
	"slices"

	"github.com/claude/fitlife/internal/habits"
	"github.com/claude/fitlife/internal/models"
)

// HabitFilter narrows ListHabits. A nil Active matches both states.
type HabitFilter struct {
	UserID int
	Active *bool
}

// ListHabits returns the habits matching f. A single user's habits come
// newest start date first; otherwise store order is kept.
func (s *Service) ListHabits(ctx context.Context, f HabitFilter) ([]models.Habit, error) {
	all, err := s.repo.Habits(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Habit, 0, len(all))
	for _, h := range all {
		if f.UserID != 0 && h.UserID != f.UserID {
			continue
		}
		if f.Active != nil && h.Active != *f.Active {
			continue
		}
		out = append(out, h)
	}
	if f.UserID != 0 {
		slices.SortStableFunc(out, func(a, b models.Habit) int { return b.StartDate.Compare(a.StartDate) })
	}
	return out, nil
}

func (s *Service) GetHabit(ctx context.Context, id int) (models.Habit, error) {
	return s.repo.Habit(ctx, id)
}

const habitRequirements = "habit needs a title and a frequency of daily, weekly or monthly"

// CreateHabit stores a new, active habit with an empty log.
func (s *Service) CreateHabit(ctx context.Context, h models.Habit) (models.Habit, error) {
	h.Normalize()
	if !h.Validate() {
		return h, invalid(habitRequirements)
	}
	if h.StartDate.IsZero() {
		h.StartDate = s.now()
	}
	h.Active = true
	h.Records = nil
	return s.repo.CreateHabit(ctx, h)
}

// UpdateHabit replaces the habit's fields. Its log is left as is.
func (s *Service) UpdateHabit(ctx context.Context, id int, h models.Habit) (models.Habit, error) {
	h.Normalize()
	if !h.Validate() {
		return h, invalid(habitRequirements)
	}
	h.ID = id
	return s.repo.UpdateHabit(ctx, h)
}

func (s *Service) DeleteHabit(ctx context.Context, id int) error {
	return s.repo.DeleteHabit(ctx, id)
}

// Completion is the outcome of logging a habit entry.
type Completion struct {
	HabitID        int                `json:"habitId"`
	Record         models.HabitRecord `json:"record"`
	Streak         int                `json:"streak"`
	CompletionRate float64            `json:"completionRate"`
}

// RegisterCompletion appends an entry dated now to the habit's log and
// returns the updated metrics.
func (s *Service) RegisterCompletion(ctx context.Context, id int, completed bool, note string) (Completion, error) {
	var rec models.HabitRecord
	h, err := s.repo.ModifyHabit(ctx, id, func(h *models.Habit) error {
		rec = habits.RegisterCompletion(h, s.now(), completed)
		if note != "" {
			rec.Note = note
			h.Records[len(h.Records)-1].Note = note
		}
		return nil
	})
	if err != nil {
		return Completion{}, err
	}
	c := Completion{
		HabitID:        h.ID,
		Record:         rec,
		Streak:         habits.Streak(h.Records),
		CompletionRate: habits.CompletionRate(h.Records),
	}
	s.logger.Info("habit entry registered", "habit_id", id, "completed", completed, "streak", c.Streak)
	return c, nil
}

// HabitStats summarizes every habit of userID.
func (s *Service) HabitStats(ctx context.Context, userID int) (habits.Summary, error) {
	hs, err := s.ListHabits(ctx, HabitFilter{UserID: userID})
	if err != nil {
		return habits.Summary{}, err
	}
	return habits.Summarize(hs), nil
}

// HabitView is a habit with its derived metrics.
type HabitView struct {
	models.Habit
	Streak         int     `json:"streak"`
	CompletionRate float64 `json:"completionRate"`
}

// ViewHabit computes the metrics of h.
func ViewHabit(h models.Habit) HabitView {
	return HabitView{
		Habit:          h,
		Streak:         habits.Streak(h.Records),
		CompletionRate: habits.CompletionRate(h.Records),
	}
}
