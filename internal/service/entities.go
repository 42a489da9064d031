package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/claude/fitlife/internal/models"
	"github.com/claude/fitlife/internal/nutrition"
)

func invalid(what string) error {
	return fmt.Errorf("%w: %s", models.ErrInvalid, what)
}

// Users

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.repo.Users(ctx)
}

func (s *Service) GetUser(ctx context.Context, id int) (models.User, error) {
	return s.repo.User(ctx, id)
}

func (s *Service) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	if !u.Validate() {
		return u, invalid("user name is required")
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now().UTC()
	}
	created, err := s.repo.CreateUser(ctx, u)
	if err != nil {
		return created, err
	}
	s.logger.Info("user created", "user_id", created.ID)
	return created, nil
}

// UpdateUser replaces user id. The creation time is kept unless u sets one.
func (s *Service) UpdateUser(ctx context.Context, id int, u models.User) (models.User, error) {
	if !u.Validate() {
		return u, invalid("user name is required")
	}
	old, err := s.repo.User(ctx, id)
	if err != nil {
		return u, err
	}
	u.ID = id
	if u.CreatedAt.IsZero() {
		u.CreatedAt = old.CreatedAt
	}
	return s.repo.UpdateUser(ctx, u)
}

func (s *Service) DeleteUser(ctx context.Context, id int) error {
	return s.repo.DeleteUser(ctx, id)
}

// Meals

// MealFilter narrows ListMeals. Zero fields match everything. Slot is
// matched case-insensitively and accepts legacy names.
type MealFilter struct {
	UserID int
	Slot   models.MealSlot
}

// ListMeals returns the meals matching f. A single user's meals come newest
// first; otherwise store order is kept.
func (s *Service) ListMeals(ctx context.Context, f MealFilter) ([]models.Meal, error) {
	all, err := s.repo.Meals(ctx)
	if err != nil {
		return nil, err
	}
	var slot models.MealSlot
	if f.Slot != "" {
		slot = models.ParseMealSlot(string(f.Slot))
	}
	out := make([]models.Meal, 0, len(all))
	for _, m := range all {
		if f.UserID != 0 && m.UserID != f.UserID {
			continue
		}
		if slot != "" && models.ParseMealSlot(string(m.Slot)) != slot {
			continue
		}
		out = append(out, m)
	}
	if f.UserID != 0 {
		slices.SortStableFunc(out, func(a, b models.Meal) int { return b.Date.Compare(a.Date) })
	}
	return out, nil
}

func (s *Service) GetMeal(ctx context.Context, id int) (models.Meal, error) {
	return s.repo.Meal(ctx, id)
}

const mealRequirements = "meal needs a description, positive calories, a user and a slot (breakfast, lunch, dinner or snack)"

func (s *Service) CreateMeal(ctx context.Context, m models.Meal) (models.Meal, error) {
	m.Normalize()
	if !m.Validate() {
		return m, invalid(mealRequirements)
	}
	if m.Date.IsZero() {
		m.Date = s.now()
	}
	return s.repo.CreateMeal(ctx, m)
}

func (s *Service) UpdateMeal(ctx context.Context, id int, m models.Meal) (models.Meal, error) {
	m.Normalize()
	if !m.Validate() {
		return m, invalid(mealRequirements)
	}
	m.ID = id
	return s.repo.UpdateMeal(ctx, m)
}

func (s *Service) DeleteMeal(ctx context.Context, id int) error {
	return s.repo.DeleteMeal(ctx, id)
}

// MealStats summarizes every meal logged by userID.
func (s *Service) MealStats(ctx context.Context, userID int) (nutrition.Summary, error) {
	meals, err := s.ListMeals(ctx, MealFilter{UserID: userID})
	if err != nil {
		return nutrition.Summary{}, err
	}
	return nutrition.Summarize(meals), nil
}
