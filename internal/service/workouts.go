package service

import (
	"context"

	"github.com/claude/fitlife/internal/models"
)

// ListWorkouts returns all workouts, or only those of userID when it is not 0.
func (s *Service) ListWorkouts(ctx context.Context, userID int) ([]models.Workout, error) {
	all, err := s.repo.Workouts(ctx)
	if err != nil {
		return nil, err
	}
	if userID == 0 {
		return all, nil
	}
	out := make([]models.Workout, 0, len(all))
	for _, w := range all {
		if w.Base().UserID == userID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *Service) GetWorkout(ctx context.Context, id int) (models.Workout, error) {
	return s.repo.Workout(ctx, id)
}

// CreateWorkout stores w. A missing date defaults to now and a missing
// status to pending.
func (s *Service) CreateWorkout(ctx context.Context, w models.Workout) (models.Workout, error) {
	b := w.Base()
	if b.Status == "" {
		b.Status = models.StatusPending
	}
	if b.Date.IsZero() {
		b.Date = s.now()
	}
	if !w.Validate() {
		return w, invalid(string(w.Type()) + " workout fails validation")
	}
	created, err := s.repo.CreateWorkout(ctx, w)
	if err != nil {
		return created, err
	}
	s.logger.Info("workout created",
		"workout_id", created.Base().ID,
		"user_id", b.UserID,
		"type", created.Type(),
		"calories", created.CalculateCalories(),
	)
	return created, nil
}

// UpdateWorkout replaces workout id. The stored workout must have the same
// type as w.
func (s *Service) UpdateWorkout(ctx context.Context, id int, w models.Workout) (models.Workout, error) {
	b := w.Base()
	b.ID = id
	if b.Status == "" {
		b.Status = models.StatusPending
	}
	if !w.Validate() {
		return w, invalid(string(w.Type()) + " workout fails validation")
	}
	return s.repo.UpdateWorkout(ctx, w)
}

func (s *Service) DeleteWorkout(ctx context.Context, id int) error {
	return s.repo.DeleteWorkout(ctx, id)
}
