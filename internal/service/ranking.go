package service

import (
	"context"
	"fmt"

	"github.com/claude/fitlife/internal/models"
	"github.com/claude/fitlife/internal/ranking"
)

func (s *Service) rankingInputs(ctx context.Context) ([]models.Workout, ranking.Users, error) {
	ws, err := s.repo.Workouts(ctx)
	if err != nil {
		return nil, nil, err
	}
	us, err := s.repo.Users(ctx)
	if err != nil {
		return nil, nil, err
	}
	return ws, ranking.IndexUsers(us), nil
}

// Leaderboard ranks users by score over completed workouts matching filter.
func (s *Service) Leaderboard(ctx context.Context, filter ranking.Filter, limit int) ([]ranking.Entry, error) {
	if limit < 1 {
		return nil, ranking.ErrInvalidLimit
	}
	key := fmt.Sprintf("score::%s::%d", filter, limit)
	return cached(ctx, s, key, func(ctx context.Context) ([]ranking.Entry, error) {
		ws, users, err := s.rankingInputs(ctx)
		if err != nil {
			return nil, err
		}
		return ranking.Rank(ws, users, filter, limit)
	})
}

// CalorieLeaderboard ranks users by calories burned.
func (s *Service) CalorieLeaderboard(ctx context.Context, limit int) ([]ranking.CalorieEntry, error) {
	if limit < 1 {
		return nil, ranking.ErrInvalidLimit
	}
	key := fmt.Sprintf("calories::%d", limit)
	return cached(ctx, s, key, func(ctx context.Context) ([]ranking.CalorieEntry, error) {
		ws, users, err := s.rankingInputs(ctx)
		if err != nil {
			return nil, err
		}
		return ranking.RankByCalories(ws, users, limit)
	})
}

// UserPosition reports where userID stands in the overall leaderboard.
func (s *Service) UserPosition(ctx context.Context, userID int) (*ranking.Standing, error) {
	key := fmt.Sprintf("position::%d", userID)
	return cached(ctx, s, key, func(ctx context.Context) (*ranking.Standing, error) {
		ws, users, err := s.rankingInputs(ctx)
		if err != nil {
			return nil, err
		}
		return ranking.PositionOf(ws, users, userID)
	})
}

// HabitLeaderboard ranks active habits by streak.
func (s *Service) HabitLeaderboard(ctx context.Context, limit int) ([]ranking.HabitEntry, error) {
	if limit < 1 {
		return nil, ranking.ErrInvalidLimit
	}
	key := fmt.Sprintf("habits::%d", limit)
	return cached(ctx, s, key, func(ctx context.Context) ([]ranking.HabitEntry, error) {
		hs, err := s.repo.Habits(ctx)
		if err != nil {
			return nil, err
		}
		us, err := s.repo.Users(ctx)
		if err != nil {
			return nil, err
		}
		return ranking.RankHabits(hs, ranking.IndexUsers(us), limit)
	})
}
