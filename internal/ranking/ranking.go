// Package ranking turns workout and habit collections into leaderboards.
//
// Only completed workouts count. Each user's score is the sum of the
// calories of their workouts plus 100 points per workout. Ties on score are
// broken by user ID, lowest first, so the order never depends on input order.
package ranking

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/claude/fitlife/internal/models"
)

const (
	// DefaultLimit is used by callers when no limit is given.
	DefaultLimit = 10
	// UnknownUser is the display name for user IDs missing from the lookup.
	UnknownUser = "Unknown user"
	// pointsPerWorkout is the score bonus for every completed workout.
	pointsPerWorkout = 100
)

var (
	// ErrInvalidLimit is returned for limits below 1.
	ErrInvalidLimit = errors.New("limit must be at least 1")
	// ErrInvalidFilter is returned by ParseFilter for unknown variant names.
	ErrInvalidFilter = errors.New("unknown workout type filter")
	// ErrNotRanked is returned by PositionOf when the user has no completed workouts.
	ErrNotRanked = errors.New("user not found in ranking")
)

// Filter restricts a ranking to one workout variant.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterCardio     Filter = Filter(models.WorkoutCardio)
	FilterStrength   Filter = Filter(models.WorkoutStrength)
	FilterFunctional Filter = Filter(models.WorkoutFunctional)
)

// ParseFilter accepts a variant name (case-insensitive), "all" or "".
// The legacy names "musculacao", "forca" and "funcional" are accepted as
// aliases.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "cardio":
		return FilterCardio, nil
	case "strength", "musculacao", "forca", "força":
		return FilterStrength, nil
	case "functional", "funcional":
		return FilterFunctional, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFilter, s)
}

func (f Filter) matches(w models.Workout) bool {
	switch f {
	case FilterCardio:
		return w.Type() == models.WorkoutCardio
	case FilterStrength:
		return w.Type() == models.WorkoutStrength
	case FilterFunctional:
		return w.Type() == models.WorkoutFunctional
	default:
		return true
	}
}

// UserLookup resolves display names.
type UserLookup interface {
	FindUser(id int) (models.User, bool)
}

// Users is a UserLookup backed by a map.
type Users map[int]models.User

// IndexUsers builds a Users lookup from a slice.
func IndexUsers(users []models.User) Users {
	idx := make(Users, len(users))
	for _, u := range users {
		idx[u.ID] = u
	}
	return idx
}

func (u Users) FindUser(id int) (models.User, bool) {
	user, ok := u[id]
	return user, ok
}

func displayName(users UserLookup, id int) string {
	if users == nil {
		return UnknownUser
	}
	if u, ok := users.FindUser(id); ok {
		return u.Name
	}
	return UnknownUser
}

// Entry is one row of the score leaderboard.
type Entry struct {
	Position int    `json:"position"`
	UserID   int    `json:"userId"`
	UserName string `json:"userName"`
	Workouts int    `json:"totalWorkouts"`
	Calories int    `json:"totalCalories"`
	Minutes  int    `json:"totalMinutes"`
	Score    int    `json:"score"`
}

// Standing is a single user's place in the full, untruncated leaderboard.
type Standing struct {
	Position          int   `json:"position"`
	TotalParticipants int   `json:"totalParticipants"`
	Entry             Entry `json:"entry"`
}

// CalorieEntry is one row of the calorie leaderboard.
type CalorieEntry struct {
	Position        int    `json:"position"`
	UserID          int    `json:"userId"`
	UserName        string `json:"userName"`
	Workouts        int    `json:"totalWorkouts"`
	Calories        int    `json:"totalCalories"`
	AverageCalories int    `json:"averageCalories"`
}

type totals struct {
	userID   int
	workouts int
	calories int
	minutes  int
}

func (t totals) score() int {
	return t.calories + t.workouts*pointsPerWorkout
}

// aggregate groups completed workouts per user, in first-seen order.
func aggregate(workouts []models.Workout, filter Filter) []totals {
	pos := make(map[int]int)
	var groups []totals
	for _, w := range workouts {
		b := w.Base()
		if !b.Completed() || !filter.matches(w) {
			continue
		}
		i, ok := pos[b.UserID]
		if !ok {
			i = len(groups)
			pos[b.UserID] = i
			groups = append(groups, totals{userID: b.UserID})
		}
		groups[i].workouts++
		groups[i].calories += w.CalculateCalories()
		groups[i].minutes += b.DurationMinutes
	}
	return groups
}

func byScore(a, b totals) int {
	if c := cmp.Compare(b.score(), a.score()); c != 0 {
		return c
	}
	return cmp.Compare(a.userID, b.userID)
}

func byCalories(a, b totals) int {
	if c := cmp.Compare(b.calories, a.calories); c != 0 {
		return c
	}
	return cmp.Compare(a.userID, b.userID)
}

func (t totals) entry(position int, users UserLookup) Entry {
	return Entry{
		Position: position,
		UserID:   t.userID,
		UserName: displayName(users, t.userID),
		Workouts: t.workouts,
		Calories: t.calories,
		Minutes:  t.minutes,
		Score:    t.score(),
	}
}

// Rank returns the top limit users by score.
func Rank(workouts []models.Workout, users UserLookup, filter Filter, limit int) ([]Entry, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	groups := aggregate(workouts, filter)
	slices.SortStableFunc(groups, byScore)
	if len(groups) > limit {
		groups = groups[:limit]
	}

	out := make([]Entry, 0, len(groups))
	for i, g := range groups {
		out = append(out, g.entry(i+1, users))
	}
	return out, nil
}

// PositionOf ranks every participant and reports where userID lands.
func PositionOf(workouts []models.Workout, users UserLookup, userID int) (*Standing, error) {
	groups := aggregate(workouts, FilterAll)
	slices.SortStableFunc(groups, byScore)

	i := slices.IndexFunc(groups, func(g totals) bool { return g.userID == userID })
	if i < 0 {
		return nil, fmt.Errorf("%w: user %d", ErrNotRanked, userID)
	}
	return &Standing{
		Position:          i + 1,
		TotalParticipants: len(groups),
		Entry:             groups[i].entry(i+1, users),
	}, nil
}

// RankByCalories orders users by summed calories instead of score.
func RankByCalories(workouts []models.Workout, users UserLookup, limit int) ([]CalorieEntry, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	groups := aggregate(workouts, FilterAll)
	slices.SortStableFunc(groups, byCalories)
	if len(groups) > limit {
		groups = groups[:limit]
	}

	out := make([]CalorieEntry, 0, len(groups))
	for i, g := range groups {
		out = append(out, CalorieEntry{
			Position:        i + 1,
			UserID:          g.userID,
			UserName:        displayName(users, g.userID),
			Workouts:        g.workouts,
			Calories:        g.calories,
			AverageCalories: g.calories / g.workouts,
		})
	}
	return out, nil
}
