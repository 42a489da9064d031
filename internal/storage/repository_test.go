package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/claude/fitlife/internal/codec"
	"github.com/claude/fitlife/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC)

func newRepo(t *testing.T) *Repository {
	t.Helper()
	fb, err := OpenFile(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	r := NewRepository(fb)
	t.Cleanup(func() { r.Close() })
	return r
}

func cardioWorkout(userID int) *models.Cardio {
	return &models.Cardio{
		WorkoutBase: models.WorkoutBase{UserID: userID, DurationMinutes: 30, Intensity: models.IntensityModerate, Status: models.StatusCompleted, Date: day},
		DistanceKm:  5,
		CardioType:  "running",
	}
}

func TestCreateAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	a, err := r.CreateUser(ctx, models.User{Name: "Ana"})
	require.NoError(t, err)
	b, err := r.CreateUser(ctx, models.User{Name: "Bruno", ID: 77})
	require.NoError(t, err)
	assert.Equal(t, 1, a.ID)
	assert.Equal(t, 2, b.ID, "caller-supplied IDs are ignored")

	require.NoError(t, r.DeleteUser(ctx, 1))
	c, err := r.CreateUser(ctx, models.User{Name: "Carla"})
	require.NoError(t, err)
	assert.Equal(t, 3, c.ID)
}

func TestIDsAreMaxPlusOne(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	require.NoError(t, r.backend.SaveAll(ctx, KindMeals, []codec.Record{
		{"id": 4, "description": "a"},
		{"id": 9, "description": "b"},
	}))
	m, err := r.CreateMeal(ctx, models.Meal{UserID: 1, Description: "c", Calories: 100})
	require.NoError(t, err)
	assert.Equal(t, 10, m.ID)
}

// TestConcurrentCreatesGetUniqueIDs verifies the write lock serializes ID
// allocation.
func TestConcurrentCreatesGetUniqueIDs(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	const n = 20
	ids := make(chan int, n)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w, err := r.CreateWorkout(ctx, cardioWorkout(1))
			if err != nil {
				t.Error(err)
				return
			}
			ids <- w.Base().ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)

	all, err := r.Workouts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, n)
}

func TestWorkoutRoundTripThroughStore(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	s := &models.Strength{
		WorkoutBase:  models.WorkoutBase{UserID: 2, DurationMinutes: 45, Intensity: models.IntensityHigh, Status: models.StatusPending, Date: day},
		Sets:         4,
		Reps:         8,
		LoadKg:       80,
		MuscleGroups: []string{"back"},
	}
	created, err := r.CreateWorkout(ctx, s)
	require.NoError(t, err)

	got, err := r.Workout(ctx, created.Base().ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, models.WorkoutStrength, got.Type())
}

func TestUpdateWorkoutRejectsVariantChange(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	created, err := r.CreateWorkout(ctx, cardioWorkout(1))
	require.NoError(t, err)
	version := r.Version()

	f := &models.Functional{
		WorkoutBase:    *created.Base(),
		FunctionalType: "HIIT",
		ExerciseCount:  3,
	}
	_, err = r.UpdateWorkout(ctx, f)
	assert.True(t, errors.Is(err, ErrVariantChange), "err = %v", err)
	assert.Equal(t, version, r.Version(), "failed update must not bump version")

	c := cardioWorkout(1)
	c.ID = created.Base().ID
	c.DistanceKm = 12
	_, err = r.UpdateWorkout(ctx, c)
	require.NoError(t, err)

	got, err := r.Workout(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.0, got.(*models.Cardio).DistanceKm)
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)

	_, err := r.User(ctx, 5)
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = r.UpdateMeal(ctx, models.Meal{ID: 5})
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(r.DeleteHabit(ctx, 5), ErrNotFound))
	_, err = r.Workout(ctx, 5)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUndecodableWorkoutFailsLoad(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	require.NoError(t, r.backend.SaveAll(ctx, KindWorkouts, []codec.Record{
		codec.Encode(cardioWorkout(1)),
		{"id": 2, "durationMinutes": 10},
	}))

	_, err := r.Workouts(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, codec.ErrUnknownVariant))
	assert.Contains(t, err.Error(), "record 1")
}

func TestUpdateHabitKeepsLog(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	h, err := r.CreateHabit(ctx, models.Habit{UserID: 1, Title: "Read", Active: true})
	require.NoError(t, err)

	_, err = r.ModifyHabit(ctx, h.ID, func(h *models.Habit) error {
		h.Records = append(h.Records, models.HabitRecord{Date: day, Completed: true})
		return nil
	})
	require.NoError(t, err)

	updated, err := r.UpdateHabit(ctx, models.Habit{ID: h.ID, UserID: 1, Title: "Read more", Active: false})
	require.NoError(t, err)
	assert.Equal(t, "Read more", updated.Title)
	require.Len(t, updated.Records, 1)
	assert.True(t, updated.Records[0].Date.Equal(day))
}

func TestModifyHabitErrorLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	h, err := r.CreateHabit(ctx, models.Habit{UserID: 1, Title: "Walk"})
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = r.ModifyHabit(ctx, h.ID, func(h *models.Habit) error {
		h.Title = "changed"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := r.Habit(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, "Walk", got.Title)
}

func TestSnapshotAndReplaceAll(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	_, err := r.CreateUser(ctx, models.User{Name: "old"})
	require.NoError(t, err)

	w := cardioWorkout(1)
	w.ID = 3
	require.NoError(t, r.ReplaceAll(ctx, Snapshot{
		Users:    []models.User{{ID: 1, Name: "Ana"}, {ID: 2, Name: "Bruno"}},
		Workouts: []models.Workout{w},
		Meals:    []models.Meal{{ID: 1, UserID: 1, Description: "eggs", Calories: 200, Date: day, Slot: models.SlotBreakfast}},
	}))

	s, err := r.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, s.Users, 2)
	assert.Equal(t, "Ana", s.Users[0].Name)
	require.Len(t, s.Workouts, 1)
	assert.Equal(t, 3, s.Workouts[0].Base().ID)
	assert.Len(t, s.Meals, 1)
	assert.Empty(t, s.Habits)
}

func TestVersionAdvancesOnWrite(t *testing.T) {
	ctx := context.Background()
	r := newRepo(t)
	v0 := r.Version()
	_, err := r.CreateUser(ctx, models.User{Name: "Ana"})
	require.NoError(t, err)
	assert.Greater(t, r.Version(), v0)

	v1 := r.Version()
	_, err = r.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, v1, r.Version(), "reads do not advance the version")
}

func TestSQLiteRepository(t *testing.T) {
	ctx := context.Background()
	sb, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "fitlife.db"))
	require.NoError(t, err)
	r := NewRepository(sb)
	defer r.Close()

	m, err := r.CreateMeal(ctx, models.Meal{UserID: 1, Description: "salad", Calories: 320, ProteinG: 12.5, Date: day, Slot: models.SlotLunch})
	require.NoError(t, err)

	got, err := r.Meal(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}
