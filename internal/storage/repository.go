package storage

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/claude/fitlife/internal/codec"
	"github.com/claude/fitlife/internal/models"
)

// Repository gives typed access to the collections of a Backend. Every
// write runs load-modify-save under one mutex, so ID allocation never hands
// out the same ID twice within a process.
type Repository struct {
	mu      sync.Mutex
	backend Backend
	version atomic.Uint64
}

// NewRepository wraps b. The repository owns b and closes it on Close.
func NewRepository(b Backend) *Repository {
	return &Repository{backend: b}
}

// Version increases after every successful write.
func (r *Repository) Version() uint64 {
	return r.version.Load()
}

func (r *Repository) Close() error {
	return r.backend.Close()
}

// collection maps one Kind to its Go type.
type collection[T any] struct {
	kind   Kind
	name   string
	id     func(T) int
	setID  func(*T, int)
	encode func(T) (codec.Record, error)
	decode func(codec.Record) (T, error)
}

func (c collection[T]) load(ctx context.Context, b Backend) ([]T, error) {
	records, err := b.LoadAll(ctx, c.kind)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", c.kind, err)
	}
	items := make([]T, 0, len(records))
	for i, rec := range records {
		v, err := c.decode(rec)
		if err != nil {
			return nil, fmt.Errorf("loading %s: record %d: %w", c.kind, i, err)
		}
		items = append(items, v)
	}
	return items, nil
}

func (c collection[T]) save(ctx context.Context, b Backend, items []T) error {
	records := make([]codec.Record, 0, len(items))
	for _, v := range items {
		rec, err := c.encode(v)
		if err != nil {
			return fmt.Errorf("encoding %s %d: %w", c.name, c.id(v), err)
		}
		records = append(records, rec)
	}
	if err := b.SaveAll(ctx, c.kind, records); err != nil {
		return fmt.Errorf("saving %s: %w", c.kind, err)
	}
	return nil
}

func (c collection[T]) index(items []T, id int) int {
	return slices.IndexFunc(items, func(v T) bool { return c.id(v) == id })
}

func (c collection[T]) notFound(id int) error {
	return fmt.Errorf("%s %d: %w", c.name, id, ErrNotFound)
}

func structCollection[T any](kind Kind, name string, id func(T) int, setID func(*T, int)) collection[T] {
	return collection[T]{
		kind:  kind,
		name:  name,
		id:    id,
		setID: setID,
		encode: func(v T) (codec.Record, error) {
			return codec.FromStruct(v)
		},
		decode: func(rec codec.Record) (T, error) {
			var v T
			err := codec.ToStruct(rec, &v)
			return v, err
		},
	}
}

var (
	users = structCollection(KindUsers, "user",
		func(u models.User) int { return u.ID },
		func(u *models.User, id int) { u.ID = id })
	meals = structCollection(KindMeals, "meal",
		func(m models.Meal) int { return m.ID },
		func(m *models.Meal, id int) { m.ID = id })
	habitsColl = structCollection(KindHabits, "habit",
		func(h models.Habit) int { return h.ID },
		func(h *models.Habit, id int) { h.ID = id })
	workouts = collection[models.Workout]{
		kind:  KindWorkouts,
		name:  "workout",
		id:    func(w models.Workout) int { return w.Base().ID },
		setID: func(w *models.Workout, id int) { (*w).Base().ID = id },
		encode: func(w models.Workout) (codec.Record, error) {
			return codec.Encode(w), nil
		},
		decode: codec.Decode,
	}
)

func list[T any](ctx context.Context, r *Repository, c collection[T]) ([]T, error) {
	return c.load(ctx, r.backend)
}

func get[T any](ctx context.Context, r *Repository, c collection[T], id int) (T, error) {
	var zero T
	items, err := c.load(ctx, r.backend)
	if err != nil {
		return zero, err
	}
	i := c.index(items, id)
	if i < 0 {
		return zero, c.notFound(id)
	}
	return items[i], nil
}

// create assigns max(ID)+1, or 1 for an empty collection, and appends v.
func create[T any](ctx context.Context, r *Repository, c collection[T], v T) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := c.load(ctx, r.backend)
	if err != nil {
		return v, err
	}
	next := 1
	for _, it := range items {
		next = max(next, c.id(it)+1)
	}
	c.setID(&v, next)
	if err := c.save(ctx, r.backend, append(items, v)); err != nil {
		return v, err
	}
	r.version.Add(1)
	return v, nil
}

// modify applies fn to the item with the given ID and saves the collection.
// Nothing is written if fn fails.
func modify[T any](ctx context.Context, r *Repository, c collection[T], id int, fn func(*T) error) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	items, err := c.load(ctx, r.backend)
	if err != nil {
		return zero, err
	}
	i := c.index(items, id)
	if i < 0 {
		return zero, c.notFound(id)
	}
	if err := fn(&items[i]); err != nil {
		return zero, err
	}
	c.setID(&items[i], id)
	if err := c.save(ctx, r.backend, items); err != nil {
		return zero, err
	}
	r.version.Add(1)
	return items[i], nil
}

func remove[T any](ctx context.Context, r *Repository, c collection[T], id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, err := c.load(ctx, r.backend)
	if err != nil {
		return err
	}
	i := c.index(items, id)
	if i < 0 {
		return c.notFound(id)
	}
	if err := c.save(ctx, r.backend, slices.Delete(items, i, i+1)); err != nil {
		return err
	}
	r.version.Add(1)
	return nil
}

// replaceWith returns a modify func that overwrites the stored item.
func replaceWith[T any](v T) func(*T) error {
	return func(old *T) error {
		*old = v
		return nil
	}
}

// Users

func (r *Repository) Users(ctx context.Context) ([]models.User, error) {
	return list(ctx, r, users)
}

func (r *Repository) User(ctx context.Context, id int) (models.User, error) {
	return get(ctx, r, users, id)
}

func (r *Repository) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	return create(ctx, r, users, u)
}

func (r *Repository) UpdateUser(ctx context.Context, u models.User) (models.User, error) {
	return modify(ctx, r, users, u.ID, replaceWith(u))
}

func (r *Repository) DeleteUser(ctx context.Context, id int) error {
	return remove(ctx, r, users, id)
}

// Workouts

func (r *Repository) Workouts(ctx context.Context) ([]models.Workout, error) {
	return list(ctx, r, workouts)
}

func (r *Repository) Workout(ctx context.Context, id int) (models.Workout, error) {
	return get(ctx, r, workouts, id)
}

// CreateWorkout stores w and sets its ID.
func (r *Repository) CreateWorkout(ctx context.Context, w models.Workout) (models.Workout, error) {
	return create(ctx, r, workouts, w)
}

// UpdateWorkout replaces the stored workout with the same ID. The stored and
// new workouts must be of the same type.
func (r *Repository) UpdateWorkout(ctx context.Context, w models.Workout) (models.Workout, error) {
	id := w.Base().ID
	return modify(ctx, r, workouts, id, func(old *models.Workout) error {
		if (*old).Type() != w.Type() {
			return fmt.Errorf("workout %d is %s, got %s: %w", id, (*old).Type(), w.Type(), ErrVariantChange)
		}
		*old = w
		return nil
	})
}

func (r *Repository) DeleteWorkout(ctx context.Context, id int) error {
	return remove(ctx, r, workouts, id)
}

// Meals

func (r *Repository) Meals(ctx context.Context) ([]models.Meal, error) {
	return list(ctx, r, meals)
}

func (r *Repository) Meal(ctx context.Context, id int) (models.Meal, error) {
	return get(ctx, r, meals, id)
}

func (r *Repository) CreateMeal(ctx context.Context, m models.Meal) (models.Meal, error) {
	return create(ctx, r, meals, m)
}

func (r *Repository) UpdateMeal(ctx context.Context, m models.Meal) (models.Meal, error) {
	return modify(ctx, r, meals, m.ID, replaceWith(m))
}

func (r *Repository) DeleteMeal(ctx context.Context, id int) error {
	return remove(ctx, r, meals, id)
}

// Habits

func (r *Repository) Habits(ctx context.Context) ([]models.Habit, error) {
	return list(ctx, r, habitsColl)
}

func (r *Repository) Habit(ctx context.Context, id int) (models.Habit, error) {
	return get(ctx, r, habitsColl, id)
}

func (r *Repository) CreateHabit(ctx context.Context, h models.Habit) (models.Habit, error) {
	return create(ctx, r, habitsColl, h)
}

// UpdateHabit replaces the stored habit's fields but keeps its log.
func (r *Repository) UpdateHabit(ctx context.Context, h models.Habit) (models.Habit, error) {
	return modify(ctx, r, habitsColl, h.ID, func(old *models.Habit) error {
		h.Records = old.Records
		*old = h
		return nil
	})
}

// ModifyHabit runs fn on the stored habit under the write lock and saves
// the result.
func (r *Repository) ModifyHabit(ctx context.Context, id int, fn func(*models.Habit) error) (models.Habit, error) {
	return modify(ctx, r, habitsColl, id, fn)
}

func (r *Repository) DeleteHabit(ctx context.Context, id int) error {
	return remove(ctx, r, habitsColl, id)
}

// Snapshot is the full content of a store.
type Snapshot struct {
	Users    []models.User
	Workouts []models.Workout
	Meals    []models.Meal
	Habits   []models.Habit
}

// Snapshot loads every collection.
func (r *Repository) Snapshot(ctx context.Context) (*Snapshot, error) {
	var (
		s   Snapshot
		err error
	)
	if s.Users, err = list(ctx, r, users); err != nil {
		return nil, err
	}
	if s.Workouts, err = list(ctx, r, workouts); err != nil {
		return nil, err
	}
	if s.Meals, err = list(ctx, r, meals); err != nil {
		return nil, err
	}
	if s.Habits, err = list(ctx, r, habitsColl); err != nil {
		return nil, err
	}
	return &s, nil
}

// ReplaceAll overwrites every collection with the content of s. Collections
// are written one at a time; a failure part way leaves the earlier ones
// replaced.
func (r *Repository) ReplaceAll(ctx context.Context, s Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.version.Add(1)

	if err := users.save(ctx, r.backend, s.Users); err != nil {
		return err
	}
	if err := workouts.save(ctx, r.backend, s.Workouts); err != nil {
		return err
	}
	if err := meals.save(ctx, r.backend, s.Meals); err != nil {
		return err
	}
	return habitsColl.save(ctx, r.backend, s.Habits)
}
