package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/claude/fitlife/internal/codec"
	"github.com/claude/fitlife/internal/models"
	"github.com/claude/fitlife/internal/observability"
	"github.com/claude/fitlife/internal/storage"
)

// ErrUndecodable is returned when a workout record matches no variant or
// carries a field of the wrong type. Nothing is saved in that case.
var ErrUndecodable = errors.New("document has undecodable workouts")

// KindStats counts the records of one collection.
type KindStats struct {
	Received int `json:"received"`
	Imported int `json:"imported"`
	Rejected int `json:"rejected"`
}

// Stats tracks import progress.
type Stats struct {
	Users    KindStats `json:"users"`
	Workouts KindStats `json:"workouts"`
	Meals    KindStats `json:"meals"`
	Habits   KindStats `json:"habits"`

	// UndecodableWorkouts holds the positions of workout records that could
	// not be decoded.
	UndecodableWorkouts []int `json:"undecodableWorkouts,omitempty"`
	DryRun              bool  `json:"dryRun"`
}

// Importer reads a FitLife document (current or legacy layout) and replaces
// the content of a repository with it.
type Importer struct {
	repo   *storage.Repository
	log    *slog.Logger
	dryRun bool
	stats  Stats
}

// New creates a new Importer. With dryRun set, documents are decoded and
// validated but nothing is written.
func New(repo *storage.Repository, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{repo: repo, log: log, dryRun: dryRun}
}

// ImportFile imports the document at path.
func (imp *Importer) ImportFile(ctx context.Context, path string) (*Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return imp.Import(ctx, f)
}

// Import reads a whole document from r. Invalid users, meals, habits and
// workouts are skipped and counted as rejected; an undecodable workout
// aborts the import with ErrUndecodable.
func (imp *Importer) Import(ctx context.Context, r io.Reader) (*Stats, error) {
	imp.stats = Stats{DryRun: imp.dryRun}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	doc, err := parseDocument(data)
	if err != nil {
		return nil, err
	}

	var snap storage.Snapshot
	snap.Users = importStructs(imp, doc[storage.KindUsers], userKeys, &imp.stats.Users, "user", nil, models.User.Validate,
		func(u models.User) int { return u.ID }, func(u *models.User, id int) { u.ID = id })
	snap.Meals = importStructs(imp, doc[storage.KindMeals], mealKeys, &imp.stats.Meals, "meal", (*models.Meal).Normalize, models.Meal.Validate,
		func(m models.Meal) int { return m.ID }, func(m *models.Meal, id int) { m.ID = id })
	snap.Habits = importStructs(imp, doc[storage.KindHabits], habitKeys, &imp.stats.Habits, "habit", (*models.Habit).Normalize, models.Habit.Validate,
		func(h models.Habit) int { return h.ID }, func(h *models.Habit, id int) { h.ID = id })
	snap.Workouts = imp.importWorkouts(doc[storage.KindWorkouts])

	imp.record()

	if n := len(imp.stats.UndecodableWorkouts); n > 0 {
		return &imp.stats, fmt.Errorf("%w: %d record(s) at %v", ErrUndecodable, n, imp.stats.UndecodableWorkouts)
	}

	if imp.dryRun {
		imp.log.Info("dry run, nothing written",
			"users", imp.stats.Users.Imported,
			"workouts", imp.stats.Workouts.Imported,
			"meals", imp.stats.Meals.Imported,
			"habits", imp.stats.Habits.Imported,
		)
		return &imp.stats, nil
	}

	if err := imp.repo.ReplaceAll(ctx, snap); err != nil {
		return &imp.stats, fmt.Errorf("saving imported data: %w", err)
	}
	imp.log.Info("import complete",
		"users", imp.stats.Users.Imported,
		"workouts", imp.stats.Workouts.Imported,
		"meals", imp.stats.Meals.Imported,
		"habits", imp.stats.Habits.Imported,
	)
	return &imp.stats, nil
}

func (imp *Importer) importWorkouts(records []codec.Record) []models.Workout {
	st := &imp.stats.Workouts
	st.Received = len(records)

	out := make([]models.Workout, 0, len(records))
	ids := newIDSet()
	for i, rec := range records {
		w, err := codec.Decode(rec)
		if err != nil {
			imp.log.Warn("undecodable workout", "index", i, "error", err)
			imp.stats.UndecodableWorkouts = append(imp.stats.UndecodableWorkouts, i)
			continue
		}
		if !w.Validate() || !ids.claim(w.Base().ID) {
			imp.log.Warn("skipping workout", "index", i, "id", w.Base().ID, "type", w.Type())
			st.Rejected++
			continue
		}
		out = append(out, w)
	}
	ids.fill(len(out), func(i, id int) { out[i].Base().ID = id }, func(i int) int { return out[i].Base().ID })
	st.Imported = len(out)
	return out
}

// importStructs reads one JSON-tagged collection. Each record is passed
// through prepare (when set) before validation. Records that fail to
// convert, fail validation or repeat an ID are rejected.
func importStructs[T any](imp *Importer, records []codec.Record, keys map[string]string, st *KindStats, what string,
	prepare func(*T), valid func(T) bool, id func(T) int, setID func(*T, int)) []T {
	st.Received = len(records)

	out := make([]T, 0, len(records))
	ids := newIDSet()
	for i, rec := range records {
		var v T
		if err := codec.ToStruct(normalize(rec, keys), &v); err != nil {
			imp.log.Warn("skipping "+what, "index", i, "error", err)
			st.Rejected++
			continue
		}
		if prepare != nil {
			prepare(&v)
		}
		if !valid(v) || !ids.claim(id(v)) {
			imp.log.Warn("skipping "+what, "index", i, "id", id(v))
			st.Rejected++
			continue
		}
		out = append(out, v)
	}
	ids.fill(len(out), func(i, n int) { setID(&out[i], n) }, func(i int) int { return id(out[i]) })
	st.Imported = len(out)
	return out
}

func (imp *Importer) record() {
	for kind, st := range map[storage.Kind]KindStats{
		storage.KindUsers:    imp.stats.Users,
		storage.KindWorkouts: imp.stats.Workouts,
		storage.KindMeals:    imp.stats.Meals,
		storage.KindHabits:   imp.stats.Habits,
	} {
		observability.RecordImported(string(kind), "imported", st.Imported)
		observability.RecordImported(string(kind), "rejected", st.Rejected)
	}
	observability.RecordImported(string(storage.KindWorkouts), "undecodable", len(imp.stats.UndecodableWorkouts))
}

// idSet tracks the positive IDs seen in a collection. Records without an ID
// get one above the highest seen.
type idSet struct {
	seen map[int]bool
	max  int
}

func newIDSet() *idSet { return &idSet{seen: map[int]bool{}} }

// claim reports whether id is free. Zero and negative IDs are always free.
func (s *idSet) claim(id int) bool {
	if id <= 0 {
		return true
	}
	if s.seen[id] {
		return false
	}
	s.seen[id] = true
	s.max = max(s.max, id)
	return true
}

func (s *idSet) fill(n int, set func(i, id int), get func(i int) int) {
	for i := range n {
		if get(i) <= 0 {
			s.max++
			set(i, s.max)
		}
	}
}
