package importer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/claude/fitlife/internal/models"
	"github.com/claude/fitlife/internal/storage"
)

func newRepo(t *testing.T) *storage.Repository {
	t.Helper()
	fb, err := storage.OpenFile(filepath.Join(t.TempDir(), "store.json"))
	if err != nil {
		t.Fatal(err)
	}
	r := storage.NewRepository(fb)
	t.Cleanup(func() { r.Close() })
	return r
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// legacyDocument is laid out the way the first FitLife API wrote its data
// file: Portuguese collection and field names, untagged workouts and dates
// without a zone.
const legacyDocument = `{
	"Usuarios": [
		{"Id": 1, "Nome": "Ana", "Email": "ana@example.com"},
		{"Id": 2, "Nome": "Bruno"}
	],
	"Treinos": [
		{"Id": 1, "UsuarioId": 1, "DuracaoMinutos": 30, "Intensidade": "moderada", "Status": "concluido",
		 "Data": "2024-03-10T07:00:00", "DistanciaKm": 5, "TipoCardio": "corrida"},
		{"Id": 2, "UsuarioId": 2, "DuracaoMinutos": 45, "Intensidade": 2, "Status": 1,
		 "Data": "2024-03-10T18:20:00", "Series": 4, "Repeticoes": 10, "CargaKg": 60, "GruposMusculares": ["peito"]}
	],
	"Alimentacoes": [
		{"Id": 1, "UsuarioId": 1, "Data": "2024-03-10T08:00:00", "Refeicao": "cafe_manha", "Descricao": "aveia",
		 "Calorias": 350, "Proteinas": 12, "Carboidratos": 60, "Gorduras": 6}
	],
	"Habitos": [
		{"Id": 1, "UsuarioId": 2, "Titulo": "Beber agua", "Categoria": "hidratacao", "Frequencia": "diaria",
		 "DataInicio": "2024-03-01T00:00:00", "Ativo": true,
		 "Registros": [{"Data": "2024-03-09T21:00:00", "Concluido": true, "Observacoes": "2L"}]}
	]
}`

func TestImportLegacyDocument(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	stats, err := New(repo, quietLogger(), false).Import(ctx, strings.NewReader(legacyDocument))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if stats.Users.Imported != 2 || stats.Workouts.Imported != 2 || stats.Meals.Imported != 1 || stats.Habits.Imported != 1 {
		t.Errorf("stats = %+v", stats)
	}

	u, err := repo.User(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if u.Name != "Ana" || u.Email != "ana@example.com" {
		t.Errorf("user = %+v", u)
	}

	w, err := repo.Workout(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	s, ok := w.(*models.Strength)
	if !ok {
		t.Fatalf("workout 2 is %T, want *models.Strength", w)
	}
	if s.Intensity != models.IntensityHigh || s.Status != models.StatusCompleted {
		t.Errorf("ordinal enums not mapped: %+v", s.WorkoutBase)
	}

	m, err := repo.Meal(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if m.Slot != models.SlotBreakfast || m.Calories != 350 || m.ProteinG != 12 {
		t.Errorf("meal = %+v", m)
	}
	if want := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC); !m.Date.Equal(want) {
		t.Errorf("meal date = %v, want %v", m.Date, want)
	}

	h, err := repo.Habit(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if h.Title != "Beber agua" || h.Frequency != models.FrequencyDaily || !h.Active {
		t.Errorf("habit = %+v", h)
	}
	if len(h.Records) != 1 || !h.Records[0].Completed || h.Records[0].Note != "2L" {
		t.Errorf("habit records = %+v", h.Records)
	}
}

// TestImportUndecodableWorkout verifies a workout matching no variant aborts
// the import and leaves the store untouched.
func TestImportUndecodableWorkout(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	if _, err := repo.CreateUser(ctx, models.User{Name: "existing"}); err != nil {
		t.Fatal(err)
	}

	doc := `{"workouts": [
		{"type": "functional", "userId": 1, "durationMinutes": 20, "intensity": "low", "status": "completed",
		 "functionalType": "hiit", "exerciseCount": 4},
		{"id": 5, "userId": 1, "durationMinutes": 20}
	]}`
	stats, err := New(repo, quietLogger(), false).Import(ctx, strings.NewReader(doc))
	if !errors.Is(err, ErrUndecodable) {
		t.Fatalf("err = %v, want ErrUndecodable", err)
	}
	if len(stats.UndecodableWorkouts) != 1 || stats.UndecodableWorkouts[0] != 1 {
		t.Errorf("undecodable = %v, want [1]", stats.UndecodableWorkouts)
	}

	users, err := repo.Users(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 || users[0].Name != "existing" {
		t.Errorf("store was modified: %+v", users)
	}
}

func TestImportRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	doc := `{
		"users": [{"id": 1, "name": "Ana"}, {"id": 2, "name": ""}, {"id": 1, "name": "dup"}, {"name": "Carla"}],
		"meals": [
			{"userId": 1, "description": "", "calories": 100, "slot": "lunch"},
			{"userId": 1, "description": "toast", "calories": 200, "slot": "brunch"},
			{"userId": 1, "description": "rice", "calories": 500, "slot": "Almoço"}
		],
		"habits": [{"userId": 1, "title": "Walk"}]
	}`
	stats, err := New(repo, quietLogger(), false).Import(ctx, strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Users.Received != 4 || stats.Users.Imported != 2 || stats.Users.Rejected != 2 {
		t.Errorf("user stats = %+v", stats.Users)
	}
	if stats.Meals.Rejected != 2 || stats.Meals.Imported != 1 {
		t.Errorf("meal stats = %+v", stats.Meals)
	}

	m, err := repo.Meal(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if m.Slot != models.SlotLunch {
		t.Errorf("meal slot = %q, want lunch", m.Slot)
	}
	h, err := repo.Habit(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if h.Frequency != models.FrequencyDaily {
		t.Errorf("habit frequency = %q, want daily", h.Frequency)
	}

	users, err := repo.Users(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 || users[1].ID != 2 || users[1].Name != "Carla" {
		t.Errorf("users = %+v, want Carla assigned id 2", users)
	}
}

func TestImportDryRun(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	stats, err := New(repo, quietLogger(), true).Import(ctx, strings.NewReader(legacyDocument))
	if err != nil {
		t.Fatal(err)
	}
	if !stats.DryRun || stats.Workouts.Imported != 2 {
		t.Errorf("stats = %+v", stats)
	}
	users, err := repo.Users(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 0 {
		t.Errorf("dry run wrote %d users", len(users))
	}
}

func TestImportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(legacyDocument), 0o644); err != nil {
		t.Fatal(err)
	}

	stats, err := New(newRepo(t), quietLogger(), true).ImportFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Users.Imported != 2 {
		t.Errorf("users imported = %d, want 2", stats.Users.Imported)
	}

	if _, err := New(newRepo(t), quietLogger(), true).ImportFile(context.Background(), filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNormalizePrefersCurrentKeys(t *testing.T) {
	got := normalize(map[string]any{"titulo": "old", "title": "new", "frequencia": "Semanal"}, habitKeys)
	if got["title"] != "new" {
		t.Errorf("title = %v, want new", got["title"])
	}
	if got["frequency"] != "weekly" {
		t.Errorf("frequency = %v, want weekly", got["frequency"])
	}
}
