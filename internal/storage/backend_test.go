package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/claude/fitlife/internal/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends returns every backend that can run in this environment. The
// postgres backend joins when FITLIFE_TEST_POSTGRES_DSN is set.
func backends(t *testing.T) map[string]Backend {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	fb, err := OpenFile(filepath.Join(dir, "store.json"))
	require.NoError(t, err)
	sb, err := OpenSQLite(ctx, filepath.Join(dir, "store.db"))
	require.NoError(t, err)

	out := map[string]Backend{"file": fb, "sqlite": sb}
	if dsn := os.Getenv("FITLIFE_TEST_POSTGRES_DSN"); dsn != "" {
		pb, err := OpenPostgres(ctx, dsn)
		require.NoError(t, err)
		for _, k := range Kinds {
			require.NoError(t, pb.SaveAll(ctx, k, nil))
		}
		out["postgres"] = pb
	}
	t.Cleanup(func() {
		for _, b := range out {
			b.Close()
		}
	})
	return out
}

func TestBackendContract(t *testing.T) {
	ctx := context.Background()
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := b.LoadAll(ctx, KindWorkouts)
			require.NoError(t, err)
			assert.Empty(t, got, "unwritten collection")
			assert.NotNil(t, got)

			records := []codec.Record{
				{"type": "cardio", "id": 1, "distanceKm": 5.5},
				{"type": "strength", "id": 2, "muscleGroups": []any{"legs"}},
			}
			require.NoError(t, b.SaveAll(ctx, KindWorkouts, records))
			require.NoError(t, b.SaveAll(ctx, KindUsers, []codec.Record{{"id": 1, "name": "Ana"}}))

			got, err = b.LoadAll(ctx, KindWorkouts)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "cardio", got[0]["type"])
			assert.Equal(t, json.Number("2"), got[1]["id"])
			assert.Equal(t, json.Number("5.5"), got[0]["distanceKm"])

			// Saving replaces, it does not append.
			require.NoError(t, b.SaveAll(ctx, KindWorkouts, records[:1]))
			got, err = b.LoadAll(ctx, KindWorkouts)
			require.NoError(t, err)
			assert.Len(t, got, 1)

			// Other collections are untouched.
			us, err := b.LoadAll(ctx, KindUsers)
			require.NoError(t, err)
			require.Len(t, us, 1)
			assert.Equal(t, "Ana", us[0]["name"])

			_, err = b.LoadAll(ctx, Kind("sessions"))
			assert.Error(t, err)
		})
	}
}

func TestFileBackendDocumentLayout(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "store.json")
	fb, err := OpenFile(path)
	require.NoError(t, err)

	require.NoError(t, fb.SaveAll(ctx, KindMeals, []codec.Record{{"id": 1, "description": "oats"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string][]map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, k := range Kinds {
		assert.Contains(t, doc, string(k))
	}
	assert.Len(t, doc["meals"], 1)
	assert.Empty(t, doc["workouts"])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestFileBackendRejectsCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := OpenFile(path)
	assert.Error(t, err)
}

func TestParseDocumentEmpty(t *testing.T) {
	doc, err := ParseDocument([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, doc.Get(KindUsers))
}

func TestOpenBackendUnknownDriver(t *testing.T) {
	_, err := OpenBackend(context.Background(), Options{Driver: "mongo"})
	assert.Error(t, err)
}

func TestOpenBackendInstruments(t *testing.T) {
	b, err := OpenBackend(context.Background(), Options{Driver: DriverFile, Path: filepath.Join(t.TempDir(), "s.json")})
	require.NoError(t, err)
	defer b.Close()
	_, ok := b.(*instrumented)
	assert.True(t, ok)
	assert.Same(t, b, Instrument(b))
}
