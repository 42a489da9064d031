package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claude/fitlife/internal/codec"
	"github.com/claude/fitlife/internal/habits"
	"github.com/claude/fitlife/internal/models"
	"github.com/claude/fitlife/internal/nutrition"
	"github.com/claude/fitlife/internal/ranking"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestListWorkouts verifies workouts come back as typed variants after a
// round trip through the REST representation.
func TestListWorkouts(t *testing.T) {
	strength := &models.Strength{
		WorkoutBase: models.WorkoutBase{
			ID: 3, UserID: 2, DurationMinutes: 45,
			Intensity: models.IntensityHigh, Status: models.StatusCompleted,
			Date: time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC),
		},
		Sets: 4, Reps: 10, LoadKg: 60, MuscleGroups: []string{"legs"},
	}

	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/workouts": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("user_id"); got != "2" {
				t.Errorf("user_id=%q, want 2", got)
			}
			writeTestJSON(t, w, []codec.Record{codec.View(strength)})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	workouts, err := client.ListWorkouts(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(workouts) != 1 {
		t.Fatalf("got %d workouts, want 1", len(workouts))
	}
	got, ok := workouts[0].(*models.Strength)
	if !ok {
		t.Fatalf("workout is %T, want *models.Strength", workouts[0])
	}
	if got.Sets != 4 || got.LoadKg != 60 || got.ID != 3 {
		t.Errorf("decoded = %+v", got)
	}
	if got.CalculateCalories() != strength.CalculateCalories() {
		t.Errorf("calories changed across the wire: %d != %d", got.CalculateCalories(), strength.CalculateCalories())
	}
}

// TestLeaderboardPath verifies the type filter picks the sub-route and the
// limit is sent as a query parameter.
func TestLeaderboardPath(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/ranking": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("limit"); got != "5" {
				t.Errorf("limit=%q, want 5", got)
			}
			writeTestJSON(t, w, []ranking.Entry{{Position: 1, UserID: 1, Score: 430}})
		},
		"/api/v1/ranking/type/cardio": func(w http.ResponseWriter, _ *http.Request) {
			writeTestJSON(t, w, []ranking.Entry{})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	entries, err := client.Leaderboard(context.Background(), ranking.FilterAll, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Score != 430 {
		t.Errorf("entries = %+v", entries)
	}

	entries, err = client.Leaderboard(context.Background(), ranking.FilterCardio, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("cardio entries = %+v, want empty", entries)
	}
}

// TestLeaderboardInvalidLimit verifies the limit is checked before any request.
func TestLeaderboardInvalidLimit(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	if _, err := client.Leaderboard(context.Background(), ranking.FilterAll, 0); !errors.Is(err, ranking.ErrInvalidLimit) {
		t.Errorf("err = %v, want ErrInvalidLimit", err)
	}
	if _, err := client.CalorieLeaderboard(context.Background(), -1); !errors.Is(err, ranking.ErrInvalidLimit) {
		t.Errorf("err = %v, want ErrInvalidLimit", err)
	}
}

// TestUserPositionNotRanked verifies a 404 maps back to ErrNotRanked.
func TestUserPositionNotRanked(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/ranking/users/7": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"user is not ranked"}`))
		},
		"/api/v1/ranking/users/2": func(w http.ResponseWriter, _ *http.Request) {
			writeTestJSON(t, w, ranking.Standing{Position: 1, TotalParticipants: 3})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	if _, err := client.UserPosition(context.Background(), 7); !errors.Is(err, ranking.ErrNotRanked) {
		t.Errorf("err = %v, want ErrNotRanked", err)
	}

	st, err := client.UserPosition(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if st.Position != 1 || st.TotalParticipants != 3 {
		t.Errorf("standing = %+v", st)
	}
}

// TestStats verifies the habit and meal summary endpoints.
func TestStats(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/habits/stats/4": func(w http.ResponseWriter, _ *http.Request) {
			writeTestJSON(t, w, habits.Summary{Total: 3, Active: 2, BestStreak: 5})
		},
		"/api/v1/meals/stats/4": func(w http.ResponseWriter, _ *http.Request) {
			writeTestJSON(t, w, nutrition.Summary{Meals: 2, Calories: 1200})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	hs, err := client.HabitStats(context.Background(), 4)
	if err != nil {
		t.Fatal(err)
	}
	if hs.Total != 3 || hs.BestStreak != 5 {
		t.Errorf("habit stats = %+v", hs)
	}

	ms, err := client.MealStats(context.Background(), 4)
	if err != nil {
		t.Fatal(err)
	}
	if ms.Meals != 2 || ms.Calories != 1200 {
		t.Errorf("meal stats = %+v", ms)
	}
}

// TestHTTPClientServerError verifies the client returns an error on non-200 responses.
func TestHTTPClientServerError(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/ranking/habits": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"store down"}`))
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL)
	_, err := client.HabitLeaderboard(context.Background(), 10)
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}
