package importer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// TestUploadSendsDryRun verifies the dry_run flag and decodes the stats body.
func TestUploadSendsDryRun(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/import" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("dry_run"); got != "true" {
			t.Errorf("dry_run = %q, want true", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"users": {"received": 2, "imported": 2, "rejected": 0}, "dryRun": true}`))
	}))
	defer ts.Close()

	stats, err := NewClient(ts.URL+"/").Upload(context.Background(), []byte(`{}`), true)
	if err != nil {
		t.Fatal(err)
	}
	if !stats.DryRun || stats.Users.Imported != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

// TestUploadUndecodable verifies a 422 maps to ErrUndecodable and keeps the
// server's stats.
func TestUploadUndecodable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error": "document has undecodable workouts", "stats": {"undecodableWorkouts": [3]}}`))
	}))
	defer ts.Close()

	stats, err := NewClient(ts.URL).Upload(context.Background(), []byte(`{}`), false)
	if !errors.Is(err, ErrUndecodable) {
		t.Fatalf("err = %v, want ErrUndecodable", err)
	}
	if stats == nil || len(stats.UndecodableWorkouts) != 1 || stats.UndecodableWorkouts[0] != 3 {
		t.Errorf("stats = %+v", stats)
	}
}

// TestUploadClientErrorNotRetried verifies a 400 is returned after one attempt.
func TestUploadClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "parsing document"}`))
	}))
	defer ts.Close()

	if _, err := NewClient(ts.URL).Upload(context.Background(), []byte(`[`), false); err == nil {
		t.Fatal("expected error for 400 response")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server called %d times, want 1", n)
	}
}

// TestUploadRetriesServerError verifies a 5xx is retried and a later
// success is returned.
func TestUploadRetriesServerError(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"meals": {"imported": 1}}`))
	}))
	defer ts.Close()

	stats, err := NewClient(ts.URL).Upload(context.Background(), []byte(`{}`), false)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Meals.Imported != 1 || calls.Load() != 2 {
		t.Errorf("stats = %+v after %d calls", stats, calls.Load())
	}
}
