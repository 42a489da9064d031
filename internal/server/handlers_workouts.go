package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/claude/fitlife/internal/codec"
	"github.com/claude/fitlife/internal/models"
	"github.com/claude/fitlife/internal/ranking"
	"github.com/go-chi/chi/v5"
)

// decodeWorkout reads a workout record from the body. typ, when set,
// overrides any type field the client sent.
func decodeWorkout(r *http.Request, typ models.WorkoutType) (models.Workout, error) {
	var rec codec.Record
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("invalid JSON: expected an object")
	}
	if typ != "" {
		rec[codec.TypeField] = string(typ)
	}
	return codec.Decode(rec)
}

func viewWorkouts(workouts []models.Workout) []codec.Record {
	out := make([]codec.Record, 0, len(workouts))
	for _, w := range workouts {
		out = append(out, codec.View(w))
	}
	return out
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	userID, err := queryInt(r, "user_id", 0)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	workouts, err := s.svc.ListWorkouts(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewWorkouts(workouts))
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	workout, err := s.svc.GetWorkout(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, codec.View(workout))
}

// handleCreateWorkout creates a workout of the variant named in the path.
// Legacy variant names are accepted.
func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	filter, err := ranking.ParseFilter(chi.URLParam(r, "type"))
	if err != nil || filter == ranking.FilterAll {
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf("unknown workout type %q", chi.URLParam(r, "type")))
		return
	}

	workout, err := decodeWorkout(r, models.WorkoutType(filter))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := s.svc.CreateWorkout(r.Context(), workout)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, codec.View(created))
}

// handleUpdateWorkout replaces a workout. A body without a type field is
// read as the stored workout's variant.
func (s *Server) handleUpdateWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	existing, err := s.svc.GetWorkout(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var rec codec.Record
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil || rec == nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON: expected an object")
		return
	}
	if _, ok := rec[codec.TypeField]; !ok {
		rec[codec.TypeField] = string(existing.Type())
	}
	workout, err := codec.Decode(rec)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.svc.UpdateWorkout(r.Context(), id, workout)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, codec.View(updated))
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.svc.DeleteWorkout(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
