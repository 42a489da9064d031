package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/claude/fitlife/internal/models"
	"github.com/claude/fitlife/internal/service"
)

func (s *Server) handleListHabits(w http.ResponseWriter, r *http.Request) {
	userID, err := queryInt(r, "user_id", 0)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	f := service.HabitFilter{UserID: userID}
	if v := r.URL.Query().Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid active "+strconv.Quote(v))
			return
		}
		f.Active = &active
	}

	hs, err := s.svc.ListHabits(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]service.HabitView, 0, len(hs))
	for _, h := range hs {
		out = append(out, service.ViewHabit(h))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetHabit(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	h, err := s.svc.GetHabit(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, service.ViewHabit(h))
}

func (s *Server) handleCreateHabit(w http.ResponseWriter, r *http.Request) {
	var h models.Habit
	if err := decodeBody(r, &h); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := s.svc.CreateHabit(r.Context(), h)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, service.ViewHabit(created))
}

func (s *Server) handleUpdateHabit(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	var h models.Habit
	if err := decodeBody(r, &h); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := s.svc.UpdateHabit(r.Context(), id, h)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, service.ViewHabit(updated))
}

func (s *Server) handleDeleteHabit(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.svc.DeleteHabit(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCompleteHabit logs today's entry. ?completed=false records a missed
// day; an optional body {"note": "..."} is stored with the entry.
func (s *Server) handleCompleteHabit(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	completed := true
	if v := r.URL.Query().Get("completed"); v != "" {
		completed, err = strconv.ParseBool(v)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid completed "+strconv.Quote(v))
			return
		}
	}

	var body struct {
		Note string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeMessage(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	c, err := s.svc.RegisterCompletion(r.Context(), id, completed, body.Note)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleHabitStats(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt(r, "userID")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	stats, err := s.svc.HabitStats(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
