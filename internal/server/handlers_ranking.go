package server

import (
	"net/http"

	"github.com/claude/fitlife/internal/ranking"
	"github.com/go-chi/chi/v5"
)

// handleLeaderboard serves both /ranking and /ranking/type/{type}.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	filter, err := ranking.ParseFilter(chi.URLParam(r, "type"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", ranking.DefaultLimit)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	entries, err := s.svc.Leaderboard(r.Context(), filter, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCalorieLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", ranking.DefaultLimit)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	entries, err := s.svc.CalorieLeaderboard(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleUserPosition(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt(r, "userID")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	standing, err := s.svc.UserPosition(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, standing)
}

func (s *Server) handleHabitLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", ranking.DefaultLimit)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	entries, err := s.svc.HabitLeaderboard(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
