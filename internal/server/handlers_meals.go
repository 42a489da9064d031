package server

import (
	"net/http"
	"strings"

	"github.com/claude/fitlife/internal/models"
	"github.com/claude/fitlife/internal/nutrition"
	"github.com/claude/fitlife/internal/service"
)

// mealView is a meal with the calorie share of each macro.
type mealView struct {
	models.Meal
	MacroPercentages nutrition.Macros `json:"macroPercentages"`
}

func viewMeal(m models.Meal) mealView {
	return mealView{Meal: m, MacroPercentages: nutrition.MacroPercentages(m)}
}

func (s *Server) handleListMeals(w http.ResponseWriter, r *http.Request) {
	userID, err := queryInt(r, "user_id", 0)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	f := service.MealFilter{
		UserID: userID,
		Slot:   models.MealSlot(strings.ToLower(r.URL.Query().Get("slot"))),
	}
	meals, err := s.svc.ListMeals(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]mealView, 0, len(meals))
	for _, m := range meals {
		out = append(out, viewMeal(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetMeal(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	m, err := s.svc.GetMeal(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewMeal(m))
}

func (s *Server) handleCreateMeal(w http.ResponseWriter, r *http.Request) {
	var m models.Meal
	if err := decodeBody(r, &m); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := s.svc.CreateMeal(r.Context(), m)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewMeal(created))
}

func (s *Server) handleUpdateMeal(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	var m models.Meal
	if err := decodeBody(r, &m); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := s.svc.UpdateMeal(r.Context(), id, m)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewMeal(updated))
}

func (s *Server) handleDeleteMeal(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt(r, "id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.svc.DeleteMeal(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMealStats(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt(r, "userID")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	stats, err := s.svc.MealStats(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
