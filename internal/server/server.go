package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/fitlife/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	svc    *service.Service
	log    *slog.Logger
	router chi.Router
}

// New creates a new Server with all routes configured.
func New(svc *service.Service, log *slog.Logger) *Server {
	s := &Server{
		svc:    svc,
		log:    log,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestID)
	s.router.Use(RequestLogging(s.log))
	s.router.Use(Recoverer(s.log))
	s.router.Use(Metrics)
	s.router.Use(CORS)

	s.router.Route("/api/v1/users", func(r chi.Router) {
		r.Get("/", s.handleListUsers)
		r.Post("/", s.handleCreateUser)
		r.Get("/{id}", s.handleGetUser)
		r.Put("/{id}", s.handleUpdateUser)
		r.Delete("/{id}", s.handleDeleteUser)
	})

	s.router.Route("/api/v1/workouts", func(r chi.Router) {
		r.Get("/", s.handleListWorkouts)
		r.Get("/{id}", s.handleGetWorkout)
		r.Post("/{type}", s.handleCreateWorkout)
		r.Put("/{id}", s.handleUpdateWorkout)
		r.Delete("/{id}", s.handleDeleteWorkout)
	})

	s.router.Route("/api/v1/meals", func(r chi.Router) {
		r.Get("/", s.handleListMeals)
		r.Post("/", s.handleCreateMeal)
		r.Get("/stats/{userID}", s.handleMealStats)
		r.Get("/{id}", s.handleGetMeal)
		r.Put("/{id}", s.handleUpdateMeal)
		r.Delete("/{id}", s.handleDeleteMeal)
	})

	s.router.Route("/api/v1/habits", func(r chi.Router) {
		r.Get("/", s.handleListHabits)
		r.Post("/", s.handleCreateHabit)
		r.Get("/stats/{userID}", s.handleHabitStats)
		r.Get("/{id}", s.handleGetHabit)
		r.Put("/{id}", s.handleUpdateHabit)
		r.Delete("/{id}", s.handleDeleteHabit)
		r.Post("/{id}/complete", s.handleCompleteHabit)
	})

	s.router.Route("/api/v1/ranking", func(r chi.Router) {
		r.Get("/", s.handleLeaderboard)
		r.Get("/type/{type}", s.handleLeaderboard)
		r.Get("/calories", s.handleCalorieLeaderboard)
		r.Get("/users/{userID}", s.handleUserPosition)
		r.Get("/habits", s.handleHabitLeaderboard)
	})

	s.router.Post("/api/v1/import", s.handleImport)

	s.router.Handle("/metrics", promhttp.Handler())
}

// SetMCP mounts a streamable MCP handler at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Handle("/mcp", h)
}
