package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/fitlog/internal/ingest/alpha"
	"github.com/claude/fitlog/internal/library"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	lib    *library.Library
	alpha  *alpha.Provider
	mcp    http.Handler
	whois  whoIser
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured. mcpHandler may be nil,
// in which case /mcp is not mounted.
func New(lib *library.Library, alphaProvider *alpha.Provider, mcpHandler http.Handler, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		lib:    lib,
		alpha:  alphaProvider,
		mcp:    mcpHandler,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches request identity from the local dev user to the
// tailnet peer reported by wc. Call before serving.
func (s *Server) SetTailscale(wc whoIser) {
	s.whois = wc
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Use(s.identify)

		r.Get("/me", s.handleMe)

		r.Get("/routines", s.handleListRoutines)
		r.Post("/routines", s.handleCreateRoutine)
		r.Route("/routines/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetRoutine)
			r.Patch("/", s.handleRenameRoutine)
			r.Delete("/", s.handleDeleteRoutine)
			r.Get("/render", s.handleRenderRoutine)
			r.Post("/clear", s.handleClearRoutine)

			r.Post("/workouts", s.handleAddWorkout)
			r.Post("/workouts/reorder", s.handleReorderWorkouts)
			r.Patch("/workouts/{w}", s.handleRenameWorkout)
			r.Delete("/workouts/{w}", s.handleRemoveWorkout)
			r.Post("/deleted-workouts/{d}/restore", s.handleRestoreWorkout)

			r.Post("/workouts/{w}/exercises", s.handleAddExercise)
			r.Patch("/workouts/{w}/exercises/{e}", s.handleEditExercise)
			r.Delete("/workouts/{w}/exercises/{e}", s.handleRemoveExercise)
			r.Put("/workouts/{w}/exercises/{e}/sets/{s}", s.handleUpdateReps)
			r.Post("/workouts/{w}/deleted-exercises/{d}/restore", s.handleRestoreExercise)

			r.Post("/import/alpha", s.handleAlphaImport)
			r.Get("/export.xlsx", s.handleExportXLSX)
		})
	})

	if s.mcp != nil {
		s.router.With(APIKeyAuth(s.apiKey)).Handle("/mcp", s.mcp)
	}
}
