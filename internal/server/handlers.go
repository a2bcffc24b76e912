package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/claude/fitlog/internal/library"
	"github.com/claude/fitlog/internal/models"
	"github.com/claude/fitlog/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxJSONBody = 1 << 20

type nameRequest struct {
	Name string `json:"name"`
}

type reorderRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

type repsRequest struct {
	Reps *int `json:"reps"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleListRoutines(w http.ResponseWriter, r *http.Request) {
	list, err := s.lib.ListRoutines(r.Context())
	if err != nil {
		s.writeError(w, err, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []storage.RoutineSummary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateRoutine(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	view, err := s.lib.CreateRoutine(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleGetRoutine(w http.ResponseWriter, r *http.Request) {
	id, ok := routineID(w, r)
	if !ok {
		return
	}
	view, err := s.lib.View(r.Context(), id)
	s.respond(w, http.StatusOK, view, err)
}

func (s *Server) handleRenderRoutine(w http.ResponseWriter, r *http.Request) {
	id, ok := routineID(w, r)
	if !ok {
		return
	}
	text, err := s.lib.Render(r.Context(), id)
	if err != nil {
		s.writeError(w, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(text))
}

func (s *Server) handleRenameRoutine(w http.ResponseWriter, r *http.Request) {
	id, ok := routineID(w, r)
	if !ok {
		return
	}
	var req nameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	view, err := s.lib.RenameRoutine(r.Context(), id, req.Name)
	s.respond(w, http.StatusOK, view, err)
}

func (s *Server) handleDeleteRoutine(w http.ResponseWriter, r *http.Request) {
	id, ok := routineID(w, r)
	if !ok {
		return
	}
	if err := s.lib.DeleteRoutine(r.Context(), id); err != nil {
		s.writeError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearRoutine(w http.ResponseWriter, r *http.Request) {
	id, ok := routineID(w, r)
	if !ok {
		return
	}
	view, err := s.lib.ClearRoutine(r.Context(), id)
	s.respond(w, http.StatusOK, view, err)
}

func (s *Server) handleAddWorkout(w http.ResponseWriter, r *http.Request) {
	id, ok := routineID(w, r)
	if !ok {
		return
	}
	var req nameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	view, err := s.lib.AddWorkout(r.Context(), id, req.Name)
	s.respond(w, http.StatusCreated, view, err)
}

func (s *Server) handleRenameWorkout(w http.ResponseWriter, r *http.Request) {
	id, idx, ok := routinePath(w, r, "w")
	if !ok {
		return
	}
	var req nameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	view, err := s.lib.RenameWorkout(r.Context(), id, idx[0], req.Name)
	s.respond(w, http.StatusOK, view, err)
}

func (s *Server) handleRemoveWorkout(w http.ResponseWriter, r *http.Request) {
	id, idx, ok := routinePath(w, r, "w")
	if !ok {
		return
	}
	view, err := s.lib.RemoveWorkout(r.Context(), id, idx[0])
	s.respond(w, http.StatusOK, view, err)
}

func (s *Server) handleRestoreWorkout(w http.ResponseWriter, r *http.Request) {
	id, idx, ok := routinePath(w, r, "d")
	if !ok {
		return
	}
	view, err := s.lib.RestoreWorkout(r.Context(), id, idx[0])
	s.respond(w, http.StatusOK, view, err)
}

func (s *Server) handleReorderWorkouts(w http.ResponseWriter, r *http.Request) {
	id, ok := routineID(w, r)
	if !ok {
		return
	}
	var req reorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.From == nil || req.To == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "from and to are required"})
		return
	}
	view, err := s.lib.ReorderWorkouts(r.Context(), id, *req.From, *req.To)
	s.respond(w, http.StatusOK, view, err)
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	id, idx, ok := routinePath(w, r, "w")
	if !ok {
		return
	}
	var in library.ExerciseInput
	if !decodeJSON(w, r, &in) {
		return
	}
	view, err := s.lib.AddExercise(r.Context(), id, idx[0], in)
	s.respond(w, http.StatusCreated, view, err)
}

func (s *Server) handleEditExercise(w http.ResponseWriter, r *http.Request) {
	id, idx, ok := routinePath(w, r, "w", "e")
	if !ok {
		return
	}
	var patch library.ExercisePatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	view, err := s.lib.EditExercise(r.Context(), id, idx[0], idx[1], patch)
	s.respond(w, http.StatusOK, view, err)
}

func (s *Server) handleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	id, idx, ok := routinePath(w, r, "w", "e")
	if !ok {
		return
	}
	view, err := s.lib.RemoveExercise(r.Context(), id, idx[0], idx[1])
	s.respond(w, http.StatusOK, view, err)
}

func (s *Server) handleUpdateReps(w http.ResponseWriter, r *http.Request) {
	id, idx, ok := routinePath(w, r, "w", "e", "s")
	if !ok {
		return
	}
	var req repsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Reps == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reps is required"})
		return
	}
	view, err := s.lib.UpdateReps(r.Context(), id, idx[0], idx[1], idx[2], *req.Reps)
	s.respond(w, http.StatusOK, view, err)
}

func (s *Server) handleRestoreExercise(w http.ResponseWriter, r *http.Request) {
	id, idx, ok := routinePath(w, r, "w", "d")
	if !ok {
		return
	}
	view, err := s.lib.RestoreExercise(r.Context(), id, idx[0], idx[1])
	s.respond(w, http.StatusOK, view, err)
}

// respond writes view with status, or the error response for err.
func (s *Server) respond(w http.ResponseWriter, status int, view library.RoutineView, err error) {
	if err != nil {
		s.writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, status, view)
}

// writeError maps domain errors to 400, 404 and 409. Anything else gets
// fallback and is logged when it is a server error.
func (s *Server) writeError(w http.ResponseWriter, err error, fallback int) {
	status := fallback
	switch {
	case errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrIllegalState), errors.Is(err, models.ErrUnsupportedOperation):
		status = http.StatusConflict
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func routineID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid routine id"})
		return uuid.Nil, false
	}
	return id, true
}

// routinePath parses the routine id and the named integer path parameters.
func routinePath(w http.ResponseWriter, r *http.Request, params ...string) (uuid.UUID, []int, bool) {
	id, ok := routineID(w, r)
	if !ok {
		return uuid.Nil, nil, false
	}
	idx := make([]int, len(params))
	for i, p := range params {
		n, err := strconv.Atoi(chi.URLParam(r, p))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid %s index", p)})
			return uuid.Nil, nil, false
		}
		idx[i] = n
	}
	return id, idx, true
}
