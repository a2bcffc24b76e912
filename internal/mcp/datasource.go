package mcp

import (
	"context"

	"github.com/claude/fitlog/internal/library"
	"github.com/claude/fitlog/internal/storage"
	"github.com/google/uuid"
)

// DataSource abstracts the routine service for MCP tools. Both
// *library.Library (local) and HTTPClient (remote via REST API) satisfy
// this interface.
type DataSource interface {
	ListRoutines(ctx context.Context) ([]storage.RoutineSummary, error)
	Render(ctx context.Context, id uuid.UUID) (string, error)
	AddExercise(ctx context.Context, id uuid.UUID, wi int, in library.ExerciseInput) (library.RoutineView, error)
	RemoveExercise(ctx context.Context, id uuid.UUID, wi, ei int) (library.RoutineView, error)
	RestoreExercise(ctx context.Context, id uuid.UUID, wi, di int) (library.RoutineView, error)
	UpdateReps(ctx context.Context, id uuid.UUID, wi, ei, si, reps int) (library.RoutineView, error)
	ReorderWorkouts(ctx context.Context, id uuid.UUID, from, to int) (library.RoutineView, error)
}

// Compile-time check: *library.Library satisfies DataSource.
var _ DataSource = (*library.Library)(nil)
