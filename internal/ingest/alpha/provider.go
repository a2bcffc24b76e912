package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/claude/fitlog/internal/ingest"
	"github.com/claude/fitlog/internal/library"
	"github.com/claude/fitlog/internal/models"
	"github.com/google/uuid"
)

// Importer adds workouts to a routine. *library.Library satisfies it.
type Importer interface {
	ImportWorkouts(ctx context.Context, id uuid.UUID, workouts []*models.Workout) (library.ImportResult, error)
}

// Provider processes Alpha Progression CSV exports.
type Provider struct {
	lib Importer
	log *slog.Logger
}

// NewProvider creates a new Alpha Progression ingest provider.
func NewProvider(lib Importer, log *slog.Logger) *Provider {
	return &Provider{lib: lib, log: log}
}

// Ingest parses a CSV export and adds one workout per session to routine id.
// Sessions already present in the routine are skipped, so re-importing the
// same export is a no-op.
func (p *Provider) Ingest(ctx context.Context, id uuid.UUID, r io.Reader) (*ingest.Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}
	workouts, err := Workouts(sessions)
	if err != nil {
		return nil, fmt.Errorf("converting sessions: %w", err)
	}

	result := &ingest.Result{SessionsReceived: len(sessions)}
	if len(workouts) == 0 {
		result.Message = "no sessions with working sets"
		return result, nil
	}

	res, err := p.lib.ImportWorkouts(ctx, id, workouts)
	if err != nil {
		return nil, fmt.Errorf("importing workouts: %w", err)
	}
	result.WorkoutsAdded = res.Added
	result.WorkoutsSkipped = res.Skipped + len(sessions) - len(workouts)
	result.ExercisesAdded = res.ExercisesAdded

	p.log.Info("alpha import complete", "routine_id", id,
		"sessions", result.SessionsReceived, "added", result.WorkoutsAdded, "skipped", result.WorkoutsSkipped)
	return result, nil
}
