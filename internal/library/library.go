package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/claude/fitlog/internal/models"
	"github.com/claude/fitlog/internal/storage"
	"github.com/google/uuid"
)

// Repository persists routines. Both storage backends satisfy it.
type Repository interface {
	SaveRoutine(ctx context.Context, id uuid.UUID, r *models.Routine) error
	LoadRoutine(ctx context.Context, id uuid.UUID) (*models.Routine, error)
	ListRoutines(ctx context.Context) ([]storage.RoutineSummary, error)
	DeleteRoutine(ctx context.Context, id uuid.UUID) error
}

// Library serializes access to routines and writes every successful change
// through to the repository.
type Library struct {
	repo Repository
	log  *slog.Logger

	mu      sync.Mutex
	entries map[uuid.UUID]*entry
}

type entry struct {
	mu      sync.Mutex
	routine *models.Routine // nil until loaded, or after a failed save
}

// New creates a Library backed by repo.
func New(repo Repository, log *slog.Logger) *Library {
	return &Library{repo: repo, log: log, entries: make(map[uuid.UUID]*entry)}
}

func (l *Library) entry(id uuid.UUID) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[id]
	if !ok {
		e = &entry{}
		l.entries[id] = e
	}
	return e
}

func (l *Library) forget(id uuid.UUID) {
	l.mu.Lock()
	delete(l.entries, id)
	l.mu.Unlock()
}

// load returns the cached routine, reading it from the repository on a miss.
// The caller holds e.mu.
func (l *Library) load(ctx context.Context, id uuid.UUID, e *entry) (*models.Routine, error) {
	if e.routine != nil {
		return e.routine, nil
	}
	r, err := l.repo.LoadRoutine(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("routine %s: %w", id, err)
		}
		return nil, fmt.Errorf("loading routine %s: %w", id, err)
	}
	e.routine = r
	return r, nil
}

// read runs fn on routine id without saving.
func (l *Library) read(ctx context.Context, id uuid.UUID, fn func(*models.Routine) error) error {
	e := l.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := l.load(ctx, id, e)
	if err != nil {
		return err
	}
	return fn(r)
}

// mutate runs fn on routine id and saves the result. Nothing is written when
// fn or the save fails; the cached copy is then dropped so the next call
// reloads the stored state.
func (l *Library) mutate(ctx context.Context, id uuid.UUID, fn func(*models.Routine) error) (RoutineView, error) {
	e := l.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := l.load(ctx, id, e)
	if err != nil {
		return RoutineView{}, err
	}
	l.listen(id, r)
	defer l.mute(r)

	if err := fn(r); err != nil {
		e.routine = nil
		return RoutineView{}, err
	}
	if err := l.repo.SaveRoutine(ctx, id, r); err != nil {
		e.routine = nil
		l.log.Error("saving routine failed", "routine_id", id, "error", err)
		return RoutineView{}, fmt.Errorf("saving routine %s: %w", id, err)
	}
	return newRoutineView(id, r), nil
}

// listen attaches the event logger to r. Workout events arrive through
// Routine.UpdateWorkout.
func (l *Library) listen(id uuid.UUID, r *models.Routine) {
	r.OnChange(func(ev models.Event) {
		l.log.Info("routine changed", "routine_id", id, "event", ev.Kind, "detail", ev.String())
	})
}

func (l *Library) mute(r *models.Routine) { r.OnChange(nil) }

// CreateRoutine stores a new empty routine.
func (l *Library) CreateRoutine(ctx context.Context, name string) (RoutineView, error) {
	r, err := models.NewRoutine(name)
	if err != nil {
		return RoutineView{}, err
	}
	id := uuid.New()
	e := l.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := l.repo.SaveRoutine(ctx, id, r); err != nil {
		l.forget(id)
		return RoutineView{}, fmt.Errorf("saving routine %s: %w", id, err)
	}
	e.routine = r
	l.log.Info("routine created", "routine_id", id, "name", name)
	return newRoutineView(id, r), nil
}

// ListRoutines returns a summary of every stored routine.
func (l *Library) ListRoutines(ctx context.Context) ([]storage.RoutineSummary, error) {
	list, err := l.repo.ListRoutines(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing routines: %w", err)
	}
	return list, nil
}

// View returns a snapshot of routine id including both partition lists.
func (l *Library) View(ctx context.Context, id uuid.UUID) (RoutineView, error) {
	var v RoutineView
	err := l.read(ctx, id, func(r *models.Routine) error {
		v = newRoutineView(id, r)
		return nil
	})
	return v, err
}

// Render returns the canonical text of routine id.
func (l *Library) Render(ctx context.Context, id uuid.UUID) (string, error) {
	var s string
	err := l.read(ctx, id, func(r *models.Routine) error {
		s = r.Render()
		return nil
	})
	return s, err
}

// RenameRoutine changes the routine name.
func (l *Library) RenameRoutine(ctx context.Context, id uuid.UUID, name string) (RoutineView, error) {
	return l.mutate(ctx, id, func(r *models.Routine) error {
		return r.SetName(name)
	})
}

// ClearRoutine discards every active workout. Deleted workouts are kept.
func (l *Library) ClearRoutine(ctx context.Context, id uuid.UUID) (RoutineView, error) {
	return l.mutate(ctx, id, (*models.Routine).Clear)
}

// DeleteRoutine removes routine id from storage.
func (l *Library) DeleteRoutine(ctx context.Context, id uuid.UUID) error {
	e := l.entry(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := l.repo.DeleteRoutine(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			l.forget(id)
			return fmt.Errorf("routine %s: %w", id, err)
		}
		return fmt.Errorf("deleting routine %s: %w", id, err)
	}
	e.routine = nil
	l.forget(id)
	l.log.Info("routine deleted", "routine_id", id)
	return nil
}

// AddWorkout appends an empty workout named name.
func (l *Library) AddWorkout(ctx context.Context, id uuid.UUID, name string) (RoutineView, error) {
	w, err := models.NewWorkout(name)
	if err != nil {
		return RoutineView{}, err
	}
	return l.mutate(ctx, id, func(r *models.Routine) error {
		return r.AddWorkout(w)
	})
}

// RenameWorkout renames the active workout at index wi.
func (l *Library) RenameWorkout(ctx context.Context, id uuid.UUID, wi int, name string) (RoutineView, error) {
	return l.mutate(ctx, id, func(r *models.Routine) error {
		w, err := activeWorkout(r, wi)
		if err != nil {
			return err
		}
		return r.RenameWorkout(w, name)
	})
}

// RemoveWorkout soft-deletes the active workout at index wi.
func (l *Library) RemoveWorkout(ctx context.Context, id uuid.UUID, wi int) (RoutineView, error) {
	return l.mutate(ctx, id, func(r *models.Routine) error {
		w, err := activeWorkout(r, wi)
		if err != nil {
			return err
		}
		return r.RemoveWorkout(w)
	})
}

// RestoreWorkout restores the deleted workout at index di.
func (l *Library) RestoreWorkout(ctx context.Context, id uuid.UUID, di int) (RoutineView, error) {
	return l.mutate(ctx, id, func(r *models.Routine) error {
		w, err := pick("library.restore_workout", "deleted workout", r.DeletedWorkouts(), di)
		if err != nil {
			return err
		}
		return r.RestoreWorkout(w)
	})
}

// ReorderWorkouts moves the active workout at from to position to.
func (l *Library) ReorderWorkouts(ctx context.Context, id uuid.UUID, from, to int) (RoutineView, error) {
	return l.mutate(ctx, id, func(r *models.Routine) error {
		return r.Reorder(from, to)
	})
}

// AddExercise adds a new exercise to the active workout at index wi.
func (l *Library) AddExercise(ctx context.Context, id uuid.UUID, wi int, in ExerciseInput) (RoutineView, error) {
	e, err := in.build()
	if err != nil {
		return RoutineView{}, err
	}
	return l.mutate(ctx, id, func(r *models.Routine) error {
		return updateWorkout(r, wi, func(w *models.Workout) error {
			return w.AddExercise(e)
		})
	})
}

// EditExercise applies patch to the active exercise ei of workout wi.
func (l *Library) EditExercise(ctx context.Context, id uuid.UUID, wi, ei int, patch ExercisePatch) (RoutineView, error) {
	return l.mutate(ctx, id, func(r *models.Routine) error {
		return updateExercise(r, wi, ei, patch.apply)
	})
}

// UpdateReps records reps for the set at index si of exercise ei in workout wi.
func (l *Library) UpdateReps(ctx context.Context, id uuid.UUID, wi, ei, si, reps int) (RoutineView, error) {
	return l.mutate(ctx, id, func(r *models.Routine) error {
		return updateExercise(r, wi, ei, func(e *models.Exercise) error {
			return e.UpdateReps(si, reps)
		})
	})
}

// RemoveExercise soft-deletes the active exercise ei of workout wi.
func (l *Library) RemoveExercise(ctx context.Context, id uuid.UUID, wi, ei int) (RoutineView, error) {
	return l.mutate(ctx, id, func(r *models.Routine) error {
		return updateWorkout(r, wi, func(w *models.Workout) error {
			e, err := pick("library.exercise", "exercise", w.Exercises(), ei)
			if err != nil {
				return err
			}
			return w.RemoveExercise(e)
		})
	})
}

// RestoreExercise restores the deleted exercise di of workout wi.
func (l *Library) RestoreExercise(ctx context.Context, id uuid.UUID, wi, di int) (RoutineView, error) {
	return l.mutate(ctx, id, func(r *models.Routine) error {
		return updateWorkout(r, wi, func(w *models.Workout) error {
			e, err := pick("library.restore_exercise", "deleted exercise", w.DeletedExercises(), di)
			if err != nil {
				return err
			}
			return w.RestoreExercise(e)
		})
	})
}

// ImportResult counts the outcome of ImportWorkouts.
type ImportResult struct {
	Added          int
	Skipped        int
	ExercisesAdded int
}

// ImportWorkouts adds each workout to routine id. Workouts equal to an
// active one are skipped; workouts equal to a deleted one are restored.
// All changes are saved together.
func (l *Library) ImportWorkouts(ctx context.Context, id uuid.UUID, workouts []*models.Workout) (ImportResult, error) {
	var res ImportResult
	_, err := l.mutate(ctx, id, func(r *models.Routine) error {
		for _, w := range workouts {
			if slices.ContainsFunc(r.Workouts(), w.Equal) {
				res.Skipped++
				continue
			}
			if err := r.AddWorkout(w); err != nil {
				return err
			}
			res.Added++
			res.ExercisesAdded += w.Len()
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	return res, nil
}

func activeWorkout(r *models.Routine, wi int) (*models.Workout, error) {
	return pick("library.workout", "workout", r.Workouts(), wi)
}

// updateWorkout runs fn on the active workout at index wi.
func updateWorkout(r *models.Routine, wi int, fn func(*models.Workout) error) error {
	if err := checkIndex("library.workout", "workout", wi, r.Len()); err != nil {
		return err
	}
	return r.UpdateWorkout(wi, fn)
}

// updateExercise runs fn on a copy of the active exercise ei of workout wi
// and swaps the copy in.
func updateExercise(r *models.Routine, wi, ei int, fn func(*models.Exercise) error) error {
	return updateWorkout(r, wi, func(w *models.Workout) error {
		cur, err := pick("library.exercise", "exercise", w.Exercises(), ei)
		if err != nil {
			return err
		}
		next := cur.Clone()
		if err := fn(next); err != nil {
			return err
		}
		return w.EditExercise(cur, next)
	})
}

func pick[T any](op, what string, list []T, i int) (T, error) {
	if err := checkIndex(op, what, i, len(list)); err != nil {
		var zero T
		return zero, err
	}
	return list[i], nil
}

func checkIndex(op, what string, i, n int) error {
	if i < 0 || i >= n {
		return &models.OpError{
			Op:   op,
			Kind: models.KindInvalidArgument,
			Msg:  fmt.Sprintf("%s index %d out of range (have %d)", what, i, n),
		}
	}
	return nil
}
