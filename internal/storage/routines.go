package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/claude/fitlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func pgBind(i int) string { return "$" + strconv.Itoa(i) }

// SaveRoutine replaces the stored state of routine id with r in one transaction.
func (db *DB) SaveRoutine(ctx context.Context, id uuid.UUID, r *models.Routine) error {
	rows := models.FlattenRoutine(id, r, time.Now().UTC())

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO routines (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, updated_at = EXCLUDED.updated_at`,
		rows.Routine.ID, rows.Routine.Name, rows.Routine.CreatedAt, rows.Routine.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting routine: %w", err)
	}
	// Children cascade from workouts.
	if _, err := tx.Exec(ctx, `DELETE FROM workouts WHERE routine_id = $1`, id); err != nil {
		return fmt.Errorf("clearing workouts: %w", err)
	}

	for _, in := range childInserts(rows) {
		err := insertChunks(in.table, in.cols, in.args, pgBind, func(query string, args []any) error {
			_, err := tx.Exec(ctx, query, args...)
			return err
		})
		if err != nil {
			return fmt.Errorf("inserting %s: %w", in.what, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing routine: %w", err)
	}
	return nil
}

// LoadRoutine reads routine id and rebuilds the aggregate.
func (db *DB) LoadRoutine(ctx context.Context, id uuid.UUID) (*models.Routine, error) {
	var rows models.RoutineRows
	err := db.Pool.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM routines WHERE id = $1`, id).
		Scan(&rows.Routine.ID, &rows.Routine.Name, &rows.Routine.CreatedAt, &rows.Routine.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying routine: %w", err)
	}

	wrows, err := db.Pool.Query(ctx,
		`SELECT id, routine_id, position, deleted, name FROM workouts WHERE routine_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	rows.Workouts, err = pgx.CollectRows(wrows, func(row pgx.CollectableRow) (models.WorkoutRow, error) {
		var w models.WorkoutRow
		err := row.Scan(&w.ID, &w.RoutineID, &w.Position, &w.Deleted, &w.Name)
		return w, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning workouts: %w", err)
	}

	erows, err := db.Pool.Query(ctx,
		`SELECT e.id, e.workout_id, e.position, e.deleted, e.name, e.sets, e.target_reps, e.weight, e.mode
		 FROM exercises e JOIN workouts w ON w.id = e.workout_id
		 WHERE w.routine_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	rows.Exercises, err = pgx.CollectRows(erows, func(row pgx.CollectableRow) (models.ExerciseRow, error) {
		var e models.ExerciseRow
		err := row.Scan(&e.ID, &e.WorkoutID, &e.Position, &e.Deleted, &e.Name, &e.Sets, &e.TargetReps, &e.Weight, &e.Mode)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning exercises: %w", err)
	}

	srows, err := db.Pool.Query(ctx,
		`SELECT s.exercise_id, s.position, s.set_number, s.reps
		 FROM set_reps s
		 JOIN exercises e ON e.id = s.exercise_id
		 JOIN workouts w ON w.id = e.workout_id
		 WHERE w.routine_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("querying set reps: %w", err)
	}
	rows.SetReps, err = pgx.CollectRows(srows, func(row pgx.CollectableRow) (models.SetRepsRow, error) {
		var s models.SetRepsRow
		err := row.Scan(&s.ExerciseID, &s.Position, &s.SetNumber, &s.Reps)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning set reps: %w", err)
	}

	r, err := models.AssembleRoutine(rows)
	if err != nil {
		return nil, fmt.Errorf("assembling routine %s: %w", id, err)
	}
	return r, nil
}

// ListRoutines returns every stored routine with its active workout count, oldest first.
func (db *DB) ListRoutines(ctx context.Context) ([]RoutineSummary, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT r.id, r.name, r.updated_at, COUNT(w.id)
		 FROM routines r
		 LEFT JOIN workouts w ON w.routine_id = r.id AND NOT w.deleted
		 GROUP BY r.id, r.name, r.created_at, r.updated_at
		 ORDER BY r.created_at, r.name`)
	if err != nil {
		return nil, fmt.Errorf("listing routines: %w", err)
	}
	defer rows.Close()

	var result []RoutineSummary
	for rows.Next() {
		var s RoutineSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.UpdatedAt, &s.Workouts); err != nil {
			return nil, fmt.Errorf("scanning routine summary: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// DeleteRoutine removes routine id and all of its rows.
func (db *DB) DeleteRoutine(ctx context.Context, id uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM routines WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting routine: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
