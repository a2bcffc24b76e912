package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/fitlog/internal/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// sqliteTime keeps the fraction at a fixed width so stored timestamps sort
// in time order as text.
const sqliteTime = "2006-01-02T15:04:05.000000000Z07:00"

func formatSQLiteTime(t time.Time) string { return t.UTC().Format(sqliteTime) }

func parseSQLiteTime(s string) (time.Time, error) { return time.Parse(sqliteTime, s) }

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS routines (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS workouts (
	id          TEXT PRIMARY KEY,
	routine_id  TEXT NOT NULL REFERENCES routines(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	deleted     INTEGER NOT NULL DEFAULT 0,
	name        TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS exercises (
	id           TEXT PRIMARY KEY,
	workout_id   TEXT NOT NULL REFERENCES workouts(id) ON DELETE CASCADE,
	position     INTEGER NOT NULL,
	deleted      INTEGER NOT NULL DEFAULT 0,
	name         TEXT NOT NULL,
	sets         INTEGER NOT NULL,
	target_reps  INTEGER NOT NULL,
	weight       REAL NOT NULL,
	mode         TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS set_reps (
	exercise_id  TEXT NOT NULL REFERENCES exercises(id) ON DELETE CASCADE,
	position     INTEGER NOT NULL,
	set_number   INTEGER NOT NULL,
	reps         INTEGER NOT NULL,
	PRIMARY KEY (exercise_id, position)
);
CREATE INDEX IF NOT EXISTS idx_workouts_routine ON workouts (routine_id);
CREATE INDEX IF NOT EXISTS idx_exercises_workout ON exercises (workout_id);
`

// SQLite is a single-file routine store for local and single-user setups.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at dir/fitlog.db.
func OpenSQLite(dir string) (*SQLite, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating sqlite dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "fitlog.db")
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func sqliteBind(int) string { return "?" }

// SaveRoutine replaces the stored state of routine id with r in one transaction.
func (s *SQLite) SaveRoutine(ctx context.Context, id uuid.UUID, r *models.Routine) error {
	rows := models.FlattenRoutine(id, r, time.Now().UTC())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := formatSQLiteTime(rows.Routine.UpdatedAt)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO routines (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name, updated_at = excluded.updated_at`,
		id.String(), rows.Routine.Name, now, now)
	if err != nil {
		return fmt.Errorf("upserting routine: %w", err)
	}
	if err := s.deleteChildren(ctx, tx, id); err != nil {
		return err
	}

	for _, in := range childInserts(rows) {
		err := insertChunks(in.table, in.cols, in.args, sqliteBind, func(query string, args []any) error {
			_, err := tx.ExecContext(ctx, query, args...)
			return err
		})
		if err != nil {
			return fmt.Errorf("inserting %s: %w", in.what, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing routine: %w", err)
	}
	return nil
}

// deleteChildren removes every row below routine id, innermost first.
func (s *SQLite) deleteChildren(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	stmts := []struct{ what, query string }{
		{"set reps", `DELETE FROM set_reps WHERE exercise_id IN (
			SELECT e.id FROM exercises e JOIN workouts w ON w.id = e.workout_id WHERE w.routine_id = ?)`},
		{"exercises", `DELETE FROM exercises WHERE workout_id IN (SELECT id FROM workouts WHERE routine_id = ?)`},
		{"workouts", `DELETE FROM workouts WHERE routine_id = ?`},
	}
	for _, st := range stmts {
		if _, err := tx.ExecContext(ctx, st.query, id.String()); err != nil {
			return fmt.Errorf("clearing %s: %w", st.what, err)
		}
	}
	return nil
}

// LoadRoutine reads routine id and rebuilds the aggregate.
func (s *SQLite) LoadRoutine(ctx context.Context, id uuid.UUID) (*models.Routine, error) {
	var rows models.RoutineRows
	var created, updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM routines WHERE id = ?`, id.String()).
		Scan(&rows.Routine.ID, &rows.Routine.Name, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying routine: %w", err)
	}
	if rows.Routine.CreatedAt, err = parseSQLiteTime(created); err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", created, err)
	}
	if rows.Routine.UpdatedAt, err = parseSQLiteTime(updated); err != nil {
		return nil, fmt.Errorf("parsing updated_at %q: %w", updated, err)
	}

	wrows, err := s.db.QueryContext(ctx,
		`SELECT id, routine_id, position, deleted, name FROM workouts WHERE routine_id = ?`, id.String())
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	rows.Workouts, err = collect(wrows, func(sc scanner) (models.WorkoutRow, error) {
		var w models.WorkoutRow
		err := sc.Scan(&w.ID, &w.RoutineID, &w.Position, &w.Deleted, &w.Name)
		return w, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning workouts: %w", err)
	}

	erows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.workout_id, e.position, e.deleted, e.name, e.sets, e.target_reps, e.weight, e.mode
		 FROM exercises e JOIN workouts w ON w.id = e.workout_id
		 WHERE w.routine_id = ?`, id.String())
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	rows.Exercises, err = collect(erows, func(sc scanner) (models.ExerciseRow, error) {
		var e models.ExerciseRow
		err := sc.Scan(&e.ID, &e.WorkoutID, &e.Position, &e.Deleted, &e.Name, &e.Sets, &e.TargetReps, &e.Weight, &e.Mode)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning exercises: %w", err)
	}

	srows, err := s.db.QueryContext(ctx,
		`SELECT s.exercise_id, s.position, s.set_number, s.reps
		 FROM set_reps s
		 JOIN exercises e ON e.id = s.exercise_id
		 JOIN workouts w ON w.id = e.workout_id
		 WHERE w.routine_id = ?`, id.String())
	if err != nil {
		return nil, fmt.Errorf("querying set reps: %w", err)
	}
	rows.SetReps, err = collect(srows, func(sc scanner) (models.SetRepsRow, error) {
		var sr models.SetRepsRow
		err := sc.Scan(&sr.ExerciseID, &sr.Position, &sr.SetNumber, &sr.Reps)
		return sr, err
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
func (s *SQLite) ListRoutines(ctx context.Context) ([]RoutineSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.name, r.updated_at, COUNT(w.id)
		 FROM routines r
		 LEFT JOIN workouts w ON w.routine_id = r.id AND w.deleted = 0
		 GROUP BY r.id, r.name, r.created_at, r.updated_at
		 ORDER BY r.created_at, r.name`)
	if err != nil {
		return nil, fmt.Errorf("listing routines: %w", err)
	}
	return collect(rows, func(sc scanner) (RoutineSummary, error) {
		var rs RoutineSummary
		var updated string
		if err := sc.Scan(&rs.ID, &rs.Name, &updated, &rs.Workouts); err != nil {
			return rs, fmt.Errorf("scanning routine summary: %w", err)
		}
		t, err := parseSQLiteTime(updated)
		if err != nil {
			return rs, fmt.Errorf("parsing updated_at %q: %w", updated, err)
		}
		rs.UpdatedAt = t
		return rs, nil
	})
}

// DeleteRoutine removes routine id and all of its rows.
func (s *SQLite) DeleteRoutine(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.deleteChildren(ctx, tx, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM routines WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("deleting routine: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("deleting routine: %w", err)
	} else if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

// collect drains rows through fn and closes them.
func collect[T any](rows *sql.Rows, fn func(scanner) (T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := fn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
