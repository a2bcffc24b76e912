package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/claude/fitlog/internal/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a routine ID has no stored row.
var ErrNotFound = errors.New("routine not found")

// RoutineSummary is one entry of ListRoutines.
type RoutineSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Workouts  int       `json:"workouts"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	workoutCols  = []string{"id", "routine_id", "position", "deleted", "name"}
	exerciseCols = []string{"id", "workout_id", "position", "deleted", "name", "sets", "target_reps", "weight", "mode"}
	setRepsCols  = []string{"exercise_id", "position", "set_number", "reps"}
)

// insertStmt builds a multi-row INSERT for n rows. bind returns the
// placeholder for the 1-based argument index.
func insertStmt(table string, cols []string, n int, bind func(int) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", table, strings.Join(cols, ", "))
	arg := 1
	for i := range n {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(")
		for j := range cols {
			if j > 0 {
				b.WriteString(",")
			}
			b.WriteString(bind(arg))
			arg++
		}
		b.WriteString(")")
	}
	return b.String()
}

// maxInsertArgs caps the bind arguments of one INSERT below both the SQLite
// (32766) and Postgres (65535) limits.
const maxInsertArgs = 32000

// insertChunks splits args, a flat list of len(cols)-sized rows, into
// INSERTs of at most maxInsertArgs arguments and runs each through exec.
func insertChunks(table string, cols []string, args []any, bind func(int) string, exec func(query string, args []any) error) error {
	per := maxInsertArgs / len(cols) * len(cols)
	for start := 0; start < len(args); start += per {
		end := min(start+per, len(args))
		if err := exec(insertStmt(table, cols, (end-start)/len(cols), bind), args[start:end]); err != nil {
			return err
		}
	}
	return nil
}

type tableInsert struct {
	what, table string
	cols        []string
	args        []any
}

// childInserts lists the child tables of rows in foreign key order.
func childInserts(rows models.RoutineRows) []tableInsert {
	return []tableInsert{
		{"workouts", "workouts", workoutCols, workoutArgs(rows.Workouts)},
		{"exercises", "exercises", exerciseCols, exerciseArgs(rows.Exercises)},
		{"set reps", "set_reps", setRepsCols, setRepsArgs(rows.SetReps)},
	}
}

func workoutArgs(rows []models.WorkoutRow) []any {
	args := make([]any, 0, len(rows)*len(workoutCols))
	for _, r := range rows {
		args = append(args, r.ID, r.RoutineID, r.Position, r.Deleted, r.Name)
	}
	return args
}

func exerciseArgs(rows []models.ExerciseRow) []any {
	args := make([]any, 0, len(rows)*len(exerciseCols))
	for _, r := range rows {
		args = append(args, r.ID, r.WorkoutID, r.Position, r.Deleted, r.Name, r.Sets, r.TargetReps, r.Weight, r.Mode)
	}
	return args
}

func setRepsArgs(rows []models.SetRepsRow) []any {
	args := make([]any, 0, len(rows)*len(setRepsCols))
	for _, r := range rows {
		args = append(args, r.ExerciseID, r.Position, r.SetNumber, r.Reps)
	}
	return args
}
