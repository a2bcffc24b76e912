package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/claude/fitlog/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRoutine(t *testing.T) *models.Routine {
	t.Helper()
	r, err := models.NewRoutine("Upper/Lower")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"Upper", "Lower"} {
		w, err := models.NewWorkout(name)
		if err != nil {
			t.Fatal(err)
		}
		for i, ex := range []string{name + " A", name + " B"} {
			var reps []models.SetReps
			for n, count := range []int{10, 9, 8} {
				sr, err := models.NewSetReps(n+1, count)
				if err != nil {
					t.Fatal(err)
				}
				reps = append(reps, sr)
			}
			e, err := models.NewExercise(ex, 3, reps, 10, 60+float64(i)*2.5, models.ModeBarbell)
			if err != nil {
				t.Fatal(err)
			}
			if err := w.AddExercise(e); err != nil {
				t.Fatal(err)
			}
		}
		if err := r.AddWorkout(w); err != nil {
			t.Fatal(err)
		}
	}
	return r
}

// TestSQLiteSaveLoad verifies a routine round-trips including soft-deleted items.
func TestSQLiteSaveLoad(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)
	r := sampleRoutine(t)
	err := r.UpdateWorkout(0, func(w *models.Workout) error {
		return w.RemoveExercise(w.Exercises()[1])
	})
	if err != nil {
		t.Fatal(err)
	}

	id := uuid.New()
	if err := s.SaveRoutine(ctx, id, r); err != nil {
		t.Fatalf("SaveRoutine: %v", err)
	}
	got, err := s.LoadRoutine(ctx, id)
	if err != nil {
		t.Fatalf("LoadRoutine: %v", err)
	}
	if diff := cmp.Diff(r.Render(), got.Render()); diff != "" {
		t.Errorf("render (-want +got):\n%s", diff)
	}
	if n := len(got.Workouts()[0].DeletedExercises()); n != 1 {
		t.Errorf("deleted exercises = %d, want 1", n)
	}
}

// TestSQLiteSaveReplaces verifies a second save replaces all child rows.
func TestSQLiteSaveReplaces(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)
	r := sampleRoutine(t)
	id := uuid.New()
	if err := s.SaveRoutine(ctx, id, r); err != nil {
		t.Fatal(err)
	}

	if err := r.Reorder(0, 1); err != nil {
		t.Fatal(err)
	}
	if err := r.SetName("Renamed"); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveRoutine(ctx, id, r); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadRoutine(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(r) {
		t.Errorf("loaded routine differs:\n%s", got.Render())
	}
	if !strings.HasPrefix(got.Render(), "Routine \"Renamed\":\n1. Lower:") {
		t.Errorf("Render() = %q", got.Render())
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM set_reps`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 12 {
		t.Errorf("set_reps rows = %d, want 12", count)
	}
}

// TestSQLiteListAndDelete verifies summaries count active workouts and delete reports missing IDs.
func TestSQLiteListAndDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)

	r := sampleRoutine(t)
	if err := r.RemoveWorkout(r.Workouts()[1]); err != nil {
		t.Fatal(err)
	}
	id := uuid.New()
	if err := s.SaveRoutine(ctx, id, r); err != nil {
		t.Fatal(err)
	}

	list, err := s.ListRoutines(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("ListRoutines() len = %d, want 1", len(list))
	}
	if list[0].ID != id || list[0].Name != "Upper/Lower" || list[0].Workouts != 1 {
		t.Errorf("summary = %+v", list[0])
	}
	if list[0].UpdatedAt.IsZero() {
		t.Error("UpdatedAt is zero")
	}

	if err := s.DeleteRoutine(ctx, id); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadRoutine(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadRoutine after delete err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteRoutine(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteRoutine err = %v, want ErrNotFound", err)
	}
}

// TestSQLiteTimeSortsAsText verifies stored timestamps order correctly as
// strings and parse back to the same instant.
func TestSQLiteTimeSortsAsText(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	times := []time.Time{
		base,
		base.Add(100 * time.Millisecond),
		base.Add(120 * time.Millisecond),
		base.Add(time.Second),
	}
	for i := 1; i < len(times); i++ {
		a, b := formatSQLiteTime(times[i-1]), formatSQLiteTime(times[i])
		if a >= b {
			t.Errorf("%q sorts after %q", a, b)
		}
	}
	got, err := parseSQLiteTime(formatSQLiteTime(times[2]))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(times[2]) {
		t.Errorf("parsed %v, want %v", got, times[2])
	}
}

// TestInsertStmt verifies placeholder numbering across rows.
func TestInsertStmt(t *testing.T) {
	got := insertStmt("t", []string{"a", "b"}, 2, pgBind)
	want := "INSERT INTO t (a, b) VALUES ($1,$2),($3,$4)"
	if got != want {
		t.Errorf("insertStmt() = %q, want %q", got, want)
	}
	if got := insertStmt("t", []string{"a"}, 2, sqliteBind); got != "INSERT INTO t (a) VALUES (?),(?)" {
		t.Errorf("insertStmt() = %q", got)
	}
}

// TestInsertChunks verifies large inserts are split below the bind argument limit.
func TestInsertChunks(t *testing.T) {
	const rows = 20000
	args := make([]any, rows*len(setRepsCols))
	var sizes []int
	var last string
	err := insertChunks("set_reps", setRepsCols, args, pgBind, func(query string, args []any) error {
		sizes = append(sizes, len(args))
		last = query
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{32000, 32000, 16000}, sizes); diff != "" {
		t.Errorf("chunk sizes (-want +got):\n%s", diff)
	}
	if !strings.HasSuffix(last, "($15997,$15998,$15999,$16000)") {
		t.Errorf("last statement ends with %q", last[len(last)-40:])
	}

	calls := 0
	if err := insertChunks("workouts", workoutCols, nil, pgBind, func(string, []any) error { calls++; return nil }); err != nil || calls != 0 {
		t.Errorf("empty insert: calls = %d, err = %v", calls, err)
	}
}

// TestSQLiteSaveLargeRoutine verifies a routine with more set rows than one
// INSERT can bind round-trips.
func TestSQLiteSaveLargeRoutine(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)
	r, err := models.NewRoutine("Volume")
	if err != nil {
		t.Fatal(err)
	}
	w, err := models.NewWorkout("Everything")
	if err != nil {
		t.Fatal(err)
	}
	for i := range 90 {
		e, err := models.NewExercise(fmt.Sprintf("Lift %d", i), 100, nil, 10, 20, models.ModeMachine)
		if err != nil {
			t.Fatal(err)
		}
		if err := w.AddExercise(e); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.AddWorkout(w); err != nil {
		t.Fatal(err)
	}

	id := uuid.New()
	if err := s.SaveRoutine(ctx, id, r); err != nil {
		t.Fatalf("SaveRoutine: %v", err)
	}
	got, err := s.LoadRoutine(ctx, id)
	if err != nil {
		t.Fatalf("LoadRoutine: %v", err)
	}
	if !got.Equal(r) {
		t.Error("loaded routine differs")
	}
}
