package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/claude/fitlog/internal/library"
	"github.com/claude/fitlog/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
)

func newTestHandlers(t *testing.T) (*handlers, string) {
	t.Helper()
	db, err := storage.OpenSQLite(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	lib := library.New(db, log)

	ctx := context.Background()
	v, err := lib.CreateRoutine(ctx, "Split")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"Push", "Pull"} {
		if _, err := lib.AddWorkout(ctx, v.ID, name); err != nil {
			t.Fatal(err)
		}
	}
	in := library.ExerciseInput{Name: "Bench Press", Sets: 3, TargetReps: 10, Weight: 65, Mode: "DUMBBELL"}
	if _, err := lib.AddExercise(ctx, v.ID, 0, in); err != nil {
		t.Fatal(err)
	}
	return &handlers{ds: lib, log: log}, v.ID.String()
}

func call(t *testing.T, fn func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := fn(context.Background(), req)
	if err != nil {
		t.Fatalf("handler returned transport error: %v", err)
	}
	if len(res.Content) == 0 {
		t.Fatal("empty result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T, want TextContent", res.Content[0])
	}
	return text.Text, res.IsError
}

// TestRenderRoutineTool verifies render_routine returns the canonical text.
func TestRenderRoutineTool(t *testing.T) {
	h, id := newTestHandlers(t)
	got, isErr := call(t, h.renderRoutine, map[string]any{"routine_id": id})
	if isErr {
		t.Fatalf("error result: %s", got)
	}
	want := "Routine \"Split\":\n" +
		"1. Push:\n1. Bench Press 3x10@65.00 (Reps per set: [])\n\n" +
		"2. Pull:\nNo exercises in this workout.\n\n"
	if got != want {
		t.Errorf("render =\n%s\nwant\n%s", got, want)
	}
}

// TestAddExerciseTool verifies add_exercise with reps returns the updated workout.
func TestAddExerciseTool(t *testing.T) {
	h, id := newTestHandlers(t)
	got, isErr := call(t, h.addExercise, map[string]any{
		"routine_id":  id,
		"workout":     float64(1),
		"name":        "Row",
		"sets":        float64(2),
		"target_reps": float64(12),
		"weight":      52.5,
		"mode":        "CABLE",
		"reps":        []any{float64(12), float64(11)},
	})
	if isErr {
		t.Fatalf("error result: %s", got)
	}
	var w library.WorkoutView
	if err := json.Unmarshal([]byte(got), &w); err != nil {
		t.Fatal(err)
	}
	if w.Name != "Pull" || len(w.Exercises) != 1 {
		t.Fatalf("workout = %+v", w)
	}
	if text := w.Exercises[0].Text; text != "Row 2x12@52.50 (Reps per set: [Set 1: 12, Set 2: 11])" {
		t.Errorf("exercise = %q", text)
	}
}

// TestToolErrorsAreResults verifies rejected operations come back as tool
// errors rather than transport errors.
func TestToolErrorsAreResults(t *testing.T) {
	h, id := newTestHandlers(t)
	tests := []struct {
		name string
		fn   func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
		args map[string]any
		want string
	}{
		{"missing id", h.renderRoutine, map[string]any{}, "routine_id parameter is required"},
		{"bad id", h.renderRoutine, map[string]any{"routine_id": "nope"}, "invalid routine_id"},
		{"unknown routine", h.renderRoutine, map[string]any{"routine_id": "00000000-0000-0000-0000-000000000001"}, "routine not found"},
		{"last exercise", h.removeExercise, map[string]any{"routine_id": id, "workout": float64(0), "exercise": float64(0)}, "illegal_state"},
		{"same reps", h.updateReps, map[string]any{"routine_id": id, "workout": float64(0), "exercise": float64(0), "set": float64(0), "reps": float64(0)}, "must be different"},
		{"reorder range", h.reorderWorkouts, map[string]any{"routine_id": id, "from": float64(0), "to": float64(5)}, "invalid_argument"},
		{"zero sets", h.addExercise, map[string]any{"routine_id": id, "workout": float64(0), "name": "Dip", "sets": float64(0),
			"target_reps": float64(8), "weight": float64(0), "mode": "BODYWEIGHT"}, "cannot be less than 1"},
		{"negative weight", h.addExercise, map[string]any{"routine_id": id, "workout": float64(0), "name": "Dip", "sets": float64(1),
			"target_reps": float64(8), "weight": float64(-5), "mode": "BODYWEIGHT"}, "cannot be negative"},
		{"equipment label", h.addExercise, map[string]any{"routine_id": id, "workout": float64(0), "name": "Swing", "sets": float64(1),
			"target_reps": float64(15), "weight": float64(16), "mode": "KETTLEBELL"}, "unknown mode"},
		{"negative reps", h.updateReps, map[string]any{"routine_id": id, "workout": float64(0), "exercise": float64(0), "set": float64(0), "reps": float64(-1)}, "cannot be negative"},
		{"bad reps", h.addExercise, map[string]any{"routine_id": id, "workout": float64(0), "name": "Dip", "sets": float64(1),
			"target_reps": float64(8), "weight": float64(0), "mode": "BODYWEIGHT", "reps": []any{"x"}}, "reps: item 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, isErr := call(t, tt.fn, tt.args)
			if !isErr {
				t.Fatalf("expected error result, got %s", got)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("error = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

// TestRemoveRestoreTools verifies an exercise removed through MCP can be restored.
func TestRemoveRestoreTools(t *testing.T) {
	h, id := newTestHandlers(t)
	call(t, h.addExercise, map[string]any{
		"routine_id": id, "workout": float64(0), "name": "Fly", "sets": float64(3),
		"target_reps": float64(12), "weight": float64(20), "mode": "CABLE",
	})

	got, isErr := call(t, h.removeExercise, map[string]any{"routine_id": id, "workout": float64(0), "exercise": float64(0)})
	if isErr {
		t.Fatalf("remove: %s", got)
	}
	var w library.WorkoutView
	if err := json.Unmarshal([]byte(got), &w); err != nil {
		t.Fatal(err)
	}
	if len(w.Exercises) != 1 || len(w.DeletedExercises) != 1 || w.DeletedExercises[0].Name != "Bench Press" {
		t.Fatalf("after remove = %+v", w)
	}

	got, isErr = call(t, h.restoreExercise, map[string]any{"routine_id": id, "workout": float64(0), "deleted": float64(0)})
	if isErr {
		t.Fatalf("restore: %s", got)
	}
	w = library.WorkoutView{}
	if err := json.Unmarshal([]byte(got), &w); err != nil {
		t.Fatal(err)
	}
	if len(w.Exercises) != 2 || w.Exercises[1].Name != "Bench Press" {
		t.Errorf("after restore = %+v", w)
	}
}

// TestReorderAndListTools verifies reorder_workouts and list_routines.
func TestReorderAndListTools(t *testing.T) {
	h, id := newTestHandlers(t)
	got, isErr := call(t, h.reorderWorkouts, map[string]any{"routine_id": id, "from": float64(1), "to": float64(0)})
	if isErr {
		t.Fatalf("reorder: %s", got)
	}
	if !strings.Contains(got, `["Pull","Push"]`) {
		t.Errorf("reorder = %s", got)
	}

	got, _ = call(t, h.listRoutines, nil)
	var list []storage.RoutineSummary
	if err := json.Unmarshal([]byte(got), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Name != "Split" || list[0].Workouts != 2 {
		t.Errorf("list = %+v", list)
	}
}

// TestRoutinesResource verifies the routines resource returns the JSON list.
func TestRoutinesResource(t *testing.T) {
	h, _ := newTestHandlers(t)
	var req mcp.ReadResourceRequest
	req.Params.URI = "fitlog://routines"
	contents, err := h.routines(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	text, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("contents = %T", contents[0])
	}
	if text.MIMEType != "application/json" || !strings.Contains(text.Text, `"name":"Split"`) {
		t.Errorf("resource = %+v", text)
	}
}

// TestNewRegistersTools verifies the server is constructed with every tool.
func TestNewRegistersTools(t *testing.T) {
	s := New(nil, "test", slog.Default())
	tools := s.ListTools()
	for _, name := range []string{"list_routines", "render_routine", "add_exercise", "remove_exercise",
		"restore_exercise", "update_reps", "reorder_workouts"} {
		if _, ok := tools[name]; !ok {
			t.Errorf("tool %s not registered", name)
		}
	}
}
