package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/fitlog/internal/library"
	"github.com/claude/fitlog/internal/models"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolListRoutines = mcp.NewTool("list_routines",
	mcp.WithDescription("List all routines with their id, name and number of active workouts."),
)

var toolRenderRoutine = mcp.NewTool("render_routine",
	mcp.WithDescription("Render a routine as text: numbered workouts, each with its exercises as NAME SETSxTARGET@WEIGHT and the reps done per set."),
	mcp.WithString("routine_id", mcp.Required(), mcp.Description("Routine UUID")),
)

var toolAddExercise = mcp.NewTool("add_exercise",
	mcp.WithDescription("Add an exercise to a workout. Fails if an equal exercise is already in the workout."),
	mcp.WithString("routine_id", mcp.Required(), mcp.Description("Routine UUID")),
	mcp.WithNumber("workout", mcp.Required(), mcp.Description("0-based index of the active workout")),
	mcp.WithString("name", mcp.Required(), mcp.Description("Exercise name")),
	mcp.WithNumber("sets", mcp.Required(), mcp.Description("Number of sets, at least 1")),
	mcp.WithNumber("target_reps", mcp.Required(), mcp.Description("Target reps per set")),
	mcp.WithNumber("weight", mcp.Required(), mcp.Description("Weight in kg, not negative")),
	mcp.WithString("mode", mcp.Required(), mcp.Description("Equipment"),
		mcp.Enum(modeNames()...)),
	mcp.WithArray("reps", mcp.Description("Reps done per set, in set order. Omit to start with no reps recorded."),
		mcp.Items(map[string]any{"type": "integer"})),
)

var toolRemoveExercise = mcp.NewTool("remove_exercise",
	mcp.WithDescription("Soft-delete an exercise. It can be brought back with restore_exercise. The last exercise of a workout cannot be removed."),
	mcp.WithString("routine_id", mcp.Required(), mcp.Description("Routine UUID")),
	mcp.WithNumber("workout", mcp.Required(), mcp.Description("0-based index of the active workout")),
	mcp.WithNumber("exercise", mcp.Required(), mcp.Description("0-based index of the active exercise")),
)

var toolRestoreExercise = mcp.NewTool("restore_exercise",
	mcp.WithDescription("Restore a soft-deleted exercise to the end of its workout."),
	mcp.WithString("routine_id", mcp.Required(), mcp.Description("Routine UUID")),
	mcp.WithNumber("workout", mcp.Required(), mcp.Description("0-based index of the active workout")),
	mcp.WithNumber("deleted", mcp.Required(), mcp.Description("0-based index into the workout's deleted exercises")),
)

var toolUpdateReps = mcp.NewTool("update_reps",
	mcp.WithDescription("Record the reps done for one set of an exercise."),
	mcp.WithString("routine_id", mcp.Required(), mcp.Description("Routine UUID")),
	mcp.WithNumber("workout", mcp.Required(), mcp.Description("0-based index of the active workout")),
	mcp.WithNumber("exercise", mcp.Required(), mcp.Description("0-based index of the active exercise")),
	mcp.WithNumber("set", mcp.Required(), mcp.Description("0-based set index")),
	mcp.WithNumber("reps", mcp.Required(), mcp.Description("Reps done, not negative")),
)

var toolReorderWorkouts = mcp.NewTool("reorder_workouts",
	mcp.WithDescription("Move a workout to a new position. The workouts in between shift by one."),
	mcp.WithString("routine_id", mcp.Required(), mcp.Description("Routine UUID")),
	mcp.WithNumber("from", mcp.Required(), mcp.Description("Current 0-based position")),
	mcp.WithNumber("to", mcp.Required(), mcp.Description("New 0-based position")),
)

func modeNames() []string {
	names := make([]string, len(models.Modes))
	for i, m := range models.Modes {
		names[i] = m.String()
	}
	return names
}

// --- Tool handlers ---

func (h *handlers) listRoutines(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := h.ds.ListRoutines(ctx)
	if err != nil {
		h.log.Error("mcp list_routines", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(list), nil
}

func (h *handlers) renderRoutine(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := routineID(req)
	if errResult != nil {
		return errResult, nil
	}
	text, err := h.ds.Render(ctx, id)
	if err != nil {
		return h.failed("render_routine", err), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (h *handlers) addExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := routineID(req)
	if errResult != nil {
		return errResult, nil
	}
	ints, errResult := requireInts(req, "workout", "sets", "target_reps")
	if errResult != nil {
		return errResult, nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name parameter is required"), nil
	}
	mode, err := req.RequireString("mode")
	if err != nil {
		return mcp.NewToolResultError("mode parameter is required"), nil
	}
	weight, err := req.RequireFloat("weight")
	if err != nil {
		return mcp.NewToolResultError("weight parameter is required"), nil
	}
	reps, err := intList(req.GetArguments()["reps"])
	if err != nil {
		return mcp.NewToolResultError("reps: " + err.Error()), nil
	}

	view, err := h.ds.AddExercise(ctx, id, ints[0], library.ExerciseInput{
		Name:       name,
		Sets:       ints[1],
		TargetReps: ints[2],
		Weight:     weight,
		Mode:       mode,
		Reps:       reps,
	})
	if err != nil {
		return h.failed("add_exercise", err), nil
	}
	return workoutResult(view, ints[0]), nil
}

func (h *handlers) removeExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := routineID(req)
	if errResult != nil {
		return errResult, nil
	}
	ints, errResult := requireInts(req, "workout", "exercise")
	if errResult != nil {
		return errResult, nil
	}
	view, err := h.ds.RemoveExercise(ctx, id, ints[0], ints[1])
	if err != nil {
		return h.failed("remove_exercise", err), nil
	}
	return workoutResult(view, ints[0]), nil
}

func (h *handlers) restoreExercise(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := routineID(req)
	if errResult != nil {
		return errResult, nil
	}
	ints, errResult := requireInts(req, "workout", "deleted")
	if errResult != nil {
		return errResult, nil
	}
	view, err := h.ds.RestoreExercise(ctx, id, ints[0], ints[1])
	if err != nil {
		return h.failed("restore_exercise", err), nil
	}
	return workoutResult(view, ints[0]), nil
}

func (h *handlers) updateReps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := routineID(req)
	if errResult != nil {
		return errResult, nil
	}
	ints, errResult := requireInts(req, "workout", "exercise", "set", "reps")
	if errResult != nil {
		return errResult, nil
	}
	view, err := h.ds.UpdateReps(ctx, id, ints[0], ints[1], ints[2], ints[3])
	if err != nil {
		return h.failed("update_reps", err), nil
	}
	return workoutResult(view, ints[0]), nil
}

func (h *handlers) reorderWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, errResult := routineID(req)
	if errResult != nil {
		return errResult, nil
	}
	ints, errResult := requireInts(req, "from", "to")
	if errResult != nil {
		return errResult, nil
	}
	view, err := h.ds.ReorderWorkouts(ctx, id, ints[0], ints[1])
	if err != nil {
		return h.failed("reorder_workouts", err), nil
	}
	names := make([]string, len(view.Workouts))
	for i, w := range view.Workouts {
		names[i] = w.Name
	}
	return jsonResult(map[string]any{"workouts": names}), nil
}

// --- Helpers ---

// failed turns a service error into a tool error. Rejected operations are
// reported as-is; anything else is logged.
func (h *handlers) failed(tool string, err error) *mcp.CallToolResult {
	var oe *models.OpError
	if !errors.As(err, &oe) {
		h.log.Error("mcp "+tool, "error", err)
	}
	return mcp.NewToolResultError(err.Error())
}

func routineID(req mcp.CallToolRequest) (uuid.UUID, *mcp.CallToolResult) {
	raw, err := req.RequireString("routine_id")
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError("routine_id parameter is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, mcp.NewToolResultError("invalid routine_id: " + err.Error())
	}
	return id, nil
}

func requireInts(req mcp.CallToolRequest, names ...string) ([]int, *mcp.CallToolResult) {
	out := make([]int, len(names))
	for i, name := range names {
		n, err := req.RequireInt(name)
		if err != nil {
			return nil, mcp.NewToolResultError(name + " parameter is required")
		}
		out[i] = n
	}
	return out, nil
}

// intList converts a JSON array argument. JSON numbers arrive as float64.
func intList(v any) ([]int, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("want an array of integers, got %T", v)
	}
	out := make([]int, len(items))
	for i, item := range items {
		f, ok := item.(float64)
		if !ok || f != float64(int(f)) {
			return nil, fmt.Errorf("item %d is not an integer", i)
		}
		out[i] = int(f)
	}
	return out, nil
}

// workoutResult returns the workout at index wi of view.
func workoutResult(view library.RoutineView, wi int) *mcp.CallToolResult {
	if wi < 0 || wi >= len(view.Workouts) {
		return jsonResult(view)
	}
	return jsonResult(view.Workouts[wi])
}

func jsonResult(v any) *mcp.CallToolResult {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed")
	}
	return result
}
