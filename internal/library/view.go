package library

import (
	"github.com/claude/fitlog/internal/models"
	"github.com/google/uuid"
)

// RoutineView is a JSON-ready snapshot of a routine.
type RoutineView struct {
	ID              uuid.UUID     `json:"id"`
	Name            string        `json:"name"`
	Workouts        []WorkoutView `json:"workouts"`
	DeletedWorkouts []WorkoutView `json:"deleted_workouts"`
}

// WorkoutView is a snapshot of one workout. Index is its position in the
// list it was taken from.
type WorkoutView struct {
	Index            int            `json:"index"`
	Name             string         `json:"name"`
	Exercises        []ExerciseView `json:"exercises"`
	DeletedExercises []ExerciseView `json:"deleted_exercises"`
}

// ExerciseView is a snapshot of one exercise.
type ExerciseView struct {
	Index      int           `json:"index"`
	Name       string        `json:"name"`
	Sets       int           `json:"sets"`
	TargetReps int           `json:"target_reps"`
	Weight     float64       `json:"weight"`
	Mode       models.Mode   `json:"mode"`
	SetReps    []SetRepsView `json:"set_reps"`
	Text       string        `json:"text"`
}

// SetRepsView is one set of an ExerciseView.
type SetRepsView struct {
	Set  int `json:"set"`
	Reps int `json:"reps"`
}

func newRoutineView(id uuid.UUID, r *models.Routine) RoutineView {
	return RoutineView{
		ID:              id,
		Name:            r.Name(),
		Workouts:        workoutViews(r.Workouts()),
		DeletedWorkouts: workoutViews(r.DeletedWorkouts()),
	}
}

func workoutViews(list []*models.Workout) []WorkoutView {
	out := make([]WorkoutView, len(list))
	for i, w := range list {
		out[i] = WorkoutView{
			Index:            i,
			Name:             w.Name(),
			Exercises:        exerciseViews(w.Exercises()),
			DeletedExercises: exerciseViews(w.DeletedExercises()),
		}
	}
	return out
}

func exerciseViews(list []*models.Exercise) []ExerciseView {
	out := make([]ExerciseView, len(list))
	for i, e := range list {
		sr := e.SetReps()
		sets := make([]SetRepsView, len(sr))
		for j, s := range sr {
			sets[j] = SetRepsView{Set: s.SetNumber(), Reps: s.Reps()}
		}
		out[i] = ExerciseView{
			Index:      i,
			Name:       e.Name(),
			Sets:       e.Sets(),
			TargetReps: e.TargetReps(),
			Weight:     e.Weight(),
			Mode:       e.Mode(),
			SetReps:    sets,
			Text:       e.Render(),
		}
	}
	return out
}
