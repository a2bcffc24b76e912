package models

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
)

// RoutineRow is a row of the routines table.
type RoutineRow struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorkoutRow is a row of the workouts table. Position orders rows within
// their partition list; Deleted selects the list.
type WorkoutRow struct {
	ID        uuid.UUID
	RoutineID uuid.UUID
	Position  int
	Deleted   bool
	Name      string
}

// ExerciseRow is a row of the exercises table.
type ExerciseRow struct {
	ID         uuid.UUID
	WorkoutID  uuid.UUID
	Position   int
	Deleted    bool
	Name       string
	Sets       int
	TargetReps int
	Weight     float64
	Mode       string
}

// SetRepsRow is a row of the set_reps table.
type SetRepsRow struct {
	ExerciseID uuid.UUID
	Position   int
	SetNumber  int
	Reps       int
}

// RoutineRows is a routine flattened into table rows.
type RoutineRows struct {
	Routine   RoutineRow
	Workouts  []WorkoutRow
	Exercises []ExerciseRow
	SetReps   []SetRepsRow
}

// FlattenRoutine converts r into rows keyed by id. Child rows get fresh IDs
// on every call; identity below the routine is positional.
func FlattenRoutine(id uuid.UUID, r *Routine, now time.Time) RoutineRows {
	rows := RoutineRows{Routine: RoutineRow{ID: id, Name: r.name, CreatedAt: now, UpdatedAt: now}}
	addWorkouts := func(list []*Workout, deleted bool) {
		for pos, w := range list {
			wid := uuid.New()
			rows.Workouts = append(rows.Workouts, WorkoutRow{
				ID: wid, RoutineID: id, Position: pos, Deleted: deleted, Name: w.name,
			})
			rows.addExercises(wid, w.active, false)
			rows.addExercises(wid, w.deleted, true)
		}
	}
	addWorkouts(r.active, false)
	addWorkouts(r.deleted, true)
	return rows
}

func (rows *RoutineRows) addExercises(workoutID uuid.UUID, list []*Exercise, deleted bool) {
	for pos, e := range list {
		eid := uuid.New()
		rows.Exercises = append(rows.Exercises, ExerciseRow{
			ID:         eid,
			WorkoutID:  workoutID,
			Position:   pos,
			Deleted:    deleted,
			Name:       e.name,
			Sets:       e.sets,
			TargetReps: e.targetReps,
			Weight:     e.weight,
			Mode:       string(e.mode),
		})
		for i, sr := range e.setReps {
			rows.SetReps = append(rows.SetReps, SetRepsRow{
				ExerciseID: eid, Position: i, SetNumber: sr.setNumber, Reps: sr.reps,
			})
		}
	}
}

// AssembleRoutine rebuilds a routine from rows. Rows may arrive in any
// order; Position decides list order. Every value goes through the domain
// constructors, so corrupt rows surface as invalid_argument errors.
func AssembleRoutine(rows RoutineRows) (*Routine, error) {
	setReps := make(map[uuid.UUID][]SetRepsRow)
	for _, sr := range rows.SetReps {
		setReps[sr.ExerciseID] = append(setReps[sr.ExerciseID], sr)
	}
	exercises := make(map[uuid.UUID][]ExerciseRow)
	for _, er := range rows.Exercises {
		exercises[er.WorkoutID] = append(exercises[er.WorkoutID], er)
	}

	var active, deleted []*Workout
	for _, wr := range sortRows(rows.Workouts, func(w WorkoutRow) int { return w.Position }) {
		var ea, ed []*Exercise
		for _, er := range sortRows(exercises[wr.ID], func(e ExerciseRow) int { return e.Position }) {
			var list []SetReps
			for _, sr := range sortRows(setReps[er.ID], func(s SetRepsRow) int { return s.Position }) {
				v, err := NewSetReps(sr.SetNumber, sr.Reps)
				if err != nil {
					return nil, err
				}
				list = append(list, v)
			}
			e, err := NewExercise(er.Name, er.Sets, list, er.TargetReps, er.Weight, Mode(er.Mode))
			if err != nil {
				return nil, err
			}
			if er.Deleted {
				ed = append(ed, e)
			} else {
				ea = append(ea, e)
			}
		}
		w, err := NewWorkoutFrom(wr.Name, ea, ed)
		if err != nil {
			return nil, err
		}
		if wr.Deleted {
			deleted = append(deleted, w)
		} else {
			active = append(active, w)
		}
	}
	return NewRoutineFrom(rows.Routine.Name, active, deleted)
}

func sortRows[T any](rows []T, pos func(T) int) []T {
	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b T) int { return cmp.Compare(pos(a), pos(b)) })
	return out
}
