package models

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"strings"
)

// Workout is an ordered list of exercises with soft delete. Every exercise it
// holds is either active or deleted, never both, and no two active exercises
// are equal by value.
//
// A Workout is not safe for concurrent use; callers serialize access.
type Workout struct {
	name     string
	active   []*Exercise
	deleted  []*Exercise
	listener Listener
}

// NewWorkout returns an empty workout.
func NewWorkout(name string) (*Workout, error) {
	if err := checkName("workout.new", name); err != nil {
		return nil, err
	}
	return &Workout{name: name}, nil
}

// NewWorkoutFrom rebuilds a workout from previously saved partition lists.
// The workout keeps copies of the exercises.
func NewWorkoutFrom(name string, active, deleted []*Exercise) (*Workout, error) {
	const op = "workout.rebuild"
	w, err := NewWorkout(name)
	if err != nil {
		return nil, err
	}
	if err := checkPartition(op, "exercise", active, deleted, (*Exercise).Equal); err != nil {
		return nil, err
	}
	w.active = cloneAll(active)
	w.deleted = cloneAll(deleted)
	return w, nil
}

// Name returns the workout name.
func (w *Workout) Name() string { return w.name }

// SetName renames the workout.
func (w *Workout) SetName(name string) error {
	if err := checkName("workout.set_name", name); err != nil {
		return err
	}
	w.name = name
	return nil
}

// OnChange registers l to receive events. A nil l stops notifications.
func (w *Workout) OnChange(l Listener) { w.listener = l }

// Exercises returns copies of the active exercises in order.
func (w *Workout) Exercises() []*Exercise { return cloneAll(w.active) }

// DeletedExercises returns copies of the soft-deleted exercises, oldest first.
func (w *Workout) DeletedExercises() []*Exercise { return cloneAll(w.deleted) }

// Len returns the number of active exercises.
func (w *Workout) Len() int { return len(w.active) }

// AddExercise appends a copy of e to the active list. If an equal exercise
// was soft-deleted it is moved back instead.
func (w *Workout) AddExercise(e *Exercise) error {
	const op = "workout.add_exercise"
	if e == nil {
		return invalidArg(op, "cannot add a nil exercise to workout %q", w.name)
	}
	if indexOf(w.active, e, (*Exercise).Equal) >= 0 {
		return invalidArg(op, "exercise %q already exists in workout %q", e.name, w.name)
	}
	if i := indexOf(w.deleted, e, (*Exercise).Equal); i >= 0 {
		w.deleted, w.active = moveItem(w.deleted, w.active, i)
		w.emit(EventRestored, e.name)
		return nil
	}
	w.active = append(w.active, e.Clone())
	w.emit(EventAdded, e.name)
	return nil
}

// RemoveExercise soft-deletes e. The last active exercise cannot be removed.
func (w *Workout) RemoveExercise(e *Exercise) error {
	const op = "workout.remove_exercise"
	if e == nil {
		return invalidArg(op, "cannot remove a nil exercise from workout %q", w.name)
	}
	i := indexOf(w.active, e, (*Exercise).Equal)
	if i < 0 {
		if indexOf(w.deleted, e, (*Exercise).Equal) >= 0 {
			return invalidArg(op, "exercise %q is already deleted from workout %q", e.name, w.name)
		}
		return invalidArg(op, "exercise %q is not in workout %q", e.name, w.name)
	}
	if len(w.active) == 1 {
		return illegalState(op, "workout %q must keep at least one exercise", w.name)
	}
	w.active, w.deleted = moveItem(w.active, w.deleted, i)
	w.emit(EventRemoved, e.name)
	return nil
}

// EditExercise replaces current with a copy of next at the same position.
func (w *Workout) EditExercise(current, next *Exercise) error {
	const op = "workout.edit_exercise"
	if current == nil || next == nil {
		return invalidArg(op, "both exercises must be non-nil to edit workout %q", w.name)
	}
	if current.Equal(next) {
		return illegalState(op, "the new exercise must differ from %q in at least one field", current.name)
	}
	i := indexOf(w.active, current, (*Exercise).Equal)
	if i < 0 {
		return invalidArg(op, "exercise %q is not in workout %q", current.name, w.name)
	}
	if indexOf(w.active, next, (*Exercise).Equal) >= 0 {
		return invalidArg(op, "exercise %q already exists in workout %q", next.name, w.name)
	}
	if indexOf(w.deleted, next, (*Exercise).Equal) >= 0 {
		return invalidArg(op, "exercise %q is deleted from workout %q; restore it instead", next.name, w.name)
	}
	w.active[i] = next.Clone()
	w.emit(EventEdited, next.name)
	return nil
}

// RestoreExercise moves a soft-deleted exercise back to the end of the active list.
func (w *Workout) RestoreExercise(e *Exercise) error {
	const op = "workout.restore_exercise"
	if e == nil {
		return invalidArg(op, "cannot restore a nil exercise to workout %q", w.name)
	}
	i := indexOf(w.deleted, e, (*Exercise).Equal)
	if i < 0 {
		return invalidArg(op, "exercise %q is not in the deleted list of workout %q", e.name, w.name)
	}
	w.deleted, w.active = moveItem(w.deleted, w.active, i)
	w.emit(EventRestored, e.name)
	return nil
}

// Clone returns a deep copy without the change listener.
func (w *Workout) Clone() *Workout {
	return &Workout{name: w.name, active: cloneAll(w.active), deleted: cloneAll(w.deleted)}
}

// Equal compares name and active exercises. Deleted exercises are ignored.
func (w *Workout) Equal(other *Workout) bool {
	if w == nil || other == nil {
		return w == other
	}
	if w == other {
		return true
	}
	return w.name == other.name && equalSlices(w.active, other.active, (*Exercise).Equal)
}

// Hash is consistent with Equal.
func (w *Workout) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(w.name))
	var buf [8]byte
	for _, e := range w.active {
		binary.LittleEndian.PutUint64(buf[:], e.Hash())
		h.Write(buf[:])
	}
	return h.Sum64()
}

// Render lists the active exercises, 1-indexed, under the workout name.
func (w *Workout) Render() string {
	var b strings.Builder
	b.WriteString(w.name + ":\n")
	if len(w.active) == 0 {
		b.WriteString("No exercises in this workout.\n")
		return b.String()
	}
	for i, e := range w.active {
		fmt.Fprintf(&b, "%d. %s\n", i+1, e.Render())
	}
	return b.String()
}

func (w *Workout) String() string { return w.Render() }

func (w *Workout) emit(kind EventKind, item string) {
	if w.listener == nil {
		return
	}
	w.listener(Event{Kind: kind, ItemType: "Exercise", Item: item, ContainerType: "workout", Container: w.name})
}
