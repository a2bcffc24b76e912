package models

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"strings"
)

// Routine is an ordered list of workouts with the same active/deleted
// partitioning as Workout, plus explicit reordering.
//
// A Routine is not safe for concurrent use; callers serialize access.
type Routine struct {
	name     string
	active   []*Workout
	deleted  []*Workout
	listener Listener
}

// NewRoutine returns an empty routine.
func NewRoutine(name string) (*Routine, error) {
	if err := checkName("routine.new", name); err != nil {
		return nil, err
	}
	return &Routine{name: name}, nil
}

// NewRoutineFrom rebuilds a routine from previously saved partition lists.
// The routine keeps copies of the workouts.
func NewRoutineFrom(name string, active, deleted []*Workout) (*Routine, error) {
	const op = "routine.rebuild"
	r, err := NewRoutine(name)
	if err != nil {
		return nil, err
	}
	if err := checkPartition(op, "workout", active, deleted, (*Workout).Equal); err != nil {
		return nil, err
	}
	r.active = cloneAll(active)
	r.deleted = cloneAll(deleted)
	return r, nil
}

// Name returns the routine name.
func (r *Routine) Name() string { return r.name }

// SetName renames the routine.
func (r *Routine) SetName(name string) error {
	if err := checkName("routine.set_name", name); err != nil {
		return err
	}
	r.name = name
	return nil
}

// OnChange registers l to receive events. A nil l stops notifications.
func (r *Routine) OnChange(l Listener) { r.listener = l }

// Workouts returns copies of the active workouts in order. Use UpdateWorkout
// to change a workout held by the routine.
func (r *Routine) Workouts() []*Workout { return cloneAll(r.active) }

// DeletedWorkouts returns copies of the soft-deleted workouts, oldest first.
func (r *Routine) DeletedWorkouts() []*Workout { return cloneAll(r.deleted) }

// Len returns the number of active workouts.
func (r *Routine) Len() int { return len(r.active) }

// AddWorkout appends a copy of w to the active list. If an equal workout was
// soft-deleted it is moved back instead.
func (r *Routine) AddWorkout(w *Workout) error {
	const op = "routine.add_workout"
	if w == nil {
		return invalidArg(op, "cannot add a nil workout to routine %q", r.name)
	}
	if indexOf(r.active, w, (*Workout).Equal) >= 0 {
		return invalidArg(op, "workout %q already exists in routine %q", w.name, r.name)
	}
	if i := indexOf(r.deleted, w, (*Workout).Equal); i >= 0 {
		r.deleted, r.active = moveItem(r.deleted, r.active, i)
		r.emit(EventRestored, w.name)
		return nil
	}
	r.active = append(r.active, w.Clone())
	r.emit(EventAdded, w.name)
	return nil
}

// RemoveWorkout soft-deletes w. The sole remaining workout cannot be removed.
func (r *Routine) RemoveWorkout(w *Workout) error {
	const op = "routine.remove_workout"
	if w == nil {
		return invalidArg(op, "cannot remove a nil workout from routine %q", r.name)
	}
	i := indexOf(r.active, w, (*Workout).Equal)
	if i < 0 {
		if indexOf(r.deleted, w, (*Workout).Equal) >= 0 {
			return invalidArg(op, "workout %q is already deleted from routine %q", w.name, r.name)
		}
		return invalidArg(op, "workout %q is not in routine %q", w.name, r.name)
	}
	if len(r.active) == 1 {
		return unsupported(op, "routine %q must keep at least one workout", r.name)
	}
	r.active, r.deleted = moveItem(r.active, r.deleted, i)
	r.emit(EventRemoved, w.name)
	return nil
}

// RestoreWorkout moves a soft-deleted workout back to the end of the active list.
func (r *Routine) RestoreWorkout(w *Workout) error {
	const op = "routine.restore_workout"
	if w == nil {
		return invalidArg(op, "cannot restore a nil workout to routine %q", r.name)
	}
	i := indexOf(r.deleted, w, (*Workout).Equal)
	if i < 0 {
		return invalidArg(op, "workout %q is not in the deleted list of routine %q", w.name, r.name)
	}
	r.deleted, r.active = moveItem(r.deleted, r.active, i)
	r.emit(EventRestored, w.name)
	return nil
}

// UpdateWorkout runs fn on a copy of the active workout at index i. The copy
// replaces the original only when fn succeeds and the result is not equal to
// any other workout of the routine, active or deleted. Events raised by fn
// reach the routine's listener after the copy is kept.
func (r *Routine) UpdateWorkout(i int, fn func(*Workout) error) error {
	const op = "routine.update_workout"
	if i < 0 || i >= len(r.active) {
		return invalidArg(op, "workout index %d out of range (have %d)", i, len(r.active))
	}
	w := r.active[i].Clone()
	var events []Event
	w.OnChange(func(ev Event) { events = append(events, ev) })
	if err := fn(w); err != nil {
		return err
	}
	w.OnChange(nil)
	for j, other := range r.active {
		if j != i && other.Equal(w) {
			return invalidArg(op, "workout %q would duplicate another workout of routine %q", w.name, r.name)
		}
	}
	if indexOf(r.deleted, w, (*Workout).Equal) >= 0 {
		return invalidArg(op, "workout %q would match a deleted workout of routine %q", w.name, r.name)
	}
	r.active[i] = w
	if r.listener != nil {
		for _, ev := range events {
			r.listener(ev)
		}
	}
	return nil
}

// RenameWorkout renames the active workout equal to w. A name that would
// make it equal to another workout of the routine is rejected.
func (r *Routine) RenameWorkout(w *Workout, name string) error {
	const op = "routine.rename_workout"
	if w == nil {
		return invalidArg(op, "cannot rename a nil workout in routine %q", r.name)
	}
	if err := checkName(op, name); err != nil {
		return err
	}
	i := indexOf(r.active, w, (*Workout).Equal)
	if i < 0 {
		return invalidArg(op, "workout %q is not in routine %q", w.name, r.name)
	}
	target := r.active[i]
	if target.name == name {
		return illegalState(op, "workout is already named %q", name)
	}
	renamed := &Workout{name: name, active: target.active}
	for j, other := range r.active {
		if j != i && other.Equal(renamed) {
			return invalidArg(op, "workout %q already exists in routine %q", name, r.name)
		}
	}
	if indexOf(r.deleted, renamed, (*Workout).Equal) >= 0 {
		return invalidArg(op, "workout %q matches a deleted workout of routine %q", name, r.name)
	}
	old := target.name
	target.name = name
	r.emit(EventEdited, old)
	return nil
}

// Reorder moves the active workout at oldIndex to newIndex. Workouts in
// between shift by one position.
func (r *Routine) Reorder(oldIndex, newIndex int) error {
	const op = "routine.reorder"
	n := len(r.active)
	if n < 2 {
		return illegalState(op, "routine %q needs at least two workouts to reorder", r.name)
	}
	if oldIndex == newIndex {
		return invalidArg(op, "old index and new index cannot be the same (%d)", oldIndex)
	}
	if oldIndex < 0 || oldIndex >= n || newIndex < 0 || newIndex >= n {
		return invalidArg(op, "indices %d -> %d out of range for %d workouts", oldIndex, newIndex, n)
	}
	w := r.active[oldIndex]
	if oldIndex < newIndex {
		copy(r.active[oldIndex:newIndex], r.active[oldIndex+1:newIndex+1])
	} else {
		copy(r.active[newIndex+1:oldIndex+1], r.active[newIndex:oldIndex])
	}
	r.active[newIndex] = w
	r.emit(EventReordered, w.name)
	return nil
}

// Clear discards every active workout without soft-deleting it.
func (r *Routine) Clear() error {
	if len(r.active) == 0 {
		return illegalState("routine.clear", "routine %q is already empty", r.name)
	}
	r.active = nil
	r.emit(EventCleared, "")
	return nil
}

// Equal compares name and active workouts. Deleted workouts are ignored.
func (r *Routine) Equal(other *Routine) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r == other {
		return true
	}
	return r.name == other.name && equalSlices(r.active, other.active, (*Workout).Equal)
}

// Hash is consistent with Equal.
func (r *Routine) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(r.name))
	var buf [8]byte
	for _, w := range r.active {
		binary.LittleEndian.PutUint64(buf[:], w.Hash())
		h.Write(buf[:])
	}
	return h.Sum64()
}

// Render lists the active workouts, 1-indexed, each followed by a blank line.
func (r *Routine) Render() string {
	var b strings.Builder
	b.WriteString("Routine \"" + r.name + "\":\n")
	if len(r.active) == 0 {
		b.WriteString("No workouts in this routine.\n")
		return b.String()
	}
	for i, w := range r.active {
		fmt.Fprintf(&b, "%d. %s\n", i+1, w.Render())
	}
	return b.String()
}

func (r *Routine) String() string { return r.Render() }

func (r *Routine) emit(kind EventKind, item string) {
	if r.listener == nil {
		return
	}
	r.listener(Event{Kind: kind, ItemType: "Workout", Item: item, ContainerType: "routine", Container: r.name})
}
