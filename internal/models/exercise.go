package models

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
)

// Exercise describes one movement: name, sets, reps per set, target reps,
// working weight and equipment mode.
//
// Every constructor and mutator keeps these invariants: name is non-empty,
// sets >= 1, weight >= 0 and finite, and len(SetReps()) == Sets().
// Exercises compare by value; two instances with identical fields are
// interchangeable inside a Workout.
type Exercise struct {
	name       string
	sets       int
	setReps    []SetReps
	targetReps int
	weight     float64
	mode       Mode
}

// NewExercise validates its arguments and returns a new exercise. An empty
// setReps is filled with one zero-rep entry per set.
func NewExercise(name string, sets int, setReps []SetReps, targetReps int, weight float64, mode Mode) (*Exercise, error) {
	const op = "exercise.new"
	if err := checkName(op, name); err != nil {
		return nil, err
	}
	if err := checkSets(op, sets); err != nil {
		return nil, err
	}
	if err := checkWeight(op, weight); err != nil {
		return nil, err
	}
	if err := checkMode(op, mode); err != nil {
		return nil, err
	}

	var list []SetReps
	if len(setReps) == 0 {
		list = zeroSetReps(1, sets)
	} else {
		if len(setReps) != sets {
			return nil, invalidArg(op, "number of set reps (%d) must match the number of sets (%d)", len(setReps), sets)
		}
		for _, sr := range setReps {
			if err := checkSetReps(op, sr.setNumber, sr.reps); err != nil {
				return nil, err
			}
		}
		list = append([]SetReps(nil), setReps...)
	}

	return &Exercise{
		name:       name,
		sets:       sets,
		setReps:    list,
		targetReps: targetReps,
		weight:     normalizeWeight(weight),
		mode:       mode,
	}, nil
}

// Name returns the exercise name.
func (e *Exercise) Name() string { return e.name }

// Sets returns the number of sets.
func (e *Exercise) Sets() int { return e.sets }

// TargetReps returns the repetitions aimed for in each set.
func (e *Exercise) TargetReps() int { return e.targetReps }

// Weight returns the working weight.
func (e *Exercise) Weight() float64 { return e.weight }

// Mode returns the equipment mode.
func (e *Exercise) Mode() Mode { return e.mode }

// SetReps returns a copy of the per-set repetitions, in set order.
func (e *Exercise) SetReps() []SetReps {
	return append([]SetReps(nil), e.setReps...)
}

// RepsForSet returns the reps recorded at the 0-based set index.
func (e *Exercise) RepsForSet(setIndex int) (int, error) {
	if err := e.checkSetIndex("exercise.reps_for_set", setIndex); err != nil {
		return 0, err
	}
	return e.setReps[setIndex].reps, nil
}

// UpdateName renames the exercise. The new name must differ from the current one.
func (e *Exercise) UpdateName(name string) error {
	const op = "exercise.update_name"
	if err := checkName(op, name); err != nil {
		return err
	}
	if name == e.name {
		return invalidArg(op, "new name %q must be different from the current name", name)
	}
	e.name = name
	return nil
}

// UpdateWeight changes the working weight.
func (e *Exercise) UpdateWeight(weight float64) error {
	const op = "exercise.update_weight"
	if err := checkWeight(op, weight); err != nil {
		return err
	}
	if weight == e.weight {
		return invalidArg(op, "new weight (%.2f) must be different from the current weight", weight)
	}
	e.weight = normalizeWeight(weight)
	return nil
}

// UpdateSets changes the number of sets. Reps of the sets that remain are
// kept; added sets start at zero reps, dropped sets are discarded.
func (e *Exercise) UpdateSets(sets int) error {
	const op = "exercise.update_sets"
	if err := checkSets(op, sets); err != nil {
		return err
	}
	if sets == e.sets {
		return invalidArg(op, "new number of sets (%d) must be different from the current number", sets)
	}
	if sets < len(e.setReps) {
		e.setReps = append([]SetReps(nil), e.setReps[:sets]...)
	} else {
		next := len(e.setReps) + 1
		if n := len(e.setReps); n > 0 {
			next = e.setReps[n-1].setNumber + 1
		}
		e.setReps = append(e.setReps, zeroSetReps(next, sets-len(e.setReps))...)
	}
	e.sets = sets
	return nil
}

// UpdateTargetReps changes the target repetitions.
func (e *Exercise) UpdateTargetReps(targetReps int) error {
	const op = "exercise.update_target_reps"
	if targetReps == e.targetReps {
		return invalidArg(op, "new target reps (%d) must be different from the current target reps", targetReps)
	}
	e.targetReps = targetReps
	return nil
}

// UpdateMode changes the equipment mode.
func (e *Exercise) UpdateMode(mode Mode) error {
	const op = "exercise.update_mode"
	if err := checkMode(op, mode); err != nil {
		return err
	}
	if mode == e.mode {
		return invalidArg(op, "new mode %s must be different from the current mode", mode)
	}
	e.mode = mode
	return nil
}

// UpdateReps records reps for the 0-based set index. The set keeps its number.
func (e *Exercise) UpdateReps(setIndex, reps int) error {
	const op = "exercise.update_reps"
	if err := e.checkSetIndex(op, setIndex); err != nil {
		return err
	}
	cur := e.setReps[setIndex]
	if err := checkSetReps(op, cur.setNumber, reps); err != nil {
		return err
	}
	if reps == cur.reps {
		return invalidArg(op, "new reps (%d) must be different from current reps (%d)", reps, cur.reps)
	}
	e.setReps[setIndex] = SetReps{setNumber: cur.setNumber, reps: reps}
	return nil
}

// Clone returns an independent copy.
func (e *Exercise) Clone() *Exercise {
	c := *e
	c.setReps = e.SetReps()
	return &c
}

// Equal reports whether both exercises hold the same values, including the
// per-set reps sequence. A nil exercise equals only another nil.
func (e *Exercise) Equal(other *Exercise) bool {
	if e == nil || other == nil {
		return e == other
	}
	if e == other {
		return true
	}
	if e.name != other.name || e.sets != other.sets || e.targetReps != other.targetReps ||
		e.weight != other.weight || e.mode != other.mode || len(e.setReps) != len(other.setReps) {
		return false
	}
	for i := range e.setReps {
		if e.setReps[i] != other.setReps[i] {
			return false
		}
	}
	return true
}

// Hash returns a hash consistent with Equal. It is stable for as long as the
// exercise is not mutated.
func (e *Exercise) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(e.name))
	h.Write([]byte{0})
	var buf [8]byte
	writeInt := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	writeInt(e.sets)
	writeInt(e.targetReps)
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(e.weight))
	h.Write(buf[:])
	h.Write([]byte(e.mode))
	h.Write([]byte{0})
	for _, sr := range e.setReps {
		writeInt(sr.setNumber)
		writeInt(sr.reps)
	}
	return h.Sum64()
}

// Render formats the exercise as
// "{name} {sets}x{targetReps}@{weight} (Reps per set: [Set 1: r, ...])".
// When no set has any reps recorded the list renders as "[]".
func (e *Exercise) Render() string {
	reps := "[]"
	if e.hasReps() {
		parts := make([]string, len(e.setReps))
		for i, sr := range e.setReps {
			parts[i] = sr.String()
		}
		reps = "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprintf("%s %dx%d@%.2f (Reps per set: %s)", e.name, e.sets, e.targetReps, e.weight, reps)
}

func (e *Exercise) String() string { return e.Render() }

func (e *Exercise) hasReps() bool {
	for _, sr := range e.setReps {
		if sr.reps != 0 {
			return true
		}
	}
	return false
}

func (e *Exercise) checkSetIndex(op string, setIndex int) error {
	if setIndex < 0 || setIndex >= e.sets {
		return invalidArg(op, "set index %d is out of bounds for %d sets", setIndex, e.sets)
	}
	return nil
}

func zeroSetReps(first, n int) []SetReps {
	list := make([]SetReps, 0, n)
	for i := 0; i < n; i++ {
		list = append(list, SetReps{setNumber: first + i})
	}
	return list
}

// normalizeWeight folds -0 into +0 so Equal and Hash agree.
func normalizeWeight(w float64) float64 {
	if w == 0 {
		return 0
	}
	return w
}

func checkName(op, name string) error {
	if name == "" {
		return invalidArg(op, "name cannot be empty")
	}
	return nil
}

func checkSets(op string, sets int) error {
	if sets < 1 {
		return invalidArg(op, "number of sets (%d) cannot be less than 1", sets)
	}
	return nil
}

func checkWeight(op string, weight float64) error {
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return invalidArg(op, "weight must be a finite number")
	}
	if weight < 0 {
		return invalidArg(op, "weight (%.2f) cannot be negative", weight)
	}
	return nil
}

func checkMode(op string, mode Mode) error {
	if !mode.Valid() {
		return invalidArg(op, "unknown mode %q", string(mode))
	}
	return nil
}
