package models

import "fmt"

// SetReps pairs a set number with the repetitions completed in it.
// Values are immutable; compare with ==.
type SetReps struct {
	setNumber int
	reps      int
}

// NewSetReps validates setNumber >= 1 and reps >= 0.
func NewSetReps(setNumber, reps int) (SetReps, error) {
	if err := checkSetReps("setreps.new", setNumber, reps); err != nil {
		return SetReps{}, err
	}
	return SetReps{setNumber: setNumber, reps: reps}, nil
}

// SetNumber returns the 1-based set number.
func (s SetReps) SetNumber() int { return s.setNumber }

// Reps returns the repetitions completed in the set.
func (s SetReps) Reps() int { return s.reps }

func (s SetReps) String() string {
	return fmt.Sprintf("Set %d: %d", s.setNumber, s.reps)
}

func checkSetReps(op string, setNumber, reps int) error {
	if setNumber < 1 {
		return invalidArg(op, "set number (%d) cannot be less than 1", setNumber)
	}
	if reps < 0 {
		return invalidArg(op, "reps (%d) cannot be negative", reps)
	}
	return nil
}
