package library

import (
	"fmt"

	"github.com/claude/fitlog/internal/models"
)

// ExerciseInput describes a new exercise. Reps, when given, holds one entry
// per set; sets are numbered from 1. When Sets is zero it is taken from Reps.
type ExerciseInput struct {
	Name       string  `json:"name"`
	Sets       int     `json:"sets"`
	TargetReps int     `json:"target_reps"`
	Weight     float64 `json:"weight"`
	Mode       string  `json:"mode"`
	Reps       []int   `json:"reps,omitempty"`
}

func (in ExerciseInput) build() (*models.Exercise, error) {
	mode, err := parseMode("library.exercise_input", in.Mode)
	if err != nil {
		return nil, err
	}
	sets := in.Sets
	if sets == 0 {
		sets = len(in.Reps)
	}
	var setReps []models.SetReps
	for i, reps := range in.Reps {
		sr, err := models.NewSetReps(i+1, reps)
		if err != nil {
			return nil, err
		}
		setReps = append(setReps, sr)
	}
	return models.NewExercise(in.Name, sets, setReps, in.TargetReps, in.Weight, mode)
}

// ExercisePatch lists the exercise fields to change. Nil fields, and fields
// equal to the current value, are left alone.
type ExercisePatch struct {
	Name       *string  `json:"name,omitempty"`
	Sets       *int     `json:"sets,omitempty"`
	TargetReps *int     `json:"target_reps,omitempty"`
	Weight     *float64 `json:"weight,omitempty"`
	Mode       *string  `json:"mode,omitempty"`
}

func (p ExercisePatch) apply(e *models.Exercise) error {
	if p.Name != nil && *p.Name != e.Name() {
		if err := e.UpdateName(*p.Name); err != nil {
			return err
		}
	}
	if p.Sets != nil && *p.Sets != e.Sets() {
		if err := e.UpdateSets(*p.Sets); err != nil {
			return err
		}
	}
	if p.TargetReps != nil && *p.TargetReps != e.TargetReps() {
		if err := e.UpdateTargetReps(*p.TargetReps); err != nil {
			return err
		}
	}
	if p.Weight != nil && *p.Weight != e.Weight() {
		if err := e.UpdateWeight(*p.Weight); err != nil {
			return err
		}
	}
	if p.Mode != nil {
		mode, err := parseMode("library.exercise_patch", *p.Mode)
		if err != nil {
			return err
		}
		if mode != e.Mode() {
			if err := e.UpdateMode(mode); err != nil {
				return err
			}
		}
	}
	return nil
}

func parseMode(op, s string) (models.Mode, error) {
	mode, ok := models.ParseMode(s)
	if !ok {
		return "", &models.OpError{
			Op:   op,
			Kind: models.KindInvalidArgument,
			Msg:  fmt.Sprintf("unknown mode %q (want one of %v)", s, models.Modes),
		}
	}
	return mode, nil
}
