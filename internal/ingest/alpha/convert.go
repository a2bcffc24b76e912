package alpha

import (
	"fmt"
	"slices"
	"strings"

	"github.com/claude/fitlog/internal/models"
	"golang.org/x/text/unicode/norm"
)

// Workouts converts parsed sessions into workouts, one per session. Each
// block becomes one exercise built from its working sets; warm-ups are
// dropped. Blocks without working sets are skipped, as are blocks equal to
// one already taken from the same session. Sessions left without exercises
// produce no workout.
func Workouts(sessions []Session) ([]*models.Workout, error) {
	var out []*models.Workout
	for _, s := range sessions {
		w, err := models.NewWorkout(normalizeName(s.Name))
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", s.Date.Format("2006-01-02"), err)
		}
		for _, b := range s.Blocks {
			e, err := blockExercise(b)
			if err != nil {
				return nil, fmt.Errorf("session %q exercise %d: %w", s.Name, b.Number, err)
			}
			if e == nil || slices.ContainsFunc(w.Exercises(), e.Equal) {
				continue
			}
			if err := w.AddExercise(e); err != nil {
				return nil, fmt.Errorf("session %q exercise %d: %w", s.Name, b.Number, err)
			}
		}
		if w.Len() > 0 {
			out = append(out, w)
		}
	}
	return out, nil
}

// blockExercise returns nil when b has no working sets.
func blockExercise(b Block) (*models.Exercise, error) {
	var setReps []models.SetReps
	var weight float64
	for _, set := range b.Sets {
		if set.IsWarmup {
			continue
		}
		sr, err := models.NewSetReps(len(setReps)+1, set.Reps)
		if err != nil {
			return nil, err
		}
		setReps = append(setReps, sr)
		weight = max(weight, set.WeightKg)
	}
	if len(setReps) == 0 {
		return nil, nil
	}
	return models.NewExercise(normalizeName(b.Name), len(setReps), setReps, b.TargetReps, weight, equipmentMode(b.Equipment))
}

// equipmentModes maps lowercased Alpha equipment labels to modes.
var equipmentModes = map[string]models.Mode{
	"barbell":       models.ModeBarbell,
	"barbells":      models.ModeBarbell,
	"ez bar":        models.ModeBarbell,
	"ez-bar":        models.ModeBarbell,
	"trap bar":      models.ModeBarbell,
	"dumbbell":      models.ModeDumbbell,
	"dumbbells":     models.ModeDumbbell,
	"kettlebell":    models.ModeDumbbell,
	"kettlebells":   models.ModeDumbbell,
	"cable":         models.ModeCable,
	"cables":        models.ModeCable,
	"cable machine": models.ModeCable,
	"band":          models.ModeCable,
	"bands":         models.ModeCable,
	"bodyweight":    models.ModeBodyweight,
	"body weight":   models.ModeBodyweight,
	"machine":       models.ModeMachine,
	"smith machine": models.ModeMachine,
	"plate loaded":  models.ModeMachine,
}

// equipmentMode maps an equipment label to a mode. Unknown or missing
// equipment counts as a machine.
func equipmentMode(equipment string) models.Mode {
	if m, ok := equipmentModes[strings.ToLower(strings.TrimSpace(equipment))]; ok {
		return m
	}
	return models.ModeMachine
}

func normalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
