package models

import "strings"

// Mode is the equipment category of an exercise.
type Mode string

const (
	ModeBarbell    Mode = "BARBELL"
	ModeDumbbell   Mode = "DUMBBELL"
	ModeCable      Mode = "CABLE"
	ModeBodyweight Mode = "BODYWEIGHT"
	ModeMachine    Mode = "MACHINE"
)

// Modes lists every valid mode in declaration order.
var Modes = []Mode{ModeBarbell, ModeDumbbell, ModeCable, ModeBodyweight, ModeMachine}

// Valid reports whether m is one of the declared modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeBarbell, ModeDumbbell, ModeCable, ModeBodyweight, ModeMachine:
		return true
	}
	return false
}

func (m Mode) String() string { return string(m) }

// ParseMode accepts one of the mode names, case-insensitively.
func ParseMode(s string) (Mode, bool) {
	m := Mode(strings.ToUpper(s))
	if !m.Valid() {
		return "", false
	}
	return m, true
}
