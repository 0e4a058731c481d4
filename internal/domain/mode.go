package domain

// Mode is one of the coaching areas a user can work on.
type Mode string

const (
	ModeFitness         Mode = "fitness"
	ModeMentalWellbeing Mode = "mental_wellbeing"
	ModeCareer          Mode = "career"
	ModeFinance         Mode = "finance"
)

// Modes lists every supported mode in display order.
var Modes = []Mode{ModeFitness, ModeMentalWellbeing, ModeCareer, ModeFinance}

// Valid reports whether m is a supported mode.
func (m Mode) Valid() bool {
	for _, known := range Modes {
		if m == known {
			return true
		}
	}
	return false
}
