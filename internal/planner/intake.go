package planner

import (
	"strings"

	"lifecoach/coach-api/internal/domain"
)

// Workout intensities derived from the fitness level.
const (
	IntensityLight       = "light"
	IntensityModerate    = "moderate"
	IntensityChallenging = "challenging"
)

// noneSpecified is what the web form sends when a field was left untouched.
const noneSpecified = "None specified"

// Signals is everything the rule-based generator reads from a profile,
// resolved once from the free-text fields.
type Signals struct {
	Intensity string

	KneeIssues  bool
	BackIssues  bool
	JointIssues bool
	Asthma      bool
	GutIssues   bool

	MuscleBuild bool
	WeightLoss  bool
	Endurance   bool

	AvoidCycling  bool
	AvoidRunning  bool
	AvoidSwimming bool // not used by any template yet

	FavoredExercises []string

	// Restriction is the dietary restriction text to carry over verbatim, or
	// empty when the user gave none.
	Restriction    string
	TimeCommitment string
}

// Intake resolves the keyword signals of a profile. It never fails; missing
// fields leave their flags false.
func Intake(p domain.FitnessProfile) Signals {
	s := Signals{Intensity: IntensityModerate}

	// fitnessLevel is matched exactly; a later match wins.
	if p.FitnessLevel == "beginner" {
		s.Intensity = IntensityLight
	}
	if p.FitnessLevel == "advanced" {
		s.Intensity = IntensityChallenging
	}

	applyRules(p.Injuries.Lower(), injuryRules, &s)
	applyRules(p.HealthConditions.Lower(), healthRules, &s)
	applyRules(p.FitnessGoals.Lower(), goalRules, &s)
	applyRules(p.DislikedActivities.Lower(), dislikeRules, &s)

	s.FavoredExercises = favoredExercises(p.PreferredActivities.Lower())

	if r := p.DietaryRestrictions.String(); r != "" && r != noneSpecified {
		s.Restriction = r
	}
	s.TimeCommitment = p.TimeCommitment.String()
	return s
}

func applyRules(text string, rules []rule, s *Signals) {
	if text == "" {
		return
	}
	for _, r := range rules {
		if strings.Contains(text, r.pattern) {
			r.set(s)
		}
	}
}

func favoredExercises(preferred string) []string {
	var favored []string
	for _, kw := range favoredVocabulary {
		if preferred != "" && strings.Contains(preferred, kw.pattern) {
			favored = append(favored, kw.exercise)
		}
	}
	if len(favored) == 0 {
		return append([]string(nil), defaultFavored...)
	}
	return favored
}

// DietType resolves the diet label. Weight loss overrides muscle building
// when both goals are present; the gut-friendly suffix applies on top of
// whichever base was chosen.
func (s Signals) DietType() string {
	dietType := "Balanced"
	if s.MuscleBuild {
		dietType = "High-Protein"
	}
	if s.WeightLoss {
		dietType = "Calorie-Deficit"
	}
	if s.GutIssues {
		dietType += " with Gut-Friendly Foods"
	}
	return dietType
}

// WeeklyWorkouts is the target session count per week.
func (s Signals) WeeklyWorkouts() string {
	if strings.Contains(s.TimeCommitment, "5-6") {
		return "5-6"
	}
	return "3-4"
}

// RecoveryDays is the recommended number of rest days per week.
func (s Signals) RecoveryDays() string {
	if s.JointIssues || s.BackIssues {
		return "2-3"
	}
	return "1-2"
}
