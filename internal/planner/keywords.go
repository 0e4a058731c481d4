package planner

// rule sets one flag on Signals when pattern occurs in the scanned text.
// Tables are evaluated top to bottom; order is part of the behaviour.
type rule struct {
	pattern string
	set     func(*Signals)
}

// Scanned against the lower-cased injuries field.
var injuryRules = []rule{
	{"knee", func(s *Signals) { s.KneeIssues = true }},
	{"back", func(s *Signals) { s.BackIssues = true }},
	{"joint", func(s *Signals) { s.JointIssues = true }},
}

// Scanned against the lower-cased healthConditions field.
var healthRules = []rule{
	{"asthma", func(s *Signals) { s.Asthma = true }},
	{"gut", func(s *Signals) { s.GutIssues = true }},
}

// Scanned against the lower-cased fitnessGoals field. Flags are independent.
var goalRules = []rule{
	{"muscle", func(s *Signals) { s.MuscleBuild = true }},
	{"strength", func(s *Signals) { s.MuscleBuild = true }},
	{"weight", func(s *Signals) { s.WeightLoss = true }},
	{"fat", func(s *Signals) { s.WeightLoss = true }},
	{"endurance", func(s *Signals) { s.Endurance = true }},
	{"cardio", func(s *Signals) { s.Endurance = true }},
}

// Scanned against the lower-cased dislikedActivities field.
var dislikeRules = []rule{
	{"cycl", func(s *Signals) { s.AvoidCycling = true }},
	{"run", func(s *Signals) { s.AvoidRunning = true }},
	{"swim", func(s *Signals) { s.AvoidSwimming = true }},
}

type exerciseKeyword struct {
	pattern  string
	exercise string
}

// favoredVocabulary is scanned in this order against preferredActivities, so
// the resulting list follows vocabulary order rather than the user's wording.
var favoredVocabulary = []exerciseKeyword{
	{"push", "Push-ups"},
	{"pull", "Pull-ups"},
	{"squat", "Squats"},
	{"calv", "Calf Raises"},
	{"shoulder", "Shoulder Press"},
	{"back", "Rows"},
}

// defaultFavored is used when nothing in preferredActivities matched.
var defaultFavored = []string{"Push-ups", "Body-weight Squats", "Dumbbell Rows"}
