package planner

import (
	"fmt"
	"strings"

	"lifecoach/coach-api/internal/domain"
)

const recoveryWorkoutName = "Recovery and Mobility"

// Generator builds fitness plans from keyword rules over the intake form.
// It performs no I/O and holds no state, so the zero value is ready to use
// and safe for concurrent calls.
type Generator struct{}

// NewGenerator returns a rule-based plan generator.
func NewGenerator() *Generator { return &Generator{} }

// Generate always returns a complete plan: three meals, three workouts and
// all seven weekdays.
func (g *Generator) Generate(profile domain.FitnessProfile) *domain.FitnessPlan {
	s := Intake(profile)

	strengthName := strengthWorkoutName(s)
	cardioName := cardioWorkoutName(s)

	return &domain.FitnessPlan{
		Diet:          buildDiet(s),
		Workouts:      buildWorkouts(s, strengthName, cardioName),
		Goals:         buildGoals(s),
		WeeklyRoutine: buildWeeklyRoutine(strengthName, cardioName),
	}
}

func strengthWorkoutName(s Signals) string {
	return capitalize(s.Intensity) + " Strength Training"
}

func cardioWorkoutName(s Signals) string {
	if s.Endurance {
		return "Endurance Workout"
	}
	return "Cardio Workout"
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}

func buildDiet(s Signals) domain.Diet {
	restrictions := []string{}
	if s.Restriction != "" {
		restrictions = append(restrictions, s.Restriction)
	}
	if len(restrictions) == 0 {
		restrictions = []string{noneSpecified}
	}

	recommendations := []string{
		"Maintain consistent meal timing",
		"Stay hydrated throughout the day",
	}
	if s.GutIssues {
		recommendations = append(recommendations,
			"Focus on easily digestible foods",
			"Include probiotics in your diet")
	}
	if s.Asthma {
		recommendations = append(recommendations,
			"Include anti-inflammatory foods",
			"Monitor your breathing during workouts")
	}

	dietType := s.DietType()
	meals := []domain.Meal{
		{
			Name:        "Breakfast",
			Description: pick(s.MuscleBuild, "High-protein", "Balanced") + " breakfast with whole grains, fruit and a source of lean protein",
			Time:        "Morning",
		},
		{
			Name:        "Lunch",
			Description: fmt.Sprintf("%s lunch with lean protein, vegetables and complex carbohydrates%s", dietType, pick(s.WeightLoss, ", keeping portions moderate", "")),
			Time:        "Midday",
		},
		{
			Name:        "Dinner",
			Description: fmt.Sprintf("Light dinner with %s vegetables and a lean protein", pick(s.GutIssues, "easily digestible", "diverse")),
			Time:        "Evening",
		},
	}

	return domain.Diet{
		Type:            dietType,
		Meals:           meals,
		Recommendations: recommendations,
		Restrictions:    restrictions,
	}
}

func buildWorkouts(s Signals, strengthName, cardioName string) []domain.Workout {
	sets, reps := domain.FlexString("3"), domain.FlexString("10-12")
	if s.MuscleBuild {
		sets, reps = "4", "8-10"
	}

	first, second := "Push-ups", "Squats"
	if len(s.FavoredExercises) > 0 {
		first = s.FavoredExercises[0]
	}
	if len(s.FavoredExercises) > 1 {
		second = s.FavoredExercises[1]
	}

	strength := domain.Workout{
		Name:        strengthName,
		Description: pick(s.MuscleBuild, "Strength session focused on progressive overload for muscle growth", "Full-body strength session to build functional strength"),
		Duration:    "45 minutes",
		Exercises: []domain.Exercise{
			{
				Name:  first,
				Sets:  sets,
				Reps:  reps,
				Notes: pick(s.JointIssues, "Use a modified version and stay within a pain-free range of motion", "Keep a controlled tempo on every rep"),
			},
			{
				Name:  second,
				Sets:  sets,
				Reps:  reps,
				Notes: pick(s.KneeIssues, "Limit the depth and stop if your knees hurt; hold a chair for support", "Keep your chest up and weight in your heels"),
			},
			{
				Name:  "Plank",
				Sets:  "3",
				Reps:  "30-45 seconds",
				Notes: pick(s.BackIssues, "Keep a neutral spine and drop to your knees if your lower back strains", "Brace your core and keep a straight line from head to heels"),
			},
		},
	}

	cardio := domain.Workout{
		Name:        cardioName,
		Description: pick(s.Endurance, "Sustained aerobic work to build stamina", "Heart-rate raising session for cardiovascular health"),
		Duration:    "30 minutes",
		Exercises: []domain.Exercise{
			{
				Name:  pick(s.AvoidRunning, "Brisk Walking", "Interval Running"),
				Sets:  "1",
				Reps:  "20 minutes",
				Notes: pick(s.KneeIssues, "Stay on flat, even surfaces to reduce impact on your knees", "Keep a pace where you can still speak in short sentences"),
			},
			{
				Name:  pick(s.AvoidCycling, "Elliptical Trainer", "Stationary Bike"),
				Sets:  "1",
				Reps:  "10 minutes",
				Notes: pick(s.Asthma, "Keep the effort moderate and have your inhaler nearby", "Raise the resistance gradually once you are warm"),
			},
		},
	}

	recovery := domain.Workout{
		Name:        recoveryWorkoutName,
		Description: "Low-intensity session to support recovery and flexibility",
		Duration:    "20 minutes",
		Exercises: []domain.Exercise{
			{
				Name:  "Full-body Stretching",
				Sets:  "1",
				Reps:  "10 minutes",
				Notes: "Hold each stretch for 20-30 seconds without bouncing",
			},
			{
				Name:  "Foam Rolling",
				Sets:  "1",
				Reps:  "5-10 minutes",
				Notes: pick(s.BackIssues, "Avoid rolling directly on the lower back; work the hips and upper back instead", "Spend extra time on tight areas"),
			},
		},
	}

	return []domain.Workout{strength, cardio, recovery}
}

func buildGoals(s Signals) domain.PlanGoals {
	weekly := s.WeeklyWorkouts()

	shortTerm := []string{fmt.Sprintf("Complete %s workouts per week for the next 4 weeks", weekly)}
	if s.MuscleBuild {
		shortTerm = append(shortTerm, "Add reps or load to your main strength exercises each week")
	}
	if s.WeightLoss {
		shortTerm = append(shortTerm, "Build a consistent, calorie-aware eating routine")
	}
	if s.Endurance {
		shortTerm = append(shortTerm, "Add 5 minutes to your longest cardio session each week")
	}
	shortTerm = append(shortTerm, "Drink at least 2 liters of water every day")

	var longTerm []string
	if s.MuscleBuild {
		longTerm = append(longTerm, "Build noticeable muscle and strength over the next 3 months")
	}
	if s.WeightLoss {
		longTerm = append(longTerm, "Reach a healthy weight through steady, sustainable fat loss")
	}
	if s.Endurance {
		longTerm = append(longTerm, "Complete 45 minutes of continuous cardio comfortably")
	}
	if s.KneeIssues || s.BackIssues || s.JointIssues {
		longTerm = append(longTerm, "Strengthen the muscles that support your joints and back")
	}
	longTerm = append(longTerm, "Make regular exercise a lasting habit")

	tracking := "Log each completed workout"
	if s.MuscleBuild {
		tracking = "Log weights and reps for each strength session"
	}
	if s.WeightLoss {
		tracking = "Weekly weigh-ins and waist measurements"
	}

	return domain.PlanGoals{
		ShortTerm: shortTerm,
		LongTerm:  longTerm,
		Metrics: map[string]domain.FlexString{
			"weekly_workouts":   domain.FlexString(weekly),
			"recovery_days":     domain.FlexString(s.RecoveryDays()),
			"intensity":         domain.FlexString(s.Intensity),
			"progress_tracking": domain.FlexString(tracking),
		},
	}
}

func buildWeeklyRoutine(strengthName, cardioName string) map[string]domain.DayRoutine {
	return map[string]domain.DayRoutine{
		"monday": {
			Workouts:  []string{strengthName},
			Nutrition: "Protein-rich meal within an hour after training",
			Recovery:  "5 minutes of light stretching before bed",
		},
		"tuesday": {
			Workouts:  []string{cardioName},
			Nutrition: "Complex carbohydrates a few hours before your session",
			Recovery:  "10 minutes of foam rolling",
		},
		"wednesday": {
			Workouts:  []string{recoveryWorkoutName},
			Nutrition: "Balanced meals with plenty of vegetables",
			Recovery:  "Prioritise 7-9 hours of sleep",
		},
		"thursday": {
			Workouts:  []string{strengthName},
			Nutrition: "Protein-rich meal within an hour after training",
			Recovery:  "5 minutes of light stretching before bed",
		},
		"friday": {
			Workouts:  []string{cardioName},
			Nutrition: "Stay well hydrated before and after your session",
			Recovery:  "10 minutes of foam rolling",
		},
		"saturday": {
			Workouts:  []string{recoveryWorkoutName},
			Nutrition: "Balanced meals; a planned treat is fine",
			Recovery:  "Easy walk outdoors",
		},
		"sunday": {
			Workouts:  []string{"Rest"},
			Nutrition: "Prepare meals for the coming week",
			Recovery:  "Full rest day",
		},
	}
}
