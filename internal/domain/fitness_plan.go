package domain

import (
	"errors"
	"fmt"
)

// Weekdays are the mandatory keys of FitnessPlan.WeeklyRoutine, in order.
var Weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

var (
	ErrPlanMissingMeals    = errors.New("plan has no meals")
	ErrPlanMissingWorkouts = errors.New("plan has no workouts")
)

// Meal is one entry of the daily meal pattern.
type Meal struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Time        string `json:"time"`
}

// Diet groups meal guidance for a plan.
type Diet struct {
	Type            string   `json:"type"`
	Meals           []Meal   `json:"meals"`
	Recommendations []string `json:"recommendations"`
	Restrictions    []string `json:"restrictions"`
}

// Exercise is a single movement inside a Workout. Sets and reps are text on
// the wire ("3", "10-12", "30 seconds").
type Exercise struct {
	Name  string     `json:"name"`
	Sets  FlexString `json:"sets"`
	Reps  FlexString `json:"reps"`
	Notes string     `json:"notes"`
}

// Workout is a named training session.
type Workout struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Duration    string     `json:"duration"`
	Exercises   []Exercise `json:"exercises"`
}

// PlanGoals are the targets and tracking metrics of a plan.
type PlanGoals struct {
	ShortTerm []string              `json:"short_term"`
	LongTerm  []string              `json:"long_term"`
	Metrics   map[string]FlexString `json:"metrics"`
}

// DayRoutine is the schedule for one weekday.
type DayRoutine struct {
	Workouts  []string `json:"workouts"`
	Nutrition string   `json:"nutrition"`
	Recovery  string   `json:"recovery"`
}

// FitnessPlan is a complete diet, training and weekly schedule
// recommendation. It is built fresh per request and never mutated after.
type FitnessPlan struct {
	Diet          Diet                  `json:"diet"`
	Workouts      []Workout             `json:"workouts"`
	Goals         PlanGoals             `json:"goals"`
	WeeklyRoutine map[string]DayRoutine `json:"weekly_routine"`
}

// Validate checks the structural contract of a plan: meals and workouts
// present and every weekday key filled in. Plans coming back from an LLM are
// rejected with this before they reach a caller.
func (p *FitnessPlan) Validate() error {
	if p == nil {
		return errors.New("plan is nil")
	}
	if len(p.Diet.Meals) == 0 {
		return ErrPlanMissingMeals
	}
	if len(p.Workouts) == 0 {
		return ErrPlanMissingWorkouts
	}
	for _, day := range Weekdays {
		if _, ok := p.WeeklyRoutine[day]; !ok {
			return fmt.Errorf("weekly routine is missing %q", day)
		}
	}
	return nil
}
