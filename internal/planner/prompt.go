package planner

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"lifecoach/coach-api/internal/domain"
)

const planSystemPrompt = `You are an experienced personal trainer and nutrition coach.
You create safe, practical fitness plans tailored to the client's profile.
Respect every injury, health condition and dietary restriction the client reports.
All sets and reps values must be strings.`

// PlanSchemaName names the JSON schema sent with structured requests.
const PlanSchemaName = "fitness_plan"

func stringSchema() map[string]any { return map[string]any{"type": "string"} }

func stringArraySchema() map[string]any {
	return map[string]any{"type": "array", "items": stringSchema()}
}

func objectSchema(props map[string]any) map[string]any {
	required := make([]string, 0, len(props))
	for name := range props {
		required = append(required, name)
	}
	slices.Sort(required)
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

// PlanSchema returns the JSON schema every LLM-produced plan must follow.
// The seven weekday keys of weekly_routine are mandatory.
func PlanSchema() map[string]any {
	meal := objectSchema(map[string]any{
		"name":        stringSchema(),
		"description": stringSchema(),
		"time":        stringSchema(),
	})
	exercise := objectSchema(map[string]any{
		"name":  stringSchema(),
		"sets":  stringSchema(),
		"reps":  stringSchema(),
		"notes": stringSchema(),
	})
	workout := objectSchema(map[string]any{
		"name":        stringSchema(),
		"description": stringSchema(),
		"duration":    stringSchema(),
		"exercises":   map[string]any{"type": "array", "items": exercise},
	})
	day := objectSchema(map[string]any{
		"workouts":  stringArraySchema(),
		"nutrition": stringSchema(),
		"recovery":  stringSchema(),
	})
	days := make(map[string]any, len(domain.Weekdays))
	for _, d := range domain.Weekdays {
		days[d] = day
	}

	return objectSchema(map[string]any{
		"diet": objectSchema(map[string]any{
			"type":            stringSchema(),
			"meals":           map[string]any{"type": "array", "items": meal},
			"recommendations": stringArraySchema(),
			"restrictions":    stringArraySchema(),
		}),
		"workouts": map[string]any{"type": "array", "items": workout},
		"goals": objectSchema(map[string]any{
			"short_term": stringArraySchema(),
			"long_term":  stringArraySchema(),
			"metrics": map[string]any{
				"type":                 "object",
				"additionalProperties": stringSchema(),
			},
		}),
		"weekly_routine": objectSchema(days),
	})
}

// planExample is the shape shown to the model on the direct call, where no
// response format can be enforced.
const planExample = `{
  "diet": {
    "type": "string",
    "meals": [{"name": "string", "description": "string", "time": "string"}],
    "recommendations": ["string"],
    "restrictions": ["string"]
  },
  "workouts": [{
    "name": "string",
    "description": "string",
    "duration": "string",
    "exercises": [{"name": "string", "sets": "string", "reps": "string", "notes": "string"}]
  }],
  "goals": {"short_term": ["string"], "long_term": ["string"], "metrics": {"key": "string"}},
  "weekly_routine": {
    "monday": {"workouts": ["string"], "nutrition": "string", "recovery": "string"},
    "tuesday": {"workouts": ["string"], "nutrition": "string", "recovery": "string"},
    "wednesday": {"workouts": ["string"], "nutrition": "string", "recovery": "string"},
    "thursday": {"workouts": ["string"], "nutrition": "string", "recovery": "string"},
    "friday": {"workouts": ["string"], "nutrition": "string", "recovery": "string"},
    "saturday": {"workouts": ["string"], "nutrition": "string", "recovery": "string"},
    "sunday": {"workouts": ["string"], "nutrition": "string", "recovery": "string"}
  }
}`

func describeProfile(p domain.FitnessProfile) string {
	field := func(v domain.FlexString) string {
		if strings.TrimSpace(v.String()) == "" {
			return noneSpecified
		}
		return v.String()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "- Age: %s\n", field(p.Age))
	fmt.Fprintf(&b, "- Gender: %s\n", field(p.Gender))
	fmt.Fprintf(&b, "- Height: %s\n", field(p.Height))
	fmt.Fprintf(&b, "- Weight: %s\n", field(p.Weight))
	fmt.Fprintf(&b, "- Fitness level: %s\n", field(p.FitnessLevel))
	fmt.Fprintf(&b, "- Fitness goals: %s\n", field(p.FitnessGoals))
	fmt.Fprintf(&b, "- Health conditions: %s\n", field(p.HealthConditions))
	fmt.Fprintf(&b, "- Dietary restrictions: %s\n", field(p.DietaryRestrictions))
	fmt.Fprintf(&b, "- Injuries: %s\n", field(p.Injuries))
	fmt.Fprintf(&b, "- Preferred activities: %s\n", field(p.PreferredActivities))
	fmt.Fprintf(&b, "- Disliked activities: %s\n", field(p.DislikedActivities))
	fmt.Fprintf(&b, "- Available equipment: %s\n", field(p.AvailableEquipment))
	fmt.Fprintf(&b, "- Time commitment: %s\n", field(p.TimeCommitment))
	fmt.Fprintf(&b, "- Additional information: %s\n", field(p.AdditionalInfo))
	return b.String()
}

// BuildPlanPrompt is the user prompt of the structured call.
func BuildPlanPrompt(p domain.FitnessProfile) string {
	return "Create a personalised fitness plan for this client:\n" +
		describeProfile(p) +
		"\nInclude a diet with meals, recommendations and restrictions, a list of workouts with " +
		"exercises, short and long term goals with tracking metrics, and a weekly routine with " +
		"an entry for every day from monday to sunday."
}

// BuildDirectPrompt is the prompt of the direct call. The seed only nudges
// the model towards a fresh answer.
func BuildDirectPrompt(p domain.FitnessProfile, seed int) string {
	return fmt.Sprintf("Create a unique personalised fitness plan (variation %d) for this client:\n%s\n"+
		"Respond with ONLY a JSON object, no explanation and no markdown, using exactly this structure:\n%s\n"+
		"All seven weekdays must be present in weekly_routine and sets/reps must be strings.",
		seed, describeProfile(p), planExample)
}

// StripCodeFences removes Markdown code fences (```json and ```) that models
// like to wrap JSON in.
func StripCodeFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```JSON", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// decodePlan parses model output into a plan and checks its structure.
func decodePlan(content string) (*domain.FitnessPlan, error) {
	var plan domain.FitnessPlan
	if err := json.Unmarshal([]byte(content), &plan); err != nil {
		return nil, fmt.Errorf("parse plan json: %w", err)
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}
	return &plan, nil
}
