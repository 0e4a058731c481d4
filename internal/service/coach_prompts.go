package service

import "lifecoach/coach-api/internal/domain"

const coachPreamble = "You are a warm, practical life coach. Keep answers short and concrete, " +
	"ask one follow-up question when it helps, and never give medical, legal or investment advice " +
	"beyond general guidance. "

var coachPrompts = map[domain.Mode]string{
	domain.ModeFitness: coachPreamble +
		"You are coaching the user on fitness, training and nutrition. Respect any injuries or health " +
		"conditions they mention and suggest safer alternatives.",
	domain.ModeMentalWellbeing: coachPreamble +
		"You are coaching the user on mental wellbeing: stress, sleep, habits and mindset. If the user " +
		"mentions self-harm or a crisis, encourage them to contact local emergency services or a helpline.",
	domain.ModeCareer: coachPreamble +
		"You are coaching the user on their career: goals, job search, skills and workplace situations.",
	domain.ModeFinance: coachPreamble +
		"You are coaching the user on personal finance: budgeting, saving and reducing debt.",
}

// coachSystemPrompt returns the system prompt for a mode, with the user's
// profile and active goals appended when known.
func coachSystemPrompt(mode domain.Mode, profile *domain.Profile, goals []domain.Goal) string {
	prompt, ok := coachPrompts[mode]
	if !ok {
		prompt = coachPreamble
	}
	if profile != nil && len(profile.Data) > 0 {
		prompt += "\n\nWhat the user told us about themselves:"
		for _, key := range sortedKeys(profile.Data) {
			prompt += "\n- " + key + ": " + formatValue(profile.Data[key])
		}
	}
	if len(goals) > 0 {
		prompt += "\n\nThe user's active goals:"
		for _, g := range goals {
			prompt += "\n- " + g.Title
		}
	}
	return prompt
}
