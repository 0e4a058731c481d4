package planner

import (
	"context"
	"math/rand/v2"

	"lifecoach/coach-api/internal/domain"
	"lifecoach/coach-api/internal/llm"
)

// PlanProvider is one fallible way of obtaining a plan.
type PlanProvider interface {
	Name() string
	Attempt(ctx context.Context, profile domain.FitnessProfile) (*domain.FitnessPlan, error)
}

// LocalGenerator is the last tier. It cannot fail.
type LocalGenerator interface {
	Generate(profile domain.FitnessProfile) *domain.FitnessPlan
}

// StructuredCompleter is satisfied by *llm.Client.
type StructuredCompleter interface {
	CompleteJSON(ctx context.Context, req llm.JSONRequest) (llm.Completion, error)
}

// RawCompleter is satisfied by *llm.Client.
type RawCompleter interface {
	RawCompletion(ctx context.Context, prompt string, temperature float64) (llm.Completion, error)
}

// PrimaryProvider asks the LLM for a plan with the JSON schema enforced as
// the response format.
type PrimaryProvider struct {
	client StructuredCompleter
}

func NewPrimaryProvider(client StructuredCompleter) *PrimaryProvider {
	return &PrimaryProvider{client: client}
}

func (p *PrimaryProvider) Name() string { return "primary" }

func (p *PrimaryProvider) Attempt(ctx context.Context, profile domain.FitnessProfile) (*domain.FitnessPlan, error) {
	completion, err := p.client.CompleteJSON(ctx, llm.JSONRequest{
		System:            planSystemPrompt,
		Prompt:            BuildPlanPrompt(profile),
		SchemaName:        PlanSchemaName,
		SchemaDescription: "A personalised diet, workout, goal and weekly routine plan",
		Schema:            PlanSchema(),
	})
	if err != nil {
		return nil, err
	}
	plan, err := decodePlan(completion.Content)
	if err != nil {
		return nil, completion.Reject(err)
	}
	return plan, nil
}

// DirectProvider sends a plain prompt and pulls the JSON out of whatever text
// comes back.
type DirectProvider struct {
	client      RawCompleter
	temperature float64
	seed        func() int
}

// NewDirectProvider creates the direct tier. A nil seed uses a random number.
func NewDirectProvider(client RawCompleter, temperature float64, seed func() int) *DirectProvider {
	if seed == nil {
		seed = func() int { return rand.IntN(1_000_000) }
	}
	return &DirectProvider{client: client, temperature: temperature, seed: seed}
}

func (p *DirectProvider) Name() string { return "direct" }

func (p *DirectProvider) Attempt(ctx context.Context, profile domain.FitnessProfile) (*domain.FitnessPlan, error) {
	completion, err := p.client.RawCompletion(ctx, BuildDirectPrompt(profile, p.seed()), p.temperature)
	if err != nil {
		return nil, err
	}
	plan, err := decodePlan(StripCodeFences(completion.Content))
	if err != nil {
		return nil, completion.Reject(err)
	}
	return plan, nil
}
