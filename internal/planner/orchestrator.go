package planner

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"lifecoach/coach-api/internal/domain"
	"lifecoach/coach-api/internal/llm"
)

// Source records which tier produced a plan.
type Source string

const (
	SourceLLM       Source = "llm"
	SourceLLMDirect Source = "llm_direct"
	SourceLocal     Source = "local_generation"
)

const (
	NoteDirect      = "Generated via direct API call"
	WarningFallback = "Used fallback plan due to API errors"
)

// DefaultAttemptTimeout bounds each networked tier.
const DefaultAttemptTimeout = 30 * time.Second

// Result is a plan plus its provenance, so the UI can disclose when quality
// was degraded.
type Result struct {
	Plan    *domain.FitnessPlan `json:"plan"`
	Source  Source              `json:"source"`
	Note    string              `json:"note,omitempty"`
	Warning string              `json:"warning,omitempty"`
}

// Tier pairs a provider with the annotations its successful results carry.
type Tier struct {
	Provider PlanProvider
	Source   Source
	Note     string
}

// Orchestrator tries each tier in order, once, and falls back to the local
// generator when all of them fail.
type Orchestrator struct {
	tiers    []Tier
	fallback LocalGenerator
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewOrchestrator builds an orchestrator. A non-positive timeout uses
// DefaultAttemptTimeout.
func NewOrchestrator(logger zerolog.Logger, timeout time.Duration, fallback LocalGenerator, tiers ...Tier) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultAttemptTimeout
	}
	return &Orchestrator{
		tiers:    tiers,
		fallback: fallback,
		timeout:  timeout,
		logger:   logger.With().Str("component", "plan_orchestrator").Logger(),
	}
}

// Timeout is the effective per-tier attempt timeout.
func (o *Orchestrator) Timeout() time.Duration { return o.timeout }

// NewDefaultOrchestrator wires the standard three tiers around an LLM client:
// structured call, direct call, rule-based generator.
func NewDefaultOrchestrator(logger zerolog.Logger, client *llm.Client, timeout time.Duration, directTemperature float64) *Orchestrator {
	return NewOrchestrator(logger, timeout, NewGenerator(),
		Tier{Provider: NewPrimaryProvider(client), Source: SourceLLM},
		Tier{Provider: NewDirectProvider(client, directTemperature, nil), Source: SourceLLMDirect, Note: NoteDirect},
	)
}

// ObtainPlan always returns a plan. Provider failures are logged and move on
// to the next tier; they are never returned to the caller.
func (o *Orchestrator) ObtainPlan(ctx context.Context, profile domain.FitnessProfile) Result {
	for _, tier := range o.tiers {
		plan, err := o.attempt(ctx, tier.Provider, profile)
		if err != nil {
			continue
		}
		planResults.WithLabelValues(string(tier.Source)).Inc()
		return Result{Plan: plan, Source: tier.Source, Note: tier.Note}
	}

	plan := o.fallback.Generate(profile)
	planResults.WithLabelValues(string(SourceLocal)).Inc()
	return Result{Plan: plan, Source: SourceLocal, Warning: WarningFallback}
}

func (o *Orchestrator) attempt(ctx context.Context, p PlanProvider, profile domain.FitnessProfile) (*domain.FitnessPlan, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	plan, err := p.Attempt(attemptCtx, profile)
	if err == nil && plan == nil {
		err = errors.New("provider returned no plan")
	}
	elapsed := time.Since(start)

	if err != nil {
		providerAttempts.WithLabelValues(p.Name(), "error").Observe(elapsed.Seconds())
		o.logFailure(ctx, p.Name(), elapsed, profile, err)
		return nil, err
	}

	providerAttempts.WithLabelValues(p.Name(), "ok").Observe(elapsed.Seconds())
	o.logger.Info().Ctx(ctx).Str("provider", p.Name()).Dur("elapsed", elapsed).Msg("plan provider succeeded")
	return plan, nil
}

func (o *Orchestrator) logFailure(ctx context.Context, provider string, elapsed time.Duration, profile domain.FitnessProfile, err error) {
	if errors.Is(err, llm.ErrNotConfigured) {
		o.logger.Warn().Ctx(ctx).Str("provider", provider).Msg("plan provider skipped: no API key configured")
		return
	}

	event := o.logger.Error().Ctx(ctx).
		Err(err).
		Str("provider", provider).
		Dur("elapsed", elapsed).
		Interface("profile", profile)

	var perr *llm.ProviderError
	if errors.As(err, &perr) {
		event = event.Int("status", perr.StatusCode).Str("response_body", perr.Body)
		if len(perr.Payload) > 0 {
			event = event.RawJSON("request_payload", perr.Payload)
		}
	}
	event.Msg("plan provider failed, falling through to next tier")
}
