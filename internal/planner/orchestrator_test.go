package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifecoach/coach-api/internal/domain"
	"lifecoach/coach-api/internal/llm"
)

type fakeProvider struct {
	name  string
	plan  *domain.FitnessPlan
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Attempt(_ context.Context, _ domain.FitnessProfile) (*domain.FitnessPlan, error) {
	f.calls++
	return f.plan, f.err
}

type fakeStructured struct {
	content string
	err     error
	req     llm.JSONRequest
}

func (f *fakeStructured) CompleteJSON(_ context.Context, req llm.JSONRequest) (llm.Completion, error) {
	f.req = req
	if f.err != nil {
		return llm.Completion{}, f.err
	}
	return llm.Completion{Provider: "llm", StatusCode: http.StatusOK, Content: f.content, Payload: []byte(`{"model":"structured"}`)}, nil
}

type fakeRaw struct {
	text        string
	err         error
	prompt      string
	temperature float64
}

func (f *fakeRaw) RawCompletion(_ context.Context, prompt string, temperature float64) (llm.Completion, error) {
	f.prompt = prompt
	f.temperature = temperature
	if f.err != nil {
		return llm.Completion{}, f.err
	}
	return llm.Completion{Provider: "llm_direct", StatusCode: http.StatusOK, Content: f.text, Payload: []byte(`{"model":"raw"}`)}, nil
}

// logEntries decodes the JSON lines written by a zerolog logger.
func logEntries(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		entries = append(entries, entry)
	}
	return entries
}

func entryFor(t *testing.T, entries []map[string]any, provider string) map[string]any {
	t.Helper()
	for _, e := range entries {
		if e["provider"] == provider {
			return e
		}
	}
	require.Failf(t, "no log entry", "provider %q not logged", provider)
	return nil
}

func samplePlan(t *testing.T) *domain.FitnessPlan {
	t.Helper()
	return NewGenerator().Generate(domain.FitnessProfile{FitnessGoals: "muscle"})
}

func TestObtainPlanPrimarySucceeds(t *testing.T) {
	primary := &fakeProvider{name: "primary", plan: samplePlan(t)}
	direct := &fakeProvider{name: "direct", err: errors.New("should not be called")}

	o := NewOrchestrator(zerolog.Nop(), time.Second, NewGenerator(),
		Tier{Provider: primary, Source: SourceLLM},
		Tier{Provider: direct, Source: SourceLLMDirect, Note: NoteDirect},
	)
	res := o.ObtainPlan(context.Background(), domain.FitnessProfile{})

	assert.Equal(t, SourceLLM, res.Source)
	assert.Empty(t, res.Note)
	assert.Empty(t, res.Warning)
	assert.Same(t, primary.plan, res.Plan)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, direct.calls)
}

func TestObtainPlanFallsBackToDirect(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: &llm.ProviderError{Provider: "llm", StatusCode: 500, Body: "boom", Err: errors.New("server error")}}
	direct := &fakeProvider{name: "direct", plan: samplePlan(t)}

	o := NewOrchestrator(zerolog.Nop(), time.Second, NewGenerator(),
		Tier{Provider: primary, Source: SourceLLM},
		Tier{Provider: direct, Source: SourceLLMDirect, Note: NoteDirect},
	)
	res := o.ObtainPlan(context.Background(), domain.FitnessProfile{})

	assert.Equal(t, SourceLLMDirect, res.Source)
	assert.Equal(t, "Generated via direct API call", res.Note)
	assert.Empty(t, res.Warning)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, direct.calls)
}

func TestObtainPlanFallsBackToLocal(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("timeout")}
	direct := &fakeProvider{name: "direct", err: errors.New("not json")}

	profile := domain.FitnessProfile{FitnessLevel: "beginner", FitnessGoals: "lose weight"}
	o := NewOrchestrator(zerolog.Nop(), time.Second, NewGenerator(),
		Tier{Provider: primary, Source: SourceLLM},
		Tier{Provider: direct, Source: SourceLLMDirect, Note: NoteDirect},
	)
	res := o.ObtainPlan(context.Background(), profile)

	assert.Equal(t, SourceLocal, res.Source)
	assert.Equal(t, "Used fallback plan due to API errors", res.Warning)
	assert.Empty(t, res.Note)
	assert.Equal(t, NewGenerator().Generate(profile), res.Plan)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, direct.calls)
}

func TestObtainPlanTreatsNilPlanAsFailure(t *testing.T) {
	primary := &fakeProvider{name: "primary"}

	o := NewOrchestrator(zerolog.Nop(), time.Second, NewGenerator(), Tier{Provider: primary, Source: SourceLLM})
	res := o.ObtainPlan(context.Background(), domain.FitnessProfile{})

	assert.Equal(t, SourceLocal, res.Source)
	require.NotNil(t, res.Plan)
}

type slowProvider struct{}

func (slowProvider) Name() string { return "slow" }

func (slowProvider) Attempt(ctx context.Context, _ domain.FitnessProfile) (*domain.FitnessPlan, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestObtainPlanBoundsEachAttempt(t *testing.T) {
	o := NewOrchestrator(zerolog.Nop(), 20*time.Millisecond, NewGenerator(), Tier{Provider: slowProvider{}, Source: SourceLLM})

	start := time.Now()
	res := o.ObtainPlan(context.Background(), domain.FitnessProfile{})

	assert.Equal(t, SourceLocal, res.Source)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestOrchestratorTimeoutDefaults(t *testing.T) {
	for _, timeout := range []time.Duration{0, -time.Second} {
		o := NewOrchestrator(zerolog.Nop(), timeout, NewGenerator())
		assert.Equal(t, DefaultAttemptTimeout, o.Timeout())
	}
	assert.Equal(t, 5*time.Second, NewOrchestrator(zerolog.Nop(), 5*time.Second, NewGenerator()).Timeout())
}

func TestDefaultOrchestratorWithoutAPIKey(t *testing.T) {
	client := llm.NewClient(llm.Config{BaseURL: "http://127.0.0.1:1", Model: "test"}, nil, zerolog.Nop())
	o := NewDefaultOrchestrator(zerolog.Nop(), client, time.Second, 0.7)

	res := o.ObtainPlan(context.Background(), domain.FitnessProfile{FitnessLevel: "advanced"})

	assert.Equal(t, SourceLocal, res.Source)
	assert.Equal(t, WarningFallback, res.Warning)
	assert.Equal(t, "Challenging Strength Training", res.Plan.Workouts[0].Name)
}

func TestPrimaryProvider(t *testing.T) {
	valid := `{"diet":{"type":"Balanced","meals":[{"name":"Breakfast","description":"Oats","time":"Morning"}],"recommendations":[],"restrictions":[]},
"workouts":[{"name":"Strength","description":"","duration":"45 minutes","exercises":[{"name":"Squats","sets":3,"reps":"10","notes":""}]}],
"goals":{"short_term":[],"long_term":[],"metrics":{"weekly_workouts":4}},
"weekly_routine":{"monday":{},"tuesday":{},"wednesday":{},"thursday":{},"friday":{},"saturday":{},"sunday":{}}}`

	t.Run("decodes structured content", func(t *testing.T) {
		client := &fakeStructured{content: valid}
		plan, err := NewPrimaryProvider(client).Attempt(context.Background(), domain.FitnessProfile{Injuries: "knee"})
		require.NoError(t, err)
		assert.Equal(t, domain.FlexString("3"), plan.Workouts[0].Exercises[0].Sets)
		assert.Equal(t, domain.FlexString("4"), plan.Goals.Metrics["weekly_workouts"])
		assert.Equal(t, PlanSchemaName, client.req.SchemaName)
		assert.Contains(t, client.req.Prompt, "- Injuries: knee")
		assert.NotEmpty(t, client.req.Schema)
	})

	t.Run("rejects plan without weekdays", func(t *testing.T) {
		client := &fakeStructured{content: `{"diet":{"meals":[{"name":"x"}]},"workouts":[{"name":"y"}],"weekly_routine":{"monday":{}}}`}
		_, err := NewPrimaryProvider(client).Attempt(context.Background(), domain.FitnessProfile{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tuesday")
	})

	t.Run("passes client error through", func(t *testing.T) {
		client := &fakeStructured{err: llm.ErrNotConfigured}
		_, err := NewPrimaryProvider(client).Attempt(context.Background(), domain.FitnessProfile{})
		assert.ErrorIs(t, err, llm.ErrNotConfigured)
	})
}

func TestDirectProvider(t *testing.T) {
	plan := samplePlan(t)
	planJSON := mustJSON(t, plan)

	t.Run("strips fences", func(t *testing.T) {
		client := &fakeRaw{text: "```json\n" + planJSON + "\n```"}
		got, err := NewDirectProvider(client, 0.7, func() int { return 42 }).Attempt(context.Background(), domain.FitnessProfile{})
		require.NoError(t, err)
		assert.Equal(t, plan, got)
		assert.Contains(t, client.prompt, "variation 42")
		assert.InDelta(t, 0.7, client.temperature, 1e-9)
	})

	t.Run("non json is an error", func(t *testing.T) {
		client := &fakeRaw{text: "Sure! Here is your plan: lift things."}
		_, err := NewDirectProvider(client, 0.7, nil).Attempt(context.Background(), domain.FitnessProfile{})
		assert.Error(t, err)
	})
}

func TestPrimaryFailsDirectReturnsGarbage(t *testing.T) {
	structured := &fakeStructured{err: &llm.ProviderError{Provider: "llm", StatusCode: 429, Err: errors.New("rate limited")}}
	raw := &fakeRaw{text: "not json at all"}

	o := NewOrchestrator(zerolog.Nop(), time.Second, NewGenerator(),
		Tier{Provider: NewPrimaryProvider(structured), Source: SourceLLM},
		Tier{Provider: NewDirectProvider(raw, 0.7, nil), Source: SourceLLMDirect, Note: NoteDirect},
	)
	res := o.ObtainPlan(context.Background(), domain.FitnessProfile{})

	assert.Equal(t, SourceLocal, res.Source)
	assert.Equal(t, WarningFallback, res.Warning)
	require.NoError(t, res.Plan.Validate())
}

func TestDirectProviderRejectionCarriesContext(t *testing.T) {
	client := &fakeRaw{text: "Sure! Here is your plan: lift things."}
	_, err := NewDirectProvider(client, 0.7, nil).Attempt(context.Background(), domain.FitnessProfile{})

	var perr *llm.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusOK, perr.StatusCode)
	assert.Equal(t, "Sure! Here is your plan: lift things.", perr.Body)
	assert.JSONEq(t, `{"model":"raw"}`, string(perr.Payload))
}

func TestObtainPlanLogsFailureContext(t *testing.T) {
	var buf bytes.Buffer
	structured := &fakeStructured{err: &llm.ProviderError{
		Provider:   "llm",
		StatusCode: http.StatusServiceUnavailable,
		Body:       "upstream down",
		Payload:    []byte(`{"model":"structured"}`),
		Err:        errors.New("service unavailable"),
	}}
	raw := &fakeRaw{text: "Sure! Here is your plan"}

	o := NewOrchestrator(zerolog.New(&buf), time.Second, NewGenerator(),
		Tier{Provider: NewPrimaryProvider(structured), Source: SourceLLM},
		Tier{Provider: NewDirectProvider(raw, 0.7, nil), Source: SourceLLMDirect, Note: NoteDirect},
	)
	res := o.ObtainPlan(context.Background(), domain.FitnessProfile{FitnessGoals: "tone"})
	require.Equal(t, SourceLocal, res.Source)

	entries := logEntries(t, &buf)

	primary := entryFor(t, entries, "primary")
	assert.Equal(t, "error", primary["level"])
	assert.EqualValues(t, http.StatusServiceUnavailable, primary["status"])
	assert.Equal(t, "upstream down", primary["response_body"])
	assert.Equal(t, map[string]any{"model": "structured"}, primary["request_payload"])
	assert.Equal(t, map[string]any{"fitnessGoals": "tone"}, primary["profile"])

	direct := entryFor(t, entries, "direct")
	assert.Equal(t, "error", direct["level"])
	assert.EqualValues(t, http.StatusOK, direct["status"])
	assert.Equal(t, "Sure! Here is your plan", direct["response_body"])
	assert.Equal(t, map[string]any{"model": "raw"}, direct["request_payload"])
	assert.Contains(t, direct["error"], "parse plan json")
}

func TestDefaultOrchestratorLogsUnparseableModelText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1700000000,"model":"test-model",`+
			`"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Sure! I would love to help you get fit."}}],`+
			`"usage":{"prompt_tokens":1,"completion_tokens":1,"total_tokens":2}}`)
	}))
	t.Cleanup(srv.Close)

	var buf bytes.Buffer
	client := llm.NewClient(llm.Config{BaseURL: srv.URL, APIKey: "key", Model: "test-model"}, srv.Client(), zerolog.Nop())
	o := NewDefaultOrchestrator(zerolog.New(&buf), client, 5*time.Second, 0.7)

	res := o.ObtainPlan(context.Background(), domain.FitnessProfile{})
	assert.Equal(t, SourceLocal, res.Source)

	entries := logEntries(t, &buf)
	for _, provider := range []string{"primary", "direct"} {
		entry := entryFor(t, entries, provider)
		assert.Equal(t, "error", entry["level"], provider)
		assert.EqualValues(t, http.StatusOK, entry["status"], provider)
		assert.Equal(t, "Sure! I would love to help you get fit.", entry["response_body"], provider)
		payload, ok := entry["request_payload"].(map[string]any)
		require.True(t, ok, provider)
		assert.Equal(t, "test-model", payload["model"], provider)
	}
}

func TestDefaultOrchestratorWarnsWithoutAPIKey(t *testing.T) {
	var buf bytes.Buffer
	client := llm.NewClient(llm.Config{BaseURL: "http://127.0.0.1:1", Model: "test"}, nil, zerolog.Nop())
	o := NewDefaultOrchestrator(zerolog.New(&buf), client, time.Second, 0.7)

	o.ObtainPlan(context.Background(), domain.FitnessProfile{})

	entries := logEntries(t, &buf)
	for _, provider := range []string{"primary", "direct"} {
		entry := entryFor(t, entries, provider)
		assert.Equal(t, "warn", entry["level"], provider)
		assert.NotContains(t, entry, "request_payload", provider)
	}
}
