package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:     srv.URL,
		APIKey:      "test-key",
		Model:       "test-model",
		MaxTokens:   512,
		Temperature: 0.2,
		SiteURL:     "https://coach.example",
		AppName:     "Life Coach",
	}, srv.Client(), zerolog.Nop())
}

func completionBody(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	})
	return string(body)
}

func TestRawCompletion(t *testing.T) {
	var got rawChatRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "https://coach.example", r.Header.Get("HTTP-Referer"))
		assert.Equal(t, "Life Coach", r.Header.Get("X-Title"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completionBody("```json\n{}\n```"))
	})

	completion, err := client.RawCompletion(context.Background(), "make a plan", 0.7)
	require.NoError(t, err)
	assert.Equal(t, "```json\n{}\n```", completion.Content)
	assert.Equal(t, http.StatusOK, completion.StatusCode)
	assert.Equal(t, providerDirect, completion.Provider)
	assert.Contains(t, string(completion.Payload), `"make a plan"`)
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 512, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "make a plan", got.Messages[0].Content)
}

func TestRawCompletionErrors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			io.WriteString(w, `{"error":"slow down"}`)
		})
		_, err := client.RawCompletion(context.Background(), "p", 0.7)

		var perr *ProviderError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, providerDirect, perr.Provider)
		assert.Equal(t, http.StatusTooManyRequests, perr.StatusCode)
		assert.Contains(t, perr.Body, "slow down")
		assert.Contains(t, string(perr.Payload), `"model":"test-model"`)
	})

	t.Run("empty choices", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"choices":[]}`)
		})
		_, err := client.RawCompletion(context.Background(), "p", 0.7)
		assert.ErrorIs(t, err, ErrEmptyCompletion)
	})

	t.Run("not configured", func(t *testing.T) {
		client := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, nil, zerolog.Nop())
		_, err := client.RawCompletion(context.Background(), "p", 0.7)
		assert.ErrorIs(t, err, ErrNotConfigured)
	})
}

func TestCompleteJSON(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Life Coach", r.Header.Get("X-Title"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completionBody(`{"ok":true}`))
	})

	completion, err := client.CompleteJSON(context.Background(), JSONRequest{
		System:     "be helpful",
		Prompt:     "give json",
		SchemaName: "thing",
		Schema:     map[string]any{"type": "object"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, completion.Content)
	assert.Equal(t, providerSDK, completion.Provider)
	assert.Contains(t, string(completion.Payload), `"give json"`)

	assert.Equal(t, "test-model", body["model"])
	format := body["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
	assert.Equal(t, "thing", format["json_schema"].(map[string]any)["name"])
	assert.Len(t, body["messages"], 2)
}

func TestCompleteJSONProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"message":"schema not supported","type":"invalid_request_error"}}`)
	})

	_, err := client.CompleteJSON(context.Background(), JSONRequest{Prompt: "x", SchemaName: "s", Schema: map[string]any{}})

	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, providerSDK, perr.Provider)
	assert.Equal(t, http.StatusBadRequest, perr.StatusCode)
	assert.NotEmpty(t, perr.Payload)
}

func TestChat(t *testing.T) {
	var body struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completionBody("Keep going!"))
	})

	reply, err := client.Chat(context.Background(), "You are a coach.", []Message{
		{Role: "user", Content: "I ran today"},
		{Role: "assistant", Content: "Great"},
		{Role: "user", Content: "What next?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Keep going!", reply)

	require.Len(t, body.Messages, 4)
	assert.Equal(t, "system", body.Messages[0].Role)
	assert.Equal(t, "assistant", body.Messages[2].Role)
	assert.Equal(t, "What next?", body.Messages[3].Content)
}

func TestProviderErrorFormatting(t *testing.T) {
	err := &ProviderError{Provider: "llm", StatusCode: 502, Err: errors.New("bad gateway")}
	assert.Equal(t, "llm: status 502: bad gateway", err.Error())

	err = &ProviderError{Provider: "llm_direct", Err: ErrEmptyCompletion}
	assert.ErrorIs(t, err, ErrEmptyCompletion)
	assert.Equal(t, "abc...(truncated)", truncate("abcdef", 3))
}

func TestCompletionReject(t *testing.T) {
	completion := Completion{
		Provider:   providerDirect,
		StatusCode: http.StatusOK,
		Content:    "Sure! Here is your plan",
		Payload:    []byte(`{"model":"test-model"}`),
	}
	cause := errors.New("parse plan json")

	err := completion.Reject(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusOK, err.StatusCode)
	assert.Equal(t, "Sure! Here is your plan", err.Body)
	assert.JSONEq(t, `{"model":"test-model"}`, string(err.Payload))
	assert.Equal(t, "llm_direct: status 200: parse plan json", err.Error())
}
