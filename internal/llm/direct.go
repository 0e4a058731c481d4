package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const providerDirect = "llm_direct"

// Chat-completions wire types (OpenAI-compatible).
type rawChatRequest struct {
	Model       string       `json:"model"`
	Messages    []rawMessage `json:"messages"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
	Temperature float64      `json:"temperature"`
}

type rawMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type rawChatResponse struct {
	Choices []struct {
		Message      rawMessage `json:"message"`
		FinishReason string     `json:"finish_reason"`
	} `json:"choices"`
}

// RawCompletion posts a single user message to the chat-completions endpoint
// without going through the SDK. The content of the first choice is returned
// untouched.
func (c *Client) RawCompletion(ctx context.Context, prompt string, temperature float64) (Completion, error) {
	if !c.Configured() {
		return Completion{}, ErrNotConfigured
	}

	payload, err := json.Marshal(rawChatRequest{
		Model:       c.cfg.Model,
		Messages:    []rawMessage{{Role: "user", Content: prompt}},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return Completion{}, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Completion{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if c.cfg.SiteURL != "" {
		httpReq.Header.Set("HTTP-Referer", c.cfg.SiteURL)
	}
	if c.cfg.AppName != "" {
		httpReq.Header.Set("X-Title", c.cfg.AppName)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return Completion{}, &ProviderError{Provider: providerDirect, Payload: payload, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Completion{}, &ProviderError{Provider: providerDirect, StatusCode: resp.StatusCode, Payload: payload, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return Completion{}, &ProviderError{
			Provider:   providerDirect,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), maxErrorBodySize),
			Payload:    payload,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var parsed rawChatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Completion{}, &ProviderError{
			Provider:   providerDirect,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), maxErrorBodySize),
			Payload:    payload,
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return Completion{}, &ProviderError{Provider: providerDirect, StatusCode: resp.StatusCode, Payload: payload, Err: ErrEmptyCompletion}
	}

	return Completion{
		Provider:   providerDirect,
		StatusCode: resp.StatusCode,
		Content:    parsed.Choices[0].Message.Content,
		Payload:    payload,
	}, nil
}
