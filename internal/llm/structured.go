package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
)

const providerSDK = "llm"

// JSONRequest asks the model for a JSON document constrained by a schema.
type JSONRequest struct {
	System            string
	Prompt            string
	SchemaName        string
	SchemaDescription string
	Schema            map[string]any
}

// Message is a chat turn passed to Chat.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// CompleteJSON sends a chat completion with a json_schema response format and
// returns the raw message content.
func (c *Client) CompleteJSON(ctx context.Context, req JSONRequest) (Completion, error) {
	if !c.Configured() {
		return Completion{}, ErrNotConfigured
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	schema := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:   req.SchemaName,
		Schema: req.Schema,
	}
	if req.SchemaDescription != "" {
		schema.Description = openai.String(req.SchemaDescription)
	}

	params := openai.ChatCompletionNewParams{
		Model:       c.cfg.Model,
		Messages:    messages,
		MaxTokens:   openai.Int(int64(c.cfg.MaxTokens)),
		Temperature: openai.Float(c.cfg.Temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schema},
		},
	}
	return c.complete(ctx, params)
}

// Chat sends a conversation with an optional system prompt and returns the
// assistant's reply.
func (c *Client) Chat(ctx context.Context, system string, history []Message) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	for _, m := range history {
		if m.Role == "assistant" {
			messages = append(messages, openai.AssistantMessage(m.Content))
			continue
		}
		messages = append(messages, openai.UserMessage(m.Content))
	}

	params := openai.ChatCompletionNewParams{
		Model:       c.cfg.Model,
		Messages:    messages,
		MaxTokens:   openai.Int(int64(c.cfg.MaxTokens)),
		Temperature: openai.Float(c.cfg.Temperature),
	}
	completion, err := c.complete(ctx, params)
	if err != nil {
		return "", err
	}
	return completion.Content, nil
}

func (c *Client) complete(ctx context.Context, params openai.ChatCompletionNewParams) (Completion, error) {
	start := time.Now()
	c.logger.Debug().Int("message_count", len(params.Messages)).Msg("sending chat completion request")

	completion, err := c.sdk.Chat.Completions.New(ctx, params)
	if err != nil {
		return Completion{}, c.sdkError(params, err)
	}

	c.logger.Debug().
		Int64("prompt_tokens", completion.Usage.PromptTokens).
		Int64("completion_tokens", completion.Usage.CompletionTokens).
		Dur("elapsed", time.Since(start)).
		Msg("received chat completion response")

	payload, _ := json.Marshal(params)
	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		return Completion{}, &ProviderError{Provider: providerSDK, StatusCode: http.StatusOK, Payload: payload, Err: ErrEmptyCompletion}
	}
	return Completion{
		Provider:   providerSDK,
		StatusCode: http.StatusOK,
		Content:    completion.Choices[0].Message.Content,
		Payload:    payload,
	}, nil
}

func (c *Client) sdkError(params openai.ChatCompletionNewParams, err error) error {
	perr := &ProviderError{Provider: providerSDK, Err: err}
	if payload, mErr := json.Marshal(params); mErr == nil {
		perr.Payload = payload
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		perr.StatusCode = apiErr.StatusCode
		perr.Body = truncate(apiErr.Error(), maxErrorBodySize)
	}
	return perr
}
