package llm

import (
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog"
)

// Config holds what the client needs to reach an OpenAI-compatible
// chat-completions API (OpenRouter by default).
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	SiteURL     string // sent as HTTP-Referer for attribution
	AppName     string // sent as X-Title for attribution
}

// Client talks to the LLM provider. Structured and chat calls go through the
// openai-go SDK; RawCompletion issues a plain HTTP request.
type Client struct {
	cfg    Config
	sdk    openai.Client
	http   *http.Client
	logger zerolog.Logger
}

// NewClient creates a Client. Calls fail with ErrNotConfigured when
// cfg.APIKey is empty. Timeouts come from the caller's context.
func NewClient(cfg Config, httpClient *http.Client, logger zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4000
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(ensureTrailingSlash(cfg.BaseURL)),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0), // every tier is tried exactly once
	}
	if cfg.SiteURL != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.SiteURL))
	}
	if cfg.AppName != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.AppName))
	}

	return &Client{
		cfg:    cfg,
		sdk:    openai.NewClient(opts...),
		http:   httpClient,
		logger: logger.With().Str("component", "llm").Str("model", cfg.Model).Logger(),
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.APIKey != ""
}

func ensureTrailingSlash(u string) string {
	if strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}
