package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned by every call when no API key is set.
	ErrNotConfigured = errors.New("llm provider not configured")
	// ErrEmptyCompletion means the provider answered without any content.
	ErrEmptyCompletion = errors.New("llm returned an empty completion")
)

// maxErrorBodySize bounds how much of an error response is kept for logging.
const maxErrorBodySize = 4096

// ProviderError carries what is needed to diagnose a failed LLM call: the
// request that was sent and the status and body that came back.
type ProviderError struct {
	Provider   string
	StatusCode int    // 0 when no response was received
	Body       string // response body, truncated
	Payload    []byte // request body as sent
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Completion is a successful response together with the request that
// produced it, so a caller that rejects the content can still report both.
type Completion struct {
	Provider   string
	StatusCode int
	Content    string
	Payload    []byte
}

// Reject wraps err, raised while using the content, as a ProviderError that
// carries the request payload and the rejected content.
func (c Completion) Reject(err error) *ProviderError {
	return &ProviderError{
		Provider:   c.Provider,
		StatusCode: c.StatusCode,
		Body:       truncate(c.Content, maxErrorBodySize),
		Payload:    c.Payload,
		Err:        err,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
