package llm

import "context"

// Client is a minimal completion interface to allow pluggable providers.
// One Complete call is exactly one request: no retries, no shared rate
// limiter. Callers own timeouts through the context or client construction.
type Client interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	// ModelInfo identifies the backing model for audit records.
	ModelInfo() string
}

// StatusLabel maps a call outcome onto a metrics label.
func StatusLabel(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}
