package llm

import (
	"errors"
	"fmt"
)

// ErrCredentialsMissing means no OPENROUTER_API_KEY is configured. The
// orchestrator treats this as "backend unavailable" and switches the whole
// pipeline into stub mode.
var ErrCredentialsMissing = errors.New("OPENROUTER_API_KEY missing; set it to enable live agent runs")

// ErrBackendUnavailable means the client exhausted its retries or received a
// non-retryable HTTP error. HTTPError wraps it so callers can match either
// the broad kind or the concrete status.
var ErrBackendUnavailable = errors.New("model backend unavailable")

// ErrJSONExtraction means no JSON document could be recovered from a model
// reply.
var ErrJSONExtraction = errors.New("no JSON found in model reply")

// HTTPError is a non-2xx reply from the chat-completions endpoint that the
// retry policy does not retry.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	body := e.Body
	if len(body) > 512 {
		body = body[:512]
	}
	return fmt.Sprintf("openrouter: HTTP %d: %s", e.Status, body)
}

func (e *HTTPError) Unwrap() error { return ErrBackendUnavailable }
