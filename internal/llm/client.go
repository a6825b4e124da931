// Package llm talks to OpenRouter's chat-completions endpoint and recovers
// structured JSON from model replies.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultBaseURL is the OpenRouter chat-completions root.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// DefaultModel is used when neither the caller nor LLM_MODEL picks one.
	DefaultModel = "openai/gpt-oss-20b"

	defaultMaxRetries = 3
	requestTimeout    = 60 * time.Second
	debugLogFile      = "llm_debug.log"
)

// providerPrefs is OpenRouter's provider-routing extension. When a provider
// is pinned, fallbacks to other providers are disabled so benchmark runs stay
// comparable.
type providerPrefs struct {
	Order          []string `json:"order"`
	AllowFallbacks bool     `json:"allow_fallbacks"`
}

// chatRequest is the OpenAI-compatible request body plus OpenRouter's
// provider extension.
type chatRequest struct {
	openai.ChatCompletionRequest
	Provider *providerPrefs `json:"provider,omitempty"`
}

// Message is one chat message. Alias so callers need not import the openai
// package for the common case.
type Message = openai.ChatCompletionMessage

// Request describes one model invocation.
type Request struct {
	// Model overrides the client default when non-empty.
	Model string

	// System is prepended as a system message when non-empty.
	System string

	// Messages follow the system message, in order.
	Messages []Message

	// JSONMode asks the backend for a json_object response.
	JSONMode bool

	Temperature float32

	// MaxRetries caps attempts; zero means the default of 3.
	MaxRetries int
}

// Client calls OpenRouter. The zero value is not usable; construct with New
// or NewFromEnv.
type Client struct {
	apiKey   string
	baseURL  string
	model    string
	provider string
	http     *http.Client
	log      zerolog.Logger
	debug    bool

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New builds a client. baseURL and model fall back to package defaults when
// empty. provider may be empty, meaning no provider pinning.
func New(apiKey, baseURL, model, provider string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		apiKey:   apiKey,
		baseURL:  strings.TrimRight(baseURL, "/"),
		model:    model,
		provider: provider,
		http:     &http.Client{Timeout: requestTimeout},
		log:      log,
		sleep:    sleepCtx,
	}
}

// NewFromEnv builds a client from OPENROUTER_API_KEY, LLM_MODEL, LLM_PROVIDER
// and DEBUG_LLM. The client is still constructed when the key is missing;
// Call then fails with ErrCredentialsMissing and the orchestrator falls back
// to stubs.
func NewFromEnv(log zerolog.Logger) *Client {
	c := New(
		os.Getenv("OPENROUTER_API_KEY"),
		os.Getenv("OPENROUTER_BASE_URL"),
		os.Getenv("LLM_MODEL"),
		os.Getenv("LLM_PROVIDER"),
		log,
	)
	c.debug = truthy(os.Getenv("DEBUG_LLM"))
	return c
}

// SetDebug toggles appending request/response pairs to llm_debug.log.
func (c *Client) SetDebug(on bool) { c.debug = on }

// Available reports whether live calls can be made at all.
func (c *Client) Available() bool {
	return c != nil && c.apiKey != ""
}

// Model returns the model slug used when a Request does not name one.
func (c *Client) Model() string { return c.model }

// Call performs one chat completion and returns choices[0].message.content,
// or the empty string when the reply carries no choices.
func (c *Client) Call(ctx context.Context, req Request) (string, error) {
	if !c.Available() {
		return "", ErrCredentialsMissing
	}

	model := req.Model
	if model == "" {
		model = c.model
	}
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	msgs = append(msgs, req.Messages...)

	body := chatRequest{
		ChatCompletionRequest: openai.ChatCompletionRequest{
			Model:       model,
			Messages:    msgs,
			Temperature: req.Temperature,
		},
	}
	if req.JSONMode {
		body.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	if c.provider != "" {
		body.Provider = &providerPrefs{Order: []string{c.provider}, AllowFallbacks: false}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	maxRetries := req.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		content, status, err := c.once(ctx, payload)
		switch {
		case err == nil && status == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("HTTP 429 rate limited")
			if attempt < maxRetries-1 {
				if serr := c.sleep(ctx, time.Duration(attempt+1)*2*time.Second); serr != nil {
					return "", serr
				}
			}
		case err != nil:
			var he *HTTPError
			if errors.As(err, &he) {
				// Non-retryable HTTP status, surface immediately.
				return "", err
			}
			// Transport failure or timeout.
			lastErr = err
			if attempt < maxRetries-1 {
				if serr := c.sleep(ctx, time.Second); serr != nil {
					return "", serr
				}
			}
		default:
			return content, nil
		}
	}
	return "", fmt.Errorf("%w: %d attempts to %s: %v", ErrBackendUnavailable, maxRetries, model, lastErr)
}

// once performs a single HTTP round trip. It returns status 429 without error
// so the caller can back off; any other non-2xx status becomes an HTTPError
// surfaced as a terminal error by the retry loop in Call.
func (c *Client) once(ctx context.Context, payload []byte) (content string, status int, err error) {
	url := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", 0, fmt.Errorf("llm: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	c.debugLog("request", payload)
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", 0, fmt.Errorf("llm: post: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("llm: read body: %w", err)
	}
	c.debugLog(fmt.Sprintf("response %d", resp.StatusCode), raw)

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", resp.StatusCode, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", resp.StatusCode, &HTTPError{Status: resp.StatusCode, Body: string(raw)}
	}

	var parsed openai.ChatCompletionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", resp.StatusCode, fmt.Errorf("llm: decode reply: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", resp.StatusCode, nil
	}
	return parsed.Choices[0].Message.Content, resp.StatusCode, nil
}

func (c *Client) debugLog(label string, body []byte) {
	if !c.debug {
		return
	}
	f, err := os.OpenFile(debugLogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		c.log.Warn().Err(err).Msg("cannot open llm debug log")
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "[%s] %s\n%s\n\n", time.Now().Format(time.RFC3339), label, body)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
