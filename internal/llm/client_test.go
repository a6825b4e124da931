package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func reply(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
}

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c := New("test-key", baseURL, "test-model", "", zerolog.Nop())
	c.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return c
}

func TestCallMissingCredentials(t *testing.T) {
	c := New("", "", "", "", zerolog.Nop())
	if c.Available() {
		t.Fatal("client without key must not be available")
	}
	_, err := c.Call(context.Background(), Request{Messages: []Message{{Role: "user", Content: "hi"}}})
	if !errors.Is(err, ErrCredentialsMissing) {
		t.Fatalf("err = %v, want ErrCredentialsMissing", err)
	}
}

func TestCallComposesRequest(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("auth = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		reply(w, "hello")
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	c.provider = "fireworks"
	out, err := c.Call(context.Background(), Request{
		System:      "be terse",
		Messages:    []Message{{Role: "user", Content: "hi"}},
		JSONMode:    true,
		Temperature: 0.3,
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if out != "hello" {
		t.Fatalf("content = %q", out)
	}

	msgs := got["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want system + user", len(msgs))
	}
	if role := msgs[0].(map[string]any)["role"]; role != "system" {
		t.Fatalf("first message role = %v", role)
	}
	rf := got["response_format"].(map[string]any)
	if rf["type"] != "json_object" {
		t.Fatalf("response_format = %v", rf)
	}
	prov := got["provider"].(map[string]any)
	if prov["allow_fallbacks"] != false {
		t.Fatalf("provider.allow_fallbacks = %v", prov["allow_fallbacks"])
	}
	order := prov["order"].([]any)
	if len(order) != 1 || order[0] != "fireworks" {
		t.Fatalf("provider.order = %v", order)
	}
}

func TestCallOmitsProviderAndSystemWhenUnset(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		reply(w, "ok")
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	if _, err := c.Call(context.Background(), Request{Messages: []Message{{Role: "user", Content: "hi"}}}); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if _, present := got["provider"]; present {
		t.Fatal("provider must be omitted when not pinned")
	}
	msgs := got["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("messages = %d, want user only", len(msgs))
	}
}

func TestCallRetriesOn429(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		reply(w, "finally")
	}))
	defer srv.Close()

	var waits []time.Duration
	c := testClient(t, srv.URL)
	c.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	out, err := c.Call(context.Background(), Request{Messages: []Message{{Role: "user", Content: "x"}}})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if out != "finally" {
		t.Fatalf("content = %q", out)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
	// Backoff is (attempt+1)*2s.
	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(waits) != len(want) || waits[0] != want[0] || waits[1] != want[1] {
		t.Fatalf("waits = %v, want %v", waits, want)
	}
}

func TestCallExhaustionFailsBackendUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.Call(context.Background(), Request{Messages: []Message{{Role: "user", Content: "x"}}, MaxRetries: 2})
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("err = %v, want ErrBackendUnavailable", err)
	}
}

func TestCallNonRetryableHTTPSurfacesImmediately(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.Call(context.Background(), Request{Messages: []Message{{Role: "user", Content: "x"}}})
	var he *HTTPError
	if !errors.As(err, &he) || he.Status != http.StatusUnauthorized {
		t.Fatalf("err = %v, want HTTPError 401", err)
	}
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("HTTPError must wrap ErrBackendUnavailable, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1 (no retry)", calls.Load())
	}
}

func TestCallEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	out, err := c.Call(context.Background(), Request{Messages: []Message{{Role: "user", Content: "x"}}})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if out != "" {
		t.Fatalf("content = %q, want empty", out)
	}
}
