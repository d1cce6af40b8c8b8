package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func openRouterTestServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("X-Request-ID header missing")
		}

		var req openRouterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_schema" {
			t.Error("request missing json_schema response format")
		}
		if len(req.Messages) != 1 || len(req.Messages[0].Content) != 2 {
			t.Errorf("messages = %+v, want one message with file and text parts", req.Messages)
		}

		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error":"upstream failure"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":    "gen-1",
			"model": req.Model,
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}, "finish_reason": "stop"},
			},
		})
	}))
}

func TestOpenRouterClient_Generate(t *testing.T) {
	srv := openRouterTestServer(t, http.StatusOK, validChunkJSON)
	defer srv.Close()

	client := NewOpenRouterClient(OpenRouterConfig{APIKey: "sk-test", BaseURL: srv.URL})

	result, err := client.Generate(context.Background(), &Request{
		FileData: []byte("%PDF"),
		Prompt:   "summarize pages 1-2",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if result.Provider != OpenRouterName {
		t.Errorf("Provider = %q, want %q", result.Provider, OpenRouterName)
	}
	if len(result.Pages) != 2 {
		t.Errorf("len(Pages) = %d, want 2", len(result.Pages))
	}
}

func TestOpenRouterClient_StatusError(t *testing.T) {
	srv := openRouterTestServer(t, http.StatusServiceUnavailable, "")
	defer srv.Close()

	client := NewOpenRouterClient(OpenRouterConfig{APIKey: "sk-test", BaseURL: srv.URL})

	_, err := client.Generate(context.Background(), &Request{FileData: []byte("%PDF"), Prompt: "p"})
	if err == nil {
		t.Fatal("error = nil, want provider failure")
	}

	var provErr *Error
	if !errors.As(err, &provErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if provErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", provErr.StatusCode)
	}
	if !provErr.Retryable() {
		t.Error("Retryable() = false for 503")
	}
}

func TestOpenRouterClient_MalformedOutput(t *testing.T) {
	srv := openRouterTestServer(t, http.StatusOK, "I cannot produce JSON today.")
	defer srv.Close()

	client := NewOpenRouterClient(OpenRouterConfig{APIKey: "sk-test", BaseURL: srv.URL})

	_, err := client.Generate(context.Background(), &Request{FileData: []byte("%PDF"), Prompt: "p"})
	if err == nil {
		t.Fatal("error = nil, want structured output rejection")
	}
	if IsRetryable(err) {
		t.Error("IsRetryable() = true for malformed output, want terminal")
	}

	_, err = client.Generate(context.Background(), &Request{Prompt: "p"})
	if err == nil {
		t.Error("error = nil for missing file data")
	}
}
