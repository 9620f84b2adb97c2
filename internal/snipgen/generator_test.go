package snipgen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
)

type capturedRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	System      []struct {
		Text string `json:"text"`
	} `json:"system"`
	Messages []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"messages"`
}

func messageResponse(text string) string {
	resp := map[string]any{
		"id":            "msg_test",
		"type":          "message",
		"role":          "assistant",
		"model":         DefaultModel,
		"stop_reason":   "end_turn",
		"stop_sequence": nil,
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
		"usage": map[string]any{"input_tokens": 12, "output_tokens": 34},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func newTestGenerator(t *testing.T, handler http.HandlerFunc) *Generator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGenerator(context.Background(), "", false, nil,
		option.WithBaseURL(srv.URL),
		option.WithAPIKey("test-key"),
	)
}

func TestGenerate_Request(t *testing.T) {
	var got capturedRequest
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(messageResponse("```csharp\nvar s = new string(arr);\n```")))
	})

	snippet, err := gen.Generate(context.Background(), "reverse a string", ModeDefault)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if snippet != "var s = new string(arr);" {
		t.Errorf("snippet = %q, want fence-free body", snippet)
	}
	if got.Model != DefaultModel {
		t.Errorf("model = %q, want %q", got.Model, DefaultModel)
	}
	if got.Temperature != Temperature {
		t.Errorf("temperature = %v, want %v", got.Temperature, Temperature)
	}
	if len(got.System) != 1 || got.System[0].Text != SystemPrompt(ModeDefault) {
		t.Errorf("system = %+v, want default persona", got.System)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v, want one user message", got.Messages)
	}
	if len(got.Messages[0].Content) != 1 || got.Messages[0].Content[0].Text != "Task: reverse a string" {
		t.Errorf("user content = %+v, want %q", got.Messages[0].Content, "Task: reverse a string")
	}
}

func TestGenerate_NoStackPersona(t *testing.T) {
	var got capturedRequest
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(messageResponse("print(1)")))
	})

	if _, err := gen.Generate(context.Background(), "print a number", ModeNoStack); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got.System) != 1 || strings.Contains(got.System[0].Text, "jQuery") {
		t.Errorf("system = %+v, want persona without stack assumptions", got.System)
	}
}

func TestGenerate_ServiceErrorNotRetried(t *testing.T) {
	var calls int32
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	})

	_, err := gen.Generate(context.Background(), "anything", ModeDefault)
	if err == nil {
		t.Fatal("expected error from rate-limited service, got nil")
	}
	if !strings.Contains(err.Error(), "calling model") {
		t.Errorf("error = %q, want it wrapped with 'calling model'", err.Error())
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("service called %d times, want 1 (no retries)", n)
	}
}

func TestGenerate_EmptyResponse(t *testing.T) {
	gen := newTestGenerator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(messageResponse("   ")))
	})

	if _, err := gen.Generate(context.Background(), "anything", ModeDefault); err == nil {
		t.Fatal("expected error for empty completion, got nil")
	}
}

func TestNewGenerator_Model(t *testing.T) {
	gen := NewGenerator(context.Background(), "claude-haiku-4-5", false, nil, option.WithAPIKey("k"))
	if gen.Model() != "claude-haiku-4-5" {
		t.Errorf("Model() = %q, want claude-haiku-4-5", gen.Model())
	}
}
