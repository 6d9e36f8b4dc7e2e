package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ollama/ollama/api"
)

func TestNewOllama_RequiresModel(t *testing.T) {
	if _, err := NewOllama(OllamaConfig{BaseURL: "http://localhost:11434"}); err == nil {
		t.Fatal("expected error for empty model")
	}
}

func TestNewOllama_StripsV1Suffix(t *testing.T) {
	p, err := NewOllama(OllamaConfig{BaseURL: "http://localhost:11434/v1/", Model: "llama3.2"})
	if err != nil {
		t.Fatalf("NewOllama: %v", err)
	}
	if p == nil {
		t.Fatal("nil adapter")
	}
}

func TestOllama_GenerateText(t *testing.T) {
	var gotReq struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		Stream  *bool                  `json:"stream"`
		Options map[string]interface{} `json:"options"`
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/x-ndjson")
		_, _ = w.Write([]byte(`{"model":"llama3.2","created_at":"2026-01-01T00:00:00Z","message":{"role":"assistant","content":"A quiet tale."},"done":true,"prompt_eval_count":12,"eval_count":34}` + "\n"))
	}))
	defer ts.Close()

	p, err := NewOllama(OllamaConfig{BaseURL: ts.URL, Model: "llama3.2"})
	if err != nil {
		t.Fatalf("NewOllama: %v", err)
	}

	text, err := p.GenerateText(context.Background(), "tell me a story",
		TextParams{MaxOutputTokens: 128, Temperature: 0.5})
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if text != "A quiet tale." {
		t.Fatalf("text = %q", text)
	}
	if gotReq.Model != "llama3.2" {
		t.Fatalf("model = %q", gotReq.Model)
	}
	if gotReq.Stream == nil || *gotReq.Stream {
		t.Fatal("expected stream=false in request")
	}
	if np, ok := gotReq.Options["num_predict"].(float64); !ok || int(np) != 128 {
		t.Fatalf("options = %+v", gotReq.Options)
	}
}

func TestOllama_GenerateText_ModelMissing(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model \"nope\" not found"}`))
	}))
	defer ts.Close()

	p, err := NewOllama(OllamaConfig{BaseURL: ts.URL, Model: "nope"})
	if err != nil {
		t.Fatalf("NewOllama: %v", err)
	}

	_, err = p.GenerateText(context.Background(), "x", TextParams{})
	var pe *Error
	if !errors.As(err, &pe) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if pe.Kind != KindInvalidRequest || pe.Transient() {
		t.Fatalf("kind = %q (transient=%v), want permanent invalid_request", pe.Kind, pe.Transient())
	}
}

func TestOllama_GenerateText_ServerDown(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // refuse connections

	p, err := NewOllama(OllamaConfig{BaseURL: ts.URL, Model: "llama3.2"})
	if err != nil {
		t.Fatalf("NewOllama: %v", err)
	}

	_, err = p.GenerateText(context.Background(), "x", TextParams{})
	if KindOf(err) != KindUnavailable {
		t.Fatalf("kind = %q, want %q (err=%v)", KindOf(err), KindUnavailable, err)
	}
	if !Transient(err) {
		t.Fatal("connection failure must be transient")
	}
}

func TestClassifyOllamaError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"deadline", context.DeadlineExceeded, KindTimeout},
		{"status 401", api.StatusError{StatusCode: 401}, KindAuth},
		{"status 429", api.StatusError{StatusCode: 429}, KindQuota},
		{"status 404", api.StatusError{StatusCode: 404}, KindInvalidRequest},
		{"status 500", api.StatusError{StatusCode: 500}, KindUnavailable},
		{"missing model body", errors.New(`model "nope" not found, try pulling it first`), KindInvalidRequest},
		{"plain", errors.New("dial tcp: refused"), KindUnavailable},
	}
	for _, tc := range cases {
		if got := classifyOllamaError(tc.err); got.Kind != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got.Kind, tc.want)
		}
	}
}
