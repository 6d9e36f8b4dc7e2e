package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// NameOllama is the provider name reported by the Ollama adapter.
const NameOllama = "ollama"

// OllamaConfig configures a local or remote Ollama server.
type OllamaConfig struct {
	BaseURL     string
	Model       string
	HTTPTimeout time.Duration
}

// Ollama implements TextGenerator on the native Ollama chat API. Ollama has
// no speech endpoint, so it never acts as a SpeechSynthesizer.
type Ollama struct {
	client *api.Client
	model  string
}

// NewOllama builds the adapter. The base URL must not carry an OpenAI-style
// /v1 suffix; it is stripped when present.
func NewOllama(cfg OllamaConfig) (*Ollama, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("ollama: model is empty")
	}

	base := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	base = strings.TrimSuffix(base, "/v1")
	if base == "" {
		base = "http://localhost:11434"
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("ollama: parse base url %q: %w", base, err)
	}

	httpClient := http.DefaultClient
	if cfg.HTTPTimeout > 0 {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	return &Ollama{
		client: api.NewClient(parsed, httpClient),
		model:  cfg.Model,
	}, nil
}

// Name implements TextGenerator.
func (p *Ollama) Name() string { return NameOllama }

// GenerateText implements TextGenerator.
func (p *Ollama) GenerateText(ctx context.Context, prompt string, params TextParams) (string, error) {
	model := params.Model
	if model == "" {
		model = p.model
	}

	stream := false
	chatReq := &api.ChatRequest{
		Model: model,
		Messages: []api.Message{
			{Role: "user", Content: prompt},
		},
		Stream: &stream,
		Options: map[string]interface{}{
			"temperature": float64(params.Temperature),
		},
	}
	if params.MaxOutputTokens > 0 {
		chatReq.Options["num_predict"] = params.MaxOutputTokens
	}

	// With Stream=false the callback fires once with the full response.
	var last api.ChatResponse
	err := p.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		last = resp
		return nil
	})
	if err != nil {
		return "", classifyOllamaError(err)
	}
	if last.Message.Content == "" {
		return "", &Error{
			Provider: NameOllama,
			Kind:     KindUnavailable,
			Err:      errors.New("empty completion"),
		}
	}
	return last.Message.Content, nil
}

// classifyOllamaError maps native API failures onto the taxonomy. A missing
// model comes back as 404 and is permanent: pulling the model is an operator
// action, not something a retry fixes.
func classifyOllamaError(err error) *Error {
	wrap := func(kind Kind) *Error {
		return &Error{Provider: NameOllama, Kind: kind, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return wrap(KindTimeout)
	}

	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		return wrap(kindFromStatus(statusErr.StatusCode))
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return wrap(KindTimeout)
	}

	// Error bodies on otherwise-OK responses surface as plain errors with
	// only the server message; "not found" is the missing-model shape.
	if strings.Contains(strings.ToLower(err.Error()), "not found") {
		return wrap(KindInvalidRequest)
	}

	return wrap(KindUnavailable)
}
