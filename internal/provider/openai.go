package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// NameOpenAI is the provider name reported by OpenAI-backed adapters.
const NameOpenAI = "openai"

// openAISpeechFormats is the set of output formats the speech endpoint
// accepts. Checked locally so an unsupported format never spends a call.
var openAISpeechFormats = map[string]struct{}{
	"mp3": {}, "opus": {}, "aac": {}, "flac": {}, "wav": {}, "pcm": {},
}

// OpenAIConfig configures an OpenAI-compatible endpoint. BaseURL may point
// at any API-compatible server (OpenRouter, LocalAI, a proxy); empty means
// the official endpoint.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	TextModel   string
	SpeechModel string
	HTTPTimeout time.Duration
}

// OpenAI implements TextGenerator and SpeechSynthesizer on the OpenAI API.
type OpenAI struct {
	client      *openai.Client
	textModel   string
	speechModel string
}

// NewOpenAI builds the adapter. The API key is required; models fall back
// to gpt-4o-mini for text and tts-1 for speech.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai: api key is empty")
	}
	if cfg.TextModel == "" {
		cfg.TextModel = openai.GPT4oMini
	}
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = string(openai.TTSModel1)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	if cfg.HTTPTimeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}

	return &OpenAI{
		client:      openai.NewClientWithConfig(clientCfg),
		textModel:   cfg.TextModel,
		speechModel: cfg.SpeechModel,
	}, nil
}

// Name implements TextGenerator and SpeechSynthesizer.
func (p *OpenAI) Name() string { return NameOpenAI }

// GenerateText implements TextGenerator.
func (p *OpenAI) GenerateText(ctx context.Context, prompt string, params TextParams) (string, error) {
	model := params.Model
	if model == "" {
		model = p.textModel
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: params.Temperature,
		MaxTokens:   params.MaxOutputTokens,
	})
	if err != nil {
		return "", classifyOpenAIError(NameOpenAI, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &Error{
			Provider: NameOpenAI,
			Kind:     KindUnavailable,
			Err:      errors.New("empty completion"),
		}
	}
	return resp.Choices[0].Message.Content, nil
}

// SynthesizeSpeech implements SpeechSynthesizer.
func (p *OpenAI) SynthesizeSpeech(ctx context.Context, text string, params SpeechParams) ([]byte, error) {
	format := strings.ToLower(strings.TrimSpace(params.Format))
	if format == "" {
		format = "mp3"
	}
	if _, ok := openAISpeechFormats[format]; !ok {
		return nil, &Error{
			Provider: NameOpenAI,
			Kind:     KindUnsupportedFormat,
			Err:      fmt.Errorf("speech format %q not supported", params.Format),
		}
	}

	model := params.Model
	if model == "" {
		model = p.speechModel
	}
	voice := params.VoiceID
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}

	resp, err := p.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(model),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormat(format),
	})
	if err != nil {
		return nil, classifyOpenAIError(NameOpenAI, err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, &Error{
			Provider: NameOpenAI,
			Kind:     KindUnavailable,
			Err:      fmt.Errorf("read speech body: %w", err),
		}
	}
	if len(audio) == 0 {
		return nil, &Error{
			Provider: NameOpenAI,
			Kind:     KindUnavailable,
			Err:      errors.New("empty speech body"),
		}
	}
	return audio, nil
}

// classifyOpenAIError maps SDK failures onto the taxonomy. Context
// cancellation surfaces as KindTimeout; the caller decides whether its own
// context is still live before trying an alternate provider.
func classifyOpenAIError(name string, err error) *Error {
	wrap := func(kind Kind) *Error {
		return &Error{Provider: name, Kind: kind, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return wrap(KindTimeout)
	}
	// The SDK validates speech model and voice before sending anything.
	if errors.Is(err, openai.ErrInvalidSpeechModel) || errors.Is(err, openai.ErrInvalidVoice) {
		return wrap(KindInvalidRequest)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return wrap(kindFromStatus(apiErr.HTTPStatusCode))
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return wrap(kindFromStatus(reqErr.HTTPStatusCode))
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return wrap(KindTimeout)
	}

	return wrap(KindUnavailable)
}

func kindFromStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests:
		return KindQuota
	case status == http.StatusUnsupportedMediaType:
		return KindUnsupportedFormat
	case status >= 500:
		return KindUnavailable
	case status >= 400:
		return KindInvalidRequest
	default:
		return KindUnavailable
	}
}
