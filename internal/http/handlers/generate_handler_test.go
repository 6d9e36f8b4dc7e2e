package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-story-backend/internal/domain"
	"github.com/tbourn/go-story-backend/internal/provider"
	"github.com/tbourn/go-story-backend/internal/services"
)

// ---------- scripted providers ----------

// genText is a scripted text provider: fixed output or fixed error, with a
// call counter.
type genText struct {
	name  string
	text  string
	err   error
	calls int32
}

func (g *genText) Name() string { return g.name }

func (g *genText) GenerateText(ctx context.Context, prompt string, p provider.TextParams) (string, error) {
	atomic.AddInt32(&g.calls, 1)
	if g.err != nil {
		return "", g.err
	}
	return g.text, nil
}

// generatedText is long enough for the story service's default minimum.
const generatedText = "Deep in the harbor the old lighthouse keeper lit the lamp while a curious seal watched from the pier, night after night, until they became friends."

// newGenEnv builds a real generation pipeline over the env's DB and media
// store with the given text providers.
func newGenEnv(t *testing.T, text ...provider.TextGenerator) (*testEnv, *services.GenerationService) {
	t.Helper()
	env := newTestEnv(t)

	gen := &services.GenerationService{
		DB:      env.db,
		Stories: env.story,
		Audio:   env.audio,
		Media:   env.store,
		Text:    text,
	}
	env.h = New(env.story, env.audio, env.queue, env.share, gen)

	r := gin.New()
	r.POST("/stories/generate", env.h.GenerateStory)
	env.router = r
	return env, gen
}

// ---------- GenerateStory ----------

func TestGenerateStory_BadJSON_and_EdgePromptCap(t *testing.T) {
	env, _ := newGenEnv(t, &genText{name: "openai", text: generatedText})

	// Bad JSON -> 400
	if w := env.do(http.MethodPost, "/stories/generate", "{bad"); w.Code != http.StatusBadRequest {
		t.Fatalf("bad json -> %d", w.Code)
	}

	// Missing prompt -> 400 (binding)
	if w := env.do(http.MethodPost, "/stories/generate", `{"type":"bedtime"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing prompt -> %d", w.Code)
	}

	// Whitespace-only prompt -> 400 after sanitization
	if w := env.do(http.MethodPost, "/stories/generate", `{"prompt":" \n\n ","type":"bedtime"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("blank prompt -> %d", w.Code)
	}
}

func TestGenerateStory_PromptCapUsesServiceConfig(t *testing.T) {
	primary := &genText{name: "openai", text: generatedText}
	env, gen := newGenEnv(t, primary)
	gen.PromptMaxRunes = 10

	long := strings.Repeat("a", 11)
	w := env.do(http.MethodPost, "/stories/generate", fmt.Sprintf(`{"prompt":%q,"type":"bedtime"}`, long))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("over-cap prompt -> %d body=%s", w.Code, w.Body.String())
	}
	if atomic.LoadInt32(&primary.calls) != 0 {
		t.Fatalf("provider called despite edge rejection")
	}
}

func TestGenerateStory_Success_NormalizesPrompt(t *testing.T) {
	primary := &genText{name: "openai", text: generatedText}
	env, _ := newGenEnv(t, primary)

	// CRLF and excess blank lines are normalized before the service call.
	body := `{"prompt":"A story about a lighthouse.\r\n\n\n\nMake it gentle.","type":"bedtime","topic":"lighthouses"}`
	w := env.do(http.MethodPost, "/stories/generate", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("generate -> %d body=%s", w.Code, w.Body.String())
	}
	var st domain.Story
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("json: %v", err)
	}
	if st.ID == 0 || st.Text != generatedText || st.Type != "bedtime" {
		t.Fatalf("unexpected story: %+v", st)
	}
	if st.Topic == nil || *st.Topic != "lighthouses" {
		t.Fatalf("topic lost: %+v", st.Topic)
	}
	if atomic.LoadInt32(&primary.calls) != 1 {
		t.Fatalf("provider calls = %d", primary.calls)
	}
}

func TestGenerateStory_IdempotentReplay(t *testing.T) {
	primary := &genText{name: "openai", text: generatedText}
	env, _ := newGenEnv(t, primary)

	body := `{"prompt":"A story about a lighthouse keeper.","type":"bedtime"}`
	key := "retry-7a8d9f4c"

	post := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/stories/generate", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Client-ID", "client-a")
		req.Header.Set("Idempotency-Key", key)
		env.router.ServeHTTP(w, req)
		return w
	}

	// First call generates and records the key.
	w := post()
	if w.Code != http.StatusCreated {
		t.Fatalf("first -> %d body=%s", w.Code, w.Body.String())
	}
	var first domain.Story
	if err := json.Unmarshal(w.Body.Bytes(), &first); err != nil {
		t.Fatalf("json: %v", err)
	}

	// Second call replays the stored story without touching the provider.
	w = post()
	if w.Code != http.StatusOK {
		t.Fatalf("replay -> %d body=%s", w.Code, w.Body.String())
	}
	if w.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("replay header missing")
	}
	var second domain.Story
	if err := json.Unmarshal(w.Body.Bytes(), &second); err != nil {
		t.Fatalf("json: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("replay returned a different story: %d vs %d", second.ID, first.ID)
	}
	if got := atomic.LoadInt32(&primary.calls); got != 1 {
		t.Fatalf("provider calls = %d, want 1", got)
	}

	// A different client with the same key generates fresh.
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/stories/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Client-ID", "client-b")
	req.Header.Set("Idempotency-Key", key)
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("other client -> %d", w.Code)
	}
	if got := atomic.LoadInt32(&primary.calls); got != 2 {
		t.Fatalf("provider calls = %d, want 2", got)
	}
}

func TestGenerateStory_ProviderFailureMapping(t *testing.T) {
	// All providers transiently down -> 502 generation_failed.
	down := &genText{name: "openai", err: &provider.Error{
		Provider: "openai", Kind: provider.KindUnavailable, Err: errors.New("connection refused"),
	}}
	env, _ := newGenEnv(t, down)

	w := env.do(http.MethodPost, "/stories/generate", `{"prompt":"A story about a seal.","type":"bedtime"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("unavailable -> %d body=%s", w.Code, w.Body.String())
	}
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("json: %v", err)
	}
	if er.Code != ErrCodeGenerationFailed {
		t.Fatalf("code = %q", er.Code)
	}

	// Provider rejected the request content -> 400.
	rejecting := &genText{name: "openai", err: &provider.Error{
		Provider: "openai", Kind: provider.KindInvalidRequest, Err: errors.New("prompt flagged"),
	}}
	env, _ = newGenEnv(t, rejecting)
	w = env.do(http.MethodPost, "/stories/generate", `{"prompt":"A story about a seal.","type":"bedtime"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid request -> %d body=%s", w.Code, w.Body.String())
	}

	// Auth failure -> 502 as well; the client cannot fix credentials.
	unauth := &genText{name: "openai", err: &provider.Error{
		Provider: "openai", Kind: provider.KindAuth, Err: errors.New("bad key"),
	}}
	env, _ = newGenEnv(t, unauth)
	w = env.do(http.MethodPost, "/stories/generate", `{"prompt":"A story about a seal.","type":"bedtime"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("auth -> %d body=%s", w.Code, w.Body.String())
	}
}

func TestGenerateStory_InvalidMetadata(t *testing.T) {
	primary := &genText{name: "openai", text: generatedText}
	env, _ := newGenEnv(t, primary)

	// Bad type tag -> 400 before any provider call.
	w := env.do(http.MethodPost, "/stories/generate", `{"prompt":"A story about a seal.","type":"Not A Tag"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad type -> %d", w.Code)
	}
	if atomic.LoadInt32(&primary.calls) != 0 {
		t.Fatalf("provider called despite invalid metadata")
	}
}
