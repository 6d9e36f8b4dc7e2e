// Generation HTTP handlers.
//
// This file exposes the REST endpoint for the story generation pipeline:
//   - POST /stories/generate  (produce a story from a prompt and persist it)
//
// Handlers are transport-thin:
//   - validate & normalize inputs (including newline and length constraints)
//   - delegate to the application service (GenerationService)
//   - implement idempotency semantics
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// result exists for (client, key), the handler returns that recorded story
// and sets `Idempotency-Replayed: true`.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-story-backend/internal/provider"
	"github.com/tbourn/go-story-backend/internal/repo"
	"github.com/tbourn/go-story-backend/internal/services"
)

//
// DTOs
//

// GenerateStoryRequest is the JSON payload for generating a story from a
// prompt.
//
// The prompt is normalized by the handler (line endings and excessive blank
// lines) before being passed to the service layer. The service also enforces
// rune and token budgets, which can be configured on GenerationService.
type GenerateStoryRequest struct {
	// Prompt describes the story to generate. It must be non-empty.
	Prompt string `json:"prompt" binding:"required,min=1" example:"A bedtime story about a lighthouse keeper and a curious seal."`
	// Type is a short lowercase tag grouping stories.
	Type string `json:"type" binding:"required" example:"bedtime"`
	// Topic optionally records what the story is about.
	Topic *string `json:"topic,omitempty" example:"lighthouses"`
	// Categories optionally attach short labels to the story.
	Categories []string `json:"categories,omitempty" example:"kids,sea"`
	// Provider optionally names the adapter to try first (e.g. "ollama").
	Provider string `json:"provider,omitempty" example:"openai"`
}

//
// Helpers
//

// nlCollapseRE collapses runs of 3+ newlines to two, preserving paragraphs.
var nlCollapseRE = regexp.MustCompile(`\n{3,}`)

// sanitizePrompt normalizes user text for consistent downstream behavior:
//   - converts CRLF/CR to LF,
//   - collapses runs of 3+ LFs to exactly two (paragraph separation),
//   - trims surrounding whitespace.
func sanitizePrompt(raw string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = nlCollapseRE.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// discoverMaxPromptRunes inspects the concrete GenerationService for a
// configured prompt-length limit. If unavailable, it returns a conservative
// fallback.
func discoverMaxPromptRunes(genSvc GenerationService) int {
	const fallback = 20000
	if gs, ok := genSvc.(*services.GenerationService); ok {
		if gs.PromptMaxRunes > 0 {
			return gs.PromptMaxRunes
		}
	}
	return fallback
}

// idempotencyKey extracts an idempotency key if an upstream middleware has
// already validated/stashed it. The fallback behavior reads the
// "Idempotency-Key" header directly when no dedicated middleware exists.
func idempotencyKey(c *gin.Context) (string, bool) {
	if v := strings.TrimSpace(c.GetHeader("Idempotency-Key")); v != "" {
		return v, true
	}
	return "", false
}

// generationFail translates pipeline errors into HTTP responses. Provider
// failures surface as 502 unless the upstream rejected the request itself,
// which is the caller's fault and maps to 400.
func generationFail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrStoryNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "story not found")
	case errors.Is(err, services.ErrEmptyPrompt):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "prompt required")
	case errors.Is(err, services.ErrPromptTooLong),
		errors.Is(err, services.ErrSpeechTextTooLong),
		errors.Is(err, services.ErrInvalidStoryType),
		errors.Is(err, services.ErrInvalidTopic),
		errors.Is(err, services.ErrInvalidCategories):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrAudioFilenameTaken):
		fail(c, http.StatusConflict, ErrCodeConflict, "audio filename already in use")
	case errors.Is(err, services.ErrGenerationFailed):
		switch provider.KindOf(err) {
		case provider.KindInvalidRequest, provider.KindUnsupportedFormat:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusBadGateway, ErrCodeGenerationFailed, err.Error())
		}
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

//
// Handlers
//

// GenerateStory godoc
// @ID          generateStory
// @Summary     Generate a story from a prompt
// @Description Produces story text via the configured LLM providers (with fallback on
// @Description transient failures) and persists it as a new story.
// @Description Supports idempotency via the Idempotency-Key header (same key → same result).
// @Tags        Generation
// @Accept      json
// @Produce     json
//
// @Param       X-Client-ID      header  string  false "Client ID for idempotency scoping"  example(client123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.GenerateStoryRequest  true  "Generation payload"
//
// @Success     200  {object}  domain.Story  "Replayed result"
// @Success     201  {object}  domain.Story  "Generated story"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     502  {object}  handlers.ErrorResponse  "All providers failed"
// @Router      /stories/generate [post]
func (h *Handlers) GenerateStory(c *gin.Context) {
	ctx := c.Request.Context()

	var req GenerateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "prompt and type required")
		return
	}

	// Sanitize + early size cap to fail fast at the edge.
	prompt := sanitizePrompt(req.Prompt)
	maxRunes := discoverMaxPromptRunes(h.genSvc)
	if maxRunes > 0 && utf8.RuneCountInString(prompt) > maxRunes {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, fmt.Sprintf("prompt too long: max %d runes", maxRunes))
		return
	}
	if prompt == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "prompt required")
		return
	}

	currentClient := clientID(c)

	// Idempotency (replay path) – read validated key if present.
	idemKey, _ := idempotencyKey(c)
	if idemKey != "" {
		if svc, okSvc := h.genSvc.(*services.GenerationService); okSvc && svc.DB != nil {
			if rec, err := repo.GetIdempotency(ctx, svc.DB, currentClient, idemKey, time.Now().UTC()); err == nil && rec != nil {
				if prev, err2 := repo.GetStory(ctx, svc.DB, rec.StoryID); err2 == nil {
					c.Header("Idempotency-Replayed", "true")
					ok(c, http.StatusOK, prev)
					return
				}
			}
		}
	}

	// Normal processing (service has a second guard for length).
	st, err := h.genSvc.GenerateStory(ctx, prompt, req.Type, req.Topic, req.Categories, req.Provider)
	if err != nil {
		generationFail(c, err)
		return
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" {
		if svc, okSvc := h.genSvc.(*services.GenerationService); okSvc && svc.DB != nil {
			ttl := 24 * time.Hour
			_, _ = repo.CreateIdempotency(ctx, svc.DB, currentClient, idemKey, st.ID, http.StatusCreated, ttl)
		}
	}

	ok(c, http.StatusCreated, st)
}
