// Story HTTP handlers.
//
// This file exposes REST endpoints for story resources:
//   - POST   /stories              (create)
//   - GET    /stories              (list, paginated, ETag support)
//   - GET    /stories/{id}         (fetch one, includes audio metadata)
//   - PUT    /stories/{id}         (full update)
//   - POST   /stories/{id}/favorite (toggle favorite flag)
//   - DELETE /stories/{id}         (delete with cascade)
//   - GET    /stories/search       (full-text search)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses (including conditional responses).
package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-story-backend/internal/domain"
	"github.com/tbourn/go-story-backend/internal/repo"
	"github.com/tbourn/go-story-backend/internal/services"
	"github.com/tbourn/go-story-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// StoryService defines story lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type StoryService interface {
	// Create validates and persists a story, deriving its title.
	Create(ctx context.Context, text, storyType string, topic *string, categories []string) (*domain.Story, error)
	// Get returns one story by id.
	Get(ctx context.Context, id int64) (*domain.Story, error)
	// ListPage returns a page of stories (optionally filtered by type) and the total count.
	ListPage(ctx context.Context, storyType string, page, pageSize int) ([]domain.Story, int64, error)
	// Stats returns the count and newest update time for the filtered set.
	Stats(ctx context.Context, storyType string) (int64, *time.Time, error)
	// Update replaces a story's text, type and topic, re-deriving the title.
	Update(ctx context.Context, id int64, text, storyType string, topic *string) (*domain.Story, error)
	// ToggleFavorite sets the favorite flag to the given value.
	ToggleFavorite(ctx context.Context, id int64, value bool) (*domain.Story, error)
	// Delete removes a story and everything referencing it.
	Delete(ctx context.Context, id int64) error
	// Search runs a full-text query and returns matches ranked by relevance.
	Search(ctx context.Context, query, mode string, limit int) ([]domain.Story, error)
}

// AudioService defines audio artifact operations consumed by HTTP handlers.
type AudioService interface {
	// GetByStory returns the artifact metadata linked to a story.
	GetByStory(ctx context.Context, storyID int64) (*domain.AudioFile, error)
	// Open returns a seekable reader over a story's audio along with its metadata.
	Open(ctx context.Context, storyID int64) (io.ReadSeekCloser, *domain.AudioFile, error)
}

// QueueService defines playback queue operations consumed by HTTP handlers.
type QueueService interface {
	// Get returns the queue in position order with story display fields.
	Get(ctx context.Context) ([]repo.QueueRow, error)
	// Set atomically replaces the whole queue.
	Set(ctx context.Context, ids []int64) error
	// Add appends one story at the end and returns its position.
	Add(ctx context.Context, storyID int64) (int, error)
}

// ShareService defines share token operations consumed by HTTP handlers.
type ShareService interface {
	// Create mints a share token for a story with an optional time-to-live.
	Create(ctx context.Context, storyID int64, ttl *time.Duration) (*domain.Share, error)
	// Resolve exchanges a token for the shared story and audio metadata.
	Resolve(ctx context.Context, token string) (*services.SharedStory, error)
	// Revoke permanently disables a token.
	Revoke(ctx context.Context, token string) error
}

// GenerationService defines the LLM/TTS pipeline operations consumed by
// HTTP handlers.
type GenerationService interface {
	// GenerateStory produces text from a prompt and persists it as a story.
	GenerateStory(ctx context.Context, prompt, storyType string, topic *string, categories []string, providerPref string) (*domain.Story, error)
	// GenerateAudio synthesizes speech for a story and persists the artifact.
	GenerateAudio(ctx context.Context, storyID int64, providerPref, voiceID string, voiceSettings *string) (*domain.AudioFile, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for stories, audio, the queue, shares, and
// generation. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	storySvc StoryService
	audioSvc AudioService
	queueSvc QueueService
	shareSvc ShareService
	genSvc   GenerationService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(storySvc StoryService, audioSvc AudioService, queueSvc QueueService, shareSvc ShareService, genSvc GenerationService) *Handlers {
	return &Handlers{
		storySvc: storySvc,
		audioSvc: audioSvc,
		queueSvc: queueSvc,
		shareSvc: shareSvc,
		genSvc:   genSvc,
	}
}

// clientID extracts the calling client's id from Gin context (set by upstream
// middleware). If absent, it falls back to the "X-Client-ID" header (tests use
// it), and finally to "demo-client". It never touches c.Request if it's nil.
func clientID(c *gin.Context) string {
	if v, ok := c.Get("clientID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-Client-ID")); h != "" {
			return h
		}
	}
	return "demo-client"
}

//
// DTOs
//

// CreateStoryRequest is the JSON payload for creating a story directly.
type CreateStoryRequest struct {
	// Text is the full story body. Length bounds are enforced server-side.
	Text string `json:"text" binding:"required,min=1" example:"Once upon a time a small fox discovered a door in the forest floor."`
	// Type is a short lowercase tag grouping stories.
	Type string `json:"type" binding:"required" example:"adventure"`
	// Topic optionally records what the story is about.
	Topic *string `json:"topic,omitempty" example:"foxes"`
	// Categories optionally attach short labels to the story.
	Categories []string `json:"categories,omitempty" example:"kids,animals"`
}

// UpdateStoryRequest is the JSON payload for replacing a story's content.
// The title is re-derived from the new text; favorite and categories are
// untouched.
type UpdateStoryRequest struct {
	Text  string  `json:"text" binding:"required,min=1" example:"A revised tale about the same small fox."`
	Type  string  `json:"type" binding:"required" example:"bedtime"`
	Topic *string `json:"topic,omitempty" example:"foxes"`
}

// FavoriteRequest is the JSON payload for setting the favorite flag.
// A pointer is used so that an explicit false is distinguishable from an
// absent field.
type FavoriteRequest struct {
	Favorite *bool `json:"favorite" binding:"required" example:"true"`
}

// StoryResponse is the envelope for a single story fetch. Audio metadata is
// included when an artifact exists for the story.
type StoryResponse struct {
	Story *domain.Story     `json:"story"`
	Audio *domain.AudioFile `json:"audio,omitempty"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListStoriesResponse wraps a page of stories and pagination information.
type ListStoriesResponse struct {
	Stories    []domain.Story `json:"stories"`
	Pagination Pagination     `json:"pagination"`
}

// SearchStoriesResponse wraps full-text search matches in relevance order.
type SearchStoriesResponse struct {
	Stories []domain.Story `json:"stories"`
}

//
// Helpers
//

// clampPagination parses and bounds page and per_page query params to sane
// defaults and limits, returning (page, perPage).
func clampPagination(c *gin.Context) (page, perPage int) {
	const (
		defaultPage    = 1
		defaultPerPage = 20
		maxPerPage     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	perPage = utils.AtoiDefault(c.Query("per_page"), defaultPerPage)
	if perPage < 1 {
		perPage = 1
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return
}

// storyIDParam parses the :id path parameter as a positive integer story id.
func storyIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

//
// Handlers
//

// CreateStory godoc
// @ID          createStory
// @Summary     Create a story
// @Description Validates and persists a story, deriving a short title from its first words.
// @Tags        Stories
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CreateStoryRequest  true  "Create story payload"
//
// @Success     201  {object}  domain.Story
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /stories [post]
func (h *Handlers) CreateStory(c *gin.Context) {
	var req CreateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text and type required")
		return
	}

	st, err := h.storySvc.Create(c.Request.Context(), req.Text, req.Type, req.Topic, req.Categories)
	if err != nil {
		switch err {
		case services.ErrInvalidStoryText, services.ErrInvalidStoryType,
			services.ErrInvalidTopic, services.ErrInvalidCategories:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, st)
}

// ListStories godoc
// @ID          listStories
// @Summary     List stories (paginated)
// @Description Returns a page of stories, optionally filtered by type. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Stories
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       type           query   string  false "Filter by story type"        example(adventure)
// @Param       page           query   int     false "Page number"                 minimum(1) default(1)
// @Param       per_page       query   int     false "Items per page"              minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListStoriesResponse
// @Header      200  {string} ETag           "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /stories [get]
func (h *Handlers) ListStories(c *gin.Context) {
	ctx := c.Request.Context()
	storyType := strings.TrimSpace(c.Query("type"))
	page, perPage := clampPagination(c)

	// ETag pre-check (best effort).
	if count, maxTS, err := h.storySvc.Stats(ctx, storyType); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.Unix()
		}
		etag := fmt.Sprintf(`W/"stories:%s:%d:%d"`, storyType, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, total, err := h.storySvc.ListPage(ctx, storyType, page, perPage)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	ok(c, http.StatusOK, ListStoriesResponse{
		Stories: items,
		Pagination: Pagination{
			Page:       page,
			PerPage:    perPage,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetStory godoc
// @ID          getStory
// @Summary     Fetch a story
// @Description Returns one story by id, including audio artifact metadata when present.
// @Tags        Stories
// @Produce     json
//
// @Param       id  path  int  true  "Story ID"  minimum(1) example(42)
//
// @Success     200  {object} handlers.StoryResponse
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Story not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /stories/{id} [get]
func (h *Handlers) GetStory(c *gin.Context) {
	ctx := c.Request.Context()
	id, okID := storyIDParam(c)
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "story id must be a positive integer")
		return
	}

	st, err := h.storySvc.Get(ctx, id)
	if err != nil {
		switch err {
		case services.ErrStoryNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "story not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	resp := StoryResponse{Story: st}
	if audio, err := h.audioSvc.GetByStory(ctx, id); err == nil {
		resp.Audio = audio
	}
	ok(c, http.StatusOK, resp)
}

// UpdateStory godoc
// @ID          updateStory
// @Summary     Update a story
// @Description Replaces a story's text, type, and topic. The title is re-derived from the new text.
// @Tags        Stories
// @Accept      json
// @Produce     json
//
// @Param       id    path  int                           true  "Story ID"  minimum(1) example(42)
// @Param       body  body  handlers.UpdateStoryRequest   true  "Update payload"
//
// @Success     200  {object} domain.Story
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     404  {object} handlers.ErrorResponse "Story not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /stories/{id} [put]
func (h *Handlers) UpdateStory(c *gin.Context) {
	id, okID := storyIDParam(c)
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "story id must be a positive integer")
		return
	}

	var req UpdateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text and type required")
		return
	}

	st, err := h.storySvc.Update(c.Request.Context(), id, req.Text, req.Type, req.Topic)
	if err != nil {
		switch err {
		case services.ErrStoryNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "story not found")
		case services.ErrInvalidStoryText, services.ErrInvalidStoryType, services.ErrInvalidTopic:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, st)
}

// ToggleFavorite godoc
// @ID          toggleFavorite
// @Summary     Set the favorite flag
// @Description Marks or unmarks a story as a favorite.
// @Tags        Stories
// @Accept      json
// @Produce     json
//
// @Param       id    path  int                       true  "Story ID"  minimum(1) example(42)
// @Param       body  body  handlers.FavoriteRequest  true  "Favorite payload"
//
// @Success     200  {object} domain.Story
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Story not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /stories/{id}/favorite [post]
func (h *Handlers) ToggleFavorite(c *gin.Context) {
	id, okID := storyIDParam(c)
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "story id must be a positive integer")
		return
	}

	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Favorite == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "favorite required (true or false)")
		return
	}

	st, err := h.storySvc.ToggleFavorite(c.Request.Context(), id, *req.Favorite)
	if err != nil {
		switch err {
		case services.ErrStoryNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "story not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, st)
}

// DeleteStory godoc
// @ID          deleteStory
// @Summary     Delete a story
// @Description Removes a story together with its audio artifact, queue entries, shares, and search index entry.
// @Tags        Stories
// @Produce     json
//
// @Param       id  path  int  true  "Story ID"  minimum(1) example(42)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Story not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /stories/{id} [delete]
func (h *Handlers) DeleteStory(c *gin.Context) {
	id, okID := storyIDParam(c)
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "story id must be a positive integer")
		return
	}

	if err := h.storySvc.Delete(c.Request.Context(), id); err != nil {
		switch err {
		case services.ErrStoryNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "story not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	noContent(c)
}

// SearchStories godoc
// @ID          searchStories
// @Summary     Search stories
// @Description Runs a full-text query over story text and topics, returning matches in relevance order.
// @Tags        Stories
// @Produce     json
//
// @Param       q      query  string  true  "Search query"                         example(dragon cave)
// @Param       mode   query  string  false "Search mode: text, topic, or both"    Enums(text, topic) example(text)
// @Param       limit  query  int     false "Maximum results"                      minimum(1) default(20)
//
// @Success     200  {object} handlers.SearchStoriesResponse
// @Failure     400  {object} handlers.ErrorResponse "Invalid query"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /stories/search [get]
func (h *Handlers) SearchStories(c *gin.Context) {
	query := c.Query("q")
	mode := c.Query("mode")
	limit := utils.AtoiDefault(c.Query("limit"), 0)

	items, err := h.storySvc.Search(c.Request.Context(), query, mode, limit)
	if err != nil {
		switch err {
		case services.ErrInvalidSearchQuery:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "query must contain searchable terms and a valid mode")
			return
		default:
			fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
			return
		}
	}
	if items == nil {
		items = []domain.Story{}
	}
	ok(c, http.StatusOK, SearchStoriesResponse{Stories: items})
}
