// Share HTTP handlers.
//
// This file exposes REST endpoints for story share tokens:
//   - POST   /stories/{id}/share  (mint a token)
//   - GET    /shared/{token}      (resolve a token, public read path)
//   - DELETE /shares/{token}      (revoke a token)
//
// Resolution fails closed: expired, revoked, and never-issued tokens are
// indistinguishable to the caller.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-story-backend/internal/services"
)

// CreateShareRequest is the JSON payload for minting a share token.
//
// TTLSeconds controls expiry:
//   - absent: the configured default TTL applies (no expiry if none is set),
//   - positive: the share expires that many seconds from now,
//   - zero or negative: the share is created already expired.
type CreateShareRequest struct {
	TTLSeconds *int64 `json:"ttl_seconds,omitempty" example:"86400"`
}

// CreateShare godoc
// @ID          createShare
// @Summary     Share a story
// @Description Mints an unguessable token granting read access to a story, with an
// @Description optional time-to-live in seconds.
// @Tags        Shares
// @Accept      json
// @Produce     json
//
// @Param       id    path  int                          true   "Story ID"  minimum(1) example(42)
// @Param       body  body  handlers.CreateShareRequest  false  "Share options"
//
// @Success     201  {object} domain.Share
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Story not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /stories/{id}/share [post]
func (h *Handlers) CreateShare(c *gin.Context) {
	id, okID := storyIDParam(c)
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "story id must be a positive integer")
		return
	}

	var req CreateShareRequest
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
			return
		}
	}

	var ttl *time.Duration
	if req.TTLSeconds != nil {
		d := time.Duration(*req.TTLSeconds) * time.Second
		ttl = &d
	}

	sh, err := h.shareSvc.Create(c.Request.Context(), id, ttl)
	if err != nil {
		switch err {
		case services.ErrStoryNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "story not found")
		case services.ErrTokenCollision:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not allocate a share token")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, sh)
}

// ResolveShare godoc
// @ID          resolveShare
// @Summary     Resolve a share token
// @Description Returns the shared story (and audio metadata when present) for a valid
// @Description token and counts the access. Expired, revoked, and unknown tokens all
// @Description yield 404.
// @Tags        Shares
// @Produce     json
//
// @Param       token  path  string  true  "Share token"  example(4f1c9a2b8d3e06b5a7c1d2e3f4a5b6c7)
//
// @Success     200  {object} services.SharedStory
// @Failure     404  {object} handlers.ErrorResponse "Unknown, expired, or revoked token"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /shared/{token} [get]
func (h *Handlers) ResolveShare(c *gin.Context) {
	shared, err := h.shareSvc.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		switch err {
		case services.ErrShareNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "share not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, shared)
}

// RevokeShare godoc
// @ID          revokeShare
// @Summary     Revoke a share token
// @Description Permanently disables a share token. Subsequent resolves behave as if the
// @Description token never existed.
// @Tags        Shares
// @Produce     json
//
// @Param       token  path  string  true  "Share token"  example(4f1c9a2b8d3e06b5a7c1d2e3f4a5b6c7)
//
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Unknown token"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /shares/{token} [delete]
func (h *Handlers) RevokeShare(c *gin.Context) {
	if err := h.shareSvc.Revoke(c.Request.Context(), c.Param("token")); err != nil {
		switch err {
		case services.ErrShareNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "share not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	noContent(c)
}
