// Queue HTTP handlers.
//
// This file exposes REST endpoints for the single playback queue:
//   - GET  /queue  (read the queue in position order)
//   - PUT  /queue  (replace the whole queue atomically)
//   - POST /queue  (append one story at the end)
//
// The queue references stories by id; replacing it with a list containing an
// unknown story id leaves the previous queue untouched.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-story-backend/internal/repo"
	"github.com/tbourn/go-story-backend/internal/services"
)

//
// DTOs
//

// SetQueueRequest is the JSON payload for replacing the playback queue.
// An empty (or absent) list clears the queue. The same story id may appear
// more than once.
type SetQueueRequest struct {
	StoryIDs []int64 `json:"story_ids" example:"3,1,7"`
}

// AddQueueRequest is the JSON payload for appending one story to the queue.
type AddQueueRequest struct {
	StoryID int64 `json:"story_id" binding:"required,min=1" example:"42"`
}

// QueueResponse wraps the queue rows in position order.
type QueueResponse struct {
	Queue []repo.QueueRow `json:"queue"`
}

// AddQueueResponse reports where an appended story landed.
type AddQueueResponse struct {
	Position int `json:"position" example:"4"`
}

//
// Handlers
//

// GetQueue godoc
// @ID          getQueue
// @Summary     Read the playback queue
// @Description Returns the queue in position order with story display fields.
// @Tags        Queue
// @Produce     json
//
// @Success     200  {object} handlers.QueueResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /queue [get]
func (h *Handlers) GetQueue(c *gin.Context) {
	rows, err := h.queueSvc.Get(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, QueueResponse{Queue: rows})
}

// SetQueue godoc
// @ID          setQueue
// @Summary     Replace the playback queue
// @Description Atomically replaces the whole queue with the given story ids. An empty list
// @Description clears the queue. If any id does not exist, the previous queue is left
// @Description untouched and 400 is returned.
// @Tags        Queue
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.SetQueueRequest  true  "New queue content"
//
// @Success     200  {object} handlers.QueueResponse "The queue after the replace"
// @Failure     400  {object} handlers.ErrorResponse "Unknown story id in the list"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /queue [put]
func (h *Handlers) SetQueue(c *gin.Context) {
	ctx := c.Request.Context()

	var req SetQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	if err := h.queueSvc.Set(ctx, req.StoryIDs); err != nil {
		switch {
		case errors.Is(err, services.ErrQueueStoryMissing):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	rows, err := h.queueSvc.Get(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, QueueResponse{Queue: rows})
}

// AddToQueue godoc
// @ID          addToQueue
// @Summary     Append a story to the queue
// @Description Appends one story at the end of the queue and returns its position.
// @Tags        Queue
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.AddQueueRequest  true  "Story to append"
//
// @Success     201  {object} handlers.AddQueueResponse
// @Failure     400  {object} handlers.ErrorResponse "Unknown story id"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /queue [post]
func (h *Handlers) AddToQueue(c *gin.Context) {
	var req AddQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "story_id required")
		return
	}

	pos, err := h.queueSvc.Add(c.Request.Context(), req.StoryID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrQueueStoryMissing):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, AddQueueResponse{Position: pos})
}
