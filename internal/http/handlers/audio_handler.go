// Audio HTTP handlers.
//
// This file exposes REST endpoints for story audio artifacts:
//   - POST /stories/{id}/audio  (synthesize speech for a story)
//   - GET  /stories/{id}/audio  (stream the audio file, Range-capable)
//
// Synthesis runs through the generation pipeline with provider fallback;
// downloads are served straight from the media store via http.ServeContent
// so clients can seek without re-downloading.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-story-backend/internal/media"
)

// GenerateAudioRequest is the JSON payload for synthesizing story audio.
// All fields are optional; an empty body uses the configured provider order
// and the provider's default voice.
type GenerateAudioRequest struct {
	// Provider optionally names the adapter to try first (e.g. "openai").
	Provider string `json:"provider,omitempty" example:"openai"`
	// VoiceID selects a provider-specific voice; empty uses the provider default.
	VoiceID string `json:"voice_id,omitempty" example:"alloy"`
	// VoiceSettings is an opaque JSON blob recorded with the artifact.
	VoiceSettings json.RawMessage `json:"voice_settings,omitempty" swaggertype:"object"`
}

// GenerateAudio godoc
// @ID          generateAudio
// @Summary     Synthesize audio for a story
// @Description Runs text-to-speech over the story text and stores the resulting artifact,
// @Description replacing any previous one. Falls back across configured providers on
// @Description transient failures.
// @Tags        Audio
// @Accept      json
// @Produce     json
//
// @Param       id    path  int                            true   "Story ID"  minimum(1) example(42)
// @Param       body  body  handlers.GenerateAudioRequest  false  "Synthesis options"
//
// @Success     201  {object} domain.AudioFile
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Story not found"
// @Failure     502  {object} handlers.ErrorResponse "All providers failed"
// @Router      /stories/{id}/audio [post]
func (h *Handlers) GenerateAudio(c *gin.Context) {
	id, okID := storyIDParam(c)
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "story id must be a positive integer")
		return
	}

	var req GenerateAudioRequest
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
			return
		}
	}

	var settings *string
	if len(req.VoiceSettings) > 0 {
		s := string(req.VoiceSettings)
		settings = &s
	}

	artifact, err := h.genSvc.GenerateAudio(c.Request.Context(), id, req.Provider, req.VoiceID, settings)
	if err != nil {
		generationFail(c, err)
		return
	}
	ok(c, http.StatusCreated, artifact)
}

// DownloadAudio godoc
// @ID          downloadAudio
// @Summary     Download story audio
// @Description Streams the audio artifact for a story. Supports HTTP Range requests for seeking.
// @Tags        Audio
// @Produce     audio/mpeg
//
// @Param       id  path  int  true  "Story ID"  minimum(1) example(42)
//
// @Success     200  {file}   file                   "Audio bytes"
// @Success     206  {file}   file                   "Partial content"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "No audio for this story"
// @Router      /stories/{id}/audio [get]
func (h *Handlers) DownloadAudio(c *gin.Context) {
	id, okID := storyIDParam(c)
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "story id must be a positive integer")
		return
	}

	f, meta, err := h.audioSvc.Open(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "no audio for this story")
		return
	}
	defer f.Close()

	c.Header("Content-Type", media.ContentType(meta.Filename))
	c.Header("Content-Disposition", `inline; filename="`+meta.Filename+`"`)
	http.ServeContent(c.Writer, c.Request, meta.Filename, meta.CreatedAt, f)
}
