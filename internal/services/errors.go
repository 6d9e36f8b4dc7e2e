// Package services defines the business logic for stories, audio artifacts,
// the playback queue, shares, and the generation pipeline. This file
// centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler/controller layer.
package services

import "errors"

// Validation errors (map to 400 at the HTTP layer).
var (
	// ErrInvalidStoryText is returned when story text is empty or outside the
	// configured rune bounds.
	ErrInvalidStoryText = errors.New("story text length out of bounds")

	// ErrInvalidStoryType is returned when a story type does not match the
	// lowercase slug pattern.
	ErrInvalidStoryType = errors.New("invalid story type")

	// ErrInvalidTopic is returned when a topic exceeds the allowed length.
	ErrInvalidTopic = errors.New("invalid topic")

	// ErrInvalidCategories is returned when the category list is too long or
	// contains an empty/oversized entry.
	ErrInvalidCategories = errors.New("invalid categories")

	// ErrInvalidSearchQuery is returned when a search query is outside the
	// configured length bounds or contains no searchable terms.
	ErrInvalidSearchQuery = errors.New("invalid search query")

	// ErrEmptyPrompt is returned when a generation prompt is empty or only
	// whitespace.
	ErrEmptyPrompt = errors.New("prompt must not be empty")

	// ErrPromptTooLong is returned when a generation prompt exceeds the
	// character or token budget.
	ErrPromptTooLong = errors.New("prompt too long")

	// ErrSpeechTextTooLong is returned when story text exceeds the synthesis
	// character budget.
	ErrSpeechTextTooLong = errors.New("story text too long for speech synthesis")

	// ErrQueueStoryMissing is returned when a queue write references a story
	// id that does not exist. The queue is left untouched.
	ErrQueueStoryMissing = errors.New("queued story does not exist")
)

// Not-found errors (map to 404).
var (
	// ErrStoryNotFound indicates that the requested story does not exist.
	ErrStoryNotFound = errors.New("story not found")

	// ErrAudioNotFound indicates that the story has no audio artifact.
	ErrAudioNotFound = errors.New("audio artifact not found")

	// ErrShareNotFound indicates that a share token is unknown, expired, or
	// revoked. The three cases are deliberately indistinguishable.
	ErrShareNotFound = errors.New("share not found")
)

// Conflict and storage errors.
var (
	// ErrAudioFilenameTaken is returned when an artifact filename collides
	// with one already registered for another story.
	ErrAudioFilenameTaken = errors.New("audio filename already in use")

	// ErrTokenCollision is returned when share token generation keeps
	// colliding after bounded attempts.
	ErrTokenCollision = errors.New("could not generate a unique share token")
)

// Generation errors.
var (
	// ErrGenerationFailed wraps the last provider error once every configured
	// provider has been exhausted or a permanent failure stopped the loop.
	ErrGenerationFailed = errors.New("generation failed")
)
