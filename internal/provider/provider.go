// Package provider wraps the external text and speech services behind small
// interfaces with a uniform error taxonomy.
//
// Every failure crossing this boundary is reported as *Error carrying the
// provider name and a Kind, so callers can decide about retries and fallback
// without inspecting vendor SDK types. Kinds split into transient
// (KindTimeout, KindUnavailable) and permanent (everything else): a fallback
// provider is only worth trying for transient failures, while permanent ones
// would fail identically everywhere.
package provider

import (
	"context"
	"errors"
	"fmt"
)

// Kind classifies a provider failure.
type Kind string

const (
	// KindTimeout means the call exceeded its deadline.
	KindTimeout Kind = "timeout"
	// KindUnavailable means the provider could not serve the call right now
	// (network failure, 5xx, empty completion).
	KindUnavailable Kind = "unavailable"
	// KindAuth means the credentials were rejected.
	KindAuth Kind = "auth"
	// KindQuota means a rate or usage limit was exhausted.
	KindQuota Kind = "quota"
	// KindInvalidRequest means the provider rejected the request content.
	KindInvalidRequest Kind = "invalid_request"
	// KindUnsupportedFormat means the requested audio output format is not
	// supported by the provider.
	KindUnsupportedFormat Kind = "unsupported_format"
)

// Error is the uniform failure type returned by every provider method.
type Error struct {
	Provider string
	Kind     Kind
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Transient reports whether retrying elsewhere could plausibly succeed.
func (e *Error) Transient() bool {
	return e.Kind == KindTimeout || e.Kind == KindUnavailable
}

// Transient reports whether err is a transient *Error. Non-provider errors
// are never transient.
func Transient(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Transient()
}

// KindOf extracts the Kind from err, or "" when err is not a provider error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// TextParams tunes one text generation call. A zero Model falls back to the
// adapter's configured default.
type TextParams struct {
	Model           string
	MaxOutputTokens int
	Temperature     float32
}

// TextGenerator produces story text from a prompt.
type TextGenerator interface {
	// Name identifies the provider in errors, logs and metrics.
	Name() string
	// GenerateText runs one completion. Failures are always *Error.
	GenerateText(ctx context.Context, prompt string, p TextParams) (string, error)
}

// SpeechParams tunes one narration synthesis call. A zero Model falls back
// to the adapter's configured default.
type SpeechParams struct {
	VoiceID string
	Model   string
	Format  string
}

// SpeechSynthesizer renders story text as narration audio.
type SpeechSynthesizer interface {
	// Name identifies the provider in errors, logs and metrics.
	Name() string
	// SynthesizeSpeech runs one speech rendering. Failures are always *Error.
	SynthesizeSpeech(ctx context.Context, text string, p SpeechParams) ([]byte, error)
}
