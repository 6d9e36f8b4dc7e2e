// Package services – GenerationService
//
// This file implements GenerationService, the pipeline that turns a prompt
// into a persisted story and, on request, a story into a persisted audio
// artifact. It walks the configured provider adapters in order, falling
// back to the next one only on transient failures and at most once per
// alternate, and treats the local persist step as the non-cancellable
// commit point: cancellation before persist abandons the in-flight provider
// call and leaves no partial rows.
//
// No database transaction is ever held open across a provider call; the
// pipeline persists after the call returns.
//
// Observability: the request states (TextGenerating, TextPersisted,
// AudioGenerating, AudioPersisted, Completed) are recorded as span events,
// not as rows.

package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-story-backend/internal/cache"
	"github.com/tbourn/go-story-backend/internal/domain"
	"github.com/tbourn/go-story-backend/internal/media"
	"github.com/tbourn/go-story-backend/internal/provider"
	"github.com/tbourn/go-story-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// speechFormat is the container every synthesized artifact is stored in.
const speechFormat = "mp3"

// speechCharsPerSecond is the speaking rate used to estimate playback
// duration from text length. Narration hovers around 15 characters per
// second across the supported voices.
const speechCharsPerSecond = 15.0

// GenerationService orchestrates text generation and speech synthesis
// against the configured provider adapters.
type GenerationService struct {
	// DB is the GORM handle used for story lookups.
	DB *gorm.DB
	// Stories persists generated texts.
	Stories *StoryService
	// Audio persists synthesized artifacts.
	Audio *AudioService
	// Media stores artifact bytes before the row is saved.
	Media *media.Store

	// Text holds the text generators in fallback order; index 0 is the
	// primary. Speech holds the synthesizers the same way.
	Text   []provider.TextGenerator
	Speech []provider.SpeechSynthesizer

	// Cache short-circuits repeat generations of the same prompt. May be
	// nil to disable caching.
	Cache *cache.Results

	// ProviderTimeout bounds each individual provider call. Defaults to 45s.
	ProviderTimeout time.Duration

	// Prompt budgets, checked before any provider call.
	PromptMaxRunes  int
	PromptMaxTokens int

	// SpeechMaxRunes bounds the text sent to speech synthesis.
	SpeechMaxRunes int

	// TextParams are passed to every text generation call; TextParams.Model
	// also feeds the token estimator.
	TextParams provider.TextParams

	// SpeechModel overrides the synthesizer's default model when set.
	SpeechModel string

	locks storyLocks
}

// GenerateStory produces a story from prompt via the text providers and
// persists it with the given type, topic, and categories. providerPref
// names the adapter to try first; empty keeps the configured order.
//
// Repeat prompts are served from the cache when the cached story still
// exists. Errors: ErrEmptyPrompt, ErrPromptTooLong, validation errors for
// type/topic/categories, and ErrGenerationFailed wrapping the last provider
// error when all providers are exhausted or a permanent failure stops the
// loop.
func (g *GenerationService) GenerateStory(ctx context.Context, prompt, storyType string, topic *string, categories []string, providerPref string) (*domain.Story, error) {
	tr := otel.Tracer("services/GenerationService")
	ctx, span := tr.Start(ctx, "GenerateStory",
		trace.WithAttributes(
			attribute.String("story.type", storyType),
			attribute.String("provider.pref", providerPref),
		),
	)
	defer span.End()

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	maxRunes := g.PromptMaxRunes
	if maxRunes <= 0 {
		maxRunes = 20000
	}
	if utf8.RuneCountInString(prompt) > maxRunes {
		return nil, ErrPromptTooLong
	}
	if g.PromptMaxTokens > 0 {
		if provider.EstimateTokens(g.TextParams.Model, prompt) > g.PromptMaxTokens {
			return nil, ErrPromptTooLong
		}
	}

	// Validate the metadata before spending provider quota; Create checks
	// it again at persist time.
	if !typeTagRE.MatchString(storyType) {
		return nil, ErrInvalidStoryType
	}
	if _, err := g.Stories.normalizeTopic(topic); err != nil {
		return nil, err
	}
	if _, err := g.Stories.encodeCategories(categories); err != nil {
		return nil, err
	}

	key := g.cacheKey(prompt, storyType, topic)
	if g.Cache != nil {
		if id, ok := g.Cache.Get(key); ok {
			st, err := repo.GetStory(ctx, g.DB, id)
			if err == nil {
				span.SetAttributes(attribute.Bool("cache.hit", true))
				return st, nil
			}
			// cached story is gone, regenerate
			g.Cache.Remove(key)
		}
	}

	span.AddEvent("TextGenerating")
	text, used, err := g.generateText(ctx, span, prompt, providerPref)
	if err != nil {
		span.AddEvent("Failed")
		return nil, err
	}

	// Persist is the commit point; a caller hanging up now must not leave
	// the story unwritten after the provider already charged us.
	pctx := context.WithoutCancel(ctx)
	st, err := g.Stories.Create(pctx, text, storyType, topic, categories)
	if err != nil {
		span.AddEvent("Failed")
		if errors.Is(err, ErrInvalidStoryText) {
			// provider returned text outside the story bounds
			return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
		}
		return nil, err
	}
	span.AddEvent("TextPersisted")

	if g.Cache != nil {
		g.Cache.Set(key, st.ID)
	}

	span.SetAttributes(
		attribute.Int64("story.id", st.ID),
		attribute.String("provider.used", used),
	)
	span.AddEvent("Completed")
	return st, nil
}

// GenerateAudio synthesizes speech for a story's text and persists the
// artifact, replacing any previous one. Concurrent calls for the same story
// are serialized by a per-story lock; different stories proceed in
// parallel.
//
// Errors: ErrStoryNotFound, ErrSpeechTextTooLong, and ErrGenerationFailed
// wrapping the last provider error.
func (g *GenerationService) GenerateAudio(ctx context.Context, storyID int64, providerPref, voiceID string, voiceSettings *string) (*domain.AudioFile, error) {
	tr := otel.Tracer("services/GenerationService")
	ctx, span := tr.Start(ctx, "GenerateAudio",
		trace.WithAttributes(
			attribute.Int64("story.id", storyID),
			attribute.String("provider.pref", providerPref),
		),
	)
	defer span.End()

	lock := g.locks.acquire(storyID)
	defer g.locks.release(storyID, lock)

	st, err := repo.GetStory(ctx, g.DB, storyID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrStoryNotFound
		}
		return nil, err
	}

	maxRunes := g.SpeechMaxRunes
	if maxRunes <= 0 {
		maxRunes = 50000
	}
	if utf8.RuneCountInString(st.Text) > maxRunes {
		return nil, ErrSpeechTextTooLong
	}

	span.AddEvent("AudioGenerating")
	params := provider.SpeechParams{
		VoiceID: voiceID,
		Model:   g.SpeechModel,
		Format:  speechFormat,
	}
	audio, used, err := g.synthesize(ctx, span, st.Text, params, providerPref)
	if err != nil {
		span.AddEvent("Failed")
		return nil, err
	}

	filename := artifactFilename(storyID)
	size, err := g.Media.Write(filename, bytes.NewReader(audio))
	if err != nil {
		span.AddEvent("Failed")
		return nil, err
	}

	duration := float64(utf8.RuneCountInString(st.Text)) / speechCharsPerSecond

	// Same commit-point rule as GenerateStory: the row write no longer
	// honors cancellation once the bytes are on disk.
	pctx := context.WithoutCancel(ctx)
	af, err := g.Audio.Save(pctx, storyID, filename, size, duration, used, voiceID, voiceSettings)
	if err != nil {
		// no row, so the file must not stay behind
		_ = g.Media.Remove(filename)
		span.AddEvent("Failed")
		return nil, err
	}
	span.AddEvent("AudioPersisted")

	span.SetAttributes(
		attribute.Int64("audio.id", af.ID),
		attribute.String("provider.used", used),
	)
	span.AddEvent("Completed")
	return af, nil
}

// generateText walks the text providers in order and returns the first
// successful completion plus the name of the provider that produced it.
func (g *GenerationService) generateText(ctx context.Context, span trace.Span, prompt, pref string) (string, string, error) {
	gens := orderTextProviders(g.Text, pref)
	if len(gens) == 0 {
		return "", "", fmt.Errorf("%w: no text provider configured", ErrGenerationFailed)
	}

	var lastErr error
	for _, p := range gens {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout())
		text, err := p.GenerateText(callCtx, prompt, g.TextParams)
		cancel()
		if err == nil {
			return text, p.Name(), nil
		}
		lastErr = err
		span.AddEvent("provider error", trace.WithAttributes(
			attribute.String("provider", p.Name()),
			attribute.String("error.kind", string(provider.KindOf(err))),
		))
		if !provider.Transient(err) {
			break
		}
		// A dead parent context classifies as a timeout too; do not fall
		// back when the caller is already gone.
		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}
	}
	return "", "", fmt.Errorf("%w: %w", ErrGenerationFailed, lastErr)
}

// synthesize walks the speech providers in order, same policy as
// generateText.
func (g *GenerationService) synthesize(ctx context.Context, span trace.Span, text string, params provider.SpeechParams, pref string) ([]byte, string, error) {
	syns := orderSpeechProviders(g.Speech, pref)
	if len(syns) == 0 {
		return nil, "", fmt.Errorf("%w: no speech provider configured", ErrGenerationFailed)
	}

	var lastErr error
	for _, p := range syns {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout())
		audio, err := p.SynthesizeSpeech(callCtx, text, params)
		cancel()
		if err == nil {
			return audio, p.Name(), nil
		}
		lastErr = err
		span.AddEvent("provider error", trace.WithAttributes(
			attribute.String("provider", p.Name()),
			attribute.String("error.kind", string(provider.KindOf(err))),
		))
		if !provider.Transient(err) {
			break
		}
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
	}
	return nil, "", fmt.Errorf("%w: %w", ErrGenerationFailed, lastErr)
}

func (g *GenerationService) timeout() time.Duration {
	if g.ProviderTimeout > 0 {
		return g.ProviderTimeout
	}
	return 45 * time.Second
}

// cacheKey fingerprints a generation request. Categories are display
// metadata and deliberately not part of the key.
func (g *GenerationService) cacheKey(prompt, storyType string, topic *string) string {
	top := ""
	if topic != nil {
		top = *topic
	}
	return cache.Key(prompt, storyType, top)
}

// artifactFilename builds a fresh unique media name for a story's audio.
func artifactFilename(storyID int64) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("story_%d_%s.%s", storyID, id, speechFormat)
}

// orderTextProviders moves the preferred adapter to the front; an unknown
// preference keeps the configured order.
func orderTextProviders(gens []provider.TextGenerator, pref string) []provider.TextGenerator {
	if pref == "" {
		return gens
	}
	for i, p := range gens {
		if p.Name() != pref {
			continue
		}
		if i == 0 {
			return gens
		}
		out := make([]provider.TextGenerator, 0, len(gens))
		out = append(out, p)
		out = append(out, gens[:i]...)
		out = append(out, gens[i+1:]...)
		return out
	}
	return gens
}

// orderSpeechProviders mirrors orderTextProviders for synthesizers.
func orderSpeechProviders(syns []provider.SpeechSynthesizer, pref string) []provider.SpeechSynthesizer {
	if pref == "" {
		return syns
	}
	for i, p := range syns {
		if p.Name() != pref {
			continue
		}
		if i == 0 {
			return syns
		}
		out := make([]provider.SpeechSynthesizer, 0, len(syns))
		out = append(out, p)
		out = append(out, syns[:i]...)
		out = append(out, syns[i+1:]...)
		return out
	}
	return syns
}

// storyLocks hands out one mutex per story id so audio regeneration is
// serialized per story without a global lock. Entries are reference counted
// and dropped when the last holder releases, keeping the map bounded by the
// number of in-flight generations.
type storyLocks struct {
	mu    sync.Mutex
	locks map[int64]*storyLock
}

type storyLock struct {
	mu   sync.Mutex
	refs int
}

func (l *storyLocks) acquire(id int64) *storyLock {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[int64]*storyLock)
	}
	e, ok := l.locks[id]
	if !ok {
		e = &storyLock{}
		l.locks[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	return e
}

func (l *storyLocks) release(id int64, e *storyLock) {
	e.mu.Unlock()

	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, id)
	}
	l.mu.Unlock()
}
