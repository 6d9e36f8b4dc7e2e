// Package services – StoryService
//
// This file implements StoryService, the application-level component that
// owns the story lifecycle. It validates text, type, topic, and categories,
// derives a display title from the opening words of the text, and pairs
// every row mutation with the matching full-text index write inside one
// transaction so the index never drifts from the stories table. Deleting a
// story cascades to its audio artifact, queue entries, shares, and index
// entry in the same transaction.
//
// Observability: all public methods are OpenTelemetry-instrumented; spans
// include story identifiers and pagination/search parameters where
// applicable.

package services

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/tbourn/go-story-backend/internal/domain"
	"github.com/tbourn/go-story-backend/internal/media"
	"github.com/tbourn/go-story-backend/internal/repo"
	"github.com/tbourn/go-story-backend/internal/search"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// typeTagRE is the allowed shape of a story type: a short lowercase slug.
var typeTagRE = regexp.MustCompile(`^[a-z0-9_-]{1,32}$`)

// titleFallback is stored when the text yields no usable title words.
const titleFallback = "Untitled"

// StoryService coordinates story persistence, validation, title derivation,
// and full-text search. Deletes cascade across dependent tables and remove
// the audio backing file after commit.
type StoryService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Media removes audio backing files once a delete cascade has
	// committed. May be nil in setups without audio.
	Media *media.Store

	// Validation bounds (rune counts; zero falls back to defaults).
	TextMinRunes     int
	TextMaxRunes     int
	TopicMaxRunes    int
	MaxCategories    int
	CategoryMaxRunes int
	QueryMinRunes    int
	QueryMaxRunes    int

	// SearchLimit is the result cap applied when a caller passes none.
	SearchLimit int

	// Title generation config
	TitleLocale language.Tag
	TitleMaxLen int
}

// NewStoryService constructs a StoryService with the documented default bounds.
func NewStoryService(db *gorm.DB, store *media.Store) *StoryService {
	return &StoryService{
		DB:               db,
		Media:            store,
		TextMinRunes:     10,
		TextMaxRunes:     50000,
		TopicMaxRunes:    200,
		MaxCategories:    20,
		CategoryMaxRunes: 50,
		QueryMinRunes:    2,
		QueryMaxRunes:    500,
		SearchLimit:      20,
		TitleMaxLen:      80,
		TitleLocale:      language.Und,
	}
}

// Create validates and persists a new story, writing its index entry in the
// same transaction. Categories are stored as a JSON array, nil when absent.
func (s *StoryService) Create(ctx context.Context, text, storyType string, topic *string, categories []string) (*domain.Story, error) {
	tr := otel.Tracer("services/StoryService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("story.type", storyType)),
	)
	defer span.End()

	text = strings.TrimSpace(text)
	if err := s.validateText(text); err != nil {
		return nil, err
	}
	if !typeTagRE.MatchString(storyType) {
		return nil, ErrInvalidStoryType
	}
	topic, err := s.normalizeTopic(topic)
	if err != nil {
		return nil, err
	}
	cats, err := s.encodeCategories(categories)
	if err != nil {
		return nil, err
	}

	title := s.deriveTitle(text)

	var created *domain.Story
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st, err := repo.CreateStory(ctx, tx, text, storyType, title, topic, cats)
		if err != nil {
			return err
		}
		if err := repo.IndexUpsert(ctx, tx, st.ID, st.Text, st.Topic); err != nil {
			return err
		}
		created = st
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int64("story.id", created.ID))
	return created, nil
}

// Get returns the story with the given id, or ErrStoryNotFound.
func (s *StoryService) Get(ctx context.Context, id int64) (*domain.Story, error) {
	tr := otel.Tracer("services/StoryService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(attribute.Int64("story.id", id)),
	)
	defer span.End()

	st, err := repo.GetStory(ctx, s.DB, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrStoryNotFound
		}
		return nil, err
	}
	return st, nil
}

// ListPage returns a page of stories of the given type, newest first. An
// empty storyType lists every story. It applies defaults for invalid
// page/pageSize and returns the total count for pagination metadata.
func (s *StoryService) ListPage(ctx context.Context, storyType string, page, pageSize int) ([]domain.Story, int64, error) {
	tr := otel.Tracer("services/StoryService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.String("story.type", storyType),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := repo.CountStories(ctx, s.DB, storyType)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Story{}, 0, nil
	}

	items, err := repo.ListStoriesPage(ctx, s.DB, storyType, offset, pageSize)
	return items, total, err
}

// Stats returns the story count and latest update time for a type (empty
// type covers all stories). Handlers use it for conditional responses.
func (s *StoryService) Stats(ctx context.Context, storyType string) (int64, *time.Time, error) {
	return repo.StoriesStats(ctx, s.DB, storyType)
}

// Update replaces a story's text, type, and topic under the same validation
// as Create, re-derives the title, and refreshes the index entry in the
// same transaction. Returns the updated story.
func (s *StoryService) Update(ctx context.Context, id int64, text, storyType string, topic *string) (*domain.Story, error) {
	tr := otel.Tracer("services/StoryService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(attribute.Int64("story.id", id)),
	)
	defer span.End()

	text = strings.TrimSpace(text)
	if err := s.validateText(text); err != nil {
		return nil, err
	}
	if !typeTagRE.MatchString(storyType) {
		return nil, ErrInvalidStoryType
	}
	topic, err := s.normalizeTopic(topic)
	if err != nil {
		return nil, err
	}

	title := s.deriveTitle(text)

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := map[string]any{
			"text":  text,
			"type":  storyType,
			"title": title,
			"topic": topic,
		}
		if err := repo.UpdateStoryFields(ctx, tx, id, fields); err != nil {
			if isNotFound(err) {
				return ErrStoryNotFound
			}
			return err
		}
		return repo.IndexUpsert(ctx, tx, id, text, topic)
	})
	if err != nil {
		return nil, err
	}

	return repo.GetStory(ctx, s.DB, id)
}

// ToggleFavorite sets the favorite flag and returns the updated story.
func (s *StoryService) ToggleFavorite(ctx context.Context, id int64, value bool) (*domain.Story, error) {
	tr := otel.Tracer("services/StoryService")
	ctx, span := tr.Start(ctx, "ToggleFavorite",
		trace.WithAttributes(
			attribute.Int64("story.id", id),
			attribute.Bool("favorite", value),
		),
	)
	defer span.End()

	if err := repo.SetFavorite(ctx, s.DB, id, value); err != nil {
		if isNotFound(err) {
			return nil, ErrStoryNotFound
		}
		return nil, err
	}
	return repo.GetStory(ctx, s.DB, id)
}

// Delete removes a story and everything hanging off it in one transaction:
// the audio artifact row, queue entries (survivors renumbered to a dense
// run), shares, the index entry, and finally the story row. Any failure
// rolls the whole cascade back. The audio backing file is removed after
// commit; the database is authoritative, disk cleanup is best-effort.
func (s *StoryService) Delete(ctx context.Context, id int64) error {
	tr := otel.Tracer("services/StoryService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(attribute.Int64("story.id", id)),
	)
	defer span.End()

	var orphanedFile string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		af, err := repo.GetAudioByStory(tx, id)
		switch {
		case err == nil:
			orphanedFile = af.Filename
			if err := repo.DeleteAudioRow(tx, af.ID); err != nil {
				return err
			}
		case isNotFound(err):
			// story has no artifact
		default:
			return err
		}

		if _, err := repo.DeleteQueueEntriesForStory(tx, id); err != nil {
			return err
		}
		if err := repo.RenumberQueue(tx); err != nil {
			return err
		}
		if _, err := repo.DeleteSharesForStory(ctx, tx, id); err != nil {
			return err
		}
		if err := repo.IndexDelete(ctx, tx, id); err != nil {
			return err
		}
		if err := repo.DeleteStoryRow(ctx, tx, id); err != nil {
			if isNotFound(err) {
				return ErrStoryNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	if orphanedFile != "" && s.Media != nil {
		// Row is gone; the store logs a warning if the file lingers.
		_ = s.Media.Remove(orphanedFile)
	}
	return nil
}

// Search runs a ranked full-text query over story text and topic. The mode
// selects combined ("all", the default), text-only, or topic-only matching.
// Queries outside the configured rune bounds, with an unknown mode, or with
// no searchable terms return ErrInvalidSearchQuery.
func (s *StoryService) Search(ctx context.Context, query, mode string, limit int) ([]domain.Story, error) {
	tr := otel.Tracer("services/StoryService")
	ctx, span := tr.Start(ctx, "Search",
		trace.WithAttributes(
			attribute.String("query", query),
			attribute.String("mode", mode),
			attribute.Int("limit", limit),
		),
	)
	defer span.End()

	query = strings.TrimSpace(query)
	n := utf8.RuneCountInString(query)
	if n < s.queryMin() || n > s.queryMax() {
		return nil, ErrInvalidSearchQuery
	}
	m, ok := search.ParseMode(mode)
	if !ok {
		return nil, ErrInvalidSearchQuery
	}
	match, ok := search.BuildMatch(query, m)
	if !ok {
		return nil, ErrInvalidSearchQuery
	}
	if limit <= 0 {
		limit = s.SearchLimit
	}
	if limit <= 0 {
		limit = 20
	}

	return repo.SearchStories(ctx, s.DB, match, limit)
}

// --- Validation helpers ---

func (s *StoryService) validateText(text string) error {
	min := s.TextMinRunes
	if min <= 0 {
		min = 10
	}
	max := s.TextMaxRunes
	if max <= 0 {
		max = 50000
	}
	n := utf8.RuneCountInString(text)
	if n < min || n > max {
		return ErrInvalidStoryText
	}
	return nil
}

// normalizeTopic trims the topic and collapses a blank one to nil.
func (s *StoryService) normalizeTopic(topic *string) (*string, error) {
	if topic == nil {
		return nil, nil
	}
	t := strings.TrimSpace(*topic)
	if t == "" {
		return nil, nil
	}
	max := s.TopicMaxRunes
	if max <= 0 {
		max = 200
	}
	if utf8.RuneCountInString(t) > max {
		return nil, ErrInvalidTopic
	}
	return &t, nil
}

// encodeCategories validates the list and serializes it to a JSON array.
// An empty list is stored as nil, not "[]".
func (s *StoryService) encodeCategories(cats []string) (*string, error) {
	if len(cats) == 0 {
		return nil, nil
	}
	maxCount := s.MaxCategories
	if maxCount <= 0 {
		maxCount = 20
	}
	maxRunes := s.CategoryMaxRunes
	if maxRunes <= 0 {
		maxRunes = 50
	}
	if len(cats) > maxCount {
		return nil, ErrInvalidCategories
	}
	clean := make([]string, 0, len(cats))
	for _, c := range cats {
		c = strings.TrimSpace(c)
		if c == "" || utf8.RuneCountInString(c) > maxRunes {
			return nil, ErrInvalidCategories
		}
		clean = append(clean, c)
	}
	b, err := json.Marshal(clean)
	if err != nil {
		return nil, ErrInvalidCategories
	}
	out := string(b)
	return &out, nil
}

func (s *StoryService) queryMin() int {
	if s.QueryMinRunes > 0 {
		return s.QueryMinRunes
	}
	return 2
}

func (s *StoryService) queryMax() int {
	if s.QueryMaxRunes > 0 {
		return s.QueryMaxRunes
	}
	return 500
}

// --- Title derivation ---

// deriveTitle builds a concise display title from the first significant
// words of the text: stop-words dropped, each word title-cased, at most
// eight words, clipped to the configured rune length.
func (s *StoryService) deriveTitle(text string) string {
	toks := titleWordRE.FindAllString(strings.ToLower(text), -1)
	if len(toks) == 0 {
		return titleFallback
	}

	titleCaser := cases.Title(s.titleLocaleOrDefault())
	out := make([]string, 0, 8)
	for _, w := range toks {
		if _, skip := titleStopWords[w]; skip {
			continue
		}
		out = append(out, titleCaser.String(w))
		if len(out) >= 8 {
			break
		}
	}
	if len(out) == 0 {
		return titleFallback
	}
	return s.clipTitle(strings.Join(out, " "))
}

// clipTitle truncates a derived title to the configured maximum rune length.
func (s *StoryService) clipTitle(title string) string {
	max := s.TitleMaxLen
	if max <= 0 {
		max = 80
	}
	if utf8.RuneCountInString(title) > max {
		return string([]rune(title)[:max])
	}
	return title
}

// titleLocaleOrDefault returns the configured locale for casing or English
// if unset.
func (s *StoryService) titleLocaleOrDefault() language.Tag {
	if s.TitleLocale == language.Und {
		return language.English
	}
	return s.TitleLocale
}

// --- Title generation helpers ---

// Extract Unicode letters with optional trailing numbers (e.g., "chapter2").
var titleWordRE = regexp.MustCompile(`[\p{L}]+[\p{N}]*`)

// Minimal English stop-words set for compact titles.
var titleStopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {}, "to": {}, "in": {},
	"is": {}, "are": {}, "for": {}, "on": {}, "with": {}, "by": {}, "from": {},
	"at": {}, "as": {}, "that": {}, "this": {}, "it": {}, "be": {}, "was": {}, "were": {},
}

// isNotFound treats repo-level not-found sentinels as "not found" in a
// driver-agnostic way. It also checks gorm.ErrRecordNotFound for safety.
func isNotFound(err error) bool {
	if errors.Is(err, repo.ErrNotFound) {
		return true
	}
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicate attempts to detect unique-constraint violations across drivers
// that may not map to gorm.ErrDuplicatedKey.
func isDuplicate(err error) bool {
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
