// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Story model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition. Keeping the handle explicit matters
// here: story mutations must share one transaction with the search-index
// writes (see search_index.go), so callers pass the tx handle down.
//
// Error semantics:
//   - When a story is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Functions:
//
//   - CreateStory(ctx, db, text, storyType, title, topic, categories) -> *domain.Story, error
//     Inserts a new Story row with UTC timestamps; the id is assigned by
//     the database (monotonic AUTOINCREMENT).
//
//   - GetStory(ctx, db, id) -> *domain.Story, error
//     Fetches a single story by id, or ErrNotFound if missing.
//
//   - CountStories(ctx, db, storyType) -> (int64, error)
//     Returns the number of stories, optionally filtered by type.
//
//   - ListStoriesPage(ctx, db, storyType, offset, limit) -> []domain.Story, error
//     Returns a paginated slice of stories, newest first.
//
//   - UpdateStoryFields(ctx, db, id, fields) -> error
//     Applies a partial update; returns ErrNotFound when no row matches.
//
//   - SetFavorite(ctx, db, id, value) -> error
//     Sets the favorite flag; returns ErrNotFound when no row matches.
//
//   - DeleteStoryRow(ctx, db, id) -> error
//     Deletes the story row only. Cascading to audio, queue, shares and the
//     search index is orchestrated by services.StoryService inside one
//     transaction.
//
//   - StoryExists(ctx, db, id) -> (bool, error)
//     Cheap existence probe used by queue/share validation.
//
// This repository is designed to be wrapped by a higher-level service
// (see services.StoryService) which enforces validation, title derivation,
// and the cascade/index discipline.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-story-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateStory inserts a new Story row with the given content and metadata.
// The id is assigned by SQLite's AUTOINCREMENT and CreatedAt/UpdatedAt are
// set to UTC.
//
// On success, it returns the persisted Story. On failure, it returns a DB error.
func CreateStory(ctx context.Context, db *gorm.DB, text, storyType, title string, topic, categories *string) (*domain.Story, error) {
	now := time.Now().UTC()
	s := &domain.Story{
		Text:       text,
		Type:       storyType,
		Title:      title,
		Topic:      topic,
		Categories: categories,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// GetStory fetches a single story by id. If the record does not exist, it
// returns ErrNotFound. On other DB errors, the raw error is returned.
func GetStory(ctx context.Context, db *gorm.DB, id int64) (*domain.Story, error) {
	var s domain.Story
	if err := db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// CountStories returns the number of stories with the given type, or of all
// stories when storyType is empty. On DB error, it returns the error.
func CountStories(ctx context.Context, db *gorm.DB, storyType string) (int64, error) {
	q := db.WithContext(ctx).Model(&domain.Story{})
	if storyType != "" {
		q = q.Where("type = ?", storyType)
	}
	var total int64
	err := q.Count(&total).Error
	return total, err
}

// ListStoriesPage returns a paginated slice of stories ordered newest first
// (creation time descending, id descending as a tiebreaker for equal
// timestamps). An empty storyType returns stories of every type. Use
// CountStories to obtain the total for pagination metadata.
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListStoriesPage(ctx context.Context, db *gorm.DB, storyType string, offset, limit int) ([]domain.Story, error) {
	q := db.WithContext(ctx).Model(&domain.Story{})
	if storyType != "" {
		q = q.Where("type = ?", storyType)
	}
	var out []domain.Story
	err := q.
		Order("created_at desc").
		Order("id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdateStoryFields applies a partial update to the story identified by id.
// The fields map uses column names as keys; updated_at is refreshed here so
// callers never forget it. If no rows are affected (story missing), it
// returns ErrNotFound. On DB error, the raw error is returned.
func UpdateStoryFields(ctx context.Context, db *gorm.DB, id int64, fields map[string]any) error {
	fields["updated_at"] = time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Story{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetFavorite sets the favorite flag of the story identified by id. If no
// rows are affected, it returns ErrNotFound. On DB error, the raw error is
// returned.
func SetFavorite(ctx context.Context, db *gorm.DB, id int64, value bool) error {
	res := db.WithContext(ctx).
		Model(&domain.Story{}).
		Where("id = ?", id).
		Updates(map[string]any{"favorite": value, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteStoryRow deletes the story row identified by id. It does not touch
// dependent rows; the service layer composes the full cascade inside one
// transaction. If no rows are affected, it returns ErrNotFound.
func DeleteStoryRow(ctx context.Context, db *gorm.DB, id int64) error {
	res := db.WithContext(ctx).Delete(&domain.Story{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// StoryExists reports whether a story with the given id exists. On DB error,
// it returns the error.
func StoryExists(ctx context.Context, db *gorm.DB, id int64) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Story{}).
		Where("id = ?", id).
		Count(&n).Error
	return n > 0, err
}
