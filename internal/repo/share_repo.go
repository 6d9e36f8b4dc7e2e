// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Share model.
//
// The repository follows a "thin" approach: it performs persistence and simple
// query composition, leaving token generation, expiry decisions, and the
// access-count discipline to the services package.
//
// Error semantics:
//   - A token collision (unique index on shares.token) is returned as a raw
//     DB error; the service layer detects it and regenerates the token.
//   - GetShareByToken returns ErrNotFound for unknown tokens; expiry and
//     revocation checks live in the service, which must treat all three
//     cases identically (fail closed).
//
// Functions:
//
//   - CreateShare(ctx, db, token, storyID, expiresAt) -> *domain.Share, error
//   - GetShareByToken(ctx, db, token) -> *domain.Share, error
//   - TokenExists(ctx, db, token) -> (bool, error)
//   - IncrementShareAccess(ctx, db, id) -> error
//   - RevokeShareByToken(ctx, db, token) -> error
//   - DeleteSharesForStory(ctx, db, storyID) -> (int64, error)
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-story-backend/internal/domain"
)

// CreateShare inserts a share row mapping token to storyID. A nil expiresAt
// means the share never expires. On a token collision the raw DB error is
// returned for the service layer to handle.
func CreateShare(ctx context.Context, db *gorm.DB, token string, storyID int64, expiresAt *time.Time) (*domain.Share, error) {
	sh := &domain.Share{
		Token:     token,
		StoryID:   storyID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(sh).Error; err != nil {
		return nil, err
	}
	return sh, nil
}

// GetShareByToken fetches a share by its token, or ErrNotFound.
func GetShareByToken(ctx context.Context, db *gorm.DB, token string) (*domain.Share, error) {
	var sh domain.Share
	if err := db.WithContext(ctx).Where("token = ?", token).First(&sh).Error; err != nil {
		return nil, err
	}
	return &sh, nil
}

// TokenExists reports whether a share with the given token already exists.
// Used for the pre-insert collision check; the unique index remains the
// final arbiter under concurrency.
func TokenExists(ctx context.Context, db *gorm.DB, token string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Share{}).
		Where("token = ?", token).
		Count(&n).Error
	return n > 0, err
}

// IncrementShareAccess adds one to the access counter of the share row.
// The increment happens in SQL so concurrent resolves cannot lose updates.
func IncrementShareAccess(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).
		Exec(`UPDATE shares SET access_count = access_count + 1 WHERE id = ?`, id).Error
}

// DeleteSharesForStory removes every share pointing at storyID and reports
// how many were removed. Part of the story delete cascade; run it on the
// cascade's transaction handle.
func DeleteSharesForStory(ctx context.Context, db *gorm.DB, storyID int64) (int64, error) {
	res := db.WithContext(ctx).Delete(&domain.Share{}, "story_id = ?", storyID)
	return res.RowsAffected, res.Error
}

// RevokeShareByToken sets the revoked flag of the share with the given
// token. Returns ErrNotFound when no such token exists.
func RevokeShareByToken(ctx context.Context, db *gorm.DB, token string) error {
	res := db.WithContext(ctx).
		Model(&domain.Share{}).
		Where("token = ?", token).
		Update("revoked", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
