// Package services – ShareService
//
// This file implements ShareService, which maps opaque unguessable tokens
// to stories for unauthenticated read access. Tokens come from a
// cryptographically strong source and are collision-checked before insert;
// the unique index on shares.token stays the final arbiter under
// concurrency, so an insert-time collision triggers a regenerate as well.
//
// The read path fails closed: an unknown, revoked, or expired token yields
// the same not-found result, so a caller can never probe which of the three
// it hit.
package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-story-backend/internal/domain"
	"github.com/tbourn/go-story-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// maxTokenAttempts bounds the regenerate loop on token collisions.
const maxTokenAttempts = 5

// SharedStory is the payload a resolved share grants access to: the share
// row (with its incremented counter), the story, and the audio artifact
// metadata when one exists.
type SharedStory struct {
	Share *domain.Share     `json:"share"`
	Story *domain.Story     `json:"story"`
	Audio *domain.AudioFile `json:"audio,omitempty"`
}

// ShareService manages share tokens and the public resolve path.
type ShareService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// TokenBytes is the number of random bytes per token; the hex token is
	// twice as long. Defaults to 16.
	TokenBytes int

	// DefaultTTL applies when a caller passes no ttl. Zero means shares
	// without an explicit ttl never expire.
	DefaultTTL time.Duration
}

// Create issues a share token for storyID. A nil ttl applies DefaultTTL
// (or no expiry when that is zero); an explicit zero or negative ttl
// produces a token that is already expired.
//
// Errors:
//   - ErrStoryNotFound when the story does not exist.
//   - ErrTokenCollision when token generation keeps colliding.
func (s *ShareService) Create(ctx context.Context, storyID int64, ttl *time.Duration) (*domain.Share, error) {
	tr := otel.Tracer("services/ShareService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.Int64("story.id", storyID)),
	)
	defer span.End()

	exists, err := repo.StoryExists(ctx, s.DB, storyID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrStoryNotFound
	}

	var expiresAt *time.Time
	switch {
	case ttl != nil:
		t := time.Now().UTC().Add(*ttl)
		expiresAt = &t
	case s.DefaultTTL > 0:
		t := time.Now().UTC().Add(s.DefaultTTL)
		expiresAt = &t
	}

	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := s.newToken()
		if err != nil {
			return nil, err
		}
		taken, err := repo.TokenExists(ctx, s.DB, token)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}
		sh, err := repo.CreateShare(ctx, s.DB, token, storyID, expiresAt)
		if err != nil {
			if isDuplicate(err) {
				// lost the insert race, roll a new token
				continue
			}
			return nil, err
		}
		span.SetAttributes(attribute.Int64("share.id", sh.ID))
		return sh, nil
	}
	return nil, ErrTokenCollision
}

// Resolve exchanges a token for its story and artifact metadata, counting
// the access. Unknown, revoked, and expired tokens are indistinguishable:
// all return ErrShareNotFound.
func (s *ShareService) Resolve(ctx context.Context, token string) (*SharedStory, error) {
	tr := otel.Tracer("services/ShareService")
	ctx, span := tr.Start(ctx, "Resolve")
	defer span.End()

	var out *SharedStory
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sh, err := repo.GetShareByToken(ctx, tx, token)
		if err != nil {
			if isNotFound(err) {
				return ErrShareNotFound
			}
			return err
		}
		if sh.Revoked {
			return ErrShareNotFound
		}
		if sh.ExpiresAt != nil && !time.Now().UTC().Before(*sh.ExpiresAt) {
			return ErrShareNotFound
		}

		st, err := repo.GetStory(ctx, tx, sh.StoryID)
		if err != nil {
			// Cascade removes shares with their story, so a dangling
			// share can only mean a torn write; fail closed anyway.
			if isNotFound(err) {
				return ErrShareNotFound
			}
			return err
		}

		if err := repo.IncrementShareAccess(ctx, tx, sh.ID); err != nil {
			return err
		}
		sh.AccessCount++

		res := &SharedStory{Share: sh, Story: st}
		af, err := repo.GetAudioByStory(tx, sh.StoryID)
		switch {
		case err == nil:
			res.Audio = af
		case isNotFound(err):
			// story has no artifact
		default:
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Revoke flips the revoked flag of the share with the given token. From
// then on Resolve treats it exactly like an expired or unknown token.
func (s *ShareService) Revoke(ctx context.Context, token string) error {
	tr := otel.Tracer("services/ShareService")
	ctx, span := tr.Start(ctx, "Revoke")
	defer span.End()

	if err := repo.RevokeShareByToken(ctx, s.DB, token); err != nil {
		if isNotFound(err) {
			return ErrShareNotFound
		}
		return err
	}
	return nil
}

// newToken draws TokenBytes bytes from crypto/rand and hex-encodes them.
func (s *ShareService) newToken() (string, error) {
	n := s.TokenBytes
	if n <= 0 {
		n = 16
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
