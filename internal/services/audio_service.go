// Package services – AudioService
//
// This file implements AudioService, which links synthesized speech
// artifacts to stories. A story holds at most one live artifact; saving a
// new one replaces the previous row in the same transaction and removes the
// replaced backing file after commit. The database row is authoritative;
// disk cleanup is best-effort and never fails the operation.
package services

import (
	"context"
	"io"

	"gorm.io/gorm"

	"github.com/tbourn/go-story-backend/internal/domain"
	"github.com/tbourn/go-story-backend/internal/media"
	"github.com/tbourn/go-story-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// AudioService manages audio artifact rows and their backing files.
type AudioService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Media resolves artifact filenames to files on disk.
	Media *media.Store
}

// Save records a synthesized artifact for storyID, replacing any previous
// one. The row swap is atomic; the replaced backing file is removed after
// commit unless the new artifact reuses its name.
//
// Errors:
//   - ErrStoryNotFound when the story does not exist.
//   - ErrAudioFilenameTaken when the filename is already registered to
//     another story.
func (s *AudioService) Save(ctx context.Context, storyID int64, filename string, sizeBytes int64, durationSec float64, provider, voiceID string, voiceSettings *string) (*domain.AudioFile, error) {
	tr := otel.Tracer("services/AudioService")
	ctx, span := tr.Start(ctx, "Save",
		trace.WithAttributes(
			attribute.Int64("story.id", storyID),
			attribute.String("audio.provider", provider),
		),
	)
	defer span.End()

	var created *domain.AudioFile
	var replacedFile string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := repo.StoryExists(ctx, tx, storyID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrStoryNotFound
		}

		prev, err := repo.GetAudioByStory(tx, storyID)
		switch {
		case err == nil:
			replacedFile = prev.Filename
			if err := repo.DeleteAudioRow(tx, prev.ID); err != nil {
				return err
			}
		case isNotFound(err):
			// first artifact for this story
		default:
			return err
		}

		af, err := repo.CreateAudio(tx, storyID, filename, sizeBytes, durationSec, provider, voiceID, voiceSettings)
		if err != nil {
			if isDuplicate(err) {
				return ErrAudioFilenameTaken
			}
			return err
		}
		created = af
		return nil
	})
	if err != nil {
		return nil, err
	}

	if replacedFile != "" && replacedFile != created.Filename && s.Media != nil {
		// Replaced row is gone; the store logs a warning if the file lingers.
		_ = s.Media.Remove(replacedFile)
	}
	return created, nil
}

// GetByStory returns the artifact linked to storyID, or ErrAudioNotFound.
func (s *AudioService) GetByStory(ctx context.Context, storyID int64) (*domain.AudioFile, error) {
	tr := otel.Tracer("services/AudioService")
	ctx, span := tr.Start(ctx, "GetByStory",
		trace.WithAttributes(attribute.Int64("story.id", storyID)),
	)
	defer span.End()

	af, err := repo.GetAudioByStory(s.DB.WithContext(ctx), storyID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrAudioNotFound
		}
		return nil, err
	}
	return af, nil
}

// Delete removes an artifact row by its own id and then its backing file.
// Returns ErrAudioNotFound when no such artifact exists.
func (s *AudioService) Delete(ctx context.Context, artifactID int64) error {
	tr := otel.Tracer("services/AudioService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(attribute.Int64("audio.id", artifactID)),
	)
	defer span.End()

	af, err := repo.GetAudio(s.DB.WithContext(ctx), artifactID)
	if err != nil {
		if isNotFound(err) {
			return ErrAudioNotFound
		}
		return err
	}
	if err := repo.DeleteAudioRow(s.DB.WithContext(ctx), af.ID); err != nil {
		if isNotFound(err) {
			return ErrAudioNotFound
		}
		return err
	}
	if s.Media != nil {
		_ = s.Media.Remove(af.Filename)
	}
	return nil
}

// Open resolves the artifact for storyID and opens its backing file for
// streaming. The caller closes the reader. Returns ErrAudioNotFound when
// the story has no artifact or the file is gone from disk.
func (s *AudioService) Open(ctx context.Context, storyID int64) (io.ReadSeekCloser, *domain.AudioFile, error) {
	tr := otel.Tracer("services/AudioService")
	ctx, span := tr.Start(ctx, "Open",
		trace.WithAttributes(attribute.Int64("story.id", storyID)),
	)
	defer span.End()

	af, err := s.GetByStory(ctx, storyID)
	if err != nil {
		return nil, nil, err
	}
	if s.Media == nil {
		return nil, nil, ErrAudioNotFound
	}
	f, err := s.Media.Open(af.Filename)
	if err != nil {
		// Row without file: DB state is authoritative, report not found.
		return nil, nil, ErrAudioNotFound
	}
	return f, af, nil
}
