// Package services – QueueService
//
// This file implements QueueService, which manages the single playback
// queue: an ordered list of story references with dense 1-based positions.
// Replacing the queue is all-or-nothing; every referenced story is verified
// inside the write transaction, so a bad id leaves the previous queue
// untouched. The same story may be queued at several positions.
package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/tbourn/go-story-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// QueueService manages the playback queue.
type QueueService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// Get returns the queue in playback order. Each row carries the position,
// the story id, and the story's title and type for display.
func (s *QueueService) Get(ctx context.Context) ([]repo.QueueRow, error) {
	tr := otel.Tracer("services/QueueService")
	ctx, span := tr.Start(ctx, "Get")
	defer span.End()

	rows, err := repo.ListQueueRows(s.DB.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []repo.QueueRow{}
	}
	return rows, nil
}

// Set atomically replaces the whole queue with the given story ids in
// order, assigning positions 1..n. Every distinct id must exist; otherwise
// ErrQueueStoryMissing is returned (wrapping the offending id) and the
// previous queue is left untouched. A nil or empty slice empties the queue.
func (s *QueueService) Set(ctx context.Context, ids []int64) error {
	tr := otel.Tracer("services/QueueService")
	ctx, span := tr.Start(ctx, "Set",
		trace.WithAttributes(attribute.Int("queue.len", len(ids))),
	)
	defer span.End()

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seen := make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			exists, err := repo.StoryExists(ctx, tx, id)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("%w: story %d", ErrQueueStoryMissing, id)
			}
		}
		if err := repo.ClearQueue(tx); err != nil {
			return err
		}
		return repo.InsertQueueEntries(tx, ids)
	})
}

// Add appends a story at the end of the queue and returns the assigned
// position (1 when the queue was empty). Returns ErrQueueStoryMissing when
// the story does not exist.
func (s *QueueService) Add(ctx context.Context, storyID int64) (int, error) {
	tr := otel.Tracer("services/QueueService")
	ctx, span := tr.Start(ctx, "Add",
		trace.WithAttributes(attribute.Int64("story.id", storyID)),
	)
	defer span.End()

	var pos int
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := repo.StoryExists(ctx, tx, storyID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: story %d", ErrQueueStoryMissing, storyID)
		}
		p, err := repo.AppendQueueEntry(tx, storyID)
		if err != nil {
			return err
		}
		pos = p
		return nil
	})
	if err != nil {
		return 0, err
	}

	span.SetAttributes(attribute.Int("queue.position", pos))
	return pos, nil
}
