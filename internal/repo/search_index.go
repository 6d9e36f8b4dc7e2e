// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file maintains the FTS5 shadow table (stories_fts)
// that mirrors story text and topic for full-text search.
//
// The shadow table is not a GORM model; it is written with raw SQL against
// whatever handle the caller provides. Story mutations and their index
// writes must commit or roll back together, so the service layer always
// calls IndexUpsert/IndexDelete on the transaction handle of the story
// write, never on a separate connection.
//
// Functions:
//
//   - IndexUpsert(ctx, db, id, text, topic) -> error
//     Replaces the index entry for a story (delete + insert).
//
//   - IndexDelete(ctx, db, id) -> error
//     Removes the index entry for a story.
//
//   - SearchStories(ctx, db, match, limit) -> []domain.Story, error
//     Runs an FTS5 MATCH query and returns the matching stories ranked by
//     bm25 relevance (best first). The match expression is built by
//     internal/search; this function never interprets user input itself.
//
// Tokenization and ranking are delegated entirely to SQLite's FTS5 engine;
// this layer only keeps the shadow copy current.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-story-backend/internal/domain"
)

// IndexUpsert replaces the search-index entry for story id with the given
// text and topic. A nil topic is indexed as the empty string. Call it on
// the same transaction handle as the story write it mirrors.
func IndexUpsert(ctx context.Context, db *gorm.DB, id int64, text string, topic *string) error {
	top := ""
	if topic != nil {
		top = *topic
	}
	if err := db.WithContext(ctx).
		Exec(`DELETE FROM stories_fts WHERE story_id = ?`, id).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).
		Exec(`INSERT INTO stories_fts (story_id, text, topic) VALUES (?, ?, ?)`, id, text, top).Error
}

// IndexDelete removes the search-index entry for story id. Deleting an id
// that was never indexed is a no-op, not an error.
func IndexDelete(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).
		Exec(`DELETE FROM stories_fts WHERE story_id = ?`, id).Error
}

// SearchStories runs the given FTS5 MATCH expression and returns up to
// limit stories ordered by bm25 rank (most relevant first). The join back
// to the stories table means the result can never contain an id the store
// no longer holds.
func SearchStories(ctx context.Context, db *gorm.DB, match string, limit int) ([]domain.Story, error) {
	var out []domain.Story
	err := db.WithContext(ctx).
		Raw(`SELECT s.*
		     FROM stories_fts
		     JOIN stories s ON s.id = stories_fts.story_id
		     WHERE stories_fts MATCH ?
		     ORDER BY bm25(stories_fts)
		     LIMIT ?`, match, limit).
		Scan(&out).Error
	return out, err
}
