// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the playback
// queue: a single ordered list of story references with dense 1-based
// positions.
//
// Replace-whole-queue and the renumbering that follows a story deletion are
// multi-statement operations; callers run them on a transaction handle so
// the queue is never observable in a half-written state.
package repo

import (
	"gorm.io/gorm"

	"github.com/tbourn/go-story-backend/internal/domain"
)

// QueueRow is a queue entry joined with display fields of its story.
type QueueRow struct {
	Position int    `json:"position"`
	StoryID  int64  `json:"story_id"`
	Title    string `json:"title"`
	Type     string `json:"type"`
}

// ListQueue returns all queue entries ordered by position ascending.
func ListQueue(db *gorm.DB) ([]domain.QueueEntry, error) {
	var out []domain.QueueEntry
	err := db.Order("position ASC").Find(&out).Error
	return out, err
}

// ListQueueRows returns the queue joined with story title/type for display,
// ordered by position ascending. The inner join cannot yield dangling
// references: queue rows are removed in the same transaction that deletes
// their story.
func ListQueueRows(db *gorm.DB) ([]QueueRow, error) {
	var out []QueueRow
	err := db.Raw(`SELECT q.position, q.story_id, s.title, s.type
	               FROM queue q
	               JOIN stories s ON s.id = q.story_id
	               ORDER BY q.position ASC`).Scan(&out).Error
	return out, err
}

// ClearQueue removes every queue entry.
func ClearQueue(db *gorm.DB) error {
	return db.Exec(`DELETE FROM queue`).Error
}

// InsertQueueEntries writes the given story ids as positions 1..n in order.
// The caller has already validated that every id exists.
func InsertQueueEntries(db *gorm.DB, ids []int64) error {
	for i, id := range ids {
		e := &domain.QueueEntry{Position: i + 1, StoryID: id}
		if err := db.Create(e).Error; err != nil {
			return err
		}
	}
	return nil
}

// MaxQueuePosition returns the highest occupied position, or 0 when the
// queue is empty.
func MaxQueuePosition(db *gorm.DB) (int, error) {
	var max *int
	err := db.Raw(`SELECT MAX(position) FROM queue`).Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// AppendQueueEntry inserts storyID at max(position)+1 and returns the
// assigned position.
func AppendQueueEntry(db *gorm.DB, storyID int64) (int, error) {
	max, err := MaxQueuePosition(db)
	if err != nil {
		return 0, err
	}
	pos := max + 1
	e := &domain.QueueEntry{Position: pos, StoryID: storyID}
	if err := db.Create(e).Error; err != nil {
		return 0, err
	}
	return pos, nil
}

// DeleteQueueEntriesForStory removes every entry referencing storyID and
// reports how many were removed. Run RenumberQueue afterwards (same
// transaction) to close the gaps this leaves.
func DeleteQueueEntriesForStory(db *gorm.DB, storyID int64) (int64, error) {
	res := db.Delete(&domain.QueueEntry{}, "story_id = ?", storyID)
	return res.RowsAffected, res.Error
}

// RenumberQueue rewrites positions as a dense 1..n run preserving the
// current order. Positions are the primary key, so survivors are re-inserted
// rather than updated in place (an in-place shift would collide with itself).
// No-op when the sequence is already dense.
func RenumberQueue(db *gorm.DB) error {
	var entries []domain.QueueEntry
	if err := db.Order("position ASC").Find(&entries).Error; err != nil {
		return err
	}
	dense := true
	for i, e := range entries {
		if e.Position != i+1 {
			dense = false
			break
		}
	}
	if dense {
		return nil
	}
	if err := db.Exec(`DELETE FROM queue`).Error; err != nil {
		return err
	}
	for i, e := range entries {
		ne := &domain.QueueEntry{Position: i + 1, StoryID: e.StoryID}
		if err := db.Create(ne).Error; err != nil {
			return err
		}
	}
	return nil
}
