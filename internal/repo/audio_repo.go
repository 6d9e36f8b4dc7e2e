// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the AudioFile model.
package repo

import (
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-story-backend/internal/domain"
)

// CreateAudio inserts a new audio artifact row. Uniqueness of filename and
// of story_id (one live artifact per story) is enforced by the schema; the
// service layer translates violations into domain errors.
func CreateAudio(db *gorm.DB, storyID int64, filename string, sizeBytes int64, durationSec float64, provider, voiceID string, voiceSettings *string) (*domain.AudioFile, error) {
	af := &domain.AudioFile{
		StoryID:       storyID,
		Filename:      filename,
		SizeBytes:     sizeBytes,
		DurationSec:   durationSec,
		Provider:      provider,
		VoiceID:       voiceID,
		VoiceSettings: voiceSettings,
		CreatedAt:     time.Now().UTC(),
	}
	return af, db.Create(af).Error
}

// GetAudioByStory fetches the artifact linked to storyID, or ErrNotFound.
func GetAudioByStory(db *gorm.DB, storyID int64) (*domain.AudioFile, error) {
	var af domain.AudioFile
	if err := db.Where("story_id = ?", storyID).First(&af).Error; err != nil {
		return nil, err
	}
	return &af, nil
}

// GetAudio fetches an artifact by its own id, or ErrNotFound.
func GetAudio(db *gorm.DB, id int64) (*domain.AudioFile, error) {
	var af domain.AudioFile
	if err := db.Where("id = ?", id).First(&af).Error; err != nil {
		return nil, err
	}
	return &af, nil
}

// DeleteAudioRow deletes an artifact row by id. Returns ErrNotFound when no
// row matches. The backing file is the caller's concern (DB state is
// authoritative, disk is best-effort).
func DeleteAudioRow(db *gorm.DB, id int64) error {
	res := db.Delete(&domain.AudioFile{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountAudio uses a raw COUNT so a missing table surfaces as an error (as tests expect).
func CountAudio(db *gorm.DB, storyID int64) (int64, error) {
	var total int64
	err := db.Raw("SELECT COUNT(*) FROM audio_files WHERE story_id = ?", storyID).Scan(&total).Error
	return total, err
}
