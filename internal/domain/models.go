// Package domain defines the persistence models for stories, audio
// artifacts, the playback queue, and share tokens. These types are mapped
// with GORM and form the core data layer of the story backend.
package domain

import (
	"time"
)

// Story represents a persisted narrated-story text with its metadata.
// A story is created either by the generation pipeline or directly through
// the API, and may be linked to at most one generated audio artifact.
//
// Fields:
//   - ID: integer primary key; AUTOINCREMENT keeps ids monotonic and never
//     reused, so external references (shares, queue) stay unambiguous.
//   - Text: full story body; length bounds are enforced by the service layer.
//   - Type: short lowercase tag grouping stories (e.g. "adventure").
//   - Title: short display title derived from the first words of the text.
//   - Topic: optional free-form topic supplied by the caller.
//   - Categories: optional JSON-encoded list of short category strings;
//     nil when the caller supplied none.
//   - Favorite: user-toggled flag, defaults to false.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
type Story struct {
	ID         int64     `json:"id"         gorm:"primaryKey;autoIncrement"`
	Text       string    `json:"text"       gorm:"type:text;not null"`
	Type       string    `json:"type"       gorm:"type:varchar(32);not null;index:idx_stories_type"`
	Title      string    `json:"title"      gorm:"type:varchar(80);not null;default:''"`
	Topic      *string   `json:"topic,omitempty"      gorm:"type:varchar(200)"`
	Categories *string   `json:"categories,omitempty" gorm:"type:text"`
	Favorite   bool      `json:"favorite"   gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at" gorm:"index:idx_stories_created"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName returns the database table name for Story.
func (Story) TableName() string { return "stories" }

// AudioFile represents a synthesized speech artifact linked to exactly one
// story. A story holds at most one live artifact at a time; regenerating
// audio replaces the previous row and its backing file.
//
// Fields:
//   - ID: integer primary key.
//   - StoryID: foreign key to the owning story; the unique index enforces
//     the at-most-one-artifact-per-story invariant at the schema level.
//   - Filename: name of the backing file under the media directory; unique
//     across all artifacts and used as the external reference.
//   - SizeBytes: size of the backing file.
//   - DurationSec: estimated playback duration in seconds.
//   - Provider: name of the vendor adapter that produced the audio.
//   - VoiceID: provider-specific voice identifier.
//   - VoiceSettings: optional JSON blob with the synthesis parameters used.
//   - CreatedAt: timestamp managed by GORM.
//   - Story: FK association, ensures cascade delete.
type AudioFile struct {
	ID            int64     `json:"id"            gorm:"primaryKey;autoIncrement"`
	StoryID       int64     `json:"story_id"      gorm:"not null;uniqueIndex:ux_audio_story"`
	Filename      string    `json:"filename"      gorm:"type:varchar(255);not null;uniqueIndex:ux_audio_filename"`
	SizeBytes     int64     `json:"size_bytes"    gorm:"not null;default:0"`
	DurationSec   float64   `json:"duration_sec"  gorm:"not null;default:0"`
	Provider      string    `json:"provider"      gorm:"type:varchar(64);not null"`
	VoiceID       string    `json:"voice_id"      gorm:"type:varchar(64);not null"`
	VoiceSettings *string   `json:"voice_settings,omitempty" gorm:"type:text"`
	CreatedAt     time.Time `json:"created_at"`

	// Story is the parent story. The artifact row is cascade-deleted if
	// its story is removed.
	Story Story `json:"-" gorm:"foreignKey:StoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for AudioFile.
func (AudioFile) TableName() string { return "audio_files" }

// QueueEntry is one slot of the single playback queue: a dense 1-based
// position paired with a story id. The same story may appear at several
// positions (the queue is a playlist, not a set).
//
// Fields:
//   - Position: 1-based ordinal, primary key; the repo layer keeps the
//     sequence dense (no gaps) across replaces and story deletions.
//   - StoryID: foreign key to the queued story.
//   - Story: FK association, ensures cascade delete.
type QueueEntry struct {
	Position int   `json:"position" gorm:"primaryKey;autoIncrement:false"`
	StoryID  int64 `json:"story_id" gorm:"not null;index:idx_queue_story"`

	// Story is the queued story. Entries are cascade-deleted if their
	// story is removed; the repo additionally renumbers survivors.
	Story Story `json:"-" gorm:"foreignKey:StoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for QueueEntry.
func (QueueEntry) TableName() string { return "queue" }

// Share maps an opaque unguessable token to a story, granting read access
// without authentication. Expired or revoked shares fail closed: a reader
// cannot tell them apart from tokens that never existed.
//
// Fields:
//   - ID: integer primary key.
//   - Token: fixed-length hex string from a crypto-random source; unique.
//   - StoryID: foreign key to the shared story.
//   - ExpiresAt: optional expiry; nil means the share never expires.
//   - Revoked: manual kill switch, checked identically to expiry.
//   - AccessCount: incremented on each successful resolve.
//   - CreatedAt: timestamp managed by GORM.
//   - Story: FK association, ensures cascade delete.
type Share struct {
	ID          int64      `json:"id"           gorm:"primaryKey;autoIncrement"`
	Token       string     `json:"token"        gorm:"type:varchar(64);not null;uniqueIndex:ux_shares_token"`
	StoryID     int64      `json:"story_id"     gorm:"not null;index:idx_shares_story"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Revoked     bool       `json:"revoked"      gorm:"not null;default:false"`
	AccessCount int64      `json:"access_count" gorm:"not null;default:0"`
	CreatedAt   time.Time  `json:"created_at"`

	// Story is the shared story. Shares are cascade-deleted if their
	// story is removed.
	Story Story `json:"-" gorm:"foreignKey:StoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Share.
func (Share) TableName() string { return "shares" }
