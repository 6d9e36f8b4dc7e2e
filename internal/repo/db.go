// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file contains database bootstrapping helpers for
// SQLite (pure Go driver), schema migrations, and the full-text shadow
// table that mirrors story text.
package repo

import (
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-story-backend/internal/domain"
)

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// PRAGMAs. WAL is the durability boundary for the whole app: every
	// committed mutation is in the log before the caller gets an answer.
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	// Pool. Readers run concurrently under WAL; SQLite serializes writers.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// EnableTracing registers the GORM OpenTelemetry plugin so every query is
// recorded as a span. Call only when tracing is configured; the plugin is
// a no-op burden otherwise.
func EnableTracing(db *gorm.DB) error {
	return db.Use(tracing.NewPlugin(tracing.WithoutMetrics()))
}

// AutoMigrate creates or updates all application tables, then the FTS5
// shadow table. The virtual table cannot be expressed as a GORM model, so
// it is created with raw DDL here and maintained by the search-index
// helpers in lockstep with story writes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.Story{},
		&domain.AudioFile{},
		&domain.QueueEntry{},
		&domain.Share{},
		&domain.Idempotency{},
	); err != nil {
		return err
	}
	return db.Exec(
		`CREATE VIRTUAL TABLE IF NOT EXISTS stories_fts USING fts5(story_id UNINDEXED, text, topic, tokenize='unicode61')`,
	).Error
}
