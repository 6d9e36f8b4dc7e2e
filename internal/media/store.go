// Package media stores narration audio artifacts on the local filesystem.
//
// The store addresses files by bare filename only; every name is validated
// to resolve strictly inside the configured media directory, so a corrupted
// or hostile filename can never escape it. Contents are opaque to the store:
// format metadata lives on the audio row, not here.
package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// ErrInvalidName is returned when a filename is empty or would resolve
// outside the media directory.
var ErrInvalidName = errors.New("media: invalid filename")

// Store is a local filesystem backend for audio artifacts.
type Store struct {
	basePath string
	log      zerolog.Logger
}

// NewStore creates the media directory if needed and returns a store rooted
// at basePath.
func NewStore(basePath string, log zerolog.Logger) (*Store, error) {
	logger := log.With().Str("component", "media-store").Logger()

	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("media: base path is empty")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("media: create directory: %w", err)
	}

	logger.Info().Str("path", basePath).Msg("media store initialized")

	return &Store{basePath: basePath, log: logger}, nil
}

// BasePath returns the directory the store is rooted at.
func (s *Store) BasePath() string { return s.basePath }

// resolve maps a bare filename to an absolute path inside the media
// directory. Names with separators (either style) or parent references are
// rejected on every platform.
func (s *Store) resolve(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) ||
		name != filepath.Base(name) || !filepath.IsLocal(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.basePath, name), nil
}

// Write streams r into the named file, replacing any previous content.
// Returns the number of bytes written.
func (s *Store) Write(name string, r io.Reader) (int64, error) {
	path, err := s.resolve(name)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("media: create file: %w", err)
	}

	written, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		_ = os.Remove(path)
		return 0, fmt.Errorf("media: write file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("media: close file: %w", err)
	}

	s.log.Debug().Str("file", name).Int64("bytes", written).Msg("artifact written")

	return written, nil
}

// Open returns the named file for reading. The caller owns the handle and
// can use Stat and Seek for range serving. A missing file satisfies
// errors.Is(err, fs.ErrNotExist).
func (s *Store) Open(name string) (*os.File, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("media: open file: %w", err)
	}
	return f, nil
}

// Size reports the byte size of the named file.
func (s *Store) Size(name string) (int64, error) {
	path, err := s.resolve(name)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("media: stat file: %w", err)
	}
	return info.Size(), nil
}

// Remove deletes the named file. Removing a file that does not exist is not
// an error, so retries and replace flows stay idempotent.
func (s *Store) Remove(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.Warn().Err(err).Str("file", name).Msg("artifact removal failed")
		return fmt.Errorf("media: remove file: %w", err)
	}
	return nil
}

// ContentType maps a filename extension to its audio MIME type.
func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".ogg", ".opus":
		return "audio/ogg"
	case ".aac":
		return "audio/aac"
	case ".flac":
		return "audio/flac"
	default:
		return "application/octet-stream"
	}
}
