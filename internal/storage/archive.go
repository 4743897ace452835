// Package storage archives crawl snapshots. The file backend keeps a
// flat copy of every checkpoint; the git backend commits each one so
// the history of a long crawl stays inspectable.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/coursehound/coursehound/pkg/logging"
)

// Archive receives snapshot files after they are written.
type Archive interface {
	ArchiveSnapshot(ctx context.Context, path string) error
}

// FileArchive copies snapshots into a directory.
type FileArchive struct {
	dir    string
	logger zerolog.Logger
}

func NewFileArchive(dir string) (*FileArchive, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating archive dir: %w", err)
	}
	return &FileArchive{dir: dir, logger: logging.GetLogger("file-archive")}, nil
}

func (a *FileArchive) ArchiveSnapshot(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}
	dest := filepath.Join(a.dir, filepath.Base(path))
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("copying snapshot: %w", err)
	}
	a.logger.Debug().Str("dest", dest).Msg("snapshot archived")
	return nil
}
