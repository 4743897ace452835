package crawler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/coursehound/coursehound/internal/export"
	"github.com/coursehound/coursehound/pkg/course"
	"github.com/coursehound/coursehound/pkg/logging"
)

// Archiver receives every checkpoint file after it lands on disk.
type Archiver interface {
	ArchiveSnapshot(ctx context.Context, path string) error
}

// Checkpointer snapshots the partial course tree so an interrupted
// crawl loses at most the work since the last completed module.
type Checkpointer struct {
	cfg     CheckpointConfig
	archive Archiver
	logger  zerolog.Logger
}

func NewCheckpointer(cfg CheckpointConfig, archive Archiver) *Checkpointer {
	return &Checkpointer{
		cfg:     cfg,
		archive: archive,
		logger:  logging.GetLogger("checkpoint"),
	}
}

// SetArchive attaches an archiver after construction. Useful when the
// archiver wants the run ID, which only exists once the walker does.
func (c *Checkpointer) SetArchive(archive Archiver) {
	c.archive = archive
}

// Save writes checkpoint_module_N.json when N modules have completed
// and the interval says so. The write replaces the file atomically:
// a reader never observes a torn snapshot.
func (c *Checkpointer) Save(ctx context.Context, tree *course.Course, modulesDone int) error {
	if !c.cfg.Enabled || c.cfg.EveryModules <= 0 || modulesDone%c.cfg.EveryModules != 0 {
		return nil
	}

	if err := os.MkdirAll(c.cfg.Dir, 0o755); err != nil {
		return fmt.Errorf("creating checkpoint dir: %w", err)
	}

	path := filepath.Join(c.cfg.Dir, fmt.Sprintf("checkpoint_module_%d.json", modulesDone))
	if err := export.WriteJSON(path, tree); err != nil {
		return err
	}

	c.logger.Info().Str("path", path).Int("modules", modulesDone).Msg("checkpoint written")

	if c.archive != nil {
		if err := c.archive.ArchiveSnapshot(ctx, path); err != nil {
			c.logger.Warn().Err(err).Str("path", path).Msg("checkpoint archive failed")
		}
	}
	return nil
}
