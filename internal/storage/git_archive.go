package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/rs/zerolog"

	"github.com/coursehound/coursehound/pkg/logging"
)

// GitArchive commits every snapshot into a repository, one commit per
// checkpoint, tagged with the crawl run in the message.
type GitArchive struct {
	repo   *git.Repository
	dir    string
	runID  string
	logger zerolog.Logger
}

// NewGitArchive opens the repository at dir, initializing it on first
// use.
func NewGitArchive(dir, runID string) (*GitArchive, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating repo dir: %w", err)
	}
	repo, err := git.PlainOpen(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(dir, false)
	}
	if err != nil {
		return nil, fmt.Errorf("opening archive repo: %w", err)
	}
	return &GitArchive{
		repo:   repo,
		dir:    dir,
		runID:  runID,
		logger: logging.GetLogger("git-archive"),
	}, nil
}

func (a *GitArchive) ArchiveSnapshot(ctx context.Context, path string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}
	name := filepath.Base(path)
	if err := os.WriteFile(filepath.Join(a.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("staging snapshot: %w", err)
	}

	wt, err := a.repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree: %w", err)
	}
	if _, err := wt.Add(name); err != nil {
		return fmt.Errorf("adding snapshot: %w", err)
	}

	hash, err := wt.Commit(fmt.Sprintf("snapshot %s (run %s)", name, a.runID), &git.CommitOptions{
		AllowEmptyCommits: true,
		Author: &object.Signature{
			Name:  "coursehound",
			Email: "crawler@coursehound.local",
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}

	a.logger.Debug().
		Str("commit", hash.String()).
		Str("snapshot", name).
		Msg("snapshot committed")
	return nil
}
