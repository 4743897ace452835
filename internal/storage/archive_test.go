package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSnapshot(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileArchive(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	snap := writeSnapshot(t, src, "checkpoint_module_1.json", `{"title":"t"}`)

	a, err := NewFileArchive(dst)
	require.NoError(t, err)
	require.NoError(t, a.ArchiveSnapshot(context.Background(), snap))

	data, err := os.ReadFile(filepath.Join(dst, "checkpoint_module_1.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"title":"t"}`, string(data))
}

func TestFileArchive_MissingSource(t *testing.T) {
	a, err := NewFileArchive(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, a.ArchiveSnapshot(context.Background(), "/no/such/file.json"))
}

func TestGitArchive_CommitsEachSnapshot(t *testing.T) {
	src := t.TempDir()
	repoDir := t.TempDir()

	a, err := NewGitArchive(repoDir, "run-1")
	require.NoError(t, err)

	first := writeSnapshot(t, src, "checkpoint_module_1.json", `{"n":1}`)
	second := writeSnapshot(t, src, "checkpoint_module_2.json", `{"n":2}`)
	require.NoError(t, a.ArchiveSnapshot(context.Background(), first))
	require.NoError(t, a.ArchiveSnapshot(context.Background(), second))

	repo, err := git.PlainOpen(repoDir)
	require.NoError(t, err)

	head, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Contains(t, commit.Message, "checkpoint_module_2.json")
	assert.Contains(t, commit.Message, "run-1")

	count := 0
	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	require.NoError(t, err)
	require.NoError(t, iter.ForEach(func(*object.Commit) error { count++; return nil }))
	assert.Equal(t, 2, count)
}

func TestGitArchive_ReopensExistingRepo(t *testing.T) {
	repoDir := t.TempDir()
	_, err := NewGitArchive(repoDir, "run-1")
	require.NoError(t, err)
	_, err = NewGitArchive(repoDir, "run-2")
	require.NoError(t, err)
}
