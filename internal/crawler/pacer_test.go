package crawler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacer_BackoffGrowsAndCaps(t *testing.T) {
	p := NewPacer(PacingConfig{
		FailureBackoff: 100 * time.Millisecond,
		MaxBackoff:     300 * time.Millisecond,
	})

	assert.Equal(t, time.Duration(0), p.backoff)
	p.Failure()
	assert.Equal(t, 100*time.Millisecond, p.backoff)
	p.Failure()
	assert.Equal(t, 200*time.Millisecond, p.backoff)
	p.Failure()
	assert.Equal(t, 300*time.Millisecond, p.backoff)
	p.Failure()
	assert.Equal(t, 300*time.Millisecond, p.backoff)

	p.Success()
	assert.Equal(t, time.Duration(0), p.backoff)
}

func TestPacer_WaitHonorsCancellation(t *testing.T) {
	p := NewPacer(PacingConfig{MinNavInterval: time.Hour})
	p.lastNav = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := p.Wait(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPacer_WaitZeroConfigReturnsImmediately(t *testing.T) {
	p := NewPacer(PacingConfig{})
	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestCheckpointer_IntervalAndDisable(t *testing.T) {
	dir := t.TempDir()
	cp := NewCheckpointer(CheckpointConfig{Enabled: true, Dir: dir, EveryModules: 2}, nil)

	require.NoError(t, cp.Save(context.Background(), nil, 1))
	require.NoError(t, cp.Save(context.Background(), nil, 2))

	entries, err := listDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"checkpoint_module_2.json"}, entries)

	off := NewCheckpointer(CheckpointConfig{Enabled: false, Dir: dir, EveryModules: 1}, nil)
	require.NoError(t, off.Save(context.Background(), nil, 3))
	entries, err = listDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
