package service

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStagingSweep(t *testing.T) {
	fs := afero.NewMemMapFs()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	files := map[string]time.Time{
		"/stage/vidstage-old.mp4":   now.Add(-7 * time.Hour),
		"/stage/vidstage-fresh.mp4": now.Add(-time.Minute),
		"/stage/unrelated.mp4":      now.Add(-48 * time.Hour),
	}
	for p, mtime := range files {
		require.NoError(t, afero.WriteFile(fs, p, []byte("x"), 0o600))
		require.NoError(t, fs.Chtimes(p, mtime, mtime))
	}

	s := NewStagingSweeper(fs, "/stage", 6*time.Hour)
	s.now = func() time.Time { return now }

	n, err := s.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = fs.Stat("/stage/vidstage-old.mp4")
	assert.Error(t, err)

	for _, p := range []string{"/stage/vidstage-fresh.mp4", "/stage/unrelated.mp4"} {
		ok, err := afero.Exists(fs, p)
		require.NoError(t, err)
		assert.True(t, ok, p)
	}
}

func TestStagingSweepMissingDir(t *testing.T) {
	s := NewStagingSweeper(afero.NewMemMapFs(), "/nope", time.Hour)

	n, err := s.Sweep()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStagingSweeperSchedule(t *testing.T) {
	s := NewStagingSweeper(afero.NewMemMapFs(), "/stage", time.Hour)

	assert.Error(t, s.Start("every now and then"))

	require.NoError(t, s.Start("@every 1h"))
	s.Stop()
}
