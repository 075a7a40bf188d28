package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
	"videoverse/video-api/db"
	"videoverse/video-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) *GormVideoRepository {
	t.Helper()

	p := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, os.WriteFile(p, nil, 0o644))

	conn, err := db.New("sqlite", p)
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return NewVideoRepository(conn)
}

func TestCreateAssignsIDAndTimestamps(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	v := &model.Video{Filename: "a.mp4", StorageKey: "videos/a.mp4_1", Duration: 100, Size: 3.5}
	require.NoError(t, r.Create(ctx, v))

	assert.NotZero(t, v.ID)
	assert.False(t, v.CreatedAt.IsZero())
	assert.False(t, v.UpdatedAt.IsZero())

	got, err := r.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.mp4", got.Filename)
	assert.Equal(t, "videos/a.mp4_1", got.StorageKey)
	assert.Equal(t, 100.0, got.Duration)
	assert.Equal(t, 3.5, got.Size)
}

func TestGetMissing(t *testing.T) {
	r := newTestRepo(t)

	_, err := r.Get(context.Background(), 99)
	assert.ErrorIs(t, err, ErrVideoNotFound)
}

func TestUpdateMedia(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	v := &model.Video{Filename: "a.mp4", StorageKey: "videos/a.mp4_1", Duration: 100, Size: 10}
	require.NoError(t, r.Create(ctx, v))
	before := v.UpdatedAt

	time.Sleep(5 * time.Millisecond)

	got, err := r.UpdateMedia(ctx, v.ID, 70, 7)
	require.NoError(t, err)
	assert.Equal(t, 70.0, got.Duration)
	assert.Equal(t, 7.0, got.Size)
	assert.Equal(t, "videos/a.mp4_1", got.StorageKey)
	assert.True(t, got.UpdatedAt.After(before))

	_, err = r.UpdateMedia(ctx, 99, 1, 1)
	assert.ErrorIs(t, err, ErrVideoNotFound)
}

func TestList(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	got, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	for _, name := range []string{"a.mp4", "b.mp4"} {
		require.NoError(t, r.Create(ctx, &model.Video{Filename: name, StorageKey: "videos/" + name, Duration: 10}))
	}

	got, err = r.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b.mp4", got[0].Filename)
}
