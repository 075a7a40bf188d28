// Package service contains the upload and trim pipelines together with the
// media tools and storage they drive
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"videoverse/video-api/internal/model"
	"videoverse/video-api/internal/repository"

	"go.uber.org/zap"
)

type UploadPolicy struct {
	MaxSizeMB   float64
	MinDuration float64
	MaxDuration float64
	KeyPrefix   string
	// Delete the uploaded object again when the record can't be saved
	CleanupOrphans bool
}

type Uploader struct {
	Repo      repository.VideoRepository
	Store     BlobStore
	Inspector Inspector
	Stager    *Stager
	Policy    UploadPolicy
}

func NewUploader(repo repository.VideoRepository, store BlobStore, inspector Inspector, stager *Stager, policy UploadPolicy) *Uploader {
	return &Uploader{
		Repo:      repo,
		Store:     store,
		Inspector: inspector,
		Stager:    stager,
		Policy:    policy,
	}
}

// Do validates, stores and records a video read from r under the given
// display name. The size comes from the stream itself, never from headers.
// The record write is the commit point: no record exists unless every
// earlier step succeeded
func (u *Uploader) Do(ctx context.Context, r io.ReadSeeker, name string) (*model.Video, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty file name", ErrUploadFailed)
	}

	length, err := streamLength(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to measure payload, %w", ErrUploadFailed, err)
	}

	size := BytesToMB(length)
	if size > u.Policy.MaxSizeMB {
		return nil, &BoundError{Kind: ErrPayloadTooLarge, Bound: "max_file_size", Limit: u.Policy.MaxSizeMB, Value: size}
	}

	staged, _, err := u.Stager.Write(SuffixFor(name), r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	defer staged.Cleanup()

	duration, err := u.Inspector.Duration(ctx, staged.Path())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get video duration, %w", ErrUploadFailed, err)
	}

	if duration < u.Policy.MinDuration {
		zap.L().Info("Rejecting upload, video too short", zap.Float64("duration", duration))
		return nil, &BoundError{Kind: ErrInvalidDuration, Bound: "min_duration", Limit: u.Policy.MinDuration, Value: duration}
	}

	if duration > u.Policy.MaxDuration {
		zap.L().Info("Rejecting upload, video too long", zap.Float64("duration", duration))
		return nil, &BoundError{Kind: ErrInvalidDuration, Bound: "max_duration", Limit: u.Policy.MaxDuration, Value: duration}
	}

	key := UploadKey(u.Policy.KeyPrefix, name)

	if err := u.Store.Put(ctx, key, staged.Path()); err != nil {
		return nil, fmt.Errorf("%w: failed to upload video, %w", ErrUploadFailed, err)
	}

	v := &model.Video{
		Filename:   name,
		StorageKey: key,
		Duration:   duration,
		Size:       size,
	}

	if err := u.Repo.Create(ctx, v); err != nil {
		discardOrphan(u.Store, key, u.Policy.CleanupOrphans)
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	zap.L().Info("Video uploaded",
		zap.Uint("id", v.ID),
		zap.String("key", key),
		zap.Float64("duration", duration),
		zap.Float64("size_mb", size))

	return v, nil
}

func streamLength(r io.Seeker) (int64, error) {
	cur, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}

	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}

	if _, err := r.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}

	if end < cur {
		return 0, errors.New("stream position past its end")
	}

	return end - cur, nil
}

// discardOrphan removes an object whose record could not be written.
// The request context may already be gone, so a fresh one is used
func discardOrphan(store BlobStore, key string, enabled bool) {
	if !enabled {
		zap.L().Warn("Stored object has no record", zap.String("key", key))
		return
	}

	if err := store.Delete(context.Background(), key); err != nil {
		zap.L().Error("Failed to cleanup after failed upload", zap.String("key", key), zap.Error(err))
		return
	}

	zap.L().Debug("Cleaned up after failed upload", zap.String("key", key))
}
