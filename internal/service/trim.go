package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"videoverse/video-api/internal/model"
	"videoverse/video-api/internal/repository"

	"go.uber.org/zap"
)

type TrimType string

const (
	TrimStart TrimType = "start"
	TrimEnd   TrimType = "end"
)

type TrimRequest struct {
	VideoID   uint
	Type      TrimType
	Time      float64
	SaveAsNew bool
}

type TrimPolicy struct {
	// With AllowZeroStart the range check becomes 0 <= start < end. By
	// default start must be strictly positive, which rejects every end trim
	AllowZeroStart bool
	KeyPrefix      string
	CleanupOrphans bool
}

// Range turns a trim request into the kept [start, end] window
func Range(t TrimType, trimTime, duration float64) (start, end float64) {
	if t == TrimStart {
		return trimTime, duration
	}

	return 0, trimTime
}

// Check validates a window of a video lasting duration seconds against the
// policy and names the violated bound
func (p TrimPolicy) Check(start, end, duration float64) error {
	if p.AllowZeroStart {
		if start < 0 {
			return &BoundError{Kind: ErrInvalidRange, Bound: "start_time >= 0", Limit: 0, Value: start}
		}
	} else if start <= 0 {
		return &BoundError{Kind: ErrInvalidRange, Bound: "start_time > 0", Limit: 0, Value: start}
	}

	if start >= end {
		return &BoundError{Kind: ErrInvalidRange, Bound: "start_time < end_time", Limit: end, Value: start}
	}

	if end > duration {
		return &BoundError{Kind: ErrInvalidRange, Bound: "end_time <= duration", Limit: duration, Value: end}
	}

	return nil
}

type TrimService struct {
	Repo    repository.VideoRepository
	Store   BlobStore
	Trimmer Trimmer
	Stager  *Stager
	Policy  TrimPolicy
	// Optional. When set, trims of the same video run one at a time
	Locks *KeyedMutex
}

func NewTrimService(repo repository.VideoRepository, store BlobStore, trimmer Trimmer, stager *Stager, policy TrimPolicy, locks *KeyedMutex) *TrimService {
	return &TrimService{
		Repo:    repo,
		Store:   store,
		Trimmer: trimmer,
		Stager:  stager,
		Policy:  policy,
		Locks:   locks,
	}
}

// Trim cuts a stored video and either replaces it or saves the result as a
// new video. The metadata write is the last step so a failure anywhere
// before it leaves the original record untouched
func (s *TrimService) Trim(ctx context.Context, req TrimRequest) (*model.Video, error) {
	if req.Type != TrimStart && req.Type != TrimEnd {
		return nil, fmt.Errorf("%w: unknown trim type %q", ErrInvalidRange, req.Type)
	}

	if s.Locks != nil {
		unlock := s.Locks.Lock(req.VideoID)
		defer unlock()
	}

	v, err := s.Repo.Get(ctx, req.VideoID)
	if err != nil {
		if errors.Is(err, repository.ErrVideoNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrNotFound, req.VideoID)
		}

		return nil, fmt.Errorf("%w: %w", ErrTrimFailed, err)
	}

	start, end := Range(req.Type, req.Time, v.Duration)
	if err := s.Policy.Check(start, end, v.Duration); err != nil {
		return nil, err
	}

	suffix := SuffixFor(v.Filename)

	input, err := s.Stager.Create(suffix)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTrimFailed, err)
	}
	defer input.Cleanup()

	if err := s.Store.Get(ctx, v.StorageKey, input.Path()); err != nil {
		return nil, fmt.Errorf("%w: failed to download video, %w", ErrTrimFailed, err)
	}

	output, err := s.Stager.Create(suffix)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTrimFailed, err)
	}
	defer output.Cleanup()

	if err := s.Trimmer.Trim(ctx, input.Path(), start, end, output.Path()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTrimToolFailed, err)
	}

	newDuration := end - start

	newSize, err := s.Stager.SizeMB(output.Path())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTrimFailed, err)
	}

	if req.SaveAsNew {
		return s.saveAsNew(ctx, v, output.Path(), newDuration, newSize)
	}

	return s.replace(ctx, v, output.Path(), newDuration, newSize)
}

func (s *TrimService) saveAsNew(ctx context.Context, orig *model.Video, p string, duration, size float64) (*model.Video, error) {
	name := TrimmedName(orig.Filename)
	key := path.Join(s.Policy.KeyPrefix, name)

	if err := s.Store.Put(ctx, key, p); err != nil {
		return nil, fmt.Errorf("%w: failed to upload trimmed video, %w", ErrTrimFailed, err)
	}

	v := &model.Video{
		Filename:   name,
		StorageKey: key,
		Duration:   duration,
		Size:       size,
	}

	if err := s.Repo.Create(ctx, v); err != nil {
		discardOrphan(s.Store, key, s.Policy.CleanupOrphans)
		return nil, fmt.Errorf("%w: %w", ErrTrimFailed, err)
	}

	zap.L().Info("Video trimmed and saved as a new copy",
		zap.Uint("source_id", orig.ID),
		zap.Uint("id", v.ID),
		zap.Float64("duration", duration))

	return v, nil
}

// replace overwrites the stored object in place. If the record update fails
// afterwards the object and the record disagree until the next trim
func (s *TrimService) replace(ctx context.Context, orig *model.Video, p string, duration, size float64) (*model.Video, error) {
	if err := s.Store.Put(ctx, orig.StorageKey, p); err != nil {
		return nil, fmt.Errorf("%w: failed to upload trimmed video, %w", ErrTrimFailed, err)
	}

	v, err := s.Repo.UpdateMedia(ctx, orig.ID, duration, size)
	if err != nil {
		zap.L().Error("Stored object replaced but record update failed", zap.Uint("id", orig.ID), zap.String("key", orig.StorageKey), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrTrimFailed, err)
	}

	zap.L().Info("Video trimmed and updated", zap.Uint("id", v.ID), zap.Float64("duration", duration))

	return v, nil
}
