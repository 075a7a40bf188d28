// Package repository holds the persistence layer of video metadata
package repository

import (
	"context"
	"errors"
	"fmt"
	"videoverse/video-api/internal/model"

	"gorm.io/gorm"
)

var ErrVideoNotFound = errors.New("video not found")

// VideoRepository is a keyed record store for video metadata. It is the
// only component that mutates a model.Video
type VideoRepository interface {
	Create(ctx context.Context, v *model.Video) error
	Get(ctx context.Context, id uint) (*model.Video, error)
	// UpdateMedia replaces the duration and size of a video and refreshes
	// its update timestamp
	UpdateMedia(ctx context.Context, id uint, duration, size float64) (*model.Video, error)
	List(ctx context.Context) ([]model.Video, error)
}

type GormVideoRepository struct {
	DB *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *GormVideoRepository {
	return &GormVideoRepository{DB: db}
}

func (r *GormVideoRepository) Create(ctx context.Context, v *model.Video) error {
	err := r.DB.
		WithContext(ctx).
		Create(v).
		Error
	if err != nil {
		return fmt.Errorf("failed to create video record, %w", err)
	}

	return nil
}

func (r *GormVideoRepository) Get(ctx context.Context, id uint) (*model.Video, error) {
	var v model.Video

	err := r.DB.
		WithContext(ctx).
		Where("id = ?", id).
		First(&v).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}

		return nil, fmt.Errorf("failed to fetch video record, %w", err)
	}

	return &v, nil
}

func (r *GormVideoRepository) UpdateMedia(ctx context.Context, id uint, duration, size float64) (*model.Video, error) {
	res := r.DB.
		WithContext(ctx).
		Model(&model.Video{ID: id}).
		Updates(map[string]any{
			"duration": duration,
			"size":     size,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update video record, %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return nil, ErrVideoNotFound
	}

	return r.Get(ctx, id)
}

func (r *GormVideoRepository) List(ctx context.Context) ([]model.Video, error) {
	entries := []model.Video{}

	err := r.DB.
		WithContext(ctx).
		Order("created_at desc").
		Order("id desc").
		Find(&entries).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list video records, %w", err)
	}

	return entries, nil
}
