package internal

import (
	"time"
	"videoverse/video-api/internal/repository"
	"videoverse/video-api/internal/service"

	"gorm.io/gorm"
)

// Deps carries everything handlers need. Built once by app.NewRouter
type Deps struct {
	DB       *gorm.DB
	Repo     repository.VideoRepository
	Store    service.BlobStore
	JobQueue *service.JobQueue
	Uploader *service.Uploader
	Trimmer  *service.TrimService
	Sweeper  *service.StagingSweeper

	// Lifetime of URLs minted by GET /api/video/:id/url
	SignedURLTTL time.Duration
}
