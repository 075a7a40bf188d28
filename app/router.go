// Package app wires the dependencies and routes of the HTTP API
package app

import (
	"context"
	"fmt"
	"strings"
	"time"
	"videoverse/video-api/app/root"
	"videoverse/video-api/app/video"
	"videoverse/video-api/aws"
	"videoverse/video-api/db"
	"videoverse/video-api/internal"
	"videoverse/video-api/internal/repository"
	"videoverse/video-api/internal/service"
	"videoverse/video-api/pkg/middleware"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Room for the multipart boundaries and headers around the file part
const multipartOverhead = 1 << 20

// Options are the HTTP level settings of the router
type Options struct {
	CORSOrigins []string
	// Requests per second per client IP. Zero disables the limiter
	RateLimit int
	// How long GET /api/video/list responses are cached. Zero disables it
	ListCacheTTL time.Duration
	MaxBodyBytes int64
}

// NewDeps builds every dependency from the loaded configuration and
// starts the background workers. Call Close on shutdown
func NewDeps(ctx context.Context) (*internal.Deps, error) {
	database, err := db.New(v.GetString("db.driver"), v.GetString("db.dsn"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}

	s3, err := aws.NewS3(ctx, aws.Options{
		Bucket:          v.GetString("storage.bucket"),
		Region:          v.GetString("storage.region"),
		Endpoint:        v.GetString("storage.endpoint"),
		AccessKeyID:     v.GetString("storage.access_key_id"),
		SecretAccessKey: v.GetString("storage.secret_access_key"),
		Timeout:         v.GetDuration("storage.timeout"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
	}

	fs := afero.NewOsFs()
	stagingDir := v.GetString("staging.dir")
	stager := service.NewStager(fs, stagingDir)
	queue := service.NewJobQueue(v.GetInt("ffmpeg.workers"), service.ExecRunner{})
	repo := repository.NewVideoRepository(database)
	keyPrefix := v.GetString("storage.key_prefix")
	cleanupOrphans := v.GetBool("storage.cleanup_orphans")
	toolTimeout := v.GetDuration("ffmpeg.timeout")

	var locks *service.KeyedMutex
	if v.GetBool("trim.lock_records") {
		locks = service.NewKeyedMutex()
	}

	d := &internal.Deps{
		DB:       database,
		Repo:     repo,
		Store:    s3,
		JobQueue: queue,
		Uploader: service.NewUploader(repo, s3,
			&service.FFprobe{Path: v.GetString("ffprobe.path"), Queue: queue, Timeout: toolTimeout},
			stager,
			service.UploadPolicy{
				MaxSizeMB:      v.GetFloat64("upload.max_size"),
				MinDuration:    v.GetFloat64("video.min_duration"),
				MaxDuration:    v.GetFloat64("video.max_duration"),
				KeyPrefix:      keyPrefix,
				CleanupOrphans: cleanupOrphans,
			}),
		Trimmer: service.NewTrimService(repo, s3,
			&service.FFmpeg{Path: v.GetString("ffmpeg.path"), Queue: queue, Timeout: toolTimeout},
			stager,
			service.TrimPolicy{
				AllowZeroStart: v.GetBool("trim.allow_zero_start"),
				KeyPrefix:      keyPrefix,
				CleanupOrphans: cleanupOrphans,
			},
			locks),
		Sweeper:      service.NewStagingSweeper(fs, stagingDir, v.GetDuration("staging.max_age")),
		SignedURLTTL: time.Duration(v.GetInt("storage.signed_url_expiration")) * time.Minute,
	}

	// Start FFmpeg job queue
	d.JobQueue.StartWorkerPool()

	if err := d.Sweeper.Start(v.GetString("staging.sweep_schedule")); err != nil {
		d.JobQueue.Stop()
		return nil, err
	}

	return d, nil
}

// OptionsFromConfig reads the router options from the loaded configuration
func OptionsFromConfig() Options {
	origins := []string{}
	for _, o := range strings.Split(v.GetString("host.cors"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return Options{
		CORSOrigins:  origins,
		RateLimit:    v.GetInt("security.rate_limit"),
		ListCacheTTL: time.Duration(v.GetInt("cache.list_ttl")) * time.Second,
		MaxBodyBytes: int64(v.GetFloat64("upload.max_size")*(1<<20)) + multipartOverhead,
	}
}

// NewRouter registers every route on a fresh engine
func NewRouter(d *internal.Deps, o Options) *gin.Engine {
	router := gin.New()

	corsCfg := cors.Config{
		AllowOrigins:     o.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(o.CORSOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}

	router.Use(
		cors.New(corsCfg),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				if id := middleware.RequestID(c); id != "" {
					return []zapcore.Field{zap.String("request_id", id)}
				}
				return nil
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	m := router.Group("/api")
	if o.RateLimit > 0 {
		m.Use(middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
			RequestsPerSecond: o.RateLimit,
			Burst:             o.RateLimit * 2,
		}))
	}

	// HEAD /api/heartbeat 		-> Used to check if the server is alive
	m.HEAD("/heartbeat", root.Heartbeat)

	vg := m.Group("/video")
	{
		// POST /api/video/upload	-> Uploads a new video and stores its metadata
		vg.POST("/upload", middleware.BodySizeLimiter(o.MaxBodyBytes), func(c *gin.Context) { video.VideoUpload(c, d) })

		// GET /api/video/list		-> Returns every stored video, newest first
		vg.GET("/list", cacheFor(o.ListCacheTTL), func(c *gin.Context) { video.VideoList(c, d) })

		// POST /api/video/trim		-> Trims a video in place or into a new copy
		vg.POST("/trim", middleware.BodySizeLimiter(1<<20), func(c *gin.Context) { video.VideoTrim(c, d) })

		// GET /api/video/:id		-> Returns a single video
		vg.GET("/:id", func(c *gin.Context) { video.VideoFetch(c, d) })

		// GET /api/video/:id/url	-> Returns a signed, expiring read URL
		vg.GET("/:id/url", func(c *gin.Context) { video.VideoURL(c, d) })
	}

	return router
}

// cacheFor caches by request URI for ttl. A zero ttl returns a pass
// through handler
func cacheFor(ttl time.Duration) gin.HandlerFunc {
	if ttl <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return cache.CacheByRequestURI(persist.NewMemoryStore(time.Minute), ttl)
}

// Close stops the background workers started by NewDeps
func Close(d *internal.Deps) {
	if d.Sweeper != nil {
		d.Sweeper.Stop()
	}

	if d.JobQueue != nil {
		d.JobQueue.Stop()
	}

	if d.DB != nil {
		if sqlDB, err := d.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
