package service

import (
	"context"
	"time"
)

// BlobStore is the remote object storage. Get and Put work on local files
// so the media tools can read and write the same paths
type BlobStore interface {
	Put(ctx context.Context, key, localPath string) error
	Get(ctx context.Context, key, localPath string) error
	SignedReadURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// Inspector extracts the duration in seconds of a local video file
type Inspector interface {
	Duration(ctx context.Context, p string) (float64, error)
}

// Trimmer writes the [start, end] slice of in to out without re-encoding
type Trimmer interface {
	Trim(ctx context.Context, in string, start, end float64, out string) error
}
