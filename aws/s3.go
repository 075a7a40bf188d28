package aws

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

var (
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrObjectNotFound     = errors.New("object not found")
)

// Files bigger than this are sent in parts
const minMultipartSize = 12 << 20

// Put uploads the file at p under key, replacing any existing object.
// A failed Put leaves the object in an unknown state
func (c *S3Client) Put(ctx context.Context, key, p string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	f, err := os.Open(p)
	if err != nil {
		return fmt.Errorf("failed to open %s for upload, %w", p, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s, %w", p, err)
	}

	contentType := "application/octet-stream"
	if mime, err := mimetype.DetectFile(p); err == nil {
		contentType = mime.String()
	}

	input := &s3.PutObjectInput{
		Bucket:        c.Bucket,
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(stat.Size()),
		ContentType:   aws.String(contentType),
	}

	now := time.Now()

	if stat.Size() > minMultipartSize {
		u := manager.NewUploader(c.C, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 6 << 20
		})

		_, err = u.Upload(ctx, input)
	} else {
		_, err = c.C.PutObject(ctx, input)
	}
	if err != nil {
		return classify("put", key, err)
	}

	zap.L().Debug("Object uploaded",
		zap.String("key", key),
		zap.Int64("size", stat.Size()),
		zap.Duration("took", time.Since(now)))

	return nil
}

// Get downloads the object stored under key into the file at p,
// truncating it first
func (c *S3Client) Get(ctx context.Context, key, p string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open %s for download, %w", p, err)
	}
	defer f.Close()

	d := manager.NewDownloader(c.C, func(d *manager.Downloader) {
		d.Concurrency = 5
		d.PartSize = 6 << 20
	})

	n, err := d.Download(ctx, f, &s3.GetObjectInput{
		Bucket: c.Bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		return classify("get", key, err)
	}

	zap.L().Debug("Object downloaded", zap.String("key", key), zap.Int64("size", n))
	return nil
}

// SignedReadURL mints a credential free GET url valid for ttl
func (c *S3Client) SignedReadURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := c.Presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: c.Bucket,
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", classify("presign", key, err)
	}

	return req.URL, nil
}

// Delete removes the object stored under key. Deleting a missing key is
// not an error
func (c *S3Client) Delete(ctx context.Context, key string) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, err := c.C.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: c.Bucket,
		Key:    aws.String(key),
	})
	if err != nil {
		err = classify("delete", key, err)
		if errors.Is(err, ErrObjectNotFound) {
			return nil
		}

		return err
	}

	return nil
}

func (c *S3Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.Timeout)
}

// classify maps SDK errors onto ErrObjectNotFound and ErrStorageUnavailable
// while keeping the original error in the chain
func classify(op, key string, err error) error {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return fmt.Errorf("%s %s: %w, %w", op, key, ErrObjectNotFound, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%s %s: %w, %w", op, key, ErrObjectNotFound, err)
		}
	}

	return fmt.Errorf("%s %s: %w, %w", op, key, ErrStorageUnavailable, err)
}
