package aws

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"typed no such key", &types.NoSuchKey{}, ErrObjectNotFound},
		{"wrapped no such key", fmt.Errorf("operation error, %w", &types.NoSuchKey{}), ErrObjectNotFound},
		{"head not found", &smithy.GenericAPIError{Code: "NotFound"}, ErrObjectNotFound},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, ErrStorageUnavailable},
		{"deadline", context.DeadlineExceeded, ErrStorageUnavailable},
		{"network", errors.New("connection reset by peer"), ErrStorageUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("get", "videos/a.mp4", tt.err)

			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.err)
			assert.Contains(t, err.Error(), "videos/a.mp4")
		})
	}
}

func TestWithTimeout(t *testing.T) {
	c := &S3Client{}

	ctx, cancel := c.withTimeout(context.Background())
	defer cancel()

	_, ok := ctx.Deadline()
	assert.False(t, ok)

	c.Timeout = time.Second
	ctx2, cancel2 := c.withTimeout(context.Background())
	defer cancel2()

	_, ok = ctx2.Deadline()
	assert.True(t, ok)
}
