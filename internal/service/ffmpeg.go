package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
	"videoverse/video-api/pkg/util"

	"go.uber.org/zap"
)

// FFprobe implements Inspector
type FFprobe struct {
	Path    string
	Queue   *JobQueue
	Timeout time.Duration
}

func (p *FFprobe) Duration(ctx context.Context, path string) (float64, error) {
	ctx, cancel := withOptionalTimeout(ctx, p.Timeout)
	defer cancel()

	zap.L().Debug("Running FFprobe to determine video duration", zap.String("path", path))

	args := []string{"-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", "-i", path}

	var stdOut, stdErr bytes.Buffer
	if err := p.Queue.Run(ctx, p.Path, args, &stdOut, &stdErr); err != nil {
		return 0, toolError(ctx, "ffprobe", err, &stdErr)
	}

	durStr := strings.TrimSpace(stdOut.String())
	d, err := strconv.ParseFloat(durStr, 64)
	if err == nil && (math.IsNaN(d) || math.IsInf(d, 0) || d <= 0) {
		err = errors.New("not a positive finite number")
	}
	if err != nil {
		return 0, &ToolError{Tool: "ffprobe", Output: strings.TrimSpace(stdErr.String()), Err: fmt.Errorf("malformed duration %q, %w", durStr, err)}
	}

	zap.L().Debug("FFprobe finished", zap.Float64("duration", d))
	return d, nil
}

// FFmpeg implements Trimmer using stream copy, so no re-encoding happens
type FFmpeg struct {
	Path    string
	Queue   *JobQueue
	Timeout time.Duration
}

func (f *FFmpeg) Trim(ctx context.Context, in string, start, end float64, out string) error {
	ctx, cancel := withOptionalTimeout(ctx, f.Timeout)
	defer cancel()

	args := TrimArgs(in, start, end, out)

	var stdErr bytes.Buffer
	if err := f.Queue.Run(ctx, f.Path, args, nil, &stdErr); err != nil {
		return toolError(ctx, "ffmpeg", err, &stdErr)
	}

	stat, err := os.Stat(out)
	if err != nil {
		return &ToolError{Tool: "ffmpeg", Output: strings.TrimSpace(stdErr.String()), Err: fmt.Errorf("no output produced, %w", err)}
	}

	if stat.Size() == 0 {
		return &ToolError{Tool: "ffmpeg", Output: strings.TrimSpace(stdErr.String()), Err: errors.New("empty output produced")}
	}

	return nil
}

// TrimArgs builds the ffmpeg arguments for a stream copy of [start, end].
// The output file already exists as a staging file, hence -y
func TrimArgs(in string, start, end float64, out string) []string {
	return []string{
		"-nostdin",
		"-loglevel", "error",
		"-i", in,
		"-ss", util.FloatToTimestamp(start),
		"-to", util.FloatToTimestamp(end),
		"-c", "copy",
		"-y",
		out,
	}
}

func toolError(ctx context.Context, tool string, err error, stderr *bytes.Buffer) error {
	// A killed process reports "signal: killed", the context knows why
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		err = fmt.Errorf("%w, %w", ctxErr, err)
	}

	zap.L().Error(tool+" failed", zap.Error(err), zap.String("stderr", stderr.String()))

	return &ToolError{Tool: tool, Output: strings.TrimSpace(stderr.String()), Err: err}
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, d)
}
