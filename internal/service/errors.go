package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrInvalidDuration = errors.New("invalid video duration")
	ErrInvalidRange    = errors.New("invalid trim range")
	ErrNotFound        = errors.New("video not found")
	ErrToolInvocation  = errors.New("external tool invocation failed")
	ErrUploadFailed    = errors.New("upload failed")
	ErrTrimToolFailed  = errors.New("trim tool failed")
	ErrTrimFailed      = errors.New("trim failed")
)

// BoundError reports which configured or derived bound a value violated.
// It matches its Kind with errors.Is
type BoundError struct {
	Kind  error
	Bound string
	Limit float64
	Value float64
}

func (e *BoundError) Error() string {
	return fmt.Sprintf("%v: %s is %g, violates %s (%g)", e.Kind, valueName(e.Bound), e.Value, e.Bound, e.Limit)
}

func (e *BoundError) Unwrap() error {
	return e.Kind
}

func valueName(bound string) string {
	switch {
	case strings.HasPrefix(bound, "start"):
		return "start time"
	case strings.HasPrefix(bound, "end"):
		return "end time"
	case strings.HasSuffix(bound, "file_size"):
		return "size"
	default:
		return "duration"
	}
}

// ToolError is returned when an external media tool exits with a non
// zero status, can't be started or runs out of time
type ToolError struct {
	Tool   string
	Output string // Captured stderr
	Err    error
}

func (e *ToolError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s failed, %v", e.Tool, e.Err)
	}

	return fmt.Sprintf("%s failed, %v (%s)", e.Tool, e.Err, e.Output)
}

func (e *ToolError) Unwrap() []error {
	return []error{ErrToolInvocation, e.Err}
}
