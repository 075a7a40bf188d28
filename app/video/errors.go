// Package video contains the handlers of the /api/video routes
package video

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"videoverse/video-api/internal"
	"videoverse/video-api/internal/service"
	"videoverse/video-api/pkg/middleware"
	"videoverse/video-api/pkg/response"
	"videoverse/video-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatusFor maps a pipeline error to the HTTP status it is answered with
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrInvalidDuration),
		errors.Is(err, validators.ErrUnsupportedMedia):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func tooLargeMessage(maxMB float64) string {
	return fmt.Sprintf("File size must be less than %gMB", maxMB)
}

func durationMessage(p service.UploadPolicy) string {
	return fmt.Sprintf("Video duration must be between %g and %g seconds", p.MinDuration, p.MaxDuration)
}

func rangeMessage(p service.TrimPolicy) string {
	if p.AllowZeroStart {
		return "Invalid trim value, trim time must be within the video duration"
	}

	return "Invalid trim value, start time must be greater than 0 and less than the video duration"
}

// fail answers with the envelope for err. Server side failures carry the
// error text under data.error and get logged
func fail(c *gin.Context, d *internal.Deps, err error, internalMsg string) {
	code := StatusFor(err)
	if code < http.StatusInternalServerError {
		response.Error(c, code, clientMessage(d, err))
		return
	}

	zap.L().Error(internalMsg, zap.String("request_id", middleware.RequestID(c)), zap.Error(err))
	response.ErrorDetail(c, code, internalMsg, err)
}

func clientMessage(d *internal.Deps, err error) string {
	switch {
	case errors.Is(err, service.ErrPayloadTooLarge):
		return tooLargeMessage(d.Uploader.Policy.MaxSizeMB)
	case errors.Is(err, service.ErrInvalidDuration):
		return durationMessage(d.Uploader.Policy)
	case errors.Is(err, service.ErrInvalidRange):
		return rangeMessage(d.Trimmer.Policy)
	case errors.Is(err, service.ErrNotFound):
		return "The video you are looking for does not exist"
	default:
		return err.Error()
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, "Invalid video ID provided")
		return 0, false
	}

	return uint(id), true
}
