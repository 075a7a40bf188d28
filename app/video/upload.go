package video

import (
	"errors"
	"net/http"
	"videoverse/video-api/internal"
	"videoverse/video-api/pkg/middleware"
	"videoverse/video-api/pkg/response"
	"videoverse/video-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func VideoUpload(c *gin.Context, d *internal.Deps) {
	requestID := middleware.RequestID(c)

	fh, err := c.FormFile("file")
	if err != nil {
		switch {
		case middleware.IsBodyTooLarge(err):
			response.Error(c, http.StatusRequestEntityTooLarge, tooLargeMessage(d.Uploader.Policy.MaxSizeMB))
		case errors.Is(err, http.ErrMissingFile):
			response.Error(c, http.StatusBadRequest, "No file provided")
		default:
			response.Error(c, http.StatusBadRequest, "Malformed multipart form")
		}
		return
	}

	code, f, name, err := validators.FileValidator(fh)
	if err != nil {
		if code >= http.StatusInternalServerError {
			zap.L().Error("Failed to validate uploaded file", zap.String("request_id", requestID), zap.Error(err))
			response.ErrorDetail(c, code, "Error while uploading video", err)
			return
		}

		response.Error(c, code, err.Error())
		return
	}
	defer f.Close()

	v, err := d.Uploader.Do(c.Request.Context(), f, name)
	if err != nil {
		fail(c, d, err, "Error while uploading video")
		return
	}

	response.Created(c, "Video uploaded successfully", v)
}
