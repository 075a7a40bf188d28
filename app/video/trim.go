package video

import (
	"errors"
	"net/http"
	"videoverse/video-api/internal"
	"videoverse/video-api/internal/service"
	"videoverse/video-api/pkg/middleware"
	"videoverse/video-api/pkg/response"
	"videoverse/video-api/pkg/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func VideoTrim(c *gin.Context, d *internal.Deps) {
	var o validators.TrimOptions
	if err := c.ShouldBindJSON(&o); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body, "+err.Error())
		return
	}

	if code, err := validators.TrimOptsValidator(&o); err != nil {
		response.Error(c, code, err.Error())
		return
	}

	v, err := d.Trimmer.Trim(c.Request.Context(), service.TrimRequest{
		VideoID:   o.VideoID,
		Type:      service.TrimType(o.TrimType),
		Time:      *o.TrimTime,
		SaveAsNew: o.SaveAsNew,
	})
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "The video you are trying to trim does not exist")
			return
		}

		fail(c, d, err, "Error while trimming video")
		return
	}

	zap.L().Info("Video trimmed",
		zap.String("request_id", middleware.RequestID(c)),
		zap.Uint("source_id", o.VideoID),
		zap.Uint("id", v.ID),
		zap.Bool("save_as_new", o.SaveAsNew))

	if o.SaveAsNew {
		response.OK(c, "Video trimmed and saved as a new copy successfully", v)
		return
	}

	response.OK(c, "Video trimmed and updated successfully", v)
}
