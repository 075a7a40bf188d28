package video

import (
	"videoverse/video-api/internal"
	"videoverse/video-api/pkg/response"

	"github.com/gin-gonic/gin"
)

func VideoList(c *gin.Context, d *internal.Deps) {
	videos, err := d.Repo.List(c.Request.Context())
	if err != nil {
		fail(c, d, err, "Error while listing videos")
		return
	}

	response.OK(c, "List of videos", videos)
}
