package video

import (
	"videoverse/video-api/internal"
	"videoverse/video-api/pkg/response"

	"github.com/gin-gonic/gin"
)

func VideoURL(c *gin.Context, d *internal.Deps) {
	v, ok := lookup(c, d)
	if !ok {
		return
	}

	url, err := d.Store.SignedReadURL(c.Request.Context(), v.StorageKey, d.SignedURLTTL)
	if err != nil {
		fail(c, d, err, "Error while signing video URL")
		return
	}

	response.OK(c, "Signed URL created", gin.H{
		"url":        url,
		"expires_in": int(d.SignedURLTTL.Seconds()),
	})
}
