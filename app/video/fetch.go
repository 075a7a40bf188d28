package video

import (
	"errors"
	"net/http"
	"videoverse/video-api/internal"
	"videoverse/video-api/internal/model"
	"videoverse/video-api/internal/repository"
	"videoverse/video-api/pkg/response"

	"github.com/gin-gonic/gin"
)

func VideoFetch(c *gin.Context, d *internal.Deps) {
	v, ok := lookup(c, d)
	if !ok {
		return
	}

	response.OK(c, "Video found", v)
}

// lookup loads the video named by the :id param and answers the request
// itself when it can't
func lookup(c *gin.Context, d *internal.Deps) (*model.Video, bool) {
	id, ok := parseID(c)
	if !ok {
		return nil, false
	}

	v, err := d.Repo.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrVideoNotFound) {
			response.Error(c, http.StatusNotFound, "The video you are looking for does not exist")
			return nil, false
		}

		fail(c, d, err, "Error while fetching video")
		return nil, false
	}

	return v, true
}
