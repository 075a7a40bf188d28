package validators

import (
	"errors"
	"net/http"
)

var ErrNoTrimTime = errors.New("trim_time is required")

// TrimOptions is the JSON body of a trim request
type TrimOptions struct {
	VideoID   uint     `json:"video_id" binding:"required"`
	TrimTime  *float64 `json:"trim_time"`
	TrimType  string   `json:"trim_type" binding:"required,oneof=start end"`
	SaveAsNew bool     `json:"save_as_new"`
}

// TrimOptsValidator covers what the binding tags can't. Whether the time
// fits the video is decided later against its stored duration
func TrimOptsValidator(o *TrimOptions) (int, error) {
	if o.TrimTime == nil {
		return http.StatusBadRequest, ErrNoTrimTime
	}

	return 0, nil
}
