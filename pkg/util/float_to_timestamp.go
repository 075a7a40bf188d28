package util

import (
	"fmt"
	"math"
)

// FloatToTimestamp formats seconds as HH:MM:SS.mmm, the form ffmpeg takes for -ss and -to
func FloatToTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}

	totalMs := int64(math.Round(seconds * 1000))

	hours := totalMs / 3_600_000
	minutes := totalMs / 60_000 % 60
	secs := totalMs / 1000 % 60
	ms := totalMs % 1000

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, ms)
}
