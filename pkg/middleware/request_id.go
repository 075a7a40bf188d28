// Package middleware contains any custom middleware used in the app
package middleware

import (
	"videoverse/video-api/pkg/util"

	"github.com/gin-gonic/gin"
)

const (
	RequestIDKey    = "requestID"
	RequestIDHeader = "X-Request-ID"
)

// NewRequestIDMiddleware returns a new middleware function that generates a request ID for
// each incoming request, sets it as requestID and echoes it in X-Request-ID
func NewRequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := util.RandStr(10)

		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestID returns the ID set by NewRequestIDMiddleware or an empty string
func RequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
