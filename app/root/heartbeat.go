// Package root contains handlers that don't belong to a resource
package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Heartbeat answers HEAD /api/heartbeat with an empty 200
func Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}
