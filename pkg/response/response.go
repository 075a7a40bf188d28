// Package response holds the JSON envelope every endpoint answers with
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type Envelope struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
	StatusCode int    `json:"status_code"`
}

// JSON writes the envelope with code as both the HTTP status and the
// status_code field
func JSON(c *gin.Context, code int, message string, data any) {
	status := StatusSuccess
	if code >= http.StatusBadRequest {
		status = StatusError
	}

	c.JSON(code, Envelope{
		Status:     status,
		Message:    message,
		Data:       data,
		StatusCode: code,
	})
}

func OK(c *gin.Context, message string, data any) {
	JSON(c, http.StatusOK, message, data)
}

func Created(c *gin.Context, message string, data any) {
	JSON(c, http.StatusCreated, message, data)
}

func Error(c *gin.Context, code int, message string) {
	JSON(c, code, message, nil)
}

// ErrorDetail answers with the underlying error text under data.error
func ErrorDetail(c *gin.Context, code int, message string, err error) {
	JSON(c, code, message, gin.H{"error": err.Error()})
}

// Abort writes the envelope and stops the handler chain. Used by middleware
func Abort(c *gin.Context, code int, message string) {
	Error(c, code, message)
	c.Abort()
}
