package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devtrail/bootcamper/pkg/apperr"
	"github.com/devtrail/bootcamper/pkg/query"
)

// APIResponse is the uniform envelope for every endpoint.
type APIResponse[T any] struct {
	Status    int         `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id"`
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      T           `json:"data,omitempty"`
	Meta      interface{} `json:"meta,omitempty"`
	Error     interface{} `json:"error,omitempty"`
}

// ListMeta accompanies list responses.
type ListMeta struct {
	Count      int              `json:"count"`
	Total      int64            `json:"total"`
	Pagination query.Pagination `json:"pagination"`
}

// OK writes a success envelope.
func OK[T any](ctx *gin.Context, status int, data T, message string, meta interface{}) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
		Meta:      meta,
	})
}

// Fail writes a failure envelope.
func Fail(ctx *gin.Context, status int, message string, details interface{}) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	ctx.JSON(status, APIResponse[any]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   false,
		Message:   message,
		Error:     details,
	})
}

// FromError maps a service error onto the failure envelope using the apperr
// taxonomy for the status code.
func FromError(ctx *gin.Context, err error) {
	Fail(ctx, apperr.Status(err), apperr.Message(err), nil)
}

// AbortFromError is FromError for middleware, stopping the handler chain.
func AbortFromError(ctx *gin.Context, err error) {
	FromError(ctx, err)
	ctx.Abort()
}
