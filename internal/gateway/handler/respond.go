package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jobdeck/jobdeck-be/internal/domain"
)

// statusFor maps an error kind to its HTTP status
func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindBadRequest:
		return http.StatusBadRequest
	case domain.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondData renders a successful reply
func respondData(c *gin.Context, status int, data json.RawMessage) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondError renders an error reply. Internal detail never reaches the
// client; MessageOf already collapses unknown errors to a generic message.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	kind := domain.KindOf(err)
	if kind == domain.KindInternal {
		logger.Error("Request failed",
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
		)
	}

	c.JSON(statusFor(kind), gin.H{
		"success": false,
		"message": domain.MessageOf(err),
		"error": gin.H{
			"code": kind,
		},
	})
}

// respondBadRequest renders a request binding failure
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"message": message,
		"error": gin.H{
			"code": domain.KindBadRequest,
		},
	})
}
