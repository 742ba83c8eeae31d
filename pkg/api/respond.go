package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aldicp/aldicp/pkg/models"
)

// statusFor maps the error taxonomy (spec §7) to an HTTP status code.
func statusFor(kind string) int {
	switch kind {
	case "input_error":
		return http.StatusBadRequest
	case "validation_error":
		return http.StatusUnprocessableEntity
	case "capacity_error":
		return http.StatusTooManyRequests
	case "dependency_error":
		return http.StatusServiceUnavailable
	case "not_found":
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the {error: {kind, message}} shape from spec §7.
func respondError(c *gin.Context, err error) {
	kind := models.ErrorKind(err)
	c.JSON(statusFor(kind), gin.H{
		"error": models.ErrorDetail{
			Kind:    kind,
			Message: err.Error(),
		},
	})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": models.ErrorDetail{
			Kind:    "input_error",
			Message: err.Error(),
		},
	})
}
