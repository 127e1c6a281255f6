package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	forecastdomain "github.com/tomasz-trela/catermetrics/internal/forecast/domain"
	pairingdomain "github.com/tomasz-trela/catermetrics/internal/pairing/domain"
	"github.com/tomasz-trela/catermetrics/internal/ranking"
	recordstoredomain "github.com/tomasz-trela/catermetrics/internal/recordstore/domain"
)

// APIError is the wire shape for request failures.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *APIError) Error() string { return e.Code }

var (
	ErrNotFound = &APIError{
		Status:  http.StatusNotFound,
		Code:    "not_found",
		Message: "resource not found",
	}
	ErrServiceUnavailable = &APIError{
		Status:  http.StatusServiceUnavailable,
		Code:    "service_unavailable",
		Message: "service unavailable",
	}
)

func newValidationError(field, code, message string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    code,
		Field:   field,
		Message: message,
	}
}

// AbortWithError renders a structured error response and stops the chain.
func AbortWithError(c *gin.Context, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr})
		return
	}

	switch {
	case errors.Is(err, pairingdomain.ErrInvalidLimit),
		errors.Is(err, forecastdomain.ErrInvalidHorizon),
		errors.Is(err, ranking.ErrInvalidPopulation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": gin.H{
			"code":    err.Error(),
			"message": "invalid query parameter",
		}})
	case errors.Is(err, recordstoredomain.ErrStoreUnavailable):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": gin.H{
			"code":    err.Error(),
			"message": "record store unavailable",
		}})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": gin.H{
			"code":    "internal_error",
			"message": "internal error",
		}})
	}
}
