package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/campusgraph/socialgraph/internal/httputil"
	"github.com/campusgraph/socialgraph/internal/metrics"
	"github.com/campusgraph/socialgraph/internal/models"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest  = "invalid_request"
	ErrCodeNotFound        = "not_found"
	ErrCodeInternalError   = "internal_error"
	ErrCodeValidationError = "validation_error"
	ErrCodeConflict        = "conflict"
	ErrCodeNotAllowed      = "not_allowed"
	ErrCodeTimeout         = "timeout"
)

// respondError writes a standardized JSON error response, pulling the request
// ID from the Gin context (set by the request ID middleware).
func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}

// respondServiceError maps a service error onto its HTTP status. Unexpected
// errors are logged with action and reported as 500 without detail.
func respondServiceError(c *gin.Context, log *logrus.Logger, err error, action string) {
	switch {
	case errors.Is(err, models.ErrNodeNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "node not found")
	case errors.Is(err, models.ErrRelationshipNotFound):
		respondError(c, http.StatusNotFound, ErrCodeNotFound, "relationship not found")
	case errors.Is(err, models.ErrValidation):
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())
	case errors.Is(err, models.ErrNotAllowed):
		respondError(c, http.StatusConflict, ErrCodeNotAllowed, err.Error())
	case errors.Is(err, models.ErrDuplicateRelationship):
		respondError(c, http.StatusConflict, ErrCodeConflict, "relationship with this source/target/type already exists")
	case errors.Is(err, context.DeadlineExceeded):
		log.WithError(err).Warn(action + " timed out")
		respondError(c, http.StatusGatewayTimeout, ErrCodeTimeout, "operation timed out")
	default:
		log.WithError(err).Error(action)
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
	}
}
