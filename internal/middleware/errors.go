package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/campusgraph/socialgraph/internal/httputil"
	"github.com/campusgraph/socialgraph/internal/metrics"
)

// respondError counts the error code and delegates to httputil.RespondError.
func respondError(c *gin.Context, code int, errCode, message string) {
	metrics.ErrorsTotal.WithLabelValues(errCode).Inc()
	httputil.RespondError(c, code, errCode, message)
}
