package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AccessLog logs one line per request. Server errors log at warn level.
func AccessLog(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"route":    c.FullPath(),
			"status":   status,
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		}

		if rid, exists := c.Get(RequestIDKey); exists {
			fields["request_id"] = rid
		}

		entry := log.WithFields(fields)
		if status >= http.StatusInternalServerError {
			entry.Warn("request")

			return
		}

		entry.Info("request")
	}
}

// Recovery turns a handler panic into a JSON 500 response and logs the panic value.
func Recovery(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.WithFields(logrus.Fields{
					"panic":      rec,
					"path":       c.Request.URL.Path,
					"request_id": c.GetString(RequestIDKey),
				}).Error("handler panicked")

				respondError(c, http.StatusInternalServerError, "internal_error", "internal server error")
			}
		}()

		c.Next()
	}
}
