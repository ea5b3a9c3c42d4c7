// Package api provides HTTP handlers for the social graph service.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/campusgraph/socialgraph/internal/db"
)

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	db        HealthChecker
	graph     GraphCounter
	log       *logrus.Logger
	version   string
	startTime time.Time
}

// NewHealthHandler creates a HealthHandler. Either checker may be nil.
func NewHealthHandler(dbCheck HealthChecker, graph GraphCounter, log *logrus.Logger, version string) *HealthHandler {
	return &HealthHandler{
		db:        dbCheck,
		graph:     graph,
		log:       log,
		version:   version,
		startTime: time.Now(),
	}
}

// readinessResponse is the JSON payload returned by the readiness endpoint.
type readinessResponse struct {
	Status        string            `json:"status"`
	Checks        map[string]string `json:"checks"`
	Nodes         int64             `json:"nodes"`
	Relationships int64             `json:"relationships"`
}

// healthResponse is the JSON payload returned by the health/liveness endpoint.
type healthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	SchemaVersion int     `json:"schema_version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Liveness handles GET /api/v1/health; it always answers 200 while the process runs.
func (h *HealthHandler) Liveness(c *gin.Context) {
	resp := healthResponse{
		Status:        "ok",
		Version:       h.version,
		Database:      "connected",
		SchemaVersion: db.SchemaVersion(),
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.HealthCheck(ctx); err != nil {
			resp.Database = "disconnected"
		}
	} else {
		resp.Database = "not_configured"
	}

	c.JSON(http.StatusOK, resp)
}

// Readiness handles GET /api/v1/ready and checks the database and schema.
func (h *HealthHandler) Readiness(c *gin.Context) {
	resp := readinessResponse{
		Status: "ready",
		Checks: map[string]string{"database": "ok", "schema": "ok"},
	}
	statusCode := http.StatusOK

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	fail := func(check string, err error) {
		h.log.WithError(err).Error("readiness: " + check + " check failed")
		resp.Checks[check] = "error"
		resp.Status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	if h.db == nil {
		resp.Checks["database"] = "not_configured"
	} else if err := h.db.HealthCheck(ctx); err != nil {
		fail("database", err)
	}

	switch {
	case resp.Checks["database"] != "ok":
		resp.Checks["schema"] = "unknown"
	case h.graph != nil:
		nodes, rels, err := h.graph.Counts(ctx)
		if err != nil {
			fail("schema", err)
		}

		resp.Nodes, resp.Relationships = nodes, rels
	}

	c.JSON(statusCode, resp)
}
