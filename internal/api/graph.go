package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/campusgraph/socialgraph/internal/snapshot"
)

// GraphHandler serves traversal and analytics endpoints.
type GraphHandler struct {
	svc GraphService
	log *logrus.Logger
}

// NewGraphHandler creates a GraphHandler with the given service and logger.
func NewGraphHandler(svc GraphService, log *logrus.Logger) *GraphHandler {
	return &GraphHandler{svc: svc, log: log}
}

// Traverse handles GET /api/v1/graph/traverse/:id.
func (h *GraphHandler) Traverse(c *gin.Context) {
	ids, ok := pathIDs(c, "id")
	if !ok {
		return
	}

	opts, err := parseTraversalOptions(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	result, err := h.svc.Traverse(c.Request.Context(), ids[0], opts)
	if err != nil {
		respondServiceError(c, h.log, err, "traversing graph")

		return
	}

	c.JSON(http.StatusOK, result)
}

// Mutual handles GET /api/v1/graph/mutual/:a/:b.
func (h *GraphHandler) Mutual(c *gin.Context) {
	ids, ok := pathIDs(c, "a", "b")
	if !ok {
		return
	}

	result, err := h.svc.MutualConnections(c.Request.Context(), ids[0], ids[1])
	if err != nil {
		respondServiceError(c, h.log, err, "finding mutual connections")

		return
	}

	c.JSON(http.StatusOK, result)
}

// Suggestions handles GET /api/v1/graph/suggestions/:id.
func (h *GraphHandler) Suggestions(c *gin.Context) {
	ids, ok := pathIDs(c, "id")
	if !ok {
		return
	}

	limit := parseInt(c.DefaultQuery("limit", "10"), 10)

	result, err := h.svc.SuggestConnections(c.Request.Context(), ids[0], limit)
	if err != nil {
		respondServiceError(c, h.log, err, "suggesting connections")

		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": result, "count": len(result)})
}

// Metrics handles GET /api/v1/graph/metrics/:id.
func (h *GraphHandler) Metrics(c *gin.Context) {
	ids, ok := pathIDs(c, "id")
	if !ok {
		return
	}

	result, err := h.svc.NetworkMetrics(c.Request.Context(), ids[0], parseInt(c.Query("hops"), 0))
	if err != nil {
		respondServiceError(c, h.log, err, "computing network metrics")

		return
	}

	c.JSON(http.StatusOK, result)
}

// Communities handles GET /api/v1/graph/communities/:id.
func (h *GraphHandler) Communities(c *gin.Context) {
	ids, ok := pathIDs(c, "id")
	if !ok {
		return
	}

	result, err := h.svc.Communities(c.Request.Context(), ids[0], parseInt(c.Query("hops"), 0))
	if err != nil {
		respondServiceError(c, h.log, err, "detecting communities")

		return
	}

	c.JSON(http.StatusOK, gin.H{"communities": result, "count": len(result)})
}

// Influential handles GET /api/v1/graph/influential/:id.
func (h *GraphHandler) Influential(c *gin.Context) {
	ids, ok := pathIDs(c, "id")
	if !ok {
		return
	}

	hops := parseInt(c.Query("hops"), 0)
	limit := parseInt(c.DefaultQuery("limit", "10"), 10)

	result, err := h.svc.InfluentialNodes(c.Request.Context(), ids[0], hops, limit)
	if err != nil {
		respondServiceError(c, h.log, err, "ranking influential nodes")

		return
	}

	c.JSON(http.StatusOK, gin.H{"nodes": result, "count": len(result)})
}

// Path handles GET /api/v1/graph/path/:from/:to.
func (h *GraphHandler) Path(c *gin.Context) {
	ids, ok := pathIDs(c, "from", "to")
	if !ok {
		return
	}

	result, err := h.svc.ShortestPath(c.Request.Context(), ids[0], ids[1], parseInt(c.Query("depth"), 0))
	if err != nil {
		respondServiceError(c, h.log, err, "finding shortest path")

		return
	}

	c.JSON(http.StatusOK, result)
}

// Export handles GET /api/v1/graph/export/:id?format=json|yaml.
func (h *GraphHandler) Export(c *gin.Context) {
	ids, ok := pathIDs(c, "id")
	if !ok {
		return
	}

	format := c.DefaultQuery("format", "json")
	if format != "json" && format != "yaml" {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "format must be json or yaml")

		return
	}

	ex, err := h.svc.Export(c.Request.Context(), ids[0], parseInt(c.Query("hops"), 0))
	if err != nil {
		respondServiceError(c, h.log, err, "exporting neighborhood")

		return
	}

	contentType := "application/json"
	if format == "yaml" {
		contentType = "application/yaml"
	}

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", `attachment; filename="neighborhood.`+format+`"`)
	c.Status(http.StatusOK)

	if err := snapshot.Write(c.Writer, ex, format); err != nil {
		h.log.WithError(err).Error("writing export")
	}
}
