package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/campusgraph/socialgraph/internal/models"
)

// RelationshipHandler serves relationship mutation endpoints.
type RelationshipHandler struct {
	svc RelationshipService
	log *logrus.Logger
}

// NewRelationshipHandler creates a RelationshipHandler with the given service and logger.
func NewRelationshipHandler(svc RelationshipService, log *logrus.Logger) *RelationshipHandler {
	return &RelationshipHandler{svc: svc, log: log}
}

// Create handles POST /api/v1/relationships.
func (h *RelationshipHandler) Create(c *gin.Context) {
	var req models.CreateRelationshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeValidationError, err.Error())

		return
	}

	rel, err := h.svc.CreateRelationship(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, h.log, err, "creating relationship")

		return
	}

	h.log.WithFields(logrus.Fields{
		"action":          "relationship.create",
		"relationship_id": rel.ID,
		"source_id":       rel.SourceID,
		"target_id":       rel.TargetID,
		"type":            rel.Type,
	}).Info("audit")

	c.JSON(http.StatusCreated, rel)
}

// Recalculate handles POST /api/v1/relationships/:id/recalculate.
func (h *RelationshipHandler) Recalculate(c *gin.Context) {
	ids, ok := pathIDs(c, "id")
	if !ok {
		return
	}

	var req models.RecalculateStrengthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	rel, err := h.svc.RecalculateStrength(c.Request.Context(), ids[0], req)
	if err != nil {
		respondServiceError(c, h.log, err, "recalculating strength")

		return
	}

	c.JSON(http.StatusOK, rel)
}

// UpdateStatus handles PATCH /api/v1/relationships/:id/status.
func (h *RelationshipHandler) UpdateStatus(c *gin.Context) {
	ids, ok := pathIDs(c, "id")
	if !ok {
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return
	}

	rel, err := h.svc.UpdateStatus(c.Request.Context(), ids[0], req)
	if err != nil {
		respondServiceError(c, h.log, err, "updating relationship status")

		return
	}

	h.log.WithFields(logrus.Fields{
		"action":          "relationship.status",
		"relationship_id": rel.ID,
		"status":          rel.Status,
	}).Info("audit")

	c.JSON(http.StatusOK, rel)
}
