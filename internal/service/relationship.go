package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/campusgraph/socialgraph/internal/metrics"
	"github.com/campusgraph/socialgraph/internal/models"
)

// RelationshipStore is the data-access interface RelationshipService depends on.
type RelationshipStore interface {
	CreateRelationship(ctx context.Context, r *models.Relationship) (*models.Relationship, error)
	GetRelationship(ctx context.Context, id string) (*models.Relationship, error)
	RelationshipsBetween(ctx context.Context, a, b string) ([]models.Relationship, error)
	UpdateStrength(ctx context.Context, id string, strength float64, mutual int) (*models.Relationship, error)
	UpdateStatus(ctx context.Context, id string, status models.RelationshipStatus) (*models.Relationship, error)
}

// Invalidator drops cached graph data for the given node ids.
type Invalidator interface {
	Invalidate(ctx context.Context, ids ...string) error
}

// EventPublisher fans relationship changes out to watchers of the given nodes.
type EventPublisher interface {
	Publish(eventType string, nodeIDs []string, payload any)
}

// Relationship event types; they match the stream's wire names.
const (
	eventCreated  = "relationship.created"
	eventStatus   = "relationship.status_changed"
	eventStrength = "relationship.strength_updated"
)

// RelationshipService owns relationship creation policy and strength upkeep.
type RelationshipService struct {
	store     RelationshipStore
	cache     Invalidator
	events    EventPublisher
	decayRate float64
	now       func() time.Time
	log       *logrus.Logger
}

// NewRelationshipService creates a RelationshipService. cache may be nil.
func NewRelationshipService(store RelationshipStore, cache Invalidator, decayRate float64, log *logrus.Logger) *RelationshipService {
	return &RelationshipService{
		store:     store,
		cache:     cache,
		decayRate: decayRate,
		now:       time.Now,
		log:       log,
	}
}

// WithPublisher sets the publisher notified after each successful change.
func (s *RelationshipService) WithPublisher(p EventPublisher) *RelationshipService {
	s.events = p
	return s
}

func (s *RelationshipService) publish(eventType string, r *models.Relationship) {
	if s.events == nil {
		return
	}

	s.events.Publish(eventType, []string{r.SourceID, r.TargetID}, r)
}

// invalidate drops cached data for both endpoints (best-effort; TTL bounds staleness).
func (s *RelationshipService) invalidate(ctx context.Context, r *models.Relationship) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Invalidate(ctx, r.SourceID, r.TargetID); err != nil {
		s.log.WithError(err).WithField("relationship_id", r.ID).Warn("cache invalidation failed")
	}
}

// CreateRelationship checks policy, derives the initial strength and persists the relationship.
func (s *RelationshipService) CreateRelationship(
	ctx context.Context,
	req models.CreateRelationshipRequest,
) (*models.Relationship, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()

	existing, err := s.store.RelationshipsBetween(ctx, req.SourceID, req.TargetID)
	if err != nil {
		return nil, fmt.Errorf("loading existing relationships: %w", err)
	}

	decision := models.CanEstablish(req.SourceID, req.TargetID, req.Type, existing, now)
	if !decision.Allowed {
		metrics.RelationshipsRejected.WithLabelValues(decision.Reason).Inc()

		s.log.WithFields(logrus.Fields{
			"source_id": req.SourceID,
			"target_id": req.TargetID,
			"type":      req.Type,
			"reason":    decision.Reason,
		}).Info("relationship refused")

		return nil, fmt.Errorf("%w: %s", models.ErrNotAllowed, decision.Reason)
	}

	md := req.Metadata
	if md.Source == "" {
		md.Source = models.SourceManual
	}

	r := &models.Relationship{
		ID:        uuid.New().String(),
		SourceID:  req.SourceID,
		TargetID:  req.TargetID,
		Type:      req.Type,
		Status:    models.StatusActive,
		Strength:  models.InitialStrength(req.Type, md),
		Metadata:  md,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: req.ExpiresAt,
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}

	created, err := s.store.CreateRelationship(ctx, r)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, created)
	s.publish(eventCreated, created)
	metrics.RelationshipsCreated.WithLabelValues(string(created.Type)).Inc()

	s.log.WithFields(logrus.Fields{
		"relationship_id": created.ID,
		"type":            created.Type,
		"strength":        created.Strength,
	}).Debug("relationship.create")

	return created, nil
}

// RecalculateStrength applies fresh interaction signals and time decay to a relationship.
func (s *RelationshipService) RecalculateStrength(
	ctx context.Context,
	id string,
	req models.RecalculateStrengthRequest,
) (*models.Relationship, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r, err := s.store.GetRelationship(ctx, id)
	if err != nil {
		return nil, err
	}

	strength := models.RecalculateStrength(*r, req.InteractionCount, req.MutualCount, s.decayRate, s.now())

	updated, err := s.store.UpdateStrength(ctx, id, strength, req.MutualCount)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, updated)
	s.publish(eventStrength, updated)

	s.log.WithFields(logrus.Fields{
		"relationship_id": id,
		"from":            r.Strength,
		"to":              updated.Strength,
	}).Debug("relationship.recalculate")

	return updated, nil
}

// UpdateStatus moves a relationship to a new status when the transition is permitted.
func (s *RelationshipService) UpdateStatus(
	ctx context.Context,
	id string,
	req models.UpdateStatusRequest,
) (*models.Relationship, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r, err := s.store.GetRelationship(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.Status == req.Status {
		return r, nil
	}

	if !r.Status.CanTransitionTo(req.Status) {
		return nil, fmt.Errorf("%w: cannot move relationship from %s to %s", models.ErrNotAllowed, r.Status, req.Status)
	}

	updated, err := s.store.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, updated)
	s.publish(eventStatus, updated)

	s.log.WithFields(logrus.Fields{
		"relationship_id": id,
		"from":            r.Status,
		"to":              updated.Status,
	}).Debug("relationship.status")

	return updated, nil
}
