package models

import (
	"fmt"
	"math"
)

// Validate performs structural checks on a relationship and returns a
// *ValidationError listing every problem found.
func (r *Relationship) Validate() error {
	var errs []string

	if r.ID == "" {
		errs = append(errs, ErrMissingID.Error())
	}

	if r.SourceID == "" {
		errs = append(errs, ErrMissingSource.Error())
	}

	if r.TargetID == "" {
		errs = append(errs, ErrMissingTarget.Error())
	}

	if r.SourceID != "" && r.SourceID == r.TargetID {
		errs = append(errs, ErrSelfRelationship.Error())
	}

	if !r.Type.Valid() {
		errs = append(errs, ErrInvalidEnum("relationship_type", string(r.Type)).Error())
	}

	if !r.Status.Valid() {
		errs = append(errs, ErrInvalidEnum("status", string(r.Status)).Error())
	}

	if math.IsNaN(r.Strength) || r.Strength < MinStrength || r.Strength > MaxStrength {
		errs = append(errs, ErrOutOfRange("strength", MinStrength, MaxStrength).Error())
	}

	if !r.Metadata.Source.Valid() {
		errs = append(errs, ErrInvalidEnum("metadata.source", string(r.Metadata.Source)).Error())
	}

	if c := r.Metadata.Confidence; c != nil && (*c < 0 || *c > 100) {
		errs = append(errs, ErrOutOfRange("metadata.confidence", 0, 100).Error())
	}

	if r.Metadata.Context.MutualConnections < 0 {
		errs = append(errs, ErrNegative("metadata.context.mutual_connections").Error())
	}

	if r.ExpiresAt != nil && !r.CreatedAt.IsZero() && r.ExpiresAt.Before(r.CreatedAt) {
		errs = append(errs, "expires_at must not precede created_at")
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	return nil
}

// Validate performs structural checks on a node and returns a
// *ValidationError listing every problem found.
func (n *GraphNode) Validate() error {
	var errs []string

	if n.ID == "" {
		errs = append(errs, ErrMissingID.Error())
	}

	if !n.Type.Valid() {
		errs = append(errs, ErrInvalidEnum("node_type", string(n.Type)).Error())
	}

	if n.Type == NodeUser && n.OwnerUserID == "" {
		errs = append(errs, "owner_user_id is required for user nodes")
	}

	if len(n.Properties.DisplayName) > 255 {
		errs = append(errs, ErrFieldTooLong("properties.display_name", 255).Error())
	}

	if !n.Properties.Privacy.ProfileVisibility.Valid() {
		errs = append(errs, ErrInvalidEnum("properties.privacy.profile_visibility",
			string(n.Properties.Privacy.ProfileVisibility)).Error())
	}

	if !n.Properties.Privacy.ConnectionVisibility.Valid() {
		errs = append(errs, ErrInvalidEnum("properties.privacy.connection_visibility",
			string(n.Properties.Privacy.ConnectionVisibility)).Error())
	}

	if !n.Metrics.ActivityLevel.Valid() {
		errs = append(errs, ErrInvalidEnum("metrics.activity_level", string(n.Metrics.ActivityLevel)).Error())
	}

	if s := n.Metrics.InfluenceScore; s < 0 || s > 100 {
		errs = append(errs, ErrOutOfRange("metrics.influence_score", 0, 100).Error())
	}

	for i, h := range n.Metrics.ActiveHours {
		if h < 0 {
			errs = append(errs, ErrNegative(fmt.Sprintf("metrics.active_hours[%d]", i)).Error())
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}

	return nil
}
