package models

import (
	"math"
	"time"
)

// DefaultDecayRate is the strength lost per day without renewed interaction.
const DefaultDecayRate = 0.1

// Strength bounds.
const (
	MinStrength = 0.0
	MaxStrength = 100.0
)

// baseStrength is the starting strength of a freshly created relationship per type.
var baseStrength = map[RelationshipType]float64{
	TypeFollow:                50,
	TypeBlock:                 0,
	TypeUniversityConnection:  70,
	TypeMutualConnection:      80,
	TypeRecommendedConnection: 60,
	TypeAlumniConnection:      75,
	TypeDepartmentConnection:  65,
	TypeYearConnection:        60,
	TypeInterestConnection:    55,
	TypeEventConnection:       50,
}

// BaseStrength returns the base strength for t, or 0 for unknown types.
func BaseStrength(t RelationshipType) float64 {
	return baseStrength[t]
}

// InitialStrength derives the starting strength of a relationship from its type and metadata.
func InitialStrength(t RelationshipType, md RelationshipMetadata) float64 {
	strength := BaseStrength(t)

	if md.Confidence != nil {
		strength *= *md.Confidence / 100
	}

	strength += math.Min(float64(md.Context.MutualConnections)*2, 20)

	if md.Context.InteractionScore != nil {
		strength += math.Min(*md.Context.InteractionScore, 10)
	}

	return ClampStrength(strength)
}

// RecalculateStrength applies interaction and mutual-connection boosts and time
// decay since the last update. A zero decayPerDay disables decay; a negative
// one falls back to DefaultDecayRate.
func RecalculateStrength(r Relationship, interactionCount, mutualCount int, decayPerDay float64, now time.Time) float64 {
	if decayPerDay < 0 {
		decayPerDay = DefaultDecayRate
	}

	strength := r.Strength
	strength += math.Min(float64(interactionCount)*0.5, 20)
	strength += math.Min(float64(mutualCount), 15)

	days := now.Sub(r.UpdatedAt).Hours() / 24
	if days > 0 {
		strength -= days * decayPerDay
	}

	return ClampStrength(strength)
}

// ClampStrength bounds s to [MinStrength, MaxStrength]. NaN clamps to MinStrength.
func ClampStrength(s float64) float64 {
	if math.IsNaN(s) || s < MinStrength {
		return MinStrength
	}

	if s > MaxStrength {
		return MaxStrength
	}

	return s
}

// EstablishDecision is the outcome of a CanEstablish policy check.
type EstablishDecision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Reasons returned by CanEstablish.
const (
	ReasonSelf      = "cannot create a relationship with yourself"
	ReasonBlocked   = "a block exists between these users"
	ReasonDuplicate = "an active relationship of this type already exists"
)

// CanEstablish decides whether source may create a relationship of type t to
// target given the edges that already exist between them.
func CanEstablish(source, target string, t RelationshipType, existing []Relationship, now time.Time) EstablishDecision {
	if source == target {
		return EstablishDecision{Reason: ReasonSelf}
	}

	for i := range existing {
		r := &existing[i]

		between := (r.SourceID == source && r.TargetID == target) ||
			(r.SourceID == target && r.TargetID == source)
		if !between {
			continue
		}

		if r.IsBlocking() {
			return EstablishDecision{Reason: ReasonBlocked}
		}

		if r.SourceID == source && r.Type == t && r.IsActive(now) {
			return EstablishDecision{Reason: ReasonDuplicate}
		}
	}

	return EstablishDecision{Allowed: true}
}
