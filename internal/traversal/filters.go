package traversal

import (
	"slices"
	"time"

	"github.com/campusgraph/socialgraph/internal/models"
)

// edgePasses applies the status, type, mutual and strength filters to r.
func edgePasses(r *models.Relationship, opts *models.TraversalOptions, now time.Time) bool {
	if r.ExpiresAt != nil && !r.ExpiresAt.After(now) {
		return false
	}

	f := &opts.Filters

	switch {
	case r.IsBlocking():
		if f.ExcludesBlocked() {
			return false
		}

		if r.Status != models.StatusActive && r.Status != models.StatusBlocked {
			return false
		}
	case r.Status == models.StatusMuted:
		if !f.IncludeMuted {
			return false
		}
	case r.Status != models.StatusActive:
		return false
	}

	if len(opts.RelationshipTypes) > 0 && !slices.Contains(opts.RelationshipTypes, r.Type) {
		return false
	}

	if r.Type == models.TypeMutualConnection && !f.IncludesMutual() {
		return false
	}

	return r.Strength >= f.MinStrengthValue()
}

// attributesMatch applies the university, department, year and interest
// filters. Each filter is satisfied by the edge context or the neighbor profile.
func attributesMatch(r *models.Relationship, n *models.GraphNode, f *models.TraversalFilters) bool {
	ctx := &r.Metadata.Context
	props := &n.Properties

	if f.UniversityID != "" && ctx.UniversityID != f.UniversityID && props.UniversityID != f.UniversityID {
		return false
	}

	if f.DepartmentID != "" && ctx.DepartmentID != f.DepartmentID && props.DepartmentID != f.DepartmentID {
		return false
	}

	if f.Year != nil && !intEqual(ctx.Year, *f.Year) && !intEqual(props.Year, *f.Year) {
		return false
	}

	if len(f.Interests) > 0 && !sharesAny(ctx.SharedInterests, f.Interests) && !n.HasInterest(f.Interests) {
		return false
	}

	return true
}

// nodeIncluded applies the result-only filters. A node failing them is still expanded.
func nodeIncluded(tn *traversedNode, f *models.TraversalFilters) bool {
	if f.MaxDistance > 0 && tn.distance > f.MaxDistance {
		return false
	}

	if len(f.ActivityLevels) > 0 && !slices.Contains(f.ActivityLevels, tn.node.Metrics.ActivityLevel) {
		return false
	}

	if f.PrivacyLevel != "" && tn.node.Properties.Privacy.ProfileVisibility.Rank() > f.PrivacyLevel.Rank() {
		return false
	}

	return true
}

func intEqual(p *int, v int) bool {
	return p != nil && *p == v
}

func sharesAny(have, want []string) bool {
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}

	return false
}
