package api

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campusgraph/socialgraph/internal/models"
)

// maxPaginationLimit caps the maximum number of items per page.
const maxPaginationLimit = 1000

// maxPaginationOffset caps the maximum offset for paginated queries.
const maxPaginationOffset = 100000

func parseInt(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return fallback
	}

	if v > maxPaginationLimit {
		return maxPaginationLimit
	}

	return v
}

func parseOffset(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0
	}

	if v > maxPaginationOffset {
		return maxPaginationOffset
	}

	return v
}

// validatePathID checks that a path parameter ID is non-empty and within length limits.
func validatePathID(id string) error {
	if id == "" {
		return fmt.Errorf("id must not be empty")
	}
	if len(id) > 255 {
		return fmt.Errorf("id exceeds maximum length of 255")
	}
	return nil
}

// pathIDs reads and validates the named path parameters, responding 400 on the first bad one.
func pathIDs(c *gin.Context, names ...string) ([]string, bool) {
	out := make([]string, 0, len(names))

	for _, name := range names {
		v := c.Param(name)
		if err := validatePathID(v); err != nil {
			respondError(c, 400, ErrCodeInvalidRequest, "invalid "+name+": "+err.Error())

			return nil, false
		}

		out = append(out, v)
	}

	return out, true
}

// splitList splits a comma-separated query value, dropping empty items.
func splitList(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

func queryBool(c *gin.Context, key string) (*bool, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil //nolint:nilnil // absent flag.
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a boolean", key)
	}

	return &v, nil
}

func queryInt(c *gin.Context, key string) (int, bool, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return 0, false, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s must be an integer", key)
	}

	return v, true, nil
}

// parseTraversalOptions builds TraversalOptions from the traverse query string.
// Enumerated values are checked later by TraversalOptions.Validate.
func parseTraversalOptions(c *gin.Context) (models.TraversalOptions, error) { //nolint:gocyclo,cyclop,funlen // one branch per query parameter.
	var opts models.TraversalOptions

	depth, _, err := queryInt(c, "depth")
	if err != nil {
		return opts, err
	}

	opts.MaxDepth = depth
	opts.SortBy = models.SortBy(c.Query("sort"))
	opts.Limit = parseInt(c.DefaultQuery("limit", strconv.Itoa(models.DefaultLimit)), models.DefaultLimit)
	opts.Offset = parseOffset(c.DefaultQuery("offset", "0"))

	for _, t := range splitList(c.Query("types")) {
		opts.RelationshipTypes = append(opts.RelationshipTypes, models.RelationshipType(t))
	}

	f := &opts.Filters
	f.UniversityID = c.Query("university")
	f.DepartmentID = c.Query("department")
	f.Interests = splitList(c.Query("interests"))
	f.PrivacyLevel = models.Visibility(c.Query("privacy"))

	for _, a := range splitList(c.Query("activity")) {
		f.ActivityLevels = append(f.ActivityLevels, models.ActivityLevel(a))
	}

	if year, ok, err := queryInt(c, "year"); err != nil {
		return opts, err
	} else if ok {
		f.Year = &year
	}

	if f.MaxDistance, _, err = queryInt(c, "max_distance"); err != nil {
		return opts, err
	}

	if raw := c.Query("min_strength"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return opts, fmt.Errorf("min_strength must be a number")
		}

		f.MinStrength = &v
	}

	includeBlocked, err := queryBool(c, "include_blocked")
	if err != nil {
		return opts, err
	}

	if includeBlocked != nil {
		exclude := !*includeBlocked
		f.ExcludeBlocked = &exclude
	}

	muted, err := queryBool(c, "include_muted")
	if err != nil {
		return opts, err
	}

	f.IncludeMuted = muted != nil && *muted

	if f.IncludeMutual, err = queryBool(c, "include_mutual"); err != nil {
		return opts, err
	}

	return opts, nil
}
