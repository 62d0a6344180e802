// internal/checks/location.go
package checks

import (
	"context"
	"fmt"
	"strings"

	"merchant-triage/internal/clients/osm"
	"merchant-triage/internal/common/logger"
	"merchant-triage/internal/models"
)

// Partial credit for submissions that at least carry a usable position.
const locationBaselineScore = 10

// LocationCheck verifies the submitted coordinates against the mapping
// service. A matching named feature nearby is strong evidence; absence of
// a match is left unclear, never penalized below the baseline.
type LocationCheck struct {
	maxScore int
	radius   float64
	searcher MappingSearcher
	logger   logger.Logger
}

func NewLocationCheck(maxScore int, radius float64, searcher MappingSearcher, log logger.Logger) *LocationCheck {
	return &LocationCheck{maxScore: maxScore, radius: radius, searcher: searcher, logger: log}
}

func (c *LocationCheck) Name() string { return models.CheckNameOSM }

func (c *LocationCheck) Run(ctx context.Context, record *models.MerchantRecord) models.CheckOutcome {
	outcome := models.CheckOutcome{
		Check:    c.Name(),
		Status:   models.CheckFail,
		Score:    0,
		MaxScore: c.maxScore,
		Details:  map[string]string{},
	}

	if !record.HasCoordinates() {
		outcome.Details["error"] = "No coordinates provided"
		return outcome
	}

	lat, lon := *record.Latitude, *record.Longitude
	outcome.Details["coordinates"] = fmt.Sprintf("%f,%f", lat, lon)

	if !osm.ValidateCoordinates(lat, lon) {
		outcome.Details["error"] = "Coordinates outside valid range"
		return outcome
	}

	// From here on the submission has earned the baseline.
	outcome.Status = models.CheckUnclear
	outcome.Score = clampScore(locationBaselineScore, c.maxScore)

	elements, err := c.searcher.SearchNearby(ctx, lat, lon, c.radius)
	if err != nil {
		c.logger.Warn("Mapping lookup failed, keeping baseline", map[string]interface{}{
			"merchant": record.Name,
			"error":    err.Error(),
		})
		outcome.Details["note"] = "Mapping service unavailable, existence requires manual verification"
		return outcome
	}

	outcome.Details["nearby_features"] = fmt.Sprintf("%d", len(elements))

	if match := findNameMatch(record.Name, elements); match != nil {
		outcome.Status = models.CheckPass
		outcome.Score = c.maxScore
		outcome.Details["matched_feature"] = fmt.Sprintf("%s/%d", match.Type, match.ID)
		outcome.Details["matched_name"] = match.Name()
		return outcome
	}

	outcome.Details["note"] = "No matching named feature nearby, requires manual verification"
	return outcome
}

// findNameMatch looks for a nearby feature whose name contains the
// merchant name or vice versa, case-insensitively.
func findNameMatch(merchantName string, elements []osm.Element) *osm.Element {
	want := strings.ToLower(strings.TrimSpace(merchantName))
	if want == "" {
		return nil
	}
	for i := range elements {
		have := strings.ToLower(elements[i].Name())
		if have == "" {
			continue
		}
		if strings.Contains(have, want) || strings.Contains(want, have) {
			return &elements[i]
		}
	}
	return nil
}
