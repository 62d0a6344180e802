// internal/checks/consistency.go
package checks

import (
	"context"

	"merchant-triage/internal/clients/osm"
	"merchant-triage/internal/common/validation"
	"merchant-triage/internal/models"
)

// Per-field contributions to the consistency score.
const (
	consistencyAddressPoints  = 3
	consistencyCoordsPoints   = 4
	consistencyPhonePoints    = 2
	consistencyCategoryPoints = 1

	// Raw score at or above this passes, below is partial.
	consistencyPassFloor = 5
)

// DataConsistencyCheck scores completeness and format validity of the
// record itself. It needs no collaborators and cannot error.
type DataConsistencyCheck struct {
	maxScore int
}

func NewDataConsistencyCheck(maxScore int) *DataConsistencyCheck {
	return &DataConsistencyCheck{maxScore: maxScore}
}

func (c *DataConsistencyCheck) Name() string { return models.CheckNameDataConsistency }

func (c *DataConsistencyCheck) Run(ctx context.Context, record *models.MerchantRecord) models.CheckOutcome {
	outcome := models.CheckOutcome{
		Check:    c.Name(),
		MaxScore: c.maxScore,
		Details:  map[string]string{},
	}

	raw := 0

	if record.Address != "" {
		raw += consistencyAddressPoints
		outcome.Details["address"] = "provided"
	} else {
		outcome.Details["address"] = "missing"
	}

	if record.HasCoordinates() {
		if osm.ValidateCoordinates(*record.Latitude, *record.Longitude) {
			raw += consistencyCoordsPoints
			outcome.Details["coordinates"] = "valid"
		} else {
			outcome.Details["coordinates"] = "invalid range"
		}
	} else {
		outcome.Details["coordinates"] = "missing"
	}

	if record.Phone != "" {
		raw += consistencyPhonePoints
		if validation.ValidatePhone(record.Phone) {
			outcome.Details["phone"] = "provided"
		} else {
			outcome.Details["phone"] = "provided, unusual format"
		}
	} else {
		outcome.Details["phone"] = "missing"
	}

	if record.Category != "" {
		raw += consistencyCategoryPoints
		outcome.Details["category"] = "provided"
	} else {
		outcome.Details["category"] = "missing"
	}

	if record.OpeningHours != "" && !osm.ValidateOpeningHours(record.OpeningHours) {
		outcome.Details["opening_hours"] = "invalid format"
	}

	outcome.Score = clampScore(raw, c.maxScore)
	if raw >= consistencyPassFloor {
		outcome.Status = models.CheckPass
	} else {
		outcome.Status = models.CheckPartial
	}

	return outcome
}
