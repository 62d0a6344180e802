// internal/checks/crossref.go
package checks

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"merchant-triage/internal/models"
)

const crossRefBaselineScore = 5

// CrossReferenceCheck generates lookup links into other directory
// services for a human reviewer. Without an external directory API the
// check caps at partial credit.
type CrossReferenceCheck struct {
	maxScore int
}

func NewCrossReferenceCheck(maxScore int) *CrossReferenceCheck {
	return &CrossReferenceCheck{maxScore: maxScore}
}

func (c *CrossReferenceCheck) Name() string { return models.CheckNameCrossReference }

func (c *CrossReferenceCheck) Run(ctx context.Context, record *models.MerchantRecord) models.CheckOutcome {
	outcome := models.CheckOutcome{
		Check:    c.Name(),
		Status:   models.CheckFail,
		Score:    0,
		MaxScore: c.maxScore,
		Details:  map[string]string{},
	}

	if strings.TrimSpace(record.Name) == "" {
		outcome.Details["error"] = "No merchant name provided"
		return outcome
	}

	query := url.QueryEscape(record.Name)
	outcome.Details["google_maps_search"] = fmt.Sprintf("https://www.google.com/maps/search/%s", query)
	outcome.Details["yelp_search"] = fmt.Sprintf("https://www.yelp.com/search?find_desc=%s", query)
	if record.Address != "" {
		outcome.Details["address_hint"] = record.Address
	}

	outcome.Status = models.CheckUnclear
	outcome.Score = clampScore(crossRefBaselineScore, c.maxScore)
	outcome.Details["note"] = "Cross-reference requires manual verification"

	return outcome
}
