// internal/checks/website.go
package checks

import (
	"context"
	"strings"

	"merchant-triage/internal/clients/scraper"
	"merchant-triage/internal/common/logger"
	"merchant-triage/internal/models"
)

// Partial credit for merely having a website on the record. Content
// scanning can only raise the score above this floor.
const websiteBaselineScore = 5

// WebsiteCheck fetches the merchant site and scores the Bitcoin
// acceptance signals found on it.
type WebsiteCheck struct {
	maxScore int
	scanner  WebsiteScanner
	logger   logger.Logger
}

func NewWebsiteCheck(maxScore int, scanner WebsiteScanner, log logger.Logger) *WebsiteCheck {
	return &WebsiteCheck{maxScore: maxScore, scanner: scanner, logger: log}
}

func (c *WebsiteCheck) Name() string { return models.CheckNameWebsite }

func (c *WebsiteCheck) Run(ctx context.Context, record *models.MerchantRecord) models.CheckOutcome {
	outcome := models.CheckOutcome{
		Check:    c.Name(),
		Status:   models.CheckFail,
		Score:    0,
		MaxScore: c.maxScore,
		Details:  map[string]string{},
	}

	if record.Website == "" {
		outcome.Details["note"] = "No website provided"
		return outcome
	}

	normalized := scraper.NormalizeURL(record.Website)
	outcome.Details["website"] = normalized
	outcome.Status = models.CheckUnclear
	outcome.Score = clampScore(websiteBaselineScore, c.maxScore)

	result, err := c.scanner.Scan(ctx, normalized)
	if err != nil {
		c.logger.Warn("Website scan failed, keeping baseline", map[string]interface{}{
			"merchant": record.Name,
			"url":      normalized,
			"error":    err.Error(),
		})
		outcome.Status = models.CheckError
		outcome.Details["error"] = err.Error()
		outcome.Details["note"] = "Website unreachable, manual verification needed"
		return outcome
	}

	switch n := result.IndicatorCount(); {
	case n >= 2:
		outcome.Status = models.CheckPass
		outcome.Score = c.maxScore
	case n == 1:
		outcome.Status = models.CheckPass
		outcome.Score = clampScore(c.maxScore*3/5, c.maxScore)
	default:
		outcome.Details["note"] = "No acceptance indicators found, manual verification needed"
	}

	if len(result.Indicators) > 0 {
		outcome.Details["indicators"] = strings.Join(result.Indicators, ", ")
	}

	return outcome
}
