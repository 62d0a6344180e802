// internal/checks/battery.go
package checks

import (
	"context"
	"time"

	"merchant-triage/internal/common/config"
	"merchant-triage/internal/common/logger"
	"merchant-triage/internal/common/observability"
	"merchant-triage/internal/models"
)

// Battery runs the full automated check set against one record and
// aggregates the Phase 1 score. Checks run sequentially with a polite
// delay between the network-bound ones.
type Battery struct {
	checks      []Check
	scrapeDelay time.Duration
	obs         *observability.Observability
	logger      logger.Logger
}

// NewBattery wires the standard five checks from configuration.
func NewBattery(cfg *config.Config, searcher MappingSearcher, scanner WebsiteScanner, obs *observability.Observability, log logger.Logger) *Battery {
	w := cfg.Verification.Weights
	return &Battery{
		checks: []Check{
			NewLocationCheck(w.OSM, cfg.OSM.SearchRadiusM, searcher, log),
			NewWebsiteCheck(w.Website, scanner, log),
			NewSocialCheck(w.Social, log),
			NewCrossReferenceCheck(w.CrossReference),
			NewDataConsistencyCheck(w.DataConsistency),
		},
		scrapeDelay: config.GetDuration(cfg.RateLimiting.WebScrapeDelayMs),
		obs:         obs,
		logger:      log,
	}
}

// NewBatteryWithChecks builds a battery over an explicit check list.
func NewBatteryWithChecks(checks []Check, scrapeDelay time.Duration, obs *observability.Observability, log logger.Logger) *Battery {
	return &Battery{checks: checks, scrapeDelay: scrapeDelay, obs: obs, logger: log}
}

// Run executes every check and sums the clamped scores, capping the
// aggregate at 100. A cancelled context stops between checks; completed
// outcomes are kept.
func (b *Battery) Run(ctx context.Context, submissionID int64, record *models.MerchantRecord) (*models.Phase1Result, error) {
	result := &models.Phase1Result{
		SubmissionID: submissionID,
		MerchantName: record.Name,
		Checks:       make(map[string]models.CheckOutcome, len(b.checks)),
		Record:       record,
	}

	for i, check := range b.checks {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		started := time.Now()
		outcome := check.Run(ctx, record)
		duration := time.Since(started)
		outcome.Score = clampScore(outcome.Score, outcome.MaxScore)
		result.Checks[check.Name()] = outcome
		result.Score = clampScore(result.Score+outcome.Score, 100)

		if b.obs != nil {
			b.obs.RecordCheckDuration(ctx, check.Name(), duration)
		}

		b.logger.Info("Check completed", map[string]interface{}{
			"submissionID": submissionID,
			"check":        check.Name(),
			"status":       outcome.Status,
			"score":        outcome.Score,
			"maxScore":     outcome.MaxScore,
			"durationMs":   duration.Milliseconds(),
		})

		if b.scrapeDelay > 0 && i < len(b.checks)-1 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(b.scrapeDelay):
			}
		}
	}

	return result, nil
}
