// internal/checks/check.go
package checks

import (
	"context"

	"merchant-triage/internal/clients/osm"
	"merchant-triage/internal/clients/scraper"
	"merchant-triage/internal/models"
)

// Check is one automated verification step. Implementations never return
// an error to the caller; failures become outcomes so the battery always
// produces a complete result set.
type Check interface {
	Name() string
	Run(ctx context.Context, record *models.MerchantRecord) models.CheckOutcome
}

// MappingSearcher finds named map features near coordinates.
type MappingSearcher interface {
	SearchNearby(ctx context.Context, lat, lon, radius float64) ([]osm.Element, error)
}

// WebsiteScanner fetches a merchant site and reports acceptance signals.
type WebsiteScanner interface {
	Scan(ctx context.Context, url string) (*scraper.ScrapeResult, error)
}

// clampScore keeps an outcome's score inside [0, max].
func clampScore(score, max int) int {
	if score < 0 {
		return 0
	}
	if score > max {
		return max
	}
	return score
}
