// internal/checks/social.go
package checks

import (
	"context"
	"strings"

	"merchant-triage/internal/clients/social"
	"merchant-triage/internal/common/logger"
	"merchant-triage/internal/models"
)

const socialBaselineScore = 5

// SocialCheck looks for the merchant's social media presence. It always
// runs; handle discovery raises the score, a missing presence never drops
// it below the baseline.
type SocialCheck struct {
	maxScore int
	logger   logger.Logger
}

func NewSocialCheck(maxScore int, log logger.Logger) *SocialCheck {
	return &SocialCheck{maxScore: maxScore, logger: log}
}

func (c *SocialCheck) Name() string { return models.CheckNameSocial }

func (c *SocialCheck) Run(ctx context.Context, record *models.MerchantRecord) models.CheckOutcome {
	outcome := models.CheckOutcome{
		Check:    c.Name(),
		Status:   models.CheckUnclear,
		Score:    clampScore(socialBaselineScore, c.maxScore),
		MaxScore: c.maxScore,
		Details: map[string]string{
			"suggested_search": social.SuggestedSearchURL("twitter", record.Name),
		},
	}

	handles := social.KnownHandles(record)
	for _, h := range social.DiscoverHandles(record.RawBody) {
		if !containsHandle(handles, h) {
			handles = append(handles, h)
		}
	}

	if len(handles) > 0 {
		outcome.Handles = handles
		outcome.Status = models.CheckPartial
		outcome.Score = clampScore(socialBaselineScore+5, c.maxScore)
		outcome.Details["handles"] = strings.Join(handles, ", ")
	} else {
		outcome.Details["note"] = "No social handles found, manual search suggested"
	}

	return outcome
}

func containsHandle(handles []string, want string) bool {
	for _, h := range handles {
		if h == want {
			return true
		}
	}
	return false
}
