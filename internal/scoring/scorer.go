// internal/scoring/scorer.go
package scoring

import (
	"fmt"
	"sort"
	"strings"

	"merchant-triage/internal/common/config"
	"merchant-triage/internal/models"
)

// Recommendation strings by tier. These appear verbatim in posted
// reports, so reviewers grep for them; do not reword casually.
const (
	RecommendationHigh    = "HIGH CONFIDENCE - Recommend Approval"
	RecommendationMedium  = "MEDIUM CONFIDENCE - Recommend Approval with Notes"
	RecommendationLow     = "LOW CONFIDENCE - Needs Human Review"
	RecommendationVeryLow = "VERY LOW CONFIDENCE - Recommend Rejection or More Info"
)

// DetailedRecommendation carries the recommendation plus the reasoning a
// human reviewer needs to act on it.
type DetailedRecommendation struct {
	Score          int      `json:"score"`
	Level          string   `json:"level"`
	Recommendation string   `json:"recommendation"`
	Reasoning      []string `json:"reasoning"`
	ActionItems    []string `json:"action_items"`
}

// Scorer aggregates check and outreach outcomes into the 0-100
// confidence score and its recommendation tier.
type Scorer struct {
	verification config.VerificationConfig
}

func NewScorer(verification config.VerificationConfig) *Scorer {
	return &Scorer{verification: verification}
}

// Phase1Score sums the per-check scores, capped at 100.
func (s *Scorer) Phase1Score(result *models.Phase1Result) int {
	if result == nil {
		return 0
	}
	total := 0
	for _, outcome := range result.Checks {
		total += outcome.Score
	}
	return capScore(total)
}

// Phase2Bonus awards each channel's bonus only on confirmation.
func (s *Scorer) Phase2Bonus(result *models.Phase2Result) int {
	if result == nil {
		return 0
	}
	bonus := 0
	if result.Email.Status == models.OutreachConfirmed {
		bonus += s.verification.Phase2Weights.EmailConfirmation
	}
	if result.SocialDM.Status == models.OutreachConfirmed {
		bonus += s.verification.Phase2Weights.SocialDMConfirmation
	}
	return bonus
}

// FinalScore combines the phases, capped at 100. It is never below the
// phase 1 score.
func (s *Scorer) FinalScore(phase1Score int, phase2 *models.Phase2Result) int {
	return capScore(phase1Score + s.Phase2Bonus(phase2))
}

// Recommendation maps a score onto its tier string, evaluated high to low.
func (s *Scorer) Recommendation(score int) string {
	t := s.verification.Thresholds
	switch {
	case score >= t.High:
		return RecommendationHigh
	case score >= t.Medium:
		return RecommendationMedium
	case score >= t.Low:
		return RecommendationLow
	default:
		return RecommendationVeryLow
	}
}

// Tier returns the discrete tier key for summaries and storage.
func (s *Scorer) Tier(score int) string {
	t := s.verification.Thresholds
	switch {
	case score >= t.High:
		return models.TierHigh
	case score >= t.Medium:
		return models.TierMedium
	case score >= t.Low:
		return models.TierLow
	default:
		return models.TierVeryLow
	}
}

// Level returns the human-facing confidence level for a score.
func (s *Scorer) Level(score int) string {
	switch s.Tier(score) {
	case models.TierHigh:
		return "HIGH"
	case models.TierMedium:
		return "MEDIUM"
	case models.TierLow:
		return "LOW"
	default:
		return "VERY LOW"
	}
}

// Detailed builds the full recommendation: reasoning for every check
// scoring below half its max, plus follow-up actions when the score sits
// below the medium threshold.
func (s *Scorer) Detailed(score int, phase1 *models.Phase1Result, phase2 *models.Phase2Result) DetailedRecommendation {
	rec := DetailedRecommendation{
		Score:          score,
		Level:          s.Level(score),
		Recommendation: s.Recommendation(score),
	}

	if phase1 != nil {
		for _, name := range sortedCheckNames(phase1.Checks) {
			outcome := phase1.Checks[name]
			if outcome.Score*2 < outcome.MaxScore {
				note := outcome.Details["note"]
				if note == "" {
					note = "Check failed"
				}
				rec.Reasoning = append(rec.Reasoning, fmt.Sprintf("%s: %s - %s", name, outcome.Status, note))
			}
		}
	}

	if phase2 != nil {
		switch phase2.Email.Status {
		case models.OutreachConfirmed:
			rec.Reasoning = append(rec.Reasoning, "Email verification confirmed")
		case models.OutreachSent:
			rec.ActionItems = append(rec.ActionItems, "Waiting for email response")
		}
		if phase2.SocialDM.Status == models.OutreachConfirmed {
			rec.Reasoning = append(rec.Reasoning, "Social DM verification confirmed")
		}
	}

	if score < s.verification.Thresholds.Medium {
		rec.ActionItems = append(rec.ActionItems, "Consider physical verification by local tagger")
		if phase1 != nil {
			if outcome, ok := phase1.Checks[models.CheckNameWebsite]; ok && outcome.Status == models.CheckFail {
				rec.ActionItems = append(rec.ActionItems, "Request website URL")
			}
			if outcome, ok := phase1.Checks[models.CheckNameSocial]; ok && outcome.Status == models.CheckFail {
				rec.ActionItems = append(rec.ActionItems, "Request social media handles")
			}
		}
	}

	return rec
}

// ExplainScore renders the human-readable breakdown of the calculation.
func (s *Scorer) ExplainScore(phase1 *models.Phase1Result, phase2 *models.Phase2Result) string {
	lines := []string{"Confidence Score Breakdown:", strings.Repeat("=", 40), ""}

	lines = append(lines, "Phase 1 - Automated Checks:")
	if phase1 != nil {
		for _, name := range sortedCheckNames(phase1.Checks) {
			outcome := phase1.Checks[name]
			lines = append(lines, fmt.Sprintf("  %s: %d/%d (%s)", name, outcome.Score, outcome.MaxScore, outcome.Status))
		}
	}
	phase1Total := s.Phase1Score(phase1)
	lines = append(lines, fmt.Sprintf("  Phase 1 Total: %d%%", phase1Total), "")

	if phase2 != nil {
		lines = append(lines, "Phase 2 - Outreach Verification:")
		lines = append(lines, fmt.Sprintf("  Email Confirmation: +%d/%d (%s)",
			phase2.Email.Score, s.verification.Phase2Weights.EmailConfirmation, phase2.Email.Status))
		lines = append(lines, fmt.Sprintf("  Social DM Confirmation: +%d/%d (%s)",
			phase2.SocialDM.Score, s.verification.Phase2Weights.SocialDMConfirmation, phase2.SocialDM.Status))
		lines = append(lines, fmt.Sprintf("  Phase 2 Bonus: +%d%%", s.Phase2Bonus(phase2)), "")
	}

	final := s.FinalScore(phase1Total, phase2)
	lines = append(lines, fmt.Sprintf("FINAL SCORE: %d%%", final))
	lines = append(lines, fmt.Sprintf("Level: %s", s.Level(final)))
	lines = append(lines, fmt.Sprintf("Recommendation: %s", s.Recommendation(final)))

	return strings.Join(lines, "\n")
}

func sortedCheckNames(checks map[string]models.CheckOutcome) []string {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func capScore(score int) int {
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}
