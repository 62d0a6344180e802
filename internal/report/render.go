// internal/report/render.go
package report

import (
	"fmt"
	"strings"
	"time"

	"merchant-triage/internal/models"
)

// checkRows fixes the presentation order and labels of the check table.
var checkRows = []struct {
	key   string
	label string
}{
	{models.CheckNameOSM, "OSM Verification"},
	{models.CheckNameWebsite, "Website Check"},
	{models.CheckNameSocial, "Social Media"},
	{models.CheckNameCrossReference, "Cross-Reference"},
	{models.CheckNameDataConsistency, "Data Consistency"},
}

// RenderPhase1 builds the markdown report posted after the automated
// checks. Every field the template shows comes from the result.
func RenderPhase1(result *models.Phase1Result, now time.Time) string {
	var b strings.Builder

	b.WriteString("## Phase 1 Verification Report\n\n")
	fmt.Fprintf(&b, "**Merchant**: %s  \n", result.MerchantName)
	fmt.Fprintf(&b, "**Issue**: #%d  \n", result.SubmissionID)
	fmt.Fprintf(&b, "**Generated**: %s\n\n", now.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(&b, "### Phase 1 Confidence Score: %d%%\n\n", result.Score)
	b.WriteString("#### Automated Checks:\n\n")
	b.WriteString("| Check | Status | Score |\n")
	b.WriteString("|-------|--------|-------|\n")
	for _, row := range checkRows {
		outcome := result.Checks[row.key]
		fmt.Fprintf(&b, "| %s | %s | %d/%d |\n", row.label, outcome.Status, outcome.Score, outcome.MaxScore)
	}

	b.WriteString("\n---\n\n")
	b.WriteString("*This is an automated Phase 1 report. Phase 2 outreach may follow if needed.*\n")

	return b.String()
}

// RenderFinal builds the closing markdown report for one submission.
func RenderFinal(result *models.TriageResult, now time.Time) string {
	var b strings.Builder

	b.WriteString("## Final Verification Report\n\n")
	fmt.Fprintf(&b, "**Merchant**: %s  \n", result.Title)
	fmt.Fprintf(&b, "**Issue**: #%d  \n", result.SubmissionID)
	fmt.Fprintf(&b, "**Generated**: %s\n\n", now.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(&b, "### Final Confidence Score: %d%%\n", result.FinalScore)
	fmt.Fprintf(&b, "**Recommendation**: %s\n\n", result.Recommendation)

	phase1Score := 0
	if result.Phase1 != nil {
		phase1Score = result.Phase1.Score
	}
	fmt.Fprintf(&b, "### Phase 1 Score: %d%%\n\n", phase1Score)

	b.WriteString("### Phase 2 Outreach:\n")
	emailStatus, dmStatus := "N/A", "N/A"
	if result.Phase2 != nil {
		emailStatus = string(result.Phase2.Email.Status)
		dmStatus = string(result.Phase2.SocialDM.Status)
	}
	fmt.Fprintf(&b, "- Email Verification: %s\n", emailStatus)
	fmt.Fprintf(&b, "- Social DM: %s\n", dmStatus)

	b.WriteString("\n---\n\n")
	b.WriteString("*Verification complete. See Phase 1 report above for detailed breakdown.*\n")

	return b.String()
}
