// internal/outreach/templates.go
package outreach

import (
	"fmt"
	"strings"
)

// RenderSubject fills the configured subject template.
func RenderSubject(template, merchantName string) string {
	if template == "" {
		template = "Verification Request: {merchant_name}"
	}
	return strings.ReplaceAll(template, "{merchant_name}", merchantName)
}

// RenderDM fills a configured DM template.
func RenderDM(template, merchantName string) string {
	return strings.ReplaceAll(template, "{merchant_name}", merchantName)
}

// RenderEmailBody builds the verification request email. The wording is
// the project's standing outreach copy.
func RenderEmailBody(merchantName string, issueNumber int64) string {
	return fmt.Sprintf(`Dear %s Team,

I hope this email finds you well. I'm writing to verify information about your business for BTC Map (https://btcmap.org), a community-driven project that maps businesses accepting Bitcoin worldwide.

We have received a submission indicating that %s accepts Bitcoin payments. To ensure our data is accurate, we would appreciate your confirmation:

**Do you currently accept Bitcoin as a form of payment?**

If yes, we would also appreciate knowing:
- Do you accept on-chain Bitcoin payments?
- Do you accept Lightning Network payments?
- Is a companion app required for payment?

If you do NOT currently accept Bitcoin, please let us know so we can update our records accordingly.

Your response will help us maintain accurate information for the Bitcoin community. Thank you for your time!

Best regards,
BTC Map Verification Team

---
This is an automated verification request. Please reply to confirm or correct the information.
Issue Reference: #%d
`, merchantName, merchantName, issueNumber)
}

// SuggestedHandle turns a merchant name into a handle search hint.
func SuggestedHandle(merchantName string) string {
	return "Search for: @" + strings.ReplaceAll(merchantName, " ", "")
}
