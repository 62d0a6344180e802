// internal/clients/social/search.go
package social

import (
	"fmt"
	"net/url"
	"regexp"

	"merchant-triage/internal/models"
)

// Handle discovery patterns applied to free text (issue bodies, scraped
// pages). Group 1 is the account name.
var handlePatterns = map[string]*regexp.Regexp{
	"twitter":   regexp.MustCompile(`(?i)twitter\.com/(\w+)`),
	"instagram": regexp.MustCompile(`(?i)instagram\.com/([\w.]+)`),
	"facebook":  regexp.MustCompile(`(?i)facebook\.com/([\w.]+)`),
}

// DiscoverHandles scans text for social profile links and returns the
// handles as platform/name pairs, platforms in a stable order.
func DiscoverHandles(text string) []string {
	var handles []string
	for _, platform := range []string{"twitter", "instagram", "facebook"} {
		if m := handlePatterns[platform].FindStringSubmatch(text); m != nil {
			handles = append(handles, platform+"/"+m[1])
		}
	}
	return handles
}

// KnownHandles returns the handles already present on the record.
func KnownHandles(record *models.MerchantRecord) []string {
	var handles []string
	if record.Twitter != "" {
		handles = append(handles, "twitter/"+record.Twitter)
	}
	if record.Instagram != "" {
		handles = append(handles, "instagram/"+record.Instagram)
	}
	if record.Facebook != "" {
		handles = append(handles, "facebook/"+record.Facebook)
	}
	return handles
}

// SuggestedSearchURL links a reviewer to a name search on the platform.
func SuggestedSearchURL(platform, merchantName string) string {
	q := url.QueryEscape(merchantName)
	switch platform {
	case "twitter":
		return fmt.Sprintf("https://twitter.com/search?q=%s", q)
	case "instagram":
		return fmt.Sprintf("https://www.instagram.com/explore/search/keyword/?q=%s", q)
	default:
		return fmt.Sprintf("https://duckduckgo.com/?q=%s", q)
	}
}
