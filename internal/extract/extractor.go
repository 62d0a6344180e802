// internal/extract/extractor.go
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"merchant-triage/internal/common/logger"
	"merchant-triage/internal/models"
)

// Extractor turns raw issue bodies into normalized merchant records. It is
// pure and idempotent; extracting the same issue twice yields equal records.
type Extractor struct {
	logger logger.Logger
}

func New(log logger.Logger) *Extractor {
	return &Extractor{logger: log}
}

// Field rule tables, one per submission template. Each rule captures a
// single field value in group 1.
var squareRules = map[string]*regexp.Regexp{
	"name":          regexp.MustCompile(`(?i)Name:\s*(.+)`),
	"category":      regexp.MustCompile(`(?i)Category:\s*(.+)`),
	"address":       regexp.MustCompile(`(?i)"address":\s*"([^"]+)"`),
	"lat":           regexp.MustCompile(`(?i)lat[=:]\s*(-?\d+\.\d+)`),
	"lon":           regexp.MustCompile(`(?i)lon[=:]\s*(-?\d+\.\d+)`),
	"opening_hours": regexp.MustCompile(`(?i)"opening_hours":\s*"([^"]+)"`),
	"website":       regexp.MustCompile(`(?i)website[=:]\s*(https?://\S+)`),
}

var manualRules = map[string]*regexp.Regexp{
	"name":            regexp.MustCompile(`(?i)Merchant name:\s*(.+)`),
	"address":         regexp.MustCompile(`(?i)Address:\s*(.+)`),
	"lat":             regexp.MustCompile(`(?i)Lat:\s*(-?\d+\.\d+)`),
	"lon":             regexp.MustCompile(`(?i)Long:\s*(-?\d+\.\d+)`),
	"category":        regexp.MustCompile(`(?i)Category:\s*(.+)`),
	"payment_methods": regexp.MustCompile(`(?i)Payment methods:\s*(.+)`),
	"website":         regexp.MustCompile(`(?i)Website:\s*(https?://\S+|\S+\.\S+)`),
	"phone":           regexp.MustCompile(`(?i)Phone:\s*([\d\s\-\+\(\)]+)`),
	"opening_hours":   regexp.MustCompile(`(?i)Opening hours:\s*(.+)`),
	"contact":         regexp.MustCompile(`(?i)Contact:\s*(\S+@\S+)`),
}

// A map permalink in the body is authoritative for coordinates and
// overrides any inline lat/lon fields.
var mapLinkRule = regexp.MustCompile(`openstreetmap\.org\S*map=\d+/(-?\d+\.\d+)/(-?\d+\.\d+)`)

var socialRules = map[string]*regexp.Regexp{
	"twitter":   regexp.MustCompile(`(?i)twitter\.com/(\w+)`),
	"instagram": regexp.MustCompile(`(?i)instagram\.com/(\w+)`),
	"facebook":  regexp.MustCompile(`(?i)facebook\.com/(\w+)`),
}

// ExtractRecord parses one issue into a merchant record. The issue title is
// the fallback name when the body carries none.
func (e *Extractor) ExtractRecord(issue *models.Issue) *models.MerchantRecord {
	record := &models.MerchantRecord{
		Name:    issue.Title,
		Source:  models.SourceUnknown,
		RawBody: issue.Body,
	}

	body := issue.Body
	switch {
	case detectSquareFormat(body):
		record.Source = models.SourceSquareImport
		e.applyRules(record, body, squareRules)
	case strings.Contains(body, "Merchant name:"):
		record.Source = models.SourceManualSubmission
		e.applyRules(record, body, manualRules)
	}

	if m := mapLinkRule.FindStringSubmatch(body); m != nil {
		lat, errLat := strconv.ParseFloat(m[1], 64)
		lon, errLon := strconv.ParseFloat(m[2], 64)
		if errLat == nil && errLon == nil {
			record.SetCoordinates(lat, lon)
		}
	}

	record.Twitter = firstMatch(socialRules["twitter"], body)
	record.Instagram = firstMatch(socialRules["instagram"], body)
	record.Facebook = firstMatch(socialRules["facebook"], body)

	e.logger.Debug("Extracted merchant record", map[string]interface{}{
		"issueNumber": issue.Number,
		"source":      record.Source,
		"hasCoords":   record.HasCoordinates(),
	})

	return record
}

// detectSquareFormat recognizes the point-of-sale import template.
func detectSquareFormat(body string) bool {
	if strings.Contains(body, "Origin: square") {
		return true
	}
	return strings.Contains(body, "Id:") && strings.Contains(strings.ToLower(body), "square")
}

func (e *Extractor) applyRules(record *models.MerchantRecord, body string, rules map[string]*regexp.Regexp) {
	var latStr, lonStr string

	for field, rule := range rules {
		m := rule.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[1])
		if isPlaceholder(value) {
			continue
		}

		switch field {
		case "name":
			record.Name = value
		case "address":
			record.Address = trimTrailingLabel(value)
		case "lat":
			latStr = value
		case "lon":
			lonStr = value
		case "category":
			record.Category = value
		case "payment_methods":
			record.PaymentMethods = splitList(value)
		case "website":
			record.Website = value
		case "phone":
			record.Phone = value
		case "opening_hours":
			record.OpeningHours = value
		case "contact":
			record.ContactEmail = value
		}
	}

	// Coordinates are only stored as a pair.
	if latStr != "" && lonStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lon, errLon := strconv.ParseFloat(lonStr, 64)
		if errLat == nil && errLon == nil {
			record.SetCoordinates(lat, lon)
		}
	}
}

// isPlaceholder filters values submitters use to mean "no data".
func isPlaceholder(value string) bool {
	switch strings.ToLower(value) {
	case "", "n/a", "none":
		return true
	}
	return false
}

// trimTrailingLabel drops a following field label captured by a greedy
// line match, e.g. an address line running into "Lat:".
func trimTrailingLabel(value string) string {
	if idx := strings.Index(value, "Lat:"); idx > 0 {
		value = value[:idx]
	}
	return strings.TrimSpace(value)
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstMatch(rule *regexp.Regexp, body string) string {
	if m := rule.FindStringSubmatch(body); m != nil {
		return m[1]
	}
	return ""
}
