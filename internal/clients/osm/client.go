// internal/clients/osm/client.go
package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"merchant-triage/internal/common/config"
	apperrors "merchant-triage/internal/common/errors"
	httpclient "merchant-triage/internal/common/http"
	"merchant-triage/internal/common/logger"
)

// Element is one feature returned by an Overpass nearby search.
type Element struct {
	Type string            `json:"type"`
	ID   int64             `json:"id"`
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
	Tags map[string]string `json:"tags"`
}

// Name returns the feature's name tag, if any.
func (e Element) Name() string {
	return e.Tags["name"]
}

type overpassResponse struct {
	Elements []Element `json:"elements"`
}

// BitcoinTags summarizes the payment tags on one mapped feature.
type BitcoinTags struct {
	HasCurrencyXBT      bool              `json:"has_currency_xbt"`
	HasPaymentLightning bool              `json:"has_payment_lightning"`
	HasPaymentOnchain   bool              `json:"has_payment_onchain"`
	CheckDate           string            `json:"check_date,omitempty"`
	Tags                map[string]string `json:"tags"`
}

// Client queries the mapping service: Overpass for nearby features and the
// main API for per-feature tags.
type Client struct {
	cfg    config.OSMConfig
	http   *httpclient.Client
	logger logger.Logger
	now    func() time.Time
}

func NewClient(cfg config.OSMConfig, log logger.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   httpclient.NewClient(config.GetDuration(cfg.Timeout)),
		logger: log,
		now:    time.Now,
	}
}

// SearchNearby finds named features within radius meters of the coordinates.
func (c *Client) SearchNearby(ctx context.Context, lat, lon, radius float64) ([]Element, error) {
	query := fmt.Sprintf(`[out:json][timeout:25];
(
  node["name"](around:%.0f,%f,%f);
  way["name"](around:%.0f,%f,%f);
);
out body;`, radius, lat, lon, radius, lat, lon)

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.OverpassURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.NewMappingLookupFailedError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, apperrors.NewMappingLookupFailedError(
			fmt.Errorf("overpass returned %d: %s", resp.StatusCode, string(body)))
	}

	var parsed overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewMappingLookupFailedError(err)
	}

	c.logger.Debug("Overpass nearby search completed", map[string]interface{}{
		"lat":      lat,
		"lon":      lon,
		"radius":   radius,
		"elements": len(parsed.Elements),
	})

	return parsed.Elements, nil
}

// CheckBitcoinTags fetches one feature and summarizes its payment tags.
func (c *Client) CheckBitcoinTags(ctx context.Context, osmType string, osmID int64) (*BitcoinTags, error) {
	u := fmt.Sprintf("%s/%s/%d.json", c.cfg.APIURL, osmType, osmID)

	var parsed overpassResponse
	if err := c.http.GetJSON(ctx, u, nil, &parsed); err != nil {
		return nil, apperrors.NewMappingLookupFailedError(err)
	}
	if len(parsed.Elements) == 0 {
		return nil, apperrors.NewMappingLookupFailedError(fmt.Errorf("%s/%d not found", osmType, osmID))
	}

	tags := parsed.Elements[0].Tags
	return &BitcoinTags{
		HasCurrencyXBT:      tags["currency:XBT"] == "yes",
		HasPaymentLightning: tags["payment:lightning"] == "yes",
		HasPaymentOnchain:   tags["payment:onchain"] == "yes",
		CheckDate:           tags["check_date:currency:XBT"],
		Tags:                tags,
	}, nil
}

// ViewURL returns the map viewer permalink for the coordinates.
func (c *Client) ViewURL(lat, lon float64, zoom int) string {
	return fmt.Sprintf("%s/#map=%d/%f/%f", c.cfg.BaseURL, zoom, lat, lon)
}

// EditURL returns the iD editor permalink for the coordinates.
func (c *Client) EditURL(lat, lon float64, zoom int) string {
	return fmt.Sprintf("%s/edit#map=%d/%f/%f", c.cfg.BaseURL, zoom, lat, lon)
}

// SuggestTags builds the Bitcoin acceptance tags for a feature, in the
// order they should be pasted into the editor.
func (c *Client) SuggestTags(merchantName string, lightning, onchain bool, checkDate string) [][2]string {
	var tags [][2]string

	if merchantName != "" {
		tags = append(tags, [2]string{"name", merchantName})
	}
	tags = append(tags, [2]string{"currency:XBT", "yes"})
	if lightning {
		tags = append(tags, [2]string{"payment:lightning", "yes"})
	}
	if onchain {
		tags = append(tags, [2]string{"payment:onchain", "yes"})
	}
	if checkDate == "" {
		checkDate = c.now().Format("2006-01-02")
	}
	tags = append(tags, [2]string{"check_date:currency:XBT", checkDate})

	return tags
}

// ChangesetComment builds the suggested changeset comment for an edit.
func (c *Client) ChangesetComment(merchantName string, issueNumber int64, methods []string) string {
	return fmt.Sprintf("Add Bitcoin acceptance for %s\n#btcmap issue:%d\nSource: Verified via %s",
		merchantName, issueNumber, strings.Join(methods, ", "))
}

// FormatEditTemplate renders the tags and changeset comment as a block a
// tagger can paste into the editor unchanged.
func FormatEditTemplate(tags [][2]string, changesetComment string) string {
	lines := make([]string, 0, len(tags))
	for _, t := range tags {
		lines = append(lines, t[0]+"="+t[1])
	}

	return fmt.Sprintf(`Copy-paste these tags into the OSM iD editor tag panel:

`+"```"+`
%s
`+"```"+`

Changeset comment:

`+"```"+`
%s
`+"```"+`

Note: Please verify these tags manually before applying.`,
		strings.Join(lines, "\n"), changesetComment)
}

// ValidateCoordinates reports whether the pair is inside the WGS84 range.
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

var openingHoursPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(Mo|Tu|We|Th|Fr|Sa|Su)(-(Mo|Tu|We|Th|Fr|Sa|Su))?\s+\d{1,2}:\d{2}-\d{1,2}:\d{2}`),
	regexp.MustCompile(`(?i)^\d{1,2}\s*(am|pm)\s*to\s*\d{1,2}\s*(am|pm)$`),
}

// ValidateOpeningHours accepts the common formats and tolerates complex
// schedules it cannot parse. Only an empty string fails.
func ValidateOpeningHours(hours string) bool {
	if hours == "" {
		return false
	}
	for _, p := range openingHoursPatterns {
		if p.MatchString(hours) {
			return true
		}
	}
	return true
}

// TagReference documents the payment tags taggers should know about.
func TagReference() []string {
	ref := map[string]string{
		"currency:XBT":                  "Indicates Bitcoin is accepted",
		"payment:lightning":             "Indicates Lightning Network payments are accepted",
		"payment:onchain":               "Indicates on-chain Bitcoin payments are accepted",
		"payment:lightning_contactless": "Indicates NFC/contactless Lightning payments",
		"check_date:currency:XBT":       "Date when Bitcoin acceptance was verified",
		"survey:date":                   "Date of physical survey/verification",
	}
	keys := make([]string, 0, len(ref))
	for k := range ref {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+": "+ref[k])
	}
	return out
}
