// internal/clients/scraper/scraper.go
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	apperrors "merchant-triage/internal/common/errors"
	"merchant-triage/internal/common/logger"
)

const userAgent = "merchant-triage/1.0 (+https://btcmap.org)"

// Indicator patterns for Bitcoin acceptance, checked against the page's
// visible text and link/image attributes.
var acceptanceIndicators = map[string]*regexp.Regexp{
	"bitcoin_accepted": regexp.MustCompile(`(?i)bitcoin\s+(is\s+)?accepted|accepts?\s+bitcoin|we\s+accept\s+(btc|bitcoin)`),
	"lightning":        regexp.MustCompile(`(?i)lightning\s+(network|payments?)|pay\s+with\s+lightning|\bln(url|bits)\b`),
	"payment_section":  regexp.MustCompile(`(?i)payment\s+(methods?|options?)`),
	"crypto_mention":   regexp.MustCompile(`(?i)\bcrypto(currency|currencies)?\b|\bbtc\b|\bsats?\b`),
}

// ScrapeResult is the evidence found on one merchant website.
type ScrapeResult struct {
	URL        string   `json:"url"`
	Indicators []string `json:"indicators"`
	Title      string   `json:"title,omitempty"`
}

// IndicatorCount returns how many distinct acceptance signals were found.
func (r *ScrapeResult) IndicatorCount() int {
	return len(r.Indicators)
}

// Scraper fetches merchant websites and scans them for acceptance signals.
type Scraper struct {
	httpClient *http.Client
	logger     logger.Logger
}

func New(timeout time.Duration, log logger.Logger) *Scraper {
	return &Scraper{
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

// NormalizeURL prefixes a scheme when the submitter left it off.
func NormalizeURL(raw string) string {
	if raw == "" {
		return ""
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return "https://" + raw
	}
	return raw
}

// Scan fetches the page and reports which acceptance indicators appear.
func (s *Scraper) Scan(ctx context.Context, rawURL string) (*ScrapeResult, error) {
	u := NormalizeURL(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, apperrors.NewWebsiteFetchFailedError(u, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewWebsiteFetchFailedError(u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewWebsiteFetchFailedError(u, fmt.Errorf("status %d", resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, apperrors.NewWebsiteFetchFailedError(u, err)
	}

	result := &ScrapeResult{
		URL:        u,
		Title:      strings.TrimSpace(doc.Find("title").First().Text()),
		Indicators: scanDocument(doc),
	}

	s.logger.Debug("Website scan completed", map[string]interface{}{
		"url":        u,
		"indicators": result.Indicators,
	})

	return result, nil
}

func scanDocument(doc *goquery.Document) []string {
	var corpus strings.Builder
	corpus.WriteString(doc.Find("body").Text())

	// Logos and payment badges often carry the only signal.
	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		if alt, ok := sel.Attr("alt"); ok {
			corpus.WriteString(" " + alt)
		}
		if src, ok := sel.Attr("src"); ok {
			corpus.WriteString(" " + src)
		}
	})
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			corpus.WriteString(" " + href)
		}
	})

	text := corpus.String()

	var found []string
	for _, name := range []string{"bitcoin_accepted", "lightning", "payment_section", "crypto_mention"} {
		if acceptanceIndicators[name].MatchString(text) {
			found = append(found, name)
		}
	}
	return found
}
