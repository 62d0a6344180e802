// internal/clients/scraper/scraper_test.go
package scraper

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"merchant-triage/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func serveHTML(t *testing.T, html string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, html)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestScraper() *Scraper {
	return New(5*time.Second, logger.NewNoOpLogger())
}

// ==========================
// NormalizeURL Tests
// ==========================

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "", NormalizeURL(""))
	assert.Equal(t, "https://shop.example.com", NormalizeURL("shop.example.com"))
	assert.Equal(t, "http://shop.example.com", NormalizeURL("http://shop.example.com"))
	assert.Equal(t, "https://shop.example.com", NormalizeURL("https://shop.example.com"))
}

// ==========================
// Scan Tests
// ==========================

func TestScan_FindsIndicatorsInBodyText(t *testing.T) {
	server := serveHTML(t, `<html><head><title>Pizza Palace</title></head>
<body>
  <h1>Welcome to Pizza Palace</h1>
  <p>Bitcoin is accepted here! Pay with Lightning at the counter.</p>
</body></html>`)

	result, err := newTestScraper().Scan(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "Pizza Palace", result.Title)
	assert.Contains(t, result.Indicators, "bitcoin_accepted")
	assert.Contains(t, result.Indicators, "lightning")
	assert.GreaterOrEqual(t, result.IndicatorCount(), 2)
}

func TestScan_FindsSignalInImageAttributes(t *testing.T) {
	server := serveHTML(t, `<html><body>
  <h1>Menu</h1>
  <img src="/assets/badges/btc.png" alt="We accept Bitcoin">
</body></html>`)

	result, err := newTestScraper().Scan(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Contains(t, result.Indicators, "bitcoin_accepted")
	assert.Contains(t, result.Indicators, "crypto_mention")
}

func TestScan_FindsSignalInLinks(t *testing.T) {
	server := serveHTML(t, `<html><body>
  <a href="/payment-methods">How to pay</a>
</body></html>`)

	result, err := newTestScraper().Scan(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Contains(t, result.Indicators, "payment_section")
}

func TestScan_NoIndicators(t *testing.T) {
	server := serveHTML(t, `<html><body><p>Just a plain bakery site.</p></body></html>`)

	result, err := newTestScraper().Scan(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Empty(t, result.Indicators)
	assert.Equal(t, 0, result.IndicatorCount())
}

func TestScan_SendsUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		io.WriteString(w, "<html><body></body></html>")
	}))
	t.Cleanup(server.Close)

	_, err := newTestScraper().Scan(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, userAgent, gotUA)
}

func TestScan_NonOKStatusIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)

	_, err := newTestScraper().Scan(context.Background(), server.URL)
	assert.Error(t, err)
}

func TestScan_UnreachableHost(t *testing.T) {
	_, err := newTestScraper().Scan(context.Background(), "http://127.0.0.1:1")
	assert.Error(t, err)
}
