// internal/checks/checks_test.go
package checks

import (
	"context"
	"errors"
	"strings"
	"testing"

	"merchant-triage/internal/clients/osm"
	"merchant-triage/internal/clients/scraper"
	"merchant-triage/internal/common/logger"
	"merchant-triage/internal/common/observability"
	"merchant-triage/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeSearcher struct {
	elements []osm.Element
	err      error
}

func (f *fakeSearcher) SearchNearby(_ context.Context, _, _, _ float64) ([]osm.Element, error) {
	return f.elements, f.err
}

type fakeScanner struct {
	result *scraper.ScrapeResult
	err    error
}

func (f *fakeScanner) Scan(_ context.Context, url string) (*scraper.ScrapeResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &scraper.ScrapeResult{URL: url}, nil
}

func floatPtr(v float64) *float64 { return &v }

func fullRecord() *models.MerchantRecord {
	return &models.MerchantRecord{
		Name:      "Pizza Palace Downtown",
		Address:   "123 Main St",
		Latitude:  floatPtr(40.7128),
		Longitude: floatPtr(-74.0060),
		Category:  "Restaurant",
		Phone:     "+1-555-0123",
		Website:   "https://pizzapalace.example.com",
	}
}

// ==========================
// Location Check Tests
// ==========================

func TestLocationCheck(t *testing.T) {
	tests := []struct {
		name           string
		record         *models.MerchantRecord
		searcher       *fakeSearcher
		expectedStatus models.CheckStatus
		expectedScore  int
	}{
		{
			name:           "no coordinates fails with zero score",
			record:         &models.MerchantRecord{Name: "Shop"},
			searcher:       &fakeSearcher{},
			expectedStatus: models.CheckFail,
			expectedScore:  0,
		},
		{
			name: "coordinates out of range fail",
			record: &models.MerchantRecord{
				Name:      "Shop",
				Latitude:  floatPtr(120.0),
				Longitude: floatPtr(10.0),
			},
			searcher:       &fakeSearcher{},
			expectedStatus: models.CheckFail,
			expectedScore:  0,
		},
		{
			name:           "coordinates with no nearby match stay unclear at baseline",
			record:         fullRecord(),
			searcher:       &fakeSearcher{elements: []osm.Element{{Type: "node", ID: 1, Tags: map[string]string{"name": "Other Cafe"}}}},
			expectedStatus: models.CheckUnclear,
			expectedScore:  10,
		},
		{
			name:           "search error keeps baseline, never penalizes",
			record:         fullRecord(),
			searcher:       &fakeSearcher{err: errors.New("overpass timeout")},
			expectedStatus: models.CheckUnclear,
			expectedScore:  10,
		},
		{
			name: "nearby name match passes at max",
			record: fullRecord(),
			searcher: &fakeSearcher{elements: []osm.Element{
				{Type: "node", ID: 7, Tags: map[string]string{"name": "Pizza Palace Downtown"}},
			}},
			expectedStatus: models.CheckPass,
			expectedScore:  20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := NewLocationCheck(20, 50, tt.searcher, logger.NewNoOpLogger())
			outcome := check.Run(context.Background(), tt.record)

			assert.Equal(t, tt.expectedStatus, outcome.Status)
			assert.Equal(t, tt.expectedScore, outcome.Score)
			assert.Equal(t, 20, outcome.MaxScore)
		})
	}
}

func TestLocationCheck_BaselineClampedToSmallWeight(t *testing.T) {
	check := NewLocationCheck(4, 50, &fakeSearcher{}, logger.NewNoOpLogger())
	outcome := check.Run(context.Background(), fullRecord())

	assert.Equal(t, 4, outcome.Score)
	assert.LessOrEqual(t, outcome.Score, outcome.MaxScore)
}

// ==========================
// Website Check Tests
// ==========================

func TestWebsiteCheck(t *testing.T) {
	tests := []struct {
		name           string
		website        string
		scanner        *fakeScanner
		expectedStatus models.CheckStatus
		expectedScore  int
	}{
		{
			name:           "no website fails with zero score",
			website:        "",
			scanner:        &fakeScanner{},
			expectedStatus: models.CheckFail,
			expectedScore:  0,
		},
		{
			name:    "two indicators score max",
			website: "pizzapalace.example.com",
			scanner: &fakeScanner{result: &scraper.ScrapeResult{
				Indicators: []string{"bitcoin_accepted", "lightning"},
			}},
			expectedStatus: models.CheckPass,
			expectedScore:  30,
		},
		{
			name:    "one indicator scores three fifths",
			website: "pizzapalace.example.com",
			scanner: &fakeScanner{result: &scraper.ScrapeResult{
				Indicators: []string{"crypto_mention"},
			}},
			expectedStatus: models.CheckPass,
			expectedScore:  18,
		},
		{
			name:           "fetched page with no indicators keeps baseline",
			website:        "pizzapalace.example.com",
			scanner:        &fakeScanner{result: &scraper.ScrapeResult{}},
			expectedStatus: models.CheckUnclear,
			expectedScore:  5,
		},
		{
			name:           "fetch error keeps baseline with error status",
			website:        "pizzapalace.example.com",
			scanner:        &fakeScanner{err: errors.New("connection refused")},
			expectedStatus: models.CheckError,
			expectedScore:  5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := NewWebsiteCheck(30, tt.scanner, logger.NewNoOpLogger())
			record := &models.MerchantRecord{Name: "Pizza Palace", Website: tt.website}
			outcome := check.Run(context.Background(), record)

			assert.Equal(t, tt.expectedStatus, outcome.Status)
			assert.Equal(t, tt.expectedScore, outcome.Score)
		})
	}
}

func TestWebsiteCheck_NormalizesScheme(t *testing.T) {
	check := NewWebsiteCheck(30, &fakeScanner{result: &scraper.ScrapeResult{}}, logger.NewNoOpLogger())
	outcome := check.Run(context.Background(), &models.MerchantRecord{Website: "shop.example.com"})

	assert.Equal(t, "https://shop.example.com", outcome.Details["website"])
}

// ==========================
// Social Check Tests
// ==========================

func TestSocialCheck_BaselineWithoutHandles(t *testing.T) {
	check := NewSocialCheck(20, logger.NewNoOpLogger())
	outcome := check.Run(context.Background(), &models.MerchantRecord{Name: "Quiet Shop"})

	assert.Equal(t, models.CheckUnclear, outcome.Status)
	assert.Equal(t, 5, outcome.Score)
	assert.Empty(t, outcome.Handles)
	assert.NotEmpty(t, outcome.Details["suggested_search"])
}

func TestSocialCheck_HandlesRaiseScore(t *testing.T) {
	check := NewSocialCheck(20, logger.NewNoOpLogger())
	record := &models.MerchantRecord{
		Name:    "Social Shop",
		Twitter: "socialshop",
		RawBody: "see https://instagram.com/socialshop too",
	}
	outcome := check.Run(context.Background(), record)

	assert.Equal(t, models.CheckPartial, outcome.Status)
	assert.Equal(t, 10, outcome.Score)
	assert.Contains(t, outcome.Handles, "twitter/socialshop")
	assert.Contains(t, outcome.Handles, "instagram/socialshop")
}

// ==========================
// Cross-Reference Check Tests
// ==========================

func TestCrossReferenceCheck(t *testing.T) {
	check := NewCrossReferenceCheck(20)

	t.Run("missing name is the only fail", func(t *testing.T) {
		outcome := check.Run(context.Background(), &models.MerchantRecord{Name: "  "})
		assert.Equal(t, models.CheckFail, outcome.Status)
		assert.Equal(t, 0, outcome.Score)
	})

	t.Run("name yields search links at baseline", func(t *testing.T) {
		outcome := check.Run(context.Background(), &models.MerchantRecord{Name: "Pizza Palace"})
		assert.Equal(t, models.CheckUnclear, outcome.Status)
		assert.Equal(t, 5, outcome.Score)
		assert.Contains(t, outcome.Details["google_maps_search"], "google.com/maps/search")
		assert.Contains(t, outcome.Details["yelp_search"], "yelp.com/search")
	})
}

// ==========================
// Data Consistency Check Tests
// ==========================

func TestDataConsistencyCheck(t *testing.T) {
	tests := []struct {
		name           string
		record         *models.MerchantRecord
		maxScore       int
		expectedScore  int
		expectedStatus models.CheckStatus
	}{
		{
			// Scenario: complete manual submission earns every point.
			name:           "complete record scores full points",
			record:         fullRecord(),
			maxScore:       10,
			expectedScore:  10,
			expectedStatus: models.CheckPass,
		},
		{
			name:           "empty record is partial at zero",
			record:         &models.MerchantRecord{},
			maxScore:       10,
			expectedScore:  0,
			expectedStatus: models.CheckPartial,
		},
		{
			name: "address plus category below pass floor",
			record: &models.MerchantRecord{
				Address:  "123 Main St",
				Category: "Cafe",
			},
			maxScore:       10,
			expectedScore:  4,
			expectedStatus: models.CheckPartial,
		},
		{
			name: "coordinates out of range earn no points",
			record: &models.MerchantRecord{
				Address:   "123 Main St",
				Latitude:  floatPtr(95.0),
				Longitude: floatPtr(10.0),
				Phone:     "+1-555-0123",
			},
			maxScore:       10,
			expectedScore:  5,
			expectedStatus: models.CheckPass,
		},
		{
			// Raw points exceed a smaller configured weight.
			name:           "raw points capped at configured max",
			record:         fullRecord(),
			maxScore:       6,
			expectedScore:  6,
			expectedStatus: models.CheckPass,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := NewDataConsistencyCheck(tt.maxScore)
			outcome := check.Run(context.Background(), tt.record)

			assert.Equal(t, tt.expectedScore, outcome.Score)
			assert.Equal(t, tt.expectedStatus, outcome.Status)
			assert.LessOrEqual(t, outcome.Score, outcome.MaxScore)
		})
	}
}

// ==========================
// Battery Tests
// ==========================

type staticCheck struct {
	name    string
	outcome models.CheckOutcome
}

func (s *staticCheck) Name() string { return s.name }
func (s *staticCheck) Run(context.Context, *models.MerchantRecord) models.CheckOutcome {
	return s.outcome
}

func TestBattery_SumsClampedScores(t *testing.T) {
	battery := NewBatteryWithChecks([]Check{
		&staticCheck{name: "a", outcome: models.CheckOutcome{Check: "a", Score: 15, MaxScore: 10, Status: models.CheckPass}},
		&staticCheck{name: "b", outcome: models.CheckOutcome{Check: "b", Score: -3, MaxScore: 10, Status: models.CheckFail}},
		&staticCheck{name: "c", outcome: models.CheckOutcome{Check: "c", Score: 7, MaxScore: 10, Status: models.CheckPass}},
	}, 0, nil, logger.NewNoOpLogger())

	result, err := battery.Run(context.Background(), 42, &models.MerchantRecord{Name: "Shop"})
	require.NoError(t, err)

	// 15 clamps to 10, -3 clamps to 0.
	assert.Equal(t, 17, result.Score)
	assert.Equal(t, 10, result.Checks["a"].Score)
	assert.Equal(t, 0, result.Checks["b"].Score)
	assert.Len(t, result.Checks, 3)
}

func TestBattery_AggregateCappedAtHundred(t *testing.T) {
	battery := NewBatteryWithChecks([]Check{
		&staticCheck{name: "a", outcome: models.CheckOutcome{Check: "a", Score: 60, MaxScore: 60, Status: models.CheckPass}},
		&staticCheck{name: "b", outcome: models.CheckOutcome{Check: "b", Score: 70, MaxScore: 70, Status: models.CheckPass}},
	}, 0, nil, logger.NewNoOpLogger())

	result, err := battery.Run(context.Background(), 8, &models.MerchantRecord{Name: "Shop"})
	require.NoError(t, err)

	// Per-check outcomes keep their full scores; only the aggregate caps.
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, 60, result.Checks["a"].Score)
	assert.Equal(t, 70, result.Checks["b"].Score)
}

func TestBattery_RecordsCheckDurations(t *testing.T) {
	obs := observability.New("battery-metrics-test")
	t.Cleanup(obs.Shutdown)

	battery := NewBatteryWithChecks([]Check{
		&staticCheck{name: "a", outcome: models.CheckOutcome{Check: "a", Score: 5, MaxScore: 10, Status: models.CheckPass}},
	}, 0, obs, logger.NewNoOpLogger())

	result, err := battery.Run(context.Background(), 9, &models.MerchantRecord{Name: "Shop"})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Score)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	found := false
	for _, fam := range families {
		if strings.Contains(fam.GetName(), "checks_duration") {
			found = true
		}
	}
	assert.True(t, found, "check duration histogram was not exported")
}

func TestBattery_CancelledContextStopsBetweenChecks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	battery := NewBatteryWithChecks([]Check{
		&staticCheck{name: "a", outcome: models.CheckOutcome{Check: "a", Score: 5, MaxScore: 10}},
	}, 0, nil, logger.NewNoOpLogger())

	_, err := battery.Run(ctx, 1, &models.MerchantRecord{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBattery_FullWiring(t *testing.T) {
	// No website on the record means the website check fails outright
	// while the rest of the battery still runs.
	cfgRecord := &models.MerchantRecord{
		Name:      "Pizza Palace Downtown",
		Address:   "123 Main St",
		Latitude:  floatPtr(40.7128),
		Longitude: floatPtr(-74.0060),
		Category:  "Restaurant",
		Phone:     "+1-555-0123",
	}

	battery := NewBatteryWithChecks([]Check{
		NewLocationCheck(20, 50, &fakeSearcher{}, logger.NewNoOpLogger()),
		NewWebsiteCheck(30, &fakeScanner{}, logger.NewNoOpLogger()),
		NewSocialCheck(20, logger.NewNoOpLogger()),
		NewCrossReferenceCheck(20),
		NewDataConsistencyCheck(10),
	}, 0, nil, logger.NewNoOpLogger())

	result, err := battery.Run(context.Background(), 12081, cfgRecord)
	require.NoError(t, err)

	assert.Equal(t, models.CheckFail, result.Checks[models.CheckNameWebsite].Status)
	assert.Equal(t, 0, result.Checks[models.CheckNameWebsite].Score)

	// address + valid coordinates + phone + category = 3+4+2+1 = 10.
	assert.Equal(t, 10, result.Checks[models.CheckNameDataConsistency].Score)

	// 10 (location baseline) + 0 + 5 + 5 + 10
	assert.Equal(t, 30, result.Score)
}
