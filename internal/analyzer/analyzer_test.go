package analyzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropradar/dropradar/internal/extract"
	"github.com/dropradar/dropradar/internal/models"
	"github.com/dropradar/dropradar/internal/normalize"
	"github.com/dropradar/dropradar/internal/scoring"
)

type stubCascade struct {
	result  extract.Result
	lastURL string
}

func (s *stubCascade) Run(_ context.Context, target extract.Target) extract.Result {
	s.lastURL = target.URL
	if s.result.Attempt == nil {
		s.result.Attempt = models.NewAttempt(target.Profile.Name(), target.URL, 0)
	}
	return s.result
}

type stubAggregator struct {
	results   []extract.Result
	lastTitle string
	lastMax   int
	calls     int
}

func (s *stubAggregator) Collect(_ context.Context, _, title string, max int) []extract.Result {
	s.calls++
	s.lastTitle = title
	s.lastMax = max
	return s.results
}

func newService(cascade Cascade, aggregator Aggregator) *Service {
	return NewService(cascade, aggregator,
		normalize.NewCurrencyConverter(nil), scoring.NewEngine(scoring.Thresholds{}))
}

func primaryResult(title string, price float64, reviews int) extract.Result {
	attempt := models.NewAttempt("Amazon", "https://www.amazon.com/dp/B01", extract.LevelStatic)
	attempt.Currency = "USD"
	if title != "" {
		attempt.Title = models.String(title)
	}
	if price > 0 {
		attempt.Price = models.Float64(price)
	}
	if reviews > 0 {
		attempt.ReviewCount = models.Int(reviews)
	}
	return extract.Result{Attempt: attempt, Quality: 75, Level: extract.LevelStatic}
}

func TestAnalyzeProducesVerdictFromPrimaryAndRivals(t *testing.T) {
	rival := models.NewAttempt("eBay", "https://www.ebay.com/itm/1", extract.LevelStatic)
	rival.Title = models.String("Stainless Garlic Press")
	rival.Price = models.Float64(22.50)
	rival.Currency = "USD"
	rival.ReviewCount = models.Int(800)

	cascade := &stubCascade{result: primaryResult("Garlic Press", 24.99, 1200)}
	aggregator := &stubAggregator{results: []extract.Result{{Attempt: rival, Quality: 55}}}

	record := newService(cascade, aggregator).Analyze(context.Background(),
		Request{Query: "https://www.amazon.com/dp/B01"})

	require.NotNil(t, record)
	assert.NotEmpty(t, record.ID)
	assert.Len(t, record.Sources, 2)
	assert.Equal(t, "Garlic Press", aggregator.lastTitle)
	assert.NotEmpty(t, record.Recommendation)
	assert.False(t, record.CreatedAt.IsZero())
}

func TestAnalyzeURLQueryHitsTheURLDirectly(t *testing.T) {
	cascade := &stubCascade{result: primaryResult("Garlic Press", 24.99, 0)}

	newService(cascade, &stubAggregator{}).Analyze(context.Background(),
		Request{Query: "https://www.amazon.co.uk/dp/B01"})

	assert.Equal(t, "https://www.amazon.co.uk/dp/B01", cascade.lastURL)
}

func TestAnalyzeTextQueryBecomesMarketplaceSearch(t *testing.T) {
	cascade := &stubCascade{result: primaryResult("Garlic Press", 24.99, 0)}

	newService(cascade, &stubAggregator{}).Analyze(context.Background(),
		Request{Query: "garlic press"})

	assert.Equal(t, "https://www.amazon.com/s?k=garlic+press", cascade.lastURL)
}

func TestAnalyzeBareDomainQueryGetsScheme(t *testing.T) {
	cascade := &stubCascade{result: primaryResult("Garlic Press", 24.99, 0)}

	newService(cascade, &stubAggregator{}).Analyze(context.Background(),
		Request{Query: "amazon.com/dp/B01"})

	assert.Equal(t, "https://amazon.com/dp/B01", cascade.lastURL)
}

func TestAnalyzeFailedExtractionYieldsInsufficientDataKill(t *testing.T) {
	empty := models.NewAttempt("Amazon", "https://www.amazon.com/dp/B01", extract.LevelHeadless)
	empty.Flags = []models.ConfidenceFlag{models.FlagFetchFailed, models.FlagNavigationTimeout}

	cascade := &stubCascade{result: extract.Result{Attempt: empty, Quality: 0, Level: extract.LevelHeadless}}
	aggregator := &stubAggregator{}

	record := newService(cascade, aggregator).Analyze(context.Background(),
		Request{Query: "https://www.amazon.com/dp/B01"})

	require.NotNil(t, record)
	assert.Equal(t, models.VerdictKill, record.Verdict)
	assert.Equal(t, models.ConfidenceLow, record.Confidence)
	assert.Empty(t, record.Sources)
	assert.Zero(t, aggregator.calls, "no title means no competitor fan-out")
}

func TestAnalyzeDeduplicatesSources(t *testing.T) {
	// The rival resolves to the exact same URL as the primary listing.
	dup := models.NewAttempt("Amazon", "https://www.amazon.com/dp/B01", extract.LevelStatic)
	dup.Title = models.String("Garlic Press")
	dup.Price = models.Float64(24.99)
	dup.Currency = "USD"

	cascade := &stubCascade{result: primaryResult("Garlic Press", 24.99, 100)}
	aggregator := &stubAggregator{results: []extract.Result{{Attempt: dup, Quality: 55}}}

	record := newService(cascade, aggregator).Analyze(context.Background(),
		Request{Query: "https://www.amazon.com/dp/B01"})

	assert.Len(t, record.Sources, 1)
}

func TestAnalyzePassesCompetitorCountThrough(t *testing.T) {
	cascade := &stubCascade{result: primaryResult("Garlic Press", 24.99, 0)}
	aggregator := &stubAggregator{}

	newService(cascade, aggregator).Analyze(context.Background(),
		Request{Query: "garlic press", CompetitorCount: 1})

	assert.Equal(t, 1, aggregator.lastMax)
}
