package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropradar/dropradar/internal/models"
	"github.com/dropradar/dropradar/internal/platform"
)

type fakeFetcher struct {
	html  string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.html, f.err
}

type fakeDocStrategy struct {
	level   int
	attempt *models.ExtractionAttempt
	calls   int
}

func (f *fakeDocStrategy) Level() int { return f.level }

func (f *fakeDocStrategy) Extract(_ *goquery.Document, _ Target) *models.ExtractionAttempt {
	f.calls++
	return f.attempt
}

type fakeBrowserStrategy struct {
	attempt *models.ExtractionAttempt
	err     error
	calls   int
}

func (f *fakeBrowserStrategy) Extract(_ context.Context, _ Target) (*models.ExtractionAttempt, error) {
	f.calls++
	return f.attempt, f.err
}

func cascadeTarget() Target {
	return Target{URL: "https://www.amazon.com/dp/B01", Profile: platform.Amazon(), Currency: "USD"}
}

func attemptWith(level int, title string, price float64) *models.ExtractionAttempt {
	a := models.NewAttempt("Amazon", "https://www.amazon.com/dp/B01", level)
	if title != "" {
		a.Title = models.String(title)
	}
	if price > 0 {
		a.Price = models.Float64(price)
	}
	return a
}

func TestCascadeStopsAfterLevelOneWhenQualityHigh(t *testing.T) {
	l1 := attemptWith(LevelStatic, "Garlic Press", 24.99)
	l1.Rating = models.Float64(4.5)
	l1.ReviewCount = models.Int(1234)

	static := &fakeDocStrategy{level: LevelStatic, attempt: l1}
	structured := &fakeDocStrategy{level: LevelStructured}
	headless := &fakeBrowserStrategy{}

	c := NewController(&fakeFetcher{html: "<html></html>"}, static, structured, headless, ControllerOptions{})
	result := c.Run(context.Background(), cascadeTarget())

	assert.Equal(t, 100, result.Quality)
	assert.Equal(t, LevelStatic, result.Level)
	assert.Equal(t, 1, static.calls)
	assert.Zero(t, structured.calls, "level 2 must not run once the stop threshold is met")
	assert.Zero(t, headless.calls)
}

func TestCascadeEscalatesToStructuredThenStops(t *testing.T) {
	l2 := attemptWith(LevelStructured, "", 0)
	l2.Rating = models.Float64(4.5)
	l2.ReviewCount = models.Int(1234)

	static := &fakeDocStrategy{level: LevelStatic, attempt: attemptWith(LevelStatic, "Garlic Press", 24.99)}
	structured := &fakeDocStrategy{level: LevelStructured, attempt: l2}
	headless := &fakeBrowserStrategy{}

	c := NewController(&fakeFetcher{html: "<html></html>"}, static, structured, headless, ControllerOptions{})
	result := c.Run(context.Background(), cascadeTarget())

	// Level 1 found title+price (quality 55), level 2 added rating+reviews.
	assert.Equal(t, 100, result.Quality)
	assert.Equal(t, LevelStructured, result.Level)
	assert.Equal(t, 1, static.calls)
	assert.Equal(t, 1, structured.calls)
	assert.Zero(t, headless.calls, "browser must not run at or above the escalate threshold")
	require.NotNil(t, result.Attempt.Title)
	assert.Equal(t, "Garlic Press", *result.Attempt.Title)
}

func TestCascadeEscalatesToBrowserBelowThreshold(t *testing.T) {
	static := &fakeDocStrategy{level: LevelStatic, attempt: attemptWith(LevelStatic, "Garlic Press", 0)}
	structured := &fakeDocStrategy{level: LevelStructured, attempt: attemptWith(LevelStructured, "", 0)}
	headless := &fakeBrowserStrategy{attempt: attemptWith(LevelHeadless, "", 24.99)}

	c := NewController(&fakeFetcher{html: "<html></html>"}, static, structured, headless, ControllerOptions{})
	result := c.Run(context.Background(), cascadeTarget())

	assert.Equal(t, 1, headless.calls, "quality 25 after the document levels must trigger the browser")
	assert.Equal(t, 55, result.Quality)
	assert.Equal(t, LevelHeadless, result.Level)
}

func TestCascadeFetchFailureSkipsToBrowser(t *testing.T) {
	static := &fakeDocStrategy{level: LevelStatic}
	structured := &fakeDocStrategy{level: LevelStructured}
	headless := &fakeBrowserStrategy{attempt: attemptWith(LevelHeadless, "Garlic Press", 24.99)}

	c := NewController(&fakeFetcher{err: errors.New("connection refused")}, static, structured, headless, ControllerOptions{})
	result := c.Run(context.Background(), cascadeTarget())

	assert.Zero(t, static.calls, "document levels need a document")
	assert.Zero(t, structured.calls)
	assert.Equal(t, 1, headless.calls)
	assert.True(t, result.Attempt.HasFlag(models.FlagFetchFailed))
	assert.Equal(t, 55, result.Quality)
}

func TestCascadeAlwaysReturnsResult(t *testing.T) {
	c := NewController(
		&fakeFetcher{err: errors.New("connection refused")},
		&fakeDocStrategy{level: LevelStatic},
		&fakeDocStrategy{level: LevelStructured},
		&fakeBrowserStrategy{err: errors.New("browser unavailable")},
		ControllerOptions{})

	result := c.Run(context.Background(), cascadeTarget())

	require.NotNil(t, result.Attempt)
	assert.Equal(t, 0, result.Quality)
	assert.Nil(t, result.Attempt.Title)
	assert.Nil(t, result.Attempt.Price)
	assert.Equal(t, Terminated, result.State)
}

func TestCascadeNavigationTimeoutYieldsEmptyLevelFourRecord(t *testing.T) {
	timedOut := models.NewAttempt("Amazon", "https://www.amazon.com/dp/B01", LevelHeadless)
	timedOut.Flags = []models.ConfidenceFlag{models.FlagNavigationTimeout}

	c := NewController(
		&fakeFetcher{err: errors.New("connection reset")},
		&fakeDocStrategy{level: LevelStatic},
		&fakeDocStrategy{level: LevelStructured},
		&fakeBrowserStrategy{attempt: timedOut},
		ControllerOptions{})

	result := c.Run(context.Background(), cascadeTarget())

	require.NotNil(t, result.Attempt)
	assert.Nil(t, result.Attempt.Title)
	assert.Nil(t, result.Attempt.Price)
	assert.Equal(t, LevelHeadless, result.Level)
	assert.True(t, result.Attempt.HasFlag(models.FlagNavigationTimeout))
}

func TestCascadeWithoutBrowserStrategyDegrades(t *testing.T) {
	static := &fakeDocStrategy{level: LevelStatic, attempt: attemptWith(LevelStatic, "Garlic Press", 0)}
	structured := &fakeDocStrategy{level: LevelStructured, attempt: attemptWith(LevelStructured, "", 0)}

	c := NewController(&fakeFetcher{html: "<html></html>"}, static, structured, nil, ControllerOptions{})
	result := c.Run(context.Background(), cascadeTarget())

	require.NotNil(t, result.Attempt)
	assert.Equal(t, 25, result.Quality)
}

func TestCascadeRealParsersMergeAcrossLevels(t *testing.T) {
	// The DOM carries title and price, the JSON-LD block carries rating and
	// reviews: level 1 alone is below the stop threshold, level 2 completes
	// the record without ever touching the browser.
	html := `<html><head>
<script type="application/ld+json">
{"@type": "Product", "name": "Garlic Press Deluxe",
 "aggregateRating": {"ratingValue": 4.6, "reviewCount": 2100}}
</script>
</head><body>
<span id="productTitle">Stainless Steel Garlic Press</span>
<span class="a-price"><span class="a-offscreen">$24.99</span></span>
</body></html>`

	headless := &fakeBrowserStrategy{}
	c := NewController(&fakeFetcher{html: html}, NewStatic(), NewStructured(), headless, ControllerOptions{})

	result := c.Run(context.Background(), cascadeTarget())

	assert.Equal(t, 100, result.Quality)
	assert.Equal(t, LevelStructured, result.Level)
	assert.Zero(t, headless.calls)
	require.NotNil(t, result.Attempt.Title)
	assert.Equal(t, "Stainless Steel Garlic Press", *result.Attempt.Title, "level 1 title wins over the JSON-LD name")
	require.NotNil(t, result.Attempt.Price)
	assert.InDelta(t, 24.99, *result.Attempt.Price, 1e-9)
	require.NotNil(t, result.Attempt.Rating)
	assert.InDelta(t, 4.6, *result.Attempt.Rating, 1e-9)
	require.NotNil(t, result.Attempt.ReviewCount)
	assert.Equal(t, 2100, *result.Attempt.ReviewCount)
}

func TestCascadeCustomThresholds(t *testing.T) {
	// With a stop threshold of 20, a title alone ends the cascade at level 1.
	static := &fakeDocStrategy{level: LevelStatic, attempt: attemptWith(LevelStatic, "Garlic Press", 0)}
	structured := &fakeDocStrategy{level: LevelStructured}

	c := NewController(&fakeFetcher{html: "<html></html>"}, static, structured, nil,
		ControllerOptions{StopThreshold: 20, EscalateThreshold: 20})
	result := c.Run(context.Background(), cascadeTarget())

	assert.Equal(t, 25, result.Quality)
	assert.Zero(t, structured.calls)
}
