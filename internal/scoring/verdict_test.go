package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dropradar/dropradar/internal/models"
)

func TestDecideBoundary(t *testing.T) {
	tests := []struct {
		name               string
		opportunity, risk  int
		expectedVerdict    models.Verdict
		expectedConfidence models.Confidence
	}{
		{"scale boundary is inclusive on opportunity", 60, 49, models.VerdictScale, models.ConfidenceHigh},
		{"scale boundary is strict on risk", 60, 50, models.VerdictTest, models.ConfidenceMedium},
		{"high opportunity high risk demotes to test", 80, 55, models.VerdictTest, models.ConfidenceMedium},
		{"test floor is strict", 35, 10, models.VerdictKill, models.ConfidenceLow},
		{"just above test floor", 36, 10, models.VerdictTest, models.ConfidenceMedium},
		{"test risk ceiling is strict", 50, 70, models.VerdictKill, models.ConfidenceLow},
		{"zero everything kills", 0, 0, models.VerdictKill, models.ConfidenceLow},
	}

	var thresholds Thresholds
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, confidence := thresholds.Decide(tt.opportunity, tt.risk)
			assert.Equal(t, tt.expectedVerdict, verdict)
			assert.Equal(t, tt.expectedConfidence, confidence)
		})
	}
}

func TestEvaluateCrowdedMarket(t *testing.T) {
	engine := NewEngine(Thresholds{})

	summary := engine.Evaluate(threeAmazonListings())

	assert.Equal(t, 83, summary.Saturation)
	assert.Equal(t, models.Demand{Level: models.DemandStrong, Score: 70}, summary.Demand)
	assert.Equal(t, models.TierMidRange, summary.Tier)
	assert.Equal(t, 42, summary.Risk)
	assert.Equal(t, models.RiskModerate, summary.RiskLevel)
	assert.Equal(t, 37, summary.Opportunity)
	assert.Equal(t, models.CompetitionHigh, summary.CompetitionLevel)
	assert.Equal(t, models.VerdictTest, summary.Verdict)
	assert.Equal(t, models.ConfidenceMedium, summary.Confidence)
	assert.InDelta(t, 24.82, summary.AveragePrice, 0.01)
	assert.NotEmpty(t, summary.Recommendation)
}

func TestEvaluateSingleQuietListing(t *testing.T) {
	engine := NewEngine(Thresholds{})

	summary := engine.Evaluate(singleQuietListing())

	assert.Equal(t, 23, summary.Saturation)
	assert.Equal(t, models.Demand{Level: models.DemandWeak, Score: 0}, summary.Demand)
	assert.Equal(t, models.TierPremium, summary.Tier)
	assert.Equal(t, 39, summary.Risk)
	assert.Equal(t, models.RiskLow, summary.RiskLevel)
	assert.Equal(t, 25, summary.Opportunity)
	assert.Equal(t, models.CompetitionLow, summary.CompetitionLevel)
	assert.Equal(t, models.VerdictKill, summary.Verdict)
	assert.Equal(t, models.ConfidenceLow, summary.Confidence)
}

func TestEvaluateEmptySet(t *testing.T) {
	engine := NewEngine(Thresholds{})

	summary := engine.Evaluate(nil)

	assert.Equal(t, models.VerdictKill, summary.Verdict)
	assert.Equal(t, models.ConfidenceLow, summary.Confidence)
	assert.Equal(t, 0, summary.Opportunity)
	assert.Equal(t, 0, summary.Risk)
	assert.Equal(t, insufficientDataText, summary.Recommendation)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	engine := NewEngine(Thresholds{})
	products := threeAmazonListings()

	first := engine.Evaluate(products)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, engine.Evaluate(products))
	}
}

func TestEvaluateBudgetTierCarriesRiskPenalty(t *testing.T) {
	budget := []models.NormalizedProduct{
		{Platform: "Amazon", NormalizedTitle: "phone ring holder", PriceBase: 5.99, Reviews: 150},
	}
	premium := []models.NormalizedProduct{
		{Platform: "Amazon", NormalizedTitle: "espresso machine", PriceBase: 99.00, Reviews: 150},
	}

	engine := NewEngine(Thresholds{})
	budgetSummary := engine.Evaluate(budget)
	premiumSummary := engine.Evaluate(premium)

	// Same market stats, different tier: only the budget penalty separates
	// the two risk scores.
	assert.Equal(t, budgetTierPenalty, budgetSummary.Risk-premiumSummary.Risk)
	assert.Equal(t, models.TierBudget, budgetSummary.Tier)
	assert.Equal(t, models.TierPremium, premiumSummary.Tier)
}

func TestThresholdOverrides(t *testing.T) {
	// A stricter board: scaling demands opportunity 80 and risk under 30.
	engine := NewEngine(Thresholds{ScaleOpportunityMin: 80, ScaleRiskCeiling: 30})

	verdict, _ := engine.thresholds.Decide(79, 20)
	assert.Equal(t, models.VerdictTest, verdict)

	verdict, confidence := engine.thresholds.Decide(80, 29)
	assert.Equal(t, models.VerdictScale, verdict)
	assert.Equal(t, models.ConfidenceHigh, confidence)
}
