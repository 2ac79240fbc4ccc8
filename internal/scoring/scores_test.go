package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dropradar/dropradar/internal/models"
)

// threeAmazonListings is a crowded single-platform market with heavy review
// volume and near-identical pricing.
func threeAmazonListings() []models.NormalizedProduct {
	return []models.NormalizedProduct{
		{Platform: "Amazon", NormalizedTitle: "garlic press a", PriceBase: 24.99, Reviews: 1200},
		{Platform: "Amazon", NormalizedTitle: "garlic press b", PriceBase: 25.49, Reviews: 980},
		{Platform: "Amazon", NormalizedTitle: "garlic press c", PriceBase: 23.99, Reviews: 1500},
	}
}

func singleQuietListing() []models.NormalizedProduct {
	return []models.NormalizedProduct{
		{Platform: "Shopify", NormalizedTitle: "ceramic vase", PriceBase: 120.00, Reviews: 5},
	}
}

func TestSaturation(t *testing.T) {
	tests := []struct {
		name     string
		products []models.NormalizedProduct
		expected int
	}{
		{"empty set", nil, 0},
		{"crowded single platform", threeAmazonListings(), 83},
		{"single quiet listing", singleQuietListing(), 23},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Saturation(tt.products))
		})
	}
}

func TestSaturationPriceTightnessBuckets(t *testing.T) {
	base := func(prices ...float64) []models.NormalizedProduct {
		products := make([]models.NormalizedProduct, len(prices))
		for i, p := range prices {
			products[i] = models.NormalizedProduct{Platform: "Amazon", PriceBase: p}
		}
		return products
	}

	// Platform and listing components are identical across cases; only the
	// tightness factor moves the score.
	tight := Saturation(base(10.00, 10.10))   // cv well under 0.10
	mid := Saturation(base(10.00, 13.00))     // cv around 0.13
	loose := Saturation(base(10.00, 18.00))   // cv around 0.29
	chaotic := Saturation(base(10.00, 40.00)) // cv around 0.60

	assert.Equal(t, tight-mid, tightnessMax-tightnessMid)
	assert.Equal(t, mid-loose, tightnessMid-tightnessLoose)
	assert.Equal(t, loose-chaotic, tightnessLoose)
}

func TestSaturationSingleListingHasNoTightnessSignal(t *testing.T) {
	one := []models.NormalizedProduct{{Platform: "Amazon", PriceBase: 10.00}}
	assert.Equal(t, platformWeight+listingWeight, Saturation(one))
}

func TestDemand(t *testing.T) {
	tests := []struct {
		name     string
		products []models.NormalizedProduct
		expected models.Demand
	}{
		{
			name:     "empty set is weak",
			products: nil,
			expected: models.Demand{Level: models.DemandWeak},
		},
		{
			name:     "heavy reviews without ratings hit the review cap",
			products: threeAmazonListings(),
			expected: models.Demand{Level: models.DemandStrong, Score: 70},
		},
		{
			name:     "a handful of reviews scores zero",
			products: singleQuietListing(),
			expected: models.Demand{Level: models.DemandWeak, Score: 0},
		},
		{
			name: "rating contributes up to its cap",
			products: []models.NormalizedProduct{
				{Platform: "Amazon", Reviews: 300, Rating: 4.8, HasRating: true},
			},
			expected: models.Demand{Level: models.DemandModerate, Score: 48},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Demand(tt.products))
		})
	}
}

func TestTier(t *testing.T) {
	tests := []struct {
		price    float64
		expected models.PriceTier
	}{
		{0, models.TierBudget},
		{19.99, models.TierBudget},
		{20.00, models.TierMidRange},
		{49.99, models.TierMidRange},
		{50.00, models.TierPremium},
		{149.99, models.TierPremium},
		{150.00, models.TierLuxury},
		{999.00, models.TierLuxury},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Tier(tt.price), "price %.2f", tt.price)
	}
}

func TestScenarios(t *testing.T) {
	got := Scenarios(100.00)

	assert.Equal(t, models.ProfitScenarios{
		Worst:   10.50,
		Average: 25.50,
		Best:    40.50,
	}, got)

	assert.Equal(t, models.ProfitScenarios{}, Scenarios(0))
	assert.Equal(t, models.ProfitScenarios{}, Scenarios(-5))
}

func TestScenariosCanGoNegative(t *testing.T) {
	// A $10 product cannot absorb fixed shipping plus worst-case ad spend.
	got := Scenarios(10.00)

	assert.Equal(t, 0.00, got.Best)
	assert.Equal(t, -1.50, got.Average)
	assert.Equal(t, -3.00, got.Worst)
}
