package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropradar/dropradar/internal/platform"
)

const amazonProductHTML = `<html><body>
<span id="productTitle"> Stainless Steel Garlic Press </span>
<span class="a-price"><span class="a-offscreen">$24.99</span></span>
<span id="acrPopover" title="4.5 out of 5 stars"></span>
<span id="acrCustomerReviewText">1,234 ratings</span>
</body></html>`

func TestStaticExtractAmazon(t *testing.T) {
	doc := mustDoc(t, amazonProductHTML)
	target := Target{URL: "https://www.amazon.com/dp/B01", Profile: platform.Amazon(), Currency: "USD"}

	attempt := NewStatic().Extract(doc, target)

	require.NotNil(t, attempt.Title)
	assert.Equal(t, "Stainless Steel Garlic Press", *attempt.Title)
	require.NotNil(t, attempt.Price)
	assert.InDelta(t, 24.99, *attempt.Price, 1e-9)
	require.NotNil(t, attempt.Rating)
	assert.InDelta(t, 4.5, *attempt.Rating, 1e-9)
	require.NotNil(t, attempt.ReviewCount)
	assert.Equal(t, 1234, *attempt.ReviewCount)
	assert.Equal(t, LevelStatic, attempt.StrategyLevel)
	assert.Equal(t, "Amazon", attempt.Platform)
	assert.Equal(t, "USD", attempt.Currency)
}

func TestStaticExtractFallbacks(t *testing.T) {
	html := `<html><head><title>Ceramic Vase - Example Shop</title></head><body>
<div itemprop="price" content="120.00"></div>
</body></html>`
	doc := mustDoc(t, html)
	profile, currency := platform.Classify("https://coolgadgets.com/products/vase")
	target := Target{URL: "https://coolgadgets.com/products/vase", Profile: profile, Currency: currency}

	attempt := NewStatic().Extract(doc, target)

	require.NotNil(t, attempt.Title)
	assert.Equal(t, "Ceramic Vase - Example Shop", *attempt.Title)
	require.NotNil(t, attempt.Price)
	assert.InDelta(t, 120.00, *attempt.Price, 1e-9)
}

func TestStaticExtractNeverFails(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{"empty document", ""},
		{"no product markup", "<html><body><p>nothing here</p></body></html>"},
		{"broken markup", "<div><span>$9.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustDoc(t, tt.html)
			target := Target{URL: "https://example.com", Profile: platform.Generic("Unknown Platform", ""), Currency: "USD"}

			attempt := NewStatic().Extract(doc, target)

			require.NotNil(t, attempt)
			assert.Equal(t, LevelStatic, attempt.StrategyLevel)
		})
	}
}

func TestStaticLeavesMissingFieldsNil(t *testing.T) {
	html := `<html><body><h1>Mystery Gadget</h1></body></html>`
	doc := mustDoc(t, html)
	target := Target{URL: "https://example.com/p/1", Profile: platform.Generic("Example", "example.com"), Currency: "USD"}

	attempt := NewStatic().Extract(doc, target)

	require.NotNil(t, attempt.Title)
	assert.Equal(t, "Mystery Gadget", *attempt.Title)
	assert.Nil(t, attempt.Price)
	assert.Nil(t, attempt.Rating)
	assert.Nil(t, attempt.ReviewCount)
}
