package scoring

import (
	"math"

	"github.com/dropradar/dropradar/internal/models"
)

// setStats are the aggregate signals every sub-scorer reads. Computing them
// once keeps the sub-scorers pure functions of the same inputs.
type setStats struct {
	listings    int
	platforms   int
	avgReviews  float64
	avgRating   float64
	ratingCount int
	avgPrice    float64
	priceCV     float64
}

func computeStats(products []models.NormalizedProduct) setStats {
	s := setStats{listings: len(products)}
	if s.listings == 0 {
		return s
	}

	seen := make(map[string]struct{})
	var reviewSum, ratingSum, priceSum float64
	prices := make([]float64, 0, len(products))

	for _, p := range products {
		if _, ok := seen[p.Platform]; !ok {
			seen[p.Platform] = struct{}{}
			s.platforms++
		}
		reviewSum += float64(p.Reviews)
		if p.HasRating {
			ratingSum += p.Rating
			s.ratingCount++
		}
		if p.PriceBase > 0 {
			priceSum += p.PriceBase
			prices = append(prices, p.PriceBase)
		}
	}

	s.avgReviews = reviewSum / float64(s.listings)
	if s.ratingCount > 0 {
		s.avgRating = ratingSum / float64(s.ratingCount)
	}
	if len(prices) > 0 {
		s.avgPrice = priceSum / float64(len(prices))
	}
	s.priceCV = coefficientOfVariation(prices, s.avgPrice)
	return s
}

// coefficientOfVariation is population standard deviation over mean.
// Fewer than two prices carry no variation signal, so the result is 0.
func coefficientOfVariation(prices []float64, mean float64) float64 {
	if len(prices) < 2 || mean <= 0 {
		return 0
	}
	var sumSq float64
	for _, p := range prices {
		d := p - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq/float64(len(prices))) / mean
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
