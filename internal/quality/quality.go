// Package quality scores how complete an extraction attempt is. The score
// gates cascade escalation and weights cross-platform trust.
package quality

import (
	"github.com/dropradar/dropradar/internal/models"
)

// Fixed point contributions per populated field.
const (
	TitlePoints   = 25
	PricePoints   = 30
	ReviewsPoints = 20
	RatingPoints  = 25

	MaxScore = 100
)

// Score computes a 0-100 completeness score for an attempt. It is a pure
// function of the record's populated fields and is monotonic: populating an
// additional field never lowers the score.
func Score(a *models.ExtractionAttempt) int {
	if a == nil {
		return 0
	}

	score := 0
	if a.Title != nil && *a.Title != "" {
		score += TitlePoints
	}
	if a.Price != nil && *a.Price > 0 {
		score += PricePoints
	}
	if a.ReviewCount != nil && *a.ReviewCount > 0 {
		score += ReviewsPoints
	}
	if a.Rating != nil && *a.Rating > 0 {
		score += RatingPoints
	}

	if score > MaxScore {
		score = MaxScore
	}
	return score
}
