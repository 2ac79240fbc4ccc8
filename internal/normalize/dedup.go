package normalize

import (
	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"github.com/dropradar/dropradar/internal/models"
)

// SimilarityThreshold is the normalized-title similarity above which two
// same-platform listings are treated as the same product.
const SimilarityThreshold = 0.85

// Dedup collapses duplicate listings. Two records are the same listing when
// their URLs match exactly, or when they sit on the same platform and their
// normalized titles are at least SimilarityThreshold similar. Ties keep the
// first-seen record.
func Dedup(products []models.NormalizedProduct) []models.NormalizedProduct {
	metric := metrics.NewJaroWinkler()
	kept := make([]models.NormalizedProduct, 0, len(products))

	for _, candidate := range products {
		duplicate := false
		for _, existing := range kept {
			if candidate.URL != "" && candidate.URL == existing.URL {
				duplicate = true
				break
			}
			if candidate.Platform == existing.Platform &&
				strutil.Similarity(candidate.NormalizedTitle, existing.NormalizedTitle, metric) >= SimilarityThreshold {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, candidate)
		}
	}

	return kept
}

// Product converts a merged extraction attempt into a normalized product
// ready for scoring.
func Product(a *models.ExtractionAttempt, conv *CurrencyConverter) models.NormalizedProduct {
	p := models.NormalizedProduct{
		Platform: a.Platform,
		URL:      a.URL,
	}
	if a.Title != nil {
		p.Title = *a.Title
		p.NormalizedTitle = Title(*a.Title)
	}
	if a.Price != nil {
		p.PriceBase = conv.ToBase(*a.Price, a.Currency)
	}
	if a.ReviewCount != nil {
		p.Reviews = *a.ReviewCount
	}
	if a.Rating != nil && *a.Rating > 0 {
		p.Rating = *a.Rating
		p.HasRating = true
	}
	return p
}
