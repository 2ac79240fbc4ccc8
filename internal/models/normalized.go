package models

// NormalizedProduct is an ExtractionAttempt after currency conversion to the
// base currency and title normalization. It is the unit the scoring engine
// consumes.
type NormalizedProduct struct {
	Platform        string  `json:"platform"`
	Title           string  `json:"title"`
	NormalizedTitle string  `json:"normalized_title"`
	PriceBase       float64 `json:"price_base"`
	Reviews         int     `json:"reviews"`
	Rating          float64 `json:"rating"`
	HasRating       bool    `json:"has_rating"`
	URL             string  `json:"url"`
}

// DedupKey identifies a listing: two products with the same key are the
// same listing regardless of source.
func (p *NormalizedProduct) DedupKey() string {
	return p.NormalizedTitle + "|" + p.Platform
}
