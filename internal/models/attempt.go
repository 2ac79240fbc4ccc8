package models

import (
	"time"
)

// ConfidenceFlag marks a caveat observed while extracting.
type ConfidenceFlag string

const (
	FlagChallengeDetected ConfidenceFlag = "challenge_detected"
	FlagNavigationTimeout ConfidenceFlag = "navigation_timeout"
	FlagFetchFailed       ConfidenceFlag = "fetch_failed"
	FlagPartialParse      ConfidenceFlag = "partial_parse"
)

// ExtractionAttempt is one strategy's output for one URL. An attempt is
// immutable once produced; the cascade controller combines attempts with
// Merge, which only fills gaps.
type ExtractionAttempt struct {
	Platform      string           `json:"platform"`
	URL           string           `json:"url"`
	StrategyLevel int              `json:"strategy_level"`
	Title         *string          `json:"title,omitempty"`
	Price         *float64         `json:"price,omitempty"`
	Currency      string           `json:"currency"`
	Rating        *float64         `json:"rating,omitempty"`
	ReviewCount   *int             `json:"review_count,omitempty"`
	Images        []string         `json:"images,omitempty"`
	Flags         []ConfidenceFlag `json:"flags,omitempty"`
	ExtractedAt   time.Time        `json:"extracted_at"`
}

// NewAttempt returns an empty attempt stamped with platform, URL and level.
func NewAttempt(platform, url string, level int) *ExtractionAttempt {
	return &ExtractionAttempt{
		Platform:      platform,
		URL:           url,
		StrategyLevel: level,
		ExtractedAt:   time.Now(),
	}
}

// Merge fills fields of a that are still absent with values from b.
// A populated field is never overwritten, so earlier (cheaper) strategies
// always win for fields they managed to extract; later strategies only add.
// The strategy level advances to b's, since b is the latest attempt made.
func (a *ExtractionAttempt) Merge(b *ExtractionAttempt) {
	if b == nil {
		return
	}
	if b.StrategyLevel > a.StrategyLevel {
		a.StrategyLevel = b.StrategyLevel
	}
	if a.Title == nil && b.Title != nil {
		a.Title = b.Title
	}
	if a.Price == nil && b.Price != nil {
		a.Price = b.Price
	}
	if a.Rating == nil && b.Rating != nil {
		a.Rating = b.Rating
	}
	if a.ReviewCount == nil && b.ReviewCount != nil {
		a.ReviewCount = b.ReviewCount
	}
	if a.Currency == "" && b.Currency != "" {
		a.Currency = b.Currency
	}
	if len(a.Images) == 0 && len(b.Images) > 0 {
		a.Images = b.Images
	}
	a.Flags = append(a.Flags, b.Flags...)
}

// HasFlag reports whether the attempt carries the given flag.
func (a *ExtractionAttempt) HasFlag(flag ConfidenceFlag) bool {
	for _, f := range a.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// String / Float64 / Int are pointer helpers for building attempts.
func String(s string) *string    { return &s }
func Float64(f float64) *float64 { return &f }
func Int(i int) *int             { return &i }
