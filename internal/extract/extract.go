// Package extract implements the cascading extraction engine: a static
// document parser, a structured-data parser and a headless browser
// extractor, escalated in cost order by the cascade controller until the
// quality gate is satisfied.
package extract

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dropradar/dropradar/internal/models"
	"github.com/dropradar/dropradar/internal/platform"
)

var (
	ErrChallengeDetected = errors.New("bot challenge detected")
	ErrNavigationFailed  = errors.New("navigation failed")
)

// Strategy levels in escalation order. Level 3 (pattern intelligence) is
// reserved; its intent is covered by the structured-data level.
const (
	LevelStatic     = 1
	LevelStructured = 2
	LevelHeadless   = 4
)

// Target is one extraction objective: a URL plus the platform profile and
// currency hint the classifier assigned to it.
type Target struct {
	URL      string
	Profile  platform.Profile
	Currency string
}

// DocumentStrategy extracts from an already-fetched document. Missing
// fields stay nil; document strategies never fail.
type DocumentStrategy interface {
	Level() int
	Extract(doc *goquery.Document, target Target) *models.ExtractionAttempt
}

// BrowserStrategy renders the page before extracting. It may fail outright
// (navigation timeout, no browser available); the controller degrades
// rather than propagating.
type BrowserStrategy interface {
	Extract(ctx context.Context, target Target) (*models.ExtractionAttempt, error)
}

// Fetcher retrieves the raw document the document strategies share.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

var (
	priceRe   = regexp.MustCompile(`(\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{1,2})?|\d+(?:[.,]\d{1,2})?)`)
	ratingRe  = regexp.MustCompile(`(\d(?:[.,]\d{1,2})?)\s*(?:out of|von|/|of)?\s*5?`)
	countRe   = regexp.MustCompile(`([\d.,]+)`)
	digitOnly = regexp.MustCompile(`[^\d]`)
)

// parsePrice extracts a numeric price from noisy text such as "$1,299.99",
// "24,99 €" or "US $12.50". Returns nil when no plausible amount is found.
func parsePrice(text string) *float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	match := priceRe.FindString(text)
	if match == "" {
		return nil
	}

	// Decide which separator is the decimal point. When both appear the
	// last one wins; a lone comma followed by exactly two digits is a
	// European decimal comma.
	lastDot := strings.LastIndex(match, ".")
	lastComma := strings.LastIndex(match, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			match = strings.ReplaceAll(match, ".", "")
			match = strings.Replace(match, ",", ".", 1)
		} else {
			match = strings.ReplaceAll(match, ",", "")
		}
	case lastComma >= 0:
		decimals := len(match) - lastComma - 1
		if decimals == 2 {
			match = strings.Replace(match, ",", ".", 1)
		} else {
			match = strings.ReplaceAll(match, ",", "")
		}
	}

	value, err := strconv.ParseFloat(match, 64)
	if err != nil || value <= 0 {
		return nil
	}
	return &value
}

// parseRating extracts a 0-5 star rating from text like "4.3 out of 5
// stars" or "4,5 von 5".
func parseRating(text string) *float64 {
	match := ratingRe.FindStringSubmatch(strings.TrimSpace(text))
	if len(match) < 2 {
		return nil
	}
	raw := strings.Replace(match[1], ",", ".", 1)
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value <= 0 || value > 5 {
		return nil
	}
	return &value
}

// parseCount extracts an integer count from text like "1,234 ratings".
func parseCount(text string) *int {
	match := countRe.FindString(strings.TrimSpace(text))
	if match == "" {
		return nil
	}
	cleaned := digitOnly.ReplaceAllString(match, "")
	if cleaned == "" {
		return nil
	}
	value, err := strconv.Atoi(cleaned)
	if err != nil || value <= 0 {
		return nil
	}
	return &value
}

// firstText returns the first non-empty trimmed text matched by any of the
// selectors, in order.
func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		text := strings.TrimSpace(doc.Find(sel).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}
