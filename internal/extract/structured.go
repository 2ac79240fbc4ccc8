package extract

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dropradar/dropradar/internal/models"
)

// Structured is the level-2 strategy: JSON-LD product metadata embedded in
// the same document level 1 already fetched. Each script block is parsed
// independently; one corrupt block never hides a valid one elsewhere.
type Structured struct {
	logger *slog.Logger
}

func NewStructured() *Structured {
	return &Structured{logger: slog.Default().With("component", "structured_parser")}
}

func (s *Structured) Level() int { return LevelStructured }

func (s *Structured) Extract(doc *goquery.Document, target Target) *models.ExtractionAttempt {
	attempt := models.NewAttempt(target.Profile.Name(), target.URL, LevelStructured)
	attempt.Currency = target.Currency

	doc.Find("script[type='application/ld+json']").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var raw any
		if err := json.Unmarshal([]byte(sel.Text()), &raw); err != nil {
			s.logger.Debug("skipping malformed json-ld block", "url", target.URL, "error", err)
			attempt.Flags = append(attempt.Flags, models.FlagPartialParse)
			return true
		}
		if product := findProductNode(raw); product != nil {
			s.fillFromProduct(attempt, product)
			return false
		}
		return true
	})

	return attempt
}

// findProductNode walks a decoded JSON-LD value looking for a node of
// @type Product. Handles top-level objects, arrays and @graph containers.
func findProductNode(raw any) map[string]any {
	switch v := raw.(type) {
	case map[string]any:
		if isProductType(v["@type"]) {
			return v
		}
		if graph, ok := v["@graph"].([]any); ok {
			return findProductNode(graph)
		}
	case []any:
		for _, item := range v {
			if node := findProductNode(item); node != nil {
				return node
			}
		}
	}
	return nil
}

func isProductType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "Product"
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "Product" {
				return true
			}
		}
	}
	return false
}

func (s *Structured) fillFromProduct(attempt *models.ExtractionAttempt, product map[string]any) {
	if name, ok := product["name"].(string); ok && strings.TrimSpace(name) != "" {
		attempt.Title = models.String(strings.TrimSpace(name))
	}

	if offer := firstOffer(product["offers"]); offer != nil {
		if price := jsonNumber(offer["price"]); price != nil && *price > 0 {
			attempt.Price = price
		}
		if price := jsonNumber(offer["lowPrice"]); attempt.Price == nil && price != nil && *price > 0 {
			attempt.Price = price
		}
		if currency, ok := offer["priceCurrency"].(string); ok && currency != "" {
			attempt.Currency = currency
		}
	}

	if agg, ok := product["aggregateRating"].(map[string]any); ok {
		if rating := jsonNumber(agg["ratingValue"]); rating != nil && *rating > 0 && *rating <= 5 {
			attempt.Rating = rating
		}
		count := jsonNumber(agg["reviewCount"])
		if count == nil {
			count = jsonNumber(agg["ratingCount"])
		}
		if count != nil && *count > 0 {
			attempt.ReviewCount = models.Int(int(*count))
		}
	}

	switch img := product["image"].(type) {
	case string:
		if img != "" {
			attempt.Images = []string{img}
		}
	case []any:
		for _, item := range img {
			if url, ok := item.(string); ok && url != "" {
				attempt.Images = append(attempt.Images, url)
			}
		}
	}
}

// firstOffer normalizes the offers field, which may be a single Offer, an
// AggregateOffer or an array of either.
func firstOffer(offers any) map[string]any {
	switch v := offers.(type) {
	case map[string]any:
		return v
	case []any:
		for _, item := range v {
			if offer, ok := item.(map[string]any); ok {
				return offer
			}
		}
	}
	return nil
}

// jsonNumber reads a JSON value that sites encode either as a number or as
// a numeric string.
func jsonNumber(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		return &parsed
	}
	return nil
}
