package extract

import (
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dropradar/dropradar/internal/models"
)

// Static is the level-1 strategy: selector-based extraction from a fetched
// document, no JavaScript execution. Selector lists come from the platform
// profile, so new storefront layouts are configuration changes.
type Static struct {
	logger *slog.Logger
}

func NewStatic() *Static {
	return &Static{logger: slog.Default().With("component", "static_parser")}
}

func (s *Static) Level() int { return LevelStatic }

// Extract pulls title, price, rating and review count out of the document.
// Any field that cannot be found is simply left nil.
func (s *Static) Extract(doc *goquery.Document, target Target) *models.ExtractionAttempt {
	attempt := models.NewAttempt(target.Profile.Name(), target.URL, LevelStatic)
	attempt.Currency = target.Currency
	selectors := target.Profile.Selectors()

	title := firstText(doc, selectors.Title)
	if title == "" {
		// Fall back to the first heading, then the document title.
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if title != "" {
		attempt.Title = models.String(title)
	}

	for _, sel := range selectors.Price {
		if price := parsePrice(doc.Find(sel).First().Text()); price != nil {
			attempt.Price = price
			break
		}
	}
	if attempt.Price == nil {
		// Attribute form used by microdata-annotated storefronts.
		if content, ok := doc.Find("[itemprop='price']").First().Attr("content"); ok {
			attempt.Price = parsePrice(content)
		}
	}

	for _, sel := range selectors.Rating {
		text := doc.Find(sel).First().Text()
		if text == "" {
			if alt, ok := doc.Find(sel).First().Attr("title"); ok {
				text = alt
			}
		}
		if rating := parseRating(text); rating != nil {
			attempt.Rating = rating
			break
		}
	}

	for _, sel := range selectors.ReviewCount {
		if count := parseCount(doc.Find(sel).First().Text()); count != nil {
			attempt.ReviewCount = count
			break
		}
	}

	s.logger.Debug("static extraction done",
		"url", target.URL,
		"title_found", attempt.Title != nil,
		"price_found", attempt.Price != nil)
	return attempt
}
