// Package analyzer orchestrates one analysis request end to end: classify
// the target, run the extraction cascade, normalize the signals, gather
// competitor evidence and score the verdict.
package analyzer

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dropradar/dropradar/internal/extract"
	"github.com/dropradar/dropradar/internal/models"
	"github.com/dropradar/dropradar/internal/normalize"
	"github.com/dropradar/dropradar/internal/platform"
	"github.com/dropradar/dropradar/internal/scoring"
)

// Request is the input contract from the delivery layer: a product URL or
// a free-text product name, plus an optional competitor fan-out override.
type Request struct {
	Query           string `json:"query"`
	CompetitorCount int    `json:"competitor_count,omitempty"`
}

// Cascade is the extraction engine surface the analyzer drives.
type Cascade interface {
	Run(ctx context.Context, target extract.Target) extract.Result
}

// Aggregator collects rival-platform evidence for a primary product.
type Aggregator interface {
	Collect(ctx context.Context, primaryPlatform, title string, max int) []extract.Result
}

// Service wires the core pipeline. It holds no per-request state; every
// call produces a fresh AnalysisRecord.
type Service struct {
	cascade    Cascade
	aggregator Aggregator
	converter  *normalize.CurrencyConverter
	engine     *scoring.Engine
	logger     *slog.Logger
}

func NewService(cascade Cascade, aggregator Aggregator, converter *normalize.CurrencyConverter, engine *scoring.Engine) *Service {
	return &Service{
		cascade:    cascade,
		aggregator: aggregator,
		converter:  converter,
		engine:     engine,
		logger:     slog.Default().With("component", "analyzer"),
	}
}

// Analyze runs the full pipeline. It never returns an error: extraction
// failure degrades to an insufficient-data verdict, mirroring the cascade's
// always-return contract.
func (s *Service) Analyze(ctx context.Context, req Request) *models.AnalysisRecord {
	target := s.resolveTarget(req.Query)
	s.logger.Info("analysis started", "query", req.Query,
		"platform", target.Profile.Name(), "url", target.URL)

	primary := s.cascade.Run(ctx, target)

	var products []models.NormalizedProduct
	if usable(primary.Attempt) {
		products = append(products, normalize.Product(primary.Attempt, s.converter))
	}

	if s.aggregator != nil && primary.Attempt.Title != nil {
		rivals := s.aggregator.Collect(ctx, target.Profile.Name(), *primary.Attempt.Title, req.CompetitorCount)
		for _, rival := range rivals {
			if usable(rival.Attempt) {
				products = append(products, normalize.Product(rival.Attempt, s.converter))
			}
		}
	}

	products = normalize.Dedup(products)
	summary := s.engine.Evaluate(products)

	record := &models.AnalysisRecord{
		ID:               uuid.NewString(),
		Query:            req.Query,
		Verdict:          summary.Verdict,
		Confidence:       summary.Confidence,
		CompositeScore:   summary.Opportunity,
		SaturationScore:  summary.Saturation,
		Demand:           summary.Demand,
		RiskScore:        summary.Risk,
		RiskLevel:        summary.RiskLevel,
		CompetitionLevel: summary.CompetitionLevel,
		PriceTier:        summary.Tier,
		ProfitScenarios:  summary.Scenarios,
		Recommendation:   summary.Recommendation,
		Sources:          products,
		CreatedAt:        time.Now().UTC(),
	}

	s.logger.Info("analysis complete", "query", req.Query,
		"verdict", record.Verdict, "confidence", record.Confidence,
		"sources", len(record.Sources), "extraction_level", primary.Level,
		"extraction_quality", primary.Quality)
	return record
}

// resolveTarget treats queries with a URL shape as direct targets and
// everything else as a product search on the default marketplace.
func (s *Service) resolveTarget(query string) extract.Target {
	trimmed := strings.TrimSpace(query)
	if looksLikeURL(trimmed) {
		profile, currency := platform.Classify(trimmed)
		if !strings.Contains(trimmed, "://") {
			trimmed = "https://" + trimmed
		}
		return extract.Target{URL: trimmed, Profile: profile, Currency: currency}
	}

	profile := platform.Amazon()
	return extract.Target{
		URL:      profile.SearchURL(trimmed),
		Profile:  profile,
		Currency: platform.BaseCurrency,
	}
}

func looksLikeURL(s string) bool {
	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		return err == nil && u.Host != ""
	}
	// Bare domains like "amazon.com/dp/B0..." still count.
	head := s
	if i := strings.IndexByte(s, '/'); i > 0 {
		head = s[:i]
	}
	return strings.Contains(head, ".") && !strings.Contains(head, " ")
}

// usable filters attempts that produced no identifying signal at all.
func usable(a *models.ExtractionAttempt) bool {
	return a != nil && (a.Title != nil || a.Price != nil)
}
