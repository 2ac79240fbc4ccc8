// Package competitor fans a primary product out to rival platforms so the
// verdict rests on cross-platform evidence instead of a single listing.
package competitor

import (
	"context"
	"log/slog"

	"github.com/dropradar/dropradar/internal/extract"
	"github.com/dropradar/dropradar/internal/platform"
	"github.com/dropradar/dropradar/internal/ratelimit"
)

// Cascade is the slice of the extraction engine the aggregator drives.
type Cascade interface {
	Run(ctx context.Context, target extract.Target) extract.Result
}

// Options bound the aggregation fan-out.
type Options struct {
	// MaxCompetitors caps usable records collected (1-2 rivals typical).
	MaxCompetitors int
	// MinUsableQuality is the floor below which a competitor record is
	// discarded as noise.
	MinUsableQuality int
}

// rivalTable lists which platforms to consult for cross-validation, per
// primary platform. Order matters: earlier rivals are tried first.
var rivalTable = map[string][]string{
	"Amazon":  {"eBay", "AliExpress"},
	"eBay":    {"Amazon", "AliExpress"},
	"Shopify": {"Amazon", "eBay"},
}

var defaultRivals = []string{"Amazon", "eBay"}

// Aggregator runs the full cascade against rival platforms.
type Aggregator struct {
	cascade Cascade
	limiter ratelimit.RateLimiter
	opts    Options
	logger  *slog.Logger
}

func NewAggregator(cascade Cascade, limiter ratelimit.RateLimiter, opts Options) *Aggregator {
	if opts.MaxCompetitors <= 0 {
		opts.MaxCompetitors = 2
	}
	if opts.MinUsableQuality <= 0 {
		opts.MinUsableQuality = 40
	}
	return &Aggregator{
		cascade: cascade,
		limiter: limiter,
		opts:    opts,
		logger:  slog.Default().With("component", "competitor_aggregator"),
	}
}

// Collect searches rival platforms for the primary product title and
// returns the usable extraction results. Each rival is independent: one
// platform failing or returning junk never aborts the others. Collection
// stops early once enough usable records are in hand; max <= 0 selects the
// configured default.
func (a *Aggregator) Collect(ctx context.Context, primaryPlatform, title string, max int) []extract.Result {
	if title == "" {
		return nil
	}
	if max <= 0 || max > a.opts.MaxCompetitors {
		max = a.opts.MaxCompetitors
	}

	rivals, ok := rivalTable[primaryPlatform]
	if !ok {
		rivals = defaultRivals
	}

	var results []extract.Result
	for _, rival := range rivals {
		if len(results) >= max {
			break
		}
		if ctx.Err() != nil {
			break
		}

		if a.limiter != nil {
			if err := a.limiter.Wait(ctx); err != nil {
				break
			}
		}

		profile := platform.ByName(rival)
		target := extract.Target{
			URL:      profile.SearchURL(title),
			Profile:  profile,
			Currency: platform.BaseCurrency,
		}

		result := a.cascade.Run(ctx, target)
		if result.Quality <= a.opts.MinUsableQuality {
			a.logger.Info("discarding low-quality competitor record",
				"platform", rival, "quality", result.Quality)
			continue
		}

		a.logger.Info("collected competitor record",
			"platform", rival, "quality", result.Quality)
		results = append(results, result)
	}

	return results
}
