// Command analyze runs a single product analysis from the terminal and
// prints the resulting record as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dropradar/dropradar/internal/analyzer"
	"github.com/dropradar/dropradar/internal/browser"
	"github.com/dropradar/dropradar/internal/competitor"
	"github.com/dropradar/dropradar/internal/config"
	"github.com/dropradar/dropradar/internal/extract"
	"github.com/dropradar/dropradar/internal/fetch"
	"github.com/dropradar/dropradar/internal/normalize"
	"github.com/dropradar/dropradar/internal/ratelimit"
	"github.com/dropradar/dropradar/internal/scoring"
)

func main() {
	query := flag.String("query", "", "product URL or free-text product name")
	competitors := flag.Int("competitors", 0, "max competitor platforms to consult (0 = default)")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall analysis timeout")
	flag.Parse()

	if *query == "" {
		fmt.Fprintln(os.Stderr, "usage: analyze -query <url or product name> [-competitors N]")
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	pool := browser.NewPool(browser.NewPlaywrightLauncher(cfg.Browser.Headless), browser.Options{
		MaxContexts:       cfg.Browser.MaxContexts,
		UserAgents:        cfg.Browser.UserAgents,
		MinViewportWidth:  cfg.Browser.MinViewportWidth,
		MaxViewportWidth:  cfg.Browser.MaxViewportWidth,
		MinViewportHeight: cfg.Browser.MinViewportHeight,
		MaxViewportHeight: cfg.Browser.MaxViewportHeight,
	})
	defer pool.Shutdown()

	fetcher := fetch.New(fetch.Options{
		Timeout:    cfg.Extraction.FetchTimeout,
		UserAgents: cfg.Browser.UserAgents,
	})
	headless := extract.NewHeadless(pool, extract.HeadlessOptions{
		NavigationTimeout:  cfg.Browser.NavigationTimeout,
		SettleTime:         cfg.Browser.SettleTime,
		HumanDelayMin:      cfg.Browser.HumanDelayMin,
		HumanDelayMax:      cfg.Browser.HumanDelayMax,
		ChallengeSelectors: cfg.Browser.ChallengeSelectors,
	})
	controller := extract.NewController(fetcher, extract.NewStatic(), extract.NewStructured(), headless,
		extract.ControllerOptions{
			StopThreshold:     cfg.Extraction.StopThreshold,
			EscalateThreshold: cfg.Extraction.EscalateThreshold,
		})
	limiter := ratelimit.NewJitteredLimiter(cfg.Competitor.DelayMin, cfg.Competitor.DelayMax, nil)
	aggregator := competitor.NewAggregator(controller, limiter, competitor.Options{
		MaxCompetitors:   cfg.Competitor.MaxCompetitors,
		MinUsableQuality: cfg.Competitor.MinUsableQuality,
	})
	engine := scoring.NewEngine(scoring.Thresholds{
		ScaleOpportunityMin:  cfg.Scoring.ScaleOpportunityMin,
		ScaleRiskCeiling:     cfg.Scoring.ScaleRiskCeiling,
		TestOpportunityFloor: cfg.Scoring.TestOpportunityFloor,
		TestRiskCeiling:      cfg.Scoring.TestRiskCeiling,
	})

	service := analyzer.NewService(controller, aggregator,
		normalize.NewCurrencyConverter(cfg.Currency.Rates), engine)

	record := service.Analyze(ctx, analyzer.Request{
		Query:           *query,
		CompetitorCount: *competitors,
	})

	out, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		slog.Error("failed to encode record", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
