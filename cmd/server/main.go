package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dropradar/dropradar/internal/analyzer"
	"github.com/dropradar/dropradar/internal/api"
	"github.com/dropradar/dropradar/internal/browser"
	"github.com/dropradar/dropradar/internal/cache"
	"github.com/dropradar/dropradar/internal/competitor"
	"github.com/dropradar/dropradar/internal/config"
	"github.com/dropradar/dropradar/internal/extract"
	"github.com/dropradar/dropradar/internal/fetch"
	"github.com/dropradar/dropradar/internal/normalize"
	"github.com/dropradar/dropradar/internal/ratelimit"
	"github.com/dropradar/dropradar/internal/scoring"
	"github.com/dropradar/dropradar/internal/storage"
)

func main() {
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

	setupLogging(cfg.Logging)
	logger := slog.Default().With("component", "server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool := browser.NewPool(browser.NewPlaywrightLauncher(cfg.Browser.Headless), browser.Options{
		MaxContexts:       cfg.Browser.MaxContexts,
		UserAgents:        cfg.Browser.UserAgents,
		MinViewportWidth:  cfg.Browser.MinViewportWidth,
		MaxViewportWidth:  cfg.Browser.MaxViewportWidth,
		MinViewportHeight: cfg.Browser.MinViewportHeight,
		MaxViewportHeight: cfg.Browser.MaxViewportHeight,
	})
	defer pool.Shutdown()

	service := buildPipeline(cfg, pool)

	var store *storage.Store
	if cfg.Database.Password != "" || os.Getenv("DB_HOST") != "" {
		store, err = storage.New(ctx, cfg.Database.DSN())
		if err != nil {
			logger.Warn("storage unavailable, continuing without persistence", "error", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	analysisCache := cache.New(cache.Options{
		Addr:     cfg.Cache.Addr,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
		TTL:      cfg.Cache.TTL,
	})
	if err := analysisCache.Ping(ctx); err != nil {
		logger.Warn("cache unavailable, continuing without caching", "error", err)
		analysisCache = nil
	} else {
		defer analysisCache.Close()
	}

	handlers := api.NewHandlers(service, store, analysisCache, slog.Default().With("component", "api"))
	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(handlers),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildPipeline(cfg *config.Config, pool *browser.Pool) *analyzer.Service {
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

	return analyzer.NewService(controller, aggregator,
		normalize.NewCurrencyConverter(cfg.Currency.Rates), engine)
}

func setupLogging(cfg config.LoggingConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}
