package extract

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/dropradar/dropradar/internal/models"
	"github.com/dropradar/dropradar/internal/quality"
)

// State names the cascade controller's position in the escalation ladder.
type State int

const (
	NotStarted State = iota
	Level1Done
	Level2Done
	Level4Done
	Terminated
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Level1Done:
		return "level1_done"
	case Level2Done:
		return "level2_done"
	case Level4Done:
		return "level4_done"
	default:
		return "terminated"
	}
}

// Result is the controller's terminal output: always a record, plus the
// achieved level and quality for observability. The controller never
// returns an error to the caller.
type Result struct {
	Attempt *models.ExtractionAttempt
	Quality int
	Level   int
	State   State
}

// ControllerOptions hold the quality gate thresholds.
type ControllerOptions struct {
	// StopThreshold ends the cascade after the cheap levels when met.
	StopThreshold int
	// EscalateThreshold gates the jump to browser automation: the
	// controller invokes level 4 iff merged quality after levels 1-2 is
	// strictly below it.
	EscalateThreshold int
}

// Controller owns the level-escalation state machine. Strategies are
// injected so tests can run the machine without network or browser I/O.
type Controller struct {
	fetcher    Fetcher
	static     DocumentStrategy
	structured DocumentStrategy
	headless   BrowserStrategy
	opts       ControllerOptions
	logger     *slog.Logger
}

func NewController(fetcher Fetcher, static, structured DocumentStrategy, headless BrowserStrategy, opts ControllerOptions) *Controller {
	if opts.StopThreshold <= 0 {
		opts.StopThreshold = 70
	}
	if opts.EscalateThreshold <= 0 {
		opts.EscalateThreshold = 75
	}
	return &Controller{
		fetcher:    fetcher,
		static:     static,
		structured: structured,
		headless:   headless,
		opts:       opts,
		logger:     slog.Default().With("component", "cascade"),
	}
}

// next is the single transition function: given the state just completed
// and the merged quality so far, it decides whether the cascade continues
// and where.
func (c *Controller) next(state State, q int) State {
	switch state {
	case NotStarted:
		return Level1Done
	case Level1Done:
		if q >= c.opts.StopThreshold {
			return Terminated
		}
		return Level2Done
	case Level2Done:
		if q >= c.opts.EscalateThreshold {
			return Terminated
		}
		return Level4Done
	default:
		return Terminated
	}
}

// Run executes the cascade for one target. Strategies run in strictly
// increasing cost order; a failed initial fetch skips the document levels
// and goes straight to the browser. Run always returns a usable Result,
// possibly with an all-empty attempt and quality 0.
func (c *Controller) Run(ctx context.Context, target Target) Result {
	merged := models.NewAttempt(target.Profile.Name(), target.URL, 0)
	merged.Currency = target.Currency

	state := NotStarted
	doc := c.fetchDocument(ctx, target, merged)

	if doc != nil {
		for state != Terminated && state != Level4Done {
			state = c.next(state, quality.Score(merged))
			switch state {
			case Level1Done:
				merged.Merge(c.static.Extract(doc, target))
			case Level2Done:
				merged.Merge(c.structured.Extract(doc, target))
			case Level4Done:
				c.runHeadless(ctx, target, merged)
			}
			c.logger.Debug("cascade step", "url", target.URL,
				"state", state.String(), "quality", quality.Score(merged))
		}
	} else {
		// Nothing to parse; the browser is the only remaining option.
		state = Level4Done
		c.runHeadless(ctx, target, merged)
	}

	q := quality.Score(merged)
	c.logger.Info("cascade terminated", "url", target.URL,
		"level", merged.StrategyLevel, "quality", q)

	return Result{
		Attempt: merged,
		Quality: q,
		Level:   merged.StrategyLevel,
		State:   Terminated,
	}
}

func (c *Controller) fetchDocument(ctx context.Context, target Target, merged *models.ExtractionAttempt) *goquery.Document {
	html, err := c.fetcher.Fetch(ctx, target.URL)
	if err != nil {
		c.logger.Warn("initial fetch failed, skipping document levels",
			"url", target.URL, "error", err)
		merged.Flags = append(merged.Flags, models.FlagFetchFailed)
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		merged.Flags = append(merged.Flags, models.FlagFetchFailed)
		return nil
	}
	return doc
}

func (c *Controller) runHeadless(ctx context.Context, target Target, merged *models.ExtractionAttempt) {
	if c.headless == nil {
		c.logger.Debug("no browser strategy configured", "url", target.URL)
		return
	}
	attempt, err := c.headless.Extract(ctx, target)
	if err != nil {
		c.logger.Warn("headless extraction failed", "url", target.URL, "error", err)
		return
	}
	merged.Merge(attempt)
}
