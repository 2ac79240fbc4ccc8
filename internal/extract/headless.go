package extract

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"

	"github.com/dropradar/dropradar/internal/browser"
	"github.com/dropradar/dropradar/internal/models"
)

// ChallengeSolver handles a detected bot challenge. Solving CAPTCHAs is an
// external concern; no solver is configured by default and extraction
// degrades gracefully without one.
type ChallengeSolver interface {
	Solve(ctx context.Context, page playwright.Page) error
}

// HeadlessOptions configure the level-4 extractor. All values are
// operational tuning, not correctness requirements.
type HeadlessOptions struct {
	NavigationTimeout  time.Duration
	SettleTime         time.Duration
	HumanDelayMin      time.Duration
	HumanDelayMax      time.Duration
	ChallengeSelectors []string
	Solver             ChallengeSolver
	// Rand drives the humanization jitter; tests inject a fixed source.
	Rand *rand.Rand
}

// Headless is the level-4 strategy: render the page in a pooled stealth
// browser context, mimic human interaction latency, detect bot challenges
// and extract from the rendered DOM.
type Headless struct {
	pool       *browser.Pool
	opts       HeadlessOptions
	static     *Static
	structured *Structured

	rngMu sync.Mutex
	rng   *rand.Rand

	logger *slog.Logger
}

func NewHeadless(pool *browser.Pool, opts HeadlessOptions) *Headless {
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 45 * time.Second
	}
	if opts.SettleTime <= 0 {
		opts.SettleTime = 3 * time.Second
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Headless{
		pool:       pool,
		opts:       opts,
		static:     NewStatic(),
		structured: NewStructured(),
		rng:        rng,
		logger:     slog.Default().With("component", "headless_extractor"),
	}
}

// Extract renders target.URL and returns the extraction attempt. A
// navigation timeout yields an empty level-4 attempt rather than an error;
// the leased context is released on every path.
func (h *Headless) Extract(ctx context.Context, target Target) (*models.ExtractionAttempt, error) {
	lease, err := h.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire browser context: %w", err)
	}
	defer lease.Release()

	pc, ok := lease.Context.(*browser.PlaywrightContext)
	if !ok {
		return nil, fmt.Errorf("browsing context does not support pages")
	}

	page, err := pc.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer page.Close()

	attempt := models.NewAttempt(target.Profile.Name(), target.URL, LevelHeadless)
	attempt.Currency = target.Currency

	if err := h.navigate(ctx, page, target.URL); err != nil {
		h.logger.Warn("navigation failed", "url", target.URL, "error", err)
		attempt.Flags = append(attempt.Flags, models.FlagNavigationTimeout)
		return attempt, nil
	}

	h.humanize(ctx, page, lease.Width, lease.Height)

	if h.detectChallenge(page) {
		attempt.Flags = append(attempt.Flags, models.FlagChallengeDetected)
		if h.opts.Solver != nil {
			if err := h.opts.Solver.Solve(ctx, page); err != nil {
				h.logger.Warn("challenge solver failed", "url", target.URL, "error", err)
			}
		} else {
			h.logger.Info("challenge detected and no solver configured, extracting best effort",
				"url", target.URL)
		}
	}

	html, err := page.Content()
	if err != nil {
		h.logger.Warn("failed to read rendered page", "url", target.URL, "error", err)
		return attempt, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return attempt, nil
	}

	// Rendered DOM goes through the same field extraction as the static
	// levels, keeping merge semantics identical across the cascade.
	attempt.Merge(h.static.Extract(doc, target))
	attempt.Merge(h.structured.Extract(doc, target))
	if len(attempt.Images) == 0 {
		attempt.Images = extractImages(doc, target.Profile.Selectors().Images)
	}

	return attempt, nil
}

// navigate runs the page load under both the playwright timeout and the
// caller's context, so cancellation aborts the in-flight navigation.
func (h *Headless) navigate(ctx context.Context, page playwright.Page, url string) error {
	done := make(chan error, 1)
	go func() {
		_, err := page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			Timeout:   playwright.Float(float64(h.opts.NavigationTimeout.Milliseconds())),
		})
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: %v", ErrNavigationFailed, err)
		}
		return nil
	case <-ctx.Done():
		// Closing the page aborts the navigation so the goroutine exits.
		page.Close()
		return ctx.Err()
	}
}

// humanize inserts a bounded randomized delay and a synthetic pointer and
// scroll action, then waits for dynamic content to settle.
func (h *Headless) humanize(ctx context.Context, page playwright.Page, width, height int) {
	h.rngMu.Lock()
	delay := h.opts.HumanDelayMin
	if jitterRange := h.opts.HumanDelayMax - h.opts.HumanDelayMin; jitterRange > 0 {
		delay += time.Duration(h.rng.Int63n(int64(jitterRange)))
	}
	scrollBy := 200 + h.rng.Intn(400)
	h.rngMu.Unlock()

	if !sleepCtx(ctx, delay) {
		return
	}

	if width > 0 && height > 0 {
		page.Mouse().Move(float64(width/2), float64(height/2), playwright.MouseMoveOptions{
			Steps: playwright.Int(10),
		})
	}
	page.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", scrollBy))

	sleepCtx(ctx, h.opts.SettleTime)
}

// detectChallenge checks the configured bot-challenge indicators plus a
// couple of text markers common across challenge pages.
func (h *Headless) detectChallenge(page playwright.Page) bool {
	for _, sel := range h.opts.ChallengeSelectors {
		if count, err := page.Locator(sel).Count(); err == nil && count > 0 {
			h.logger.Warn("challenge indicator present", "selector", sel)
			return true
		}
	}

	title, _ := page.Title()
	lower := strings.ToLower(title)
	if strings.Contains(lower, "robot") || strings.Contains(lower, "are you human") ||
		strings.Contains(lower, "access denied") {
		h.logger.Warn("challenge indicator in title", "title", title)
		return true
	}
	return false
}

func extractImages(doc *goquery.Document, selectors []string) []string {
	var images []string
	seen := make(map[string]struct{})
	for _, sel := range selectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			src, ok := s.Attr("src")
			if !ok || src == "" || strings.HasPrefix(src, "data:") {
				return
			}
			if _, dup := seen[src]; dup {
				return
			}
			seen[src] = struct{}{}
			images = append(images, src)
		})
		if len(images) > 0 {
			break
		}
	}
	return images
}

// sleepCtx sleeps for d unless ctx is done first; reports whether the full
// delay elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
