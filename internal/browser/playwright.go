package browser

import (
	"fmt"
	"log/slog"

	"github.com/playwright-community/playwright-go"
)

// stealthScript patches the properties automation-detection scripts probe
// before any page script runs. Real browsers never expose
// navigator.webdriver as true.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
window.chrome = window.chrome || { runtime: {} };
Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
`

// PlaywrightLauncher runs a Chromium process via playwright and hands out
// isolated contexts with the stealth patches applied.
type PlaywrightLauncher struct {
	headless bool
	pw       *playwright.Playwright
	browser  playwright.Browser
	logger   *slog.Logger
}

func NewPlaywrightLauncher(headless bool) *PlaywrightLauncher {
	return &PlaywrightLauncher{
		headless: headless,
		logger:   slog.Default().With("component", "playwright"),
	}
}

func (l *PlaywrightLauncher) Start() error {
	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(l.headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-setuid-sandbox",
		},
	})
	if err != nil {
		pw.Stop()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	l.pw = pw
	l.browser = browser
	l.logger.Info("browser started", "headless", l.headless)
	return nil
}

func (l *PlaywrightLauncher) NewContext(opts ContextOptions) (BrowsingContext, error) {
	ctxOpts := playwright.BrowserNewContextOptions{
		AcceptDownloads:   playwright.Bool(false),
		JavaScriptEnabled: playwright.Bool(true),
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
		ExtraHttpHeaders: map[string]string{
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
			"DNT":             "1",
		},
	}
	if opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(opts.UserAgent)
	}

	ctx, err := l.browser.NewContext(ctxOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	if err := ctx.AddInitScript(playwright.Script{Content: playwright.String(stealthScript)}); err != nil {
		ctx.Close()
		return nil, fmt.Errorf("failed to add stealth script: %w", err)
	}

	return &PlaywrightContext{ctx: ctx}, nil
}

func (l *PlaywrightLauncher) Shutdown() error {
	var errs []error
	if l.browser != nil {
		if err := l.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}
	if l.pw != nil {
		if err := l.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	return nil
}

// PlaywrightContext wraps an isolated playwright browser context.
type PlaywrightContext struct {
	ctx playwright.BrowserContext
}

func (c *PlaywrightContext) NewPage() (playwright.Page, error) {
	page, err := c.ctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return page, nil
}

func (c *PlaywrightContext) Close() error {
	return c.ctx.Close()
}
