// Package fetch retrieves raw documents for the static extraction levels.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"time"
)

// Fetcher downloads page documents with a bounded timeout and a rotating
// user agent. Rotation order comes from the injected rand source so tests
// can pin it.
type Fetcher struct {
	client     *http.Client
	userAgents []string
	rng        *rand.Rand
	logger     *slog.Logger
}

type Options struct {
	Timeout    time.Duration
	UserAgents []string
	Rand       *rand.Rand
}

func New(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Fetcher{
		client:     &http.Client{Timeout: opts.Timeout},
		userAgents: opts.UserAgents,
		rng:        rng,
		logger:     slog.Default().With("component", "fetcher"),
	}
}

// Fetch retrieves the document at url. The caller's context bounds the
// whole request; a non-2xx status is an error because a block page is not a
// usable document.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	if len(f.userAgents) > 0 {
		req.Header.Set("User-Agent", f.userAgents[f.rng.Intn(len(f.userAgents))])
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}

	f.logger.Debug("fetched document", "url", url, "bytes", len(body))
	return string(body), nil
}
