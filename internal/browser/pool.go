// Package browser owns the shared headless browser resource. One underlying
// browser process is started lazily and reused across requests; each
// extraction attempt leases a fresh isolated context from the pool and must
// release it on every exit path.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

var ErrPoolClosed = errors.New("browser pool is closed")

// BrowsingContext is an isolated cookie/cache/fingerprint scope inside the
// shared browser.
type BrowsingContext interface {
	Close() error
}

// Launcher abstracts the underlying browser so the pool (and its tests) do
// not depend on a real browser process.
type Launcher interface {
	// Start boots the browser process. Called once, lazily.
	Start() error
	NewContext(opts ContextOptions) (BrowsingContext, error)
	Shutdown() error
}

// ContextOptions is the per-lease fingerprint.
type ContextOptions struct {
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
}

// Options bound the pool's resources and feed the fingerprint rotation.
type Options struct {
	MaxContexts       int
	UserAgents        []string
	MinViewportWidth  int
	MaxViewportWidth  int
	MinViewportHeight int
	MaxViewportHeight int
	// Rand drives user-agent and viewport rotation. Nil seeds from the
	// clock; tests inject a fixed source for deterministic fingerprints.
	Rand *rand.Rand
}

// Pool hands out bounded leases on isolated browsing contexts. Excess
// acquisitions queue until a lease is released rather than spawning
// unbounded contexts.
type Pool struct {
	launcher Launcher
	opts     Options
	sem      chan struct{}

	startOnce sync.Once
	startErr  error

	mu     sync.Mutex
	rng    *rand.Rand
	active int
	closed bool

	logger *slog.Logger
}

func NewPool(launcher Launcher, opts Options) *Pool {
	if opts.MaxContexts < 1 {
		opts.MaxContexts = 1
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Pool{
		launcher: launcher,
		opts:     opts,
		sem:      make(chan struct{}, opts.MaxContexts),
		rng:      rng,
		logger:   slog.Default().With("component", "browser_pool"),
	}
}

// Lease is one acquired context plus the fingerprint it was created with.
// Release is idempotent and must be called on every exit path.
type Lease struct {
	Context   BrowsingContext
	UserAgent string
	Width     int
	Height    int

	releaseOnce sync.Once
	pool        *Pool
}

func (l *Lease) Release() {
	l.releaseOnce.Do(func() {
		if err := l.Context.Close(); err != nil {
			l.pool.logger.Warn("failed to close browsing context", "error", err)
		}
		l.pool.mu.Lock()
		l.pool.active--
		l.pool.mu.Unlock()
		<-l.pool.sem
	})
}

// Acquire blocks until a context slot is free or ctx is done, lazily
// starting the browser on first use.
func (p *Pool) Acquire(ctx context.Context) (*Lease, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	p.mu.Unlock()

	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	p.startOnce.Do(func() {
		p.startErr = p.launcher.Start()
	})
	if p.startErr != nil {
		<-p.sem
		return nil, fmt.Errorf("failed to start browser: %w", p.startErr)
	}

	opts := p.rotateFingerprint()
	bc, err := p.launcher.NewContext(opts)
	if err != nil {
		<-p.sem
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	p.mu.Lock()
	p.active++
	p.mu.Unlock()

	p.logger.Debug("context acquired", "user_agent", opts.UserAgent,
		"viewport_width", opts.ViewportWidth, "viewport_height", opts.ViewportHeight)

	return &Lease{
		Context:   bc,
		UserAgent: opts.UserAgent,
		Width:     opts.ViewportWidth,
		Height:    opts.ViewportHeight,
		pool:      p,
	}, nil
}

// ActiveContexts reports how many leases are currently outstanding.
func (p *Pool) ActiveContexts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Shutdown stops the browser process. Outstanding leases become invalid.
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()
	return p.launcher.Shutdown()
}

func (p *Pool) rotateFingerprint() ContextOptions {
	p.mu.Lock()
	defer p.mu.Unlock()

	opts := ContextOptions{
		ViewportWidth:  randBetween(p.rng, p.opts.MinViewportWidth, p.opts.MaxViewportWidth),
		ViewportHeight: randBetween(p.rng, p.opts.MinViewportHeight, p.opts.MaxViewportHeight),
	}
	if len(p.opts.UserAgents) > 0 {
		opts.UserAgent = p.opts.UserAgents[p.rng.Intn(len(p.opts.UserAgents))]
	}
	return opts
}

func randBetween(rng *rand.Rand, min, max int) int {
	if max <= min {
		return min
	}
	return min + rng.Intn(max-min+1)
}
