// Package ratelimit implements a fixed-window request limiter keyed by
// client IP and path.
package ratelimit

import (
	"sync"
	"time"

	"github.com/salambumi/property-edge/internal/clock"
)

// Tier selects which request budget applies to a route class.
type Tier string

const (
	// TierDefault covers page and share routes.
	TierDefault Tier = "default"
	// TierAPI covers the heavier /api/ handlers.
	TierAPI Tier = "api"
	// TierUpload covers image upload submissions.
	TierUpload Tier = "upload"
)

// TierConfig is the budget for one tier: MaxRequests per Window.
type TierConfig struct {
	Window      time.Duration
	MaxRequests int
}

// DefaultTiers returns the production budgets.
func DefaultTiers() map[Tier]TierConfig {
	return map[Tier]TierConfig{
		TierDefault: {Window: time.Minute, MaxRequests: 100},
		TierAPI:     {Window: time.Minute, MaxRequests: 30},
		TierUpload:  {Window: time.Minute, MaxRequests: 10},
	}
}

// Result reports a single admission decision.
type Result struct {
	Allowed   bool
	Remaining int
	// RetryAfterSeconds is the whole seconds until the window resets,
	// rounded up. Only meaningful when Allowed is false.
	RetryAfterSeconds int
}

// Limiter admits or rejects a request for a key within a tier. Implementations
// may be process-local and approximate; callers must not rely on exact counts
// across instances.
type Limiter interface {
	Allow(key string, tier Tier) Result
}

type entry struct {
	count   int
	resetAt time.Time
}

// Window is the process-local Limiter: a mutex-guarded table of per-key
// counters with a window reset timestamp. Counts reset on restart and are not
// shared across instances.
type Window struct {
	mu      sync.Mutex
	clock   clock.Clock
	tiers   map[Tier]TierConfig
	entries map[string]*entry
}

// NewWindow creates a Window limiter. Missing tiers fall back to the
// TierDefault budget.
func NewWindow(clk clock.Clock, tiers map[Tier]TierConfig) *Window {
	if tiers == nil {
		tiers = DefaultTiers()
	}
	return &Window{
		clock:   clk,
		tiers:   tiers,
		entries: make(map[string]*entry),
	}
}

// Allow counts one request against the key's current window.
func (w *Window) Allow(key string, tier Tier) Result {
	cfg, ok := w.tiers[tier]
	if !ok {
		cfg = w.tiers[TierDefault]
	}
	now := w.clock.Now()

	w.mu.Lock()
	defer w.mu.Unlock()

	e, ok := w.entries[key]
	if !ok || now.After(e.resetAt) {
		w.entries[key] = &entry{count: 1, resetAt: now.Add(cfg.Window)}
		return Result{Allowed: true, Remaining: cfg.MaxRequests - 1}
	}
	if e.count >= cfg.MaxRequests {
		retry := int(e.resetAt.Sub(now).Seconds())
		if e.resetAt.Sub(now)%time.Second != 0 || retry == 0 {
			retry++
		}
		return Result{Allowed: false, Remaining: 0, RetryAfterSeconds: retry}
	}
	e.count++
	return Result{Allowed: true, Remaining: cfg.MaxRequests - e.count}
}
