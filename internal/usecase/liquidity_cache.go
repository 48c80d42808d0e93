package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/vitos/arb_dashboard/internal/domain"
	"go.uber.org/zap"
)

// LiquidityState is the lifecycle of one cache entry. Modeled as a tagged
// state rather than nullable flags so an entry cannot be both pending and
// resolved.
type LiquidityState int

const (
	LiquidityAbsent LiquidityState = iota
	LiquidityPending
	LiquidityResolved
	LiquidityUnavailable
)

type liquidityEntry struct {
	done     chan struct{}
	analysis *domain.LiquidityAnalysis
	err      error
}

// LiquidityCache lazily fetches liquidity analysis per opportunity key and
// memoizes the outcome, success or failure, for the life of the entry. A
// failed fetch is never retried automatically; Invalidate is the only
// recovery path.
type LiquidityCache struct {
	api    domain.BackendAPI
	logger *zap.Logger

	mu      sync.Mutex
	entries map[domain.OpportunityKey]*liquidityEntry
}

func NewLiquidityCache(api domain.BackendAPI, logger *zap.Logger) *LiquidityCache {
	return &LiquidityCache{
		api:     api,
		logger:  logger,
		entries: make(map[domain.OpportunityKey]*liquidityEntry),
	}
}

// Get returns the memoized analysis for key, fetching it on first use.
// Concurrent callers for the same key share a single request and observe
// the same resolved value. An unavailable entry returns
// domain.ErrLiquidityUnavailable, which callers must not conflate with
// zero slippage.
func (c *LiquidityCache) Get(ctx context.Context, key domain.OpportunityKey) (*domain.LiquidityAnalysis, error) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	if !ok {
		entry = &liquidityEntry{done: make(chan struct{})}
		c.entries[key] = entry
		c.mu.Unlock()

		analysis, err := c.api.GetLiquidity(ctx, key)
		if err != nil {
			c.logger.Warn("Liquidity fetch failed",
				zap.String("pair", key.Pair),
				zap.String("buy", key.BuyExchange),
				zap.String("sell", key.SellExchange),
				zap.Error(err))
			entry.err = fmt.Errorf("%w: %v", domain.ErrLiquidityUnavailable, err)
		} else {
			entry.analysis = analysis
		}
		close(entry.done)
	} else {
		c.mu.Unlock()
	}

	select {
	case <-entry.done:
		return entry.analysis, entry.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Peek reports the entry state without triggering a fetch.
func (c *LiquidityCache) Peek(key domain.OpportunityKey) (*domain.LiquidityAnalysis, LiquidityState) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return nil, LiquidityAbsent
	}

	select {
	case <-entry.done:
	default:
		return nil, LiquidityPending
	}

	if entry.err != nil {
		return nil, LiquidityUnavailable
	}
	return entry.analysis, LiquidityResolved
}

// Invalidate discards the entry for key. The next Get issues a fresh
// fetch. Called when the owning detail view is torn down.
func (c *LiquidityCache) Invalidate(key domain.OpportunityKey) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
