package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/vitos/arb_dashboard/internal/domain"
	"go.uber.org/zap"
)

// HotSpreadThreshold marks opportunities worth immediate attention, applied
// to the net spread with raw spread fallback.
const HotSpreadThreshold = 1.5

// SpreadFeed owns the opportunity collection. It polls the primary scanner
// endpoint and falls back to the secondary one; if both fail the previous
// collection is kept and the failure is only logged.
type SpreadFeed struct {
	api    domain.BackendAPI
	logger *zap.Logger

	mu            sync.Mutex
	opportunities []domain.Opportunity
	loading       bool
	queued        bool
	lastUpdate    time.Time
}

func NewSpreadFeed(api domain.BackendAPI, logger *zap.Logger) *SpreadFeed {
	return &SpreadFeed{
		api:    api,
		logger: logger,
	}
}

// Tick is the timer entry point. A refresh already in flight suppresses the
// tick entirely.
func (f *SpreadFeed) Tick(ctx context.Context) {
	f.refresh(ctx, false)
}

// Refresh is the manual entry point. If a refresh is in flight the request
// is queued behind it and coalesced: any number of manual requests during
// one in-flight call produce at most one follow-up fetch.
func (f *SpreadFeed) Refresh(ctx context.Context) {
	f.refresh(ctx, true)
}

func (f *SpreadFeed) refresh(ctx context.Context, manual bool) {
	f.mu.Lock()
	if f.loading {
		if manual {
			f.queued = true
		}
		f.mu.Unlock()
		return
	}
	f.loading = true
	f.mu.Unlock()

	for {
		f.fetchOnce(ctx)

		f.mu.Lock()
		if f.queued && ctx.Err() == nil {
			f.queued = false
			f.mu.Unlock()
			continue
		}
		f.queued = false
		f.loading = false
		f.mu.Unlock()
		return
	}
}

func (f *SpreadFeed) fetchOnce(ctx context.Context) {
	spreads, err := f.api.GetLiveSpreads(ctx)
	if err != nil {
		f.logger.Warn("Primary spread source failed, trying fallback", zap.Error(err))
		spreads, err = f.api.GetTestSpreads(ctx)
		if err != nil {
			// Fallback exhausted: keep the last known collection.
			f.logger.Error("Spread fallback failed", zap.Error(err))
			return
		}
	}

	if ctx.Err() != nil {
		// Stale completion from a stopped feed.
		return
	}

	f.mu.Lock()
	f.opportunities = spreads
	f.lastUpdate = time.Now()
	f.mu.Unlock()
}

// Snapshot returns a copy of the current opportunity collection.
func (f *SpreadFeed) Snapshot() []domain.Opportunity {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Opportunity, len(f.opportunities))
	copy(out, f.opportunities)
	return out
}

func (f *SpreadFeed) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

func (f *SpreadFeed) LastUpdate() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastUpdate
}

// Count returns the total number of opportunities in the last poll.
func (f *SpreadFeed) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.opportunities)
}

// ProfitableCount counts opportunities with a positive effective spread.
func (f *SpreadFeed) ProfitableCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, o := range f.opportunities {
		if o.EffectiveSpread() > 0 {
			n++
		}
	}
	return n
}

// HotCount counts opportunities at or above the hot threshold.
func (f *SpreadFeed) HotCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, o := range f.opportunities {
		if o.EffectiveSpread() >= HotSpreadThreshold {
			n++
		}
	}
	return n
}
