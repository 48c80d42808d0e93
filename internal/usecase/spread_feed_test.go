package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitos/arb_dashboard/internal/domain"
	"github.com/vitos/arb_dashboard/internal/usecase"
)

func floatPtr(v float64) *float64 { return &v }

func TestSpreadFeedPrimarySource(t *testing.T) {
	api := &MockAPI{
		LiveSpreadsFn: func(ctx context.Context) ([]domain.Opportunity, error) {
			return []domain.Opportunity{{Pair: "BTC/USDT", SpreadPct: 0.8}}, nil
		},
	}
	feed := usecase.NewSpreadFeed(api, zap.NewNop())

	feed.Tick(context.Background())

	require.Equal(t, 1, feed.Count())
	assert.Equal(t, "BTC/USDT", feed.Snapshot()[0].Pair)
	assert.Equal(t, 1, api.LiveCalls)
	assert.Equal(t, 0, api.TestCalls)
	assert.False(t, feed.LastUpdate().IsZero())
}

func TestSpreadFeedFallback(t *testing.T) {
	api := &MockAPI{
		LiveSpreadsFn: func(ctx context.Context) ([]domain.Opportunity, error) {
			return nil, errors.New("scanner down")
		},
		TestSpreadsFn: func(ctx context.Context) ([]domain.Opportunity, error) {
			return []domain.Opportunity{{Pair: "ETH/USDT"}, {Pair: "SOL/USDT"}}, nil
		},
	}
	feed := usecase.NewSpreadFeed(api, zap.NewNop())

	feed.Tick(context.Background())

	assert.Equal(t, 2, feed.Count())
	assert.Equal(t, 1, api.LiveCalls)
	assert.Equal(t, 1, api.TestCalls)
}

func TestSpreadFeedKeepsLastOnTotalFailure(t *testing.T) {
	var fail bool
	var mu sync.Mutex
	api := &MockAPI{}
	api.LiveSpreadsFn = func(ctx context.Context) ([]domain.Opportunity, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return nil, errors.New("scanner down")
		}
		return []domain.Opportunity{{Pair: "BTC/USDT"}}, nil
	}
	api.TestSpreadsFn = func(ctx context.Context) ([]domain.Opportunity, error) {
		return nil, errors.New("fallback down")
	}
	feed := usecase.NewSpreadFeed(api, zap.NewNop())

	feed.Tick(context.Background())
	require.Equal(t, 1, feed.Count())
	first := feed.LastUpdate()

	mu.Lock()
	fail = true
	mu.Unlock()

	feed.Tick(context.Background())
	assert.Equal(t, 1, feed.Count(), "previous collection must survive a failed poll")
	assert.Equal(t, "BTC/USDT", feed.Snapshot()[0].Pair)
	assert.Equal(t, first, feed.LastUpdate())
}

func TestSpreadFeedCounts(t *testing.T) {
	api := &MockAPI{
		LiveSpreadsFn: func(ctx context.Context) ([]domain.Opportunity, error) {
			return []domain.Opportunity{
				{Pair: "BTC/USDT", SpreadPct: 2.5, NetSpreadPct: floatPtr(2.0)},
				{Pair: "ETH/USDT", SpreadPct: 1.8, NetSpreadPct: floatPtr(1.0)},
				{Pair: "SOL/USDT", SpreadPct: 1.6}, // no net spread, raw applies
				{Pair: "DOT/USDT", SpreadPct: 0.3, NetSpreadPct: floatPtr(-0.1)},
			}, nil
		},
	}
	feed := usecase.NewSpreadFeed(api, zap.NewNop())

	feed.Tick(context.Background())

	assert.Equal(t, 4, feed.Count())
	assert.Equal(t, 3, feed.ProfitableCount())
	assert.Equal(t, 2, feed.HotCount())
}

func TestSpreadFeedSingleFlight(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once

	api := &MockAPI{}
	api.LiveSpreadsFn = func(ctx context.Context) ([]domain.Opportunity, error) {
		once.Do(func() {
			close(started)
			<-block
		})
		return []domain.Opportunity{{Pair: "BTC/USDT"}}, nil
	}
	feed := usecase.NewSpreadFeed(api, zap.NewNop())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		feed.Refresh(context.Background())
	}()
	<-started

	// A timer tick during an in-flight refresh is suppressed entirely.
	feed.Tick(context.Background())
	// Any number of manual refreshes coalesce into one queued follow-up.
	feed.Refresh(context.Background())
	feed.Refresh(context.Background())

	close(block)
	wg.Wait()

	assert.Equal(t, 2, api.LiveCalls, "in-flight fetch plus one coalesced follow-up")
	assert.False(t, feed.Loading())
}

func TestSpreadFeedStaleCompletionDiscarded(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	api := &MockAPI{
		LiveSpreadsFn: func(ctx context.Context) ([]domain.Opportunity, error) {
			cancel() // feed stops while the request is in flight
			return []domain.Opportunity{{Pair: "BTC/USDT"}}, nil
		},
	}
	feed := usecase.NewSpreadFeed(api, zap.NewNop())

	feed.Tick(ctx)

	assert.Equal(t, 0, feed.Count(), "completion after cancellation must not apply")
	assert.True(t, feed.LastUpdate().IsZero())
}

func TestSpreadFeedTickAfterRefreshCompletes(t *testing.T) {
	api := &MockAPI{
		LiveSpreadsFn: func(ctx context.Context) ([]domain.Opportunity, error) {
			return []domain.Opportunity{{Pair: "BTC/USDT"}}, nil
		},
	}
	feed := usecase.NewSpreadFeed(api, zap.NewNop())

	feed.Refresh(context.Background())
	feed.Tick(context.Background())

	require.Eventually(t, func() bool { return !feed.Loading() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, api.LiveCalls)
}
