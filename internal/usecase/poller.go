package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Poller drives one periodic task. Stopping only cancels the poller's
// context: an in-flight call is not aborted, so every handler must check
// its context before applying a late completion.
type Poller struct {
	name     string
	interval time.Duration
	logger   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(name string, interval time.Duration, logger *zap.Logger) *Poller {
	return &Poller{
		name:     name,
		interval: interval,
		logger:   logger,
	}
}

// Start runs fn immediately and then on every tick until Stop or parent
// context cancellation. Ticks never overlap: a slow fn simply delays the
// next run.
func (p *Poller) Start(ctx context.Context, fn func(ctx context.Context)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		fn(ctx)
		for {
			select {
			case <-ctx.Done():
				p.logger.Debug("Poller stopped", zap.String("poller", p.name))
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	}()
}

// Stop cancels the poller and waits for the loop to exit. A completion
// arriving after Stop is swallowed by the handler's context guard.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}
