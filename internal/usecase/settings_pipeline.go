package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vitos/arb_dashboard/internal/domain"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiescence window for scalar threshold commits,
// measured from the most recent change.
const DefaultDebounce = 300 * time.Millisecond

// Notice is a user-facing message emitted by settings mutations. Transient
// notices are dismissed by the presentation layer after a few seconds.
type Notice struct {
	Text  string
	IsErr bool
}

// ThresholdState tracks one scalar field's confirmed value next to the
// optimistic local one. Dirty means the displayed value has not been
// acknowledged by the backend.
type ThresholdState struct {
	Confirmed float64
	Pending   float64
	Dirty     bool
}

type blacklistOp struct {
	coin   string
	remove bool
	reply  chan error
}

// SettingsPipeline propagates display-settings edits to the backend.
// Scalar thresholds are applied optimistically and committed after a
// debounce window, so only the final value of a burst is sent. Blacklist
// mutations are committed immediately but serialized through a FIFO queue
// so overlapping edits cannot reorder.
type SettingsPipeline struct {
	api      domain.BackendAPI
	logger   *zap.Logger
	debounce time.Duration
	notify   func(Notice)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	settings domain.Settings
	minState ThresholdState
	maxState ThresholdState
	minTimer *time.Timer
	maxTimer *time.Timer

	ops chan blacklistOp
}

// NewSettingsPipeline builds the pipeline and starts its blacklist worker.
// A debounce of 0 selects DefaultDebounce; notify may be nil.
func NewSettingsPipeline(api domain.BackendAPI, debounce time.Duration, notify func(Notice), logger *zap.Logger) *SettingsPipeline {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if notify == nil {
		notify = func(Notice) {}
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &SettingsPipeline{
		api:      api,
		logger:   logger,
		debounce: debounce,
		notify:   notify,
		ctx:      ctx,
		cancel:   cancel,
		ops:      make(chan blacklistOp, 16),
	}

	p.wg.Add(1)
	go p.blacklistLoop()

	return p
}

// Load replaces local state with the backend's settings. Called once at
// startup; the local copy is authoritative for display afterwards.
func (p *SettingsPipeline) Load(ctx context.Context) error {
	settings, err := p.api.GetSettings(ctx)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.settings = *settings
	p.minState = ThresholdState{Confirmed: settings.MinSpreadThreshold, Pending: settings.MinSpreadThreshold}
	p.maxState = ThresholdState{Confirmed: settings.MaxSpreadThreshold, Pending: settings.MaxSpreadThreshold}
	p.mu.Unlock()
	return nil
}

// SetMinThreshold applies the value locally and schedules a commit. A
// change within the debounce window cancels the pending commit, so a burst
// of changes produces exactly one request carrying the last value.
func (p *SettingsPipeline) SetMinThreshold(value float64) {
	p.mu.Lock()
	p.settings.MinSpreadThreshold = value
	p.minState.Pending = value
	p.minState.Dirty = p.minState.Pending != p.minState.Confirmed
	if p.minTimer != nil {
		p.minTimer.Stop()
	}
	p.minTimer = time.AfterFunc(p.debounce, p.commitMin)
	p.mu.Unlock()
}

// SetMaxThreshold behaves like SetMinThreshold for the upper bound.
func (p *SettingsPipeline) SetMaxThreshold(value float64) {
	p.mu.Lock()
	p.settings.MaxSpreadThreshold = value
	p.maxState.Pending = value
	p.maxState.Dirty = p.maxState.Pending != p.maxState.Confirmed
	if p.maxTimer != nil {
		p.maxTimer.Stop()
	}
	p.maxTimer = time.AfterFunc(p.debounce, p.commitMax)
	p.mu.Unlock()
}

func (p *SettingsPipeline) commitMin() {
	p.mu.Lock()
	value := p.minState.Pending
	p.mu.Unlock()

	err := p.api.UpdateMinThreshold(p.ctx, value)
	if p.ctx.Err() != nil {
		return
	}
	if err != nil {
		// The optimistic value stays; Dirty keeps reporting the divergence.
		p.logger.Warn("Min threshold commit failed", zap.Float64("value", value), zap.Error(err))
		p.notify(Notice{Text: "Failed to update min threshold", IsErr: true})
		return
	}

	p.mu.Lock()
	p.minState.Confirmed = value
	p.minState.Dirty = p.minState.Pending != p.minState.Confirmed
	p.mu.Unlock()
	p.notify(Notice{Text: fmt.Sprintf("Min threshold: %.1f%%", value)})
}

func (p *SettingsPipeline) commitMax() {
	p.mu.Lock()
	value := p.maxState.Pending
	p.mu.Unlock()

	err := p.api.UpdateMaxThreshold(p.ctx, value)
	if p.ctx.Err() != nil {
		return
	}
	if err != nil {
		p.logger.Warn("Max threshold commit failed", zap.Float64("value", value), zap.Error(err))
		p.notify(Notice{Text: "Failed to update max threshold", IsErr: true})
		return
	}

	p.mu.Lock()
	p.maxState.Confirmed = value
	p.maxState.Dirty = p.maxState.Pending != p.maxState.Confirmed
	p.mu.Unlock()
	p.notify(Notice{Text: fmt.Sprintf("Max threshold: %.1f%%", value)})
}

// AddCoin blacklists a coin. The call is synchronous but ordered strictly
// behind any blacklist mutation submitted before it.
func (p *SettingsPipeline) AddCoin(coin string) error {
	return p.submit(coin, false)
}

// RemoveCoin removes a coin from the blacklist.
func (p *SettingsPipeline) RemoveCoin(coin string) error {
	return p.submit(coin, true)
}

func (p *SettingsPipeline) submit(coin string, remove bool) error {
	coin = strings.ToUpper(strings.TrimSpace(coin))
	if coin == "" {
		return fmt.Errorf("empty coin symbol")
	}

	op := blacklistOp{coin: coin, remove: remove, reply: make(chan error, 1)}
	select {
	case p.ops <- op:
	case <-p.ctx.Done():
		return p.ctx.Err()
	}

	select {
	case err := <-op.reply:
		return err
	case <-p.ctx.Done():
		return p.ctx.Err()
	}
}

func (p *SettingsPipeline) blacklistLoop() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case op := <-p.ops:
			var list []string
			var err error
			if op.remove {
				list, err = p.api.RemoveFromBlacklist(p.ctx, op.coin)
			} else {
				list, err = p.api.AddToBlacklist(p.ctx, op.coin)
			}

			if err != nil {
				// Local state untouched on failure.
				p.logger.Warn("Blacklist update failed", zap.String("coin", op.coin), zap.Error(err))
				p.notify(Notice{Text: "Blacklist update failed: " + op.coin, IsErr: true})
			} else {
				// The server-returned set is authoritative.
				p.mu.Lock()
				p.settings.BlacklistedCoins = list
				p.mu.Unlock()
				if op.remove {
					p.notify(Notice{Text: op.coin + " removed from blacklist"})
				} else {
					p.notify(Notice{Text: op.coin + " blacklisted"})
				}
			}
			op.reply <- err
		}
	}
}

// ConfiguredExchanges lists exchanges with stored credentials. Only names
// come back; secret material is never readable.
func (p *SettingsPipeline) ConfiguredExchanges(ctx context.Context) ([]string, error) {
	return p.api.ListAPIKeyExchanges(ctx)
}

// SaveCredentials stores exchange API credentials on the backend.
func (p *SettingsPipeline) SaveCredentials(ctx context.Context, creds *domain.APICredentials) error {
	if creds.APIKey == "" || creds.APISecret == "" {
		return fmt.Errorf("api key and secret are required")
	}
	if err := p.api.SaveAPIKeys(ctx, creds); err != nil {
		p.notify(Notice{Text: "Failed to save API keys for " + creds.Exchange, IsErr: true})
		return err
	}
	p.notify(Notice{Text: "API keys saved for " + creds.Exchange})
	return nil
}

// DeleteCredentials removes stored credentials for an exchange.
func (p *SettingsPipeline) DeleteCredentials(ctx context.Context, exchange string) error {
	if err := p.api.DeleteAPIKeys(ctx, exchange); err != nil {
		p.notify(Notice{Text: "Failed to delete API keys for " + exchange, IsErr: true})
		return err
	}
	p.notify(Notice{Text: "API keys deleted for " + exchange})
	return nil
}

// Settings returns a copy of the local optimistic settings.
func (p *SettingsPipeline) Settings() domain.Settings {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.settings
	out.BlacklistedCoins = append([]string(nil), p.settings.BlacklistedCoins...)
	return out
}

func (p *SettingsPipeline) MinThreshold() ThresholdState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.minState
}

func (p *SettingsPipeline) MaxThreshold() ThresholdState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxState
}

// Close cancels pending commits and stops the blacklist worker.
func (p *SettingsPipeline) Close() {
	p.mu.Lock()
	if p.minTimer != nil {
		p.minTimer.Stop()
	}
	if p.maxTimer != nil {
		p.maxTimer.Stop()
	}
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}
