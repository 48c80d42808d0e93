package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/vitos/arb_dashboard/internal/domain"
	"go.uber.org/zap"
)

// AutoTrader mirrors the remote auto-trader and mediates lifecycle
// commands. The mirror is the only state the UI reads, but it is never
// patched optimistically: a transition shows up only after the next
// successful status poll confirms it. While a command is in flight further
// commands are rejected so a double-click cannot submit twice.
type AutoTrader struct {
	api    domain.BackendAPI
	logger *zap.Logger

	mu         sync.Mutex
	status     *domain.AutoTraderStatus
	statusNote string
	busy       bool
	form       *domain.RiskSettings
}

func NewAutoTrader(api domain.BackendAPI, logger *zap.Logger) *AutoTrader {
	return &AutoTrader{
		api:    api,
		logger: logger,
	}
}

// Tick polls the remote status and overwrites the mirror wholesale. A poll
// failure leaves the mirror untouched and sets a persistent note that the
// next successful poll clears.
func (a *AutoTrader) Tick(ctx context.Context) {
	status, err := a.api.GetAutoTraderStatus(ctx)
	if ctx.Err() != nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.logger.Warn("Auto-trader status poll failed", zap.Error(err))
		a.statusNote = "auto-trader status unavailable"
		return
	}
	a.status = status
	a.statusNote = ""
}

// Status returns a copy of the mirrored status. ok is false before the
// first successful poll.
func (a *AutoTrader) Status() (domain.AutoTraderStatus, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status == nil {
		return domain.AutoTraderStatus{}, false
	}
	return *a.status, true
}

// StatusNote returns the persistent poll-failure note, empty when polling
// is healthy.
func (a *AutoTrader) StatusNote() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.statusNote
}

// Busy reports whether a lifecycle command is in flight.
func (a *AutoTrader) Busy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.busy
}

// Start requests idle -> running.
func (a *AutoTrader) Start(ctx context.Context) error {
	return a.command(ctx, "start", a.api.StartAutoTrader, domain.TraderIdle)
}

// Stop requests running|paused -> idle.
func (a *AutoTrader) Stop(ctx context.Context) error {
	return a.command(ctx, "stop", a.api.StopAutoTrader, domain.TraderRunning, domain.TraderPaused)
}

// Pause requests running -> paused.
func (a *AutoTrader) Pause(ctx context.Context) error {
	return a.command(ctx, "pause", a.api.PauseAutoTrader, domain.TraderRunning)
}

// Resume requests paused -> running.
func (a *AutoTrader) Resume(ctx context.Context) error {
	return a.command(ctx, "resume", a.api.ResumeAutoTrader, domain.TraderPaused)
}

func (a *AutoTrader) command(ctx context.Context, name string, call func(context.Context) error, allowed ...domain.TraderState) error {
	a.mu.Lock()
	if a.busy {
		a.mu.Unlock()
		return domain.ErrCommandInFlight
	}
	if a.status == nil || !stateIn(a.status.State, allowed) {
		current := domain.TraderState("unknown")
		if a.status != nil {
			current = a.status.State
		}
		a.mu.Unlock()
		return fmt.Errorf("%w: %s from %s", domain.ErrInvalidTransition, name, current)
	}
	a.busy = true
	a.mu.Unlock()

	err := call(ctx)

	a.mu.Lock()
	a.busy = false
	a.mu.Unlock()

	if err != nil {
		a.logger.Warn("Auto-trader command failed", zap.String("command", name), zap.Error(err))
		return err
	}

	// Confirm through a status poll; the mirror is never assumed.
	a.Tick(ctx)
	return nil
}

func stateIn(state domain.TraderState, allowed []domain.TraderState) bool {
	for _, s := range allowed {
		if state == s {
			return true
		}
	}
	return false
}

// BeginRiskEdit stages a copy of the mirrored risk settings for editing.
// The form is independent of the live mirror: polls updating the mirror do
// not touch staged values.
func (a *AutoTrader) BeginRiskEdit() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status == nil {
		return false
	}
	form := a.status.RiskSettings
	a.form = &form
	return true
}

// StagedRiskSettings returns the staged form values, if a form is open.
func (a *AutoTrader) StagedRiskSettings() (domain.RiskSettings, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.form == nil {
		return domain.RiskSettings{}, false
	}
	return *a.form, true
}

// StageRiskSettings replaces the staged form values.
func (a *AutoTrader) StageRiskSettings(settings domain.RiskSettings) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.form != nil {
		a.form = &settings
	}
}

// CancelRiskEdit discards the staged form.
func (a *AutoTrader) CancelRiskEdit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.form = nil
}

// SaveRiskSettings commits the staged form as a single replace-all update.
// On success the form closes and the mirror is refreshed; on failure the
// staged values stay so nothing typed is lost.
func (a *AutoTrader) SaveRiskSettings(ctx context.Context) error {
	a.mu.Lock()
	if a.form == nil {
		a.mu.Unlock()
		return fmt.Errorf("no risk settings staged")
	}
	staged := *a.form
	a.mu.Unlock()

	if err := a.api.UpdateRiskSettings(ctx, staged); err != nil {
		a.logger.Warn("Risk settings update failed", zap.Error(err))
		return err
	}

	a.mu.Lock()
	a.form = nil
	a.mu.Unlock()

	a.Tick(ctx)
	return nil
}
