package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitos/arb_dashboard/internal/domain"
	"github.com/vitos/arb_dashboard/internal/usecase"
)

// statusAPI serves auto-trader states from a queue so a test can script the
// mirror seen before and after a command.
func statusAPI(states ...domain.TraderState) *MockAPI {
	var mu sync.Mutex
	i := 0
	api := &MockAPI{}
	api.AutoStatusFn = func(ctx context.Context) (*domain.AutoTraderStatus, error) {
		mu.Lock()
		defer mu.Unlock()
		state := states[i]
		if i < len(states)-1 {
			i++
		}
		return &domain.AutoTraderStatus{State: state}, nil
	}
	return api
}

func TestAutoTraderTransitions(t *testing.T) {
	cases := []struct {
		name    string
		from    domain.TraderState
		command string
		ok      bool
	}{
		{"start from idle", domain.TraderIdle, "start", true},
		{"start from running", domain.TraderRunning, "start", false},
		{"start from error", domain.TraderError, "start", false},
		{"stop from running", domain.TraderRunning, "stop", true},
		{"stop from paused", domain.TraderPaused, "stop", true},
		{"stop from idle", domain.TraderIdle, "stop", false},
		{"pause from running", domain.TraderRunning, "pause", true},
		{"pause from paused", domain.TraderPaused, "pause", false},
		{"resume from paused", domain.TraderPaused, "resume", true},
		{"resume from running", domain.TraderRunning, "resume", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := statusAPI(tc.from)
			trader := usecase.NewAutoTrader(api, zap.NewNop())
			trader.Tick(context.Background())

			var err error
			switch tc.command {
			case "start":
				err = trader.Start(context.Background())
			case "stop":
				err = trader.Stop(context.Background())
			case "pause":
				err = trader.Pause(context.Background())
			case "resume":
				err = trader.Resume(context.Background())
			}

			if tc.ok {
				assert.NoError(t, err)
				assert.Equal(t, []string{tc.command}, api.Commands)
			} else {
				assert.ErrorIs(t, err, domain.ErrInvalidTransition)
				assert.Empty(t, api.Commands, "rejected commands must not reach the backend")
			}
		})
	}
}

func TestAutoTraderRejectsCommandsBeforeFirstPoll(t *testing.T) {
	api := statusAPI(domain.TraderIdle)
	trader := usecase.NewAutoTrader(api, zap.NewNop())

	err := trader.Start(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Empty(t, api.Commands)
}

func TestAutoTraderNoOptimisticTransition(t *testing.T) {
	// The backend accepts the start but the next poll still reports idle.
	api := statusAPI(domain.TraderIdle, domain.TraderIdle)
	trader := usecase.NewAutoTrader(api, zap.NewNop())
	trader.Tick(context.Background())

	require.NoError(t, trader.Start(context.Background()))

	status, ok := trader.Status()
	require.True(t, ok)
	assert.Equal(t, domain.TraderIdle, status.State, "mirror changes only through a confirming poll")
}

func TestAutoTraderConfirmsThroughPoll(t *testing.T) {
	api := statusAPI(domain.TraderIdle, domain.TraderRunning)
	trader := usecase.NewAutoTrader(api, zap.NewNop())
	trader.Tick(context.Background())

	require.NoError(t, trader.Start(context.Background()))

	status, _ := trader.Status()
	assert.Equal(t, domain.TraderRunning, status.State)
	assert.Equal(t, 2, api.StatusCalls, "command success triggers a confirming poll")
}

func TestAutoTraderBusyGuard(t *testing.T) {
	api := statusAPI(domain.TraderRunning)
	block := make(chan struct{})
	started := make(chan struct{})
	api.CommandFn = func(ctx context.Context, name string) error {
		close(started)
		<-block
		return nil
	}
	trader := usecase.NewAutoTrader(api, zap.NewNop())
	trader.Tick(context.Background())

	done := make(chan error, 1)
	go func() { done <- trader.Pause(context.Background()) }()
	<-started

	assert.True(t, trader.Busy())
	err := trader.Stop(context.Background())
	assert.ErrorIs(t, err, domain.ErrCommandInFlight)

	close(block)
	require.NoError(t, <-done)
	assert.False(t, trader.Busy())
	assert.Equal(t, []string{"pause"}, api.Commands)
}

func TestAutoTraderCommandFailure(t *testing.T) {
	api := statusAPI(domain.TraderIdle)
	wantErr := errors.New("risk limit breached")
	api.CommandFn = func(ctx context.Context, name string) error { return wantErr }
	trader := usecase.NewAutoTrader(api, zap.NewNop())
	trader.Tick(context.Background())

	err := trader.Start(context.Background())
	assert.ErrorIs(t, err, wantErr)
	assert.False(t, trader.Busy())
	assert.Equal(t, 1, api.StatusCalls, "no confirming poll after a failed command")
}

func TestAutoTraderPollFailureNote(t *testing.T) {
	var mu sync.Mutex
	fail := false
	api := &MockAPI{}
	api.AutoStatusFn = func(ctx context.Context) (*domain.AutoTraderStatus, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return nil, errors.New("gateway timeout")
		}
		return &domain.AutoTraderStatus{State: domain.TraderRunning, SessionTrades: 3}, nil
	}
	trader := usecase.NewAutoTrader(api, zap.NewNop())

	trader.Tick(context.Background())
	assert.Empty(t, trader.StatusNote())

	mu.Lock()
	fail = true
	mu.Unlock()
	trader.Tick(context.Background())

	// The note persists and the last good mirror stays readable.
	assert.NotEmpty(t, trader.StatusNote())
	status, ok := trader.Status()
	require.True(t, ok)
	assert.Equal(t, 3, status.SessionTrades)

	mu.Lock()
	fail = false
	mu.Unlock()
	trader.Tick(context.Background())
	assert.Empty(t, trader.StatusNote(), "a successful poll clears the note")
}

func TestAutoTraderRiskForm(t *testing.T) {
	api := statusAPI(domain.TraderIdle)
	api.AutoStatusFn = func(ctx context.Context) (*domain.AutoTraderStatus, error) {
		return &domain.AutoTraderStatus{
			State:        domain.TraderIdle,
			RiskSettings: domain.RiskSettings{MinSpreadPct: 0.5, MaxTradeSizeUSDT: 100},
		}, nil
	}
	trader := usecase.NewAutoTrader(api, zap.NewNop())

	assert.False(t, trader.BeginRiskEdit(), "no form before the first poll")

	trader.Tick(context.Background())
	require.True(t, trader.BeginRiskEdit())

	staged, ok := trader.StagedRiskSettings()
	require.True(t, ok)
	assert.Equal(t, 0.5, staged.MinSpreadPct)

	staged.MaxTradeSizeUSDT = 250
	trader.StageRiskSettings(staged)

	// A poll refreshing the mirror must not clobber staged edits.
	trader.Tick(context.Background())
	staged, _ = trader.StagedRiskSettings()
	assert.Equal(t, 250.0, staged.MaxTradeSizeUSDT)

	require.NoError(t, trader.SaveRiskSettings(context.Background()))
	require.Len(t, api.RiskUpdates, 1)
	assert.Equal(t, 250.0, api.RiskUpdates[0].MaxTradeSizeUSDT)

	_, ok = trader.StagedRiskSettings()
	assert.False(t, ok, "form closes after a successful save")
}

func TestAutoTraderRiskSaveFailureKeepsForm(t *testing.T) {
	api := statusAPI(domain.TraderIdle)
	api.CommandFn = func(ctx context.Context, name string) error {
		if name == "risk" {
			return errors.New("validation failed")
		}
		return nil
	}
	trader := usecase.NewAutoTrader(api, zap.NewNop())
	trader.Tick(context.Background())

	require.True(t, trader.BeginRiskEdit())
	trader.StageRiskSettings(domain.RiskSettings{MinSpreadPct: 9})

	err := trader.SaveRiskSettings(context.Background())
	require.Error(t, err)

	staged, ok := trader.StagedRiskSettings()
	require.True(t, ok, "staged values survive a failed save")
	assert.Equal(t, 9.0, staged.MinSpreadPct)

	trader.CancelRiskEdit()
	_, ok = trader.StagedRiskSettings()
	assert.False(t, ok)
}
