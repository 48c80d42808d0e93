package usecase_test

import (
	"context"
	"sync"

	"github.com/vitos/arb_dashboard/internal/domain"
)

// MockAPI implements domain.BackendAPI for tests. Behavior is overridden
// per test via the Fn fields; calls are counted under the mutex.
type MockAPI struct {
	mu sync.Mutex

	LiveSpreadsFn func(ctx context.Context) ([]domain.Opportunity, error)
	TestSpreadsFn func(ctx context.Context) ([]domain.Opportunity, error)
	LiquidityFn   func(ctx context.Context, key domain.OpportunityKey) (*domain.LiquidityAnalysis, error)
	AutoStatusFn  func(ctx context.Context) (*domain.AutoTraderStatus, error)
	CommandFn     func(ctx context.Context, name string) error
	ExecuteFn     func(ctx context.Context, req *domain.TradeRequest) (*domain.TradeResult, error)
	SettingsFn    func(ctx context.Context) (*domain.Settings, error)
	StatusFn      func(ctx context.Context) (*domain.TradingStatus, error)
	StatsFn       func(ctx context.Context) (*domain.SimulationStats, error)
	ExchangesFn   func(ctx context.Context) ([]domain.ExchangeInfo, error)
	BlacklistFn   func(coin string, remove bool) ([]string, error)

	MinErr error
	MaxErr error

	LiveCalls      int
	TestCalls      int
	LiquidityCalls int
	StatusCalls    int
	Commands       []string
	MinUpdates     []float64
	MaxUpdates     []float64
	BlacklistOps   []string
	RiskUpdates    []domain.RiskSettings
	LastTradeReq   *domain.TradeRequest
	DeletedKeys    []string
	SavedCreds     []domain.APICredentials
}

func (m *MockAPI) GetLiveSpreads(ctx context.Context) ([]domain.Opportunity, error) {
	m.mu.Lock()
	m.LiveCalls++
	fn := m.LiveSpreadsFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return nil, nil
}

func (m *MockAPI) GetTestSpreads(ctx context.Context) ([]domain.Opportunity, error) {
	m.mu.Lock()
	m.TestCalls++
	fn := m.TestSpreadsFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return nil, nil
}

func (m *MockAPI) GetLiquidity(ctx context.Context, key domain.OpportunityKey) (*domain.LiquidityAnalysis, error) {
	m.mu.Lock()
	m.LiquidityCalls++
	fn := m.LiquidityFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, key)
	}
	return &domain.LiquidityAnalysis{}, nil
}

func (m *MockAPI) GetTradingStatus(ctx context.Context) (*domain.TradingStatus, error) {
	m.mu.Lock()
	fn := m.StatusFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return &domain.TradingStatus{}, nil
}

func (m *MockAPI) ExecuteTrade(ctx context.Context, req *domain.TradeRequest) (*domain.TradeResult, error) {
	m.mu.Lock()
	m.LastTradeReq = req
	fn := m.ExecuteFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, req)
	}
	return &domain.TradeResult{Success: true}, nil
}

func (m *MockAPI) GetSimulationStats(ctx context.Context) (*domain.SimulationStats, error) {
	m.mu.Lock()
	fn := m.StatsFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return &domain.SimulationStats{}, nil
}

func (m *MockAPI) GetExchanges(ctx context.Context) ([]domain.ExchangeInfo, error) {
	m.mu.Lock()
	fn := m.ExchangesFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return nil, nil
}

func (m *MockAPI) GetAutoTraderStatus(ctx context.Context) (*domain.AutoTraderStatus, error) {
	m.mu.Lock()
	m.StatusCalls++
	fn := m.AutoStatusFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return &domain.AutoTraderStatus{State: domain.TraderIdle}, nil
}

func (m *MockAPI) command(ctx context.Context, name string) error {
	m.mu.Lock()
	m.Commands = append(m.Commands, name)
	fn := m.CommandFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, name)
	}
	return nil
}

func (m *MockAPI) StartAutoTrader(ctx context.Context) error  { return m.command(ctx, "start") }
func (m *MockAPI) StopAutoTrader(ctx context.Context) error   { return m.command(ctx, "stop") }
func (m *MockAPI) PauseAutoTrader(ctx context.Context) error  { return m.command(ctx, "pause") }
func (m *MockAPI) ResumeAutoTrader(ctx context.Context) error { return m.command(ctx, "resume") }

func (m *MockAPI) UpdateRiskSettings(ctx context.Context, settings domain.RiskSettings) error {
	m.mu.Lock()
	m.RiskUpdates = append(m.RiskUpdates, settings)
	fn := m.CommandFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, "risk")
	}
	return nil
}

func (m *MockAPI) GetSettings(ctx context.Context) (*domain.Settings, error) {
	m.mu.Lock()
	fn := m.SettingsFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return &domain.Settings{}, nil
}

func (m *MockAPI) UpdateMinThreshold(ctx context.Context, threshold float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MinErr != nil {
		return m.MinErr
	}
	m.MinUpdates = append(m.MinUpdates, threshold)
	return nil
}

func (m *MockAPI) UpdateMaxThreshold(ctx context.Context, threshold float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MaxErr != nil {
		return m.MaxErr
	}
	m.MaxUpdates = append(m.MaxUpdates, threshold)
	return nil
}

func (m *MockAPI) AddToBlacklist(ctx context.Context, coin string) ([]string, error) {
	m.mu.Lock()
	m.BlacklistOps = append(m.BlacklistOps, "add:"+coin)
	fn := m.BlacklistFn
	m.mu.Unlock()
	if fn != nil {
		return fn(coin, false)
	}
	return []string{coin}, nil
}

func (m *MockAPI) RemoveFromBlacklist(ctx context.Context, coin string) ([]string, error) {
	m.mu.Lock()
	m.BlacklistOps = append(m.BlacklistOps, "remove:"+coin)
	fn := m.BlacklistFn
	m.mu.Unlock()
	if fn != nil {
		return fn(coin, true)
	}
	return nil, nil
}

func (m *MockAPI) ListAPIKeyExchanges(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (m *MockAPI) SaveAPIKeys(ctx context.Context, creds *domain.APICredentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SavedCreds = append(m.SavedCreds, *creds)
	return nil
}

func (m *MockAPI) DeleteAPIKeys(ctx context.Context, exchange string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeletedKeys = append(m.DeletedKeys, exchange)
	return nil
}

// MockJournal records journal writes in memory.
type MockJournal struct {
	mu     sync.Mutex
	Trades []*domain.TradeRecord
	Snaps  []*domain.StatsSnapshot
	Err    error
}

func (j *MockJournal) SaveTrade(ctx context.Context, record *domain.TradeRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Err != nil {
		return j.Err
	}
	j.Trades = append(j.Trades, record)
	return nil
}

func (j *MockJournal) ListTrades(ctx context.Context, limit int) ([]*domain.TradeRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.Trades, nil
}

func (j *MockJournal) SaveStatsSnapshot(ctx context.Context, snap *domain.StatsSnapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Err != nil {
		return j.Err
	}
	j.Snaps = append(j.Snaps, snap)
	return nil
}

func (j *MockJournal) ListStatsSnapshots(ctx context.Context, limit int) ([]*domain.StatsSnapshot, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.Snaps, nil
}
