package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/vitos/arb_dashboard/internal/domain"
	"github.com/vitos/arb_dashboard/internal/usecase"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	hotStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	cursorStyle   = lipgloss.NewStyle().Background(lipgloss.Color("238"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	panelStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

var amountTiers = []float64{100, 500, 1000, 5000}

var riskFieldNames = []string{
	"min spread %",
	"max trade size USDT",
	"max trades/hour",
	"max daily loss USDT",
}

type dashboardDeps struct {
	feed      *usecase.SpreadFeed
	liquidity *usecase.LiquidityCache
	settings  *usecase.SettingsPipeline
	trader    *usecase.AutoTrader
	executor  *usecase.TradeExecutor
	monitor   *usecase.StatusMonitor
	notices   chan usecase.Notice
	logger    *zap.Logger
}

type timedNotice struct {
	notice  usecase.Notice
	expires time.Time
}

type dashboardModel struct {
	deps dashboardDeps

	rows     []domain.Opportunity
	cursor   int
	expanded *domain.OpportunityKey

	mode      domain.TradingMode
	amountIdx int

	riskEditing bool
	riskField   int

	coinEntry  bool
	coinBuffer string

	historyOpen  bool
	tradeHistory []*domain.TradeRecord
	statsHistory []*domain.StatsSnapshot

	notices []timedNotice

	lastTrade *domain.TradeResult
}

type tickMsg time.Time

type noticeMsg usecase.Notice

type liquidityFetchedMsg struct {
	key domain.OpportunityKey
}

type traderCmdMsg struct {
	err error
}

type tradeDoneMsg struct {
	result *domain.TradeResult
	err    error
}

type historyMsg struct {
	trades []*domain.TradeRecord
	snaps  []*domain.StatsSnapshot
	err    error
}

func newDashboardModel(deps dashboardDeps) dashboardModel {
	mode := deps.settings.Settings().TradingMode
	if mode == "" {
		mode = domain.ModeSimulation
	}
	return dashboardModel{
		deps:      deps,
		mode:      mode,
		amountIdx: 2, // 1000 USDT
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m dashboardModel) listenNotices() tea.Cmd {
	return func() tea.Msg {
		return noticeMsg(<-m.deps.notices)
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.listenNotices())
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		m.rows = m.deps.feed.Snapshot()
		if m.cursor >= len(m.rows) && len(m.rows) > 0 {
			m.cursor = len(m.rows) - 1
		}
		m.pruneNotices()
		return m, tickCmd()

	case noticeMsg:
		m.pushNotice(usecase.Notice(msg))
		return m, m.listenNotices()

	case liquidityFetchedMsg:
		return m, nil

	case traderCmdMsg:
		if msg.err != nil {
			m.pushNotice(usecase.Notice{Text: msg.err.Error(), IsErr: true})
		}
		return m, nil

	case tradeDoneMsg:
		if msg.err != nil {
			m.pushNotice(usecase.Notice{Text: "Trade failed: " + msg.err.Error(), IsErr: true})
		} else {
			m.lastTrade = msg.result
			if msg.result.Success {
				m.pushNotice(usecase.Notice{Text: fmt.Sprintf("Trade executed, profit %.2f USDT", msg.result.ActualProfit)})
			} else {
				m.pushNotice(usecase.Notice{Text: "Trade rejected: " + msg.result.Error, IsErr: true})
			}
		}
		if m.historyOpen {
			return m, m.loadHistory()
		}
		return m, nil

	case historyMsg:
		if msg.err != nil {
			m.pushNotice(usecase.Notice{Text: "History unavailable: " + msg.err.Error(), IsErr: true})
			return m, nil
		}
		m.tradeHistory = msg.trades
		m.statsHistory = msg.snaps
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Coin entry swallows all keys until enter or esc.
	if m.coinEntry {
		switch msg.String() {
		case "enter":
			coin := m.coinBuffer
			m.coinEntry = false
			m.coinBuffer = ""
			if coin != "" {
				return m, func() tea.Msg {
					if err := m.deps.settings.AddCoin(coin); err != nil {
						return noticeMsg(usecase.Notice{Text: err.Error(), IsErr: true})
					}
					return nil
				}
			}
			return m, nil
		case "esc":
			m.coinEntry = false
			m.coinBuffer = ""
			return m, nil
		case "backspace":
			if len(m.coinBuffer) > 0 {
				m.coinBuffer = m.coinBuffer[:len(m.coinBuffer)-1]
			}
			return m, nil
		default:
			if len(msg.String()) == 1 {
				m.coinBuffer += msg.String()
			}
			return m, nil
		}
	}

	if m.riskEditing {
		return m.handleRiskKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case "enter":
		return m.toggleExpand()

	case "r":
		return m, func() tea.Msg {
			m.deps.feed.Refresh(context.Background())
			return nil
		}

	case "s":
		return m, m.traderCmd(m.deps.trader.Start)
	case "x":
		return m, m.traderCmd(m.deps.trader.Stop)
	case "p":
		return m, m.traderCmd(m.deps.trader.Pause)
	case "u":
		return m, m.traderCmd(m.deps.trader.Resume)

	case "e":
		if m.deps.trader.BeginRiskEdit() {
			m.riskEditing = true
			m.riskField = 0
		} else {
			m.pushNotice(usecase.Notice{Text: "Auto-trader status not loaded yet", IsErr: true})
		}

	case "+", "=":
		m.deps.settings.SetMinThreshold(m.deps.settings.Settings().MinSpreadThreshold + 0.1)
	case "-", "_":
		m.deps.settings.SetMinThreshold(m.deps.settings.Settings().MinSpreadThreshold - 0.1)
	case ">":
		m.deps.settings.SetMaxThreshold(m.deps.settings.Settings().MaxSpreadThreshold + 0.5)
	case "<":
		m.deps.settings.SetMaxThreshold(m.deps.settings.Settings().MaxSpreadThreshold - 0.5)

	case "B":
		m.coinEntry = true
		m.coinBuffer = ""

	case "H":
		m.historyOpen = !m.historyOpen
		if m.historyOpen {
			return m, m.loadHistory()
		}

	case "m":
		m.mode = m.deps.monitor.AllowedMode(nextMode(m.mode))

	case "1", "2", "3", "4":
		m.amountIdx = int(msg.String()[0] - '1')

	case "t":
		return m.executeTrade()
	}

	return m, nil
}

func (m dashboardModel) handleRiskKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	staged, ok := m.deps.trader.StagedRiskSettings()
	if !ok {
		m.riskEditing = false
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.deps.trader.CancelRiskEdit()
		m.riskEditing = false
	case "up", "k":
		if m.riskField > 0 {
			m.riskField--
		}
	case "down", "j":
		if m.riskField < len(riskFieldNames)-1 {
			m.riskField++
		}
	case "left", "right", "h", "l":
		up := msg.String() == "right" || msg.String() == "l"
		m.deps.trader.StageRiskSettings(adjustRiskField(staged, m.riskField, up))
	case "w", "enter":
		m.riskEditing = false
		return m, func() tea.Msg {
			if err := m.deps.trader.SaveRiskSettings(context.Background()); err != nil {
				return noticeMsg(usecase.Notice{Text: "Risk settings: " + err.Error(), IsErr: true})
			}
			return noticeMsg(usecase.Notice{Text: "Risk settings saved"})
		}
	}
	return m, nil
}

func adjustRiskField(s domain.RiskSettings, field int, up bool) domain.RiskSettings {
	sign := -1.0
	if up {
		sign = 1.0
	}
	switch field {
	case 0:
		s.MinSpreadPct += sign * 0.1
	case 1:
		s.MaxTradeSizeUSDT += sign * 50
	case 2:
		s.MaxTradesPerHour += int(sign)
	case 3:
		s.MaxDailyLossUSDT += sign * 10
	}
	return s
}

func (m dashboardModel) toggleExpand() (tea.Model, tea.Cmd) {
	if len(m.rows) == 0 {
		return m, nil
	}
	key := m.rows[m.cursor].Key()

	if m.expanded != nil && *m.expanded == key {
		// Collapse evicts the entry so re-opening fetches fresh data.
		m.deps.liquidity.Invalidate(key)
		m.expanded = nil
		return m, nil
	}

	if m.expanded != nil {
		m.deps.liquidity.Invalidate(*m.expanded)
	}
	m.expanded = &key
	return m, func() tea.Msg {
		m.deps.liquidity.Get(context.Background(), key)
		return liquidityFetchedMsg{key: key}
	}
}

func (m dashboardModel) loadHistory() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		trades, err := m.deps.executor.RecentTrades(ctx, 10)
		if err != nil {
			return historyMsg{err: err}
		}
		snaps, err := m.deps.monitor.StatsHistory(ctx, 5)
		if err != nil {
			return historyMsg{err: err}
		}
		return historyMsg{trades: trades, snaps: snaps}
	}
}

func (m dashboardModel) traderCmd(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return traderCmdMsg{err: fn(context.Background())}
	}
}

func (m dashboardModel) executeTrade() (tea.Model, tea.Cmd) {
	if len(m.rows) == 0 {
		return m, nil
	}
	opp := m.rows[m.cursor]
	amount := amountTiers[m.amountIdx]
	mode := m.deps.monitor.AllowedMode(m.mode)

	return m, func() tea.Msg {
		result, err := m.deps.executor.Execute(context.Background(), opp, amount, mode)
		return tradeDoneMsg{result: result, err: err}
	}
}

func nextMode(mode domain.TradingMode) domain.TradingMode {
	switch mode {
	case domain.ModeSimulation:
		return domain.ModeTestnet
	case domain.ModeTestnet:
		return domain.ModeLive
	default:
		return domain.ModeSimulation
	}
}

func (m *dashboardModel) pushNotice(n usecase.Notice) {
	m.notices = append(m.notices, timedNotice{notice: n, expires: time.Now().Add(3 * time.Second)})
}

func (m *dashboardModel) pruneNotices() {
	now := time.Now()
	kept := m.notices[:0]
	for _, n := range m.notices {
		if n.expires.After(now) {
			kept = append(kept, n)
		}
	}
	m.notices = kept
}

func (m dashboardModel) View() string {
	var s strings.Builder

	s.WriteString(m.renderHeader())
	s.WriteString("\n\n")
	s.WriteString(m.renderTable())
	s.WriteString("\n")

	switch {
	case m.riskEditing:
		s.WriteString(m.renderRiskForm())
	case m.historyOpen:
		s.WriteString(m.renderHistoryPanel())
	default:
		s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderTraderPanel(), " ", m.renderStatsPanel()))
	}
	s.WriteString("\n")

	if m.coinEntry {
		s.WriteString("Blacklist coin: " + m.coinBuffer + "█\n")
	}

	for _, n := range m.notices {
		if n.notice.IsErr {
			s.WriteString(errStyle.Render("✗ "+n.notice.Text) + "\n")
		} else {
			s.WriteString(okStyle.Render("✓ "+n.notice.Text) + "\n")
		}
	}

	s.WriteString(dimStyle.Render("\n↑/↓ move · enter depth · r refresh · t trade · 1-4 amount · m mode · s/x/p/u trader · e risk · H history · +/- min · B blacklist · q quit"))
	return s.String()
}

func (m dashboardModel) renderHeader() string {
	feed := m.deps.feed
	settings := m.deps.settings

	age := "never"
	if !feed.LastUpdate().IsZero() {
		age = time.Since(feed.LastUpdate()).Round(time.Second).String() + " ago"
	}
	loading := ""
	if feed.Loading() {
		loading = " ⟳"
	}

	min := settings.MinThreshold()
	max := settings.MaxThreshold()
	minMark, maxMark := "", ""
	if min.Dirty {
		minMark = "*"
	}
	if max.Dirty {
		maxMark = "*"
	}

	mode := string(m.deps.monitor.AllowedMode(m.mode))
	if status, ok := m.deps.monitor.TradingStatus(); ok && status.UseTestnet {
		mode += " (testnet forced)"
	}

	return headerStyle.Render(fmt.Sprintf(
		"%d spreads · %d profitable · %d hot | updated %s%s | min %.1f%%%s max %.1f%%%s | %s | %.0f USDT",
		feed.Count(), feed.ProfitableCount(), feed.HotCount(), age, loading,
		min.Pending, minMark, max.Pending, maxMark,
		mode, amountTiers[m.amountIdx]))
}

func (m dashboardModel) renderTable() string {
	if len(m.rows) == 0 {
		return dimStyle.Render("  waiting for spreads...")
	}

	var s strings.Builder
	s.WriteString(dimStyle.Render(fmt.Sprintf("  %-12s %-22s %8s %8s %10s", "PAIR", "ROUTE", "SPREAD", "NET", "PROFIT/1K")))
	s.WriteString("\n")

	for i, opp := range m.rows {
		net := "--"
		if opp.NetSpreadPct != nil {
			net = fmt.Sprintf("%.2f%%", *opp.NetSpreadPct)
		}
		line := fmt.Sprintf("  %-12s %-22s %7.2f%% %8s %9.2f$",
			opp.Pair,
			opp.BuyExchange+" → "+opp.SellExchange,
			opp.SpreadPct, net, opp.ProfitUSDT)

		switch {
		case i == m.cursor:
			line = cursorStyle.Render(line)
		case opp.EffectiveSpread() >= usecase.HotSpreadThreshold:
			line = hotStyle.Render(line)
		case opp.EffectiveSpread() > 0:
			line = positiveStyle.Render(line)
		}
		s.WriteString(line)
		s.WriteString("\n")

		if m.expanded != nil && *m.expanded == opp.Key() && i == m.cursor {
			s.WriteString(m.renderLiquidity(opp))
		}
	}
	return s.String()
}

func (m dashboardModel) renderLiquidity(opp domain.Opportunity) string {
	analysis, state := m.deps.liquidity.Peek(opp.Key())

	var body string
	switch state {
	case usecase.LiquidityPending, usecase.LiquidityAbsent:
		body = "analyzing depth..."
	case usecase.LiquidityUnavailable:
		body = errStyle.Render("liquidity unavailable — estimate withheld")
	case usecase.LiquidityResolved:
		var s strings.Builder
		if sum := analysis.Summary; sum != nil {
			s.WriteString(fmt.Sprintf("risk %s · slippage %.2f%% · optimal %.0f USDT\n",
				sum.RiskLevel, sum.TotalSlippagePct, sum.OptimalAmountUSDT))
			amount := amountTiers[m.amountIdx]
			if profit, err := usecase.EstimateRealProfit(opp, analysis, amount); err == nil {
				style := positiveStyle
				if profit < 0 {
					style = negativeStyle
				}
				s.WriteString(style.Render(fmt.Sprintf("real profit @ %.0f USDT: %.2f USDT", amount, profit)))
				s.WriteString("\n")
			}
			for _, f := range sum.RiskFactors {
				s.WriteString(dimStyle.Render("• "+f) + "\n")
			}
		}
		var tiers []string
		for _, tier := range domain.SlippageTiers {
			tiers = append(tiers, fmt.Sprintf("%s: %.2f%%", tier, usecase.TierSlippage(analysis, tier)))
		}
		s.WriteString(dimStyle.Render("slippage " + strings.Join(tiers, " · ")))
		body = s.String()
	}

	return panelStyle.Render(body) + "\n"
}

func (m dashboardModel) renderTraderPanel() string {
	var s strings.Builder
	s.WriteString("AUTO-TRADER\n")

	status, ok := m.deps.trader.Status()
	if !ok {
		s.WriteString(dimStyle.Render("status unknown"))
	} else {
		state := string(status.State)
		switch status.State {
		case domain.TraderRunning:
			state = okStyle.Render(state)
		case domain.TraderError:
			state = errStyle.Render(state)
		}
		s.WriteString(fmt.Sprintf("state: %s", state))
		if m.deps.trader.Busy() {
			s.WriteString(dimStyle.Render(" (command in flight)"))
		}
		s.WriteString("\n")
		s.WriteString(fmt.Sprintf("session: %d trades, %.2f USDT\n", status.SessionTrades, status.SessionProfit))
		s.WriteString(fmt.Sprintf("today: %d trades, %.2f USDT\n", status.RiskStats.TradesToday, status.RiskStats.DailyProfit))
		s.WriteString(dimStyle.Render(fmt.Sprintf("risk: ≥%.1f%% · ≤%.0f USDT · %d/h · loss cap %.0f",
			status.RiskSettings.MinSpreadPct, status.RiskSettings.MaxTradeSizeUSDT,
			status.RiskSettings.MaxTradesPerHour, status.RiskSettings.MaxDailyLossUSDT)))
	}

	if note := m.deps.trader.StatusNote(); note != "" {
		s.WriteString("\n" + errStyle.Render(note))
	}
	return panelStyle.Render(s.String())
}

func (m dashboardModel) renderStatsPanel() string {
	var s strings.Builder
	s.WriteString("SIMULATION\n")

	if stats, ok := m.deps.monitor.SimulationStats(); ok {
		s.WriteString(fmt.Sprintf("%d trades · %.1f%% win rate\n", stats.TotalTrades, stats.WinRate))
		s.WriteString(fmt.Sprintf("total %.2f · avg %.2f USDT\n", stats.TotalProfit, stats.AverageProfit))
	} else {
		s.WriteString(dimStyle.Render("no stats yet\n"))
	}

	var up, down int
	for _, e := range m.deps.monitor.Exchanges() {
		if e.Connected {
			up++
		} else {
			down++
		}
	}
	s.WriteString(dimStyle.Render(fmt.Sprintf("exchanges: %d up, %d down", up, down)))

	if m.lastTrade != nil {
		s.WriteString(fmt.Sprintf("\nlast trade: %.2f USDT", m.lastTrade.ActualProfit))
	}
	return panelStyle.Render(s.String())
}

func (m dashboardModel) renderHistoryPanel() string {
	var s strings.Builder
	s.WriteString("TRADE HISTORY\n")

	if len(m.tradeHistory) == 0 {
		s.WriteString(dimStyle.Render("no journaled trades yet\n"))
	} else {
		for _, r := range m.tradeHistory {
			profit := positiveStyle
			if r.Profit < 0 {
				profit = negativeStyle
			}
			s.WriteString(fmt.Sprintf("%s  %-12s %-18s %-10s %6.0f$ %s\n",
				r.CreatedAt.Format("01-02 15:04"),
				r.Pair,
				r.BuyExchange+" → "+r.SellExchange,
				r.Mode, r.AmountUSDT,
				profit.Render(fmt.Sprintf("%+.2f", r.Profit))))
		}
	}

	if len(m.statsHistory) > 0 {
		s.WriteString("\n")
		s.WriteString(dimStyle.Render("SIMULATION SNAPSHOTS\n"))
		for _, snap := range m.statsHistory {
			s.WriteString(dimStyle.Render(fmt.Sprintf("%s  %d trades · %.1f%% win · %.2f total\n",
				snap.CreatedAt.Format("01-02 15:04"),
				snap.TotalTrades, snap.WinRate, snap.TotalProfit)))
		}
	}
	return panelStyle.Render(s.String())
}

func (m dashboardModel) renderRiskForm() string {
	staged, ok := m.deps.trader.StagedRiskSettings()
	if !ok {
		return ""
	}

	values := []string{
		fmt.Sprintf("%.1f", staged.MinSpreadPct),
		fmt.Sprintf("%.0f", staged.MaxTradeSizeUSDT),
		fmt.Sprintf("%d", staged.MaxTradesPerHour),
		fmt.Sprintf("%.0f", staged.MaxDailyLossUSDT),
	}

	var s strings.Builder
	s.WriteString("RISK SETTINGS (←/→ adjust, w save, esc cancel)\n")
	for i, name := range riskFieldNames {
		line := fmt.Sprintf("%-22s %s", name, values[i])
		if i == m.riskField {
			line = cursorStyle.Render(line)
		}
		s.WriteString(line + "\n")
	}
	return panelStyle.Render(s.String())
}
