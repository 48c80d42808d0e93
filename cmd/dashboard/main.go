package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/vitos/arb_dashboard/internal/infrastructure/api"
	"github.com/vitos/arb_dashboard/internal/infrastructure/logger"
	"github.com/vitos/arb_dashboard/internal/infrastructure/storage"
	"github.com/vitos/arb_dashboard/internal/usecase"
)

type Config struct {
	Backend struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"backend"`
	Polling struct {
		SpreadsMs   int `yaml:"spreads_ms"`
		AutoMs      int `yaml:"auto_ms"`
		StatsMs     int `yaml:"stats_ms"`
		ExchangesMs int `yaml:"exchanges_ms"`
	} `yaml:"polling"`
	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
	Journal struct {
		Path string `yaml:"path"`
	} `yaml:"journal"`
}

func loadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func interval(ms, fallback int) time.Duration {
	if ms <= 0 {
		ms = fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	// 1. Load Config
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Init Logger (file only, the terminal belongs to the UI)
	logFile := cfg.Logging.File
	if logFile == "" {
		logFile = "dashboard.log"
	}
	log, err := logger.NewLogger(cfg.Logging.Level, logFile)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// 3. Init Journal
	journalPath := cfg.Journal.Path
	if journalPath == "" {
		journalPath = "dashboard.db"
	}
	journal, err := storage.NewSQLiteJournal(journalPath)
	if err != nil {
		log.Fatal("Failed to init sqlite journal", zap.Error(err))
	}
	defer journal.Close()

	// 4. Init Backend Client
	client := api.NewClient(cfg.Backend.BaseURL, log)

	// 5. Init Controllers
	feed := usecase.NewSpreadFeed(client, log)
	liquidity := usecase.NewLiquidityCache(client, log)
	trader := usecase.NewAutoTrader(client, log)
	executor := usecase.NewTradeExecutor(client, journal, log)
	monitor := usecase.NewStatusMonitor(client, journal, log)

	notices := make(chan usecase.Notice, 16)
	settings := usecase.NewSettingsPipeline(client, 0, func(n usecase.Notice) {
		select {
		case notices <- n:
		default:
		}
	}, log)
	defer settings.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := settings.Load(ctx); err != nil {
		log.Warn("Failed to load settings, using defaults", zap.Error(err))
	}

	// 6. Start Pollers
	pollers := []*usecase.Poller{
		usecase.NewPoller("spreads", interval(cfg.Polling.SpreadsMs, 5000), log),
		usecase.NewPoller("auto-trader", interval(cfg.Polling.AutoMs, 5000), log),
		usecase.NewPoller("sim-stats", interval(cfg.Polling.StatsMs, 30000), log),
		usecase.NewPoller("exchanges", interval(cfg.Polling.ExchangesMs, 60000), log),
	}
	pollers[0].Start(ctx, feed.Tick)
	pollers[1].Start(ctx, trader.Tick)
	pollers[2].Start(ctx, func(ctx context.Context) {
		monitor.TickStats(ctx)
		monitor.TickTradingStatus(ctx)
	})
	pollers[3].Start(ctx, monitor.TickExchanges)

	// 7. Run UI
	m := newDashboardModel(dashboardDeps{
		feed:      feed,
		liquidity: liquidity,
		settings:  settings,
		trader:    trader,
		executor:  executor,
		monitor:   monitor,
		notices:   notices,
		logger:    log,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error("UI exited with error", zap.Error(err))
	}

	// 8. Shutdown
	log.Info("Shutting down...")
	cancel()
	for _, p := range pollers {
		p.Stop()
	}
}
