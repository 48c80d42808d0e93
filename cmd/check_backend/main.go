package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/vitos/arb_dashboard/internal/infrastructure/api"
)

type Config struct {
	Backend struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"backend"`
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

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	// 1. Load Config
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Testing backend at %s...\n", cfg.Backend.BaseURL)

	client := api.NewClient(cfg.Backend.BaseURL, zap.NewNop())
	ctx := context.Background()

	// 2. Check Spread Feed
	spreads, err := client.GetLiveSpreads(ctx)
	if err != nil {
		fmt.Printf("❌ Failed to get live spreads: %v\n", err)
		fmt.Printf("   Trying fallback scanner...\n")
		spreads, err = client.GetTestSpreads(ctx)
		if err != nil {
			fmt.Printf("❌ Fallback scanner failed too: %v\n", err)
		} else {
			fmt.Printf("✅ Fallback scanner: %d spreads\n", len(spreads))
		}
	} else {
		fmt.Printf("✅ Live spreads: %d rows\n", len(spreads))
	}

	// 3. Check Trading Status
	status, err := client.GetTradingStatus(ctx)
	if err != nil {
		fmt.Printf("❌ Failed to get trading status: %v\n", err)
	} else {
		fmt.Printf("✅ Trading status: use_testnet=%v\n", status.UseTestnet)
	}

	// 4. Check Auto-Trader
	auto, err := client.GetAutoTraderStatus(ctx)
	if err != nil {
		fmt.Printf("❌ Failed to get auto-trader status: %v\n", err)
	} else {
		fmt.Printf("✅ Auto-trader: state=%s, session_trades=%d\n", auto.State, auto.SessionTrades)
	}

	// 5. Check Settings
	settings, err := client.GetSettings(ctx)
	if err != nil {
		fmt.Printf("❌ Failed to get settings: %v\n", err)
	} else {
		fmt.Printf("✅ Settings: min=%.2f%%, max=%.2f%%, %d blacklisted\n",
			settings.MinSpreadThreshold, settings.MaxSpreadThreshold, len(settings.BlacklistedCoins))
	}

	// 6. Check Exchanges
	exchanges, err := client.GetExchanges(ctx)
	if err != nil {
		fmt.Printf("❌ Failed to get exchanges: %v\n", err)
	} else {
		connected := 0
		for _, e := range exchanges {
			if e.Connected {
				connected++
			}
		}
		fmt.Printf("✅ Exchanges: %d total, %d connected\n", len(exchanges), connected)
	}
}
