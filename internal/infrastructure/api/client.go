package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/vitos/arb_dashboard/internal/domain"
	"go.uber.org/zap"
)

// DefaultBaseURL is used when no base path override is configured.
const DefaultBaseURL = "http://127.0.0.1:8000/api/v1"

var _ domain.BackendAPI = (*Client)(nil)

// Error is a command failure reported by the backend. Detail carries the
// server-supplied message when one was present in the response body.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// Client implements domain.BackendAPI over the backend's REST surface.
// There is no retry logic here: recovery is always timer-driven (next poll)
// or user-driven (re-click).
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

func NewClient(baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/json")

	return &Client{http: client, logger: logger}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	r := c.http.R().SetContext(ctx)
	if body != nil {
		r.SetHeader("Content-Type", "application/json")
		r.SetBody(body)
	}
	if out != nil {
		r.SetResult(out)
	}

	// Decode FastAPI-style {"detail": "..."} bodies on failure.
	var detail struct {
		Detail string `json:"detail"`
	}
	r.SetError(&detail)

	resp, err := r.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		return &Error{Status: resp.StatusCode(), Detail: detail.Detail}
	}
	return nil
}

// --- Spread feed ---

type spreadsEnvelope struct {
	Spreads []domain.Opportunity `json:"spreads"`
}

func (c *Client) GetLiveSpreads(ctx context.Context) ([]domain.Opportunity, error) {
	var out spreadsEnvelope
	if err := c.do(ctx, http.MethodGet, "/spreads/live", nil, &out); err != nil {
		return nil, err
	}
	return out.Spreads, nil
}

// GetTestSpreads hits the scanner's secondary source. Unlike the live
// endpoint, it returns a bare array.
func (c *Client) GetTestSpreads(ctx context.Context) ([]domain.Opportunity, error) {
	var out []domain.Opportunity
	if err := c.do(ctx, http.MethodGet, "/scanner/test-spreads", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- Liquidity ---

func (c *Client) GetLiquidity(ctx context.Context, key domain.OpportunityKey) (*domain.LiquidityAnalysis, error) {
	pair := strings.ReplaceAll(key.Pair, "/", "-")
	path := fmt.Sprintf("/spreads/liquidity/%s?buy_exchange=%s&sell_exchange=%s",
		url.PathEscape(pair),
		url.QueryEscape(key.BuyExchange),
		url.QueryEscape(key.SellExchange))

	var out domain.LiquidityAnalysis
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Trading ---

func (c *Client) GetTradingStatus(ctx context.Context) (*domain.TradingStatus, error) {
	var out domain.TradingStatus
	if err := c.do(ctx, http.MethodGet, "/trading/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type executeEnvelope struct {
	Success bool `json:"success"`
	Trade   struct {
		ActualProfit float64 `json:"actual_profit"`
		BuyOrderID   string  `json:"buy_order_id"`
		SellOrderID  string  `json:"sell_order_id"`
		Error        string  `json:"error"`
	} `json:"trade"`
}

func (c *Client) ExecuteTrade(ctx context.Context, req *domain.TradeRequest) (*domain.TradeResult, error) {
	var out executeEnvelope
	if err := c.do(ctx, http.MethodPost, "/trading/execute", req, &out); err != nil {
		return nil, err
	}
	return &domain.TradeResult{
		Success:      out.Success,
		ActualProfit: out.Trade.ActualProfit,
		BuyOrderID:   out.Trade.BuyOrderID,
		SellOrderID:  out.Trade.SellOrderID,
		Error:        out.Trade.Error,
	}, nil
}

func (c *Client) GetSimulationStats(ctx context.Context) (*domain.SimulationStats, error) {
	var out domain.SimulationStats
	if err := c.do(ctx, http.MethodGet, "/trading/stats/simulation", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type exchangesEnvelope struct {
	Exchanges []domain.ExchangeInfo `json:"exchanges"`
}

func (c *Client) GetExchanges(ctx context.Context) ([]domain.ExchangeInfo, error) {
	var out exchangesEnvelope
	if err := c.do(ctx, http.MethodGet, "/exchanges", nil, &out); err != nil {
		return nil, err
	}
	return out.Exchanges, nil
}

// --- Auto-trader ---

func (c *Client) GetAutoTraderStatus(ctx context.Context) (*domain.AutoTraderStatus, error) {
	var out domain.AutoTraderStatus
	if err := c.do(ctx, http.MethodGet, "/auto/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) StartAutoTrader(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auto/start", nil, nil)
}

func (c *Client) StopAutoTrader(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auto/stop", nil, nil)
}

func (c *Client) PauseAutoTrader(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auto/pause", nil, nil)
}

func (c *Client) ResumeAutoTrader(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auto/resume", nil, nil)
}

func (c *Client) UpdateRiskSettings(ctx context.Context, settings domain.RiskSettings) error {
	return c.do(ctx, http.MethodPut, "/auto/risk/settings", settings, nil)
}

// --- Display settings ---

func (c *Client) GetSettings(ctx context.Context) (*domain.Settings, error) {
	var out domain.Settings
	if err := c.do(ctx, http.MethodGet, "/settings", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type thresholdRequest struct {
	Threshold float64 `json:"threshold"`
}

func (c *Client) UpdateMinThreshold(ctx context.Context, threshold float64) error {
	return c.do(ctx, http.MethodPut, "/settings/threshold", thresholdRequest{Threshold: threshold}, nil)
}

func (c *Client) UpdateMaxThreshold(ctx context.Context, threshold float64) error {
	return c.do(ctx, http.MethodPut, "/settings/max-threshold", thresholdRequest{Threshold: threshold}, nil)
}

type blacklistEnvelope struct {
	Blacklist []string `json:"blacklist"`
}

func (c *Client) AddToBlacklist(ctx context.Context, coin string) ([]string, error) {
	var out blacklistEnvelope
	path := "/settings/blacklist/" + url.PathEscape(normalizeCoin(coin))
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Blacklist, nil
}

func (c *Client) RemoveFromBlacklist(ctx context.Context, coin string) ([]string, error) {
	var out blacklistEnvelope
	path := "/settings/blacklist/" + url.PathEscape(normalizeCoin(coin))
	if err := c.do(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Blacklist, nil
}

func normalizeCoin(coin string) string {
	return strings.ToUpper(strings.TrimSpace(coin))
}

// --- Credentials ---

type apiKeysEnvelope struct {
	Exchanges []string `json:"exchanges"`
}

func (c *Client) ListAPIKeyExchanges(ctx context.Context) ([]string, error) {
	var out apiKeysEnvelope
	if err := c.do(ctx, http.MethodGet, "/settings/api-keys", nil, &out); err != nil {
		return nil, err
	}
	return out.Exchanges, nil
}

// SaveAPIKeys submits credential material. Neither the key nor the secret
// is ever logged.
func (c *Client) SaveAPIKeys(ctx context.Context, creds *domain.APICredentials) error {
	return c.do(ctx, http.MethodPost, "/settings/api-keys", creds, nil)
}

func (c *Client) DeleteAPIKeys(ctx context.Context, exchange string) error {
	return c.do(ctx, http.MethodDelete, "/settings/api-keys/"+url.PathEscape(exchange), nil, nil)
}
