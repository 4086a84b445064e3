package paprika

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/vitos/coin_tracker/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	BaseURL     = "https://api.coinpaprika.com/v1"
	IconBaseURL = "https://cryptoicon-api.vercel.app/api/icon"

	defaultTimeout  = 10 * time.Second
	ohlcvDateFormat = "2006-01-02"
	maxErrorBody    = 512
)

type ClientConfig struct {
	BaseURL           string
	IconBaseURL       string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Logger            *zap.Logger
}

// Client reads coins, tickers and OHLCV series from the coinpaprika REST API.
type Client struct {
	baseURL     string
	iconBaseURL string
	client      *http.Client
	limiter     *rate.Limiter
	logger      *zap.Logger
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}
	if cfg.IconBaseURL == "" {
		cfg.IconBaseURL = IconBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		iconBaseURL: strings.TrimRight(cfg.IconBaseURL, "/"),
		client:      &http.Client{Timeout: cfg.Timeout},
		limiter:     rate.NewLimiter(limit, cfg.Burst),
		logger:      cfg.Logger,
	}
}

// --- REST API ---

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if resp.StatusCode >= 400 {
		return nil, &domain.APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	return body, nil
}

// errorMessage pulls {"error": "..."} out of an error body, falling back to the raw text.
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}
	return msg
}

func decode(body []byte, path string, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrInvalidPayload, path, err)
	}
	return nil
}

func (c *Client) ListCoins(ctx context.Context) ([]domain.CoinSummary, error) {
	const path = "/coins"
	body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	var coins []domain.CoinSummary
	if err := decode(body, path, &coins); err != nil {
		return nil, err
	}
	// The upstream list is long; a malformed row is dropped rather than
	// failing the whole list.
	valid := coins[:0]
	skipped := 0
	for _, coin := range coins {
		if err := coin.Validate(); err != nil {
			skipped++
			c.logger.Debug("Skipping invalid coin", zap.String("coin_id", coin.ID), zap.Error(err))
			continue
		}
		valid = append(valid, coin)
	}
	if skipped > 0 {
		c.logger.Warn("Dropped invalid coins from list", zap.Int("skipped", skipped), zap.Int("kept", len(valid)))
	}
	return valid, nil
}

func (c *Client) GetCoin(ctx context.Context, coinID string) (*domain.CoinDetail, error) {
	path := "/coins/" + url.PathEscape(coinID)
	body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	var coin domain.CoinDetail
	if err := decode(body, path, &coin); err != nil {
		return nil, err
	}
	if err := coin.Validate(coinID); err != nil {
		return nil, err
	}
	return &coin, nil
}

func (c *Client) GetTicker(ctx context.Context, coinID string) (*domain.PriceSnapshot, error) {
	path := "/tickers/" + url.PathEscape(coinID)
	body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}

	var ticker domain.PriceSnapshot
	if err := decode(body, path, &ticker); err != nil {
		return nil, err
	}
	if err := ticker.Validate(coinID); err != nil {
		return nil, err
	}
	return &ticker, nil
}

// GetOHLCV returns daily candles between start and end, oldest first.
func (c *Client) GetOHLCV(ctx context.Context, coinID string, start, end time.Time) ([]domain.Candle, error) {
	path := "/coins/" + url.PathEscape(coinID) + "/ohlcv/historical"
	query := url.Values{}
	query.Set("start", start.UTC().Format(ohlcvDateFormat))
	query.Set("end", end.UTC().Format(ohlcvDateFormat))

	body, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var candles []domain.Candle
	if err := decode(body, path, &candles); err != nil {
		return nil, err
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].TimeOpen.Before(candles[j].TimeOpen)
	})
	return candles, nil
}

// IconURL returns the icon address for a ticker symbol.
func (c *Client) IconURL(symbol string) string {
	return c.iconBaseURL + "/" + url.PathEscape(strings.ToLower(symbol))
}
