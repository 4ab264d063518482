package httpclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/tkartsan/waletapp/internal/infrastructure/configloader"
)

// CoinGeckoClient quotes the chain's native coin in USD through the simple
// price endpoint. It implements port.NativePriceOracle.
type CoinGeckoClient struct {
	client     *fasthttp.Client
	baseURL    string
	coinID     string
	vsCurrency string
	timeout    time.Duration
	logger     *zap.Logger
}

// NewCoinGeckoClient creates a new CoinGeckoClient.
func NewCoinGeckoClient(cfg configloader.CoinGeckoConfig, logger *zap.Logger) *CoinGeckoClient {
	return &CoinGeckoClient{
		client:     &fasthttp.Client{},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		coinID:     cfg.NativeCoinID,
		vsCurrency: cfg.VsCurrency,
		timeout:    time.Duration(cfg.ClientTimeoutSeconds) * time.Second,
		logger:     logger.Named("CoinGeckoClient"),
	}
}

// NativePriceUSD fetches the native coin's unit price. A successful response
// that omits the price quotes as 0, the "unknown price" sentinel.
func (c *CoinGeckoClient) NativePriceUSD(ctx context.Context) (float64, error) {
	requestURL := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=%s",
		c.baseURL, url.QueryEscape(c.coinID), url.QueryEscape(c.vsCurrency))

	c.logger.Debug("Requesting native coin price", zap.String("url", requestURL))
	body, err := doGet(ctx, c.client, requestURL, c.timeout, nil)
	if err != nil {
		c.logger.Error("Native price request failed", zap.String("coinID", c.coinID), zap.Error(err))
		return 0, err
	}

	var quotes map[string]map[string]float64
	if err := json.Unmarshal(body, &quotes); err != nil {
		return 0, fmt.Errorf("failed to unmarshal simple price response: %w", err)
	}

	price, ok := quotes[c.coinID][c.vsCurrency]
	if !ok {
		c.logger.Warn("Price missing from simple price response, quoting zero",
			zap.String("coinID", c.coinID), zap.String("vsCurrency", c.vsCurrency))
		return 0, nil
	}
	return price, nil
}
