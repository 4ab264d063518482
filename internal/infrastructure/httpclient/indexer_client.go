package httpclient

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/tkartsan/waletapp/internal/domain/entity"
	"github.com/tkartsan/waletapp/internal/infrastructure/configloader"
)

// nativeBalanceResponse is the indexer's native balance payload.
type nativeBalanceResponse struct {
	Balance string `json:"balance"`
}

// tokenBalancesPage is one cursor-paginated page of ERC-20 balances. Older
// API versions return a bare array instead, which the client also accepts.
type tokenBalancesPage struct {
	Cursor string                   `json:"cursor"`
	Result []entity.RawTokenBalance `json:"result"`
}

// tokenPriceResponse is the indexer's per-token price payload. An absent
// usdPrice field decodes to 0, the "unknown price" sentinel.
type tokenPriceResponse struct {
	UsdPrice float64 `json:"usdPrice"`
}

// IndexerClient talks to the Moralis-style indexing service: wallet balances
// (native and ERC-20) and per-token USD prices. It implements
// port.BalanceSource and port.TokenPriceOracle.
type IndexerClient struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	chain   string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewIndexerClient creates a new IndexerClient. It fails with
// entity.ErrMissingCredential when no API key is configured, so aggregation
// can never start without one.
func NewIndexerClient(cfg configloader.IndexerConfig, logger *zap.Logger) (*IndexerClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, entity.ErrMissingCredential
	}
	return &IndexerClient{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		chain:   cfg.Chain,
		timeout: time.Duration(cfg.RequestTimeoutMillis) * time.Millisecond,
		limiter: rate.NewLimiter(rate.Limit(cfg.MaxRequestsPerSecond), int(math.Ceil(cfg.MaxRequestsPerSecond))),
		logger:  logger.Named("IndexerClient"),
	}, nil
}

func (c *IndexerClient) get(ctx context.Context, requestURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}
	c.logger.Debug("Requesting indexer", zap.String("url", requestURL))
	return doGet(ctx, c.client, requestURL, c.timeout, map[string]string{"X-API-Key": c.apiKey})
}

// GetNativeBalance fetches the wallet's native coin balance in wei.
func (c *IndexerClient) GetNativeBalance(ctx context.Context, address string) (*big.Int, error) {
	requestURL := fmt.Sprintf("%s/%s/balance?chain=%s", c.baseURL, address, url.QueryEscape(c.chain))

	body, err := c.get(ctx, requestURL)
	if err != nil {
		c.logger.Error("Native balance request failed", zap.String("address", address), zap.Error(err))
		return nil, err
	}

	var nb nativeBalanceResponse
	if err := json.Unmarshal(body, &nb); err != nil {
		return nil, fmt.Errorf("failed to unmarshal native balance response: %w", err)
	}

	wei, ok := new(big.Int).SetString(nb.Balance, 10)
	if !ok || wei.Sign() < 0 {
		return nil, fmt.Errorf("indexer returned a non-integer native balance %q for %s", nb.Balance, address)
	}
	return wei, nil
}

// GetTokenBalances fetches all ERC-20 balances held by the address, following
// the cursor until the upstream page set is exhausted.
func (c *IndexerClient) GetTokenBalances(ctx context.Context, address string) ([]entity.RawTokenBalance, error) {
	baseRequestURL := fmt.Sprintf("%s/%s/erc20?chain=%s", c.baseURL, address, url.QueryEscape(c.chain))

	var all []entity.RawTokenBalance
	cursor := ""
	for {
		requestURL := baseRequestURL
		if cursor != "" {
			requestURL += "&cursor=" + url.QueryEscape(cursor)
		}

		body, err := c.get(ctx, requestURL)
		if err != nil {
			c.logger.Error("Token balances request failed", zap.String("address", address), zap.Error(err))
			return nil, err
		}

		var page tokenBalancesPage
		if err := json.Unmarshal(body, &page); err == nil && page.Result != nil {
			all = append(all, page.Result...)
			if page.Cursor == "" {
				c.logger.Debug("Token balances fetched", zap.String("address", address), zap.Int("count", len(all)))
				return all, nil
			}
			cursor = page.Cursor
			continue
		}

		var direct []entity.RawTokenBalance
		if err := json.Unmarshal(body, &direct); err != nil {
			return nil, fmt.Errorf("failed to unmarshal token balances response from %s: %w", requestURL, err)
		}
		c.logger.Debug("Token balances fetched (unpaginated response)", zap.String("address", address), zap.Int("count", len(direct)))
		return append(all, direct...), nil
	}
}

// TokenPriceUSD fetches the USD unit price of one ERC-20 token.
func (c *IndexerClient) TokenPriceUSD(ctx context.Context, tokenAddress string) (float64, error) {
	requestURL := fmt.Sprintf("%s/erc20/%s/price?chain=%s", c.baseURL, tokenAddress, url.QueryEscape(c.chain))

	body, err := c.get(ctx, requestURL)
	if err != nil {
		return 0, err
	}

	var pr tokenPriceResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return 0, fmt.Errorf("failed to unmarshal token price response: %w", err)
	}
	return pr.UsdPrice, nil
}
