package service

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/tkartsan/waletapp/internal/app/port"
	"github.com/tkartsan/waletapp/internal/pkg/metrics"
)

const nativePriceCacheKey = "native"

// tokenPriceService implements port.PriceService. Every oracle failure is
// recovered locally to a zero price: pricing can degrade an asset but never
// fail an aggregation run.
type tokenPriceService struct {
	nativeOracle port.NativePriceOracle
	tokenOracle  port.TokenPriceOracle
	logger       port.Logger
	pricesCache  *cache.Cache // nil when caching is disabled
}

// NewTokenPriceService creates a new PriceService. A cacheTTL of zero
// disables caching, keeping exactly one price attempt per asset per run.
func NewTokenPriceService(
	nativeOracle port.NativePriceOracle,
	tokenOracle port.TokenPriceOracle,
	logger port.Logger,
	cacheTTL time.Duration,
) port.PriceService {
	var pricesCache *cache.Cache
	if cacheTTL > 0 {
		pricesCache = cache.New(cacheTTL, 2*cacheTTL)
	}
	return &tokenPriceService{
		nativeOracle: nativeOracle,
		tokenOracle:  tokenOracle,
		logger:       logger,
		pricesCache:  pricesCache,
	}
}

// NativePriceUSD resolves the native coin's USD unit price, degrading to 0
// on any failure.
func (s *tokenPriceService) NativePriceUSD(ctx context.Context) float64 {
	if price, ok := s.cachedPrice(nativePriceCacheKey); ok {
		return price
	}

	price, err := s.nativeOracle.NativePriceUSD(ctx)
	if err != nil {
		s.logger.Warn("Native price fetch failed, degrading to zero", "error", err)
		metrics.PriceFetchFailures.Inc()
		return 0
	}

	s.storePrice(nativePriceCacheKey, price)
	return price
}

// TokenPriceUSD resolves one ERC-20 token's USD unit price, degrading to 0
// on any failure.
func (s *tokenPriceService) TokenPriceUSD(ctx context.Context, tokenAddress string) float64 {
	key := strings.ToLower(tokenAddress)
	if price, ok := s.cachedPrice(key); ok {
		return price
	}

	price, err := s.tokenOracle.TokenPriceUSD(ctx, tokenAddress)
	if err != nil {
		s.logger.Warn("Token price fetch failed, degrading to zero", "tokenAddress", tokenAddress, "error", err)
		metrics.PriceFetchFailures.Inc()
		return 0
	}

	s.storePrice(key, price)
	return price
}

func (s *tokenPriceService) cachedPrice(key string) (float64, bool) {
	if s.pricesCache == nil {
		return 0, false
	}
	if v, ok := s.pricesCache.Get(key); ok {
		return v.(float64), true
	}
	return 0, false
}

// storePrice caches only successful fetches; failures stay uncached so the
// next run retries them.
func (s *tokenPriceService) storePrice(key string, price float64) {
	if s.pricesCache == nil {
		return
	}
	s.pricesCache.Set(key, price, cache.DefaultExpiration)
}
