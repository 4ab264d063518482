package service

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tkartsan/waletapp/internal/app/port"
	"github.com/tkartsan/waletapp/internal/domain/entity"
	"github.com/tkartsan/waletapp/internal/infrastructure/configloader"
	"github.com/tkartsan/waletapp/internal/pkg/metrics"
	"github.com/tkartsan/waletapp/internal/pkg/utils"
)

// aggregatorService implements port.PortfolioAggregator: one run fetches the
// wallet's balances, prices every surviving asset and merges the result into
// an ordered, filtered portfolio. The service keeps no state between runs.
type aggregatorService struct {
	balances                  port.BalanceSource
	prices                    port.PriceService
	filter                    *AssetFilter
	logger                    port.Logger
	nativeName                string
	nativeSymbol              string
	nativeDecimals            int
	maxConcurrentPriceFetches int
}

// NewAggregatorService creates a new PortfolioAggregator.
func NewAggregatorService(
	balances port.BalanceSource,
	prices port.PriceService,
	filter *AssetFilter,
	logger port.Logger,
	chainCfg configloader.ChainConfig,
	maxConcurrentPriceFetches int,
) port.PortfolioAggregator {
	if maxConcurrentPriceFetches <= 0 {
		maxConcurrentPriceFetches = 1
	}
	return &aggregatorService{
		balances:                  balances,
		prices:                    prices,
		filter:                    filter,
		logger:                    logger,
		nativeName:                chainCfg.NativeName,
		nativeSymbol:              chainCfg.NativeSymbol,
		nativeDecimals:            chainCfg.NativeDecimals,
		maxConcurrentPriceFetches: maxConcurrentPriceFetches,
	}
}

// Aggregate assembles the portfolio for one wallet address. Both balance
// fetches are mandatory: either failing aborts the run with
// entity.ErrAggregationFailed and no partial portfolio. Price fetches can
// only degrade individual assets, never fail the run.
func (s *aggregatorService) Aggregate(ctx context.Context, address string) (*entity.Portfolio, error) {
	checksummed, err := entity.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	s.logger.Debug("Starting portfolio aggregation", "address", checksummed)

	// The two mandatory reads hit independent upstream endpoints, issue them
	// concurrently and join before any filtering.
	var nativeWei *big.Int
	var rawTokens []entity.RawTokenBalance
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		wei, err := s.balances.GetNativeBalance(gctx, checksummed)
		if err != nil {
			return fmt.Errorf("native balance: %w", err)
		}
		nativeWei = wei
		return nil
	})
	g.Go(func() error {
		tokens, err := s.balances.GetTokenBalances(gctx, checksummed)
		if err != nil {
			return fmt.Errorf("token balances: %w", err)
		}
		rawTokens = tokens
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("Mandatory balance fetch failed", "address", checksummed, "error", err)
		metrics.AggregationRuns.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: %v", entity.ErrAggregationFailed, err)
	}

	normalized := s.normalizeTokenBalances(rawTokens)

	nativeQuantity, err := utils.NormalizeBalance(nativeWei.String(), s.nativeDecimals)
	if err != nil {
		metrics.AggregationRuns.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: native balance: %v", entity.ErrAggregationFailed, err)
	}

	nativePrice, tokenPrices := s.fetchPrices(ctx, normalized)

	portfolio := &entity.Portfolio{Address: checksummed}
	s.appendPriced(portfolio, entity.PricedAsset{
		Name:     s.nativeName,
		Symbol:   s.nativeSymbol,
		Quantity: nativeQuantity,
		PriceUSD: nativePrice,
		ValueUSD: nativeQuantity * nativePrice,
	})
	for i, nb := range normalized {
		s.appendPriced(portfolio, entity.PricedAsset{
			Name:     nb.Name,
			Symbol:   nb.Symbol,
			Quantity: nb.Quantity,
			PriceUSD: tokenPrices[i],
			ValueUSD: nb.Quantity * tokenPrices[i],
		})
	}

	metrics.AggregationRuns.WithLabelValues("ok").Inc()
	metrics.AggregationDuration.Observe(time.Since(started).Seconds())
	s.logger.Info("Portfolio aggregated",
		"address", checksummed,
		"assets", len(portfolio.Assets),
		"totalValueUSD", portfolio.TotalValueUSD)
	return portfolio, nil
}

// normalizeTokenBalances applies the pre-pricing name filter and scales the
// surviving raw balances. Malformed balances are skipped with a warning
// rather than aborting the run; source order is preserved.
func (s *aggregatorService) normalizeTokenBalances(rawTokens []entity.RawTokenBalance) []entity.NormalizedBalance {
	normalized := make([]entity.NormalizedBalance, 0, len(rawTokens))
	for _, rt := range rawTokens {
		if s.filter.ExcludedByName(rt.Name) {
			s.logger.Debug("Excluding synthetic wrapper token before pricing",
				"name", rt.Name, "tokenAddress", rt.TokenAddress)
			continue
		}

		quantity, err := utils.NormalizeBalance(rt.Balance, rt.Decimals)
		if err != nil {
			s.logger.Warn("Skipping token with malformed balance",
				"tokenAddress", rt.TokenAddress, "balance", rt.Balance, "decimals", rt.Decimals, "error", err)
			metrics.MalformedBalances.Inc()
			continue
		}

		normalized = append(normalized, entity.NormalizedBalance{
			TokenAddress: rt.TokenAddress,
			Name:         rt.Name,
			Symbol:       rt.Symbol,
			Quantity:     quantity,
		})
	}
	return normalized
}

// fetchPrices fans out one price fetch per asset (native plus every token)
// as isolated goroutines writing indexed result slots. All fetches settle
// before returning; a slow or failed fetch affects only its own slot.
func (s *aggregatorService) fetchPrices(ctx context.Context, normalized []entity.NormalizedBalance) (float64, []float64) {
	var nativePrice float64
	tokenPrices := make([]float64, len(normalized))

	var wg sync.WaitGroup
	priceSemaphore := make(chan struct{}, s.maxConcurrentPriceFetches)

	wg.Add(1)
	go func() {
		defer wg.Done()
		nativePrice = s.prices.NativePriceUSD(ctx)
	}()

	for i := range normalized {
		priceSemaphore <- struct{}{}
		wg.Add(1)
		go func(i int, tokenAddress string) {
			defer wg.Done()
			defer func() { <-priceSemaphore }()
			tokenPrices[i] = s.prices.TokenPriceUSD(ctx, tokenAddress)
		}(i, normalized[i].TokenAddress)
	}

	wg.Wait()
	return nativePrice, tokenPrices
}

// appendPriced adds an asset unless the value floor drops it.
func (s *aggregatorService) appendPriced(portfolio *entity.Portfolio, asset entity.PricedAsset) {
	if s.filter.BelowValueFloor(asset.ValueUSD) {
		s.logger.Debug("Dropping asset below value floor",
			"symbol", asset.Symbol, "valueUSD", asset.ValueUSD)
		return
	}
	portfolio.Assets = append(portfolio.Assets, asset)
	portfolio.TotalValueUSD += asset.ValueUSD
}
