package service

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkartsan/waletapp/internal/app/port"
	"github.com/tkartsan/waletapp/internal/domain/entity"
	"github.com/tkartsan/waletapp/internal/infrastructure/configloader"
	"github.com/tkartsan/waletapp/internal/pkg/logger"
)

const testAddress = "0x00000000219ab540356cBB839Cbe05303d7705Fa"

var ethChain = configloader.ChainConfig{NativeName: "Ethereum", NativeSymbol: "ETH", NativeDecimals: 18}

type fakeBalanceSource struct {
	native    *big.Int
	nativeErr error
	tokens    []entity.RawTokenBalance
	tokensErr error
}

func (f *fakeBalanceSource) GetNativeBalance(ctx context.Context, address string) (*big.Int, error) {
	if f.nativeErr != nil {
		return nil, f.nativeErr
	}
	return f.native, nil
}

func (f *fakeBalanceSource) GetTokenBalances(ctx context.Context, address string) ([]entity.RawTokenBalance, error) {
	if f.tokensErr != nil {
		return nil, f.tokensErr
	}
	return f.tokens, nil
}

// fakePriceService records which tokens were priced, so tests can assert
// that excluded tokens never cost an oracle call.
type fakePriceService struct {
	nativePrice float64
	tokenPrices map[string]float64

	mu          sync.Mutex
	pricedAddrs []string
}

func (f *fakePriceService) NativePriceUSD(ctx context.Context) float64 {
	return f.nativePrice
}

func (f *fakePriceService) TokenPriceUSD(ctx context.Context, tokenAddress string) float64 {
	f.mu.Lock()
	f.pricedAddrs = append(f.pricedAddrs, tokenAddress)
	f.mu.Unlock()
	return f.tokenPrices[tokenAddress]
}

func newAggregator(balances port.BalanceSource, prices port.PriceService) port.PortfolioAggregator {
	filter := NewAssetFilter([]string{"YT ", "PT "}, 0.00002)
	return NewAggregatorService(balances, prices, filter, logger.NewSlogAdapter(), ethChain, 4)
}

func TestAggregate_EndToEnd(t *testing.T) {
	balances := &fakeBalanceSource{
		native: big.NewInt(1500000000000000000), // 1.5 ETH
		tokens: []entity.RawTokenBalance{
			{TokenAddress: "0xusdc", Name: "USD Coin", Symbol: "USDC", Balance: "500000", Decimals: 6},
		},
	}
	prices := &fakePriceService{nativePrice: 2000, tokenPrices: map[string]float64{"0xusdc": 1.0}}

	portfolio, err := newAggregator(balances, prices).Aggregate(context.Background(), testAddress)
	require.NoError(t, err)
	require.Len(t, portfolio.Assets, 2)

	native := portfolio.Assets[0]
	assert.Equal(t, "ETH", native.Symbol)
	assert.Equal(t, 1.5, native.Quantity)
	assert.Equal(t, 2000.0, native.PriceUSD)
	assert.Equal(t, 3000.0, native.ValueUSD)

	usdc := portfolio.Assets[1]
	assert.Equal(t, "USDC", usdc.Symbol)
	assert.Equal(t, 0.5, usdc.Quantity)
	assert.Equal(t, 1.0, usdc.PriceUSD)
	assert.Equal(t, 0.5, usdc.ValueUSD)

	assert.Equal(t, 3000.5, portfolio.TotalValueUSD)
	assert.Equal(t, testAddress, portfolio.Address)
}

func TestAggregate_Idempotent(t *testing.T) {
	balances := &fakeBalanceSource{
		native: big.NewInt(1500000000000000000),
		tokens: []entity.RawTokenBalance{
			{TokenAddress: "0xusdc", Name: "USD Coin", Symbol: "USDC", Balance: "500000", Decimals: 6},
			{TokenAddress: "0xdai", Name: "Dai Stablecoin", Symbol: "DAI", Balance: "2000000000000000000", Decimals: 18},
		},
	}
	prices := &fakePriceService{nativePrice: 2000, tokenPrices: map[string]float64{"0xusdc": 1.0, "0xdai": 1.0}}
	aggregator := newAggregator(balances, prices)

	first, err := aggregator.Aggregate(context.Background(), testAddress)
	require.NoError(t, err)
	second, err := aggregator.Aggregate(context.Background(), testAddress)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAggregate_NamePrefixExcludedBeforePricing(t *testing.T) {
	balances := &fakeBalanceSource{
		native: big.NewInt(0),
		tokens: []entity.RawTokenBalance{
			{TokenAddress: "0xyt", Name: "YT Pendle ETH", Symbol: "YT-ETH", Balance: "1000000000000000000", Decimals: 18},
			{TokenAddress: "0xpt", Name: " PT Wrapped BTC", Symbol: "PT-BTC", Balance: "1000000000000000000", Decimals: 18},
			{TokenAddress: "0xusdc", Name: "USD Coin", Symbol: "USDC", Balance: "500000", Decimals: 6},
		},
	}
	prices := &fakePriceService{tokenPrices: map[string]float64{"0xusdc": 1.0, "0xyt": 9999, "0xpt": 9999}}

	portfolio, err := newAggregator(balances, prices).Aggregate(context.Background(), testAddress)
	require.NoError(t, err)

	require.Len(t, portfolio.Assets, 1)
	assert.Equal(t, "USDC", portfolio.Assets[0].Symbol)
	// Excluded tokens must not reach the oracle at all.
	assert.ElementsMatch(t, []string{"0xusdc"}, prices.pricedAddrs)
}

func TestAggregate_PriceFailureDegradesWithoutFailingRun(t *testing.T) {
	balances := &fakeBalanceSource{
		native: big.NewInt(1500000000000000000),
		tokens: []entity.RawTokenBalance{
			{TokenAddress: "0xdead", Name: "Unpriceable", Symbol: "DEAD", Balance: "1000000", Decimals: 6},
			{TokenAddress: "0xusdc", Name: "USD Coin", Symbol: "USDC", Balance: "500000", Decimals: 6},
		},
	}
	// 0xdead absent from the price map: the service's degraded-to-zero path.
	prices := &fakePriceService{nativePrice: 2000, tokenPrices: map[string]float64{"0xusdc": 1.0}}

	portfolio, err := newAggregator(balances, prices).Aggregate(context.Background(), testAddress)
	require.NoError(t, err)

	symbols := make([]string, 0, len(portfolio.Assets))
	for _, a := range portfolio.Assets {
		symbols = append(symbols, a.Symbol)
	}
	assert.Equal(t, []string{"ETH", "USDC"}, symbols)
}

func TestAggregate_DustExcluded(t *testing.T) {
	balances := &fakeBalanceSource{
		native: big.NewInt(0),
		tokens: []entity.RawTokenBalance{
			// quantity 1e-18 at $1 => value 1e-18, far below the floor
			{TokenAddress: "0xdust", Name: "Dust", Symbol: "DST", Balance: "1", Decimals: 18},
		},
	}
	prices := &fakePriceService{nativePrice: 2000, tokenPrices: map[string]float64{"0xdust": 1.0}}

	portfolio, err := newAggregator(balances, prices).Aggregate(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Empty(t, portfolio.Assets)
	assert.Zero(t, portfolio.TotalValueUSD)
}

func TestAggregate_MalformedBalanceSkipped(t *testing.T) {
	balances := &fakeBalanceSource{
		native: big.NewInt(1500000000000000000),
		tokens: []entity.RawTokenBalance{
			{TokenAddress: "0xbad", Name: "Broken", Symbol: "BRK", Balance: "not-a-number", Decimals: 6},
			{TokenAddress: "0xneg", Name: "Negative", Symbol: "NEG", Balance: "100", Decimals: -1},
			{TokenAddress: "0xusdc", Name: "USD Coin", Symbol: "USDC", Balance: "500000", Decimals: 6},
		},
	}
	prices := &fakePriceService{nativePrice: 2000, tokenPrices: map[string]float64{"0xusdc": 1.0}}

	portfolio, err := newAggregator(balances, prices).Aggregate(context.Background(), testAddress)
	require.NoError(t, err)

	require.Len(t, portfolio.Assets, 2)
	assert.Equal(t, "ETH", portfolio.Assets[0].Symbol)
	assert.Equal(t, "USDC", portfolio.Assets[1].Symbol)
}

func TestAggregate_TokenOrderPreserved(t *testing.T) {
	balances := &fakeBalanceSource{
		native: big.NewInt(1500000000000000000),
		tokens: []entity.RawTokenBalance{
			{TokenAddress: "0xc", Name: "Token C", Symbol: "C", Balance: "1000000", Decimals: 6},
			{TokenAddress: "0xa", Name: "Token A", Symbol: "A", Balance: "1000000", Decimals: 6},
			{TokenAddress: "0xb", Name: "Token B", Symbol: "B", Balance: "1000000", Decimals: 6},
		},
	}
	prices := &fakePriceService{nativePrice: 2000, tokenPrices: map[string]float64{"0xa": 1, "0xb": 1, "0xc": 1}}

	portfolio, err := newAggregator(balances, prices).Aggregate(context.Background(), testAddress)
	require.NoError(t, err)

	symbols := make([]string, 0, len(portfolio.Assets))
	for _, a := range portfolio.Assets {
		symbols = append(symbols, a.Symbol)
	}
	assert.Equal(t, []string{"ETH", "C", "A", "B"}, symbols, "native first, then source order")
}

func TestAggregate_BalanceFetchFailuresAreFatal(t *testing.T) {
	t.Run("token balances", func(t *testing.T) {
		balances := &fakeBalanceSource{native: big.NewInt(1), tokensErr: errors.New("indexer down")}
		_, err := newAggregator(balances, &fakePriceService{}).Aggregate(context.Background(), testAddress)
		require.ErrorIs(t, err, entity.ErrAggregationFailed)
	})

	t.Run("native balance", func(t *testing.T) {
		balances := &fakeBalanceSource{nativeErr: errors.New("indexer down")}
		_, err := newAggregator(balances, &fakePriceService{}).Aggregate(context.Background(), testAddress)
		require.ErrorIs(t, err, entity.ErrAggregationFailed)
	})
}

func TestAggregate_InvalidAddress(t *testing.T) {
	_, err := newAggregator(&fakeBalanceSource{}, &fakePriceService{}).Aggregate(context.Background(), "0xABC")
	require.ErrorIs(t, err, entity.ErrInvalidAddress)
}

func TestAggregate_AddressCaseNormalized(t *testing.T) {
	balances := &fakeBalanceSource{native: big.NewInt(0)}
	lower := "0x00000000219ab540356cbb839cbe05303d7705fa"

	portfolio, err := newAggregator(balances, &fakePriceService{}).Aggregate(context.Background(), lower)
	require.NoError(t, err)
	assert.Equal(t, testAddress, portfolio.Address)
}
