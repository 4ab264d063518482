package port

import "context"

// NativePriceOracle quotes the chain's native coin in USD.
type NativePriceOracle interface {
	NativePriceUSD(ctx context.Context) (float64, error)
}

// TokenPriceOracle quotes a single ERC-20 token in USD.
type TokenPriceOracle interface {
	TokenPriceUSD(ctx context.Context, tokenAddress string) (float64, error)
}

// PriceService resolves USD unit prices for portfolio assets. Failures are
// always recovered locally: a price that cannot be fetched degrades to 0,
// it never propagates as an error to the aggregation.
type PriceService interface {
	NativePriceUSD(ctx context.Context) float64
	TokenPriceUSD(ctx context.Context, tokenAddress string) float64
}
