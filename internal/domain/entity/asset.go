package entity

// RawTokenBalance is an ERC-20 balance exactly as returned by the indexing
// service: an integer amount in the token's smallest units plus the decimals
// exponent needed to scale it. Immutable once fetched.
type RawTokenBalance struct {
	TokenAddress string `json:"token_address"`
	Name         string `json:"name,omitempty"`
	Symbol       string `json:"symbol,omitempty"`
	Balance      string `json:"balance"`
	Decimals     int    `json:"decimals"`
}

// NormalizedBalance is a raw balance scaled to a human quantity
// (Balance / 10^Decimals). Derived, never mutated after creation.
type NormalizedBalance struct {
	TokenAddress string
	Name         string
	Symbol       string
	Quantity     float64
}

// PricedAsset is the terminal, display-ready entity. PriceUSD of 0 is the
// "unknown price" sentinel; ValueUSD is always Quantity * PriceUSD, never
// fetched directly.
type PricedAsset struct {
	Name     string  `json:"name"`
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
	PriceUSD float64 `json:"priceUSD"`
	ValueUSD float64 `json:"valueUSD"`
}

// Portfolio is the ordered result of one aggregation run: the native asset
// first when it survived filtering, then ERC-20 assets in the order the
// indexing service returned them.
type Portfolio struct {
	Address       string        `json:"address"`
	Assets        []PricedAsset `json:"assets"`
	TotalValueUSD float64       `json:"totalValueUSD"`
}
