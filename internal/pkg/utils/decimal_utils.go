package utils

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/tkartsan/waletapp/internal/domain/entity"
)

// Display-formatting contracts honored by the presentation layer only.
// Aggregation itself never rounds.
const (
	QuantityDisplayDigits = 4
	PriceDisplayDigits    = 7
	ValueDisplayDigits    = 5
)

// NormalizeBalance converts a raw integer token amount plus a decimals
// exponent into a human-scaled quantity: rawBalance / 10^decimals.
// Example: raw="1234500000000000000", decimals=18 => 1.2345
// The raw balance must parse as a non-negative integer and decimals must not
// be negative; anything else is a *entity.MalformedBalanceError.
func NormalizeBalance(raw string, decimals int) (float64, error) {
	if decimals < 0 {
		return 0, &entity.MalformedBalanceError{Balance: raw, Decimals: decimals, Reason: "negative decimals"}
	}

	amount, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok {
		return 0, &entity.MalformedBalanceError{Balance: raw, Decimals: decimals, Reason: "not a base-10 integer"}
	}
	if amount.Sign() < 0 {
		return 0, &entity.MalformedBalanceError{Balance: raw, Decimals: decimals, Reason: "negative amount"}
	}

	// Exact big.Float quotient, rounded once on the final float64 conversion.
	divisor := new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	quantity, _ := new(big.Float).Quo(new(big.Float).SetInt(amount), divisor).Float64()
	return quantity, nil
}

// FormatDecimal renders a value with a fixed number of fractional digits for
// display, e.g. FormatDecimal(1.5, 4) => "1.5000".
func FormatDecimal(v float64, digits int) string {
	return strconv.FormatFloat(v, 'f', digits, 64)
}
