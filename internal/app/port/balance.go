package port

import (
	"context"
	"math/big"

	"github.com/tkartsan/waletapp/internal/domain/entity"
)

// BalanceSource fetches raw balance data for a wallet from an indexing
// service. Both calls are mandatory for an aggregation run: a failure of
// either is fatal to the run.
type BalanceSource interface {
	// GetNativeBalance fetches the native coin balance in smallest units (wei).
	GetNativeBalance(ctx context.Context, address string) (*big.Int, error)

	// GetTokenBalances fetches the complete set of ERC-20 balances held by
	// the address. Implementations must exhaust upstream pagination before
	// returning.
	GetTokenBalances(ctx context.Context, address string) ([]entity.RawTokenBalance, error)
}
