package port

import (
	"context"

	"github.com/tkartsan/waletapp/internal/domain/entity"
)

// PortfolioAggregator assembles the consolidated, priced portfolio for one
// wallet address. It returns either a complete portfolio or an error wrapping
// entity.ErrAggregationFailed; individual price failures never surface here.
type PortfolioAggregator interface {
	Aggregate(ctx context.Context, address string) (*entity.Portfolio, error)
}
