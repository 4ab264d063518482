package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential is returned when the indexer API key is absent;
	// aggregation must not start without it.
	ErrMissingCredential = errors.New("indexer api key is not configured")

	// ErrAggregationFailed is returned when a mandatory balance fetch failed.
	// No partial portfolio accompanies it.
	ErrAggregationFailed = errors.New("portfolio aggregation failed")

	// ErrInvalidAddress is returned for input that is not a valid hex wallet address.
	ErrInvalidAddress = errors.New("invalid wallet address")

	// ErrRunSuperseded marks a completed run whose result must be discarded
	// because a later-started run took over the current address.
	ErrRunSuperseded = errors.New("aggregation run superseded by a newer one")
)

// MalformedBalanceError reports a raw balance or decimals value that cannot
// be parsed. The offending asset is skipped with a warning, never aborting
// the run.
type MalformedBalanceError struct {
	Balance  string
	Decimals int
	Reason   string
}

func (e *MalformedBalanceError) Error() string {
	return fmt.Sprintf("malformed balance (balance=%q, decimals=%d): %s", e.Balance, e.Decimals, e.Reason)
}
