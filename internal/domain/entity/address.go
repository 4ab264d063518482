package entity

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// NormalizeAddress validates a wallet address and returns its EIP-55
// checksummed form, which is the aggregation key for a run.
func NormalizeAddress(raw string) (string, error) {
	if !common.IsHexAddress(raw) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, raw)
	}
	return common.HexToAddress(raw).Hex(), nil
}
