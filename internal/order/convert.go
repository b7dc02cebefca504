package order

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidAmount marks negative amounts or decimals handed to the unit
// converter.
var ErrInvalidAmount = errors.New("invalid amount")

// ToUnits converts a human USD or price amount into integer on-chain units:
// floor(amount * 10^decimals). Decimals differ per field and per network, so
// callers must pass the value from the active network config; fractional
// units are truncated.
func ToUnits(amount float64, decimals int) (uint64, error) {
	if decimals < 0 {
		return 0, fmt.Errorf("%w: decimals %d must be non-negative", ErrInvalidAmount, decimals)
	}
	if amount < 0 {
		return 0, fmt.Errorf("%w: %v must be non-negative", ErrInvalidAmount, amount)
	}
	scaled := amount * math.Pow10(decimals)
	if math.IsNaN(scaled) || scaled >= math.MaxUint64 {
		return 0, fmt.Errorf("%w: %v overflows u64 at %d decimals", ErrInvalidAmount, amount, decimals)
	}
	return uint64(math.Floor(scaled)), nil
}
