package engine

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a human decimal string to an integer scaled by the
// asset's native decimals. The conversion happens only at the chain
// boundary, never inside the pure math.
func ParseAmount(value string, decimals uint8) (*big.Int, error) {
	if value == "" {
		return new(big.Int), nil
	}
	dec, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", value, err)
	}
	if dec.IsNegative() {
		return nil, fmt.Errorf("amount %q must not be negative", value)
	}
	scaled := dec.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		scaled = scaled.Truncate(0)
	}
	return scaled.BigInt(), nil
}

// FormatAmount converts a scaled integer back to a human decimal string.
func FormatAmount(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -int32(decimals)).String()
}
