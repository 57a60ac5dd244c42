package engine

import "math/big"

const bpsDenominator = 10000

// openingReductionBps is the fixed haircut applied to quoted token amounts
// before the first opening of a position, so that last-block price drift
// between quote and submission does not revert the create call. It is
// distinct from, and applied before, the user's slippage tolerance.
const openingReductionBps = 50

// SlippageConfig is the user-settable slippage tolerance in basis points.
type SlippageConfig struct {
	ToleranceBps uint16
}

// DefaultSlippage is 50 bps (0.5%).
var DefaultSlippage = SlippageConfig{ToleranceBps: 50}

// MinAcceptable returns the minimum acceptable output for a quoted amount:
// amount * (10000 - toleranceBps) / 10000, rounded down.
func MinAcceptable(amount *big.Int, slippage SlippageConfig) *big.Int {
	if amount == nil {
		return new(big.Int)
	}
	min := new(big.Int).Mul(amount, big.NewInt(bpsDenominator-int64(slippage.ToleranceBps)))
	return min.Div(min, big.NewInt(bpsDenominator))
}

// MaxAcceptable returns the maximum acceptable input for a quoted amount:
// amount * (10000 + toleranceBps) / 10000, rounded down.
func MaxAcceptable(amount *big.Int, slippage SlippageConfig) *big.Int {
	if amount == nil {
		return new(big.Int)
	}
	max := new(big.Int).Mul(amount, big.NewInt(bpsDenominator+int64(slippage.ToleranceBps)))
	return max.Div(max, big.NewInt(bpsDenominator))
}

// OpeningReduction applies the fixed create-path haircut to a quoted amount.
func OpeningReduction(amount *big.Int) *big.Int {
	if amount == nil {
		return new(big.Int)
	}
	reduced := new(big.Int).Mul(amount, big.NewInt(bpsDenominator-openingReductionBps))
	return reduced.Div(reduced, big.NewInt(bpsDenominator))
}
