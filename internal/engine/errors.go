package engine

import "errors"

// Validation errors detected before any chain call is made. They are
// preconditions, never thrown from inside a computation.
var (
	ErrInvalidPrice     = errors.New("price must be greater than zero")
	ErrInvertedRange    = errors.New("low price must be below high price after tick alignment")
	ErrZeroCollateral   = errors.New("collateral amount must be greater than zero")
	ErrZeroLiquidity    = errors.New("position has no liquidity")
	ErrLiquidityExceeds = errors.New("target liquidity exceeds current liquidity")
)
