package liquiditymath

import (
	"errors"
	"fmt"
	"math/big"

	"liquidityDesk/internal/tickmath"
)

// Q96 is the UQ64.96 fixed-point representation of 1.
var Q96 = new(big.Int).Lsh(big.NewInt(1), 96)

var (
	ErrInvertedRange     = errors.New("tick lower must be below tick upper")
	ErrNegativeLiquidity = errors.New("liquidity must not be negative")

	one = big.NewInt(1)
)

// mulDiv returns floor(a * b / denominator).
func mulDiv(a, b, denominator *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	return product.Div(product, denominator)
}

// mulDivRoundingUp returns ceil(a * b / denominator).
func mulDivRoundingUp(a, b, denominator *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	quotient, rem := new(big.Int).QuoRem(product, denominator, new(big.Int))
	if rem.Sign() > 0 {
		quotient.Add(quotient, one)
	}
	return quotient
}

// Amount0Delta returns the token0 amount covered by liquidity between two
// sqrt prices: liquidity * (sqrtUpper - sqrtLower) / (sqrtUpper * sqrtLower).
// Rounds down, favoring the position on removal.
func Amount0Delta(sqrtLower, sqrtUpper, liquidity *big.Int) *big.Int {
	numerator1 := new(big.Int).Lsh(liquidity, 96)
	numerator2 := new(big.Int).Sub(sqrtUpper, sqrtLower)
	amount := mulDiv(numerator1, numerator2, sqrtUpper)
	return amount.Div(amount, sqrtLower)
}

// Amount1Delta returns the token1 amount covered by liquidity between two
// sqrt prices: liquidity * (sqrtUpper - sqrtLower) / 2^96. Rounds down.
func Amount1Delta(sqrtLower, sqrtUpper, liquidity *big.Int) *big.Int {
	diff := new(big.Int).Sub(sqrtUpper, sqrtLower)
	return mulDiv(liquidity, diff, Q96)
}

// AmountsFromLiquidity computes the two token amounts held by a liquidity
// value across a tick range, at the boundary sqrt prices. Zero liquidity
// yields zero amounts rather than a division by zero.
func AmountsFromLiquidity(tickLower, tickUpper int32, liquidity *big.Int) (*big.Int, *big.Int, error) {
	if tickLower >= tickUpper {
		return nil, nil, ErrInvertedRange
	}
	if liquidity == nil || liquidity.Sign() == 0 {
		return new(big.Int), new(big.Int), nil
	}
	if liquidity.Sign() < 0 {
		return nil, nil, ErrNegativeLiquidity
	}

	sqrtLower, err := tickmath.GetSqrtRatioAtTick(tickLower)
	if err != nil {
		return nil, nil, fmt.Errorf("sqrt ratio at tick %d: %w", tickLower, err)
	}
	sqrtUpper, err := tickmath.GetSqrtRatioAtTick(tickUpper)
	if err != nil {
		return nil, nil, fmt.Errorf("sqrt ratio at tick %d: %w", tickUpper, err)
	}

	amount0 := Amount0Delta(sqrtLower, sqrtUpper, liquidity)
	amount1 := Amount1Delta(sqrtLower, sqrtUpper, liquidity)
	return amount0, amount1, nil
}
