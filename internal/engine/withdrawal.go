package engine

import (
	"math/big"

	"liquidityDesk/internal/liquiditymath"
)

// WithdrawalAmounts describes the token amounts corresponding to a
// liquidity decrease, with slippage-adjusted minimums at native decimals.
type WithdrawalAmounts struct {
	LiquidityToRemove *big.Int
	Amount0           *big.Int
	Amount1           *big.Int
	MinAmount0        *big.Int
	MinAmount1        *big.Int
}

// PartialWithdrawal computes the absolute token amounts for reducing a
// position's liquidity to newLiquidity. Amounts are computed directly on
// the liquidity delta, so small fractional decreases never truncate to
// zero the way a divide-before-multiply proportion would. Rounds down,
// never overstating the withdrawable amount.
func PartialWithdrawal(liquidity, newLiquidity *big.Int, rng PriceRange, slippage SlippageConfig) (WithdrawalAmounts, error) {
	if liquidity == nil || liquidity.Sign() <= 0 {
		return WithdrawalAmounts{}, ErrZeroLiquidity
	}
	target := newLiquidity
	if target == nil {
		target = new(big.Int)
	}
	if target.Cmp(liquidity) > 0 {
		return WithdrawalAmounts{}, ErrLiquidityExceeds
	}

	toRemove := new(big.Int).Sub(liquidity, target)
	amount0, amount1, err := liquiditymath.AmountsFromLiquidity(rng.TickLower, rng.TickUpper, toRemove)
	if err != nil {
		return WithdrawalAmounts{}, err
	}

	return WithdrawalAmounts{
		LiquidityToRemove: toRemove,
		Amount0:           amount0,
		Amount1:           amount1,
		MinAmount0:        MinAcceptable(amount0, slippage),
		MinAmount1:        MinAcceptable(amount1, slippage),
	}, nil
}
