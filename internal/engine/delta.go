package engine

import "math/big"

// NewLiquidity computes the liquidity value proportional to a new target
// collateral: liquidity * depositAmount / positionCollateral. Multiplies
// first, divides last, to avoid precision loss. All inputs are scaled
// integers in a common base.
//
// A position that does not exist yet has no collateral to scale against;
// callers use the Sizer directly in that case.
func NewLiquidity(depositAmount, positionCollateral, liquidity *big.Int) (*big.Int, error) {
	if positionCollateral == nil || positionCollateral.Sign() == 0 {
		return nil, ErrZeroCollateral
	}
	if depositAmount == nil || depositAmount.Sign() == 0 {
		return new(big.Int), nil
	}

	next := new(big.Int).Mul(liquidity, depositAmount)
	return next.Div(next, positionCollateral), nil
}

// CollateralDelta returns the signed difference between the requested
// deposit and the position's currently deposited collateral. Positive means
// an additional deposit is required.
func CollateralDelta(currentDeposited, requestedDeposit *big.Int) *big.Int {
	current := currentDeposited
	if current == nil {
		current = new(big.Int)
	}
	requested := requestedDeposit
	if requested == nil {
		requested = new(big.Int)
	}
	return new(big.Int).Sub(requested, current)
}

// RequiresApproval reports whether an allowance grant is needed before the
// delta can be committed. Non-positive deltas are withdrawals and never
// need approval. The caller must pass a freshly read allowance; a cached
// value may already have been consumed by an unrelated transaction.
func RequiresApproval(delta, currentAllowance *big.Int) bool {
	if delta == nil || delta.Sign() <= 0 {
		return false
	}
	if currentAllowance == nil {
		return true
	}
	return delta.Cmp(currentAllowance) > 0
}
