package engine

import (
	"context"
	"fmt"
	"math/big"

	"liquidityDesk/internal/model"
)

// Quote holds the two token amounts the market would require for a
// collateral deposit across a range. Amounts are scaled integers at the
// token's native decimals. A quote is authoritative only for the inputs it
// was derived from; it is re-derived whenever inputs change.
type Quote struct {
	Amount0 *big.Int
	Amount1 *big.Int
}

// Quoter is the external pricing collaborator. The call is a read/simulate,
// idempotent and side-effect-free on chain.
type Quoter interface {
	QuoteLiquidityPositionTokens(ctx context.Context, epochID, collateralAmount, sqrtPriceX96, sqrtLower, sqrtUpper *big.Int) (Quote, error)
}

// Sizer derives token amounts and slippage bounds for a desired collateral
// deposit across a price range.
type Sizer struct {
	quoter Quoter
}

func NewSizer(quoter Quoter) *Sizer {
	return &Sizer{quoter: quoter}
}

// Quote requests the token amounts the market would require for the
// collateral amount at the snapshot's current pool price and the range's
// boundary sqrt prices.
func (s *Sizer) Quote(ctx context.Context, epochID, collateralAmount *big.Int, snapshot model.MarketSnapshot, rng PriceRange) (Quote, error) {
	if collateralAmount == nil || collateralAmount.Sign() <= 0 {
		return Quote{}, ErrZeroCollateral
	}
	if snapshot.SqrtPriceX96 == nil || snapshot.SqrtPriceX96.Sign() <= 0 {
		return Quote{}, fmt.Errorf("snapshot has no pool price")
	}

	sqrtLower, sqrtUpper, err := rng.SqrtBounds()
	if err != nil {
		return Quote{}, err
	}

	quote, err := s.quoter.QuoteLiquidityPositionTokens(ctx, epochID, collateralAmount, snapshot.SqrtPriceX96, sqrtLower, sqrtUpper)
	if err != nil {
		return Quote{}, fmt.Errorf("quote liquidity position tokens: %w", err)
	}
	return quote, nil
}

// OpeningAmounts applies the fixed create-path haircut to a quote. Used only
// for the first opening of a position.
func (s *Sizer) OpeningAmounts(quote Quote) Quote {
	return Quote{
		Amount0: OpeningReduction(quote.Amount0),
		Amount1: OpeningReduction(quote.Amount1),
	}
}

// MinAmounts derives the slippage-bounded minimums for a quote.
func (s *Sizer) MinAmounts(quote Quote, slippage SlippageConfig) (min0, min1 *big.Int) {
	return MinAcceptable(quote.Amount0, slippage), MinAcceptable(quote.Amount1, slippage)
}
