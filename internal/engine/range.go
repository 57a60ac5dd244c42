package engine

import (
	"errors"
	"fmt"
	"math/big"

	"liquidityDesk/internal/tickmath"
)

// PriceRange is a tick-aligned price range. Both bounds are integer
// multiples of the pool's tick spacing and TickLower < TickUpper.
type PriceRange struct {
	TickLower int32
	TickUpper int32
}

// AlignedRange converts human low/high prices to a tick-aligned range.
// The range is rejected before any quote is requested if either price is
// non-positive or the bounds collapse after alignment.
func AlignedRange(lowPrice, highPrice float64, tickSpacing int32) (PriceRange, error) {
	tickLower, err := tickmath.PriceToTick(lowPrice, tickSpacing)
	if err != nil {
		if errors.Is(err, tickmath.ErrNonPositivePrice) {
			return PriceRange{}, fmt.Errorf("low price: %w", ErrInvalidPrice)
		}
		return PriceRange{}, fmt.Errorf("low price: %w", err)
	}
	tickUpper, err := tickmath.PriceToTick(highPrice, tickSpacing)
	if err != nil {
		if errors.Is(err, tickmath.ErrNonPositivePrice) {
			return PriceRange{}, fmt.Errorf("high price: %w", ErrInvalidPrice)
		}
		return PriceRange{}, fmt.Errorf("high price: %w", err)
	}
	if tickLower >= tickUpper {
		return PriceRange{}, ErrInvertedRange
	}
	return PriceRange{TickLower: tickLower, TickUpper: tickUpper}, nil
}

// SqrtBounds returns the boundary sqrt prices for the range in Q64.96.
func (r PriceRange) SqrtBounds() (lower, upper *big.Int, err error) {
	lower, err = tickmath.GetSqrtRatioAtTick(r.TickLower)
	if err != nil {
		return nil, nil, fmt.Errorf("sqrt ratio at tick %d: %w", r.TickLower, err)
	}
	upper, err = tickmath.GetSqrtRatioAtTick(r.TickUpper)
	if err != nil {
		return nil, nil, fmt.Errorf("sqrt ratio at tick %d: %w", r.TickUpper, err)
	}
	return lower, upper, nil
}

// Prices returns the human prices at the range bounds.
func (r PriceRange) Prices() (low, high float64) {
	return tickmath.TickToPrice(r.TickLower), tickmath.TickToPrice(r.TickUpper)
}
