package model

import "math/big"

// PositionKind distinguishes the two position types the market tracks.
type PositionKind uint8

const (
	PositionKindUnknown PositionKind = 0
	PositionKindLP      PositionKind = 1
	PositionKindTrader  PositionKind = 2
)

// Position is the engine's view of an on-chain position. It is always
// re-read from chain after each mutation, never persisted across edits.
type Position struct {
	ID                  *big.Int
	Kind                PositionKind
	DepositedCollateral *big.Int
	Liquidity           *big.Int
	TickLower           int32
	TickUpper           int32
}

// IsLP reports whether the position supplies concentrated liquidity.
func (p Position) IsLP() bool {
	return p.Kind == PositionKindLP
}

// HasLiquidity reports whether the position has liquidity to decrease.
func (p Position) HasLiquidity() bool {
	return p.Liquidity != nil && p.Liquidity.Sign() > 0
}
