package model

import "math/big"

// MarketSnapshot carries the externally-refreshed pool and market state the
// engine needs. It is passed explicitly into calculations; the engine never
// reads ambient mutable state.
type MarketSnapshot struct {
	ChainID            uint64
	MarketAddress      string
	PoolAddress        string
	CollateralAddress  string
	CollateralDecimals uint8
	SqrtPriceX96       *big.Int
	Tick               int32
	TickSpacing        int32
}
