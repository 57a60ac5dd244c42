package tickmath

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/holiman/uint256"
)

const (
	// MinTick is the minimum tick that may be passed to GetSqrtRatioAtTick.
	MinTick int32 = -887272
	// MaxTick is the maximum tick that may be passed to GetSqrtRatioAtTick.
	MaxTick int32 = 887272
)

var (
	ErrNonPositivePrice = errors.New("price must be greater than zero")
	ErrTickOutOfBounds  = errors.New("tick out of bounds")

	logBase = math.Log(1.0001)

	maxUint256 = uint256.MustFromHex("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
	mask32     = uint256.MustFromHex("0xffffffff")
	q128       = uint256.MustFromHex("0x100000000000000000000000000000000")

	// sqrt(1/1.0001^(2^i)) in UQ128.128, i = 0..19.
	sqrtRatios = [20]*uint256.Int{
		uint256.MustFromHex("0xfffcb933bd6fad37aa2d162d1a594001"),
		uint256.MustFromHex("0xfff97272373d413259a46990580e213a"),
		uint256.MustFromHex("0xfff2e50f5f656932ef12357cf3c7fdcc"),
		uint256.MustFromHex("0xffe5caca7e10e4e61c3624eaa0941cd0"),
		uint256.MustFromHex("0xffcb9843d60f6159c9db58835c926644"),
		uint256.MustFromHex("0xff973b41fa98c081472e6896dfb254c0"),
		uint256.MustFromHex("0xff2ea16466c96a3843ec78b326b52861"),
		uint256.MustFromHex("0xfe5dee046a99a2a811c461f1969c3053"),
		uint256.MustFromHex("0xfcbe86c7900a88aedcffc83b479aa3a4"),
		uint256.MustFromHex("0xf987a7253ac413176f2b074cf7815e54"),
		uint256.MustFromHex("0xf3392b0822b70005940c7a398e4b70f3"),
		uint256.MustFromHex("0xe7159475a2c29b7443b29c7fa6e889d9"),
		uint256.MustFromHex("0xd097f3bdfd2022b8845ad8f792aa5825"),
		uint256.MustFromHex("0xa9f746462d870fdf8a65dc1f90e061e5"),
		uint256.MustFromHex("0x70d869a156d2a1b890bb3df62baf32f7"),
		uint256.MustFromHex("0x31be135f97d08fd981231505542fcfa6"),
		uint256.MustFromHex("0x9aa508b5b7a84e1c677de54f3e99bc9"),
		uint256.MustFromHex("0x5d6af8dedb81196699c329225ee604"),
		uint256.MustFromHex("0x2216e584f5fa1ea926041bedfe98"),
		uint256.MustFromHex("0x48a170391f7dc42444e8fa2"),
	}
)

// TickToPrice returns the price at a tick: 1.0001^tick.
func TickToPrice(tick int32) float64 {
	return math.Pow(1.0001, float64(tick))
}

// PriceToTick converts a price to the nearest tick aligned to tickSpacing.
// Rounds to nearest rather than truncating to minimize range-boundary drift.
func PriceToTick(price float64, tickSpacing int32) (int32, error) {
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, ErrNonPositivePrice
	}
	if tickSpacing <= 0 {
		return 0, fmt.Errorf("tick spacing must be positive, got %d", tickSpacing)
	}

	raw := math.Log(price) / logBase
	tick := int32(math.Round(raw/float64(tickSpacing))) * tickSpacing
	if tick < MinTick || tick > MaxTick {
		return 0, ErrTickOutOfBounds
	}
	return tick, nil
}

// GetSqrtRatioAtTick returns sqrt(1.0001^tick) * 2^96 as an exact integer.
// Bitwise constant-product evaluation matching the canonical pool library.
func GetSqrtRatioAtTick(tick int32) (*big.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, ErrTickOutOfBounds
	}

	absTick := uint32(tick)
	if tick < 0 {
		absTick = uint32(-tick)
	}

	ratio := new(uint256.Int)
	if absTick&1 != 0 {
		ratio.Set(sqrtRatios[0])
	} else {
		ratio.Set(q128)
	}

	for i := 1; i < len(sqrtRatios); i++ {
		if absTick&(1<<uint(i)) != 0 {
			ratio.Mul(ratio, sqrtRatios[i])
			ratio.Rsh(ratio, 128)
		}
	}

	if tick > 0 {
		ratio.Div(maxUint256, ratio)
	}

	// Shift from Q128.128 down to Q64.96, rounding up.
	rem := new(uint256.Int).And(ratio, mask32)
	ratio.Rsh(ratio, 32)
	if !rem.IsZero() {
		ratio.AddUint64(ratio, 1)
	}

	return ratio.ToBig(), nil
}
