package txflow

import (
	"fmt"
	"math/big"
)

// IntentKind tags the market operation a flow will perform.
type IntentKind int

const (
	IntentCreate IntentKind = iota
	IntentIncrease
	IntentDecrease
)

func (k IntentKind) String() string {
	switch k {
	case IntentCreate:
		return "create"
	case IntentIncrease:
		return "increase"
	case IntentDecrease:
		return "decrease"
	default:
		return fmt.Sprintf("intent(%d)", int(k))
	}
}

// CreateParams are the arguments for opening a new liquidity position.
// Token amounts carry the opening haircut already applied.
type CreateParams struct {
	EpochID          *big.Int
	Amount0          *big.Int
	Amount1          *big.Int
	CollateralAmount *big.Int
	TickLower        int32
	TickUpper        int32
	MinAmount0       *big.Int
	MinAmount1       *big.Int
}

// IncreaseParams are the arguments for adding collateral to a position.
type IncreaseParams struct {
	PositionID       *big.Int
	CollateralAmount *big.Int
	Amount0          *big.Int
	Amount1          *big.Int
	MinAmount0       *big.Int
	MinAmount1       *big.Int
}

// DecreaseParams are the arguments for removing liquidity from a position.
type DecreaseParams struct {
	PositionID *big.Int
	Liquidity  *big.Int
	MinAmount0 *big.Int
	MinAmount1 *big.Int
}

// Intent is the single in-flight operation a flow executes. Exactly one of
// the params fields matching Kind must be set. CollateralDelta is the
// signed deposit change; a positive delta triggers the allowance check.
type Intent struct {
	Kind            IntentKind
	Create          *CreateParams
	Increase        *IncreaseParams
	Decrease        *DecreaseParams
	CollateralDelta *big.Int
}

func (i Intent) validate() error {
	switch i.Kind {
	case IntentCreate:
		if i.Create == nil {
			return fmt.Errorf("create intent without create params")
		}
	case IntentIncrease:
		if i.Increase == nil {
			return fmt.Errorf("increase intent without increase params")
		}
	case IntentDecrease:
		if i.Decrease == nil {
			return fmt.Errorf("decrease intent without decrease params")
		}
	default:
		return fmt.Errorf("unknown intent kind %d", int(i.Kind))
	}
	return nil
}
