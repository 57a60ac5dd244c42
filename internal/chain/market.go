package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"liquidityDesk/internal/engine"
	"liquidityDesk/internal/model"
	"liquidityDesk/internal/txflow"
)

// Market binds the market contract address to the chain client. It serves
// both the read side (position lookup, quotes) and the write side
// (create/increase/decrease calls).
type Market struct {
	client  *Client
	address common.Address
	abi     abi.ABI
}

func NewMarket(client *Client, address common.Address) (*Market, error) {
	parsed, err := MarketABI()
	if err != nil {
		return nil, fmt.Errorf("parse market abi: %w", err)
	}
	return &Market{client: client, address: address, abi: parsed}, nil
}

// Address returns the market contract address.
func (m *Market) Address() common.Address {
	return m.address
}

type positionData struct {
	Id                        *big.Int
	Kind                      uint8
	DepositedCollateralAmount *big.Int
	Liquidity                 *big.Int
	LowerTick                 *big.Int
	UpperTick                 *big.Int
}

// GetPosition reads a position from the market contract.
func (m *Market) GetPosition(ctx context.Context, positionID *big.Int) (model.Position, error) {
	values, err := m.call(ctx, "getPosition", positionID)
	if err != nil {
		return model.Position{}, err
	}

	data := *abi.ConvertType(values[0], new(positionData)).(*positionData)
	lowerTick, err := int24FromBig(data.LowerTick)
	if err != nil {
		return model.Position{}, fmt.Errorf("lower tick: %w", err)
	}
	upperTick, err := int24FromBig(data.UpperTick)
	if err != nil {
		return model.Position{}, fmt.Errorf("upper tick: %w", err)
	}

	return model.Position{
		ID:                  data.Id,
		Kind:                model.PositionKind(data.Kind),
		DepositedCollateral: data.DepositedCollateralAmount,
		Liquidity:           data.Liquidity,
		TickLower:           lowerTick,
		TickUpper:           upperTick,
	}, nil
}

// QuoteLiquidityPositionTokens simulates the token amounts the market would
// require for a collateral deposit across the given sqrt price bounds.
func (m *Market) QuoteLiquidityPositionTokens(ctx context.Context, epochID, collateralAmount, sqrtPriceX96, sqrtLower, sqrtUpper *big.Int) (engine.Quote, error) {
	values, err := m.call(ctx, "quoteLiquidityPositionTokens", epochID, collateralAmount, sqrtPriceX96, sqrtLower, sqrtUpper)
	if err != nil {
		return engine.Quote{}, err
	}
	if len(values) < 2 {
		return engine.Quote{}, fmt.Errorf("quoteLiquidityPositionTokens: %d outputs", len(values))
	}

	amount0, err := asBigInt(values[0])
	if err != nil {
		return engine.Quote{}, fmt.Errorf("amount0: %w", err)
	}
	amount1, err := asBigInt(values[1])
	if err != nil {
		return engine.Quote{}, fmt.Errorf("amount1: %w", err)
	}
	return engine.Quote{Amount0: amount0, Amount1: amount1}, nil
}

// QuoteRequiredCollateral simulates the collateral a position would need to
// back the given liquidity.
func (m *Market) QuoteRequiredCollateral(ctx context.Context, positionID, liquidity *big.Int) (*big.Int, error) {
	values, err := m.call(ctx, "quoteRequiredCollateral", positionID, liquidity)
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

// PoolAndCollateral reads the market's pool and collateral asset addresses.
func (m *Market) PoolAndCollateral(ctx context.Context) (pool, collateral common.Address, err error) {
	values, err := m.call(ctx, "getMarket")
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	if len(values) < 2 {
		return common.Address{}, common.Address{}, fmt.Errorf("getMarket: %d outputs", len(values))
	}
	pool, err = asAddress(values[0])
	if err != nil {
		return common.Address{}, common.Address{}, fmt.Errorf("pool: %w", err)
	}
	collateral, err = asAddress(values[1])
	if err != nil {
		return common.Address{}, common.Address{}, fmt.Errorf("collateral: %w", err)
	}
	return pool, collateral, nil
}

type mintParams struct {
	EpochId          *big.Int
	AmountToken0     *big.Int
	AmountToken1     *big.Int
	CollateralAmount *big.Int
	LowerTick        *big.Int
	UpperTick        *big.Int
	MinAmountToken0  *big.Int
	MinAmountToken1  *big.Int
	Deadline         *big.Int
}

type increaseParams struct {
	PositionId       *big.Int
	CollateralAmount *big.Int
	AmountToken0     *big.Int
	AmountToken1     *big.Int
	MinAmountToken0  *big.Int
	MinAmountToken1  *big.Int
	Deadline         *big.Int
}

type decreaseParams struct {
	PositionId      *big.Int
	Liquidity       *big.Int
	MinAmountToken0 *big.Int
	MinAmountToken1 *big.Int
	Deadline        *big.Int
}

// CreateLiquidityPosition submits a create call and returns the transaction
// hash.
func (m *Market) CreateLiquidityPosition(ctx context.Context, params txflow.CreateParams, deadline *big.Int) (common.Hash, error) {
	return m.send(ctx, "createLiquidityPosition", mintParams{
		EpochId:          params.EpochID,
		AmountToken0:     params.Amount0,
		AmountToken1:     params.Amount1,
		CollateralAmount: params.CollateralAmount,
		LowerTick:        big.NewInt(int64(params.TickLower)),
		UpperTick:        big.NewInt(int64(params.TickUpper)),
		MinAmountToken0:  params.MinAmount0,
		MinAmountToken1:  params.MinAmount1,
		Deadline:         deadline,
	})
}

// IncreaseLiquidityPosition submits an increase call and returns the
// transaction hash.
func (m *Market) IncreaseLiquidityPosition(ctx context.Context, params txflow.IncreaseParams, deadline *big.Int) (common.Hash, error) {
	return m.send(ctx, "increaseLiquidityPosition", increaseParams{
		PositionId:       params.PositionID,
		CollateralAmount: params.CollateralAmount,
		AmountToken0:     params.Amount0,
		AmountToken1:     params.Amount1,
		MinAmountToken0:  params.MinAmount0,
		MinAmountToken1:  params.MinAmount1,
		Deadline:         deadline,
	})
}

// DecreaseLiquidityPosition submits a decrease call and returns the
// transaction hash.
func (m *Market) DecreaseLiquidityPosition(ctx context.Context, params txflow.DecreaseParams, deadline *big.Int) (common.Hash, error) {
	return m.send(ctx, "decreaseLiquidityPosition", decreaseParams{
		PositionId:      params.PositionID,
		Liquidity:       params.Liquidity,
		MinAmountToken0: params.MinAmount0,
		MinAmountToken1: params.MinAmount1,
		Deadline:        deadline,
	})
}

// CreatedPositionID scans a receipt's logs for the position id emitted by
// the market on create.
func (m *Market) CreatedPositionID(receipt *types.Receipt) (*big.Int, bool) {
	if receipt == nil {
		return nil, false
	}
	event, ok := m.abi.Events["LiquidityPositionCreated"]
	if !ok {
		return nil, false
	}

	for _, log := range receipt.Logs {
		if log == nil || log.Address != m.address {
			continue
		}
		if len(log.Topics) < 4 || log.Topics[0] != event.ID {
			continue
		}
		return new(big.Int).SetBytes(log.Topics[3].Bytes()), true
	}
	return nil, false
}

func (m *Market) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := m.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	resp, err := m.client.CallContract(ctx, ethereum.CallMsg{To: &m.address, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := m.abi.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

func (m *Market) send(ctx context.Context, method string, args ...interface{}) (common.Hash, error) {
	data, err := m.abi.Pack(method, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pack %s: %w", method, err)
	}
	return m.client.SendCall(ctx, m.address, data)
}
