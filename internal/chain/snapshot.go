package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"liquidityDesk/internal/model"
)

const (
	snapshotMaxRetries = 3
	snapshotBaseDelay  = 200 * time.Millisecond
)

// FetchMarketSnapshot reads the pool and collateral state the engine needs:
// the market's pool and collateral addresses, the pool's slot0 price and
// tick spacing, and the collateral token decimals. Reads are retried with
// backoff; transient RPC failures surface only after retries are exhausted.
func FetchMarketSnapshot(ctx context.Context, client *Client, market *Market, logger *zap.Logger) (model.MarketSnapshot, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var pool, collateral common.Address
	err := withRetry(ctx, snapshotMaxRetries, snapshotBaseDelay, func(ctx context.Context) error {
		var err error
		pool, collateral, err = market.PoolAndCollateral(ctx)
		if err != nil {
			logger.Debug("market read failed, retrying", zap.Error(err))
		}
		return err
	})
	if err != nil {
		return model.MarketSnapshot{}, fmt.Errorf("read market addresses: %w", err)
	}

	poolABI, err := V3PoolABI()
	if err != nil {
		return model.MarketSnapshot{}, fmt.Errorf("parse pool abi: %w", err)
	}

	callPool := func(method string) ([]interface{}, error) {
		data, err := poolABI.Pack(method)
		if err != nil {
			return nil, fmt.Errorf("pack %s: %w", method, err)
		}
		var values []interface{}
		err = withRetry(ctx, snapshotMaxRetries, snapshotBaseDelay, func(ctx context.Context) error {
			resp, err := client.CallContract(ctx, ethereum.CallMsg{To: &pool, Data: data}, nil)
			if err != nil {
				logger.Debug("pool read failed, retrying", zap.String("method", method), zap.Error(err))
				return err
			}
			values, err = poolABI.Unpack(method, resp)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("call %s: %w", method, err)
		}
		return values, nil
	}

	values, err := callPool("slot0")
	if err != nil {
		return model.MarketSnapshot{}, err
	}
	if len(values) < 2 {
		return model.MarketSnapshot{}, fmt.Errorf("slot0: %d outputs", len(values))
	}
	sqrtPriceX96, err := asBigInt(values[0])
	if err != nil {
		return model.MarketSnapshot{}, fmt.Errorf("sqrt price: %w", err)
	}
	tickBig, err := asBigInt(values[1])
	if err != nil {
		return model.MarketSnapshot{}, fmt.Errorf("tick: %w", err)
	}
	tick, err := int24FromBig(tickBig)
	if err != nil {
		return model.MarketSnapshot{}, fmt.Errorf("tick: %w", err)
	}

	values, err = callPool("tickSpacing")
	if err != nil {
		return model.MarketSnapshot{}, err
	}
	tickSpacingBig, err := asBigInt(values[0])
	if err != nil {
		return model.MarketSnapshot{}, fmt.Errorf("tick spacing: %w", err)
	}
	tickSpacing, err := int24FromBig(tickSpacingBig)
	if err != nil {
		return model.MarketSnapshot{}, fmt.Errorf("tick spacing: %w", err)
	}

	token, err := NewERC20(client, collateral, market.Address())
	if err != nil {
		return model.MarketSnapshot{}, err
	}
	var decimals uint8
	err = withRetry(ctx, snapshotMaxRetries, snapshotBaseDelay, func(ctx context.Context) error {
		var err error
		decimals, err = token.Decimals(ctx)
		if err != nil {
			logger.Debug("decimals read failed, retrying", zap.Error(err))
		}
		return err
	})
	if err != nil {
		return model.MarketSnapshot{}, fmt.Errorf("read collateral decimals: %w", err)
	}

	snapshot := model.MarketSnapshot{
		ChainID:            client.ChainID().Uint64(),
		MarketAddress:      market.Address().Hex(),
		PoolAddress:        pool.Hex(),
		CollateralAddress:  collateral.Hex(),
		CollateralDecimals: decimals,
		SqrtPriceX96:       sqrtPriceX96,
		Tick:               tick,
		TickSpacing:        tickSpacing,
	}
	logger.Debug("market snapshot",
		zap.String("pool", snapshot.PoolAddress),
		zap.String("sqrt_price_x96", sqrtPriceX96.String()),
		zap.Int32("tick", tick),
		zap.Int32("tick_spacing", tickSpacing),
	)
	return snapshot, nil
}
