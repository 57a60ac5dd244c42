package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityDesk/internal/chain"
	"liquidityDesk/internal/config"
	"liquidityDesk/internal/engine"
	"liquidityDesk/internal/model"
	"liquidityDesk/internal/storage"
	"liquidityDesk/internal/storage/postgres"
	"liquidityDesk/internal/txflow"
)

func runProvision(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.PrivateKey == "" {
		return fmt.Errorf("private key is required")
	}
	collateral, _ := cmd.Flags().GetString("collateral")
	if collateral == "" {
		return fmt.Errorf("collateral amount is required")
	}
	positionID, _ := cmd.Flags().GetUint64("position")
	lowPrice, _ := cmd.Flags().GetFloat64("low-price")
	highPrice, _ := cmd.Flags().GetFloat64("high-price")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer client.Close()
	if _, err := client.WithSigner(cfg.PrivateKey); err != nil {
		return err
	}

	market, err := chain.NewMarket(client, common.HexToAddress(cfg.Market))
	if err != nil {
		return err
	}

	snapshot, err := chain.FetchMarketSnapshot(ctx, client, market, logger)
	if err != nil {
		return err
	}

	token, err := chain.NewERC20(client, common.HexToAddress(snapshot.CollateralAddress), market.Address())
	if err != nil {
		return err
	}

	targetCollateral, err := engine.ParseAmount(collateral, snapshot.CollateralDecimals)
	if err != nil {
		return fmt.Errorf("parse collateral: %w", err)
	}
	slippage := engine.SlippageConfig{ToleranceBps: uint16(cfg.SlippageBps)}
	epochID := new(big.Int).SetUint64(cfg.EpochID)

	var intent txflow.Intent
	if positionID == 0 {
		intent, err = buildCreateIntent(ctx, market, snapshot, epochID, targetCollateral, lowPrice, highPrice, slippage)
	} else {
		intent, err = buildResizeIntent(ctx, market, snapshot, epochID, positionID, targetCollateral, slippage, logger)
	}
	if err != nil {
		return err
	}
	if intent.Kind == txflow.IntentIncrease && intent.CollateralDelta.Sign() == 0 {
		logger.Info("deposit unchanged, nothing to do")
		return nil
	}

	if intent.CollateralDelta != nil && intent.CollateralDelta.Sign() > 0 {
		balance, err := token.BalanceOf(ctx, client.From())
		if err != nil {
			return fmt.Errorf("read collateral balance: %w", err)
		}
		if balance.Cmp(intent.CollateralDelta) < 0 {
			return fmt.Errorf("collateral balance %s below required %s",
				engine.FormatAmount(balance, snapshot.CollateralDecimals),
				engine.FormatAmount(intent.CollateralDelta, snapshot.CollateralDecimals))
		}
	}

	logger.Info("provision start",
		zap.String("market", snapshot.MarketAddress),
		zap.Stringer("intent", intent.Kind),
		zap.Uint64("position", positionID),
		zap.String("collateral_delta", intent.CollateralDelta.String()),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)

	flow := txflow.New(market, token, client, txflow.Config{
		DeadlineWindow: cfg.DeadlineWindow,
		ConfirmTimeout: cfg.ConfirmTimeout,
	}, logger)

	submittedAt := time.Now().UTC().Format(time.RFC3339)
	result, runErr := flow.Run(ctx, intent)
	if runErr != nil && result.TxHash == (common.Hash{}) {
		return runErr
	}

	record := buildTransactionRecord(snapshot, intent, positionID, submittedAt, result, runErr)
	if err := persistOutcome(ctx, cfg, market, snapshot, record, logger); err != nil {
		logger.Warn("persist transaction history failed", zap.Error(err))
	}

	if runErr != nil {
		return runErr
	}
	if result.PositionID != nil {
		fmt.Printf("position id: %s\n", result.PositionID)
	}
	fmt.Printf("tx: %s (block %d)\n", result.TxHash.Hex(), result.Receipt.BlockNumber.Uint64())
	return nil
}

func buildCreateIntent(ctx context.Context, market *chain.Market, snapshot model.MarketSnapshot, epochID, targetCollateral *big.Int, lowPrice, highPrice float64, slippage engine.SlippageConfig) (txflow.Intent, error) {
	rng, err := engine.AlignedRange(lowPrice, highPrice, snapshot.TickSpacing)
	if err != nil {
		return txflow.Intent{}, err
	}

	sizer := engine.NewSizer(market)
	quote, err := sizer.Quote(ctx, epochID, targetCollateral, snapshot, rng)
	if err != nil {
		return txflow.Intent{}, err
	}
	opening := sizer.OpeningAmounts(quote)
	min0, min1 := sizer.MinAmounts(opening, slippage)

	return txflow.Intent{
		Kind: txflow.IntentCreate,
		Create: &txflow.CreateParams{
			EpochID:          epochID,
			Amount0:          opening.Amount0,
			Amount1:          opening.Amount1,
			CollateralAmount: targetCollateral,
			TickLower:        rng.TickLower,
			TickUpper:        rng.TickUpper,
			MinAmount0:       min0,
			MinAmount1:       min1,
		},
		CollateralDelta: targetCollateral,
	}, nil
}

func buildResizeIntent(ctx context.Context, market *chain.Market, snapshot model.MarketSnapshot, epochID *big.Int, positionID uint64, targetCollateral *big.Int, slippage engine.SlippageConfig, logger *zap.Logger) (txflow.Intent, error) {
	id := new(big.Int).SetUint64(positionID)
	position, err := market.GetPosition(ctx, id)
	if err != nil {
		return txflow.Intent{}, fmt.Errorf("read position %d: %w", positionID, err)
	}
	if !position.IsLP() {
		return txflow.Intent{}, fmt.Errorf("position %d is not a liquidity position", positionID)
	}

	delta := engine.CollateralDelta(position.DepositedCollateral, targetCollateral)
	logger.Info("position",
		zap.Uint64("id", positionID),
		zap.String("deposited", position.DepositedCollateral.String()),
		zap.String("liquidity", position.Liquidity.String()),
		zap.Int32("tick_lower", position.TickLower),
		zap.Int32("tick_upper", position.TickUpper),
		zap.String("delta", delta.String()),
	)

	rng := engine.PriceRange{TickLower: position.TickLower, TickUpper: position.TickUpper}

	if delta.Sign() >= 0 {
		sizer := engine.NewSizer(market)
		quote, err := sizer.Quote(ctx, epochID, targetCollateral, snapshot, rng)
		if err != nil {
			return txflow.Intent{}, err
		}
		min0, min1 := sizer.MinAmounts(quote, slippage)
		return txflow.Intent{
			Kind: txflow.IntentIncrease,
			Increase: &txflow.IncreaseParams{
				PositionID:       id,
				CollateralAmount: targetCollateral,
				Amount0:          quote.Amount0,
				Amount1:          quote.Amount1,
				MinAmount0:       min0,
				MinAmount1:       min1,
			},
			CollateralDelta: delta,
		}, nil
	}

	if !position.HasLiquidity() {
		return txflow.Intent{}, fmt.Errorf("position %d has no liquidity to withdraw", positionID)
	}
	newLiquidity, err := engine.NewLiquidity(targetCollateral, position.DepositedCollateral, position.Liquidity)
	if err != nil {
		return txflow.Intent{}, err
	}
	withdrawal, err := engine.PartialWithdrawal(position.Liquidity, newLiquidity, rng, slippage)
	if err != nil {
		return txflow.Intent{}, err
	}

	return txflow.Intent{
		Kind: txflow.IntentDecrease,
		Decrease: &txflow.DecreaseParams{
			PositionID: id,
			Liquidity:  withdrawal.LiquidityToRemove,
			MinAmount0: withdrawal.MinAmount0,
			MinAmount1: withdrawal.MinAmount1,
		},
		CollateralDelta: delta,
	}, nil
}

func buildTransactionRecord(snapshot model.MarketSnapshot, intent txflow.Intent, positionID uint64, submittedAt string, result txflow.Result, runErr error) model.TransactionRecord {
	record := model.TransactionRecord{
		ChainID:         snapshot.ChainID,
		Market:          snapshot.MarketAddress,
		Intent:          intent.Kind.String(),
		TxHash:          result.TxHash.Hex(),
		Status:          model.TxStatusSubmitted,
		CollateralDelta: intent.CollateralDelta.String(),
		SubmittedAt:     submittedAt,
	}
	if positionID != 0 {
		record.PositionID = fmt.Sprintf("%d", positionID)
	}
	if result.PositionID != nil {
		record.PositionID = result.PositionID.String()
	}

	switch {
	case runErr == nil:
		record.Status = model.TxStatusConfirmed
		record.BlockNumber = result.Receipt.BlockNumber.Uint64()
		record.ConfirmedAt = time.Now().UTC().Format(time.RFC3339)
	case errors.Is(runErr, txflow.ErrConfirmTimeout):
		// Still pending as far as we know.
	default:
		record.Status = model.TxStatusFailed
	}
	return record
}

func persistOutcome(ctx context.Context, cfg config.Config, market *chain.Market, snapshot model.MarketSnapshot, record model.TransactionRecord, logger *zap.Logger) error {
	sink := storage.NewJsonlStorage(cfg.Out)
	if err := sink.PutTransactionBatch([]model.TransactionRecord{record}); err != nil {
		return err
	}

	if cfg.PGDSN == "" {
		return nil
	}
	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	if err := store.AppendTransactions(ctx, []model.TransactionRecord{record}); err != nil {
		return err
	}

	if record.Status != model.TxStatusConfirmed || record.PositionID == "" {
		return nil
	}
	id, ok := new(big.Int).SetString(record.PositionID, 10)
	if !ok {
		return nil
	}
	position, err := market.GetPosition(ctx, id)
	if err != nil {
		logger.Warn("re-read position failed", zap.Error(err))
		return nil
	}
	return store.UpsertPositions(ctx, []model.PositionRecord{{
		ChainID:             snapshot.ChainID,
		Market:              snapshot.MarketAddress,
		PositionID:          record.PositionID,
		Kind:                uint8(position.Kind),
		DepositedCollateral: position.DepositedCollateral.String(),
		Liquidity:           position.Liquidity.String(),
		TickLower:           position.TickLower,
		TickUpper:           position.TickUpper,
		ObservedAt:          time.Now().UTC().Format(time.RFC3339),
	}})
}
