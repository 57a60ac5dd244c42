package main

import (
	"context"
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
	"liquidityDesk/internal/model"
	"liquidityDesk/internal/storage/postgres"
	"liquidityDesk/internal/tickmath"
)

func runPositions(cmd *cobra.Command, _ []string) error {
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

	ids, _ := cmd.Flags().GetUintSlice("id")
	if len(ids) == 0 {
		return fmt.Errorf("at least one position id is required")
	}
	wantRequired, _ := cmd.Flags().GetBool("required-collateral")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer client.Close()

	market, err := chain.NewMarket(client, common.HexToAddress(cfg.Market))
	if err != nil {
		return err
	}

	var store *postgres.Store
	if cfg.PGDSN != "" {
		store, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
	}

	observedAt := time.Now().UTC().Format(time.RFC3339)
	records := make([]model.PositionRecord, 0, len(ids))
	for _, id := range ids {
		positionID := new(big.Int).SetUint64(uint64(id))
		position, err := market.GetPosition(ctx, positionID)
		if err != nil {
			logger.Warn("position read failed", zap.Uint64("id", uint64(id)), zap.Error(err))
			continue
		}

		fmt.Printf("position %s: kind=%d deposited=%s liquidity=%s range=[%g, %g] (ticks %d..%d)\n",
			position.ID, position.Kind,
			position.DepositedCollateral, position.Liquidity,
			tickmath.TickToPrice(position.TickLower), tickmath.TickToPrice(position.TickUpper),
			position.TickLower, position.TickUpper,
		)

		if wantRequired && position.IsLP() && position.HasLiquidity() {
			required, err := market.QuoteRequiredCollateral(ctx, positionID, position.Liquidity)
			if err != nil {
				logger.Warn("required collateral quote failed", zap.Uint64("id", uint64(id)), zap.Error(err))
			} else {
				fmt.Printf("  required collateral: %s\n", required)
			}
		}

		records = append(records, model.PositionRecord{
			ChainID:             client.ChainID().Uint64(),
			Market:              cfg.Market,
			PositionID:          position.ID.String(),
			Kind:                uint8(position.Kind),
			DepositedCollateral: position.DepositedCollateral.String(),
			Liquidity:           position.Liquidity.String(),
			TickLower:           position.TickLower,
			TickUpper:           position.TickUpper,
			ObservedAt:          observedAt,
		})
	}

	if store != nil && len(records) > 0 {
		if err := store.UpsertPositions(ctx, records); err != nil {
			return fmt.Errorf("upsert positions: %w", err)
		}
		logger.Info("positions stored", zap.Int("count", len(records)))
	}
	return nil
}
