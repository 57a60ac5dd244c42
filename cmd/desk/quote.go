package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityDesk/internal/chain"
	"liquidityDesk/internal/config"
	"liquidityDesk/internal/engine"
)

func runQuote(cmd *cobra.Command, _ []string) error {
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

	collateral, _ := cmd.Flags().GetString("collateral")
	lowPrice, _ := cmd.Flags().GetFloat64("low-price")
	highPrice, _ := cmd.Flags().GetFloat64("high-price")
	if collateral == "" {
		return fmt.Errorf("collateral amount is required")
	}

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

	snapshot, err := chain.FetchMarketSnapshot(ctx, client, market, logger)
	if err != nil {
		return err
	}

	rng, err := engine.AlignedRange(lowPrice, highPrice, snapshot.TickSpacing)
	if err != nil {
		return err
	}

	collateralAmount, err := engine.ParseAmount(collateral, snapshot.CollateralDecimals)
	if err != nil {
		return fmt.Errorf("parse collateral: %w", err)
	}

	epochID := new(big.Int).SetUint64(cfg.EpochID)
	sizer := engine.NewSizer(market)
	quote, err := sizer.Quote(ctx, epochID, collateralAmount, snapshot, rng)
	if err != nil {
		return err
	}

	slippage := engine.SlippageConfig{ToleranceBps: uint16(cfg.SlippageBps)}
	opening := sizer.OpeningAmounts(quote)
	min0, min1 := sizer.MinAmounts(opening, slippage)

	lowAligned, highAligned := rng.Prices()
	logger.Info("quote",
		zap.Int32("tick_lower", rng.TickLower),
		zap.Int32("tick_upper", rng.TickUpper),
		zap.Uint("slippage_bps", cfg.SlippageBps),
	)

	fmt.Printf("range:      [%g, %g] (ticks %d..%d, spacing %d)\n",
		lowAligned, highAligned, rng.TickLower, rng.TickUpper, snapshot.TickSpacing)
	fmt.Printf("collateral: %s\n", engine.FormatAmount(collateralAmount, snapshot.CollateralDecimals))
	fmt.Printf("amount0:    %s (opening %s, min %s)\n", quote.Amount0, opening.Amount0, min0)
	fmt.Printf("amount1:    %s (opening %s, min %s)\n", quote.Amount1, opening.Amount1, min1)
	return nil
}
