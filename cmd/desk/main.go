package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "desk",
		Short:        "Concentrated liquidity position desk",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote token amounts for a collateral deposit across a price range",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("rpc", "", "RPC URL")
	quoteCmd.Flags().String("market", "", "market contract address")
	quoteCmd.Flags().Uint64("epoch", 1, "market epoch id")
	quoteCmd.Flags().String("collateral", "", "collateral amount (decimal string)")
	quoteCmd.Flags().Float64("low-price", 0, "range low price")
	quoteCmd.Flags().Float64("high-price", 0, "range high price")
	quoteCmd.Flags().Uint("slippage-bps", 50, "slippage tolerance in basis points")
	quoteCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(quoteCmd)

	provisionCmd := &cobra.Command{
		Use:   "provision",
		Short: "Create or resize a liquidity position",
		RunE:  runProvision,
	}

	provisionCmd.Flags().String("rpc", "", "RPC URL")
	provisionCmd.Flags().String("private-key", "", "hex-encoded signing key")
	provisionCmd.Flags().String("market", "", "market contract address")
	provisionCmd.Flags().Uint64("epoch", 1, "market epoch id")
	provisionCmd.Flags().Uint64("position", 0, "position id, 0 creates a new position")
	provisionCmd.Flags().String("collateral", "", "target collateral deposit (decimal string)")
	provisionCmd.Flags().Float64("low-price", 0, "range low price (create only)")
	provisionCmd.Flags().Float64("high-price", 0, "range high price (create only)")
	provisionCmd.Flags().Uint("slippage-bps", 50, "slippage tolerance in basis points")
	provisionCmd.Flags().Duration("deadline-window", 30*time.Minute, "transaction deadline window")
	provisionCmd.Flags().Duration("confirm-timeout", 10*time.Minute, "confirmation wait, 0 waits until interrupted")
	provisionCmd.Flags().String("out", "./data/transactions.jsonl", "transaction history JSONL path")
	provisionCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for history")
	provisionCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(provisionCmd)

	positionsCmd := &cobra.Command{
		Use:   "positions",
		Short: "Read positions from the market",
		RunE:  runPositions,
	}

	positionsCmd.Flags().String("rpc", "", "RPC URL")
	positionsCmd.Flags().String("market", "", "market contract address")
	positionsCmd.Flags().UintSlice("id", nil, "position ids (comma-separated)")
	positionsCmd.Flags().Bool("required-collateral", false, "quote required collateral for current liquidity")
	positionsCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for history")
	positionsCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(positionsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
