package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL         string
	PrivateKey     string
	Market         string
	EpochID        uint64
	SlippageBps    uint
	DeadlineWindow time.Duration
	ConfirmTimeout time.Duration
	Out            string
	PGDSN          string
	LogLevel       string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DESK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("epoch", uint64(1))
	v.SetDefault("slippage-bps", uint(50))
	v.SetDefault("deadline-window", 30*time.Minute)
	v.SetDefault("confirm-timeout", 10*time.Minute)
	v.SetDefault("out", "./data/transactions.jsonl")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:         v.GetString("rpc"),
		PrivateKey:     v.GetString("private-key"),
		Market:         v.GetString("market"),
		EpochID:        v.GetUint64("epoch"),
		SlippageBps:    v.GetUint("slippage-bps"),
		DeadlineWindow: v.GetDuration("deadline-window"),
		ConfirmTimeout: v.GetDuration("confirm-timeout"),
		Out:            v.GetString("out"),
		PGDSN:          v.GetString("pg-dsn"),
		LogLevel:       v.GetString("log-level"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if c.Market == "" {
		return fmt.Errorf("market address is required")
	}
	if c.SlippageBps > 10000 {
		return fmt.Errorf("slippage-bps %d exceeds 10000", c.SlippageBps)
	}
	return nil
}
