// Package config loads the simulator's venue parameters. Small env-var
// accessors with sane defaults follow the teacher's env.go/config.go
// pattern directly; LoadFile adds a YAML/JSON loader on top of
// github.com/spf13/viper for batch parameter sweeps, where dozens of env
// vars per run become unwieldy.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"candlesim/internal/exchange"
)

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getEnvBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "1", "true", "y", "yes":
		return true
	case "0", "false", "n", "no":
		return false
	default:
		return def
	}
}

// FromEnv builds an exchange.Config from the process environment,
// falling back to conservative defaults for anything unset.
func FromEnv() exchange.Config {
	return exchange.Config{
		Symbol:            getEnv("SYMBOL", "BTCUSDT"),
		QuantityStep:      getEnvFloat("QUANTITY_STEP", 0.001),
		PriceStep:         getEnvFloat("PRICE_STEP", 0.1),
		Leverage:          getEnvFloat("LEVERAGE", 1),
		MakerFee:          getEnvFloat("MAKER_FEE", 0.0002),
		TakerFee:          getEnvFloat("TAKER_FEE", 0.0005),
		LatencyMillis:     getEnvFloat("LATENCY_MS", 100),
		AllowPositionFlip: getEnvBool("ALLOW_POSITION_FLIP", false),
	}
}

// LoadFile reads an exchange.Config plus the strategy call interval from
// a YAML or JSON file at path using viper. Keys match the env-var names
// in FromEnv, lowercased (e.g. "quantity_step", "leverage").
func LoadFile(path string) (exchange.Config, float64, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("quantity_step", 0.001)
	v.SetDefault("price_step", 0.1)
	v.SetDefault("leverage", 1)
	v.SetDefault("maker_fee", 0.0002)
	v.SetDefault("taker_fee", 0.0005)
	v.SetDefault("latency_ms", 100)
	v.SetDefault("call_interval", 60)

	if err := v.ReadInConfig(); err != nil {
		return exchange.Config{}, 0, err
	}

	cfg := exchange.Config{
		Symbol:            v.GetString("symbol"),
		QuantityStep:      v.GetFloat64("quantity_step"),
		PriceStep:         v.GetFloat64("price_step"),
		Leverage:          v.GetFloat64("leverage"),
		MakerFee:          v.GetFloat64("maker_fee"),
		TakerFee:          v.GetFloat64("taker_fee"),
		LatencyMillis:     v.GetFloat64("latency_ms"),
		AllowPositionFlip: v.GetBool("allow_position_flip"),
	}
	return cfg, v.GetFloat64("call_interval"), nil
}
