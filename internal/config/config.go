package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"poolScope/internal/model"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL          string
	PoolManager     string
	PositionManager string
	SwapRouter      string
	Recipient       string
	Out             string
	PGDSN           string
	MaxRetries      int
	RetryBackoff    time.Duration
	LogLevel        string
	LogFile         string
	Slippage        float64
	DeadlineMinutes int
	Fee             uint32
	RangePercent    float64
	IndexPath       []uint32
	Tokens          []model.TokenMeta
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("POOLCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")
	v.SetDefault("slippage", 0.5)
	v.SetDefault("deadline-minutes", 20)
	v.SetDefault("fee", uint32(3000))
	v.SetDefault("range-percent", 10.0)
	v.SetDefault("index-path", "0")

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

	indexPath, err := parseIndexPath(getStringSlice(v, "index-path"))
	if err != nil {
		return Config{}, err
	}

	var tokens []model.TokenMeta
	if err := v.UnmarshalKey("tokens", &tokens); err != nil {
		return Config{}, fmt.Errorf("decode tokens: %w", err)
	}

	cfg := Config{
		RPCURL:          v.GetString("rpc"),
		PoolManager:     v.GetString("pool-manager"),
		PositionManager: v.GetString("position-manager"),
		SwapRouter:      v.GetString("swap-router"),
		Recipient:       v.GetString("recipient"),
		Out:             v.GetString("out"),
		PGDSN:           v.GetString("pg-dsn"),
		MaxRetries:      v.GetInt("max-retries"),
		RetryBackoff:    v.GetDuration("retry-backoff"),
		LogLevel:        v.GetString("log-level"),
		LogFile:         v.GetString("log-file"),
		Slippage:        v.GetFloat64("slippage"),
		DeadlineMinutes: v.GetInt("deadline-minutes"),
		Fee:             v.GetUint32("fee"),
		RangePercent:    v.GetFloat64("range-percent"),
		IndexPath:       indexPath,
		Tokens:          tokens,
	}

	return cfg, nil
}

// TokenBySymbol finds a configured token, ignoring case.
func (c Config) TokenBySymbol(symbol string) (model.TokenMeta, bool) {
	for _, token := range c.Tokens {
		if strings.EqualFold(token.Symbol, symbol) {
			return token, true
		}
	}
	return model.TokenMeta{}, false
}

func parseIndexPath(items []string) ([]uint32, error) {
	out := make([]uint32, 0, len(items))
	for _, item := range items {
		index, err := strconv.ParseUint(item, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid index-path entry %q: %w", item, err)
		}
		out = append(out, uint32(index))
	}
	return out, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
