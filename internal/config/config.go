package config

import (
	"fmt"
	"time"
)

// Config mirrors config.json: bot-wide settings that are not specific to a
// pair, wallet or strategy.
type Config struct {
	Network         string         `yaml:"network"`
	DefaultStrategy string         `yaml:"default_strategy"`
	Trading         TradingConfig  `yaml:"trading"`
	Orders          OrdersConfig   `yaml:"orders"`
	Timing          TimingConfig   `yaml:"timing"`
	Log             LoggingConfig  `yaml:"logging"`
	State           StateConfig    `yaml:"state"`
	Metrics         MetricsConfig  `yaml:"metrics"`
	Journal         JournalConfig  `yaml:"journal"`
	Telegram        TelegramConfig `yaml:"telegram"`
}

type TradingConfig struct {
	DefaultSizeUSD       float64 `yaml:"default_size_usd"`
	DefaultCollateralUSD float64 `yaml:"default_collateral_usd"`
	DefaultLeverage      float64 `yaml:"default_leverage"`
	MaxPositionSizeUSD   float64 `yaml:"max_position_size_usd"`
	MinPositionSizeUSD   float64 `yaml:"min_position_size_usd"`
}

type OrdersConfig struct {
	// AutoCalculateExecutionGuard enables the guard table for orders that
	// do not set can_execute_above_price themselves. Pointer so an explicit
	// false survives decoding; defaults to true.
	AutoCalculateExecutionGuard *bool   `yaml:"auto_calculate_execution_guard"`
	TimeoutSeconds              float64 `yaml:"default_timeout_seconds"`
	ConfirmationAttempts        int     `yaml:"confirmation_attempts"`
	MaxGasAmount                uint64  `yaml:"max_gas_amount"`
	GasUnitPrice                uint64  `yaml:"gas_unit_price"`
}

// AutoGuard reports whether the execution guard should be derived when an
// order leaves it unset.
func (o OrdersConfig) AutoGuard() bool {
	if o.AutoCalculateExecutionGuard == nil {
		return true
	}
	return *o.AutoCalculateExecutionGuard
}

type TimingConfig struct {
	SleepBetweenOrders float64 `yaml:"sleep_between_orders"`
	SleepBetweenCycles float64 `yaml:"sleep_between_cycles"`
	RetryDelay         float64 `yaml:"retry_delay"`
}

func (t TimingConfig) OrderDelay() time.Duration {
	return secondsToDuration(t.SleepBetweenOrders)
}

func (t TimingConfig) CycleDelay() time.Duration {
	return secondsToDuration(t.SleepBetweenCycles)
}

func (t TimingConfig) RetryBackoff() time.Duration {
	return secondsToDuration(t.RetryDelay)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type StateConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
	Resume     bool   `yaml:"resume"`
}

type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

type JournalConfig struct {
	DSN string `yaml:"dsn"`
}

type TelegramConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	ChatID  string `yaml:"chat_id"`
}

// NetworkConfig mirrors one entry of network.json. Decimals differ per
// network, so unit conversion must always read them from the active entry.
type NetworkConfig struct {
	RPCURL             string `yaml:"rpc_url"`
	ContractAddress    string `yaml:"contract_address"`
	CollateralToken    string `yaml:"collateral_token"`
	SizeDecimals       int    `yaml:"size_decimals"`
	CollateralDecimals int    `yaml:"collateral_decimals"`
	PriceDecimals      int    `yaml:"price_decimals"`
	ChainID            uint8  `yaml:"chain_id"`
	Faucet             bool   `yaml:"faucet"`
}

// WalletConfig mirrors one entry of wallets.json. Only the address is part
// of the compiled order; the private key stays in the transport layer.
type WalletConfig struct {
	Address     string `yaml:"address"`
	PrivateKey  string `yaml:"private_key"`
	Description string `yaml:"description"`
}

// PairConfig mirrors one entry of pairs.json.
type PairConfig struct {
	TypeArg              string  `yaml:"type_arg"`
	Description          string  `yaml:"description"`
	AvailableTestnet     bool    `yaml:"available_testnet"`
	AvailableMainnet     bool    `yaml:"available_mainnet"`
	DefaultSizeUSD       float64 `yaml:"default_size_usd"`
	DefaultCollateralUSD float64 `yaml:"default_collateral_usd"`
	DefaultPrice         float64 `yaml:"default_price"`
	MinSizeUSD           float64 `yaml:"min_size_usd"`
	MaxSizeUSD           float64 `yaml:"max_size_usd"`
}

// AvailableOn reports pair availability for a network name. Only mainnet is
// distinguished; every other network is treated as a test network.
func (p PairConfig) AvailableOn(network string) bool {
	if network == "mainnet" {
		return p.AvailableMainnet
	}
	return p.AvailableTestnet
}

// Strategy is a named, ordered group of order intents, run for Cycles
// passes (nil or -1 means run until cancelled).
type Strategy struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Network     string        `yaml:"network"`
	Cycles      *int          `yaml:"cycles"`
	Orders      []OrderIntent `yaml:"orders"`
}

// CycleCount returns the configured cycle count, -1 when unset.
func (s Strategy) CycleCount() int {
	if s.Cycles == nil {
		return -1
	}
	return *s.Cycles
}

func applyDefaults(cfg *Config) {
	if cfg.Network == "" {
		cfg.Network = "testnet"
	}
	if cfg.DefaultStrategy == "" {
		cfg.DefaultStrategy = "basic_cycle"
	}
	if cfg.Orders.AutoCalculateExecutionGuard == nil {
		v := true
		cfg.Orders.AutoCalculateExecutionGuard = &v
	}
	if cfg.Orders.TimeoutSeconds == 0 {
		cfg.Orders.TimeoutSeconds = 240
	}
	if cfg.Orders.ConfirmationAttempts == 0 {
		cfg.Orders.ConfirmationAttempts = 3
	}
	if cfg.Orders.MaxGasAmount == 0 {
		cfg.Orders.MaxGasAmount = 500000
	}
	if cfg.Orders.GasUnitPrice == 0 {
		cfg.Orders.GasUnitPrice = 100
	}
	if cfg.Timing.SleepBetweenOrders == 0 {
		cfg.Timing.SleepBetweenOrders = 6
	}
	if cfg.Timing.SleepBetweenCycles == 0 {
		cfg.Timing.SleepBetweenCycles = 10
	}
	if cfg.Timing.RetryDelay == 0 {
		cfg.Timing.RetryDelay = 5
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.State.SQLitePath == "" {
		cfg.State.SQLitePath = "data/dexlyn-cycle-bot.db"
	}
}

func validateNetwork(name string, cfg NetworkConfig) error {
	if cfg.RPCURL == "" {
		return fmt.Errorf("network %q: rpc_url is required", name)
	}
	if cfg.ContractAddress == "" {
		return fmt.Errorf("network %q: contract_address is required", name)
	}
	if cfg.CollateralToken == "" {
		return fmt.Errorf("network %q: collateral_token is required", name)
	}
	if cfg.SizeDecimals < 0 || cfg.CollateralDecimals < 0 || cfg.PriceDecimals < 0 {
		return fmt.Errorf("network %q: decimals must be non-negative", name)
	}
	return nil
}

func validateStrategy(name string, s Strategy) error {
	if len(s.Orders) == 0 {
		return fmt.Errorf("strategy %q: orders are required", name)
	}
	for i, o := range s.Orders {
		if o.Action == "" {
			return fmt.Errorf("strategy %q order %d: action is required", name, i)
		}
		if o.Pair == "" {
			return fmt.Errorf("strategy %q order %d: pair is required", name, i)
		}
		if o.Wallet == "" {
			return fmt.Errorf("strategy %q order %d: wallet is required", name, i)
		}
		if o.WaitBefore < 0 {
			return fmt.Errorf("strategy %q order %d: wait_before must be non-negative", name, i)
		}
	}
	return nil
}
