package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

func boolPtr(v bool) *bool      { return &v }
func intPtr(v int) *int         { return &v }
func f64Ptr(v float64) *float64 { return &v }
func u64Ptr(v uint64) *uint64   { return &v }

func defaultMain() Config {
	return Config{
		Network:         "testnet",
		DefaultStrategy: "basic_cycle",
		Trading: TradingConfig{
			DefaultSizeUSD:       300.0,
			DefaultCollateralUSD: 3.0,
			DefaultLeverage:      50.0,
			MaxPositionSizeUSD:   500000.0,
			MinPositionSizeUSD:   300.0,
		},
		Orders: OrdersConfig{
			AutoCalculateExecutionGuard: boolPtr(true),
			TimeoutSeconds:              240,
			ConfirmationAttempts:        3,
			MaxGasAmount:                500000,
			GasUnitPrice:                100,
		},
		Timing: TimingConfig{
			SleepBetweenOrders: 6,
			SleepBetweenCycles: 10,
			RetryDelay:         5,
		},
		Log:   LoggingConfig{Level: "info"},
		State: StateConfig{SQLitePath: "data/dexlyn-cycle-bot.db"},
	}
}

func defaultNetworks() map[string]NetworkConfig {
	return map[string]NetworkConfig{
		"testnet": {
			RPCURL:             "https://rpc-testnet.supra.com",
			ContractAddress:    "0xae38541466939b577823389765d966ba206b19be954fc87011fa10dc91e2fe0f",
			CollateralToken:    "0x4f316ce2960250e7ac1206a07d07b2cbef3897d3cb8c12369d30c08ecd39c61c::tusdc_coin::TUSDC",
			SizeDecimals:       6,
			CollateralDecimals: 6,
			PriceDecimals:      10,
			ChainID:            6,
			Faucet:             true,
		},
		"mainnet": {
			RPCURL:             "https://rpc-mainnet.supra.com",
			ContractAddress:    "0x215f242bec12c3d66b469668bc48b71e87fc1c7fd8e1764ac773423f0e2ba18b",
			CollateralToken:    "0x9176f70f125199a3e3d5549ce795a8e906eed75901d535ded623802f15ae3637::cdp_multi::CASH",
			SizeDecimals:       8,
			CollateralDecimals: 8,
			PriceDecimals:      10,
			ChainID:            8,
		},
	}
}

func defaultWallets() map[string]WalletConfig {
	return map[string]WalletConfig{
		"trader_1": {
			Address:     "0x0000000000000000000000000000000000000000000000000000000000000000",
			PrivateKey:  "${DEXLYN_TRADER_1_KEY}",
			Description: "Primary trading wallet",
		},
		"trader_2": {
			Address:     "0x0000000000000000000000000000000000000000000000000000000000000000",
			PrivateKey:  "${DEXLYN_TRADER_2_KEY}",
			Description: "Secondary trading wallet",
		},
	}
}

func defaultPairs() map[string]PairConfig {
	return map[string]PairConfig{
		"ETH_USD": {
			TypeArg:              "ETH_USD",
			Description:          "Ethereum vs US Dollar",
			AvailableTestnet:     true,
			AvailableMainnet:     true,
			DefaultSizeUSD:       300.0,
			DefaultCollateralUSD: 3.0,
			DefaultPrice:         3500.0,
			MinSizeUSD:           300.0,
			MaxSizeUSD:           500000.0,
		},
		"BTC_USD": {
			TypeArg:              "BTC_USD",
			Description:          "Bitcoin vs US Dollar",
			AvailableTestnet:     true,
			AvailableMainnet:     true,
			DefaultSizeUSD:       300.0,
			DefaultCollateralUSD: 3.0,
			DefaultPrice:         50000.0,
			MinSizeUSD:           300.0,
			MaxSizeUSD:           500000.0,
		},
	}
}

func defaultStrategies() map[string]Strategy {
	return map[string]Strategy{
		"basic_cycle": {
			Name:        "Basic ETH Open/Close Cycle",
			Description: "Simple cycle opening LONG and SHORT positions",
			Network:     "testnet",
			Cycles:      intPtr(-1),
			Orders: []OrderIntent{
				{
					Name:          "Open LONG ETH - Market",
					Action:        "market_open_long",
					Pair:          "ETH_USD",
					Wallet:        "trader_1",
					SizeUSD:       f64Ptr(300.0),
					CollateralUSD: f64Ptr(3.0),
					Price:         f64Ptr(3500.0),
					StopLoss:      f64Ptr(3150.0),
					TakeProfit:    f64Ptr(3850.0),
					Description:   "Open long position with market order",
				},
				{
					Name:          "Open SHORT ETH - Market",
					Action:        "market_open_short",
					Pair:          "ETH_USD",
					Wallet:        "trader_2",
					SizeUSD:       f64Ptr(300.0),
					CollateralUSD: f64Ptr(3.0),
					Price:         f64Ptr(3500.0),
					StopLoss:      f64Ptr(3850.0),
					TakeProfit:    f64Ptr(3150.0),
					Description:   "Open short position with market order",
				},
			},
		},
		"fully_custom": {
			Name:        "Fully Custom Orders Example",
			Description: "Complete customization with raw unit parameters",
			Network:     "testnet",
			Cycles:      intPtr(1),
			Orders: []OrderIntent{
				{
					Name:   "Custom Limit Long",
					Action: "custom",
					Pair:   "ETH_USD",
					Wallet: "trader_1",
					Custom: &CustomParameters{
						SizeUnits:            u64Ptr(500000000),
						CollateralUnits:      u64Ptr(10000000),
						PriceUnits:           u64Ptr(3550000000000000),
						IsLong:               boolPtr(true),
						IsIncrease:           boolPtr(true),
						IsMarket:             boolPtr(false),
						StopLossUnits:        u64Ptr(3195000000000000),
						TakeProfitUnits:      u64Ptr(3905000000000000),
						CanExecuteAbovePrice: boolPtr(false),
					},
					Description: "Custom limit long with all fields in units",
				},
			},
		},
	}
}

// WriteDefaults writes the five default configuration files into dir,
// skipping any that already exist. Returns the paths written.
func WriteDefaults(dir string) ([]string, error) {
	files := []struct {
		name string
		data any
	}{
		{MainFile, defaultMain()},
		{NetworkFile, defaultNetworks()},
		{WalletsFile, defaultWallets()},
		{PairsFile, defaultPairs()},
		{StrategiesFile, defaultStrategies()},
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var written []string
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		payload, err := marshalJSONish(f.data)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", f.name, err)
		}
		if err := os.WriteFile(path, payload, 0o644); err != nil {
			return nil, err
		}
		written = append(written, path)
	}
	return written, nil
}

// marshalJSONish renders the defaults as indented JSON keyed by the yaml
// field names, so the generated files decode back through the same tags.
func marshalJSONish(v any) ([]byte, error) {
	raw, err := yaml.Marshal(v)
	if err != nil {
		return nil, err
	}
	var node any
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, err
	}
	return json.MarshalIndent(node, "", "  ")
}
