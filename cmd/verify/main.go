package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"dexlyn-cycle-bot/internal/config"
	"dexlyn-cycle-bot/internal/order"
	"dexlyn-cycle-bot/internal/supra/txn"
)

// verify compiles a strategy's orders without submitting anything, so
// resolutions and guard derivations can be inspected before funds move.

type compiledOrder struct {
	Index                int    `json:"index"`
	Action               string `json:"action"`
	Pair                 string `json:"pair"`
	Wallet               string `json:"wallet"`
	PairType             string `json:"pair_type"`
	Collateral           string `json:"collateral"`
	Size                 uint64 `json:"size"`
	CollateralUnits      uint64 `json:"collateral_units"`
	Price                uint64 `json:"price"`
	IsLong               bool   `json:"is_long"`
	IsIncrease           bool   `json:"is_increase"`
	IsMarket             bool   `json:"is_market"`
	StopLoss             uint64 `json:"stop_loss"`
	TakeProfit           uint64 `json:"take_profit"`
	CanExecuteAbovePrice bool   `json:"can_execute_above_price"`
	Error                string `json:"error,omitempty"`
}

func main() {
	configDir := flag.String("config-dir", "config", "directory holding the JSON configuration files")
	strategyName := flag.String("strategy", "", "strategy to compile (default from config.json)")
	strategyFile := flag.String("strategy-file", "", "extra strategy file merged over strategies.json")
	asJSON := flag.Bool("json", false, "emit compiled orders as JSON")
	flag.Parse()

	if err := config.LoadEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	reg, err := config.Load(*configDir)
	if err != nil {
		fatal(err)
	}
	if *strategyFile != "" {
		if _, err := reg.MergeStrategyFile(*strategyFile); err != nil {
			fatal(err)
		}
	}
	strat, err := reg.Strategy(*strategyName)
	if err != nil {
		fatal(err)
	}
	networkName := strat.Network
	if networkName == "" {
		networkName = reg.Main.Network
	}
	netCfg, err := reg.Network(networkName)
	if err != nil {
		fatal(err)
	}

	compiled := make([]compiledOrder, 0, len(strat.Orders))
	failures := 0
	for i := range strat.Orders {
		c := compileOne(reg, &strat.Orders[i], networkName, netCfg, reg.Main.Orders.AutoGuard())
		c.Index = i
		if c.Error != "" {
			failures++
		}
		compiled = append(compiled, c)
	}

	if *asJSON {
		out, err := json.MarshalIndent(compiled, "", "  ")
		if err != nil {
			fatal(err)
		}
		fmt.Println(string(out))
	} else {
		fmt.Printf("strategy %s on %s: %d orders\n", strat.Name, networkName, len(strat.Orders))
		for _, c := range compiled {
			if c.Error != "" {
				fmt.Printf("[%d] %s %s via %s: ERROR %s\n", c.Index, c.Action, c.Pair, c.Wallet, c.Error)
				continue
			}
			fmt.Printf("[%d] %s %s via %s: size=%d collateral=%d price=%d long=%v increase=%v market=%v sl=%d tp=%d guard=%v types=[%s, %s]\n",
				c.Index, c.Action, c.Pair, c.Wallet,
				c.Size, c.CollateralUnits, c.Price,
				c.IsLong, c.IsIncrease, c.IsMarket,
				c.StopLoss, c.TakeProfit, c.CanExecuteAbovePrice,
				c.PairType, c.Collateral)
		}
	}
	if failures > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d orders failed to compile\n", failures, len(compiled))
		os.Exit(1)
	}
}

func compileOne(reg *config.Registry, intent *config.OrderIntent, networkName string, netCfg config.NetworkConfig, autoGuard bool) compiledOrder {
	c := compiledOrder{
		Action: intent.Action,
		Pair:   intent.Pair,
		Wallet: intent.Wallet,
	}
	pair, err := reg.Pair(intent.Pair)
	if err != nil {
		c.Error = err.Error()
		return c
	}
	wallet, err := reg.Wallet(intent.Wallet)
	if err != nil {
		c.Error = err.Error()
		return c
	}
	recipient, err := txn.ParseAddress(wallet.Address)
	if err != nil {
		c.Error = fmt.Sprintf("wallet address: %v", err)
		return c
	}
	if err := order.Validate(intent, pair, networkName); err != nil {
		c.Error = err.Error()
		return c
	}
	args, err := order.Compile(intent, pair, netCfg, recipient, autoGuard)
	if err != nil {
		c.Error = err.Error()
		return c
	}
	typeArgs, err := order.CompileTypeArguments(pair, netCfg)
	if err != nil {
		c.Error = err.Error()
		return c
	}
	c.PairType = typeArgs.Pair.String()
	c.Collateral = typeArgs.Collateral.String()
	c.Size = args.Size
	c.CollateralUnits = args.Collateral
	c.Price = args.Price
	c.IsLong = args.IsLong
	c.IsIncrease = args.IsIncrease
	c.IsMarket = args.IsMarket
	c.StopLoss = args.StopLoss
	c.TakeProfit = args.TakeProfit
	c.CanExecuteAbovePrice = args.CanExecuteAbovePrice
	return c
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
