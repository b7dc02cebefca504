package config

// OrderIntent is one order record inside a strategy. Besides action, name,
// pair and wallet every field is optional; pointers distinguish "absent"
// from an explicit zero, which matters for the override and precedence
// rules applied at compile time.
type OrderIntent struct {
	Name   string `yaml:"name"`
	Action string `yaml:"action"`
	Pair   string `yaml:"pair"`
	Wallet string `yaml:"wallet"`

	SizeUSD         *float64 `yaml:"size_usd"`
	SizeUnits       *uint64  `yaml:"size_units"`
	CollateralUSD   *float64 `yaml:"collateral_usd"`
	CollateralUnits *uint64  `yaml:"collateral_units"`
	Price           *float64 `yaml:"price"`
	PriceUnits      *uint64  `yaml:"price_units"`

	StopLoss        *float64 `yaml:"stop_loss"`
	StopLossUnits   *uint64  `yaml:"stop_loss_units"`
	TakeProfit      *float64 `yaml:"take_profit"`
	TakeProfitUnits *uint64  `yaml:"take_profit_units"`

	IsLong               *bool `yaml:"is_long"`
	IsIncrease           *bool `yaml:"is_increase"`
	IsMarket             *bool `yaml:"is_market"`
	CanExecuteAbovePrice *bool `yaml:"can_execute_above_price"`

	// Custom, when present, bypasses all resolution logic: the values pass
	// through to the wire verbatim.
	Custom *CustomParameters `yaml:"custom_parameters"`

	Description string  `yaml:"description"`
	WaitBefore  float64 `yaml:"wait_before"`
}

// CustomParameters is the raw bypass record. The first seven fields are
// required; stop_loss_units and take_profit_units default to 0.
type CustomParameters struct {
	SizeUnits            *uint64 `yaml:"size_units"`
	CollateralUnits      *uint64 `yaml:"collateral_units"`
	PriceUnits           *uint64 `yaml:"price_units"`
	IsLong               *bool   `yaml:"is_long"`
	IsIncrease           *bool   `yaml:"is_increase"`
	IsMarket             *bool   `yaml:"is_market"`
	CanExecuteAbovePrice *bool   `yaml:"can_execute_above_price"`
	StopLossUnits        *uint64 `yaml:"stop_loss_units"`
	TakeProfitUnits      *uint64 `yaml:"take_profit_units"`
}
