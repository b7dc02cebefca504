package order

import (
	"errors"
	"fmt"

	"dexlyn-cycle-bot/internal/config"
	"dexlyn-cycle-bot/internal/supra/txn"
)

const (
	// TradingModule and PlaceOrderFunction name the Dexlyn entry function
	// every compiled order targets.
	TradingModule      = "managed_trading"
	PlaceOrderFunction = "place_order_v3"

	// pairTypesModule hosts the per-pair marker structs under the contract
	// address.
	pairTypesModule = "pair_types"
)

// ErrMissingField marks a custom_parameters record lacking one of its seven
// required keys.
var ErrMissingField = errors.New("missing required field")

// ErrPairUnavailable marks an order whose pair is not enabled on the active
// network.
var ErrPairUnavailable = errors.New("pair not available on network")

// ErrSizeOutOfBounds marks a USD size outside the pair's configured bounds.
var ErrSizeOutOfBounds = errors.New("size out of bounds")

// Args is the complete, resolved argument set of place_order_v3. The wire
// order produced by Wire — recipient, size, collateral, price, is_long,
// is_increase, is_market, stop_loss, take_profit, guard, zero address — is a
// compatibility contract with the exchange program and must never change.
type Args struct {
	Recipient            txn.AccountAddress
	Size                 uint64
	Collateral           uint64
	Price                uint64
	IsLong               bool
	IsIncrease           bool
	IsMarket             bool
	StopLoss             uint64
	TakeProfit           uint64
	CanExecuteAbovePrice bool
}

// Wire returns the eleven BCS-encoded transaction arguments in wire order.
// The trailing element is always the zero address (reserved secondary
// recipient).
func (a Args) Wire() [][]byte {
	return [][]byte{
		txn.EncodeAddress(a.Recipient),
		txn.EncodeU64(a.Size),
		txn.EncodeU64(a.Collateral),
		txn.EncodeU64(a.Price),
		txn.EncodeBool(a.IsLong),
		txn.EncodeBool(a.IsIncrease),
		txn.EncodeBool(a.IsMarket),
		txn.EncodeU64(a.StopLoss),
		txn.EncodeU64(a.TakeProfit),
		txn.EncodeBool(a.CanExecuteAbovePrice),
		txn.EncodeAddress(txn.ZeroAddress),
	}
}

// TypeArguments identifies the instantiation of the generic trading
// function: the pair marker struct and the collateral coin.
type TypeArguments struct {
	Pair       txn.StructTag
	Collateral txn.StructTag
}

// Compile turns an order intent into the complete argument set. It is a
// pure function of its inputs: no configuration is read from anywhere else,
// and the same inputs always produce the same arguments. A present
// custom_parameters record bypasses all resolution.
func Compile(intent *config.OrderIntent, pair config.PairConfig, network config.NetworkConfig, recipient txn.AccountAddress, autoGuard bool) (Args, error) {
	if intent.Custom != nil {
		return compileCustom(intent.Custom, recipient)
	}
	return compileStandard(intent, pair, network, recipient, autoGuard)
}

// compileCustom passes raw unit values through verbatim. The seven core
// fields are required; the two trigger fields default to 0 (unset).
func compileCustom(p *config.CustomParameters, recipient txn.AccountAddress) (Args, error) {
	switch {
	case p.SizeUnits == nil:
		return Args{}, missingField("size_units")
	case p.CollateralUnits == nil:
		return Args{}, missingField("collateral_units")
	case p.PriceUnits == nil:
		return Args{}, missingField("price_units")
	case p.IsLong == nil:
		return Args{}, missingField("is_long")
	case p.IsIncrease == nil:
		return Args{}, missingField("is_increase")
	case p.IsMarket == nil:
		return Args{}, missingField("is_market")
	case p.CanExecuteAbovePrice == nil:
		return Args{}, missingField("can_execute_above_price")
	}
	a := Args{
		Recipient:            recipient,
		Size:                 *p.SizeUnits,
		Collateral:           *p.CollateralUnits,
		Price:                *p.PriceUnits,
		IsLong:               *p.IsLong,
		IsIncrease:           *p.IsIncrease,
		IsMarket:             *p.IsMarket,
		CanExecuteAbovePrice: *p.CanExecuteAbovePrice,
	}
	if p.StopLossUnits != nil {
		a.StopLoss = *p.StopLossUnits
	}
	if p.TakeProfitUnits != nil {
		a.TakeProfit = *p.TakeProfitUnits
	}
	return a, nil
}

func missingField(name string) error {
	return fmt.Errorf("%w: custom_parameters.%s", ErrMissingField, name)
}

func compileStandard(intent *config.OrderIntent, pair config.PairConfig, network config.NetworkConfig, recipient txn.AccountAddress, autoGuard bool) (Args, error) {
	size, err := resolveUnits(intent.SizeUnits, intent.SizeUSD, pair.DefaultSizeUSD, network.SizeDecimals, "size")
	if err != nil {
		return Args{}, err
	}
	collateral, err := resolveUnits(intent.CollateralUnits, intent.CollateralUSD, pair.DefaultCollateralUSD, network.CollateralDecimals, "collateral")
	if err != nil {
		return Args{}, err
	}
	price, err := resolveUnits(intent.PriceUnits, intent.Price, pair.DefaultPrice, network.PriceDecimals, "price")
	if err != nil {
		return Args{}, err
	}
	stopLoss, err := resolveTrigger(intent.StopLossUnits, intent.StopLoss, network.PriceDecimals, "stop_loss")
	if err != nil {
		return Args{}, err
	}
	takeProfit, err := resolveTrigger(intent.TakeProfitUnits, intent.TakeProfit, network.PriceDecimals, "take_profit")
	if err != nil {
		return Args{}, err
	}

	flags, err := Resolve(Action(intent.Action), Overrides{
		IsLong:     intent.IsLong,
		IsIncrease: intent.IsIncrease,
		IsMarket:   intent.IsMarket,
	})
	if err != nil {
		return Args{}, err
	}

	guard := true // safe default when derivation is disabled
	switch {
	case intent.CanExecuteAbovePrice != nil:
		guard = *intent.CanExecuteAbovePrice
	case autoGuard:
		guard = Guard(flags.IsLong, flags.IsIncrease)
	}

	return Args{
		Recipient:            recipient,
		Size:                 size,
		Collateral:           collateral,
		Price:                price,
		IsLong:               flags.IsLong,
		IsIncrease:           flags.IsIncrease,
		IsMarket:             flags.IsMarket,
		StopLoss:             stopLoss,
		TakeProfit:           takeProfit,
		CanExecuteAbovePrice: guard,
	}, nil
}

// resolveUnits applies the shared precedence chain used by size, collateral
// and price: explicit units win over a USD amount, which wins over the pair
// default; non-unit values go through the converter with the given
// decimals.
func resolveUnits(units *uint64, usd *float64, fallback float64, decimals int, field string) (uint64, error) {
	if units != nil {
		return *units, nil
	}
	amount := fallback
	if usd != nil {
		amount = *usd
	}
	v, err := ToUnits(amount, decimals)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return v, nil
}

// resolveTrigger is the stop_loss/take_profit variant of the chain: there
// is no pair default, and a zero or absent price is the "not set" sentinel,
// preserved as integer 0 rather than converted.
func resolveTrigger(units *uint64, price *float64, decimals int, field string) (uint64, error) {
	if units != nil {
		return *units, nil
	}
	if price == nil || *price <= 0 {
		return 0, nil
	}
	v, err := ToUnits(*price, decimals)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	return v, nil
}

// Validate checks the constraints that sit outside pure compilation: pair
// availability on the active network and the pair's USD size bounds. Bounds
// only apply when the size is expressed in USD; exact unit sizes are taken
// as intentional.
func Validate(intent *config.OrderIntent, pair config.PairConfig, networkName string) error {
	if !pair.AvailableOn(networkName) {
		return fmt.Errorf("%w: %s on %s", ErrPairUnavailable, intent.Pair, networkName)
	}
	if intent.Custom != nil || intent.SizeUnits != nil {
		return nil
	}
	sizeUSD := pair.DefaultSizeUSD
	if intent.SizeUSD != nil {
		sizeUSD = *intent.SizeUSD
	}
	if pair.MinSizeUSD > 0 && sizeUSD < pair.MinSizeUSD {
		return fmt.Errorf("%w: %.2f below minimum %.2f", ErrSizeOutOfBounds, sizeUSD, pair.MinSizeUSD)
	}
	if pair.MaxSizeUSD > 0 && sizeUSD > pair.MaxSizeUSD {
		return fmt.Errorf("%w: %.2f above maximum %.2f", ErrSizeOutOfBounds, sizeUSD, pair.MaxSizeUSD)
	}
	return nil
}

// CompileTypeArguments builds the pair's on-chain type identifier
// ({contract}::pair_types::{TypeArg}) together with the network's
// collateral coin type.
func CompileTypeArguments(pair config.PairConfig, network config.NetworkConfig) (TypeArguments, error) {
	contract, err := txn.ParseAddress(network.ContractAddress)
	if err != nil {
		return TypeArguments{}, fmt.Errorf("contract address: %w", err)
	}
	if pair.TypeArg == "" {
		return TypeArguments{}, errors.New("pair type_arg is required")
	}
	collateral, err := txn.ParseStructTag(network.CollateralToken)
	if err != nil {
		return TypeArguments{}, fmt.Errorf("collateral token: %w", err)
	}
	return TypeArguments{
		Pair:       txn.StructTag{Address: contract, Module: pairTypesModule, Name: pair.TypeArg},
		Collateral: collateral,
	}, nil
}

// NewPlaceOrderCall assembles the entry-function payload the transport
// signs and submits.
func NewPlaceOrderCall(contract txn.AccountAddress, typeArgs TypeArguments, args Args) txn.EntryFunction {
	return txn.EntryFunction{
		ModuleAddress: contract,
		ModuleName:    TradingModule,
		FunctionName:  PlaceOrderFunction,
		TypeArgs:      []txn.StructTag{typeArgs.Pair, typeArgs.Collateral},
		Args:          args.Wire(),
	}
}
