package order

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"dexlyn-cycle-bot/internal/config"
	"dexlyn-cycle-bot/internal/supra/txn"
)

var (
	testRecipient = txn.MustParseAddress("0xaa")

	testNetwork = config.NetworkConfig{
		ContractAddress:    "0xae38541466939b577823389765d966ba206b19be954fc87011fa10dc91e2fe0f",
		CollateralToken:    "0x4f316ce2960250e7ac1206a07d07b2cbef3897d3cb8c12369d30c08ecd39c61c::tusdc_coin::TUSDC",
		SizeDecimals:       6,
		CollateralDecimals: 6,
		PriceDecimals:      10,
	}

	testPair = config.PairConfig{
		TypeArg:              "ETH_USD",
		AvailableTestnet:     true,
		AvailableMainnet:     true,
		DefaultSizeUSD:       300.0,
		DefaultCollateralUSD: 3.0,
		DefaultPrice:         3500.0,
		MinSizeUSD:           300.0,
		MaxSizeUSD:           500000.0,
	}
)

func f64(v float64) *float64 { return &v }
func u64(v uint64) *uint64   { return &v }
func b(v bool) *bool         { return &v }

func TestCompileEndToEnd(t *testing.T) {
	intent := &config.OrderIntent{
		Name:          "Open LONG ETH - Market",
		Action:        "market_open_long",
		Pair:          "ETH_USD",
		Wallet:        "trader_1",
		SizeUSD:       f64(300.0),
		CollateralUSD: f64(3.0),
		Price:         f64(3500.0),
		StopLoss:      f64(3150.0),
		TakeProfit:    f64(3850.0),
	}
	args, err := Compile(intent, testPair, testNetwork, testRecipient, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Args{
		Recipient:            testRecipient,
		Size:                 300000000,
		Collateral:           3000000,
		Price:                35000000000000,
		IsLong:               true,
		IsIncrease:           true,
		IsMarket:             true,
		StopLoss:             31500000000000,
		TakeProfit:           38500000000000,
		CanExecuteAbovePrice: false,
	}
	if args != want {
		t.Fatalf("expected %+v, got %+v", want, args)
	}
}

func TestCompileUnitsWinOverUSD(t *testing.T) {
	intent := &config.OrderIntent{
		Action:    "market_open_long",
		SizeUnits: u64(100),
		SizeUSD:   f64(50.0),
	}
	args, err := Compile(intent, testPair, testNetwork, testRecipient, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args.Size != 100 {
		t.Fatalf("expected explicit units to win, got %d", args.Size)
	}
}

func TestCompileFallsBackToPairDefaults(t *testing.T) {
	intent := &config.OrderIntent{Action: "limit_open_short"}
	args, err := Compile(intent, testPair, testNetwork, testRecipient, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args.Size != 300000000 {
		t.Fatalf("expected pair default size, got %d", args.Size)
	}
	if args.Collateral != 3000000 {
		t.Fatalf("expected pair default collateral, got %d", args.Collateral)
	}
	if args.Price != 35000000000000 {
		t.Fatalf("expected pair default price, got %d", args.Price)
	}
	if args.StopLoss != 0 || args.TakeProfit != 0 {
		t.Fatalf("expected unset triggers to stay 0, got %d/%d", args.StopLoss, args.TakeProfit)
	}
}

func TestCompileZeroTriggerIsSentinel(t *testing.T) {
	intent := &config.OrderIntent{
		Action:   "market_open_long",
		StopLoss: f64(0.0),
	}
	args, err := Compile(intent, testPair, testNetwork, testRecipient, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args.StopLoss != 0 {
		t.Fatalf("stop_loss 0 must stay 0, got %d", args.StopLoss)
	}
}

func TestCompileNegativeSizeFails(t *testing.T) {
	intent := &config.OrderIntent{
		Action:  "market_open_long",
		SizeUSD: f64(-10.0),
	}
	if _, err := Compile(intent, testPair, testNetwork, testRecipient, true); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestCompileUnknownActionFails(t *testing.T) {
	intent := &config.OrderIntent{Action: "teleport_long"}
	if _, err := Compile(intent, testPair, testNetwork, testRecipient, true); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestCompileGuardResolution(t *testing.T) {
	// explicit intent value wins over the table
	intent := &config.OrderIntent{
		Action:               "market_open_long",
		CanExecuteAbovePrice: b(true),
	}
	args, err := Compile(intent, testPair, testNetwork, testRecipient, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !args.CanExecuteAbovePrice {
		t.Fatal("explicit guard must win over the table")
	}

	// auto-calculate disabled and no explicit value: safe default true
	intent = &config.OrderIntent{Action: "market_open_long"}
	args, err = Compile(intent, testPair, testNetwork, testRecipient, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !args.CanExecuteAbovePrice {
		t.Fatal("expected safe default true with auto-calculate disabled")
	}

	// close short decreases a short: guard false per table
	intent = &config.OrderIntent{Action: "market_close_short"}
	args, err = Compile(intent, testPair, testNetwork, testRecipient, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args.CanExecuteAbovePrice {
		t.Fatal("expected guard false for decrease short")
	}
}

func TestCompileCustomPath(t *testing.T) {
	intent := &config.OrderIntent{
		Action: "custom",
		Custom: &config.CustomParameters{
			SizeUnits:            u64(500000000),
			CollateralUnits:      u64(10000000),
			PriceUnits:           u64(3550000000000000),
			IsLong:               b(true),
			IsIncrease:           b(true),
			IsMarket:             b(false),
			CanExecuteAbovePrice: b(false),
		},
	}
	args, err := Compile(intent, testPair, testNetwork, testRecipient, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args.Size != 500000000 || args.Price != 3550000000000000 {
		t.Fatalf("custom values must pass through verbatim, got %+v", args)
	}
	if args.StopLoss != 0 || args.TakeProfit != 0 {
		t.Fatalf("absent trigger units must default to 0, got %d/%d", args.StopLoss, args.TakeProfit)
	}
	if args.IsMarket {
		t.Fatal("custom is_market must pass through without action resolution")
	}
}

func TestCompileCustomMissingFieldNamesIt(t *testing.T) {
	intent := &config.OrderIntent{
		Action: "custom",
		Custom: &config.CustomParameters{
			SizeUnits:            u64(1),
			CollateralUnits:      u64(1),
			PriceUnits:           u64(1),
			IsLong:               b(true),
			IsIncrease:           b(true),
			CanExecuteAbovePrice: b(false),
		},
	}
	_, err := Compile(intent, testPair, testNetwork, testRecipient, true)
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if !strings.Contains(err.Error(), "is_market") {
		t.Fatalf("error must name the missing field, got %v", err)
	}
}

func TestWireHasElevenElementsEndingInZeroAddress(t *testing.T) {
	args := Args{Recipient: testRecipient, Size: 1, Price: 2, IsLong: true}
	wire := args.Wire()
	if len(wire) != 11 {
		t.Fatalf("expected 11 wire elements, got %d", len(wire))
	}
	if !bytes.Equal(wire[0], testRecipient[:]) {
		t.Fatal("first element must be the recipient address")
	}
	if !bytes.Equal(wire[10], txn.ZeroAddress[:]) {
		t.Fatal("last element must be the zero address")
	}
	if !bytes.Equal(wire[1], txn.EncodeU64(1)) {
		t.Fatal("second element must be the size units")
	}
}

func TestCompileTypeArguments(t *testing.T) {
	ta, err := CompileTypeArguments(testPair, testNetwork)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantPair := testNetwork.ContractAddress + "::pair_types::ETH_USD"
	if ta.Pair.String() != wantPair {
		t.Fatalf("expected %s, got %s", wantPair, ta.Pair)
	}
	if ta.Collateral.Name != "TUSDC" || ta.Collateral.Module != "tusdc_coin" {
		t.Fatalf("unexpected collateral tag %s", ta.Collateral)
	}
}

func TestValidateAvailabilityAndBounds(t *testing.T) {
	pair := testPair
	pair.AvailableMainnet = false
	intent := &config.OrderIntent{Pair: "ETH_USD", Action: "market_open_long"}
	if err := Validate(intent, pair, "mainnet"); !errors.Is(err, ErrPairUnavailable) {
		t.Fatalf("expected ErrPairUnavailable, got %v", err)
	}
	if err := Validate(intent, pair, "testnet"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	small := &config.OrderIntent{Pair: "ETH_USD", Action: "market_open_long", SizeUSD: f64(10.0)}
	if err := Validate(small, pair, "testnet"); !errors.Is(err, ErrSizeOutOfBounds) {
		t.Fatalf("expected ErrSizeOutOfBounds, got %v", err)
	}

	// exact units bypass USD bounds
	units := &config.OrderIntent{Pair: "ETH_USD", Action: "market_open_long", SizeUnits: u64(1)}
	if err := Validate(units, pair, "testnet"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewPlaceOrderCall(t *testing.T) {
	ta, err := CompileTypeArguments(testPair, testNetwork)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	contract := txn.MustParseAddress(testNetwork.ContractAddress)
	call := NewPlaceOrderCall(contract, ta, Args{Recipient: testRecipient})
	if call.ModuleName != TradingModule || call.FunctionName != PlaceOrderFunction {
		t.Fatalf("unexpected target %s::%s", call.ModuleName, call.FunctionName)
	}
	if len(call.TypeArgs) != 2 {
		t.Fatalf("expected 2 type args, got %d", len(call.TypeArgs))
	}
	if len(call.Args) != 11 {
		t.Fatalf("expected 11 args, got %d", len(call.Args))
	}
}
