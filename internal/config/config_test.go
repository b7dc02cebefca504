package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	applyDefaults(&cfg)
	if cfg.Network != "testnet" {
		t.Fatalf("expected testnet default, got %q", cfg.Network)
	}
	if !cfg.Orders.AutoGuard() {
		t.Fatal("expected auto guard default true")
	}
	if cfg.Timing.SleepBetweenOrders != 6 || cfg.Timing.SleepBetweenCycles != 10 {
		t.Fatalf("unexpected timing defaults: %+v", cfg.Timing)
	}
	if cfg.Orders.MaxGasAmount == 0 || cfg.Orders.GasUnitPrice == 0 {
		t.Fatalf("expected gas defaults, got %+v", cfg.Orders)
	}
}

func TestAutoGuardExplicitFalseSurvivesDefaults(t *testing.T) {
	cfg := Config{Orders: OrdersConfig{AutoCalculateExecutionGuard: boolPtr(false)}}
	applyDefaults(&cfg)
	if cfg.Orders.AutoGuard() {
		t.Fatal("explicit false should not be overwritten by defaults")
	}
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	r, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := r.Networks["testnet"]; !ok {
		t.Fatal("expected built-in testnet network")
	}
	if _, ok := r.Strategies["basic_cycle"]; !ok {
		t.Fatal("expected built-in basic_cycle strategy")
	}
}

func TestLoadDecodesJSONFiles(t *testing.T) {
	dir := t.TempDir()
	strategies := `{
  "solo": {
    "name": "Solo",
    "cycles": 2,
    "orders": [
      {
        "name": "o1",
        "action": "limit_open_short",
        "pair": "ETH_USD",
        "wallet": "trader_1",
        "size_units": 100,
        "size_usd": 50.0,
        "is_long": false,
        "wait_before": 2
      }
    ]
  }
}`
	writeTestFile(t, dir, StrategiesFile, strategies)
	writeTestFile(t, dir, MainFile, `{"network": "testnet", "default_strategy": "solo"}`)

	r, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, err := r.Strategy("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.CycleCount() != 2 {
		t.Fatalf("expected 2 cycles, got %d", s.CycleCount())
	}
	o := s.Orders[0]
	if o.SizeUnits == nil || *o.SizeUnits != 100 {
		t.Fatalf("expected size_units 100, got %v", o.SizeUnits)
	}
	if o.SizeUSD == nil || *o.SizeUSD != 50.0 {
		t.Fatalf("expected size_usd 50, got %v", o.SizeUSD)
	}
	if o.IsLong == nil || *o.IsLong {
		t.Fatalf("expected is_long false, got %v", o.IsLong)
	}
	if o.IsMarket != nil {
		t.Fatal("absent optional flag must decode to nil")
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, PairsFile, `{"ETH_USD": [`)
	if _, err := Load(dir); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestCycleCountDefaultsToInfinite(t *testing.T) {
	s := Strategy{Orders: []OrderIntent{{Action: "custom", Pair: "p", Wallet: "w"}}}
	if s.CycleCount() != -1 {
		t.Fatalf("expected -1 for unset cycles, got %d", s.CycleCount())
	}
}

func TestLookupsReportNotFound(t *testing.T) {
	r, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Pair("NOPE_USD"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := r.Wallet("ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := r.Network("devnet"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	_, err = r.Strategy("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "basic_cycle") {
		t.Fatalf("expected available strategies in error, got %v", err)
	}
}

func TestMergeStrategyFile(t *testing.T) {
	r, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "extra.json")
	extra := `{
  "burst": {
    "name": "Burst",
    "cycles": 1,
    "orders": [{"name": "o", "action": "market_open_long", "pair": "ETH_USD", "wallet": "trader_1"}]
  },
  "not_a_strategy": {"name": "ignored"}
}`
	if err := os.WriteFile(path, []byte(extra), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	names, err := r.MergeStrategyFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 1 || names[0] != "burst" {
		t.Fatalf("expected [burst], got %v", names)
	}
	if _, err := r.Strategy("burst"); err != nil {
		t.Fatalf("merged strategy not found: %v", err)
	}
}

func TestPairAvailability(t *testing.T) {
	p := PairConfig{AvailableTestnet: true, AvailableMainnet: false}
	if !p.AvailableOn("testnet") {
		t.Fatal("expected testnet availability")
	}
	if p.AvailableOn("mainnet") {
		t.Fatal("expected mainnet unavailability")
	}
}

func TestWriteDefaultsRoundTrips(t *testing.T) {
	dir := t.TempDir()
	written, err := WriteDefaults(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(written) != 5 {
		t.Fatalf("expected 5 files, got %d", len(written))
	}
	r, err := Load(dir)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	s, err := r.Strategy("fully_custom")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	custom := s.Orders[0].Custom
	if custom == nil || custom.SizeUnits == nil || *custom.SizeUnits != 500000000 {
		t.Fatalf("custom parameters did not round trip: %+v", custom)
	}
	// second run must not clobber existing files
	again, err := WriteDefaults(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected no rewrites, got %v", again)
	}
}

func TestWalletEnvExpansion(t *testing.T) {
	t.Setenv("TEST_TRADER_KEY", "0xabc123")
	dir := t.TempDir()
	writeTestFile(t, dir, WalletsFile, `{"trader_1": {"address": "0x1", "private_key": "${TEST_TRADER_KEY}"}}`)
	r, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	w, err := r.Wallet("trader_1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.PrivateKey != "0xabc123" {
		t.Fatalf("expected expanded key, got %q", w.PrivateKey)
	}
}

func writeTestFile(t *testing.T, dir, name, data string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}
