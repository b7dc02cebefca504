package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// File names inside the config directory. The files are JSON for
// compatibility with the CLI tooling; YAML is a superset of JSON, so the
// same decoder accepts either syntax.
const (
	MainFile       = "config.json"
	NetworkFile    = "network.json"
	WalletsFile    = "wallets.json"
	PairsFile      = "pairs.json"
	StrategiesFile = "strategies.json"
)

// ErrNotFound marks lookups of unknown pair/wallet/network/strategy names,
// distinct from decode failures.
var ErrNotFound = errors.New("not found")

// Registry holds every loaded configuration file plus name-keyed lookups
// over them. It is read-only after Load.
type Registry struct {
	Main       Config
	Networks   map[string]NetworkConfig
	Wallets    map[string]WalletConfig
	Pairs      map[string]PairConfig
	Strategies map[string]Strategy
}

// Load reads the five configuration files from dir. A missing file falls
// back to the built-in defaults; a present but malformed file is an error.
func Load(dir string) (*Registry, error) {
	r := &Registry{}
	if err := loadFile(dir, MainFile, &r.Main, defaultMain); err != nil {
		return nil, err
	}
	applyDefaults(&r.Main)
	if err := loadFile(dir, NetworkFile, &r.Networks, defaultNetworks); err != nil {
		return nil, err
	}
	if err := loadFile(dir, WalletsFile, &r.Wallets, defaultWallets); err != nil {
		return nil, err
	}
	if err := loadFile(dir, PairsFile, &r.Pairs, defaultPairs); err != nil {
		return nil, err
	}
	if err := loadFile(dir, StrategiesFile, &r.Strategies, defaultStrategies); err != nil {
		return nil, err
	}
	expandWalletEnv(r.Wallets)
	return r, r.validate()
}

func loadFile[T any](dir, name string, dst *T, fallback func() T) error {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			*dst = fallback()
			return nil
		}
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// expandWalletEnv resolves ${VAR} references in private keys so keys can
// live in the environment instead of on disk.
func expandWalletEnv(wallets map[string]WalletConfig) {
	for name, w := range wallets {
		if strings.Contains(w.PrivateKey, "${") {
			w.PrivateKey = os.ExpandEnv(w.PrivateKey)
			wallets[name] = w
		}
	}
}

func (r *Registry) validate() error {
	if _, ok := r.Networks[r.Main.Network]; !ok {
		return fmt.Errorf("active network %q: %w", r.Main.Network, ErrNotFound)
	}
	for name, n := range r.Networks {
		if err := validateNetwork(name, n); err != nil {
			return err
		}
	}
	for name, s := range r.Strategies {
		if err := validateStrategy(name, s); err != nil {
			return err
		}
	}
	if _, ok := r.Strategies[r.Main.DefaultStrategy]; !ok {
		return fmt.Errorf("default strategy %q: %w", r.Main.DefaultStrategy, ErrNotFound)
	}
	return nil
}

// ActiveNetwork returns the network selected by the main config.
func (r *Registry) ActiveNetwork() (string, NetworkConfig, error) {
	cfg, ok := r.Networks[r.Main.Network]
	if !ok {
		return "", NetworkConfig{}, fmt.Errorf("network %q: %w", r.Main.Network, ErrNotFound)
	}
	return r.Main.Network, cfg, nil
}

func (r *Registry) Network(name string) (NetworkConfig, error) {
	cfg, ok := r.Networks[name]
	if !ok {
		return NetworkConfig{}, fmt.Errorf("network %q: %w", name, ErrNotFound)
	}
	return cfg, nil
}

func (r *Registry) Wallet(name string) (WalletConfig, error) {
	cfg, ok := r.Wallets[name]
	if !ok {
		return WalletConfig{}, fmt.Errorf("wallet %q: %w", name, ErrNotFound)
	}
	return cfg, nil
}

func (r *Registry) Pair(name string) (PairConfig, error) {
	cfg, ok := r.Pairs[name]
	if !ok {
		return PairConfig{}, fmt.Errorf("pair %q: %w", name, ErrNotFound)
	}
	return cfg, nil
}

// Strategy returns the named strategy, or the default strategy when name is
// empty. Unknown names list the available strategies.
func (r *Registry) Strategy(name string) (Strategy, error) {
	if name == "" {
		name = r.Main.DefaultStrategy
	}
	s, ok := r.Strategies[name]
	if !ok {
		return Strategy{}, fmt.Errorf("strategy %q (available: %s): %w",
			name, strings.Join(r.StrategyNames(), ", "), ErrNotFound)
	}
	if s.Name == "" {
		s.Name = name
	}
	return s, nil
}

// StrategyNames returns the loaded strategy names, sorted.
func (r *Registry) StrategyNames() []string {
	names := make([]string, 0, len(r.Strategies))
	for name := range r.Strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MergeStrategyFile loads an extra strategy file and merges its entries
// over the loaded set, returning the merged names. Entries without orders
// are skipped.
func (r *Registry) MergeStrategyFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var extra map[string]Strategy
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	var names []string
	for name, s := range extra {
		if len(s.Orders) == 0 {
			continue
		}
		if err := validateStrategy(name, s); err != nil {
			return nil, err
		}
		r.Strategies[name] = s
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s: no strategies with orders", path)
	}
	sort.Strings(names)
	return names, nil
}
