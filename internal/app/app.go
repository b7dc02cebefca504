package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"dexlyn-cycle-bot/internal/alerts"
	"dexlyn-cycle-bot/internal/config"
	"dexlyn-cycle-bot/internal/exec"
	"dexlyn-cycle-bot/internal/journal"
	"dexlyn-cycle-bot/internal/logging"
	"dexlyn-cycle-bot/internal/metrics"
	"dexlyn-cycle-bot/internal/state/sqlite"
	"dexlyn-cycle-bot/internal/strategy"
	"dexlyn-cycle-bot/internal/supra/rpc"
	"dexlyn-cycle-bot/internal/supra/txn"

	"go.uber.org/zap"
)

const rpcTimeout = 30 * time.Second

// Options are the command-line selections applied on top of the loaded
// configuration.
type Options struct {
	ConfigDir    string
	Strategy     string
	Cycles       int
	StrategyFile string
}

// App owns every wired component of a bot run.
type App struct {
	reg          *config.Registry
	log          *zap.Logger
	store        *sqlite.Store
	rpc          *rpc.Client
	executor     *exec.Executor
	runner       *strategy.Runner
	journal      *journal.Writer
	prom         *metrics.Prometheus
	networkName  string
	network      config.NetworkConfig
	strategyName string
	cycles       int
	signerAddrs  []string
}

// NewLogger builds the process logger from the config directory alone, so
// startup failures are already structured.
func NewLogger(configDir string) *zap.Logger {
	reg, err := config.Load(configDir)
	if err != nil {
		return logging.New(config.LoggingConfig{})
	}
	return logging.New(reg.Main.Log)
}

func New(opts Options, log *zap.Logger) (*App, error) {
	reg, err := config.Load(opts.ConfigDir)
	if err != nil {
		return nil, err
	}
	if opts.StrategyFile != "" {
		names, err := reg.MergeStrategyFile(opts.StrategyFile)
		if err != nil {
			return nil, err
		}
		log.Info("merged strategy file", zap.String("path", opts.StrategyFile), zap.Strings("strategies", names))
	}
	strat, err := reg.Strategy(opts.Strategy)
	if err != nil {
		return nil, err
	}
	networkName := strat.Network
	if networkName == "" {
		networkName = reg.Main.Network
	}
	netCfg, err := reg.Network(networkName)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(reg.Main.State.SQLitePath), 0o755); err != nil {
		return nil, err
	}
	store, err := sqlite.New(reg.Main.State.SQLitePath)
	if err != nil {
		return nil, err
	}

	rpcClient := rpc.New(netCfg.RPCURL, rpcTimeout, log)

	signers, addrs, err := buildSigners(reg.Wallets)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if len(signers) == 0 {
		_ = store.Close()
		return nil, errors.New("no wallet has a usable private key")
	}
	// Placeholder addresses resolve to the key-derived one so compiled
	// orders always carry the real recipient.
	for name, s := range signers {
		w := reg.Wallets[name]
		if !configuredAddress(w.Address) {
			w.Address = s.Address().Hex()
			reg.Wallets[name] = w
		}
	}

	m := metrics.NewNoop()
	var prom *metrics.Prometheus
	if reg.Main.Metrics.Listen != "" {
		prom = metrics.NewPrometheus()
		m = prom.Metrics
	}

	jw, err := journal.New(reg.Main.Journal, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	executor := exec.New(rpcClient, store, signers, exec.Options{
		ChainID:              netCfg.ChainID,
		MaxGasAmount:         reg.Main.Orders.MaxGasAmount,
		GasUnitPrice:         reg.Main.Orders.GasUnitPrice,
		ExpirationWindow:     time.Duration(reg.Main.Orders.TimeoutSeconds * float64(time.Second)),
		ConfirmationAttempts: reg.Main.Orders.ConfirmationAttempts,
		RetryBackoff:         reg.Main.Timing.RetryBackoff(),
	}, m, log)

	runner := strategy.New(reg, executor, store, m, jw, alerts.NewTelegram(reg.Main.Telegram, log), strategy.Options{
		AutoGuard:  reg.Main.Orders.AutoGuard(),
		OrderDelay: reg.Main.Timing.OrderDelay(),
		CycleDelay: reg.Main.Timing.CycleDelay(),
		Resume:     reg.Main.State.Resume,
	}, log)

	return &App{
		reg:          reg,
		log:          log,
		store:        store,
		rpc:          rpcClient,
		executor:     executor,
		runner:       runner,
		journal:      jw,
		prom:         prom,
		networkName:  networkName,
		network:      netCfg,
		strategyName: strat.Name,
		cycles:       opts.Cycles,
		signerAddrs:  addrs,
	}, nil
}

// buildSigners derives a signer per wallet that carries a private key. A
// configured address that disagrees with the derived one is a hard error;
// trading with the wrong account must not be possible.
func buildSigners(wallets map[string]config.WalletConfig) (map[string]*txn.Signer, []string, error) {
	signers := make(map[string]*txn.Signer, len(wallets))
	var addrs []string
	for name, w := range wallets {
		if w.PrivateKey == "" {
			continue
		}
		signer, err := txn.NewSigner(w.PrivateKey)
		if err != nil {
			return nil, nil, fmt.Errorf("wallet %s: %w", name, err)
		}
		if configuredAddress(w.Address) && !txn.Equal(w.Address, signer.Address().Hex()) {
			return nil, nil, fmt.Errorf("wallet %s: address %s does not match private key (derived %s)",
				name, w.Address, signer.Address().Hex())
		}
		signers[name] = signer
		addrs = append(addrs, signer.Address().Hex())
	}
	return signers, addrs, nil
}

// configuredAddress reports whether a wallet entry pins an address. The
// generated defaults use the zero address as a placeholder.
func configuredAddress(s string) bool {
	if s == "" {
		return false
	}
	addr, err := txn.ParseAddress(s)
	if err != nil {
		return true
	}
	return !addr.IsZero()
}

func (a *App) Run(ctx context.Context) error {
	defer a.store.Close()
	defer a.journal.Close()
	a.journal.Start(ctx)

	var metricsSrv *http.Server
	if a.prom != nil {
		metricsSrv = &http.Server{Addr: a.reg.Main.Metrics.Listen, Handler: a.prom.Handler()}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Warn("metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	if a.network.Faucet {
		a.fundWallets(ctx)
	}

	summary, err := a.runner.Run(ctx, a.strategyName, a.cycles)
	a.log.Info("run complete",
		zap.String("strategy", a.strategyName),
		zap.String("network", a.networkName),
		zap.Int("cycles", summary.Cycles),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed))
	return err
}

// fundWallets requests faucet funds for every signing wallet with a zero
// native balance. Failures are logged; the run proceeds and individual
// orders surface any unfunded wallet.
func (a *App) fundWallets(ctx context.Context) {
	for _, addr := range a.signerAddrs {
		balance, err := a.rpc.CoinBalance(ctx, addr, rpc.SupraCoin)
		if err != nil {
			a.log.Warn("balance check failed", zap.String("address", addr), zap.Error(err))
			continue
		}
		if balance > 0 {
			continue
		}
		hash, err := a.rpc.Faucet(ctx, addr)
		if err != nil {
			a.log.Warn("faucet request failed", zap.String("address", addr), zap.Error(err))
			continue
		}
		a.log.Info("requested faucet funds", zap.String("address", addr), zap.String("tx_hash", hash))
		a.waitForFunds(ctx, addr)
	}
}

func (a *App) waitForFunds(ctx context.Context, addr string) {
	for attempt := 0; attempt < 5; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
		balance, err := a.rpc.CoinBalance(ctx, addr, rpc.SupraCoin)
		if err == nil && balance > 0 {
			a.log.Info("wallet funded", zap.String("address", addr), zap.Uint64("balance", balance))
			return
		}
	}
	a.log.Warn("faucet funds not visible yet", zap.String("address", addr))
}
