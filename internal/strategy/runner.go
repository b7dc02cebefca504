package strategy

import (
	"context"
	"fmt"
	"time"

	"dexlyn-cycle-bot/internal/alerts"
	"dexlyn-cycle-bot/internal/config"
	"dexlyn-cycle-bot/internal/journal"
	"dexlyn-cycle-bot/internal/metrics"
	"dexlyn-cycle-bot/internal/order"
	"dexlyn-cycle-bot/internal/state"
	"dexlyn-cycle-bot/internal/supra/txn"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Transport submits a compiled entry-function call for a named wallet and
// returns the transaction hash.
type Transport interface {
	Submit(ctx context.Context, wallet string, call txn.EntryFunction) (string, error)
}

type Options struct {
	AutoGuard  bool
	OrderDelay time.Duration
	CycleDelay time.Duration
	Resume     bool
}

// Summary is the final tally of a strategy run.
type Summary struct {
	Cycles    int
	Succeeded int
	Failed    int
}

// Runner executes a strategy's orders strictly in sequence, cycle after
// cycle. Order failures are tallied and logged but never abort the run;
// only context cancellation stops it early.
type Runner struct {
	reg       *config.Registry
	transport Transport
	store     state.Store
	metrics   *metrics.Metrics
	journal   *journal.Writer
	alerts    *alerts.Telegram
	opts      Options
	log       *zap.Logger

	// sleep and newAttemptID are swapped out in tests.
	sleep        func(ctx context.Context, d time.Duration) error
	newAttemptID func() string
}

func New(reg *config.Registry, transport Transport, store state.Store, m *metrics.Metrics, jw *journal.Writer, tg *alerts.Telegram, opts Options, log *zap.Logger) *Runner {
	if m == nil {
		m = metrics.NewNoop()
	}
	return &Runner{
		reg:          reg,
		transport:    transport,
		store:        store,
		metrics:      m,
		journal:      jw,
		alerts:       tg,
		opts:         opts,
		log:          log,
		sleep:        sleepContext,
		newAttemptID: uuid.NewString,
	}
}

// Run executes the named strategy. cyclesOverride, when non-zero, replaces
// the strategy's configured cycle count; -1 runs until cancelled.
func (r *Runner) Run(ctx context.Context, strategyName string, cyclesOverride int) (Summary, error) {
	strat, err := r.reg.Strategy(strategyName)
	if err != nil {
		return Summary{}, err
	}
	networkName := strat.Network
	if networkName == "" {
		networkName = r.reg.Main.Network
	}
	netCfg, err := r.reg.Network(networkName)
	if err != nil {
		return Summary{}, err
	}
	cycles := strat.CycleCount()
	if cyclesOverride != 0 {
		cycles = cyclesOverride
	}

	var summary Summary
	startCycle := 0
	if r.opts.Resume {
		if snap, ok, err := state.LoadRunSnapshot(ctx, r.store); err != nil {
			r.log.Warn("failed to load run snapshot", zap.Error(err))
		} else if ok && snap.Strategy == strat.Name && snap.Network == networkName {
			startCycle = snap.CompletedCycles
			summary.Cycles = snap.CompletedCycles
			summary.Succeeded = snap.Succeeded
			summary.Failed = snap.Failed
			r.log.Info("resuming strategy run",
				zap.String("strategy", strat.Name),
				zap.Int("completed_cycles", startCycle))
		}
	}

	r.log.Info("starting strategy run",
		zap.String("strategy", strat.Name),
		zap.String("network", networkName),
		zap.Int("cycles", cycles),
		zap.Int("orders_per_cycle", len(strat.Orders)))
	r.notify(ctx, fmt.Sprintf("strategy %s started on %s (%d orders per cycle)",
		strat.Name, networkName, len(strat.Orders)))

	for cycle := startCycle; cycles < 0 || cycle < cycles; cycle++ {
		if cycle > startCycle {
			if err := r.sleep(ctx, r.opts.CycleDelay); err != nil {
				return summary, err
			}
		}
		for i := range strat.Orders {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			intent := &strat.Orders[i]
			if intent.WaitBefore > 0 {
				if err := r.sleep(ctx, time.Duration(intent.WaitBefore*float64(time.Second))); err != nil {
					return summary, err
				}
			}
			if err := r.executeOrder(ctx, strat, networkName, netCfg, cycle, i, intent); err != nil {
				if ctx.Err() != nil {
					return summary, ctx.Err()
				}
				summary.Failed++
			} else {
				summary.Succeeded++
			}
			if r.lastOrderOfRun(cycles, cycle, i, len(strat.Orders)) {
				continue
			}
			if err := r.sleep(ctx, r.opts.OrderDelay); err != nil {
				return summary, err
			}
		}
		summary.Cycles = cycle + 1
		r.metrics.CyclesCompleted.Inc()
		r.persistSnapshot(ctx, strat.Name, networkName, summary)
		r.log.Info("cycle complete",
			zap.String("strategy", strat.Name),
			zap.Int("cycle", cycle),
			zap.Int("succeeded", summary.Succeeded),
			zap.Int("failed", summary.Failed))
		r.notify(ctx, fmt.Sprintf("cycle %d of %s done: %d ok, %d failed",
			cycle+1, strat.Name, summary.Succeeded, summary.Failed))
	}

	if err := state.ClearRunSnapshot(ctx, r.store); err != nil {
		r.log.Warn("failed to clear run snapshot", zap.Error(err))
	}
	r.log.Info("strategy run finished",
		zap.String("strategy", strat.Name),
		zap.Int("cycles", summary.Cycles),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed))
	if r.alerts != nil {
		r.alerts.NotifyRunFinished(ctx, strat.Name, summary.Cycles, summary.Succeeded, summary.Failed)
	}
	return summary, nil
}

// lastOrderOfRun reports whether no order follows this one, meaning no
// inter-order delay is owed. Infinite runs always owe one.
func (r *Runner) lastOrderOfRun(cycles, cycle, index, orders int) bool {
	return cycles > 0 && cycle == cycles-1 && index == orders-1
}

func (r *Runner) executeOrder(ctx context.Context, strat config.Strategy, networkName string, netCfg config.NetworkConfig, cycle, index int, intent *config.OrderIntent) error {
	attempt := r.newAttemptID()
	log := r.log.With(
		zap.String("strategy", strat.Name),
		zap.Int("cycle", cycle),
		zap.Int("order", index),
		zap.String("action", intent.Action),
		zap.String("pair", intent.Pair),
		zap.String("wallet", intent.Wallet),
		zap.String("attempt", attempt))
	if intent.Description != "" {
		log = log.With(zap.String("description", intent.Description))
	}

	call, err := r.compileOrder(intent, networkName, netCfg)
	if err != nil {
		r.metrics.CompileFailed.Inc()
		log.Error("order compilation failed", zap.Error(err))
		r.record(attempt, strat.Name, cycle, index, intent, "", err)
		return err
	}

	hash, err := r.transport.Submit(ctx, intent.Wallet, call)
	if err != nil {
		r.metrics.OrdersFailed.Inc()
		log.Error("order submission failed", zap.String("tx_hash", hash), zap.Error(err))
		r.record(attempt, strat.Name, cycle, index, intent, hash, err)
		r.notify(ctx, fmt.Sprintf("order failed: %s %s (%s): %v", intent.Action, intent.Pair, strat.Name, err))
		return err
	}
	r.metrics.OrdersSubmitted.Inc()
	log.Info("order submitted", zap.String("tx_hash", hash))
	r.record(attempt, strat.Name, cycle, index, intent, hash, nil)
	return nil
}

// compileOrder resolves an intent into the full entry-function call.
func (r *Runner) compileOrder(intent *config.OrderIntent, networkName string, netCfg config.NetworkConfig) (txn.EntryFunction, error) {
	pair, err := r.reg.Pair(intent.Pair)
	if err != nil {
		return txn.EntryFunction{}, err
	}
	wallet, err := r.reg.Wallet(intent.Wallet)
	if err != nil {
		return txn.EntryFunction{}, err
	}
	recipient, err := txn.ParseAddress(wallet.Address)
	if err != nil {
		return txn.EntryFunction{}, fmt.Errorf("wallet %s address: %w", intent.Wallet, err)
	}
	if err := order.Validate(intent, pair, networkName); err != nil {
		return txn.EntryFunction{}, err
	}
	args, err := order.Compile(intent, pair, netCfg, recipient, r.opts.AutoGuard)
	if err != nil {
		return txn.EntryFunction{}, err
	}
	typeArgs, err := order.CompileTypeArguments(pair, netCfg)
	if err != nil {
		return txn.EntryFunction{}, err
	}
	contract, err := txn.ParseAddress(netCfg.ContractAddress)
	if err != nil {
		return txn.EntryFunction{}, fmt.Errorf("contract address: %w", err)
	}
	return order.NewPlaceOrderCall(contract, typeArgs, args), nil
}

func (r *Runner) record(attempt, strategy string, cycle, index int, intent *config.OrderIntent, hash string, execErr error) {
	if r.journal == nil {
		return
	}
	rec := journal.Record{
		Time:     time.Now().UTC(),
		Attempt:  attempt,
		Strategy: strategy,
		Cycle:    cycle,
		Order:    index,
		Action:   intent.Action,
		Pair:     intent.Pair,
		Wallet:   intent.Wallet,
		TxHash:   hash,
		Success:  execErr == nil,
	}
	if execErr != nil {
		rec.Error = execErr.Error()
	}
	r.journal.Enqueue(rec)
}

// notify sends a best-effort alert; failures never affect the run.
func (r *Runner) notify(ctx context.Context, message string) {
	if r.alerts == nil {
		return
	}
	if err := r.alerts.Send(ctx, message); err != nil {
		r.log.Warn("alert send failed", zap.Error(err))
	}
}

func (r *Runner) persistSnapshot(ctx context.Context, strategy, network string, summary Summary) {
	snap := state.RunSnapshot{
		Strategy:        strategy,
		Network:         network,
		CompletedCycles: summary.Cycles,
		Succeeded:       summary.Succeeded,
		Failed:          summary.Failed,
		UpdatedAtMS:     time.Now().UnixMilli(),
	}
	if err := state.SaveRunSnapshot(ctx, r.store, snap); err != nil {
		r.log.Warn("failed to persist run snapshot", zap.Error(err))
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
