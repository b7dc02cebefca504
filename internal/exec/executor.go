package exec

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"dexlyn-cycle-bot/internal/metrics"
	"dexlyn-cycle-bot/internal/state"
	"dexlyn-cycle-bot/internal/supra/rpc"
	"dexlyn-cycle-bot/internal/supra/txn"

	"go.uber.org/zap"
)

// ErrNotConfirmed is returned when a submitted transaction is still
// pending after all confirmation polls. The transaction may yet land.
var ErrNotConfirmed = errors.New("transaction not confirmed")

// ErrTransactionFailed is returned when the chain reports a transaction
// as failed.
var ErrTransactionFailed = errors.New("transaction failed on chain")

// RPCClient is the node surface the executor needs.
type RPCClient interface {
	SequenceNumber(ctx context.Context, address string) (uint64, error)
	SubmitTransaction(ctx context.Context, signed []byte) (string, error)
	TransactionStatus(ctx context.Context, hash string) (string, error)
}

type Options struct {
	ChainID              uint8
	MaxGasAmount         uint64
	GasUnitPrice         uint64
	ExpirationWindow     time.Duration
	ConfirmationAttempts int
	RetryBackoff         time.Duration
}

// Executor signs and submits entry-function transactions. Sequence
// numbers are cached per wallet and persisted so restarts do not replay
// stale values; the chain remains the authority on conflicts.
type Executor struct {
	rpc     RPCClient
	store   state.Store
	signers map[string]*txn.Signer
	opts    Options
	log     *zap.Logger
	metrics *metrics.Metrics

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error

	mu   sync.Mutex
	seqs map[string]uint64
}

func New(rpcClient RPCClient, store state.Store, signers map[string]*txn.Signer, opts Options, m *metrics.Metrics, log *zap.Logger) *Executor {
	if opts.ConfirmationAttempts <= 0 {
		opts.ConfirmationAttempts = 3
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 5 * time.Second
	}
	if opts.ExpirationWindow <= 0 {
		opts.ExpirationWindow = 240 * time.Second
	}
	if m == nil {
		m = metrics.NewNoop()
	}
	return &Executor{
		rpc:     rpcClient,
		store:   store,
		signers: signers,
		opts:    opts,
		log:     log,
		metrics: m,
		sleep:   sleepContext,
		seqs:    make(map[string]uint64),
	}
}

// Submit builds, signs and submits a transaction for the wallet address,
// then polls until the chain confirms it. The returned hash is set even
// for ErrNotConfirmed so callers can keep a reference to the attempt.
func (e *Executor) Submit(ctx context.Context, wallet string, call txn.EntryFunction) (string, error) {
	signer, ok := e.signers[wallet]
	if !ok {
		return "", fmt.Errorf("no signer for wallet %s", wallet)
	}
	addr := signer.Address().Hex()

	var lastErr error
	for attempt := 0; attempt < e.opts.ConfirmationAttempts; attempt++ {
		if attempt > 0 {
			e.metrics.TxnRetries.Inc()
			if err := e.sleep(ctx, e.opts.RetryBackoff); err != nil {
				return "", err
			}
		}
		seq, err := e.nextSequence(ctx, addr)
		if err != nil {
			lastErr = err
			continue
		}
		raw := txn.RawTransaction{
			Sender:         signer.Address(),
			SequenceNumber: seq,
			Payload:        call,
			MaxGasAmount:   e.opts.MaxGasAmount,
			GasUnitPrice:   e.opts.GasUnitPrice,
			ExpirationSecs: uint64(time.Now().Add(e.opts.ExpirationWindow).Unix()),
			ChainID:        e.opts.ChainID,
		}
		signed, err := signer.Sign(raw)
		if err != nil {
			return "", err
		}
		encoded, err := signed.Encode()
		if err != nil {
			return "", err
		}
		hash, err := e.rpc.SubmitTransaction(ctx, encoded)
		if err != nil {
			// Most submit rejections are stale sequence numbers, so
			// resync from the chain before the next attempt.
			e.invalidateSequence(addr)
			lastErr = err
			e.log.Warn("transaction submit failed",
				zap.String("wallet", wallet),
				zap.Uint64("sequence", seq),
				zap.Error(err))
			continue
		}
		e.commitSequence(ctx, addr, seq+1)
		return hash, e.confirm(ctx, hash)
	}
	return "", fmt.Errorf("submit exhausted %d attempts: %w", e.opts.ConfirmationAttempts, lastErr)
}

func (e *Executor) confirm(ctx context.Context, hash string) error {
	for attempt := 0; attempt < e.opts.ConfirmationAttempts; attempt++ {
		if err := e.sleep(ctx, e.opts.RetryBackoff); err != nil {
			return err
		}
		status, err := e.rpc.TransactionStatus(ctx, hash)
		if err != nil {
			e.log.Warn("transaction status poll failed", zap.String("hash", hash), zap.Error(err))
			continue
		}
		switch status {
		case rpc.StatusSuccess:
			return nil
		case rpc.StatusFailed:
			return fmt.Errorf("%w: %s", ErrTransactionFailed, hash)
		}
	}
	return fmt.Errorf("%w: %s", ErrNotConfirmed, hash)
}

// nextSequence resolves the sequence number for the next transaction.
// Precedence is cache, then persisted store, then the chain; the larger
// of store and chain wins because either may be behind.
func (e *Executor) nextSequence(ctx context.Context, address string) (uint64, error) {
	e.mu.Lock()
	if seq, ok := e.seqs[address]; ok {
		e.mu.Unlock()
		return seq, nil
	}
	e.mu.Unlock()

	chainSeq, err := e.rpc.SequenceNumber(ctx, address)
	if err != nil {
		return 0, fmt.Errorf("fetch sequence number: %w", err)
	}
	seq := chainSeq
	if e.store != nil {
		if val, ok, err := e.store.Get(ctx, seqKey(address)); err != nil {
			return 0, err
		} else if ok {
			if stored, err := strconv.ParseUint(val, 10, 64); err == nil && stored > seq {
				seq = stored
			}
		}
	}
	e.mu.Lock()
	e.seqs[address] = seq
	e.mu.Unlock()
	return seq, nil
}

func (e *Executor) commitSequence(ctx context.Context, address string, next uint64) {
	e.mu.Lock()
	e.seqs[address] = next
	e.mu.Unlock()
	if e.store != nil {
		if err := e.store.Set(ctx, seqKey(address), strconv.FormatUint(next, 10)); err != nil {
			e.log.Warn("failed to persist sequence number", zap.String("address", address), zap.Error(err))
		}
	}
}

func (e *Executor) invalidateSequence(address string) {
	e.mu.Lock()
	delete(e.seqs, address)
	e.mu.Unlock()
}

func seqKey(address string) string {
	return "seq:" + address
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
