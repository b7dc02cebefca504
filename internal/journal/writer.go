package journal

import (
	"context"
	"database/sql"
	"strings"
	"sync/atomic"
	"time"

	"dexlyn-cycle-bot/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

const writeTimeout = 3 * time.Second

// Record is one order attempt as executed by the runner. Attempt is a
// uuid so journal rows stay unique even when the same order retries.
type Record struct {
	Time     time.Time
	Attempt  string
	Strategy string
	Cycle    int
	Order    int
	Action   string
	Pair     string
	Wallet   string
	TxHash   string
	Success  bool
	Error    string
}

// Writer appends order attempts to Postgres in the background. A nil
// Writer is a valid no-op, so the runner never checks configuration.
type Writer struct {
	db      *sql.DB
	log     *zap.Logger
	queue   chan Record
	started atomic.Bool
	dropped atomic.Uint64
}

func New(cfg config.JournalConfig, log *zap.Logger) (*Writer, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, nil
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	w := &Writer{
		db:    db,
		log:   log,
		queue: make(chan Record, 256),
	}
	if err := w.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) Start(ctx context.Context) {
	if w == nil {
		return
	}
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	go w.run(ctx)
}

func (w *Writer) Close() error {
	if w == nil || w.db == nil {
		return nil
	}
	return w.db.Close()
}

// Enqueue never blocks; records are dropped when the queue is full.
func (w *Writer) Enqueue(rec Record) {
	if w == nil {
		return
	}
	select {
	case w.queue <- rec:
		return
	default:
		if w.dropped.Add(1) == 1 && w.log != nil {
			w.log.Warn("journal queue full")
		}
	}
}

func (w *Writer) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case rec := <-w.queue:
			w.write(ctx, rec)
		}
	}
}

func (w *Writer) ensureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_, err := w.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS order_attempts (
		ts TIMESTAMPTZ NOT NULL,
		attempt UUID PRIMARY KEY,
		strategy TEXT NOT NULL,
		cycle INTEGER NOT NULL,
		order_index INTEGER NOT NULL,
		action TEXT NOT NULL,
		pair TEXT NOT NULL,
		wallet TEXT NOT NULL,
		tx_hash TEXT NOT NULL DEFAULT '',
		success BOOLEAN NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	)`)
	return err
}

func (w *Writer) write(ctx context.Context, rec Record) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if _, err := w.db.ExecContext(ctx, `INSERT INTO order_attempts (
		ts, attempt, strategy, cycle, order_index, action, pair, wallet, tx_hash, success, error
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	ON CONFLICT (attempt) DO NOTHING`,
		rec.Time,
		rec.Attempt,
		rec.Strategy,
		rec.Cycle,
		rec.Order,
		rec.Action,
		rec.Pair,
		rec.Wallet,
		rec.TxHash,
		rec.Success,
		rec.Error,
	); err != nil && w.log != nil {
		w.log.Warn("journal insert failed", zap.Error(err))
	}
}
