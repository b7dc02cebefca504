package state

import (
	"context"
	"encoding/base64"

	"github.com/vmihailenco/msgpack/v5"
)

const runSnapshotKey = "run:last_snapshot"

// RunSnapshot records progress through a strategy run so an interrupted
// bot can resume instead of replaying completed cycles. Persisted as
// msgpack (base64 in the kv store).
type RunSnapshot struct {
	Strategy        string `msgpack:"strategy"`
	Network         string `msgpack:"network"`
	CompletedCycles int    `msgpack:"completed_cycles"`
	Succeeded       int    `msgpack:"succeeded"`
	Failed          int    `msgpack:"failed"`
	UpdatedAtMS     int64  `msgpack:"updated_at_ms"`
}

// LoadRunSnapshot returns the last persisted snapshot, if any. A nil store
// reads as "no snapshot".
func LoadRunSnapshot(ctx context.Context, store Store) (RunSnapshot, bool, error) {
	if store == nil {
		return RunSnapshot{}, false, nil
	}
	raw, ok, err := store.Get(ctx, runSnapshotKey)
	if err != nil || !ok || raw == "" {
		return RunSnapshot{}, false, err
	}
	payload, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return RunSnapshot{}, false, err
	}
	var snap RunSnapshot
	if err := msgpack.Unmarshal(payload, &snap); err != nil {
		return RunSnapshot{}, false, err
	}
	return snap, true, nil
}

// SaveRunSnapshot persists the snapshot. A nil store is a no-op so callers
// do not have to special-case running without state.
func SaveRunSnapshot(ctx context.Context, store Store, snap RunSnapshot) error {
	if store == nil {
		return nil
	}
	payload, err := msgpack.Marshal(snap)
	if err != nil {
		return err
	}
	return store.Set(ctx, runSnapshotKey, base64.StdEncoding.EncodeToString(payload))
}

// ClearRunSnapshot removes the snapshot after a run completes cleanly.
func ClearRunSnapshot(ctx context.Context, store Store) error {
	if store == nil {
		return nil
	}
	return store.Delete(ctx, runSnapshotKey)
}
