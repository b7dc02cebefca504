package state

import "context"

// Store is the durable key/value surface used for wallet sequence numbers
// and run snapshots. Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
