package market

import "context"

// Persistence hooks let the poller mirror snapshots into external stores.
type Persistence interface {
	// RecordSnapshot persists one merged snapshot (history + latest cache).
	RecordSnapshot(ctx context.Context, snapshot *Snapshot) error
}
