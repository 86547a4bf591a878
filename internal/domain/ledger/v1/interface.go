package ledgerv1

import (
	"context"

	snapshotv1 "github.com/chetanguptaa/kaleshi/internal/domain/snapshot/v1"
)

// Log is the append side of the ledger.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=ledgerv1_mock
type Log interface {
	// AppendCommand records a validated command. fields must already carry the
	// resolved order_id so replay is deterministic.
	AppendCommand(ctx context.Context, fields map[string]interface{}) (string, error)

	// AppendSnapshot records a full engine state capture and resets the
	// commands-since-snapshot counter.
	AppendSnapshot(ctx context.Context, snapshot *snapshotv1.EngineSnapshot) (string, error)

	// Length returns the number of entries in the ledger.
	Length(ctx context.Context) (int64, error)

	// CommandsSinceSnapshot returns how many commands were appended since the
	// last snapshot.
	CommandsSinceSnapshot() uint64
}
