package ledger

import (
	"context"
	"encoding/json"
	"sync/atomic"

	ledgerv1 "github.com/chetanguptaa/kaleshi/internal/domain/ledger/v1"
	snapshotv1 "github.com/chetanguptaa/kaleshi/internal/domain/snapshot/v1"
	"github.com/chetanguptaa/kaleshi/pkg/errors"
	"github.com/chetanguptaa/kaleshi/pkg/logger"
	"github.com/chetanguptaa/kaleshi/pkg/redis"
	v9 "github.com/redis/go-redis/v9"
)

var _ ledgerv1.Log = (*Appender)(nil)

// Appender writes entries to the append-only ledger stream. A command is
// appended only after it executed successfully, so the stream is a record of
// applied commands in execution order.
type Appender struct {
	client redis.Client
	logger logger.Interface
	stream string

	commandsSinceSnapshot atomic.Uint64
}

// NewAppender creates an appender for the given ledger stream.
func NewAppender(client redis.Client, log logger.Interface, stream string) *Appender {
	return &Appender{
		client: client,
		logger: log,
		stream: stream,
	}
}

// AppendCommand records an applied command. fields must carry the resolved
// order_id and the execution timestamp so replay is deterministic.
func (a *Appender) AppendCommand(ctx context.Context, fields map[string]interface{}) (string, error) {
	values := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		values[k] = v
	}
	values["kind"] = string(ledgerv1.KindCommand)

	id, err := a.client.XAdd(ctx, &v9.XAddArgs{
		Stream: a.stream,
		Values: values,
	})
	if err != nil {
		return "", errors.WithCode(err, errors.LedgerAppendError)
	}

	a.commandsSinceSnapshot.Add(1)
	a.logger.DebugContext(ctx, "ledger command appended", logger.Field{Key: "ledger_id", Value: id})
	return id, nil
}

// AppendSnapshot records the full engine state and resets the
// commands-since-snapshot counter.
func (a *Appender) AppendSnapshot(ctx context.Context, snapshot *snapshotv1.EngineSnapshot) (string, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return "", errors.WithCode(err, errors.SnapshotError)
	}

	id, err := a.client.XAdd(ctx, &v9.XAddArgs{
		Stream: a.stream,
		Values: map[string]interface{}{
			"kind":  string(ledgerv1.KindSnapshot),
			"state": string(payload),
		},
	})
	if err != nil {
		return "", errors.WithCode(err, errors.LedgerAppendError)
	}

	a.commandsSinceSnapshot.Store(0)
	a.logger.InfoContext(ctx, "ledger snapshot appended",
		logger.Field{Key: "ledger_id", Value: id},
		logger.Field{Key: "books", Value: len(snapshot.Books)},
	)
	return id, nil
}

// Length returns the number of entries in the ledger stream.
func (a *Appender) Length(ctx context.Context) (int64, error) {
	length, err := a.client.XLen(ctx, a.stream)
	if err != nil {
		return 0, errors.WithCode(err, errors.LedgerAppendError)
	}
	return length, nil
}

// CommandsSinceSnapshot returns how many commands were appended since the
// last snapshot.
func (a *Appender) CommandsSinceSnapshot() uint64 {
	return a.commandsSinceSnapshot.Load()
}
