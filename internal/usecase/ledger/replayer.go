package ledger

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	commandv1 "github.com/chetanguptaa/kaleshi/internal/domain/command/v1"
	ledgerv1 "github.com/chetanguptaa/kaleshi/internal/domain/ledger/v1"
	snapshotv1 "github.com/chetanguptaa/kaleshi/internal/domain/snapshot/v1"
	"github.com/chetanguptaa/kaleshi/internal/usecase/engine"
	"github.com/chetanguptaa/kaleshi/pkg/errors"
	"github.com/chetanguptaa/kaleshi/pkg/logger"
	"github.com/chetanguptaa/kaleshi/pkg/redis"
	v9 "github.com/redis/go-redis/v9"
)

// DefaultReplayBatch is how many ledger entries are read per round trip.
const DefaultReplayBatch = 500

// Replayer rebuilds engine state from the ledger stream at startup. It scans
// the whole stream in order: a snapshot entry resets the state, a command
// entry is re-executed. The resulting state is identical to the one that
// produced the ledger.
type Replayer struct {
	client redis.Client
	logger logger.Interface
	stream string
	batch  int64
}

// NewReplayer creates a replayer for the given ledger stream.
func NewReplayer(client redis.Client, log logger.Interface, stream string) *Replayer {
	return &Replayer{
		client: client,
		logger: log,
		stream: stream,
		batch:  DefaultReplayBatch,
	}
}

// Replay applies every ledger entry to the engine and returns how many were
// applied. Side effects are suppressed for the duration: replay rebuilds
// state, it does not re-publish.
func (r *Replayer) Replay(ctx context.Context, e *engine.Engine) (int64, error) {
	e.StartReplay()
	defer e.FinishReplay()

	var applied int64
	lastID := "0"

	for {
		streams, err := r.client.XRead(ctx, &v9.XReadArgs{
			Streams: []string{r.stream, lastID},
			Count:   r.batch,
			Block:   -1,
		})
		if err != nil {
			return applied, errors.WithCode(err, errors.LedgerReplayError)
		}
		if len(streams) == 0 || len(streams[0].Messages) == 0 {
			break
		}

		for _, message := range streams[0].Messages {
			if err := r.apply(ctx, e, message); err != nil {
				return applied, err
			}
			applied++
			lastID = message.ID
		}
	}

	r.logger.Info("ledger replay complete",
		logger.Field{Key: "stream", Value: r.stream},
		logger.Field{Key: "entries", Value: applied},
	)
	return applied, nil
}

func (r *Replayer) apply(ctx context.Context, e *engine.Engine, message v9.XMessage) error {
	ctx = logger.ContextWithEntryID(ctx, message.ID)

	kind, _ := message.Values["kind"].(string)
	switch ledgerv1.Kind(kind) {
	case ledgerv1.KindSnapshot:
		return r.applySnapshot(e, message)
	case ledgerv1.KindCommand:
		return r.applyCommand(ctx, e, message)
	default:
		return errors.NewErrorDetails(
			"ledger entry "+message.ID+" has unknown kind '"+kind+"'",
			string(errors.LedgerReplayError),
			"kind",
		)
	}
}

func (r *Replayer) applySnapshot(e *engine.Engine, message v9.XMessage) error {
	state, _ := message.Values["state"].(string)
	if state == "" {
		return errors.NewErrorDetails(
			"ledger snapshot entry "+message.ID+" has no state",
			string(errors.LedgerReplayError),
			"state",
		)
	}

	var snap snapshotv1.EngineSnapshot
	if err := json.Unmarshal([]byte(state), &snap); err != nil {
		return errors.WithCode(err, errors.LedgerReplayError)
	}
	return e.RestoreSnapshot(&snap)
}

func (r *Replayer) applyCommand(ctx context.Context, e *engine.Engine, message v9.XMessage) error {
	cmd, err := commandv1.Parse(message.Values, message.ID)
	if err != nil {
		// The ledger only holds commands that were applied; a command that no
		// longer parses means the stream is corrupt.
		return errors.WithCode(err, errors.LedgerReplayError)
	}

	// Events are regenerated but discarded: downstream consumers already saw
	// them in the original run.
	if _, err := e.Execute(ctx, cmd, EntryTimestamp(message)); err != nil {
		return errors.WithCode(err, errors.LedgerReplayError)
	}
	return nil
}

// EntryTimestamp returns the execution timestamp recorded on a ledger entry,
// falling back to the entry id's millisecond component.
func EntryTimestamp(message v9.XMessage) int64 {
	if raw, ok := message.Values["timestamp"].(string); ok {
		if ts, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return ts
		}
	}
	if ms, _, found := strings.Cut(message.ID, "-"); found {
		if ts, err := strconv.ParseInt(ms, 10, 64); err == nil {
			return ts
		}
	}
	return 0
}
