package engine

import (
	"context"
	"sync"
	"time"

	"github.com/chetanguptaa/kaleshi/internal/usecase/bootstrap"
	"github.com/chetanguptaa/kaleshi/internal/usecase/consumer"
	engineuc "github.com/chetanguptaa/kaleshi/internal/usecase/engine"
	"github.com/chetanguptaa/kaleshi/internal/usecase/ledger"
	"github.com/chetanguptaa/kaleshi/pkg/config"
	"github.com/chetanguptaa/kaleshi/pkg/logger"
)

// App owns the engine process lifecycle: rebuild state, then consume commands
// and snapshot periodically until stopped.
type App struct {
	logger       logger.Interface
	engine       *engineuc.Engine
	consumer     *consumer.Consumer
	replayer     *ledger.Replayer
	appender     *ledger.Appender
	bootstrapper *bootstrap.Bootstrapper
	cfg          config.EngineConfig

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewApp wires the process. bootstrapper may be nil when no order database is
// configured.
func NewApp(
	log logger.Interface,
	e *engineuc.Engine,
	cons *consumer.Consumer,
	replayer *ledger.Replayer,
	appender *ledger.Appender,
	bootstrapper *bootstrap.Bootstrapper,
	cfg config.EngineConfig,
) *App {
	return &App{
		logger:       log,
		engine:       e,
		consumer:     cons,
		replayer:     replayer,
		appender:     appender,
		bootstrapper: bootstrapper,
		cfg:          cfg,
	}
}

// Init rebuilds engine state before any new command is consumed: ledger
// replay first, cold-start bootstrap only when the ledger was empty, then the
// consumer group is ensured and orphaned pending entries are reprocessed.
func (a *App) Init(ctx context.Context) error {
	applied, err := a.replayer.Replay(ctx, a.engine)
	if err != nil {
		return err
	}

	if applied == 0 && a.bootstrapper != nil {
		if _, err := a.bootstrapper.Bootstrap(ctx, a.engine); err != nil {
			return err
		}
	}

	if err := a.consumer.EnsureGroup(ctx); err != nil {
		return err
	}
	if err := a.consumer.ReclaimPending(ctx); err != nil {
		return err
	}

	stats := a.engine.Stats()
	a.logger.Info("engine state ready",
		logger.Field{Key: "replayed", Value: applied},
		logger.Field{Key: "books", Value: stats.Books},
	)
	return nil
}

// Start launches the consumer and the snapshot manager.
func (a *App) Start(ctx context.Context) error {
	a.ctx, a.cancel = context.WithCancel(ctx)

	a.wg.Add(2)
	go a.runConsumer()
	go a.runSnapshotManager()

	a.logger.Info("engine started",
		logger.Field{Key: "consumer", Value: a.cfg.ConsumerName},
		logger.Field{Key: "stream", Value: a.cfg.CommandStream},
	)
	return nil
}

// Stop shuts the loops down and waits for them, bounded by ctx. A final
// snapshot is appended so the next start replays as little as possible.
func (a *App) Stop(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		a.logger.Warn("engine stop timeout exceeded")
		return ctx.Err()
	}

	if a.appender.CommandsSinceSnapshot() > 0 {
		if _, err := a.appender.AppendSnapshot(ctx, a.engine.Snapshot()); err != nil {
			a.logger.Error(err)
		}
	}

	a.logger.Info("engine stopped")
	return nil
}

func (a *App) runConsumer() {
	defer a.wg.Done()

	if err := a.consumer.Run(a.ctx); err != nil && a.ctx.Err() == nil {
		a.logger.Error(err)
		// An unrecoverable consumer tears the process down; the supervisor
		// restarts it into replay.
		a.cancel()
	}
}

func (a *App) runSnapshotManager() {
	defer a.wg.Done()

	ticker := time.NewTicker(a.cfg.SnapshotInterval)
	defer ticker.Stop()

	a.logger.Info("snapshot manager started",
		logger.Field{Key: "interval", Value: a.cfg.SnapshotInterval},
		logger.Field{Key: "entry_delta", Value: a.cfg.SnapshotEntryDelta},
	)

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			if a.shouldSnapshot() {
				a.createSnapshot()
			}
		}
	}
}

// shouldSnapshot requires enough new ledger commands since the last snapshot;
// an idle engine never pads the ledger with identical snapshots.
func (a *App) shouldSnapshot() bool {
	return a.appender.CommandsSinceSnapshot() >= uint64(a.cfg.SnapshotEntryDelta)
}

func (a *App) createSnapshot() {
	snapshot := a.engine.Snapshot()
	if _, err := a.appender.AppendSnapshot(a.ctx, snapshot); err != nil {
		a.logger.ErrorContext(a.ctx, err)
	}
}
