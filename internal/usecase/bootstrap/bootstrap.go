package bootstrap

import (
	"context"

	ledgerv1 "github.com/chetanguptaa/kaleshi/internal/domain/ledger/v1"
	orderstorev1 "github.com/chetanguptaa/kaleshi/internal/domain/orderstore/v1"
	"github.com/chetanguptaa/kaleshi/internal/usecase/engine"
	"github.com/chetanguptaa/kaleshi/pkg/logger"
)

// Bootstrapper seeds a brand-new engine from the order database. It only runs
// when the ledger is empty: once the ledger has history, replay is the sole
// source of truth and persisted orders are ignored.
type Bootstrapper struct {
	reader orderstorev1.Reader
	ledger ledgerv1.Log
	logger logger.Interface
}

// NewBootstrapper wires the cold-start loader.
func NewBootstrapper(reader orderstorev1.Reader, ledgerLog ledgerv1.Log, log logger.Interface) *Bootstrapper {
	return &Bootstrapper{
		reader: reader,
		ledger: ledgerLog,
		logger: log,
	}
}

// Bootstrap rests persisted open orders onto the engine when the ledger is
// empty. Returns how many orders were restored.
func (b *Bootstrapper) Bootstrap(ctx context.Context, e *engine.Engine) (int, error) {
	length, err := b.ledger.Length(ctx)
	if err != nil {
		return 0, err
	}
	if length > 0 {
		b.logger.Info("ledger has history, skipping bootstrap",
			logger.Field{Key: "entries", Value: length},
		)
		return 0, nil
	}

	orders, err := b.reader.LoadOpenOrders(ctx)
	if err != nil {
		return 0, err
	}
	if err := e.Recover(orders); err != nil {
		return 0, err
	}

	b.logger.Info("bootstrap complete", logger.Field{Key: "orders", Value: len(orders)})
	return len(orders), nil
}
