package bootstrap

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgerv1_mock "github.com/chetanguptaa/kaleshi/internal/domain/ledger/v1/mock"
	orderbookv1 "github.com/chetanguptaa/kaleshi/internal/domain/orderbook/v1"
	orderstorev1_mock "github.com/chetanguptaa/kaleshi/internal/domain/orderstore/v1/mock"
	"github.com/chetanguptaa/kaleshi/internal/usecase/engine"
	"github.com/chetanguptaa/kaleshi/pkg/logger"
)

func openOrder(orderID string, side orderbookv1.Side, price, qty uint64) *orderbookv1.Order {
	return &orderbookv1.Order{
		OrderID:      orderID,
		AccountID:    "acct1",
		OutcomeID:    "yes",
		MarketID:     1,
		Side:         side,
		Type:         orderbookv1.OrderTypeLimit,
		TimeInForce:  orderbookv1.TimeInForceGTC,
		Price:        price,
		QtyRemaining: qty,
		QtyOriginal:  qty,
	}
}

func TestBootstrap_RestoresOpenOrdersWhenLedgerEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := orderstorev1_mock.NewMockReader(ctrl)
	ledger := ledgerv1_mock.NewMockLog(ctrl)
	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.ErrorLevel))
	require.NoError(t, err)

	ledger.EXPECT().Length(gomock.Any()).Return(int64(0), nil)
	reader.EXPECT().LoadOpenOrders(gomock.Any()).Return([]*orderbookv1.Order{
		openOrder("o1", orderbookv1.SideBuy, 48, 20),
		openOrder("o2", orderbookv1.SideSell, 52, 10),
	}, nil)

	e := engine.NewEngine(log)
	restored, err := NewBootstrapper(reader, ledger, log).Bootstrap(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, 2, restored)

	book, ok := e.Book("yes")
	require.True(t, ok)
	bids, asks := book.LevelCounts()
	assert.Equal(t, 1, bids)
	assert.Equal(t, 1, asks)
	// Restored orders rest, they never match.
	assert.Equal(t, uint64(0), book.TotalVolume())
}

func TestBootstrap_SkippedWhenLedgerHasHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := orderstorev1_mock.NewMockReader(ctrl)
	ledger := ledgerv1_mock.NewMockLog(ctrl)
	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.ErrorLevel))
	require.NoError(t, err)

	ledger.EXPECT().Length(gomock.Any()).Return(int64(42), nil)
	// LoadOpenOrders must not be called.

	e := engine.NewEngine(log)
	restored, err := NewBootstrapper(reader, ledger, log).Bootstrap(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, 0, restored)
	assert.Empty(t, e.Books())
}

func TestBootstrap_ReaderFailurePropagates(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := orderstorev1_mock.NewMockReader(ctrl)
	ledger := ledgerv1_mock.NewMockLog(ctrl)
	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.ErrorLevel))
	require.NoError(t, err)

	ledger.EXPECT().Length(gomock.Any()).Return(int64(0), nil)
	reader.EXPECT().LoadOpenOrders(gomock.Any()).Return(nil, assert.AnError)

	e := engine.NewEngine(log)
	_, err = NewBootstrapper(reader, ledger, log).Bootstrap(context.Background(), e)
	require.Error(t, err)
}
