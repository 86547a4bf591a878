package ledger

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/golang/mock/gomock"
	v9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderbookv1 "github.com/chetanguptaa/kaleshi/internal/domain/orderbook/v1"
	"github.com/chetanguptaa/kaleshi/internal/usecase/engine"
	"github.com/chetanguptaa/kaleshi/pkg/errors"
	"github.com/chetanguptaa/kaleshi/pkg/logger"
	redis_mock "github.com/chetanguptaa/kaleshi/pkg/redis/mock"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.ErrorLevel))
	require.NoError(t, err)
	return log
}

func orderFields(orderID, side, price, qty string) map[string]interface{} {
	return map[string]interface{}{
		"type":         "order.new",
		"order_id":     orderID,
		"account_id":   "acct1",
		"outcome_id":   "yes",
		"market_id":    "1",
		"side":         side,
		"order_type":   "LIMIT",
		"price":        price,
		"qty_original": qty,
		"timestamp":    "1700000000000",
	}
}

func TestAppender_AppendCommand(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := redis_mock.NewMockClient(ctrl)
	appender := NewAppender(client, newTestLogger(t), "engine.ledger")

	client.EXPECT().
		XAdd(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args *v9.XAddArgs) (string, error) {
			assert.Equal(t, "engine.ledger", args.Stream)
			values := args.Values.(map[string]interface{})
			assert.Equal(t, "command", values["kind"])
			assert.Equal(t, "o1", values["order_id"])
			return "1-0", nil
		})

	id, err := appender.AppendCommand(context.Background(), orderFields("o1", "BUY", "50", "100"))
	require.NoError(t, err)
	assert.Equal(t, "1-0", id)
	assert.Equal(t, uint64(1), appender.CommandsSinceSnapshot())
}

func TestAppender_AppendCommandFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := redis_mock.NewMockClient(ctrl)
	appender := NewAppender(client, newTestLogger(t), "engine.ledger")

	client.EXPECT().
		XAdd(gomock.Any(), gomock.Any()).
		Return("", errors.NewErrorDetails("connection refused", string(errors.RedisXAddError), "stream"))

	_, err := appender.AppendCommand(context.Background(), orderFields("o1", "BUY", "50", "100"))
	require.Error(t, err)
	assert.Equal(t, errors.LedgerAppendError, errors.CodeOf(err))
	assert.True(t, errors.IsRetryable(err))
	assert.Equal(t, uint64(0), appender.CommandsSinceSnapshot())
}

func TestAppender_SnapshotResetsCounter(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := redis_mock.NewMockClient(ctrl)
	appender := NewAppender(client, newTestLogger(t), "engine.ledger")

	client.EXPECT().XAdd(gomock.Any(), gomock.Any()).Return("1-0", nil).Times(3)
	client.EXPECT().
		XAdd(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args *v9.XAddArgs) (string, error) {
			values := args.Values.(map[string]interface{})
			assert.Equal(t, "snapshot", values["kind"])
			assert.NotEmpty(t, values["state"])
			return "4-0", nil
		})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := appender.AppendCommand(ctx, orderFields("o1", "BUY", "50", "100"))
		require.NoError(t, err)
	}
	assert.Equal(t, uint64(3), appender.CommandsSinceSnapshot())

	e := engine.NewEngine(newTestLogger(t))
	_, err := appender.AppendSnapshot(ctx, e.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), appender.CommandsSinceSnapshot())
}

func TestReplayer_RebuildsState(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := redis_mock.NewMockClient(ctrl)
	replayer := NewReplayer(client, newTestLogger(t), "engine.ledger")

	messages := []v9.XMessage{
		{ID: "1-0", Values: toAnyMap(orderFields("sell1", "SELL", "50", "60"))},
		{ID: "2-0", Values: toAnyMap(orderFields("buy1", "BUY", "50", "100"))},
	}
	messages[0].Values["kind"] = "command"
	messages[1].Values["kind"] = "command"
	messages[1].Values["account_id"] = "acct2"

	gomock.InOrder(
		client.EXPECT().
			XRead(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, args *v9.XReadArgs) ([]v9.XStream, error) {
				assert.Equal(t, []string{"engine.ledger", "0"}, args.Streams)
				return []v9.XStream{{Stream: "engine.ledger", Messages: messages}}, nil
			}),
		client.EXPECT().
			XRead(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, args *v9.XReadArgs) ([]v9.XStream, error) {
				assert.Equal(t, []string{"engine.ledger", "2-0"}, args.Streams)
				return nil, nil
			}),
	)

	e := engine.NewEngine(newTestLogger(t))
	applied, err := replayer.Replay(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, int64(2), applied)

	// sell 60 matched against buy 100: 40 rests on the bid side.
	book, ok := e.Book("yes")
	require.True(t, ok)
	assert.Equal(t, uint64(60), book.TotalVolume())
	bids, _ := book.Depth(0)
	require.Len(t, bids, 1)
	assert.Equal(t, uint64(40), bids[0].Quantity)
}

func TestReplayer_SnapshotResetsThenCommandsApply(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := redis_mock.NewMockClient(ctrl)
	log := newTestLogger(t)
	replayer := NewReplayer(client, log, "engine.ledger")

	// Build a snapshot with one resting order.
	source := engine.NewEngine(log)
	require.NoError(t, source.Recover([]*orderbookv1.Order{{
		OrderID:      "restored",
		AccountID:    "acct1",
		OutcomeID:    "yes",
		MarketID:     1,
		Side:         orderbookv1.SideBuy,
		Type:         orderbookv1.OrderTypeLimit,
		TimeInForce:  orderbookv1.TimeInForceGTC,
		Price:        45,
		QtyRemaining: 10,
		QtyOriginal:  10,
	}}))
	state, err := json.Marshal(source.Snapshot())
	require.NoError(t, err)

	messages := []v9.XMessage{
		{ID: "1-0", Values: map[string]interface{}{"kind": "snapshot", "state": string(state)}},
		{ID: "2-0", Values: toAnyMap(orderFields("sell1", "SELL", "45", "10"))},
	}
	messages[1].Values["kind"] = "command"
	messages[1].Values["account_id"] = "acct2"

	gomock.InOrder(
		client.EXPECT().
			XRead(gomock.Any(), gomock.Any()).
			Return([]v9.XStream{{Stream: "engine.ledger", Messages: messages}}, nil),
		client.EXPECT().
			XRead(gomock.Any(), gomock.Any()).
			Return(nil, nil),
	)

	e := engine.NewEngine(log)
	applied, err := replayer.Replay(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, int64(2), applied)

	// The snapshot's bid matched the replayed sell: the book is now empty.
	book, ok := e.Book("yes")
	require.True(t, ok)
	bids, asks := book.LevelCounts()
	assert.Equal(t, 0, bids)
	assert.Equal(t, 0, asks)
	assert.Equal(t, uint64(10), book.TotalVolume())
}

func TestReplayer_CorruptEntryFailsReplay(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := redis_mock.NewMockClient(ctrl)
	replayer := NewReplayer(client, newTestLogger(t), "engine.ledger")

	client.EXPECT().
		XRead(gomock.Any(), gomock.Any()).
		Return([]v9.XStream{{Stream: "engine.ledger", Messages: []v9.XMessage{
			{ID: "1-0", Values: map[string]interface{}{"kind": "command", "type": "order.new"}},
		}}}, nil)

	e := engine.NewEngine(newTestLogger(t))
	applied, err := replayer.Replay(context.Background(), e)
	require.Error(t, err)
	assert.Equal(t, int64(0), applied)
	assert.Equal(t, errors.LedgerReplayError, errors.CodeOf(err))
}

func TestEntryTimestamp(t *testing.T) {
	ts := EntryTimestamp(v9.XMessage{
		ID:     "1700000000123-0",
		Values: map[string]interface{}{},
	})
	assert.Equal(t, int64(1700000000123), ts)

	ts = EntryTimestamp(v9.XMessage{
		ID:     "1700000000123-0",
		Values: map[string]interface{}{"timestamp": "42"},
	})
	assert.Equal(t, int64(42), ts)
}

func toAnyMap(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
