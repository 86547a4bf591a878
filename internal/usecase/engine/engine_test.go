package engine

import (
	"context"
	"testing"

	commandv1 "github.com/chetanguptaa/kaleshi/internal/domain/command/v1"
	eventv1 "github.com/chetanguptaa/kaleshi/internal/domain/event/v1"
	orderbookv1 "github.com/chetanguptaa/kaleshi/internal/domain/orderbook/v1"
	"github.com/chetanguptaa/kaleshi/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.ErrorLevel))
	require.NoError(t, err)
	return NewEngine(log)
}

func newOrderCommand(orderID, accountID, outcomeID string, side orderbookv1.Side, price, qty uint64) *commandv1.Command {
	return &commandv1.Command{
		Kind: commandv1.KindNewOrder,
		Order: &orderbookv1.Order{
			OrderID:      orderID,
			AccountID:    accountID,
			OutcomeID:    outcomeID,
			MarketID:     1,
			Side:         side,
			Type:         orderbookv1.OrderTypeLimit,
			TimeInForce:  orderbookv1.TimeInForceGTC,
			Price:        price,
			QtyRemaining: qty,
			QtyOriginal:  qty,
		},
	}
}

func cancelCommand(orderID, accountID string) *commandv1.Command {
	return &commandv1.Command{
		Kind:      commandv1.KindCancelOrder,
		OrderID:   orderID,
		AccountID: accountID,
	}
}

func TestEngine_PlaceRestingOrder(t *testing.T) {
	e := newTestEngine(t)

	events, err := e.Execute(context.Background(), newOrderCommand("o1", "a1", "yes", orderbookv1.SideBuy, 50, 100), 1)
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, eventv1.TypeOrderPlaced, events[0].Type)
	require.NotNil(t, events[0].Order)
	assert.Equal(t, "o1", events[0].Order.OrderID)
	assert.Equal(t, uint64(100), events[0].Order.QtyRemaining)
}

func TestEngine_MatchEmitsTradeThenFilled(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Execute(ctx, newOrderCommand("sell1", "a1", "yes", orderbookv1.SideSell, 50, 60), 1)
	require.NoError(t, err)

	events, err := e.Execute(ctx, newOrderCommand("buy1", "a2", "yes", orderbookv1.SideBuy, 50, 60), 2)
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, eventv1.TypeTrade, events[0].Type)
	assert.Equal(t, eventv1.TypeOrderFilled, events[1].Type)

	trade := events[0].Trade
	require.NotNil(t, trade)
	assert.Equal(t, "buy1", trade.BuyOrderID)
	assert.Equal(t, "sell1", trade.SellOrderID)
	assert.Equal(t, uint64(50), trade.Price)
	assert.Equal(t, uint64(60), trade.Quantity)

	// Trade ids are deterministic functions of the participating orders.
	assert.Equal(t, eventv1.TradeID("buy1", "sell1", "a1"), trade.TradeID)
}

func TestEngine_PartialFillScenario(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	// Buy 100 @ 50 rests; Sell 60 @ 50 takes.
	_, err := e.Execute(ctx, newOrderCommand("buy1", "a1", "yes", orderbookv1.SideBuy, 50, 100), 1)
	require.NoError(t, err)

	events, err := e.Execute(ctx, newOrderCommand("sell1", "a2", "yes", orderbookv1.SideSell, 50, 60), 2)
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, eventv1.TypeTrade, events[0].Type)
	assert.Equal(t, eventv1.TypeOrderFilled, events[1].Type)
	assert.Equal(t, uint64(60), events[0].Trade.Quantity)

	// The resting buy keeps 40 on the book.
	book, ok := e.Book("yes")
	require.True(t, ok)
	bids, _ := book.Depth(0)
	require.Len(t, bids, 1)
	assert.Equal(t, uint64(40), bids[0].Quantity)

	price, ok := e.FairPrice("yes")
	require.True(t, ok)
	assert.Equal(t, uint64(50), price)
}

func TestEngine_RejectsInvalidOrder(t *testing.T) {
	e := newTestEngine(t)

	cmd := newOrderCommand("o1", "a1", "yes", orderbookv1.SideBuy, 0, 100) // LIMIT without price
	events, err := e.Execute(context.Background(), cmd, 1)
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, eventv1.TypeOrderRejected, events[0].Type)
	assert.NotEmpty(t, events[0].Order.Reason)

	// Nothing rested.
	_, ok := e.Book("yes")
	assert.False(t, ok)
}

func TestEngine_MarketOrderNoLiquidityCancelled(t *testing.T) {
	e := newTestEngine(t)

	cmd := newOrderCommand("o1", "a1", "yes", orderbookv1.SideBuy, 0, 100)
	cmd.Order.Type = orderbookv1.OrderTypeMarket

	events, err := e.Execute(context.Background(), cmd, 1)
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, eventv1.TypeOrderCancelled, events[0].Type)
	assert.Equal(t, uint64(0), events[0].Order.QtyExecuted)
}

func TestEngine_CancelRestingOrder(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Execute(ctx, newOrderCommand("o1", "a1", "yes", orderbookv1.SideBuy, 50, 100), 1)
	require.NoError(t, err)

	events, err := e.Execute(ctx, cancelCommand("o1", "a1"), 2)
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, eventv1.TypeOrderCancelled, events[0].Type)
	assert.Equal(t, uint64(0), events[0].Order.QtyExecuted)
	assert.Equal(t, uint64(100), events[0].Order.QtyRemaining)
}

func TestEngine_CancelUnknownOrderIsNoOp(t *testing.T) {
	e := newTestEngine(t)

	events, err := e.Execute(context.Background(), cancelCommand("ghost", "a1"), 1)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEngine_CancelAfterFillIsNoOp(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Execute(ctx, newOrderCommand("sell1", "a1", "yes", orderbookv1.SideSell, 50, 60), 1)
	require.NoError(t, err)
	_, err = e.Execute(ctx, newOrderCommand("buy1", "a2", "yes", orderbookv1.SideBuy, 50, 60), 2)
	require.NoError(t, err)

	// The order filled and left the book; cancelling it does nothing.
	events, err := e.Execute(ctx, cancelCommand("sell1", "a1"), 3)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEngine_MarketProbabilities(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	// Both books empty out, so representative prices fall back to the last
	// trade: 4 for "yes", 6 for "no".
	_, err := e.Execute(ctx, newOrderCommand("s1", "a1", "yes", orderbookv1.SideSell, 4, 10), 1)
	require.NoError(t, err)
	_, err = e.Execute(ctx, newOrderCommand("b1", "a2", "yes", orderbookv1.SideBuy, 4, 10), 2)
	require.NoError(t, err)
	_, err = e.Execute(ctx, newOrderCommand("s2", "a1", "no", orderbookv1.SideSell, 6, 10), 3)
	require.NoError(t, err)
	_, err = e.Execute(ctx, newOrderCommand("b2", "a2", "no", orderbookv1.SideBuy, 6, 10), 4)
	require.NoError(t, err)

	probabilities := e.MarketProbabilities(1)
	require.Len(t, probabilities, 2)
	assert.InDelta(t, 0.4, probabilities["yes"], 1e-9)
	assert.InDelta(t, 0.6, probabilities["no"], 1e-9)
}

func TestEngine_MarketProbabilitiesFromRestingQuotes(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	// No trades anywhere: resting bids at 40 and 60 alone price the market.
	_, err := e.Execute(ctx, newOrderCommand("o1", "a1", "yes", orderbookv1.SideBuy, 40, 10), 1)
	require.NoError(t, err)
	_, err = e.Execute(ctx, newOrderCommand("o2", "a1", "no", orderbookv1.SideBuy, 60, 10), 2)
	require.NoError(t, err)

	probabilities := e.MarketProbabilities(1)
	require.Len(t, probabilities, 2)
	assert.InDelta(t, 0.4, probabilities["yes"], 1e-9)
	assert.InDelta(t, 0.6, probabilities["no"], 1e-9)
}

func TestEngine_MarketProbabilitiesNoPrices(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	// Unfilled market orders leave the books without quotes or trades.
	for i, outcomeID := range []string{"yes", "no"} {
		cmd := newOrderCommand("m"+outcomeID, "a1", outcomeID, orderbookv1.SideBuy, 0, 10)
		cmd.Order.Type = orderbookv1.OrderTypeMarket
		_, err := e.Execute(ctx, cmd, int64(i))
		require.NoError(t, err)
	}

	probabilities := e.MarketProbabilities(1)
	require.Len(t, probabilities, 2)
	assert.Equal(t, 0.0, probabilities["yes"])
	assert.Equal(t, 0.0, probabilities["no"])
}

func TestEngine_BookFailureEmitsRejected(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	resting := newOrderCommand("sell1", "a1", "yes", orderbookv1.SideSell, 50, 10)
	_, err := e.Execute(ctx, resting, 1)
	require.NoError(t, err)

	// Drain the resting order out-of-band so the match step hits a corrupt
	// level. The crossing order must be rejected, not error out.
	resting.Order.QtyRemaining = 0

	events, err := e.Execute(ctx, newOrderCommand("buy1", "a2", "yes", orderbookv1.SideBuy, 50, 10), 2)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, eventv1.TypeOrderRejected, events[0].Type)
	assert.Equal(t, "buy1", events[0].Order.OrderID)
	assert.NotEmpty(t, events[0].Order.Reason)
}

func TestEngine_RecoverRestsWithoutMatching(t *testing.T) {
	e := newTestEngine(t)

	// Crossed persisted orders must be restored as-is, never matched.
	orders := []*orderbookv1.Order{
		newOrderCommand("b1", "a1", "yes", orderbookv1.SideBuy, 55, 10).Order,
		newOrderCommand("s1", "a2", "yes", orderbookv1.SideSell, 50, 10).Order,
	}
	require.NoError(t, e.Recover(orders))

	book, ok := e.Book("yes")
	require.True(t, ok)
	bids, asks := book.LevelCounts()
	assert.Equal(t, 1, bids)
	assert.Equal(t, 1, asks)
	assert.Equal(t, uint64(0), book.TotalVolume())
}

func TestEngine_SnapshotRestoreRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	commands := []*commandv1.Command{
		newOrderCommand("b1", "a1", "yes", orderbookv1.SideBuy, 48, 20),
		newOrderCommand("b2", "a2", "yes", orderbookv1.SideBuy, 50, 30),
		newOrderCommand("s1", "a3", "yes", orderbookv1.SideSell, 50, 10),
		newOrderCommand("s2", "a4", "no", orderbookv1.SideSell, 60, 40),
	}
	for i, cmd := range commands {
		_, err := e.Execute(ctx, cmd, int64(i))
		require.NoError(t, err)
	}

	snap := e.Snapshot()

	restored := newTestEngine(t)
	require.NoError(t, restored.RestoreSnapshot(snap))

	assert.Equal(t, snap.Books, restored.Snapshot().Books)
	assert.Equal(t, e.Stats(), restored.Stats())

	price, ok := restored.FairPrice("yes")
	require.True(t, ok)
	assert.Equal(t, uint64(50), price)
}

func TestEngine_ReplaySameCommandsSameState(t *testing.T) {
	commands := []*commandv1.Command{
		newOrderCommand("b1", "a1", "yes", orderbookv1.SideBuy, 48, 20),
		newOrderCommand("s1", "a2", "yes", orderbookv1.SideSell, 48, 5),
		cancelCommand("b1", "a1"),
		newOrderCommand("s2", "a3", "yes", orderbookv1.SideSell, 52, 10),
	}

	run := func() *Engine {
		e := newTestEngine(t)
		for i, cmd := range commands {
			clone := *cmd
			if cmd.Order != nil {
				order := *cmd.Order
				clone.Order = &order
			}
			_, err := e.Execute(context.Background(), &clone, int64(i))
			require.NoError(t, err)
		}
		return e
	}

	first := run()
	second := run()
	assert.Equal(t, first.Snapshot().Books, second.Snapshot().Books)
}

func TestEngine_Stats(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.Execute(ctx, newOrderCommand("b1", "a1", "yes", orderbookv1.SideBuy, 48, 20), 1)
	require.NoError(t, err)
	_, err = e.Execute(ctx, newOrderCommand("s1", "a2", "no", orderbookv1.SideSell, 60, 10), 2)
	require.NoError(t, err)

	stats := e.Stats()
	assert.Equal(t, 2, stats.Books)
	require.Len(t, stats.Outcomes, 2)
	// Sorted by outcome id.
	assert.Equal(t, "no", stats.Outcomes[0].OutcomeID)
	assert.Equal(t, "yes", stats.Outcomes[1].OutcomeID)
	assert.Equal(t, 1, stats.Outcomes[1].BidLevels)
	assert.Equal(t, 1, stats.Outcomes[0].AskLevels)
}
