package eventv1

import (
	"testing"

	orderbookv1 "github.com/chetanguptaa/kaleshi/internal/domain/orderbook/v1"
	"github.com/stretchr/testify/assert"
)

func TestTradeID_Deterministic(t *testing.T) {
	first := TradeID("taker", "maker", "acct1")
	second := TradeID("taker", "maker", "acct1")
	assert.Equal(t, first, second)

	assert.NotEqual(t, first, TradeID("taker", "maker", "acct2"))
	assert.NotEqual(t, first, TradeID("maker", "taker", "acct1"))
}

func TestNewTradeEvent_SideMapping(t *testing.T) {
	fill := &orderbookv1.Fill{
		OutcomeID:      "yes",
		TakerOrderID:   "taker",
		TakerAccountID: "acct-t",
		MakerOrderID:   "maker",
		MakerAccountID: "acct-m",
		Price:          50,
		Quantity:       10,
		Timestamp:      99,
	}

	event := NewTradeEvent(fill, orderbookv1.SideBuy, 7)
	assert.Equal(t, TypeTrade, event.Type)
	assert.Equal(t, "taker", event.Trade.BuyOrderID)
	assert.Equal(t, "maker", event.Trade.SellOrderID)
	assert.Equal(t, uint32(7), event.Trade.MarketID)

	event = NewTradeEvent(fill, orderbookv1.SideSell, 7)
	assert.Equal(t, "maker", event.Trade.BuyOrderID)
	assert.Equal(t, "taker", event.Trade.SellOrderID)
}

func TestNewRejectedEvent_CarriesReason(t *testing.T) {
	order := &orderbookv1.Order{
		OrderID:     "o1",
		AccountID:   "acct1",
		OutcomeID:   "yes",
		QtyOriginal: 10,
	}

	event := NewRejectedEvent(order, "price exceeds maximum", 5)
	assert.Equal(t, TypeOrderRejected, event.Type)
	assert.Equal(t, "price exceeds maximum", event.Order.Reason)
	assert.Equal(t, int64(5), event.Order.Timestamp)
}
