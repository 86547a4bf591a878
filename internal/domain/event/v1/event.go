package eventv1

import (
	orderbookv1 "github.com/chetanguptaa/kaleshi/internal/domain/orderbook/v1"
	"github.com/google/uuid"
)

// Type is the closed set of business event variants the engine emits.
type Type string

const (
	// TypeOrderPlaced is emitted when an order rests on the book unmatched.
	TypeOrderPlaced Type = "order.placed"
	// TypeOrderPartial is emitted when an order executed partially and rests.
	TypeOrderPartial Type = "order.partially_filled"
	// TypeOrderFilled is emitted when an order fully executed.
	TypeOrderFilled Type = "order.filled"
	// TypeOrderCancelled is emitted when an order leaves the book unfilled,
	// either by explicit cancel or as an unfilled market order.
	TypeOrderCancelled Type = "order.cancelled"
	// TypeOrderRejected is emitted when an order fails validation.
	TypeOrderRejected Type = "order.rejected"
	// TypeTrade is emitted once per fill.
	TypeTrade Type = "trade"
)

// Event is one business event produced by executing a command. Exactly one of
// the payload pointers is set, matching Type.
type Event struct {
	Type Type `json:"type"`

	Order *OrderEvent `json:"order,omitempty"`
	Trade *TradeEvent `json:"trade,omitempty"`
}

// OrderEvent is the payload for order lifecycle events.
type OrderEvent struct {
	OrderID     string                  `json:"order_id"`
	AccountID   string                  `json:"account_id"`
	OutcomeID   string                  `json:"outcome_id"`
	MarketID    uint32                  `json:"market_id"`
	Side        orderbookv1.Side        `json:"side"`
	OrderType   orderbookv1.OrderType   `json:"order_type"`
	TimeInForce orderbookv1.TimeInForce `json:"time_in_force"`

	Price        uint64 `json:"price"`
	QtyOriginal  uint64 `json:"qty_original"`
	QtyRemaining uint64 `json:"qty_remaining"`
	QtyExecuted  uint64 `json:"qty_executed"`

	// Reason is set only on order.rejected.
	Reason string `json:"reason,omitempty"`

	Timestamp int64 `json:"timestamp"`
}

// TradeEvent is the payload for trade events. One fill produces one trade.
type TradeEvent struct {
	TradeID   string `json:"trade_id"`
	OutcomeID string `json:"outcome_id"`
	MarketID  uint32 `json:"market_id"`

	BuyOrderID  string `json:"buy_order_id"`
	SellOrderID string `json:"sell_order_id"`

	TakerOrderID   string `json:"taker_order_id"`
	TakerAccountID string `json:"taker_account_id"`
	MakerOrderID   string `json:"maker_order_id"`
	MakerAccountID string `json:"maker_account_id"`

	TakerSide orderbookv1.Side `json:"taker_side"`

	Price    uint64 `json:"price"`
	Quantity uint64 `json:"quantity"`

	Timestamp int64 `json:"timestamp"`
}

// TradeID derives a deterministic trade id from the participating order ids.
// The same fill always yields the same id, across redeliveries and replays.
func TradeID(takerOrderID, makerOrderID, makerAccountID string) string {
	name := takerOrderID + "-" + makerOrderID + "-" + makerAccountID
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// NewOrderEvent builds an order lifecycle event from an order and its
// execution outcome.
func NewOrderEvent(eventType Type, order *orderbookv1.Order, executed uint64, timestamp int64) Event {
	return Event{
		Type: eventType,
		Order: &OrderEvent{
			OrderID:      order.OrderID,
			AccountID:    order.AccountID,
			OutcomeID:    order.OutcomeID,
			MarketID:     order.MarketID,
			Side:         order.Side,
			OrderType:    order.Type,
			TimeInForce:  order.TimeInForce,
			Price:        order.Price,
			QtyOriginal:  order.QtyOriginal,
			QtyRemaining: order.QtyRemaining,
			QtyExecuted:  executed,
			Timestamp:    timestamp,
		},
	}
}

// NewRejectedEvent builds an order.rejected event carrying the reason.
func NewRejectedEvent(order *orderbookv1.Order, reason string, timestamp int64) Event {
	event := NewOrderEvent(TypeOrderRejected, order, 0, timestamp)
	event.Order.Reason = reason
	return event
}

// NewTradeEvent builds a trade event from a fill.
func NewTradeEvent(fill *orderbookv1.Fill, takerSide orderbookv1.Side, marketID uint32) Event {
	return Event{
		Type: TypeTrade,
		Trade: &TradeEvent{
			TradeID:        TradeID(fill.TakerOrderID, fill.MakerOrderID, fill.MakerAccountID),
			OutcomeID:      fill.OutcomeID,
			MarketID:       marketID,
			BuyOrderID:     fill.BuyOrderID(takerSide),
			SellOrderID:    fill.SellOrderID(takerSide),
			TakerOrderID:   fill.TakerOrderID,
			TakerAccountID: fill.TakerAccountID,
			MakerOrderID:   fill.MakerOrderID,
			MakerAccountID: fill.MakerAccountID,
			TakerSide:      takerSide,
			Price:          fill.Price,
			Quantity:       fill.Quantity,
			Timestamp:      fill.Timestamp,
		},
	}
}
