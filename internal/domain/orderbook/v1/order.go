package orderbookv1

import (
	"fmt"
	"strings"

	"github.com/chetanguptaa/kaleshi/pkg/errors"
)

// Side represents the side of an order: buy or sell.
type Side string

const (
	// SideBuy is the buy side (bids).
	SideBuy Side = "BUY"
	// SideSell is the sell side (asks).
	SideSell Side = "SELL"
)

// ParseSide parses a wire-format side string.
func ParseSide(s string) (Side, error) {
	switch strings.ToUpper(s) {
	case "BUY":
		return SideBuy, nil
	case "SELL":
		return SideSell, nil
	default:
		return "", errors.NewErrorDetails(
			fmt.Sprintf("invalid order side: '%s', must be 'BUY' or 'SELL'", s),
			string(errors.InvalidOrderSideError),
			"side",
		)
	}
}

// Opposite returns the opposing side.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// OrderType represents the type of order.
type OrderType string

const (
	// OrderTypeLimit represents a limit order that rests on the book until matched or cancelled.
	OrderTypeLimit OrderType = "LIMIT"
	// OrderTypeMarket represents a market order that matches immediately against available liquidity.
	OrderTypeMarket OrderType = "MARKET"
)

// ParseOrderType parses a wire-format order type string.
func ParseOrderType(s string) (OrderType, error) {
	switch strings.ToUpper(s) {
	case "LIMIT":
		return OrderTypeLimit, nil
	case "MARKET":
		return OrderTypeMarket, nil
	default:
		return "", errors.NewErrorDetails(
			fmt.Sprintf("invalid order type: '%s', must be 'MARKET' or 'LIMIT'", s),
			string(errors.InvalidOrderTypeError),
			"order_type",
		)
	}
}

// TimeInForce specifies how long an order remains active.
//
// Only GTC is enforced by matching. IOC and FOK are accepted and carried on
// orders and events as declared intent, pending product clarification.
type TimeInForce string

const (
	// TimeInForceGTC is good-til-cancelled.
	TimeInForceGTC TimeInForce = "GTC"
	// TimeInForceIOC is immediate-or-cancel. Declared, not enforced.
	TimeInForceIOC TimeInForce = "IOC"
	// TimeInForceFOK is fill-or-kill. Declared, not enforced.
	TimeInForceFOK TimeInForce = "FOK"
)

// ParseTimeInForce parses a wire-format time-in-force string. An empty value
// defaults to GTC.
func ParseTimeInForce(s string) (TimeInForce, error) {
	switch strings.ToUpper(s) {
	case "", "GTC":
		return TimeInForceGTC, nil
	case "IOC":
		return TimeInForceIOC, nil
	case "FOK":
		return TimeInForceFOK, nil
	default:
		return "", errors.NewValidation(fmt.Sprintf("invalid time-in-force: '%s'", s), "time_in_force")
	}
}

// OrderStatus represents the terminal status of an order after one execution.
type OrderStatus string

const (
	// OrderStatusNew means the order was accepted and rests unmatched.
	OrderStatusNew OrderStatus = "new"
	// OrderStatusPartiallyFilled means some quantity executed, some remains.
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	// OrderStatusFilled means the full quantity executed.
	OrderStatusFilled OrderStatus = "filled"
	// OrderStatusCanceled means the order was cancelled before being fully filled.
	OrderStatusCanceled OrderStatus = "canceled"
	// OrderStatusRejected means the order was rejected due to invalid input or constraints.
	OrderStatusRejected OrderStatus = "rejected"
)

const (
	// MaxPrice is the upper bound accepted for a price, in minor units.
	MaxPrice uint64 = 1_000_000_000
	// MaxQuantity is the upper bound accepted for an order quantity.
	MaxQuantity uint64 = 1_000_000_000
)

// Order is the validated in-memory representation of an order. Price and
// quantities are integer minor units; floating point never enters the book.
//
// An order is mutated in place only while resting in a price level during
// matching: QtyRemaining decreases monotonically and never goes negative.
type Order struct {
	OrderID     string      `json:"order_id"`
	AccountID   string      `json:"account_id"`
	OutcomeID   string      `json:"outcome_id"`
	OutcomeName string      `json:"outcome_name"`
	MarketID    uint32      `json:"market_id"`
	Side        Side        `json:"side"`
	Type        OrderType   `json:"order_type"`
	TimeInForce TimeInForce `json:"time_in_force"`

	// Price is 0 only for pure MARKET orders.
	Price        uint64 `json:"price"`
	QtyRemaining uint64 `json:"qty_remaining"`
	QtyOriginal  uint64 `json:"qty_original"`

	// Timestamp is the arrival time in unix milliseconds. Informational; time
	// priority inside a level is queue position, not this field.
	Timestamp int64 `json:"timestamp"`
}

// Validate checks the order fields for business rules. A failing order is
// rejected before it reaches matching.
func (o *Order) Validate() error {
	if o.OrderID == "" {
		return errors.NewValidation("order_id cannot be empty", "order_id")
	}
	if o.OutcomeID == "" {
		return errors.NewValidation("outcome_id cannot be empty", "outcome_id")
	}
	if o.AccountID == "" {
		return errors.NewValidation("account_id cannot be empty", "account_id")
	}
	if o.QtyOriginal == 0 {
		return errors.NewValidation("qty_original must be greater than 0", "qty_original")
	}
	if o.QtyRemaining == 0 {
		return errors.NewValidation("qty_remaining must be greater than 0", "qty_remaining")
	}
	if o.QtyRemaining > o.QtyOriginal {
		return errors.NewValidation(
			fmt.Sprintf("qty_remaining (%d) cannot exceed qty_original (%d)", o.QtyRemaining, o.QtyOriginal),
			"qty_remaining",
		)
	}
	if o.Type == OrderTypeLimit && o.Price == 0 {
		return errors.NewValidation("LIMIT orders must have a price greater than 0", "price")
	}
	if o.Price > MaxPrice {
		return errors.NewValidation(
			fmt.Sprintf("price %d exceeds maximum allowed price of %d", o.Price, MaxPrice),
			"price",
		)
	}
	if o.QtyOriginal > MaxQuantity {
		return errors.NewValidation(
			fmt.Sprintf("quantity %d exceeds maximum allowed quantity of %d", o.QtyOriginal, MaxQuantity),
			"qty_original",
		)
	}
	return nil
}

// IsBuy checks if the order is a buy (bid) order.
func (o *Order) IsBuy() bool {
	return o.Side == SideBuy
}

// IsFilled checks if the order has no remaining quantity.
func (o *Order) IsFilled() bool {
	return o.QtyRemaining == 0
}
