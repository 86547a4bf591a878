package orderbookv1

import (
	"fmt"

	"github.com/chetanguptaa/kaleshi/pkg/errors"
)

var (
	// ErrNilOrder is returned when a nil order is given to a level.
	ErrNilOrder = errors.NewBook("order cannot be nil")
	// ErrInvalidQuantity is returned when an order with zero remaining quantity is given to a level.
	ErrInvalidQuantity = errors.NewBook("order quantity must be positive")
	// ErrOrderNotFound is returned when an order is not present in a level.
	ErrOrderNotFound = errors.NewBook("order not found in level")
)

// Level is a FIFO queue of orders resting at one price. Ordering within a
// level is strict arrival order: the front of the queue has time priority.
//
// A level must never persist empty; the owning book deletes it the moment its
// queue empties.
type Level struct {
	Price  uint64
	orders []*Order
	total  uint64
}

// NewLevel creates an empty price level.
func NewLevel(price uint64) *Level {
	return &Level{
		Price:  price,
		orders: make([]*Order, 0),
	}
}

// Append adds an order to the back of the queue.
func (l *Level) Append(order *Order) error {
	if order == nil {
		return ErrNilOrder
	}
	if order.QtyRemaining == 0 {
		return ErrInvalidQuantity
	}
	l.orders = append(l.orders, order)
	l.total += order.QtyRemaining
	return nil
}

// Front returns the order with time priority, or nil if the level is empty.
func (l *Level) Front() *Order {
	if len(l.orders) == 0 {
		return nil
	}
	return l.orders[0]
}

// PopFront removes the front order from the queue.
func (l *Level) PopFront() {
	if len(l.orders) == 0 {
		return
	}
	l.total -= l.orders[0].QtyRemaining
	l.orders = l.orders[1:]
}

// Reduce records that the front order's remaining quantity decreased by qty
// during matching, keeping the level aggregate consistent.
func (l *Level) Reduce(qty uint64) error {
	if qty > l.total {
		return errors.NewBook(fmt.Sprintf("level reduction %d exceeds aggregate quantity %d", qty, l.total))
	}
	l.total -= qty
	return nil
}

// Remove removes the order with the given id and account from the queue.
func (l *Level) Remove(orderID, accountID string) (*Order, error) {
	for i, o := range l.orders {
		if o.OrderID == orderID && o.AccountID == accountID {
			l.total -= o.QtyRemaining
			l.orders = append(l.orders[:i], l.orders[i+1:]...)
			return o, nil
		}
	}
	return nil, ErrOrderNotFound
}

// IsEmpty checks if the level has no orders.
func (l *Level) IsEmpty() bool {
	return len(l.orders) == 0
}

// OrderCount returns the number of orders at this level.
func (l *Level) OrderCount() int {
	return len(l.orders)
}

// TotalQuantity returns the aggregate remaining quantity at this level.
func (l *Level) TotalQuantity() uint64 {
	return l.total
}

// Orders returns the queue in time-priority order. The returned slice is a
// copy; the orders it points to are live.
func (l *Level) Orders() []*Order {
	out := make([]*Order, len(l.orders))
	copy(out, l.orders)
	return out
}

// Validate checks the level invariants: positive remaining quantities and a
// consistent aggregate.
func (l *Level) Validate() error {
	var calculated uint64
	for _, o := range l.orders {
		if o == nil {
			return errors.NewBook("nil order found in level")
		}
		if o.QtyRemaining == 0 {
			return errors.NewBook(fmt.Sprintf("order %s rests with zero remaining quantity", o.OrderID))
		}
		calculated += o.QtyRemaining
	}
	if calculated != l.total {
		return errors.NewBook(fmt.Sprintf("quantity mismatch: calculated %d, stored %d", calculated, l.total))
	}
	return nil
}
