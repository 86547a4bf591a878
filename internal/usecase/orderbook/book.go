package orderbook

import (
	"sort"
	"sync"

	orderbookv1 "github.com/chetanguptaa/kaleshi/internal/domain/orderbook/v1"
	snapshotv1 "github.com/chetanguptaa/kaleshi/internal/domain/snapshot/v1"
	"github.com/chetanguptaa/kaleshi/pkg/errors"
)

// tradePriceHistory bounds the per-book price history carried into views and
// snapshots.
const tradePriceHistory = 100

// Book is the order book for a single outcome. Matching is price-time
// priority: best price first, FIFO within a price, executions at the maker's
// price.
type Book struct {
	mu sync.RWMutex

	OutcomeID   string
	OutcomeName string
	MarketID    uint32

	bids map[uint64]*orderbookv1.Level // price -> level
	asks map[uint64]*orderbookv1.Level // price -> level

	lastTradePrice uint64
	tradePrices    []uint64
	totalVolume    uint64
	totalNotional  uint64
}

// NewBook creates an empty book for one outcome.
func NewBook(outcomeID, outcomeName string, marketID uint32) *Book {
	return &Book{
		OutcomeID:   outcomeID,
		OutcomeName: outcomeName,
		MarketID:    marketID,
		bids:        make(map[uint64]*orderbookv1.Level),
		asks:        make(map[uint64]*orderbookv1.Level),
	}
}

// Execute runs one already-validated order through the book: it matches
// against the opposite side as far as prices cross, then rests any remainder
// if the order is a limit order. Market order remainders are discarded.
func (b *Book) Execute(order *orderbookv1.Order, now int64) (*orderbookv1.ExecutionReport, error) {
	if order == nil {
		return nil, orderbookv1.ErrNilOrder
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	order.Timestamp = now

	fills, err := b.match(order, now)
	if err != nil {
		return nil, err
	}

	var executed uint64
	var lastPrice uint64
	for i := range fills {
		executed += fills[i].Quantity
		lastPrice = fills[i].Price
	}

	report := &orderbookv1.ExecutionReport{
		OrderID:      order.OrderID,
		TimeInForce:  order.TimeInForce,
		OrigQty:      order.QtyOriginal,
		RemainingQty: order.QtyRemaining,
		ExecutedQty:  executed,
		Price:        lastPrice,
		Fills:        fills,
	}

	switch {
	case order.QtyRemaining == 0:
		report.Status = orderbookv1.OrderStatusFilled
	case order.Type == orderbookv1.OrderTypeLimit:
		if err := b.rest(order); err != nil {
			return nil, err
		}
		if executed == 0 {
			report.Status = orderbookv1.OrderStatusNew
		} else {
			report.Status = orderbookv1.OrderStatusPartiallyFilled
		}
	default:
		// Market order with liquidity exhausted: the remainder is discarded,
		// never rested.
		if executed == 0 {
			report.Status = orderbookv1.OrderStatusCanceled
		} else {
			report.Status = orderbookv1.OrderStatusPartiallyFilled
		}
	}

	return report, nil
}

// match consumes opposite-side liquidity while prices cross. The taker order's
// QtyRemaining is decremented in place.
func (b *Book) match(taker *orderbookv1.Order, now int64) ([]orderbookv1.Fill, error) {
	var fills []orderbookv1.Fill

	for taker.QtyRemaining > 0 {
		level := b.bestOpposite(taker)
		if level == nil {
			break
		}

		maker := level.Front()
		if maker == nil {
			return fills, errors.NewBook("non-empty level has no front order")
		}

		qty := taker.QtyRemaining
		if maker.QtyRemaining < qty {
			qty = maker.QtyRemaining
		}
		if qty == 0 {
			// A resting order with zero quantity is a book corruption; abort
			// rather than loop forever.
			return fills, errors.NewBook("matched quantity is zero")
		}

		if err := level.Reduce(qty); err != nil {
			return fills, err
		}
		maker.QtyRemaining -= qty
		taker.QtyRemaining -= qty

		fills = append(fills, orderbookv1.Fill{
			OutcomeID:      b.OutcomeID,
			TakerOrderID:   taker.OrderID,
			TakerAccountID: taker.AccountID,
			MakerOrderID:   maker.OrderID,
			MakerAccountID: maker.AccountID,
			Price:          level.Price,
			Quantity:       qty,
			Timestamp:      now,
		})

		b.lastTradePrice = level.Price
		b.recordTradePrice(level.Price)
		b.totalVolume += qty
		b.totalNotional += qty * level.Price

		if maker.IsFilled() {
			level.PopFront()
		}
		if level.IsEmpty() {
			b.deleteLevel(taker.Side.Opposite(), level.Price)
		}
	}

	return fills, nil
}

// bestOpposite returns the best crossing opposite level, or nil when nothing
// crosses. Market orders cross every price.
func (b *Book) bestOpposite(taker *orderbookv1.Order) *orderbookv1.Level {
	market := taker.Type == orderbookv1.OrderTypeMarket

	if taker.IsBuy() {
		var best *orderbookv1.Level
		for _, level := range b.asks {
			if best == nil || level.Price < best.Price {
				best = level
			}
		}
		if best == nil || (!market && best.Price > taker.Price) {
			return nil
		}
		return best
	}

	var best *orderbookv1.Level
	for _, level := range b.bids {
		if best == nil || level.Price > best.Price {
			best = level
		}
	}
	if best == nil || (!market && best.Price < taker.Price) {
		return nil
	}
	return best
}

// Rest places an order directly onto the book without matching. Used when
// restoring persisted open orders; live flow always goes through Execute.
func (b *Book) Rest(order *orderbookv1.Order) error {
	if order == nil {
		return orderbookv1.ErrNilOrder
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rest(order)
}

func (b *Book) rest(order *orderbookv1.Order) error {
	levels := b.asks
	if order.IsBuy() {
		levels = b.bids
	}

	level, exists := levels[order.Price]
	if !exists {
		level = orderbookv1.NewLevel(order.Price)
		levels[order.Price] = level
	}
	return level.Append(order)
}

func (b *Book) deleteLevel(side orderbookv1.Side, price uint64) {
	if side == orderbookv1.SideBuy {
		delete(b.bids, price)
		return
	}
	delete(b.asks, price)
}

// FindAndRemove cancels the resting order with the given id and account.
// It returns the removed order, or nil when no such order rests on the book.
func (b *Book) FindAndRemove(orderID, accountID string) *orderbookv1.Order {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, levels := range []map[uint64]*orderbookv1.Level{b.bids, b.asks} {
		for price, level := range levels {
			order, err := level.Remove(orderID, accountID)
			if err != nil {
				continue
			}
			if level.IsEmpty() {
				delete(levels, price)
			}
			return order
		}
	}
	return nil
}

// BestBid returns the highest bid price, false when the bid side is empty.
func (b *Book) BestBid() (uint64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return bestPrice(b.bids, func(a, c uint64) bool { return a > c })
}

// BestAsk returns the lowest ask price, false when the ask side is empty.
func (b *Book) BestAsk() (uint64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return bestPrice(b.asks, func(a, c uint64) bool { return a < c })
}

func bestPrice(levels map[uint64]*orderbookv1.Level, better func(a, c uint64) bool) (uint64, bool) {
	var best uint64
	found := false
	for price := range levels {
		if !found || better(price, best) {
			best = price
			found = true
		}
	}
	return best, found
}

// RepresentativePrice returns the book's representative price: the bid/ask
// midpoint when both sides are populated, the populated side's best price when
// only one is, the last trade price otherwise. false means no price exists.
func (b *Book) RepresentativePrice() (uint64, bool) {
	bid, hasBid := b.BestBid()
	ask, hasAsk := b.BestAsk()

	switch {
	case hasBid && hasAsk:
		return (bid + ask) / 2, true
	case hasBid:
		return bid, true
	case hasAsk:
		return ask, true
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.lastTradePrice > 0 {
		return b.lastTradePrice, true
	}
	return 0, false
}

// Depth returns the aggregated top levels of each side, bids best-first
// (descending), asks ascending. maxLevels <= 0 returns every level.
func (b *Book) Depth(maxLevels int) (bids, asks []orderbookv1.PriceLevelDepth) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	bids = depthSide(b.bids, maxLevels, true)
	asks = depthSide(b.asks, maxLevels, false)
	return bids, asks
}

func depthSide(levels map[uint64]*orderbookv1.Level, maxLevels int, descending bool) []orderbookv1.PriceLevelDepth {
	out := make([]orderbookv1.PriceLevelDepth, 0, len(levels))
	for _, level := range levels {
		out = append(out, orderbookv1.PriceLevelDepth{
			Price:    level.Price,
			Quantity: level.TotalQuantity(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if descending {
			return out[i].Price > out[j].Price
		}
		return out[i].Price < out[j].Price
	})
	if maxLevels > 0 && len(out) > maxLevels {
		out = out[:maxLevels]
	}
	return out
}

// LevelCounts returns the number of populated price levels per side.
func (b *Book) LevelCounts() (bidLevels, askLevels int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.bids), len(b.asks)
}

func (b *Book) recordTradePrice(price uint64) {
	b.tradePrices = append(b.tradePrices, price)
	if len(b.tradePrices) > tradePriceHistory {
		b.tradePrices = b.tradePrices[len(b.tradePrices)-tradePriceHistory:]
	}
}

// RecentTradePrices returns the newest execution prices, oldest first.
func (b *Book) RecentTradePrices() []uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]uint64, len(b.tradePrices))
	copy(out, b.tradePrices)
	return out
}

// LastTradePrice returns the price of the most recent execution, 0 if none.
func (b *Book) LastTradePrice() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastTradePrice
}

// TotalVolume returns the cumulative executed quantity.
func (b *Book) TotalVolume() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.totalVolume
}

// TotalNotional returns the cumulative executed quantity times price.
func (b *Book) TotalNotional() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.totalNotional
}

// Snapshot captures the full book state.
func (b *Book) Snapshot() snapshotv1.BookSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return snapshotv1.BookSnapshot{
		OutcomeID:      b.OutcomeID,
		OutcomeName:    b.OutcomeName,
		MarketID:       b.MarketID,
		Bids:           snapshotSide(b.bids, true),
		Asks:           snapshotSide(b.asks, false),
		LastTradePrice: b.lastTradePrice,
		TradePrices:    append([]uint64(nil), b.tradePrices...),
		TotalVolume:    b.totalVolume,
		TotalNotional:  b.totalNotional,
	}
}

func snapshotSide(levels map[uint64]*orderbookv1.Level, descending bool) []snapshotv1.LevelSnapshot {
	out := make([]snapshotv1.LevelSnapshot, 0, len(levels))
	for _, level := range levels {
		out = append(out, snapshotv1.LevelSnapshot{
			Price:  level.Price,
			Orders: level.Orders(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if descending {
			return out[i].Price > out[j].Price
		}
		return out[i].Price < out[j].Price
	})
	return out
}

// RestoreBook rebuilds a book from a snapshot.
func RestoreBook(snap *snapshotv1.BookSnapshot) (*Book, error) {
	if snap == nil {
		return nil, errors.NewBook("snapshot cannot be nil")
	}

	book := NewBook(snap.OutcomeID, snap.OutcomeName, snap.MarketID)
	book.lastTradePrice = snap.LastTradePrice
	book.tradePrices = append([]uint64(nil), snap.TradePrices...)
	book.totalVolume = snap.TotalVolume
	book.totalNotional = snap.TotalNotional

	for _, side := range [][]snapshotv1.LevelSnapshot{snap.Bids, snap.Asks} {
		for _, levelSnap := range side {
			for _, order := range levelSnap.Orders {
				if err := book.rest(order); err != nil {
					return nil, err
				}
			}
		}
	}
	return book, nil
}
