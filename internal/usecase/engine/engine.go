package engine

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	commandv1 "github.com/chetanguptaa/kaleshi/internal/domain/command/v1"
	eventv1 "github.com/chetanguptaa/kaleshi/internal/domain/event/v1"
	orderbookv1 "github.com/chetanguptaa/kaleshi/internal/domain/orderbook/v1"
	snapshotv1 "github.com/chetanguptaa/kaleshi/internal/domain/snapshot/v1"
	"github.com/chetanguptaa/kaleshi/internal/usecase/orderbook"
	"github.com/chetanguptaa/kaleshi/pkg/errors"
	"github.com/chetanguptaa/kaleshi/pkg/logger"
	"github.com/chetanguptaa/kaleshi/pkg/redis"
)

// FairPriceKeyPrefix prefixes the cached fair price key per outcome.
const FairPriceKeyPrefix = "fair_price:"

// Engine owns one book per outcome and turns validated commands into business
// events. Commands are applied under a single lock, so execution order is the
// ledger order.
type Engine struct {
	mu     sync.RWMutex
	logger logger.Interface

	books map[string]*orderbook.Book // outcomeID -> book

	cache     redis.Client
	replaying bool
}

// Option configures the engine.
type Option func(*Engine)

// WithFairPriceCache makes the engine publish each outcome's fair price to
// the cache after every trade.
func WithFairPriceCache(cache redis.Client) Option {
	return func(e *Engine) {
		e.cache = cache
	}
}

// NewEngine creates an empty engine.
func NewEngine(log logger.Interface, opts ...Option) *Engine {
	e := &Engine{
		logger: log,
		books:  make(map[string]*orderbook.Book),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartReplay suppresses side effects (fair price cache writes) while the
// ledger is re-applied.
func (e *Engine) StartReplay() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.replaying = true
}

// FinishReplay re-enables side effects.
func (e *Engine) FinishReplay() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.replaying = false
}

// Execute applies one command and returns the business events it produced.
// Rejections are events, not errors; an error return means the book itself
// failed and the command must not be acknowledged as applied.
func (e *Engine) Execute(ctx context.Context, cmd *commandv1.Command, now int64) ([]eventv1.Event, error) {
	if cmd == nil {
		return nil, errors.NewErrorDetails("command cannot be nil", string(errors.UnknownCommandError), "command")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	switch cmd.Kind {
	case commandv1.KindNewOrder:
		return e.executeOrder(ctx, cmd.Order, now)
	case commandv1.KindCancelOrder:
		return e.executeCancel(cmd.OrderID, cmd.AccountID, now), nil
	default:
		return nil, errors.NewErrorDetails(
			"unknown command kind: "+string(cmd.Kind),
			string(errors.UnknownCommandError),
			"kind",
		)
	}
}

func (e *Engine) executeOrder(ctx context.Context, order *orderbookv1.Order, now int64) ([]eventv1.Event, error) {
	if err := order.Validate(); err != nil {
		e.logger.InfoContext(ctx, "order rejected",
			logger.Field{Key: "order_id", Value: order.OrderID},
			logger.Field{Key: "reason", Value: err.Error()},
		)
		return []eventv1.Event{eventv1.NewRejectedEvent(order, err.Error(), now)}, nil
	}

	book, exists := e.books[order.OutcomeID]
	if !exists {
		book = orderbook.NewBook(order.OutcomeID, order.OutcomeName, order.MarketID)
		e.books[order.OutcomeID] = book
	}

	report, err := book.Execute(order, now)
	if err != nil {
		// A matching failure is a terminal outcome for the order, not a reason
		// to stall the stream: reject it and keep consuming.
		e.logger.ErrorContext(ctx, errors.WithCode(err, errors.OrderExecutionError),
			logger.Field{Key: "order_id", Value: order.OrderID},
		)
		return []eventv1.Event{eventv1.NewRejectedEvent(order, err.Error(), now)}, nil
	}

	events := make([]eventv1.Event, 0, len(report.Fills)+1)
	for i := range report.Fills {
		events = append(events, eventv1.NewTradeEvent(&report.Fills[i], order.Side, order.MarketID))
	}

	switch report.Status {
	case orderbookv1.OrderStatusFilled:
		events = append(events, eventv1.NewOrderEvent(eventv1.TypeOrderFilled, order, report.ExecutedQty, now))
	case orderbookv1.OrderStatusPartiallyFilled:
		events = append(events, eventv1.NewOrderEvent(eventv1.TypeOrderPartial, order, report.ExecutedQty, now))
	case orderbookv1.OrderStatusNew:
		events = append(events, eventv1.NewOrderEvent(eventv1.TypeOrderPlaced, order, 0, now))
	case orderbookv1.OrderStatusCanceled:
		events = append(events, eventv1.NewOrderEvent(eventv1.TypeOrderCancelled, order, report.ExecutedQty, now))
	}

	if len(report.Fills) > 0 {
		e.publishFairPrice(ctx, order.OutcomeID, report.Fills[len(report.Fills)-1].Price)
	}

	return events, nil
}

// executeCancel removes a resting order. Cancelling an unknown order is a
// benign no-op: the order may have been filled in the meantime.
func (e *Engine) executeCancel(orderID, accountID string, now int64) []eventv1.Event {
	for _, book := range e.books {
		order := book.FindAndRemove(orderID, accountID)
		if order == nil {
			continue
		}
		executed := order.QtyOriginal - order.QtyRemaining
		return []eventv1.Event{eventv1.NewOrderEvent(eventv1.TypeOrderCancelled, order, executed, now)}
	}

	e.logger.Debug("cancel for unknown order", logger.Field{Key: "order_id", Value: orderID})
	return nil
}

// publishFairPrice caches the outcome's latest trade price. Cache failures are
// logged but never fail command execution.
func (e *Engine) publishFairPrice(ctx context.Context, outcomeID string, price uint64) {
	if e.replaying || e.cache == nil {
		return
	}
	key := FairPriceKeyPrefix + outcomeID
	if err := e.cache.Set(ctx, key, strconv.FormatUint(price, 10), 0); err != nil {
		e.logger.ErrorContext(ctx, err, logger.Field{Key: "key", Value: key})
	}
}

// Book returns the book for an outcome.
func (e *Engine) Book(outcomeID string) (*orderbook.Book, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	book, exists := e.books[outcomeID]
	return book, exists
}

// Books returns every book, sorted by outcome id for deterministic iteration.
func (e *Engine) Books() []*orderbook.Book {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sortedBooks()
}

func (e *Engine) sortedBooks() []*orderbook.Book {
	books := make([]*orderbook.Book, 0, len(e.books))
	for _, book := range e.books {
		books = append(books, book)
	}
	sort.Slice(books, func(i, j int) bool {
		return books[i].OutcomeID < books[j].OutcomeID
	})
	return books
}

// MarketOutcomes returns the outcome ids seen for a market, sorted.
func (e *Engine) MarketOutcomes(marketID uint32) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var outcomes []string
	for id, book := range e.books {
		if book.MarketID == marketID {
			outcomes = append(outcomes, id)
		}
	}
	sort.Strings(outcomes)
	return outcomes
}

// MarketProbabilities normalizes each outcome's representative price into an
// implied probability. Resting quotes alone are enough to price an outcome;
// all zero when no outcome in the market has a representative price.
func (e *Engine) MarketProbabilities(marketID uint32) map[string]float64 {
	e.mu.RLock()
	books := make([]*orderbook.Book, 0, len(e.books))
	for _, book := range e.books {
		if book.MarketID == marketID {
			books = append(books, book)
		}
	}
	e.mu.RUnlock()

	prices := make(map[string]uint64, len(books))
	var total uint64
	for _, book := range books {
		if price, ok := book.RepresentativePrice(); ok {
			prices[book.OutcomeID] = price
			total += price
		}
	}

	probabilities := make(map[string]float64, len(books))
	for _, book := range books {
		if total == 0 {
			probabilities[book.OutcomeID] = 0
			continue
		}
		probabilities[book.OutcomeID] = float64(prices[book.OutcomeID]) / float64(total)
	}
	return probabilities
}

// FairPrice returns the last trade price for an outcome, false if it has
// never traded.
func (e *Engine) FairPrice(outcomeID string) (uint64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	book, exists := e.books[outcomeID]
	if !exists {
		return 0, false
	}
	price := book.LastTradePrice()
	return price, price > 0
}

// Recover rests persisted open orders directly onto their books, without
// matching. Used for cold-start bootstrap when the ledger is empty.
func (e *Engine) Recover(orders []*orderbookv1.Order) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, order := range orders {
		if err := order.Validate(); err != nil {
			return err
		}
		book, exists := e.books[order.OutcomeID]
		if !exists {
			book = orderbook.NewBook(order.OutcomeID, order.OutcomeName, order.MarketID)
			e.books[order.OutcomeID] = book
		}
		if err := book.Rest(order); err != nil {
			return errors.WithCode(err, errors.BootstrapError)
		}
	}
	return nil
}

// OutcomeStats summarizes one outcome's book.
type OutcomeStats struct {
	OutcomeID      string `json:"outcome_id"`
	MarketID       uint32 `json:"market_id"`
	BidLevels      int    `json:"bid_levels"`
	AskLevels      int    `json:"ask_levels"`
	LastTradePrice uint64 `json:"last_trade_price"`
	TotalVolume    uint64 `json:"total_volume"`
}

// Stats summarizes the engine state.
type Stats struct {
	Books    int            `json:"books"`
	Outcomes []OutcomeStats `json:"outcomes"`
}

// Stats returns a point-in-time summary of every book.
func (e *Engine) Stats() Stats {
	books := e.Books()

	stats := Stats{Books: len(books), Outcomes: make([]OutcomeStats, 0, len(books))}
	for _, book := range books {
		bids, asks := book.LevelCounts()
		stats.Outcomes = append(stats.Outcomes, OutcomeStats{
			OutcomeID:      book.OutcomeID,
			MarketID:       book.MarketID,
			BidLevels:      bids,
			AskLevels:      asks,
			LastTradePrice: book.LastTradePrice(),
			TotalVolume:    book.TotalVolume(),
		})
	}
	return stats
}

// Snapshot captures the full engine state, books sorted by outcome id.
func (e *Engine) Snapshot() *snapshotv1.EngineSnapshot {
	books := e.Books()

	snap := &snapshotv1.EngineSnapshot{
		Timestamp: time.Now().UnixMilli(),
		Books:     make([]snapshotv1.BookSnapshot, 0, len(books)),
	}
	for _, book := range books {
		snap.Books = append(snap.Books, book.Snapshot())
	}
	return snap
}

// RestoreSnapshot replaces the engine state with a snapshot's.
func (e *Engine) RestoreSnapshot(snap *snapshotv1.EngineSnapshot) error {
	if snap == nil {
		return errors.NewErrorDetails("snapshot cannot be nil", string(errors.SnapshotError), "snapshot")
	}

	books := make(map[string]*orderbook.Book, len(snap.Books))
	for i := range snap.Books {
		book, err := orderbook.RestoreBook(&snap.Books[i])
		if err != nil {
			return errors.WithCode(err, errors.SnapshotError)
		}
		books[book.OutcomeID] = book
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.books = books
	return nil
}
