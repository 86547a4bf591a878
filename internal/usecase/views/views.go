package views

import (
	"context"
	"encoding/json"
	"time"

	orderbookv1 "github.com/chetanguptaa/kaleshi/internal/domain/orderbook/v1"
	"github.com/chetanguptaa/kaleshi/internal/usecase/engine"
	"github.com/chetanguptaa/kaleshi/internal/usecase/orderbook"
	"github.com/chetanguptaa/kaleshi/pkg/errors"
	"github.com/chetanguptaa/kaleshi/pkg/logger"
	"github.com/chetanguptaa/kaleshi/pkg/redis"
)

// DefaultDepthLevels is how many price levels per side a depth view carries.
const DefaultDepthLevels = 10

const (
	viewBookDepth  = "book.depth"
	viewMarketData = "market.data"
)

// BookDepthView is the aggregated top of one outcome's book.
type BookDepthView struct {
	Type      string                        `json:"type"`
	OutcomeID string                        `json:"outcome_id"`
	MarketID  uint32                        `json:"market_id"`
	Bids      []orderbookv1.PriceLevelDepth `json:"bids"`
	Asks      []orderbookv1.PriceLevelDepth `json:"asks"`
	Timestamp int64                         `json:"timestamp"`
}

// OutcomeView is one outcome's line in a market data view.
type OutcomeView struct {
	OutcomeID         string   `json:"outcome_id"`
	OutcomeName       string   `json:"outcome_name,omitempty"`
	FairPrice         uint64   `json:"fair_price"`
	Probability       float64  `json:"probability"`
	TotalVolume       uint64   `json:"total_volume"`
	TotalNotional     uint64   `json:"total_notional"`
	RecentTradePrices []uint64 `json:"recent_trade_prices,omitempty"`
}

// MarketDataView is the per-market projection: fair prices and implied
// probabilities across the market's outcomes.
type MarketDataView struct {
	Type      string        `json:"type"`
	MarketID  uint32        `json:"market_id"`
	Outcomes  []OutcomeView `json:"outcomes"`
	Timestamp int64         `json:"timestamp"`
}

// Emitter publishes read-model projections over pub/sub. Projections are
// best-effort: a lost view is rebuilt by the next command on the same book.
type Emitter struct {
	client      redis.Client
	logger      logger.Interface
	channel     string
	depthLevels int

	now func() int64
}

// NewEmitter creates an emitter publishing on the given channel.
func NewEmitter(client redis.Client, log logger.Interface, channel string) *Emitter {
	return &Emitter{
		client:      client,
		logger:      log,
		channel:     channel,
		depthLevels: DefaultDepthLevels,
		now:         func() int64 { return time.Now().UnixMilli() },
	}
}

// EmitBookDepth publishes the top levels of one outcome's book.
func (em *Emitter) EmitBookDepth(ctx context.Context, book *orderbook.Book) error {
	bids, asks := book.Depth(em.depthLevels)
	return em.publish(ctx, BookDepthView{
		Type:      viewBookDepth,
		OutcomeID: book.OutcomeID,
		MarketID:  book.MarketID,
		Bids:      bids,
		Asks:      asks,
		Timestamp: em.now(),
	})
}

// EmitMarketData publishes fair prices and implied probabilities for every
// outcome of a market.
func (em *Emitter) EmitMarketData(ctx context.Context, e *engine.Engine, marketID uint32) error {
	probabilities := e.MarketProbabilities(marketID)

	view := MarketDataView{
		Type:      viewMarketData,
		MarketID:  marketID,
		Timestamp: em.now(),
	}
	for _, outcomeID := range e.MarketOutcomes(marketID) {
		outcome := OutcomeView{
			OutcomeID:   outcomeID,
			Probability: probabilities[outcomeID],
		}
		if price, ok := e.FairPrice(outcomeID); ok {
			outcome.FairPrice = price
		}
		if book, ok := e.Book(outcomeID); ok {
			outcome.OutcomeName = book.OutcomeName
			outcome.TotalVolume = book.TotalVolume()
			outcome.TotalNotional = book.TotalNotional()
			outcome.RecentTradePrices = book.RecentTradePrices()
		}
		view.Outcomes = append(view.Outcomes, outcome)
	}

	return em.publish(ctx, view)
}

func (em *Emitter) publish(ctx context.Context, view interface{}) error {
	payload, err := json.Marshal(view)
	if err != nil {
		return errors.WithCode(err, errors.ViewEmissionError)
	}
	if _, err := em.client.Publish(ctx, em.channel, payload); err != nil {
		return errors.WithCode(err, errors.ViewEmissionError)
	}
	em.logger.DebugContext(ctx, "view published", logger.Field{Key: "channel", Value: em.channel})
	return nil
}
