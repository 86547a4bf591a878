package snapshotv1

import (
	orderbookv1 "github.com/chetanguptaa/kaleshi/internal/domain/orderbook/v1"
)

// LevelSnapshot captures one price level with its resting orders in
// time-priority order.
type LevelSnapshot struct {
	Price  uint64               `json:"price"`
	Orders []*orderbookv1.Order `json:"orders"`
}

// BookSnapshot captures the full state of one outcome's book.
type BookSnapshot struct {
	OutcomeID   string `json:"outcome_id"`
	OutcomeName string `json:"outcome_name"`
	MarketID    uint32 `json:"market_id"`

	// Bids are sorted best-first (descending price), asks ascending.
	Bids []LevelSnapshot `json:"bids"`
	Asks []LevelSnapshot `json:"asks"`

	LastTradePrice uint64   `json:"last_trade_price"`
	TradePrices    []uint64 `json:"trade_prices,omitempty"`
	TotalVolume    uint64   `json:"total_volume"`
	TotalNotional  uint64   `json:"total_notional"`
}

// EngineSnapshot captures the full engine state at a point in the command
// log. Restoring it and re-applying subsequent commands reproduces the live
// state exactly.
type EngineSnapshot struct {
	Timestamp int64          `json:"timestamp"`
	Books     []BookSnapshot `json:"books"`
}
