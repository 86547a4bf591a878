package orderbookv1

// Fill records one match step between the incoming (taker) order and a
// resting (maker) order. Fills are ephemeral: they are computed, converted to
// events, and discarded.
type Fill struct {
	OutcomeID      string `json:"outcome_id"`
	TakerOrderID   string `json:"taker_order_id"`
	TakerAccountID string `json:"taker_account_id"`
	MakerOrderID   string `json:"maker_order_id"`
	MakerAccountID string `json:"maker_account_id"`

	// Price is the maker's price: price-time priority gives the resting side
	// pricing power.
	Price    uint64 `json:"price"`
	Quantity uint64 `json:"quantity"`

	Timestamp int64 `json:"timestamp"`
}

// BuyOrderID returns the order id of the buy side of this fill.
func (f *Fill) BuyOrderID(takerSide Side) string {
	if takerSide == SideBuy {
		return f.TakerOrderID
	}
	return f.MakerOrderID
}

// SellOrderID returns the order id of the sell side of this fill.
func (f *Fill) SellOrderID(takerSide Side) string {
	if takerSide == SideSell {
		return f.TakerOrderID
	}
	return f.MakerOrderID
}
