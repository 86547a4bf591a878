package orderbookv1

// ExecutionReport is the pure output of one matching call.
type ExecutionReport struct {
	OrderID     string
	Status      OrderStatus
	TimeInForce TimeInForce

	OrigQty      uint64
	RemainingQty uint64
	ExecutedQty  uint64

	// Price is the last execution price, 0 when nothing executed.
	Price uint64

	Fills []Fill
}

// PriceLevelDepth is one aggregated price level in a depth view.
type PriceLevelDepth struct {
	Price    uint64 `json:"price"`
	Quantity uint64 `json:"quantity"`
}
