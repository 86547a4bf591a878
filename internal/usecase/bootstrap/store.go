package bootstrap

import (
	"context"
	"time"

	orderbookv1 "github.com/chetanguptaa/kaleshi/internal/domain/orderbook/v1"
	orderstorev1 "github.com/chetanguptaa/kaleshi/internal/domain/orderstore/v1"
	"github.com/chetanguptaa/kaleshi/pkg/errors"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ orderstorev1.Reader = (*PostgresStore)(nil)

const openOrdersQuery = `
SELECT order_id, account_id, outcome_id, outcome_name, market_id,
       side, order_type, time_in_force, price, qty_remaining, qty_original, created_at
FROM orders
WHERE status IN ('new', 'partially_filled')
ORDER BY created_at ASC`

// PostgresStore reads persisted open orders from the order-management
// database. Used once at cold start, when the ledger has no history yet.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the order database.
func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, errors.WithCode(err, errors.BootstrapError)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.WithCode(err, errors.BootstrapError)
	}
	return &PostgresStore{pool: pool}, nil
}

// LoadOpenOrders returns every open or partially filled order in arrival
// order, so resting them reproduces the original time priority.
func (s *PostgresStore) LoadOpenOrders(ctx context.Context) ([]*orderbookv1.Order, error) {
	rows, err := s.pool.Query(ctx, openOrdersQuery)
	if err != nil {
		return nil, errors.WithCode(err, errors.BootstrapError)
	}
	defer rows.Close()

	var orders []*orderbookv1.Order
	for rows.Next() {
		var (
			order     orderbookv1.Order
			side      string
			orderType string
			tif       string
			createdAt time.Time
		)
		if err := rows.Scan(
			&order.OrderID, &order.AccountID, &order.OutcomeID, &order.OutcomeName, &order.MarketID,
			&side, &orderType, &tif, &order.Price, &order.QtyRemaining, &order.QtyOriginal, &createdAt,
		); err != nil {
			return nil, errors.WithCode(err, errors.BootstrapError)
		}

		if order.Side, err = orderbookv1.ParseSide(side); err != nil {
			return nil, errors.WithCode(err, errors.BootstrapError)
		}
		if order.Type, err = orderbookv1.ParseOrderType(orderType); err != nil {
			return nil, errors.WithCode(err, errors.BootstrapError)
		}
		if order.TimeInForce, err = orderbookv1.ParseTimeInForce(tif); err != nil {
			return nil, errors.WithCode(err, errors.BootstrapError)
		}
		order.Timestamp = createdAt.UnixMilli()

		orders = append(orders, &order)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WithCode(err, errors.BootstrapError)
	}
	return orders, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}
