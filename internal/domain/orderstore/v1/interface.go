package orderstorev1

import (
	"context"

	orderbookv1 "github.com/chetanguptaa/kaleshi/internal/domain/orderbook/v1"
)

// Reader loads persisted open orders for cold-start bootstrap.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=orderstorev1_mock
type Reader interface {
	LoadOpenOrders(ctx context.Context) ([]*orderbookv1.Order, error)
}
