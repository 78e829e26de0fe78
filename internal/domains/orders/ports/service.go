package ports

import (
	"context"

	ordertypes "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/application/types"
)

// Service defines the order use cases exposed to adapters (inbound/driving port).
type Service interface {
	SubmitOrder(ctx context.Context, input ordertypes.CheckoutInput) (*ordertypes.OrderProjection, error)
	GetOrder(ctx context.Context, input ordertypes.GetOrderInput) (*ordertypes.OrderView, error)
	TrackOrder(ctx context.Context, input ordertypes.TrackOrderInput) (*ordertypes.OrderView, error)
	ListOrders(ctx context.Context, input ordertypes.ListOrdersInput) (*ordertypes.OrderPage, error)
	UpdateOrderStatus(ctx context.Context, input ordertypes.UpdateStatusInput) (*ordertypes.OrderProjection, error)
	UpdateOrder(ctx context.Context, input ordertypes.UpdateOrderInput) (*ordertypes.OrderProjection, error)
}
