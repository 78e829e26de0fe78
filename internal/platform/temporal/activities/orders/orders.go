package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	ordertypes "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/application/types"
	orderports "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/ports"
)

// PlaceOrderActivityName persists a checkout through the order service.
const PlaceOrderActivityName = "orders.activities.PlaceOrder"

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service orderports.Service
}

// NewActivities wires the order service into the Temporal activities bundle. The service should
// carry an idempotency store so retried attempts replay the first placement.
func NewActivities(service orderports.Service) *Activities {
	return &Activities{service: service}
}

// PlaceOrder validates, reconciles and stores a checkout. Rejections are returned as
// non-retryable application errors that keep their field details.
func (a *Activities) PlaceOrder(ctx context.Context, input ordertypes.CheckoutInput) (*ordertypes.OrderProjection, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("place order activity not initialized")
		return nil, errors.New("place order activity not initialized")
	}
	info := activity.GetInfo(ctx)
	logger.Info("PlaceOrder activity started", "orderId", input.OrderID, "attempt", info.Attempt)
	projection, err := a.service.SubmitOrder(ctx, input)
	if err != nil {
		logger.Error("PlaceOrder activity failed", "orderId", input.OrderID, "error", err)
		return nil, EncodeError(err)
	}
	logger.Info("PlaceOrder activity completed", "orderId", projection.Entity.OrderID, "id", projection.Entity.ID)
	return projection, nil
}
