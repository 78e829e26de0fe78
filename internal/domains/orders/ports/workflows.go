package ports

import (
	"context"

	ordertypes "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/application/types"
)

// WorkflowOrchestrator exposes durable workflow operations required by the orders bounded context.
type WorkflowOrchestrator interface {
	SubmitOrder(ctx context.Context, input ordertypes.CheckoutInput) (*ordertypes.OrderProjection, error)
}
