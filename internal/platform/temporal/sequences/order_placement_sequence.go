package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	ordertypes "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/application/types"
	orderactivities "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/platform/temporal/activities/orders"
)

// RunOrderPlacementSequence executes the activities needed to place an order. Rejections are
// non-retryable; storage outages are retried a few times before the workflow fails.
func RunOrderPlacementSequence(ctx workflow.Context, input ordertypes.CheckoutInput) (*ordertypes.OrderProjection, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("order placement sequence started", "orderId", input.OrderID)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    3,
			NonRetryableErrorTypes: []string{
				orderactivities.ErrTypeValidation,
				orderactivities.ErrTypeReconciliation,
				orderactivities.ErrTypeReference,
				orderactivities.ErrTypeInvalidInput,
				orderactivities.ErrTypeDuplicate,
				orderactivities.ErrTypeIdempotencyConflict,
				orderactivities.ErrTypeIdempotencyPending,
			},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var projection ordertypes.OrderProjection
	err := workflow.ExecuteActivity(ctx, orderactivities.PlaceOrderActivityName, input).Get(ctx, &projection)
	if err != nil {
		logger.Error("order placement sequence failed", "orderId", input.OrderID, "error", err)
		return nil, err
	}
	if projection.Entity != nil {
		logger.Info("order placement sequence completed", "orderId", projection.Entity.OrderID)
	} else {
		logger.Info("order placement sequence completed")
	}
	return &projection, nil
}
