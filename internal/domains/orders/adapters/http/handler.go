// Package http exposes the orders use cases over gin.
package http

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/adapters/http/mapper"
	orderapp "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/application"
	ordertypes "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/application/types"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/domain"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/ports"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/platform/auth"
	apierrors "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/shared/errors"
)

// HeaderIdempotencyKey lets clients retry a checkout without placing a second order.
const HeaderIdempotencyKey = "Idempotency-Key"

// OrderAPI wires HTTP transport with the orders bounded context service and workflows.
type OrderAPI struct {
	service   ports.Service
	workflows ports.WorkflowOrchestrator
	responder *apierrors.ChainedResponder
}

// NewOrderAPI creates an OrderAPI. A nil workflow orchestrator submits checkouts directly.
func NewOrderAPI(service ports.Service, workflows ports.WorkflowOrchestrator) *OrderAPI {
	return &OrderAPI{
		service:   service,
		workflows: workflows,
		responder: apierrors.NewChainedResponder(MapError),
	}
}

// RegisterRoutes mounts the order endpoints. Management routes require the ADMIN role.
func (api *OrderAPI) RegisterRoutes(router gin.IRouter) {
	orders := router.Group("/api/orders")
	orders.POST("", api.SubmitOrder)
	orders.GET("/track/:orderId", api.TrackOrder)

	admin := orders.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.GET("", api.ListOrders)
	admin.PATCH("/status", api.UpdateOrderStatus)
	admin.GET("/:id", api.GetOrder)
	admin.PUT("/:id", api.UpdateOrder)
}

// Post /api/orders
// Place an order from a checkout submission
func (api *OrderAPI) SubmitOrder(c *gin.Context) {
	var payload mapper.CheckoutRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		apierrors.Respond(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	input := mapper.ToCheckoutInput(payload, c.GetHeader(HeaderIdempotencyKey))
	saved, err := api.submitOrder(c.Request.Context(), input)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.Header("Location", "/api/orders/"+saved.Entity.ID)
	c.JSON(nethttp.StatusCreated, mapper.FromProjection(saved))
}

func (api *OrderAPI) submitOrder(ctx context.Context, input ordertypes.CheckoutInput) (*ordertypes.OrderProjection, error) {
	if api.workflows != nil {
		return api.workflows.SubmitOrder(ctx, input)
	}
	return api.service.SubmitOrder(ctx, input)
}

// Get /api/orders
// List orders with filters, search, sorting and pagination
func (api *OrderAPI) ListOrders(c *gin.Context) {
	var params struct {
		Page      *int
		Limit     *int
		SortBy    *string
		SortOrder *string
	}
	query := c.Request.URL.Query()
	for name, dest := range map[string]any{
		"page":      &params.Page,
		"limit":     &params.Limit,
		"sortBy":    &params.SortBy,
		"sortOrder": &params.SortOrder,
	} {
		if err := runtime.BindQueryParameter("form", true, false, name, query, dest); err != nil {
			apierrors.Respond(c, apierrors.NewFieldProblem(name, "has an invalid format"))
			return
		}
	}
	input := ordertypes.ListOrdersInput{
		Page:      deref(params.Page),
		Limit:     deref(params.Limit),
		SortBy:    deref(params.SortBy),
		SortOrder: deref(params.SortOrder),
		Filters:   c.QueryMap("filter"),
		Search:    c.QueryMap("search"),
	}
	page, err := api.service.ListOrders(c.Request.Context(), input)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, mapper.FromPage(page))
}

// Get /api/orders/:id
// Find an order by internal id
func (api *OrderAPI) GetOrder(c *gin.Context) {
	var populate *bool
	if err := runtime.BindQueryParameter("form", true, false, "populate", c.Request.URL.Query(), &populate); err != nil {
		apierrors.Respond(c, apierrors.NewFieldProblem("populate", "must be true or false"))
		return
	}
	view, err := api.service.GetOrder(c.Request.Context(), ordertypes.GetOrderInput{
		ID:       c.Param("id"),
		Populate: deref(populate),
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, mapper.FromView(view))
}

// Get /api/orders/track/:orderId
// Track an order by its human identifier
func (api *OrderAPI) TrackOrder(c *gin.Context) {
	view, err := api.service.TrackOrder(c.Request.Context(), ordertypes.TrackOrderInput{OrderID: c.Param("orderId")})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, mapper.FromView(view))
}

// Put /api/orders/:id
// Update the contact details and payment method of an order
func (api *OrderAPI) UpdateOrder(c *gin.Context) {
	var payload mapper.UpdateOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		apierrors.Respond(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	updated, err := api.service.UpdateOrder(c.Request.Context(), mapper.ToUpdateOrderInput(c.Param("id"), payload))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, mapper.FromProjection(updated))
}

// Patch /api/orders/status
// Move an order to another status
func (api *OrderAPI) UpdateOrderStatus(c *gin.Context) {
	var payload mapper.UpdateStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		apierrors.Respond(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	updated, err := api.service.UpdateOrderStatus(c.Request.Context(), ordertypes.UpdateStatusInput{
		OrderID:    payload.OrderID,
		Status:     payload.Status,
		CallerRole: ordertypes.Role(auth.RoleFromContext(c.Request.Context())),
	})
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, mapper.FromProjection(updated))
}

// MapError translates order errors into problem details.
func MapError(err error) (apierrors.ProblemDetail, bool) {
	var (
		recErr *domain.ReconciliationError
		refErr *ports.ReferenceError
		valErr *domain.ValidationError
	)
	switch {
	case errors.As(err, &valErr):
		problem := apierrors.NewValidationProblem(valErr.FieldMap()).WithDetail(valErr.Error())
		if rec := valErr.Reconciliation; rec != nil {
			problem = withReconciliation(problem, rec)
		}
		return problem, true
	case errors.As(err, &recErr):
		problem := apierrors.NewFieldProblem("totalAmount", fmt.Sprintf("must equal %s", recErr.Expected)).
			WithDetail(recErr.Error())
		return withReconciliation(problem, recErr), true
	case errors.As(err, &refErr):
		return apierrors.NewValidationProblem(refErr.FieldMap()).WithDetail(refErr.Error()), true
	case errors.Is(err, domain.ErrInvalidStatus):
		return apierrors.NewFieldProblem("status", domain.ErrInvalidStatus.Error()), true
	case errors.Is(err, domain.ErrInvalidPaymentMethod):
		return apierrors.NewFieldProblem("paymentMethod", domain.ErrInvalidPaymentMethod.Error()), true
	case errors.Is(err, orderapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, orderapp.ErrForbidden):
		return apierrors.ErrForbidden.WithDetail(err.Error()), true
	case errors.Is(err, ports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, ports.ErrDuplicateKey),
		errors.Is(err, ports.ErrConcurrentUpdate),
		errors.Is(err, ports.ErrIdempotencyConflict),
		errors.Is(err, ports.ErrIdempotencyInProgress),
		errors.Is(err, domain.ErrIllegalTransition):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, ports.ErrStorageUnavailable):
		return apierrors.ErrServiceUnavailable.WithDetail(ports.ErrStorageUnavailable.Error()), true
	default:
		return apierrors.ProblemDetail{}, false
	}
}

func withReconciliation(problem apierrors.ProblemDetail, rec *domain.ReconciliationError) apierrors.ProblemDetail {
	return problem.
		WithExtension("expected", mapper.AmountFrom(rec.Expected)).
		WithExtension("claimed", mapper.AmountFrom(rec.Claimed))
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
