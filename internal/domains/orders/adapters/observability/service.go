package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/application"
	ordertypes "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/application/types"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/domain"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/ports"
)

const tracerName = "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/adapters/observability/service"

// Service decorates the orders service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// SubmitOrder places an order with instrumentation.
func (s *Service) SubmitOrder(ctx context.Context, input ordertypes.CheckoutInput) (*ordertypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "OrderService.SubmitOrder",
		attribute.Int("order.item_count", len(input.Items)),
		attribute.String("order.shipping_method_id", input.ShippingMethodID),
	)
	defer span.End()

	s.logInfo(ctx, "submitting order", slog.Int("order.item_count", len(input.Items)), slog.String("order.total", input.TotalAmount.String()))
	result, err := s.inner.SubmitOrder(ctx, input)
	if err != nil {
		s.metrics.recordRejected(ctx, rejectionReason(err))
		return nil, s.handleError(ctx, span, err, "failed to submit order", slog.String("reason", rejectionReason(err)))
	}
	span.SetAttributes(attribute.String("order.id", result.Entity.ID), attribute.String("order.order_id", result.Entity.OrderID))
	s.metrics.recordSubmitted(ctx, result.Entity.PaymentMethod)
	s.logInfo(ctx, "order submitted",
		slog.String("order.id", result.Entity.ID),
		slog.String("order.order_id", result.Entity.OrderID),
		slog.String("order.total", result.Entity.TotalAmount.String()),
	)
	return result, nil
}

// GetOrder loads an order with instrumentation.
func (s *Service) GetOrder(ctx context.Context, input ordertypes.GetOrderInput) (*ordertypes.OrderView, error) {
	ctx, span := s.startSpan(ctx, "OrderService.GetOrder", attribute.String("order.id", input.ID), attribute.Bool("order.populate", input.Populate))
	defer span.End()

	s.logInfo(ctx, "loading order", slog.String("order.id", input.ID))
	result, err := s.inner.GetOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order.id", input.ID))
	}
	return result, nil
}

// TrackOrder loads an order by human identifier with instrumentation.
func (s *Service) TrackOrder(ctx context.Context, input ordertypes.TrackOrderInput) (*ordertypes.OrderView, error) {
	ctx, span := s.startSpan(ctx, "OrderService.TrackOrder", attribute.String("order.order_id", input.OrderID))
	defer span.End()

	s.logInfo(ctx, "tracking order", slog.String("order.order_id", input.OrderID))
	result, err := s.inner.TrackOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to track order", slog.String("order.order_id", input.OrderID))
	}
	span.SetAttributes(attribute.String("order.status", string(result.Status)))
	return result, nil
}

// ListOrders returns a projected page with instrumentation.
func (s *Service) ListOrders(ctx context.Context, input ordertypes.ListOrdersInput) (*ordertypes.OrderPage, error) {
	ctx, span := s.startSpan(ctx, "OrderService.ListOrders",
		attribute.Int("page", input.Page),
		attribute.Int("limit", input.Limit),
		attribute.String("sort.by", input.SortBy),
	)
	defer span.End()

	result, err := s.inner.ListOrders(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(
		attribute.Int("result.count", len(result.Orders)),
		attribute.Int64("result.total", result.Pagination.TotalItems),
	)
	return result, nil
}

// UpdateOrderStatus transitions an order with instrumentation.
func (s *Service) UpdateOrderStatus(ctx context.Context, input ordertypes.UpdateStatusInput) (*ordertypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "OrderService.UpdateOrderStatus",
		attribute.String("order.order_id", input.OrderID),
		attribute.String("order.requested_status", input.Status),
		attribute.String("caller.role", string(input.CallerRole)),
	)
	defer span.End()

	s.logInfo(ctx, "updating order status", slog.String("order.order_id", input.OrderID), slog.String("status", input.Status))
	result, err := s.inner.UpdateOrderStatus(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order status", slog.String("order.order_id", input.OrderID))
	}
	s.metrics.recordStatusChanged(ctx, result.Entity.Status)
	s.logInfo(ctx, "order status updated", slog.String("order.order_id", result.Entity.OrderID), slog.String("status", string(result.Entity.Status)))
	return result, nil
}

// UpdateOrder edits an order with instrumentation.
func (s *Service) UpdateOrder(ctx context.Context, input ordertypes.UpdateOrderInput) (*ordertypes.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "OrderService.UpdateOrder", attribute.String("order.id", input.ID))
	defer span.End()

	s.logInfo(ctx, "updating order", slog.String("order.id", input.ID))
	result, err := s.inner.UpdateOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update order", slog.String("order.id", input.ID))
	}
	s.metrics.recordUpdated(ctx)
	s.logInfo(ctx, "order updated", slog.String("order.id", result.Entity.ID))
	return result, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func rejectionReason(err error) string {
	var recErr *domain.ReconciliationError
	var refErr *ports.ReferenceError
	switch {
	case errors.As(err, &recErr):
		return "reconciliation"
	case errors.As(err, &refErr):
		return "reference"
	case errors.Is(err, application.ErrInvalidInput):
		return "validation"
	case errors.Is(err, ports.ErrDuplicateKey):
		return "duplicate"
	case errors.Is(err, ports.ErrIdempotencyConflict):
		return "idempotency"
	case errors.Is(err, ports.ErrStorageUnavailable):
		return "storage"
	default:
		return "other"
	}
}

type serviceMetrics struct {
	ordersSubmitted metric.Int64Counter
	ordersRejected  metric.Int64Counter
	statusChanged   metric.Int64Counter
	ordersUpdated   metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersSubmitted, _ := m.Int64Counter("orders.service.submitted", metric.WithDescription("Number of orders placed"))
	ordersRejected, _ := m.Int64Counter("orders.service.rejected", metric.WithDescription("Number of rejected checkout submissions"))
	statusChanged, _ := m.Int64Counter("orders.service.status_changed", metric.WithDescription("Number of order status transitions"))
	ordersUpdated, _ := m.Int64Counter("orders.service.updated", metric.WithDescription("Number of order edits"))
	return serviceMetrics{
		ordersSubmitted: ordersSubmitted,
		ordersRejected:  ordersRejected,
		statusChanged:   statusChanged,
		ordersUpdated:   ordersUpdated,
	}
}

func (m serviceMetrics) recordSubmitted(ctx context.Context, method domain.PaymentMethod) {
	addCounter(ctx, m.ordersSubmitted, 1, attribute.String("order.payment_method", string(method)))
}

func (m serviceMetrics) recordRejected(ctx context.Context, reason string) {
	addCounter(ctx, m.ordersRejected, 1, attribute.String("reason", reason))
}

func (m serviceMetrics) recordStatusChanged(ctx context.Context, status domain.Status) {
	addCounter(ctx, m.statusChanged, 1, attribute.String("order.status", string(status)))
}

func (m serviceMetrics) recordUpdated(ctx context.Context) {
	addCounter(ctx, m.ordersUpdated, 1)
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
