package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	types "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/application/types"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/domain"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/ports"
)

// Service orchestrates the orders bounded context use cases.
type Service struct {
	repo         ports.Repository
	resolver     *ReferenceDataResolver
	statuses     *StatusMachine
	projector    *Projector
	ids          ports.IdentifierGenerator
	publisher    ports.EventPublisher
	idempotency  ports.IdempotencyStore
	logger       *slog.Logger
	now          func() time.Time
	policy       domain.TransitionPolicy
	enforcePrice bool
	pageSize     int
}

// Option customizes the service.
type Option func(*Service)

// WithTransitionPolicy selects the status transition policy. Permissive is the default.
func WithTransitionPolicy(policy domain.TransitionPolicy) Option {
	return func(s *Service) {
		s.policy = policy
	}
}

// WithCatalogPriceEnforcement toggles the check of submitted unit prices against the live catalog.
func WithCatalogPriceEnforcement(enabled bool) Option {
	return func(s *Service) {
		s.enforcePrice = enabled
	}
}

// WithEventPublisher sets the destination of order events.
func WithEventPublisher(publisher ports.EventPublisher) Option {
	return func(s *Service) {
		if publisher != nil {
			s.publisher = publisher
		}
	}
}

// WithIdempotencyStore enables replay of checkouts carrying an idempotency key.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) {
		s.idempotency = store
	}
}

// WithLogger sets the logger used for non-critical side effects.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source of emitted events.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDefaultPageSize sets the list page size used when none is requested.
func WithDefaultPageSize(size int) Option {
	return func(s *Service) {
		s.pageSize = size
	}
}

// NewService wires the orders service with its dependencies.
func NewService(repo ports.Repository, catalog ports.Catalog, ids ports.IdentifierGenerator, opts ...Option) *Service {
	s := &Service{
		repo:         repo,
		resolver:     NewReferenceDataResolver(catalog),
		ids:          ids,
		publisher:    ports.NoopPublisher{},
		logger:       slog.New(slog.NewJSONHandler(io.Discard, nil)),
		now:          time.Now,
		policy:       domain.PolicyPermissive,
		enforcePrice: true,
		pageSize:     DefaultPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.statuses = NewStatusMachine(repo, s.policy)
	s.projector = NewProjector(repo, catalog, s.pageSize)
	return s
}

// SubmitOrder validates a checkout against the live catalog, reconciles the claimed total and
// persists the order. Every check runs that has usable inputs, and all violations are reported
// in one *domain.ValidationError. Nothing is written unless every check passes.
func (s *Service) SubmitOrder(ctx context.Context, input types.CheckoutInput) (*types.OrderProjection, error) {
	key := strings.TrimSpace(input.IdempotencyKey)
	var fingerprint string
	if key != "" && s.idempotency != nil {
		hash, err := FingerprintCheckout(input)
		if err != nil {
			return nil, err
		}
		held, err := s.idempotency.Get(ctx, key)
		if err != nil {
			return nil, mapError(err)
		}
		if held != nil {
			return s.replay(ctx, held, hash)
		}
		fingerprint = hash
	}

	draft, err := s.validateCheckout(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}
	orderID := draft.OrderID
	if orderID == "" {
		orderID = s.ids.NewOrderID()
	}
	order, err := domain.NewOrder(orderID, draft.Contact, draft.PaymentMethod, draft.Items, draft.ShippingMethodID, draft.ShippingCharge, draft.TotalAmount)
	if err != nil {
		return nil, mapError(err)
	}

	if fingerprint != "" {
		held, err := s.idempotency.Claim(ctx, ports.IdempotencyRecord{Key: key, RequestHash: fingerprint, OrderRef: order.OrderID})
		if err != nil {
			return nil, mapError(err)
		}
		if held != nil {
			return s.replay(ctx, held, fingerprint)
		}
	}
	saved, err := s.repo.Create(ctx, order)
	if err != nil {
		if fingerprint != "" {
			s.releaseKey(ctx, key, order.OrderID)
		}
		return nil, mapError(err)
	}

	s.publish(ctx, domain.OrderPlaced{
		BaseEvent:     domain.BaseEvent{Timestamp: s.now()},
		ID:            saved.Entity.ID,
		OrderID:       saved.Entity.OrderID,
		TotalAmount:   saved.Entity.TotalAmount,
		PaymentMethod: saved.Entity.PaymentMethod,
		ItemCount:     len(saved.Entity.Items),
	})
	return saved, nil
}

// validateCheckout builds the draft and runs schema, reference, catalog price and
// reconciliation checks. A caller-supplied order id is validated with the rest.
// Reconciliation is skipped when the shipping charge is unknown or an amount
// could not be decoded.
func (s *Service) validateCheckout(ctx context.Context, input types.CheckoutInput) (*domain.Order, error) {
	verr := &domain.ValidationError{Fields: append([]domain.FieldError(nil), input.AmountErrors...)}
	draft := buildDraft(input)
	validate := draft.ValidateDraft
	if draft.OrderID != "" {
		validate = draft.Validate
	}
	if err := validate(); err != nil {
		var schemaErr *domain.ValidationError
		if !errors.As(err, &schemaErr) {
			return nil, err
		}
		verr.Merge(schemaErr)
	}

	refs, err := s.resolver.Resolve(ctx, draft.ShippingMethodID, itemRefs(draft.Items))
	var refErr *ports.ReferenceError
	switch {
	case errors.As(err, &refErr):
		for _, missing := range refErr.Missing {
			verr.Add(missing.Field, missing.Message())
		}
		verr.Attach(refErr)
	case err != nil:
		return nil, err
	}

	if s.enforcePrice {
		verr.Merge(checkCatalogPrices(draft.Items, refs.Products))
	}

	if refs.Shipping != nil && len(input.AmountErrors) == 0 {
		draft.ShippingCharge = refs.Shipping.Charge
		err := domain.Reconcile(draft.Items, draft.ShippingCharge, draft.TotalAmount)
		var recErr *domain.ReconciliationError
		switch {
		case errors.As(err, &recErr):
			verr.AddReconciliation(recErr)
		case errors.Is(err, domain.ErrAmountOutOfRange):
			verr.Add("totalAmount", "exceeds the largest supported order total")
		case err != nil:
			return nil, err
		}
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}
	return draft, nil
}

// GetOrder loads an order by internal id, optionally expanding product references.
func (s *Service) GetOrder(ctx context.Context, input types.GetOrderInput) (*types.OrderView, error) {
	record, err := s.repo.GetByID(ctx, strings.TrimSpace(input.ID))
	if err != nil {
		return nil, mapError(err)
	}
	return s.projector.View(ctx, record, input.Populate)
}

// TrackOrder loads an order by its human identifier for the public tracking page.
func (s *Service) TrackOrder(ctx context.Context, input types.TrackOrderInput) (*types.OrderView, error) {
	orderID := strings.TrimSpace(input.OrderID)
	if orderID == "" {
		return nil, mapError(fieldError("orderId", "is required"))
	}
	record, err := s.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, mapError(err)
	}
	return s.projector.View(ctx, record, true)
}

// ListOrders returns one projected page of orders.
func (s *Service) ListOrders(ctx context.Context, input types.ListOrdersInput) (*types.OrderPage, error) {
	page, err := s.projector.Project(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}
	return page, nil
}

// UpdateOrderStatus transitions an order identified by its human id. Only administrators may
// call it; other roles are rejected before the order is read.
func (s *Service) UpdateOrderStatus(ctx context.Context, input types.UpdateStatusInput) (*types.OrderProjection, error) {
	if input.CallerRole != types.RoleAdmin {
		return nil, ErrForbidden
	}
	orderID := strings.TrimSpace(input.OrderID)
	if orderID == "" {
		return nil, mapError(fieldError("orderId", "is required"))
	}
	status, err := domain.ParseStatus(input.Status)
	if err != nil {
		return nil, mapError(err)
	}
	updated, from, err := s.statuses.Transition(ctx, orderID, status)
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, domain.OrderStatusChanged{
		BaseEvent:  domain.BaseEvent{Timestamp: s.now()},
		OrderID:    updated.Entity.OrderID,
		FromStatus: from,
		ToStatus:   updated.Entity.Status,
	})
	return updated, nil
}

// UpdateOrder edits the contact snapshot and payment method of an order. The edited record is
// validated with the same rules used at checkout.
func (s *Service) UpdateOrder(ctx context.Context, input types.UpdateOrderInput) (*types.OrderProjection, error) {
	var method *domain.PaymentMethod
	if input.PaymentMethod != nil {
		parsed := normalizePaymentMethod(*input.PaymentMethod)
		method = &parsed
	}
	contact := input.Contact.ToDomain()
	updated, err := s.repo.Update(ctx, strings.TrimSpace(input.ID), func(order *domain.Order) error {
		return order.ApplyUpdate(contact, method)
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, domain.OrderUpdated{
		BaseEvent: domain.BaseEvent{Timestamp: s.now()},
		ID:        updated.Entity.ID,
		OrderID:   updated.Entity.OrderID,
	})
	return updated, nil
}

// replay returns the order placed under a held key. A different payload is a conflict; an
// order not stored yet means the holder is still placing it.
func (s *Service) replay(ctx context.Context, held *ports.IdempotencyRecord, hash string) (*types.OrderProjection, error) {
	if held.RequestHash != hash {
		return nil, ports.ErrIdempotencyConflict
	}
	saved, err := s.repo.GetByOrderID(ctx, held.OrderRef)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, ports.ErrIdempotencyInProgress
	}
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func (s *Service) releaseKey(ctx context.Context, key, orderRef string) {
	if err := s.idempotency.Release(ctx, key, orderRef); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "idempotency key not released",
			slog.String("order.orderId", orderRef),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Service) publish(ctx context.Context, event domain.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "order event not published",
			slog.String("event.name", event.EventName()),
			slog.String("error", err.Error()),
		)
	}
}

func buildDraft(input types.CheckoutInput) *domain.Order {
	items := make([]domain.LineItem, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, domain.LineItem{
			ProductID: strings.TrimSpace(item.ProductID),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
		})
	}
	return &domain.Order{
		OrderID:          strings.TrimSpace(input.OrderID),
		Contact:          input.Contact.ToDomain(),
		Status:           domain.StatusPending,
		PaymentMethod:    normalizePaymentMethod(input.PaymentMethod),
		Items:            items,
		ShippingMethodID: strings.TrimSpace(input.ShippingMethodID),
		TotalAmount:      input.TotalAmount,
	}
}

// normalizePaymentMethod keeps unknown values so that schema validation reports them.
func normalizePaymentMethod(raw string) domain.PaymentMethod {
	method, err := domain.ParsePaymentMethod(raw)
	if err != nil {
		return domain.PaymentMethod(strings.ToUpper(strings.TrimSpace(raw)))
	}
	return method
}

func itemRefs(items []domain.LineItem) []ItemRef {
	refs := make([]ItemRef, 0, len(items))
	for _, item := range items {
		refs = append(refs, ItemRef{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return refs
}

// checkCatalogPrices requires each unit price to equal the live product price and caps the
// line discount at the live per-unit discount times the quantity. Unresolved products are skipped.
func checkCatalogPrices(items []domain.LineItem, products map[string]*ports.ProductSnapshot) *domain.ValidationError {
	verr := &domain.ValidationError{}
	for i, item := range items {
		product, ok := products[item.ProductID]
		if !ok {
			continue
		}
		if item.UnitPrice != product.Price {
			verr.Add(domain.ItemField(i, "unitPrice"), "must equal the current catalog price "+product.Price.String())
		}
		if item.Quantity < 1 || item.Quantity > 100 {
			continue
		}
		if maxDiscount := product.Discount * domain.Money(item.Quantity); item.Discount > maxDiscount {
			verr.Add(domain.ItemField(i, "discount"), "must not exceed the catalog discount "+maxDiscount.String())
		}
	}
	return verr
}

var _ ports.Service = (*Service)(nil)
