package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	types "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/application/types"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/domain"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

type storedOrder struct {
	order     *domain.Order
	createdAt time.Time
	updatedAt time.Time
}

// Repository is an in-memory order persistence adapter.
type Repository struct {
	mu        sync.RWMutex
	orders    map[string]*storedOrder
	byOrderID map[string]string
	now       func() time.Time
}

func NewRepository() *Repository {
	return &Repository{
		orders:    map[string]*storedOrder{},
		byOrderID: map[string]string{},
		now:       time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Create(_ context.Context, order *domain.Order) (*types.OrderProjection, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := order.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	if err := clone.Reconcile(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byOrderID[clone.OrderID]; taken {
		return nil, ports.ErrDuplicateKey
	}
	clone.ID = uuid.NewString()
	now := r.now()
	stored := &storedOrder{order: clone, createdAt: now, updatedAt: now}
	r.orders[clone.ID] = stored
	r.byOrderID[clone.OrderID] = clone.ID
	return stored.projection(), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*types.OrderProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return stored.projection(), nil
}

func (r *Repository) GetByOrderID(_ context.Context, orderID string) (*types.OrderProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byOrderID[orderID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.orders[id].projection(), nil
}

func (r *Repository) Update(_ context.Context, id string, mutate func(*domain.Order) error) (*types.OrderProjection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	next := stored.order.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	preserveImmutable(next, stored.order)
	if err := next.Validate(); err != nil {
		return nil, err
	}
	stored.order = next
	stored.updatedAt = r.now()
	return stored.projection(), nil
}

func (r *Repository) UpdateStatus(_ context.Context, orderID string, from, to domain.Status) (*types.OrderProjection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byOrderID[orderID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	stored := r.orders[id]
	if stored.order.Status != from {
		return nil, ports.ErrConcurrentUpdate
	}
	next := stored.order.Clone()
	next.Status = to
	stored.order = next
	stored.updatedAt = r.now()
	return stored.projection(), nil
}

func (r *Repository) List(_ context.Context, query ports.ListQuery) ([]*types.OrderProjection, int64, error) {
	r.mu.RLock()
	matched := make([]*storedOrder, 0, len(r.orders))
	for _, stored := range r.orders {
		if matches(stored, query.Filters) {
			matched = append(matched, stored)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		cmp := compareField(matched[i], matched[j], query.Sort.Field)
		if cmp == 0 {
			return matched[i].order.ID < matched[j].order.ID
		}
		if query.Sort.Descending {
			return cmp > 0
		}
		return cmp < 0
	})

	total := int64(len(matched))
	start := min(max(query.Offset, 0), len(matched))
	end := len(matched)
	if query.Limit > 0 && query.Limit < end-start {
		end = start + query.Limit
	}
	page := make([]*types.OrderProjection, 0, end-start)
	for _, stored := range matched[start:end] {
		page = append(page, stored.projection())
	}
	return page, total, nil
}

func (s *storedOrder) projection() *types.OrderProjection {
	return types.NewOrderProjection(s.order.Clone(), s.createdAt, s.updatedAt)
}

// preserveImmutable restores the fields a full-record edit may not change.
func preserveImmutable(next, current *domain.Order) {
	next.ID = current.ID
	next.OrderID = current.OrderID
	next.Status = current.Status
	next.Items = append([]domain.LineItem(nil), current.Items...)
	next.ShippingMethodID = current.ShippingMethodID
	next.ShippingCharge = current.ShippingCharge
	next.TotalAmount = current.TotalAmount
}

func matches(stored *storedOrder, filters []ports.FieldFilter) bool {
	for _, filter := range filters {
		value := fieldValue(stored.order, filter.Field)
		switch filter.Mode {
		case ports.FilterContains:
			if !strings.Contains(strings.ToLower(value), strings.ToLower(filter.Value)) {
				return false
			}
		default:
			if value != filter.Value {
				return false
			}
		}
	}
	return true
}

func fieldValue(order *domain.Order, field string) string {
	switch field {
	case ports.FieldOrderID:
		return order.OrderID
	case ports.FieldStatus:
		return string(order.Status)
	case ports.FieldPaymentMethod:
		return string(order.PaymentMethod)
	case ports.FieldCustomerName:
		return order.Contact.CustomerName
	case ports.FieldPhone:
		return order.Contact.Phone
	case ports.FieldDivision:
		return order.Contact.Division
	case ports.FieldDistrict:
		return order.Contact.District
	case ports.FieldShippingMethodID:
		return order.ShippingMethodID
	default:
		return ""
	}
}

func compareField(a, b *storedOrder, field string) int {
	switch field {
	case ports.FieldUpdatedAt:
		return a.updatedAt.Compare(b.updatedAt)
	case ports.FieldTotalAmount:
		switch {
		case a.order.TotalAmount < b.order.TotalAmount:
			return -1
		case a.order.TotalAmount > b.order.TotalAmount:
			return 1
		}
		return 0
	case ports.FieldOrderID, ports.FieldStatus, ports.FieldCustomerName:
		return strings.Compare(fieldValue(a.order, field), fieldValue(b.order, field))
	default:
		return a.createdAt.Compare(b.createdAt)
	}
}
