package ports

import (
	"context"
	"errors"

	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/domain"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/shared/projection"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrDuplicateKey is returned when the human order identifier is already taken.
	ErrDuplicateKey = errors.New("order identifier already exists")
	// ErrConcurrentUpdate is returned when the stored status no longer matches the expected one.
	ErrConcurrentUpdate = errors.New("order was modified concurrently")
	// ErrStorageUnavailable wraps infrastructure failures of the order store.
	ErrStorageUnavailable = errors.New("order storage unavailable")
)

// FilterMode selects how a filter value is compared.
type FilterMode int

const (
	// FilterExact matches the stored value exactly.
	FilterExact FilterMode = iota
	// FilterContains matches a case-insensitive substring.
	FilterContains
)

// Filterable order attributes, keyed by their wire names.
const (
	FieldOrderID          = "orderId"
	FieldStatus           = "status"
	FieldPaymentMethod    = "paymentMethod"
	FieldCustomerName     = "customerName"
	FieldPhone            = "phone"
	FieldDivision         = "division"
	FieldDistrict         = "district"
	FieldShippingMethodID = "shippingMethodId"
	FieldCreatedAt        = "createdAt"
	FieldUpdatedAt        = "updatedAt"
	FieldTotalAmount      = "totalAmount"
)

// FilterableFields lists the attributes accepted by List filters.
var FilterableFields = map[string]bool{
	FieldOrderID:          true,
	FieldStatus:           true,
	FieldPaymentMethod:    true,
	FieldCustomerName:     true,
	FieldPhone:            true,
	FieldDivision:         true,
	FieldDistrict:         true,
	FieldShippingMethodID: true,
}

// SortableFields lists the attributes accepted as List sort keys.
var SortableFields = map[string]bool{
	FieldCreatedAt:    true,
	FieldUpdatedAt:    true,
	FieldTotalAmount:  true,
	FieldOrderID:      true,
	FieldStatus:       true,
	FieldCustomerName: true,
}

// FieldFilter restricts List results on one attribute.
type FieldFilter struct {
	Field string
	Value string
	Mode  FilterMode
}

// SortSpec orders List results on a single attribute. Ties are broken on the internal id.
type SortSpec struct {
	Field      string
	Descending bool
}

// ListQuery describes a filtered, sorted page of orders.
type ListQuery struct {
	Filters []FieldFilter
	Sort    SortSpec
	Offset  int
	Limit   int
}

// Repository persists order aggregates. Implementations enforce uniqueness of the human
// identifier themselves and never run a read-then-insert check.
type Repository interface {
	Create(ctx context.Context, order *domain.Order) (*projection.Projection[*domain.Order], error)
	GetByID(ctx context.Context, id string) (*projection.Projection[*domain.Order], error)
	GetByOrderID(ctx context.Context, orderID string) (*projection.Projection[*domain.Order], error)
	// Update loads the order, applies mutate and stores the result atomically. The mutated
	// aggregate is validated again before it is written.
	Update(ctx context.Context, id string, mutate func(*domain.Order) error) (*projection.Projection[*domain.Order], error)
	// UpdateStatus swaps the status only when the stored one still equals from.
	UpdateStatus(ctx context.Context, orderID string, from, to domain.Status) (*projection.Projection[*domain.Order], error)
	// List returns the requested page plus the count of every order matching the filters.
	List(ctx context.Context, query ListQuery) ([]*projection.Projection[*domain.Order], int64, error)
}
