package types

import (
	"strings"
	"time"

	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/domain"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/shared/projection"
)

// OrderProjection transports an order aggregate together with its persistence metadata.
type OrderProjection = projection.Projection[*domain.Order]

// NewOrderProjection wraps an aggregate with persistence metadata.
func NewOrderProjection(order *domain.Order, createdAt, updatedAt time.Time) *OrderProjection {
	if order == nil {
		return nil
	}
	return projection.New(order, createdAt, updatedAt)
}

// ProductView is the denormalized product attached to a line item.
type ProductView struct {
	ID       string
	Name     string
	Slug     string
	Price    domain.Money
	Discount domain.Money
	Images   []string
}

// ItemView is a line item with its product expanded. Product is nil when the product no
// longer exists in the catalog.
type ItemView struct {
	ProductID string
	Product   *ProductView
	Quantity  int
	UnitPrice domain.Money
	Discount  domain.Money
	Subtotal  domain.Money
}

// OrderView is the flattened read model used by list, detail and tracking displays.
type OrderView struct {
	ID               string
	OrderID          string
	CustomerName     string
	Phone            string
	Division         string
	District         string
	PostalCode       string
	Address          string
	Status           domain.Status
	PaymentMethod    domain.PaymentMethod
	ShippingMethodID string
	ShippingCharge   domain.Money
	TotalAmount      domain.Money
	Items            []ItemView
	Tracking         domain.Tracking
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Pagination describes the position of a page within the filtered result set.
type Pagination struct {
	Page       int
	Limit      int
	TotalItems int64
	TotalPages int
}

// OrderPage is one page of projected orders.
type OrderPage struct {
	Orders     []*OrderView
	Pagination Pagination
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
