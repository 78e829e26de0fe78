package types

import "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/domain"

// Role is the caller role claim supplied by the authorization layer.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
)

// ContactInput carries the shipping and contact fields of a checkout.
type ContactInput struct {
	CustomerName string
	Phone        string
	Division     string
	District     string
	PostalCode   string
	Address      string
}

// ToDomain trims the contact fields into a domain snapshot.
func (c ContactInput) ToDomain() domain.ShippingContact {
	return domain.ShippingContact{
		CustomerName: trim(c.CustomerName),
		Phone:        trim(c.Phone),
		Division:     trim(c.Division),
		District:     trim(c.District),
		PostalCode:   trim(c.PostalCode),
		Address:      trim(c.Address),
	}
}

// ItemInput is one submitted line item.
type ItemInput struct {
	ProductID string
	Quantity  int
	UnitPrice domain.Money
	Discount  domain.Money
}

// CheckoutInput is a checkout submission. TotalAmount is the total claimed by the client and
// must reconcile with the server-side computation.
type CheckoutInput struct {
	// OrderID is optional; a generated identifier is used when empty.
	OrderID          string
	Contact          ContactInput
	PaymentMethod    string
	ShippingMethodID string
	Items            []ItemInput
	TotalAmount      domain.Money
	IdempotencyKey   string
	// AmountErrors lists amounts the transport could not decode. They are reported together
	// with every other violation of the submission.
	AmountErrors []domain.FieldError
}

// GetOrderInput loads one order by internal id.
type GetOrderInput struct {
	ID       string
	Populate bool
}

// TrackOrderInput loads one order by human identifier.
type TrackOrderInput struct {
	OrderID string
}

// UpdateStatusInput requests a status transition.
type UpdateStatusInput struct {
	OrderID    string
	Status     string
	CallerRole Role
}

// UpdateOrderInput is a full-record edit. Items, totals and identifiers are not editable.
type UpdateOrderInput struct {
	ID            string
	Contact       ContactInput
	PaymentMethod *string
}

// ListOrdersInput carries the raw list parameters. Zero values select defaults.
type ListOrdersInput struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	// Filters holds exact-match values keyed by field name.
	Filters map[string]string
	// Search holds case-insensitive substring values keyed by field name.
	Search map[string]string
}
