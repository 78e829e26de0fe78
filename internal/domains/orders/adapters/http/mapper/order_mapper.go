package mapper

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	ordertypes "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/application/types"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/domain"
)

// Amount is a decimal money value. It is read from JSON numbers or strings and always written
// as a number with two decimals.
type Amount struct {
	decimal.Decimal
}

// AmountFrom converts cents into a wire amount.
func AmountFrom(m domain.Money) Amount {
	return Amount{Decimal: m.Decimal()}
}

// MarshalJSON writes the amount as a bare number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.StringFixed(2)), nil
}

// ContactPayload holds the shipping contact fields, flat on the order document.
type ContactPayload struct {
	CustomerName string `json:"customerName"`
	Phone        string `json:"phone"`
	Division     string `json:"division"`
	District     string `json:"district"`
	PostalCode   string `json:"postalCode"`
	Address      string `json:"address"`
}

// ItemPayload is one submitted line item.
type ItemPayload struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice Amount `json:"unitPrice"`
	Discount  Amount `json:"discount"`
}

// CheckoutRequest is the body of a checkout submission.
type CheckoutRequest struct {
	OrderID string `json:"orderId,omitempty"`
	ContactPayload
	PaymentMethod    string        `json:"paymentMethod,omitempty"`
	ShippingMethodID string        `json:"shippingMethodId"`
	Items            []ItemPayload `json:"items"`
	TotalAmount      Amount        `json:"totalAmount"`
}

// UpdateOrderRequest edits the contact snapshot and optionally the payment method.
type UpdateOrderRequest struct {
	ContactPayload
	PaymentMethod *string `json:"paymentMethod,omitempty"`
}

// UpdateStatusRequest moves an order identified by its human id to another status.
type UpdateStatusRequest struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// ToCheckoutInput converts a checkout body into an application input. Amounts that cannot be
// stored are carried as AmountErrors so the service reports them with the other violations.
func ToCheckoutInput(req CheckoutRequest, idempotencyKey string) ordertypes.CheckoutInput {
	verr := &domain.ValidationError{}
	items := make([]ordertypes.ItemInput, 0, len(req.Items))
	for i, item := range req.Items {
		items = append(items, ordertypes.ItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: toMoney(verr, domain.ItemField(i, "unitPrice"), item.UnitPrice),
			Discount:  toMoney(verr, domain.ItemField(i, "discount"), item.Discount),
		})
	}
	input := ordertypes.CheckoutInput{
		OrderID:          req.OrderID,
		Contact:          toContactInput(req.ContactPayload),
		PaymentMethod:    req.PaymentMethod,
		ShippingMethodID: req.ShippingMethodID,
		Items:            items,
		TotalAmount:      toMoney(verr, "totalAmount", req.TotalAmount),
		IdempotencyKey:   idempotencyKey,
	}
	input.AmountErrors = verr.Fields
	return input
}

// ToUpdateOrderInput converts an edit body for the order with internal id.
func ToUpdateOrderInput(id string, req UpdateOrderRequest) ordertypes.UpdateOrderInput {
	input := ordertypes.UpdateOrderInput{ID: id, Contact: toContactInput(req.ContactPayload)}
	if req.PaymentMethod != nil {
		method := *req.PaymentMethod
		input.PaymentMethod = &method
	}
	return input
}

func toContactInput(p ContactPayload) ordertypes.ContactInput {
	return ordertypes.ContactInput{
		CustomerName: p.CustomerName,
		Phone:        p.Phone,
		Division:     p.Division,
		District:     p.District,
		PostalCode:   p.PostalCode,
		Address:      p.Address,
	}
}

func toMoney(verr *domain.ValidationError, field string, amount Amount) domain.Money {
	m, err := domain.MoneyFromDecimal(amount.Decimal)
	switch {
	case errors.Is(err, domain.ErrAmountOutOfRange):
		verr.Add(field, "must not exceed "+domain.MaxAmount.String())
	case err != nil:
		verr.Add(field, "must have at most two decimal places")
	}
	return m
}

// ProductResponse is the catalog snapshot attached to a populated line item.
type ProductResponse struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Slug     string   `json:"slug"`
	Price    Amount   `json:"price"`
	Discount Amount   `json:"discount"`
	Images   []string `json:"images"`
}

// ItemResponse is a stored line item. Product is present only when references were populated
// and the product still exists.
type ItemResponse struct {
	ProductID string           `json:"productId"`
	Product   *ProductResponse `json:"product,omitempty"`
	Quantity  int              `json:"quantity"`
	UnitPrice Amount           `json:"unitPrice"`
	Discount  Amount           `json:"discount"`
	Subtotal  Amount           `json:"subtotal"`
}

// OrderResponse is the order document returned by every endpoint.
type OrderResponse struct {
	ID string `json:"id"`
	// OrderID is the human identifier shown to customers.
	OrderID string `json:"orderId"`
	ContactPayload
	Status           string           `json:"status"`
	PaymentMethod    string           `json:"paymentMethod"`
	ShippingMethodID string           `json:"shippingMethodId"`
	ShippingCharge   Amount           `json:"shippingCharge"`
	TotalAmount      Amount           `json:"totalAmount"`
	Currency         string           `json:"currency"`
	Items            []ItemResponse   `json:"items"`
	Tracking         *domain.Tracking `json:"tracking,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// PaginationResponse describes the position of a page.
type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

// PageResponse is one page of orders.
type PageResponse struct {
	Orders     []OrderResponse    `json:"orders"`
	Pagination PaginationResponse `json:"pagination"`
}

// FromProjection maps a stored aggregate to its response document.
func FromProjection(p *ordertypes.OrderProjection) OrderResponse {
	if p == nil || p.Entity == nil {
		return OrderResponse{}
	}
	order := p.Entity
	items := make([]ItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, ItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: AmountFrom(item.UnitPrice),
			Discount:  AmountFrom(item.Discount),
			Subtotal:  AmountFrom(item.Subtotal()),
		})
	}
	return OrderResponse{
		ID:      order.ID,
		OrderID: order.OrderID,
		ContactPayload: ContactPayload{
			CustomerName: order.Contact.CustomerName,
			Phone:        order.Contact.Phone,
			Division:     order.Contact.Division,
			District:     order.Contact.District,
			PostalCode:   order.Contact.PostalCode,
			Address:      order.Contact.Address,
		},
		Status:           string(order.Status),
		PaymentMethod:    string(order.PaymentMethod),
		ShippingMethodID: order.ShippingMethodID,
		ShippingCharge:   AmountFrom(order.ShippingCharge),
		TotalAmount:      AmountFrom(order.TotalAmount),
		Currency:         domain.CurrencySymbol,
		Items:            items,
		CreatedAt:        p.Metadata.CreatedAt,
		UpdatedAt:        p.Metadata.UpdatedAt,
	}
}

// FromView maps a projected order, including populated products and tracking steps.
func FromView(v *ordertypes.OrderView) OrderResponse {
	if v == nil {
		return OrderResponse{}
	}
	items := make([]ItemResponse, 0, len(v.Items))
	for _, item := range v.Items {
		items = append(items, ItemResponse{
			ProductID: item.ProductID,
			Product:   fromProductView(item.Product),
			Quantity:  item.Quantity,
			UnitPrice: AmountFrom(item.UnitPrice),
			Discount:  AmountFrom(item.Discount),
			Subtotal:  AmountFrom(item.Subtotal),
		})
	}
	tracking := v.Tracking
	return OrderResponse{
		ID:      v.ID,
		OrderID: v.OrderID,
		ContactPayload: ContactPayload{
			CustomerName: v.CustomerName,
			Phone:        v.Phone,
			Division:     v.Division,
			District:     v.District,
			PostalCode:   v.PostalCode,
			Address:      v.Address,
		},
		Status:           string(v.Status),
		PaymentMethod:    string(v.PaymentMethod),
		ShippingMethodID: v.ShippingMethodID,
		ShippingCharge:   AmountFrom(v.ShippingCharge),
		TotalAmount:      AmountFrom(v.TotalAmount),
		Currency:         domain.CurrencySymbol,
		Items:            items,
		Tracking:         &tracking,
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
	}
}

// FromPage maps a projected page.
func FromPage(page *ordertypes.OrderPage) PageResponse {
	if page == nil {
		return PageResponse{Orders: []OrderResponse{}}
	}
	orders := make([]OrderResponse, 0, len(page.Orders))
	for _, view := range page.Orders {
		orders = append(orders, FromView(view))
	}
	return PageResponse{
		Orders: orders,
		Pagination: PaginationResponse{
			Page:       page.Pagination.Page,
			Limit:      page.Pagination.Limit,
			TotalItems: page.Pagination.TotalItems,
			TotalPages: page.Pagination.TotalPages,
		},
	}
}

func fromProductView(p *ordertypes.ProductView) *ProductResponse {
	if p == nil {
		return nil
	}
	return &ProductResponse{
		ID:       p.ID,
		Name:     p.Name,
		Slug:     p.Slug,
		Price:    AmountFrom(p.Price),
		Discount: AmountFrom(p.Discount),
		Images:   append([]string{}, p.Images...),
	}
}
