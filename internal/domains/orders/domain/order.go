package domain

// LineItem is a product snapshot taken when the order was placed. It is never resynced
// with the live catalog.
type LineItem struct {
	ProductID string `json:"productId" validate:"required,max=64"`
	Quantity  int    `json:"quantity" validate:"min=1,max=100"`
	UnitPrice Money  `json:"unitPrice" validate:"gte=0,lte=10000000000000"`
	Discount  Money  `json:"discount" validate:"gte=0,lte=10000000000000"`
}

// Gross is unitPrice × quantity before discount.
func (li LineItem) Gross() Money {
	return li.UnitPrice * Money(li.Quantity)
}

// Subtotal is the gross amount minus the line discount.
func (li LineItem) Subtotal() Money {
	return li.Gross() - li.Discount
}

// ShippingContact is the delivery and contact snapshot of an order.
type ShippingContact struct {
	CustomerName string `json:"customerName" validate:"required,max=120"`
	Phone        string `json:"phone" validate:"required,max=20,phone"`
	Division     string `json:"division" validate:"required,max=80"`
	District     string `json:"district" validate:"required,max=80"`
	PostalCode   string `json:"postalCode" validate:"required,max=10,digits"`
	Address      string `json:"address" validate:"required,max=500"`
}

// Order is the aggregate root: the order record together with its embedded line items.
type Order struct {
	ID               string          `json:"id"`
	OrderID          string          `json:"orderId" validate:"required,max=64"`
	Contact          ShippingContact `json:"contact"`
	Status           Status          `json:"status" validate:"order_status"`
	PaymentMethod    PaymentMethod   `json:"paymentMethod" validate:"payment_method"`
	Items            []LineItem      `json:"items" validate:"required,min=1,dive"`
	ShippingMethodID string          `json:"shippingMethodId" validate:"required,max=64"`
	ShippingCharge   Money           `json:"shippingCharge" validate:"gte=0,lte=10000000000000"`
	TotalAmount      Money           `json:"totalAmount" validate:"gte=0,lte=10000000000000"`
}

// NewOrder builds a PENDING order and enforces the schema plus the reconciliation invariant.
func NewOrder(orderID string, contact ShippingContact, method PaymentMethod, items []LineItem, shippingMethodID string, shippingCharge, total Money) (*Order, error) {
	order := &Order{
		OrderID:          orderID,
		Contact:          contact,
		Status:           StatusPending,
		PaymentMethod:    method,
		Items:            append([]LineItem(nil), items...),
		ShippingMethodID: shippingMethodID,
		ShippingCharge:   shippingCharge,
		TotalAmount:      total,
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	if err := order.Reconcile(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate applies the order schema. Every violation is reported.
func (o *Order) Validate() error {
	verr := validateStruct(o)
	verr.Merge(o.lineRules())
	return verr.Err()
}

// ValidateDraft applies the schema to an order whose human identifier is not assigned yet.
func (o *Order) ValidateDraft() error {
	verr := validateStruct(o, "OrderID")
	verr.Merge(o.lineRules())
	return verr.Err()
}

func (o *Order) lineRules() *ValidationError {
	verr := &ValidationError{}
	for i, item := range o.Items {
		gross, ok := item.UnitPrice.times(item.Quantity)
		if ok && item.Quantity > 0 && item.Discount > gross {
			verr.Add(ItemField(i, "discount"), "must not exceed unitPrice × quantity")
		}
	}
	return verr
}

// Reconcile checks the stored total against the line items and shipping charge.
func (o *Order) Reconcile() error {
	return Reconcile(o.Items, o.ShippingCharge, o.TotalAmount)
}

// ChangeStatus moves the order to a new status under the given policy.
func (o *Order) ChangeStatus(to Status, policy TransitionPolicy) error {
	if err := policy.CanTransition(o.Status, to); err != nil {
		return err
	}
	o.Status = to
	return nil
}

// ApplyUpdate replaces the contact snapshot and optionally the payment method. Items, totals,
// status and identifiers are untouched.
func (o *Order) ApplyUpdate(contact ShippingContact, method *PaymentMethod) error {
	o.Contact = contact
	if method != nil {
		o.PaymentMethod = *method
	}
	return o.Validate()
}

// ProductIDs lists the distinct product references in item order.
func (o *Order) ProductIDs() []string {
	seen := make(map[string]struct{}, len(o.Items))
	ids := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]LineItem(nil), o.Items...)
	return &clone
}
