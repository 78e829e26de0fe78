package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	types "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/application/types"
)

type normalizedCheckout struct {
	OrderID          string            `json:"orderId"`
	Contact          normalizedContact `json:"contact"`
	PaymentMethod    string            `json:"paymentMethod"`
	ShippingMethodID string            `json:"shippingMethodId"`
	Items            []normalizedItem  `json:"items"`
	TotalAmount      int64             `json:"totalAmount"`
}

type normalizedContact struct {
	CustomerName string `json:"customerName"`
	Phone        string `json:"phone"`
	Division     string `json:"division"`
	District     string `json:"district"`
	PostalCode   string `json:"postalCode"`
	Address      string `json:"address"`
}

type normalizedItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
	Discount  int64  `json:"discount"`
}

// FingerprintCheckout builds a deterministic hash of the checkout payload (excluding the idempotency key).
// Item order is significant since it is part of the stored order.
func FingerprintCheckout(input types.CheckoutInput) (string, error) {
	payload, err := json.Marshal(normalizeCheckout(input))
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

func normalizeCheckout(input types.CheckoutInput) normalizedCheckout {
	contact := input.Contact.ToDomain()
	items := make([]normalizedItem, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, normalizedItem{
			ProductID: strings.TrimSpace(item.ProductID),
			Quantity:  item.Quantity,
			UnitPrice: int64(item.UnitPrice),
			Discount:  int64(item.Discount),
		})
	}
	return normalizedCheckout{
		OrderID: strings.TrimSpace(input.OrderID),
		Contact: normalizedContact{
			CustomerName: contact.CustomerName,
			Phone:        contact.Phone,
			Division:     contact.Division,
			District:     contact.District,
			PostalCode:   contact.PostalCode,
			Address:      contact.Address,
		},
		PaymentMethod:    strings.ToUpper(strings.TrimSpace(input.PaymentMethod)),
		ShippingMethodID: strings.TrimSpace(input.ShippingMethodID),
		Items:            items,
		TotalAmount:      int64(input.TotalAmount),
	}
}
