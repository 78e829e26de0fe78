package ports

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/domain"
)

// ErrReferenceNotFound indicates a shipping method or product id that does not resolve.
var ErrReferenceNotFound = errors.New("referenced record not found")

// ShippingMethod is the live catalog record of a delivery option.
type ShippingMethod struct {
	ID          string
	Name        string
	Charge      domain.Money
	Description string
}

// ProductSnapshot is the live catalog view of a product. Discount is per unit.
type ProductSnapshot struct {
	ID            string
	Name          string
	Slug          string
	Price         domain.Money
	Discount      domain.Money
	Images        []string
	StockQuantity int
}

// Catalog is the read-only source of authoritative prices and charges.
type Catalog interface {
	// ShippingMethod returns ErrReferenceNotFound when the id does not resolve.
	ShippingMethod(ctx context.Context, id string) (*ShippingMethod, error)
	// ProductsByIDs loads products in one batch. Unknown ids are absent from the result.
	ProductsByIDs(ctx context.Context, ids []string) (map[string]*ProductSnapshot, error)
}

// MissingReference names one unresolved id and the request field that carried it.
type MissingReference struct {
	Field string
	Kind  string
	ID    string
}

// Message describes the unresolved reference for its request field.
func (m MissingReference) Message() string {
	return fmt.Sprintf("%s %q not found", m.Kind, m.ID)
}

// ReferenceError lists every unresolved reference of a submission.
type ReferenceError struct {
	Missing []MissingReference
}

func (e *ReferenceError) Error() string {
	ids := make([]string, 0, len(e.Missing))
	for _, m := range e.Missing {
		ids = append(ids, fmt.Sprintf("%s %q", m.Kind, m.ID))
	}
	return fmt.Sprintf("%s: %s", ErrReferenceNotFound.Error(), strings.Join(ids, ", "))
}

func (e *ReferenceError) Unwrap() error { return ErrReferenceNotFound }

// FieldMap maps request fields to a not-found message.
func (e *ReferenceError) FieldMap() map[string]string {
	out := make(map[string]string, len(e.Missing))
	for _, m := range e.Missing {
		out[m.Field] = m.Message()
	}
	return out
}
