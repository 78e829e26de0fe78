package application

import (
	"context"
	"errors"

	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/domain"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/ports"
)

// ItemRef is a product reference of a checkout line.
type ItemRef struct {
	ProductID string
	Quantity  int
}

// ResolvedReferences holds the live catalog records a submission refers to.
type ResolvedReferences struct {
	Shipping *ports.ShippingMethod
	Products map[string]*ports.ProductSnapshot
}

// ReferenceDataResolver fetches authoritative shipping charges and product prices so that
// client-supplied amounts are never trusted.
type ReferenceDataResolver struct {
	catalog ports.Catalog
}

// NewReferenceDataResolver wires the resolver with its catalog.
func NewReferenceDataResolver(catalog ports.Catalog) *ReferenceDataResolver {
	return &ReferenceDataResolver{catalog: catalog}
}

// Resolve loads the shipping method and every product in one batch. All unresolved ids are
// reported together in a *ports.ReferenceError, returned alongside whatever did resolve.
// Blank ids are skipped; schema validation reports them as required.
func (r *ReferenceDataResolver) Resolve(ctx context.Context, shippingMethodID string, items []ItemRef) (*ResolvedReferences, error) {
	refErr := &ports.ReferenceError{}
	resolved := &ResolvedReferences{}

	if shippingMethodID != "" {
		shipping, err := r.catalog.ShippingMethod(ctx, shippingMethodID)
		switch {
		case errors.Is(err, ports.ErrReferenceNotFound):
			refErr.Missing = append(refErr.Missing, ports.MissingReference{
				Field: "shippingMethodId",
				Kind:  "shipping method",
				ID:    shippingMethodID,
			})
		case err != nil:
			return nil, err
		default:
			resolved.Shipping = shipping
		}
	}

	ids := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok || item.ProductID == "" {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	products := map[string]*ports.ProductSnapshot{}
	if len(ids) > 0 {
		var err error
		if products, err = r.catalog.ProductsByIDs(ctx, ids); err != nil {
			return nil, err
		}
	}
	resolved.Products = products
	for i, item := range items {
		if _, ok := products[item.ProductID]; !ok && item.ProductID != "" {
			refErr.Missing = append(refErr.Missing, ports.MissingReference{
				Field: domain.ItemField(i, "productId"),
				Kind:  "product",
				ID:    item.ProductID,
			})
		}
	}

	if len(refErr.Missing) > 0 {
		return resolved, refErr
	}
	return resolved, nil
}
