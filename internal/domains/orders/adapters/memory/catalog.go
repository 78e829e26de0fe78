package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/domain"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/ports"
)

var _ ports.Catalog = (*Catalog)(nil)

// Catalog is an in-memory catalog for development and tests.
type Catalog struct {
	mu       sync.RWMutex
	shipping map[string]ports.ShippingMethod
	products map[string]ports.ProductSnapshot
}

// NewCatalog constructs an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		shipping: map[string]ports.ShippingMethod{},
		products: map[string]ports.ProductSnapshot{},
	}
}

// PutShippingMethod adds or replaces a shipping method.
func (c *Catalog) PutShippingMethod(method ports.ShippingMethod) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shipping[method.ID] = method
}

// PutProduct adds or replaces a product.
func (c *Catalog) PutProduct(product ports.ProductSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	product.Images = append([]string(nil), product.Images...)
	c.products[product.ID] = product
}

// RemoveProduct deletes a product.
func (c *Catalog) RemoveProduct(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.products, id)
}

func (c *Catalog) ShippingMethod(_ context.Context, id string) (*ports.ShippingMethod, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	method, ok := c.shipping[id]
	if !ok {
		return nil, ports.ErrReferenceNotFound
	}
	return &method, nil
}

func (c *Catalog) ProductsByIDs(_ context.Context, ids []string) (map[string]*ports.ProductSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]*ports.ProductSnapshot, len(ids))
	for _, id := range ids {
		product, ok := c.products[id]
		if !ok {
			continue
		}
		product.Images = append([]string(nil), product.Images...)
		out[id] = &product
	}
	return out, nil
}

type seedFile struct {
	ShippingMethods []struct {
		ID          string          `json:"id"`
		Name        string          `json:"name"`
		Charge      decimal.Decimal `json:"charge"`
		Description string          `json:"description"`
	} `json:"shippingMethods"`
	Products []struct {
		ID            string          `json:"id"`
		Name          string          `json:"name"`
		Slug          string          `json:"slug"`
		Price         decimal.Decimal `json:"price"`
		Discount      decimal.Decimal `json:"discount"`
		Images        []string        `json:"images"`
		StockQuantity int             `json:"stockQuantity"`
	} `json:"products"`
}

// LoadSeedFile fills the catalog from a JSON document with "shippingMethods" and "products" arrays.
func (c *Catalog) LoadSeedFile(path string) error {
	methods, products, err := ReadSeedFile(path)
	if err != nil {
		return err
	}
	for _, m := range methods {
		c.PutShippingMethod(m)
	}
	for _, p := range products {
		c.PutProduct(p)
	}
	return nil
}

// ReadSeedFile decodes a catalog seed document. Amounts are decimal major units.
func ReadSeedFile(path string) ([]ports.ShippingMethod, []ports.ProductSnapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read catalog seed: %w", err)
	}
	var seed seedFile
	if err := json.Unmarshal(raw, &seed); err != nil {
		return nil, nil, fmt.Errorf("decode catalog seed: %w", err)
	}
	methods := make([]ports.ShippingMethod, 0, len(seed.ShippingMethods))
	for _, m := range seed.ShippingMethods {
		charge, err := domain.MoneyFromDecimal(m.Charge)
		if err != nil {
			return nil, nil, fmt.Errorf("shipping method %s: %w", m.ID, err)
		}
		methods = append(methods, ports.ShippingMethod{ID: m.ID, Name: m.Name, Charge: charge, Description: m.Description})
	}
	products := make([]ports.ProductSnapshot, 0, len(seed.Products))
	for _, p := range seed.Products {
		price, err := domain.MoneyFromDecimal(p.Price)
		if err != nil {
			return nil, nil, fmt.Errorf("product %s: %w", p.ID, err)
		}
		discount, err := domain.MoneyFromDecimal(p.Discount)
		if err != nil {
			return nil, nil, fmt.Errorf("product %s: %w", p.ID, err)
		}
		products = append(products, ports.ProductSnapshot{
			ID:            p.ID,
			Name:          p.Name,
			Slug:          p.Slug,
			Price:         price,
			Discount:      discount,
			Images:        p.Images,
			StockQuantity: p.StockQuantity,
		})
	}
	return methods, products, nil
}
