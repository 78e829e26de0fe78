package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/domain"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/ports"
)

var _ ports.Catalog = (*Catalog)(nil)

// Catalog reads shipping methods and products from the storefront catalog tables.
type Catalog struct {
	db *gorm.DB
}

// NewCatalog wires a PostgreSQL-backed catalog reader.
func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

type shippingMethodRecord struct {
	ID          string `gorm:"primaryKey;column:id;size:64"`
	Name        string `gorm:"column:name;size:120;not null"`
	ChargeCents int64  `gorm:"column:charge_cents;not null"`
	Description string `gorm:"column:description"`
}

func (shippingMethodRecord) TableName() string { return "shipping_methods" }

type productRecord struct {
	ID            string         `gorm:"primaryKey;column:id;size:64"`
	Name          string         `gorm:"column:name;not null"`
	Slug          string         `gorm:"column:slug;uniqueIndex"`
	PriceCents    int64          `gorm:"column:price_cents;not null"`
	DiscountCents int64          `gorm:"column:discount_cents;not null;default:0"`
	Images        pq.StringArray `gorm:"column:images;type:text[]"`
	StockQuantity int            `gorm:"column:stock_quantity;not null;default:0"`
}

func (productRecord) TableName() string { return "products" }

// ShippingMethod loads one shipping method.
func (c *Catalog) ShippingMethod(ctx context.Context, id string) (*ports.ShippingMethod, error) {
	if err := c.ensureDB(); err != nil {
		return nil, err
	}
	var record shippingMethodRecord
	if err := c.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrReferenceNotFound
		}
		return nil, storageError(err)
	}
	return &ports.ShippingMethod{
		ID:          record.ID,
		Name:        record.Name,
		Charge:      domain.Money(record.ChargeCents),
		Description: record.Description,
	}, nil
}

// ProductsByIDs loads every requested product with a single query.
func (c *Catalog) ProductsByIDs(ctx context.Context, ids []string) (map[string]*ports.ProductSnapshot, error) {
	if err := c.ensureDB(); err != nil {
		return nil, err
	}
	out := make(map[string]*ports.ProductSnapshot, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var records []productRecord
	if err := c.db.WithContext(ctx).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, storageError(err)
	}
	for _, record := range records {
		out[record.ID] = &ports.ProductSnapshot{
			ID:            record.ID,
			Name:          record.Name,
			Slug:          record.Slug,
			Price:         domain.Money(record.PriceCents),
			Discount:      domain.Money(record.DiscountCents),
			Images:        append([]string{}, record.Images...),
			StockQuantity: record.StockQuantity,
		}
	}
	return out, nil
}

// Upsert writes catalog records, replacing existing rows with the same id. It backs seeding
// and tests; the order flows never write to the catalog.
func (c *Catalog) Upsert(ctx context.Context, methods []ports.ShippingMethod, products []ports.ProductSnapshot) error {
	if err := c.ensureDB(); err != nil {
		return err
	}
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range methods {
			record := shippingMethodRecord{ID: m.ID, Name: m.Name, ChargeCents: int64(m.Charge), Description: m.Description}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&record).Error; err != nil {
				return fmt.Errorf("upsert shipping method %s: %w", m.ID, err)
			}
		}
		for _, p := range products {
			record := productRecord{
				ID:            p.ID,
				Name:          p.Name,
				Slug:          p.Slug,
				PriceCents:    int64(p.Price),
				DiscountCents: int64(p.Discount),
				Images:        pq.StringArray(append([]string{}, p.Images...)),
				StockQuantity: p.StockQuantity,
			}
			if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&record).Error; err != nil {
				return fmt.Errorf("upsert product %s: %w", p.ID, err)
			}
		}
		return nil
	})
}

func (c *Catalog) ensureDB() error {
	if c == nil || c.db == nil {
		return errors.New("postgres catalog not configured")
	}
	return nil
}
