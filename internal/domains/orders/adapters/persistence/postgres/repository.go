package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/application/types"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/domain"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists order aggregates in PostgreSQL using GORM. Line items live in a JSON
// column of the order row, so an aggregate is always read and written as a unit.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle and runs
// migrations. The connection must be opened with TranslateError so unique violations surface
// as gorm.ErrDuplicatedKey.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

type itemRecord struct {
	ProductID      string `json:"productId"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	DiscountCents  int64  `json:"discountCents"`
}

// orderRecord maps the order aggregate to the orders table.
type orderRecord struct {
	ID                  string       `gorm:"primaryKey;column:id;type:uuid"`
	OrderID             string       `gorm:"column:order_id;size:64;not null;uniqueIndex:idx_orders_order_id"`
	CustomerName        string       `gorm:"column:customer_name;size:120;not null"`
	Phone               string       `gorm:"column:phone;size:20;not null;index"`
	Division            string       `gorm:"column:division;size:80;not null"`
	District            string       `gorm:"column:district;size:80;not null"`
	PostalCode          string       `gorm:"column:postal_code;size:10;not null"`
	Address             string       `gorm:"column:address;size:500;not null"`
	Status              string       `gorm:"column:status;type:varchar(32);not null;index"`
	PaymentMethod       string       `gorm:"column:payment_method;type:varchar(32);not null"`
	ShippingMethodID    string       `gorm:"column:shipping_method_id;size:64;not null"`
	ShippingChargeCents int64        `gorm:"column:shipping_charge_cents;not null"`
	TotalAmountCents    int64        `gorm:"column:total_amount_cents;not null"`
	Items               []itemRecord `gorm:"column:items;type:jsonb;serializer:json;not null"`
	CreatedAt           time.Time    `gorm:"column:created_at;index"`
	UpdatedAt           time.Time    `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

// Models lists the records owned by this package for schema migration.
func Models() []any {
	return []any{&orderRecord{}, &shippingMethodRecord{}, &productRecord{}, &idempotencyRecord{}}
}

var sortColumns = map[string]string{
	ports.FieldCreatedAt:    "created_at",
	ports.FieldUpdatedAt:    "updated_at",
	ports.FieldTotalAmount:  "total_amount_cents",
	ports.FieldOrderID:      "order_id",
	ports.FieldStatus:       "status",
	ports.FieldCustomerName: "customer_name",
}

var filterColumns = map[string]string{
	ports.FieldOrderID:          "order_id",
	ports.FieldStatus:           "status",
	ports.FieldPaymentMethod:    "payment_method",
	ports.FieldCustomerName:     "customer_name",
	ports.FieldPhone:            "phone",
	ports.FieldDivision:         "division",
	ports.FieldDistrict:         "district",
	ports.FieldShippingMethodID: "shipping_method_id",
}

// Create inserts a new order. Uniqueness of the human identifier is enforced by the unique
// index, never by a prior read.
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*types.OrderProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	if err := order.Reconcile(); err != nil {
		return nil, err
	}
	record := toRecord(order)
	record.ID = uuid.NewString()
	now := r.now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrDuplicateKey
		}
		return nil, storageError(err)
	}
	return record.toProjection(), nil
}

// GetByID fetches an order by internal id. Ids that are not UUIDs cannot exist.
func (r *Repository) GetByID(ctx context.Context, id string) (*types.OrderProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ports.ErrNotFound
	}
	return r.first(r.db.WithContext(ctx), "id = ?", id)
}

// GetByOrderID fetches an order by its human identifier.
func (r *Repository) GetByOrderID(ctx context.Context, orderID string) (*types.OrderProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	return r.first(r.db.WithContext(ctx), "order_id = ?", orderID)
}

// Update locks the row, applies mutate and writes the editable columns back in one transaction.
func (r *Repository) Update(ctx context.Context, id string, mutate func(*domain.Order) error) (*types.OrderProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ports.ErrNotFound
	}
	var updated *types.OrderProjection
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record orderRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, "id = ?", id).Error; err != nil {
			return translateNotFound(err)
		}
		current := record.toDomain()
		next := current.Clone()
		if err := mutate(next); err != nil {
			return err
		}
		preserveImmutable(next, current)
		if err := next.Validate(); err != nil {
			return err
		}
		edited := toRecord(next)
		edited.ID = record.ID
		edited.CreatedAt = record.CreatedAt
		edited.UpdatedAt = r.now().UTC()
		if err := tx.Model(&orderRecord{}).Where("id = ?", id).Updates(map[string]any{
			"customer_name":  edited.CustomerName,
			"phone":          edited.Phone,
			"division":       edited.Division,
			"district":       edited.District,
			"postal_code":    edited.PostalCode,
			"address":        edited.Address,
			"payment_method": edited.PaymentMethod,
			"updated_at":     edited.UpdatedAt,
		}).Error; err != nil {
			return storageError(err)
		}
		updated = edited.toProjection()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateStatus swaps the status with a conditional update on the expected current status.
func (r *Repository) UpdateStatus(ctx context.Context, orderID string, from, to domain.Status) (*types.OrderProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	result := r.db.WithContext(ctx).
		Model(&orderRecord{}).
		Where("order_id = ? AND status = ?", orderID, string(from)).
		Updates(map[string]any{"status": string(to), "updated_at": r.now().UTC()})
	if result.Error != nil {
		return nil, storageError(result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByOrderID(ctx, orderID); err != nil {
			return nil, err
		}
		return nil, ports.ErrConcurrentUpdate
	}
	return r.GetByOrderID(ctx, orderID)
}

// List runs the filtered count and the page query against the same conditions.
func (r *Repository) List(ctx context.Context, query ports.ListQuery) ([]*types.OrderProjection, int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, 0, err
	}
	filtered, err := applyFilters(r.db.WithContext(ctx).Model(&orderRecord{}), query.Filters)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := filtered.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, storageError(err)
	}

	column, ok := sortColumns[query.Sort.Field]
	if !ok {
		column = "created_at"
	}
	page := filtered.Session(&gorm.Session{}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: query.Sort.Descending}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	if query.Offset > 0 {
		page = page.Offset(query.Offset)
	}
	if query.Limit > 0 {
		page = page.Limit(query.Limit)
	}
	var records []orderRecord
	if err := page.Find(&records).Error; err != nil {
		return nil, 0, storageError(err)
	}
	out := make([]*types.OrderProjection, 0, len(records))
	for i := range records {
		out = append(out, records[i].toProjection())
	}
	return out, total, nil
}

func applyFilters(db *gorm.DB, filters []ports.FieldFilter) (*gorm.DB, error) {
	for _, filter := range filters {
		column, ok := filterColumns[filter.Field]
		if !ok {
			return nil, fmt.Errorf("unsupported filter field %q", filter.Field)
		}
		switch filter.Mode {
		case ports.FilterContains:
			db = db.Where("LOWER("+column+") LIKE ?", "%"+escapeLike(strings.ToLower(filter.Value))+"%")
		default:
			db = db.Where(column+" = ?", filter.Value)
		}
	}
	return db, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *Repository) first(db *gorm.DB, query string, args ...any) (*types.OrderProjection, error) {
	var record orderRecord
	if err := db.First(&record, append([]any{query}, args...)...).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return record.toProjection(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ports.ErrNotFound
	}
	return storageError(err)
}

func storageError(err error) error {
	return fmt.Errorf("%w: %w", ports.ErrStorageUnavailable, err)
}

// preserveImmutable restores the fields a full-record edit may not change.
func preserveImmutable(next, current *domain.Order) {
	next.ID = current.ID
	next.OrderID = current.OrderID
	next.Status = current.Status
	next.Items = append([]domain.LineItem(nil), current.Items...)
	next.ShippingMethodID = current.ShippingMethodID
	next.ShippingCharge = current.ShippingCharge
	next.TotalAmount = current.TotalAmount
}

func toRecord(order *domain.Order) orderRecord {
	items := make([]itemRecord, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, itemRecord{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPriceCents: int64(item.UnitPrice),
			DiscountCents:  int64(item.Discount),
		})
	}
	return orderRecord{
		ID:                  order.ID,
		OrderID:             order.OrderID,
		CustomerName:        order.Contact.CustomerName,
		Phone:               order.Contact.Phone,
		Division:            order.Contact.Division,
		District:            order.Contact.District,
		PostalCode:          order.Contact.PostalCode,
		Address:             order.Contact.Address,
		Status:              string(order.Status),
		PaymentMethod:       string(order.PaymentMethod),
		ShippingMethodID:    order.ShippingMethodID,
		ShippingChargeCents: int64(order.ShippingCharge),
		TotalAmountCents:    int64(order.TotalAmount),
		Items:               items,
	}
}

func (r orderRecord) toDomain() *domain.Order {
	items := make([]domain.LineItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, domain.LineItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: domain.Money(item.UnitPriceCents),
			Discount:  domain.Money(item.DiscountCents),
		})
	}
	return &domain.Order{
		ID:      r.ID,
		OrderID: r.OrderID,
		Contact: domain.ShippingContact{
			CustomerName: r.CustomerName,
			Phone:        r.Phone,
			Division:     r.Division,
			District:     r.District,
			PostalCode:   r.PostalCode,
			Address:      r.Address,
		},
		Status:           domain.Status(r.Status),
		PaymentMethod:    domain.PaymentMethod(r.PaymentMethod),
		Items:            items,
		ShippingMethodID: r.ShippingMethodID,
		ShippingCharge:   domain.Money(r.ShippingChargeCents),
		TotalAmount:      domain.Money(r.TotalAmountCents),
	}
}

func (r orderRecord) toProjection() *types.OrderProjection {
	return types.NewOrderProjection(r.toDomain(), r.CreatedAt, r.UpdatedAt)
}
