package application

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	types "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/application/types"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/domain"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/ports"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Projector builds the denormalized order views used by list and detail displays. Product
// references are expanded here, on the read side, instead of inside the storage query.
type Projector struct {
	repo         ports.Repository
	catalog      ports.Catalog
	defaultLimit int
}

// NewProjector wires the projector. A non-positive default page size selects DefaultPageSize.
func NewProjector(repo ports.Repository, catalog ports.Catalog, defaultLimit int) *Projector {
	if defaultLimit <= 0 || defaultLimit > MaxPageSize {
		defaultLimit = DefaultPageSize
	}
	return &Projector{repo: repo, catalog: catalog, defaultLimit: defaultLimit}
}

// Project runs a list query and expands the page. The count covers every order matching the
// filters, independent of pagination.
func (p *Projector) Project(ctx context.Context, input types.ListOrdersInput) (*types.OrderPage, error) {
	query, page, limit, err := p.buildQuery(input)
	if err != nil {
		return nil, err
	}
	records, total, err := p.repo.List(ctx, query)
	if err != nil {
		return nil, err
	}
	products, err := p.loadProducts(ctx, records...)
	if err != nil {
		return nil, err
	}
	views := make([]*types.OrderView, 0, len(records))
	for _, record := range records {
		views = append(views, buildView(record, products))
	}
	return &types.OrderPage{
		Orders: views,
		Pagination: types.Pagination{
			Page:       page,
			Limit:      limit,
			TotalItems: total,
			TotalPages: totalPages(total, limit),
		},
	}, nil
}

// View projects a single order. Products are only expanded when populate is set.
func (p *Projector) View(ctx context.Context, record *types.OrderProjection, populate bool) (*types.OrderView, error) {
	var products map[string]*ports.ProductSnapshot
	if populate {
		var err error
		if products, err = p.loadProducts(ctx, record); err != nil {
			return nil, err
		}
	}
	return buildView(record, products), nil
}

func (p *Projector) buildQuery(input types.ListOrdersInput) (ports.ListQuery, int, int, error) {
	verr := &domain.ValidationError{}
	page := input.Page
	if page == 0 {
		page = 1
	}
	if page < 0 {
		verr.Add("page", "must be at least 1")
	}
	limit := input.Limit
	if limit == 0 {
		limit = p.defaultLimit
	}
	if limit < 0 || limit > MaxPageSize {
		verr.Add("limit", fmt.Sprintf("must be between 1 and %d", MaxPageSize))
	} else if page > 0 && page > maxPage(limit) {
		verr.Add("page", fmt.Sprintf("must be at most %d", maxPage(limit)))
	}

	sortSpec := ports.SortSpec{Field: ports.FieldCreatedAt, Descending: true}
	if input.SortBy != "" {
		if !ports.SortableFields[input.SortBy] {
			verr.Add("sortBy", "is not a sortable field")
		}
		sortSpec = ports.SortSpec{Field: input.SortBy}
	}
	switch strings.ToLower(input.SortOrder) {
	case "":
	case "asc":
		sortSpec.Descending = false
	case "desc":
		sortSpec.Descending = true
	default:
		verr.Add("sortOrder", "must be asc or desc")
	}

	var filters []ports.FieldFilter
	filters = appendFilters(filters, verr, "filter", input.Filters, ports.FilterExact)
	filters = appendFilters(filters, verr, "search", input.Search, ports.FilterContains)

	if err := verr.Err(); err != nil {
		return ports.ListQuery{}, 0, 0, err
	}
	return ports.ListQuery{
		Filters: filters,
		Sort:    sortSpec,
		Offset:  (page - 1) * limit,
		Limit:   limit,
	}, page, limit, nil
}

func appendFilters(dst []ports.FieldFilter, verr *domain.ValidationError, prefix string, values map[string]string, mode ports.FilterMode) []ports.FieldFilter {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		value := strings.TrimSpace(values[key])
		if value == "" {
			continue
		}
		if !ports.FilterableFields[key] {
			verr.Add(prefix+"."+key, "is not a filterable field")
			continue
		}
		if key == ports.FieldStatus && mode == ports.FilterExact {
			status, err := domain.ParseStatus(value)
			if err != nil {
				verr.Add(prefix+"."+key, err.Error())
				continue
			}
			value = string(status)
		}
		dst = append(dst, ports.FieldFilter{Field: key, Value: value, Mode: mode})
	}
	return dst
}

func (p *Projector) loadProducts(ctx context.Context, records ...*types.OrderProjection) (map[string]*ports.ProductSnapshot, error) {
	var ids []string
	seen := map[string]struct{}{}
	for _, record := range records {
		for _, id := range record.Entity.ProductIDs() {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return map[string]*ports.ProductSnapshot{}, nil
	}
	return p.catalog.ProductsByIDs(ctx, ids)
}

func buildView(record *types.OrderProjection, products map[string]*ports.ProductSnapshot) *types.OrderView {
	order := record.Entity
	items := make([]types.ItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, types.ItemView{
			ProductID: item.ProductID,
			Product:   productView(products[item.ProductID]),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
			Subtotal:  item.Subtotal(),
		})
	}
	return &types.OrderView{
		ID:               order.ID,
		OrderID:          order.OrderID,
		CustomerName:     order.Contact.CustomerName,
		Phone:            order.Contact.Phone,
		Division:         order.Contact.Division,
		District:         order.Contact.District,
		PostalCode:       order.Contact.PostalCode,
		Address:          order.Contact.Address,
		Status:           order.Status,
		PaymentMethod:    order.PaymentMethod,
		ShippingMethodID: order.ShippingMethodID,
		ShippingCharge:   order.ShippingCharge,
		TotalAmount:      order.TotalAmount,
		Items:            items,
		Tracking:         domain.TrackingSteps(order.Status),
		CreatedAt:        record.Metadata.CreatedAt,
		UpdatedAt:        record.Metadata.UpdatedAt,
	}
}

func productView(product *ports.ProductSnapshot) *types.ProductView {
	if product == nil {
		return nil
	}
	return &types.ProductView{
		ID:       product.ID,
		Name:     product.Name,
		Slug:     product.Slug,
		Price:    product.Price,
		Discount: product.Discount,
		Images:   append([]string(nil), product.Images...),
	}
}

// maxPage is the largest page whose offset still fits in an int.
func maxPage(limit int) int {
	return math.MaxInt/limit + 1
}

func totalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
