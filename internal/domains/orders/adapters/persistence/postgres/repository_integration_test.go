//go:build integration

package postgres

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/domain"
	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/ports"
)

func setupOrdersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("orders_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(Models()...))

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}
	return db, cleanup
}

func newTestOrder(t *testing.T, orderID, customer string) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder(orderID,
		domain.ShippingContact{
			CustomerName: customer,
			Phone:        "+8801911111111",
			Division:     "Chattogram",
			District:     "Cox's Bazar",
			PostalCode:   "4700",
			Address:      "Kolatoli Road",
		},
		domain.PaymentCashOnDelivery,
		[]domain.LineItem{
			{ProductID: "p1", Quantity: 2, UnitPrice: domain.MustMoney("100"), Discount: domain.MustMoney("10")},
			{ProductID: "p2", Quantity: 1, UnitPrice: domain.MustMoney("250.50")},
		},
		"outside-dhaka", domain.MustMoney("120"), domain.MustMoney("560.50"),
	)
	require.NoError(t, err)
	return order
}

func TestRepository_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	repo := NewRepository(db)
	ctx := context.Background()

	saved, err := repo.Create(ctx, newTestOrder(t, "ORD-1", "Ayesha"))
	require.NoError(t, err)
	require.NotEmpty(t, saved.Entity.ID)
	assert.False(t, saved.Metadata.CreatedAt.IsZero())

	byID, err := repo.GetByID(ctx, saved.Entity.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Entity.Items, byID.Entity.Items)
	assert.Equal(t, domain.MustMoney("560.50"), byID.Entity.TotalAmount)

	byOrderID, err := repo.GetByOrderID(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, saved.Entity.ID, byOrderID.Entity.ID)

	_, err = repo.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ports.ErrNotFound)
	_, err = repo.GetByOrderID(ctx, "ORD-404")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_ConcurrentDuplicateOrderID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	repo := NewRepository(db)
	ctx := context.Background()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	orders := make([]*domain.Order, attempts)
	for i := range orders {
		orders[i] = newTestOrder(t, "ORD-DUP", fmt.Sprintf("Customer %d", i))
	}
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Create(ctx, orders[i])
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ports.ErrDuplicateKey)
	}
	assert.Equal(t, 1, succeeded)
}

func TestRepository_UpdateStatusCompareAndSwap(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, newTestOrder(t, "ORD-CAS", "Tanvir"))
	require.NoError(t, err)

	updated, err := repo.UpdateStatus(ctx, "ORD-CAS", domain.StatusPending, domain.StatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, updated.Entity.Status)

	_, err = repo.UpdateStatus(ctx, "ORD-CAS", domain.StatusPending, domain.StatusShipped)
	assert.ErrorIs(t, err, ports.ErrConcurrentUpdate)

	_, err = repo.UpdateStatus(ctx, "ORD-MISSING", domain.StatusPending, domain.StatusShipped)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_UpdateKeepsImmutableFields(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	repo := NewRepository(db)
	ctx := context.Background()

	saved, err := repo.Create(ctx, newTestOrder(t, "ORD-EDIT", "Sadia"))
	require.NoError(t, err)

	updated, err := repo.Update(ctx, saved.Entity.ID, func(order *domain.Order) error {
		order.Contact.Address = "Sugandha Point"
		order.TotalAmount = 1
		order.OrderID = "ORD-HIJACK"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Sugandha Point", updated.Entity.Contact.Address)
	assert.Equal(t, "ORD-EDIT", updated.Entity.OrderID)
	assert.Equal(t, domain.MustMoney("560.50"), updated.Entity.TotalAmount)

	_, err = repo.Update(ctx, saved.Entity.ID, func(order *domain.Order) error {
		order.Contact.Phone = "nope"
		return nil
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	stored, err := repo.GetByID(ctx, saved.Entity.ID)
	require.NoError(t, err)
	assert.Equal(t, "+8801911111111", stored.Entity.Contact.Phone)
}

func TestRepository_ListFiltersSortsAndCounts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	repo := NewRepository(db)
	clock := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	repo.WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	})
	ctx := context.Background()

	for i, name := range []string{"Rafiq Islam", "Rafia Khan", "Shakil Ahmed", "Nafisa Rafi", "Imran 100%_"} {
		_, err := repo.Create(ctx, newTestOrder(t, fmt.Sprintf("ORD-%02d", i), name))
		require.NoError(t, err)
	}

	page, total, err := repo.List(ctx, ports.ListQuery{
		Filters: []ports.FieldFilter{{Field: ports.FieldCustomerName, Value: "RAFI", Mode: ports.FilterContains}},
		Sort:    ports.SortSpec{Field: ports.FieldCreatedAt, Descending: true},
		Limit:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, "ORD-03", page[0].Entity.OrderID)
	assert.Equal(t, "ORD-01", page[1].Entity.OrderID)

	rest, _, err := repo.List(ctx, ports.ListQuery{
		Filters: []ports.FieldFilter{{Field: ports.FieldCustomerName, Value: "rafi", Mode: ports.FilterContains}},
		Sort:    ports.SortSpec{Field: ports.FieldCreatedAt, Descending: true},
		Offset:  2,
		Limit:   2,
	})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "ORD-00", rest[0].Entity.OrderID)

	literal, total, err := repo.List(ctx, ports.ListQuery{
		Filters: []ports.FieldFilter{{Field: ports.FieldCustomerName, Value: "%_", Mode: ports.FilterContains}},
		Limit:   10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "ORD-04", literal[0].Entity.OrderID)

	exact, total, err := repo.List(ctx, ports.ListQuery{
		Filters: []ports.FieldFilter{{Field: ports.FieldStatus, Value: string(domain.StatusPending)}},
		Sort:    ports.SortSpec{Field: ports.FieldOrderID},
		Limit:   10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Equal(t, "ORD-00", exact[0].Entity.OrderID)
}

func TestCatalog_ReadsSeededRecords(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	catalog := NewCatalog(db)
	ctx := context.Background()

	require.NoError(t, catalog.Upsert(ctx,
		[]ports.ShippingMethod{{ID: "outside-dhaka", Name: "Outside Dhaka", Charge: domain.MustMoney("120")}},
		[]ports.ProductSnapshot{
			{ID: "p1", Name: "Lungi", Slug: "lungi", Price: domain.MustMoney("100"), Discount: domain.MustMoney("5"), Images: []string{"a.jpg", "b.jpg"}},
			{ID: "p2", Name: "Gamchha", Slug: "gamchha", Price: domain.MustMoney("250.50")},
		},
	))

	method, err := catalog.ShippingMethod(ctx, "outside-dhaka")
	require.NoError(t, err)
	assert.Equal(t, domain.MustMoney("120"), method.Charge)

	_, err = catalog.ShippingMethod(ctx, "drone")
	assert.ErrorIs(t, err, ports.ErrReferenceNotFound)

	products, err := catalog.ProductsByIDs(ctx, []string{"p1", "p2", "p3"})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, products["p1"].Images)
	assert.Equal(t, domain.MustMoney("5"), products["p1"].Discount)
}

func TestIdempotencyStore_ClaimAndRelease(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	store := NewIdempotencyStore(db)
	ctx := context.Background()

	missing, err := store.Get(ctx, "key-1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	held, err := store.Claim(ctx, ports.IdempotencyRecord{Key: "key-1", RequestHash: "hash-a", OrderRef: "ORD-A"})
	require.NoError(t, err)
	assert.Nil(t, held)

	held, err = store.Claim(ctx, ports.IdempotencyRecord{Key: "key-1", RequestHash: "hash-b", OrderRef: "ORD-B"})
	require.NoError(t, err)
	require.NotNil(t, held)
	assert.Equal(t, "hash-a", held.RequestHash)
	assert.Equal(t, "ORD-A", held.OrderRef)

	require.NoError(t, store.Release(ctx, "key-1", "ORD-B"))
	still, err := store.Get(ctx, "key-1")
	require.NoError(t, err)
	require.NotNil(t, still)

	require.NoError(t, store.Release(ctx, "key-1", "ORD-A"))
	gone, err := store.Get(ctx, "key-1")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestIdempotencyStore_PurgeBefore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()
	store := NewIdempotencyStore(db)
	ctx := context.Background()
	orderRef := "ORD-PURGE"

	_, err := store.Claim(ctx, ports.IdempotencyRecord{Key: "old", RequestHash: "hash-a", OrderRef: orderRef})
	require.NoError(t, err)
	require.NoError(t, db.Model(&idempotencyRecord{}).Where("key = ?", "old").
		Update("created_at", time.Now().Add(-48*time.Hour)).Error)
	_, err = store.Claim(ctx, ports.IdempotencyRecord{Key: "fresh", RequestHash: "hash-b", OrderRef: orderRef})
	require.NoError(t, err)

	purged, err := store.PurgeBefore(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	gone, err := store.Get(ctx, "old")
	require.NoError(t, err)
	assert.Nil(t, gone)
	kept, err := store.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, kept)
}
