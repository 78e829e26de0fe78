package migrations

import (
	"gorm.io/gorm"

	orderspostgres "github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/adapters/persistence/postgres"
)

// Run applies the schema owned by the Postgres adapters: orders, the catalog tables the
// order flows read from, and checkout idempotency keys.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(orderspostgres.Models()...)
}
