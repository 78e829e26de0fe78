//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "orders-api"
	ConsumerName = "storefront-web"

	StateCatalogSeeded = "catalog with inside-dhaka shipping and product p1"
	StateOrderExists   = "order ORD-PACT-1 exists"
	StateOrderMissing  = "no order ORD-MISSING"
)

const (
	ExistingOrderID = "ORD-PACT-1"
	MissingOrderID  = "ORD-MISSING"

	ShippingMethodID = "inside-dhaka"
	ProductID        = "p1"
	AdminRole        = "ADMIN"
)

// Catalog prices used by both sides of the contract, in major units.
const (
	ShippingCharge = 60.0
	UnitPrice      = 1200.0
	UnitDiscount   = 100.0
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the storefront consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleCheckoutPayload is a checkout of two p1 units shipped inside Dhaka. Its total
// reconciles to 2 × 1200 − 200 + 60.
func ExampleCheckoutPayload() map[string]any {
	return map[string]any{
		"customerName":     "Karim Hossain",
		"phone":            "01712345678",
		"division":         "Dhaka",
		"district":         "Gazipur",
		"postalCode":       "1700",
		"address":          "Tongi, Station Road",
		"paymentMethod":    "CASH_ON_DELIVERY",
		"shippingMethodId": ShippingMethodID,
		"items": []map[string]any{
			{"productId": ProductID, "quantity": 2, "unitPrice": UnitPrice, "discount": 2 * UnitDiscount},
		},
		"totalAmount": 2*UnitPrice - 2*UnitDiscount + ShippingCharge,
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
