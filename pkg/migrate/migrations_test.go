package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/vendorhub-backend/pkg/migrate"
)

func TestMigrationFilenamesAndHeadersAreValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}

func TestInvoiceMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_invoices_and_order_items.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS invoices",
		"CREATE TABLE IF NOT EXISTS order_items",
		"CONSTRAINT order_items_invoice_offer_key UNIQUE (invoice_id, offer_id)",
		"CHECK (quantity >= 1)",
		"invoices_profile_open_cart_key",
		"WHERE status = 'cart'",
		"DROP TABLE IF EXISTS order_items",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOfferMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_offers_and_prices.sql")

	checks := []string{
		"CONSTRAINT offers_site_sku_key UNIQUE (site_id, sku)",
		"cost numeric(12,2) NOT NULL",
		"CHECK (cost >= 0)",
		"FOREIGN KEY (offer_id) REFERENCES offers(id) ON DELETE CASCADE",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
