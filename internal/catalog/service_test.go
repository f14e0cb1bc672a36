package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/vendorhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorhub-backend/pkg/errors"
	"github.com/angelmondragon/vendorhub-backend/pkg/types"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  site_id TEXT NOT NULL,
  sku TEXT NOT NULL,
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  available INTEGER NOT NULL DEFAULT 0,
  description TEXT,
  msrp TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (site_id, sku)
);`, `
CREATE TABLE IF NOT EXISTS product_classifiers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  taxable INTEGER NOT NULL DEFAULT 0
);`, `
CREATE TABLE IF NOT EXISTS product_classifications (
  product_id TEXT NOT NULL,
  product_classifier_id TEXT NOT NULL,
  PRIMARY KEY (product_id, product_classifier_id)
);`}
	for _, stmt := range ddl {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(setupCatalogTestDB(t)))
	require.NoError(t, err)
	return svc
}

func TestCreateProductDerivesSlugAndSKU(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	siteID := uuid.New()

	product, err := svc.CreateProduct(ctx, siteID, ProductInput{
		Name:      "Premium Widget",
		Available: true,
		MSRP: types.MSRP{
			enums.CurrencyUSD: decimal.RequireFromString("10.00"),
			enums.CurrencyMXN: decimal.RequireFromString("21.12"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "premium-widget", product.Slug)
	assert.Regexp(t, `^[A-Z0-9]{8}$`, product.SKU)

	found, err := svc.GetProductBySKU(ctx, siteID, product.SKU)
	require.NoError(t, err)
	assert.Equal(t, product.ID, found.ID)

	msrp, ok := found.MSRP.Get(enums.CurrencyMXN)
	require.True(t, ok)
	assert.True(t, msrp.Equal(decimal.RequireFromString("21.12")))
}

func TestCreateProductRejectsUnknownCurrency(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateProduct(context.Background(), uuid.New(), ProductInput{
		Name: "Widget",
		MSRP: types.MSRP{enums.Currency("doubloons"): decimal.NewFromInt(1)},
	})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestGetProductScopesBySite(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, uuid.New(), ProductInput{Name: "Widget"})
	require.NoError(t, err)

	_, err = svc.GetProductBySKU(ctx, uuid.New(), product.SKU)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestClassifierAssignment(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	siteID := uuid.New()

	taxable, err := svc.CreateClassifier(ctx, ClassifierInput{Name: "Food", Taxable: true})
	require.NoError(t, err)

	product, err := svc.CreateProduct(ctx, siteID, ProductInput{
		Name:          "Snack Box",
		ClassifierIDs: []uuid.UUID{taxable.ID},
	})
	require.NoError(t, err)

	found, err := svc.GetProduct(ctx, siteID, product.ID)
	require.NoError(t, err)
	require.Len(t, found.Classifications, 1)
	assert.True(t, found.Classifications[0].Taxable)

	_, err = svc.CreateProduct(ctx, siteID, ProductInput{
		Name:          "Ghost",
		ClassifierIDs: []uuid.UUID{uuid.New()},
	})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestCreateClassifierRejectsDuplicateName(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateClassifier(ctx, ClassifierInput{Name: "Digital Goods"})
	require.NoError(t, err)

	_, err = svc.CreateClassifier(ctx, ClassifierInput{Name: "Digital Goods"})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeConflict, coded.Code())
}

func TestListProductsPaginates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	siteID := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := svc.CreateProduct(ctx, siteID, ProductInput{Name: fmt.Sprintf("Widget %d", i), Available: true})
		require.NoError(t, err)
	}

	first, err := svc.ListProducts(ctx, siteID, 2, "", false)
	require.NoError(t, err)
	require.Len(t, first.Products, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.ListProducts(ctx, siteID, 2, first.NextCursor, false)
	require.NoError(t, err)
	require.Len(t, second.Products, 1)
	assert.Empty(t, second.NextCursor)
}

func TestDeleteProduct(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	siteID := uuid.New()

	product, err := svc.CreateProduct(ctx, siteID, ProductInput{Name: "Widget"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, siteID, product.ID))

	err = svc.DeleteProduct(ctx, siteID, product.ID)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}
