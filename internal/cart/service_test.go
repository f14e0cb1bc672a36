package cart

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/vendorhub-backend/internal/offers"
	"github.com/angelmondragon/vendorhub-backend/pkg/db"
	"github.com/angelmondragon/vendorhub-backend/pkg/db/models"
	"github.com/angelmondragon/vendorhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorhub-backend/pkg/errors"
	"github.com/angelmondragon/vendorhub-backend/pkg/types"
)

type noopUnlock struct{}

func (noopUnlock) Release(ctx context.Context) error { return nil }

type fakeLocker struct {
	err   error
	locks int
}

func (f *fakeLocker) Lock(ctx context.Context, profileID uuid.UUID) (Unlocker, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.locks++
	return noopUnlock{}, nil
}

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS customer_profiles (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  site_id TEXT NOT NULL,
  currency TEXT NOT NULL DEFAULT 'usd',
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (user_id, site_id)
);`, `
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
);`, `
CREATE TABLE IF NOT EXISTS offers (
  id TEXT PRIMARY KEY,
  site_id TEXT NOT NULL,
  sku TEXT NOT NULL,
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  start_date DATETIME NOT NULL,
  end_date DATETIME,
  terms TEXT NOT NULL DEFAULT 'perpetual',
  term_details TEXT,
  available INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (site_id, sku)
);`, `
CREATE TABLE IF NOT EXISTS offer_products (
  offer_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  PRIMARY KEY (offer_id, product_id)
);`, `
CREATE TABLE IF NOT EXISTS prices (
  id TEXT PRIMARY KEY,
  offer_id TEXT NOT NULL,
  cost NUMERIC NOT NULL,
  currency TEXT NOT NULL DEFAULT 'usd',
  start_date DATETIME NOT NULL,
  end_date DATETIME,
  priority INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS invoices (
  id TEXT PRIMARY KEY,
  profile_id TEXT NOT NULL,
  site_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'cart',
  ordered_date DATETIME,
  currency TEXT NOT NULL DEFAULT 'usd',
  subtotal NUMERIC NOT NULL DEFAULT 0,
  tax NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL DEFAULT 0,
  shipping_address_id TEXT,
  customer_notes TEXT,
  vendor_notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  invoice_id TEXT NOT NULL,
  offer_id TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  price_id TEXT,
  unit_price NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (invoice_id, offer_id)
);`}
	for _, stmt := range ddl {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

type cartFixture struct {
	conn    *gorm.DB
	svc     Service
	offers  offers.Service
	locker  *fakeLocker
	siteID  uuid.UUID
	profile *models.CustomerProfile
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()
	return newCartFixtureWithTax(t, decimal.Zero)
}

func newCartFixtureWithTax(t *testing.T, taxRate decimal.Decimal) *cartFixture {
	t.Helper()
	conn := setupCartTestDB(t)

	offerSvc, err := offers.NewService(offers.NewRepository(conn))
	require.NoError(t, err)

	locker := &fakeLocker{}
	svc, err := NewService(ServiceParams{
		Repo:    NewRepository(conn),
		Tx:      db.NewFromConn(conn),
		Offers:  offerSvc,
		Locker:  locker,
		TaxRate: taxRate,
	})
	require.NoError(t, err)

	siteID := uuid.New()
	user := &models.User{
		ID:           uuid.New(),
		Username:     "shopper",
		Email:        "shopper@example.com",
		PasswordHash: "hash",
		IsActive:     true,
	}
	require.NoError(t, conn.Create(user).Error)

	profile := &models.CustomerProfile{
		ID:       uuid.New(),
		UserID:   user.ID,
		SiteID:   siteID,
		Currency: enums.CurrencyUSD,
		User:     user,
	}
	require.NoError(t, conn.Omit("User").Create(profile).Error)

	return &cartFixture{
		conn:    conn,
		svc:     svc,
		offers:  offerSvc,
		locker:  locker,
		siteID:  siteID,
		profile: profile,
	}
}

func (f *cartFixture) mustOffer(t *testing.T, name, cost string, taxable bool) *models.Offer {
	t.Helper()

	product := &models.Product{
		ID:        uuid.New(),
		SiteID:    f.siteID,
		SKU:       fmt.Sprintf("P-%s", uuid.NewString()[:8]),
		Name:      name,
		Slug:      name,
		Available: true,
		MSRP: types.MSRP{
			enums.CurrencyUSD: decimal.RequireFromString(cost),
		},
	}
	require.NoError(t, f.conn.Create(product).Error)

	if taxable {
		classifier := &models.ProductClassifier{ID: uuid.New(), Name: fmt.Sprintf("Taxed %s", name), Taxable: true}
		require.NoError(t, f.conn.Create(classifier).Error)
		require.NoError(t, f.conn.Model(product).Association("Classifications").Append(classifier))
	}

	offer, err := f.offers.CreateOffer(context.Background(), f.siteID, offers.OfferInput{
		ProductIDs: []uuid.UUID{product.ID},
		Available:  true,
	})
	require.NoError(t, err)

	_, err = f.offers.AddPrice(context.Background(), f.siteID, offer.ID, offers.PriceInput{
		Cost:      decimal.RequireFromString(cost),
		Currency:  enums.CurrencyUSD,
		StartDate: time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)
	return offer
}

func TestAddItemCreatesCartAndIncrementsDuplicates(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	offer := f.mustOffer(t, "Widget", "50.00", false)

	invoice, err := f.svc.AddItem(ctx, f.profile, f.siteID, offer.SKU)
	require.NoError(t, err)
	assert.Equal(t, enums.InvoiceStatusCart, invoice.Status)

	again, err := f.svc.AddItem(ctx, f.profile, f.siteID, offer.SKU)
	require.NoError(t, err)
	assert.Equal(t, invoice.ID, again.ID)

	var items []models.OrderItem
	require.NoError(t, f.conn.Where("invoice_id = ?", invoice.ID).Find(&items).Error)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, again.Total.Equal(decimal.RequireFromString("100.00")), "got %s", again.Total)
}

func TestGetCartRendersTwoDecimalStrings(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()

	single := f.mustOffer(t, "Single", "50.00", false)
	double := f.mustOffer(t, "Double", "90.00", false)

	_, err := f.svc.AddItem(ctx, f.profile, f.siteID, single.SKU)
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, f.profile, f.siteID, double.SKU)
	require.NoError(t, err)
	_, err = f.svc.IncreaseQuantity(ctx, f.profile, f.siteID, double.SKU)
	require.NoError(t, err)

	view, err := f.svc.GetCart(ctx, f.profile, f.siteID)
	require.NoError(t, err)
	assert.Equal(t, "shopper", view.Username)
	assert.Equal(t, "230.00", view.Total)
	require.Len(t, view.OrderItems, 2)

	byName := map[string]ItemView{}
	for _, item := range view.OrderItems {
		byName[item.Name] = item
	}
	assert.Equal(t, "50.00", byName["Single"].Price)
	assert.Equal(t, "50.00", byName["Single"].ItemTotal)
	assert.Equal(t, 1, byName["Single"].Quantity)
	assert.Equal(t, "90.00", byName["Double"].Price)
	assert.Equal(t, "180.00", byName["Double"].ItemTotal)
	assert.Equal(t, 2, byName["Double"].Quantity)
}

func TestGetCartWithoutInvoiceIsNotFound(t *testing.T) {
	f := newCartFixture(t)

	_, err := f.svc.GetCart(context.Background(), f.profile, f.siteID)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestRemoveItemStatusRules(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	offer := f.mustOffer(t, "Widget", "50.00", false)

	// No cart yet: invalid state, not a 404.
	_, err := f.svc.RemoveItem(ctx, f.profile, f.siteID, offer.SKU)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeInvalidState, coded.Code())

	other := f.mustOffer(t, "Other", "10.00", false)
	_, err = f.svc.AddItem(ctx, f.profile, f.siteID, other.SKU)
	require.NoError(t, err)

	// Cart exists but the offer is not in it.
	_, err = f.svc.RemoveItem(ctx, f.profile, f.siteID, offer.SKU)
	coded = pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())

	invoice, err := f.svc.RemoveItem(ctx, f.profile, f.siteID, other.SKU)
	require.NoError(t, err)
	assert.True(t, invoice.Total.IsZero())

	var count int64
	require.NoError(t, f.conn.Model(&models.OrderItem{}).Where("invoice_id = ?", invoice.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestDecreaseQuantityDeletesAtOne(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	offer := f.mustOffer(t, "Widget", "50.00", false)

	_, err := f.svc.AddItem(ctx, f.profile, f.siteID, offer.SKU)
	require.NoError(t, err)
	_, err = f.svc.IncreaseQuantity(ctx, f.profile, f.siteID, offer.SKU)
	require.NoError(t, err)

	invoice, err := f.svc.DecreaseQuantity(ctx, f.profile, f.siteID, offer.SKU)
	require.NoError(t, err)

	var item models.OrderItem
	require.NoError(t, f.conn.First(&item, "invoice_id = ?", invoice.ID).Error)
	assert.Equal(t, 1, item.Quantity)

	_, err = f.svc.DecreaseQuantity(ctx, f.profile, f.siteID, offer.SKU)
	require.NoError(t, err)

	var count int64
	require.NoError(t, f.conn.Model(&models.OrderItem{}).Where("invoice_id = ?", invoice.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	// The line is gone, so another decrement is a 404.
	_, err = f.svc.DecreaseQuantity(ctx, f.profile, f.siteID, offer.SKU)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestAddItemRejectsUnavailableOffer(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	offer := f.mustOffer(t, "Widget", "50.00", false)

	require.NoError(t, f.conn.Model(&models.Offer{}).Where("id = ?", offer.ID).Update("available", false).Error)

	_, err := f.svc.AddItem(ctx, f.profile, f.siteID, offer.SKU)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())

	_, err = f.svc.AddItem(ctx, f.profile, f.siteID, "NOPE1234")
	coded = pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestPriceSnapshotSurvivesPriceChanges(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	offer := f.mustOffer(t, "Widget", "50.00", false)

	_, err := f.svc.AddItem(ctx, f.profile, f.siteID, offer.SKU)
	require.NoError(t, err)

	// A better-priority price lands after the snapshot.
	_, err = f.offers.AddPrice(ctx, f.siteID, offer.ID, offers.PriceInput{
		Cost:      decimal.RequireFromString("99.00"),
		Currency:  enums.CurrencyUSD,
		StartDate: time.Now().Add(-time.Minute),
		Priority:  5,
	})
	require.NoError(t, err)

	invoice, err := f.svc.IncreaseQuantity(ctx, f.profile, f.siteID, offer.SKU)
	require.NoError(t, err)
	assert.True(t, invoice.Total.Equal(decimal.RequireFromString("100.00")), "got %s", invoice.Total)
}

func TestTaxableItemsAccrueTax(t *testing.T) {
	f := newCartFixtureWithTax(t, decimal.RequireFromString("0.10"))
	ctx := context.Background()

	taxed := f.mustOffer(t, "Snacks", "50.00", true)
	untaxed := f.mustOffer(t, "Ebook", "10.00", false)

	_, err := f.svc.AddItem(ctx, f.profile, f.siteID, taxed.SKU)
	require.NoError(t, err)
	invoice, err := f.svc.AddItem(ctx, f.profile, f.siteID, untaxed.SKU)
	require.NoError(t, err)

	assert.True(t, invoice.Subtotal.Equal(decimal.RequireFromString("60.00")), "subtotal %s", invoice.Subtotal)
	assert.True(t, invoice.Tax.Equal(decimal.RequireFromString("5.00")), "tax %s", invoice.Tax)
	assert.True(t, invoice.Total.Equal(decimal.RequireFromString("65.00")), "total %s", invoice.Total)
}

func TestLockConflictBlocksMutation(t *testing.T) {
	f := newCartFixture(t)
	offer := f.mustOffer(t, "Widget", "50.00", false)

	f.locker.err = pkgerrors.New(pkgerrors.CodeConflict, "another mutation is in progress")

	_, err := f.svc.AddItem(context.Background(), f.profile, f.siteID, offer.SKU)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeConflict, coded.Code())
}
