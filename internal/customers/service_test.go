package customers

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/vendorhub-backend/pkg/db/models"
	"github.com/angelmondragon/vendorhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorhub-backend/pkg/errors"
)

func setupCustomersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE IF NOT EXISTS sites (
  id TEXT PRIMARY KEY,
  domain TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`, `
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
CREATE TABLE IF NOT EXISTS addresses (
  id TEXT PRIMARY KEY,
  profile_id TEXT NOT NULL,
  name TEXT,
  line1 TEXT NOT NULL,
  line2 TEXT,
  city TEXT NOT NULL,
  state TEXT,
  postal_code TEXT NOT NULL,
  country TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`}
	for _, stmt := range ddl {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

func mustCreateTestUser(t *testing.T, conn *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Username:     fmt.Sprintf("shopper_%s", uuid.NewString()[:8]),
		Email:        fmt.Sprintf("vh_test_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		IsActive:     true,
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := setupCustomersTestDB(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc, conn
}

func TestGetOrCreateProfileIsIdempotent(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	user := mustCreateTestUser(t, conn)
	siteID := uuid.New()

	first, err := svc.GetOrCreateProfile(ctx, user.ID, siteID)
	require.NoError(t, err)
	require.Equal(t, enums.DefaultCurrency, first.Currency)

	second, err := svc.GetOrCreateProfile(ctx, user.ID, siteID)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, conn.Model(&models.CustomerProfile{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestGetOrCreateProfileScopesPerSite(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	user := mustCreateTestUser(t, conn)

	first, err := svc.GetOrCreateProfile(ctx, user.ID, uuid.New())
	require.NoError(t, err)
	second, err := svc.GetOrCreateProfile(ctx, user.ID, uuid.New())
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
}

func TestSetCurrencyRejectsUnknown(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	user := mustCreateTestUser(t, conn)

	profile, err := svc.GetOrCreateProfile(ctx, user.ID, uuid.New())
	require.NoError(t, err)

	_, err = svc.SetCurrency(ctx, profile.ID, enums.Currency("doubloons"))
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeValidation, coded.Code())

	updated, err := svc.SetCurrency(ctx, profile.ID, enums.CurrencyMXN)
	require.NoError(t, err)
	require.Equal(t, enums.CurrencyMXN, updated.Currency)
}

func TestAddressLifecycle(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	user := mustCreateTestUser(t, conn)

	profile, err := svc.GetOrCreateProfile(ctx, user.ID, uuid.New())
	require.NoError(t, err)

	address, err := svc.AddAddress(ctx, profile.ID, AddressInput{
		Name:       "Home",
		Line1:      "123 Mercado Way",
		City:       "Tulsa",
		State:      "OK",
		PostalCode: "74104",
		Country:    "us",
	})
	require.NoError(t, err)
	require.Equal(t, "US", address.Country)

	listed, err := svc.ListAddresses(ctx, profile.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, svc.RemoveAddress(ctx, profile.ID, address.ID))

	err = svc.RemoveAddress(ctx, profile.ID, address.ID)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestAddAddressValidatesRequiredFields(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	user := mustCreateTestUser(t, conn)

	profile, err := svc.GetOrCreateProfile(ctx, user.ID, uuid.New())
	require.NoError(t, err)

	_, err = svc.AddAddress(ctx, profile.ID, AddressInput{Line1: "", City: "Tulsa", PostalCode: "74104", Country: "US"})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestResolveSiteNormalizesDomain(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	site := &models.Site{ID: uuid.New(), Domain: "shop.example.com", Name: "Shop"}
	require.NoError(t, conn.Create(site).Error)

	got, err := svc.ResolveSite(ctx, "  Shop.Example.COM ")
	require.NoError(t, err)
	require.Equal(t, site.ID, got.ID)

	_, err = svc.ResolveSite(ctx, "unknown.example.com")
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeNotFound, coded.Code())

	_, err = svc.ResolveSite(ctx, "   ")
	coded = pkgerrors.As(err)
	require.NotNil(t, coded)
	require.Equal(t, pkgerrors.CodeValidation, coded.Code())
}
