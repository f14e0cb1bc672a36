package wishlist

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/vendorhub-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/vendorhub-backend/pkg/errors"
)

type fakeOfferLookup struct {
	offers map[string]*models.Offer
}

func (f *fakeOfferLookup) GetOfferBySKU(ctx context.Context, siteID uuid.UUID, sku string) (*models.Offer, error) {
	offer, ok := f.offers[sku]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
	}
	return offer, nil
}

func setupWishlistTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
CREATE TABLE IF NOT EXISTS wishlists (
  id TEXT PRIMARY KEY,
  profile_id TEXT NOT NULL,
  name TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (profile_id, name)
);`, `
CREATE TABLE IF NOT EXISTS wishlist_items (
  id TEXT PRIMARY KEY,
  wishlist_id TEXT NOT NULL,
  offer_id TEXT NOT NULL,
  created_at DATETIME,
  UNIQUE (wishlist_id, offer_id)
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
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS offer_products (
  offer_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  PRIMARY KEY (offer_id, product_id)
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
  updated_at DATETIME
);`}
	for _, stmt := range ddl {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

type wishlistFixture struct {
	conn    *gorm.DB
	svc     Service
	lookup  *fakeOfferLookup
	siteID  uuid.UUID
	profile uuid.UUID
}

func newWishlistFixture(t *testing.T) *wishlistFixture {
	t.Helper()
	conn := setupWishlistTestDB(t)

	lookup := &fakeOfferLookup{offers: map[string]*models.Offer{}}
	svc, err := NewService(ServiceParams{Repo: NewRepository(conn), Offers: lookup})
	require.NoError(t, err)

	return &wishlistFixture{
		conn:    conn,
		svc:     svc,
		lookup:  lookup,
		siteID:  uuid.New(),
		profile: uuid.New(),
	}
}

func (f *wishlistFixture) mustOffer(t *testing.T, sku string) *models.Offer {
	t.Helper()
	offer := &models.Offer{
		ID:        uuid.New(),
		SiteID:    f.siteID,
		SKU:       sku,
		Name:      sku,
		Slug:      sku,
		StartDate: time.Now().Add(-time.Hour),
		Available: true,
	}
	require.NoError(t, f.conn.Create(offer).Error)
	f.lookup.offers[sku] = offer
	return offer
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	f := newWishlistFixture(t)
	ctx := context.Background()

	list, err := f.svc.Create(ctx, f.profile, "  Holiday Picks ")
	require.NoError(t, err)
	assert.Equal(t, "Holiday Picks", list.Name)

	_, err = f.svc.Create(ctx, f.profile, "Holiday Picks")
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeConflict, coded.Code())

	// The same name is fine for a different profile.
	_, err = f.svc.Create(ctx, uuid.New(), "Holiday Picks")
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.profile, "   ")
	coded = pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestAddOfferIsIdempotent(t *testing.T) {
	f := newWishlistFixture(t)
	ctx := context.Background()

	offer := f.mustOffer(t, "WISH0001")
	list, err := f.svc.Create(ctx, f.profile, "Watching")
	require.NoError(t, err)

	require.NoError(t, f.svc.AddOffer(ctx, f.profile, f.siteID, list.ID, "WISH0001"))
	require.NoError(t, f.svc.AddOffer(ctx, f.profile, f.siteID, list.ID, "WISH0001"))

	got, err := f.svc.Get(ctx, f.profile, list.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, offer.ID, got.Items[0].OfferID)
	require.NotNil(t, got.Items[0].Offer)
	assert.Equal(t, "WISH0001", got.Items[0].Offer.SKU)
}

func TestAddOfferUnknownSKUIsNotFound(t *testing.T) {
	f := newWishlistFixture(t)
	ctx := context.Background()

	list, err := f.svc.Create(ctx, f.profile, "Watching")
	require.NoError(t, err)

	err = f.svc.AddOffer(ctx, f.profile, f.siteID, list.ID, "NOPE0000")
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestRemoveOffer(t *testing.T) {
	f := newWishlistFixture(t)
	ctx := context.Background()

	f.mustOffer(t, "WISH0002")
	list, err := f.svc.Create(ctx, f.profile, "Watching")
	require.NoError(t, err)
	require.NoError(t, f.svc.AddOffer(ctx, f.profile, f.siteID, list.ID, "WISH0002"))

	require.NoError(t, f.svc.RemoveOffer(ctx, f.profile, f.siteID, list.ID, "WISH0002"))

	got, err := f.svc.Get(ctx, f.profile, list.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Items)

	err = f.svc.RemoveOffer(ctx, f.profile, f.siteID, list.ID, "WISH0002")
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestListAndDeleteAreProfileScoped(t *testing.T) {
	f := newWishlistFixture(t)
	ctx := context.Background()

	mine, err := f.svc.Create(ctx, f.profile, "Mine")
	require.NoError(t, err)
	theirs, err := f.svc.Create(ctx, uuid.New(), "Theirs")
	require.NoError(t, err)

	lists, err := f.svc.List(ctx, f.profile)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, mine.ID, lists[0].ID)

	// Another profile's list is invisible to delete.
	err = f.svc.Delete(ctx, f.profile, theirs.ID)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())

	require.NoError(t, f.svc.Delete(ctx, f.profile, mine.ID))
	err = f.svc.Delete(ctx, f.profile, mine.ID)
	coded = pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestDeleteRemovesItems(t *testing.T) {
	f := newWishlistFixture(t)
	ctx := context.Background()

	f.mustOffer(t, "WISH0003")
	list, err := f.svc.Create(ctx, f.profile, "Short lived")
	require.NoError(t, err)
	require.NoError(t, f.svc.AddOffer(ctx, f.profile, f.siteID, list.ID, "WISH0003"))

	require.NoError(t, f.svc.Delete(ctx, f.profile, list.ID))

	var count int64
	require.NoError(t, f.conn.Model(&models.WishlistItem{}).Where("wishlist_id = ?", list.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}
