package receipts

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
	"github.com/angelmondragon/vendorhub-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorhub-backend/pkg/errors"
)

func setupReceiptsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.Exec(`
CREATE TABLE IF NOT EXISTS receipts (
  id TEXT PRIMARY KEY,
  profile_id TEXT NOT NULL,
  order_item_id TEXT NOT NULL,
  product_id TEXT,
  start_date DATETIME,
  end_date DATETIME,
  auto_renew INTEGER NOT NULL DEFAULT 0,
  "transaction" TEXT,
  status TEXT NOT NULL DEFAULT 'queued',
  vendor_notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`).Error)
	return conn
}

func mustReceipt(t *testing.T, conn *gorm.DB, profileID uuid.UUID, mutate func(*models.Receipt)) *models.Receipt {
	t.Helper()
	start := time.Now().Add(-time.Hour)
	receipt := &models.Receipt{
		ID:          uuid.New(),
		ProfileID:   profileID,
		OrderItemID: uuid.New(),
		StartDate:   &start,
		Status:      enums.ReceiptStatusCompleted,
	}
	if mutate != nil {
		mutate(receipt)
	}
	require.NoError(t, conn.Create(receipt).Error)
	return receipt
}

func TestListPagesNewestFirst(t *testing.T) {
	conn := setupReceiptsTestDB(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	profileID := uuid.New()
	for i := 0; i < 3; i++ {
		r := mustReceipt(t, conn, profileID, nil)
		// Spread created_at so the cursor ordering is deterministic.
		createdAt := time.Now().Add(time.Duration(i-3) * time.Minute)
		require.NoError(t, conn.Model(r).Update("created_at", createdAt).Error)
	}

	page, err := svc.List(context.Background(), profileID, 2, "")
	require.NoError(t, err)
	require.Len(t, page.Receipts, 2)
	require.NotEmpty(t, page.NextCursor)
	assert.True(t, page.Receipts[0].CreatedAt.After(page.Receipts[1].CreatedAt))

	rest, err := svc.List(context.Background(), profileID, 2, page.NextCursor)
	require.NoError(t, err)
	require.Len(t, rest.Receipts, 1)
	assert.Empty(t, rest.NextCursor)
}

func TestListRejectsMalformedCursor(t *testing.T) {
	conn := setupReceiptsTestDB(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	_, err = svc.List(context.Background(), uuid.New(), 10, "not-a-cursor")
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestGetIsProfileScoped(t *testing.T) {
	conn := setupReceiptsTestDB(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)

	profileID := uuid.New()
	receipt := mustReceipt(t, conn, profileID, nil)

	got, err := svc.Get(context.Background(), profileID, receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, receipt.ID, got.ID)

	_, err = svc.Get(context.Background(), uuid.New(), receipt.ID)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestOwnsChecksWindowAndStatus(t *testing.T) {
	conn := setupReceiptsTestDB(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()

	profileID := uuid.New()
	productID := uuid.New()

	owns, err := svc.Owns(ctx, profileID, productID)
	require.NoError(t, err)
	assert.False(t, owns)

	// An expired window does not grant ownership.
	mustReceipt(t, conn, profileID, func(r *models.Receipt) {
		r.ProductID = &productID
		end := time.Now().Add(-time.Minute)
		r.EndDate = &end
	})
	owns, err = svc.Owns(ctx, profileID, productID)
	require.NoError(t, err)
	assert.False(t, owns)

	// Neither does a refunded receipt with an open window.
	mustReceipt(t, conn, profileID, func(r *models.Receipt) {
		r.ProductID = &productID
		r.Status = enums.ReceiptStatusRefunded
	})
	owns, err = svc.Owns(ctx, profileID, productID)
	require.NoError(t, err)
	assert.False(t, owns)

	mustReceipt(t, conn, profileID, func(r *models.Receipt) {
		r.ProductID = &productID
	})
	owns, err = svc.Owns(ctx, profileID, productID)
	require.NoError(t, err)
	assert.True(t, owns)

	// Ownership does not leak across profiles.
	owns, err = svc.Owns(ctx, uuid.New(), productID)
	require.NoError(t, err)
	assert.False(t, owns)
}
