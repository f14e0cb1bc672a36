package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/vendorhub-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	return conn
}

func TestBaseDBBindsContext(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	base := NewBase(db)

	ctx := context.Background()
	bound := base.DB(ctx)
	require.NotNil(t, bound)
	require.Equal(t, ctx, bound.Statement.Context)

	require.Same(t, db, base.DB(nil))
}

func TestKeysetPagesNewestFirst(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	require.NoError(t, db.Exec(`
		CREATE TABLE entries (
			id         TEXT PRIMARY KEY,
			created_at TIMESTAMP NOT NULL
		)
	`).Error)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ids := make([]uuid.UUID, 3)
	for i := range ids {
		ids[i] = uuid.New()
		require.NoError(t, db.Exec(
			"INSERT INTO entries (id, created_at) VALUES (?, ?)",
			ids[i], base.Add(time.Duration(i)*time.Minute),
		).Error)
	}

	repo := NewBase(db)

	type entry struct {
		ID        uuid.UUID
		CreatedAt time.Time
	}

	var rows []entry
	require.NoError(t, repo.Keyset(db.Table("entries"), nil).Find(&rows).Error)
	require.Len(t, rows, 3)
	require.Equal(t, ids[2], rows[0].ID)

	cursor := &pagination.Cursor{CreatedAt: rows[0].CreatedAt, ID: rows[0].ID}
	var rest []entry
	require.NoError(t, repo.Keyset(db.Table("entries"), cursor).Find(&rest).Error)
	require.Len(t, rest, 2)
	require.Equal(t, ids[1], rest[0].ID)
	require.Equal(t, ids[0], rest[1].ID)
}
