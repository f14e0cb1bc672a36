package users

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/vendorhub-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/vendorhub-backend/pkg/errors"
)

type fakeSessions struct {
	created []string
	revoked []string
}

func (f *fakeSessions) Create(ctx context.Context, accessID string) error {
	f.created = append(f.created, accessID)
	return nil
}

func (f *fakeSessions) Revoke(ctx context.Context, accessID string) error {
	f.revoked = append(f.revoked, accessID)
	return nil
}

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	usersDDL := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(usersDDL).Error)
	return conn
}

func newTestService(t *testing.T) (Service, *fakeSessions) {
	t.Helper()
	conn := setupUsersTestDB(t)

	sessions := &fakeSessions{}
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(conn),
		Sessions: sessions,
		JWT: config.JWTConfig{
			Secret:            "test-secret",
			Issuer:            "vendorhub",
			ExpirationMinutes: 5,
		},
		Password: config.PasswordConfig{
			ArgonMemoryKB:    8 * 1024,
			ArgonTime:        1,
			ArgonParallelism: 1,
			ArgonSaltLen:     16,
			ArgonKeyLen:      32,
		},
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, sessions
}

func TestRegisterAndLogin(t *testing.T) {
	svc, sessions := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Username: "shopper",
		Email:    "Shopper@Example.com",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "shopper@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash == "correct-horse" {
		t.Fatal("password stored in plaintext")
	}

	result, err := svc.Login(ctx, LoginInput{Username: "shopper", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected signed token")
	}
	if len(sessions.created) != 1 {
		t.Fatalf("expected one session, got %d", len(sessions.created))
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "shopper", Email: "s@example.com", Password: "correct-horse"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Login(ctx, LoginInput{Username: "shopper", Password: "wrong"})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	_, err = svc.Login(ctx, LoginInput{Username: "nobody", Password: "whatever"})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for unknown user, got %v", err)
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "", Email: "a@b.com", Password: "long-enough"})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = svc.Register(ctx, RegisterInput{Username: "u", Email: "a@b.com", Password: "short"})
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for short password, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, sessions := newTestService(t)

	if err := svc.Logout(context.Background(), "jti-123"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "jti-123" {
		t.Fatalf("expected revoked session, got %v", sessions.revoked)
	}
}
