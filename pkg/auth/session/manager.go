package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/vendorhub-backend/pkg/redis"
)

// AccessSessionChecker is the surface the auth middleware needs: it answers
// whether a token's session id is still live server-side.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// Manager tracks issued access sessions in Redis so logout can revoke a
// token before its JWT expiry.
type Manager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewManager wires a session manager over the shared Redis client.
func NewManager(client *redis.Client, ttl time.Duration) (*Manager, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	return &Manager{client: client, ttl: ttl}, nil
}

// Create records the session. The stored value is the issue time so an
// operator inspecting Redis can see when the token was minted.
func (m *Manager) Create(ctx context.Context, accessID string) error {
	if accessID == "" {
		return errors.New("access id is required")
	}
	key := m.client.SessionKey(accessID)
	if err := m.client.Set(ctx, key, time.Now().UTC().Format(time.RFC3339), m.ttl); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	return nil
}

// HasSession reports whether the session is still live.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if accessID == "" {
		return false, nil
	}
	if _, err := m.client.Get(ctx, m.client.SessionKey(accessID)); err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("checking session: %w", err)
	}
	return true, nil
}

// Revoke drops the session, invalidating the matching token immediately.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if accessID == "" {
		return nil
	}
	return m.client.Del(ctx, m.client.SessionKey(accessID))
}
