package redis

import (
	"context"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/vendorhub-backend/pkg/errors"
)

// Lock is a best-effort lease over a single mutation scope, e.g. one
// customer's cart. It keeps two browser tabs from interleaving read-modify-
// write cycles; the database transaction remains the correctness backstop.
type Lock struct {
	client *Client
	key    string
	token  string
}

// AcquireLock takes the lease or fails with a conflict when it is held.
func (c *Client) AcquireLock(ctx context.Context, scope, id string, ttl time.Duration) (*Lock, error) {
	key := c.LockKey(scope, id)
	token := uuid.NewString()

	ok, err := c.SetNX(ctx, key, token, ttl)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire lock")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "another mutation is in progress")
	}
	return &Lock{client: c, key: key, token: token}, nil
}

// Release drops the lease. A lease that expired on its own releases cleanly.
func (l *Lock) Release(ctx context.Context) error {
	if l == nil || l.client == nil {
		return nil
	}
	held, err := l.client.Get(ctx, l.key)
	if err != nil {
		if err == ErrNotFound {
			return nil
		}
		return err
	}
	if held != l.token {
		// Lease expired and was re-acquired by someone else; not ours to drop.
		return nil
	}
	return l.client.Del(ctx, l.key)
}
