package sessions

import (
	"context"
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Store persists session records. Keys are already hashed by the Manager, so a
// store never sees the cookie value a browser presents.
type Store interface {
	// Get returns ErrSessionNotFound for unknown or expired keys
	Get(ctx context.Context, key string) (Record, error)

	// Upsert creates or replaces the record stored under key
	Upsert(ctx context.Context, key string, record Record) error

	// Delete removes key, deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// DeleteExpired removes records whose ExpiresAt is before the given time
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}

// storeKey maps a session cookie value to the key used in the Store.
func storeKey(sessionID string) string {
	sum := blake2b.Sum256([]byte(sessionID))
	return hex.EncodeToString(sum[:])
}
