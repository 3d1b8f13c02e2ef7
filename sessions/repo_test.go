package sessions

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	apperrors "github.com/jrsteele09/ums-portal/internal/errors"
	"github.com/jrsteele09/ums-portal/users"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func testRecord(access, refresh string) Record {
	return Record{
		Credential: Credential{AccessToken: access, RefreshToken: refresh},
		User: users.User{
			ID:        1,
			Email:     "alice@uni.edu",
			FirstName: "Alice",
			Role:      users.RoleAdmin,
		},
		CreatedAt: testNow,
		ExpiresAt: testNow.Add(time.Hour),
	}
}

type storeCase struct {
	name string
	// sweeps reports whether DeleteExpired removes rows itself
	sweeps bool
	open   func(t *testing.T, c *clock) Store
}

func storeCases() []storeCase {
	return []storeCase{
		{
			name:   "memory",
			sweeps: true,
			open: func(t *testing.T, c *clock) Store {
				s := NewInMemoryStore()
				s.now = c.Now
				return s
			},
		},
		{
			name:   "redis",
			sweeps: false,
			open: func(t *testing.T, c *clock) Store {
				mr := miniredis.RunT(t)
				client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
				t.Cleanup(func() { _ = client.Close() })
				s := NewRedisStore(client)
				s.now = c.Now
				return s
			},
		},
		{
			name:   "sqlite",
			sweeps: true,
			open: func(t *testing.T, c *clock) Store {
				db, err := OpenSQLite(filepath.Join(t.TempDir(), "sessions.sqlite"))
				require.NoError(t, err)
				sqlDB, err := db.DB()
				require.NoError(t, err)
				t.Cleanup(func() { _ = sqlDB.Close() })

				s, err := NewSQLStore(db)
				require.NoError(t, err)
				s.now = c.Now
				return s
			},
		},
	}
}

func TestStores(t *testing.T) {
	ctx := context.Background()

	for _, tc := range storeCases() {
		t.Run(tc.name, func(t *testing.T) {
			t.Run("unknown key", func(t *testing.T) {
				store := tc.open(t, &clock{now: testNow})
				_, err := store.Get(ctx, "missing")
				require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
			})

			t.Run("upsert and get", func(t *testing.T) {
				store := tc.open(t, &clock{now: testNow})
				require.NoError(t, store.Upsert(ctx, "k1", testRecord("t1", "r1")))

				got, err := store.Get(ctx, "k1")
				require.NoError(t, err)
				require.Equal(t, "t1", got.AccessToken)
				require.Equal(t, "r1", got.RefreshToken)
				require.Equal(t, "Alice", got.User.FirstName)
				require.Equal(t, users.RoleAdmin, got.User.Role)
				require.True(t, got.ExpiresAt.Equal(testNow.Add(time.Hour)))
			})

			t.Run("upsert replaces", func(t *testing.T) {
				store := tc.open(t, &clock{now: testNow})
				require.NoError(t, store.Upsert(ctx, "k1", testRecord("t1", "r1")))
				require.NoError(t, store.Upsert(ctx, "k1", testRecord("t2", "r2")))

				got, err := store.Get(ctx, "k1")
				require.NoError(t, err)
				require.Equal(t, "t2", got.AccessToken)
				require.Equal(t, "r2", got.RefreshToken)
			})

			t.Run("delete", func(t *testing.T) {
				store := tc.open(t, &clock{now: testNow})
				require.NoError(t, store.Upsert(ctx, "k1", testRecord("t1", "r1")))
				require.NoError(t, store.Delete(ctx, "k1"))
				require.NoError(t, store.Delete(ctx, "k1"))

				_, err := store.Get(ctx, "k1")
				require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
			})

			t.Run("expired records are not returned", func(t *testing.T) {
				c := &clock{now: testNow}
				store := tc.open(t, c)
				require.NoError(t, store.Upsert(ctx, "k1", testRecord("t1", "r1")))

				c.now = testNow.Add(2 * time.Hour)
				_, err := store.Get(ctx, "k1")
				require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
			})

			t.Run("delete expired", func(t *testing.T) {
				store := tc.open(t, &clock{now: testNow})
				short := testRecord("t1", "r1")
				short.ExpiresAt = testNow.Add(time.Minute)
				require.NoError(t, store.Upsert(ctx, "short", short))
				require.NoError(t, store.Upsert(ctx, "long", testRecord("t2", "r2")))

				deleted, err := store.DeleteExpired(ctx, testNow.Add(10*time.Minute))
				require.NoError(t, err)
				if tc.sweeps {
					require.Equal(t, 1, deleted)
				} else {
					require.Equal(t, 0, deleted)
				}

				got, err := store.Get(ctx, "long")
				require.NoError(t, err)
				require.Equal(t, "t2", got.AccessToken)
			})
		})
	}
}

func TestRedisStore_SetsTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisStore(client)
	store.now = (&clock{now: testNow}).Now

	require.NoError(t, store.Upsert(context.Background(), "k1", testRecord("t1", "r1")))
	require.Equal(t, time.Hour, mr.TTL(redisKeyPrefix+"k1"))

	mr.FastForward(2 * time.Hour)
	require.False(t, mr.Exists(redisKeyPrefix+"k1"))
}

func TestStoreKey(t *testing.T) {
	k1 := storeKey("cookie-value")
	require.Len(t, k1, 64)
	require.Equal(t, k1, storeKey("cookie-value"))
	require.NotEqual(t, k1, storeKey("other-value"))
	require.NotContains(t, k1, "cookie-value")
}
