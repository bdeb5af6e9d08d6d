package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeFactory func(t *testing.T, rotateGrace time.Duration) Store

func storeFactories() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T, rotateGrace time.Duration) Store {
			return NewMemoryStore(time.Hour, 24*time.Hour, rotateGrace)
		},
		"redis": func(t *testing.T, rotateGrace time.Duration) Store {
			mr, err := miniredis.Run()
			if err != nil {
				t.Fatalf("miniredis.Run failed: %v", err)
			}
			t.Cleanup(mr.Close)
			rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
			t.Cleanup(func() { _ = rdb.Close() })
			return NewRedisStore(rdb, "test:", time.Hour, 24*time.Hour, rotateGrace)
		},
	}
}

func TestStore_PutGetRevoke(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t, 0)
			g := NewGrant("alice")
			require.NoError(t, store.Put(ctx, g))
			assert.False(t, g.ExpiresAt.IsZero())
			assert.False(t, g.MaxExpiresAt.IsZero())

			actual, err := store.Get(ctx, g.ID)
			require.NoError(t, err)
			assert.Equal(t, "alice", actual.Subject)
			assert.Equal(t, g.FamilyID, actual.FamilyID)

			require.NoError(t, store.Revoke(ctx, g.ID))
			_, err = store.Get(ctx, g.ID)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, store.Revoke(ctx, g.ID), ErrNotFound)
		})
	}
}

func TestStore_Expired(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t, 0)
			g := NewGrant("bob")
			g.ExpiresAt = time.Now().Add(-time.Minute)
			require.NoError(t, store.Put(ctx, g))
			_, err := store.Get(ctx, g.ID)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_Touch(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := factory(t, 0)
			g := NewGrant("carol")
			require.NoError(t, store.Put(ctx, g))
			at := time.Now().Add(10 * time.Minute)
			require.NoError(t, store.Touch(ctx, g.ID, at))
			actual, err := store.Get(ctx, g.ID)
			require.NoError(t, err)
			assert.WithinDuration(t, at, actual.LastUsedAt, time.Millisecond)
			assert.WithinDuration(t, at.Add(time.Hour), actual.ExpiresAt, time.Millisecond)
			assert.ErrorIs(t, store.Touch(ctx, "missing", at), ErrNotFound)
		})
	}
}

func TestStore_Rotate(t *testing.T) {
	testCases := []struct {
		name       string
		grace      time.Duration
		oldVisible bool
	}{
		{name: "with grace", grace: 30 * time.Second, oldVisible: true},
		{name: "without grace", grace: 0, oldVisible: false},
	}
	for name, factory := range storeFactories() {
		for _, tc := range testCases {
			t.Run(name+"/"+tc.name, func(t *testing.T) {
				ctx := context.Background()
				store := factory(t, tc.grace)
				old := NewGrant("dave")
				require.NoError(t, store.Put(ctx, old))

				newID, err := store.Rotate(ctx, old.ID, &Grant{})
				require.NoError(t, err)
				assert.NotEqual(t, old.ID, newID)

				rotated, err := store.Get(ctx, newID)
				require.NoError(t, err)
				assert.Equal(t, old.FamilyID, rotated.FamilyID)
				assert.Equal(t, "dave", rotated.Subject)

				_, err = store.Get(ctx, old.ID)
				assert.Equal(t, tc.oldVisible, err == nil)

				require.NoError(t, store.RevokeFamily(ctx, old.FamilyID))
				_, err = store.Get(ctx, newID)
				assert.ErrorIs(t, err, ErrNotFound)
			})
		}
	}
}

func TestStore_RotateMissing(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			_, err := factory(t, 0).Rotate(context.Background(), "missing", &Grant{})
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}
