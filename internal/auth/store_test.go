package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/shared"
)

func newTestStore(t *testing.T) (*TokenStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTokenStore(client, time.Hour), mr
}

func TestTokenStoreIssueAndLookup(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	claims := Claims{UserID: "user-1", Role: "OWNER", ProjectID: "proj-1"}
	token, err := store.Issue(ctx, claims)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := store.Lookup(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, claims, got)
}

func TestTokenStoreTokensAreUnique(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.Issue(ctx, Claims{UserID: "user-1", Role: "OWNER"})
	require.NoError(t, err)
	second, err := store.Issue(ctx, Claims{UserID: "user-1", Role: "OWNER"})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestTokenStoreUnknownToken(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Lookup(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, shared.ErrInvalidToken)

	_, err = store.Lookup(context.Background(), "")
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
}

func TestTokenStoreExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	token, err := store.Issue(ctx, Claims{UserID: "user-1", Role: "EMPLOYEE"})
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = store.Lookup(ctx, token)
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
}

func TestTokenStoreRevoke(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	token, err := store.Issue(ctx, Claims{UserID: "user-1", Role: "OWNER"})
	require.NoError(t, err)

	require.NoError(t, store.Revoke(ctx, token))

	_, err = store.Lookup(ctx, token)
	assert.ErrorIs(t, err, shared.ErrInvalidToken)

	// Revoking twice is harmless.
	require.NoError(t, store.Revoke(ctx, token))
}
