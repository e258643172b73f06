package redis

import (
	"context"
	"testing"

	"github.com/gabito1451/Aframp/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_SaveAndLoad(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.RememberedSession{
		PublicKey: "GWALLET",
		Network:   domain.NetworkTestnet,
	}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "GWALLET", got.PublicKey)
	assert.Equal(t, domain.NetworkTestnet, got.Network)
}

func TestSessionStore_LoadNothingRemembered(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewSessionStore(client)

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_LoadCorruptRecord(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewSessionStore(client)

	require.NoError(t, mr.Set(sessionKey, "{not json"))
	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists(sessionKey))
}

func TestSessionStore_LoadEmptyPublicKey(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.RememberedSession{}))
	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_Clear(t *testing.T) {
	client, _ := newTestClient(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &domain.RememberedSession{PublicKey: "GWALLET"}))
	require.NoError(t, store.Clear(ctx))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Clearing an empty store is a no-op.
	require.NoError(t, store.Clear(ctx))
}
