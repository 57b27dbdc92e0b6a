package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/helixmedia/helix"
	"github.com/helixmedia/helix/database/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetMissing(t *testing.T) {
	store, _ := setupTestStore(t)

	_, found, err := store.Get(context.Background(), helix.SignatureKey{LicenseKey: "lk", Type: helix.SignatureView})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_SetGet(t *testing.T) {
	ctx := context.Background()
	store, _ := setupTestStore(t)

	key := helix.SignatureKey{LicenseKey: "lk", Type: helix.SignatureIngest}
	want := helix.CachedSignature{
		Token:     "ingest-token",
		ExpiresAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, store.Set(ctx, key, want))

	got, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want.Token, got.Token)
	assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt))
}

func TestStore_SetOverwrites(t *testing.T) {
	ctx := context.Background()
	store, _ := setupTestStore(t)

	key := helix.SignatureKey{LicenseKey: "lk", Type: helix.SignatureUpdate}
	require.NoError(t, store.Set(ctx, key, helix.CachedSignature{Token: "first", ExpiresAt: time.Now().Add(time.Minute)}))
	require.NoError(t, store.Set(ctx, key, helix.CachedSignature{Token: "second", ExpiresAt: time.Now().Add(time.Hour)}))

	got, found, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "second", got.Token)
}

func TestStore_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	store, _ := setupTestStore(t)

	exp := time.Now().Add(time.Hour)
	keys := []helix.SignatureKey{
		{LicenseKey: "lk1", Type: helix.SignatureView},
		{LicenseKey: "lk1", Type: helix.SignatureIngest},
		{LicenseKey: "lk2", Type: helix.SignatureView},
	}
	for _, k := range keys {
		require.NoError(t, store.Set(ctx, k, helix.CachedSignature{Token: k.String(), ExpiresAt: exp}))
	}

	for _, k := range keys {
		got, found, err := store.Get(ctx, k)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, k.String(), got.Token)
	}
}

func TestValidateSchema(t *testing.T) {
	ctx := context.Background()
	_, table := setupTestStore(t)
	pool := getSharedTestDatabase(t)

	assert.NoError(t, postgres.ValidateSchema(ctx, pool, table))
	assert.Error(t, postgres.ValidateSchema(ctx, pool, "missing_"+getRandomString(t)))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	pool := getSharedTestDatabase(t)

	table := "sigs_" + getRandomString(t)
	store, err := postgres.Open(ctx, testDSN, table)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = postgres.DropTable(ctx, pool, table)
		store.Close()
	})

	assert.NoError(t, store.Ping(ctx))
}

func TestOpen_InvalidTable(t *testing.T) {
	_, err := postgres.Open(context.Background(), "postgres://unused", "Bad-Name")
	assert.Error(t, err)
}
