package store_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swiftcart/storefront-platform/internal/store"
)

func newTestRegistry(t *testing.T) *store.Registry {
	t.Helper()
	return store.NewRegistry(store.NewMemoryRepository())
}

func testProfile(name, slugVal, userID string) store.StoreProfile {
	return store.StoreProfile{
		Name:       name,
		Tagline:    "Quality Products, Quick Delivery",
		BrandColor: "#4f46e5",
		PlanName:   "Free",
		OwnerEmail: userID + "@example.com",
		UserID:     userID,
		StoreSlug:  slugVal,
	}
}

func TestRegistry_Create(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)

	created, err := reg.Create(ctx, testProfile("Acme Store", "acme", "user-1"), nil, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, created.Profile.ID)
	assert.Equal(t, store.SubscriptionActive, created.Profile.SubscriptionStatus)
	assert.NotZero(t, created.Profile.ExpiryDate)

	got, err := reg.GetByID(ctx, created.Profile.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(created.Profile, got.Profile); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_CreateGeneratesSlugFromName(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)

	created, err := reg.Create(ctx, testProfile("Khan's Kiryana Store", "", "user-1"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "khans-kiryana-store", created.Profile.StoreSlug)

	got, err := reg.GetBySlug(ctx, "Khans-Kiryana-Store")
	require.NoError(t, err)
	assert.Equal(t, created.Profile.ID, got.Profile.ID)
}

func TestRegistry_CreateRejections(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)

	_, err := reg.Create(ctx, testProfile("Acme Store", "acme", "user-1"), nil, nil)
	require.NoError(t, err)

	tests := []struct {
		name    string
		profile store.StoreProfile
		wantErr error
	}{
		{
			name:    "duplicate_slug",
			profile: testProfile("Other Acme", "acme", "user-2"),
			wantErr: store.ErrDuplicateSlug,
		},
		{
			name:    "owner_already_has_store",
			profile: testProfile("Second Shop", "second-shop", "user-1"),
			wantErr: store.ErrOwnerHasStore,
		},
		{
			name:    "invalid_slug",
			profile: testProfile("Bad Slug", "Bad--Slug", "user-3"),
			wantErr: store.ErrInvalidSlug,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.Create(ctx, tt.profile, nil, nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// no partial aggregates were created by the rejected attempts
	stores, err := reg.List(ctx)
	require.NoError(t, err)
	assert.Len(t, stores, 1)
}

func TestRegistry_GetByIDNotFound(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := reg.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRegistry_SubscribeAll(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)

	_, err := reg.Create(ctx, testProfile("Acme Store", "acme", "user-1"), nil, nil)
	require.NoError(t, err)

	var snapshots [][]store.MerchantStore
	unsub, err := reg.SubscribeAll(ctx, func(stores []store.MerchantStore) {
		snapshots = append(snapshots, stores)
	})
	require.NoError(t, err)

	// fires immediately with the current list
	require.Len(t, snapshots, 1)
	assert.Len(t, snapshots[0], 1)

	_, err = reg.Create(ctx, testProfile("Beta Store", "beta", "user-2"), nil, nil)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Len(t, snapshots[1], 2)

	unsub()
	_, err = reg.Create(ctx, testProfile("Gamma Store", "gamma", "user-3"), nil, nil)
	require.NoError(t, err)
	assert.Len(t, snapshots, 2, "unsubscribed listener must not be invoked")
}

func TestRegistry_UpdateProfilePinsIdentity(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)

	created, err := reg.Create(ctx, testProfile("Acme Store", "acme", "user-1"), nil, nil)
	require.NoError(t, err)

	updated := created.Profile
	updated.Tagline = "New tagline"
	updated.StoreSlug = "acme-renamed"
	assert.ErrorIs(t, reg.UpdateProfile(ctx, created.Profile.ID, updated), store.ErrSlugImmutable)

	updated.StoreSlug = "acme"
	updated.UserID = "intruder"
	require.NoError(t, reg.UpdateProfile(ctx, created.Profile.ID, updated))

	got, err := reg.GetByID(ctx, created.Profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "New tagline", got.Profile.Tagline)
	assert.Equal(t, "user-1", got.Profile.UserID, "owner identity is immutable")
}

func TestRegistry_AppendOrderNewestFirst(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)

	created, err := reg.Create(ctx, testProfile("Acme Store", "acme", "user-1"), nil, nil)
	require.NoError(t, err)

	for _, id := range []string{"SWIFT-a", "SWIFT-b", "SWIFT-c"} {
		require.NoError(t, reg.AppendOrder(ctx, created.Profile.ID, store.Order{ID: id, Status: store.OrderPending}))
	}

	got, err := reg.GetByID(ctx, created.Profile.ID)
	require.NoError(t, err)
	require.Len(t, got.Orders, 3)
	assert.Equal(t, "SWIFT-c", got.Orders[0].ID)
	assert.Equal(t, "SWIFT-b", got.Orders[1].ID)
	assert.Equal(t, "SWIFT-a", got.Orders[2].ID)
}

func TestRegistry_SetOrderStatus(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)

	created, err := reg.Create(ctx, testProfile("Acme Store", "acme", "user-1"), nil, nil)
	require.NoError(t, err)
	require.NoError(t, reg.AppendOrder(ctx, created.Profile.ID, store.Order{ID: "SWIFT-a", Status: store.OrderPending}))

	found, err := reg.SetOrderStatus(ctx, created.Profile.ID, "SWIFT-a", store.OrderShipped)
	require.NoError(t, err)
	assert.True(t, found)

	found, err = reg.SetOrderStatus(ctx, created.Profile.ID, "SWIFT-missing", store.OrderShipped)
	require.NoError(t, err)
	assert.False(t, found, "missing order id is a no-op, not an error")

	got, err := reg.GetByID(ctx, created.Profile.ID)
	require.NoError(t, err)
	assert.Equal(t, store.OrderShipped, got.Orders[0].Status)
}

func TestRegistry_SnapshotsAreIsolated(t *testing.T) {
	ctx := context.Background()
	reg := newTestRegistry(t)

	created, err := reg.Create(ctx, testProfile("Acme Store", "acme", "user-1"), []store.Product{{ID: "p1", Name: "Mug", Price: 500}}, nil)
	require.NoError(t, err)

	got, err := reg.GetByID(ctx, created.Profile.ID)
	require.NoError(t, err)
	got.Products[0].Name = "Tampered"

	again, err := reg.GetByID(ctx, created.Profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mug", again.Products[0].Name, "callers must not mutate registry state through returned slices")
}
