package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biolink/internal/platform/models"
	"biolink/internal/platform/store"
)

func TestTenantRepository_SaveAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewTenantRepository(store.NewMemoryStore())

	require.NoError(t, repo.Save(ctx, &models.Tenant{ID: "t1", Name: "acme", DisplayName: "Acme"}))

	got, err := repo.GetBySlug(ctx, "acme")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "t1", got.ID)

	missing, err := repo.GetBySlug(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	byID, err := repo.GetByID(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "acme", byID.Name)
}

func TestTenantRepository_ExistsFold(t *testing.T) {
	ctx := context.Background()
	repo := NewTenantRepository(store.NewMemoryStore())
	require.NoError(t, repo.Save(ctx, &models.Tenant{ID: "t1", Name: "acme"}))

	tests := []struct {
		slug string
		want bool
	}{
		{"acme", true},
		{"ACME", true},
		{"Acme", true},
		{"acme-2", false},
		{"acm", false},
	}
	for _, tt := range tests {
		got, err := repo.ExistsFold(ctx, tt.slug)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.slug)
	}
}

func TestTenantRecord_SlugFallsBackToKey(t *testing.T) {
	rec := TenantRecord{Key: "tenant:legacy", Tenant: &models.Tenant{ID: "x"}}
	assert.Equal(t, "legacy", rec.Slug())
}

func TestUserRepository_EmailIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(store.NewMemoryStore())

	require.NoError(t, repo.Save(ctx, &models.User{ID: "u1", Email: "Owner@Example.com", Role: models.RoleUser}))

	got, err := repo.GetByEmail(ctx, "owner@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)

	err = repo.Update(ctx, "owner@example.com", func(u *models.User, exists bool) error {
		assert.True(t, exists)
		u.Tenants = append(u.Tenants, "t9")
		return nil
	})
	require.NoError(t, err)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, []string{"t9"}, users[0].Tenants)
}
