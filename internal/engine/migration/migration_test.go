package migration

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biolink/internal/platform/models"
	"biolink/internal/platform/store"
)

func seed(t *testing.T, s store.Store, key string, v interface{}) {
	t.Helper()
	require.NoError(t, store.SetJSON(context.Background(), s, key, v))
}

func seedTenant(t *testing.T, s store.Store, slug, id string, owner string) {
	t.Helper()
	seed(t, s, store.TenantKey(slug), &models.Tenant{ID: id, Name: slug, DisplayName: slug})
	seed(t, s, store.ConfigKey(id), map[string]string{"companyName": slug})
	seed(t, s, store.AnalyticsKey(id), map[string][]interface{}{"visits": {}, "clicks": {}})

	err := store.UpdateJSON(context.Background(), s, store.UserKey(owner), func(u *models.User, exists bool) error {
		u.Email = owner
		u.Role = models.RoleUser
		u.Tenants = append(u.Tenants, id)
		return nil
	})
	require.NoError(t, err)
}

func keys(t *testing.T, s store.Store, prefix string) []string {
	t.Helper()
	k, err := s.ListKeys(context.Background(), prefix)
	require.NoError(t, err)
	return k
}

func TestMigrator_ApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	seedTenant(t, mem, "acme", "id-acme", "owner@acme.com")
	seedTenant(t, mem, "beta", "id-beta", "owner@acme.com")
	seedTenant(t, mem, "GAMMA", "ID-GAMMA", "g@gamma.com")

	m := New(mem, zerolog.Nop())
	opts := Options{Apply: true, UppercaseIDs: true}

	sum, err := m.Run(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, Summary{
		TenantsScanned: 3,
		TenantsMoved:   2,
		ConfigsMoved:   2,
		AnalyticsMoved: 2,
		UsersUpdated:   2,
	}, *sum)

	assert.Equal(t, []string{"tenant:ACME", "tenant:BETA", "tenant:GAMMA"}, keys(t, mem, store.TenantPrefix))
	assert.Equal(t, []string{"config:ID-ACME", "config:ID-BETA", "config:ID-GAMMA"}, keys(t, mem, store.ConfigPrefix))
	assert.Equal(t, []string{"analytics:ID-ACME", "analytics:ID-BETA", "analytics:ID-GAMMA"}, keys(t, mem, store.AnalyticsPrefix))

	var acme models.Tenant
	found, err := store.GetJSON(ctx, mem, store.TenantKey("ACME"), &acme)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "ACME", acme.Name)
	assert.Equal(t, "ID-ACME", acme.ID)
	assert.Equal(t, "acme", acme.DisplayName)

	var owner models.User
	_, err = store.GetJSON(ctx, mem, store.UserKey("owner@acme.com"), &owner)
	require.NoError(t, err)
	assert.Equal(t, []string{"ID-ACME", "ID-BETA"}, owner.Tenants)

	writes := mem.Writes()
	sum, err = m.Run(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, Summary{TenantsScanned: 3}, *sum)
	assert.Equal(t, writes, mem.Writes())
}

func TestMigrator_DryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	seedTenant(t, mem, "acme", "id-acme", "owner@acme.com")

	writes := mem.Writes()
	sum, err := New(mem, zerolog.Nop()).Run(ctx, Options{UppercaseIDs: true})
	require.NoError(t, err)

	assert.Equal(t, writes, mem.Writes())
	assert.Equal(t, 1, sum.TenantsMoved)
	assert.Equal(t, 1, sum.ConfigsMoved)
	assert.Equal(t, 1, sum.UsersUpdated)
	assert.Equal(t, []string{"tenant:acme"}, keys(t, mem, store.TenantPrefix))
}

func TestMigrator_KeepsIDsByDefault(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	seedTenant(t, mem, "acme", "id-acme", "owner@acme.com")

	sum, err := New(mem, zerolog.Nop()).Run(ctx, Options{Apply: true})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.TenantsMoved)
	assert.Zero(t, sum.ConfigsMoved)
	assert.Zero(t, sum.UsersUpdated)

	assert.Equal(t, []string{"tenant:ACME"}, keys(t, mem, store.TenantPrefix))
	assert.Equal(t, []string{"config:id-acme"}, keys(t, mem, store.ConfigPrefix))
}

func TestMigrator_CollisionLeavesBothKeys(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	seedTenant(t, mem, "ACME", "t1", "a@acme.com")
	seedTenant(t, mem, "acme", "t2", "b@acme.com")

	upper, err := mem.Get(ctx, store.TenantKey("ACME"))
	require.NoError(t, err)
	lower, err := mem.Get(ctx, store.TenantKey("acme"))
	require.NoError(t, err)

	sum, err := New(mem, zerolog.Nop()).Run(ctx, Options{Apply: true})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Conflicts)
	assert.Zero(t, sum.TenantsMoved)

	gotUpper, err := mem.Get(ctx, store.TenantKey("ACME"))
	require.NoError(t, err)
	gotLower, err := mem.Get(ctx, store.TenantKey("acme"))
	require.NoError(t, err)
	assert.Equal(t, upper, gotUpper)
	assert.Equal(t, lower, gotLower)
}

func TestMigrator_ResumesInterruptedMove(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	seedTenant(t, mem, "acme", "t1", "a@acme.com")
	// a previous run wrote the destination and died before deleting the source
	seed(t, mem, store.TenantKey("ACME"), &models.Tenant{ID: "t1", Name: "ACME", DisplayName: "acme"})

	sum, err := New(mem, zerolog.Nop()).Run(ctx, Options{Apply: true})
	require.NoError(t, err)
	assert.Zero(t, sum.Conflicts)
	assert.Equal(t, []string{"tenant:ACME"}, keys(t, mem, store.TenantPrefix))
}

type failingStore struct {
	store.Store
	failOn string
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if strings.HasPrefix(key, f.failOn) {
		return errors.New("write refused")
	}
	return f.Store.Set(ctx, key, value)
}

func TestMigrator_TenantErrorDoesNotAbort(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	seedTenant(t, mem, "acme", "id-acme", "a@acme.com")
	seedTenant(t, mem, "beta", "ID-BETA", "b@beta.com")

	fs := &failingStore{Store: mem, failOn: "config:ID-ACME"}
	sum, err := New(fs, zerolog.Nop()).Run(ctx, Options{Apply: true, UppercaseIDs: true})
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Errors)
	assert.Equal(t, 1, sum.TenantsMoved)
	assert.Equal(t, []string{"tenant:BETA", "tenant:acme"}, keys(t, mem, store.TenantPrefix))
}
