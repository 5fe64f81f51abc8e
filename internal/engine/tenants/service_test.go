package tenants

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biolink/internal/engine/analytics"
	"biolink/internal/engine/pages"
	"biolink/internal/platform/audit"
	"biolink/internal/platform/models"
	"biolink/internal/platform/store"
	apperrors "biolink/internal/pkg/errors"
)

func newTestService() (*Service, *store.MemoryStore) {
	mem := store.NewMemoryStore()
	return NewService(mem, audit.NewLogger(zerolog.Nop())), mem
}

func TestService_CreateTenant(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService()

	tenant, owner, err := svc.CreateTenant(ctx, "acme", "Acme Inc", "Owner@Acme.com")
	require.NoError(t, err)
	assert.NotEmpty(t, tenant.ID)
	assert.Equal(t, "acme", tenant.Name)
	assert.Equal(t, []string{owner.ID}, tenant.Users)
	assert.Equal(t, "owner@acme.com", owner.Email)
	assert.Equal(t, []string{tenant.ID}, owner.Tenants)
	assert.Equal(t, models.RoleUser, owner.Role)

	cfg, err := pages.NewRepository(mem).Get(ctx, tenant.ID)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "Acme Inc", cfg.CompanyName)
	assert.Equal(t, pages.DefaultTheme(), cfg.Theme)

	rec, err := analytics.NewRepository(mem).Get(ctx, tenant.ID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Empty(t, rec.Visits)

	_, _, err = svc.CreateTenant(ctx, "acme", "Again", "other@acme.com")
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, _, err = svc.CreateTenant(ctx, "api", "Reserved", "other@acme.com")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, _, err = svc.CreateTenant(ctx, "beta", "Beta", "not-an-email")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestService_CreateTenantRejectsCaseVariants(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService()

	_, _, err := svc.CreateTenant(ctx, "acme", "Acme", "owner@acme.com")
	require.NoError(t, err)

	for _, name := range []string{"Acme", "ACME", "aCmE"} {
		_, _, err := svc.CreateTenant(ctx, name, "Copy", "other@acme.com")
		assert.ErrorIs(t, err, apperrors.ErrConflict, name)
	}

	keys, err := mem.ListKeys(ctx, "tenant:")
	require.NoError(t, err)
	assert.Equal(t, []string{"tenant:acme"}, keys)
}

func TestService_CreateTenantAppendsExistingOwner(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	first, owner, err := svc.CreateTenant(ctx, "acme", "Acme", "owner@acme.com")
	require.NoError(t, err)
	second, again, err := svc.CreateTenant(ctx, "beta", "Beta", "owner@acme.com")
	require.NoError(t, err)

	assert.Equal(t, owner.ID, again.ID)
	assert.Equal(t, []string{first.ID, second.ID}, again.Tenants)
	assert.Equal(t, first.ID, again.ActiveTenant())
}

func TestService_LookupBySlugFallsBackToUppercase(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService()

	require.NoError(t, store.SetJSON(ctx, mem, store.TenantKey("ACME"), &models.Tenant{ID: "t1", Name: "ACME"}))

	got, err := svc.LookupBySlug(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)

	_, err = svc.LookupBySlug(ctx, "nobody")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, _, err = svc.CreateTenant(ctx, "acme", "Clash", "x@acme.com")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestService_DeleteTenantDoesNotCascade(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService()

	tenant, owner, err := svc.CreateTenant(ctx, "acme", "Acme", "owner@acme.com")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTenant(ctx, tenant.ID))
	assert.ErrorIs(t, svc.DeleteTenant(ctx, tenant.ID), apperrors.ErrNotFound)

	_, err = svc.LookupBySlug(ctx, "acme")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	for _, key := range []string{store.ConfigKey(tenant.ID), store.AnalyticsKey(tenant.ID)} {
		exists, err := mem.Exists(ctx, key)
		require.NoError(t, err)
		assert.True(t, exists, key)
	}

	user, err := svc.LookupUserByEmail(ctx, owner.Email)
	require.NoError(t, err)
	assert.Equal(t, []string{tenant.ID}, user.Tenants)
}

func TestService_InviteAndRemoveMember(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	tenant, _, err := svc.CreateTenant(ctx, "acme", "Acme", "owner@acme.com")
	require.NoError(t, err)

	member, err := svc.InviteUser(ctx, tenant.ID, "Editor@Acme.com")
	require.NoError(t, err)
	assert.Equal(t, []string{tenant.ID}, member.Tenants)

	// inviting twice keeps one membership
	_, err = svc.InviteUser(ctx, tenant.ID, "editor@acme.com")
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Len(t, got.Users, 2)
	assert.True(t, got.HasUser(member.ID))

	_, err = svc.InviteUser(ctx, "missing", "x@acme.com")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, svc.RemoveMember(ctx, tenant.ID, "editor@acme.com"))
	assert.ErrorIs(t, svc.RemoveMember(ctx, tenant.ID, "editor@acme.com"), apperrors.ErrNotFound)

	user, err := svc.LookupUserByEmail(ctx, "editor@acme.com")
	require.NoError(t, err)
	assert.Empty(t, user.Tenants)

	got, err = svc.GetByID(ctx, tenant.ID)
	require.NoError(t, err)
	assert.False(t, got.HasUser(member.ID))
}

func TestService_BootstrapMasterAdmin(t *testing.T) {
	ctx := context.Background()
	svc, mem := newTestService()

	admin, err := svc.BootstrapMasterAdmin(ctx, "root@biolink.dev")
	require.NoError(t, err)
	assert.True(t, AuthorizeMasterAdmin(admin))

	writes := mem.Writes()
	again, err := svc.BootstrapMasterAdmin(ctx, "root@biolink.dev")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)
	assert.Equal(t, writes, mem.Writes())

	tenants, err := svc.ListTenants(ctx)
	require.NoError(t, err)
	assert.Empty(t, tenants)
}

func TestResolveActiveTenant(t *testing.T) {
	member := &models.User{Tenants: []string{"t1", "t2"}, Role: models.RoleUser}
	master := &models.User{Role: models.RoleMasterAdmin}
	orphan := &models.User{Role: models.RoleUser}

	tests := []struct {
		name      string
		user      *models.User
		requested string
		want      string
		wantErr   error
	}{
		{name: "Default First", user: member, want: "t1"},
		{name: "Requested Member", user: member, requested: "t2", want: "t2"},
		{name: "Requested Foreign", user: member, requested: "t3", wantErr: apperrors.ErrForbidden},
		{name: "Master Any", user: master, requested: "t3", want: "t3"},
		{name: "Master Without Request", user: master, wantErr: apperrors.ErrForbidden},
		{name: "No Tenants", user: orphan, wantErr: apperrors.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveActiveTenant(tt.user, tt.requested)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
