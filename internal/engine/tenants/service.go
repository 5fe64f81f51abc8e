package tenants

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"biolink/internal/engine/analytics"
	"biolink/internal/engine/pages"
	"biolink/internal/platform/audit"
	"biolink/internal/platform/models"
	"biolink/internal/platform/repositories"
	"biolink/internal/platform/store"
	apperrors "biolink/internal/pkg/errors"
	"biolink/internal/pkg/validator"
)

type Service struct {
	tenants   *repositories.TenantRepository
	users     *repositories.UserRepository
	configs   *pages.Repository
	analytics *analytics.Repository
	audit     *audit.Logger
	now       func() time.Time
}

func NewService(s store.Store, auditLog *audit.Logger) *Service {
	return &Service{
		tenants:   repositories.NewTenantRepository(s),
		users:     repositories.NewUserRepository(s),
		configs:   pages.NewRepository(s),
		analytics: analytics.NewRepository(s),
		audit:     auditLog,
		now:       time.Now,
	}
}

func tenantNotFound(what string) error {
	return fmt.Errorf("%w: tenant %s", apperrors.ErrNotFound, what)
}

// LookupBySlug tries the slug as given, then its uppercase form written by key normalisation.
func (s *Service) LookupBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	t, err := s.tenants.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if t == nil && strings.ToUpper(slug) != slug {
		if t, err = s.tenants.GetBySlug(ctx, strings.ToUpper(slug)); err != nil {
			return nil, err
		}
	}
	if t == nil {
		return nil, tenantNotFound(slug)
	}
	return t, nil
}

func (s *Service) LookupUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: user %s", apperrors.ErrNotFound, email)
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	t, err := s.tenants.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, tenantNotFound(id)
	}
	return t, nil
}

func (s *Service) ListTenants(ctx context.Context) ([]*models.Tenant, error) {
	records, err := s.tenants.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Tenant, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Tenant)
	}
	return out, nil
}

// CreateTenant registers slug, its empty page and analytics log, and the owner's membership.
// The existence check and the write are not atomic; concurrent creates of one slug are last-writer-wins.
func (s *Service) CreateTenant(ctx context.Context, name, displayName, ownerEmail string) (*models.Tenant, *models.User, error) {
	if err := ValidateSlug(name); err != nil {
		return nil, nil, err
	}
	email, err := validator.NormalizeEmail(ownerEmail)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	if displayName == "" {
		displayName = name
	}

	exists, err := s.tenants.ExistsFold(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, fmt.Errorf("%w: tenant %s already exists", apperrors.ErrConflict, name)
	}

	now := s.now().Unix()
	tenant := &models.Tenant{
		ID:          uuid.New().String(),
		Name:        name,
		DisplayName: displayName,
		CreatedAt:   now,
	}

	if err := s.configs.Save(ctx, tenant.ID, pages.NewConfig(displayName)); err != nil {
		return nil, nil, err
	}
	if err := s.analytics.Create(ctx, tenant.ID); err != nil {
		return nil, nil, err
	}

	owner, err := s.addMembership(ctx, email, tenant.ID)
	if err != nil {
		return nil, nil, err
	}

	tenant.Users = []string{owner.ID}
	if err := s.tenants.Save(ctx, tenant); err != nil {
		return nil, nil, err
	}

	s.audit.Log(ctx, "tenant.create", "tenant", tenant.ID, map[string]interface{}{
		"slug":  tenant.Name,
		"owner": owner.Email,
	})
	return tenant, owner, nil
}

// addMembership creates the user with role user, or appends tenantID to an existing user.
func (s *Service) addMembership(ctx context.Context, email, tenantID string) (*models.User, error) {
	var result models.User
	err := s.users.Update(ctx, email, func(u *models.User, exists bool) error {
		if !exists {
			*u = models.User{
				ID:        uuid.New().String(),
				Email:     email,
				Tenants:   []string{},
				Role:      models.RoleUser,
				CreatedAt: s.now().Unix(),
			}
		}
		if !u.MemberOf(tenantID) {
			u.Tenants = append(u.Tenants, tenantID)
		}
		result = *u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteTenant removes only the tenant record. Its config, analytics and the ids held in
// User.Tenants stay behind.
func (s *Service) DeleteTenant(ctx context.Context, id string) error {
	rec, err := s.tenants.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return tenantNotFound(id)
	}
	if err := s.tenants.DeleteRecord(ctx, rec); err != nil {
		return err
	}

	s.audit.Log(ctx, "tenant.delete", "tenant", id, map[string]interface{}{"slug": rec.Slug()})
	return nil
}

// InviteUser grants email access to the tenant, creating the user when needed.
func (s *Service) InviteUser(ctx context.Context, tenantID, email string) (*models.User, error) {
	email, err := validator.NormalizeEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	rec, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, tenantNotFound(tenantID)
	}

	user, err := s.addMembership(ctx, email, tenantID)
	if err != nil {
		return nil, err
	}

	err = s.tenants.UpdateRecord(ctx, rec, func(t *models.Tenant, exists bool) error {
		if !exists {
			return tenantNotFound(tenantID)
		}
		if !t.HasUser(user.ID) {
			t.Users = append(t.Users, user.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, "member.invite", "user", user.ID, map[string]interface{}{"email": user.Email})
	return user, nil
}

func (s *Service) RemoveMember(ctx context.Context, tenantID, email string) error {
	user, err := s.LookupUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !user.MemberOf(tenantID) {
		return fmt.Errorf("%w: %s is not a member", apperrors.ErrNotFound, email)
	}

	err = s.users.Update(ctx, email, func(u *models.User, exists bool) error {
		if !exists {
			return store.ErrSkip
		}
		u.Tenants = slices.DeleteFunc(u.Tenants, func(id string) bool { return id == tenantID })
		return nil
	})
	if err != nil {
		return err
	}

	rec, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return err
	}
	if rec != nil {
		err = s.tenants.UpdateRecord(ctx, rec, func(t *models.Tenant, exists bool) error {
			if !exists {
				return store.ErrSkip
			}
			t.Users = slices.DeleteFunc(t.Users, func(id string) bool { return id == user.ID })
			return nil
		})
		if err != nil {
			return err
		}
	}

	s.audit.Log(ctx, "member.remove", "user", user.ID, map[string]interface{}{"email": user.Email})
	return nil
}

// BootstrapMasterAdmin makes sure email exists with the master-admin role.
func (s *Service) BootstrapMasterAdmin(ctx context.Context, email string) (*models.User, error) {
	email, err := validator.NormalizeEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}

	var result models.User
	err = s.users.Update(ctx, email, func(u *models.User, exists bool) error {
		if exists && u.IsMasterAdmin() {
			result = *u
			return store.ErrSkip
		}
		if !exists {
			*u = models.User{
				ID:        uuid.New().String(),
				Email:     email,
				Tenants:   []string{},
				CreatedAt: s.now().Unix(),
			}
		}
		u.Role = models.RoleMasterAdmin
		result = *u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func AuthorizeMasterAdmin(u *models.User) bool {
	return u.IsMasterAdmin()
}

// ResolveActiveTenant picks the tenant a request acts on: requested when the user may use it,
// otherwise the user's first tenant. Master admins may act on any tenant.
func ResolveActiveTenant(u *models.User, requested string) (string, error) {
	if requested != "" {
		if u.MemberOf(requested) || AuthorizeMasterAdmin(u) {
			return requested, nil
		}
		return "", fmt.Errorf("%w: not a member of tenant %s", apperrors.ErrForbidden, requested)
	}

	if active := u.ActiveTenant(); active != "" {
		return active, nil
	}
	return "", fmt.Errorf("%w: user has no tenant", apperrors.ErrForbidden)
}
