package middleware

import (
	"context"
	"net/http"

	apiContext "biolink/internal/api/context"
	"biolink/internal/engine/tenants"
	"biolink/internal/pkg/errors"
	"biolink/internal/platform/audit"
	"biolink/internal/platform/models"
)

const TenantHeader = "X-Tenant-ID"

// TenantLookup confirms the selected tenant still exists.
type TenantLookup interface {
	GetByID(ctx context.Context, id string) (*models.Tenant, error)
}

type TenantMiddleware struct {
	tenants TenantLookup
}

func NewTenantMiddleware(tenants TenantLookup) *TenantMiddleware {
	return &TenantMiddleware{tenants: tenants}
}

// Handle selects the tenant a dashboard request works on: the X-Tenant-ID header when the
// user may use it, otherwise the user's first tenant.
func (m *TenantMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := r.Context().Value(apiContext.User).(*models.User)
		if !ok {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No authenticated user", nil)
			return
		}

		tenantID, err := tenants.ResolveActiveTenant(user, r.Header.Get(TenantHeader))
		if err != nil {
			errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, err.Error(), nil)
			return
		}

		tenant, err := m.tenants.GetByID(r.Context(), tenantID)
		if err != nil && !errors.Is(err, errors.ErrNotFound) {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load tenant", nil)
			return
		}
		if tenant == nil {
			errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Tenant not found", nil)
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Tenant, tenant)
		if actor, ok := audit.ActorFrom(ctx); ok {
			actor.TenantID = tenant.ID
			ctx = audit.WithActor(ctx, actor)
		}
		next(w, r.WithContext(ctx))
	}
}
