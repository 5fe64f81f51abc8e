package middleware

import (
	"context"
	"net/http"
	"strings"

	apiContext "biolink/internal/api/context"
	"biolink/internal/pkg/errors"
	"biolink/internal/platform/audit"
	"biolink/internal/platform/auth"
	"biolink/internal/platform/models"
)

// UserLookup loads the account a session token was issued for.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type AuthMiddleware struct {
	tokenSvc *auth.TokenService
	users    UserLookup
}

func NewAuthMiddleware(tokenSvc *auth.TokenService, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, users: users}
}

func (m *AuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Missing authorization header", nil)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid authorization header format", nil)
			return
		}

		claims, err := m.tokenSvc.ValidateToken(parts[1], auth.PurposeSession)
		if err != nil {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid or expired token", nil)
			return
		}

		user, err := m.users.GetByEmail(r.Context(), claims.Email)
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load user", nil)
			return
		}
		if user == nil {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Unknown user", nil)
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.Claims, claims)
		ctx = context.WithValue(ctx, apiContext.User, user)
		ctx = audit.WithActor(ctx, audit.Actor{Email: user.Email, IP: ClientIP(r)})
		next(w, r.WithContext(ctx))
	}
}

// RequireMasterAdmin rejects callers without the master-admin role. It runs after Handle.
func RequireMasterAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := r.Context().Value(apiContext.User).(*models.User)
		if !ok {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "No authenticated user", nil)
			return
		}
		if !user.IsMasterAdmin() {
			errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Insufficient permissions", nil)
			return
		}
		next(w, r)
	}
}
