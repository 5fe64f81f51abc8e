package handlers

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"biolink/internal/pkg/errors"
	"biolink/internal/pkg/validator"
	"biolink/internal/platform/auth"
	"biolink/internal/platform/mailer"
	"biolink/internal/platform/metrics"
	"biolink/internal/platform/models"
)

// AccountService is the part of the identity model the auth endpoints need.
type AccountService interface {
	LookupUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.Tenant, error)
}

type AuthHandler struct {
	accounts  AccountService
	tokenSvc  *auth.TokenService
	guard     *auth.MagicLinkGuard
	mailer    mailer.Sender
	appDomain string
}

func NewAuthHandler(accounts AccountService, tokenSvc *auth.TokenService, guard *auth.MagicLinkGuard, sender mailer.Sender, appDomain string) *AuthHandler {
	return &AuthHandler{
		accounts:  accounts,
		tokenSvc:  tokenSvc,
		guard:     guard,
		mailer:    sender,
		appDomain: appDomain,
	}
}

type LoginRequest struct {
	Email string `json:"email"`
}

type VerifyRequest struct {
	Token string `json:"token"`
}

type SessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

type MeResponse struct {
	User    *models.User     `json:"user"`
	Tenants []*models.Tenant `json:"tenants"`
}

const loginAccepted = "If the address is registered, a sign-in link is on its way"

// Login answers 202 whether or not the address belongs to a user.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	email, err := validator.NormalizeEmail(req.Email)
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, err.Error(), nil)
		return
	}

	user, err := h.accounts.LookupUserByEmail(r.Context(), email)
	if err != nil && !errors.Is(err, errors.ErrNotFound) {
		errors.WriteDomainError(w, err)
		return
	}
	if user == nil {
		metrics.MagicLinksSent.WithLabelValues("unknown_email").Inc()
		writeJSON(w, http.StatusAccepted, map[string]string{"message": loginAccepted})
		return
	}

	token, expiresAt, err := h.tokenSvc.GenerateMagicLinkToken(user.Email)
	if err != nil {
		errors.WriteDomainError(w, err)
		return
	}

	if err := h.mailer.SendMagicLink(r.Context(), user.Email, h.verifyURL(token), expiresAt); err != nil {
		metrics.MagicLinksSent.WithLabelValues("failed").Inc()
		log.Error().Err(err).Str("email", user.Email).Msg("Failed to send magic link")
		errors.WriteDomainError(w, err)
		return
	}

	metrics.MagicLinksSent.WithLabelValues("sent").Inc()
	writeJSON(w, http.StatusAccepted, map[string]string{"message": loginAccepted})
}

func (h *AuthHandler) verifyURL(token string) string {
	scheme := "https"
	if strings.HasPrefix(h.appDomain, "localhost") || strings.HasPrefix(h.appDomain, "127.0.0.1") {
		scheme = "http"
	}
	return scheme + "://" + h.appDomain + "/auth/verify?token=" + url.QueryEscape(token)
}

// Verify exchanges a magic-link token, once, for a session token.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	claims, err := h.tokenSvc.ValidateToken(req.Token, auth.PurposeMagicLink)
	if err != nil {
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid or expired link", nil)
		return
	}

	if err := h.guard.Consume(r.Context(), claims); err != nil {
		if stderrors.Is(err, auth.ErrTokenUsed) {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "This link has already been used", nil)
			return
		}
		errors.WriteDomainError(w, err)
		return
	}

	user, err := h.accounts.LookupUserByEmail(r.Context(), claims.Email)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Unknown user", nil)
			return
		}
		errors.WriteDomainError(w, err)
		return
	}

	token, expiresAt, err := h.tokenSvc.GenerateSessionToken(user.Email)
	if err != nil {
		errors.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{Token: token, ExpiresAt: expiresAt, User: user})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	tenants := make([]*models.Tenant, 0, len(user.Tenants))
	for _, id := range user.Tenants {
		t, err := h.accounts.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				// deleted tenants stay referenced from users
				continue
			}
			errors.WriteDomainError(w, err)
			return
		}
		tenants = append(tenants, t)
	}

	writeJSON(w, http.StatusOK, MeResponse{User: user, Tenants: tenants})
}
