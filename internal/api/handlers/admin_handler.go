package handlers

import (
	"net/http"

	"biolink/internal/engine/tenants"
	"biolink/internal/pkg/errors"
	"biolink/internal/platform/models"
)

type AdminHandler struct {
	tenants *tenants.Service
}

func NewAdminHandler(svc *tenants.Service) *AdminHandler {
	return &AdminHandler{tenants: svc}
}

type CreateTenantRequest struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	OwnerEmail  string `json:"ownerEmail"`
}

type CreateTenantResponse struct {
	Tenant *models.Tenant `json:"tenant"`
	Owner  *models.User   `json:"owner"`
}

func (h *AdminHandler) ListTenants(w http.ResponseWriter, r *http.Request) {
	list, err := h.tenants.ListTenants(r.Context())
	if err != nil {
		errors.WriteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tenants": list})
}

func (h *AdminHandler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var req CreateTenantRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tenant, owner, err := h.tenants.CreateTenant(r.Context(), req.Name, req.DisplayName, req.OwnerEmail)
	if err != nil {
		errors.WriteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateTenantResponse{Tenant: tenant, Owner: owner})
}

// DeleteTenant removes the tenant record only; page config, analytics and memberships remain.
func (h *AdminHandler) DeleteTenant(w http.ResponseWriter, r *http.Request) {
	if err := h.tenants.DeleteTenant(r.Context(), param(r, "tenant_id")); err != nil {
		errors.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
