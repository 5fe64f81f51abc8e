package handlers

import (
	"net/http"

	"biolink/internal/engine/tenants"
	"biolink/internal/pkg/errors"
)

type MemberHandler struct {
	tenants *tenants.Service
}

func NewMemberHandler(svc *tenants.Service) *MemberHandler {
	return &MemberHandler{tenants: svc}
}

type InviteRequest struct {
	Email string `json:"email"`
}

func (h *MemberHandler) Invite(w http.ResponseWriter, r *http.Request) {
	var req InviteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.tenants.InviteUser(r.Context(), currentTenant(r).ID, req.Email)
	if err != nil {
		errors.WriteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *MemberHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.tenants.RemoveMember(r.Context(), currentTenant(r).ID, param(r, "email")); err != nil {
		errors.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
