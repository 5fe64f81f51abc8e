package handlers

import (
	"net/http"

	"biolink/internal/engine/pages"
	"biolink/internal/pkg/errors"
	"biolink/internal/platform/audit"
)

type PageHandler struct {
	pages *pages.Service
	audit *audit.Logger
}

func NewPageHandler(svc *pages.Service, auditLog *audit.Logger) *PageHandler {
	return &PageHandler{pages: svc, audit: auditLog}
}

type MoveLinkRequest struct {
	Direction pages.Direction `json:"direction"`
}

func (h *PageHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.pages.GetConfig(r.Context(), currentTenant(r).ID)
	if err != nil {
		errors.WriteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// ReplaceConfig overwrites the whole page document with the request body.
func (h *PageHandler) ReplaceConfig(w http.ResponseWriter, r *http.Request) {
	var cfg pages.Config
	if !decodeBody(w, r, &cfg) {
		return
	}

	tenantID := currentTenant(r).ID
	if err := h.pages.ReplaceConfig(r.Context(), tenantID, &cfg); err != nil {
		errors.WriteDomainError(w, err)
		return
	}

	h.audit.Log(r.Context(), "config.replace", "config", tenantID, nil)
	writeJSON(w, http.StatusOK, &cfg)
}

func (h *PageHandler) AddLink(w http.ResponseWriter, r *http.Request) {
	var link pages.Link
	if !decodeBody(w, r, &link) {
		return
	}

	created, err := h.pages.AddLink(r.Context(), currentTenant(r).ID, link)
	if err != nil {
		errors.WriteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *PageHandler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	var patch pages.LinkPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	updated, err := h.pages.UpdateLink(r.Context(), currentTenant(r).ID, param(r, "link_id"), patch)
	if err != nil {
		errors.WriteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *PageHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	if err := h.pages.DeleteLink(r.Context(), currentTenant(r).ID, param(r, "link_id")); err != nil {
		errors.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PageHandler) MoveLink(w http.ResponseWriter, r *http.Request) {
	var req MoveLinkRequest
	if !decodeBody(w, r, &req) {
		return
	}

	links, err := h.pages.MoveLink(r.Context(), currentTenant(r).ID, param(r, "link_id"), req.Direction)
	if err != nil {
		errors.WriteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"links": links})
}

func (h *PageHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var c pages.Campaign
	if !decodeBody(w, r, &c) {
		return
	}
	c.ID = ""

	saved, err := h.pages.SaveCampaign(r.Context(), currentTenant(r).ID, c)
	if err != nil {
		errors.WriteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *PageHandler) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	var c pages.Campaign
	if !decodeBody(w, r, &c) {
		return
	}
	c.ID = param(r, "campaign_id")

	saved, err := h.pages.SaveCampaign(r.Context(), currentTenant(r).ID, c)
	if err != nil {
		errors.WriteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *PageHandler) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	if err := h.pages.DeleteCampaign(r.Context(), currentTenant(r).ID, param(r, "campaign_id")); err != nil {
		errors.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
