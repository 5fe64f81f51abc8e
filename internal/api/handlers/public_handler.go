package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"biolink/internal/api/middleware"
	"biolink/internal/engine/analytics"
	"biolink/internal/engine/pages"
	"biolink/internal/pkg/errors"
)

type PublicHandler struct {
	pages     *pages.Service
	analytics *analytics.Service
}

func NewPublicHandler(pagesSvc *pages.Service, analyticsSvc *analytics.Service) *PublicHandler {
	return &PublicHandler{pages: pagesSvc, analytics: analyticsSvc}
}

func visitor(r *http.Request) analytics.Visitor {
	return analytics.Visitor{IP: middleware.ClientIP(r), UserAgent: r.UserAgent()}
}

// View returns the public page and records the visit. Recording failures do not fail the view.
func (h *PublicHandler) View(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.PublicView(r.Context(), param(r, "slug"))
	if err != nil {
		errors.WriteDomainError(w, err)
		return
	}

	if err := h.analytics.RecordVisit(r.Context(), page.TenantID, visitor(r), time.Now()); err != nil {
		log.Error().Err(err).Str("tenant_id", page.TenantID).Msg("Failed to record visit")
	}

	writeJSON(w, http.StatusOK, page)
}

// Click records the click and redirects to the link target.
func (h *PublicHandler) Click(w http.ResponseWriter, r *http.Request) {
	tenant, link, err := h.pages.ResolveLink(r.Context(), param(r, "slug"), param(r, "link_id"))
	if err != nil {
		errors.WriteDomainError(w, err)
		return
	}

	if err := h.analytics.RecordClick(r.Context(), tenant.ID, link.ID, visitor(r), time.Now()); err != nil {
		log.Error().Err(err).Str("tenant_id", tenant.ID).Msg("Failed to record click")
	}

	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, link.URL, http.StatusFound)
}

func (h *PublicHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	size := 0
	if s := r.URL.Query().Get("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "size must be a number", nil)
			return
		}
		size = n
	}

	png, err := h.pages.QRCode(r.Context(), param(r, "slug"), size)
	if err != nil {
		errors.WriteDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
