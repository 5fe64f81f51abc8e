package handlers

import (
	"net/http"
	"time"

	"biolink/internal/engine/analytics"
	"biolink/internal/pkg/errors"
)

type AnalyticsHandler struct {
	analytics *analytics.Service
}

func NewAnalyticsHandler(svc *analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: svc}
}

// parseBound accepts a calendar date or an RFC 3339 instant. endOfDay moves a bare date to its last instant.
func parseBound(s string, endOfDay bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

// Report serves ?from=&to= windows or ?campaign= reports for the current tenant.
func (h *AnalyticsHandler) Report(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	from, err := parseBound(q.Get("from"), false)
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid from date", nil)
		return
	}
	to, err := parseBound(q.Get("to"), true)
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid to date", nil)
		return
	}

	report, err := h.analytics.Report(r.Context(), currentTenant(r).ID, analytics.Query{
		Start:      from,
		End:        to,
		CampaignID: q.Get("campaign"),
	})
	if err != nil {
		errors.WriteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
