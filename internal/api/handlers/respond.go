package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "biolink/internal/api/context"
	"biolink/internal/pkg/errors"
	"biolink/internal/platform/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeBody writes a 400 and returns false when the body is not valid JSON for v.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return false
	}
	return true
}

func param(r *http.Request, name string) string {
	ps, _ := r.Context().Value(apiContext.Params).(httprouter.Params)
	return ps.ByName(name)
}

func currentUser(r *http.Request) *models.User {
	u, _ := r.Context().Value(apiContext.User).(*models.User)
	return u
}

func currentTenant(r *http.Request) *models.Tenant {
	t, _ := r.Context().Value(apiContext.Tenant).(*models.Tenant)
	return t
}
