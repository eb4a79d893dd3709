package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lightfoot-dev/idbroker/internal/token"
)

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "idbroker-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

// Me resolves the presented access token to the local user.
func (a *API) Me(w http.ResponseWriter, r *http.Request) {
	accessToken, err := extractAccessToken(r)
	if err != nil {
		respondError(w, r, http.StatusUnauthorized, err.Error())
		return
	}

	t, err := a.tokens.Authenticate(r.Context(), accessToken)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrNotFound), errors.Is(err, token.ErrRevoked), errors.Is(err, token.ErrExpired):
			respondError(w, r, http.StatusUnauthorized, "invalid access token")
		default:
			respondError(w, r, http.StatusInternalServerError, "authentication error")
		}
		return
	}

	user, err := a.users.FindByID(r.Context(), t.UserID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "user lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":            user.ID,
		"email":         user.Email,
		"roles":         user.Roles,
		"access_levels": user.AccessLevels,
		"provider":      user.Provider,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	writeJSON(w, code, map[string]any{
		"error":      msg,
		"request_id": requestIDFrom(r.Context()),
	})
}
