package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/lightfoot-dev/idbroker/internal/audit"
	"github.com/lightfoot-dev/idbroker/internal/obs"
	"github.com/lightfoot-dev/idbroker/internal/token"
)

// extractRefreshToken reads the raw refresh token from the refresh cookie, or
// from a form field for non-browser clients.
func extractRefreshToken(r *http.Request) string {
	if c, err := r.Cookie(refreshCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return strings.TrimSpace(r.PostFormValue("refresh_token"))
}

// Refresh rotates the presented refresh token into a successor pair.
func (a *API) Refresh(w http.ResponseWriter, r *http.Request) {
	raw := extractRefreshToken(r)
	if raw == "" {
		respondError(w, r, http.StatusBadRequest, "missing refresh token")
		return
	}

	successor, err := a.tokens.Rotate(r.Context(), raw)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrRevoked):
			// Replay of a spent token. Counted separately so reuse spikes
			// stand out from ordinary expiry noise.
			obs.CountRefreshReplay()
			_ = audit.LogEvent(r.Context(), audit.EventRefreshReplay, nil)
			respondError(w, r, http.StatusBadRequest, "refresh token revoked")
		case errors.Is(err, token.ErrExpired):
			respondError(w, r, http.StatusBadRequest, "refresh token expired")
		case errors.Is(err, token.ErrNotFound):
			respondError(w, r, http.StatusBadRequest, "unknown refresh token")
		default:
			respondError(w, r, http.StatusInternalServerError, "token rotation failed")
		}
		return
	}

	obs.CountTokenIssued()
	obs.CountTokenRevoked()
	_ = audit.LogEvent(audit.WithUserID(r.Context(), successor.UserID), audit.EventRefresh, nil)

	a.setTokenCookies(w, successor)
	writeJSON(w, http.StatusOK, map[string]any{
		"access_expires_at":  successor.LocalAccessTokenExpiresAt,
		"refresh_expires_at": successor.LocalRefreshTokenExpiresAt,
	})
}

// Logout revokes the presented refresh token and clears both cookies. Always
// succeeds from the client's point of view.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	if raw := extractRefreshToken(r); raw != "" {
		revoked, err := a.tokens.Revoke(r.Context(), raw)
		if err != nil {
			respondError(w, r, http.StatusInternalServerError, "revocation failed")
			return
		}
		if revoked {
			obs.CountTokenRevoked()
		}
		_ = audit.LogEvent(r.Context(), audit.EventLogout, nil)
	}

	a.clearTokenCookies(w)
	writeJSON(w, http.StatusOK, map[string]any{"status": "logged_out"})
}
