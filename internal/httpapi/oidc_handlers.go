package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lightfoot-dev/idbroker/internal/audit"
	"github.com/lightfoot-dev/idbroker/internal/identity"
	"github.com/lightfoot-dev/idbroker/internal/ids"
	"github.com/lightfoot-dev/idbroker/internal/obs"
)

const stateTTL = 10 * time.Minute

// OIDCLogin redirects the browser to the upstream realm's authorization
// endpoint with a fresh state value.
func (a *API) OIDCLogin(w http.ResponseWriter, r *http.Request) {
	provider, ok := identity.ParseProvider(chi.URLParam(r, "provider"))
	if !ok {
		respondError(w, r, http.StatusNotFound, "unknown provider")
		return
	}
	client, err := a.resolveUpstream(provider)
	if err != nil {
		respondError(w, r, http.StatusNotFound, "provider not configured")
		return
	}

	state := ids.New()
	a.cookies.set(w, stateCookie, state, time.Now().Add(stateTTL))
	http.Redirect(w, r, client.AuthCodeURL(state), http.StatusFound)
}

// OIDCCallback completes the code flow: exchange, claim normalization,
// reconciliation, local pair issuance, cookie handoff.
func (a *API) OIDCCallback(w http.ResponseWriter, r *http.Request) {
	provider, ok := identity.ParseProvider(chi.URLParam(r, "provider"))
	if !ok {
		respondError(w, r, http.StatusNotFound, "unknown provider")
		return
	}
	client, err := a.resolveUpstream(provider)
	if err != nil {
		respondError(w, r, http.StatusNotFound, "provider not configured")
		return
	}

	if !a.validState(r) {
		respondError(w, r, http.StatusBadRequest, "state mismatch")
		return
	}
	a.cookies.clear(w, stateCookie)

	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, r, http.StatusBadRequest, "missing authorization code")
		return
	}

	upstreamTok, err := client.Exchange(r.Context(), code)
	if err != nil {
		respondError(w, r, http.StatusBadGateway, "code exchange failed")
		return
	}

	claims, err := client.Claims(r.Context(), upstreamTok)
	if err != nil {
		respondError(w, r, http.StatusBadGateway, "claim verification failed")
		return
	}

	accessRoles, err := identity.ParserFor(provider).ParseAccessRoles(claims)
	if err != nil {
		// The IdP sent claims this broker cannot interpret. That is an
		// upstream contract violation, not a client error.
		respondError(w, r, http.StatusInternalServerError, "malformed authorization claims")
		return
	}

	owner, err := identity.Normalize(claims, provider, accessRoles)
	if err != nil {
		if errors.Is(err, identity.ErrMissingSubjectClaim) {
			respondError(w, r, http.StatusInternalServerError, "missing subject claim")
			return
		}
		respondError(w, r, http.StatusInternalServerError, "identity normalization failed")
		return
	}

	user, err := a.users.FindOrCreate(r.Context(), owner)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "user reconciliation failed")
		return
	}

	tok := a.tokens.CreateFromUpstream(upstreamTok.AccessToken, upstreamTok.RefreshToken, upstreamTok.Expiry)
	issued, err := a.tokens.Issue(r.Context(), tok, user)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "token issuance failed")
		return
	}

	obs.CountLogin(string(provider))
	obs.CountTokenIssued()
	_ = audit.LogEvent(audit.WithUserID(r.Context(), user.ID), audit.EventLogin, map[string]any{
		"provider": string(provider),
	})

	a.setTokenCookies(w, issued)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (a *API) resolveUpstream(provider identity.Provider) (upstream, error) {
	if a.resolve == nil {
		return nil, errors.New("httpapi: no upstream providers configured")
	}
	return a.resolve(provider)
}

func (a *API) validState(r *http.Request) bool {
	state := r.URL.Query().Get("state")
	if state == "" {
		return false
	}
	c, err := r.Cookie(stateCookie)
	return err == nil && c.Value == state
}
