package httpapi

import (
	"net/http"
	"strings"

	"github.com/lightfoot-dev/idbroker/internal/audit"
	"github.com/lightfoot-dev/idbroker/internal/identity"
	"github.com/lightfoot-dev/idbroker/internal/obs"
)

// SAMLAssertion consumes an already-verified assertion result (NameID and
// optional email) and issues a local pair. Signature validation happens in
// the SAML terminator in front of this service.
func (a *API) SAMLAssertion(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, r, http.StatusBadRequest, "malformed form body")
		return
	}

	nameID := strings.TrimSpace(r.PostFormValue("name_id"))
	if nameID == "" {
		respondError(w, r, http.StatusBadRequest, "missing name_id")
		return
	}

	owner := identity.ResourceOwner{
		Provider: identity.ProviderKeycloakSAML,
		Subject:  nameID,
		Email:    strings.TrimSpace(r.PostFormValue("email")),
	}

	user, err := a.users.FindOrCreate(r.Context(), owner)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "user reconciliation failed")
		return
	}

	issued, err := a.tokens.Issue(r.Context(), a.tokens.CreateBare(), user)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "token issuance failed")
		return
	}

	obs.CountLogin(string(identity.ProviderKeycloakSAML))
	obs.CountTokenIssued()
	_ = audit.LogEvent(audit.WithUserID(r.Context(), user.ID), audit.EventLogin, map[string]any{
		"provider": string(identity.ProviderKeycloakSAML),
	})

	a.setTokenCookies(w, issued)
	http.Redirect(w, r, "/", http.StatusFound)
}

// SAMLMetadata serves the cached upstream descriptor.
func (a *API) SAMLMetadata(w http.ResponseWriter, r *http.Request) {
	if a.saml == nil {
		respondError(w, r, http.StatusNotFound, "saml not configured")
		return
	}
	raw, err := a.saml.Metadata(r.Context())
	if err != nil {
		respondError(w, r, http.StatusBadGateway, "metadata fetch failed")
		return
	}
	w.Header().Set("Content-Type", "application/samlmetadata+xml")
	_, _ = w.Write(raw)
}
