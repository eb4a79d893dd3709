package httpapi

import (
	"net/http"
	"time"

	"github.com/lightfoot-dev/idbroker/internal/token"
)

const (
	accessCookie  = "access_token"
	refreshCookie = "refresh_token"
	stateCookie   = "oauth_state"
)

// CookiePolicy fixes the attributes every broker cookie is written with.
type CookiePolicy struct {
	Domain string
	Secure bool
}

func (p CookiePolicy) set(w http.ResponseWriter, name, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   p.Domain,
		Expires:  expires,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (p CookiePolicy) clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   p.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// setTokenCookies writes the issued pair. The raw refresh value exists only
// here and in the client's cookie jar; the store holds its hash.
func (a *API) setTokenCookies(w http.ResponseWriter, issued *token.Token) {
	a.cookies.set(w, accessCookie, issued.LocalAccessToken, issued.LocalAccessTokenExpiresAt)
	a.cookies.set(w, refreshCookie, issued.RawLocalRefreshToken, issued.LocalRefreshTokenExpiresAt)
}

func (a *API) clearTokenCookies(w http.ResponseWriter) {
	a.cookies.clear(w, accessCookie)
	a.cookies.clear(w, refreshCookie)
}
