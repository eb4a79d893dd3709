package httpapi

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"

	"github.com/lightfoot-dev/idbroker/internal/config"
	"github.com/lightfoot-dev/idbroker/internal/identity"
	"github.com/lightfoot-dev/idbroker/internal/idp"
	"github.com/lightfoot-dev/idbroker/internal/obs"
	"github.com/lightfoot-dev/idbroker/internal/samlmeta"
	"github.com/lightfoot-dev/idbroker/internal/token"
)

// upstream is the slice of an IdP client the handlers need.
type upstream interface {
	Provider() identity.Provider
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Claims(ctx context.Context, tok *oauth2.Token) (map[string]any, error)
}

type upstreamResolver func(identity.Provider) (upstream, error)

// ReadyProbe pings the database for /readyz when one is configured.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Deps carries everything the HTTP layer needs.
type Deps struct {
	Users   *identity.Service
	Tokens  *token.Service
	IdP     *idp.Registry
	SAML    *samlmeta.Service
	DB      *sql.DB
	Cfg     *config.Config
	Version string
}

// API is the HTTP layer.
type API struct {
	router     chi.Router
	users      *identity.Service
	tokens     *token.Service
	resolve    upstreamResolver
	saml       *samlmeta.Service
	readyProbe ReadyProbe
	cookies    CookiePolicy
	version    string

	rateBurst    int
	ratePerSec   int
	maxBodyBytes int64
}

func New(deps Deps) *API {
	a := &API{
		users:      deps.Users,
		tokens:     deps.Tokens,
		saml:       deps.SAML,
		readyProbe: ReadyProbe{DB: deps.DB},
		version:    deps.Version,
	}
	if reg := deps.IdP; reg != nil {
		a.resolve = func(p identity.Provider) (upstream, error) {
			c, err := reg.Client(p)
			if err != nil {
				return nil, err
			}
			return c, nil
		}
	}
	if cfg := deps.Cfg; cfg != nil {
		a.cookies = CookiePolicy{Domain: cfg.CookieDomain, Secure: cfg.CookieSecure}
		a.rateBurst = cfg.RateBurst
		a.ratePerSec = cfg.RatePerSecond
		a.maxBodyBytes = cfg.MaxBodyBytes
	} else {
		a.cookies = CookiePolicy{Secure: true}
		a.rateBurst = config.DefaultRateBurst
		a.ratePerSec = config.DefaultRatePerSecond
		a.maxBodyBytes = config.DefaultMaxBodyBytes
	}

	r := chi.NewRouter()
	r.Get("/healthz", a.Healthz)
	r.Get("/readyz", a.Ready)
	r.Handle("/metrics", obs.Handler())

	r.Get("/oidc/login/{provider}", a.OIDCLogin)
	r.Get("/oidc/callback/{provider}", a.OIDCCallback)
	r.Post("/saml/acs", a.SAMLAssertion)
	r.Get("/saml/meta", a.SAMLMetadata)

	r.Post("/refresh", a.Refresh)
	r.Post("/logout", a.Logout)
	r.Get("/me", a.Me)

	a.router = r
	return a
}

// Handler returns the fully wrapped http.Handler for the server.
func (a *API) Handler() http.Handler {
	h := http.Handler(a.router)
	h = MaxBodyBytes(h, a.maxBodyBytes)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}
