package idp

import (
	"context"
	"errors"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/lightfoot-dev/idbroker/internal/config"
	"github.com/lightfoot-dev/idbroker/internal/identity"
)

// ErrUnknownProvider is returned for providers absent from the registry.
var ErrUnknownProvider = errors.New("idp: unknown provider")

var baseScopes = []string{oidc.ScopeOpenID, "profile", "email"}

// scopesFor returns the scopes requested from the upstream realm. The retail
// realm carries access metadata in a dedicated scope.
func scopesFor(p identity.Provider) []string {
	scopes := append([]string{}, baseScopes...)
	if p == identity.ProviderKeycloakRetail {
		scopes = append(scopes, "params")
	}
	return scopes
}

// Client wraps one upstream realm's OAuth2 code flow and token verification.
type Client struct {
	provider identity.Provider
	oauth    oauth2.Config
	verifier *oidc.IDTokenVerifier
	userinfo *oidc.Provider
}

// Registry holds the configured upstream clients, keyed by provider.
type Registry struct {
	clients map[identity.Provider]*Client
}

// NewRegistry discovers every configured realm and builds its client.
func NewRegistry(ctx context.Context, providers map[identity.Provider]config.OIDCProvider) (*Registry, error) {
	r := &Registry{clients: make(map[identity.Provider]*Client, len(providers))}
	for name, pc := range providers {
		op, err := oidc.NewProvider(ctx, pc.Issuer)
		if err != nil {
			return nil, fmt.Errorf("idp: discover %s: %w", name, err)
		}
		r.clients[name] = &Client{
			provider: name,
			verifier: op.Verifier(&oidc.Config{ClientID: pc.ClientID}),
			userinfo: op,
			oauth: oauth2.Config{
				ClientID:     pc.ClientID,
				ClientSecret: pc.ClientSecret,
				RedirectURL:  pc.RedirectURL,
				Endpoint:     op.Endpoint(),
				Scopes:       scopesFor(name),
			},
		}
	}
	return r, nil
}

// Client returns the client for the given provider.
func (r *Registry) Client(p identity.Provider) (*Client, error) {
	c, ok := r.clients[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, p)
	}
	return c, nil
}

// Provider returns the provider this client authenticates against.
func (c *Client) Provider() identity.Provider { return c.provider }

// AuthCodeURL builds the upstream authorization redirect for the given state.
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// Exchange redeems an authorization code for the upstream token set.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("idp: code exchange: %w", err)
	}
	return tok, nil
}
