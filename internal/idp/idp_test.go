package idp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightfoot-dev/idbroker/internal/config"
	"github.com/lightfoot-dev/idbroker/internal/identity"
)

func TestScopePolicy(t *testing.T) {
	assert.Equal(t, []string{"openid", "profile", "email"}, scopesFor(identity.ProviderKeycloakLocal))
	assert.Equal(t, []string{"openid", "profile", "email"}, scopesFor(identity.ProviderKeycloakSAML))
	assert.Equal(t, []string{"openid", "profile", "email", "params"}, scopesFor(identity.ProviderKeycloakRetail))
}

func TestAccessTokenClaims(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "123",
		"params": map[string]any{
			"AccessLevel": []any{"L1"},
			"HierCode":    []any{"X-HierCode UK01001"},
		},
	})
	raw, err := tok.SignedString([]byte("any-key"))
	require.NoError(t, err)

	claims, err := accessTokenClaims(raw)
	require.NoError(t, err)

	assert.Equal(t, "123", claims["sub"])
	params, ok := claims["params"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"L1"}, params["AccessLevel"])
}

func TestAccessTokenClaimsRejectsGarbage(t *testing.T) {
	_, err := accessTokenClaims("not-a-jwt")
	assert.Error(t, err)
}

func newDiscoveryServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                                srv.URL,
			"authorization_endpoint":                srv.URL + "/auth",
			"token_endpoint":                        srv.URL + "/token",
			"jwks_uri":                              srv.URL + "/keys",
			"userinfo_endpoint":                     srv.URL + "/userinfo",
			"response_types_supported":              []string{"code"},
			"subject_types_supported":               []string{"public"},
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	})
	return srv
}

func TestNewRegistryDiscoversConfiguredRealms(t *testing.T) {
	srv := newDiscoveryServer(t)

	reg, err := NewRegistry(context.Background(), map[identity.Provider]config.OIDCProvider{
		identity.ProviderKeycloakRetail: {
			Issuer:       srv.URL,
			ClientID:     "broker",
			ClientSecret: "secret",
			RedirectURL:  "https://broker.example.com/oidc/callback/keycloak_retail",
		},
	})
	require.NoError(t, err)

	client, err := reg.Client(identity.ProviderKeycloakRetail)
	require.NoError(t, err)
	assert.Equal(t, identity.ProviderKeycloakRetail, client.Provider())

	url := client.AuthCodeURL("state-1")
	assert.Contains(t, url, srv.URL+"/auth")
	assert.Contains(t, url, "scope=openid+profile+email+params")
	assert.Contains(t, url, "state=state-1")

	_, err = reg.Client(identity.ProviderKeycloakLocal)
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
