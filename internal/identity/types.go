package identity

import "time"

// Provider identifies which upstream IdP asserted an identity.
type Provider string

const (
	// ProviderKeycloakLocal is the broker's own Keycloak realm (OIDC).
	ProviderKeycloakLocal Provider = "keycloak_local"
	// ProviderKeycloakRetail is the third-party retail realm (OIDC) that
	// carries AccessLevel and HierCode claims in its params side channel.
	ProviderKeycloakRetail Provider = "keycloak_retail"
	// ProviderKeycloakSAML is the Keycloak SAML2 binding.
	ProviderKeycloakSAML Provider = "keycloak_saml"
)

// ParseProvider maps a path/config string to a known provider tag.
func ParseProvider(s string) (Provider, bool) {
	switch Provider(s) {
	case ProviderKeycloakLocal, ProviderKeycloakRetail, ProviderKeycloakSAML:
		return Provider(s), true
	}
	return "", false
}

// User is a local principal bound to one (provider, subject) pair. Email is
// not unique: several provider accounts may share one address.
type User struct {
	ID           int64
	Email        string
	Roles        []string
	AccessLevels []string
	Subject      string
	Provider     Provider
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AccessRoles carries the raw authorization claims parsed from a provider's
// side channel before role mapping.
type AccessRoles struct {
	AccessLevels []string
	HierCodes    []string
}

// ResourceOwner is the normalized external-identity claim set. It only exists
// to cross the boundary between protocol verification and reconciliation and
// is never persisted.
type ResourceOwner struct {
	Provider     Provider
	Subject      string
	Email        string
	AccessLevels []string
	HierCodes    []string
}
