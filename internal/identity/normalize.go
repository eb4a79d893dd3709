package identity

import (
	"fmt"
	"strings"
)

// Normalize converts a raw claim map (OIDC userinfo, or a map synthesized
// from a SAML NameID) into a ResourceOwner. The subject claim is the one hard
// requirement; everything else is best-effort.
func Normalize(claims map[string]any, provider Provider, accessRoles *AccessRoles) (ResourceOwner, error) {
	sub, _ := claims["sub"].(string)
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return ResourceOwner{}, fmt.Errorf("%w: provider %q returned no sub claim", ErrMissingSubjectClaim, provider)
	}

	ro := ResourceOwner{
		Provider:     provider,
		Subject:      sub,
		AccessLevels: []string{},
		HierCodes:    []string{},
	}

	// Email is optional and never fails normalization.
	if email, ok := claims["email"].(string); ok {
		ro.Email = strings.TrimSpace(email)
	}

	if accessRoles != nil {
		if accessRoles.AccessLevels != nil {
			ro.AccessLevels = accessRoles.AccessLevels
		}
		if accessRoles.HierCodes != nil {
			ro.HierCodes = accessRoles.HierCodes
		}
	}
	return ro, nil
}
