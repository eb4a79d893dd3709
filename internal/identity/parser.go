package identity

import "fmt"

// ClaimParser extracts provider-specific authorization claims from a raw
// userinfo claim map. Providers without a side channel return (nil, nil).
type ClaimParser interface {
	ParseAccessRoles(claims map[string]any) (*AccessRoles, error)
}

// parsers is the provider dispatch table. Adding a provider means adding a
// row here, not editing a switch somewhere else.
var parsers = map[Provider]ClaimParser{
	ProviderKeycloakRetail: retailClaimParser{},
}

// ParserFor returns the claim parser registered for the provider, falling
// back to a no-op parser.
func ParserFor(provider Provider) ClaimParser {
	if p, ok := parsers[provider]; ok {
		return p
	}
	return noopClaimParser{}
}

type noopClaimParser struct{}

func (noopClaimParser) ParseAccessRoles(map[string]any) (*AccessRoles, error) {
	return nil, nil
}

// retailClaimParser reads the retail realm's params side channel:
// params.AccessLevel is required and must be a list; params.HierCode is an
// optional list.
type retailClaimParser struct{}

func (retailClaimParser) ParseAccessRoles(claims map[string]any) (*AccessRoles, error) {
	raw, ok := claims["params"]
	if !ok {
		return nil, fmt.Errorf("%w: params claim is missing", ErrMalformedAccessClaims)
	}
	params, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: params claim is not an object", ErrMalformedAccessClaims)
	}

	levels, ok := stringList(params["AccessLevel"])
	if !ok {
		return nil, fmt.Errorf("%w: AccessLevel must be a list", ErrMalformedAccessClaims)
	}

	codes := []string{}
	if v, present := params["HierCode"]; present {
		codes, ok = stringList(v)
		if !ok {
			return nil, fmt.Errorf("%w: HierCode must be a list", ErrMalformedAccessClaims)
		}
	}

	return &AccessRoles{AccessLevels: levels, HierCodes: codes}, nil
}

// stringList coerces a decoded JSON value into a string slice. Scalars and
// mixed-type lists are rejected.
func stringList(v any) ([]string, bool) {
	switch list := v.(type) {
	case nil:
		return nil, false
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
