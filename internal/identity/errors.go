package identity

import "errors"

var (
	// ErrMissingSubjectClaim means the upstream claim set lacked a subject
	// identifier, without which no local identity can be keyed.
	ErrMissingSubjectClaim = errors.New("identity: missing subject claim")
	// ErrMalformedAccessClaims means provider-specific authorization claims
	// were present but structurally invalid.
	ErrMalformedAccessClaims = errors.New("identity: malformed access claims")
	// ErrNotFound is returned by stores when no row matches.
	ErrNotFound = errors.New("identity: not found")
)
