package token

import "errors"

var (
	// ErrNotFound is returned when no token row matches a lookup.
	ErrNotFound = errors.New("token: not found")
	// ErrRevoked marks a refresh attempt against an already revoked token,
	// i.e. a potential replay. Kept distinct from ErrNotFound so callers can
	// monitor the two separately.
	ErrRevoked = errors.New("token: revoked")
	// ErrExpired marks a refresh attempt past the refresh token's expiry.
	ErrExpired = errors.New("token: expired")
)
