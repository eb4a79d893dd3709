package token

import "time"

// Token records one local credential-issuance event and, for OIDC-derived
// tokens, the upstream credential it was minted from.
//
// LocalRefreshTokenHash is the only persisted form of the refresh token.
// RawLocalRefreshToken carries the plaintext to the caller exactly once at
// issuance time and is never written to storage.
type Token struct {
	ID     int64
	UserID int64

	LocalAccessToken           string
	LocalRefreshTokenHash      string
	RawLocalRefreshToken       string
	LocalAccessTokenExpiresAt  time.Time
	LocalRefreshTokenExpiresAt time.Time

	IdPAccessToken           string
	IdPRefreshToken          string
	IdPAccessTokenExpiresAt  time.Time
	IdPRefreshTokenExpiresAt time.Time

	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
