package token

import "context"

// Store describes token persistence. Save has upsert semantics on the
// surrogate id and stamps created/updated timestamps on write.
type Store interface {
	Save(ctx context.Context, t *Token) error
	// FindByRefreshHash looks a token up by its hashed refresh value. With
	// includeRevoked=false, revoked rows are invisible and ErrNotFound is
	// returned in their place.
	FindByRefreshHash(ctx context.Context, hash string, includeRevoked bool) (*Token, error)
	// FindByAccessToken looks a token up by its local access value, in any
	// revocation state.
	FindByAccessToken(ctx context.Context, accessToken string) (*Token, error)
}
