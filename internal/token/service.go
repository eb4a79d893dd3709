package token

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lightfoot-dev/idbroker/internal/identity"
	"github.com/lightfoot-dev/idbroker/internal/ids"
)

const (
	defaultAccessTTL  = 24 * time.Hour
	defaultRefreshTTL = 30 * 24 * time.Hour

	// hashAlgorithm is the pinned refresh-token hash. Changing it invalidates
	// every persisted refresh token, so it is published through
	// HashAlgorithm and guarded by a regression test.
	hashAlgorithm = "hmac-sha512"
)

// Service mints, hashes, verifies, rotates and revokes local token pairs.
// It holds no state beyond configuration; every lookup round-trips to the
// store so revocation is visible immediately across concurrent requests.
type Service struct {
	store Store
	salt  []byte
	now   func() time.Time

	accessTTL  time.Duration
	refreshTTL time.Duration
}

// Option configures Service behavior.
type Option func(*Service) error

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) error {
		if fn != nil {
			s.now = fn
		}
		return nil
	}
}

// WithAccessTTL configures the local access token lifetime.
func WithAccessTTL(ttl time.Duration) Option {
	return func(s *Service) error {
		if ttl > 0 {
			s.accessTTL = ttl
		}
		return nil
	}
}

// WithRefreshTTL configures the local refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) Option {
	return func(s *Service) error {
		if ttl > 0 {
			s.refreshTTL = ttl
		}
		return nil
	}
}

// NewService constructs the issuance core. The refresh-token salt is the HMAC
// key for hashing persisted refresh tokens; it is injected here rather than
// read from ambient state so tests can fix it.
func NewService(store Store, refreshTokenSalt string, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("token: store is required")
	}
	if strings.TrimSpace(refreshTokenSalt) == "" {
		return nil, errors.New("token: refresh token salt is required")
	}
	s := &Service{
		store:      store,
		salt:       []byte(refreshTokenSalt),
		now:        time.Now,
		accessTTL:  defaultAccessTTL,
		refreshTTL: defaultRefreshTTL,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// HashAlgorithm returns the pinned refresh-token hash algorithm name.
func (s *Service) HashAlgorithm() string {
	return hashAlgorithm
}

// CreateFromUpstream builds an unpersisted token holding the upstream
// credential material from an OIDC exchange. The upstream access expiry comes
// from the supplied value, or now+accessTTL when the IdP sent none; upstream
// refresh tokens rarely carry an expiry, so a fixed refreshTTL policy applies.
func (s *Service) CreateFromUpstream(accessToken, refreshToken string, expiresAt time.Time) *Token {
	now := s.now().UTC()
	accessExpiry := expiresAt
	if accessExpiry.IsZero() {
		accessExpiry = now.Add(s.accessTTL)
	}
	return &Token{
		IdPAccessToken:           accessToken,
		IdPRefreshToken:          refreshToken,
		IdPAccessTokenExpiresAt:  accessExpiry,
		IdPRefreshTokenExpiresAt: now.Add(s.refreshTTL),
	}
}

// CreateBare builds an empty unpersisted token for flows without upstream
// credential material (SAML, rotation).
func (s *Service) CreateBare() *Token {
	return &Token{}
}

// Issue mints the local opaque pair onto t, binds it to user and persists it
// exactly once. The returned token carries the raw refresh value for cookie
// issuance; only its hash is stored.
func (s *Service) Issue(ctx context.Context, t *Token, user *identity.User) (*Token, error) {
	if t == nil {
		return nil, errors.New("token: token is required")
	}
	if user == nil {
		return nil, errors.New("token: user is required")
	}
	return s.issueTo(ctx, t, user.ID)
}

func (s *Service) issueTo(ctx context.Context, t *Token, userID int64) (*Token, error) {
	now := s.now().UTC()
	raw := ids.New()

	t.UserID = userID
	t.LocalAccessToken = ids.New()
	t.RawLocalRefreshToken = raw
	t.LocalRefreshTokenHash = s.hashRefreshToken(raw)
	// Local expiries are policy of this broker, never derived from upstream.
	t.LocalAccessTokenExpiresAt = now.Add(s.accessTTL)
	t.LocalRefreshTokenExpiresAt = now.Add(s.refreshTTL)

	if err := s.store.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// FindByLocalRefreshToken hashes raw with the configured salt and looks up a
// non-revoked token. Absent and revoked tokens are both reported as
// (nil, nil): a revoked row persists for audit but is invisible here.
func (s *Service) FindByLocalRefreshToken(ctx context.Context, raw string) (*Token, error) {
	t, err := s.store.FindByRefreshHash(ctx, s.hashRefreshToken(raw), false)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Authenticate resolves a presented local access token to its live row.
// Revoked and expired tokens fail with distinct errors.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*Token, error) {
	t, err := s.store.FindByAccessToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if t.Revoked {
		return nil, ErrRevoked
	}
	if !t.LocalAccessTokenExpiresAt.IsZero() && s.now().After(t.LocalAccessTokenExpiresAt) {
		return nil, ErrExpired
	}
	return t, nil
}

// Revoke marks the token matching raw as revoked. Revocation is idempotent
// and monotonic: an already revoked token reports success without a second
// write, an unknown token reports false without any write.
func (s *Service) Revoke(ctx context.Context, raw string) (bool, error) {
	t, err := s.store.FindByRefreshHash(ctx, s.hashRefreshToken(raw), true)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if t.Revoked {
		return true, nil
	}
	t.Revoked = true
	if err := s.store.Save(ctx, t); err != nil {
		return false, err
	}
	return true, nil
}

// Rotate implements the refresh flow: validate the presented refresh token,
// revoke it and issue a successor pair bound to the same user. Absent,
// revoked and expired tokens fail with distinct errors so replay attempts can
// be monitored separately from simple absence.
//
// Two concurrent Rotate calls on one raw token are not serialized here; both
// may pass validation before either revokes, yielding two valid successors.
func (s *Service) Rotate(ctx context.Context, raw string) (*Token, error) {
	current, err := s.store.FindByRefreshHash(ctx, s.hashRefreshToken(raw), true)
	if err != nil {
		return nil, err
	}
	if current.Revoked {
		return nil, fmt.Errorf("%w: refresh token presented after revocation", ErrRevoked)
	}
	if !current.LocalRefreshTokenExpiresAt.IsZero() && s.now().After(current.LocalRefreshTokenExpiresAt) {
		return nil, ErrExpired
	}

	current.Revoked = true
	if err := s.store.Save(ctx, current); err != nil {
		return nil, err
	}
	return s.issueTo(ctx, s.CreateBare(), current.UserID)
}

func (s *Service) hashRefreshToken(raw string) string {
	mac := hmac.New(sha512.New, s.salt)
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}
