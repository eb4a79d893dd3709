package token

import (
	"context"
	"database/sql"
	"time"
)

var _ Store = (*PGStore)(nil)

// PGStore implements Store using PostgreSQL. The raw refresh value never
// appears in any statement here; only the hash column is read or written.
type PGStore struct {
	db  *sql.DB
	now func() time.Time
}

// PGStoreOption configures PGStore.
type PGStoreOption func(*PGStore)

// WithStoreClock overrides the time source used for stamp-on-write.
func WithStoreClock(fn func() time.Time) PGStoreOption {
	return func(s *PGStore) {
		if fn != nil {
			s.now = fn
		}
	}
}

func NewPGStore(db *sql.DB, opts ...PGStoreOption) *PGStore {
	s := &PGStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PGStore) Save(ctx context.Context, t *Token) error {
	now := s.now().UTC()
	if t.ID == 0 {
		t.CreatedAt = now
		t.UpdatedAt = now
		return s.db.QueryRowContext(ctx,
			`insert into tokens(user_id, local_access_token, local_refresh_token,
				local_access_expires_at, local_refresh_expires_at,
				idp_access_token, idp_refresh_token, idp_access_expires_at, idp_refresh_expires_at,
				revoked, created_at, updated_at)
			 values($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12) returning id`,
			t.UserID, t.LocalAccessToken, t.LocalRefreshTokenHash,
			nullTime(t.LocalAccessTokenExpiresAt), nullTime(t.LocalRefreshTokenExpiresAt),
			nullStr(t.IdPAccessToken), nullStr(t.IdPRefreshToken),
			nullTime(t.IdPAccessTokenExpiresAt), nullTime(t.IdPRefreshTokenExpiresAt),
			t.Revoked, t.CreatedAt, t.UpdatedAt,
		).Scan(&t.ID)
	}

	t.UpdatedAt = now
	_, err := s.db.ExecContext(ctx,
		`update tokens set local_access_token=$1, local_refresh_token=$2,
			local_access_expires_at=$3, local_refresh_expires_at=$4,
			revoked=$5, updated_at=$6 where id=$7`,
		t.LocalAccessToken, t.LocalRefreshTokenHash,
		nullTime(t.LocalAccessTokenExpiresAt), nullTime(t.LocalRefreshTokenExpiresAt),
		t.Revoked, t.UpdatedAt, t.ID,
	)
	return err
}

const tokenSelect = `select id, user_id, local_access_token, local_refresh_token,
			local_access_expires_at, local_refresh_expires_at,
			idp_access_token, idp_refresh_token, idp_access_expires_at, idp_refresh_expires_at,
			revoked, created_at, updated_at
		 from tokens`

func (s *PGStore) FindByRefreshHash(ctx context.Context, hash string, includeRevoked bool) (*Token, error) {
	query := tokenSelect + ` where local_refresh_token=$1`
	if !includeRevoked {
		query += ` and revoked=false`
	}
	return scanToken(s.db.QueryRowContext(ctx, query, hash))
}

func (s *PGStore) FindByAccessToken(ctx context.Context, accessToken string) (*Token, error) {
	return scanToken(s.db.QueryRowContext(ctx, tokenSelect+` where local_access_token=$1`, accessToken))
}

func scanToken(row *sql.Row) (*Token, error) {
	var (
		t                     Token
		localAccExp           sql.NullTime
		localRefExp           sql.NullTime
		idpAccess, idpRefresh sql.NullString
		idpAccExp, idpRefExp  sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.LocalAccessToken, &t.LocalRefreshTokenHash,
		&localAccExp, &localRefExp, &idpAccess, &idpRefresh, &idpAccExp, &idpRefExp,
		&t.Revoked, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	t.LocalAccessTokenExpiresAt = localAccExp.Time
	t.LocalRefreshTokenExpiresAt = localRefExp.Time
	t.IdPAccessToken = idpAccess.String
	t.IdPRefreshToken = idpRefresh.String
	t.IdPAccessTokenExpiresAt = idpAccExp.Time
	t.IdPRefreshTokenExpiresAt = idpRefExp.Time
	return &t, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
