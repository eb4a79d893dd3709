package identity

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

var _ UserStore = (*PGUserStore)(nil)

// PGUserStore implements UserStore using PostgreSQL.
type PGUserStore struct {
	db  *sql.DB
	now func() time.Time
}

// PGUserStoreOption configures PGUserStore.
type PGUserStoreOption func(*PGUserStore)

// WithUserClock overrides the time source used for stamp-on-write.
func WithUserClock(fn func() time.Time) PGUserStoreOption {
	return func(s *PGUserStore) {
		if fn != nil {
			s.now = fn
		}
	}
}

func NewPGUserStore(db *sql.DB, opts ...PGUserStoreOption) *PGUserStore {
	s := &PGUserStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const userSelect = `select id, email, roles, access_levels, token_sub, provider, created_at, updated_at
		 from app_users`

func (s *PGUserStore) FindBySubject(ctx context.Context, provider Provider, subject string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		userSelect+` where provider=$1 and token_sub=$2`,
		string(provider), subject,
	)
	return scanUser(row)
}

func (s *PGUserStore) FindByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(s.db.QueryRowContext(ctx, userSelect+` where id=$1`, id))
}

func scanUser(row *sql.Row) (*User, error) {
	var (
		u            User
		email        sql.NullString
		rolesJSON    []byte
		levelsJSON   []byte
		providerText string
	)
	if err := row.Scan(&u.ID, &email, &rolesJSON, &levelsJSON, &u.Subject, &providerText, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.Email = email.String
	u.Provider = Provider(providerText)
	if err := json.Unmarshal(rolesJSON, &u.Roles); err != nil {
		return nil, err
	}
	if len(levelsJSON) > 0 {
		if err := json.Unmarshal(levelsJSON, &u.AccessLevels); err != nil {
			return nil, err
		}
	}
	return &u, nil
}

// Save inserts a new user or updates an existing one. Timestamps are stamped
// here, not by database triggers, so the stamping step stays visible and
// testable.
func (s *PGUserStore) Save(ctx context.Context, u *User) error {
	now := s.now().UTC()
	rolesJSON, err := json.Marshal(u.Roles)
	if err != nil {
		return err
	}
	levelsJSON, err := json.Marshal(u.AccessLevels)
	if err != nil {
		return err
	}

	if u.ID == 0 {
		u.CreatedAt = now
		u.UpdatedAt = now
		return s.db.QueryRowContext(ctx,
			`insert into app_users(email, roles, access_levels, token_sub, provider, created_at, updated_at)
			 values($1,$2,$3,$4,$5,$6,$7) returning id`,
			nullString(u.Email), rolesJSON, levelsJSON, u.Subject, string(u.Provider), u.CreatedAt, u.UpdatedAt,
		).Scan(&u.ID)
	}

	u.UpdatedAt = now
	_, err = s.db.ExecContext(ctx,
		`update app_users set email=$1, roles=$2, access_levels=$3, updated_at=$4 where id=$5`,
		nullString(u.Email), rolesJSON, levelsJSON, u.UpdatedAt, u.ID,
	)
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
