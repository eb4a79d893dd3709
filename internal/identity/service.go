package identity

import (
	"context"
	"errors"

	"github.com/lightfoot-dev/idbroker/internal/roles"
)

// Service reconciles normalized external identities against the user store.
type Service struct {
	store UserStore
}

// NewService constructs a reconciliation service.
func NewService(store UserStore) (*Service, error) {
	if store == nil {
		return nil, errors.New("identity: user store is required")
	}
	return &Service{store: store}, nil
}

// FindOrCreate upserts a local user for the record's (provider, subject)
// pair. Existing users are synchronized in place: email is overwritten only
// when the incoming record carries one, access levels are stored verbatim and
// roles are re-derived from the hierarchy codes on every call. The operation
// is idempotent; store errors propagate unchanged.
func (s *Service) FindOrCreate(ctx context.Context, record ResourceOwner) (*User, error) {
	user, err := s.store.FindBySubject(ctx, record.Provider, record.Subject)
	switch {
	case err == nil:
		return s.synchronize(ctx, user, record)
	case errors.Is(err, ErrNotFound):
		return s.create(ctx, record)
	default:
		return nil, err
	}
}

// FindBySubject exposes the unique-key lookup for callers that must not
// create (e.g. the refresh flow).
func (s *Service) FindBySubject(ctx context.Context, provider Provider, subject string) (*User, error) {
	return s.store.FindBySubject(ctx, provider, subject)
}

// FindByID resolves a user by surrogate id (token-bound lookups).
func (s *Service) FindByID(ctx context.Context, id int64) (*User, error) {
	return s.store.FindByID(ctx, id)
}

func (s *Service) create(ctx context.Context, record ResourceOwner) (*User, error) {
	user := &User{
		Provider: record.Provider,
		Subject:  record.Subject,
		Email:    record.Email,
	}
	applyAccessRoles(user, record)
	if err := s.store.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) synchronize(ctx context.Context, user *User, record ResourceOwner) (*User, error) {
	// Never erase a known email with an absent one.
	if record.Email != "" {
		user.Email = record.Email
	}
	applyAccessRoles(user, record)
	if err := s.store.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// applyAccessRoles stores raw access levels verbatim and derives the role
// set. Users without hierarchy codes get exactly the base role.
func applyAccessRoles(user *User, record ResourceOwner) {
	user.AccessLevels = record.AccessLevels
	if user.AccessLevels == nil {
		user.AccessLevels = []string{}
	}
	if len(record.HierCodes) > 0 {
		user.Roles = roles.MapToRoles(record.HierCodes)
	} else {
		user.Roles = []string{roles.BaseRole}
	}
}
