package identity

import "context"

// UserStore describes persistence operations required for reconciliation.
// Save has upsert semantics on the surrogate id and stamps created/updated
// timestamps on write.
type UserStore interface {
	FindBySubject(ctx context.Context, provider Provider, subject string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	Save(ctx context.Context, u *User) error
}
