package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines identity and membership persistence operations
type Repository interface {
	Create(ctx context.Context, ident *Identity) error
	GetByID(ctx context.Context, id uuid.UUID) (*Identity, error)

	// GetByEmail returns nil, nil when no identity carries the email
	GetByEmail(ctx context.Context, email string) (*Identity, error)
	CreateMembership(ctx context.Context, m *Membership) error

	// AdminCollectiveIDs lists the collectives the identity administers
	AdminCollectiveIDs(ctx context.Context, identityID uuid.UUID) ([]uuid.UUID, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrIdentityNotFound indicates a missing identity
type ErrIdentityNotFound struct {
	IdentityID uuid.UUID
}

func (e ErrIdentityNotFound) Error() string {
	return "identity not found: " + e.IdentityID.String()
}

func (e ErrIdentityNotFound) Is(target error) bool {
	t, ok := target.(ErrIdentityNotFound)
	if !ok {
		return false
	}
	return t.IdentityID == uuid.Nil || t.IdentityID == e.IdentityID
}
