package identity

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/collective-funds-ledger/internal/domain/shared"
)

var ErrEmptyEmail = errors.New("identity email cannot be empty")

// Identity is an authenticated person acting on the platform. Sessions
// and credentials are handled by the external auth layer; this record is
// what the ledger needs to attribute fund movements.
type Identity struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	IsRoot    bool      `json:"is_root"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a minimal identity record, as provisioned when an order
// names a contact that has never been onboarded.
func New(email, name string) (*Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrEmptyEmail
	}
	now := time.Now().UTC()
	return &Identity{
		ID:        uuid.New(),
		Email:     email,
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Membership grants an identity a role on a collective
type Membership struct {
	ID           uuid.UUID         `json:"id"`
	IdentityID   uuid.UUID         `json:"identity_id"`
	CollectiveID uuid.UUID         `json:"collective_id"`
	Role         shared.MemberRole `json:"role"`
	CreatedAt    time.Time         `json:"created_at"`
}

// NewAdminMembership attaches an identity as administrator of a collective
func NewAdminMembership(identityID, collectiveID uuid.UUID) *Membership {
	return &Membership{
		ID:           uuid.New(),
		IdentityID:   identityID,
		CollectiveID: collectiveID,
		Role:         shared.MemberRoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}
}

// Actor is the guard's view of an acting identity: the identity itself
// plus the set of collectives it administers, resolved up front so that
// authorization stays a pure decision over passed-in state.
type Actor struct {
	Identity *Identity
	AdminOf  map[uuid.UUID]struct{}
}

// IsAdminOf reports whether the actor administers the given collective
func (a *Actor) IsAdminOf(collectiveID uuid.UUID) bool {
	if a == nil || a.Identity == nil {
		return false
	}
	_, ok := a.AdminOf[collectiveID]
	return ok
}

// IsRoot reports whether the actor is the privileged root operator
func (a *Actor) IsRoot() bool {
	return a != nil && a.Identity != nil && a.Identity.IsRoot
}
