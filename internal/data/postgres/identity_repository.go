package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/collective-funds-ledger/internal/domain/identity"
	"github.com/collective-funds-ledger/internal/platform/persistence"
)

// IdentityRepository implements the identity.Repository interface for
// PostgreSQL
type IdentityRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewIdentityRepository creates a new PostgreSQL identity repository
func NewIdentityRepository(logger *slog.Logger, db *persistence.PostgresDB) identity.Repository {
	return &IdentityRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so identity provisioning
// can be atomic with collective creation
func (r *IdentityRepository) WithTx(tx pgx.Tx) identity.Repository {
	return &IdentityRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new identity
func (r *IdentityRepository) Create(ctx context.Context, ident *identity.Identity) error {
	query := `
		INSERT INTO identities (id, email, name, is_root, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.querier.Exec(ctx, query,
		ident.ID,
		ident.Email,
		ident.Name,
		ident.IsRoot,
		ident.CreatedAt,
		ident.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create identity", "email", ident.Email, "error", err)
		return fmt.Errorf("failed to create identity: %w", err)
	}

	return nil
}

// GetByID retrieves an identity by its ID
func (r *IdentityRepository) GetByID(ctx context.Context, id uuid.UUID) (*identity.Identity, error) {
	query := `
		SELECT id, email, name, is_root, created_at, updated_at
		FROM identities
		WHERE id = $1
	`

	var ident identity.Identity
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&ident.ID,
		&ident.Email,
		&ident.Name,
		&ident.IsRoot,
		&ident.CreatedAt,
		&ident.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrIdentityNotFound{IdentityID: id}
		}
		r.logger.Error("Failed to get identity", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}

	return &ident, nil
}

// GetByEmail retrieves an identity by email. Returns nil, nil when no
// identity carries the email, so callers can provision one.
func (r *IdentityRepository) GetByEmail(ctx context.Context, email string) (*identity.Identity, error) {
	query := `
		SELECT id, email, name, is_root, created_at, updated_at
		FROM identities
		WHERE email = $1
	`

	var ident identity.Identity
	err := r.querier.QueryRow(ctx, query, email).Scan(
		&ident.ID,
		&ident.Email,
		&ident.Name,
		&ident.IsRoot,
		&ident.CreatedAt,
		&ident.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get identity by email", "email", email, "error", err)
		return nil, fmt.Errorf("failed to get identity by email: %w", err)
	}

	return &ident, nil
}

// CreateMembership stores a role grant linking an identity to a collective
func (r *IdentityRepository) CreateMembership(ctx context.Context, m *identity.Membership) error {
	query := `
		INSERT INTO memberships (id, identity_id, collective_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (identity_id, collective_id, role) DO NOTHING
	`

	_, err := r.querier.Exec(ctx, query,
		m.ID,
		m.IdentityID,
		m.CollectiveID,
		m.Role,
		m.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create membership",
			"identity_id", m.IdentityID.String(),
			"collective_id", m.CollectiveID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create membership: %w", err)
	}

	return nil
}

// AdminCollectiveIDs lists the collectives the identity administers. The
// result seeds the actor's admin set before authorization runs.
func (r *IdentityRepository) AdminCollectiveIDs(ctx context.Context, identityID uuid.UUID) ([]uuid.UUID, error) {
	query := `
		SELECT collective_id
		FROM memberships
		WHERE identity_id = $1 AND role = 'ADMIN'
	`

	rows, err := r.querier.Query(ctx, query, identityID)
	if err != nil {
		r.logger.Error("Failed to list admin collectives", "identity_id", identityID.String(), "error", err)
		return nil, fmt.Errorf("failed to list admin collectives: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan admin collective id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over admin collectives: %w", err)
	}

	return ids, nil
}
