// Package postgres provides PostgreSQL implementations of the domain
// repositories. It handles all database operations while maintaining
// transaction safety and proper error handling for the funds ledger.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/collective-funds-ledger/internal/domain/collective"
	"github.com/collective-funds-ledger/internal/platform/persistence"
)

// CollectiveRepository implements the collective.Repository interface for
// PostgreSQL
type CollectiveRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewCollectiveRepository creates a new PostgreSQL collective repository
func NewCollectiveRepository(logger *slog.Logger, db *persistence.PostgresDB) collective.Repository {
	return &CollectiveRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls
func (r *CollectiveRepository) WithTx(tx pgx.Tx) collective.Repository {
	return &CollectiveRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const collectiveColumns = `id, slug, name, type, currency, website, is_host, host_collective_id, host_fee_percent, created_by_id, deactivated_at, created_at, updated_at`

// Create stores a new collective. A slug uniqueness violation surfaces as
// ErrDuplicateSlug.
func (r *CollectiveRepository) Create(ctx context.Context, c *collective.Collective) error {
	query := `
		INSERT INTO collectives (id, slug, name, type, currency, website, is_host, host_collective_id, host_fee_percent, created_by_id, deactivated_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.querier.Exec(ctx, query,
		c.ID,
		c.Slug,
		c.Name,
		c.Type,
		c.Currency,
		c.Website,
		c.IsHost,
		c.HostCollectiveID,
		c.HostFeePercent,
		c.CreatedByID,
		c.DeactivatedAt,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return collective.ErrDuplicateSlug{Slug: c.Slug}
		}
		r.logger.Error("Failed to create collective", "slug", c.Slug, "error", err)
		return fmt.Errorf("failed to create collective: %w", err)
	}

	return nil
}

// GetByID retrieves a collective by its ID
func (r *CollectiveRepository) GetByID(ctx context.Context, id uuid.UUID) (*collective.Collective, error) {
	query := `
		SELECT ` + collectiveColumns + `
		FROM collectives
		WHERE id = $1
	`

	c, err := r.scanOne(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, collective.ErrCollectiveNotFound{Ref: id.String()}
		}
		r.logger.Error("Failed to get collective", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get collective: %w", err)
	}

	return c, nil
}

// GetBySlug retrieves a collective by its slug
func (r *CollectiveRepository) GetBySlug(ctx context.Context, slug string) (*collective.Collective, error) {
	query := `
		SELECT ` + collectiveColumns + `
		FROM collectives
		WHERE slug = $1
	`

	c, err := r.scanOne(r.querier.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, collective.ErrCollectiveNotFound{Ref: slug}
		}
		r.logger.Error("Failed to get collective by slug", "slug", slug, "error", err)
		return nil, fmt.Errorf("failed to get collective by slug: %w", err)
	}

	return c, nil
}

// SlugExists reports whether any collective, active or retired, already
// claims the slug
func (r *CollectiveRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM collectives WHERE slug = $1)`

	var exists bool
	if err := r.querier.QueryRow(ctx, query, slug).Scan(&exists); err != nil {
		r.logger.Error("Failed to check slug existence", "slug", slug, "error", err)
		return false, fmt.Errorf("failed to check slug existence: %w", err)
	}

	return exists, nil
}

// Deactivate soft-retires a collective. Collectives are never deleted:
// ledger entries keep referencing them.
func (r *CollectiveRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE collectives
		SET deactivated_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deactivated_at IS NULL
	`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to deactivate collective", "id", id.String(), "error", err)
		return fmt.Errorf("failed to deactivate collective: %w", err)
	}

	if result.RowsAffected() == 0 {
		return collective.ErrCollectiveNotFound{Ref: id.String()}
	}

	return nil
}

func (r *CollectiveRepository) scanOne(row pgx.Row) (*collective.Collective, error) {
	var c collective.Collective
	err := row.Scan(
		&c.ID,
		&c.Slug,
		&c.Name,
		&c.Type,
		&c.Currency,
		&c.Website,
		&c.IsHost,
		&c.HostCollectiveID,
		&c.HostFeePercent,
		&c.CreatedByID,
		&c.DeactivatedAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
