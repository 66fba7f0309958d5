package collective

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines collective persistence operations
type Repository interface {
	Create(ctx context.Context, c *Collective) error
	GetByID(ctx context.Context, id uuid.UUID) (*Collective, error)
	GetBySlug(ctx context.Context, slug string) (*Collective, error)

	// SlugExists reports whether any collective already claims the slug,
	// including soft-retired ones
	SlugExists(ctx context.Context, slug string) (bool, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	WithTx(tx pgx.Tx) Repository
}

// ErrCollectiveNotFound indicates a missing collective
type ErrCollectiveNotFound struct {
	Ref string
}

func (e ErrCollectiveNotFound) Error() string {
	return "collective not found: " + e.Ref
}

// Is matches any ErrCollectiveNotFound when the target carries no ref
func (e ErrCollectiveNotFound) Is(target error) bool {
	t, ok := target.(ErrCollectiveNotFound)
	if !ok {
		return false
	}
	return t.Ref == "" || t.Ref == e.Ref
}

// ErrDuplicateSlug indicates a slug uniqueness violation
type ErrDuplicateSlug struct {
	Slug string
}

func (e ErrDuplicateSlug) Error() string {
	return "collective with slug already exists: " + e.Slug
}
