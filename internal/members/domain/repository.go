package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for member persistence.
// Finders return nil, nil when nothing matches.
type Repository interface {
	Save(ctx context.Context, member *Member) error
	FindByID(ctx context.Context, id uuid.UUID) (*Member, error)
	FindByEmail(ctx context.Context, email string) (*Member, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Member, error)
	ListCommunity(ctx context.Context) ([]*Member, error)
}
