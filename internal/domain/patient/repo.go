package patient

import (
	"context"

	"github.com/google/uuid"
)

// Reader is the lookup other clinical packages need to scope their records.
type Reader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error)
}

type Repository interface {
	Reader
	Create(ctx context.Context, p *Patient) error
	Update(ctx context.Context, p *Patient) error
	Search(ctx context.Context, f Filter, limit, offset int) ([]*Patient, int, error)
}
