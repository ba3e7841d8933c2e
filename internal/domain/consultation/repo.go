package consultation

import (
	"context"

	"github.com/google/uuid"
)

// Reader is the lookup packages attaching data to a consultation need.
type Reader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error)
}

type Repository interface {
	Reader
	Create(ctx context.Context, c *Consultation) error
	Update(ctx context.Context, c *Consultation) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, f Filter, limit, offset int) ([]*Consultation, int, error)
}
