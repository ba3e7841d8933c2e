package imaging

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Association) error
	GetByID(ctx context.Context, id uuid.UUID) (*Association, error)
	ListByConsultation(ctx context.Context, consultationID uuid.UUID) ([]*Association, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
