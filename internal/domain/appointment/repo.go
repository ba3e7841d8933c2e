package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error)
	// CancelPendingBefore cancels PENDING appointments dated before day and
	// returns how many were changed.
	CancelPendingBefore(ctx context.Context, day time.Time) (int64, error)
}
