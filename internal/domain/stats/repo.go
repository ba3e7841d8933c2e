package stats

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository runs the dashboard counts. A nil hospital counts every
// hospital.
type Repository interface {
	CountHospitals(ctx context.Context) (int, error)
	UsersByRole(ctx context.Context, hospital *uuid.UUID) (map[string]int, error)
	CountPatients(ctx context.Context, hospital *uuid.UUID) (int, error)
	ConsultationsByStatus(ctx context.Context, hospital *uuid.UUID) (map[string]int, error)
	// Appointments returns the number of live appointments on day and the
	// number still PENDING from day on.
	Appointments(ctx context.Context, hospital *uuid.UUID, day time.Time) (onDay, pending int, err error)
	PatientSummary(ctx context.Context, patientID uuid.UUID, day time.Time) (*PatientSummary, error)
}
