package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/senemedecine/api/internal/domain/patient"
)

type Service struct {
	repo     Repository
	patients patient.Reader
	now      func() time.Time
}

func NewService(repo Repository, patients patient.Reader) *Service {
	return &Service{repo: repo, patients: patients, now: time.Now}
}

// Get returns the dashboard counts for the caller's scope: every hospital
// (or the requested one) for admins, their own hospital for staff, their
// own record for patients.
func (s *Service) Get(ctx context.Context, requestedHospital *uuid.UUID) (*Stats, error) {
	sc, err := patient.ResolveScope(ctx, s.patients, requestedHospital)
	if err != nil {
		return nil, err
	}
	today := s.now()

	if sc.PatientID != nil {
		summary, err := s.repo.PatientSummary(ctx, *sc.PatientID, today)
		if err != nil {
			return nil, fmt.Errorf("patient summary: %w", err)
		}
		return &Stats{Scope: ScopePatient, HopitalID: sc.HospitalID, Patient: summary}, nil
	}

	ov := &Overview{}
	if sc.Principal.IsAdmin() && sc.HospitalID == nil {
		n, err := s.repo.CountHospitals(ctx)
		if err != nil {
			return nil, fmt.Errorf("count hospitals: %w", err)
		}
		ov.Hopitaux = &n
	}
	if ov.Utilisateurs, err = s.repo.UsersByRole(ctx, sc.HospitalID); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if ov.Patients, err = s.repo.CountPatients(ctx, sc.HospitalID); err != nil {
		return nil, fmt.Errorf("count patients: %w", err)
	}
	if ov.Consultations, err = s.repo.ConsultationsByStatus(ctx, sc.HospitalID); err != nil {
		return nil, fmt.Errorf("count consultations: %w", err)
	}
	if ov.RendezVousAujourdhui, ov.RendezVousEnAttente, err = s.repo.Appointments(ctx, sc.HospitalID, today); err != nil {
		return nil, fmt.Errorf("count appointments: %w", err)
	}

	scope := ScopeHospital
	if sc.HospitalID == nil {
		scope = ScopeGlobal
	}
	return &Stats{Scope: scope, HopitalID: sc.HospitalID, Overview: ov}, nil
}
