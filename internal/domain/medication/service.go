package medication

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/senemedecine/api/internal/domain/consultation"
	"github.com/senemedecine/api/internal/domain/patient"
	"github.com/senemedecine/api/internal/platform/apperr"
	"github.com/senemedecine/api/internal/platform/auth"
	"github.com/senemedecine/api/pkg/pagination"
)

var writeRoles = []auth.Role{auth.RoleAdmin, auth.RoleMedecin}

type Service struct {
	repo          Repository
	patients      patient.Reader
	consultations consultation.Reader
}

func NewService(repo Repository, patients patient.Reader, consultations consultation.Reader) *Service {
	return &Service{repo: repo, patients: patients, consultations: consultations}
}

func (s *Service) List(ctx context.Context, f Filter, pg pagination.Params) ([]*Medication, int, error) {
	sc, err := patient.ResolveScope(ctx, s.patients, f.HopitalID)
	if err != nil {
		return nil, 0, err
	}
	f.HopitalID = sc.HospitalID
	if f.PatientID, err = sc.NarrowPatient(f.PatientID); err != nil {
		return nil, 0, err
	}
	return s.repo.Search(ctx, f, pg.Limit, pg.Offset())
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Medication, error) {
	sc, err := patient.ResolveScope(ctx, s.patients, nil)
	if err != nil {
		return nil, err
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sc.PatientID != nil && m.PatientID == nil {
		return nil, apperr.Forbidden("Accès refusé: dossier d'un autre patient")
	}
	owner := uuid.Nil
	if m.PatientID != nil {
		owner = *m.PatientID
	}
	if err := sc.Authorize(m.HopitalID, owner); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*Medication, error) {
	p, err := requireWriter(ctx)
	if err != nil {
		return nil, err
	}
	if in.Nom == nil {
		return nil, apperr.Validation("Le nom du médicament est requis")
	}
	m := &Medication{Actif: true}
	if err := s.place(ctx, p, m, in.PatientID, in.ConsultationID, in.HopitalID); err != nil {
		return nil, err
	}
	apply(m, in)
	if err := validate(m); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Medication, error) {
	p, err := requireWriter(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.AuthorizeHospital(m.HopitalID); err != nil {
		return nil, err
	}
	if in.PatientID != nil || in.ConsultationID != nil || in.HopitalID != nil {
		patientID, consultationID := m.PatientID, m.ConsultationID
		if in.PatientID != nil {
			patientID = in.PatientID
		}
		if in.ConsultationID != nil {
			consultationID = in.ConsultationID
		}
		hospital := m.HopitalID
		if err := s.place(ctx, p, m, patientID, consultationID, &hospital); err != nil {
			return nil, err
		}
		if in.HopitalID != nil && *in.HopitalID != m.HopitalID {
			return nil, apperr.Validation("Un médicament ne peut pas changer d'hôpital")
		}
	}
	apply(m, in)
	if err := validate(m); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Delete deactivates the medication.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := requireWriter(ctx)
	if err != nil {
		return err
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := p.AuthorizeHospital(m.HopitalID); err != nil {
		return err
	}
	m.Actif = false
	return s.repo.Update(ctx, m)
}

// place resolves the hospital and patient a medication is filed under. A
// consultation fixes both; a patient fixes the hospital; otherwise the
// record is a formulary entry of the requested or caller's hospital.
func (s *Service) place(ctx context.Context, p *auth.Principal, m *Medication, patientID, consultationID, requested *uuid.UUID) error {
	switch {
	case consultationID != nil:
		c, err := s.consultations.GetByID(ctx, *consultationID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return apperr.Validation("La consultation indiquée est introuvable")
			}
			return err
		}
		if err := p.AuthorizeHospital(c.HopitalID); err != nil {
			return err
		}
		if patientID != nil && *patientID != c.PatientID {
			return apperr.Validation("patient_id ne correspond pas au patient de la consultation")
		}
		pid := c.PatientID
		m.PatientID, m.ConsultationID, m.HopitalID = &pid, consultationID, c.HopitalID

	case patientID != nil:
		pt, err := patient.ForRecord(ctx, s.patients, p, patientID, nil)
		if err != nil {
			return err
		}
		m.PatientID, m.ConsultationID, m.HopitalID = patientID, nil, pt.HopitalID

	default:
		scope, err := p.ResolveHospitalScope(requested)
		if err != nil {
			return err
		}
		if scope == nil {
			return apperr.Validation("hopital_id est requis")
		}
		m.PatientID, m.ConsultationID, m.HopitalID = nil, nil, *scope
		return nil
	}
	if requested != nil && *requested != m.HopitalID {
		return apperr.Validation("hopital_id ne correspond pas à l'hôpital du patient")
	}
	return nil
}

func requireWriter(ctx context.Context) (*auth.Principal, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if !p.HasRole(writeRoles...) {
		return nil, apperr.Forbidden("Accès refusé: rôle insuffisant")
	}
	return p, nil
}

func apply(m *Medication, in Input) {
	if in.Nom != nil {
		m.Nom = strings.TrimSpace(*in.Nom)
	}
	if in.Dosage != nil {
		m.Dosage = in.Dosage
	}
	if in.Frequence != nil {
		m.Frequence = in.Frequence
	}
	if in.Duree != nil {
		m.Duree = in.Duree
	}
	if in.Instructions != nil {
		m.Instructions = in.Instructions
	}
	if in.Actif != nil {
		m.Actif = *in.Actif
	}
}

func validate(m *Medication) error {
	if m.Nom == "" {
		return apperr.Validation("Le nom du médicament est requis")
	}
	return nil
}
