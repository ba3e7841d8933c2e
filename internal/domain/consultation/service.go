package consultation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/senemedecine/api/internal/domain/patient"
	"github.com/senemedecine/api/internal/domain/user"
	"github.com/senemedecine/api/internal/platform/apperr"
	"github.com/senemedecine/api/internal/platform/auth"
	"github.com/senemedecine/api/pkg/pagination"
)

// writeRoles may create, edit and delete consultations.
var writeRoles = []auth.Role{auth.RoleAdmin, auth.RoleMedecin}

type Service struct {
	repo     Repository
	patients patient.Reader
	users    user.Reader
	now      func() time.Time
}

func NewService(repo Repository, patients patient.Reader, users user.Reader) *Service {
	return &Service{repo: repo, patients: patients, users: users, now: time.Now}
}

func (s *Service) List(ctx context.Context, f Filter, pg pagination.Params) ([]*Consultation, int, error) {
	sc, err := patient.ResolveScope(ctx, s.patients, f.HopitalID)
	if err != nil {
		return nil, 0, err
	}
	f.HopitalID = sc.HospitalID
	if f.PatientID, err = sc.NarrowPatient(f.PatientID); err != nil {
		return nil, 0, err
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
		return nil, 0, apperr.Validation("date_to doit être postérieure à date_from")
	}
	return s.repo.Search(ctx, f, pg.Limit, pg.Offset())
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	sc, err := patient.ResolveScope(ctx, s.patients, nil)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sc.Authorize(c.HopitalID, c.PatientID); err != nil {
		return nil, err
	}
	return c, nil
}

// Create files a consultation under the patient's hospital. A doctor
// creating one without medecin_id is recorded as the attending doctor.
func (s *Service) Create(ctx context.Context, in Input) (*Consultation, error) {
	p, err := requireWriter(ctx)
	if err != nil {
		return nil, err
	}
	pt, err := patient.ForRecord(ctx, s.patients, p, in.PatientID, in.HopitalID)
	if err != nil {
		return nil, err
	}

	medecinID := in.MedecinID
	if medecinID == nil {
		if p.Role != auth.RoleMedecin {
			return nil, apperr.Validation("medecin_id est requis")
		}
		medecinID = &p.ID
	}
	if _, err := user.RequireMember(ctx, s.users, *medecinID, auth.RoleMedecin, pt.HopitalID, "médecin"); err != nil {
		return nil, err
	}

	c := &Consultation{
		PatientID:        pt.ID,
		MedecinID:        *medecinID,
		HopitalID:        pt.HopitalID,
		DateConsultation: s.now().UTC(),
		Statut:           StatutScheduled,
	}
	if err := apply(c, in); err != nil {
		return nil, err
	}
	if err := validate(c); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update edits a consultation. The patient and hospital are fixed at
// creation.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Consultation, error) {
	p, err := requireWriter(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.AuthorizeHospital(c.HopitalID); err != nil {
		return nil, err
	}
	if in.PatientID != nil && *in.PatientID != c.PatientID {
		return nil, apperr.Validation("Le patient d'une consultation ne peut pas être modifié")
	}
	if in.HopitalID != nil && *in.HopitalID != c.HopitalID {
		return nil, apperr.Validation("hopital_id ne correspond pas à l'hôpital du patient")
	}
	if in.MedecinID != nil && *in.MedecinID != c.MedecinID {
		if _, err := user.RequireMember(ctx, s.users, *in.MedecinID, auth.RoleMedecin, c.HopitalID, "médecin"); err != nil {
			return nil, err
		}
		c.MedecinID = *in.MedecinID
	}
	if err := apply(c, in); err != nil {
		return nil, err
	}
	if err := validate(c); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, statut string) (*Consultation, error) {
	return s.Update(ctx, id, Input{Statut: &statut})
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := requireWriter(ctx)
	if err != nil {
		return err
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := p.AuthorizeHospital(c.HopitalID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
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

func apply(c *Consultation, in Input) error {
	if in.DateConsultation != nil {
		c.DateConsultation = in.DateConsultation.UTC()
	}
	if in.Motif != nil {
		c.Motif = strings.TrimSpace(*in.Motif)
	}
	if in.Diagnostic != nil {
		c.Diagnostic = in.Diagnostic
	}
	if in.Traitement != nil {
		c.Traitement = in.Traitement
	}
	if in.Notes != nil {
		c.Notes = in.Notes
	}
	if in.Statut != nil {
		st, err := ParseStatut(*in.Statut)
		if err != nil {
			return err
		}
		c.Statut = st
	}
	return nil
}

func validate(c *Consultation) error {
	if c.Motif == "" {
		return apperr.Validation("Le motif de la consultation est requis")
	}
	if c.DateConsultation.IsZero() {
		return apperr.Validation("date_consultation est requise")
	}
	return nil
}
