package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/senemedecine/api/internal/domain/patient"
	"github.com/senemedecine/api/internal/domain/user"
	"github.com/senemedecine/api/internal/platform/apperr"
	"github.com/senemedecine/api/internal/platform/auth"
	"github.com/senemedecine/api/internal/platform/httpx"
	"github.com/senemedecine/api/pkg/pagination"
)

type Service struct {
	repo     Repository
	patients patient.Reader
	users    user.Reader
	now      func() time.Time
}

func NewService(repo Repository, patients patient.Reader, users user.Reader) *Service {
	return &Service{repo: repo, patients: patients, users: users, now: time.Now}
}

func (s *Service) List(ctx context.Context, f Filter, pg pagination.Params) ([]*Appointment, int, error) {
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

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	sc, err := patient.ResolveScope(ctx, s.patients, nil)
	if err != nil {
		return nil, err
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sc.Authorize(a.HopitalID, a.PatientID); err != nil {
		return nil, err
	}
	return a, nil
}

// Create books an appointment. Patients may only book for themselves and
// their requests always start PENDING until staff confirm them.
func (s *Service) Create(ctx context.Context, in Input) (*Appointment, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if p.IsPatient() && in.PatientID == nil {
		self, err := s.patients.GetByUserID(ctx, p.ID)
		if err != nil {
			return nil, apperr.Forbidden("Aucun dossier patient associé à ce compte")
		}
		in.PatientID = &self.ID
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
	if in.DateRdv == nil || in.Heure == nil {
		return nil, apperr.Validation("date_rdv et heure sont requis")
	}

	a := &Appointment{
		PatientID: pt.ID,
		MedecinID: *medecinID,
		HopitalID: pt.HopitalID,
		Statut:    StatutPending,
	}
	if err := apply(a, in); err != nil {
		return nil, err
	}
	if p.IsPatient() {
		a.Statut = StatutPending
	}
	if err := s.validate(a, true); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Update lets hospital staff reschedule, reassign or confirm an appointment.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Appointment, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if !p.HasRole(auth.StaffRoles...) {
		return nil, apperr.Forbidden("Accès refusé: rôle insuffisant")
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.AuthorizeHospital(a.HopitalID); err != nil {
		return nil, err
	}
	if in.PatientID != nil && *in.PatientID != a.PatientID {
		return nil, apperr.Validation("Le patient d'un rendez-vous ne peut pas être modifié")
	}
	if in.HopitalID != nil && *in.HopitalID != a.HopitalID {
		return nil, apperr.Validation("hopital_id ne correspond pas à l'hôpital du patient")
	}
	if in.MedecinID != nil && *in.MedecinID != a.MedecinID {
		if _, err := user.RequireMember(ctx, s.users, *in.MedecinID, auth.RoleMedecin, a.HopitalID, "médecin"); err != nil {
			return nil, err
		}
		a.MedecinID = *in.MedecinID
	}
	rescheduled := (in.DateRdv != nil && *in.DateRdv != a.DateRdv) || (in.Heure != nil && *in.Heure != a.Heure)
	if err := apply(a, in); err != nil {
		return nil, err
	}
	if err := s.validate(a, rescheduled); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Cancel is open to anyone who can see the appointment, the patient
// included. Cancelling twice is a no-op.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Statut == StatutCancelled {
		return a, nil
	}
	a.Statut = StatutCancelled
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return err
	}
	if !p.HasRole(auth.RoleAdmin, auth.RoleSecretaire) {
		return apperr.Forbidden("Accès refusé: rôle insuffisant")
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := p.AuthorizeHospital(a.HopitalID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// SweepExpired cancels PENDING appointments whose day has passed. It runs
// from the scheduler, outside any request, so it carries no principal.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	return s.repo.CancelPendingBefore(ctx, s.today())
}

func (s *Service) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func apply(a *Appointment, in Input) error {
	if in.DateRdv != nil {
		a.DateRdv = strings.TrimSpace(*in.DateRdv)
	}
	if in.Heure != nil {
		a.Heure = strings.TrimSpace(*in.Heure)
	}
	if in.Motif != nil {
		a.Motif = in.Motif
	}
	if in.Notes != nil {
		a.Notes = in.Notes
	}
	if in.Statut != nil {
		st, err := ParseStatut(*in.Statut)
		if err != nil {
			return err
		}
		a.Statut = st
	}
	return nil
}

// validate checks the slot format. Only new or moved slots must lie in the
// future, so old appointments stay editable.
func (s *Service) validate(a *Appointment, checkFuture bool) error {
	day, err := time.Parse(httpx.DateLayout, a.DateRdv)
	if err != nil {
		return apperr.Validation("date_rdv doit être au format AAAA-MM-JJ")
	}
	if !heurePattern.MatchString(a.Heure) {
		return apperr.Validation("heure doit être au format HH:MM")
	}
	if checkFuture && day.Before(s.today()) {
		return apperr.Validation("Impossible de prendre un rendez-vous à une date passée")
	}
	return nil
}
