package patient

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/senemedecine/api/internal/domain/user"
	"github.com/senemedecine/api/internal/platform/apperr"
	"github.com/senemedecine/api/internal/platform/auth"
	"github.com/senemedecine/api/internal/platform/httpx"
	"github.com/senemedecine/api/pkg/pagination"
)

// numeroAttempts bounds retries when a generated patient number collides.
const numeroAttempts = 3

var groupesSanguins = map[string]bool{
	"A+": true, "A-": true, "B+": true, "B-": true,
	"AB+": true, "AB-": true, "O+": true, "O-": true,
}

type Service struct {
	repo  Repository
	users user.Reader
	now   func() time.Time
}

func NewService(repo Repository, users user.Reader) *Service {
	return &Service{repo: repo, users: users, now: time.Now}
}

// List returns the patients in the caller's scope. A PATIENT only ever sees
// their own record.
func (s *Service) List(ctx context.Context, f Filter, pg pagination.Params) ([]*Patient, int, error) {
	sc, err := ResolveScope(ctx, s.repo, f.HopitalID)
	if err != nil {
		return nil, 0, err
	}
	f.HopitalID = sc.HospitalID
	if sc.PatientID != nil {
		f.UserID = &sc.Principal.ID
	}
	return s.repo.Search(ctx, f, pg.Limit, pg.Offset())
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	sc, err := ResolveScope(ctx, s.repo, nil)
	if err != nil {
		return nil, err
	}
	pt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sc.Authorize(pt.HopitalID, pt.ID); err != nil {
		return nil, err
	}
	return pt, nil
}

// Me returns the record linked to the calling PATIENT account.
func (s *Service) Me(ctx context.Context) (*Patient, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	pt, err := s.repo.GetByUserID(ctx, p.ID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("Aucun dossier patient associé à ce compte")
		}
		return nil, err
	}
	return pt, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*Patient, error) {
	p, err := requireStaff(ctx)
	if err != nil {
		return nil, err
	}
	hospitalID, err := targetHospital(p, in.HopitalID)
	if err != nil {
		return nil, err
	}
	if in.Nom == nil || in.Prenom == nil {
		return nil, apperr.Validation("Le nom et le prénom du patient sont requis")
	}

	pt := &Patient{HopitalID: hospitalID, Actif: true}
	apply(pt, in)
	if err := s.validate(pt); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, pt, true, true); err != nil {
		return nil, err
	}

	if pt.NumeroPatient != "" {
		if err := s.repo.Create(ctx, pt); err != nil {
			return nil, err
		}
		return pt, nil
	}
	for attempt := 1; ; attempt++ {
		pt.NumeroPatient = s.newNumero()
		err := s.repo.Create(ctx, pt)
		if err == nil {
			return pt, nil
		}
		if !errors.Is(err, apperr.ErrConflict) || attempt == numeroAttempts {
			return nil, err
		}
	}
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Patient, error) {
	p, err := requireStaff(ctx)
	if err != nil {
		return nil, err
	}
	pt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.AuthorizeHospital(pt.HopitalID); err != nil {
		return nil, err
	}

	moved := in.HopitalID != nil && *in.HopitalID != pt.HopitalID
	if moved {
		if !p.IsAdmin() {
			return nil, apperr.Forbidden("Seul un administrateur peut transférer un patient vers un autre hôpital")
		}
		pt.HopitalID = *in.HopitalID
	}
	apply(pt, in)
	if err := s.validate(pt); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, pt, moved || in.MedecinID != nil, moved || in.UserID != nil); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, pt); err != nil {
		return nil, err
	}
	return pt, nil
}

// Delete deactivates the patient record. Clinical history is kept.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return err
	}
	if !p.HasRole(auth.RoleAdmin, auth.RoleSecretaire) {
		return apperr.Forbidden("Accès refusé: rôle insuffisant")
	}
	pt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := p.AuthorizeHospital(pt.HopitalID); err != nil {
		return err
	}
	pt.Actif = false
	return s.repo.Update(ctx, pt)
}

// newNumero builds a patient number such as PAT-20240115-3F9A1C.
func (s *Service) newNumero() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("PAT-%s-%s", s.now().Format("20060102"), suffix)
}

func (s *Service) checkReferences(ctx context.Context, pt *Patient, medecin, account bool) error {
	if medecin && pt.MedecinID != nil {
		if _, err := user.RequireMember(ctx, s.users, *pt.MedecinID, auth.RoleMedecin, pt.HopitalID, "médecin"); err != nil {
			return err
		}
	}
	if account && pt.UserID != nil {
		if _, err := user.RequireMember(ctx, s.users, *pt.UserID, auth.RolePatient, pt.HopitalID, "compte patient"); err != nil {
			return err
		}
	}
	return nil
}

func requireStaff(ctx context.Context) (*auth.Principal, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if !p.HasRole(auth.StaffRoles...) {
		return nil, apperr.Forbidden("Accès refusé: rôle insuffisant")
	}
	return p, nil
}

// targetHospital picks the hospital a new record is filed under: the
// requested one for admins, the caller's own otherwise.
func targetHospital(p *auth.Principal, requested *uuid.UUID) (uuid.UUID, error) {
	if p.IsAdmin() {
		if requested == nil {
			return uuid.Nil, apperr.Validation("hopital_id est requis")
		}
		return *requested, nil
	}
	scope, err := p.ResolveHospitalScope(requested)
	if err != nil {
		return uuid.Nil, err
	}
	return *scope, nil
}

func apply(pt *Patient, in Input) {
	if in.NumeroPatient != nil {
		pt.NumeroPatient = strings.TrimSpace(*in.NumeroPatient)
	}
	if in.Nom != nil {
		pt.Nom = strings.TrimSpace(*in.Nom)
	}
	if in.Prenom != nil {
		pt.Prenom = strings.TrimSpace(*in.Prenom)
	}
	if in.DateNaissance != nil {
		pt.DateNaissance = in.DateNaissance
	}
	if in.Sexe != nil {
		sexe := strings.ToUpper(strings.TrimSpace(*in.Sexe))
		pt.Sexe = &sexe
	}
	if in.Telephone != nil {
		pt.Telephone = in.Telephone
	}
	if in.Email != nil {
		e := strings.TrimSpace(*in.Email)
		pt.Email = &e
	}
	if in.Adresse != nil {
		pt.Adresse = in.Adresse
	}
	if in.GroupeSanguin != nil {
		g := strings.ToUpper(strings.TrimSpace(*in.GroupeSanguin))
		pt.GroupeSanguin = &g
	}
	if in.Allergies != nil {
		pt.Allergies = in.Allergies
	}
	if in.MedecinID != nil {
		pt.MedecinID = in.MedecinID
	}
	if in.UserID != nil {
		pt.UserID = in.UserID
	}
	if in.Actif != nil {
		pt.Actif = *in.Actif
	}
}

func (s *Service) validate(pt *Patient) error {
	if pt.Nom == "" || pt.Prenom == "" {
		return apperr.Validation("Le nom et le prénom du patient sont requis")
	}
	if pt.DateNaissance != nil && *pt.DateNaissance != "" {
		d, err := time.Parse(httpx.DateLayout, *pt.DateNaissance)
		if err != nil {
			return apperr.Validation("date_naissance doit être au format AAAA-MM-JJ")
		}
		if d.After(s.now()) {
			return apperr.Validation("date_naissance ne peut pas être dans le futur")
		}
	}
	if pt.Sexe != nil && *pt.Sexe != "" && *pt.Sexe != "M" && *pt.Sexe != "F" {
		return apperr.Validation("sexe doit valoir M ou F")
	}
	if pt.GroupeSanguin != nil && *pt.GroupeSanguin != "" && !groupesSanguins[*pt.GroupeSanguin] {
		return apperr.Validation("Groupe sanguin invalide: %s", *pt.GroupeSanguin)
	}
	if pt.Email != nil && *pt.Email != "" {
		if _, err := mail.ParseAddress(*pt.Email); err != nil {
			return apperr.Validation("Email invalide")
		}
	}
	return nil
}
