package imaging

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/senemedecine/api/internal/domain/consultation"
	"github.com/senemedecine/api/internal/platform/apperr"
	"github.com/senemedecine/api/internal/platform/auth"
	"github.com/senemedecine/api/internal/platform/db"
	"github.com/senemedecine/api/internal/platform/orthanc"
)

// Roles allowed to view images and manage associations.
var imagingRoles = []auth.Role{auth.RoleAdmin, auth.RoleMedecin}

// PACS is the part of the Orthanc client the service relies on.
type PACS interface {
	System(ctx context.Context) (json.RawMessage, error)
	Studies(ctx context.Context) (json.RawMessage, error)
	Study(ctx context.Context, id string) (json.RawMessage, error)
	StudySeries(ctx context.Context, id string) (json.RawMessage, error)
	Series(ctx context.Context, id string) (json.RawMessage, error)
	InstancePreview(ctx context.Context, id string) (*orthanc.Image, error)
	StudyExists(ctx context.Context, id string) (bool, error)
}

type Service struct {
	repo          Repository
	consultations consultation.Reader
	pacs          PACS
	tx            db.TxRunner
}

func NewService(repo Repository, consultations consultation.Reader, pacs PACS, tx db.TxRunner) *Service {
	return &Service{repo: repo, consultations: consultations, pacs: pacs, tx: tx}
}

// ListForConsultation returns the studies linked to a consultation.
func (s *Service) ListForConsultation(ctx context.Context, consultationID uuid.UUID) ([]*Association, error) {
	p, err := requireImaging(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.consultationInScope(ctx, p, consultationID); err != nil {
		return nil, err
	}
	return s.repo.ListByConsultation(ctx, consultationID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Association, error) {
	p, err := requireImaging(ctx)
	if err != nil {
		return nil, err
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.consultationInScope(ctx, p, a.ConsultationID); err != nil {
		return nil, err
	}
	return a, nil
}

// Attach links an Orthanc study to a consultation. The study must exist in
// Orthanc; a duplicate link is reported as a conflict by the unique
// constraint.
func (s *Service) Attach(ctx context.Context, consultationID uuid.UUID, in AttachInput) (*Association, error) {
	p, err := requireImaging(ctx)
	if err != nil {
		return nil, err
	}
	studyID := strings.TrimSpace(in.OrthancStudyID)
	if studyID == "" {
		return nil, apperr.Validation("orthanc_study_id est requis")
	}
	if !orthanc.ValidID(studyID) {
		return nil, apperr.Validation("Identifiant Orthanc invalide")
	}
	if _, err := s.consultationInScope(ctx, p, consultationID); err != nil {
		return nil, err
	}
	exists, err := s.pacs.StudyExists(ctx, studyID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("Étude DICOM introuvable dans Orthanc")
	}

	a := &Association{
		ConsultationID: consultationID,
		OrthancStudyID: studyID,
		Description:    in.Description,
		CreatedBy:      &p.ID,
	}
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.consultationInScope(ctx, p, consultationID); err != nil {
			return err
		}
		return s.repo.Create(ctx, a)
	})
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.Conflict("Cette étude est déjà associée à la consultation")
		}
		return nil, err
	}
	return a, nil
}

func (s *Service) Detach(ctx context.Context, id uuid.UUID) error {
	p, err := requireImaging(ctx)
	if err != nil {
		return err
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.consultationInScope(ctx, p, a.ConsultationID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) consultationInScope(ctx context.Context, p *auth.Principal, id uuid.UUID) (*consultation.Consultation, error) {
	c, err := s.consultations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.AuthorizeHospital(c.HopitalID); err != nil {
		return nil, err
	}
	return c, nil
}

func requireImaging(ctx context.Context) (*auth.Principal, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if !p.HasRole(imagingRoles...) {
		return nil, apperr.Forbidden("Accès refusé: rôle insuffisant")
	}
	return p, nil
}
