package messaging

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/senemedecine/api/internal/domain/consultation"
	"github.com/senemedecine/api/internal/domain/patient"
	"github.com/senemedecine/api/internal/domain/user"
	"github.com/senemedecine/api/internal/platform/apperr"
	"github.com/senemedecine/api/internal/platform/auth"
	"github.com/senemedecine/api/pkg/pagination"
)

const maxContenuRunes = 5000

type Service struct {
	repo          Repository
	users         user.Reader
	consultations consultation.Reader
	patients      patient.Reader
}

func NewService(repo Repository, users user.Reader, consultations consultation.Reader, patients patient.Reader) *Service {
	return &Service{repo: repo, users: users, consultations: consultations, patients: patients}
}

// List returns the caller's inbox or sent box.
func (s *Service) List(ctx context.Context, f Filter, pg pagination.Params) ([]*Message, int, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, 0, err
	}
	f.UserID = p.ID
	return s.repo.Search(ctx, f, pg.Limit, pg.Offset())
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Message, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.ExpediteurID != p.ID && m.DestinataireID != p.ID {
		return nil, apperr.Forbidden("Accès refusé: message d'un autre utilisateur")
	}
	return m, nil
}

// Create sends a message from the caller. Outside of admins, the receiver
// must belong to the sender's hospital.
func (s *Service) Create(ctx context.Context, in Input) (*Message, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}

	contenu := ""
	if in.Contenu != nil {
		contenu = strings.TrimSpace(*in.Contenu)
	}
	if contenu == "" {
		return nil, apperr.Validation("contenu est requis")
	}
	if utf8.RuneCountInString(contenu) > maxContenuRunes {
		return nil, apperr.Validation("contenu ne doit pas dépasser %d caractères", maxContenuRunes)
	}
	if in.DestinataireID == nil {
		return nil, apperr.Validation("destinataire_id est requis")
	}
	if *in.DestinataireID == p.ID {
		return nil, apperr.Validation("Impossible de s'envoyer un message à soi-même")
	}

	if err := s.checkRecipient(ctx, p, *in.DestinataireID); err != nil {
		return nil, err
	}
	if in.ConsultationID != nil {
		if err := s.checkConsultation(ctx, *in.ConsultationID); err != nil {
			return nil, err
		}
	}

	m := &Message{
		ExpediteurID:   p.ID,
		DestinataireID: *in.DestinataireID,
		ConsultationID: in.ConsultationID,
		Contenu:        contenu,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) checkRecipient(ctx context.Context, p *auth.Principal, id uuid.UUID) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.Validation("Le destinataire indiqué est introuvable")
		}
		return err
	}
	if !u.Actif {
		return apperr.Validation("Le compte du destinataire est désactivé")
	}
	if p.IsAdmin() {
		return nil
	}
	if p.HospitalID == nil || u.HopitalID == nil || *u.HopitalID != *p.HospitalID {
		return apperr.Validation("Le destinataire doit appartenir à votre hôpital")
	}
	return nil
}

// checkConsultation requires the linked consultation to be one the sender
// can see.
func (s *Service) checkConsultation(ctx context.Context, id uuid.UUID) error {
	c, err := s.consultations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.Validation("La consultation indiquée est introuvable")
		}
		return err
	}
	sc, err := patient.ResolveScope(ctx, s.patients, nil)
	if err != nil {
		return err
	}
	return sc.Authorize(c.HopitalID, c.PatientID)
}

// MarkRead flags a received message as read. Marking twice is a no-op.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) (*Message, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.DestinataireID != p.ID {
		return nil, apperr.Forbidden("Seul le destinataire peut marquer ce message comme lu")
	}
	if m.Lu {
		return m, nil
	}
	if err := s.repo.MarkRead(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return err
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if m.ExpediteurID != p.ID {
		return apperr.Forbidden("Seul l'expéditeur peut supprimer ce message")
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) UnreadCount(ctx context.Context) (int, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return 0, err
	}
	return s.repo.CountUnread(ctx, p.ID)
}
